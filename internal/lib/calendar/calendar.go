// Package calendar формирует приглашение на встречу: файл .ics и ссылку
// для добавления в Google Calendar.
package calendar

import (
	"net/url"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/magabrotheeeer/sideprojectsaturday/internal/lib/eventtime"
)

const (
	// Filename имя вложения с приглашением
	Filename = "side-project-saturday.ics"
	// ContentType MIME-тип вложения
	ContentType = "text/calendar"

	summary     = "Side Project Saturday"
	description = "Bring your side project and work alongside other builders."
	location    = "Side Project Saturday, 5th floor"
	productID   = "-//Side Project Saturday//Events//EN"

	googleLayout = "20060102T150405Z"
)

// Invite приглашение на одну встречу.
type Invite struct {
	ICS               string
	GoogleCalendarURL string
}

// NewInvite строит приглашение на встречу в день date.
func NewInvite(w *eventtime.Window, date time.Time, now time.Time) Invite {
	start, end := w.EventHours(date)

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)

	ev := cal.AddEvent("sps-" + w.FormatDate(date) + "@sideprojectsaturday.com")
	ev.SetDtStampTime(now)
	ev.SetStartAt(start)
	ev.SetEndAt(end)
	ev.SetSummary(summary)
	ev.SetDescription(description)
	ev.SetLocation(location)

	q := url.Values{}
	q.Set("action", "TEMPLATE")
	q.Set("text", summary)
	q.Set("dates", start.UTC().Format(googleLayout)+"/"+end.UTC().Format(googleLayout))
	q.Set("details", description)
	q.Set("location", location)

	return Invite{
		ICS:               cal.Serialize(),
		GoogleCalendarURL: "https://calendar.google.com/calendar/render?" + q.Encode(),
	}
}
