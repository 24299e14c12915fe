// Package eventtime содержит чистые функции для работы со временем встреч:
// проверку окна субботней встречи, границы календарного дня и даты ближайших суббот.
// Все вычисления выполняются в часовом поясе встречи с учетом перехода на летнее время.
package eventtime

import (
	"fmt"
	"time"
	// Встроенная база часовых поясов, чтобы не зависеть от tzdata в контейнере.
	_ "time/tzdata"

	"github.com/teambition/rrule-go"
)

const (
	// DefaultTimezone часовой пояс встречи, US Eastern
	DefaultTimezone = "America/New_York"
	// DateLayout формат календарной даты в запросах
	DateLayout = time.DateOnly

	openHour  = 9
	closeHour = 12
)

// Window описывает еженедельное окно встречи в заданном часовом поясе.
type Window struct {
	loc *time.Location
}

// Default окно встречи по восточному времени США.
var Default = MustNew(DefaultTimezone)

// New создает окно для часового пояса tz.
func New(tz string) (*Window, error) {
	const op = "eventtime.New"
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Window{loc: loc}, nil
}

// MustNew как New, но паникует при неизвестном часовом поясе.
func MustNew(tz string) *Window {
	w, err := New(tz)
	if err != nil {
		panic(err)
	}
	return w
}

// Location возвращает часовой пояс окна.
func (w *Window) Location() *time.Location {
	return w.loc
}

// IsWithinEventHours возвращает true, если now приходится на субботу
// с 09:00:00 включительно до 12:00:00 не включительно по местному времени.
func (w *Window) IsWithinEventHours(now time.Time) bool {
	local := now.In(w.loc)
	if local.Weekday() != time.Saturday {
		return false
	}
	hour := local.Hour()
	return hour >= openHour && hour < closeHour
}

// StartOfDay возвращает местную полночь календарного дня t.
func (w *Window) StartOfDay(t time.Time) time.Time {
	local := t.In(w.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, w.loc)
}

// DayRange возвращает полуоткрытый интервал [местная полночь, следующая местная полночь)
// в UTC. В дни перехода на летнее время интервал длится 23 или 25 часов.
func (w *Window) DayRange(t time.Time) (start, end time.Time) {
	s := w.StartOfDay(t)
	return s.UTC(), s.AddDate(0, 0, 1).UTC()
}

// EventHours возвращает начало и конец встречи в день date.
func (w *Window) EventHours(date time.Time) (start, end time.Time) {
	local := date.In(w.loc)
	start = time.Date(local.Year(), local.Month(), local.Day(), openHour, 0, 0, 0, w.loc)
	end = time.Date(local.Year(), local.Month(), local.Day(), closeHour, 0, 0, 0, w.loc)
	return start, end
}

// ParseDate разбирает дату в формате YYYY-MM-DD как местную полночь.
func (w *Window) ParseDate(s string) (time.Time, error) {
	const op = "eventtime.ParseDate"
	t, err := time.ParseInLocation(DateLayout, s, w.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// FormatDate возвращает календарную дату t в часовом поясе окна.
func (w *Window) FormatDate(t time.Time) string {
	return t.In(w.loc).Format(DateLayout)
}

// UpcomingSaturdays возвращает n ближайших суббот начиная с дня from (включительно),
// каждую как местную полночь.
func (w *Window) UpcomingSaturdays(from time.Time, n int) ([]time.Time, error) {
	const op = "eventtime.UpcomingSaturdays"
	if n <= 0 {
		return nil, nil
	}
	r, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: []rrule.Weekday{rrule.SA},
		Dtstart:   w.StartOfDay(from),
		Count:     n,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	dates := r.All()
	for i := range dates {
		dates[i] = w.StartOfDay(dates[i])
	}
	return dates, nil
}

// SchedulingStart возвращает первый день, на который еще можно планировать
// встречу: сегодня, пока окно встречи не закончилось, иначе завтра.
func (w *Window) SchedulingStart(now time.Time) time.Time {
	today := w.StartOfDay(now)
	if _, end := w.EventHours(today); !now.Before(end) {
		return today.AddDate(0, 0, 1)
	}
	return today
}

// IsWithinEventHours проверяет окно встречи по восточному времени США.
func IsWithinEventHours(now time.Time) bool {
	return Default.IsWithinEventHours(now)
}

// DayRange возвращает границы дня по восточному времени США.
func DayRange(t time.Time) (start, end time.Time) {
	return Default.DayRange(t)
}
