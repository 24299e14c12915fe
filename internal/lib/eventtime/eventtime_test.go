package eventtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utc(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestIsWithinEventHours_TableTests(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		// 2024-06-01 суббота, летнее время (UTC-4)
		{name: "08:59:59 EDT", now: utc("2024-06-01T12:59:59Z"), want: false},
		{name: "09:00:00 EDT", now: utc("2024-06-01T13:00:00Z"), want: true},
		{name: "11:59:59 EDT", now: utc("2024-06-01T15:59:59Z"), want: true},
		{name: "12:00:00 EDT", now: utc("2024-06-01T16:00:00Z"), want: false},
		// 2024-01-06 суббота, зимнее время (UTC-5)
		{name: "08:59:59 EST", now: utc("2024-01-06T13:59:59Z"), want: false},
		{name: "09:00:00 EST", now: utc("2024-01-06T14:00:00Z"), want: true},
		{name: "11:59:59 EST", now: utc("2024-01-06T16:59:59Z"), want: true},
		{name: "12:00:00 EST", now: utc("2024-01-06T17:00:00Z"), want: false},
		// 13:00 UTC зимой это 08:00 по Нью-Йорку
		{name: "летнее смещение не применяется зимой", now: utc("2024-01-06T13:30:00Z"), want: false},
		{name: "пятница в 10 утра", now: utc("2024-05-31T14:00:00Z"), want: false},
		{name: "воскресенье в 10 утра", now: utc("2024-06-02T14:00:00Z"), want: false},
		// суббота 01:00 UTC это еще пятница по Нью-Йорку
		{name: "суббота по UTC, пятница по местному", now: utc("2024-06-01T01:00:00Z"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsWithinEventHours(tt.now))
		})
	}
}

func TestIsWithinEventHours_IgnoresInputLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	now := utc("2024-06-01T14:00:00Z").In(tokyo)
	assert.True(t, IsWithinEventHours(now))
}

func TestDayRange(t *testing.T) {
	tests := []struct {
		name      string
		at        time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "обычный летний день",
			at:        utc("2024-06-01T14:00:00Z"),
			wantStart: utc("2024-06-01T04:00:00Z"),
			wantEnd:   utc("2024-06-02T04:00:00Z"),
		},
		{
			name:      "поздний вечер по местному времени относится к тому же дню",
			at:        utc("2024-06-02T03:30:00Z"),
			wantStart: utc("2024-06-01T04:00:00Z"),
			wantEnd:   utc("2024-06-02T04:00:00Z"),
		},
		{
			name:      "переход на летнее время, 23 часа",
			at:        utc("2024-03-10T12:00:00Z"),
			wantStart: utc("2024-03-10T05:00:00Z"),
			wantEnd:   utc("2024-03-11T04:00:00Z"),
		},
		{
			name:      "переход на зимнее время, 25 часов",
			at:        utc("2024-11-03T12:00:00Z"),
			wantStart: utc("2024-11-03T04:00:00Z"),
			wantEnd:   utc("2024-11-04T05:00:00Z"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := DayRange(tt.at)
			assert.True(t, tt.wantStart.Equal(start), "start: %s", start)
			assert.True(t, tt.wantEnd.Equal(end), "end: %s", end)
			assert.Equal(t, time.UTC, start.Location())
		})
	}
}

func TestWindow_ParseAndFormatDate(t *testing.T) {
	d, err := Default.ParseDate("2024-06-01")
	require.NoError(t, err)
	assert.True(t, utc("2024-06-01T04:00:00Z").Equal(d))
	assert.Equal(t, "2024-06-01", Default.FormatDate(d))

	_, err = Default.ParseDate("01-06-2024")
	assert.Error(t, err)
}

func TestWindow_UpcomingSaturdays(t *testing.T) {
	monday := utc("2024-06-03T13:00:00Z")
	dates, err := Default.UpcomingSaturdays(monday, 2)
	require.NoError(t, err)
	require.Len(t, dates, 2)
	assert.Equal(t, "2024-06-08", Default.FormatDate(dates[0]))
	assert.Equal(t, "2024-06-15", Default.FormatDate(dates[1]))
	assert.Equal(t, 0, dates[0].Hour())

	saturday := utc("2024-06-01T20:00:00Z")
	dates, err = Default.UpcomingSaturdays(saturday, 1)
	require.NoError(t, err)
	require.Len(t, dates, 1)
	assert.Equal(t, "2024-06-01", Default.FormatDate(dates[0]))

	dates, err = Default.UpcomingSaturdays(saturday, 0)
	require.NoError(t, err)
	assert.Empty(t, dates)
}

func TestWindow_SchedulingStart(t *testing.T) {
	tests := []struct {
		name string
		now  string
		want string
	}{
		{name: "суббота до встречи", now: "2024-06-01T12:00:00Z", want: "2024-06-01"},
		{name: "суббота во время встречи", now: "2024-06-01T15:59:59Z", want: "2024-06-01"},
		{name: "суббота ровно в полдень", now: "2024-06-01T16:00:00Z", want: "2024-06-02"},
		{name: "суббота вечером", now: "2024-06-01T20:00:00Z", want: "2024-06-02"},
		{name: "понедельник днем", now: "2024-06-03T13:00:00Z", want: "2024-06-03"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Default.SchedulingStart(utc(tt.now))
			assert.Equal(t, tt.want, Default.FormatDate(got))
			assert.Equal(t, 0, got.Hour())
		})
	}

	// суббота после полудня: ближайшая суббота уже следующая
	dates, err := Default.UpcomingSaturdays(Default.SchedulingStart(utc("2024-06-01T20:00:00Z")), 1)
	require.NoError(t, err)
	require.Len(t, dates, 1)
	assert.Equal(t, "2024-06-08", Default.FormatDate(dates[0]))
}

func TestNew_UnknownTimezone(t *testing.T) {
	_, err := New("Mars/Olympus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "eventtime.New")
}

func TestWindow_EventHours(t *testing.T) {
	w := MustNew(DefaultTimezone)
	date, err := w.ParseDate("2025-03-15")
	require.NoError(t, err)

	start, end := w.EventHours(date)
	assert.Equal(t, time.Date(2025, 3, 15, 13, 0, 0, 0, time.UTC), start.UTC())
	assert.Equal(t, time.Date(2025, 3, 15, 16, 0, 0, 0, time.UTC), end.UTC())
}
