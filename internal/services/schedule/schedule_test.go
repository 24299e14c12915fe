package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/sideprojectsaturday/internal/lib/eventtime"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) FindEventByDate(ctx context.Context, date time.Time) (*models.Event, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *RepoMock) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *RepoMock) CreateEvent(ctx context.Context, date time.Time) (*models.Event, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *RepoMock) UpdateEventStatus(ctx context.Context, id string, status models.EventStatus) (*models.Event, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *RepoMock) FindBreaksCovering(ctx context.Context, date time.Time) ([]*models.Break, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Break), args.Error(1)
}

func (m *RepoMock) FindBreaksOverlapping(ctx context.Context, start, end time.Time) ([]*models.Break, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Break), args.Error(1)
}

func (m *RepoMock) CreateBreakCancelingEvents(ctx context.Context, start, end time.Time, reason *string) (*models.Break, int64, error) {
	args := m.Called(ctx, start, end, reason)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).(*models.Break), args.Get(1).(int64), args.Error(2)
}

func (m *RepoMock) ListEventsFrom(ctx context.Context, from time.Time, limit int) ([]*models.Event, error) {
	args := m.Called(ctx, from, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Event), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

var window = eventtime.MustNew(eventtime.DefaultTimezone)

func day(s string) time.Time {
	d, err := window.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func sameDay(want time.Time) any {
	return mock.MatchedBy(func(got time.Time) bool { return got.Equal(want) })
}

func TestScheduleService_ScheduleEvent(t *testing.T) {
	date := day("2024-06-01")

	tests := []struct {
		name       string
		input      time.Time
		setupMocks func(r *RepoMock)
		wantErr    error
	}{
		{
			name:  "успешное планирование",
			input: date,
			setupMocks: func(r *RepoMock) {
				r.On("FindEventByDate", mock.Anything, sameDay(date)).Return(nil, models.ErrNotFound).Once()
				r.On("FindBreaksCovering", mock.Anything, sameDay(date)).Return([]*models.Break{}, nil).Once()
				r.On("CreateEvent", mock.Anything, sameDay(date)).
					Return(&models.Event{ID: "e1", EventDate: date, Status: models.EventScheduled}, nil).Once()
			},
		},
		{
			name:  "время внутри дня нормализуется к полуночи",
			input: date.Add(15 * time.Hour),
			setupMocks: func(r *RepoMock) {
				r.On("FindEventByDate", mock.Anything, sameDay(date)).Return(nil, models.ErrNotFound).Once()
				r.On("FindBreaksCovering", mock.Anything, sameDay(date)).Return(nil, nil).Once()
				r.On("CreateEvent", mock.Anything, sameDay(date)).
					Return(&models.Event{ID: "e1", EventDate: date, Status: models.EventScheduled}, nil).Once()
			},
		},
		{
			name:  "встреча на эту дату уже есть",
			input: date,
			setupMocks: func(r *RepoMock) {
				r.On("FindEventByDate", mock.Anything, sameDay(date)).
					Return(&models.Event{ID: "e0", EventDate: date, Status: models.EventCanceled}, nil).Once()
			},
			wantErr: models.ErrConflict,
		},
		{
			name:  "дата внутри перерыва",
			input: date,
			setupMocks: func(r *RepoMock) {
				r.On("FindEventByDate", mock.Anything, sameDay(date)).Return(nil, models.ErrNotFound).Once()
				r.On("FindBreaksCovering", mock.Anything, sameDay(date)).
					Return([]*models.Break{{ID: "b1", StartDate: date, EndDate: day("2024-06-08")}}, nil).Once()
			},
			wantErr: models.ErrConflict,
		},
		{
			name:  "ошибка хранилища",
			input: date,
			setupMocks: func(r *RepoMock) {
				r.On("FindEventByDate", mock.Anything, sameDay(date)).Return(nil, errors.New("db down")).Once()
			},
			wantErr: errors.New("db down"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setupMocks(repo)
			svc := NewScheduleService(repo, window, newNoopLogger())

			ev, err := svc.ScheduleEvent(context.Background(), tt.input)
			switch {
			case tt.wantErr == nil:
				require.NoError(t, err)
				assert.Equal(t, models.EventScheduled, ev.Status)
			case errors.Is(tt.wantErr, models.ErrConflict):
				assert.ErrorIs(t, err, models.ErrConflict)
				repo.AssertNotCalled(t, "CreateEvent", mock.Anything, mock.Anything)
			default:
				assert.ErrorContains(t, err, tt.wantErr.Error())
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestScheduleService_CancelEvent(t *testing.T) {
	t.Run("отмена идемпотентна", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("UpdateEventStatus", mock.Anything, "e1", models.EventCanceled).
			Return(&models.Event{ID: "e1", Status: models.EventCanceled}, nil).Twice()
		svc := NewScheduleService(repo, window, newNoopLogger())

		for range 2 {
			ev, err := svc.CancelEvent(context.Background(), "e1")
			require.NoError(t, err)
			assert.Equal(t, models.EventCanceled, ev.Status)
		}
		repo.AssertExpectations(t)
	})

	t.Run("несуществующая встреча", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("UpdateEventStatus", mock.Anything, "missing", models.EventCanceled).Return(nil, models.ErrNotFound).Once()
		svc := NewScheduleService(repo, window, newNoopLogger())

		_, err := svc.CancelEvent(context.Background(), "missing")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestScheduleService_RescheduleEvent(t *testing.T) {
	date := day("2024-06-15")

	tests := []struct {
		name       string
		setupMocks func(r *RepoMock)
		wantErr    error
	}{
		{
			name: "отмененная встреча возвращается в расписание",
			setupMocks: func(r *RepoMock) {
				r.On("GetEvent", mock.Anything, "e1").Return(&models.Event{ID: "e1", EventDate: date, Status: models.EventCanceled}, nil).Once()
				r.On("FindBreaksCovering", mock.Anything, sameDay(date)).Return(nil, nil).Once()
				r.On("UpdateEventStatus", mock.Anything, "e1", models.EventScheduled).
					Return(&models.Event{ID: "e1", EventDate: date, Status: models.EventScheduled}, nil).Once()
			},
		},
		{
			name: "запланированную встречу нельзя перепланировать",
			setupMocks: func(r *RepoMock) {
				r.On("GetEvent", mock.Anything, "e1").Return(&models.Event{ID: "e1", EventDate: date, Status: models.EventScheduled}, nil).Once()
			},
			wantErr: models.ErrInvalidState,
		},
		{
			name: "идущую встречу нельзя перепланировать",
			setupMocks: func(r *RepoMock) {
				r.On("GetEvent", mock.Anything, "e1").Return(&models.Event{ID: "e1", EventDate: date, Status: models.EventInProgress}, nil).Once()
			},
			wantErr: models.ErrInvalidState,
		},
		{
			name: "дата попала в перерыв после отмены",
			setupMocks: func(r *RepoMock) {
				r.On("GetEvent", mock.Anything, "e1").Return(&models.Event{ID: "e1", EventDate: date, Status: models.EventCanceled}, nil).Once()
				r.On("FindBreaksCovering", mock.Anything, sameDay(date)).Return([]*models.Break{{ID: "b1"}}, nil).Once()
			},
			wantErr: models.ErrConflict,
		},
		{
			name: "встреча не найдена",
			setupMocks: func(r *RepoMock) {
				r.On("GetEvent", mock.Anything, "e1").Return(nil, models.ErrNotFound).Once()
			},
			wantErr: models.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setupMocks(repo)
			svc := NewScheduleService(repo, window, newNoopLogger())

			ev, err := svc.RescheduleEvent(context.Background(), "e1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				repo.AssertNotCalled(t, "UpdateEventStatus", mock.Anything, "e1", models.EventScheduled)
			} else {
				require.NoError(t, err)
				assert.Equal(t, models.EventScheduled, ev.Status)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestScheduleService_ScheduleBreak(t *testing.T) {
	start, end := day("2024-06-01"), day("2024-06-08")
	reason := "summer"

	tests := []struct {
		name       string
		start, end time.Time
		reason     string
		setupMocks func(r *RepoMock)
		wantErr    error
	}{
		{
			name:   "успешный перерыв",
			start:  start,
			end:    end,
			reason: "  summer ",
			setupMocks: func(r *RepoMock) {
				r.On("FindBreaksOverlapping", mock.Anything, sameDay(start), sameDay(end)).Return(nil, nil).Once()
				r.On("CreateBreakCancelingEvents", mock.Anything, sameDay(start), sameDay(end),
					mock.MatchedBy(func(r *string) bool { return r != nil && *r == reason })).
					Return(&models.Break{ID: "b1", StartDate: start, EndDate: end, Reason: &reason}, int64(1), nil).Once()
			},
		},
		{
			name:  "пустая причина сохраняется как nil",
			start: start,
			end:   end,
			setupMocks: func(r *RepoMock) {
				r.On("FindBreaksOverlapping", mock.Anything, sameDay(start), sameDay(end)).Return(nil, nil).Once()
				r.On("CreateBreakCancelingEvents", mock.Anything, sameDay(start), sameDay(end), (*string)(nil)).
					Return(&models.Break{ID: "b1", StartDate: start, EndDate: end}, int64(0), nil).Once()
			},
		},
		{
			name:       "начало равно концу",
			start:      start,
			end:        start,
			setupMocks: func(_ *RepoMock) {},
			wantErr:    models.ErrInvalidArgument,
		},
		{
			name:       "начало позже конца",
			start:      end,
			end:        start,
			setupMocks: func(_ *RepoMock) {},
			wantErr:    models.ErrInvalidArgument,
		},
		{
			name:  "пересечение с существующим перерывом",
			start: start,
			end:   end,
			setupMocks: func(r *RepoMock) {
				r.On("FindBreaksOverlapping", mock.Anything, sameDay(start), sameDay(end)).
					Return([]*models.Break{{ID: "b0", StartDate: end, EndDate: day("2024-06-20")}}, nil).Once()
			},
			wantErr: models.ErrConflict,
		},
		{
			name:  "гонка: пересечение обнаружено в транзакции",
			start: start,
			end:   end,
			setupMocks: func(r *RepoMock) {
				r.On("FindBreaksOverlapping", mock.Anything, sameDay(start), sameDay(end)).Return(nil, nil).Once()
				r.On("CreateBreakCancelingEvents", mock.Anything, sameDay(start), sameDay(end), (*string)(nil)).
					Return(nil, int64(0), models.ErrConflict).Once()
			},
			wantErr: models.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setupMocks(repo)
			svc := NewScheduleService(repo, window, newNoopLogger())

			b, err := svc.ScheduleBreak(context.Background(), tt.start, tt.end, tt.reason)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "b1", b.ID)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestScheduleService_ScheduleUpcoming(t *testing.T) {
	// понедельник 2024-06-03, ближайшие субботы 06-08 и 06-15
	now := time.Date(2024, 6, 3, 13, 0, 0, 0, time.UTC)
	first, second := day("2024-06-08"), day("2024-06-15")

	repo := new(RepoMock)
	repo.On("FindEventByDate", mock.Anything, sameDay(first)).Return(nil, models.ErrNotFound).Once()
	repo.On("FindBreaksCovering", mock.Anything, sameDay(first)).Return(nil, nil).Once()
	repo.On("CreateEvent", mock.Anything, sameDay(first)).
		Return(&models.Event{ID: "e1", EventDate: first, Status: models.EventScheduled}, nil).Once()
	repo.On("FindEventByDate", mock.Anything, sameDay(second)).
		Return(&models.Event{ID: "e2", EventDate: second, Status: models.EventScheduled}, nil).Once()

	svc := NewScheduleService(repo, window, newNoopLogger())
	created, err := svc.ScheduleUpcoming(context.Background(), now, 2)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "e1", created[0].ID)
	repo.AssertExpectations(t)
}

func TestScheduleService_ScheduleUpcoming_SaturdayAfterEvent(t *testing.T) {
	// суббота 2024-06-01 16:00 по Нью-Йорку, встреча уже прошла
	now := time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)
	next := day("2024-06-08")

	repo := new(RepoMock)
	repo.On("FindEventByDate", mock.Anything, sameDay(next)).Return(nil, models.ErrNotFound).Once()
	repo.On("FindBreaksCovering", mock.Anything, sameDay(next)).Return(nil, nil).Once()
	repo.On("CreateEvent", mock.Anything, sameDay(next)).
		Return(&models.Event{ID: "e1", EventDate: next, Status: models.EventScheduled}, nil).Once()

	svc := NewScheduleService(repo, window, newNoopLogger())
	created, err := svc.ScheduleUpcoming(context.Background(), now, 1)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "e1", created[0].ID)
	repo.AssertNotCalled(t, "FindEventByDate", mock.Anything, sameDay(day("2024-06-01")))
	repo.AssertExpectations(t)
}

func TestScheduleService_ScheduleUpcoming_SaturdayMorning(t *testing.T) {
	// суббота 2024-06-01 08:00 по Нью-Йорку, встреча еще впереди
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	today := day("2024-06-01")

	repo := new(RepoMock)
	repo.On("FindEventByDate", mock.Anything, sameDay(today)).
		Return(&models.Event{ID: "e0", EventDate: today, Status: models.EventScheduled}, nil).Once()

	svc := NewScheduleService(repo, window, newNoopLogger())
	created, err := svc.ScheduleUpcoming(context.Background(), now, 1)
	require.NoError(t, err)
	assert.Empty(t, created)
	repo.AssertExpectations(t)
}

func TestScheduleService_ScheduleUpcoming_CollectsErrors(t *testing.T) {
	now := time.Date(2024, 6, 3, 13, 0, 0, 0, time.UTC)

	repo := new(RepoMock)
	repo.On("FindEventByDate", mock.Anything, mock.Anything).Return(nil, errors.New("db down")).Twice()

	svc := NewScheduleService(repo, window, newNoopLogger())
	created, err := svc.ScheduleUpcoming(context.Background(), now, 2)
	assert.Empty(t, created)
	assert.ErrorContains(t, err, "db down")
	repo.AssertExpectations(t)
}

func TestScheduleService_UpcomingEvents(t *testing.T) {
	// 2024-06-01 10:30 по Нью-Йорку
	now := time.Date(2024, 6, 1, 14, 30, 0, 0, time.UTC)
	events := []*models.Event{
		{ID: "e1", EventDate: day("2024-06-01"), Status: models.EventScheduled},
		{ID: "e2", EventDate: day("2024-06-08"), Status: models.EventCanceled},
	}

	t.Run("список с начала текущего дня", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("ListEventsFrom", mock.Anything, sameDay(day("2024-06-01")), 5).Return(events, nil).Once()

		svc := NewScheduleService(repo, window, newNoopLogger())
		got, err := svc.UpcomingEvents(context.Background(), now, 5)
		require.NoError(t, err)
		assert.Equal(t, events, got)
		repo.AssertExpectations(t)
	})

	t.Run("некорректный лимит", func(t *testing.T) {
		repo := new(RepoMock)
		svc := NewScheduleService(repo, window, newNoopLogger())

		for _, limit := range []int{0, -1, 53} {
			_, err := svc.UpcomingEvents(context.Background(), now, limit)
			assert.ErrorIs(t, err, models.ErrInvalidArgument)
		}
		repo.AssertNotCalled(t, "ListEventsFrom", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ошибка хранилища", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("ListEventsFrom", mock.Anything, mock.Anything, 5).Return(nil, errors.New("db down")).Once()

		svc := NewScheduleService(repo, window, newNoopLogger())
		_, err := svc.UpcomingEvents(context.Background(), now, 5)
		assert.ErrorContains(t, err, "db down")
	})
}
