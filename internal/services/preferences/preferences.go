// Package services реализует настройки участника: регистрацию, подписку
// на рассылку, запись на встречу и смену email.
package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/sideprojectsaturday/internal/lib/calendar"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/lib/eventtime"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/lib/sl"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/models"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/resend"
)

// UserRepository хранилище пользователей.
type UserRepository interface {
	CreateUser(ctx context.Context, email string, name *string, subscribed bool) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpdateUserField(ctx context.Context, id string, field models.UserField, value bool) (*models.User, error)
	UpdateUserEmail(ctx context.Context, id, email string) (*models.User, error)
}

// EventFinder ищет ближайшую запланированную встречу.
type EventFinder interface {
	FindNextScheduledEvent(ctx context.Context, from time.Time) (*models.Event, error)
}

// Publisher ставит сообщение синхронизации контакта в очередь.
type Publisher interface {
	Publish(ctx context.Context, ev models.UserEvent) error
}

// Mailer отправляет письма.
type Mailer interface {
	SendEmail(ctx context.Context, email resend.Email, idempotencyKey string) (string, error)
}

// PreferenceService меняет настройки участника и ставит в очередь
// синхронизацию аудитории рассылки.
type PreferenceService struct {
	users      UserRepository
	events     EventFinder
	publisher  Publisher
	mailer     Mailer
	window     *eventtime.Window
	eventsFrom string
	log        *slog.Logger
	now        func() time.Time
}

// NewPreferenceService создает PreferenceService. eventsFrom адрес
// отправителя подтверждений записи на встречу.
func NewPreferenceService(
	users UserRepository,
	events EventFinder,
	publisher Publisher,
	mailer Mailer,
	window *eventtime.Window,
	eventsFrom string,
	log *slog.Logger,
) *PreferenceService {
	return &PreferenceService{
		users:      users,
		events:     events,
		publisher:  publisher,
		mailer:     mailer,
		window:     window,
		eventsFrom: eventsFrom,
		log:        log,
		now:        time.Now,
	}
}

// Register создает подписанного пользователя и ставит в очередь создание
// контакта с приветственным письмом.
func (s *PreferenceService) Register(ctx context.Context, email string, name *string) (*models.User, error) {
	const op = "services.Register"

	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%s: %w: email is empty", op, models.ErrInvalidArgument)
	}
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			name = nil
		} else {
			name = &trimmed
		}
	}

	u, err := s.users.CreateUser(ctx, email, name, true)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.enqueue(ctx, models.UserCreateEvent{Email: u.Email, Name: u.Name, SendWelcomeEmail: true})
	s.log.Info("user registered", slog.String("user_id", u.ID))
	return u, nil
}

// SetSubscribed сохраняет подписку на рассылку и ставит в очередь ее синхронизацию.
func (s *PreferenceService) SetSubscribed(ctx context.Context, userID string, subscribed bool) (*models.User, error) {
	const op = "services.SetSubscribed"

	u, err := s.users.UpdateUserField(ctx, userID, models.FieldSubscribed, subscribed)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.enqueue(ctx, models.UserUpdateEvent{Email: u.Email, Name: u.Name, Subscribed: &subscribed})
	return u, nil
}

// SetRSVP записывает участника на ближайшую встречу или снимает запись.
// Заблокированный участник получает models.ErrInvalidState. При записи
// отправляется подтверждение с приглашением в календарь; ошибка отправки
// только логируется.
func (s *PreferenceService) SetRSVP(ctx context.Context, userID string, rsvp bool) (*models.User, error) {
	const op = "services.SetRSVP"

	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if u.Banned {
		return nil, fmt.Errorf("%s: %w: user is banned", op, models.ErrInvalidState)
	}

	u, err = s.users.UpdateUserField(ctx, userID, models.FieldRSVPed, rsvp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if rsvp {
		if err := s.sendRSVPConfirmation(ctx, u); err != nil {
			s.log.Error("failed to send rsvp confirmation", slog.String("user_id", u.ID), sl.Err(err))
		}
	}
	return u, nil
}

// ChangeEmail меняет адрес участника и ставит в очередь перенос контакта.
// Занятый адрес дает models.ErrConflict.
func (s *PreferenceService) ChangeEmail(ctx context.Context, userID, newEmail string) (*models.User, error) {
	const op = "services.ChangeEmail"

	newEmail = strings.TrimSpace(newEmail)
	if newEmail == "" {
		return nil, fmt.Errorf("%s: %w: email is empty", op, models.ErrInvalidArgument)
	}

	old, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if strings.EqualFold(old.Email, newEmail) {
		return old, nil
	}

	u, err := s.users.UpdateUserEmail(ctx, userID, newEmail)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	subscribed := u.Subscribed
	s.enqueue(ctx, models.UserUpdateEvent{
		Email:      old.Email,
		Name:       u.Name,
		NewEmail:   &u.Email,
		Subscribed: &subscribed,
	})
	s.log.Info("user email changed", slog.String("user_id", u.ID))
	return u, nil
}

// UpdateUserField переключает поле пользователя по запросу администратора.
// Запись на встречу меняется без письма-подтверждения.
func (s *PreferenceService) UpdateUserField(ctx context.Context, userID string, field models.UserField, value bool) (*models.User, error) {
	const op = "services.UpdateUserField"

	switch field {
	case models.FieldSubscribed:
		return s.SetSubscribed(ctx, userID, value)
	case models.FieldRSVPed:
		u, err := s.users.UpdateUserField(ctx, userID, field, value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return u, nil
	default:
		return nil, fmt.Errorf("%s: %w: unknown field %q", op, models.ErrInvalidArgument, field)
	}
}

// enqueue публикует сообщение после успешной записи. Ошибка публикации
// только логируется: пользователь уже сохранен.
func (s *PreferenceService) enqueue(ctx context.Context, ev models.UserEvent) {
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.log.Error("failed to enqueue contact sync",
			slog.String("type", string(ev.EventType())),
			slog.Any("emails", ev.ContactEmails()),
			sl.Err(err),
		)
	}
}

func (s *PreferenceService) sendRSVPConfirmation(ctx context.Context, u *models.User) error {
	const op = "services.sendRSVPConfirmation"
	now := s.now()

	ev, err := s.events.FindNextScheduledEvent(ctx, s.window.StartOfDay(now))
	if errors.Is(err, models.ErrNotFound) {
		s.log.Info("no upcoming event, skipping rsvp confirmation", slog.String("user_id", u.ID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	date := s.window.FormatDate(ev.EventDate)
	invite := calendar.NewInvite(s.window, ev.EventDate, now)
	pretty := ev.EventDate.In(s.window.Location()).Format("Monday, January 2, 2006")
	name := u.DisplayName()

	email := resend.Email{
		From:    s.eventsFrom,
		To:      []string{u.Email},
		Subject: "You're in! Side Project Saturday on " + pretty,
		HTML: fmt.Sprintf(
			"<p>Hi %s,</p><p>Thanks for RSVPing to Side Project Saturday on <strong>%s</strong>, 9 AM to 12 PM.</p>"+
				"<p><a href=\"%s\">Add it to Google Calendar</a> or open the attached invite.</p>",
			html.EscapeString(name), pretty, html.EscapeString(invite.GoogleCalendarURL),
		),
		Text: fmt.Sprintf("Hi %s,\n\nThanks for RSVPing to Side Project Saturday on %s, 9 AM to 12 PM.\n\nAdd it to Google Calendar: %s\n",
			name, pretty, invite.GoogleCalendarURL),
		Attachments: []resend.Attachment{{
			Filename:    calendar.Filename,
			Content:     []byte(invite.ICS),
			ContentType: calendar.ContentType,
		}},
	}

	key := resend.IdempotencyKey("rsvp-confirmation-" + u.ID + "-" + date)
	if _, err := s.mailer.SendEmail(ctx, email, key); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("rsvp confirmation sent", slog.String("user_id", u.ID), slog.String("date", date))
	return nil
}
