// Package services синхронизирует аудиторию рассылки с пользователями
// по сообщениям очереди user_events.
package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/sideprojectsaturday/internal/lib/metrics"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/lib/sl"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/models"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/rabbitmq"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/resend"
)

// MailingList аудитория рассылки и отправка писем.
type MailingList interface {
	CreateContact(ctx context.Context, email, firstName string, unsubscribed bool) error
	GetContact(ctx context.Context, email string) (*resend.Contact, error)
	UpdateContact(ctx context.Context, email string, unsubscribed bool) error
	RemoveContact(ctx context.Context, email string) error
	SendEmail(ctx context.Context, email resend.Email, idempotencyKey string) (string, error)
}

// ContactSyncService обрабатывает сообщения user_create и user_update.
type ContactSyncService struct {
	list    MailingList
	from    string
	siteURL string
	locks   *keyedMutex
	log     *slog.Logger
}

// NewContactSyncService создает ContactSyncService. from адрес отправителя
// приветственного письма, siteURL адрес сайта для ссылок в письме.
func NewContactSyncService(list MailingList, from, siteURL string, log *slog.Logger) *ContactSyncService {
	return &ContactSyncService{
		list:    list,
		from:    from,
		siteURL: strings.TrimRight(siteURL, "/"),
		locks:   newKeyedMutex(),
		log:     log,
	}
}

// Handle разбирает и обрабатывает одно сообщение. Нераспознанное сообщение
// подтверждается: повторная доставка его не исправит.
func (s *ContactSyncService) Handle(ctx context.Context, body []byte) rabbitmq.Outcome {
	const op = "services.ContactSync.Handle"
	log := s.log.With(slog.String("op", op))

	ev, err := models.UnmarshalUserEvent(body)
	if err != nil {
		log.Error("dropping undecodable message", sl.Err(err), slog.String("body", string(body)))
		metrics.ContactSyncMessages.WithLabelValues("unknown", "dropped").Inc()
		return rabbitmq.Ack
	}

	log = log.With(slog.String("type", string(ev.EventType())), slog.Any("emails", ev.ContactEmails()))
	unlock := s.locks.Lock(ev.ContactEmails()...)
	defer unlock()

	if err := s.Process(ctx, ev); err != nil {
		log.Error("failed to process message", sl.Err(err))
		metrics.ContactSyncMessages.WithLabelValues(string(ev.EventType()), rabbitmq.Retry.String()).Inc()
		return rabbitmq.Retry
	}

	log.Debug("message processed")
	metrics.ContactSyncMessages.WithLabelValues(string(ev.EventType()), rabbitmq.Ack.String()).Inc()
	return rabbitmq.Ack
}

// Process применяет событие к аудитории рассылки.
func (s *ContactSyncService) Process(ctx context.Context, ev models.UserEvent) error {
	switch e := ev.(type) {
	case models.UserCreateEvent:
		return s.createContact(ctx, e)
	case models.UserUpdateEvent:
		switch {
		case e.IsEmailChange():
			return s.changeEmail(ctx, e)
		case e.Subscribed != nil:
			return s.updateSubscription(ctx, e)
		default:
			s.log.Info("no updates needed for contact", slog.String("email", e.Email))
			return nil
		}
	default:
		return fmt.Errorf("%w: unsupported event %T", models.ErrInvalidArgument, ev)
	}
}

// createContact добавляет контакт подписанным. Существующий контакт
// переводится в подписанные. Ошибка отправки приветствия ведет к повтору,
// при котором контакт уже существует, а письмо защищено ключом идемпотентности.
func (s *ContactSyncService) createContact(ctx context.Context, e models.UserCreateEvent) error {
	const op = "services.ContactSync.createContact"

	if err := s.upsertContact(ctx, e.Email, firstName(e.Name), false); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !e.SendWelcomeEmail {
		return nil
	}
	if _, err := s.list.SendEmail(ctx, s.welcomeEmail(e), resend.IdempotencyKey("welcome-"+strings.ToLower(e.Email))); err != nil {
		return fmt.Errorf("%s: welcome email: %w", op, err)
	}
	s.log.Info("welcome email sent", slog.String("email", e.Email))
	return nil
}

// changeEmail переносит контакт на новый адрес: чтение старого, создание
// нового, удаление старого. Каждый шаг переживает повторную доставку.
func (s *ContactSyncService) changeEmail(ctx context.Context, e models.UserUpdateEvent) error {
	const op = "services.ContactSync.changeEmail"
	newEmail := *e.NewEmail

	var unsubscribed *bool
	if e.Subscribed != nil {
		v := !*e.Subscribed
		unsubscribed = &v
	} else {
		existing, err := s.list.GetContact(ctx, e.Email)
		switch {
		case err == nil:
			unsubscribed = &existing.Unsubscribed
		case errors.Is(err, models.ErrContactNotFound):
			// старый контакт уже удален прошлой попыткой или не существовал
			s.log.Warn("old contact not found, subscription state unknown", slog.String("email", e.Email))
		default:
			return fmt.Errorf("%s: get old contact: %w", op, err)
		}
	}

	if unsubscribed != nil {
		if err := s.upsertContact(ctx, newEmail, firstName(e.Name), *unsubscribed); err != nil {
			return fmt.Errorf("%s: create new contact: %w", op, err)
		}
	} else {
		// статус неизвестен: контакт создается без отписки и в Resend
		// считается подписанным; уже существующий не трогаем
		err := s.list.CreateContact(ctx, newEmail, firstName(e.Name), false)
		if err != nil && !errors.Is(err, models.ErrContactExists) {
			return fmt.Errorf("%s: create new contact: %w", op, err)
		}
	}

	if err := s.list.RemoveContact(ctx, e.Email); err != nil && !errors.Is(err, models.ErrContactNotFound) {
		return fmt.Errorf("%s: remove old contact: %w", op, err)
	}

	s.log.Info("contact email updated", slog.String("from", e.Email), slog.String("to", newEmail))
	return nil
}

// updateSubscription меняет статус подписки. Отсутствующий контакт создается.
func (s *ContactSyncService) updateSubscription(ctx context.Context, e models.UserUpdateEvent) error {
	const op = "services.ContactSync.updateSubscription"
	unsubscribed := !*e.Subscribed

	err := s.list.UpdateContact(ctx, e.Email, unsubscribed)
	if errors.Is(err, models.ErrContactNotFound) {
		err = s.list.CreateContact(ctx, e.Email, firstName(e.Name), unsubscribed)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("contact subscription updated", slog.String("email", e.Email), slog.Bool("subscribed", *e.Subscribed))
	return nil
}

// upsertContact создает контакт, а если он уже есть, обновляет подписку.
func (s *ContactSyncService) upsertContact(ctx context.Context, email, name string, unsubscribed bool) error {
	err := s.list.CreateContact(ctx, email, name, unsubscribed)
	if errors.Is(err, models.ErrContactExists) {
		return s.list.UpdateContact(ctx, email, unsubscribed)
	}
	return err
}

func (s *ContactSyncService) welcomeEmail(e models.UserCreateEvent) resend.Email {
	name := e.Email
	if n := firstName(e.Name); n != "" {
		name = n
	}
	return resend.Email{
		From:    s.from,
		To:      []string{e.Email},
		Subject: "Welcome to Side Project Saturday!",
		HTML: fmt.Sprintf(
			"<p>Hi %s,</p><p>Welcome to Side Project Saturday! We meet every Saturday from 9 AM to 12 PM.</p>"+
				"<p>RSVP for the next event at <a href=\"%s\">%s</a>.</p>",
			html.EscapeString(name), s.siteURL, s.siteURL,
		),
		Text: fmt.Sprintf("Hi %s,\n\nWelcome to Side Project Saturday! We meet every Saturday from 9 AM to 12 PM.\n\nRSVP for the next event at %s.\n",
			name, s.siteURL),
	}
}

func firstName(name *string) string {
	if name == nil {
		return ""
	}
	return strings.TrimSpace(*name)
}
