package contactsync

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/sideprojectsaturday/internal/config"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/models"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/resend"
)

type recordingList struct {
	sent []resend.Email
}

func (l *recordingList) CreateContact(context.Context, string, string, bool) error { return nil }

func (l *recordingList) GetContact(_ context.Context, email string) (*resend.Contact, error) {
	return &resend.Contact{Email: email}, nil
}

func (l *recordingList) UpdateContact(context.Context, string, bool) error { return nil }

func (l *recordingList) RemoveContact(context.Context, string) error { return nil }

func (l *recordingList) SendEmail(_ context.Context, email resend.Email, _ string) (string, error) {
	l.sent = append(l.sent, email)
	return "em_1", nil
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestNewService_WelcomeEmailSender(t *testing.T) {
	cfg := &config.Config{Resend: config.Resend{
		From:       "noreply@sps.test",
		EventsFrom: "Side Project Saturday <events@sps.test>",
		SiteURL:    "https://sps.test/",
	}}
	list := &recordingList{}

	svc := newService(cfg, list, newNoopLogger())
	err := svc.Process(context.Background(), models.UserCreateEvent{Email: "ada@example.com", SendWelcomeEmail: true})
	require.NoError(t, err)

	require.Len(t, list.sent, 1)
	assert.Equal(t, "noreply@sps.test", list.sent[0].From)
	assert.Equal(t, []string{"ada@example.com"}, list.sent[0].To)
}
