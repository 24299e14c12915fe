package resend

import (
	"context"
	"log/slog"
)

// LogClient заменяет Resend в локальном окружении: ничего не отправляет,
// только пишет вызовы в лог.
type LogClient struct {
	log *slog.Logger
}

// NewLogClient создает LogClient.
func NewLogClient(log *slog.Logger) *LogClient {
	return &LogClient{log: log.With(slog.String("component", "resend.mock"))}
}

func (c *LogClient) CreateContact(_ context.Context, email, firstName string, unsubscribed bool) error {
	c.log.Info("create contact", slog.String("email", email), slog.String("first_name", firstName), slog.Bool("unsubscribed", unsubscribed))
	return nil
}

func (c *LogClient) GetContact(_ context.Context, email string) (*Contact, error) {
	c.log.Info("get contact", slog.String("email", email))
	return &Contact{ID: "mock-contact-id", Email: email, Unsubscribed: false}, nil
}

func (c *LogClient) UpdateContact(_ context.Context, email string, unsubscribed bool) error {
	c.log.Info("update contact", slog.String("email", email), slog.Bool("unsubscribed", unsubscribed))
	return nil
}

func (c *LogClient) RemoveContact(_ context.Context, email string) error {
	c.log.Info("remove contact", slog.String("email", email))
	return nil
}

func (c *LogClient) SendEmail(_ context.Context, email Email, idempotencyKey string) (string, error) {
	c.log.Info("send email",
		slog.String("from", email.From),
		slog.Any("to", email.To),
		slog.String("subject", email.Subject),
		slog.Int("attachments", len(email.Attachments)),
		slog.String("idempotency_key", idempotencyKey),
	)
	return "mock-email-id", nil
}
