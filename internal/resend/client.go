// Package resend клиент почтового сервиса Resend: контакты аудитории
// рассылки и отправка писем.
package resend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	resendgo "github.com/resend/resend-go/v2"

	"github.com/magabrotheeeer/sideprojectsaturday/internal/config"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/models"
)

// Client клиент Resend, привязанный к одной аудитории.
type Client struct {
	api        *resendgo.Client
	audienceID string
}

// NewClient создает клиент Resend.
func NewClient(cfg config.Resend) *Client {
	timeout := cfg.ResendTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	httpClient := &http.Client{
		Timeout:   timeout,
		Transport: statusTransport{next: http.DefaultTransport},
	}

	api := resendgo.NewCustomClient(httpClient, cfg.APIKey)
	if cfg.ResendBaseURL != "" {
		if u, err := url.Parse(strings.TrimRight(cfg.ResendBaseURL, "/") + "/"); err == nil {
			api.BaseURL = u
		}
	}
	return &Client{api: api, audienceID: cfg.AudienceID}
}

// statusError ответ Resend с кодом 404 или 409. SDK сводит все ошибки к
// тексту, поэтому эти коды перехватываются на уровне транспорта.
type statusError struct {
	code    int
	message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("resend: status %d: %s", e.code, e.message)
}

type statusTransport struct {
	next http.RoundTripper
}

func (t statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusNotFound && resp.StatusCode != http.StatusConflict {
		return resp, nil
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	var body errorResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body)
	return nil, &statusError{code: resp.StatusCode, message: body.Message}
}

// mapError приводит ошибку SDK к доменной: 404 дает ErrContactNotFound,
// 409 или "already exists" дает ErrContactExists, прочее ErrExternalService.
func mapError(err error) error {
	var se *statusError
	if errors.As(err, &se) {
		switch se.code {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", models.ErrContactNotFound, se.message)
		case http.StatusConflict:
			return fmt.Errorf("%w: %s", models.ErrContactExists, se.message)
		}
	}
	if strings.Contains(strings.ToLower(err.Error()), "already exists") {
		return fmt.Errorf("%w: %w", models.ErrContactExists, err)
	}
	return fmt.Errorf("%w: %w", models.ErrExternalService, err)
}

// CreateContact добавляет контакт в аудиторию. Контакт без отписки
// считается подписанным.
func (c *Client) CreateContact(ctx context.Context, email, firstName string, unsubscribed bool) error {
	const op = "resend.CreateContact"

	_, err := c.api.Contacts.CreateWithContext(ctx, &resendgo.CreateContactRequest{
		Email:        email,
		AudienceId:   c.audienceID,
		FirstName:    firstName,
		Unsubscribed: unsubscribed,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return nil
}

// GetContact возвращает контакт по email.
func (c *Client) GetContact(ctx context.Context, email string) (*Contact, error) {
	const op = "resend.GetContact"

	contact, err := c.api.Contacts.GetWithContext(ctx, c.audienceID, email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return &Contact{
		ID:           contact.Id,
		Email:        contact.Email,
		FirstName:    contact.FirstName,
		Unsubscribed: contact.Unsubscribed,
	}, nil
}

// UpdateContact меняет статус подписки контакта.
func (c *Client) UpdateContact(ctx context.Context, email string, unsubscribed bool) error {
	const op = "resend.UpdateContact"

	req := &resendgo.UpdateContactRequest{
		Email:      email,
		AudienceId: c.audienceID,
	}
	req.SetUnsubscribed(unsubscribed)

	if _, err := c.api.Contacts.UpdateWithContext(ctx, req); err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return nil
}

// RemoveContact удаляет контакт из аудитории.
func (c *Client) RemoveContact(ctx context.Context, email string) error {
	const op = "resend.RemoveContact"

	if _, err := c.api.Contacts.RemoveWithContext(ctx, c.audienceID, email); err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return nil
}

// SendEmail отправляет письмо. Непустой idempotencyKey защищает от
// повторной отправки при повторной доставке сообщения.
func (c *Client) SendEmail(ctx context.Context, email Email, idempotencyKey string) (string, error) {
	const op = "resend.SendEmail"

	params := &resendgo.SendEmailRequest{
		From:    email.From,
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
		Headers: email.Headers,
	}
	for _, a := range email.Attachments {
		params.Attachments = append(params.Attachments, &resendgo.Attachment{
			Filename:    a.Filename,
			Content:     a.Content,
			ContentType: a.ContentType,
		})
	}

	resp, err := c.api.Emails.SendWithOptions(ctx, params, &resendgo.SendEmailOptions{IdempotencyKey: idempotencyKey})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, mapError(err))
	}
	return resp.Id, nil
}
