package resend

// Contact контакт аудитории рассылки.
type Contact struct {
	ID           string
	Email        string
	FirstName    string
	Unsubscribed bool
}

// Attachment вложение письма.
type Attachment struct {
	Filename    string
	Content     []byte
	ContentType string
}

// Email исходящее письмо.
type Email struct {
	From        string
	To          []string
	Subject     string
	HTML        string
	Text        string
	Attachments []Attachment
	Headers     map[string]string
}

type errorResponse struct {
	StatusCode int    `json:"statusCode"`
	Name       string `json:"name"`
	Message    string `json:"message"`
}
