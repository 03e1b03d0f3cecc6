package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either the rendered Subject/Text/HTML are set, or Template and Data are.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // e.g. "verify_email"
	Data     map[string]any `json:"data,omitempty"`
}
