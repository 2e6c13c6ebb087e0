package email

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"net/smtp"

	"cinemai/internal/models"
	"cinemai/shared/config"
	"cinemai/shared/media"
)

//go:embed digest.html
var digestTemplate string

var digestTmpl = template.Must(template.New("digest").Funcs(template.FuncMap{
	"poster": media.PosterOrFallback,
	"percent": func(f float64) int {
		return int(f + 0.5)
	},
}).Parse(digestTemplate))

type Sender struct {
	config *config.EmailConfig
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSender(cfg *config.EmailConfig) *Sender {
	return &Sender{
		config: cfg,
		send:   smtp.SendMail,
	}
}

func (s *Sender) SendReport(report *models.DigestReport) error {
	if report == nil {
		return fmt.Errorf("report cannot be nil")
	}

	if len(report.Entries) == 0 {
		return nil // Nothing to report
	}

	subject := fmt.Sprintf("CinemAI Discovery Digest - %d Picks Lists (%s)",
		len(report.Entries), report.Date.Format("Jan 2, 2006"))

	body, err := generateEmailBody(report)
	if err != nil {
		return fmt.Errorf("failed to generate email body: %w", err)
	}

	return s.SendHTML(subject, body)
}

// SendHTML sends an email with custom HTML content
func (s *Sender) SendHTML(subject, htmlBody string) error {
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.SMTPServer)

	to := []string{s.config.ToEmail}
	msg := []byte(fmt.Sprintf("To: %s\r\nFrom: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.config.ToEmail, s.config.FromEmail, subject, htmlBody))

	addr := fmt.Sprintf("%s:%d", s.config.SMTPServer, s.config.SMTPPort)
	if err := s.send(addr, auth, s.config.FromEmail, to, msg); err != nil {
		return fmt.Errorf("failed to send email via %s: %w", addr, err)
	}
	return nil
}

func generateEmailBody(report *models.DigestReport) (string, error) {
	var buf bytes.Buffer
	if err := digestTmpl.Execute(&buf, report); err != nil {
		return "", err
	}
	return buf.String(), nil
}
