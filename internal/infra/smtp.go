package infra

import (
	"errors"
	"fmt"
	"net/smtp"

	"github.com/gabrilr/ferreteria-sistema/internal/config"

	"github.com/jordan-wright/email"
)

// ErrSMTPNoConfigurado is returned when SMTP_HOST is empty.
var ErrSMTPNoConfigurado = errors.New("mailer: SMTP_HOST no configurado")

// Mailer wraps SMTP configuration for sending emails with PDF attachments.
type Mailer struct {
	host     string
	port     int
	user     string
	password string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// EnviarConAdjunto sends a plain-text email with an optional PDF attachment.
func (m *Mailer) EnviarConAdjunto(to, subject, body, pdfPath string) error {
	if m.host == "" {
		return ErrSMTPNoConfigurado
	}
	e := email.NewEmail()
	e.From = m.user
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if pdfPath != "" {
		if _, err := e.AttachFile(pdfPath); err != nil {
			return fmt.Errorf("mailer: attach PDF: %w", err)
		}
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	return e.Send(m.addr, auth)
}
