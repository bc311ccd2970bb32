package utils

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/loantrack/config"
)

// Mailer sends transactional mail over SMTP.
type Mailer struct {
	cfg *config.Config
	log *logrus.Logger
}

func NewMailer(cfg *config.Config, log *logrus.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: log}
}

// SendPasswordReset mails a reset link containing the token.
func (m *Mailer) SendPasswordReset(to, token string) error {
	e := email.NewEmail()
	e.From = m.cfg.MailFrom
	e.To = []string{to}
	e.Subject = "Password reset request"
	e.Text = []byte(fmt.Sprintf(
		"A password reset was requested for your account.\n\n"+
			"Use the link below within one hour:\n%s?token=%s\n\n"+
			"If you did not request this, you can ignore this message.",
		m.cfg.ResetBaseURL, token,
	))

	addr := m.cfg.SMTPHost + ":" + m.cfg.SMTPPort
	var auth smtp.Auth
	if m.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPassword, m.cfg.SMTPHost)
	}
	if err := e.Send(addr, auth); err != nil {
		m.log.WithError(err).WithField("to", to).Error("failed to send password reset mail")
		return fmt.Errorf("send password reset mail: %w", err)
	}
	m.log.WithField("to", to).Info("password reset mail sent")
	return nil
}
