package email

import (
	"fmt"
	"net/smtp"

	"github.com/Dan9191/blog-service/internal/config"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// deliverFunc sends a prepared message to addr
type deliverFunc func(e *email.Email, addr string, auth smtp.Auth) error

// Sender handles sending emails via SMTP
type Sender struct {
	cfg     *config.Config
	logger  *logrus.Logger
	deliver deliverFunc
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
		deliver: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// welcomeMessage builds the signup confirmation
func (s *Sender) welcomeMessage(to, name string) *email.Email {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Welcome to the blog"

	if name == "" {
		name = to
	}
	body := fmt.Sprintf("Dear %s,\n\n", name)
	body += "Your account has been created. You can now log in and start posting.\n"
	body += "\nBest regards,\nThe Blog Team"
	e.Text = []byte(body)
	return e
}

// SendWelcome sends the signup confirmation email
func (s *Sender) SendWelcome(to, name string) error {
	e := s.welcomeMessage(to, name)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := s.deliver(e, addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}
