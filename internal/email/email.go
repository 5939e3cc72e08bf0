// Package email sends notification emails to newsletter submitters.
package email

import (
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"newsreview/internal/config"
)

// dialer is satisfied by *gomail.Dialer.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Service handles sending email notifications.
type Service struct {
	cfg     *config.Config
	enabled bool
	dialer  dialer
	logger  *zap.Logger
}

// NewService creates a new email service.
func NewService(cfg *config.Config, logger *zap.Logger) *Service {
	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	d.SSL = cfg.SMTPSSL

	s := newService(cfg, d, logger)
	if s.enabled {
		logger.Info("email notifications enabled",
			zap.String("smtp_host", cfg.SMTPHost),
			zap.Int("smtp_port", cfg.SMTPPort),
		)
	} else {
		logger.Info("email notifications disabled (SMTP not configured)")
	}
	return s
}

func newService(cfg *config.Config, d dialer, logger *zap.Logger) *Service {
	return &Service{
		cfg:     cfg,
		enabled: cfg.IsEmailEnabled(),
		dialer:  d,
		logger:  logger,
	}
}

// IsEnabled returns true if email is enabled.
func (s *Service) IsEnabled() bool {
	return s.enabled
}

// Send sends an email to the specified recipients.
func (s *Service) Send(to []string, subject, htmlBody, textBody string) error {
	if !s.enabled || len(to) == 0 {
		return nil
	}
	return s.dialer.DialAndSend(s.buildMessage(to, subject, htmlBody, textBody))
}

// buildMessage assembles a message with a plain text part and an HTML
// alternative when both bodies are given.
func (s *Service) buildMessage(to []string, subject, htmlBody, textBody string) *gomail.Message {
	m := gomail.NewMessage()

	from := s.cfg.SMTPFrom
	if s.cfg.SMTPFromName != "" {
		from = m.FormatAddress(s.cfg.SMTPFrom, s.cfg.SMTPFromName)
	}
	m.SetHeader("From", from)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)

	switch {
	case textBody != "" && htmlBody != "":
		m.SetBody("text/plain", textBody)
		m.AddAlternative("text/html", htmlBody)
	case htmlBody != "":
		m.SetBody("text/html", htmlBody)
	default:
		m.SetBody("text/plain", textBody)
	}
	return m
}

// SendAsync sends an email in the background and logs the outcome.
func (s *Service) SendAsync(to []string, subject, htmlBody, textBody string) {
	if !s.enabled || len(to) == 0 {
		return
	}

	go func() {
		if err := s.Send(to, subject, htmlBody, textBody); err != nil {
			s.logger.Error("failed to send email",
				zap.Strings("to", to),
				zap.String("subject", subject),
				zap.Error(err),
			)
			return
		}
		s.logger.Info("email sent", zap.Strings("to", to), zap.String("subject", subject))
	}()
}
