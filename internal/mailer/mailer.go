// Package mailer delivers outbound email notifications.
package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/badoux/checkmail"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// ErrNoRecipients is returned when a message has no deliverable address.
var ErrNoRecipients = errors.New("mailer: no valid recipients")

type Message struct {
	Subject string
	Body    string
	From    string
	To      []string
}

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig holds connection settings for SMTPSender.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// SMTPSender sends plain-text mail through an SMTP relay.
type SMTPSender struct {
	dialer *gomail.Dialer
	logger *zap.Logger
}

func NewSMTPSender(cfg SMTPConfig, logger *zap.Logger) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		logger: logger,
	}
}

// Send drops malformed recipients and delivers to the rest.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	to := ValidRecipients(msg.To)
	if len(to) == 0 {
		return ErrNoRecipients
	}
	if len(to) != len(msg.To) {
		s.logger.Warn("dropped malformed recipients",
			zap.Int("requested", len(msg.To)),
			zap.Int("kept", len(to)),
		)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("error sending email: %w", err)
	}
	return nil
}

// LogSender writes messages to the log instead of delivering them. Used when
// no SMTP host is configured.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	to := ValidRecipients(msg.To)
	if len(to) == 0 {
		return ErrNoRecipients
	}
	s.logger.Info("email",
		zap.String("from", msg.From),
		zap.Strings("to", to),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}

// ValidRecipients returns the addresses that pass a syntax check, in order.
func ValidRecipients(addrs []string) []string {
	valid := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		if err := checkmail.ValidateFormat(addr); err != nil {
			continue
		}
		valid = append(valid, addr)
	}
	return valid
}
