package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wneessen/go-mail"
)

// SMTPConfig holds relay and sender settings
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	TLS      string // mandatory, opportunistic, none
	FromName string
	From     string
	Timeout  time.Duration
}

// SMTPSender delivers messages through an SMTP relay
type SMTPSender struct {
	config SMTPConfig
	logger *slog.Logger
}

func NewSMTPSender(config SMTPConfig, logger *slog.Logger) *SMTPSender {
	if config.FromName == "" {
		config.FromName = "Jobs System"
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}

	return &SMTPSender{
		config: config,
		logger: logger,
	}
}

// Build renders msg into a go-mail message
func (s *SMTPSender) Build(msg Message) (*mail.Msg, error) {
	subject, body, err := Render(msg)
	if err != nil {
		return nil, err
	}

	m := mail.NewMsg()
	if err := m.FromFormat(s.config.FromName, s.config.From); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextHTML, body)

	return m, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m, err := s.Build(msg)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(s.config.Host, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp delivery failed: %w", err)
	}

	s.logger.Info("Email sent",
		slog.String("message_id", msg.ID),
		slog.String("kind", string(msg.Kind)),
	)
	return nil
}

func (s *SMTPSender) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(s.config.Port),
		mail.WithTimeout(s.config.Timeout),
		mail.WithTLSPolicy(tlsPolicy(s.config.TLS)),
	}

	if s.config.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.config.Username),
			mail.WithPassword(s.config.Password),
		)
	}

	return opts
}

func tlsPolicy(name string) mail.TLSPolicy {
	switch name {
	case "none":
		return mail.NoTLS
	case "opportunistic":
		return mail.TLSOpportunistic
	default:
		return mail.TLSMandatory
	}
}
