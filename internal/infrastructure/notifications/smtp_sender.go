package notifications

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// SMTPSettings describes the relay used by SMTPSender
type SMTPSettings struct {
	Host     string
	Port     int
	User     string
	Password string
	Secure   bool
}

// SMTPSender delivers mail through an SMTP relay
type SMTPSender struct {
	settings SMTPSettings
	from     Address
}

func NewSMTPSender(settings SMTPSettings, from Address) *SMTPSender {
	return &SMTPSender{settings: settings, from: from}
}

func (s *SMTPSender) Name() string { return "smtp" }

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m, err := s.build(msg)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(s.settings.Host, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (s *SMTPSender) build(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.FromFormat(s.from.Name, s.from.Email); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}
	return m, nil
}

func (s *SMTPSender) clientOptions() []mail.Option {
	opts := []mail.Option{mail.WithPort(s.settings.Port)}
	if s.settings.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if s.settings.User != "" && s.settings.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.settings.User),
			mail.WithPassword(s.settings.Password),
		)
	}
	return opts
}
