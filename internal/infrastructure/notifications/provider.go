package notifications

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/festoofficial/festo/internal/config"
)

// ErrNoMailProvider is returned when no transport is configured and logging
// codes was not explicitly allowed
var ErrNoMailProvider = errors.New("no mail provider configured; set a provider or mail.log_only")

// NewSenderFromConfig picks the transport: Brevo, then MailerSend, then SMTP
// when a host is set. The log sender is only used with mail.log_only.
func NewSenderFromConfig(cfg *config.Config, log *zap.Logger) (Sender, error) {
	from := Address{Name: cfg.MailFromName, Email: cfg.MailFrom}
	client := &http.Client{Timeout: cfg.MailTimeout}

	switch {
	case cfg.BrevoAPIKey != "":
		return NewBrevoSender(cfg.BrevoAPIKey, from, client), nil
	case cfg.MailerSendAPIToken != "":
		return NewMailerSendSender(cfg.MailerSendAPIToken, from, client), nil
	case cfg.SMTP.Host != "":
		return NewSMTPSender(SMTPSettings{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			User:     cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			Secure:   cfg.SMTP.Secure,
		}, from), nil
	case cfg.MailLogOnly:
		log.Warn("mail.log_only is set, codes will only be logged")
		return NewLogSender(log), nil
	}
	return nil, ErrNoMailProvider
}
