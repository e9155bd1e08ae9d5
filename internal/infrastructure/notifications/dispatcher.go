package notifications

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/festoofficial/festo/domain"
)

// Address is a mailbox with an optional display name
type Address struct {
	Name  string
	Email string
}

// Message is a rendered email ready for a transport
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers a single message. Implementations must honour ctx
// cancellation and must not retry.
type Sender interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Dispatcher implements domain.NotificationService on top of a Sender
type Dispatcher struct {
	sender  Sender
	timeout time.Duration
	codeTTL time.Duration
	log     *zap.Logger
	now     func() time.Time
}

// NewDispatcher creates a dispatcher. Every send is bounded by timeout.
func NewDispatcher(sender Sender, timeout, codeTTL time.Duration, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		sender:  sender,
		timeout: timeout,
		codeTTL: codeTTL,
		log:     log,
		now:     time.Now,
	}
}

var _ domain.NotificationService = (*Dispatcher)(nil)

// SendSignupOTP implements domain.NotificationService
func (d *Dispatcher) SendSignupOTP(ctx context.Context, to, code string) (string, error) {
	msg, err := renderSignup(to, newOTPView(code, "", d.codeTTL, d.now()))
	if err != nil {
		return "", err
	}
	if err := d.deliver(ctx, msg); err != nil {
		return "", err
	}
	return "OTP sent to your email", nil
}

// SendEmailChangeOTP implements domain.NotificationService
func (d *Dispatcher) SendEmailChangeOTP(ctx context.Context, to, code, label string) error {
	msg, err := renderEmailChange(to, newOTPView(code, label, d.codeTTL, d.now()))
	if err != nil {
		return err
	}
	return d.deliver(ctx, msg)
}

func (d *Dispatcher) deliver(ctx context.Context, msg Message) error {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := d.sender.Send(ctx, msg); err != nil {
		d.log.Warn("email delivery failed",
			zap.String("provider", d.sender.Name()),
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Error(err))
		return fmt.Errorf("%s: %w", d.sender.Name(), err)
	}
	d.log.Info("email sent",
		zap.String("provider", d.sender.Name()),
		zap.String("to", msg.To),
		zap.Duration("took", time.Since(start)))
	return nil
}
