package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/festoofficial/festo/domain"
)

// ZapLogger writes audit events to the structured log
type ZapLogger struct {
	log *zap.Logger
}

func NewZapLogger(log *zap.Logger) *ZapLogger {
	return &ZapLogger{log: log.Named("audit")}
}

// LogEvent implements domain.AuditLogger
func (z *ZapLogger) LogEvent(ctx context.Context, event *domain.AuditEvent) error {
	fields := []zap.Field{
		zap.String("event_type", string(event.EventType)),
		zap.Bool("success", event.Success),
		zap.Time("timestamp", event.Timestamp),
	}
	if event.UserID != 0 {
		fields = append(fields, zap.Uint("user_id", event.UserID))
	}
	if event.Email != "" {
		fields = append(fields, zap.String("email", event.Email))
	}
	if len(event.Metadata) > 0 {
		fields = append(fields, zap.Any("metadata", event.Metadata))
	}
	if event.ErrorMsg != "" {
		fields = append(fields, zap.String("error", event.ErrorMsg))
	}

	if event.Success {
		z.log.Info("audit", fields...)
	} else {
		z.log.Warn("audit", fields...)
	}
	return nil
}

type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes audit events as JSON to a topic exchange.
// The routing key is festo.audit.<event type>.
type AMQPPublisher struct {
	conn     *amqp.Connection
	channel  publishChannel
	exchange string
	timeout  time.Duration
}

// NewAMQPPublisher dials url and declares a durable topic exchange
func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	p := newPublisher(ch, exchange)
	p.conn = conn
	return p, nil
}

func newPublisher(ch publishChannel, exchange string) *AMQPPublisher {
	return &AMQPPublisher{channel: ch, exchange: exchange, timeout: 5 * time.Second}
}

// RoutingKey returns the key an event type is published under
func RoutingKey(t domain.AuditEventType) string {
	return "festo.audit." + strings.ToLower(string(t))
}

// LogEvent implements domain.AuditLogger
func (p *AMQPPublisher) LogEvent(ctx context.Context, event *domain.AuditEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	return p.channel.PublishWithContext(ctx, p.exchange, RoutingKey(event.EventType), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.Timestamp,
		Type:         string(event.EventType),
		Body:         body,
	})
}

func (p *AMQPPublisher) Close() error {
	var errs []error
	if p.channel != nil {
		errs = append(errs, p.channel.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}

// Multi fans an event out to several loggers. Failures are logged and never
// returned so that auditing cannot fail the calling operation.
type Multi struct {
	loggers []domain.AuditLogger
	log     *zap.Logger
}

func NewMulti(log *zap.Logger, loggers ...domain.AuditLogger) *Multi {
	return &Multi{loggers: loggers, log: log}
}

// LogEvent implements domain.AuditLogger
func (m *Multi) LogEvent(ctx context.Context, event *domain.AuditEvent) error {
	for _, l := range m.loggers {
		if err := l.LogEvent(ctx, event); err != nil {
			m.log.Warn("audit sink failed",
				zap.String("event_type", string(event.EventType)),
				zap.Error(err))
		}
	}
	return nil
}
