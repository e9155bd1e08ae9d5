package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/festoofficial/festo/domain"
)

// recordAudit hands the event to the audit sink. Audit failures never fail
// the operation that produced the event.
func recordAudit(ctx context.Context, sink domain.AuditLogger, log *zap.Logger, event *domain.AuditEvent) {
	if sink == nil {
		return
	}
	if err := sink.LogEvent(ctx, event); err != nil {
		log.Warn("audit event dropped", zap.String("event_type", string(event.EventType)), zap.Error(err))
	}
}

func nopIfNil(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
