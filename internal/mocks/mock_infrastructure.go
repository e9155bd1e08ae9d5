package mocks

import (
	"context"
	"fmt"

	"github.com/festoofficial/festo/domain"
)

// MockTransactor runs the unit of work inline without a real transaction
type MockTransactor struct {
	WithinTxFunc func(ctx context.Context, fn func(ctx context.Context) error) error
	Calls        int
}

func NewMockTransactor() *MockTransactor {
	return &MockTransactor{}
}

func (m *MockTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Calls++
	if m.WithinTxFunc != nil {
		return m.WithinTxFunc(ctx, fn)
	}
	return fn(ctx)
}

// MockSendThrottle implements domain.SendThrottle interface for testing
type MockSendThrottle struct {
	AcquireFunc func(ctx context.Context, key string) (bool, error)
	ReleaseFunc func(ctx context.Context, key string) error
	Released    []string
}

func NewMockSendThrottle() *MockSendThrottle {
	return &MockSendThrottle{}
}

func (m *MockSendThrottle) Acquire(ctx context.Context, key string) (bool, error) {
	if m.AcquireFunc != nil {
		return m.AcquireFunc(ctx, key)
	}
	// Default behavior: always allowed
	return true, nil
}

func (m *MockSendThrottle) Release(ctx context.Context, key string) error {
	m.Released = append(m.Released, key)
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, key)
	}
	return nil
}

// MockFileStore implements domain.FileStore interface for testing
type MockFileStore struct {
	SaveFunc func(ctx context.Context, folder, filename string, data []byte) (string, error)
}

func NewMockFileStore() *MockFileStore {
	return &MockFileStore{}
}

func (m *MockFileStore) Save(ctx context.Context, folder, filename string, data []byte) (string, error) {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, folder, filename, data)
	}
	return fmt.Sprintf("/uploads/%s/%s", folder, filename), nil
}

// MockAuditLogger records audit events in memory
type MockAuditLogger struct {
	Events []*domain.AuditEvent
}

func NewMockAuditLogger() *MockAuditLogger {
	return &MockAuditLogger{}
}

func (m *MockAuditLogger) LogEvent(ctx context.Context, event *domain.AuditEvent) error {
	m.Events = append(m.Events, event)
	return nil
}

// Types returns the recorded event types in order
func (m *MockAuditLogger) Types() []domain.AuditEventType {
	out := make([]domain.AuditEventType, len(m.Events))
	for i, e := range m.Events {
		out[i] = e.EventType
	}
	return out
}

// Compile-time interface compliance verification
var (
	_ domain.Transactor   = (*MockTransactor)(nil)
	_ domain.SendThrottle = (*MockSendThrottle)(nil)
	_ domain.FileStore    = (*MockFileStore)(nil)
	_ domain.AuditLogger  = (*MockAuditLogger)(nil)
)
