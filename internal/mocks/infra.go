package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mise-api/internal/scheduler"
)

// PutCall is one recorded MockObjectStore.Put invocation.
type PutCall struct {
	Key         string
	Body        []byte
	ContentType string
}

// MockObjectStore records uploads and returns URLs under BaseURL.
type MockObjectStore struct {
	BaseURL string
	Err     error

	mu    sync.Mutex
	calls []PutCall
}

// Put records the upload and returns BaseURL + "/" + key.
func (m *MockObjectStore) Put(_ context.Context, key string, body []byte, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, PutCall{Key: key, Body: append([]byte(nil), body...), ContentType: contentType})
	if m.Err != nil {
		return "", m.Err
	}
	return m.BaseURL + "/" + key, nil
}

// Calls returns every recorded upload.
func (m *MockObjectStore) Calls() []PutCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PutCall(nil), m.calls...)
}

// ScheduleCall is one recorded MockScheduler.Schedule invocation.
type ScheduleCall struct {
	Kind      string
	SubjectID uuid.UUID
	RunAt     time.Time
}

// MockScheduler implements scheduler.Scheduler by recording calls.
type MockScheduler struct {
	ScheduleFn func(ctx context.Context, kind string, subjectID uuid.UUID, runAt time.Time) (string, error)
	CancelErr  error

	mu        sync.Mutex
	scheduled []ScheduleCall
	cancelled []string
}

var _ scheduler.Scheduler = (*MockScheduler)(nil)

// Schedule records the call and returns the deterministic job id unless
// ScheduleFn overrides it.
func (m *MockScheduler) Schedule(ctx context.Context, kind string, subjectID uuid.UUID, runAt time.Time) (string, error) {
	m.mu.Lock()
	m.scheduled = append(m.scheduled, ScheduleCall{Kind: kind, SubjectID: subjectID, RunAt: runAt})
	m.mu.Unlock()

	if m.ScheduleFn != nil {
		return m.ScheduleFn(ctx, kind, subjectID, runAt)
	}
	return scheduler.NewJobID(kind, subjectID, time.Now()), nil
}

// Cancel records the cancelled id.
func (m *MockScheduler) Cancel(_ context.Context, jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelled = append(m.cancelled, jobID)
	return m.CancelErr
}

// Scheduled returns every recorded Schedule call.
func (m *MockScheduler) Scheduled() []ScheduleCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ScheduleCall(nil), m.scheduled...)
}

// Cancelled returns every id passed to Cancel.
func (m *MockScheduler) Cancelled() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.cancelled...)
}

// MockLocker implements scheduler.Locker with an in-process key set.
type MockLocker struct {
	AcquireErr error

	mu   sync.Mutex
	held map[string]bool
}

var _ scheduler.Locker = (*MockLocker)(nil)

// Hold marks key as held by another instance.
func (m *MockLocker) Hold(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held == nil {
		m.held = make(map[string]bool)
	}
	m.held[key] = true
}

func (m *MockLocker) Acquire(_ context.Context, key string) (bool, error) {
	if m.AcquireErr != nil {
		return false, m.AcquireErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held == nil {
		m.held = make(map[string]bool)
	}
	if m.held[key] {
		return false, nil
	}
	m.held[key] = true
	return true, nil
}

func (m *MockLocker) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, key)
	return nil
}

// Held reports whether key is currently locked.
func (m *MockLocker) Held(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.held[key]
}
