package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/mise-api/internal/domain"
	"github.com/phrazzld/mise-api/internal/scheduler"
	"github.com/phrazzld/mise-api/internal/store"
)

// MockPairingStore implements store.PairingStore in memory. Wines are
// shared across recipes by their (name, type) key.
type MockPairingStore struct {
	ReplacePairingsFn func(ctx context.Context, recipeID uuid.UUID, wines []domain.PairingSuggestion) ([]*domain.WinePairing, error)

	mu       sync.Mutex
	wines    map[string]domain.WinePairing
	pairings map[uuid.UUID][]string
}

var _ store.PairingStore = (*MockPairingStore)(nil)

// NewMockPairingStore creates an empty store.
func NewMockPairingStore() *MockPairingStore {
	return &MockPairingStore{
		wines:    make(map[string]domain.WinePairing),
		pairings: make(map[uuid.UUID][]string),
	}
}

func (m *MockPairingStore) ReplacePairings(
	ctx context.Context,
	recipeID uuid.UUID,
	wines []domain.PairingSuggestion,
) ([]*domain.WinePairing, error) {
	if m.ReplacePairingsFn != nil {
		return m.ReplacePairingsFn(ctx, recipeID, wines)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(wines))
	out := make([]*domain.WinePairing, 0, len(wines))
	seen := make(map[string]bool, len(wines))
	for _, w := range wines {
		key := w.Key()
		if seen[key] {
			continue
		}
		seen[key] = true

		wine, ok := m.wines[key]
		if !ok {
			wine = domain.WinePairing{
				ID: uuid.New(), Name: w.Name, Type: w.Type,
				Flavor: w.Flavor, Profile: w.Profile, Proteins: w.Proteins,
				Reason: w.Reason, Region: w.Region,
			}
			m.wines[key] = wine
		}

		keys = append(keys, key)
		cp := wine
		out = append(out, &cp)
	}
	m.pairings[recipeID] = keys
	return out, nil
}

func (m *MockPairingStore) ListPairings(_ context.Context, recipeID uuid.UUID) ([]*domain.WinePairing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.WinePairing, 0, len(m.pairings[recipeID]))
	for _, key := range m.pairings[recipeID] {
		w := m.wines[key]
		out = append(out, &w)
	}
	return out, nil
}

// WineCount returns how many distinct wines exist across all recipes.
func (m *MockPairingStore) WineCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.wines)
}

// MockAuditStore implements store.AuditStore in memory.
type MockAuditStore struct {
	// CreateError, when set, is returned by every Create call.
	CreateError error

	mu      sync.Mutex
	records []domain.AuditRecord
}

var _ store.AuditStore = (*MockAuditStore)(nil)

// NewMockAuditStore creates an empty store.
func NewMockAuditStore() *MockAuditStore {
	return &MockAuditStore{}
}

func (m *MockAuditStore) Create(_ context.Context, record *domain.AuditRecord) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, *record)
	return nil
}

func (m *MockAuditStore) ListByRecipe(_ context.Context, recipeID uuid.UUID, limit int) ([]*domain.AuditRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.AuditRecord
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].RecipeID != recipeID {
			continue
		}
		r := m.records[i]
		out = append(out, &r)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Records returns every stored record in insertion order.
func (m *MockAuditStore) Records() []domain.AuditRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.AuditRecord(nil), m.records...)
}

// MockNotificationStore implements store.NotificationStore in memory.
type MockNotificationStore struct {
	CreateError error

	mu            sync.Mutex
	notifications map[uuid.UUID]domain.Notification
	order         []uuid.UUID
	// AddSeenByCalls counts AddSeenBy invocations.
	AddSeenByCalls int
}

var _ store.NotificationStore = (*MockNotificationStore)(nil)

// NewMockNotificationStore creates an empty store.
func NewMockNotificationStore() *MockNotificationStore {
	return &MockNotificationStore{notifications: make(map[uuid.UUID]domain.Notification)}
}

func (m *MockNotificationStore) Create(_ context.Context, n *domain.Notification) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications[n.ID] = *n
	m.order = append(m.order, n.ID)
	return nil
}

func (m *MockNotificationStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok {
		return nil, store.ErrNotificationNotFound
	}
	n.SeenBy = append([]uuid.UUID(nil), n.SeenBy...)
	return &n, nil
}

func (m *MockNotificationStore) IsSeenBy(_ context.Context, notificationID, userID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[notificationID]
	if !ok {
		return false, store.ErrNotificationNotFound
	}
	return n.SeenByUser(userID), nil
}

func (m *MockNotificationStore) AddSeenBy(_ context.Context, notificationID, userID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddSeenByCalls++
	n, ok := m.notifications[notificationID]
	if !ok {
		return false, store.ErrNotificationNotFound
	}
	if n.SeenByUser(userID) {
		return false, nil
	}
	n.SeenBy = append(n.SeenBy, userID)
	m.notifications[notificationID] = n
	return true, nil
}

func (m *MockNotificationStore) ListUnseen(_ context.Context, userID uuid.UUID, limit int) ([]*domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Notification
	for i := len(m.order) - 1; i >= 0; i-- {
		n := m.notifications[m.order[i]]
		if n.SeenByUser(userID) {
			continue
		}
		out = append(out, &n)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// All returns every notification in creation order.
func (m *MockNotificationStore) All() []domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Notification, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.notifications[id])
	}
	return out
}

// MockScheduleStore implements store.ScheduleStore in memory.
type MockScheduleStore struct {
	CreateError error

	mu        sync.Mutex
	schedules map[uuid.UUID]domain.ScheduledDish
}

var _ store.ScheduleStore = (*MockScheduleStore)(nil)

// NewMockScheduleStore creates an empty store.
func NewMockScheduleStore() *MockScheduleStore {
	return &MockScheduleStore{schedules: make(map[uuid.UUID]domain.ScheduledDish)}
}

func (m *MockScheduleStore) Create(_ context.Context, s *domain.ScheduledDish) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schedules[s.ID] = *s
	return nil
}

func (m *MockScheduleStore) GetByID(_ context.Context, id uuid.UUID) (*domain.ScheduledDish, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.schedules[id]
	if !ok {
		return nil, store.ErrScheduleNotFound
	}
	return &s, nil
}

func (m *MockScheduleStore) ActiveForRecipe(_ context.Context, recipeID uuid.UUID) (*domain.ScheduledDish, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var best *domain.ScheduledDish
	for _, s := range m.schedules {
		if s.RecipeID != recipeID || s.IsDeleted || s.Status == domain.ScheduleStatusCompleted {
			continue
		}
		if best == nil || s.RunAt.Before(best.RunAt) {
			cp := s
			best = &cp
		}
	}
	if best == nil {
		return nil, store.ErrScheduleNotFound
	}
	return best, nil
}

func (m *MockScheduleStore) Update(_ context.Context, s *domain.ScheduledDish) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.schedules[s.ID]; !ok {
		return store.ErrScheduleNotFound
	}
	m.schedules[s.ID] = *s
	return nil
}

func (m *MockScheduleStore) CompleteByRecipe(_ context.Context, recipeID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.schedules {
		if s.RecipeID != recipeID || s.IsDeleted {
			continue
		}
		s.Status = domain.ScheduleStatusCompleted
		s.Job = nil
		m.schedules[id] = s
	}
	return nil
}

func (m *MockScheduleStore) WithTx(_ *sql.Tx) store.ScheduleStore {
	return m
}

// MockJobStore implements scheduler.JobStore in memory.
type MockJobStore struct {
	SaveError   error
	ListError   error
	DeleteError error
	ClaimError  error

	mu   sync.Mutex
	jobs map[string]scheduler.Job
	// Deleted lists every id passed to DeleteJob.
	Deleted []string
	// Claimed counts successful ClaimJob calls.
	Claimed int
}

var _ scheduler.JobStore = (*MockJobStore)(nil)

// NewMockJobStore creates a store seeded with jobs.
func NewMockJobStore(jobs ...scheduler.Job) *MockJobStore {
	m := &MockJobStore{jobs: make(map[string]scheduler.Job)}
	for _, j := range jobs {
		m.jobs[j.ID] = j
	}
	return m
}

func (m *MockJobStore) SaveJob(_ context.Context, job scheduler.Job) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = job
	return nil
}

func (m *MockJobStore) DeleteJob(_ context.Context, id string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, id)
	delete(m.jobs, id)
	return nil
}

// ClaimJob removes the row only when both id and CreatedAt match.
func (m *MockJobStore) ClaimJob(_ context.Context, job scheduler.Job) (bool, error) {
	if m.ClaimError != nil {
		return false, m.ClaimError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.jobs[job.ID]
	if !ok || !stored.CreatedAt.Equal(job.CreatedAt) {
		return false, nil
	}
	delete(m.jobs, job.ID)
	m.Claimed++
	return true, nil
}

// ClaimCount returns how many claims succeeded.
func (m *MockJobStore) ClaimCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Claimed
}

func (m *MockJobStore) ListJobs(_ context.Context) ([]scheduler.Job, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]scheduler.Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		out = append(out, j)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RunAt.Before(out[j].RunAt) })
	return out, nil
}

// Has reports whether id is persisted.
func (m *MockJobStore) Has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.jobs[id]
	return ok
}

// Len returns the number of persisted jobs.
func (m *MockJobStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}
