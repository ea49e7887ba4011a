package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/phrazzld/mise-api/internal/domain"
	"github.com/phrazzld/mise-api/internal/platform/logger"
)

// DefaultMaxSnapshots bounds the snapshot side table.
const DefaultMaxSnapshots = 10000

// Recorder persists audit records. store.AuditStore satisfies it.
type Recorder interface {
	Create(ctx context.Context, record *domain.AuditRecord) error
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithMaxSnapshots sets how many entity snapshots are retained.
func WithMaxSnapshots(n int) Option {
	return func(t *Tracker) { t.maxSnapshots = n }
}

// WithExcludedFields replaces DefaultExcludedFields.
func WithExcludedFields(fields ...string) Option {
	return func(t *Tracker) {
		t.excluded = make(map[string]struct{}, len(fields))
		for _, f := range fields {
			t.excluded[f] = struct{}{}
		}
	}
}

// WithClock overrides the time source used for ChangedAt.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// Tracker snapshots entity state and records diffs on update.
type Tracker struct {
	recorder     Recorder
	snapshots    *lru.Cache[string, Snapshot]
	excluded     map[string]struct{}
	maxSnapshots int
	now          func() time.Time
	logger       *slog.Logger
}

// NewTracker creates a Tracker writing records through recorder.
func NewTracker(recorder Recorder, log *slog.Logger, opts ...Option) (*Tracker, error) {
	if recorder == nil {
		return nil, fmt.Errorf("audit recorder cannot be nil")
	}
	if log == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	t := &Tracker{
		recorder:     recorder,
		maxSnapshots: DefaultMaxSnapshots,
		now:          func() time.Time { return time.Now().UTC() },
		logger:       log.With("component", "audit_tracker"),
	}
	WithExcludedFields(DefaultExcludedFields...)(t)
	for _, opt := range opts {
		opt(t)
	}

	cache, err := lru.New[string, Snapshot](t.maxSnapshots)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot cache: %w", err)
	}
	t.snapshots = cache

	return t, nil
}

// Capture stores the entity's current auditable state as its snapshot.
// Call it after loading an entity and after every successful save.
func (t *Tracker) Capture(e Trackable) {
	t.snapshots.Add(snapshotKey(e), t.snapshot(e))
}

// Forget drops the snapshot of a deleted entity.
func (t *Tracker) Forget(e Trackable) {
	t.snapshots.Remove(snapshotKey(e))
}

// Diff compares e against its snapshot. ok is false when no snapshot exists.
func (t *Tracker) Diff(e Trackable) (changes []Change, ok bool) {
	prev, ok := t.snapshots.Get(snapshotKey(e))
	if !ok {
		return nil, false
	}

	for _, f := range e.TrackedFields() {
		if _, skip := t.excluded[f.Name]; skip {
			continue
		}
		value := render(f.Value)
		if old, seen := prev[f.Name]; !seen || old != value {
			changes = append(changes, Change{EntityType: e.EntityType(), Field: f.Name, Value: value})
		}
	}
	return changes, true
}

// Observe runs after an entity has been saved. It never returns an error:
// failures are logged and the save is unaffected. The snapshot is always
// refreshed.
func (t *Tracker) Observe(ctx context.Context, e Trackable, created bool) {
	log := logger.FromContextOrDefault(ctx, t.logger)

	defer t.Capture(e)
	defer func() {
		if p := recover(); p != nil {
			log.Error("panic while auditing entity",
				"entity_type", e.EntityType(),
				"entity_id", e.EntityID(),
				"panic", p)
		}
	}()

	if created {
		return
	}

	actor, ok := domain.ActorFromContext(ctx)
	if !ok {
		log.Debug("skipping audit without authenticated actor",
			"entity_type", e.EntityType(),
			"entity_id", e.EntityID())
		return
	}

	changes, ok := t.Diff(e)
	if !ok {
		log.Debug("skipping audit, no snapshot for entity",
			"entity_type", e.EntityType(),
			"entity_id", e.EntityID())
		return
	}
	if len(changes) == 0 {
		return
	}

	var tenant *uuid.UUID
	if ts, ok := e.(TenantScoped); ok {
		tenant = ts.TenantID()
	}

	if _, err := t.RecordAudit(ctx, e.AuditSubject(), tenant, actor, changes); err != nil {
		log.Error("failed to record audit",
			"error", err,
			"entity_type", e.EntityType(),
			"entity_id", e.EntityID(),
			"recipe_id", e.AuditSubject())
	}
}

// RecordAudit writes one audit record for changes. A nil tenantID falls back
// to the actor's restaurant.
func (t *Tracker) RecordAudit(
	ctx context.Context,
	subjectID uuid.UUID,
	tenantID *uuid.UUID,
	actor domain.Actor,
	changes []Change,
) (*domain.AuditRecord, error) {
	if len(changes) == 0 {
		return nil, fmt.Errorf("no changes to record")
	}
	if tenantID == nil {
		tenantID = actor.RestaurantID
	}

	record := &domain.AuditRecord{
		ID:           uuid.New(),
		RecipeID:     subjectID,
		ActorID:      actor.UserID,
		RestaurantID: tenantID,
		ChangesMade:  FormatChanges(changes),
		ChangedAt:    t.now(),
	}

	if err := t.recorder.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist audit record: %w", err)
	}

	t.logger.Debug("audit record created",
		"audit_id", record.ID,
		"recipe_id", subjectID,
		"change_count", len(changes))
	return record, nil
}

func (t *Tracker) snapshot(e Trackable) Snapshot {
	fields := e.TrackedFields()
	s := make(Snapshot, len(fields))
	for _, f := range fields {
		if _, skip := t.excluded[f.Name]; skip {
			continue
		}
		s[f.Name] = render(f.Value)
	}
	return s
}
