package audit

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mise-api/internal/domain"
)

// Trackable is implemented by entities whose updates are audited.
type Trackable interface {
	// EntityType names the entity kind in audit output, e.g. "Recipe".
	EntityType() string
	EntityID() uuid.UUID
	// TrackedFields returns the entity's fields in a stable order.
	TrackedFields() []domain.Field
	// AuditSubject is the recipe an audit record is filed under.
	AuditSubject() uuid.UUID
}

// TenantScoped is implemented by entities that know their owning restaurant.
type TenantScoped interface {
	TenantID() *uuid.UUID
}

// DefaultExcludedFields are never diffed.
var DefaultExcludedFields = []string{
	"id",
	"created_at",
	"updated_at",
	"is_deleted",
	"recipe",
	"image",
	"video",
	"video_id",
}

// Change is a single field that differs from the last snapshot.
type Change struct {
	EntityType string
	Field      string
	Value      string
}

// String renders the change as "EntityType: field=value".
func (c Change) String() string {
	return fmt.Sprintf("%s: %s=%s", c.EntityType, c.Field, c.Value)
}

// FormatChanges joins changes, one per line, in the order given.
func FormatChanges(changes []Change) string {
	lines := make([]string, len(changes))
	for i, c := range changes {
		lines[i] = c.String()
	}
	return strings.Join(lines, "\n")
}

// Snapshot is the rendered value of each auditable field at capture time.
type Snapshot map[string]string

// render produces a comparable, human-readable form of a field value.
func render(v any) string {
	if v == nil {
		return "null"
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "null"
		}
		rv = rv.Elem()
	}

	switch x := rv.Interface().(type) {
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case []string:
		return strings.Join(x, ", ")
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func snapshotKey(e Trackable) string {
	return e.EntityType() + ":" + e.EntityID().String()
}
