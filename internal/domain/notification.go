package domain

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a broadcast message. Recipients are tracked only through
// the set of users who have seen it.
type Notification struct {
	ID        uuid.UUID   `json:"id"`
	Title     string      `json:"title"`
	Message   string      `json:"message"`
	RecipeID  *uuid.UUID  `json:"related_dish_id,omitempty"`
	SeenBy    []uuid.UUID `json:"seen_by"`
	CreatedAt time.Time   `json:"created_at"`
}

// SeenByUser reports whether userID has marked the notification as seen.
func (n *Notification) SeenByUser(userID uuid.UUID) bool {
	for _, id := range n.SeenBy {
		if id == userID {
			return true
		}
	}
	return false
}
