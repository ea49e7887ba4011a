package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ScheduleStatus is the lifecycle state of a publication schedule.
type ScheduleStatus string

const (
	ScheduleStatusPending    ScheduleStatus = "PD"
	ScheduleStatusInProgress ScheduleStatus = "IP"
	ScheduleStatusCompleted  ScheduleStatus = "CP"
)

// ScheduledDish is a request to make a recipe public at RunAt. Job holds
// the scheduler job id while one is pending.
type ScheduledDish struct {
	ID        uuid.UUID      `json:"id"`
	RecipeID  uuid.UUID      `json:"dish_id"`
	CreatorID *uuid.UUID     `json:"creator_id,omitempty"`
	RunAt     time.Time      `json:"schedule_datetime"`
	Holiday   string         `json:"holiday,omitempty"`
	Season    string         `json:"season,omitempty"`
	Status    ScheduleStatus `json:"status"`
	Job       *string        `json:"job,omitempty"`
	IsDeleted bool           `json:"is_deleted"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// NewScheduledDish validates runAt against now and returns a pending schedule.
func NewScheduledDish(recipeID uuid.UUID, runAt, now time.Time) (*ScheduledDish, error) {
	if recipeID == uuid.Nil {
		return nil, fmt.Errorf("%w: dish id", ErrInvalidID)
	}
	if !runAt.After(now) {
		return nil, ErrScheduleInPast
	}
	return &ScheduledDish{
		ID:        uuid.New(),
		RecipeID:  recipeID,
		RunAt:     runAt.UTC(),
		Status:    ScheduleStatusPending,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}, nil
}

// JobID returns the pending job id, or "" when none is attached.
func (s *ScheduledDish) JobID() string {
	if s.Job == nil {
		return ""
	}
	return *s.Job
}
