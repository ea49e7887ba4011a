package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mise-api/internal/config"
	"github.com/phrazzld/mise-api/internal/scheduler"
)

// Job kinds. They also prefix job ids.
const (
	KindRecipeImage = "recipe_image"
	KindWinePairing = "wine_pairing"
	KindStarchImage = "starch_image"
	KindPublishDish = "publish_dish"
)

// Common errors
var (
	ErrNilDependency = errors.New("task dependency cannot be nil")
	ErrEmptySubject  = errors.New("subject ID cannot be empty")
)

// ObjectStorage uploads generated artifacts and returns their public URL.
type ObjectStorage interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// Delays are the default waits between a mutation and its follow-up job.
type Delays struct {
	RecipeImage time.Duration
	WinePairing time.Duration
	StarchImage time.Duration
}

// DefaultDelays returns 1s for images, 2s for pairings and 10s for starch
// images, which leaves time for the preparation steps to be saved.
func DefaultDelays() Delays {
	return Delays{
		RecipeImage: time.Second,
		WinePairing: 2 * time.Second,
		StarchImage: 10 * time.Second,
	}
}

// DelaysFromConfig reads the delays from scheduler configuration, keeping
// defaults for unset values.
func DelaysFromConfig(cfg config.SchedulerConfig) Delays {
	d := DefaultDelays()
	if cfg.ImageDelay > 0 {
		d.RecipeImage = cfg.ImageDelay
	}
	if cfg.PairingDelay > 0 {
		d.WinePairing = cfg.PairingDelay
	}
	if cfg.StarchImageDelay > 0 {
		d.StarchImage = cfg.StarchImageDelay
	}
	return d
}

// Runner is a job body bound to its dependencies.
type Runner interface {
	Run(ctx context.Context, subjectID uuid.UUID) error
}

// Set groups the job bodies registered with the scheduler.
type Set struct {
	RecipeImage *RecipeImageTask
	StarchImage *StarchImageTask
	WinePairing *WinePairingTask
	Publication *PublicationTask
}

// Register binds every non-nil task of the set to its kind.
func (s Set) Register(r *scheduler.Registry) error {
	entries := []struct {
		kind   string
		runner Runner
		ok     bool
	}{
		{KindRecipeImage, s.RecipeImage, s.RecipeImage != nil},
		{KindStarchImage, s.StarchImage, s.StarchImage != nil},
		{KindWinePairing, s.WinePairing, s.WinePairing != nil},
		{KindPublishDish, s.Publication, s.Publication != nil},
	}

	for _, e := range entries {
		if !e.ok {
			continue
		}
		if err := r.Register(e.kind, e.runner.Run); err != nil {
			return fmt.Errorf("failed to register %s: %w", e.kind, err)
		}
	}
	return nil
}

// imageKey builds "<dir>/<Name_With_Underscores>_<id>.png".
func imageKey(dir, name string, id uuid.UUID) string {
	return fmt.Sprintf("%s/%s_%s.png", dir, strings.ReplaceAll(strings.TrimSpace(name), " ", "_"), id)
}
