package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mise-api/internal/events"
)

// JobSubmitter queues a job; *scheduler.Submitter satisfies it.
type JobSubmitter interface {
	Submit(ctx context.Context, kind string, subjectID uuid.UUID, delay time.Duration) string
}

// SchedulingEventHandler submits the follow-up jobs of saved recipes and
// starch preparations.
type SchedulingEventHandler struct {
	submitter JobSubmitter
	delays    Delays
	logger    *slog.Logger
}

var _ events.EventHandler = (*SchedulingEventHandler)(nil)

// NewSchedulingEventHandler creates a handler submitting through submitter.
func NewSchedulingEventHandler(submitter JobSubmitter, delays Delays, log *slog.Logger) *SchedulingEventHandler {
	return &SchedulingEventHandler{
		submitter: submitter,
		delays:    delays,
		logger:    log.With("component", "scheduling_event_handler"),
	}
}

// HandleEvent schedules an image and a pairing job for every saved recipe,
// and an image job for every saved starch preparation that has none.
func (h *SchedulingEventHandler) HandleEvent(ctx context.Context, event *events.MutationEvent) error {
	switch event.Type {
	case events.TypeRecipeCreated, events.TypeRecipeUpdated:
		imageJob := h.submitter.Submit(ctx, KindRecipeImage, event.SubjectID, h.delays.RecipeImage)
		pairingJob := h.submitter.Submit(ctx, KindWinePairing, event.SubjectID, h.delays.WinePairing)
		h.logger.Info("scheduled recipe jobs",
			"recipe_id", event.SubjectID,
			"event_id", event.ID,
			"image_job_id", imageJob,
			"pairing_job_id", pairingJob)
		return nil

	case events.TypeStarchPreparationSaved:
		var payload events.StarchSavedPayload
		if len(event.Payload) > 0 {
			if err := event.UnmarshalPayload(&payload); err != nil {
				h.logger.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
				return fmt.Errorf("failed to unmarshal payload: %w", err)
			}
		}
		if payload.HasImage {
			h.logger.Info("starch preparation already has image, skipping generation",
				"starch_preparation_id", event.SubjectID)
			return nil
		}

		jobID := h.submitter.Submit(ctx, KindStarchImage, event.SubjectID, h.delays.StarchImage)
		h.logger.Info("scheduled starch image job",
			"starch_preparation_id", event.SubjectID,
			"event_id", event.ID,
			"job_id", jobID,
			"delay", h.delays.StarchImage)
		return nil

	default:
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}
}
