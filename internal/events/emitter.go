package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/mise-api/internal/platform/logger"
)

type subscription struct {
	handler EventHandler
	types   map[string]struct{}
}

// accepts reports whether the subscription wants eventType. A subscription
// registered without types wants every event.
func (s subscription) accepts(eventType string) bool {
	if len(s.types) == 0 {
		return true
	}
	_, ok := s.types[eventType]
	return ok
}

// InMemoryEventEmitter hands events to in-process handlers on the caller's
// goroutine, in registration order.
type InMemoryEventEmitter struct {
	mu     sync.RWMutex
	subs   []subscription
	logger *slog.Logger
}

var _ EventEmitter = (*InMemoryEventEmitter)(nil)

func NewInMemoryEventEmitter(log *slog.Logger) *InMemoryEventEmitter {
	return &InMemoryEventEmitter{logger: log.With("component", "event_emitter")}
}

// RegisterHandler subscribes handler to the given event types, or to all
// events when none are given.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler, types ...string) {
	sub := subscription{handler: handler}
	if len(types) > 0 {
		sub.types = make(map[string]struct{}, len(types))
		for _, t := range types {
			sub.types[t] = struct{}{}
		}
	}

	e.mu.Lock()
	e.subs = append(e.subs, sub)
	n := len(e.subs)
	e.mu.Unlock()

	e.logger.Debug("registered event handler", "handler_count", n, "event_types", types)
}

// EmitEvent delivers event to every matching handler. Handler errors and
// panics do not stop delivery to the rest; all of them are returned joined.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *MutationEvent) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}
	log := logger.FromContextOrDefault(ctx, e.logger).With(
		"event_id", event.ID,
		"event_type", event.Type,
		"subject_id", event.SubjectID)

	e.mu.RLock()
	subs := append([]subscription(nil), e.subs...)
	e.mu.RUnlock()

	var (
		errs      []error
		delivered int
	)
	for i, sub := range subs {
		if !sub.accepts(event.Type) {
			continue
		}
		delivered++
		if err := deliver(ctx, sub.handler, event); err != nil {
			log.Error("event handler failed", "error", err, "handler_index", i)
			errs = append(errs, err)
		}
	}

	if delivered == 0 {
		log.Debug("no handler subscribed to event")
	}
	return errors.Join(errs...)
}

func deliver(ctx context.Context, h EventHandler, event *MutationEvent) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("event handler panicked: %v", p)
		}
	}()
	return h.HandleEvent(ctx, event)
}
