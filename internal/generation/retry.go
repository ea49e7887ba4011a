package generation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
)

// Policy bounds how a generation call is retried.
type Policy struct {
	MaxAttempts int
	RetryDelay  time.Duration
	CallTimeout time.Duration
}

// DefaultPolicy is five attempts, five seconds apart, thirty seconds each.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 5,
		RetryDelay:  5 * time.Second,
		CallTimeout: 30 * time.Second,
	}
}

// Failure is the terminal envelope of a generation call whose attempts were
// all exhausted. Detail holds the last attempt's error text.
type Failure struct {
	Status   bool   `json:"status"`
	Message  string `json:"message"`
	Detail   string `json:"error"`
	Attempts int    `json:"-"`
}

// Error implements error.
func (f *Failure) Error() string {
	return f.Message + ": " + f.Detail
}

// Unwrap lets errors.Is match ErrGenerationFailed.
func (f *Failure) Unwrap() error {
	return ErrGenerationFailed
}

// Do runs fn until it succeeds, fails permanently or the policy's attempts
// run out, waiting RetryDelay between attempts. Each attempt gets its own
// CallTimeout. On failure the returned error is a *Failure.
func Do[T any](
	ctx context.Context,
	p Policy,
	op string,
	log *slog.Logger,
	fn func(ctx context.Context) (T, error),
) (T, error) {
	var (
		zero     T
		result   T
		lastErr  error
		attempts int
	)

	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	delay := p.RetryDelay
	if delay <= 0 {
		delay = time.Nanosecond
	}
	backoff := retry.WithMaxRetries(uint64(p.MaxAttempts-1), retry.NewConstant(delay))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++

		callCtx := ctx
		if p.CallTimeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, p.CallTimeout)
			defer cancel()
		}

		v, err := fn(callCtx)
		if err != nil {
			lastErr = err
			log.Warn("generation attempt failed",
				"operation", op,
				"attempt", attempts,
				"max_attempts", p.MaxAttempts,
				"error", err)
			if permanent(err) {
				return err
			}
			return retry.RetryableError(err)
		}

		result = v
		return nil
	})
	if err != nil {
		if lastErr == nil {
			lastErr = err
		}
		return zero, &Failure{
			Status:   false,
			Message:  fmt.Sprintf("%s failed after %d attempt(s)", op, attempts),
			Detail:   lastErr.Error(),
			Attempts: attempts,
		}
	}

	return result, nil
}
