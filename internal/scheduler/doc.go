// Package scheduler runs delayed one-shot jobs.
//
// TimerScheduler is the primary executor: jobs are identified by
// "<kind>_<subject>_<unix submit time>", persisted through a JobStore so they
// survive restarts, and armed on in-process timers. A run first claims its
// persisted row, so across instances sharing a store each submission runs at
// most once. Fallback is a goroutine-per-job executor
// used only when the primary rejects a submission; Submitter chooses between
// them.
package scheduler
