// Package task holds the bodies of the background jobs: recipe and starch
// image generation, wine pairing lookups and dish publication. Each body
// receives only the subject id, re-fetches what it needs, checks its guard
// and then calls out to the generators and stores.
//
// SchedulingEventHandler turns post-commit mutation events into delayed
// submissions.
package task
