// Package events carries post-commit mutation notifications from the
// services to whatever reacts to them, chiefly the handler that schedules
// image and pairing jobs.
//
// The primary components are:
// - MutationEvent: an entity was created or updated
// - EventHandler: reacts to events
// - EventEmitter: publishes events to handlers
package events
