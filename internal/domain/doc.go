// Package domain contains the kitchen entities the scheduling and audit
// subsystems operate on: recipes and their child rows, starch preparations,
// wine pairings, publication schedules, notifications and audit records.
//
// Entities that participate in change auditing expose their state through
// TrackedFields, an ordered list of named values.
package domain
