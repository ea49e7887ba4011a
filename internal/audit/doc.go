// Package audit records field-level changes to recipes and their child rows.
//
// The Tracker keeps a snapshot of every tracked entity's auditable fields in
// a bounded side table keyed by entity identity. After each save it diffs the
// entity against its snapshot, writes one AuditRecord attributed to the actor
// found in the context, and refreshes the snapshot. Newly created entities
// and anonymous saves are never audited.
package audit
