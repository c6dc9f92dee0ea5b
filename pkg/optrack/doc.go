// Package optrack implements the tracked-operation layer shared by the
// ipaccount and license clients. A Tracker is constructed with a fixed set of
// operation names and records, per operation, a busy flag and the last
// normalized error. Do wraps a single backend call: it marks the operation
// busy and clears its error before delegating, and on failure records and
// returns an *Error whose message is the normalized string while the original
// cause stays reachable through errors.Unwrap.
//
// The busy flag is keyed by operation name, so two concurrent calls to the
// same operation race on it (last write wins). Callers that need per-call
// lifecycles subscribe to the update stream instead, which keys every event by
// a unique call ID.
package optrack
