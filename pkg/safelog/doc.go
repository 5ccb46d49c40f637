// Package safelog appends lines to per-entity log files on a shared
// filesystem.
//
// Every append opens the entity's log in append mode, takes an exclusive
// advisory lock on the handle, writes the block, unlocks and closes. When the
// log's directory does not exist yet, the path-creation collaborator is run
// and the append is retried exactly once. Any other failure, and any failure
// of the retried append, is returned to the caller.
//
// Writers serialize only with other writers using the same lock discipline.
// Which of several concurrent blocks lands first is unspecified.
package safelog
