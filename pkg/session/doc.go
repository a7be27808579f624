/*
Package session implements session management and persistence orchestration.

It layers the merge-write semantics of the pipeline on top of a plain
StateStore: writes are partial updates applied under a per-session lock
(optionally backed by a distributed lock for multiple replicas), and every
write recomputes the session's current_step label from its fields.
*/
package session
