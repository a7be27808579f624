// Package workflow holds the static definition of the launch pipeline and
// derives a session's position from its persisted fields.
package workflow
