// Package runtime contains the workflow engine: the loop that executes ready
// steps, halts at interrupts and records step failures.
package runtime
