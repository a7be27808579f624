/*
Package runner drives a launch session from a terminal or a pipe.

It starts (or resumes) a session on a ports.Controller, shows each snapshot
through an IOHandler and, at every checkpoint, asks the handler to pick a
persona or a creative draft. Ctrl+C cancels the step in flight; the session
stays stored and can be resumed later with the same ID.

# Key Components

  - Runner: the loop from start to a completed kit.
  - IOHandler: how snapshots are shown and choices are read.
  - TextHandler: interactive terminal usage, optionally rendering Markdown.
  - JSONHandler: JSON-Lines for scripted usage.

# Usage

	r := runner.New(
		runner.WithHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
		runner.WithLogger(logger),
	)

	state, err := r.Run(ctx, engine, runner.Start{Brief: brief})
*/
package runner
