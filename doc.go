/*
Package souqra generates product launch kits with a four-step language-model
pipeline that pauses twice for a human decision.

# Pipeline

	research ──▶ ‖ strategy ──▶ creative ──▶ ‖ planning
	             ▲ selected_persona          ▲ selected_creative_draft

Research proposes audience personas. Once a persona is chosen, strategy
builds a keyword plan and creative drafts copy and visuals in several styles.
Once a draft is chosen, planning writes a 30-day launch campaign.

Every session is persisted after each step. The position of a session is
derived from which outputs and selections are stored, so a paused session
survives restarts and replayed requests never run a step twice.

# Usage

	engine, err := souqra.New(
		souqra.WithStore(file.New(".souqra/sessions")),
		souqra.WithGenerator(llm.NewStructured(llm.NewOpenAICompleter("", key, ""), logger)),
	)
	if err != nil {
		log.Fatal(err)
	}

	state, err := engine.Start(ctx, ports.StartRequest{Brief: domain.Brief{ProductName: "Aero"}})
	// state.CurrentStep == "paused_before_strategy"

	state, err = engine.SubmitFeedback(ctx, state.SessionID, domain.FieldSelectedPersona, json.RawMessage(`0`))
	// state.CurrentStep == "paused_before_planning"

The same controller backs the HTTP server (pkg/adapters/http), the MCP
server (pkg/adapters/mcp) and the interactive terminal runner (pkg/runner).
*/
package souqra
