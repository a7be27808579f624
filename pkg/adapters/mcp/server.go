package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/souqra"
	"github.com/aretw0/souqra/internal/logging"
	"github.com/aretw0/souqra/pkg/domain"
	"github.com/aretw0/souqra/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/cors"
)

// SessionsURI is the resource listing every stored session.
const SessionsURI = "souqra://sessions"

// SessionResponse is the structured result of the session tools.
type SessionResponse struct {
	State  *domain.State `json:"state" jsonschema_description:"The stored session snapshot"`
	Status string        `json:"status" jsonschema_description:"Position label, e.g. paused_before_strategy or completed"`
	Next   string        `json:"next,omitempty" jsonschema_description:"The tool that continues the session, if any"`
}

// Engine is the session API the MCP server drives.
type Engine interface {
	ports.Controller
	Report(ctx context.Context, sessionID string) (string, error)
}

// Server wraps the Souqra Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("souqra-mcp", strings.TrimSpace(souqra.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})
	mux := http.NewServeMux()
	mux.Handle("/sse", c.Handler(sseServer.SSEHandler()))
	mux.Handle("/message", c.Handler(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		// Create a timeout context for the graceful shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

// StartArgs are the arguments of start_session.
type StartArgs struct {
	ProductName        string `json:"product_name"`
	ProductDescription string `json:"product_description"`
	USP                string `json:"usp"`
	BrandVoice         string `json:"brand_voice"`
	TargetLocation     string `json:"target_location"`
	Competitors        string `json:"competitors"`
	LaunchObjective    string `json:"launch_objective"`
	CustomerHypothesis string `json:"customer_hypothesis"`
	Owner              string `json:"owner"`
}

// SelectArgs are the arguments of the selection tools.
type SelectArgs struct {
	SessionID string `json:"session_id"`
	Selection string `json:"selection"`
}

// SessionArgs identify a session.
type SessionArgs struct {
	SessionID string `json:"session_id"`
}

func (s *Server) registerTools() {
	// TOOL: start_session
	startTool := mcp.NewTool("start_session",
		mcp.WithDescription("Start a launch-kit session: researches the market and stops with candidate personas."),
		mcp.WithString("product_name", mcp.Required(), mcp.Description("Name of the product being launched")),
		mcp.WithString("product_description", mcp.Description("What the product is")),
		mcp.WithString("usp", mcp.Description("Unique selling proposition")),
		mcp.WithString("brand_voice", mcp.Description("Tone the brand speaks in")),
		mcp.WithString("target_location", mcp.Description("Market or region")),
		mcp.WithString("competitors", mcp.Description("Known competitors")),
		mcp.WithString("launch_objective", mcp.Description("What the launch should achieve")),
		mcp.WithString("customer_hypothesis", mcp.Description("Who the team believes the customer is")),
		mcp.WithString("owner", mcp.Description("Owner of the session, for listing saved kits")),
		mcp.WithOutputSchema[SessionResponse](),
	)
	s.mcpServer.AddTool(startTool, mcp.NewStructuredToolHandler(s.handleStart))

	// TOOL: select_persona
	personaTool := mcp.NewTool("select_persona",
		mcp.WithDescription("Pick the target persona; runs keyword strategy and creative drafts, then stops."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithString("selection", mcp.Required(), mcp.Description("Persona name, zero-based index, or an edited persona as a JSON object")),
		mcp.WithOutputSchema[SessionResponse](),
	)
	s.mcpServer.AddTool(personaTool, mcp.NewStructuredToolHandler(s.handleSelect(domain.FieldSelectedPersona)))

	// TOOL: select_creative_draft
	draftTool := mcp.NewTool("select_creative_draft",
		mcp.WithDescription("Pick the creative draft; runs the 30-day launch plan."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithString("selection", mcp.Required(), mcp.Description("Draft style, zero-based index, or an edited draft as a JSON object")),
		mcp.WithOutputSchema[SessionResponse](),
	)
	s.mcpServer.AddTool(draftTool, mcp.NewStructuredToolHandler(s.handleSelect(domain.FieldSelectedCreativeDraft)))

	// TOOL: get_session
	getTool := mcp.NewTool("get_session",
		mcp.WithDescription("Get the stored snapshot of a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithOutputSchema[SessionResponse](),
	)
	s.mcpServer.AddTool(getTool, mcp.NewStructuredToolHandler(s.handleGet))

	// TOOL: retry_session
	retryTool := mcp.NewTool("retry_session",
		mcp.WithDescription("Run the failed step of a session again."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithOutputSchema[SessionResponse](),
	)
	s.mcpServer.AddTool(retryTool, mcp.NewStructuredToolHandler(s.handleRetry))

	// TOOL: get_report
	s.mcpServer.AddTool(mcp.NewTool("get_report",
		mcp.WithDescription("Render a session as a Markdown launch kit."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
	), s.handleReport)
}

// Handler methods for structured tools

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest, args StartArgs) (SessionResponse, error) {
	state, err := s.engine.Start(ctx, ports.StartRequest{
		Brief: domain.Brief{
			ProductName:        args.ProductName,
			ProductDescription: args.ProductDescription,
			USP:                args.USP,
			BrandVoice:         args.BrandVoice,
			TargetLocation:     args.TargetLocation,
			Competitors:        args.Competitors,
			LaunchObjective:    args.LaunchObjective,
			CustomerHypothesis: args.CustomerHypothesis,
		},
		Owner: args.Owner,
	})
	if err != nil {
		return SessionResponse{}, fmt.Errorf("start failed: %w", err)
	}
	return respond(state), nil
}

func (s *Server) handleSelect(field domain.Field) func(context.Context, mcp.CallToolRequest, SelectArgs) (SessionResponse, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args SelectArgs) (SessionResponse, error) {
		if args.SessionID == "" {
			return SessionResponse{}, errors.New("session_id is required")
		}
		state, err := s.engine.SubmitFeedback(ctx, args.SessionID, field, Selection(args.Selection))
		if err != nil {
			s.logger.Debug("MCP selection rejected", "session_id", args.SessionID, "field", field, "err", err)
			return SessionResponse{}, fmt.Errorf("%s failed: %w", field, err)
		}
		return respond(state), nil
	}
}

func (s *Server) handleGet(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (SessionResponse, error) {
	state, err := s.engine.Session(ctx, args.SessionID)
	if err != nil {
		return SessionResponse{}, err
	}
	return respond(state), nil
}

func (s *Server) handleRetry(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (SessionResponse, error) {
	state, err := s.engine.Retry(ctx, args.SessionID)
	if err != nil {
		return SessionResponse{}, fmt.Errorf("retry failed: %w", err)
	}
	return respond(state), nil
}

func (s *Server) handleReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("session_id", "")
	md, err := s.engine.Report(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("report failed: %v", err)), nil
	}
	return mcp.NewToolResultText(md), nil
}

func (s *Server) registerResources() {
	// EXPOSE: souqra://sessions
	s.mcpServer.AddResource(mcp.NewResource(SessionsURI, "Launch-kit sessions",
		mcp.WithResourceDescription("Every stored session with its position"),
		mcp.WithMIMEType("application/json"),
	), s.readSessions)
}

func (s *Server) readSessions(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	ids, err := s.engine.Sessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	kits := []domain.LaunchKit{}
	for _, id := range ids {
		state, err := s.engine.Session(ctx, id)
		if errors.Is(err, domain.ErrSessionNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		kits = append(kits, state.Kit())
	}
	jsonBytes, err := json.Marshal(kits)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      SessionsURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}

// Selection turns a tool argument into a selection payload: JSON values
// (an index, an object, a quoted string) pass through, anything else is a name.
func Selection(v string) json.RawMessage {
	v = strings.TrimSpace(v)
	if json.Valid([]byte(v)) {
		return json.RawMessage(v)
	}
	b, _ := json.Marshal(v)
	return b
}

func respond(state *domain.State) SessionResponse {
	resp := SessionResponse{State: state, Status: state.CurrentStep}
	switch {
	case len(state.Failures) > 0:
		resp.Next = "retry_session"
	case state.CampaignPlan != nil:
		resp.Next = "get_report"
	case len(state.CreativeDrafts) > 0 && state.SelectedCreativeDraft == nil:
		resp.Next = "select_creative_draft"
	case state.MarketResearch != nil && state.SelectedPersona == nil:
		resp.Next = "select_persona"
	}
	return resp
}
