package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/souqra/internal/logging"
	"github.com/aretw0/souqra/pkg/domain"
	"github.com/oapi-codegen/runtime"
)

// StreamManager handles active SSE connections
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // SessionID -> Set of Channels
	logger      *slog.Logger
}

// NewStreamManager creates an empty StreamManager.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a listener for one session. The returned func
// unregisters it and closes the channel.
func (sm *StreamManager) Subscribe(sessionID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[sessionID]; ok {
			if _, ok := subs[ch]; !ok {
				return
			}
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, sessionID)
			}
		}
	}
}

// Broadcast sends msg to every listener of the session.
func (sm *StreamManager) Broadcast(sessionID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[sessionID] {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: Client buffer full, dropping message", "session_id", sessionID)
		}
	}
}

// Hooks publishes a diff of every persisted write, so listeners see each
// step land while a run is still in progress.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStateChange: func(_ context.Context, e *domain.StateEvent) {
			diff := domain.Diff(e.Old, e.New)
			if diff == nil {
				return
			}
			bytes, err := json.Marshal(diff)
			if err != nil {
				sm.logger.Warn("SSE: Failed to encode diff", "session_id", e.SessionID, "err", err)
				return
			}
			sm.Broadcast(diff.SessionID, string(bytes))
		},
	}
}

// SubscribeEvents handles the GET /events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	var sessionID string
	if err := runtime.BindQueryParameter("form", true, true, "session_id", r.URL.Query(), &sessionID); err != nil {
		s.fail(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	// Optional field filter, e.g. ?watch=creative_drafts,errors
	var watch []string
	if v := r.URL.Query().Get("watch"); v != "" {
		for _, f := range strings.Split(v, ",") {
			watch = append(watch, strings.TrimSpace(f))
		}
	}

	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	s.logger.Debug("SSE: Subscribed", "session_id", sessionID)
	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE: Client disconnected", "session_id", sessionID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watch) > 0 && !matches(msg, watch) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// matches reports whether the diff touches one of the watched fields.
func matches(msg string, watch []string) bool {
	var diff domain.StateDiff
	if err := json.Unmarshal([]byte(msg), &diff); err != nil {
		return true
	}
	for _, field := range watch {
		if field == "current_step" && diff.CurrentStep != nil {
			return true
		}
		if _, ok := diff.Set[field]; ok {
			return true
		}
		for _, c := range diff.Cleared {
			if c == field {
				return true
			}
		}
	}
	return false
}
