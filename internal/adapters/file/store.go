package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/souqra/pkg/domain"
)

const ext = ".json"

// ErrInvalidSessionID is returned for IDs that cannot be used as a file name.
// Load and Delete also match domain.ErrSessionNotFound for such IDs, since
// no session can be stored under them.
var ErrInvalidSessionID = errors.New("invalid session id")

// Store implements ports.StateStore using the local filesystem.
// Each session is one indented JSON file in BasePath. It is the default
// backend: a session survives process restarts without any external service.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".souqra/sessions".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".souqra", "sessions")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(sessionID string) (string, error) {
	if sessionID == "" || sessionID == "." || sessionID == ".." ||
		strings.ContainsAny(sessionID, `/\`) || strings.HasPrefix(sessionID, "tmp-") {
		return "", fmt.Errorf("%w: %q", ErrInvalidSessionID, sessionID)
	}
	return filepath.Join(s.BasePath, sessionID+ext), nil
}

// Save writes the state through a temp file that is fsynced and renamed over
// the destination, so a crash leaves either the old or the new snapshot.
func (s *Store) Save(ctx context.Context, sessionID string, state *domain.State) error {
	dest, err := s.path(sessionID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure session directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	// Same directory keeps the rename on one filesystem.
	tmp, err := os.CreateTemp(s.BasePath, "tmp-"+sessionID+"-*"+ext)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath) // no-op after a successful rename
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("failed to move session file into place: %w", err)
	}
	return nil
}

// Load retrieves the session state from its JSON file.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	p, err := s.path(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSessionNotFound, err)
	}

	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var state domain.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session %s: %w", sessionID, err)
	}
	return &state, nil
}

// Delete removes the session file. Deleting a missing session is not an error.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	p, err := s.path(sessionID)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSessionNotFound, err)
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}

// List returns all stored session IDs in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ext || strings.HasPrefix(name, "tmp-") {
			continue
		}
		sessions = append(sessions, strings.TrimSuffix(name, ext))
	}
	sort.Strings(sessions)
	return sessions, nil
}
