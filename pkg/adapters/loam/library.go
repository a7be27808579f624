package loam

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/souqra/pkg/ports"
)

// Library adapts a Loam repository of Markdown prompts to ports.PromptSource.
type Library struct {
	Repo *loam.TypedRepository[PromptMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[PromptMetadata]) *Library {
	return &Library{
		Repo: repo,
	}
}

// Open reads the prompt directory at dir without writing to it.
func Open(dir string) (*Library, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve prompt dir: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("prompt dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("prompt dir %s is not a directory", absPath)
	}
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[PromptMetadata](repo)), nil
}

// Prompt implements ports.PromptSource. A missing or empty document is not an error.
func (l *Library) Prompt(ctx context.Context, id string) (ports.Prompt, bool, error) {
	prompts, err := l.load(ctx)
	if err != nil {
		return ports.Prompt{}, false, err
	}
	p, ok := prompts[id]
	return p, ok, nil
}

// List returns the IDs of the prompts in the library.
func (l *Library) List(ctx context.Context) ([]string, error) {
	prompts, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(prompts))
	for id := range prompts {
		ids = append(ids, id)
	}
	return ids, nil
}

// load reads every document, so edits show up on the next step without a restart.
func (l *Library) load(ctx context.Context) (map[string]ports.Prompt, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	prompts := make(map[string]ports.Prompt, len(docs))
	for _, doc := range docs {
		// Use the ID from metadata if available, otherwise filename ID
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		// Collision Detection
		if existingPath, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: prompt '%s' is defined in both '%s' and '%s'", id, existingPath, doc.ID)
		}
		seen[id] = doc.ID

		system := strings.TrimSpace(doc.Content)
		if system == "" {
			continue
		}
		prompts[id] = ports.Prompt{ID: id, System: system, Temperature: doc.Data.Temperature}
	}
	return prompts, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
