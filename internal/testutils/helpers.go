package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/stretchr/testify/require"
)

// PromptRepo initializes a loam repository in a temporary directory and
// writes docs into it, keyed by file name. It returns the absolute directory
// and the repository.
func PromptRepo(t *testing.T, docs map[string]string, opts ...loam.Option) (string, core.Repository) {
	t.Helper()

	dir, err := filepath.Abs(t.TempDir())
	require.NoError(t, err)

	repo, err := loam.Init(dir, opts...)
	require.NoError(t, err, "loam init")

	for name, body := range docs {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644), "write %s", name)
	}
	return dir, repo
}
