package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireGit(t *testing.T) {
	t.Helper()
	if !IsInstalled() {
		t.Skip("git not installed")
	}
}

func TestClient_Init(t *testing.T) {
	requireGit(t)
	tmpDir := t.TempDir()
	client := NewClient(tmpDir, nil)

	assert.False(t, client.IsRepo())
	require.NoError(t, client.Init(context.Background()))
	assert.True(t, client.IsRepo())

	_, err := os.Stat(filepath.Join(tmpDir, ".git"))
	assert.NoError(t, err)
}

func TestClient_CommitAndLog(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	tmpDir := t.TempDir()
	client := NewClient(tmpDir, nil)
	require.NoError(t, client.Init(ctx))

	file := filepath.Join(tmpDir, "notes.json")
	require.NoError(t, os.WriteFile(file, []byte("[]"), 0644))

	changed, err := client.HasChanges(ctx, "notes.json")
	require.NoError(t, err)
	assert.True(t, changed)

	require.NoError(t, client.Add(ctx, "notes.json"))
	require.NoError(t, client.Commit(ctx, "create note 1"))

	changed, err = client.HasChanges(ctx, "notes.json")
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, os.WriteFile(file, []byte(`[{"id":"1"}]`), 0644))
	require.NoError(t, client.Add(ctx, "notes.json"))
	require.NoError(t, client.Commit(ctx, "update note 1"))

	subjects, err := client.Log(ctx, "notes.json", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"update note 1", "create note 1"}, subjects)
}

func TestClient_RunFailure(t *testing.T) {
	requireGit(t)
	client := NewClient(t.TempDir(), nil)

	_, err := client.Run(context.Background(), "not-a-git-command")
	assert.Error(t, err)
}
