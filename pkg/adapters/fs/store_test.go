package fs

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notekeeper/pkg/core"
	"github.com/aretw0/notekeeper/pkg/git"
)

// setupTestStore creates an initialized store rooted in a temp dir.
func setupTestStore(t *testing.T, name string) (*Store, string) {
	t.Helper()

	dir := t.TempDir()
	store := NewStore(Config{
		Path:   filepath.Join(dir, name),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, store.Initialize(context.Background()))
	return store, dir
}

func sampleNote(id, title string) core.Note {
	ts := time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC)
	return core.Note{ID: id, Title: title, Category: "DSA", Content: "<p>" + title + "</p>", CreatedAt: ts, UpdatedAt: ts}
}

func TestStore_MissingFileIsEmpty(t *testing.T) {
	store, _ := setupTestStore(t, "notes.json")

	list, err := store.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
	assert.NoError(t, store.LastLoadError())
}

func TestStore_CRUD(t *testing.T) {
	ctx := context.Background()
	store, _ := setupTestStore(t, "notes.json")

	require.NoError(t, store.Put(ctx, sampleNote("1", "first")))
	require.NoError(t, store.Put(ctx, sampleNote("2", "second")))

	n, err := store.Get(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "second", n.Title)

	edited := sampleNote("1", "first edited")
	require.NoError(t, store.Put(ctx, edited))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first edited", list[0].Title, "replacement keeps position")
	assert.Equal(t, "2", list[1].ID, "new notes are appended")

	removed, err := store.Remove(ctx, "1")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = store.Remove(ctx, "1")
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = store.Get(ctx, "1")
	assert.ErrorIs(t, err, core.ErrNotFound)

	list, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2", list[0].ID)
}

func TestStore_PersistedRoundTrip(t *testing.T) {
	for _, name := range []string{"notes.json", "notes.yaml", "notes.yml"} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store, dir := setupTestStore(t, name)

			svc := core.NewService(store)
			created, err := svc.Create(ctx, core.NoteInput{Title: "Heaps", Category: "DSA", Content: "<ul><li>push</li></ul>"})
			require.NoError(t, err)

			reopened := NewStore(Config{Path: filepath.Join(dir, name)})
			got, err := core.NewService(reopened).Get(ctx, created.ID)
			require.NoError(t, err)

			assert.Equal(t, created.ID, got.ID)
			assert.Equal(t, created.Title, got.Title)
			assert.Equal(t, created.Category, got.Category)
			assert.Equal(t, created.Content, got.Content)
			assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
			assert.True(t, created.UpdatedAt.Equal(got.UpdatedAt))
		})
	}
}

func TestStore_WritesUnifiedJSON(t *testing.T) {
	store, dir := setupTestStore(t, "notes.json")
	require.NoError(t, store.Put(context.Background(), sampleNote("1", "T")))

	data, err := os.ReadFile(filepath.Join(dir, "notes.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1","title":"T","category":"DSA","content":"<p>T</p>",
		"createdAt":"2024-02-01T09:30:00Z","updatedAt":"2024-02-01T09:30:00Z"}]`, string(data))

	// No lock or temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestStore_ReadsLegacyServerFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.json")
	legacy := `[{"id":"1","title":"Old","category":"misc","content":"x","created":"2023-01-02T03:04:05.000Z"}]`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0644))

	store := NewStore(Config{Path: path})
	n, err := store.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Old", n.Title)
	assert.True(t, n.UpdatedAt.Equal(n.CreatedAt))

	// The next write migrates the file to the unified schema.
	require.NoError(t, store.Put(context.Background(), sampleNote("2", "new")))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"updatedAt"`)
	assert.NotContains(t, string(data), `"created"`)
}

func TestStore_CorruptFile(t *testing.T) {
	var logs bytes.Buffer
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"1",`), 0644))

	store := NewStore(Config{Path: path, Logger: slog.New(slog.NewTextHandler(&logs, nil))})
	ctx := context.Background()

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.ErrorIs(t, store.LastLoadError(), core.ErrStorageCorrupt)
	assert.Contains(t, logs.String(), "corrupt")

	// A write quarantines the damaged file instead of destroying it.
	require.NoError(t, store.Put(ctx, sampleNote("9", "fresh")))

	matches, err := filepath.Glob(path + ".corrupt-*")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	saved, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"1",`, string(saved))

	list, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "9", list[0].ID)

	st := store.State().(StoreState)
	assert.Len(t, st.Quarantined, 1)
	assert.Empty(t, st.LastLoadError)
}

func TestStore_UnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0000))

	store := NewStore(Config{Path: path})
	ctx := context.Background()

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Error(t, store.LastLoadError())

	err = store.Put(ctx, sampleNote("1", "x"))
	assert.ErrorIs(t, err, core.ErrStorageUnavailable)
}

func TestStore_CacheAvoidsReparse(t *testing.T) {
	ctx := context.Background()
	store, _ := setupTestStore(t, "notes.json")
	require.NoError(t, store.Put(ctx, sampleNote("1", "x")))

	for i := 0; i < 3; i++ {
		_, err := store.List(ctx)
		require.NoError(t, err)
	}

	st := store.State().(StoreState)
	assert.GreaterOrEqual(t, st.CacheHits, uint64(3))
	assert.Equal(t, 1, st.CacheSize)
	assert.Equal(t, "json", st.Codec)
	assert.NotNil(t, st.LastWrite)
}

func TestStore_CacheSeesExternalEdits(t *testing.T) {
	ctx := context.Background()
	store, dir := setupTestStore(t, "notes.json")
	require.NoError(t, store.Put(ctx, sampleNote("1", "x")))

	other := NewStore(Config{Path: filepath.Join(dir, "notes.json")})
	require.NoError(t, other.Put(ctx, sampleNote("2", "from another writer")))

	n, err := store.Get(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "from another writer", n.Title)
}

// Two stores on one file stand in for two processes; the lock file keeps
// every read-modify-write from losing updates.
func TestStore_ConcurrentWritersDoNotLoseUpdates(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.json")

	a := core.NewService(NewStore(Config{Path: path}))
	b := core.NewService(NewStore(Config{Path: path}))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		for _, svc := range []*core.Service{a, b} {
			wg.Add(1)
			go func(svc *core.Service) {
				defer wg.Done()
				_, err := svc.Create(ctx, core.NoteInput{Title: "concurrent"})
				assert.NoError(t, err)
			}(svc)
		}
	}
	wg.Wait()

	all, err := NewStore(Config{Path: path}).List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 20)
}

func TestStore_Versioning(t *testing.T) {
	if !git.IsInstalled() {
		t.Skip("git not installed")
	}
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.json")

	store := NewStore(Config{Path: path, Versioning: true})
	require.NoError(t, store.Initialize(ctx))

	svc := core.NewService(store, core.WithIDAllocator(core.NewCounterAllocator()))
	n, err := svc.Create(ctx, core.NoteInput{Title: "tracked"})
	require.NoError(t, err)
	_, err = svc.Update(ctx, n.ID, core.NoteInput{Title: "tracked v2"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, n.ID))

	subjects, err := git.NewClient(dir, nil).Log(ctx, "notes.json", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"delete note 1", "update note 1", "create note 1"}, subjects)

	ignore, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(ignore), "notes.json.lock"))
}
