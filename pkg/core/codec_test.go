package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notekeeper/pkg/core"
)

func TestDecodeNotes_Empty(t *testing.T) {
	for _, in := range []string{"", "   ", "null", "[]"} {
		notes, err := core.DecodeNotes([]byte(in))
		require.NoError(t, err, "input %q", in)
		assert.NotNil(t, notes)
		assert.Empty(t, notes)
	}
}

func TestDecodeNotes_Unified(t *testing.T) {
	data := `[{"id":"a1","title":"T","category":"C","content":"<p>x</p>",
		"createdAt":"2024-03-01T10:00:00Z","updatedAt":"2024-03-02T10:00:00Z"}]`

	notes, err := core.DecodeNotes([]byte(data))
	require.NoError(t, err)
	require.Len(t, notes, 1)

	n := notes[0]
	assert.Equal(t, "a1", n.ID)
	assert.Equal(t, "<p>x</p>", n.Content)
	assert.True(t, n.CreatedAt.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)))
	assert.True(t, n.UpdatedAt.Equal(time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)))
}

func TestDecodeNotes_Legacy(t *testing.T) {
	t.Run("browser shape", func(t *testing.T) {
		data := `[{"_id":"1709287200000","title":"T","category":"C","content":"","createdAt":"2024-03-01T10:00:00.000Z"}]`
		notes, err := core.DecodeNotes([]byte(data))
		require.NoError(t, err)
		require.Len(t, notes, 1)
		assert.Equal(t, "1709287200000", notes[0].ID)
		assert.True(t, notes[0].UpdatedAt.Equal(notes[0].CreatedAt))
	})

	t.Run("server shape", func(t *testing.T) {
		data := `[{"id":"7","title":"T","category":"C","content":"","created":"2024-03-01T10:00:00Z","extra":true}]`
		notes, err := core.DecodeNotes([]byte(data))
		require.NoError(t, err)
		require.Len(t, notes, 1)
		assert.Equal(t, "7", notes[0].ID)
		assert.True(t, notes[0].CreatedAt.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)))
		assert.True(t, notes[0].UpdatedAt.Equal(notes[0].CreatedAt))
	})
}

func TestDecodeNotes_Corrupt(t *testing.T) {
	cases := map[string]string{
		"not json":     `{{{`,
		"object":       `{"id":"1"}`,
		"missing id":   `[{"title":"x"}]`,
		"duplicate id": `[{"id":"1","title":"a"},{"id":"1","title":"b"}]`,
		"bad time":     `[{"id":"1","createdAt":"yesterday"}]`,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			notes, err := core.DecodeNotes([]byte(data))
			assert.ErrorIs(t, err, core.ErrStorageCorrupt)
			assert.Nil(t, notes)
		})
	}
}

func TestEncodeNotes(t *testing.T) {
	data, err := core.EncodeNotes(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))

	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	in := []core.Note{{ID: "1", Title: "T", Category: "C", Content: "x", CreatedAt: ts, UpdatedAt: ts}}
	data, err = core.EncodeNotes(in)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1","title":"T","category":"C","content":"x",
		"createdAt":"2024-03-01T10:00:00Z","updatedAt":"2024-03-01T10:00:00Z"}]`, string(data))

	back, err := core.DecodeNotes(data)
	require.NoError(t, err)
	require.Len(t, back, 1)
	assert.True(t, back[0].CreatedAt.Equal(ts))
	assert.Equal(t, in[0].Title, back[0].Title)
}
