package lifecycle_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	noteslifecycle "github.com/aretw0/notekeeper/pkg/adapters/lifecycle"
	"github.com/aretw0/notekeeper/pkg/core"
)

func TestSource_ForwardsAndCloses(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan core.Event, 3)
	in <- core.Event{Type: core.EventCreate, ID: "1"}
	in <- core.Event{Type: core.EventModify, ID: "1"}
	in <- core.Event{Type: core.EventDelete, ID: "1"}
	close(in)

	src := noteslifecycle.NewSource(in)
	require.NoError(t, src.Start(ctx))

	var got []string
	timeout := time.After(2 * time.Second)
	for {
		select {
		case e, ok := <-src.Events():
			if !ok {
				assert.Equal(t, []string{"CREATE 1", "MODIFY 1", "DELETE 1"}, got)
				return
			}
			got = append(got, fmt.Sprint(e))
		case <-timeout:
			t.Fatal("timeout waiting for source to drain")
		}
	}
}

func TestSource_FiltersTypes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan core.Event, 2)
	in <- core.Event{Type: core.EventModify, ID: "1"}
	in <- core.Event{Type: core.EventDelete, ID: "2"}
	close(in)

	src := noteslifecycle.NewSource(in, noteslifecycle.WithTypes(core.EventDelete))
	require.NoError(t, src.Start(ctx))

	select {
	case e := <-src.Events():
		assert.Equal(t, "DELETE 2", fmt.Sprint(e))
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestSource_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := noteslifecycle.NewSource(make(chan core.Event))
	require.NoError(t, src.Start(ctx))

	cancel()
	select {
	case _, ok := <-src.Events():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("source did not close after cancel")
	}
}
