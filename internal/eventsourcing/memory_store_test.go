package eventsourcing

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/clivox/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const noteKind = "Note"

func newNoteStore() *MemoryStore {
	store := NewMemoryStore(newNoteSerializer())
	store.RegisterMaterializer(noteKind, NewMaterializer[*note](noteProjection{}))
	return store
}

func TestMemoryStore_StartStream(t *testing.T) {
	ctx := context.Background()

	t.Run("creates stream and assigns 1-based sequences", func(t *testing.T) {
		store := newNoteStore()
		id := uuid.Must(uuid.NewV7())

		err := store.StartStream(ctx, noteKind, id,
			&noteCreated{Text: "a"},
			&noteTextChanged{Text: "b"},
		)
		require.NoError(t, err)

		stream, err := store.LoadStream(ctx, id)
		require.NoError(t, err)
		require.Len(t, stream, 2)
		assert.Equal(t, int64(1), stream[0].Envelope.Sequence)
		assert.Equal(t, int64(2), stream[1].Envelope.Sequence)
		assert.Equal(t, "NoteCreated", stream[0].Envelope.EventName)
		assert.Equal(t, id, stream[0].Envelope.AggregateID)
	})

	t.Run("rejects duplicate stream", func(t *testing.T) {
		store := newNoteStore()
		id := uuid.Must(uuid.NewV7())

		require.NoError(t, store.StartStream(ctx, noteKind, id, &noteCreated{Text: "a"}))

		err := store.StartStream(ctx, noteKind, id, &noteCreated{Text: "again"})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("rejects empty event list", func(t *testing.T) {
		store := newNoteStore()

		err := store.StartStream(ctx, noteKind, uuid.Must(uuid.NewV7()))
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestMemoryStore_Append(t *testing.T) {
	ctx := context.Background()

	t.Run("appends after matching expected version", func(t *testing.T) {
		store := newNoteStore()
		id := uuid.Must(uuid.NewV7())
		require.NoError(t, store.StartStream(ctx, noteKind, id, &noteCreated{Text: "a"}))

		err := store.Append(ctx, id, 1, &noteTextChanged{Text: "b"})
		require.NoError(t, err)

		stream, err := store.LoadStream(ctx, id)
		require.NoError(t, err)
		require.Len(t, stream, 2)
		assert.Equal(t, int64(2), stream[1].Envelope.Sequence)
	})

	t.Run("unknown stream fails", func(t *testing.T) {
		store := newNoteStore()

		err := store.Append(ctx, uuid.Must(uuid.NewV7()), 0, &noteTextChanged{Text: "x"})
		assert.ErrorIs(t, err, shared.ErrStreamNotFound)
	})

	t.Run("stale expected version conflicts", func(t *testing.T) {
		store := newNoteStore()
		id := uuid.Must(uuid.NewV7())
		require.NoError(t, store.StartStream(ctx, noteKind, id, &noteCreated{Text: "a"}))
		require.NoError(t, store.Append(ctx, id, 1, &noteTextChanged{Text: "b"}))

		err := store.Append(ctx, id, 1, &noteTextChanged{Text: "lost race"})
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("any version skips the concurrency check", func(t *testing.T) {
		store := newNoteStore()
		id := uuid.Must(uuid.NewV7())
		require.NoError(t, store.StartStream(ctx, noteKind, id, &noteCreated{Text: "a"}))

		err := store.Append(ctx, id, AnyVersion, &noteDeleted{})
		require.NoError(t, err)

		stream, err := store.LoadStream(ctx, id)
		require.NoError(t, err)
		assert.Len(t, stream, 2)
	})

	t.Run("conflict leaves the stream untouched", func(t *testing.T) {
		store := newNoteStore()
		id := uuid.Must(uuid.NewV7())
		require.NoError(t, store.StartStream(ctx, noteKind, id, &noteCreated{Text: "a"}))

		require.Error(t, store.Append(ctx, id, 5, &noteTextChanged{Text: "nope"}))

		stream, err := store.LoadStream(ctx, id)
		require.NoError(t, err)
		assert.Len(t, stream, 1)
	})
}

func TestMemoryStore_LoadStream(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown stream yields empty history", func(t *testing.T) {
		store := newNoteStore()

		stream, err := store.LoadStream(ctx, uuid.Must(uuid.NewV7()))
		require.NoError(t, err)
		assert.Empty(t, stream)
	})

	t.Run("history includes tombstones", func(t *testing.T) {
		store := newNoteStore()
		id := uuid.Must(uuid.NewV7())
		require.NoError(t, store.StartStream(ctx, noteKind, id, &noteCreated{Text: "a"}))
		require.NoError(t, store.Append(ctx, id, 1, &noteDeleted{}))

		stream, err := store.LoadStream(ctx, id)
		require.NoError(t, err)
		require.Len(t, stream, 2)
		assert.Equal(t, "NoteDeleted", stream[1].Envelope.EventName)
	})

	t.Run("events round-trip through the serializer", func(t *testing.T) {
		store := newNoteStore()
		id := uuid.Must(uuid.NewV7())
		original := &noteCreated{Text: "round trip"}
		require.NoError(t, store.StartStream(ctx, noteKind, id, original))

		stream, err := store.LoadStream(ctx, id)
		require.NoError(t, err)
		require.Len(t, stream, 1)

		loaded, ok := stream[0].Event.(*noteCreated)
		require.True(t, ok)
		assert.Equal(t, original.Text, loaded.Text)
		assert.NotSame(t, original, loaded)
	})
}

func TestMemoryStore_QuerySnapshots(t *testing.T) {
	ctx := context.Background()

	t.Run("snapshot reflects latest state after every append", func(t *testing.T) {
		store := newNoteStore()
		at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		store.SetClock(func() time.Time { return at })

		id := uuid.Must(uuid.NewV7())
		require.NoError(t, store.StartStream(ctx, noteKind, id, &noteCreated{Text: "v1"}))
		require.NoError(t, store.Append(ctx, id, 1, &noteTextChanged{Text: "v2"}))

		snapshots, err := store.QuerySnapshots(ctx, noteKind)
		require.NoError(t, err)
		require.Len(t, snapshots, 1)

		snap := snapshots[0]
		assert.Equal(t, id, snap.StreamID)
		assert.Equal(t, noteKind, snap.Kind)
		assert.Equal(t, int64(2), snap.Version)

		var state note
		require.NoError(t, json.Unmarshal(snap.Data, &state))
		assert.Equal(t, "v2", state.Text)
		assert.Equal(t, at, state.CreatedOn)
		assert.Equal(t, at, state.ModifiedOn)
	})

	t.Run("tombstoned aggregates leave the live set", func(t *testing.T) {
		store := newNoteStore()
		keep := uuid.Must(uuid.NewV7())
		drop := uuid.Must(uuid.NewV7())
		require.NoError(t, store.StartStream(ctx, noteKind, keep, &noteCreated{Text: "keep"}))
		require.NoError(t, store.StartStream(ctx, noteKind, drop, &noteCreated{Text: "drop"}))
		require.NoError(t, store.Append(ctx, drop, AnyVersion, &noteDeleted{}))

		snapshots, err := store.QuerySnapshots(ctx, noteKind)
		require.NoError(t, err)
		require.Len(t, snapshots, 1)
		assert.Equal(t, keep, snapshots[0].StreamID)
	})

	t.Run("kinds are isolated", func(t *testing.T) {
		store := newNoteStore()
		id := uuid.Must(uuid.NewV7())
		require.NoError(t, store.StartStream(ctx, noteKind, id, &noteCreated{Text: "a"}))

		snapshots, err := store.QuerySnapshots(ctx, "Other")
		require.NoError(t, err)
		assert.Empty(t, snapshots)
	})

	t.Run("unregistered kind keeps no snapshot", func(t *testing.T) {
		store := NewMemoryStore(newNoteSerializer())
		id := uuid.Must(uuid.NewV7())
		require.NoError(t, store.StartStream(ctx, noteKind, id, &noteCreated{Text: "a"}))

		snapshots, err := store.QuerySnapshots(ctx, noteKind)
		require.NoError(t, err)
		assert.Empty(t, snapshots)
	})
}
