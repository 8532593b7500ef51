package eventsourcing

import (
	"fmt"

	"github.com/clivox/backend/internal/domain/shared"
)

// Test fixture: a minimal note aggregate with a text field, an updated event
// and a tombstone. Enough surface to exercise replay, snapshots and the
// store contract without pulling in real domain packages.

type note struct {
	shared.BaseAggregateRoot
	Text string `json:"text"`
}

type noteCreated struct {
	Text string `json:"text"`
}

func (e *noteCreated) EventName() string { return "NoteCreated" }

type noteTextChanged struct {
	Text string `json:"text"`
}

func (e *noteTextChanged) EventName() string { return "NoteTextChanged" }

type noteDeleted struct{}

func (e *noteDeleted) EventName() string { return "NoteDeleted" }
func (e *noteDeleted) Tombstone()        {}

type noteProjection struct{}

func (noteProjection) Zero() *note { return &note{} }

func (noteProjection) Apply(state *note, event shared.DomainEvent) (*note, error) {
	next := *state
	switch e := event.(type) {
	case *noteCreated:
		next.Text = e.Text
	case *noteTextChanged:
		next.Text = e.Text
	case *noteDeleted:
	default:
		return nil, fmt.Errorf("note projection: %s: %w", event.EventName(), shared.ErrUnhandledEvent)
	}
	return &next, nil
}

func (noteProjection) ApplyMetadata(state *note, last Envelope) *note {
	next := *state
	if next.CreatedOn.IsZero() {
		next.CreatedOn = last.OccurredOn
	}
	next.ModifiedOn = last.OccurredOn
	return &next
}

func newNoteSerializer() *Serializer {
	s := NewSerializer()
	s.Register("NoteCreated", &noteCreated{})
	s.Register("NoteTextChanged", &noteTextChanged{})
	s.Register("NoteDeleted", &noteDeleted{})
	return s
}
