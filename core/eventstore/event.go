package eventstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is an immutable fact describing a state change. The payload is
// opaque to the store; hosts choose the serialization of their domain
// events. AggregateID and Version are stamped by the backend on append.
type Event struct {
	ID          string          `json:"id"`
	AggregateID string          `json:"aggregate_id"`
	Version     uint64          `json:"version"`
	Payload     json.RawMessage `json:"payload"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewEvent creates an Event with an auto-generated ID and timestamp from a
// serializable payload.
//
// Example:
//
//	type UserCreated struct {
//	    Email string `json:"email"`
//	}
//
//	e, err := eventstore.NewEvent(UserCreated{Email: "user@example.com"})
func NewEvent(payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal event payload: %w", err)
	}
	return Event{
		ID:        uuid.New().String(),
		Payload:   data,
		CreatedAt: time.Now(),
	}, nil
}

// Decode unmarshals the event payload into target.
func (e Event) Decode(target any) error {
	return json.Unmarshal(e.Payload, target)
}

// Aggregate is a domain entity whose state is reconstituted from a totally
// ordered stream of events. Apply must be deterministic and side-effect-free
// so that replaying a stream always reproduces the same state.
type Aggregate interface {
	Apply(e Event)
}

// Replay applies events to the aggregate in order.
func Replay(a Aggregate, events []Event) {
	for _, e := range events {
		a.Apply(e)
	}
}

// Snapshot pairs a serialized aggregate state with the number of events it
// subsumes. Replaying events[version:] onto the snapshot state reproduces
// the state obtained by replaying the full stream.
type Snapshot struct {
	State   []byte
	Version uint64
}
