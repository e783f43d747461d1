package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SeededEvent announces that a batch of transactions was loaded into the store.
// Consumers use it to drop anything derived from the previous contents.
type SeededEvent struct {
	ID        string    `json:"id"`
	Inserted  int       `json:"inserted"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSeededEvent creates an event stamped with a fresh id and the current time.
func NewSeededEvent(inserted int, source string) *SeededEvent {
	return &SeededEvent{
		ID:        uuid.NewString(),
		Inserted:  inserted,
		Source:    source,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *SeededEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// SeededEventFromJSON decodes an event
func SeededEventFromJSON(data []byte) (*SeededEvent, error) {
	var e SeededEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
