package amqp

import (
	"encoding/json"
	"time"
)

// Event kinds published on the ledger events stream.
const (
	KindEntryPosted      = "entry_posted"
	KindEntryDeleted     = "entry_deleted"
	KindPaymentSettled   = "payment_settled"
	KindPaymentCancelled = "payment_cancelled"
)

// Event is the wire message for downstream consumers (notification and sync
// workers). It carries identifiers only; consumers fetch the current record
// from storage, so a stale message can never resurrect deleted data.
type Event struct {
	Kind      string    `json:"kind"`
	OwnerID   string    `json:"owner_id"`
	EntityID  string    `json:"entity_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent creates an event stamped with the current time.
func NewEvent(kind, ownerID, entityID string) *Event {
	return &Event{
		Kind:      kind,
		OwnerID:   ownerID,
		EntityID:  entityID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON parses an event from JSON bytes.
func EventFromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
