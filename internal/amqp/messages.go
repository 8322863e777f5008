package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"household/internal/core"
)

// Actions carried by record events.
const (
	ActionCreated = "created"
	ActionToggled = "toggled"
	ActionDeleted = "deleted"
)

// RecordEvent announces a committed change to one household record.
// Consumers fetch the current row from the database when they need its fields.
type RecordEvent struct {
	Kind      core.Kind `json:"kind"`
	ID        int64     `json:"id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordEvent(kind core.Kind, id int64, action string) *RecordEvent {
	return &RecordEvent{
		Kind:      kind,
		ID:        id,
		Action:    action,
		Timestamp: time.Now().UTC(),
	}
}

func (e *RecordEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// RecordEventFromJSON decodes an event and rejects unknown kinds.
func RecordEventFromJSON(data []byte) (*RecordEvent, error) {
	var e RecordEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if !e.Kind.IsValid() {
		return nil, fmt.Errorf("unknown record kind %q", e.Kind)
	}
	return &e, nil
}
