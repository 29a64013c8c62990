package views

import (
	"boostlend/core"
	"encoding/json"
	"time"
)

// Event persisted protocol event
type Event struct {
	ID        int64           `json:"id"`
	TraceID   string          `json:"trace_id"`
	Seq       int             `json:"seq"`
	Name      string          `json:"name"`
	Asset     string          `json:"asset"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
}

// EventsFrom views of records
func EventsFrom(records []*core.EventRecord) []Event {
	events := make([]Event, 0, len(records))
	for _, r := range records {
		events = append(events, Event{
			ID:        r.ID,
			TraceID:   r.TraceID,
			Seq:       r.Seq,
			Name:      r.Name,
			Asset:     r.Asset,
			Data:      json.RawMessage(r.Data),
			CreatedAt: r.CreatedAt,
		})
	}
	return events
}
