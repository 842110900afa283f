package events

import "github.com/crystal-mush/softcode/pkg/gamedb"

// EventType classifies events for transport-specific encoding.
type EventType int

const (
	EvText   EventType = iota // Raw text (universal fallback)
	EvNotify                  // Message produced by softcode for an object
	EvTrace                   // Trace output for an object's owner
)

// String returns a human-readable name for the event type.
func (t EventType) String() string {
	switch t {
	case EvText:
		return "text"
	case EvNotify:
		return "notify"
	case EvTrace:
		return "trace"
	default:
		return "unknown"
	}
}

// Event is a structured event that flows through the event bus.
type Event struct {
	Type   EventType
	Player gamedb.DBRef   // Recipient
	Source gamedb.DBRef   // Who generated the event
	Text   string         // Pre-formatted text
	Data   map[string]any // Structured data for JSON consumers
}
