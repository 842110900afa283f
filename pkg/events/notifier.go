package events

import (
	"fmt"
	"io"
	"sync"

	"github.com/crystal-mush/softcode/pkg/eval"
	"github.com/crystal-mush/softcode/pkg/gamedb"
)

// Notifier adapts a Bus to eval.Notifier so evaluator output (trace lines,
// pemits) is delivered as events.
type Notifier struct {
	Bus *Bus
	// Source is stamped on every event, usually the executing object.
	Source gamedb.DBRef
}

// Notify implements eval.Notifier.
func (n *Notifier) Notify(note eval.Notification) {
	typ := EvNotify
	if note.Type == eval.NotifyTrace {
		typ = EvTrace
	}
	n.Bus.Emit(Event{
		Type:   typ,
		Player: note.Target,
		Source: n.Source,
		Text:   note.Message,
	})
}

// WriterSubscriber prints the text of every event it receives, one line
// each, to an io.Writer.
type WriterSubscriber struct {
	mu     sync.Mutex
	w      io.Writer
	closed bool
	// Prefix tags lines with the event type when set.
	Prefix bool
}

// NewWriterSubscriber returns a subscriber writing to w.
func NewWriterSubscriber(w io.Writer) *WriterSubscriber {
	return &WriterSubscriber{w: w}
}

// Receive implements Subscriber.
func (s *WriterSubscriber) Receive(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.Prefix {
		fmt.Fprintf(s.w, "[%s %s] %s\n", ev.Type, ev.Player, ev.Text)
		return
	}
	fmt.Fprintln(s.w, ev.Text)
}

// Closed implements Subscriber.
func (s *WriterSubscriber) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close stops delivery; the bus drops the subscriber on its next Cleanup.
func (s *WriterSubscriber) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}
