package events

import (
	"bytes"
	"sync"
	"testing"

	"github.com/crystal-mush/softcode/pkg/eval"
	"github.com/crystal-mush/softcode/pkg/gamedb"
)

// mockSubscriber implements Subscriber for testing.
type mockSubscriber struct {
	mu       sync.Mutex
	events   []Event
	isClosed bool
}

func (m *mockSubscriber) Receive(ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

func (m *mockSubscriber) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isClosed
}

func (m *mockSubscriber) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]Event, len(m.events))
	copy(cp, m.events)
	return cp
}

func TestBusEmitToPlayer(t *testing.T) {
	bus := NewBus()
	sub := &mockSubscriber{}

	player := gamedb.DBRef(1)
	bus.Subscribe(player, sub)

	bus.EmitToPlayer(player, Event{Type: EvNotify, Source: player, Text: "Hello world"})

	events := sub.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Text != "Hello world" {
		t.Errorf("expected text %q, got %q", "Hello world", events[0].Text)
	}
	if events[0].Player != player {
		t.Errorf("expected player %v, got %v", player, events[0].Player)
	}
}

func TestBusOtherPlayerNotDelivered(t *testing.T) {
	bus := NewBus()
	sub := &mockSubscriber{}
	bus.Subscribe(gamedb.DBRef(1), sub)

	bus.Emit(Event{Type: EvText, Player: gamedb.DBRef(2), Text: "not yours"})

	if len(sub.Events()) != 0 {
		t.Error("subscriber received another player's event")
	}
}

func TestBusGlobalSubscriber(t *testing.T) {
	bus := NewBus()
	global := &mockSubscriber{}
	bus.SubscribeGlobal(global)

	bus.Emit(Event{Type: EvTrace, Player: gamedb.DBRef(5), Text: "test msg"})

	events := global.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 global event, got %d", len(events))
	}
	if events[0].Type != EvTrace {
		t.Errorf("expected type trace, got %v", events[0].Type)
	}
}

func TestBusTypeFilter(t *testing.T) {
	bus := NewBus()
	traces := &mockSubscriber{}
	all := &mockSubscriber{}
	player := gamedb.DBRef(3)
	bus.Subscribe(player, traces, EvTrace)
	bus.Subscribe(player, all)

	bus.Emit(Event{Type: EvNotify, Player: player, Text: "a"})
	bus.Emit(Event{Type: EvTrace, Player: player, Text: "b"})

	if got := traces.Events(); len(got) != 1 || got[0].Text != "b" {
		t.Errorf("filtered subscriber got %+v, want only the trace event", got)
	}
	if got := all.Events(); len(got) != 2 {
		t.Errorf("unfiltered subscriber got %d events, want 2", len(got))
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus()
	sub := &mockSubscriber{}
	player := gamedb.DBRef(1)

	bus.Subscribe(player, sub)
	bus.Unsubscribe(player, sub)

	bus.Emit(Event{Type: EvText, Player: player, Text: "should not arrive"})

	if len(sub.Events()) != 0 {
		t.Error("expected no events after unsubscribe")
	}
	if n := bus.PlayerSubscribers(player); n != 0 {
		t.Errorf("expected 0 subscribers, got %d", n)
	}
}

func TestBusClosedSubscriberSkipped(t *testing.T) {
	bus := NewBus()
	sub := &mockSubscriber{isClosed: true}
	player := gamedb.DBRef(1)

	bus.Subscribe(player, sub)
	bus.Emit(Event{Type: EvText, Player: player, Text: "no delivery"})

	if len(sub.Events()) != 0 {
		t.Error("closed subscriber should not receive events")
	}
}

func TestBusCleanup(t *testing.T) {
	bus := NewBus()
	active := &mockSubscriber{}
	closed := &mockSubscriber{isClosed: true}
	player := gamedb.DBRef(1)

	bus.Subscribe(player, active)
	bus.Subscribe(player, closed)
	bus.SubscribeGlobal(&mockSubscriber{isClosed: true})

	bus.Cleanup()

	if bus.PlayerSubscribers(player) != 1 {
		t.Errorf("expected 1 active subscriber, got %d", bus.PlayerSubscribers(player))
	}
}

func TestNotifierMapsTypes(t *testing.T) {
	bus := NewBus()
	sub := &mockSubscriber{}
	owner := gamedb.DBRef(2)
	bus.Subscribe(owner, sub)

	n := &Notifier{Bus: bus, Source: gamedb.DBRef(7)}
	n.Notify(eval.Notification{Target: owner, Message: "hello", Type: eval.NotifyPemit})
	n.Notify(eval.Notification{Target: owner, Message: "Thing(#7)} 'a' -> 'b'", Type: eval.NotifyTrace})

	events := sub.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Type != EvNotify || events[1].Type != EvTrace {
		t.Errorf("types = %v, %v; want notify, trace", events[0].Type, events[1].Type)
	}
	if events[1].Source != gamedb.DBRef(7) {
		t.Errorf("source = %v, want #7", events[1].Source)
	}
}

func TestWriterSubscriber(t *testing.T) {
	var out bytes.Buffer
	w := NewWriterSubscriber(&out)
	w.Receive(Event{Type: EvText, Text: "one"})
	w.Prefix = true
	w.Receive(Event{Type: EvTrace, Player: gamedb.DBRef(4), Text: "two"})
	w.Close()
	w.Receive(Event{Type: EvText, Text: "three"})

	want := "one\n[trace #4] two\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
	if !w.Closed() {
		t.Error("expected subscriber to report closed")
	}
}

func TestEventTypeString(t *testing.T) {
	tests := []struct {
		t    EventType
		want string
	}{
		{EvText, "text"},
		{EvNotify, "notify"},
		{EvTrace, "trace"},
		{EventType(999), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("EventType(%d).String() = %q, want %q", tt.t, got, tt.want)
		}
	}
}
