package events

import (
	"sync"

	"github.com/crystal-mush/softcode/pkg/gamedb"
)

// Subscriber receives events from the bus.
type Subscriber interface {
	Receive(ev Event)
	Closed() bool
}

// subscription pairs a subscriber with the event types it wants.
// A zero mask accepts every type.
type subscription struct {
	sub  Subscriber
	mask uint32
}

func (s subscription) wants(t EventType) bool {
	return s.mask == 0 || s.mask&(1<<uint(t)) != 0
}

func typeMask(types []EventType) uint32 {
	var m uint32
	for _, t := range types {
		m |= 1 << uint(t)
	}
	return m
}

// Bus is a per-object pub/sub event bus with support for global subscribers.
// The evaluator's notifications are emitted here; each subscriber (console
// writer, logger, test recorder) decides how to present them.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[gamedb.DBRef][]subscription
	global      []subscription
}

// NewBus creates a new event bus.
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[gamedb.DBRef][]subscription),
	}
}

// Subscribe registers a subscriber for events addressed to player. With
// types given, only those event types are delivered.
func (b *Bus) Subscribe(player gamedb.DBRef, sub Subscriber, types ...EventType) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[player] = append(b.subscribers[player], subscription{sub: sub, mask: typeMask(types)})
}

// Unsubscribe removes every registration of sub for player.
func (b *Bus) Unsubscribe(player gamedb.DBRef, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var kept []subscription
	for _, s := range b.subscribers[player] {
		if s.sub != sub {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		delete(b.subscribers, player)
	} else {
		b.subscribers[player] = kept
	}
}

// SubscribeGlobal registers a subscriber that receives events for every
// recipient, optionally limited to some event types.
func (b *Bus) SubscribeGlobal(sub Subscriber, types ...EventType) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.global = append(b.global, subscription{sub: sub, mask: typeMask(types)})
}

// Emit sends an event to the subscribers of ev.Player and all global subscribers.
func (b *Bus) Emit(ev Event) {
	b.mu.RLock()
	subs := b.subscribers[ev.Player]
	globals := b.global
	b.mu.RUnlock()

	deliver(subs, ev)
	deliver(globals, ev)
}

func deliver(subs []subscription, ev Event) {
	for _, s := range subs {
		if s.wants(ev.Type) && !s.sub.Closed() {
			s.sub.Receive(ev)
		}
	}
}

// EmitToPlayer sends an event to a specific player (overriding ev.Player).
func (b *Bus) EmitToPlayer(player gamedb.DBRef, ev Event) {
	ev.Player = player
	b.Emit(ev)
}

// PlayerSubscribers returns the number of subscribers for a player.
func (b *Bus) PlayerSubscribers(player gamedb.DBRef) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[player])
}

// Cleanup removes closed subscribers from all lists.
func (b *Bus) Cleanup() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for player, subs := range b.subscribers {
		active := pruneClosed(subs)
		if len(active) == 0 {
			delete(b.subscribers, player)
		} else {
			b.subscribers[player] = active
		}
	}
	b.global = pruneClosed(b.global)
}

func pruneClosed(subs []subscription) []subscription {
	var active []subscription
	for _, s := range subs {
		if !s.sub.Closed() {
			active = append(active, s)
		}
	}
	return active
}
