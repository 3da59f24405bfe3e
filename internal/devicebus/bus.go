package devicebus

import (
	"github.com/google/uuid"
)

// EventKind distinguishes the two shapes of DeviceManagerEvent.
type EventKind int

const (
	// DeviceDiscovered fires the first time a device is registered.
	DeviceDiscovered EventKind = iota
	// DeviceUpdated fires whenever a known field changes.
	DeviceUpdated
)

// Event is the tagged union published to subscribers. Device is always a
// by-value snapshot, never a live reference into the table.
type Event struct {
	Kind   EventKind
	Device Device
}

type subscriber struct {
	id uuid.UUID
	ch chan Event
}

// Bus is a fan-out list of one-shot-subscriber channels. It is not
// goroutine-safe on its own — see the package doc: the device manager
// holds a single mutex around every Bus operation.
type Bus struct {
	subs []subscriber
}

// NewBus creates an empty event bus.
func NewBus() *Bus { return &Bus{} }

// Subscribe registers a new channel and returns its id (for logging when
// it is later pruned) and the receiving end.
func (b *Bus) Subscribe(buffer int) (uuid.UUID, <-chan Event) {
	id := uuid.New()
	ch := make(chan Event, buffer)
	b.subs = append(b.subs, subscriber{id: id, ch: ch})
	return id, ch
}

// Publish delivers event to every live subscriber. A subscriber whose
// channel is full (buffer exhausted, receiver not keeping up or gone) is
// dropped on the spot — the channel is closed and removed — rather than
// blocking the publisher indefinitely.
func (b *Bus) Publish(event Event) []uuid.UUID {
	var lapsed []uuid.UUID
	live := b.subs[:0]
	for _, s := range b.subs {
		select {
		case s.ch <- event:
			live = append(live, s)
		default:
			close(s.ch)
			lapsed = append(lapsed, s.id)
		}
	}
	b.subs = live
	return lapsed
}

// Len reports the current live subscriber count.
func (b *Bus) Len() int { return len(b.subs) }
