package events

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
)

// Bus distributes sheet changes to listeners keyed by change id
type Bus struct {
	listeners map[string][]ChangeListener
	mu        sync.RWMutex
}

// NewBus creates a new change bus
func NewBus() *Bus {
	return &Bus{
		listeners: make(map[string][]ChangeListener),
	}
}

// Subscribe adds a listener for a change id, or for every change with Wildcard
func (b *Bus) Subscribe(id string, listener ChangeListener) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.listeners[id] = append(b.listeners[id], listener)

	// Sort by priority
	sort.SliceStable(b.listeners[id], func(i, j int) bool {
		return b.listeners[id][i].Priority() < b.listeners[id][j].Priority()
	})

	log.Printf("EventBus: Subscribed listener %s to %s with priority %d",
		listener.ID(), id, listener.Priority())
}

// Unsubscribe removes a listener
func (b *Bus) Unsubscribe(id, listenerID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	listeners := b.listeners[id]
	for i, l := range listeners {
		if l.ID() != listenerID {
			continue
		}
		b.listeners[id] = append(listeners[:i:i], listeners[i+1:]...)
		if len(b.listeners[id]) == 0 {
			delete(b.listeners, id)
		}

		log.Printf("EventBus: Unsubscribed listener %s from %s", listenerID, id)
		return
	}
}

// Emit delivers each change once to each listener subscribed to its id,
// then to wildcard listeners, in priority order. A failing listener does
// not stop delivery; all failures are returned joined.
func (b *Bus) Emit(changes ...Change) error {
	if len(changes) == 0 {
		return nil
	}

	b.mu.RLock()
	snapshot := make(map[string][]ChangeListener, len(b.listeners))
	for id, l := range b.listeners {
		snapshot[id] = append([]ChangeListener(nil), l...)
	}
	b.mu.RUnlock()

	var errs []error
	for _, change := range changes {
		delivered := make(map[string]bool)
		targets := append(snapshot[change.ID], snapshot[Wildcard]...)
		for _, listener := range targets {
			if delivered[listener.ID()] {
				continue
			}
			delivered[listener.ID()] = true
			if err := listener.HandleChange(change); err != nil {
				errs = append(errs, fmt.Errorf("listener %s failed on %s: %w", listener.ID(), change.ID, err))
			}
		}
	}
	return errors.Join(errs...)
}

// HasListeners reports whether anything is subscribed
func (b *Bus) HasListeners() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners) > 0
}

// Clear removes all listeners
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.listeners = make(map[string][]ChangeListener)
	log.Printf("EventBus: Cleared all listeners")
}
