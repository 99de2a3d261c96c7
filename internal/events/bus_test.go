package events_test

import (
	"errors"
	"testing"

	"github.com/KirkDiggler/gurps-sheet-engine/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testListener struct {
	id       string
	priority int
	handler  func(events.Change) error
}

func (l *testListener) HandleChange(c events.Change) error { return l.handler(c) }
func (l *testListener) Priority() int                      { return l.priority }
func (l *testListener) ID() string                         { return l.id }

func TestBus_Priority(t *testing.T) {
	bus := events.NewBus()
	var order []string
	record := func(name string) func(events.Change) error {
		return func(events.Change) error {
			order = append(order, name)
			return nil
		}
	}

	bus.Subscribe("attr.st", &testListener{id: "low", priority: 300, handler: record("low")})
	bus.Subscribe("attr.st", &testListener{id: "high", priority: 100, handler: record("high")})
	bus.Subscribe(events.Wildcard, &testListener{id: "all", priority: 0, handler: record("all")})

	require.NoError(t, bus.Emit(events.Change{ID: "attr.st", Old: 10, New: 11}))
	assert.Equal(t, []string{"high", "low", "all"}, order, "specific listeners run before wildcard ones")
}

func TestBus_WildcardOnlyAndDuplicates(t *testing.T) {
	bus := events.NewBus()
	var seen []string
	l := &testListener{id: "ui", handler: func(c events.Change) error {
		seen = append(seen, c.ID)
		return nil
	}}
	bus.Subscribe(events.Wildcard, l)
	bus.Subscribe("damage.swing", l)

	require.NoError(t, bus.Emit(
		events.Change{ID: "damage.thrust", Old: "1d-2", New: "1d-1"},
		events.Change{ID: "damage.swing", Old: "1d", New: "1d+1"},
	))
	assert.Equal(t, []string{"damage.thrust", "damage.swing"}, seen)
}

func TestBus_ErrorsDoNotStopDelivery(t *testing.T) {
	bus := events.NewBus()
	calls := 0
	bus.Subscribe("points.spent", &testListener{id: "broken", priority: 1, handler: func(events.Change) error {
		return errors.New("boom")
	}})
	bus.Subscribe("points.spent", &testListener{id: "ok", priority: 2, handler: func(events.Change) error {
		calls++
		return nil
	}})

	err := bus.Emit(events.Change{ID: "points.spent", Old: 0, New: 10}, events.Change{ID: "points.spent", Old: 10, New: 12})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listener broken failed on points.spent")
	assert.Equal(t, 2, calls)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := events.NewBus()
	calls := 0
	bus.Subscribe("encumbrance", &events.ListenerFunc{Name: "panel", Callback: func(events.Change) error {
		calls++
		return nil
	}})
	assert.True(t, bus.HasListeners())

	bus.Unsubscribe("encumbrance", "panel")
	assert.False(t, bus.HasListeners())
	require.NoError(t, bus.Emit(events.Change{ID: "encumbrance"}))
	assert.Zero(t, calls)

	bus.Subscribe("encumbrance", &events.ListenerFunc{Name: "panel", Callback: func(events.Change) error { return nil }})
	bus.Clear()
	assert.False(t, bus.HasListeners())
}

func TestChange_String(t *testing.T) {
	assert.Equal(t, "attr.st: 10 -> 11", events.Change{ID: "attr.st", Old: 10, New: 11}.String())
}
