package events

import "fmt"

// Wildcard subscribes a listener to every change id
const Wildcard = "*"

// Change reports that a derived sheet value moved from Old to New
type Change struct {
	ID  string `json:"id"`
	Old any    `json:"old"`
	New any    `json:"new"`
}

func (c Change) String() string {
	return fmt.Sprintf("%s: %v -> %v", c.ID, c.Old, c.New)
}

// ChangeListener processes changes
type ChangeListener interface {
	HandleChange(change Change) error
	Priority() int
	ID() string
}

// ListenerFunc adapts a function into a ChangeListener
type ListenerFunc struct {
	Name     string
	Order    int
	Callback func(Change) error
}

func (f *ListenerFunc) HandleChange(change Change) error { return f.Callback(change) }
func (f *ListenerFunc) Priority() int                    { return f.Order }
func (f *ListenerFunc) ID() string                       { return f.Name }
