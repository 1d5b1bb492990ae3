package holdtest

import (
	"context"
	"sync"

	"github.com/MrJamesThe3rd/consignd/internal/history"
)

// Notifier records published history events.
type Notifier struct {
	mu     sync.Mutex
	events []history.Event
	Err    error
}

func (n *Notifier) Publish(_ context.Context, ev history.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.events = append(n.events, ev)

	return n.Err
}

func (n *Notifier) Events() []history.Event {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]history.Event, len(n.events))
	copy(out, n.events)

	return out
}
