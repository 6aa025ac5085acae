package backend

import (
	"context"
	"sync"
	"time"
)

// Inbox serves the support messages from a periodically refreshed
// snapshot so the admin view does not hit the backend on every read.
type Inbox struct {
	client *Client
	poller *Poller

	mu     sync.RWMutex
	msgs   []Message
	primed bool
}

func NewInbox(client *Client, interval time.Duration) *Inbox {
	in := &Inbox{client: client}
	in.poller = NewPoller(interval, in.refresh)
	return in
}

func (in *Inbox) Start(ctx context.Context) { in.poller.Start(ctx) }

func (in *Inbox) Stop() { in.poller.Stop() }

func (in *Inbox) refresh(ctx context.Context) error {
	msgs, err := in.client.Messages(ctx)
	if err != nil {
		return err
	}

	in.mu.Lock()
	in.msgs = msgs
	in.primed = true
	in.mu.Unlock()
	return nil
}

// Messages returns the cached snapshot. Before the first successful
// refresh it falls through to a direct fetch.
func (in *Inbox) Messages(ctx context.Context) ([]Message, error) {
	in.mu.RLock()
	if in.primed {
		out := make([]Message, len(in.msgs))
		copy(out, in.msgs)
		in.mu.RUnlock()
		return out, nil
	}
	in.mu.RUnlock()

	return in.client.Messages(ctx)
}
