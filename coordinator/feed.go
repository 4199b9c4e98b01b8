package coordinator

import (
	"strings"
	"sync"
)

// Feed holds the last scanned customer id and hands it to a single
// consumer — the Go rendition of the scanner-to-analytics hand-off. It
// is a one-slot conflating channel: an id published before the previous
// one was consumed overwrites it (last writer wins).
type Feed struct {
	mu     sync.Mutex
	last   string
	ch     chan string
	closed bool
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{ch: make(chan string, 1)}
}

// Set publishes a scanned id. Publishing never blocks.
func (f *Feed) Set(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.last = id
	select {
	case f.ch <- id:
	default:
		// Slot occupied: replace the undelivered id.
		select {
		case <-f.ch:
		default:
		}
		f.ch <- id
	}
}

// Peek returns the last published id without consuming it.
func (f *Feed) Peek() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

// C is the consumer side of the feed.
func (f *Feed) C() <-chan string {
	return f.ch
}

// Close tears the feed down; Set calls after Close are ignored.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.ch)
	}
}

// AttachFeed subscribes the coordinator to a feed. Each non-blank
// emission is treated as a search; blank ids are ignored. The consumer
// goroutine exits when the feed is closed.
func (c *Coordinator) AttachFeed(f *Feed) {
	go func() {
		for id := range f.C() {
			if strings.TrimSpace(id) == "" {
				continue
			}
			c.Search(id)
		}
	}()
}
