package controller

import (
	"sync"

	"github.com/ryanolf/sonos-manager/internal/ctlevent"
)

// Aggregator fans a growing, shrinking set of per-Worker event channels
// into the single stream the Controller Actor's main loop selects over
// (§4.B). Sources can be added and removed while the Aggregator is running;
// it makes no ordering guarantee across sources, only within one.
type Aggregator struct {
	out chan ctlevent.Event

	mu      sync.Mutex
	cancels map[string]chan struct{}
}

// NewAggregator returns an Aggregator whose combined output is read from
// Events().
func NewAggregator() *Aggregator {
	return &Aggregator{
		out:     make(chan ctlevent.Event, 1),
		cancels: make(map[string]chan struct{}),
	}
}

// Events returns the combined event stream.
func (a *Aggregator) Events() <-chan ctlevent.Event {
	return a.out
}

// Add begins forwarding source's events into the combined stream under key.
// If key was already registered its prior source is detached first.
func (a *Aggregator) Add(key string, source <-chan ctlevent.Event) {
	a.Remove(key)

	stop := make(chan struct{})

	a.mu.Lock()
	a.cancels[key] = stop
	a.mu.Unlock()

	go func() {
		for {
			select {
			case <-stop:
				return
			case ev, ok := <-source:
				if !ok {
					return
				}
				select {
				case a.out <- ev:
				case <-stop:
					return
				}
			}
		}
	}()
}

// Remove stops forwarding the source registered under key, if any.
func (a *Aggregator) Remove(key string) {
	a.mu.Lock()
	stop, ok := a.cancels[key]
	if ok {
		delete(a.cancels, key)
	}
	a.mu.Unlock()
	if ok {
		close(stop)
	}
}
