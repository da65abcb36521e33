package controller

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ryanolf/sonos-manager/internal/ctlevent"
)

func TestAggregatorForwardsFromMultipleSources(t *testing.T) {
	agg := NewAggregator()
	a := make(chan ctlevent.Event, 1)
	b := make(chan ctlevent.Event, 1)
	agg.Add("a", a)
	agg.Add("b", b)

	a <- ctlevent.NewAVTransportChanged("uuid-a", nil)
	b <- ctlevent.NewAVTransportChanged("uuid-b", nil)

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case ev := <-agg.Events():
			seen[ev.UUID] = true
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for forwarded event")
		}
	}
	require.True(t, seen["uuid-a"])
	require.True(t, seen["uuid-b"])
}

func TestAggregatorRemoveStopsForwarding(t *testing.T) {
	agg := NewAggregator()
	source := make(chan ctlevent.Event, 1)
	agg.Add("x", source)
	agg.Remove("x")

	source <- ctlevent.NewAVTransportChanged("uuid-x", nil)

	select {
	case ev := <-agg.Events():
		t.Fatalf("unexpected event forwarded after Remove: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestAggregatorAddReplacesPriorSourceForSameKey(t *testing.T) {
	agg := NewAggregator()
	first := make(chan ctlevent.Event, 1)
	second := make(chan ctlevent.Event, 1)

	agg.Add("k", first)
	agg.Add("k", second)

	second <- ctlevent.NewAVTransportChanged("uuid-second", nil)

	select {
	case ev := <-agg.Events():
		require.Equal(t, "uuid-second", ev.UUID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event from replacement source")
	}

	first <- ctlevent.NewAVTransportChanged("uuid-first", nil)
	select {
	case ev := <-agg.Events():
		t.Fatalf("unexpected event forwarded from detached source: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}
