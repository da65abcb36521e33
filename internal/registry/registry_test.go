package registry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ryanolf/sonos-manager/internal/ctlevent"
	"github.com/ryanolf/sonos-manager/internal/topology"
)

type fakeWorker struct {
	closed bool
}

func (w *fakeWorker) Close() { w.closed = true }

func topologyOf(infos ...topology.SpeakerInfo) topology.Topology {
	// Build a single-group topology via FromZoneGroupState's shape is more
	// machinery than this needs; tests only exercise AllSpeakers, so build
	// a Topology through the package's own constructor indirectly using a
	// one-speaker-per-group stand-in implemented locally.
	t := topology.Empty()
	for _, info := range infos {
		t = t.WithGroup(info.UUID, []topology.SpeakerInfo{info})
	}
	return t
}

func TestApplyTopologyAddsAndStartsWorkers(t *testing.T) {
	r := New()
	started := map[string]*fakeWorker{}

	factory := func(info topology.SpeakerInfo) (Worker, <-chan ctlevent.Event, bool) {
		w := &fakeWorker{}
		started[info.UUID] = w
		ch := make(chan ctlevent.Event, 1)
		return w, ch, true
	}

	living := topology.SpeakerInfo{UUID: "RINCON_1", Name: "Living Room"}
	kitchen := topology.SpeakerInfo{UUID: "RINCON_2", Name: "Kitchen"}

	r.ApplyTopology(topologyOf(living, kitchen), factory)

	require.Equal(t, 2, r.Len())
	require.Len(t, started, 2)

	record, ok := r.ByUUID("rincon_1")
	require.True(t, ok, "UUID lookup must be case-insensitive")
	require.Equal(t, "Living Room", record.Info.Name)
	require.NotNil(t, record.Events())
}

func TestApplyTopologyRemovesDepartedSpeakerAndClosesWorker(t *testing.T) {
	r := New()
	var closedWorker *fakeWorker

	factory := func(info topology.SpeakerInfo) (Worker, <-chan ctlevent.Event, bool) {
		w := &fakeWorker{}
		closedWorker = w
		return w, make(chan ctlevent.Event), true
	}

	living := topology.SpeakerInfo{UUID: "RINCON_1", Name: "Living Room"}
	r.ApplyTopology(topologyOf(living), factory)
	require.Equal(t, 1, r.Len())

	r.ApplyTopology(topology.Empty(), factory)

	require.Equal(t, 0, r.Len())
	require.True(t, closedWorker.closed, "departed speaker's worker must be closed")
}

func TestApplyTopologyUpdatesExistingRecordInPlace(t *testing.T) {
	r := New()
	factory := func(info topology.SpeakerInfo) (Worker, <-chan ctlevent.Event, bool) {
		return &fakeWorker{}, make(chan ctlevent.Event), true
	}

	living := topology.SpeakerInfo{UUID: "RINCON_1", Name: "Living Room", Location: "http://10.0.0.5:1400/xml"}
	r.ApplyTopology(topologyOf(living), factory)

	record, _ := r.ByUUID("RINCON_1")
	originalEvents := record.Events()

	renamed := topology.SpeakerInfo{UUID: "RINCON_1", Name: "Den", Location: "http://10.0.0.6:1400/xml"}
	r.ApplyTopology(topologyOf(renamed), factory)

	require.Equal(t, 1, r.Len())
	record, ok := r.ByUUID("RINCON_1")
	require.True(t, ok)
	require.Equal(t, "Den", record.Info.Name)
	require.Equal(t, "http://10.0.0.6:1400/xml", record.Info.Location)
	require.Equal(t, originalEvents, record.Events(), "existing worker handle must be preserved across a rename")
}

func TestApplyTopologyKeepsRecordWhenWorkerFailsToStart(t *testing.T) {
	r := New()
	factory := func(info topology.SpeakerInfo) (Worker, <-chan ctlevent.Event, bool) {
		return nil, nil, false
	}

	living := topology.SpeakerInfo{UUID: "RINCON_1", Name: "Living Room"}
	r.ApplyTopology(topologyOf(living), factory)

	record, ok := r.ByUUID("RINCON_1")
	require.True(t, ok, "speaker record is kept even if its worker could not be started")
	require.Nil(t, record.Events())
}

func TestUpdateTransportStateNoMatchReturnsFalse(t *testing.T) {
	r := New()
	ok := r.UpdateTransportState("RINCON_MISSING", []KV{{Key: "TransportState", Value: "PLAYING"}})
	require.False(t, ok)
}

func TestUpdateTransportStateReplacesCache(t *testing.T) {
	r := New()
	factory := func(info topology.SpeakerInfo) (Worker, <-chan ctlevent.Event, bool) {
		return &fakeWorker{}, make(chan ctlevent.Event), true
	}
	living := topology.SpeakerInfo{UUID: "RINCON_1", Name: "Living Room"}
	r.ApplyTopology(topologyOf(living), factory)

	ok := r.UpdateTransportState("rincon_1", []KV{{Key: "TransportState", Value: "PLAYING"}})
	require.True(t, ok)

	record, _ := r.ByUUID("RINCON_1")
	require.Equal(t, []KV{{Key: "TransportState", Value: "PLAYING"}}, record.TransportState)
}

func TestByNameIsCaseInsensitive(t *testing.T) {
	r := New()
	factory := func(info topology.SpeakerInfo) (Worker, <-chan ctlevent.Event, bool) {
		return &fakeWorker{}, make(chan ctlevent.Event), true
	}
	r.ApplyTopology(topologyOf(topology.SpeakerInfo{UUID: "RINCON_1", Name: "Living Room"}), factory)

	record, ok := r.ByName("LIVING ROOM")
	require.True(t, ok)
	require.Equal(t, "RINCON_1", record.Info.UUID)
}
