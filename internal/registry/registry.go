// Package registry holds the Speaker Registry (§4.D): the Controller
// Actor's authoritative, UUID-keyed map of every speaker currently present
// in the household, each paired with its last-known AV-transport state and
// (if one could be started) its Subscription Worker handle.
//
// Registry is a plain data structure, not an actor: every exported method
// runs on the Controller Actor's own goroutine, so it needs no internal
// locking (§4.D, §9 "single owner of mutable state").
package registry

import (
	"strings"

	"github.com/ryanolf/sonos-manager/internal/ctlevent"
	"github.com/ryanolf/sonos-manager/internal/topology"
)

// Worker is the subset of a Subscription Worker's handle the registry needs
// in order to stop a worker whose speaker has left the household. The
// concrete Subscription Worker type lives in the controller package; this
// interface exists so registry has no dependency on it.
type Worker interface {
	Close()
}

// WorkerFactory starts an AV-transport Subscription Worker for the given
// speaker and returns its handle and event channel. ok is false if the
// worker could not be started (device unreachable, subscribe rejected),
// in which case the registry keeps the speaker record without a worker.
type WorkerFactory func(info topology.SpeakerInfo) (worker Worker, events <-chan ctlevent.Event, ok bool)

// SpeakerRecord is one entry in the registry: identity, the most recent
// AV-transport LastChange key/value list for it, and (if running) its
// Subscription Worker.
type SpeakerRecord struct {
	Info topology.SpeakerInfo

	// TransportState is the most recently received AV-transport
	// LastChange key/value list, in document order, or nil if no
	// notification has arrived yet for this speaker.
	TransportState []KV

	worker Worker
	events <-chan ctlevent.Event
}

// KV mirrors gena.KV without importing the gena package directly, keeping
// registry's public surface independent of the transport-level package.
type KV struct {
	Key   string
	Value string
}

// AttachWorker installs a freshly started Subscription Worker on a record
// that previously had none (the SubscriptionLost AV-transport recovery path,
// §4.E), closing any worker it replaces.
func (r *SpeakerRecord) AttachWorker(worker Worker) {
	if r.worker != nil {
		r.worker.Close()
	}
	r.worker = worker
}

// AttachEvents installs the event channel paired with a worker just
// attached via AttachWorker.
func (r *SpeakerRecord) AttachEvents(events <-chan ctlevent.Event) {
	r.events = events
}

// Events returns the channel this record's Subscription Worker delivers
// AVTransportChanged/SubscriptionLost events on, or nil if no worker is
// running for this speaker.
func (r *SpeakerRecord) Events() <-chan ctlevent.Event {
	return r.events
}

// Registry is the UUID-keyed speaker map (§4.D).
type Registry struct {
	byUUID map[string]*SpeakerRecord
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{byUUID: make(map[string]*SpeakerRecord)}
}

// ApplyTopology reconciles the registry against a freshly observed Topology
// (§4.D):
//
//   - every record whose UUID is no longer present is removed, after
//     closing its Subscription Worker;
//   - every record whose UUID is still present has its Info updated in
//     place (name and location may have changed);
//   - every UUID newly present gets a fresh record, and startWorker is
//     used to attempt a Subscription Worker for it.
func (r *Registry) ApplyTopology(t topology.Topology, startWorker WorkerFactory) {
	present := make(map[string]topology.SpeakerInfo)
	for _, info := range t.AllSpeakers() {
		present[normalize(info.UUID)] = info
	}

	for key, record := range r.byUUID {
		if _, ok := present[key]; !ok {
			if record.worker != nil {
				record.worker.Close()
			}
			delete(r.byUUID, key)
		}
	}

	for key, info := range present {
		if record, ok := r.byUUID[key]; ok {
			record.Info = info
			continue
		}

		record := &SpeakerRecord{Info: info}
		if worker, events, ok := startWorker(info); ok {
			record.worker = worker
			record.events = events
		}
		r.byUUID[key] = record
	}
}

// UpdateTransportState replaces the cached AV-transport state for uuid. It
// is a no-op, logged by the caller rather than here, if uuid is not present
// (the notification raced a topology change that removed the speaker).
func (r *Registry) UpdateTransportState(uuid string, kvs []KV) bool {
	record, ok := r.byUUID[normalize(uuid)]
	if !ok {
		return false
	}
	record.TransportState = kvs
	return true
}

// ByUUID returns the record for uuid, case-insensitively.
func (r *Registry) ByUUID(uuid string) (*SpeakerRecord, bool) {
	record, ok := r.byUUID[normalize(uuid)]
	return record, ok
}

// ByName returns the first record whose room name matches name
// case-insensitively.
func (r *Registry) ByName(name string) (*SpeakerRecord, bool) {
	for _, record := range r.byUUID {
		if strings.EqualFold(record.Info.Name, name) {
			return record, true
		}
	}
	return nil, false
}

// All returns every record currently held, in no particular order.
func (r *Registry) All() []*SpeakerRecord {
	all := make([]*SpeakerRecord, 0, len(r.byUUID))
	for _, record := range r.byUUID {
		all = append(all, record)
	}
	return all
}

// Len reports how many speakers the registry currently holds.
func (r *Registry) Len() int {
	return len(r.byUUID)
}

func normalize(uuid string) string {
	return strings.ToUpper(uuid)
}
