package controller

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/ryanolf/sonos-manager/internal/config"
	"github.com/ryanolf/sonos-manager/internal/ctlerrors"
	"github.com/ryanolf/sonos-manager/internal/ctlevent"
	"github.com/ryanolf/sonos-manager/internal/registry"
	"github.com/ryanolf/sonos-manager/internal/topology"
	"github.com/ryanolf/sonos-manager/internal/upnp/gena"
	"github.com/ryanolf/sonos-manager/internal/upnp/soap"
	"github.com/ryanolf/sonos-manager/internal/upnp/ssdp"
)

// Controller is the Controller Actor (§4.E): the sole mutator of the
// Registry, the Topology snapshot, and the topology Subscription Worker
// handle. Everything else in this system is a detached task talking to it
// over channels.
type Controller struct {
	cfg config.Config

	soap     *soap.Client
	gena     *gena.Client
	listener *gena.Listener

	registry   *registry.Registry
	topology   topology.Topology
	topoWorker *Worker

	aggregator *Aggregator
	dispatcher *Dispatcher

	commands <-chan command
	closed   chan struct{}
}

// Run performs initial discovery and then runs the Controller Actor's main
// loop until ctx is cancelled. The Facade has no close operation, so
// dropping it does not stop the loop. Run owns the returned Facade's only
// receiver; callers reach the running controller exclusively through it.
func Run(ctx context.Context, cfg config.Config) (*Facade, error) {
	listener, err := gena.NewListener(cfg.CallbackHost, cfg.CallbackPort)
	if err != nil {
		return nil, fmt.Errorf("controller: start GENA listener: %w", err)
	}

	closed := make(chan struct{})
	facade, commands := newFacade(cfg.CommandQueueCapacity, closed)

	soapClient := soap.NewClient(10 * time.Second)
	genaClient := gena.NewClient(10 * time.Second)

	c := &Controller{
		cfg:        cfg,
		soap:       soapClient,
		gena:       genaClient,
		listener:   listener,
		registry:   registry.New(),
		topology:   topology.Empty(),
		aggregator: NewAggregator(),
		dispatcher: NewDispatcher(soapClient),
		commands:   commands,
		closed:     closed,
	}

	if err := c.discover(ctx); err != nil {
		log.Print(ctlerrors.Wrap(ctlerrors.KindControllerNotInitialized, "initial discovery failed, entering recovery mode", err))
	}

	go c.run(ctx)

	return facade, nil
}

// discover resolves the seed speaker (by name if configured, otherwise the
// first speaker an unsolicited broadcast turns up), reads its zone-group
// state, applies the resulting topology, and subscribes to the topology
// service on a uniformly random current speaker (§4.E "Discovery").
func (c *Controller) discover(ctx context.Context) error {
	discoverCtx, cancel := context.WithTimeout(ctx, c.cfg.DiscoveryTimeout)
	defer cancel()

	var seed *ssdp.DeviceDescription
	if c.cfg.SeedRoomName != "" {
		device, err := ssdp.Find(discoverCtx, c.cfg.SeedRoomName, c.cfg.DiscoveryTimeout)
		if err != nil {
			return ctlerrors.Wrap(ctlerrors.KindZoneDoesNotExist, fmt.Sprintf("find seed room %q", c.cfg.SeedRoomName), err)
		}
		if device == nil {
			return ctlerrors.ZoneDoesNotExist(c.cfg.SeedRoomName)
		}
		seed = device
	} else {
		devices, err := ssdp.Discover(discoverCtx, c.cfg.DiscoveryTimeout)
		if err != nil {
			return fmt.Errorf("unsolicited discovery: %w", err)
		}
		if len(devices) == 0 {
			return fmt.Errorf("unsolicited discovery found no speakers")
		}
		seed = &devices[0]
	}

	state, err := c.soap.GetZoneGroupState(ctx, seed.BaseURL)
	if err != nil {
		return fmt.Errorf("read zone-group state from %s: %w", seed.BaseURL, err)
	}

	t := topology.FromZoneGroupState(state)
	c.applyTopology(t)

	return c.subscribeTopology(ctx, "")
}

// subscribeTopology (re)subscribes to ZoneGroupTopology events on a
// uniformly random current speaker other than excludeUUID: if recovery is
// later needed, a random choice among the survivors is most likely to land
// on a speaker that is still present when the previously used one went
// offline (§4.E, §9 "another random extant speaker"). Pass "" for
// excludeUUID when there is no prior speaker to avoid (initial discovery).
func (c *Controller) subscribeTopology(ctx context.Context, excludeUUID string) error {
	speakers := c.topology.AllSpeakers()
	if len(speakers) == 0 {
		return fmt.Errorf("no speakers known, cannot subscribe to topology events")
	}

	candidates := speakers
	if excludeUUID != "" {
		filtered := make([]topology.SpeakerInfo, 0, len(speakers))
		for _, s := range speakers {
			if s.UUID != excludeUUID {
				filtered = append(filtered, s)
			}
		}
		if len(filtered) > 0 {
			candidates = filtered
		}
	}
	chosen := candidates[rand.Intn(len(candidates))]

	eventURL := chosen.BaseURL() + soap.EventPath(soap.ServiceZoneGroupTopology)
	worker, events, ok := StartWorker(c.gena, c.listener, chosen.UUID, eventURL, ctlevent.ServiceTopology, c.cfg.SubscriptionTimeout, c.cfg.RenewalInterval)
	if !ok {
		return fmt.Errorf("subscribe to topology events on %s failed", chosen.Name)
	}

	c.topoWorker = worker
	c.aggregator.Add("topology", events)
	return nil
}

func (c *Controller) applyTopology(t topology.Topology) {
	c.topology = t
	c.registry.ApplyTopology(t, func(info topology.SpeakerInfo) (registry.Worker, <-chan ctlevent.Event, bool) {
		eventURL := info.BaseURL() + soap.EventPath(soap.ServiceAVTransport)
		worker, events, ok := StartWorker(c.gena, c.listener, info.UUID, eventURL, ctlevent.ServiceAVTransport, c.cfg.SubscriptionTimeout, c.cfg.RenewalInterval)
		if !ok {
			return nil, nil, false
		}
		c.aggregator.Add(info.UUID, events)
		return worker, events, true
	})
}

// run is the Controller Actor's main loop (§4.E "Main loop").
func (c *Controller) run(ctx context.Context) {
	defer close(c.closed)
	defer c.listener.Close(context.Background())

	for {
		if c.topoWorker == nil {
			if !c.recover(ctx) {
				return
			}
			continue
		}

		select {
		case <-ctx.Done():
			return
		case cmd, ok := <-c.commands:
			if !ok {
				return
			}
			c.handleCommand(ctx, cmd)
		case ev := <-c.aggregator.Events():
			c.handleEvent(ev)
		}
	}
}

// recover implements recovery mode (§4.E step 2): attempt rediscovery;
// on failure, drain whatever commands and events are already waiting
// without blocking, then pace the next attempt at 1 Hz. Returns false if
// ctx was cancelled or the command channel closed, meaning the caller
// should stop.
func (c *Controller) recover(ctx context.Context) bool {
	start := time.Now()

	if err := c.discover(ctx); err == nil {
		return true
	} else {
		log.Print(ctlerrors.Wrap(ctlerrors.KindControllerNotInitialized, "recovery attempt failed", err))
	}

	if !c.drainCommandsNonBlocking(ctx) {
		return false
	}
	c.drainEventsNonBlocking()

	elapsed := time.Since(start)
	if elapsed < c.cfg.RecoveryPace {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(c.cfg.RecoveryPace - elapsed):
		}
	}
	return ctx.Err() == nil
}

// drainCommandsNonBlocking handles every command already waiting. It
// returns false if the command channel is closed.
func (c *Controller) drainCommandsNonBlocking(ctx context.Context) bool {
	for {
		select {
		case cmd, ok := <-c.commands:
			if !ok {
				return false
			}
			c.handleCommand(ctx, cmd)
		default:
			return true
		}
	}
}

func (c *Controller) drainEventsNonBlocking() {
	for {
		select {
		case ev := <-c.aggregator.Events():
			c.handleEvent(ev)
		default:
			return
		}
	}
}

func (c *Controller) handleCommand(ctx context.Context, cmd command) {
	resp := c.dispatcher.Dispatch(ctx, c.registry, c.topology, cmd.room, cmd.action)
	select {
	case cmd.reply <- resp:
	default:
	}
}

// handleEvent applies one Event from the Aggregator (§4.E "Event handling").
func (c *Controller) handleEvent(ev ctlevent.Event) {
	switch ev.Kind {
	case ctlevent.Noop:
		return
	case ctlevent.TopologyChanged:
		log.Printf("controller: topology changed: %d coordinator(s), %d speaker(s)",
			len(ev.Topology.Coordinators()), len(ev.Topology.AllSpeakers()))
		c.applyTopology(ev.Topology)
	case ctlevent.AVTransportChanged:
		kvs := make([]registry.KV, len(ev.KVs))
		for i, kv := range ev.KVs {
			kvs[i] = registry.KV{Key: kv.Key, Value: kv.Value}
		}
		if !c.registry.UpdateTransportState(ev.UUID, kvs) {
			log.Print(ctlerrors.Wrap(ctlerrors.KindSubscriberError, fmt.Sprintf("AV-transport update for unknown speaker %s discarded", ev.UUID), nil))
		}
	case ctlevent.SubscriptionLost:
		c.handleSubscriptionLost(ev)
	}
}

// handleSubscriptionLost applies the service-specific recovery path (§4.E,
// §9): the topology service fails over to another random speaker, falling
// back to full rediscovery; an AV-transport service re-resolves the same
// speaker's current address with no failover to a different speaker.
func (c *Controller) handleSubscriptionLost(ev ctlevent.Event) {
	switch ev.Service {
	case ctlevent.ServiceTopology:
		c.topoWorker = nil
		if err := c.subscribeTopology(context.Background(), ev.UUID); err != nil {
			log.Print(ctlerrors.SubscriberError(fmt.Sprintf("topology resubscribe failed, entering recovery mode: %v", err)))
		}

	case ctlevent.ServiceAVTransport:
		record, ok := c.registry.ByUUID(ev.UUID)
		if !ok {
			return
		}
		eventURL := record.Info.BaseURL() + soap.EventPath(soap.ServiceAVTransport)
		worker, events, ok := StartWorker(c.gena, c.listener, record.Info.UUID, eventURL, ctlevent.ServiceAVTransport, c.cfg.SubscriptionTimeout, c.cfg.RenewalInterval)
		if !ok {
			log.Print(ctlerrors.SubscriberError(fmt.Sprintf("could not re-subscribe AV-transport events for %s; waiting for next topology update", record.Info.Name)))
			return
		}
		c.aggregator.Add(record.Info.UUID, events)
		record.AttachWorker(worker)
		record.AttachEvents(events)
	}
}
