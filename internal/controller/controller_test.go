package controller

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ryanolf/sonos-manager/internal/config"
	"github.com/ryanolf/sonos-manager/internal/ctlevent"
	"github.com/ryanolf/sonos-manager/internal/registry"
	"github.com/ryanolf/sonos-manager/internal/topology"
	"github.com/ryanolf/sonos-manager/internal/upnp/gena"
	"github.com/ryanolf/sonos-manager/internal/upnp/soap"
	"github.com/ryanolf/sonos-manager/internal/upnp/upnptest"
)

func newTestController(t *testing.T, device *upnptest.Device) *Controller {
	t.Helper()

	listener, err := gena.NewListener("127.0.0.1", 0)
	require.NoError(t, err)
	t.Cleanup(func() { listener.Close(context.Background()) })

	soapClient := soap.NewClient(2 * time.Second)

	cfg := config.Default()
	cfg.SubscriptionTimeout = 300 * time.Second
	cfg.RenewalInterval = time.Hour

	return &Controller{
		cfg:        cfg,
		soap:       soapClient,
		gena:       gena.NewClient(2 * time.Second),
		listener:   listener,
		registry:   registry.New(),
		topology:   topology.Empty(),
		aggregator: NewAggregator(),
		dispatcher: NewDispatcher(soapClient),
	}
}

func TestApplyTopologyPopulatesRegistryAndTopology(t *testing.T) {
	device := upnptest.New()
	defer device.Close()

	c := newTestController(t, device)
	topo := topology.Empty().WithGroup("RINCON_LIVING", []topology.SpeakerInfo{
		{UUID: "RINCON_LIVING", Name: "Living Room", Location: device.BaseURL() + "/xml/device_description.xml"},
	})

	c.applyTopology(topo)

	require.Equal(t, 1, c.registry.Len())
	_, ok := c.topology.CoordinatorOf("RINCON_LIVING")
	require.True(t, ok)
}

func TestHandleEventAVTransportChangedUpdatesRegistry(t *testing.T) {
	device := upnptest.New()
	defer device.Close()

	c := newTestController(t, device)
	topo := topology.Empty().WithGroup("RINCON_LIVING", []topology.SpeakerInfo{
		{UUID: "RINCON_LIVING", Name: "Living Room", Location: device.BaseURL() + "/xml/device_description.xml"},
	})
	c.applyTopology(topo)

	c.handleEvent(ctlevent.NewAVTransportChanged("RINCON_LIVING", []gena.KV{{Key: "TransportState", Value: "PLAYING"}}))

	record, ok := c.registry.ByUUID("RINCON_LIVING")
	require.True(t, ok)
	require.Equal(t, "PLAYING", record.TransportState[0].Value)
}

func TestHandleEventAVTransportChangedForUnknownSpeakerIsDiscarded(t *testing.T) {
	device := upnptest.New()
	defer device.Close()
	c := newTestController(t, device)

	require.NotPanics(t, func() {
		c.handleEvent(ctlevent.NewAVTransportChanged("RINCON_UNKNOWN", []gena.KV{{Key: "TransportState", Value: "PLAYING"}}))
	})
}

func TestHandleEventTopologyChangedReplacesTopologyAndRegistry(t *testing.T) {
	device := upnptest.New()
	defer device.Close()
	c := newTestController(t, device)

	newTopo := topology.Empty().WithGroup("RINCON_KITCHEN", []topology.SpeakerInfo{
		{UUID: "RINCON_KITCHEN", Name: "Kitchen", Location: device.BaseURL() + "/xml/device_description.xml"},
	})
	c.handleEvent(ctlevent.NewTopologyChanged(newTopo))

	require.Equal(t, 1, c.registry.Len())
	_, ok := c.registry.ByName("Kitchen")
	require.True(t, ok)
}

func TestHandleCommandRepliesOnCommandChannel(t *testing.T) {
	device := upnptest.New()
	defer device.Close()
	c := newTestController(t, device)

	topo := topology.Empty().WithGroup("RINCON_LIVING", []topology.SpeakerInfo{
		{UUID: "RINCON_LIVING", Name: "Living Room", Location: device.BaseURL() + "/xml/device_description.xml"},
	})
	c.applyTopology(topo)

	reply := make(chan Response, 1)
	c.handleCommand(context.Background(), command{room: "Living Room", action: Action{Kind: ActionExists}, reply: reply})

	resp := <-reply
	require.Equal(t, ResponseOk, resp.Kind)
}

func TestHandleSubscriptionLostAVTransportReattachesWorkerToSameSpeaker(t *testing.T) {
	device := upnptest.New()
	defer device.Close()
	c := newTestController(t, device)

	topo := topology.Empty().WithGroup("RINCON_LIVING", []topology.SpeakerInfo{
		{UUID: "RINCON_LIVING", Name: "Living Room", Location: device.BaseURL() + "/xml/device_description.xml"},
	})
	// The factory in applyTopology always tries to start a worker; here it
	// will actually succeed against the fake device, then we force the loss.
	c.applyTopology(topo)

	record, ok := c.registry.ByUUID("RINCON_LIVING")
	require.True(t, ok)
	require.NotNil(t, record.Events())

	c.handleSubscriptionLost(ctlevent.NewSubscriptionLost("RINCON_LIVING", ctlevent.ServiceAVTransport))

	record, ok = c.registry.ByUUID("RINCON_LIVING")
	require.True(t, ok)
	require.NotNil(t, record.Events())

	select {
	case ev := <-record.Events():
		t.Fatalf("unexpected event waiting on the fresh worker's channel: %+v", ev)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestHandleSubscriptionLostAVTransportForUnknownSpeakerIsNoop(t *testing.T) {
	device := upnptest.New()
	defer device.Close()
	c := newTestController(t, device)

	require.NotPanics(t, func() {
		c.handleSubscriptionLost(ctlevent.NewSubscriptionLost("RINCON_UNKNOWN", ctlevent.ServiceAVTransport))
	})
}

func TestHandleSubscriptionLostTopologyResubscribesAndClearsWorkerOnFailure(t *testing.T) {
	device := upnptest.New()
	defer device.Close()
	c := newTestController(t, device)
	c.topoWorker = &Worker{}

	c.handleSubscriptionLost(ctlevent.NewSubscriptionLost("", ctlevent.ServiceTopology))

	require.Nil(t, c.topoWorker, "with no known speakers, resubscribe must fail and leave topoWorker nil so recovery mode engages")
}
