// Package controller implements the Controller Actor and its collaborators:
// the Subscription Worker (this file), the Event Aggregator, the Zone
// Action Dispatcher, the command Façade, and the Controller Actor itself.
// Keeping all of them in one package mirrors how the Rust implementation
// this system is modeled on keeps its Controller and Subscriber types
// together: a subscription's lifecycle is private detail of the actor that
// owns it, not a standalone service with its own public API.
package controller

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ryanolf/sonos-manager/internal/ctlerrors"
	"github.com/ryanolf/sonos-manager/internal/ctlevent"
	"github.com/ryanolf/sonos-manager/internal/topology"
	"github.com/ryanolf/sonos-manager/internal/upnp/gena"
	"github.com/ryanolf/sonos-manager/internal/upnp/soap"
)

// Worker owns one GENA subscription for the lifetime of a speaker's
// membership in the registry: it subscribes, renews on a timer, forwards
// NOTIFY payloads as Events, and resubscribes once on a lost connection
// before giving up and reporting SubscriptionLost.
type Worker struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// StartWorker subscribes to eventURL on behalf of uuid and begins the
// renew/notify loop in a background goroutine. service tags the
// SubscriptionLost event this worker may eventually emit, so the Controller
// knows which recovery path applies (§9).
func StartWorker(genaClient *gena.Client, listener *gena.Listener, uuid, eventURL string, service ctlevent.ServiceKind, subscriptionTimeout, renewalInterval time.Duration) (*Worker, <-chan ctlevent.Event, bool) {
	ctx, cancel := context.WithCancel(context.Background())

	token, notifications := listener.Register()
	sub, err := genaClient.Subscribe(ctx, eventURL, listener.CallbackURL(token), subscriptionTimeout)
	if err != nil {
		log.Print(ctlerrors.SubscriberError(fmt.Sprintf("subscribe to %s for %s failed: %v", service, uuid, err)))
		listener.Unregister(token)
		cancel()
		return nil, nil, false
	}

	events := make(chan ctlevent.Event, 1)
	w := &Worker{cancel: cancel, done: make(chan struct{})}

	go w.run(ctx, genaClient, listener, token, notifications, events, eventURL, uuid, service, sub, subscriptionTimeout, renewalInterval)

	return w, events, true
}

// Close cancels the worker's context, which unsubscribes (best-effort) and
// unregisters its callback channel. Close does not block on the worker
// goroutine exiting.
func (w *Worker) Close() {
	w.cancel()
}

func (w *Worker) run(
	ctx context.Context,
	genaClient *gena.Client,
	listener *gena.Listener,
	token string,
	notifications <-chan gena.Notification,
	events chan<- ctlevent.Event,
	eventURL, uuid string,
	service ctlevent.ServiceKind,
	sub gena.Subscription,
	subscriptionTimeout, renewalInterval time.Duration,
) {
	defer close(w.done)
	defer listener.Unregister(token)

	ticker := time.NewTicker(renewalInterval)
	defer ticker.Stop()

	resubscribedOnce := false

	for {
		select {
		case <-ctx.Done():
			unsubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			genaClient.Unsubscribe(unsubCtx, eventURL, sub.SID)
			cancel()
			return

		case <-ticker.C:
			renewed, err := genaClient.Renew(ctx, eventURL, sub.SID, subscriptionTimeout)
			if err != nil {
				log.Print(ctlerrors.SubscriberError(fmt.Sprintf("renew %s for %s failed: %v", service, uuid, err)))
				if w.tryResubscribe(ctx, genaClient, listener, token, eventURL, &sub, subscriptionTimeout, &resubscribedOnce) {
					continue
				}
				w.emitSubscriptionLost(events, uuid, service)
				return
			}
			sub = renewed

		case notification, ok := <-notifications:
			if !ok {
				if w.tryResubscribe(ctx, genaClient, listener, token, eventURL, &sub, subscriptionTimeout, &resubscribedOnce) {
					continue
				}
				w.emitSubscriptionLost(events, uuid, service)
				return
			}
			resubscribedOnce = false
			w.deliver(events, uuid, service, notification)
		}
	}
}

// tryResubscribe attempts one fresh SUBSCRIBE after a renewal fails (for
// any reason, 412 included) or the notification stream closes. It
// only retries once per failure episode; a second consecutive failure is
// treated as terminal (§4.A, grounded on the one-retry resubscribe policy
// of the subscriber this design is modeled on).
func (w *Worker) tryResubscribe(ctx context.Context, genaClient *gena.Client, listener *gena.Listener, token, eventURL string, sub *gena.Subscription, subscriptionTimeout time.Duration, resubscribedOnce *bool) bool {
	if *resubscribedOnce {
		return false
	}
	*resubscribedOnce = true

	fresh, err := genaClient.Subscribe(ctx, eventURL, listener.CallbackURL(token), subscriptionTimeout)
	if err != nil {
		return false
	}
	*sub = fresh
	return true
}

func (w *Worker) deliver(events chan<- ctlevent.Event, uuid string, service ctlevent.ServiceKind, notification gena.Notification) {
	var ev ctlevent.Event
	switch service {
	case ctlevent.ServiceAVTransport:
		ev = ctlevent.NewAVTransportChanged(uuid, notification.AVTransportChange)
	case ctlevent.ServiceTopology:
		if notification.ZoneGroupState == "" {
			return
		}
		state := soap.ParseZoneGroupStateXML(notification.ZoneGroupState)
		ev = ctlevent.NewTopologyChanged(topology.FromZoneGroupState(state))
	default:
		return
	}

	// Latest-value delivery: a slow Event Aggregator never blocks this
	// worker, and only ever observes the most recent notification.
	select {
	case <-events:
	default:
	}
	select {
	case events <- ev:
	default:
	}
}

func (w *Worker) emitSubscriptionLost(events chan<- ctlevent.Event, uuid string, service ctlevent.ServiceKind) {
	ev := ctlevent.NewSubscriptionLost(uuid, service)
	select {
	case <-events:
	default:
	}
	select {
	case events <- ev:
	default:
	}
}
