package gena

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrSubscriptionGone is returned by Renew when the device has dropped the
// subscription (HTTP 412 Precondition Failed).
var ErrSubscriptionGone = errors.New("gena: subscription not found on device")

// Client issues SUBSCRIBE/UNSUBSCRIBE requests against a device's event URL.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a GENA client with the given per-request timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{httpClient: &http.Client{Timeout: timeout}}
}

// Subscribe opens a new subscription at eventURL, asking the device to POST
// NOTIFY requests to callbackURL, and requesting the given timeout.
func (c *Client) Subscribe(ctx context.Context, eventURL, callbackURL string, timeout time.Duration) (Subscription, error) {
	req, err := http.NewRequestWithContext(ctx, "SUBSCRIBE", eventURL, nil)
	if err != nil {
		return Subscription{}, err
	}
	req.Header.Set("CALLBACK", "<"+callbackURL+">")
	req.Header.Set("NT", "upnp:event")
	req.Header.Set("TIMEOUT", formatTimeout(timeout))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Subscription{}, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return Subscription{}, fmt.Errorf("gena: subscribe failed: %s", resp.Status)
	}

	sid := resp.Header.Get("SID")
	if sid == "" {
		return Subscription{}, errors.New("gena: subscribe response carried no SID")
	}

	return Subscription{SID: sid, Timeout: parseTimeoutHeader(resp.Header.Get("TIMEOUT"))}, nil
}

// Renew refreshes an existing subscription. Returns ErrSubscriptionGone on a
// 412 response, which means a fresh Subscribe is required (§4.A).
func (c *Client) Renew(ctx context.Context, eventURL, sid string, timeout time.Duration) (Subscription, error) {
	req, err := http.NewRequestWithContext(ctx, "SUBSCRIBE", eventURL, nil)
	if err != nil {
		return Subscription{}, err
	}
	req.Header.Set("SID", sid)
	req.Header.Set("TIMEOUT", formatTimeout(timeout))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Subscription{}, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusPreconditionFailed {
		return Subscription{}, ErrSubscriptionGone
	}
	if resp.StatusCode != http.StatusOK {
		return Subscription{}, fmt.Errorf("gena: renew failed: %s", resp.Status)
	}

	return Subscription{SID: sid, Timeout: parseTimeoutHeader(resp.Header.Get("TIMEOUT"))}, nil
}

// Unsubscribe is best-effort: network errors and 412 responses are not
// reported as failures, since the device may already be offline or have
// already dropped the subscription (§4.A shutdown).
func (c *Client) Unsubscribe(ctx context.Context, eventURL, sid string) error {
	req, err := http.NewRequestWithContext(ctx, "UNSUBSCRIBE", eventURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("SID", sid)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return nil
}

func formatTimeout(d time.Duration) string {
	return fmt.Sprintf("Second-%d", int(d.Seconds()))
}

func parseTimeoutHeader(header string) time.Duration {
	if header == "infinite" {
		return 24 * time.Hour
	}
	header = strings.TrimPrefix(header, "Second-")
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return defaultTimeout
}
