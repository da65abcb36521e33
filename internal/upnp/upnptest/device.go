// Package upnptest is a fake UPnP/SOAP/GENA device backend for tests: an
// httptest.Server that answers SOAP control requests with canned XML bodies
// and SUBSCRIBE/UNSUBSCRIBE requests with a synthetic SID, recording every
// call it receives.
package upnptest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/google/uuid"
)

// Device is a fake Sonos speaker.
type Device struct {
	Server *httptest.Server

	mu        sync.Mutex
	responses map[string]string // action name -> canned SOAP body
	calls     []Call
}

// Call records one request the fake device received.
type Call struct {
	Path   string
	Action string // SOAPACTION header for control calls, "" for SUBSCRIBE/UNSUBSCRIBE
	Method string
}

// New starts a fake device. By default every control action returns an
// empty-but-well-formed SOAP response body; use SetResponse to supply a
// specific canned body for an action.
func New() *Device {
	d := &Device{responses: make(map[string]string)}
	mux := http.NewServeMux()
	mux.HandleFunc("/", d.handle)
	d.Server = httptest.NewServer(mux)
	return d
}

// BaseURL is the device's control-point base URL.
func (d *Device) BaseURL() string {
	return d.Server.URL
}

// Close shuts down the fake device's HTTP server.
func (d *Device) Close() {
	d.Server.Close()
}

// SetResponse installs the literal SOAP response body returned for action.
func (d *Device) SetResponse(action, body string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.responses[action] = body
}

// Calls returns every call received so far, in order.
func (d *Device) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Call(nil), d.calls...)
}

func (d *Device) handle(w http.ResponseWriter, r *http.Request) {
	io.Copy(io.Discard, r.Body)
	r.Body.Close()

	switch r.Method {
	case "SUBSCRIBE":
		sid := "uuid:" + uuid.NewString()
		d.record(r.URL.Path, "", r.Method)
		w.Header().Set("SID", sid)
		w.Header().Set("TIMEOUT", r.Header.Get("TIMEOUT"))
		w.WriteHeader(http.StatusOK)
		return

	case "UNSUBSCRIBE":
		d.record(r.URL.Path, "", r.Method)
		w.WriteHeader(http.StatusOK)
		return

	case http.MethodPost:
		action := soapAction(r.Header.Get("SOAPACTION"))
		d.record(r.URL.Path, action, r.Method)

		d.mu.Lock()
		body, ok := d.responses[action]
		d.mu.Unlock()
		if !ok {
			body = envelope("")
		}
		w.Header().Set("Content-Type", "text/xml; charset=\"utf-8\"")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(body))
		return

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (d *Device) record(path, action, method string) {
	d.mu.Lock()
	d.calls = append(d.calls, Call{Path: path, Action: action, Method: method})
	d.mu.Unlock()
}

func soapAction(header string) string {
	// header looks like `"urn:schemas-upnp-org:service:AVTransport:1#Play"`
	for i := len(header) - 1; i >= 0; i-- {
		if header[i] == '#' {
			return header[i+1 : len(header)-1]
		}
	}
	return ""
}

// Envelope wraps an inner XML fragment in a minimal SOAP response envelope,
// for tests that need to build a canned action response body.
func Envelope(action, inner string) string {
	return envelope(inner)
}

func envelope(inner string) string {
	return `<?xml version="1.0"?>` +
		`<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">` +
		`<s:Body>` + inner + `</s:Body>` +
		`</s:Envelope>`
}
