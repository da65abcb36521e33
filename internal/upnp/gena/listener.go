package gena

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
)

// Listener is a single shared HTTP server that receives NOTIFY callbacks for
// every subscription the controller holds, dispatching each to the channel
// registered for its callback token. One Listener serves every Subscription
// Worker, rather than one HTTP server per subscription.
type Listener struct {
	server   *http.Server
	listener net.Listener
	baseURL  string

	mu   sync.Mutex
	subs map[string]chan Notification
}

// NewListener starts listening on host:port (port 0 picks an ephemeral
// port) and returns a Listener whose CallbackURL is built from the bound
// address.
func NewListener(host string, port int) (*Listener, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return nil, err
	}

	l := &Listener{
		listener: ln,
		subs:     make(map[string]chan Notification),
	}

	advertiseHost := host
	if advertiseHost == "" || advertiseHost == "0.0.0.0" {
		advertiseHost = outboundIP()
	}
	l.baseURL = fmt.Sprintf("http://%s:%d", advertiseHost, ln.Addr().(*net.TCPAddr).Port)

	mux := http.NewServeMux()
	mux.HandleFunc("NOTIFY /notify/{token}", l.handleNotify)
	l.server = &http.Server{Handler: mux}

	go l.server.Serve(ln)

	return l, nil
}

// Register allocates a fresh callback token and channel for one
// subscription. The caller uses CallbackURL(token) as the GENA CALLBACK
// header and receives NOTIFY payloads on the returned channel until
// Unregister is called.
func (l *Listener) Register() (token string, notifications <-chan Notification) {
	token = randomToken()
	ch := make(chan Notification, 1)

	l.mu.Lock()
	l.subs[token] = ch
	l.mu.Unlock()

	return token, ch
}

// Unregister removes and closes the channel for token. Safe to call more
// than once.
func (l *Listener) Unregister(token string) {
	l.mu.Lock()
	ch, ok := l.subs[token]
	if ok {
		delete(l.subs, token)
	}
	l.mu.Unlock()
	if ok {
		close(ch)
	}
}

// CallbackURL returns the URL a device should NOTIFY for the given token.
func (l *Listener) CallbackURL(token string) string {
	return l.baseURL + "/notify/" + token
}

// Close shuts down the HTTP server.
func (l *Listener) Close(ctx context.Context) error {
	return l.server.Shutdown(ctx)
}

func (l *Listener) handleNotify(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	body, err := io.ReadAll(r.Body)
	r.Body.Close()
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	l.mu.Lock()
	ch, ok := l.subs[token]
	l.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}

	sid := r.Header.Get("SID")
	seq := ParseSEQ(r.Header.Get("SEQ"))
	notification, err := ParseNotifyBody(body, sid, seq)
	if err != nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	// Latest-value delivery: drain a stale pending notification before
	// sending the new one, so a slow consumer never blocks the listener
	// and always observes the most recent state (§5 backpressure model).
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- notification:
	default:
	}

	w.WriteHeader(http.StatusOK)
}

func randomToken() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "fallback-token"
	}
	return hex.EncodeToString(buf)
}

func outboundIP() string {
	conn, err := net.Dial("udp", "255.255.255.255:1")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}
