package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/rs/zerolog"
)

// BindError reports a listen failure, typically the port being in use.
type BindError struct {
	Port int
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("failed to bind port %d: %v", e.Port, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

// handle is the state of one running listener. It exists only while the
// server runs and never leaves the Lifecycle.
type handle struct {
	srv  *http.Server
	addr net.Addr
	done chan struct{}
}

// Lifecycle owns the single permitted HTTP listener. Start and Stop are
// idempotent; the mutex guards the presence of the handle and is held only
// across state transitions, never across the serve loop.
type Lifecycle struct {
	port    int
	handler http.Handler
	reaper  PortReaper
	log     zerolog.Logger

	mu     sync.Mutex
	handle *handle
}

// NewLifecycle builds a Lifecycle serving handler on the given port. reaper
// is consulted when Stop finds no in-memory handle; pass NopReaper to
// disable that fallback.
func NewLifecycle(port int, handler http.Handler, reaper PortReaper, log zerolog.Logger) *Lifecycle {
	if reaper == nil {
		reaper = NopReaper{}
	}
	return &Lifecycle{port: port, handler: handler, reaper: reaper, log: log}
}

// Start binds the port on all interfaces and serves on a background
// goroutine. The bind happens synchronously so a port conflict surfaces
// here, not later. Starting an already-running server is a no-op success.
func (l *Lifecycle) Start() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.handle != nil {
		return "server already running", nil
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", l.port))
	if err != nil {
		return "", &BindError{Port: l.port, Err: err}
	}

	h := &handle{
		srv:  &http.Server{Handler: l.handler},
		addr: ln.Addr(),
		done: make(chan struct{}),
	}

	go func() {
		defer close(h.done)
		if err := h.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			l.log.Error().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	l.handle = h
	l.log.Info().Int("port", l.port).Msg("server started")
	return "server started", nil
}

// Stop shuts the listener down and waits for the serve goroutine to exit.
// The shutdown is cooperative: new connections are refused while in-flight
// requests drain within ctx. Stopping an already-stopped server reports
// success after a best-effort sweep for a stray process still holding the
// port, which covers a previous crashed instance.
func (l *Lifecycle) Stop(ctx context.Context) (string, error) {
	l.mu.Lock()
	h := l.handle
	l.handle = nil
	l.mu.Unlock()

	if h == nil {
		if n, err := l.reaper.Reap(l.port); err != nil {
			l.log.Warn().Err(err).Int("port", l.port).Msg("stray process sweep failed")
		} else if n > 0 {
			l.log.Info().Int("port", l.port).Int("killed", n).Msg("cleaned up stray process on port")
			return "server was not running, cleaned up stray process", nil
		}
		return "server was not running", nil
	}

	if err := h.srv.Shutdown(ctx); err != nil {
		l.log.Warn().Err(err).Msg("server shutdown did not finish cleanly")
	}
	<-h.done

	l.log.Info().Int("port", l.port).Msg("server stopped")
	return "server stopped", nil
}

// Running reports whether the listener is up.
func (l *Lifecycle) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.handle != nil
}

// Addr returns the bound address, or nil when stopped.
func (l *Lifecycle) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.handle == nil {
		return nil
	}
	return l.handle.addr
}
