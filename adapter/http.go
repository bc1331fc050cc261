package adapter

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/srediag/plugin-shmem/api"
)

// Server serves /metrics, /live and /ready.
type Server struct {
	srv  *http.Server
	ln   net.Listener
	errc chan error
}

// NewMux routes /metrics to gatherer and the health endpoints to src.
func NewMux(gatherer prometheus.Gatherer, src api.Health, opts HealthOptions) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	health := NewHealthHandler(src, opts)
	mux.HandleFunc("/live", health.LiveEndpoint)
	mux.HandleFunc("/ready", health.ReadyEndpoint)
	return mux
}

// Listen binds addr and serves handler in the background.
func Listen(addr string, handler http.Handler) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s := &Server{
		srv:  &http.Server{Handler: handler, ReadHeaderTimeout: 5 * time.Second},
		ln:   ln,
		errc: make(chan error, 1),
	}
	go func() {
		defer close(s.errc)
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errc <- err
		}
	}()
	return s, nil
}

// Err delivers the error that stopped the server, if any, and is closed once
// the server is no longer serving.
func (s *Server) Err() <-chan error { return s.errc }

// Addr returns the bound address.
func (s *Server) Addr() string { return s.ln.Addr().String() }

// Shutdown stops the server, waiting for active requests until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
