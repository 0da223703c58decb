// Package server exposes the JSON mirror and run status over HTTP.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/bobmcallan/fundwatch/internal/app"
)

// Responses are small JSON documents read from disk, so requests never need
// long to be written.
const (
	readHeaderTimeout = 5 * time.Second
	writeTimeout      = 15 * time.Second
	idleTimeout       = 60 * time.Second
)

// Server is the read-only dashboard API.
type Server struct {
	app      *app.App
	logger   arbor.ILogger
	http     *http.Server
	shutdown chan<- struct{}
}

// NewServer builds the API for a. A POST to /api/shutdown outside
// production sends on shutdown when it is not nil.
func NewServer(a *app.App, shutdown chan<- struct{}) *Server {
	s := &Server{app: a, logger: a.Logger, shutdown: shutdown}

	mux := http.NewServeMux()
	s.routes(mux)

	s.http = &http.Server{
		Addr:              net.JoinHostPort(a.Config.Server.Host, strconv.Itoa(a.Config.Server.Port)),
		Handler:           recoverPanics(a.Logger, allowDashboard(logRequests(a.Logger, mux))),
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
	return s
}

// Handler returns the full middleware chain, for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run serves until ctx is done, then waits up to drain for in-flight
// requests before returning.
func (s *Server) Run(ctx context.Context, drain time.Duration) error {
	errs := make(chan error, 1)
	go func() { errs <- s.http.ListenAndServe() }()
	s.logger.Info().Str("addr", s.http.Addr).Msg("API listening")

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), drain)
	defer cancel()
	return s.http.Shutdown(drainCtx)
}
