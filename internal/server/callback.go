package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tagsync/internal/shared"
	"golang.org/x/oauth2"
)

// DefaultCallbackTimeout bounds how long the user has to approve access in the browser.
const DefaultCallbackTimeout = 2 * time.Minute

// CallbackServer serves a single [OAuthHandler] until it produces a result.
type CallbackServer struct {
	handler  *OAuthHandler
	srv      *http.Server
	listener net.Listener
	errs     chan error
	logger   *log.Logger
}

// NewCallbackServer routes handler on addr ("host:port"). Nothing listens until Start.
func NewCallbackServer(addr string, handler *OAuthHandler, logger *log.Logger) *CallbackServer {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	router := NewBasicRouter()
	router.Use(RequestLogger(logger))
	router.Handler(handler)

	return &CallbackServer{
		handler: handler,
		srv:     &http.Server{Addr: addr, Handler: router, ReadHeaderTimeout: 10 * time.Second},
		errs:    make(chan error, 1),
		logger:  logger,
	}
}

// Start binds the listening socket and serves in the background.
func (s *CallbackServer) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("%w: callback server: %v", shared.ErrServiceUnavailable, err)
	}
	s.listener = ln
	s.logger.Info("starting OAuth callback server", "addr", ln.Addr().String(), "path", s.handler.path)

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errs <- err
		}
	}()
	return nil
}

// Addr returns the bound address, which differs from the configured one when port 0 was requested.
func (s *CallbackServer) Addr() string {
	if s.listener == nil {
		return s.srv.Addr
	}
	return s.listener.Addr().String()
}

// Wait blocks until the callback delivers a token, the server fails, ctx ends or timeout passes.
// The server is shut down before Wait returns.
func (s *CallbackServer) Wait(ctx context.Context, timeout time.Duration) (*oauth2.Token, error) {
	defer s.shutdown()

	if timeout <= 0 {
		timeout = DefaultCallbackTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var result OAuthResult
	select {
	case result = <-s.handler.Result():
	case err := <-s.errs:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timer.C:
		return nil, fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if err := result.Error(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}
	return result.Token, nil
}

func (s *CallbackServer) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Warn("error shutting down callback server", "error", err)
	}
}
