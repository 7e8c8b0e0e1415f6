// Package server exposes an editing session over HTTP.
//
// Handlers never touch the session directly. Every request is turned into a
// command and sent to a single loop goroutine, which also runs the layout
// ticker, so the session sees exactly one caller.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/hyperscene/pkg/reconcile"
	"github.com/matzehuels/hyperscene/pkg/render"
	"github.com/matzehuels/hyperscene/pkg/session"
)

// DefaultTickInterval is the layout tick period (25 Hz).
const DefaultTickInterval = 40 * time.Millisecond

// ErrStopped is returned for requests arriving after the loop has exited.
var ErrStopped = errors.New("server loop stopped")

type command struct {
	fn    func(*session.Session) (any, error)
	reply chan result
}

type result struct {
	v   any
	err error
}

// Server owns a session and serves it.
type Server struct {
	sess     *session.Session
	logger   *log.Logger
	interval time.Duration
	engine   render.Engine

	cmds    chan command
	stopped chan struct{}
	version uint64 // Incremented on every scene event; loop-owned
}

// Option configures a [Server].
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTickInterval sets the layout tick period. Non-positive values disable
// the ticker.
func WithTickInterval(d time.Duration) Option { return func(s *Server) { s.interval = d } }

// WithRenderEngine sets the Graphviz engine for /api/scene.svg.
func WithRenderEngine(e render.Engine) Option { return func(s *Server) { s.engine = e } }

// New creates a server for sess. The caller must not use sess afterwards.
func New(sess *session.Session, opts ...Option) *Server {
	s := &Server{
		sess:     sess,
		logger:   log.Default(),
		interval: DefaultTickInterval,
		engine:   render.EngineFDP,
		cmds:     make(chan command),
		stopped:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	sess.Subscribe(func(ev reconcile.Event) {
		s.version++
		s.logger.Debug("scene event", "event", ev.String())
	})
	return s
}

// Run drives the session until ctx is done. It must be called exactly once.
func (s *Server) Run(ctx context.Context) error {
	defer close(s.stopped)

	var tick <-chan time.Time
	if s.interval > 0 {
		t := time.NewTicker(s.interval)
		defer t.Stop()
		tick = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick:
			s.sess.Tick()
		case cmd := <-s.cmds:
			v, err := cmd.fn(s.sess)
			cmd.reply <- result{v, err}
		}
	}
}

// do runs fn on the loop goroutine and waits for its result.
func (s *Server) do(ctx context.Context, fn func(*session.Session) (any, error)) (any, error) {
	cmd := command{fn: fn, reply: make(chan result, 1)}
	select {
	case s.cmds <- cmd:
	case <-s.stopped:
		return nil, ErrStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case r := <-cmd.reply:
		return r.v, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ListenAndServe runs the loop and an HTTP server on addr until ctx is
// done, then shuts the HTTP server down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.Run(gctx) })
	g.Go(func() error {
		s.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
		defer stop()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
