// Package api implements the HTTP interface for loading a session and
// browsing its channels.
package api

import (
	"context"
	"net/http"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/brocaar/digico-report/internal/aggregator"
	"github.com/brocaar/digico-report/internal/config"
	"github.com/brocaar/digico-report/internal/logging"
	"github.com/brocaar/digico-report/internal/render"
	"github.com/brocaar/digico-report/internal/storage"
)

// DefaultMaxUploadSize is used when no upload size limit is configured.
const DefaultMaxUploadSize = 64 << 20

var errNoSession = errors.New("no session loaded")

// Server holds at most one loaded session. Loading a session replaces and
// closes the previous one.
type Server struct {
	loadOptions      storage.LoadOptions
	aggregateOptions aggregator.Options
	viewport         render.Viewport
	format           render.Format
	maxUploadSize    int64

	mu      sync.RWMutex
	session *storage.Session
}

// NewServer creates a new server from the given configuration.
func NewServer(c config.Config) (*Server, error) {
	s := Server{
		loadOptions: storage.LoadOptions{
			TempDir:            c.Session.TempDir,
			MaxOpenConnections: c.Session.MaxOpenConnections,
		},
		aggregateOptions: aggregator.OptionsFromConfig(c),
		viewport: render.Viewport{
			Width:  c.Graph.Width,
			Height: c.Graph.Height,
		},
		maxUploadSize: c.Session.MaxUploadSize,
	}

	if s.viewport.Width == 0 {
		s.viewport.Width = render.DefaultWidth
	}
	if s.viewport.Height == 0 {
		s.viewport.Height = render.DefaultHeight
	}
	if s.maxUploadSize <= 0 {
		s.maxUploadSize = DefaultMaxUploadSize
	}

	var err error
	s.format, err = render.ParseFormat(c.Graph.Format)
	if err != nil {
		return nil, errors.Wrap(err, "parse graph format error")
	}

	if err := s.aggregateOptions.Validate(); err != nil {
		return nil, errors.Wrap(err, "validate aggregator options error")
	}

	return &s, nil
}

// Load loads the given session bytes and replaces the current session.
func (s *Server) Load(ctx context.Context, b []byte) (*storage.Session, error) {
	sess, err := storage.Load(ctx, b, s.loadOptions)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	old := s.session
	s.session = sess
	s.mu.Unlock()

	// readers hold the read lock for as long as they use the session
	if old != nil {
		if err := old.Close(); err != nil {
			log.WithError(err).WithField("session_id", old.ID).Error("api: close previous session error")
		}
	}

	return sess, nil
}

// SessionLoaded returns true when a session is loaded.
func (s *Server) SessionLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session != nil
}

// withSession calls fn with the current session while holding the read
// lock. errNoSession is returned when no session is loaded.
func (s *Server) withSession(fn func(*storage.Session) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return errNoSession
	}
	return fn(s.session)
}

// Close closes the current session.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil
	}
	err := s.session.Close()
	s.session = nil
	return err
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/session", s.postSession)
	mux.HandleFunc("GET /api/session", s.getSession)
	mux.HandleFunc("GET /api/channels", s.getChannels)
	mux.HandleFunc("GET /api/channels/graph", s.getGraph)
	mux.HandleFunc("GET /api/tables", s.getTables)
	mux.HandleFunc("GET /{$}", s.getReport)

	return logging.Middleware(mux)
}

// Setup creates the server and starts serving on the configured bind.
func Setup(c config.Config) (*Server, error) {
	s, err := NewServer(c)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"bind": c.API.Bind,
	}).Info("api: starting api server")

	server := http.Server{
		Handler:      s.Handler(),
		Addr:         c.API.Bind,
		ReadTimeout:  c.API.ReadTimeout,
		WriteTimeout: c.API.WriteTimeout,
	}

	go func() {
		err := server.ListenAndServe()
		log.WithError(err).Error("api: api server error")
	}()

	return s, nil
}
