// Package gateway is the HTTP front: it binds the listening port, bounds
// concurrent requests to a fixed-size worker pool, and dispatches each
// GET / to the translation retry loop.
package gateway

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/projectmoil/gateway/internal/config"
	"github.com/projectmoil/gateway/internal/contextstore"
	"github.com/projectmoil/gateway/internal/events"
	"github.com/projectmoil/gateway/internal/translate"
)

// Server binds one listening socket and dispatches translation requests
// to a bounded pool of concurrent in-flight attempts.
type Server struct {
	cfg      *config.Store
	svc      *translate.Service
	contexts *contextstore.Store
	sink     events.Sink

	mu      sync.Mutex
	running bool
	httpSrv *http.Server
	cancel  context.CancelFunc
	sem     chan struct{}
}

// New wires a Server. sink may be nil, in which case events are dropped.
func New(cfg *config.Store, svc *translate.Service, contexts *contextstore.Store, sink events.Sink) *Server {
	return &Server{cfg: cfg, svc: svc, contexts: contexts, sink: sink}
}

// Start binds 0.0.0.0:port from the current config snapshot and begins
// serving. Calling Start on an already-running Server is a no-op.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	snap := s.cfg.GetConfig()
	threads := snap.MaxThreads
	if threads < 1 {
		threads = 1
	}
	s.sem = make(chan struct{}, threads)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleTranslate(ctx))
	mux.HandleFunc("/admin/contexts/clear", s.handleClearContexts())

	s.httpSrv = &http.Server{Addr: fmt.Sprintf("0.0.0.0:%d", snap.Port), Handler: mux}
	s.running = true

	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log(fmt.Sprintf("server error: %v", err))
		}
	}()

	cat := events.Catalog{Lang: events.Lang(snap.Language)}
	s.log(cat.ServerStart(snap.Port, threads))
	return nil
}

// Stop cancels in-flight attempts, closes the listening socket, and waits
// for it to finish shutting down. Calling Stop on a non-running Server is
// a no-op.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}

	s.cancel()
	err := s.httpSrv.Shutdown(context.Background())
	s.running = false

	lang := events.Lang(s.cfg.GetConfig().Language)
	s.log(events.Catalog{Lang: lang}.ServerStop())
	return err
}

func (s *Server) handleTranslate(ctx context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !r.URL.Query().Has("text") {
			w.Header().Set("Content-Type", "text/plain")
			w.WriteHeader(http.StatusOK)
			return
		}

		text := strings.TrimSpace(r.URL.Query().Get("text"))
		if text == "" {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			return
		}

		select {
		case s.sem <- struct{}{}:
		case <-ctx.Done():
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		defer func() { <-s.sem }()

		snap := s.cfg.GetConfig()
		cat := events.Catalog{Lang: events.Lang(snap.Language)}
		s.log(cat.RequestReceived(strings.ReplaceAll(text, "\n", "[LF]")))

		if s.sink != nil {
			s.sink.WorkStarted()
		}

		result := s.svc.Translate(ctx, clientID(r.RemoteAddr), text)

		success := result != ""
		if s.sink != nil {
			s.sink.WorkFinished(success)
		}

		if !success {
			if ctx.Err() != nil {
				s.log(cat.RequestCancelled())
			}
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("Translation Failed"))
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(result))
	}
}

// handleClearContexts backs the administrative reset route: it exists so
// a host UI can offer the original desktop app's "clear context memory"
// action without restarting the process.
func (s *Server) handleClearContexts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		s.contexts.ClearAll()
		lang := events.Lang(s.cfg.GetConfig().Language)
		s.log(events.Catalog{Lang: lang}.ContextsCleared())
		w.WriteHeader(http.StatusOK)
	}
}

func (s *Server) log(msg string) {
	if s.sink != nil {
		s.sink.Log(msg)
	}
}

// clientID derives the 8-hex-character fingerprint the context store
// keys conversations by, per spec §3: MD5 of the caller's IP, truncated.
// Distinct IPs may collide; that's accepted.
func clientID(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	sum := md5.Sum([]byte(host))
	return hex.EncodeToString(sum[:])[:8]
}
