package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/mklzl/rollsync/internal/catalog"
	"github.com/mklzl/rollsync/internal/engine"
	"github.com/mklzl/rollsync/internal/refresh"
)

// Server is the rollsync HTTP server.
type Server struct {
	db        *catalog.Database
	refresher *refresh.BackgroundRefresher
	addr      string
	handler   *QueryHandler
}

// NewServer creates a new server. The background refresher ticks at
// refreshInterval.
func NewServer(db *catalog.Database, exec *engine.Executor, addr string, refreshInterval time.Duration) *Server {
	return &Server{
		db:        db,
		refresher: refresh.NewBackgroundRefresher(db, exec, refreshInterval),
		addr:      addr,
		handler:   NewQueryHandler(exec),
	}
}

// Start starts the HTTP server and the background refresher. It blocks
// until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handler.HandleQuery)
	mux.HandleFunc("/ping", s.handler.HandlePing)

	go s.refresher.Run(ctx)

	srv := &http.Server{
		Addr:    s.addr,
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	log.Printf("[server] rollsync listening on %s", s.addr)
	return srv.ListenAndServe()
}
