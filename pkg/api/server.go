package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cbodonnell/dirtydishes/pkg/api/handlers"
	"github.com/cbodonnell/dirtydishes/pkg/api/middleware"
	"github.com/cbodonnell/dirtydishes/pkg/log"
	"github.com/cbodonnell/dirtydishes/pkg/sessions"
	"github.com/gorilla/mux"
)

type APIServer struct {
	server *http.Server
	tls    *TLSConfig
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type NewAPIServerOptions struct {
	Port           int
	TLS            *TLSConfig
	SessionManager *sessions.SessionManager
	// WSHandler serves the WebSocket endpoint. Optional.
	WSHandler http.Handler
}

// NewRouter returns the routes of the browser surface, the JSON API and,
// when given, the WebSocket endpoint.
func NewRouter(opts NewAPIServerOptions) *mux.Router {
	sessionMiddleware := middleware.NewSessionMiddleware(opts.SessionManager)

	r := mux.NewRouter()
	r.Use(middleware.NewLoggingMiddleware())

	r.HandleFunc("/healthz", handlers.HandleHealthz(opts.SessionManager)).Methods(http.MethodGet)
	r.HandleFunc("/version", handlers.HandleVersion()).Methods(http.MethodGet)
	if opts.WSHandler != nil {
		r.Handle("/ws", opts.WSHandler).Methods(http.MethodGet)
	}

	kitchen := r.NewRoute().Subrouter()
	kitchen.Use(sessionMiddleware)
	kitchen.HandleFunc("/", handlers.HandleIndex()).Methods(http.MethodGet)
	kitchen.HandleFunc("/pile/{dishID}/pick-up", handlers.HandleFormAction(handlers.PickUpFromPath)).Methods(http.MethodPost)
	kitchen.HandleFunc("/hand/wash", handlers.HandleFormAction(handlers.WashFromPath)).Methods(http.MethodPost)
	kitchen.HandleFunc("/sink/dry", handlers.HandleFormAction(handlers.DryFromPath)).Methods(http.MethodPost)
	kitchen.HandleFunc("/rack/{dishID}/put-away", handlers.HandleFormAction(handlers.PutAwayFromPath)).Methods(http.MethodPost)
	kitchen.HandleFunc("/session/reset", handlers.HandleResetSession(opts.SessionManager)).Methods(http.MethodPost)
	kitchen.HandleFunc("/api/state", handlers.HandleGetState()).Methods(http.MethodGet)
	kitchen.HandleFunc("/api/actions", handlers.HandlePostAction()).Methods(http.MethodPost)

	return r
}

// NewAPIServer creates a new http.Server for the kitchen routes
func NewAPIServer(opts NewAPIServerOptions) *APIServer {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           NewRouter(opts),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return &APIServer{
		server: server,
		tls:    opts.TLS,
	}
}

// Start starts the APIServer
func (s *APIServer) Start() {
	var listenAndServe func() error
	if s.tls != nil {
		log.Info("API server listening on %s with TLS", s.server.Addr)
		listenAndServe = func() error {
			return s.server.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		}
	} else {
		log.Info("API server listening on %s", s.server.Addr)
		listenAndServe = s.server.ListenAndServe
	}
	if err := listenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("API server closed")
			return
		}
		log.Error("API server error: %v", err)
	}
}

// Stop stops the APIServer
func (s *APIServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
