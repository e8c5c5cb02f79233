package api

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Server is the HTTP control plane for every live battle: the router plus
// the background workers (rate limiter cleanup, registry shutdown) that
// only start once Start() is called.
type Server struct {
	registry       *BattleRegistry
	router         *chi.Mux
	rateLimiter    *IPRateLimiter
	sessionManager *SessionManager
}

// NewServer creates a control-plane server over registry with default
// production configuration and no operator authentication.
//
// IMPORTANT: Background workers do NOT start until Start() is called.
// This enables testing by constructing the server and using Router()
// without goroutines or network listeners running.
func NewServer(registry *BattleRegistry) *Server {
	return NewServerWithAuth(registry, nil, false)
}

// NewServerWithAuth creates a control-plane server with an optional
// operator-session gate on mutating endpoints.
func NewServerWithAuth(registry *BattleRegistry, sessionMgr *SessionManager, enableAuth bool) *Server {
	s := &Server{
		registry:       registry,
		sessionManager: sessionMgr,
	}

	s.rateLimiter = NewIPRateLimiter(DefaultRateLimitConfig)

	s.router = NewRouter(RouterConfig{
		Registry:           registry,
		RateLimiter:        s.rateLimiter,
		SessionManager:     sessionMgr,
		EnableOperatorAuth: enableAuth,
	})

	return s
}

// Start begins serving HTTP. This is the ONLY method that opens a network
// listener. Call it once; to stop the server, signal the process and call
// Stop for graceful cleanup.
func (s *Server) Start(addr string) error {
	log.Printf("control plane listening on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

// Router returns the HTTP handler for use with httptest.
//
// Example:
//
//	server := api.NewServer(registry)
//	ts := httptest.NewServer(server.Router())
//	defer ts.Close()
//	resp, _ := http.Get(ts.URL + "/battles")
func (s *Server) Router() http.Handler {
	return s.router
}

// Stop performs graceful shutdown of background workers and every live
// battle. Call this before process exit.
func (s *Server) Stop() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	s.registry.ShutdownAll()
}
