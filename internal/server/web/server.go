package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/poseidon/internal/logging"
	"github.com/dmitrijs2005/poseidon/internal/server/services"
)

// SessionCookieName is the cookie carrying the opaque session token.
const SessionCookieName = "poseidon_session"

// defaultLandingPath is where a successful login lands when no return path
// was requested.
const defaultLandingPath = "/bidList/list"

// Server is the HTTP front of the console. Every request flows through the
// principal middleware and the authorization policy before any handler runs;
// handlers receive the resolved principal from the request context and do not
// re-check access themselves.
type Server struct {
	address         string
	logger          logging.Logger
	users           *services.UserService
	sessions        *services.SessionService
	refdata         *services.RefDataService
	policy          *Policy
	sessionValidity time.Duration
}

// NewServer wires the web layer. The policy defaults to DefaultPolicy.
func NewServer(address string, logger logging.Logger, us *services.UserService, ss *services.SessionService, rs *services.RefDataService, sessionValidity time.Duration) *Server {
	return &Server{
		address:         address,
		logger:          logger.With("module", "http_server"),
		users:           us,
		sessions:        ss,
		refdata:         rs,
		policy:          DefaultPolicy(),
		sessionValidity: sessionValidity,
	}
}

// Routes assembles the router. Middleware order matters: the request logger
// first, then principal resolution, then the authorization gate.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestLogger)
	r.Use(s.withPrincipal)
	r.Use(s.authorize)

	r.Get("/", s.handleHome)
	r.Get("/login", s.handleLoginForm)
	r.Post("/login", s.handleLogin)
	r.Get("/logout", s.handleLogout)
	r.Post("/logout", s.handleLogout)
	r.Post("/api/login", s.handleAPILogin)
	r.Get("/error", s.handleError)

	r.Route("/user", func(r chi.Router) {
		r.Get("/list", s.handleUserList)
		r.Post("/add", s.handleUserAdd)
		r.Get("/update/{id}", s.handleUserGet)
		r.Post("/update/{id}", s.handleUserUpdate)
		r.Post("/delete/{id}", s.handleUserDelete)
	})

	mountRefData(r, "/bidList", s, s.refdata.BidLists, decodeBidList)
	mountRefData(r, "/curvePoint", s, s.refdata.CurvePoints, decodeCurvePoint)
	mountRefData(r, "/rating", s, s.refdata.Ratings, decodeRating)
	mountRefData(r, "/ruleName", s, s.refdata.RuleNames, decodeRuleName)
	mountRefData(r, "/trade", s, s.refdata.Trades, decodeTrade)

	return r
}

// Run starts the HTTP server and shuts it down gracefully when ctx is
// cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
