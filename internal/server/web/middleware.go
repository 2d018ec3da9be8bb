package web

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/poseidon/internal/server/models"
)

type ctxKey string

const (
	principalKey    ctxKey = "principal"
	sessionTokenKey ctxKey = "sessionToken"
)

// requestLogger attaches a correlation ID and logs request completion.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		log := s.logger.With("request_id", requestID)

		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		log.Info(r.Context(), "request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// withPrincipal resolves the current principal, preferring the session
// cookie and falling back to an Authorization bearer token. Both paths load
// the user fresh per request, so authority changes apply immediately. A
// request that resolves nothing proceeds anonymously; the authorization gate
// decides what anonymity is allowed to reach.
func (s *Server) withPrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
			ctx = context.WithValue(ctx, sessionTokenKey, c.Value)
			principal, err := s.sessions.CurrentPrincipal(ctx, c.Value)
			if err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			if principal != nil {
				next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, principalKey, principal)))
				return
			}
		}

		if authz := r.Header.Get("Authorization"); authz != "" {
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
				principal, err := s.sessions.PrincipalFromAccessToken(ctx, strings.TrimSpace(parts[1]))
				if err != nil {
					http.Error(w, "internal error", http.StatusInternalServerError)
					return
				}
				if principal != nil {
					next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, principalKey, principal)))
					return
				}
			}
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authorize evaluates the route policy before any handler runs.
func (s *Server) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := PrincipalFrom(r)

		switch s.policy.Authorize(r.URL.Path, principal) {
		case DecisionPermit:
			next.ServeHTTP(w, r)
		case DecisionRedirectLogin:
			target := "/login?from=" + url.QueryEscape(r.URL.RequestURI())
			http.Redirect(w, r, target, http.StatusFound)
		case DecisionForbidden:
			http.Error(w, "forbidden", http.StatusForbidden)
		}
	})
}

// PrincipalFrom returns the authenticated principal of the request, or nil.
func PrincipalFrom(r *http.Request) *models.User {
	if v := r.Context().Value(principalKey); v != nil {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

// sessionTokenFrom returns the raw session token presented by the request's
// cookie, valid or not. Login uses it to destroy a pre-existing session.
func sessionTokenFrom(r *http.Request) string {
	if v := r.Context().Value(sessionTokenKey); v != nil {
		if t, ok := v.(string); ok {
			return t
		}
	}
	if c, err := r.Cookie(SessionCookieName); err == nil {
		return c.Value
	}
	return ""
}
