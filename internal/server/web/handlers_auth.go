package web

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var loginTemplate = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html>
<head><title>Poseidon — Login</title></head>
<body>
{{if .Error}}<p>Invalid username or password.</p>{{end}}
{{if .Logout}}<p>You have been signed out.</p>{{end}}
<form method="post" action="/login">
  <input type="hidden" name="from" value="{{.From}}">
  <label>Username <input type="text" name="username" autofocus></label>
  <label>Password <input type="password" name="password"></label>
  <button type="submit">Sign in</button>
</form>
</body>
</html>
`))

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *Server) handleError(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("<!DOCTYPE html><html><body><p>Something went wrong. <a href=\"/login\">Back to login</a></p></body></html>"))
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = loginTemplate.Execute(w, map[string]any{
		"Error":  q.Get("error") != "",
		"Logout": q.Get("logout") != "",
		"From":   safeReturnPath(q.Get("from")),
	})
}

// handleLogin authenticates the form submission. Success establishes a fresh
// session (destroying whatever session the old cookie pointed at) and
// returns the caller to their original destination; failure redirects back
// with one generic error flag, identical for unknown users and wrong
// passwords.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/login?error=1", http.StatusFound)
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	from := safeReturnPath(r.PostFormValue("from"))

	user, err := s.users.Authenticate(r.Context(), username, password)
	if err != nil {
		target := "/login?error=1"
		if from != "" {
			target += "&from=" + url.QueryEscape(from)
		}
		http.Redirect(w, r, target, http.StatusFound)
		return
	}

	token, err := s.sessions.Login(r.Context(), user, sessionTokenFrom(r))
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, s.sessionCookie(token, s.sessionValidity))
	s.logger.Info(r.Context(), "user logged in", "user", user.Username)

	if from == "" {
		from = defaultLandingPath
	}
	http.Redirect(w, r, from, http.StatusFound)
}

// handleLogout invalidates the session server-side and instructs the browser
// to drop the cookie. Safe to repeat with a stale or missing token.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := sessionTokenFrom(r)
	if err := s.sessions.Logout(r.Context(), token); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if principal := PrincipalFrom(r); principal != nil {
		s.logger.Info(r.Context(), "user logged out", "user", principal.Username)
	}

	http.SetCookie(w, s.sessionCookie("", -time.Hour))
	http.Redirect(w, r, "/login?logout=1", http.StatusFound)
}

// handleAPILogin is the programmatic counterpart of the login form: it
// verifies credentials and returns a short-lived bearer token instead of
// establishing a session.
func (s *Server) handleAPILogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.users.Authenticate(r.Context(), body.Username, body.Password)
	if err != nil {
		writeJSONError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	token, err := s.sessions.IssueAccessToken(user)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": token})
}

func (s *Server) sessionCookie(token string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(maxAge.Seconds()),
	}
}

// safeReturnPath only accepts same-site absolute paths, so the login
// redirect cannot be abused to bounce users off-site.
func safeReturnPath(from string) string {
	if from == "" || !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") {
		return ""
	}
	if strings.Contains(from, "://") || strings.Contains(from, "\\") {
		return ""
	}
	return from
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseIDParam(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
