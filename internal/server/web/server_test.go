package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/poseidon/internal/server/models"
)

func doForm(t *testing.T, h http.Handler, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func doGet(t *testing.T, h http.Handler, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// login performs the form login and returns the issued session cookie.
func login(t *testing.T, h http.Handler, username, password string) *http.Cookie {
	t.Helper()
	rec := doForm(t, h, "/login", url.Values{"username": {username}, "password": {password}}, nil)
	require.Equal(t, http.StatusFound, rec.Code)

	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName && c.Value != "" {
			return c
		}
	}
	t.Fatal("no session cookie issued")
	return nil
}

func TestAnonymousRequestRedirectsToLogin(t *testing.T) {
	env := newTestEnv(t)
	h := env.server.Routes()

	rec := doGet(t, h, "/bidList/list", nil)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?from=%2FbidList%2Flist", rec.Header().Get("Location"))
}

func TestPublicPathsNeedNoSession(t *testing.T) {
	env := newTestEnv(t)
	h := env.server.Routes()

	rec := doGet(t, h, "/login", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doGet(t, h, "/", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestLoginSuccessSetsCookieAndRedirects(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "jdoe", "Str0ng!Pass", models.RoleUser)
	h := env.server.Routes()

	rec := doForm(t, h, "/login", url.Values{"username": {"jdoe"}, "password": {"Str0ng!Pass"}}, nil)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, defaultLandingPath, rec.Header().Get("Location"))

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.Len(t, cookie.Value, 64)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
}

func TestLoginFailureIsIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "jdoe", "Str0ng!Pass", models.RoleUser)
	h := env.server.Routes()

	unknown := doForm(t, h, "/login", url.Values{"username": {"nobody"}, "password": {"whatever"}}, nil)
	wrongPass := doForm(t, h, "/login", url.Values{"username": {"jdoe"}, "password": {"wrong"}}, nil)

	assert.Equal(t, http.StatusFound, unknown.Code)
	assert.Equal(t, unknown.Header().Get("Location"), wrongPass.Header().Get("Location"))
	assert.Equal(t, "/login?error=1", unknown.Header().Get("Location"))
	assert.Empty(t, unknown.Result().Cookies())
}

func TestLoginReturnsToRequestedPath(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "jdoe", "Str0ng!Pass", models.RoleUser)
	h := env.server.Routes()

	rec := doForm(t, h, "/login", url.Values{
		"username": {"jdoe"},
		"password": {"Str0ng!Pass"},
		"from":     {"/rating/list"},
	}, nil)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/rating/list", rec.Header().Get("Location"))
}

func TestLoginIgnoresOffsiteReturnPath(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "jdoe", "Str0ng!Pass", models.RoleUser)
	h := env.server.Routes()

	for _, from := range []string{"https://evil.example", "//evil.example", "/ok\\..", "relative"} {
		rec := doForm(t, h, "/login", url.Values{
			"username": {"jdoe"},
			"password": {"Str0ng!Pass"},
			"from":     {from},
		}, nil)
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, defaultLandingPath, rec.Header().Get("Location"), "from=%q", from)
	}
}

func TestSessionCookieGrantsAccess(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "jdoe", "Str0ng!Pass", models.RoleUser)
	h := env.server.Routes()
	cookie := login(t, h, "jdoe", "Str0ng!Pass")

	env.mock.ExpectQuery(`SELECT id, account, type, bid_quantity FROM bid_list ORDER BY id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "account", "type", "bid_quantity"}).
			AddRow(int64(1), "acc1", "type1", 10.5))

	rec := doGet(t, h, "/bidList/list", cookie)

	require.Equal(t, http.StatusOK, rec.Code)
	var items []models.BidList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "acc1", items[0].Account)
}

func TestUserRoutesRequireAdmin(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "jdoe", "Str0ng!Pass", models.RoleUser)
	env.seedUser(t, "root", "Adm1n!Pass", models.RoleAdmin)
	h := env.server.Routes()

	userCookie := login(t, h, "jdoe", "Str0ng!Pass")
	rec := doGet(t, h, "/user/list", userCookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	adminCookie := login(t, h, "root", "Adm1n!Pass")
	rec = doGet(t, h, "/user/list", adminCookie)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginRotatesExistingSession(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "jdoe", "Str0ng!Pass", models.RoleUser)
	h := env.server.Routes()

	first := login(t, h, "jdoe", "Str0ng!Pass")

	rec := doForm(t, h, "/login", url.Values{"username": {"jdoe"}, "password": {"Str0ng!Pass"}}, first)
	require.Equal(t, http.StatusFound, rec.Code)

	_, exists := env.rm.sessions.byToken[first.Value]
	assert.False(t, exists, "pre-login session must be destroyed")
}

func TestLogoutInvalidatesSessionAndClearsCookie(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "jdoe", "Str0ng!Pass", models.RoleUser)
	h := env.server.Routes()
	cookie := login(t, h, "jdoe", "Str0ng!Pass")

	rec := doGet(t, h, "/logout", cookie)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?logout=1", rec.Header().Get("Location"))

	var cleared *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			cleared = c
		}
	}
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)

	_, exists := env.rm.sessions.byToken[cookie.Value]
	assert.False(t, exists)

	// Logout is idempotent: repeating with the dead cookie still succeeds.
	rec = doGet(t, h, "/logout", cookie)
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestStaleCookieIsAnonymous(t *testing.T) {
	env := newTestEnv(t)
	h := env.server.Routes()

	stale := &http.Cookie{Name: SessionCookieName, Value: strings.Repeat("a", 64)}
	rec := doGet(t, h, "/bidList/list", stale)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/login?from=")
}

func TestAPILoginIssuesBearerToken(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "jdoe", "Str0ng!Pass", models.RoleUser)
	h := env.server.Routes()

	body := `{"username":"jdoe","password":"Str0ng!Pass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["access_token"])

	env.mock.ExpectQuery(`SELECT id, account, type, bid_quantity FROM bid_list ORDER BY id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "account", "type", "bid_quantity"}))

	apiReq := httptest.NewRequest(http.MethodGet, "/bidList/list", nil)
	apiReq.Header.Set("Authorization", "Bearer "+resp["access_token"])
	apiRec := httptest.NewRecorder()
	h.ServeHTTP(apiRec, apiReq)

	assert.Equal(t, http.StatusOK, apiRec.Code)
}

func TestAPILoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "jdoe", "Str0ng!Pass", models.RoleUser)
	h := env.server.Routes()

	body := `{"username":"jdoe","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoleChangeAppliesWithoutRelogin(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, "jdoe", "Str0ng!Pass", models.RoleUser)
	h := env.server.Routes()
	cookie := login(t, h, "jdoe", "Str0ng!Pass")

	rec := doGet(t, h, "/user/list", cookie)
	require.Equal(t, http.StatusForbidden, rec.Code)

	promoted := *u
	promoted.Role = models.RoleAdmin
	env.rm.users.put(&promoted)

	rec = doGet(t, h, "/user/list", cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDeletedUserSessionIsAnonymous(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, "jdoe", "Str0ng!Pass", models.RoleUser)
	h := env.server.Routes()
	cookie := login(t, h, "jdoe", "Str0ng!Pass")

	delete(env.rm.users.byID, u.ID)

	rec := doGet(t, h, "/bidList/list", cookie)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/login?from=")
}
