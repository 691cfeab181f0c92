package web

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/ladak/internal/auth"
	"github.com/erazemk/ladak/internal/db"
	"github.com/erazemk/ladak/internal/model"
	"github.com/erazemk/ladak/internal/store"
)

const testJWTSecret = "test-secret"

var testNow = time.Date(2024, 5, 20, 9, 30, 0, 0, time.UTC)

type testEnv struct {
	server *httptest.Server
	store  *store.SQLite
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	users, err := auth.NewDirectory([]auth.Entry{
		{PIN: "0717", Name: "Admin", Role: model.RoleAdmin},
		{PIN: "111111", Name: "Ákos", Role: model.RoleDriver},
	})
	require.NoError(t, err)

	env := &testEnv{store: store.NewSQLite(db.NewTestDB(t))}
	router, err := NewRouter(Config{
		Store:         env.store,
		Users:         users,
		JWTSecret:     testJWTSecret,
		Logger:        zerolog.Nop(),
		ExportCharset: "utf-8",
		Now:           func() time.Time { return testNow },
	})
	require.NoError(t, err)

	env.server = httptest.NewServer(router)
	t.Cleanup(env.server.Close)
	return env
}

// client returns a cookie-keeping client that does not follow redirects.
func (e *testEnv) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (e *testEnv) login(t *testing.T, pin string) *http.Client {
	t.Helper()
	c := e.client(t)
	resp := e.post(t, c, "/login", url.Values{"pin": {pin}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))
	return c
}

func (e *testEnv) post(t *testing.T, c *http.Client, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := c.PostForm(e.server.URL+path, form)
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}

func (e *testEnv) get(t *testing.T, c *http.Client, path string) (*http.Response, string) {
	t.Helper()
	resp, err := c.Get(e.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

// banner returns the error or ok message a form post redirected with.
func banner(t *testing.T, resp *http.Response, key string) string {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	return loc.Query().Get(key)
}

func (e *testEnv) seed(t *testing.T, admin *http.Client) model.Partner {
	t.Helper()
	resp := e.post(t, admin, "/partners", url.Values{"name": {"Kovács Zöldség"}})
	require.Empty(t, banner(t, resp, "error"))
	for _, id := range []string{"e2", "M10"} {
		resp = e.post(t, admin, "/crate-types", url.Values{"id": {id}})
		require.Empty(t, banner(t, resp, "error"))
	}

	partners, err := e.store.ListPartners(context.Background())
	require.NoError(t, err)
	require.Len(t, partners, 1)
	return partners[0]
}

func TestLogin(t *testing.T) {
	env := setupTestServer(t)

	c := env.login(t, "0717")
	resp, body := env.get(t, c, "/movements")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Admin (Administrator)")

	resp, _ = env.get(t, c, "/")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/movements", resp.Header.Get("Location"))

	resp, err := env.client(t).PostForm(env.server.URL+"/login", url.Values{"pin": {"9999"}})
	require.NoError(t, err)
	defer resp.Body.Close()
	wrong, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, string(wrong), "Wrong PIN.")
}

func TestPagesRequireLogin(t *testing.T) {
	env := setupTestServer(t)
	c := env.client(t)

	for _, path := range []string{"/", "/movements", "/balances", "/partners", "/crate-types", "/export.csv"} {
		resp, _ := env.get(t, c, path)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode, path)
		assert.Equal(t, "/login", resp.Header.Get("Location"), path)
	}
}

func TestDriverCannotManage(t *testing.T) {
	env := setupTestServer(t)
	driver := env.login(t, "111111")

	resp := env.post(t, driver, "/partners", url.Values{"name": {"X"}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp = env.post(t, driver, "/crate-types", url.Values{"id": {"E2"}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = env.get(t, driver, "/users")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := env.get(t, driver, "/partners")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, body, "New partner")
}

func TestMovementEntryFlow(t *testing.T) {
	env := setupTestServer(t)
	admin := env.login(t, "0717")
	driver := env.login(t, "111111")
	partner := env.seed(t, admin)

	resp := env.post(t, driver, "/movements", url.Values{
		"partner_id":    {partner.ID},
		"crate_type_id": {"e2"},
		"direction":     {"out"},
		"qty":           {"5"},
		"return":        {"/movements?partner_id=" + partner.ID},
	})
	assert.Equal(t, "Movement saved.", banner(t, resp, "ok"))
	loc, _ := url.Parse(resp.Header.Get("Location"))
	assert.Equal(t, partner.ID, loc.Query().Get("partner_id"))

	movements, err := env.store.ListMovements(context.Background())
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, "Ákos", movements[0].DriverName)
	assert.Equal(t, "2024-05-20", movements[0].Date)

	_, body := env.get(t, driver, "/movements")
	assert.Contains(t, body, "Kovács Zöldség")
	assert.Contains(t, body, "Showing 1 of 1.")
	assert.NotContains(t, body, "/delete", "drivers get no delete buttons")

	_, body = env.get(t, admin, "/balances")
	assert.Contains(t, body, "Crates out with partners: <strong>5</strong>")
}

func TestMovementValidationBanner(t *testing.T) {
	env := setupTestServer(t)
	admin := env.login(t, "0717")
	partner := env.seed(t, admin)

	tests := []struct {
		form url.Values
		want string
	}{
		{url.Values{"partner_id": {partner.ID}, "crate_type_id": {"E2"}, "direction": {"out"}, "qty": {"0"}}, "qty must be greater than 0"},
		{url.Values{"partner_id": {partner.ID}, "crate_type_id": {"E2"}, "direction": {"out"}, "qty": {"two"}}, "Quantity must be a whole number."},
		{url.Values{"partner_id": {"nobody"}, "crate_type_id": {"E2"}, "direction": {"in"}, "qty": {"1"}}, "unknown partner"},
		{url.Values{"partner_id": {partner.ID}, "crate_type_id": {"E2"}, "direction": {"sideways"}, "qty": {"1"}}, "direction must be one of: out in"},
	}
	for _, tt := range tests {
		resp := env.post(t, admin, "/movements", tt.form)
		assert.Contains(t, banner(t, resp, "error"), tt.want)
	}

	movements, err := env.store.ListMovements(context.Background())
	require.NoError(t, err)
	assert.Empty(t, movements)

	_, body := env.get(t, admin, "/movements?error=validation+failed")
	assert.Contains(t, body, `class="banner error"`)
}

func TestArchivedCrateTypeHiddenFromEntry(t *testing.T) {
	env := setupTestServer(t)
	admin := env.login(t, "0717")
	env.seed(t, admin)

	_, body := env.get(t, admin, "/movements")
	assert.Contains(t, body, "M10 (M10)")

	resp := env.post(t, admin, "/crate-types/M10/archive", url.Values{"archived": {"1"}})
	assert.Equal(t, "Crate type M10 archived.", banner(t, resp, "ok"))

	_, body = env.get(t, admin, "/movements")
	assert.NotContains(t, body, "M10 (M10)")
	assert.Contains(t, body, `<option value="M10"`, "archived types stay filterable")

	resp = env.post(t, admin, "/crate-types/M10/archive", url.Values{"archived": {"0"}})
	assert.Equal(t, "Crate type M10 restored.", banner(t, resp, "ok"))
}

func TestPartnerEditAndDelete(t *testing.T) {
	env := setupTestServer(t)
	admin := env.login(t, "0717")
	partner := env.seed(t, admin)

	resp := env.post(t, admin, "/partners/"+partner.ID, url.Values{"name": {"  "}, "contact": {""}, "note": {""}})
	assert.Contains(t, banner(t, resp, "error"), "name must not be empty")

	resp = env.post(t, admin, "/partners/"+partner.ID, url.Values{"name": {"Kovács"}, "contact": {"+36 1"}, "note": {""}})
	assert.Equal(t, "Partner Kovács saved.", banner(t, resp, "ok"))

	resp = env.post(t, admin, "/partners/missing/delete", nil)
	assert.Contains(t, banner(t, resp, "error"), "partner not found")

	resp = env.post(t, admin, "/partners/"+partner.ID+"/delete", nil)
	assert.Equal(t, "Partner deleted.", banner(t, resp, "ok"))
}

func TestCrateTypeDeleteReportsUsage(t *testing.T) {
	env := setupTestServer(t)
	admin := env.login(t, "0717")
	partner := env.seed(t, admin)

	resp := env.post(t, admin, "/movements", url.Values{
		"partner_id": {partner.ID}, "crate_type_id": {"E2"}, "direction": {"out"}, "qty": {"3"},
	})
	require.Empty(t, banner(t, resp, "error"))

	resp = env.post(t, admin, "/crate-types", url.Values{"id": {"E2"}})
	assert.Contains(t, banner(t, resp, "error"), "crate type already exists")

	resp = env.post(t, admin, "/crate-types/E2/delete", nil)
	assert.Equal(t, "Crate type E2 deleted; 1 movements still reference it.", banner(t, resp, "ok"))

	_, body := env.get(t, admin, "/movements")
	assert.Contains(t, body, "<td>E2 (deleted)</td>")
}

func TestExportDownload(t *testing.T) {
	env := setupTestServer(t)
	admin := env.login(t, "0717")
	c := env.login(t, "111111")

	resp, body := env.get(t, c, "/export.csv")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
	assert.Empty(t, body, "an empty ledger exports nothing")

	partner := env.seed(t, admin)
	resp = env.post(t, c, "/movements", url.Values{
		"partner_id": {partner.ID}, "crate_type_id": {"E2"}, "direction": {"out"}, "qty": {"4"}, "note": {"box 📦"},
	})
	require.Empty(t, banner(t, resp, "error"))

	resp, body = env.get(t, c, "/export.csv")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	lines := strings.Split(body, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `"date","partner","direction","crateType","qty","note","driver"`, lines[0])
	assert.Equal(t, `"2024-05-20","Kovács Zöldség","out","E2","4","box 📦","Ákos"`, lines[1])

	resp, _ = env.get(t, c, "/export.csv?charset=windows-1250")
	assert.Contains(t, banner(t, resp, "error"), "windows-1250")

	resp, _ = env.get(t, c, "/export.csv?charset=klingon")
	assert.Equal(t, "Unsupported charset klingon.", banner(t, resp, "error"))
}

func TestLogoutRevokesSession(t *testing.T) {
	env := setupTestServer(t)
	c := env.login(t, "0717")

	u, _ := url.Parse(env.server.URL)
	cookies := c.Jar.Cookies(u)
	require.Len(t, cookies, 1)
	token := cookies[0].Value

	resp := env.post(t, c, "/logout", nil)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	stale := env.client(t)
	stale.Jar.SetCookies(u, []*http.Cookie{{Name: cookieName, Value: token}})
	resp, _ = env.get(t, stale, "/movements")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestUsersPageHidesPINs(t *testing.T) {
	env := setupTestServer(t)
	admin := env.login(t, "0717")

	resp, body := env.get(t, admin, "/users")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Ákos")
	assert.NotContains(t, body, "111111")
}

func TestSetupPage(t *testing.T) {
	router, err := NewRouter(Config{Logger: zerolog.Nop()})
	require.NoError(t, err)
	server := httptest.NewServer(router)
	defer server.Close()

	for _, path := range []string{"/", "/movements", "/login"} {
		resp, err := http.Get(server.URL + path)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, path)
		assert.Contains(t, string(body), "DATABASE_URL", path)
	}

	resp, err := http.Get(server.URL + "/static/style.css")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBack(t *testing.T) {
	tests := map[string]string{
		"":                           "/movements",
		"/movements?partner_id=p1":   "/movements?partner_id=p1",
		"/movements?error=x&show=30": "/movements?show=30",
		"https://evil.example/":      "/movements",
		"//evil.example/movements":   "/movements",
		"movements":                  "/movements",
	}
	for ret, want := range tests {
		r := httptest.NewRequest("POST", "/movements", strings.NewReader(url.Values{"return": {ret}}.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		assert.Equal(t, want, back(r, "/movements"), ret)
	}
}
