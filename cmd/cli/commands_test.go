package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omerbag-9/CarMate-AdminPanel/internal/api"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/config"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/models"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/session"
)

type backend struct {
	mu      sync.Mutex
	role    string
	expired bool
	calls   []string
	query   string
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, r.Method+" "+r.URL.Path)
	b.query = r.URL.RawQuery

	reply := func(status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	if r.URL.Path != api.PathLogin && (b.expired || r.Header.Get(api.TokenHeader) != "tok-1") {
		reply(http.StatusUnauthorized, map[string]string{"message": "jwt expired"})
		return
	}

	switch {
	case r.URL.Path == api.PathLogin:
		var creds api.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "Secret@1" {
			reply(http.StatusBadRequest, map[string]string{"message": "Invalid email or password"})
			return
		}
		reply(http.StatusOK, map[string]any{"status": api.StatusLoginSuccess, "data": map[string]string{"token": "tok-1", "role": b.role}})
	case r.URL.Path == api.PathCustomers:
		reply(http.StatusOK, map[string]any{"data": []models.User{
			{ID: 1, FirstName: "Zoe", Email: "zoe@carmate.test", Status: "verified", IsActive: true},
			{ID: 2, FirstName: "adam", Email: "adam@carmate.test", Status: "pending"},
			{ID: 3, FirstName: "Mia", Email: "mia@carmate.test", Status: "verified"},
		}})
	case r.URL.Path == api.PathProfile:
		reply(http.StatusOK, map[string]any{"data": models.Profile{FirstName: "Ada", LastName: "Admin", Email: "ada@carmate.test", Role: "admin"}})
	case strings.HasPrefix(r.URL.Path, api.PathDeleteProduct):
		reply(http.StatusOK, map[string]string{"status": "success"})
	default:
		reply(http.StatusNotFound, map[string]string{"message": "not found"})
	}
}

func (b *backend) called(call string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.calls {
		if c == call {
			return true
		}
	}
	return false
}

type env struct {
	backend     *backend
	url         string
	sessionPath string
}

func newEnv(t *testing.T, role string) *env {
	t.Helper()
	b := &backend{role: role}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	return &env{backend: b, url: srv.URL, sessionPath: filepath.Join(t.TempDir(), "carmate", "session.json")}
}

func (e *env) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(&config.Config{APIBaseURL: e.url, APITimeout: 5 * time.Second, BulkSize: 1000, PageSize: 2})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--session-file", e.sessionPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (e *env) login(t *testing.T) {
	t.Helper()
	_, err := e.run(t, "", "login", "--email", "ada@carmate.test", "--password", "Secret@1")
	require.NoError(t, err)
}

func TestLogin_StoresSessionFile(t *testing.T) {
	e := newEnv(t, "admin")

	out, err := e.run(t, "Secret@1\n", "login", "-e", "Ada@CarMate.test")
	require.NoError(t, err)
	assert.Equal(t, "Logged in as ada@carmate.test (admin)\n", out)

	info, err := os.Stat(e.sessionPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	s, ok, err := (&session.File{Path: e.sessionPath}).Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, session.Session{Token: "tok-1", Role: models.RoleAdmin}, s)
}

func TestLogin_BackendRejection(t *testing.T) {
	e := newEnv(t, "admin")

	_, err := e.run(t, "", "login", "-e", "ada@carmate.test", "-p", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid email or password")
	assert.NoFileExists(t, e.sessionPath)
}

func TestList_UsersSortedAndPaged(t *testing.T) {
	e := newEnv(t, "admin")
	e.login(t)

	out, err := e.run(t, "", "list", "users", "--sort", "firstName", "--status", "verified", "--active", "true")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.True(t, strings.HasPrefix(lines[1], "2 "), "adam sorts first: %q", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "3 "), "then Mia: %q", lines[2])
	assert.Equal(t, "Page 1 of 2 (3 items)", lines[3])
	assert.Contains(t, e.backend.query, "status=verified")
	assert.Contains(t, e.backend.query, "isActive=true")

	out, err = e.run(t, "", "list", "users", "--search", "ZO")
	require.NoError(t, err)
	assert.Contains(t, out, "zoe@carmate.test")
	assert.NotContains(t, out, "adam@carmate.test")
}

func TestList_RejectsUnknownSortField(t *testing.T) {
	e := newEnv(t, "admin")
	e.login(t)

	_, err := e.run(t, "", "list", "users", "--sort", "shoeSize")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "firstName")
}

func TestList_RoleWithoutCapability(t *testing.T) {
	e := newEnv(t, "seller")
	e.login(t)

	_, err := e.run(t, "", "list", "users")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "may not")
	assert.False(t, e.backend.called("GET "+api.PathCustomers))
}

func TestList_ExpiredSessionIsCleared(t *testing.T) {
	e := newEnv(t, "admin")
	e.login(t)
	e.backend.mu.Lock()
	e.backend.expired = true
	e.backend.mu.Unlock()

	_, err := e.run(t, "", "list", "users")
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Contains(t, err.Error(), "carmate login")
	assert.NoFileExists(t, e.sessionPath)

	_, err = e.run(t, "", "whoami")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestDeleteAndLogout(t *testing.T) {
	e := newEnv(t, "admin")
	e.login(t)

	out, err := e.run(t, "", "delete", "products", "7")
	require.NoError(t, err)
	assert.Equal(t, "Deleted product 7\n", out)
	assert.True(t, e.backend.called("DELETE /admin/deleteproduct/7"))

	_, err = e.run(t, "", "delete", "products", "seven")
	assert.Error(t, err)

	out, err = e.run(t, "", "whoami")
	require.NoError(t, err)
	assert.Equal(t, "Ada Admin <ada@carmate.test> admin\n", out)

	out, err = e.run(t, "", "logout")
	require.NoError(t, err)
	assert.Equal(t, "Logged out\n", out)
	assert.NoFileExists(t, e.sessionPath)
}
