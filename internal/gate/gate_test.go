package gate

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omerbag-9/CarMate-AdminPanel/internal/models"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/session"
)

func newStore() *session.CookieStore {
	return session.NewCookieStore(sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef")))
}

func signedIn(t *testing.T, store *session.CookieStore, s session.Session, target string) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, store.Set(rec, httptest.NewRequest(http.MethodGet, "/login", nil), s))
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func protected(called *bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		*called = true
		s, ok := session.FromContext(r.Context())
		if !ok {
			http.Error(w, "no session on context", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("secret rows for " + s.Role.String()))
	}
}

func TestRequire_AnonymousRedirectsWithoutContent(t *testing.T) {
	t.Parallel()
	g := New(newStore(), DefaultCapabilities)

	called := false
	rec := httptest.NewRecorder()
	g.Require(Users, protected(&called))(rec, httptest.NewRequest(http.MethodGet, "/users", nil))

	assert.False(t, called)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Empty(t, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Set-Cookie"), session.FlashCookieName)
}

func TestRequire_RoleMatrix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		role       models.Role
		capability Capability
		allowed    bool
	}{
		{models.RoleAdmin, Users, true},
		{models.RoleAdmin, Sellers, true},
		{models.RoleAdmin, MyProducts, false},
		{models.RoleSeller, MyProducts, true},
		{models.RoleSeller, AddProduct, true},
		{models.RoleSeller, Users, false},
		{models.RoleSeller, Workers, false},
		{models.RoleWorker, Products, true},
		{models.RoleWorker, Categories, true},
		{models.RoleWorker, ProductDetail, false},
		{models.Role("boss"), Dashboard, false},
	}

	store := newStore()
	g := New(store, DefaultCapabilities)
	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.capability), func(t *testing.T) {
			called := false
			rec := httptest.NewRecorder()
			req := signedIn(t, store, session.Session{Token: "tok", Role: tt.role}, "/x")
			g.Require(tt.capability, protected(&called))(rec, req)

			assert.Equal(t, tt.allowed, called)
			if tt.allowed {
				assert.Equal(t, http.StatusOK, rec.Code)
			} else {
				assert.Equal(t, http.StatusForbidden, rec.Code)
				assert.NotContains(t, rec.Body.String(), "secret")
			}
		})
	}
}

func TestRequire_CustomForbiddenPage(t *testing.T) {
	t.Parallel()
	store := newStore()
	g := New(store, DefaultCapabilities)
	g.Forbidden = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("not for you"))
	}

	called := false
	rec := httptest.NewRecorder()
	g.Require(Users, protected(&called))(rec, signedIn(t, store, session.Session{Token: "t", Role: models.RoleWorker}, "/users"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "not for you", rec.Body.String())
}

func TestRequire_InvalidatedSessionRedirects(t *testing.T) {
	t.Parallel()
	store := newStore()
	g := New(store, DefaultCapabilities)

	next := func(w http.ResponseWriter, r *http.Request) {
		// What the backend client's 401 hook does.
		require.True(t, session.Invalidate(r.Context()))
		http.Error(w, "secret error page", http.StatusBadGateway)
	}

	rec := httptest.NewRecorder()
	g.Require(Users, next)(rec, signedIn(t, store, session.Session{Token: "stale", Role: models.RoleAdmin}, "/users"))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Empty(t, rec.Body.String())

	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			cleared = c.MaxAge < 0
		}
	}
	assert.True(t, cleared, "session cookie should be expired")

	// The cleared cookie no longer authenticates.
	follow := httptest.NewRequest(http.MethodGet, "/users", nil)
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			follow.AddCookie(c)
		}
	}
	_, ok := store.Get(follow)
	assert.False(t, ok)
}

func TestRedirectIfAuthenticated(t *testing.T) {
	t.Parallel()
	store := newStore()
	g := New(store, DefaultCapabilities)
	login := func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("login form")) }

	rec := httptest.NewRecorder()
	g.RedirectIfAuthenticated(login)(rec, signedIn(t, store, session.Session{Token: "t", Role: models.RoleSeller}, "/login"))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	g.RedirectIfAuthenticated(login)(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, "login form", rec.Body.String())
}

func TestNav(t *testing.T) {
	t.Parallel()

	labels := func(entries []NavEntry) string {
		var names []string
		for _, e := range entries {
			names = append(names, e.Label)
		}
		return strings.Join(names, ",")
	}

	assert.Equal(t, "Dashboard,My Products,Categories,Add Product", labels(DefaultCapabilities.Nav(models.RoleSeller)))
	assert.Equal(t, "Dashboard,Products,Categories", labels(DefaultCapabilities.Nav(models.RoleWorker)))
	assert.Empty(t, DefaultCapabilities.Nav(models.Role("")))

	for _, e := range DefaultCapabilities.Nav(models.RoleAdmin) {
		assert.True(t, DefaultCapabilities.Allows(models.RoleAdmin, e.Capability))
	}
}
