package gate

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/omerbag-9/CarMate-AdminPanel/internal/session"
)

const (
	MsgLoginRequired  = "You must be logged in to access this page."
	MsgSessionExpired = "Your session has expired. Please log in again."
)

// Sessions is what the gate needs from the session layer.
type Sessions interface {
	session.Store
	AddFlash(w http.ResponseWriter, r *http.Request, msg session.FlashMessage)
}

type Gate struct {
	Sessions  Sessions
	Caps      Capabilities
	LoginPath string
	// Forbidden renders the page shown to a signed-in role lacking the
	// capability. Nil writes a plain 403.
	Forbidden http.HandlerFunc
}

func New(sessions Sessions, caps Capabilities) *Gate {
	return &Gate{Sessions: sessions, Caps: caps, LoginPath: "/login"}
}

// Require only lets requests carrying a session whose role has capability
// through to next. Anonymous requests are sent to the login page without
// any of next's output.
//
// For admitted requests the session is attached to the context together
// with an invalidator. When the backend rejects the token the invalidator
// clears the session, anything next writes is discarded, and the browser is
// redirected to the login page.
func (g *Gate) Require(capability Capability, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := g.Sessions.Get(r)
		if !ok {
			slog.Debug("Gate: no session, redirecting to login", "path", r.URL.Path)
			g.Sessions.AddFlash(w, r, session.FlashMessage{Type: "error", Message: MsgLoginRequired})
			redirect(w, g.LoginPath)
			return
		}
		if !g.Caps.Allows(s.Role, capability) {
			slog.Warn("Gate: capability denied", "role", s.Role, "capability", capability, "path", r.URL.Path)
			g.forbidden(w, r)
			return
		}

		gw := &gatedWriter{ResponseWriter: w}
		ctx := session.WithSession(r.Context(), s)
		ctx = session.WithInvalidator(ctx, func() { g.expire(gw, r) })
		next(gw, r.WithContext(ctx))

		if gw.isExpired() {
			redirect(w, g.LoginPath)
		}
	}
}

// RedirectIfAuthenticated sends signed-in users away from next, which is
// meant to be the login page.
func (g *Gate) RedirectIfAuthenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s, ok := g.Sessions.Get(r); ok && g.Caps.Allows(s.Role, Dashboard) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

func (g *Gate) expire(gw *gatedWriter, r *http.Request) {
	gw.once.Do(func() {
		slog.Info("Backend rejected session token, signing out", "path", r.URL.Path)
		if err := g.Sessions.Clear(gw.ResponseWriter, r); err != nil {
			slog.Error("Failed to clear session", "error", err)
		}
		g.Sessions.AddFlash(gw.ResponseWriter, r, session.FlashMessage{Type: "error", Message: MsgSessionExpired})
		gw.mu.Lock()
		gw.expired = true
		gw.mu.Unlock()
	})
}

func (g *Gate) forbidden(w http.ResponseWriter, r *http.Request) {
	if g.Forbidden != nil {
		g.Forbidden(w, r)
		return
	}
	http.Error(w, "Forbidden", http.StatusForbidden)
}

// redirect answers 303 with no body.
func redirect(w http.ResponseWriter, to string) {
	w.Header().Set("Location", to)
	w.WriteHeader(http.StatusSeeOther)
}

// gatedWriter drops the wrapped handler's output once the session expired,
// headers included. Output already sent before that passes through.
type gatedWriter struct {
	http.ResponseWriter

	once    sync.Once
	mu      sync.Mutex
	expired bool
	wrote   bool
	discard http.Header
}

func (gw *gatedWriter) dropping() bool { return gw.expired && !gw.wrote }

func (gw *gatedWriter) Header() http.Header {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	if gw.dropping() {
		if gw.discard == nil {
			gw.discard = http.Header{}
		}
		return gw.discard
	}
	return gw.ResponseWriter.Header()
}

func (gw *gatedWriter) isExpired() bool {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	return gw.dropping()
}

func (gw *gatedWriter) WriteHeader(code int) {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	if gw.dropping() {
		return
	}
	gw.wrote = true
	gw.ResponseWriter.WriteHeader(code)
}

func (gw *gatedWriter) Write(b []byte) (int, error) {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	if gw.dropping() {
		return len(b), nil
	}
	gw.wrote = true
	return gw.ResponseWriter.Write(b)
}

func (gw *gatedWriter) Unwrap() http.ResponseWriter { return gw.ResponseWriter }
