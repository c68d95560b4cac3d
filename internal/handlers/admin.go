// Package handlers renders the dashboard pages.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/csrf"

	"github.com/omerbag-9/CarMate-AdminPanel/internal/api"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/auth"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/collection"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/forms"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/gate"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/session"
)

// Sessions is the session layer the pages use: the durable session plus
// flash messages.
type Sessions interface {
	session.Store
	AddFlash(w http.ResponseWriter, r *http.Request, msg session.FlashMessage)
	Flashes(w http.ResponseWriter, r *http.Request) []session.FlashMessage
}

type AdminHandler struct {
	API       *api.Client
	Sessions  Sessions
	Auth      *auth.Flow
	Caps      gate.Capabilities
	Templates *TemplateCache
	PageSize  int

	// Deletes of the same backend record are serialized across views and
	// requests.
	userDeletes    *collection.Guard
	productDeletes *collection.Guard
}

func NewAdminHandler(client *api.Client, sessions Sessions, caps gate.Capabilities, templates *TemplateCache, pageSize int) *AdminHandler {
	return &AdminHandler{
		API:            client,
		Sessions:       sessions,
		Auth:           &auth.Flow{API: client, Sessions: sessions},
		Caps:           caps,
		Templates:      templates,
		PageSize:       pageSize,
		userDeletes:    collection.NewGuard(),
		productDeletes: collection.NewGuard(),
	}
}

// pageData is the data every page template receives.
func (h *AdminHandler) pageData(w http.ResponseWriter, r *http.Request, title string) map[string]any {
	data := map[string]any{
		"Title":     title,
		"Path":      r.URL.Path,
		"CsrfField": csrf.TemplateField(r),
		"Flashes":   h.Sessions.Flashes(w, r),
	}
	if s, ok := session.FromContext(r.Context()); ok {
		data["Role"] = s.Role.String()
		data["Nav"] = h.Caps.Nav(s.Role)
	}
	return data
}

func (h *AdminHandler) flash(w http.ResponseWriter, r *http.Request, kind, msg string) {
	h.Sessions.AddFlash(w, r, session.FlashMessage{Type: kind, Message: msg})
}

// Forbidden is the page for a signed-in role lacking the capability.
func (h *AdminHandler) Forbidden(w http.ResponseWriter, r *http.Request) {
	data := h.pageData(w, r, "Access denied")
	if s, ok := h.Sessions.Get(r); ok {
		data["Role"] = s.Role.String()
		data["Nav"] = h.Caps.Nav(s.Role)
	}
	h.Templates.Render(w, http.StatusForbidden, "forbidden.html", data)
}

// allows reports whether the signed-in role has capability.
func (h *AdminHandler) allows(r *http.Request, capability gate.Capability) bool {
	s, ok := session.FromContext(r.Context())
	return ok && h.Caps.Allows(s.Role, capability)
}

// errorMessage is the text shown for a failed action: field errors of an
// invalid form are rendered next to the fields, so they get a summary.
func errorMessage(err error) string {
	var ferrs forms.Errors
	if errors.As(err, &ferrs) {
		return "Please fix the highlighted fields."
	}
	if errors.Is(err, collection.ErrDeleteInFlight) {
		return "A delete of this item is already in progress."
	}
	return api.Message(err)
}

// statusFor picks the response status for a failed backend call: the
// backend's own 4xx, otherwise 502.
func statusFor(err error) int {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		return apiErr.StatusCode
	}
	return http.StatusBadGateway
}

func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	return id, err == nil && id > 0
}

// redirectBack sends the browser to path with the list query it came from.
func redirectBack(w http.ResponseWriter, r *http.Request, path string) {
	target := path
	if back := r.FormValue("back"); back != "" {
		if q, err := url.ParseQuery(back); err == nil {
			target += "?" + q.Encode()
		}
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *AdminHandler) LoginGet(w http.ResponseWriter, r *http.Request) {
	data := h.pageData(w, r, "Login")
	data["Form"] = forms.Login{}
	h.Templates.Render(w, http.StatusOK, "login.html", data)
}

func (h *AdminHandler) LoginPost(w http.ResponseWriter, r *http.Request) {
	form := forms.ParseLogin(r)
	_, err := h.Auth.Login(r.Context(), w, r, form)
	if err == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data := h.pageData(w, r, "Login")
	data["Form"] = forms.Login{Email: form.Email}
	var ferrs forms.Errors
	if errors.As(err, &ferrs) {
		data["Errors"] = ferrs
		h.Templates.Render(w, http.StatusUnprocessableEntity, "login.html", data)
		return
	}
	data["Error"] = api.Message(err)
	h.Templates.Render(w, statusFor(err), "login.html", data)
}

func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.Logout(w, r); err != nil {
		slog.Error("Failed to clear session", "error", err)
	}
	h.flash(w, r, "success", "Logged out successfully!")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Dashboard greets the signed-in account.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	data := h.pageData(w, r, "Dashboard")
	profile, err := h.API.Profile(r.Context())
	if err != nil {
		slog.Warn("Failed to load profile", "error", err)
		data["Error"] = api.Message(err)
	} else {
		data["Profile"] = profile
	}
	h.Templates.Render(w, http.StatusOK, "dashboard.html", data)
}

func (h *AdminHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
