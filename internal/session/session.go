// Package session keeps the dashboard's authentication state in a browser cookie.
//
// Exactly two durable values are stored: the backend token and the role.
// Flash messages use a separate cookie that is consumed on the next page view.
package session

import (
	"context"
	"encoding/gob"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/omerbag-9/CarMate-AdminPanel/internal/models"
)

const (
	CookieName      = "dashboard-session"
	FlashCookieName = "dashboard-flash"

	keyToken = "token"
	keyRole  = "role"
)

// Flashes are gob-encoded into the flash cookie, apart from the token and
// role of the session cookie.
func init() {
	gob.Register(FlashMessage{})
}

// Session is the signed-in state: an opaque backend token and the account role.
type Session struct {
	Token string
	Role  models.Role
}

// Store is the session accessor/mutator handed to every component that needs it.
type Store interface {
	Get(r *http.Request) (Session, bool)
	Set(w http.ResponseWriter, r *http.Request, s Session) error
	Clear(w http.ResponseWriter, r *http.Request) error
}

// CookieStore implements Store on top of a gorilla cookie store.
type CookieStore struct {
	store *sessions.CookieStore
}

func NewCookieStore(store *sessions.CookieStore) *CookieStore {
	return &CookieStore{store: store}
}

func (c *CookieStore) Get(r *http.Request) (Session, bool) {
	sess, err := c.store.Get(r, CookieName)
	if err != nil {
		// A cookie signed with an old key decodes as a fresh session.
		slog.Debug("Discarding unreadable session cookie", "error", err)
		return Session{}, false
	}
	token, _ := sess.Values[keyToken].(string)
	if token == "" {
		return Session{}, false
	}
	roleStr, _ := sess.Values[keyRole].(string)
	role, _ := models.ParseRole(roleStr)
	return Session{Token: token, Role: role}, true
}

// Set writes the cookie; it must run before the caller redirects.
func (c *CookieStore) Set(w http.ResponseWriter, r *http.Request, s Session) error {
	sess, _ := c.store.Get(r, CookieName)
	sess.Values[keyToken] = s.Token
	sess.Values[keyRole] = s.Role.String()
	sess.Options = c.options(0)
	return sess.Save(r, w)
}

func (c *CookieStore) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, _ := c.store.Get(r, CookieName)
	delete(sess.Values, keyToken)
	delete(sess.Values, keyRole)
	sess.Options = c.options(-1)
	return sess.Save(r, w)
}

// options copies the store defaults with the given MaxAge. Zero means a
// browser-session cookie with no explicit expiry.
func (c *CookieStore) options(maxAge int) *sessions.Options {
	opts := *c.store.Options
	opts.MaxAge = maxAge
	return &opts
}

// FlashMessage is a one-shot notice kept in FlashCookieName. It outlives
// Clear, so a sign-out notice survives the redirect to /login.
type FlashMessage struct {
	Type    string
	Message string
}

func (c *CookieStore) AddFlash(w http.ResponseWriter, r *http.Request, msg FlashMessage) {
	sess, _ := c.store.Get(r, FlashCookieName)
	sess.Options = c.options(0)
	sess.AddFlash(msg)
	if err := sess.Save(r, w); err != nil {
		slog.Error("Failed to save flash", "error", err)
	}
}

// Flashes retrieves and clears the pending flash messages.
func (c *CookieStore) Flashes(w http.ResponseWriter, r *http.Request) []FlashMessage {
	sess, _ := c.store.Get(r, FlashCookieName)
	flashes := sess.Flashes()
	if len(flashes) == 0 {
		return nil
	}
	sess.Options = c.options(0)
	if err := sess.Save(r, w); err != nil {
		slog.Error("Failed to clear flashes", "error", err)
	}
	var messages []FlashMessage
	for _, f := range flashes {
		if fm, ok := f.(FlashMessage); ok {
			messages = append(messages, fm)
		}
	}
	return messages
}

type ctxKey int

const (
	sessionKey ctxKey = iota
	invalidatorKey
)

// WithSession attaches the request's session to ctx.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey).(Session)
	return s, ok && s.Token != ""
}

// ContextTokens reads the token of the session attached to the request context.
type ContextTokens struct{}

func (ContextTokens) Token(ctx context.Context) string {
	s, _ := FromContext(ctx)
	return s.Token
}

// WithInvalidator registers fn as the way to drop the session of the current request.
func WithInvalidator(ctx context.Context, fn func()) context.Context {
	return context.WithValue(ctx, invalidatorKey, fn)
}

// Invalidate runs the invalidator attached to ctx and reports whether one existed.
func Invalidate(ctx context.Context) bool {
	fn, ok := ctx.Value(invalidatorKey).(func())
	if !ok || fn == nil {
		return false
	}
	fn()
	return true
}
