// Package auth signs dashboard users in and out against the backend.
package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/omerbag-9/CarMate-AdminPanel/internal/api"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/forms"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/models"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/session"
)

// Authenticator exchanges credentials for a backend token.
type Authenticator interface {
	Login(ctx context.Context, creds api.Credentials) (*api.LoginResult, error)
}

type Flow struct {
	API      Authenticator
	Sessions session.Store
}

// Exchange validates the form and trades the credentials for a session.
// Validation failures come back as forms.Errors without a network call.
func (f *Flow) Exchange(ctx context.Context, form forms.Login) (session.Session, error) {
	if err := forms.Validate(form); err != nil {
		return session.Session{}, err
	}

	res, err := f.API.Login(ctx, api.Credentials{Email: form.Email, Password: form.Password})
	if err != nil {
		slog.Info("Login rejected", "email", form.Email, "error", err)
		return session.Session{}, err
	}

	role, ok := models.ParseRole(res.Role)
	if !ok {
		slog.Warn("Login returned an unknown role", "email", form.Email, "role", res.Role)
	}
	return session.Session{Token: res.Token, Role: role}, nil
}

// Login runs Exchange and stores the resulting session. Backend failures
// leave the session untouched.
func (f *Flow) Login(ctx context.Context, w http.ResponseWriter, r *http.Request, form forms.Login) (session.Session, error) {
	s, err := f.Exchange(ctx, form)
	if err != nil {
		return session.Session{}, err
	}
	if err := f.Sessions.Set(w, r, s); err != nil {
		slog.Error("Failed to save session", "error", err)
		return session.Session{}, err
	}
	slog.Info("Login successful", "email", form.Email, "role", s.Role)
	return s, nil
}

func (f *Flow) Logout(w http.ResponseWriter, r *http.Request) error {
	return f.Sessions.Clear(w, r)
}
