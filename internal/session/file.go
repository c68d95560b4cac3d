package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/omerbag-9/CarMate-AdminPanel/internal/models"
)

// File persists a Session for the terminal client, which has no browser cookie jar.
type File struct {
	Path string
}

type fileSession struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// DefaultFile returns the session file under the user's config directory.
func DefaultFile() (*File, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("locate config dir: %w", err)
	}
	return &File{Path: filepath.Join(dir, "carmate", "session.json")}, nil
}

func (f *File) Load() (Session, bool, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, fmt.Errorf("read session file: %w", err)
	}
	var fs fileSession
	if err := json.Unmarshal(data, &fs); err != nil {
		return Session{}, false, fmt.Errorf("decode session file: %w", err)
	}
	if fs.Token == "" {
		return Session{}, false, nil
	}
	role, _ := models.ParseRole(fs.Role)
	return Session{Token: fs.Token, Role: role}, true, nil
}

func (f *File) Save(s Session) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.Marshal(fileSession{Token: s.Token, Role: s.Role.String()})
	if err != nil {
		return err
	}
	return os.WriteFile(f.Path, data, 0o600)
}

func (f *File) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// Token satisfies api.TokenSource; a missing or unreadable file yields no token.
func (f *File) Token(context.Context) string {
	s, _, err := f.Load()
	if err != nil {
		return ""
	}
	return s.Token
}
