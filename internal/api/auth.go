package api

import (
	"context"
	"net/http"

	"github.com/omerbag-9/CarMate-AdminPanel/internal/models"
)

const (
	PathLogin   = "/admin/login/admin/145461456"
	PathProfile = "/user/myprofile"

	StatusLoginSuccess = "login successfully"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// Login exchanges credentials for a session token. Only the backend's
// explicit success status counts as a successful login.
func (c *Client) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	res, err := c.Do(ctx, Request{Method: http.MethodPost, Path: PathLogin, Body: creds})
	if err != nil {
		return nil, err
	}
	if err := expectStatus(res, StatusLoginSuccess); err != nil {
		return nil, err
	}
	var out LoginResult
	if err := decode(res, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, &Error{StatusCode: res.StatusCode, Message: "login response carried no token"}
	}
	return &out, nil
}

// Profile returns the signed-in account.
func (c *Client) Profile(ctx context.Context) (*models.Profile, error) {
	res, err := c.Do(ctx, Request{Method: http.MethodGet, Path: PathProfile})
	if err != nil {
		return nil, err
	}
	var p models.Profile
	if err := decode(res, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
