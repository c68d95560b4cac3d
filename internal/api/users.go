package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/omerbag-9/CarMate-AdminPanel/internal/models"
)

const (
	PathCustomers  = "/admin/getcustomerusers"
	PathWorkers    = "/admin/getworkerusers"
	PathSellers    = "/admin/getsellerusers"
	PathUser       = "/admin/getSpecificUser/"
	PathAddUser    = "/admin/addUser"
	PathUpdateUser = "/admin/updateUser/"
	PathDeleteUser = "/admin/deleteuser/"

	StatusUserCreated = "user created successfully"
	StatusUserUpdated = "user updated successfully"
)

// UserInput is the body of add/update user calls. Email and Password are
// omitted when empty so updates leave them unchanged.
type UserInput struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email,omitempty"`
	Password       string `json:"password,omitempty"`
	Phone          string `json:"phone"`
	Role           string `json:"role"`
	Specialization string `json:"specialization,omitempty"`
	Location       string `json:"location,omitempty"`
	IsActive       bool   `json:"isActive"`
	Status         string `json:"status"`
}

// listAll performs one bulk GET of path with the server-side filters applied.
func listAll[T any](ctx context.Context, c *Client, path string, filters map[string]string) ([]T, error) {
	q := url.Values{}
	q.Set("size", strconv.Itoa(c.bulkSize))
	for k, v := range filters {
		if v != "" {
			q.Set(k, v)
		}
	}
	res, err := c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: q})
	if err != nil {
		return nil, err
	}
	var items []T
	if err := decode(res, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListCustomers fetches customer accounts; filters accepts isActive and status.
func (c *Client) ListCustomers(ctx context.Context, filters map[string]string) ([]models.User, error) {
	return listAll[models.User](ctx, c, PathCustomers, filters)
}

func (c *Client) ListWorkers(ctx context.Context, filters map[string]string) ([]models.Worker, error) {
	return listAll[models.Worker](ctx, c, PathWorkers, filters)
}

func (c *Client) ListSellers(ctx context.Context, filters map[string]string) ([]models.User, error) {
	return listAll[models.User](ctx, c, PathSellers, filters)
}

func (c *Client) GetUser(ctx context.Context, id int) (*models.UserDetail, error) {
	res, err := c.Do(ctx, Request{Method: http.MethodGet, Path: PathUser + strconv.Itoa(id)})
	if err != nil {
		return nil, err
	}
	var d models.UserDetail
	if err := decode(res, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *Client) AddUser(ctx context.Context, in UserInput) error {
	res, err := c.Do(ctx, Request{Method: http.MethodPost, Path: PathAddUser, Body: in})
	if err != nil {
		return err
	}
	return expectStatus(res, StatusUserCreated)
}

func (c *Client) UpdateUser(ctx context.Context, id int, in UserInput) error {
	res, err := c.Do(ctx, Request{Method: http.MethodPut, Path: PathUpdateUser + strconv.Itoa(id), Body: in})
	if err != nil {
		return err
	}
	return expectStatus(res, StatusUserUpdated)
}

// DeleteUser removes any account kind (customer, worker, seller).
func (c *Client) DeleteUser(ctx context.Context, id int) error {
	if _, err := c.Do(ctx, Request{Method: http.MethodDelete, Path: PathDeleteUser + strconv.Itoa(id)}); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return nil
}
