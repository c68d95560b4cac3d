package devbackend

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/omerbag-9/CarMate-AdminPanel/internal/api"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/models"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/store"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, bindMessage(err))
		return
	}

	account, err := s.store.GetAccountByEmail(c.Request.Context(), req.Email)
	if errors.Is(err, store.ErrNotFound) {
		fail(c, http.StatusBadRequest, "Invalid email or password")
		return
	}
	if err != nil {
		s.serverError(c, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		fail(c, http.StatusBadRequest, "Invalid email or password")
		return
	}
	if account.Status == models.StatusBlocked || !account.IsActive {
		fail(c, http.StatusForbidden, "this account is disabled")
		return
	}

	token, err := s.issueToken(account)
	if err != nil {
		s.serverError(c, err)
		return
	}
	s.logger.Info("Login", "account", account.ID, "role", account.Role)
	ok(c, http.StatusOK, api.StatusLoginSuccess, api.LoginResult{Token: token, Role: account.Role})
}

func (s *Server) profile(c *gin.Context) {
	a := currentAccount(c)
	ok(c, http.StatusOK, api.StatusSuccess, models.Profile{
		ID:        a.ID,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Email:     a.Email,
		Role:      a.Role,
	})
}

// listAccounts serves one role's account list with the isActive and status filters.
func (s *Server) listAccounts(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		f := store.AccountFilter{Role: role, Status: c.Query("status"), Limit: s.bulkSize(c)}
		if v := c.Query("isActive"); v != "" {
			active, err := strconv.ParseBool(v)
			if err != nil {
				fail(c, http.StatusBadRequest, "isActive must be true or false")
				return
			}
			f.IsActive = &active
		}

		ctx := c.Request.Context()
		accounts, err := s.store.ListAccounts(ctx, f)
		if err != nil {
			s.serverError(c, err)
			return
		}
		count, err := s.store.CountAccounts(ctx, f)
		if err != nil {
			s.serverError(c, err)
			return
		}

		if role == store.RoleWorker {
			workers := make([]models.Worker, 0, len(accounts))
			for _, a := range accounts {
				workers = append(workers, models.Worker{User: a.User, Specialization: a.Specialization, Location: a.Location})
			}
			okList(c, workers, count)
			return
		}
		users := make([]models.User, 0, len(accounts))
		for _, a := range accounts {
			users = append(users, a.User)
		}
		okList(c, users, count)
	}
}

func (s *Server) getAccount(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	a, err := s.store.GetAccount(c.Request.Context(), id)
	if err != nil {
		s.storeError(c, err, "user")
		return
	}
	detail := models.UserDetail{User: a.User}
	if a.Role == store.RoleWorker {
		detail.Worker = &models.WorkerFields{Specialization: a.Specialization, Location: a.Location}
	}
	ok(c, http.StatusOK, api.StatusSuccess, detail)
}

type accountRequest struct {
	FirstName      string `json:"firstName" binding:"required,max=50"`
	LastName       string `json:"lastName" binding:"max=50"`
	Email          string `json:"email" binding:"omitempty,email"`
	Password       string `json:"password" binding:"omitempty,min=6"`
	Phone          string `json:"phone" binding:"omitempty,numeric"`
	Role           string `json:"role" binding:"required,oneof=user customer worker seller admin"`
	Specialization string `json:"specialization" binding:"required_if=Role worker"`
	Location       string `json:"location"`
	IsActive       bool   `json:"isActive"`
	Status         string `json:"status" binding:"omitempty,oneof=verified pending blocked"`
}

func (r accountRequest) account() (*store.Account, error) {
	// The dashboard labels customers "customer"; they are stored as RoleCustomer.
	if r.Role == "customer" {
		r.Role = store.RoleCustomer
	}
	a := &store.Account{
		User: models.User{
			FirstName: strings.TrimSpace(r.FirstName),
			LastName:  strings.TrimSpace(r.LastName),
			Email:     r.Email,
			Phone:     r.Phone,
			Role:      r.Role,
			IsActive:  r.IsActive,
			Status:    r.Status,
		},
		Specialization: r.Specialization,
		Location:       r.Location,
	}
	if r.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		a.PasswordHash = string(hash)
	}
	return a, nil
}

func (s *Server) addAccount(c *gin.Context) {
	var req accountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, bindMessage(err))
		return
	}
	if req.Email == "" || req.Password == "" {
		fail(c, http.StatusBadRequest, "email and password are required")
		return
	}
	if req.Status == "" {
		req.Status = models.StatusPending
	}

	a, err := req.account()
	if err != nil {
		s.serverError(c, err)
		return
	}
	if err := s.store.CreateAccount(c.Request.Context(), a); err != nil {
		s.storeError(c, err, "email")
		return
	}
	ok(c, http.StatusCreated, api.StatusUserCreated, a.User)
}

func (s *Server) updateAccount(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	var req accountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, bindMessage(err))
		return
	}
	if req.Status == "" {
		req.Status = models.StatusPending
	}

	a, err := req.account()
	if err != nil {
		s.serverError(c, err)
		return
	}
	a.ID = id
	if err := s.store.UpdateAccount(c.Request.Context(), a); err != nil {
		what := "user"
		if errors.Is(err, store.ErrDuplicate) {
			what = "email"
		}
		s.storeError(c, err, what)
		return
	}
	ok(c, http.StatusOK, api.StatusUserUpdated, nil)
}

func (s *Server) deleteAccount(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	if id == currentAccount(c).ID {
		fail(c, http.StatusBadRequest, "you cannot delete your own account")
		return
	}
	if err := s.store.DeleteAccount(c.Request.Context(), id); err != nil {
		s.storeError(c, err, "user")
		return
	}
	ok(c, http.StatusOK, api.StatusSuccess, nil)
}

// bindMessage renders the first binding failure as a sentence.
func bindMessage(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return "invalid request body"
	}
	fe := ve[0]
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required", "required_if":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "url":
		return field + " must be a valid URL"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "min", "max", "gt", "gte":
		return fmt.Sprintf("%s must satisfy %s=%s", field, fe.Tag(), fe.Param())
	}
	return field + " is invalid"
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
