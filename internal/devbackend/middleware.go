package devbackend

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/omerbag-9/CarMate-AdminPanel/internal/api"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/store"
)

const (
	requestIDHeader = "X-Request-ID"

	ctxRequestID = "request_id"
	ctxAccount   = "account"
	ctxRole      = "userRole"
)

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (s *Server) issueToken(a *store.Account) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: a.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(a.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	})
	return token.SignedString(s.secret)
}

func (s *Server) parseToken(raw string) (*claims, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// RequireToken authenticates the token header and loads the account it
// names. Every failure answers 401.
func (s *Server) RequireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(api.TokenHeader))
		if raw == "" {
			fail(c, http.StatusUnauthorized, "please login first")
			return
		}
		cl, err := s.parseToken(raw)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "jwt expired"
			}
			fail(c, http.StatusUnauthorized, msg)
			return
		}
		id, err := strconv.Atoi(cl.Subject)
		if err != nil {
			fail(c, http.StatusUnauthorized, "invalid token")
			return
		}
		account, err := s.store.GetAccount(c.Request.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			fail(c, http.StatusUnauthorized, "account no longer exists")
			return
		}
		if err != nil {
			s.serverError(c, err)
			return
		}
		c.Set(ctxAccount, account)
		c.Set(ctxRole, account.Role)
		c.Next()
	}
}

// RequireRoles lets through only the listed roles. It expects RequireToken
// to have run.
func RequireRoles(allowedRoles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[strings.ToLower(strings.TrimSpace(r))] = struct{}{}
	}

	return func(c *gin.Context) {
		role := c.GetString(ctxRole)
		if role == "" {
			fail(c, http.StatusUnauthorized, "please login first")
			return
		}
		if _, ok := allowed[strings.ToLower(role)]; !ok {
			fail(c, http.StatusForbidden, "you are not allowed to access this route")
			return
		}
		c.Next()
	}
}

func currentAccount(c *gin.Context) *store.Account {
	a, _ := c.MustGet(ctxAccount).(*store.Account)
	return a
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(ctxRequestID, rid)
		c.Header(requestIDHeader, rid)
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("HTTP request",
			"request_id", c.GetString(ctxRequestID),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"ip", c.ClientIP(),
		)
	}
}
