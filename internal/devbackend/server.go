// Package devbackend is a local stand-in for the CarMate REST API. It
// speaks the same paths, envelopes and status strings as the remote
// service so the dashboard and the terminal client can run offline.
package devbackend

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/omerbag-9/CarMate-AdminPanel/internal/api"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/store"
)

// Options configures a Server.
type Options struct {
	JWTSecret    []byte
	UploadDir    string
	TokenTTL     time.Duration
	AllowOrigins []string
	// BulkLimit caps list sizes when a request carries no size.
	BulkLimit int
}

type Server struct {
	store     *store.Store
	secret    []byte
	uploadDir string
	tokenTTL  time.Duration
	origins   []string
	bulkLimit int
	logger    *slog.Logger
	now       func() time.Time
}

func New(st *store.Store, opts Options) *Server {
	s := &Server{
		store:     st,
		secret:    opts.JWTSecret,
		uploadDir: opts.UploadDir,
		tokenTTL:  opts.TokenTTL,
		origins:   opts.AllowOrigins,
		bulkLimit: opts.BulkLimit,
		logger:    slog.Default().With("component", "devbackend"),
		now:       time.Now,
	}
	if s.tokenTTL <= 0 {
		s.tokenTTL = 24 * time.Hour
	}
	if s.bulkLimit <= 0 {
		s.bulkLimit = 1000
	}
	return s
}

// Router builds the gin engine. Paths come from the api package so both
// sides of the wire agree.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(s.requestID(), s.requestLogger(), gin.Recovery(), s.cors())
	if err := r.SetTrustedProxies(nil); err != nil {
		s.logger.Warn("Failed to set trusted proxies", "error", err)
	}

	r.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, "route not found")
	})
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	if s.uploadDir != "" {
		r.Static("/uploads", s.uploadDir)
	}

	r.POST(api.PathLogin, s.login)

	authed := r.Group("/", s.RequireToken())
	authed.GET(api.PathProfile, s.profile)

	admin := authed.Group("/", RequireRoles(store.RoleAdmin))
	admin.GET(api.PathCustomers, s.listAccounts(store.RoleCustomer))
	admin.GET(api.PathWorkers, s.listAccounts(store.RoleWorker))
	admin.GET(api.PathSellers, s.listAccounts(store.RoleSeller))
	admin.GET(api.PathUser+":id", s.getAccount)
	admin.POST(api.PathAddUser, s.addAccount)
	admin.PUT(api.PathUpdateUser+":id", s.updateAccount)
	admin.DELETE(api.PathDeleteUser+":id", s.deleteAccount)
	admin.POST(api.PathAddCategory, s.addCategory)
	admin.DELETE(api.PathDeleteProduct+":id", s.deleteProduct)

	authed.GET(api.PathProducts, RequireRoles(store.RoleAdmin, store.RoleWorker), s.listProducts)
	authed.GET(api.PathCategories, s.listCategories)
	authed.GET(api.PathSubcategories+":id", s.listSubcategories)

	sellers := authed.Group("/", RequireRoles(store.RoleSeller))
	sellers.GET(api.PathMyProducts, s.listMyProducts)
	sellers.POST(api.PathAddProduct, s.addProduct)

	owners := authed.Group("/", RequireRoles(store.RoleAdmin, store.RoleSeller))
	owners.GET(api.PathProduct+":id", s.getProduct)
	owners.PUT(api.PathUpdateProduct+":id", s.updateProduct)

	return r
}

func (s *Server) cors() gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", api.TokenHeader},
		ExposeHeaders:    []string{requestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(s.origins) == 0 {
		cfg.AllowOrigins = []string{"http://localhost:8585", "http://127.0.0.1:8585"}
	} else {
		cfg.AllowOrigins = s.origins
	}
	return cors.New(cfg)
}
