package handlers

import (
	"io/fs"
	"net/http"

	"github.com/omerbag-9/CarMate-AdminPanel/internal/gate"
)

// Routes mounts every dashboard page on a new mux. Pages are wrapped by the
// gate with the capability they need; the login form is rate limited.
func (h *AdminHandler) Routes(g *gate.Gate, limiter *RateLimiter, static fs.FS) *http.ServeMux {
	mux := http.NewServeMux()

	// Static Files
	mux.Handle("GET /static/", http.StripPrefix("/static", http.FileServerFS(static)))
	mux.HandleFunc("GET /healthz", h.Healthz)

	login := http.HandlerFunc(h.LoginPost)
	if limiter != nil {
		login = limiter.Middleware(h.LoginPost)
	}
	mux.HandleFunc("GET /login", g.RedirectIfAuthenticated(h.LoginGet))
	mux.HandleFunc("POST /login", login)
	mux.HandleFunc("POST /logout", h.Logout)

	mux.HandleFunc("GET /{$}", g.Require(gate.Dashboard, h.Dashboard))

	mux.HandleFunc("GET /users", g.Require(gate.Users, h.ListUsers))
	mux.HandleFunc("POST /users/delete", g.Require(gate.DeleteUser, h.DeleteUser))
	mux.HandleFunc("GET /workers", g.Require(gate.Workers, h.ListWorkers))
	mux.HandleFunc("POST /workers/delete", g.Require(gate.DeleteUser, h.DeleteWorker))
	mux.HandleFunc("GET /sellers", g.Require(gate.Sellers, h.ListSellers))
	mux.HandleFunc("POST /sellers/delete", g.Require(gate.DeleteUser, h.DeleteSeller))

	mux.HandleFunc("GET /products", g.Require(gate.Products, h.ListProducts))
	mux.HandleFunc("POST /products/delete", g.Require(gate.DeleteProduct, h.DeleteProduct))
	mux.HandleFunc("GET /my-products", g.Require(gate.MyProducts, h.ListMyProducts))

	mux.HandleFunc("GET /categories", g.Require(gate.Categories, h.ListCategories))
	mux.HandleFunc("POST /categories", g.Require(gate.AddCategory, h.AddCategory))
	mux.HandleFunc("GET /categories/{id}/subcategories", g.Require(gate.Categories, h.ListSubcategories))

	mux.HandleFunc("GET /add-user", g.Require(gate.AddUser, h.AddUserForm))
	mux.HandleFunc("POST /add-user", g.Require(gate.AddUser, h.CreateUser))
	mux.HandleFunc("GET /add-worker", g.Require(gate.AddWorker, h.AddWorkerForm))
	mux.HandleFunc("POST /add-worker", g.Require(gate.AddWorker, h.CreateWorker))
	mux.HandleFunc("GET /add-product", g.Require(gate.AddProduct, h.AddProductForm))
	mux.HandleFunc("POST /add-product", g.Require(gate.AddProduct, h.CreateProduct))

	mux.HandleFunc("GET /specific-user/{id}", g.Require(gate.UserDetail, h.UserDetail))
	mux.HandleFunc("POST /specific-user/{id}", g.Require(gate.UserDetail, h.UpdateUser))
	mux.HandleFunc("GET /specific-worker/{id}", g.Require(gate.WorkerDetail, h.WorkerDetail))
	mux.HandleFunc("POST /specific-worker/{id}", g.Require(gate.WorkerDetail, h.UpdateWorker))
	mux.HandleFunc("GET /specific-product/{id}", g.Require(gate.ProductDetail, h.ProductDetail))
	mux.HandleFunc("POST /specific-product/{id}", g.Require(gate.ProductDetail, h.UpdateProduct))

	return mux
}
