// Package gate decides which signed-in roles may reach which pages.
package gate

import (
	"slices"

	"github.com/omerbag-9/CarMate-AdminPanel/internal/models"
)

// Capability tags a page or action.
type Capability string

const (
	Dashboard     Capability = "dashboard"
	Users         Capability = "users"
	Workers       Capability = "workers"
	Sellers       Capability = "sellers"
	Products      Capability = "products"
	MyProducts    Capability = "my-products"
	Categories    Capability = "categories"
	AddUser       Capability = "add-user"
	AddWorker     Capability = "add-worker"
	AddProduct    Capability = "add-product"
	AddCategory   Capability = "add-category"
	DeleteUser    Capability = "delete-user"
	DeleteProduct Capability = "delete-product"
	UserDetail    Capability = "user-detail"
	WorkerDetail  Capability = "worker-detail"
	ProductDetail Capability = "product-detail"
)

// Capabilities maps each role to what it may do. A role that is not a key
// may do nothing.
type Capabilities map[models.Role][]Capability

// DefaultCapabilities is the dashboard's role table.
var DefaultCapabilities = Capabilities{
	models.RoleAdmin: {
		Dashboard, Users, Workers, Sellers, Products, Categories,
		AddUser, AddWorker, AddCategory, UserDetail, WorkerDetail, ProductDetail,
		DeleteUser, DeleteProduct,
	},
	models.RoleSeller: {Dashboard, MyProducts, AddProduct, ProductDetail, Categories},
	models.RoleWorker: {Dashboard, Products, Categories},
}

func (c Capabilities) Allows(role models.Role, capability Capability) bool {
	return slices.Contains(c[role], capability)
}

// NavEntry is one sidebar link.
type NavEntry struct {
	Capability Capability
	Label      string
	Path       string
}

var navigation = []NavEntry{
	{Dashboard, "Dashboard", "/"},
	{Users, "Users", "/users"},
	{Workers, "Workers", "/workers"},
	{Sellers, "Sellers", "/sellers"},
	{Products, "Products", "/products"},
	{MyProducts, "My Products", "/my-products"},
	{Categories, "Categories", "/categories"},
	{AddUser, "Add User", "/add-user"},
	{AddWorker, "Add Worker", "/add-worker"},
	{AddProduct, "Add Product", "/add-product"},
}

// Nav returns the sidebar links role may follow, in display order.
func (c Capabilities) Nav(role models.Role) []NavEntry {
	var out []NavEntry
	for _, e := range navigation {
		if c.Allows(role, e.Capability) {
			out = append(out, e)
		}
	}
	return out
}
