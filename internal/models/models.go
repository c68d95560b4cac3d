package models

import (
	"strings"
)

// Role is the dashboard role carried in the session.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleSeller Role = "seller"
	RoleWorker Role = "worker"
)

// ParseRole normalizes a backend role string. Unknown roles return "" and false.
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleSeller, RoleWorker:
		return r, true
	}
	return "", false
}

func (r Role) String() string { return string(r) }

// Account statuses used by the user and worker filters.
const (
	StatusVerified = "verified"
	StatusPending  = "pending"
	StatusBlocked  = "blocked"
)

type User struct {
	ID        int    `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
	IsActive  bool   `json:"isActive"`
	Status    string `json:"status"`
}

type Worker struct {
	User
	Specialization string `json:"specialization"`
	Location       string `json:"location"`
}

// UserDetail is the payload of the single-user endpoint; Worker is set for worker accounts.
type UserDetail struct {
	User   User          `json:"user"`
	Worker *WorkerFields `json:"worker,omitempty"`
}

type WorkerFields struct {
	Specialization string `json:"specialization"`
	Location       string `json:"location"`
}

type Product struct {
	ID                int      `json:"id"`
	Title             string   `json:"title"`
	ArabicTitle       string   `json:"arabicTitle"`
	Slug              string   `json:"slug"`
	ProductLink       string   `json:"productLink"`
	Price             float64  `json:"price"`
	Description       string   `json:"description"`
	ArabicDescription string   `json:"arabicDescription"`
	MainImage         string   `json:"mainImage"`
	SubImages         []string `json:"subImages"`
	CategoryID        int      `json:"categoryId"`
	SubCategoryID     int      `json:"subCategoryId"`
	SellerID          int      `json:"sellerId"`
	CreatedAt         string   `json:"createdAt"`
}

type ProductDetail struct {
	Product Product `json:"product"`
	Seller  *User   `json:"seller,omitempty"`
}

type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Subcategory struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	CategoryID int    `json:"categoryId"`
}

// Profile is the signed-in account shown in the header.
type Profile struct {
	ID        int    `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}
