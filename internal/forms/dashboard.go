package forms

import (
	"net/http"
	"strings"

	"github.com/omerbag-9/CarMate-AdminPanel/internal/api"
)

type Login struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

// ParseLogin reads the login form. The email is trimmed and lowercased.
func ParseLogin(r *http.Request) Login {
	return Login{
		Email:    strings.ToLower(field(r, "email")),
		Password: r.FormValue("password"),
	}
}

// User is the add-user and add-worker form.
type User struct {
	FirstName      string `form:"firstName" validate:"required"`
	LastName       string `form:"lastName" validate:"required"`
	Email          string `form:"email" validate:"required,email"`
	Password       string `form:"password" validate:"required,strongpassword"`
	Phone          string `form:"phone" validate:"omitempty,digits"`
	Role           string `form:"role" validate:"required,oneof=admin seller worker customer"`
	Specialization string `form:"specialization" validate:"required_if=Role worker"`
	Location       string `form:"location"`
	IsActive       string `form:"isActive" validate:"required,oneof=Yes No"`
	Status         string `form:"status" validate:"required,oneof=verified pending blocked"`
}

// ParseUser reads the add-user form. A non-empty role overrides the
// submitted one, as the add-worker page does.
func ParseUser(r *http.Request, role string) User {
	u := User{
		FirstName:      field(r, "firstName"),
		LastName:       field(r, "lastName"),
		Email:          strings.ToLower(field(r, "email")),
		Password:       r.FormValue("password"),
		Phone:          field(r, "phone"),
		Role:           strings.ToLower(field(r, "role")),
		Specialization: field(r, "specialization"),
		Location:       field(r, "location"),
		IsActive:       normalizeYesNo(field(r, "isActive")),
		Status:         strings.ToLower(field(r, "status")),
	}
	if role != "" {
		u.Role = role
	}
	return u
}

func (u User) Input() api.UserInput {
	return api.UserInput{
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Email:          u.Email,
		Password:       u.Password,
		Phone:          u.Phone,
		Role:           u.Role,
		Specialization: u.Specialization,
		Location:       u.Location,
		IsActive:       yesNo(u.IsActive),
		Status:         u.Status,
	}
}

// UserUpdate is the edit form of the user and worker detail pages. An empty
// password keeps the current one.
type UserUpdate struct {
	FirstName      string `form:"firstName" validate:"required"`
	LastName       string `form:"lastName" validate:"required"`
	Email          string `form:"email" validate:"required,email"`
	Password       string `form:"password" validate:"omitempty,min=6"`
	Phone          string `form:"phone" validate:"omitempty,digits"`
	Role           string `form:"role" validate:"required,oneof=admin seller worker customer"`
	Specialization string `form:"specialization" validate:"required_if=Role worker"`
	Location       string `form:"location"`
	IsActive       string `form:"isActive" validate:"required,oneof=Yes No"`
	Status         string `form:"status" validate:"required,oneof=verified pending blocked"`
}

func ParseUserUpdate(r *http.Request) UserUpdate {
	u := ParseUser(r, "")
	return UserUpdate(u)
}

// Input builds the update body. The email is only sent when it differs
// from originalEmail.
func (u UserUpdate) Input(originalEmail string) api.UserInput {
	in := User(u).Input()
	if strings.EqualFold(u.Email, originalEmail) {
		in.Email = ""
	}
	return in
}

type Category struct {
	Name string `form:"name" validate:"required"`
}

func ParseCategory(r *http.Request) Category {
	return Category{Name: field(r, "name")}
}

// Product is the add and edit product form without its images.
type Product struct {
	Title             string `form:"title" validate:"required"`
	ArabicTitle       string `form:"arabicTitle" validate:"required"`
	ProductLink       string `form:"productLink" validate:"omitempty,url"`
	Price             string `form:"price" validate:"required,positive"`
	Description       string `form:"description" validate:"required"`
	ArabicDescription string `form:"arabicDescription" validate:"required"`
	CategoryID        string `form:"categoryId" validate:"omitempty,numeric"`
	SubCategoryID     string `form:"subCategoryId" validate:"required,numeric"`
}

func ParseProduct(r *http.Request) Product {
	return Product{
		Title:             field(r, "title"),
		ArabicTitle:       field(r, "arabicTitle"),
		ProductLink:       field(r, "productLink"),
		Price:             field(r, "price"),
		Description:       field(r, "description"),
		ArabicDescription: field(r, "arabicDescription"),
		CategoryID:        field(r, "categoryId"),
		SubCategoryID:     field(r, "subCategoryId"),
	}
}

func (p Product) Input() api.ProductInput {
	return api.ProductInput{
		Title:             p.Title,
		ArabicTitle:       p.ArabicTitle,
		ProductLink:       p.ProductLink,
		Price:             p.Price,
		Description:       p.Description,
		ArabicDescription: p.ArabicDescription,
		SubCategoryID:     p.SubCategoryID,
	}
}

func normalizeYesNo(s string) string {
	switch strings.ToLower(s) {
	case "yes", "true":
		return "Yes"
	case "no", "false":
		return "No"
	}
	return s
}
