// Package views holds the collection schemas of the dashboard lists: what
// a row is searched by and which columns it sorts on.
package views

import (
	"github.com/omerbag-9/CarMate-AdminPanel/internal/collection"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/models"
)

// AccountFilters are the server-side filters of the account lists.
var AccountFilters = []string{"isActive", "status"}

var Users = collection.Schema[models.User]{
	ID:     func(u models.User) int { return u.ID },
	Search: func(u models.User) string { return u.FirstName },
	Fields: map[string]func(models.User) any{
		"id":        func(u models.User) any { return u.ID },
		"firstName": func(u models.User) any { return u.FirstName },
		"lastName":  func(u models.User) any { return u.LastName },
		"email":     func(u models.User) any { return u.Email },
		"phone":     func(u models.User) any { return u.Phone },
		"isActive":  func(u models.User) any { return u.IsActive },
		"status":    func(u models.User) any { return u.Status },
	},
}

var Workers = collection.Schema[models.Worker]{
	ID:     func(u models.Worker) int { return u.ID },
	Search: func(u models.Worker) string { return u.FirstName },
	Fields: map[string]func(models.Worker) any{
		"id":             func(u models.Worker) any { return u.ID },
		"firstName":      func(u models.Worker) any { return u.FirstName },
		"lastName":       func(u models.Worker) any { return u.LastName },
		"email":          func(u models.Worker) any { return u.Email },
		"specialization": func(u models.Worker) any { return u.Specialization },
		"location":       func(u models.Worker) any { return u.Location },
		"isActive":       func(u models.Worker) any { return u.IsActive },
		"status":         func(u models.Worker) any { return u.Status },
	},
}

var Products = collection.Schema[models.Product]{
	ID:     func(p models.Product) int { return p.ID },
	Search: func(p models.Product) string { return p.Title },
	Fields: map[string]func(models.Product) any{
		"id":        func(p models.Product) any { return p.ID },
		"title":     func(p models.Product) any { return p.Title },
		"price":     func(p models.Product) any { return p.Price },
		"createdAt": func(p models.Product) any { return p.CreatedAt },
	},
}

var Categories = collection.Schema[models.Category]{
	ID:     func(c models.Category) int { return c.ID },
	Search: func(c models.Category) string { return c.Name },
	Fields: map[string]func(models.Category) any{
		"id":   func(c models.Category) any { return c.ID },
		"name": func(c models.Category) any { return c.Name },
	},
}

var Subcategories = collection.Schema[models.Subcategory]{
	ID:     func(s models.Subcategory) int { return s.ID },
	Search: func(s models.Subcategory) string { return s.Name },
	Fields: map[string]func(models.Subcategory) any{
		"id":   func(s models.Subcategory) any { return s.ID },
		"name": func(s models.Subcategory) any { return s.Name },
	},
}

// UserStatus buckets an account for the status distribution.
func UserStatus(u models.User) string {
	if u.Status == "" {
		return "unknown"
	}
	return u.Status
}
