package store

import (
	"context"
	"strings"

	"github.com/omerbag-9/CarMate-AdminPanel/internal/models"
)

func (s *Store) ListCategories(ctx context.Context, limit int) ([]models.Category, error) {
	query := `SELECT id, name FROM categories ORDER BY name`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CreateCategory inserts a category; a name already taken returns ErrDuplicate.
func (s *Store) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	res, err := s.DB.ExecContext(ctx, `INSERT INTO categories (name) VALUES (?)`, name)
	if err != nil {
		return nil, translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.Category{ID: int(id), Name: name}, nil
}

// ListSubcategories returns the subcategories of one category. An unknown
// category returns ErrNotFound.
func (s *Store) ListSubcategories(ctx context.Context, categoryID int) ([]models.Subcategory, error) {
	var exists int
	if err := s.DB.QueryRowContext(ctx, `SELECT 1 FROM categories WHERE id = ?`, categoryID).Scan(&exists); err != nil {
		return nil, translate(err)
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT id, name, category_id FROM subcategories WHERE category_id = ? ORDER BY name`, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := []models.Subcategory{}
	for rows.Next() {
		var sc models.Subcategory
		if err := rows.Scan(&sc.ID, &sc.Name, &sc.CategoryID); err != nil {
			return nil, err
		}
		subs = append(subs, sc)
	}
	return subs, rows.Err()
}
