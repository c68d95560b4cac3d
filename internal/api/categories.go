package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/omerbag-9/CarMate-AdminPanel/internal/models"
)

const (
	PathCategories    = "/admin/getAllcategories"
	PathAddCategory   = "/admin/addcategory"
	PathSubcategories = "/seller/getSubCategories/"

	StatusCategoryCreated = "category created successfully"
	StatusSuccess         = "success"
)

func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	return listAll[models.Category](ctx, c, PathCategories, nil)
}

func (c *Client) AddCategory(ctx context.Context, name string) error {
	res, err := c.Do(ctx, Request{Method: http.MethodPost, Path: PathAddCategory, Body: map[string]string{"name": name}})
	if err != nil {
		return err
	}
	return expectStatus(res, StatusCategoryCreated)
}

// ListSubcategories fetches the subcategories of one category.
func (c *Client) ListSubcategories(ctx context.Context, categoryID int) ([]models.Subcategory, error) {
	res, err := c.Do(ctx, Request{Method: http.MethodGet, Path: PathSubcategories + strconv.Itoa(categoryID)})
	if err != nil {
		return nil, err
	}
	if err := expectStatus(res, StatusSuccess); err != nil {
		return nil, err
	}
	var data struct {
		SubCategories []models.Subcategory `json:"subCategories"`
	}
	if err := decode(res, &data); err != nil {
		return nil, err
	}
	return data.SubCategories, nil
}
