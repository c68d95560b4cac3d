package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/omerbag-9/CarMate-AdminPanel/internal/models"
)

const (
	PathProducts      = "/admin/getAllproducts"
	PathMyProducts    = "/seller/getMyProducts"
	PathProduct       = "/seller/getSpecificProduct/"
	PathAddProduct    = "/seller/addProduct"
	PathUpdateProduct = "/seller/updateProduct/"
	PathDeleteProduct = "/admin/deleteproduct/"

	FieldMainImage = "mainImage"
	FieldSubImages = "subImages"
)

// ProductInput carries the text fields of an add/update product form.
// Empty optional fields are not sent.
type ProductInput struct {
	Title             string
	ArabicTitle       string
	ProductLink       string
	Price             string
	Description       string
	ArabicDescription string
	SubCategoryID     string
}

// Multipart builds the form-data payload with the optional image parts.
func (p ProductInput) Multipart(mainImage *File, subImages []File) *Multipart {
	mp := &Multipart{}
	mp.SetField("title", p.Title)
	mp.SetField("productLink", p.ProductLink)
	mp.SetField("price", p.Price)
	mp.SetField("description", p.Description)
	if p.ArabicTitle != "" {
		mp.SetField("arabicTitle", p.ArabicTitle)
	}
	if p.ArabicDescription != "" {
		mp.SetField("arabicDescription", p.ArabicDescription)
	}
	if p.SubCategoryID != "" {
		mp.SetField("subCategoryId", p.SubCategoryID)
	}
	if mainImage != nil {
		mp.AddFile(FieldMainImage, *mainImage)
	}
	for _, f := range subImages {
		mp.AddFile(FieldSubImages, f)
	}
	return mp
}

func (c *Client) ListProducts(ctx context.Context, filters map[string]string) ([]models.Product, error) {
	return listAll[models.Product](ctx, c, PathProducts, filters)
}

// ListMyProducts fetches the products owned by the signed-in seller.
func (c *Client) ListMyProducts(ctx context.Context, filters map[string]string) ([]models.Product, error) {
	return listAll[models.Product](ctx, c, PathMyProducts, filters)
}

func (c *Client) GetProduct(ctx context.Context, id int) (*models.ProductDetail, error) {
	res, err := c.Do(ctx, Request{Method: http.MethodGet, Path: PathProduct + strconv.Itoa(id)})
	if err != nil {
		return nil, err
	}
	var d models.ProductDetail
	if err := decode(res, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *Client) AddProduct(ctx context.Context, mp *Multipart) error {
	_, err := c.Do(ctx, Request{Method: http.MethodPost, Path: PathAddProduct, Multipart: mp})
	return err
}

func (c *Client) UpdateProduct(ctx context.Context, id int, mp *Multipart) error {
	_, err := c.Do(ctx, Request{Method: http.MethodPut, Path: PathUpdateProduct + strconv.Itoa(id), Multipart: mp})
	return err
}

func (c *Client) DeleteProduct(ctx context.Context, id int) error {
	if _, err := c.Do(ctx, Request{Method: http.MethodDelete, Path: PathDeleteProduct + strconv.Itoa(id)}); err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	return nil
}
