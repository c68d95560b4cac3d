package store

import (
	"context"
	"encoding/json"

	"github.com/omerbag-9/CarMate-AdminPanel/internal/models"
)

// ProductFilter narrows ListProducts. SellerID zero means every seller.
type ProductFilter struct {
	SellerID int
	Limit    int
}

const productColumns = `p.id, p.title, p.arabic_title, p.slug, p.product_link, p.price, p.description,
	p.arabic_description, p.main_image, p.sub_images, COALESCE(p.sub_category_id, 0), COALESCE(s.category_id, 0),
	p.seller_id, p.created_at
	FROM products p LEFT JOIN subcategories s ON s.id = p.sub_category_id`

func scanProduct(row scanner) (*models.Product, error) {
	var (
		p         models.Product
		subImages string
	)
	err := row.Scan(&p.ID, &p.Title, &p.ArabicTitle, &p.Slug, &p.ProductLink, &p.Price, &p.Description,
		&p.ArabicDescription, &p.MainImage, &subImages, &p.SubCategoryID, &p.CategoryID, &p.SellerID, &p.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	if err := json.Unmarshal([]byte(subImages), &p.SubImages); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) GetProduct(ctx context.Context, id int) (*models.Product, error) {
	return scanProduct(s.DB.QueryRowContext(ctx, `SELECT `+productColumns+` WHERE p.id = ?`, id))
}

// ListProducts returns up to f.Limit products, newest first.
func (s *Store) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	query := `SELECT ` + productColumns
	var args []any
	if f.SellerID != 0 {
		query += ` WHERE p.seller_id = ?`
		args = append(args, f.SellerID)
	}
	query += ` ORDER BY p.id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (s *Store) CountProducts(ctx context.Context, f ProductFilter) (int, error) {
	query := `SELECT COUNT(*) FROM products`
	var args []any
	if f.SellerID != 0 {
		query += ` WHERE seller_id = ?`
		args = append(args, f.SellerID)
	}
	var count int
	if err := s.DB.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// CreateProduct inserts p and sets p.ID.
func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	subImages, err := encodeImages(p.SubImages)
	if err != nil {
		return err
	}
	res, err := s.DB.ExecContext(ctx, `
		INSERT INTO products (title, arabic_title, slug, product_link, price, description, arabic_description,
			main_image, sub_images, sub_category_id, seller_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULLIF(?, 0), ?)`,
		p.Title, p.ArabicTitle, p.Slug, p.ProductLink, p.Price, p.Description, p.ArabicDescription,
		p.MainImage, subImages, p.SubCategoryID, p.SellerID)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = int(id)
	return nil
}

// UpdateProduct overwrites the editable fields of p.ID. Images are
// replaced only when p carries new ones.
func (s *Store) UpdateProduct(ctx context.Context, p *models.Product) error {
	var subImages string
	if len(p.SubImages) > 0 {
		encoded, err := encodeImages(p.SubImages)
		if err != nil {
			return err
		}
		subImages = encoded
	}
	return affected(s.DB.ExecContext(ctx, `
		UPDATE products
		SET title = ?, arabic_title = ?, product_link = ?, price = ?, description = ?, arabic_description = ?,
			sub_category_id = COALESCE(NULLIF(?, 0), sub_category_id),
			main_image = COALESCE(NULLIF(?, ''), main_image),
			sub_images = COALESCE(NULLIF(?, ''), sub_images)
		WHERE id = ?`,
		p.Title, p.ArabicTitle, p.ProductLink, p.Price, p.Description, p.ArabicDescription,
		p.SubCategoryID, p.MainImage, subImages, p.ID))
}

func (s *Store) DeleteProduct(ctx context.Context, id int) error {
	return affected(s.DB.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id))
}

func encodeImages(images []string) (string, error) {
	if images == nil {
		images = []string{}
	}
	b, err := json.Marshal(images)
	return string(b), err
}
