package devbackend

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/omerbag-9/CarMate-AdminPanel/internal/api"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/models"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/store"
)

var errImageType = errors.New("only PNG, JPG and JPEG images are allowed")

func (s *Server) listProducts(c *gin.Context) {
	s.writeProducts(c, store.ProductFilter{Limit: s.bulkSize(c)})
}

func (s *Server) listMyProducts(c *gin.Context) {
	s.writeProducts(c, store.ProductFilter{SellerID: currentAccount(c).ID, Limit: s.bulkSize(c)})
}

func (s *Server) writeProducts(c *gin.Context, f store.ProductFilter) {
	ctx := c.Request.Context()
	products, err := s.store.ListProducts(ctx, f)
	if err != nil {
		s.serverError(c, err)
		return
	}
	count, err := s.store.CountProducts(ctx, f)
	if err != nil {
		s.serverError(c, err)
		return
	}
	okList(c, products, count)
}

// ownedProduct loads the product in the path. Sellers may only reach
// their own products.
func (s *Server) ownedProduct(c *gin.Context) (*models.Product, bool) {
	id, valid := pathID(c)
	if !valid {
		return nil, false
	}
	p, err := s.store.GetProduct(c.Request.Context(), id)
	if err != nil {
		s.storeError(c, err, "product")
		return nil, false
	}
	if me := currentAccount(c); me.Role == store.RoleSeller && p.SellerID != me.ID {
		fail(c, http.StatusForbidden, "this product belongs to another seller")
		return nil, false
	}
	return p, true
}

func (s *Server) getProduct(c *gin.Context) {
	p, found := s.ownedProduct(c)
	if !found {
		return
	}
	detail := models.ProductDetail{Product: *p}
	seller, err := s.store.GetAccount(c.Request.Context(), p.SellerID)
	switch {
	case err == nil:
		detail.Seller = &seller.User
	case !errors.Is(err, store.ErrNotFound):
		s.serverError(c, err)
		return
	}
	ok(c, http.StatusOK, api.StatusSuccess, detail)
}

type productRequest struct {
	Title             string  `form:"title" binding:"required,max=120"`
	ArabicTitle       string  `form:"arabicTitle" binding:"max=120"`
	ProductLink       string  `form:"productLink" binding:"omitempty,url"`
	Price             float64 `form:"price" binding:"required,gt=0"`
	Description       string  `form:"description" binding:"required"`
	ArabicDescription string  `form:"arabicDescription"`
	SubCategoryID     int     `form:"subCategoryId" binding:"gte=0"`
}

func (r productRequest) apply(p *models.Product) {
	p.Title = strings.TrimSpace(r.Title)
	p.ArabicTitle = r.ArabicTitle
	p.ProductLink = r.ProductLink
	p.Price = r.Price
	p.Description = r.Description
	p.ArabicDescription = r.ArabicDescription
	p.SubCategoryID = r.SubCategoryID
}

func (s *Server) addProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBind(&req); err != nil {
		fail(c, http.StatusBadRequest, bindMessage(err))
		return
	}
	p := &models.Product{SellerID: currentAccount(c).ID, Slug: slugify(req.Title)}
	req.apply(p)
	if !s.saveImages(c, p) {
		return
	}
	if err := s.store.CreateProduct(c.Request.Context(), p); err != nil {
		s.storeError(c, err, "product")
		return
	}
	ok(c, http.StatusCreated, api.StatusSuccess, p)
}

func (s *Server) updateProduct(c *gin.Context) {
	p, found := s.ownedProduct(c)
	if !found {
		return
	}
	var req productRequest
	if err := c.ShouldBind(&req); err != nil {
		fail(c, http.StatusBadRequest, bindMessage(err))
		return
	}
	req.apply(p)
	// Images are replaced only by new uploads.
	p.MainImage, p.SubImages = "", nil
	if !s.saveImages(c, p) {
		return
	}
	if err := s.store.UpdateProduct(c.Request.Context(), p); err != nil {
		s.storeError(c, err, "product")
		return
	}
	ok(c, http.StatusOK, api.StatusSuccess, nil)
}

func (s *Server) deleteProduct(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	if err := s.store.DeleteProduct(c.Request.Context(), id); err != nil {
		s.storeError(c, err, "product")
		return
	}
	ok(c, http.StatusOK, api.StatusSuccess, nil)
}

// saveImages stores the uploaded main and sub images and records their
// public paths on p. It answers the request itself on failure.
func (s *Server) saveImages(c *gin.Context, p *models.Product) bool {
	form, err := c.MultipartForm()
	if err != nil {
		// A urlencoded body carries no files.
		if errors.Is(err, http.ErrNotMultipart) {
			return true
		}
		fail(c, http.StatusBadRequest, "invalid multipart body")
		return false
	}
	if files := form.File[api.FieldMainImage]; len(files) > 0 {
		url, err := s.saveImage(c, files[0])
		if err != nil {
			s.imageError(c, err)
			return false
		}
		p.MainImage = url
	}
	for _, fh := range form.File[api.FieldSubImages] {
		url, err := s.saveImage(c, fh)
		if err != nil {
			s.imageError(c, err)
			return false
		}
		p.SubImages = append(p.SubImages, url)
	}
	return true
}

func (s *Server) saveImage(c *gin.Context, fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg":
	default:
		return "", errImageType
	}
	if s.uploadDir == "" {
		return "", errors.New("uploads are disabled")
	}
	name := uuid.NewString() + ext
	if err := c.SaveUploadedFile(fh, filepath.Join(s.uploadDir, name)); err != nil {
		return "", fmt.Errorf("save %s: %w", fh.Filename, err)
	}
	return path.Join("/uploads", name), nil
}

func (s *Server) imageError(c *gin.Context, err error) {
	if errors.Is(err, errImageType) {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	s.serverError(c, err)
}

// slugify lowercases title, joins its words with dashes and appends a
// short random suffix so equal titles stay unique.
func slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		slug = "product"
	}
	return slug + "-" + uuid.NewString()[:8]
}
