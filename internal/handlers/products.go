package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/omerbag-9/CarMate-AdminPanel/internal/api"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/collection"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/forms"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/models"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/upload"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/views"
)

// maxUploadSize bounds the multipart body of the product forms.
const maxUploadSize = 10 << 20

// productForm is the template data of the add and edit product pages.
type productForm struct {
	Action        string
	Edit          bool
	Values        forms.Product
	Product       *models.Product
	Seller        *models.User
	Categories    []models.Category
	Subcategories []models.Subcategory
	CategoryID    int
	OptionsError  string
	Errors        forms.Errors
}

// loadOptions fills the category and subcategory choices. categoryID zero
// selects the first category. Failures only disable the selects.
func (h *AdminHandler) loadOptions(ctx context.Context, f *productForm, categoryID int, cats []models.Category) {
	if cats == nil {
		var err error
		if cats, err = h.API.ListCategories(ctx); err != nil {
			slog.Warn("Failed to load categories", "error", err)
			f.OptionsError = api.Message(err)
			return
		}
	}
	f.Categories = cats
	if categoryID == 0 && len(cats) > 0 {
		categoryID = cats[0].ID
	}
	f.CategoryID = categoryID
	if categoryID == 0 {
		return
	}
	subs, err := h.API.ListSubcategories(ctx, categoryID)
	if err != nil {
		slog.Warn("Failed to load subcategories", "category", categoryID, "error", err)
		f.OptionsError = api.Message(err)
		return
	}
	f.Subcategories = subs
}

func (h *AdminHandler) renderProductForm(w http.ResponseWriter, r *http.Request, status int, title string, f productForm, errMsg string) {
	data := h.pageData(w, r, title)
	data["Form"] = f
	if errMsg != "" {
		data["Error"] = errMsg
	}
	h.Templates.Render(w, status, "product_form.html", data)
}

func (h *AdminHandler) AddProductForm(w http.ResponseWriter, r *http.Request) {
	f := productForm{Action: "/add-product"}
	catID, _ := strconv.Atoi(r.URL.Query().Get("category"))
	h.loadOptions(r.Context(), &f, catID, nil)
	h.renderProductForm(w, r, http.StatusOK, "Add Product", f, "")
}

func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.flash(w, r, "error", "File too large. Max 10MB.")
		http.Redirect(w, r, "/add-product", http.StatusSeeOther)
		return
	}
	form := forms.ParseProduct(r)
	f := productForm{Action: "/add-product", Values: form}

	mp, err := productPayload(r, form, true)
	if err != nil {
		f.Errors, _ = asFormErrors(err)
		catID, _ := strconv.Atoi(form.CategoryID)
		h.loadOptions(r.Context(), &f, catID, nil)
		h.renderProductForm(w, r, http.StatusUnprocessableEntity, "Add Product", f, errorMessage(err))
		return
	}
	if err := h.API.AddProduct(r.Context(), mp); err != nil {
		slog.Warn("Add product failed", "title", form.Title, "error", err)
		catID, _ := strconv.Atoi(form.CategoryID)
		h.loadOptions(r.Context(), &f, catID, nil)
		h.renderProductForm(w, r, statusFor(err), "Add Product", f, errorMessage(err))
		return
	}
	slog.Info("Product created", "title", form.Title)
	h.flash(w, r, "success", "Product added successfully!")
	http.Redirect(w, r, "/my-products", http.StatusSeeOther)
}

// productPayload validates the form and prepares its images. Validation
// problems, upload problems included, come back as forms.Errors.
func productPayload(r *http.Request, form forms.Product, requireMain bool) (*api.Multipart, error) {
	errs := forms.Errors{}
	if err := forms.Validate(form); err != nil {
		ferrs, ok := asFormErrors(err)
		if !ok {
			return nil, err
		}
		errs = ferrs
	}

	main, err := upload.FromForm(r, api.FieldMainImage)
	switch {
	case err != nil:
		errs[api.FieldMainImage] = uploadMessage(err)
	case main == nil && requireMain:
		errs[api.FieldMainImage] = "Main image is required"
	}
	subs, err := upload.AllFromForm(r, api.FieldSubImages)
	if err != nil {
		errs[api.FieldSubImages] = uploadMessage(err)
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return form.Input().Multipart(main, subs), nil
}

func uploadMessage(err error) string {
	if errors.Is(err, upload.ErrUnsupportedFormat) {
		return "Unsupported image format. Only PNG, JPG, JPEG are allowed."
	}
	return "Failed to decode image."
}

// ProductDetail shows the edit form of one product. The product and the
// category list are fetched concurrently.
func (h *AdminHandler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	var (
		detail *models.ProductDetail
		cats   []models.Category
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		d, err := h.API.GetProduct(ctx, id)
		detail = d
		return err
	})
	g.Go(func() error {
		c, err := h.API.ListCategories(ctx)
		if err != nil {
			slog.Warn("Failed to load categories", "error", err)
			return nil
		}
		cats = c
		return nil
	})
	if err := g.Wait(); err != nil {
		slog.Warn("Failed to load product", "id", id, "error", err)
		data := h.pageData(w, r, "Product")
		data["Error"] = api.Message(err)
		h.Templates.Render(w, statusFor(err), "product_form.html", data)
		return
	}

	p := detail.Product
	f := productForm{
		Action:  "/specific-product/" + strconv.Itoa(id),
		Edit:    true,
		Product: &p,
		Seller:  detail.Seller,
		Values: forms.Product{
			Title:             p.Title,
			ArabicTitle:       p.ArabicTitle,
			ProductLink:       p.ProductLink,
			Price:             strconv.FormatFloat(p.Price, 'f', -1, 64),
			Description:       p.Description,
			ArabicDescription: p.ArabicDescription,
			CategoryID:        strconv.Itoa(p.CategoryID),
			SubCategoryID:     strconv.Itoa(p.SubCategoryID),
		},
	}
	catID := p.CategoryID
	if q, err := strconv.Atoi(r.URL.Query().Get("category")); err == nil {
		catID = q
	}
	if cats == nil {
		cats = []models.Category{}
	}
	h.loadOptions(r.Context(), &f, catID, cats)
	h.renderProductForm(w, r, http.StatusOK, p.Title, f, "")
}

func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	self := "/specific-product/" + strconv.Itoa(id)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.flash(w, r, "error", "File too large. Max 10MB.")
		http.Redirect(w, r, self, http.StatusSeeOther)
		return
	}
	form := forms.ParseProduct(r)

	mp, err := productPayload(r, form, false)
	if err == nil {
		err = h.API.UpdateProduct(r.Context(), id, mp)
	}
	if err != nil {
		slog.Warn("Update product failed", "id", id, "error", err)
		status := http.StatusUnprocessableEntity
		if _, isForm := asFormErrors(err); !isForm {
			status = statusFor(err)
		}
		f := productForm{Action: self, Edit: true, Values: form}
		f.Errors, _ = asFormErrors(err)
		catID, _ := strconv.Atoi(form.CategoryID)
		h.loadOptions(r.Context(), &f, catID, nil)
		h.renderProductForm(w, r, status, "Edit Product", f, errorMessage(err))
		return
	}
	slog.Info("Product updated", "id", id)
	h.flash(w, r, "success", "Product updated successfully!")
	http.Redirect(w, r, self, http.StatusSeeOther)
}

// AddCategory creates a category from the form on the categories page.
func (h *AdminHandler) AddCategory(w http.ResponseWriter, r *http.Request) {
	form := forms.ParseCategory(r)
	if err := forms.Validate(form); err != nil {
		ferrs, _ := asFormErrors(err)
		for _, msg := range ferrs {
			h.flash(w, r, "error", msg)
		}
		http.Redirect(w, r, "/categories", http.StatusSeeOther)
		return
	}
	if err := h.API.AddCategory(r.Context(), form.Name); err != nil {
		slog.Warn("Add category failed", "name", form.Name, "error", err)
		h.flash(w, r, "error", errorMessage(err))
		http.Redirect(w, r, "/categories", http.StatusSeeOther)
		return
	}
	slog.Info("Category created", "name", form.Name)
	h.flash(w, r, "success", "Category added successfully!")
	http.Redirect(w, r, "/categories", http.StatusSeeOther)
}

// ListSubcategories lists the subcategories of the category in the path.
func (h *AdminHandler) ListSubcategories(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	path := "/categories/" + strconv.Itoa(id) + "/subcategories"
	serveList(h, w, r, listView[models.Subcategory]{
		Title: "Subcategories", Template: "subcategories.html", Path: path, Noun: "Subcategory",
		Schema: views.Subcategories,
		Fetch: func(ctx context.Context, _ collection.Filters) ([]models.Subcategory, error) {
			return h.API.ListSubcategories(ctx, id)
		},
	}, func(data map[string]any, _ []models.Subcategory) {
		data["CategoryID"] = id
	})
}
