package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/omerbag-9/CarMate-AdminPanel/internal/api"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/collection"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/gate"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/models"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/views"
)

// listView describes one collection page. Every list in the dashboard is
// served by the same pipeline; only the view differs.
type listView[T any] struct {
	Title    string
	Template string
	Path     string
	Noun     string
	Schema   collection.Schema[T]
	Fetch    collection.FetchFunc[T]
	Delete   collection.DeleteFunc
	Guard    *collection.Guard
	// Filters are the query keys forwarded to the backend.
	Filters []string
	// DeleteCap gates the delete action of the view. Empty means the
	// view offers no delete.
	DeleteCap gate.Capability
	// Detail is the row link prefix, shown when DetailCap is allowed.
	Detail    string
	DetailCap gate.Capability
}

func (v listView[T]) pipeline(pageSize int) *collection.Pipeline[T] {
	return collection.New(collection.Config[T]{
		Schema:   v.Schema,
		PageSize: pageSize,
		Fetch:    v.Fetch,
		Delete:   v.Delete,
		Guard:    v.Guard,
	})
}

// ListPage is what a list template renders.
type ListPage[T any] struct {
	Path      string
	State     collection.State
	Filters   collection.Filters
	Page      collection.Page[T]
	Error     string
	CanDelete bool
	Detail    string
	guard     *collection.Guard
}

// query is the URL query reproducing the page with st.
func (l ListPage[T]) query(st collection.State) url.Values {
	q := url.Values{}
	if st.Search != "" {
		q.Set("q", st.Search)
	}
	if st.SortField != "" {
		q.Set("sort", st.SortField)
		q.Set("order", string(st.SortOrder))
	}
	if st.Page > 1 {
		q.Set("page", strconv.Itoa(st.Page))
	}
	for k, v := range l.Filters {
		if v != "" {
			q.Set(k, v)
		}
	}
	return q
}

func (l ListPage[T]) link(st collection.State) string {
	if q := l.query(st).Encode(); q != "" {
		return l.Path + "?" + q
	}
	return l.Path
}

// PageLink links to page n with everything else unchanged.
func (l ListPage[T]) PageLink(n int) string {
	st := l.State
	st.Page = n
	return l.link(st)
}

// SortLink toggles the sort on field and keeps the current page.
func (l ListPage[T]) SortLink(field string) string {
	st := l.State.ToggleSort(field)
	st.Page = l.Page.Current
	return l.link(st)
}

// SortMark is the arrow shown next to the active sort column.
func (l ListPage[T]) SortMark(field string) string {
	if l.State.SortField != field {
		return ""
	}
	if l.State.SortOrder == collection.Desc {
		return "▼"
	}
	return "▲"
}

// Back is the encoded query a delete form posts so the redirect returns here.
func (l ListPage[T]) Back() string {
	st := l.State
	st.Page = l.Page.Current
	return l.query(st).Encode()
}

// Busy reports whether a delete of id is still running.
func (l ListPage[T]) Busy(id int) bool {
	return l.guard != nil && l.guard.Busy(id)
}

// Selected reports whether filter key currently has value.
func (l ListPage[T]) Selected(key, value string) bool {
	return l.Filters[key] == value
}

func parseState(q url.Values) collection.State {
	st := collection.State{
		Search:    q.Get("q"),
		SortField: q.Get("sort"),
		SortOrder: collection.ParseOrder(q.Get("order")),
	}
	st.Page, _ = strconv.Atoi(q.Get("page"))
	if toggle := q.Get("toggle"); toggle != "" {
		st = st.ToggleSort(toggle)
	}
	return st
}

// serveList mounts the view for this request: it refreshes the pipeline
// with the request's filters and renders the requested page. extra may add
// view-specific data computed from the whole snapshot.
func serveList[T any](h *AdminHandler, w http.ResponseWriter, r *http.Request, v listView[T], extra func(data map[string]any, items []T)) {
	q := r.URL.Query()
	st := parseState(q)
	if st.SortField != "" && !v.Schema.Sortable(st.SortField) {
		st.SortField, st.SortOrder = "", collection.Asc
	}
	filters := collection.Filters{}
	for _, key := range v.Filters {
		if val := q.Get(key); val != "" {
			filters[key] = val
		}
	}

	p := v.pipeline(h.PageSize)
	list := ListPage[T]{
		Path:      v.Path,
		State:     st,
		Filters:   filters,
		CanDelete: v.DeleteCap != "" && h.allows(r, v.DeleteCap),
		guard:     v.Guard,
	}
	if v.DetailCap != "" && h.allows(r, v.DetailCap) {
		list.Detail = v.Detail
	}
	if err := p.Refresh(r.Context(), filters); err != nil {
		slog.Warn("Failed to load collection", "view", v.Path, "error", err)
		list.Error = api.Message(err)
	}
	list.Page = p.View(st)

	data := h.pageData(w, r, v.Title)
	data["List"] = list
	data["Noun"] = v.Noun
	if extra != nil {
		extra(data, p.Items())
	}
	h.Templates.Render(w, http.StatusOK, v.Template, data)
}

// deleteFrom handles the delete form of a list view and redirects back to
// the same list, which refetches and clamps the page.
func deleteFrom[T any](h *AdminHandler, w http.ResponseWriter, r *http.Request, v listView[T]) {
	id, err := strconv.Atoi(r.FormValue("id"))
	if err != nil || id < 1 {
		h.flash(w, r, "error", "Invalid ID.")
		redirectBack(w, r, v.Path)
		return
	}

	err = v.pipeline(h.PageSize).Delete(r.Context(), id)
	switch {
	case err == nil:
		slog.Info("Deleted record", "view", v.Path, "id", id)
		h.flash(w, r, "success", v.Noun+" deleted successfully!")
	case errors.Is(err, collection.ErrDeleteInFlight):
		h.flash(w, r, "error", errorMessage(err))
	default:
		slog.Warn("Delete failed", "view", v.Path, "id", id, "error", err)
		h.flash(w, r, "error", errorMessage(err))
	}
	redirectBack(w, r, v.Path)
}

func (h *AdminHandler) usersView() listView[models.User] {
	return listView[models.User]{
		Title: "Users", Template: "users.html", Path: "/users", Noun: "User",
		Schema:    views.Users,
		Fetch:     fetchWith(h.API.ListCustomers),
		Delete:    h.API.DeleteUser,
		Guard:     h.userDeletes,
		Filters:   views.AccountFilters,
		DeleteCap: gate.DeleteUser,
		Detail:    "/specific-user/", DetailCap: gate.UserDetail,
	}
}

func (h *AdminHandler) workersView() listView[models.Worker] {
	return listView[models.Worker]{
		Title: "Workers", Template: "workers.html", Path: "/workers", Noun: "Worker",
		Schema:    views.Workers,
		Fetch:     fetchWith(h.API.ListWorkers),
		Delete:    h.API.DeleteUser,
		Guard:     h.userDeletes,
		Filters:   views.AccountFilters,
		DeleteCap: gate.DeleteUser,
		Detail:    "/specific-worker/", DetailCap: gate.WorkerDetail,
	}
}

func (h *AdminHandler) sellersView() listView[models.User] {
	return listView[models.User]{
		Title: "Sellers", Template: "sellers.html", Path: "/sellers", Noun: "Seller",
		Schema:    views.Users,
		Fetch:     fetchWith(h.API.ListSellers),
		Delete:    h.API.DeleteUser,
		Guard:     h.userDeletes,
		Filters:   views.AccountFilters,
		DeleteCap: gate.DeleteUser,
		Detail:    "/specific-user/", DetailCap: gate.UserDetail,
	}
}

// productsView is the catalogue page. Workers see it read-only.
func (h *AdminHandler) productsView() listView[models.Product] {
	return listView[models.Product]{
		Title: "Products", Template: "products.html", Path: "/products", Noun: "Product",
		Schema:    views.Products,
		Fetch:     fetchWith(h.API.ListProducts),
		Delete:    h.API.DeleteProduct,
		Guard:     h.productDeletes,
		DeleteCap: gate.DeleteProduct,
		Detail:    "/specific-product/", DetailCap: gate.ProductDetail,
	}
}

func (h *AdminHandler) myProductsView() listView[models.Product] {
	return listView[models.Product]{
		Title: "My Products", Template: "products.html", Path: "/my-products", Noun: "Product",
		Schema:    views.Products,
		Fetch:     fetchWith(h.API.ListMyProducts),
		Guard:     h.productDeletes,
		Detail:    "/specific-product/", DetailCap: gate.ProductDetail,
	}
}

func (h *AdminHandler) categoriesView() listView[models.Category] {
	return listView[models.Category]{
		Title: "Categories", Template: "categories.html", Path: "/categories", Noun: "Category",
		Schema: views.Categories,
		Fetch: func(ctx context.Context, _ collection.Filters) ([]models.Category, error) {
			return h.API.ListCategories(ctx)
		},
	}
}

// fetchWith adapts a filtered api list call to a pipeline fetch.
func fetchWith[T any](list func(context.Context, map[string]string) ([]T, error)) collection.FetchFunc[T] {
	return func(ctx context.Context, f collection.Filters) ([]T, error) {
		return list(ctx, f)
	}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	serveList(h, w, r, h.usersView(), func(data map[string]any, items []models.User) {
		data["StatusCounts"] = h.statusCounts(r.Context(), r.URL.Query(), items)
	})
}

// statusCounts is the status distribution over every customer. A filtered
// list is not the whole population, so it is counted from an unfiltered
// fetch instead.
func (h *AdminHandler) statusCounts(ctx context.Context, q url.Values, items []models.User) []collection.Count {
	filtered := false
	for _, key := range views.AccountFilters {
		if q.Get(key) != "" {
			filtered = true
		}
	}
	if !filtered {
		return collection.CountBy(items, views.UserStatus)
	}
	all, err := h.API.ListCustomers(ctx, nil)
	if err != nil {
		slog.Warn("Failed to load status distribution", "error", err)
		return nil
	}
	return collection.CountBy(all, views.UserStatus)
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	deleteFrom(h, w, r, h.usersView())
}

func (h *AdminHandler) ListWorkers(w http.ResponseWriter, r *http.Request) {
	serveList(h, w, r, h.workersView(), nil)
}

func (h *AdminHandler) DeleteWorker(w http.ResponseWriter, r *http.Request) {
	deleteFrom(h, w, r, h.workersView())
}

func (h *AdminHandler) ListSellers(w http.ResponseWriter, r *http.Request) {
	serveList(h, w, r, h.sellersView(), nil)
}

func (h *AdminHandler) DeleteSeller(w http.ResponseWriter, r *http.Request) {
	deleteFrom(h, w, r, h.sellersView())
}

func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	serveList(h, w, r, h.productsView(), nil)
}

func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	deleteFrom(h, w, r, h.productsView())
}

func (h *AdminHandler) ListMyProducts(w http.ResponseWriter, r *http.Request) {
	serveList(h, w, r, h.myProductsView(), nil)
}

func (h *AdminHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	serveList(h, w, r, h.categoriesView(), func(data map[string]any, _ []models.Category) {
		data["CanAddCategory"] = h.allows(r, gate.AddCategory)
	})
}
