package devbackend

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omerbag-9/CarMate-AdminPanel/internal/api"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/models"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/store"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

const (
	adminEmail    = "admin@carmate.local"
	adminPassword = "Admin@123"
)

type harness struct {
	server *Server
	url    string
	store  *store.Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	st, err := store.NewStore(filepath.Join(dir, "dev.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(store.Migrations, "migrations"))
	_, err = st.EnsureAdmin(context.Background(), adminEmail, adminPassword)
	require.NoError(t, err)

	s := New(st, Options{JWTSecret: []byte("test-secret"), UploadDir: filepath.Join(dir, "uploads")})
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)
	return &harness{server: s, url: srv.URL, store: st}
}

// holder is a token source the test swaps between accounts.
type holder struct {
	mu    sync.Mutex
	token string
}

func (h *holder) Token(context.Context) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.token
}

func (h *harness) client(t *testing.T, email, password string) *api.Client {
	t.Helper()
	tokens := &holder{}
	c := api.NewClient(h.url, tokens, api.WithTimeout(5*time.Second))
	res, err := c.Login(context.Background(), api.Credentials{Email: email, Password: password})
	require.NoError(t, err)
	tokens.token = res.Token
	return c
}

func apiStatus(t *testing.T, err error) (int, string) {
	t.Helper()
	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr), "want *api.Error, got %v", err)
	return apiErr.StatusCode, apiErr.Message
}

func TestLogin(t *testing.T) {
	h := newHarness(t)
	c := api.NewClient(h.url, nil)
	ctx := context.Background()

	res, err := c.Login(ctx, api.Credentials{Email: "ADMIN@carmate.local", Password: adminPassword})
	require.NoError(t, err)
	assert.Equal(t, "admin", res.Role)
	assert.NotEmpty(t, res.Token)

	_, err = c.Login(ctx, api.Credentials{Email: adminEmail, Password: "wrong"})
	code, msg := apiStatus(t, err)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid email or password", msg)

	_, err = c.Login(ctx, api.Credentials{Email: "not-an-email", Password: "x"})
	code, msg = apiStatus(t, err)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "email must be a valid email", msg)
}

func TestAccounts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := h.client(t, adminEmail, adminPassword)

	p, err := admin.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, adminEmail, p.Email)

	err = admin.AddUser(ctx, api.UserInput{FirstName: "Wade", Email: "wade@carmate.test", Password: "Worker@123", Role: "worker", Status: "verified", IsActive: true})
	code, msg := apiStatus(t, err)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "specialization is required", msg)

	require.NoError(t, admin.AddUser(ctx, api.UserInput{FirstName: "Wade", Email: "wade@carmate.test", Password: "Worker@123", Role: "worker", Specialization: "Brakes", Status: "verified", IsActive: true}))
	require.NoError(t, admin.AddUser(ctx, api.UserInput{FirstName: "Cleo", Email: "cleo@carmate.test", Password: "Customer@1", Role: "customer", Status: "pending"}))

	err = admin.AddUser(ctx, api.UserInput{FirstName: "Dup", Email: "WADE@carmate.test", Password: "Worker@123", Role: "user"})
	code, msg = apiStatus(t, err)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "email already exists", msg)

	workers, err := admin.ListWorkers(ctx, map[string]string{"status": "verified", "isActive": "true"})
	require.NoError(t, err)
	require.Len(t, workers, 1)
	assert.Equal(t, "Brakes", workers[0].Specialization)

	customers, err := admin.ListCustomers(ctx, map[string]string{"status": "verified"})
	require.NoError(t, err)
	assert.Empty(t, customers)
	customers, err = admin.ListCustomers(ctx, nil)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	cleo := customers[0]

	detail, err := admin.GetUser(ctx, workers[0].ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Worker)
	assert.Equal(t, "Brakes", detail.Worker.Specialization)

	require.NoError(t, admin.UpdateUser(ctx, cleo.ID, api.UserInput{FirstName: "Cleo", LastName: "Car", Role: "user", Status: "verified", IsActive: true}))
	detail, err = admin.GetUser(ctx, cleo.ID)
	require.NoError(t, err)
	assert.Equal(t, "cleo@carmate.test", detail.User.Email)
	assert.Equal(t, "verified", detail.User.Status)
	assert.Nil(t, detail.Worker)

	require.NoError(t, admin.DeleteUser(ctx, cleo.ID))
	_, err = admin.GetUser(ctx, cleo.ID)
	code, _ = apiStatus(t, err)
	assert.Equal(t, http.StatusNotFound, code)

	err = admin.DeleteUser(ctx, p.ID)
	code, _ = apiStatus(t, err)
	assert.Equal(t, http.StatusBadRequest, code, "admins cannot delete themselves")

	worker := h.client(t, "wade@carmate.test", "Worker@123")
	_, err = worker.ListCustomers(ctx, nil)
	code, _ = apiStatus(t, err)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestCategories(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := h.client(t, adminEmail, adminPassword)

	require.NoError(t, admin.AddCategory(ctx, "Tyres"))
	err := admin.AddCategory(ctx, "Tyres")
	code, msg := apiStatus(t, err)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "category already exists", msg)

	cats, err := admin.ListCategories(ctx)
	require.NoError(t, err)
	var engine, tyres models.Category
	for _, c := range cats {
		switch c.Name {
		case "Engine":
			engine = c
		case "Tyres":
			tyres = c
		}
	}
	require.NotZero(t, engine.ID)
	require.NotZero(t, tyres.ID)

	subs, err := admin.ListSubcategories(ctx, engine.ID)
	require.NoError(t, err)
	assert.Len(t, subs, 2)
	subs, err = admin.ListSubcategories(ctx, tyres.ID)
	require.NoError(t, err)
	assert.Empty(t, subs)

	_, err = admin.ListSubcategories(ctx, 9999)
	code, _ = apiStatus(t, err)
	assert.Equal(t, http.StatusNotFound, code)
}

func pngFile(t *testing.T, name string) api.File {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return api.File{Name: name, ContentType: "image/png", Data: buf.Bytes()}
}

func TestProducts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := h.client(t, adminEmail, adminPassword)
	for _, email := range []string{"sam@carmate.test", "sara@carmate.test"} {
		require.NoError(t, admin.AddUser(ctx, api.UserInput{FirstName: "S", Email: email, Password: "Seller@123", Role: "seller", Status: "verified", IsActive: true}))
	}
	require.NoError(t, admin.AddUser(ctx, api.UserInput{FirstName: "W", Email: "w@carmate.test", Password: "Worker@123", Role: "worker", Specialization: "Engine", IsActive: true}))
	sam := h.client(t, "sam@carmate.test", "Seller@123")
	sara := h.client(t, "sara@carmate.test", "Seller@123")
	worker := h.client(t, "w@carmate.test", "Worker@123")

	cover := pngFile(t, "main.png")
	in := api.ProductInput{Title: "Brake Pads!", Price: "250", Description: "Front pads", ProductLink: "https://carmate.test/p"}
	require.NoError(t, sam.AddProduct(ctx, in.Multipart(&cover, []api.File{pngFile(t, "a.png"), pngFile(t, "b.png")})))

	bad := api.File{Name: "notes.txt", Data: []byte("hi")}
	err := sam.AddProduct(ctx, in.Multipart(&bad, nil))
	code, msg := apiStatus(t, err)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, errImageType.Error(), msg)

	err = sam.AddProduct(ctx, api.ProductInput{Title: "No price", Description: "x"}.Multipart(nil, nil))
	code, msg = apiStatus(t, err)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "price is required", msg)

	mine, err := sam.ListMyProducts(ctx, nil)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	product := mine[0]
	assert.True(t, strings.HasPrefix(product.Slug, "brake-pads-"), product.Slug)
	assert.Equal(t, 250.0, product.Price)
	require.Len(t, product.SubImages, 2)

	res, err := http.Get(h.url + product.MainImage)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	others, err := sara.ListMyProducts(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, others)
	_, err = sara.GetProduct(ctx, product.ID)
	code, _ = apiStatus(t, err)
	assert.Equal(t, http.StatusForbidden, code)

	detail, err := admin.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Seller)
	assert.Equal(t, "sam@carmate.test", detail.Seller.Email)

	in.Title = "Brake Pads Pro"
	require.NoError(t, sam.UpdateProduct(ctx, product.ID, in.Multipart(nil, nil)))
	detail, err = sam.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Brake Pads Pro", detail.Product.Title)
	assert.Equal(t, product.MainImage, detail.Product.MainImage, "no upload keeps the image")

	all, err := worker.ListProducts(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	_, err = sam.ListProducts(ctx, nil)
	code, _ = apiStatus(t, err)
	assert.Equal(t, http.StatusForbidden, code)

	err = worker.DeleteProduct(ctx, product.ID)
	code, _ = apiStatus(t, err)
	assert.Equal(t, http.StatusForbidden, code)
	require.NoError(t, admin.DeleteProduct(ctx, product.ID))
	err = admin.DeleteProduct(ctx, product.ID)
	code, _ = apiStatus(t, err)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestBulkSize(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := h.client(t, adminEmail, adminPassword)
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, admin.AddUser(ctx, api.UserInput{FirstName: name, Email: name + "@carmate.test", Password: "Customer@1", Role: "user"}))
	}

	small := api.NewClient(h.url, api.TokenFunc(func(context.Context) string {
		tok, err := h.server.issueToken(&store.Account{User: models.User{ID: 1, Role: store.RoleAdmin}})
		require.NoError(t, err)
		return tok
	}), api.WithBulkSize(2))
	users, err := small.ListCustomers(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	res, err := small.Do(ctx, api.Request{Method: http.MethodGet, Path: api.PathCustomers})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Count, "count reports every match")
}

func TestRequireToken(t *testing.T) {
	h := newHarness(t)
	router := h.server.Router()
	admin, err := h.store.GetAccountByEmail(context.Background(), adminEmail)
	require.NoError(t, err)

	send := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, api.PathProfile, nil)
		if token != "" {
			req.Header.Set(api.TokenHeader, token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := send("")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"please login first"}`, rec.Body.String())

	rec = send("garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := h.server.issueToken(admin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, send(token).Code)

	h.server.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	rec = send(token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"jwt expired"}`, rec.Body.String())
	h.server.now = time.Now

	ghost, err := h.server.issueToken(&store.Account{User: models.User{ID: 4242, Role: store.RoleAdmin}})
	require.NoError(t, err)
	rec = send(ghost)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"account no longer exists"}`, rec.Body.String())

	other := New(h.store, Options{JWTSecret: []byte("another-secret")})
	forged, err := other.issueToken(admin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, send(forged).Code)
}

func TestRequireRoles(t *testing.T) {
	r := gin.New()
	r.GET("/x", func(c *gin.Context) { c.Set(ctxRole, "Worker") }, RequireRoles("admin", "worker"), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/y", func(c *gin.Context) { c.Set(ctxRole, "seller") }, RequireRoles("admin"), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/z", RequireRoles("admin"), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for path, want := range map[string]int{"/x": http.StatusNoContent, "/y": http.StatusForbidden, "/z": http.StatusUnauthorized} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, rec.Code, path)
	}
}

func TestStoreFailureIsHidden(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := New(&store.Store{DB: db}, Options{JWTSecret: []byte("k")})
	token, err := s.issueToken(&store.Account{User: models.User{ID: 1, Role: store.RoleAdmin}})
	require.NoError(t, err)

	mock.ExpectQuery(`WHERE u.id = \?`).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "email", "password", "phone", "role", "is_active", "status", "specialization", "location"}).
			AddRow(1, "Ada", "Admin", adminEmail, "hash", "", "admin", true, "verified", "", ""))
	mock.ExpectQuery(`FROM users u LEFT JOIN workers w`).WillReturnError(errors.New("disk I/O error"))

	req := httptest.NewRequest(http.MethodGet, api.PathCustomers+"?size=10", nil)
	req.Header.Set(api.TokenHeader, token)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"something went wrong"}`, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAccounts_BadFilter(t *testing.T) {
	h := newHarness(t)
	admin := h.client(t, adminEmail, adminPassword)

	_, err := admin.ListCustomers(context.Background(), map[string]string{"isActive": "maybe"})
	code, msg := apiStatus(t, err)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "isActive must be true or false", msg)
}

func TestSlugify(t *testing.T) {
	t.Parallel()
	assert.True(t, strings.HasPrefix(slugify("  Oil Filter (5W-30) "), "oil-filter-5w-30-"))
	assert.True(t, strings.HasPrefix(slugify("!!!"), "product-"))
	assert.NotEqual(t, slugify("same"), slugify("same"))
}
