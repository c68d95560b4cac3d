package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omerbag-9/CarMate-AdminPanel/internal/models"
)

func staticToken(tok string) TokenSource {
	return TokenFunc(func(context.Context) string { return tok })
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_AttachesTokenHeader(t *testing.T) {
	t.Parallel()

	var (
		mu  sync.Mutex
		got []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		got = append(got, r.Header.Get(TokenHeader))
		mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"status": "success", "data": []any{}})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, staticToken("abc")).ListCategories(context.Background())
	require.NoError(t, err)
	_, err = NewClient(srv.URL, staticToken("")).ListCategories(context.Background())
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"abc", ""}, got)
}

func TestClient_BulkListQuery(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathWorkers, r.URL.Path)
		assert.Equal(t, "1000", r.URL.Query().Get("size"))
		assert.Equal(t, "true", r.URL.Query().Get("isActive"))
		assert.False(t, r.URL.Query().Has("status"), "empty filters are not sent")
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "success",
			"count":  1,
			"data":   []map[string]any{{"id": 3, "firstName": "Mona", "specialization": "paint"}},
		})
	}))
	defer srv.Close()

	workers, err := NewClient(srv.URL, nil).ListWorkers(context.Background(), map[string]string{"isActive": "true", "status": ""})
	require.NoError(t, err)
	require.Len(t, workers, 1)
	assert.Equal(t, "Mona", workers[0].FirstName)
	assert.Equal(t, "paint", workers[0].Specialization)
}

func TestClient_ErrorMessageVerbatim(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]any{"message": "slug already exists"})
	}))
	defer srv.Close()

	err := NewClient(srv.URL, nil).AddCategory(context.Background(), "Tyres")
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "slug already exists", Message(err))
	assert.False(t, errors.Is(err, ErrUnauthorized))
}

func TestClient_UnauthorizedHook(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "invalid token"})
	}))
	defer srv.Close()

	calls := 0
	c := NewClient(srv.URL, staticToken("stale"), WithUnauthorizedHook(func(context.Context) { calls++ }))
	err := c.DeleteUser(context.Background(), 7)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 1, calls)
}

func TestClient_TransportFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, nil).ListProducts(context.Background(), nil)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.Transport())
	assert.Contains(t, Message(err), "Could not reach the server")
}

func TestClient_Login(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    map[string]any
		wantErr string
		want    *LoginResult
	}{
		{
			name:   "success",
			status: http.StatusOK,
			body:   map[string]any{"status": StatusLoginSuccess, "data": map[string]any{"token": "t1", "role": "admin"}},
			want:   &LoginResult{Token: "t1", Role: "admin"},
		},
		{
			name:    "unrecognized status",
			status:  http.StatusOK,
			body:    map[string]any{"status": "pending", "message": "account not verified"},
			wantErr: "account not verified",
		},
		{
			name:    "wrong credentials",
			status:  http.StatusBadRequest,
			body:    map[string]any{"message": "invalid email or password"},
			wantErr: "invalid email or password",
		},
		{
			name:    "no token",
			status:  http.StatusOK,
			body:    map[string]any{"status": StatusLoginSuccess, "data": map[string]any{}},
			wantErr: "login response carried no token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var creds Credentials
				require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
				assert.Equal(t, "a@b.co", creds.Email)
				writeJSON(w, tt.status, tt.body)
			}))
			defer srv.Close()

			got, err := NewClient(srv.URL, nil).Login(context.Background(), Credentials{Email: "a@b.co", Password: "x"})
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, Message(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_UserDetailAndUpdate(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			assert.Equal(t, PathUser+"29", r.URL.Path)
			writeJSON(w, http.StatusOK, map[string]any{"status": "success", "data": map[string]any{
				"user":   map[string]any{"id": 29, "firstName": "Ali", "role": "worker", "isActive": true},
				"worker": map[string]any{"specialization": "engines", "location": "Cairo"},
			}})
		case http.MethodPut:
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.NotContains(t, body, "password")
			assert.NotContains(t, body, "email")
			writeJSON(w, http.StatusOK, map[string]any{"status": StatusUserUpdated})
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	d, err := c.GetUser(context.Background(), 29)
	require.NoError(t, err)
	assert.Equal(t, models.User{ID: 29, FirstName: "Ali", Role: "worker", IsActive: true}, d.User)
	require.NotNil(t, d.Worker)
	assert.Equal(t, "engines", d.Worker.Specialization)

	require.NoError(t, c.UpdateUser(context.Background(), 29, UserInput{FirstName: "Ali", Role: "worker"}))
}

func TestClient_MultipartProduct(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Brake pads", r.FormValue("title"))
		assert.Equal(t, "12", r.FormValue("subCategoryId"))
		assert.Empty(t, r.MultipartForm.Value["arabicTitle"], "empty optional fields are omitted")

		main := r.MultipartForm.File[FieldMainImage]
		require.Len(t, main, 1)
		assert.Equal(t, "main.jpg", main[0].Filename)
		subs := r.MultipartForm.File[FieldSubImages]
		require.Len(t, subs, 2)

		f, err := subs[1].Open()
		require.NoError(t, err)
		data, _ := io.ReadAll(f)
		assert.Equal(t, "two", string(data))
		writeJSON(w, http.StatusOK, map[string]any{"status": "success"})
	}))
	defer srv.Close()

	in := ProductInput{Title: "Brake pads", Price: "10", SubCategoryID: "12"}
	mp := in.Multipart(&File{Name: "main.jpg", Data: []byte("main")}, []File{{Name: "a.jpg", Data: []byte("one")}, {Name: "b.jpg", Data: []byte("two")}})
	require.NoError(t, NewClient(srv.URL, nil).UpdateProduct(context.Background(), 4, mp))
}

func TestClient_Subcategories(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "success", "data": map[string]any{
			"subCategories": []map[string]any{{"id": 1, "name": "Oil", "categoryId": 1}},
		}})
	}))
	defer srv.Close()

	subs, err := NewClient(srv.URL, nil).ListSubcategories(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []models.Subcategory{{ID: 1, Name: "Oil", CategoryID: 1}}, subs)
}
