package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amrbasha900/mobile-endpoints/repository"
	"github.com/amrbasha900/mobile-endpoints/repository/models"
	"github.com/amrbasha900/mobile-endpoints/srvreg"
)

type fakeRepository struct {
	users   map[string]*models.User
	pingErr error
}

func (f *fakeRepository) GetUserByAPIKey(apiKey string) (*models.User, *repository.RepositoryError) {
	user, ok := f.users[apiKey]
	if !ok {
		return nil, &repository.RepositoryError{Code: repository.ErrCodeEntityNotFound, Message: "User not found"}
	}
	return user, nil
}

func (f *fakeRepository) Ping() error { return f.pingErr }

func newTestServer(repo *fakeRepository) *WebServer {
	registry := srvreg.NewServiceRegistry(nil, zerolog.Nop())
	registry.RegisterHandler("GET", "/api/user/default-company", true, func(req *srvreg.Request) (*srvreg.Response, error) {
		return srvreg.JSONResponse(http.StatusOK, map[string]string{
			"default_company": req.User.DefaultCompany,
		}), nil
	})
	return NewWebServer("0", registry, repo, zerolog.Nop())
}

func TestExtractAPIKey(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"token scheme", map[string]string{"Authorization": "token abc123"}, "abc123"},
		{"token scheme with padding", map[string]string{"Authorization": "token  abc123 "}, "abc123"},
		{"x-api-key header", map[string]string{"X-API-Key": "xyz789"}, "xyz789"},
		{"authorization wins", map[string]string{"Authorization": "token abc", "X-API-Key": "xyz"}, "abc"},
		{"bearer scheme ignored", map[string]string{"Authorization": "Bearer abc"}, ""},
		{"no headers", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/invoices", nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, extractAPIKey(r))
		})
	}
}

func TestHandleAPIMissingKey(t *testing.T) {
	ws := newTestServer(&fakeRepository{users: map[string]*models.User{}})

	w := httptest.NewRecorder()
	ws.handleAPI(w, httptest.NewRequest("GET", "/api/user/default-company", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Authentication required")
}

func TestHandleAPIInvalidKey(t *testing.T) {
	ws := newTestServer(&fakeRepository{users: map[string]*models.User{}})

	r := httptest.NewRequest("GET", "/api/user/default-company", nil)
	r.Header.Set("Authorization", "token wrong-key")
	w := httptest.NewRecorder()
	ws.handleAPI(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid API key")
}

func TestHandleAPIDispatch(t *testing.T) {
	repo := &fakeRepository{users: map[string]*models.User{
		"good-key": {Email: "mobile@example.com", DefaultCompany: "Alwadi Farms Co.", Enabled: true},
	}}
	ws := newTestServer(repo)

	r := httptest.NewRequest("GET", "/api/user/default-company", nil)
	r.Header.Set("X-API-Key", "good-key")
	w := httptest.NewRecorder()
	ws.handleAPI(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"default_company":"Alwadi Farms Co."}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestHandleAPIUnknownRoute(t *testing.T) {
	repo := &fakeRepository{users: map[string]*models.User{
		"good-key": {Email: "mobile@example.com", Enabled: true},
	}}
	ws := newTestServer(repo)

	r := httptest.NewRequest("GET", "/api/nothing", nil)
	r.Header.Set("X-API-Key", "good-key")
	w := httptest.NewRecorder()
	ws.handleAPI(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleHealth(t *testing.T) {
	ws := newTestServer(&fakeRepository{})

	w := httptest.NewRecorder()
	ws.handleHealth(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestHandleHealthDegraded(t *testing.T) {
	ws := newTestServer(&fakeRepository{pingErr: fmt.Errorf("connection refused")})

	w := httptest.NewRecorder()
	ws.handleHealth(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "degraded")
}

func TestHandleRoot(t *testing.T) {
	ws := newTestServer(&fakeRepository{})

	w := httptest.NewRecorder()
	ws.handleRoot(w, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "mobile-endpoints")

	w = httptest.NewRecorder()
	ws.handleRoot(w, httptest.NewRequest("GET", "/favicon.ico", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
