package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/davidchen92/lostpoint/internal/middleware"
	"github.com/davidchen92/lostpoint/internal/models"
	apperrors "github.com/davidchen92/lostpoint/pkg/errors"
)

type stubAccessor struct {
	createID   string
	createErr  error
	listItems  []models.LostItem
	listErr    error
	getItem    *models.LostItem
	getErr     error
	nearbyErr  error
	lastFilter models.ItemFilter
	lastRadius float64
	lastUser   string
	creates    int
}

func (s *stubAccessor) Create(_ context.Context, userID string, _ *models.LostItem) (string, error) {
	s.creates++
	s.lastUser = userID
	return s.createID, s.createErr
}

func (s *stubAccessor) List(_ context.Context, filter models.ItemFilter) ([]models.LostItem, error) {
	s.lastFilter = filter
	return s.listItems, s.listErr
}

func (s *stubAccessor) Get(_ context.Context, _ string) (*models.LostItem, error) {
	return s.getItem, s.getErr
}

func (s *stubAccessor) Nearby(_ context.Context, _, _, radiusKm float64) ([]models.LostItem, error) {
	s.lastRadius = radiusKm
	return s.listItems, s.nearbyErr
}

func newItemsRouter(svc LostItemAccessor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	h := NewLostItemHandler(svc)
	items := r.Group("/api/v1/lost-items")
	{
		items.POST("", middleware.Identity(), h.Create)
		items.GET("", h.List)
		items.GET("/nearby", h.Nearby)
		items.GET("/:id", h.Get)
	}
	return r
}

func validCreateBody() map[string]any {
	return map[string]any{
		"longitude":        -122.4,
		"latitude":         37.8,
		"image_url":        "https://img.example/wallet.jpg",
		"description":      "black wallet", // 12 chars
		"category":         "Wallet",
		"found_at_address": "Market St, San Francisco",
		"finder_info": map[string]any{
			"name":  "Ana",
			"email": "ana@example.com",
			"phone": "4155550100",
		},
	}
}

func postItem(r *gin.Engine, body map[string]any, headers map[string]string) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/lost-items", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateReturnsGeneratedID(t *testing.T) {
	svc := &stubAccessor{createID: "656a1f77bcf86cd799439011"}
	r := newItemsRouter(svc)

	w := postItem(r, validCreateBody(), map[string]string{middleware.HeaderDeviceID: "dev-1"})

	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, w.Body.String(), "656a1f77bcf86cd799439011")
	require.Equal(t, "device_dev-1", svc.lastUser)
}

func TestCreateRejectsShortDescription(t *testing.T) {
	svc := &stubAccessor{createID: "ignored"}
	r := newItemsRouter(svc)

	body := validCreateBody()
	body["description"] = "too short"
	w := postItem(r, body, map[string]string{middleware.HeaderDeviceID: "dev-1"})

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Zero(t, svc.creates, "invalid bodies must never reach the service")
}

func TestCreateRejectsMissingIdentity(t *testing.T) {
	svc := &stubAccessor{createID: "ignored"}
	r := newItemsRouter(svc)

	w := postItem(r, validCreateBody(), map[string]string{"User-Agent": ""})

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "IDENTITY_REQUIRED")
	require.Zero(t, svc.creates)
}

func TestCreateQuotaExceeded(t *testing.T) {
	svc := &stubAccessor{createErr: apperrors.ErrQuotaExceeded}
	r := newItemsRouter(svc)

	w := postItem(r, validCreateBody(), map[string]string{middleware.HeaderDeviceID: "dev-1"})

	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Contains(t, w.Body.String(), "QUOTA_EXCEEDED")
}

func TestCreateStoreUnavailable(t *testing.T) {
	svc := &stubAccessor{createErr: apperrors.ErrStoreUnavailable}
	r := newItemsRouter(svc)

	w := postItem(r, validCreateBody(), map[string]string{middleware.HeaderDeviceID: "dev-1"})

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Contains(t, w.Body.String(), "STORE_UNAVAILABLE")
}

func TestListPartialRegionBoundsRejected(t *testing.T) {
	svc := &stubAccessor{}
	r := newItemsRouter(svc)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/lost-items?min_lat=37.0&max_lat=38.0&min_lng=-123.0", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "provided together")
}

func TestListFullRegionBoundsAccepted(t *testing.T) {
	svc := &stubAccessor{}
	r := newItemsRouter(svc)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/lost-items?min_lat=37.0&max_lat=38.0&min_lng=-123.0&max_lng=-122.0", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.lastFilter.Region)
	require.Equal(t, 37.0, svc.lastFilter.Region.MinLat)
	require.Equal(t, -122.0, svc.lastFilter.Region.MaxLng)
}

func TestListWithoutBoundsAccepted(t *testing.T) {
	svc := &stubAccessor{}
	r := newItemsRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/lost-items?category=Wallet", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Nil(t, svc.lastFilter.Region)
	require.Equal(t, "wallet", svc.lastFilter.Category, "category must reach the service normalised")
	require.Equal(t, models.DefaultListLimit, svc.lastFilter.Limit)
}

func TestListLimitOutOfRangeRejected(t *testing.T) {
	svc := &stubAccessor{}
	r := newItemsRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/lost-items?limit=101", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetMapsInvalidIDAndNotFound(t *testing.T) {
	svc := &stubAccessor{getErr: apperrors.ErrInvalidID}
	r := newItemsRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/lost-items/not-a-hex-id", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "INVALID_ID")

	svc.getErr = apperrors.ErrNotFound
	req = httptest.NewRequest(http.MethodGet, "/api/v1/lost-items/656a1f77bcf86cd799439011", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestNearbyValidation(t *testing.T) {
	svc := &stubAccessor{}
	r := newItemsRouter(svc)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"ok with default radius", "latitude=37.8&longitude=-122.4", http.StatusOK},
		{"ok with explicit radius", "latitude=37.8&longitude=-122.4&radius=1", http.StatusOK},
		{"latitude out of range", "latitude=91&longitude=-122.4", http.StatusBadRequest},
		{"longitude out of range", "latitude=37.8&longitude=181", http.StatusBadRequest},
		{"radius too small", "latitude=37.8&longitude=-122.4&radius=0.05", http.StatusBadRequest},
		{"radius too large", "latitude=37.8&longitude=-122.4&radius=101", http.StatusBadRequest},
		{"missing latitude", "longitude=-122.4", http.StatusBadRequest},
		{"non-numeric latitude", "latitude=abc&longitude=-122.4", http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/lost-items/nearby?"+tc.query, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			require.Equal(t, tc.want, w.Code)
		})
	}
}

func TestNearbyDefaultsRadius(t *testing.T) {
	svc := &stubAccessor{}
	r := newItemsRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/lost-items/nearby?latitude=37.8&longitude=-122.4", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 10.0, svc.lastRadius)
}
