package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/davidchen92/lostpoint/internal/middleware"
	"github.com/davidchen92/lostpoint/internal/models"
	apperrors "github.com/davidchen92/lostpoint/pkg/errors"
	"github.com/davidchen92/lostpoint/pkg/response"
	"github.com/davidchen92/lostpoint/pkg/validator"
)

// LostItemAccessor is the orchestration surface the handler drives. It is
// satisfied by services.LostItemService.
type LostItemAccessor interface {
	Create(ctx context.Context, userID string, item *models.LostItem) (string, error)
	List(ctx context.Context, filter models.ItemFilter) ([]models.LostItem, error)
	Get(ctx context.Context, id string) (*models.LostItem, error)
	Nearby(ctx context.Context, longitude, latitude, radiusKm float64) ([]models.LostItem, error)
}

// LostItemHandler exposes the lost item HTTP surface.
type LostItemHandler struct {
	svc LostItemAccessor
}

// NewLostItemHandler constructs the handler.
func NewLostItemHandler(svc LostItemAccessor) *LostItemHandler {
	return &LostItemHandler{svc: svc}
}

type createLostItemRequest struct {
	Longitude      *float64          `json:"longitude" validate:"required,gte=-180,lte=180"`
	Latitude       *float64          `json:"latitude" validate:"required,gte=-90,lte=90"`
	ImageURL       string            `json:"image_url" validate:"required,min=1"`
	Description    string            `json:"description" validate:"required,min=10,max=500"`
	Notes          string            `json:"notes" validate:"omitempty,max=1000"`
	Category       string            `json:"category" validate:"required,max=50"`
	FoundAtAddress string            `json:"found_at_address" validate:"required,min=5,max=200"`
	FinderInfo     models.FinderInfo `json:"finder_info" validate:"required"`
}

// Create handles POST /api/v1/lost-items.
func (h *LostItemHandler) Create(c *gin.Context) {
	userID := strings.TrimSpace(c.GetString(middleware.CtxUserIDKey))
	if userID == "" {
		response.Error(c, apperrors.ErrIdentityRequired)
		return
	}

	var req createLostItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.NewBadRequest("invalid request body"))
		return
	}
	if err := validator.ValidateStruct(req); err != nil {
		response.Error(c, apperrors.NewBadRequest(err.Error()))
		return
	}
	if strings.TrimSpace(models.NormaliseCategory(req.Category)) == "" {
		response.Error(c, apperrors.NewBadRequest("category must not be blank"))
		return
	}

	item := models.LostItem{
		Longitude:      *req.Longitude,
		Latitude:       *req.Latitude,
		ImageURL:       req.ImageURL,
		Description:    req.Description,
		Notes:          req.Notes,
		Category:       req.Category,
		FoundAtAddress: req.FoundAtAddress,
		FinderInfo:     req.FinderInfo,
	}

	id, err := h.svc.Create(requestContext(c), userID, &item)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"item_id": id})
}

// List handles GET /api/v1/lost-items.
func (h *LostItemHandler) List(c *gin.Context) {
	filter, err := parseListFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	items, err := h.svc.List(requestContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, items, &response.Meta{
		Limit: filter.Limit,
		Skip:  filter.Skip,
		Count: len(items),
	})
}

// Get handles GET /api/v1/lost-items/:id.
func (h *LostItemHandler) Get(c *gin.Context) {
	item, err := h.svc.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, item)
}

// Nearby handles GET /api/v1/lost-items/nearby.
func (h *LostItemHandler) Nearby(c *gin.Context) {
	latitude, err := requiredFloat(c, "latitude")
	if err != nil {
		response.Error(c, err)
		return
	}
	longitude, err := requiredFloat(c, "longitude")
	if err != nil {
		response.Error(c, err)
		return
	}

	radius := 10.0
	if raw := strings.TrimSpace(c.Query("radius")); raw != "" {
		radius, err = parseFloat(raw, "radius")
		if err != nil {
			response.Error(c, err)
			return
		}
	}

	switch {
	case latitude < -90 || latitude > 90:
		response.Error(c, apperrors.NewBadRequest("latitude must be between -90 and 90"))
		return
	case longitude < -180 || longitude > 180:
		response.Error(c, apperrors.NewBadRequest("longitude must be between -180 and 180"))
		return
	case radius < 0.1 || radius > 100:
		response.Error(c, apperrors.NewBadRequest("radius must be between 0.1 and 100 km"))
		return
	}

	items, err := h.svc.Nearby(requestContext(c), longitude, latitude, radius)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, items)
}

// parseListFilter builds the ItemFilter from query parameters. Region bounds
// are all-or-none: a partially specified rectangle is a caller error, never a
// silently ignored filter.
func parseListFilter(c *gin.Context) (models.ItemFilter, error) {
	filter := models.ItemFilter{
		Category:   c.Query("category"),
		SearchText: c.Query("search"),
	}

	var err error
	if filter.Limit, err = optionalInt(c, "limit", models.DefaultListLimit); err != nil {
		return filter, err
	}
	if filter.Limit < 1 || filter.Limit > models.MaxListLimit {
		return filter, apperrors.NewBadRequest("limit must be between 1 and 100")
	}
	if filter.Skip, err = optionalInt(c, "skip", 0); err != nil {
		return filter, err
	}
	if filter.Skip < 0 {
		return filter, apperrors.NewBadRequest("skip must not be negative")
	}

	boundNames := []string{"min_lat", "max_lat", "min_lng", "max_lng"}
	bounds := make(map[string]float64, len(boundNames))
	for _, name := range boundNames {
		raw := strings.TrimSpace(c.Query(name))
		if raw == "" {
			continue
		}
		value, err := parseFloat(raw, name)
		if err != nil {
			return filter, err
		}
		bounds[name] = value
	}

	switch len(bounds) {
	case 0:
		// no region filter
	case len(boundNames):
		filter.Region = &models.RegionBounds{
			MinLat: bounds["min_lat"],
			MaxLat: bounds["max_lat"],
			MinLng: bounds["min_lng"],
			MaxLng: bounds["max_lng"],
		}
	default:
		return filter, apperrors.NewBadRequest(
			"all region bounds (min_lat, max_lat, min_lng, max_lng) must be provided together")
	}

	filter.Normalise()
	return filter, filter.Validate()
}

func requiredFloat(c *gin.Context, name string) (float64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, apperrors.NewBadRequest(name + " is required")
	}
	return parseFloat(raw, name)
}

func parseFloat(raw, name string) (float64, error) {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperrors.NewBadRequest(name + " must be a number")
	}
	return value, nil
}

func optionalInt(c *gin.Context, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewBadRequest(name + " must be an integer")
	}
	return value, nil
}
