package rest

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bazario/listing-service/internal/adapter/rest/middleware"
	"github.com/bazario/listing-service/internal/listing/domain"
	listingusecase "github.com/bazario/listing-service/internal/listing/usecase"
	"github.com/bazario/listing-service/internal/platform/logger"
	userusecase "github.com/bazario/listing-service/internal/user/usecase"
)

const (
	defaultPageLimit = 100
	maxPhotoBytes    = 10 << 20
)

type Handler struct {
	listings *listingusecase.ListingUsecase
	photos   *listingusecase.PhotoUsecase // nil when photo storage is not configured
	users    *userusecase.UserUsecase
	logger   *logger.Logger
}

func NewHandler(listings *listingusecase.ListingUsecase, photos *listingusecase.PhotoUsecase, users *userusecase.UserUsecase, log *logger.Logger) *Handler {
	return &Handler{listings: listings, photos: photos, users: users, logger: log}
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.users.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, registerResponse{
		UserID:   user.ID,
		SellerID: user.ID,
		Username: user.Username,
		Message:  "User registered successfully",
	})
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	token, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, loginResponse{AccessToken: token, TokenType: "bearer"})
}

func (h *Handler) CreateListing(c *gin.Context) {
	var req createListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	price, err := req.Price.toDomain()
	if err != nil {
		writeError(c, err)
		return
	}
	attrs := make([]domain.AttributeInput, 0, len(req.Attributes))
	for _, a := range req.Attributes {
		attrs = append(attrs, domain.AttributeInput{Name: a.Name, Value: a.Value})
	}

	listing, err := h.listings.CreateListing(c.Request.Context(),
		middleware.SellerID(c), req.Title, price, req.Condition.toDomain(), attrs)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toListingResponse(listing))
}

func (h *Handler) GetListing(c *gin.Context) {
	listing, err := h.listings.GetListing(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toListingResponse(listing))
}

func (h *Handler) ListListings(c *gin.Context) {
	filter := domain.Filter{
		SellerID: c.Query("seller_id"),
		State:    domain.ItemState(c.Query("item_state")),
		Skip:     intQuery(c, "skip", 0),
		Limit:    intQuery(c, "limit", defaultPageLimit),
	}
	listings, err := h.listings.ListListings(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toListingResponses(listings))
}

func (h *Handler) UpdatePrice(c *gin.Context) {
	var req updatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	price, err := req.NewPrice.toDomain()
	if err != nil {
		writeError(c, err)
		return
	}
	listing, err := h.listings.UpdatePrice(c.Request.Context(), c.Param("id"), middleware.SellerID(c), price)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toListingResponse(listing))
}

func (h *Handler) ActivateListing(c *gin.Context) {
	listing, err := h.listings.Activate(c.Request.Context(), c.Param("id"), middleware.SellerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toListingResponse(listing))
}

func (h *Handler) DelistListing(c *gin.Context) {
	var req delistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	reason := domain.DelistReason{
		ReasonType: domain.ReasonType(req.Reason.ReasonType),
		Detail:     req.Reason.Detail,
	}
	listing, err := h.listings.Delist(c.Request.Context(), c.Param("id"), middleware.SellerID(c), reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toListingResponse(listing))
}

func (h *Handler) UpdateAttribute(c *gin.Context) {
	var req updateAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	listing, err := h.listings.UpdateAttribute(c.Request.Context(),
		c.Param("id"), middleware.SellerID(c), c.Param("attribute_id"), req.Value)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toListingResponse(listing))
}

func (h *Handler) UploadPhoto(c *gin.Context) {
	if h.photos == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "photo storage is not configured"})
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file upload: " + err.Error()})
		return
	}
	if fileHeader.Size > maxPhotoBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo exceeds maximum size"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	url, err := h.photos.UploadPhoto(c.Request.Context(),
		c.Param("id"), middleware.SellerID(c), fileHeader.Filename, data)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"photo_url": url})
}

func (h *Handler) DeleteListing(c *gin.Context) {
	if err := h.listings.DeleteListing(c.Request.Context(), c.Param("id"), middleware.SellerID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) SearchListings(c *gin.Context) {
	minRelevance := 0.0
	if raw := c.Query("min_relevance"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "min_relevance must be a number"})
			return
		}
		minRelevance = parsed
	}
	query := domain.SearchQuery{
		Query:        c.Query("query"),
		MinRelevance: minRelevance,
		Skip:         intQuery(c, "skip", 0),
		Limit:        intQuery(c, "limit", defaultPageLimit),
	}
	entries, err := h.listings.Search(c.Request.Context(), query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSearchEntryResponses(entries))
}

func (h *Handler) Health(c *gin.Context) {
	listings, entries, err := h.listings.Counts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, healthResponse{
		Status:           "healthy",
		ListingsCount:    listings,
		SearchIndexCount: entries,
	})
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
