package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/bazario/listing-service/internal/listing/domain"
	userdomain "github.com/bazario/listing-service/internal/user/domain"
)

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

type registerResponse struct {
	UserID   string `json:"user_id"`
	SellerID string `json:"seller_id"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type moneyPayload struct {
	Amount   decimal.Decimal `json:"amount" binding:"required"`
	Currency string          `json:"currency"`
}

func (m moneyPayload) toDomain() (domain.Money, error) {
	return domain.NewMoney(m.Amount, m.Currency)
}

type conditionPayload struct {
	Score               int      `json:"score" binding:"required"`
	DetailedDescription string   `json:"detailed_description"`
	KnownDefects        []string `json:"known_defects"`
}

func (c conditionPayload) toDomain() domain.Condition {
	return domain.Condition{
		Score:               c.Score,
		DetailedDescription: c.DetailedDescription,
		KnownDefects:        c.KnownDefects,
	}
}

type attributePayload struct {
	AttributeID string `json:"attribute_id,omitempty"`
	Name        string `json:"name"`
	Value       string `json:"value"`
}

type createListingRequest struct {
	Title      string             `json:"title" binding:"required"`
	Price      moneyPayload       `json:"price" binding:"required"`
	Condition  conditionPayload   `json:"condition" binding:"required"`
	Attributes []attributePayload `json:"attributes"`
}

type updatePriceRequest struct {
	NewPrice moneyPayload `json:"new_price" binding:"required"`
}

type delistReasonPayload struct {
	ReasonType string `json:"reason_type" binding:"required"`
	Detail     string `json:"detail"`
}

type delistRequest struct {
	Reason delistReasonPayload `json:"reason" binding:"required"`
}

type updateAttributeRequest struct {
	Value string `json:"value" binding:"required"`
}

type listingResponse struct {
	ListingID    string               `json:"listing_id"`
	SellerID     string               `json:"seller_id"`
	Title        string               `json:"title"`
	ItemState    string               `json:"item_state"`
	Price        moneyPayload         `json:"price"`
	Condition    conditionPayload     `json:"condition"`
	Attributes   []attributePayload   `json:"attributes"`
	PhotoURLs    []string             `json:"photo_urls,omitempty"`
	DelistReason *delistReasonPayload `json:"delist_reason,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

func toListingResponse(l *domain.Listing) listingResponse {
	resp := listingResponse{
		ListingID: l.ListingID,
		SellerID:  l.SellerID,
		Title:     l.Title,
		ItemState: string(l.ItemState),
		Price: moneyPayload{
			Amount:   l.Price.Amount,
			Currency: l.Price.Currency,
		},
		Condition: conditionPayload{
			Score:               l.Condition.Score,
			DetailedDescription: l.Condition.DetailedDescription,
			KnownDefects:        l.Condition.KnownDefects,
		},
		PhotoURLs: l.PhotoURLs,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
	if resp.Condition.KnownDefects == nil {
		resp.Condition.KnownDefects = []string{}
	}
	resp.Attributes = make([]attributePayload, 0, len(l.Attributes))
	for _, a := range l.Attributes {
		resp.Attributes = append(resp.Attributes, attributePayload{
			AttributeID: a.AttributeID,
			Name:        a.Name,
			Value:       a.Value,
		})
	}
	if l.DelistReason != nil {
		resp.DelistReason = &delistReasonPayload{
			ReasonType: string(l.DelistReason.ReasonType),
			Detail:     l.DelistReason.Detail,
		}
	}
	return resp
}

func toListingResponses(listings []*domain.Listing) []listingResponse {
	out := make([]listingResponse, 0, len(listings))
	for _, l := range listings {
		out = append(out, toListingResponse(l))
	}
	return out
}

type searchFilterPayload struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type searchEntryResponse struct {
	IndexID        string                `json:"index_id"`
	SearchableText string                `json:"searchable_text"`
	RelevanceScore float64               `json:"relevance_score"`
	SearchFilters  []searchFilterPayload `json:"search_filters"`
}

func toSearchEntryResponses(entries []*domain.SearchIndexEntry) []searchEntryResponse {
	out := make([]searchEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp := searchEntryResponse{
			IndexID:        e.IndexID,
			SearchableText: e.SearchableText,
			RelevanceScore: e.RelevanceScore,
			SearchFilters:  make([]searchFilterPayload, 0, len(e.SearchFilters)),
		}
		for _, f := range e.SearchFilters {
			resp.SearchFilters = append(resp.SearchFilters, searchFilterPayload{Name: f.Name, Value: f.Value})
		}
		out = append(out, resp)
	}
	return out
}

type healthResponse struct {
	Status           string `json:"status"`
	ListingsCount    int    `json:"listings_count"`
	SearchIndexCount int    `json:"search_index_count"`
}

// writeError maps the domain error taxonomy to HTTP statuses.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, userdomain.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, userdomain.ErrUnauthenticated), errors.Is(err, userdomain.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, userdomain.ErrUsernameTaken):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
