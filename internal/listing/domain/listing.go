package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ItemState string

const (
	StateActive   ItemState = "Active"
	StateSold     ItemState = "Sold"
	StateDelisted ItemState = "Delisted"
)

const MaxTitleLength = 200

// Attribute is a named value attached to a listing. Its ID is assigned
// once and stays stable across value updates.
type Attribute struct {
	AttributeID string `json:"attribute_id" bson:"attribute_id"`
	Name        string `json:"name" bson:"name"`
	Value       string `json:"value" bson:"value"`
}

// AttributeInput is an attribute supplied by the caller, before an
// identity has been assigned.
type AttributeInput struct {
	Name  string
	Value string
}

// Listing is the aggregate root. All state changes go through its
// mutation methods; the repository hands out clones so callers cannot
// reach the stored instance.
type Listing struct {
	ListingID    string        `json:"listing_id" bson:"listing_id"`
	SellerID     string        `json:"seller_id" bson:"seller_id"`
	Title        string        `json:"title" bson:"title"`
	ItemState    ItemState     `json:"item_state" bson:"item_state"`
	Price        Money         `json:"price" bson:"price"`
	Condition    Condition     `json:"condition" bson:"condition"`
	Attributes   []Attribute   `json:"attributes" bson:"attributes"`
	PhotoURLs    []string      `json:"photo_urls,omitempty" bson:"photo_urls,omitempty"`
	DelistReason *DelistReason `json:"delist_reason,omitempty" bson:"delist_reason,omitempty"`
	CreatedAt    time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" bson:"updated_at"`
}

func NewListing(sellerID, title string, price Money, condition Condition, attrs []AttributeInput) (*Listing, error) {
	if sellerID == "" {
		return nil, fmt.Errorf("seller_id is required: %w", ErrValidation)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("title must not be empty: %w", ErrValidation)
	}
	if len(title) > MaxTitleLength {
		return nil, fmt.Errorf("title exceeds %d characters: %w", MaxTitleLength, ErrValidation)
	}
	if err := price.Validate(); err != nil {
		return nil, err
	}
	if err := condition.Validate(); err != nil {
		return nil, err
	}

	attributes := make([]Attribute, 0, len(attrs))
	for _, a := range attrs {
		if a.Name == "" {
			return nil, fmt.Errorf("attribute name must not be empty: %w", ErrValidation)
		}
		attributes = append(attributes, Attribute{
			AttributeID: uuid.NewString(),
			Name:        a.Name,
			Value:       a.Value,
		})
	}

	now := time.Now().UTC()
	return &Listing{
		ListingID:  uuid.NewString(),
		SellerID:   sellerID,
		Title:      title,
		ItemState:  StateActive,
		Price:      price,
		Condition:  condition,
		Attributes: attributes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Activate puts the listing back on the market. Activating an already
// active listing is a no-op success; a sold listing cannot come back.
func (l *Listing) Activate() error {
	if l.ItemState == StateSold {
		return fmt.Errorf("cannot activate a sold listing: %w", ErrInvalidTransition)
	}
	l.ItemState = StateActive
	l.DelistReason = nil
	l.touch()
	return nil
}

func (l *Listing) Delist(reason DelistReason) error {
	if l.ItemState == StateDelisted {
		return fmt.Errorf("listing is already delisted: %w", ErrInvalidTransition)
	}
	if err := reason.Validate(); err != nil {
		return err
	}
	l.ItemState = StateDelisted
	l.DelistReason = &reason
	l.touch()
	return nil
}

// MarkSold is the hook for the order-fulfillment side. There is no
// route back to Active from here.
func (l *Listing) MarkSold() error {
	if l.ItemState != StateActive {
		return fmt.Errorf("only an active listing can be sold: %w", ErrInvalidTransition)
	}
	l.ItemState = StateSold
	l.touch()
	return nil
}

func (l *Listing) UpdatePrice(newPrice Money) error {
	if l.ItemState == StateSold {
		return fmt.Errorf("cannot update price of a sold listing: %w", ErrInvalidTransition)
	}
	if err := newPrice.Validate(); err != nil {
		return err
	}
	l.Price = newPrice
	l.touch()
	return nil
}

// UpdateAttribute changes the value of an existing attribute. The
// attribute keeps its identity.
func (l *Listing) UpdateAttribute(attributeID, value string) error {
	for i := range l.Attributes {
		if l.Attributes[i].AttributeID == attributeID {
			l.Attributes[i].Value = value
			l.touch()
			return nil
		}
	}
	return fmt.Errorf("attribute %q: %w", attributeID, ErrNotFound)
}

func (l *Listing) AddPhotoURL(url string) {
	l.PhotoURLs = append(l.PhotoURLs, url)
	l.touch()
}

// RelevanceScore is the ranking signal the search projection stores.
// Linear and capped; tests pin the exact values.
func (l *Listing) RelevanceScore() float64 {
	score := 1.0
	if l.ItemState == StateActive {
		score += 2.0
	}
	if l.Condition.Score >= 8 {
		score += 1.0
	}
	score += 0.2 * float64(len(l.Attributes))
	if score > 10.0 {
		score = 10.0
	}
	return score
}

// touch refreshes UpdatedAt and guarantees it strictly increases even
// if the clock has not advanced between two mutations.
func (l *Listing) touch() {
	now := time.Now().UTC()
	if !now.After(l.UpdatedAt) {
		now = l.UpdatedAt.Add(time.Nanosecond)
	}
	l.UpdatedAt = now
}

// Clone returns a deep copy safe to hand across the repository boundary.
func (l *Listing) Clone() *Listing {
	if l == nil {
		return nil
	}
	c := *l
	c.Attributes = append([]Attribute(nil), l.Attributes...)
	c.PhotoURLs = append([]string(nil), l.PhotoURLs...)
	c.Condition.KnownDefects = append([]string(nil), l.Condition.KnownDefects...)
	if l.DelistReason != nil {
		r := *l.DelistReason
		c.DelistReason = &r
	}
	return &c
}
