package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an immutable price value. Amount is carried as a decimal so
// "19.99" survives the JSON round trip without float drift.
type Money struct {
	Amount   decimal.Decimal `json:"amount" bson:"amount"`
	Currency string          `json:"currency" bson:"currency"`
}

const DefaultCurrency = "USD"

func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	if currency == "" {
		currency = DefaultCurrency
	}
	m := Money{Amount: amount, Currency: currency}
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}

func (m Money) Validate() error {
	if !m.Amount.IsPositive() {
		return fmt.Errorf("price amount must be positive, got %s: %w", m.Amount, ErrValidation)
	}
	if m.Currency == "" {
		return fmt.Errorf("currency is required: %w", ErrValidation)
	}
	return nil
}

// Condition describes the physical state of the item.
type Condition struct {
	Score               int      `json:"score" bson:"score"`
	DetailedDescription string   `json:"detailed_description" bson:"detailed_description"`
	KnownDefects        []string `json:"known_defects" bson:"known_defects"`
}

func (c Condition) Validate() error {
	if c.Score < 1 || c.Score > 10 {
		return fmt.Errorf("condition score must be between 1 and 10, got %d: %w", c.Score, ErrValidation)
	}
	return nil
}

type ReasonType string

const (
	ReasonOutOfStock      ReasonType = "OutOfStock"
	ReasonPolicyViolation ReasonType = "PolicyViolation"
	ReasonSellerRequest   ReasonType = "SellerRequest"
	ReasonQualityIssue    ReasonType = "QualityIssue"
)

// DelistReason records why a listing left the Active state.
type DelistReason struct {
	ReasonType ReasonType `json:"reason_type" bson:"reason_type"`
	Detail     string     `json:"detail" bson:"detail"`
}

func (r DelistReason) Validate() error {
	switch r.ReasonType {
	case ReasonOutOfStock, ReasonPolicyViolation, ReasonSellerRequest, ReasonQualityIssue:
		return nil
	}
	return fmt.Errorf("unknown delist reason type %q: %w", r.ReasonType, ErrValidation)
}

// SearchFilter is a structured facet attached to a search index entry.
type SearchFilter struct {
	Name  string `json:"name" bson:"name"`
	Value string `json:"value" bson:"value"`
}
