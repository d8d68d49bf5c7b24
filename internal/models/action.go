package models

import (
	"time"

	"github.com/google/uuid"
)

// ActionType identifies the kind of interaction a customer performed.
type ActionType string

const (
	ActionViewProduct   ActionType = "view_product"
	ActionClickProduct  ActionType = "click_product"
	ActionAddToCart     ActionType = "add_to_cart"
	ActionAddToWishlist ActionType = "add_to_wishlist"
	ActionPurchase      ActionType = "purchase"
	ActionSearch        ActionType = "search"
)

// ActionWeights maps each scored action type to its behavior weight.
// Search actions are tracked but carry no weight in preference scoring.
var ActionWeights = map[ActionType]float64{
	ActionViewProduct:   1,
	ActionClickProduct:  2,
	ActionAddToWishlist: 3,
	ActionAddToCart:     4,
	ActionPurchase:      10,
}

// WeightedActionTypes returns the action types that participate in
// behavior scoring and model training, in a fixed order.
func WeightedActionTypes() []ActionType {
	return []ActionType{
		ActionViewProduct,
		ActionClickProduct,
		ActionAddToCart,
		ActionAddToWishlist,
		ActionPurchase,
	}
}

// IsValidActionType reports whether s is a known action type.
func IsValidActionType(s string) bool {
	switch ActionType(s) {
	case ActionViewProduct, ActionClickProduct, ActionAddToCart,
		ActionAddToWishlist, ActionPurchase, ActionSearch:
		return true
	default:
		return false
	}
}

// RawAction is one immutable interaction event from the action store.
// ProductID is kept as an opaque string: historical events may reference
// products that were deleted or ingested with malformed identifiers, and
// those events still count toward per-type statistics.
type RawAction struct {
	ID         uuid.UUID  `json:"id"`
	CustomerID uuid.UUID  `json:"customer_id"`
	ActionType ActionType `json:"action_type"`
	ProductID  string     `json:"product_id,omitempty"`
	CategoryID string     `json:"category_id,omitempty"`
	Keyword    string     `json:"keyword,omitempty"`
	StoreID    string     `json:"store_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
