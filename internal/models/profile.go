package models

import (
	"time"

	"github.com/google/uuid"
)

// PurchaseIntent classifies how close a customer is to buying.
type PurchaseIntent string

const (
	PurchaseIntentVeryLow PurchaseIntent = "Very Low"
	PurchaseIntentLow     PurchaseIntent = "Low"
	PurchaseIntentMedium  PurchaseIntent = "Medium"
	PurchaseIntentHigh    PurchaseIntent = "High"
)

// PriceRange summarizes the prices of products a customer interacted with.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// BehaviorAnalysis holds derived behavior metrics for a customer.
type BehaviorAnalysis struct {
	MostActiveHour  int            `json:"most_active_hour"` // 0-23, UTC
	PreferredAction ActionType     `json:"preferred_action"`
	EngagementScore float64        `json:"engagement_score"` // 0-10
	PurchaseIntent  PurchaseIntent `json:"purchase_intent"`
}

// ActionStatistics holds raw per-type action counts for the analysis window.
type ActionStatistics struct {
	TotalViews        int `json:"total_views"`
	TotalClicks       int `json:"total_clicks"`
	TotalCartAdds     int `json:"total_cart_adds"`
	TotalWishlistAdds int `json:"total_wishlist_adds"`
	TotalPurchases    int `json:"total_purchases"`
}

// AnalysisPeriod records the time window an analysis run covered.
type AnalysisPeriod struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
	Days int       `json:"days"`
}

// RecommendationProfile is the persisted preference summary for one
// customer. Each analysis run replaces the previous profile wholesale;
// there is no field-by-field merging.
type RecommendationProfile struct {
	CustomerID uuid.UUID `json:"customer_id"`

	// Ranked preference lists, capped at 15/10/5 entries.
	Keywords   []string    `json:"keywords"`
	Categories []uuid.UUID `json:"categories"`
	Brands     []string    `json:"brands"`

	PriceRange PriceRange       `json:"price_range"`
	Behavior   BehaviorAnalysis `json:"behavior_analysis"`
	Statistics ActionStatistics `json:"statistics"`
	Period     AnalysisPeriod   `json:"analysis_period"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileCaps are the fixed output sizes for the ranked preference lists.
const (
	MaxProfileKeywords   = 15
	MaxProfileCategories = 10
	MaxProfileBrands     = 5
)
