package recs

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/vuminh/shoprec/internal/database"
	"github.com/vuminh/shoprec/internal/models"
)

// DefaultAnalysisDays is the analysis window used when the caller does
// not specify one.
const DefaultAnalysisDays = 30

// keywordStopList filters words that carry no preference signal.
var keywordStopList = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "from": {}, "this": {}, "that": {},
}

// BehaviorAnalyzer turns raw interaction events and catalog metadata into
// a recommendation profile. It performs no writes; persisting the result
// is the caller's responsibility.
type BehaviorAnalyzer struct {
	actions     database.ActionRepositoryInterface
	products    database.ProductRepositoryInterface
	defaultDays int
	now         func() time.Time
}

// NewBehaviorAnalyzer creates a behavior analyzer. defaultDays is the
// window applied when a caller passes a non-positive day count; a
// non-positive defaultDays falls back to DefaultAnalysisDays.
func NewBehaviorAnalyzer(actions database.ActionRepositoryInterface, products database.ProductRepositoryInterface, defaultDays int) *BehaviorAnalyzer {
	if defaultDays <= 0 {
		defaultDays = DefaultAnalysisDays
	}
	return &BehaviorAnalyzer{
		actions:     actions,
		products:    products,
		defaultDays: defaultDays,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Analyze computes the profile for one customer over the given window.
// A customer with no qualifying actions yields the defined empty profile,
// not an error.
func (a *BehaviorAnalyzer) Analyze(ctx context.Context, customerID uuid.UUID, days int) (*models.RecommendationProfile, error) {
	if days <= 0 {
		days = a.defaultDays
	}

	to := a.now()
	from := to.Add(-time.Duration(days) * 24 * time.Hour)
	period := models.AnalysisPeriod{From: from, To: to, Days: days}

	actions, err := a.actions.FindByCustomer(ctx, customerID, models.WeightedActionTypes(), from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch actions: %w", err)
	}

	if len(actions) == 0 {
		return emptyProfile(customerID, period), nil
	}

	products, err := a.resolveProducts(ctx, actions)
	if err != nil {
		return nil, err
	}

	return buildProfile(customerID, actions, products, period), nil
}

// resolveProducts fetches catalog metadata for every product id that
// parses. Malformed or deleted products are skipped; their actions still
// count toward the per-type statistics.
func (a *BehaviorAnalyzer) resolveProducts(ctx context.Context, actions []*models.RawAction) (map[string]*models.Product, error) {
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	for _, action := range actions {
		if action.ProductID == "" {
			continue
		}
		id, err := uuid.Parse(action.ProductID)
		if err != nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	products, err := a.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return products, nil
}

// scoreAccumulator tracks weighted scores in first-seen order so that
// ranking ties resolve deterministically.
type scoreAccumulator struct {
	scores map[string]float64
	order  []string
}

func newScoreAccumulator() *scoreAccumulator {
	return &scoreAccumulator{scores: make(map[string]float64)}
}

func (s *scoreAccumulator) add(key string, weight float64) {
	if _, ok := s.scores[key]; !ok {
		s.order = append(s.order, key)
	}
	s.scores[key] += weight
}

// top returns up to n keys ranked by descending score, ties broken by
// first-seen order. filter, when non-nil, removes keys before ranking.
func (s *scoreAccumulator) top(n int, filter func(string) bool) []string {
	keys := make([]string, 0, len(s.order))
	for _, k := range s.order {
		if filter != nil && !filter(k) {
			continue
		}
		keys = append(keys, k)
	}

	sort.SliceStable(keys, func(i, j int) bool {
		return s.scores[keys[i]] > s.scores[keys[j]]
	})

	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

func buildProfile(customerID uuid.UUID, actions []*models.RawAction, products map[string]*models.Product, period models.AnalysisPeriod) *models.RecommendationProfile {
	categories := newScoreAccumulator()
	brands := newScoreAccumulator()
	keywords := newScoreAccumulator()

	actionCounts := make(map[models.ActionType]int)
	var actionOrder []models.ActionType
	var hourly [24]int
	var prices []float64

	for _, action := range actions {
		weight, ok := models.ActionWeights[action.ActionType]
		if !ok {
			weight = 1
		}

		if _, counted := actionCounts[action.ActionType]; !counted {
			actionOrder = append(actionOrder, action.ActionType)
		}
		actionCounts[action.ActionType]++
		hourly[action.CreatedAt.UTC().Hour()]++

		// Product maps are keyed by the canonical UUID form; normalize
		// the raw reference so uppercase or braced ids still match.
		productKey, parsed := models.CanonicalProductID(action.ProductID)
		if !parsed {
			continue
		}
		product, resolved := products[productKey]
		if !resolved {
			continue
		}

		for _, categoryID := range product.CategoryIDs {
			categories.add(categoryID.String(), weight)
		}

		if product.Brand != "" {
			brands.add(product.Brand, weight)
		}

		for _, kw := range productKeywordSignals(product) {
			keywords.add(kw, weight)
		}

		if product.Price != nil {
			prices = append(prices, *product.Price)
		}
	}

	profile := &models.RecommendationProfile{
		CustomerID: customerID,
		Keywords: keywords.top(models.MaxProfileKeywords, func(k string) bool {
			if utf8.RuneCountInString(k) <= 2 {
				return false
			}
			_, stop := keywordStopList[k]
			return !stop
		}),
		Categories: parseCategoryIDs(categories.top(models.MaxProfileCategories, nil)),
		Brands:     brands.top(models.MaxProfileBrands, nil),
		PriceRange: summarizePrices(prices),
		Behavior: models.BehaviorAnalysis{
			MostActiveHour:  mostActiveHour(hourly),
			PreferredAction: preferredAction(actionCounts, actionOrder),
			EngagementScore: engagementScore(actionCounts),
			PurchaseIntent:  purchaseIntent(actionCounts),
		},
		Statistics: models.ActionStatistics{
			TotalViews:        actionCounts[models.ActionViewProduct],
			TotalClicks:       actionCounts[models.ActionClickProduct],
			TotalCartAdds:     actionCounts[models.ActionAddToCart],
			TotalWishlistAdds: actionCounts[models.ActionAddToWishlist],
			TotalPurchases:    actionCounts[models.ActionPurchase],
		},
		Period: period,
	}

	if profile.Keywords == nil {
		profile.Keywords = []string{}
	}
	if profile.Brands == nil {
		profile.Brands = []string{}
	}
	if profile.Categories == nil {
		profile.Categories = []uuid.UUID{}
	}

	return profile
}

// productKeywordSignals collects the normalized keyword signals of a
// product: its keyword list, its tags, and every name word longer than
// three characters, all case-folded.
func productKeywordSignals(product *models.Product) []string {
	var out []string
	appendKeyword := func(kw string) {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			out = append(out, kw)
		}
	}

	for _, kw := range product.Keywords {
		appendKeyword(kw)
	}
	for _, tag := range product.Tags {
		appendKeyword(tag)
	}
	// Length thresholds count characters, not bytes, so accented words
	// classify the same as their ASCII spellings.
	for _, word := range strings.Fields(strings.ToLower(product.Name)) {
		if utf8.RuneCountInString(word) > 3 {
			appendKeyword(word)
		}
	}

	return out
}

func parseCategoryIDs(keys []string) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(keys))
	for _, k := range keys {
		id, err := uuid.Parse(k)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out
}

func summarizePrices(prices []float64) models.PriceRange {
	if len(prices) == 0 {
		return models.PriceRange{}
	}

	min, max, sum := prices[0], prices[0], 0.0
	for _, p := range prices {
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
		sum += p
	}

	return models.PriceRange{
		Min: round2(min),
		Max: round2(max),
		Avg: round2(sum / float64(len(prices))),
	}
}

func mostActiveHour(hourly [24]int) int {
	best := 0
	for hour, count := range hourly {
		if count > hourly[best] {
			best = hour
		}
	}
	return best
}

func preferredAction(counts map[models.ActionType]int, order []models.ActionType) models.ActionType {
	preferred := models.ActionViewProduct
	bestCount := 0
	for _, actionType := range order {
		if counts[actionType] > bestCount {
			preferred = actionType
			bestCount = counts[actionType]
		}
	}
	return preferred
}

// engagementScore scales total weighted activity to 0-10: one hundred
// weight units saturate one point, capped at ten.
func engagementScore(counts map[models.ActionType]int) float64 {
	var totalWeight float64
	for actionType, count := range counts {
		weight, ok := models.ActionWeights[actionType]
		if !ok {
			weight = 1
		}
		totalWeight += float64(count) * weight
	}
	return round2(math.Min(totalWeight/100.0, 10.0))
}

func purchaseIntent(counts map[models.ActionType]int) models.PurchaseIntent {
	purchases := counts[models.ActionPurchase]
	cartAdds := counts[models.ActionAddToCart]
	wishlistAdds := counts[models.ActionAddToWishlist]

	totalActions := 0
	for _, count := range counts {
		totalActions += count
	}

	switch {
	case purchases > 0 && float64(purchases)/float64(totalActions) > 0.1:
		return models.PurchaseIntentHigh
	case purchases > 0:
		return models.PurchaseIntentMedium
	case cartAdds > 3 || wishlistAdds > 2:
		return models.PurchaseIntentMedium
	case cartAdds > 0 || wishlistAdds > 0:
		return models.PurchaseIntentLow
	default:
		return models.PurchaseIntentVeryLow
	}
}

func emptyProfile(customerID uuid.UUID, period models.AnalysisPeriod) *models.RecommendationProfile {
	return &models.RecommendationProfile{
		CustomerID: customerID,
		Keywords:   []string{},
		Categories: []uuid.UUID{},
		Brands:     []string{},
		PriceRange: models.PriceRange{},
		Behavior: models.BehaviorAnalysis{
			MostActiveHour:  0,
			PreferredAction: models.ActionViewProduct,
			EngagementScore: 0.0,
			PurchaseIntent:  models.PurchaseIntentVeryLow,
		},
		Period: period,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
