package recs

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/vuminh/shoprec/internal/database"
	"github.com/vuminh/shoprec/internal/models"
)

// Recommender ranks unseen catalog products for a customer using the
// cached collaborative-filtering model.
type Recommender struct {
	registry *ModelRegistry
	actions  database.ActionRepositoryInterface
	products database.ProductRepositoryInterface
}

// NewRecommender creates a new recommender
func NewRecommender(registry *ModelRegistry, actions database.ActionRepositoryInterface, products database.ProductRepositoryInterface) *Recommender {
	return &Recommender{
		registry: registry,
		actions:  actions,
		products: products,
	}
}

// RecommendProducts returns up to topN unseen product ids ranked by
// descending model affinity. Ties keep catalog enumeration order. The
// seen set covers every action type, not just the weighted vocabulary.
func (r *Recommender) RecommendProducts(ctx context.Context, customerID uuid.UUID, topN int) ([]uuid.UUID, error) {
	if topN <= 0 {
		return nil, invalidInputf("top_n must be positive, got %d", topN)
	}

	model, err := r.registry.Model()
	if err != nil {
		return nil, err
	}

	universe, err := r.products.AllIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product universe: %w", err)
	}

	seen, err := r.seenSet(ctx, customerID)
	if err != nil {
		return nil, err
	}

	customerKey := customerID.String()

	type scored struct {
		id    uuid.UUID
		score float64
	}
	candidates := make([]scored, 0, len(universe))
	for _, productID := range universe {
		if _, wasSeen := seen[productID.String()]; wasSeen {
			continue
		}
		candidates = append(candidates, scored{
			id:    productID,
			score: model.Predict(customerKey, productID.String()),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > topN {
		candidates = candidates[:topN]
	}

	out := make([]uuid.UUID, len(candidates))
	for i, c := range candidates {
		out[i] = c.id
	}
	return out, nil
}

// seenSet fetches the customer's interacted product ids normalized to
// the canonical UUID form, so exclusion matches candidates regardless of
// how the ids were recorded. Unparseable references are dropped; they
// can never collide with a catalog id.
func (r *Recommender) seenSet(ctx context.Context, customerID uuid.UUID) (map[string]struct{}, error) {
	raw, err := r.actions.SeenProductIDs(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch seen products: %w", err)
	}

	seen := make(map[string]struct{}, len(raw))
	for id := range raw {
		if key, ok := models.CanonicalProductID(id); ok {
			seen[key] = struct{}{}
		}
	}
	return seen, nil
}

// RecommendKeywords returns up to topN keywords for a customer using a
// two-stage ranking: unseen products with non-empty keyword lists are
// scored with the model and sorted by descending score, then every
// candidate's keywords are flattened in that order and ranked by
// frequency of occurrence, ties broken by first appearance. Keyword rank
// therefore reflects how often a keyword appears across well-scored
// candidates rather than the scores themselves.
func (r *Recommender) RecommendKeywords(ctx context.Context, customerID uuid.UUID, topN int) ([]string, error) {
	if topN <= 0 {
		return nil, invalidInputf("top_n must be positive, got %d", topN)
	}

	model, err := r.registry.Model()
	if err != nil {
		return nil, err
	}

	keywordSets, err := r.products.AllKeywordSets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product keywords: %w", err)
	}

	seen, err := r.seenSet(ctx, customerID)
	if err != nil {
		return nil, err
	}

	customerKey := customerID.String()

	type scoredSet struct {
		keywords []string
		score    float64
	}
	candidates := make([]scoredSet, 0, len(keywordSets))
	for _, set := range keywordSets {
		if len(set.Keywords) == 0 {
			continue
		}
		if _, wasSeen := seen[set.ID.String()]; wasSeen {
			continue
		}
		candidates = append(candidates, scoredSet{
			keywords: set.Keywords,
			score:    model.Predict(customerKey, set.ID.String()),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	// Flatten highest-scoring candidates first, then rank by frequency.
	counts := make(map[string]int)
	var firstSeen []string
	for _, candidate := range candidates {
		for _, kw := range candidate.keywords {
			if _, ok := counts[kw]; !ok {
				firstSeen = append(firstSeen, kw)
			}
			counts[kw]++
		}
	}

	ranked := make([]string, len(firstSeen))
	copy(ranked, firstSeen)
	sort.SliceStable(ranked, func(i, j int) bool {
		return counts[ranked[i]] > counts[ranked[j]]
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked, nil
}
