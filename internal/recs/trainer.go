package recs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vuminh/shoprec/internal/cf"
	"github.com/vuminh/shoprec/internal/database"
	"github.com/vuminh/shoprec/internal/models"
	"go.uber.org/zap"
)

// NoTrainingDataSummary is returned when the action store holds no
// weighted interactions. It is a reported condition, not an error.
const NoTrainingDataSummary = "no user behavior data found, model not trained"

// ArtifactSink persists a trained model artifact.
type ArtifactSink interface {
	Save(artifact *cf.Artifact) error
}

// ModelTrainer aggregates all customers' weighted interactions into a
// sparse training matrix and fits the collaborative-filtering model.
// Training is heavyweight and CPU-bound; concurrent Train calls are
// serialized by a mutex so the fit step and the artifact write never
// race with themselves.
type ModelTrainer struct {
	actions database.ActionRepositoryInterface
	sink    ArtifactSink
	params  cf.Params
	logger  *zap.Logger
	now     func() time.Time

	mu sync.Mutex
}

// NewModelTrainer creates a new model trainer with default factorization
// parameters.
func NewModelTrainer(actions database.ActionRepositoryInterface, sink ArtifactSink, logger *zap.Logger) *ModelTrainer {
	return &ModelTrainer{
		actions: actions,
		sink:    sink,
		params:  cf.DefaultParams(),
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Train fits and persists a new model, returning a human-readable
// summary. An empty action set yields the "no data" summary and writes
// no artifact, leaving any previous artifact in place.
func (t *ModelTrainer) Train(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	actions, err := t.actions.FindByTypes(ctx, models.WeightedActionTypes())
	if err != nil {
		return "", fmt.Errorf("failed to fetch training actions: %w", err)
	}

	ratings := buildTrainingMatrix(actions, t.params)
	if len(ratings) == 0 {
		t.logger.Warn("training_skipped_no_data")
		return NoTrainingDataSummary, nil
	}

	start := t.now()
	model := cf.Fit(ratings, t.params)
	elapsed := t.now().Sub(start)

	artifact := &cf.Artifact{
		Model:        model,
		TrainedAt:    t.now(),
		Interactions: len(ratings),
	}
	if err := t.sink.Save(artifact); err != nil {
		return "", fmt.Errorf("failed to persist model artifact: %w", err)
	}

	t.logger.Info("model_trained",
		zap.Int("interactions", len(ratings)),
		zap.Int("users", model.Users()),
		zap.Int("items", model.Items()),
		zap.Duration("fit_duration", elapsed),
	)

	return fmt.Sprintf("model trained on %d user-product interactions", len(ratings)), nil
}

type interactionKey struct {
	customerID string
	productID  string
}

// buildTrainingMatrix sums action weights per (customer, product) pair
// and clips the aggregate to the rating scale. Actions without a
// parseable product reference carry no training signal. Item keys use
// the canonical UUID form so the recommender can address every trained
// item. The result is ordered deterministically so a fixed seed
// reproduces the same model.
func buildTrainingMatrix(actions []*models.RawAction, params cf.Params) []cf.Rating {
	agg := make(map[interactionKey]float64)
	var order []interactionKey

	for _, action := range actions {
		productID, parsed := models.CanonicalProductID(action.ProductID)
		if !parsed {
			continue
		}
		weight, ok := models.ActionWeights[action.ActionType]
		if !ok {
			continue
		}

		key := interactionKey{
			customerID: action.CustomerID.String(),
			productID:  productID,
		}
		if _, seen := agg[key]; !seen {
			order = append(order, key)
		}
		agg[key] += weight
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].customerID != order[j].customerID {
			return order[i].customerID < order[j].customerID
		}
		return order[i].productID < order[j].productID
	})

	ratings := make([]cf.Rating, 0, len(order))
	for _, key := range order {
		score := agg[key]
		if score < params.MinRating {
			score = params.MinRating
		}
		if score > params.MaxRating {
			score = params.MaxRating
		}
		ratings = append(ratings, cf.Rating{
			UserID: key.customerID,
			ItemID: key.productID,
			Score:  score,
		})
	}

	return ratings
}
