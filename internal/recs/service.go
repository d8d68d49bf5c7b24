package recs

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/vuminh/shoprec/internal/database"
	logpkg "github.com/vuminh/shoprec/internal/logger"
	"github.com/vuminh/shoprec/internal/models"
	"go.uber.org/zap"
)

// Service is the facade the endpoint layer, worker, and CLI call into.
// Identifiers cross this boundary as opaque strings; an unparseable id is
// an input error, rejected before any I/O.
type Service struct {
	analyzer    *BehaviorAnalyzer
	trainer     *ModelTrainer
	recommender *Recommender
	registry    *ModelRegistry
	profiles    database.ProfileRepositoryInterface
	logger      *zap.Logger
}

// NewService creates the recommendation service facade
func NewService(
	analyzer *BehaviorAnalyzer,
	trainer *ModelTrainer,
	recommender *Recommender,
	registry *ModelRegistry,
	profiles database.ProfileRepositoryInterface,
	logger *zap.Logger,
) *Service {
	return &Service{
		analyzer:    analyzer,
		trainer:     trainer,
		recommender: recommender,
		registry:    registry,
		profiles:    profiles,
		logger:      logger,
	}
}

func parseCustomerID(userID string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(userID))
	if err != nil {
		return uuid.Nil, invalidInputf("malformed user id %q", userID)
	}
	return id, nil
}

// AnalyzeUser analyzes one customer's behavior and replaces their stored
// profile wholesale.
func (s *Service) AnalyzeUser(ctx context.Context, userID string, days int) error {
	customerID, err := parseCustomerID(userID)
	if err != nil {
		return err
	}
	if days < 0 {
		return invalidInputf("days must not be negative, got %d", days)
	}

	profile, err := s.analyzer.Analyze(ctx, customerID, days)
	if err != nil {
		return fmt.Errorf("failed to analyze user %s: %w", customerID, err)
	}

	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return fmt.Errorf("failed to save profile for user %s: %w", customerID, err)
	}

	s.logger.Info("user_analyzed",
		zap.String("customer_id", customerID.String()),
		zap.Int("days", profile.Period.Days),
		zap.Float64("engagement_score", profile.Behavior.EngagementScore),
		zap.String("purchase_intent", string(profile.Behavior.PurchaseIntent)),
	)

	return nil
}

// BatchAnalyze analyzes many customers sequentially with per-user
// failure isolation: one user's failure is recorded and skipped, never
// aborting the batch. The summary reports the success count and the
// first few failed ids.
func (s *Service) BatchAnalyze(ctx context.Context, userIDs []string, days int) string {
	succeeded := 0
	var failed []string

	for _, userID := range userIDs {
		if err := s.AnalyzeUser(ctx, userID, days); err != nil {
			s.logger.Warn("batch_analyze_user_failed",
				zap.String("user_id", logpkg.SanitizeUserID(userID)),
				zap.String("error", logpkg.SanitizeError(err)),
			)
			failed = append(failed, userID)
			continue
		}
		succeeded++
	}

	summary := fmt.Sprintf("analyzed %d/%d users successfully", succeeded, len(userIDs))
	if len(failed) > 0 {
		shown := failed
		if len(shown) > 5 {
			shown = shown[:5]
		}
		summary += fmt.Sprintf("; failed users: %s", strings.Join(shown, ", "))
		if len(failed) > 5 {
			summary += fmt.Sprintf(" and %d more", len(failed)-5)
		}
	}

	return summary
}

// GetProfile returns the stored profile for a customer, or
// database.ErrProfileNotFound when none has been analyzed yet.
func (s *Service) GetProfile(ctx context.Context, userID string) (*models.RecommendationProfile, error) {
	customerID, err := parseCustomerID(userID)
	if err != nil {
		return nil, err
	}
	return s.profiles.GetByCustomerID(ctx, customerID)
}

// TrainModel fits and persists a fresh model, returning the training
// summary. The registry cache is not refreshed automatically; call
// ReloadModel to serve the new artifact.
func (s *Service) TrainModel(ctx context.Context) (string, error) {
	return s.trainer.Train(ctx)
}

// ReloadModel swaps the cached model for the current persisted artifact.
func (s *Service) ReloadModel() error {
	return s.registry.Reload()
}

// RecommendProducts returns the top-n unseen product ids for a customer.
func (s *Service) RecommendProducts(ctx context.Context, userID string, topN int) ([]uuid.UUID, error) {
	customerID, err := parseCustomerID(userID)
	if err != nil {
		return nil, err
	}
	return s.recommender.RecommendProducts(ctx, customerID, topN)
}

// RecommendKeywords returns the top-n recommended keywords for a customer.
func (s *Service) RecommendKeywords(ctx context.Context, userID string, topN int) ([]string, error) {
	customerID, err := parseCustomerID(userID)
	if err != nil {
		return nil, err
	}
	return s.recommender.RecommendKeywords(ctx, customerID, topN)
}
