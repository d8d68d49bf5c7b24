package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vuminh/shoprec/internal/models"
)

// ErrProfileNotFound is returned when no profile exists for a customer.
// It is distinct from data-access failures so callers can map it to an
// absence response instead of a generic error.
var ErrProfileNotFound = errors.New("recommendation profile not found")

// ProfileRepository handles recommendation profile persistence. One row
// per customer; the profile body is stored as a JSONB document.
type ProfileRepository struct {
	db *DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// profileDocument is the JSONB body of a stored profile. Timestamps and
// the customer id live in their own columns.
type profileDocument struct {
	Keywords   []string                `json:"keywords"`
	Categories []uuid.UUID             `json:"categories"`
	Brands     []string                `json:"brands"`
	PriceRange models.PriceRange       `json:"price_range"`
	Behavior   models.BehaviorAnalysis `json:"behavior_analysis"`
	Statistics models.ActionStatistics `json:"statistics"`
	Period     models.AnalysisPeriod   `json:"analysis_period"`
}

// Upsert stores the profile for its customer, replacing any previous
// profile wholesale. This is a full-document replace, not a merge: every
// field of an existing row is overwritten by the new analysis run.
func (r *ProfileRepository) Upsert(ctx context.Context, profile *models.RecommendationProfile) error {
	doc := profileDocument{
		Keywords:   profile.Keywords,
		Categories: profile.Categories,
		Brands:     profile.Brands,
		PriceRange: profile.PriceRange,
		Behavior:   profile.Behavior,
		Statistics: profile.Statistics,
		Period:     profile.Period,
	}

	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	query := `
		INSERT INTO recommendation_profiles (customer_id, profile, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (customer_id) DO UPDATE
		SET profile = EXCLUDED.profile,
		    updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at
	`

	now := time.Now().UTC()
	err = r.db.QueryRowContext(ctx, query, profile.CustomerID, docJSON, now).
		Scan(&profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}

	return nil
}

// GetByCustomerID retrieves the stored profile for a customer. Returns
// ErrProfileNotFound when no analysis run has been persisted yet.
func (r *ProfileRepository) GetByCustomerID(ctx context.Context, customerID uuid.UUID) (*models.RecommendationProfile, error) {
	query := `
		SELECT customer_id, profile, created_at, updated_at
		FROM recommendation_profiles
		WHERE customer_id = $1
	`

	profile := &models.RecommendationProfile{}
	var docJSON []byte

	err := r.db.QueryRowContext(ctx, query, customerID).Scan(
		&profile.CustomerID,
		&docJSON,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	var doc profileDocument
	if err := json.Unmarshal(docJSON, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}

	profile.Keywords = doc.Keywords
	profile.Categories = doc.Categories
	profile.Brands = doc.Brands
	profile.PriceRange = doc.PriceRange
	profile.Behavior = doc.Behavior
	profile.Statistics = doc.Statistics
	profile.Period = doc.Period

	return profile, nil
}
