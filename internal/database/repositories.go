package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vuminh/shoprec/internal/models"
)

// ActionRepositoryInterface defines the interface for the append-only
// action store. It enables mock implementations in tests.
type ActionRepositoryInterface interface {
	Insert(ctx context.Context, action *models.RawAction) error
	FindByCustomer(ctx context.Context, customerID uuid.UUID, types []models.ActionType, from, to time.Time) ([]*models.RawAction, error)
	FindByTypes(ctx context.Context, types []models.ActionType) ([]*models.RawAction, error)
	SeenProductIDs(ctx context.Context, customerID uuid.UUID) (map[string]struct{}, error)
}

// ProductRepositoryInterface defines the interface for the read-only
// product catalog.
type ProductRepositoryInterface interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[string]*models.Product, error)
	AllIDs(ctx context.Context) ([]uuid.UUID, error)
	AllKeywordSets(ctx context.Context) ([]models.ProductKeywords, error)
}

// ProfileRepositoryInterface defines the interface for the profile store.
// Upsert replaces the whole stored profile for the customer; it never
// merges into an existing document.
type ProfileRepositoryInterface interface {
	Upsert(ctx context.Context, profile *models.RecommendationProfile) error
	GetByCustomerID(ctx context.Context, customerID uuid.UUID) (*models.RecommendationProfile, error)
}

// Ensure concrete types implement the interfaces
var (
	_ ActionRepositoryInterface  = (*ActionRepository)(nil)
	_ ProductRepositoryInterface = (*ProductRepository)(nil)
	_ ProfileRepositoryInterface = (*ProfileRepository)(nil)
)
