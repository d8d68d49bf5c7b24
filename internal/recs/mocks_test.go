package recs

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/vuminh/shoprec/internal/cf"
	"github.com/vuminh/shoprec/internal/database"
	"github.com/vuminh/shoprec/internal/models"
)

// mockActionRepo is a mock implementation of ActionRepositoryInterface
type mockActionRepo struct {
	insertFunc         func(ctx context.Context, action *models.RawAction) error
	findByCustomerFunc func(ctx context.Context, customerID uuid.UUID, types []models.ActionType, from, to time.Time) ([]*models.RawAction, error)
	findByTypesFunc    func(ctx context.Context, types []models.ActionType) ([]*models.RawAction, error)
	seenProductIDsFunc func(ctx context.Context, customerID uuid.UUID) (map[string]struct{}, error)
}

func (m *mockActionRepo) Insert(ctx context.Context, action *models.RawAction) error {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, action)
	}
	return nil
}

func (m *mockActionRepo) FindByCustomer(ctx context.Context, customerID uuid.UUID, types []models.ActionType, from, to time.Time) ([]*models.RawAction, error) {
	if m.findByCustomerFunc != nil {
		return m.findByCustomerFunc(ctx, customerID, types, from, to)
	}
	return nil, nil
}

func (m *mockActionRepo) FindByTypes(ctx context.Context, types []models.ActionType) ([]*models.RawAction, error) {
	if m.findByTypesFunc != nil {
		return m.findByTypesFunc(ctx, types)
	}
	return nil, nil
}

func (m *mockActionRepo) SeenProductIDs(ctx context.Context, customerID uuid.UUID) (map[string]struct{}, error) {
	if m.seenProductIDsFunc != nil {
		return m.seenProductIDsFunc(ctx, customerID)
	}
	return map[string]struct{}{}, nil
}

var _ database.ActionRepositoryInterface = (*mockActionRepo)(nil)

// mockProductRepo is a mock implementation of ProductRepositoryInterface
type mockProductRepo struct {
	getByIDsFunc       func(ctx context.Context, ids []uuid.UUID) (map[string]*models.Product, error)
	allIDsFunc         func(ctx context.Context) ([]uuid.UUID, error)
	allKeywordSetsFunc func(ctx context.Context) ([]models.ProductKeywords, error)
}

func (m *mockProductRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[string]*models.Product, error) {
	if m.getByIDsFunc != nil {
		return m.getByIDsFunc(ctx, ids)
	}
	return map[string]*models.Product{}, nil
}

func (m *mockProductRepo) AllIDs(ctx context.Context) ([]uuid.UUID, error) {
	if m.allIDsFunc != nil {
		return m.allIDsFunc(ctx)
	}
	return nil, nil
}

func (m *mockProductRepo) AllKeywordSets(ctx context.Context) ([]models.ProductKeywords, error) {
	if m.allKeywordSetsFunc != nil {
		return m.allKeywordSetsFunc(ctx)
	}
	return nil, nil
}

var _ database.ProductRepositoryInterface = (*mockProductRepo)(nil)

// mockProfileRepo is a mock implementation of ProfileRepositoryInterface
type mockProfileRepo struct {
	upsertFunc          func(ctx context.Context, profile *models.RecommendationProfile) error
	getByCustomerIDFunc func(ctx context.Context, customerID uuid.UUID) (*models.RecommendationProfile, error)
}

func (m *mockProfileRepo) Upsert(ctx context.Context, profile *models.RecommendationProfile) error {
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, profile)
	}
	return nil
}

func (m *mockProfileRepo) GetByCustomerID(ctx context.Context, customerID uuid.UUID) (*models.RecommendationProfile, error) {
	if m.getByCustomerIDFunc != nil {
		return m.getByCustomerIDFunc(ctx, customerID)
	}
	return nil, errors.New("not found")
}

var _ database.ProfileRepositoryInterface = (*mockProfileRepo)(nil)

// mockArtifactSource is a mock implementation of ArtifactSource
type mockArtifactSource struct {
	loadFunc  func() (*cf.Artifact, error)
	loadCount int
}

func (m *mockArtifactSource) Load() (*cf.Artifact, error) {
	m.loadCount++
	if m.loadFunc != nil {
		return m.loadFunc()
	}
	return nil, cf.ErrArtifactNotFound
}

var _ ArtifactSource = (*mockArtifactSource)(nil)

// mockArtifactSink is a mock implementation of ArtifactSink
type mockArtifactSink struct {
	saveFunc func(artifact *cf.Artifact) error
	saved    []*cf.Artifact
}

func (m *mockArtifactSink) Save(artifact *cf.Artifact) error {
	m.saved = append(m.saved, artifact)
	if m.saveFunc != nil {
		return m.saveFunc(artifact)
	}
	return nil
}

var _ ArtifactSink = (*mockArtifactSink)(nil)

// flatModel builds a model where Predict returns GlobalMean plus a fixed
// per-item bias, so tests can pin exact rankings.
func flatModel(itemBias map[string]float64) *cf.Model {
	m := &cf.Model{
		Params:     cf.Params{MinRating: 1, MaxRating: 10},
		GlobalMean: 5,
		UserIndex:  map[string]int{},
		ItemIndex:  map[string]int{},
	}
	for id, bias := range itemBias {
		m.ItemIndex[id] = len(m.ItemBias)
		m.ItemBias = append(m.ItemBias, bias)
	}
	return m
}
