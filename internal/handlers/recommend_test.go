package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/vuminh/shoprec/internal/cf"
	"github.com/vuminh/shoprec/internal/database"
	"github.com/vuminh/shoprec/internal/models"
	"github.com/vuminh/shoprec/internal/recs"
	"go.uber.org/zap"
)

// mockActionRepo is a mock implementation of ActionRepositoryInterface
type mockActionRepo struct {
	insertFunc         func(ctx context.Context, action *models.RawAction) error
	findByCustomerFunc func(ctx context.Context, customerID uuid.UUID, types []models.ActionType, from, to time.Time) ([]*models.RawAction, error)
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
	return nil, nil
}

func (m *mockActionRepo) SeenProductIDs(ctx context.Context, customerID uuid.UUID) (map[string]struct{}, error) {
	return map[string]struct{}{}, nil
}

var _ database.ActionRepositoryInterface = (*mockActionRepo)(nil)

// mockProductRepo is a mock implementation of ProductRepositoryInterface
type mockProductRepo struct {
	allIDsFunc func(ctx context.Context) ([]uuid.UUID, error)
}

func (m *mockProductRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[string]*models.Product, error) {
	return map[string]*models.Product{}, nil
}

func (m *mockProductRepo) AllIDs(ctx context.Context) ([]uuid.UUID, error) {
	if m.allIDsFunc != nil {
		return m.allIDsFunc(ctx)
	}
	return nil, nil
}

func (m *mockProductRepo) AllKeywordSets(ctx context.Context) ([]models.ProductKeywords, error) {
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
	return nil, database.ErrProfileNotFound
}

var _ database.ProfileRepositoryInterface = (*mockProfileRepo)(nil)

// mockArtifactStore serves a fixed artifact, or not-found when nil
type mockArtifactStore struct {
	artifact *cf.Artifact
}

func (m *mockArtifactStore) Save(artifact *cf.Artifact) error {
	m.artifact = artifact
	return nil
}

func (m *mockArtifactStore) Load() (*cf.Artifact, error) {
	if m.artifact == nil {
		return nil, cf.ErrArtifactNotFound
	}
	return m.artifact, nil
}

func newTestRouter(actions *mockActionRepo, products *mockProductRepo, profiles *mockProfileRepo, store *mockArtifactStore) *mux.Router {
	logger := zap.NewNop()
	registry := recs.NewModelRegistry(store, logger)
	analyzer := recs.NewBehaviorAnalyzer(actions, products, 0)
	trainer := recs.NewModelTrainer(actions, store, logger)
	recommender := recs.NewRecommender(registry, actions, products)
	service := recs.NewService(analyzer, trainer, recommender, registry, profiles, logger)

	r := mux.NewRouter()
	handler := NewRecommendHandler(service, logger)
	handler.RegisterRoutes(r.PathPrefix("/recommendations").Subrouter())
	return r
}

func trainedArtifact(itemIDs ...string) *cf.Artifact {
	model := &cf.Model{
		Params:     cf.Params{MinRating: 1, MaxRating: 10},
		GlobalMean: 5,
		UserIndex:  map[string]int{},
		ItemIndex:  map[string]int{},
	}
	for i, id := range itemIDs {
		model.ItemIndex[id] = i
		model.ItemBias = append(model.ItemBias, float64(len(itemIDs)-i))
	}
	return &cf.Artifact{Model: model, TrainedAt: time.Now().UTC(), Interactions: len(itemIDs)}
}

func TestAnalyzeUserEndpoint(t *testing.T) {
	router := newTestRouter(&mockActionRepo{}, &mockProductRepo{}, &mockProfileRepo{}, &mockArtifactStore{})

	req := httptest.NewRequest("POST", "/recommendations/analyze/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAnalyzeUserEndpointMalformedID(t *testing.T) {
	router := newTestRouter(&mockActionRepo{}, &mockProductRepo{}, &mockProfileRepo{}, &mockArtifactStore{})

	req := httptest.NewRequest("POST", "/recommendations/analyze/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAnalyzeUserEndpointInvalidDays(t *testing.T) {
	router := newTestRouter(&mockActionRepo{}, &mockProductRepo{}, &mockProfileRepo{}, &mockArtifactStore{})

	req := httptest.NewRequest("POST", "/recommendations/analyze/"+uuid.NewString()+"?days=zero", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestBatchAnalyzeEndpoint(t *testing.T) {
	router := newTestRouter(&mockActionRepo{}, &mockProductRepo{}, &mockProfileRepo{}, &mockArtifactStore{})

	body, _ := json.Marshal(BatchAnalyzeRequest{
		UserIDs: []string{uuid.NewString(), uuid.NewString()},
	})
	req := httptest.NewRequest("POST", "/recommendations/batch-analyze", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data struct {
			Summary string `json:"summary"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.Summary != "analyzed 2/2 users successfully" {
		t.Errorf("unexpected summary %q", resp.Data.Summary)
	}
}

func TestBatchAnalyzeEndpointRejectsEmptyList(t *testing.T) {
	router := newTestRouter(&mockActionRepo{}, &mockProductRepo{}, &mockProfileRepo{}, &mockArtifactStore{})

	req := httptest.NewRequest("POST", "/recommendations/batch-analyze", bytes.NewBufferString(`{"user_ids":[]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetProfileEndpointNotFound(t *testing.T) {
	router := newTestRouter(&mockActionRepo{}, &mockProductRepo{}, &mockProfileRepo{}, &mockArtifactStore{})

	req := httptest.NewRequest("GET", "/recommendations/profile/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetProfileEndpointReturnsProfile(t *testing.T) {
	customerID := uuid.New()
	profiles := &mockProfileRepo{
		getByCustomerIDFunc: func(ctx context.Context, id uuid.UUID) (*models.RecommendationProfile, error) {
			return &models.RecommendationProfile{
				CustomerID: customerID,
				Keywords:   []string{"audio"},
			}, nil
		},
	}
	router := newTestRouter(&mockActionRepo{}, &mockProductRepo{}, profiles, &mockArtifactStore{})

	req := httptest.NewRequest("GET", "/recommendations/profile/"+customerID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Data models.RecommendationProfile `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.CustomerID != customerID {
		t.Errorf("expected customer %s, got %s", customerID, resp.Data.CustomerID)
	}
}

func TestRecommendProductsEndpointNoModel(t *testing.T) {
	router := newTestRouter(&mockActionRepo{}, &mockProductRepo{}, &mockProfileRepo{}, &mockArtifactStore{})

	req := httptest.NewRequest("GET", "/recommendations/products/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without a trained model, got %d", rec.Code)
	}
}

func TestRecommendProductsEndpoint(t *testing.T) {
	first := uuid.New()
	second := uuid.New()

	products := &mockProductRepo{
		allIDsFunc: func(ctx context.Context) ([]uuid.UUID, error) {
			return []uuid.UUID{second, first}, nil
		},
	}
	store := &mockArtifactStore{artifact: trainedArtifact(first.String(), second.String())}
	router := newTestRouter(&mockActionRepo{}, products, &mockProfileRepo{}, store)

	req := httptest.NewRequest("GET", "/recommendations/products/"+uuid.NewString()+"?top_n=1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data struct {
			ProductIDs []uuid.UUID `json:"product_ids"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Data.ProductIDs) != 1 || resp.Data.ProductIDs[0] != first {
		t.Errorf("expected top product %s, got %v", first, resp.Data.ProductIDs)
	}
}

func TestRecommendProductsEndpointInvalidTopN(t *testing.T) {
	router := newTestRouter(&mockActionRepo{}, &mockProductRepo{}, &mockProfileRepo{}, &mockArtifactStore{})

	req := httptest.NewRequest("GET", "/recommendations/products/"+uuid.NewString()+"?top_n=-2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTrainEndpointNoData(t *testing.T) {
	router := newTestRouter(&mockActionRepo{}, &mockProductRepo{}, &mockProfileRepo{}, &mockArtifactStore{})

	req := httptest.NewRequest("POST", "/recommendations/train", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Data struct {
			Summary string `json:"summary"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.Summary != recs.NoTrainingDataSummary {
		t.Errorf("expected no-data summary, got %q", resp.Data.Summary)
	}
}

func TestReloadEndpointNoModel(t *testing.T) {
	router := newTestRouter(&mockActionRepo{}, &mockProductRepo{}, &mockProfileRepo{}, &mockArtifactStore{})

	req := httptest.NewRequest("POST", "/recommendations/reload", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without a trained model, got %d", rec.Code)
	}
}

func TestInternalErrorsAreOpaque(t *testing.T) {
	profiles := &mockProfileRepo{
		getByCustomerIDFunc: func(ctx context.Context, id uuid.UUID) (*models.RecommendationProfile, error) {
			return nil, errors.New("pq: connection refused to db host 10.0.0.5")
		},
	}
	router := newTestRouter(&mockActionRepo{}, &mockProductRepo{}, profiles, &mockArtifactStore{})

	req := httptest.NewRequest("GET", "/recommendations/profile/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("10.0.0.5")) {
		t.Error("internal error details leaked to the client")
	}
}
