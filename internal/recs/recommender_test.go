package recs

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/vuminh/shoprec/internal/cf"
	"github.com/vuminh/shoprec/internal/models"
	"go.uber.org/zap"
)

func recommenderWithModel(t *testing.T, model *cf.Model, actions *mockActionRepo, products *mockProductRepo) *Recommender {
	t.Helper()
	source := &mockArtifactSource{
		loadFunc: func() (*cf.Artifact, error) {
			return &cf.Artifact{Model: model}, nil
		},
	}
	registry := NewModelRegistry(source, zap.NewNop())
	return NewRecommender(registry, actions, products)
}

func TestRecommendProductsExcludesSeenAndRanks(t *testing.T) {
	customerID := uuid.New()
	seen := uuid.New()
	best := uuid.New()
	good := uuid.New()
	cold := uuid.New()

	model := flatModel(map[string]float64{
		best.String(): 3,
		good.String(): 1,
		seen.String(): 5,
	})

	actions := &mockActionRepo{
		seenProductIDsFunc: func(ctx context.Context, id uuid.UUID) (map[string]struct{}, error) {
			return map[string]struct{}{seen.String(): {}}, nil
		},
	}
	products := &mockProductRepo{
		allIDsFunc: func(ctx context.Context) ([]uuid.UUID, error) {
			return []uuid.UUID{seen, cold, good, best}, nil
		},
	}

	r := recommenderWithModel(t, model, actions, products)

	got, err := r.RecommendProducts(context.Background(), customerID, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// cold has no item bias and falls back to the global mean, below
	// best and good.
	want := []uuid.UUID{best, good, cold}
	if len(got) != len(want) {
		t.Fatalf("expected %d products, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestRecommendProductsExcludesSeenInAnyIDForm(t *testing.T) {
	customerID := uuid.New()
	seen := uuid.New()
	fresh := uuid.New()

	actions := &mockActionRepo{
		seenProductIDsFunc: func(ctx context.Context, id uuid.UUID) (map[string]struct{}, error) {
			// Interaction recorded with an uppercase reference.
			return map[string]struct{}{strings.ToUpper(seen.String()): {}}, nil
		},
	}
	products := &mockProductRepo{
		allIDsFunc: func(ctx context.Context) ([]uuid.UUID, error) {
			return []uuid.UUID{seen, fresh}, nil
		},
	}

	r := recommenderWithModel(t, flatModel(nil), actions, products)

	got, err := r.RecommendProducts(context.Background(), customerID, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != fresh {
		t.Errorf("expected seen product excluded regardless of id form, got %v", got)
	}
}

func TestRecommendProductsTruncatesToTopN(t *testing.T) {
	customerID := uuid.New()
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	model := flatModel(nil)
	products := &mockProductRepo{
		allIDsFunc: func(ctx context.Context) ([]uuid.UUID, error) { return ids, nil },
	}

	r := recommenderWithModel(t, model, &mockActionRepo{}, products)

	got, err := r.RecommendProducts(context.Background(), customerID, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 products, got %d", len(got))
	}

	// All scores tie at the global mean, so catalog order holds.
	if got[0] != ids[0] || got[1] != ids[1] {
		t.Errorf("expected stable catalog order, got %v", got)
	}
}

func TestRecommendProductsRejectsNonPositiveTopN(t *testing.T) {
	r := recommenderWithModel(t, flatModel(nil), &mockActionRepo{}, &mockProductRepo{})

	if _, err := r.RecommendProducts(context.Background(), uuid.New(), 0); !IsInvalidInput(err) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestRecommendProductsRequiresModel(t *testing.T) {
	registry := NewModelRegistry(&mockArtifactSource{}, zap.NewNop())
	r := NewRecommender(registry, &mockActionRepo{}, &mockProductRepo{})

	if _, err := r.RecommendProducts(context.Background(), uuid.New(), 5); !IsModelNotFound(err) {
		t.Fatalf("expected model not found error, got %v", err)
	}
}

func TestRecommendKeywordsFrequencyRanking(t *testing.T) {
	customerID := uuid.New()
	pa := uuid.New()
	pb := uuid.New()
	pc := uuid.New()

	model := flatModel(map[string]float64{
		pa.String(): 3,
		pb.String(): 2,
		pc.String(): 1,
	})

	products := &mockProductRepo{
		allKeywordSetsFunc: func(ctx context.Context) ([]models.ProductKeywords, error) {
			return []models.ProductKeywords{
				{ID: pc, Keywords: []string{"z"}},
				{ID: pa, Keywords: []string{"x", "y"}},
				{ID: pb, Keywords: []string{"x", "y"}},
			}, nil
		},
	}

	r := recommenderWithModel(t, model, &mockActionRepo{}, products)

	got, err := r.RecommendKeywords(context.Background(), customerID, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Candidates flatten score-first as x, y, x, y, z; frequency then
	// ranks x and y (2 occurrences) ahead of z (1).
	want := []string{"x", "y"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestRecommendKeywordsSkipsSeenAndEmpty(t *testing.T) {
	customerID := uuid.New()
	seen := uuid.New()
	bare := uuid.New()
	fresh := uuid.New()

	model := flatModel(nil)

	actions := &mockActionRepo{
		seenProductIDsFunc: func(ctx context.Context, id uuid.UUID) (map[string]struct{}, error) {
			return map[string]struct{}{seen.String(): {}}, nil
		},
	}
	products := &mockProductRepo{
		allKeywordSetsFunc: func(ctx context.Context) ([]models.ProductKeywords, error) {
			return []models.ProductKeywords{
				{ID: seen, Keywords: []string{"hidden"}},
				{ID: bare, Keywords: nil},
				{ID: fresh, Keywords: []string{"visible"}},
			}, nil
		},
	}

	r := recommenderWithModel(t, model, actions, products)

	got, err := r.RecommendKeywords(context.Background(), customerID, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != "visible" {
		t.Errorf("expected only keywords from unseen keyworded products, got %v", got)
	}
}

func TestRecommendKeywordsRejectsNonPositiveTopN(t *testing.T) {
	r := recommenderWithModel(t, flatModel(nil), &mockActionRepo{}, &mockProductRepo{})

	if _, err := r.RecommendKeywords(context.Background(), uuid.New(), -1); !IsInvalidInput(err) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}
