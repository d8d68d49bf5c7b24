package recs

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/vuminh/shoprec/internal/cf"
	"go.uber.org/zap"
)

// ArtifactSource loads the persisted model artifact.
type ArtifactSource interface {
	Load() (*cf.Artifact, error)
}

// ModelRegistry caches the active collaborative-filtering model in
// process memory. The first Model call loads the artifact lazily;
// subsequent calls read the cached instance without locking. Retraining
// does not refresh the cache: callers invoke Reload to pick up a new
// artifact. The cached model is immutable and shared by all readers;
// Reload swaps the reference wholesale so in-flight reads never observe
// a half-updated model.
type ModelRegistry struct {
	source ArtifactSource
	logger *zap.Logger

	mu     sync.Mutex
	cached atomic.Pointer[cf.Artifact]
}

// NewModelRegistry creates a new model registry
func NewModelRegistry(source ArtifactSource, logger *zap.Logger) *ModelRegistry {
	return &ModelRegistry{source: source, logger: logger}
}

// Model returns the cached model, loading it on first use. Returns
// ErrModelNotFound when no artifact has ever been trained.
func (r *ModelRegistry) Model() (*cf.Model, error) {
	if artifact := r.cached.Load(); artifact != nil {
		return artifact.Model, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another caller may have loaded while we waited for the lock.
	if artifact := r.cached.Load(); artifact != nil {
		return artifact.Model, nil
	}

	artifact, err := r.load()
	if err != nil {
		return nil, err
	}

	r.cached.Store(artifact)
	return artifact.Model, nil
}

// Reload replaces the cached model with the current persisted artifact.
// Call after a retrain completes to serve the new model.
func (r *ModelRegistry) Reload() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	artifact, err := r.load()
	if err != nil {
		return err
	}

	r.cached.Store(artifact)
	return nil
}

// Invalidate drops the cached model; the next Model call loads fresh.
func (r *ModelRegistry) Invalidate() {
	r.cached.Store(nil)
}

func (r *ModelRegistry) load() (*cf.Artifact, error) {
	artifact, err := r.source.Load()
	if err != nil {
		if errors.Is(err, cf.ErrArtifactNotFound) {
			return nil, ErrModelNotFound
		}
		return nil, fmt.Errorf("failed to load model artifact: %w", err)
	}

	r.logger.Info("model_loaded",
		zap.Time("trained_at", artifact.TrainedAt),
		zap.Int("interactions", artifact.Interactions),
		zap.Int("users", artifact.Model.Users()),
		zap.Int("items", artifact.Model.Items()),
	)

	return artifact, nil
}
