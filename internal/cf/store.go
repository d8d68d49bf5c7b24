package cf

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrArtifactNotFound is returned by Load when no model has ever been
// trained. Distinct from I/O failures so callers can map it to a
// not-found condition.
var ErrArtifactNotFound = errors.New("model artifact not found")

// Artifact is the serialized form of a trained model plus training
// metadata. Replaced wholesale on every retrain.
type Artifact struct {
	Model        *Model
	TrainedAt    time.Time
	Interactions int
}

// ArtifactStore persists model artifacts at a fixed path.
type ArtifactStore struct {
	path string
}

// NewArtifactStore creates a store writing to the given file path.
func NewArtifactStore(path string) *ArtifactStore {
	return &ArtifactStore{path: path}
}

// Path returns the artifact location.
func (s *ArtifactStore) Path() string { return s.path }

// Save writes the artifact atomically: encode to a temp file in the same
// directory, then rename over the previous artifact. Concurrent readers
// never observe a partially written file.
func (s *ArtifactStore) Save(artifact *Artifact) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp artifact: %w", err)
	}
	tmpName := tmp.Name()

	if err := gob.NewEncoder(tmp).Encode(artifact); err != nil {
		if closeErr := tmp.Close(); closeErr != nil {
			_ = closeErr
		}
		if removeErr := os.Remove(tmpName); removeErr != nil {
			_ = removeErr
		}
		return fmt.Errorf("failed to encode artifact: %w", err)
	}

	if err := tmp.Close(); err != nil {
		if removeErr := os.Remove(tmpName); removeErr != nil {
			_ = removeErr
		}
		return fmt.Errorf("failed to close temp artifact: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		if removeErr := os.Remove(tmpName); removeErr != nil {
			_ = removeErr
		}
		return fmt.Errorf("failed to replace artifact: %w", err)
	}

	return nil
}

// Load reads the current artifact. Returns ErrArtifactNotFound when no
// artifact exists at the store path.
func (s *ArtifactStore) Load() (*Artifact, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrArtifactNotFound
		}
		return nil, fmt.Errorf("failed to open artifact: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			_ = err
		}
	}()

	var artifact Artifact
	if err := gob.NewDecoder(f).Decode(&artifact); err != nil {
		return nil, fmt.Errorf("failed to decode artifact: %w", err)
	}

	return &artifact, nil
}
