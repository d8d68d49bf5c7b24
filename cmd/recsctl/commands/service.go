package commands

import (
	"fmt"

	"github.com/vuminh/shoprec/internal/cf"
	"github.com/vuminh/shoprec/internal/config"
	"github.com/vuminh/shoprec/internal/database"
	logpkg "github.com/vuminh/shoprec/internal/logger"
	"github.com/vuminh/shoprec/internal/recs"
	"go.uber.org/zap"
)

// newService wires a recommendation service against DATABASE_URL and
// MODEL_PATH. The caller must invoke the returned cleanup function.
func newService() (*recs.Service, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	cleanup := func() { _ = db.Close() }

	logger := zap.NewNop()
	if verbose {
		logger, err = logpkg.NewDevelopmentLogger(true)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("build logger: %w", err)
		}
	}

	actionRepo := database.NewActionRepository(db)
	productRepo := database.NewProductRepository(db)
	profileRepo := database.NewProfileRepository(db)

	artifactStore := cf.NewArtifactStore(cfg.ModelPath)
	registry := recs.NewModelRegistry(artifactStore, logger)
	analyzer := recs.NewBehaviorAnalyzer(actionRepo, productRepo, cfg.AnalysisDays)
	trainer := recs.NewModelTrainer(actionRepo, artifactStore, logger)
	recommender := recs.NewRecommender(registry, actionRepo, productRepo)

	return recs.NewService(analyzer, trainer, recommender, registry, profileRepo, logger), cleanup, nil
}
