package workers

import (
	"context"
	"fmt"

	logpkg "github.com/vuminh/shoprec/internal/logger"
	"github.com/vuminh/shoprec/internal/queue"
	"github.com/vuminh/shoprec/internal/recs"
	"go.uber.org/zap"
)

// RecsProcessor processes recommendation jobs from the queue: per-user
// profile re-analysis and model retraining.
type RecsProcessor struct {
	service  *recs.Service
	jobQueue queue.JobQueue // For re-enqueueing retryable failures
	logger   *zap.Logger
}

// NewRecsProcessor creates a new recommendation job processor
func NewRecsProcessor(service *recs.Service, jobQueue queue.JobQueue, logger *zap.Logger) *RecsProcessor {
	return &RecsProcessor{
		service:  service,
		jobQueue: jobQueue,
		logger:   logger,
	}
}

// ProcessJob dispatches a message to its handler and acknowledges it.
// Permanent failures (bad input, malformed jobs) go to the DLQ; transient
// failures are re-enqueued until the job's retry budget is exhausted.
func (p *RecsProcessor) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()

	p.logger.Debug("processing_job",
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", string(job.Type)),
	)

	var err error
	switch job.Type {
	case queue.JobTypeAnalyzeUser:
		err = p.processAnalyzeUser(ctx, job)
	case queue.JobTypeTrainModel:
		err = p.processTrainModel(ctx, job)
	default:
		// Unknown job type: never retryable, straight to the DLQ.
		if nackErr := msg.Nack(false); nackErr != nil {
			_ = nackErr
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}

	if err == nil {
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack job %s: %w", job.ID, ackErr)
		}
		return nil
	}

	if recs.IsInvalidInput(err) || !job.CanRetry() {
		p.logger.Warn("job_failed_permanently",
			zap.String("job_id", job.ID.String()),
			zap.String("job_type", string(job.Type)),
			zap.Int("retry_count", job.RetryCount),
			zap.String("error", logpkg.SanitizeError(err)),
		)
		if nackErr := msg.Nack(false); nackErr != nil {
			_ = nackErr
		}
		return err
	}

	// Transient failure: ack the delivery and re-enqueue a fresh copy
	// with an incremented retry count.
	job.IncrementRetry()
	if enqueueErr := p.jobQueue.Enqueue(ctx, job); enqueueErr != nil {
		// Could not re-enqueue; requeue the original delivery instead.
		if nackErr := msg.Nack(true); nackErr != nil {
			_ = nackErr
		}
		return fmt.Errorf("failed to re-enqueue job %s: %w", job.ID, enqueueErr)
	}
	if ackErr := msg.Ack(); ackErr != nil {
		return fmt.Errorf("failed to ack retried job %s: %w", job.ID, ackErr)
	}

	p.logger.Info("job_requeued_for_retry",
		zap.String("job_id", job.ID.String()),
		zap.Int("retry_count", job.RetryCount),
		zap.Error(err),
	)
	return nil
}

func (p *RecsProcessor) processAnalyzeUser(ctx context.Context, job *queue.Job) error {
	if job.CustomerID == nil {
		return fmt.Errorf("%w: customer_id is required for analyze jobs", recs.ErrInvalidInput)
	}

	if err := p.service.AnalyzeUser(ctx, job.CustomerID.String(), job.Days); err != nil {
		return fmt.Errorf("failed to analyze user: %w", err)
	}

	p.logger.Info("analyze_job_completed",
		zap.String("customer_id", job.CustomerID.String()),
	)
	return nil
}

func (p *RecsProcessor) processTrainModel(ctx context.Context, job *queue.Job) error {
	summary, err := p.service.TrainModel(ctx)
	if err != nil {
		return fmt.Errorf("failed to train model: %w", err)
	}

	// The registry serves the stale model until explicitly reloaded;
	// refresh here so the worker process serves fresh scores too.
	if err := p.service.ReloadModel(); err != nil && !recs.IsModelNotFound(err) {
		p.logger.Warn("model_reload_after_training_failed", zap.Error(err))
	}

	p.logger.Info("train_job_completed", zap.String("summary", summary))
	return nil
}
