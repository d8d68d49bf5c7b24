package queue

import (
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypeAnalyzeUser is a job that re-analyzes one customer's behavior profile
	JobTypeAnalyzeUser JobType = "analyze_user"
	// JobTypeTrainModel is a job that retrains the collaborative-filtering model
	JobTypeTrainModel JobType = "train_model"
)

// Job represents a job in the queue
type Job struct {
	ID         uuid.UUID  `json:"id"`
	Type       JobType    `json:"type"`
	CustomerID *uuid.UUID `json:"customer_id,omitempty"` // Required for analyze jobs
	Days       int        `json:"days,omitempty"`        // Analysis window, 0 = default
	NotBefore  *time.Time `json:"not_before,omitempty"`  // Earliest time to process job (nil = immediate)
	NotAfter   *time.Time `json:"not_after,omitempty"`   // Latest time to process job (nil = no expiration)
	CreatedAt  time.Time  `json:"created_at"`
	RetryCount int        `json:"retry_count"`
	MaxRetries int        `json:"max_retries"`
}

// NewAnalyzeUserJob creates a job that re-analyzes one customer
func NewAnalyzeUserJob(customerID uuid.UUID, days int) *Job {
	return &Job{
		ID:         uuid.New(),
		Type:       JobTypeAnalyzeUser,
		CustomerID: &customerID,
		Days:       days,
		CreatedAt:  time.Now(),
		RetryCount: 0,
		MaxRetries: 3,
	}
}

// NewTrainModelJob creates a model retraining job
func NewTrainModelJob() *Job {
	return &Job{
		ID:         uuid.New(),
		Type:       JobTypeTrainModel,
		CreatedAt:  time.Now(),
		RetryCount: 0,
		MaxRetries: 1,
	}
}

// ShouldProcess checks if the job should be processed now
func (j *Job) ShouldProcess() bool {
	now := time.Now()

	// Check NotBefore
	if j.NotBefore != nil && now.Before(*j.NotBefore) {
		return false
	}

	// Check NotAfter
	if j.NotAfter != nil && now.After(*j.NotAfter) {
		return false
	}

	return true
}

// IsExpired checks if the job has expired
func (j *Job) IsExpired() bool {
	if j.NotAfter == nil {
		return false
	}

	return time.Now().After(*j.NotAfter)
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry increments the retry count
func (j *Job) IncrementRetry() {
	j.RetryCount++
}
