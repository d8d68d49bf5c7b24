package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/vuminh/shoprec/internal/database"
	"github.com/vuminh/shoprec/internal/models"
	"github.com/vuminh/shoprec/internal/queue"
	"github.com/vuminh/shoprec/internal/validation"
	"go.uber.org/zap"
)

// analyzeDebounceDelay spaces out re-analysis after a burst of tracked
// actions: each ingest enqueues a delayed job, and the profile settles
// once the customer goes quiet.
const analyzeDebounceDelay = 30 * time.Second

// ActionHandler handles action ingestion requests
type ActionHandler struct {
	actions  database.ActionRepositoryInterface
	jobQueue queue.JobQueue // Optional; nil disables re-analysis enqueueing
	logger   *zap.Logger
}

// NewActionHandler creates a new action handler
func NewActionHandler(actions database.ActionRepositoryInterface, jobQueue queue.JobQueue, logger *zap.Logger) *ActionHandler {
	return &ActionHandler{actions: actions, jobQueue: jobQueue, logger: logger}
}

// RegisterRoutes registers action routes on the given router.
// The router should already have the /actions prefix.
func (h *ActionHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.TrackAction).Methods("POST")
}

// TrackActionRequest represents an action tracking request
type TrackActionRequest struct {
	CustomerID string `json:"customer_id" validate:"required,uuid"`
	ActionType string `json:"action_type" validate:"required,action_type"`
	ProductID  string `json:"product_id,omitempty" validate:"omitempty,uuid"`
	CategoryID string `json:"category_id,omitempty"`
	Keyword    string `json:"keyword,omitempty" validate:"omitempty,max=200"`
	StoreID    string `json:"store_id,omitempty"`
}

// TrackAction appends one interaction event and schedules a debounced
// profile re-analysis for the customer
func (h *ActionHandler) TrackAction(w http.ResponseWriter, r *http.Request) {
	var req TrackActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}

	if err := validation.Validate.Struct(&req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			respondJSONError(w, http.StatusBadRequest, "Validation Error", validationErrs.Error())
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Validation Error", "Invalid request")
		return
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Malformed customer id")
		return
	}

	action := &models.RawAction{
		CustomerID: customerID,
		ActionType: models.ActionType(req.ActionType),
		ProductID:  req.ProductID,
		CategoryID: req.CategoryID,
		Keyword:    validation.SanitizeText(req.Keyword),
		StoreID:    req.StoreID,
	}

	if err := h.actions.Insert(r.Context(), action); err != nil {
		h.logger.Error("failed_to_insert_action",
			zap.String("customer_id", customerID.String()),
			zap.Error(err),
		)
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "failed to record action")
		return
	}

	h.enqueueReanalysis(r, customerID)

	respondJSON(w, http.StatusCreated, map[string]any{"action_id": action.ID})
}

// enqueueReanalysis schedules a delayed analyze job. Failures are logged
// and swallowed: the action is already recorded, and the next ingest or
// scheduled batch run will refresh the profile.
func (h *ActionHandler) enqueueReanalysis(r *http.Request, customerID uuid.UUID) {
	if h.jobQueue == nil {
		return
	}

	job := queue.NewAnalyzeUserJob(customerID, 0)
	notBefore := time.Now().Add(analyzeDebounceDelay)
	job.NotBefore = &notBefore

	if err := h.jobQueue.Enqueue(r.Context(), job); err != nil {
		h.logger.Warn("failed_to_enqueue_analyze_job",
			zap.String("customer_id", customerID.String()),
			zap.Error(err),
		)
		return
	}

	h.logger.Debug("enqueued_analyze_job",
		zap.String("customer_id", customerID.String()),
		zap.Duration("debounce_delay", analyzeDebounceDelay),
	)
}
