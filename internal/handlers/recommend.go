package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/vuminh/shoprec/internal/database"
	"github.com/vuminh/shoprec/internal/recs"
	"github.com/vuminh/shoprec/internal/validation"
	"go.uber.org/zap"
)

const (
	// DefaultTopN is the result count when the caller does not specify one
	DefaultTopN = 10
	// MaxTopN caps the result count per request
	MaxTopN = 100
	// MaxBatchUsers caps the number of users per batch analysis request
	MaxBatchUsers = 1000
)

// RecommendHandler handles recommendation-related requests
type RecommendHandler struct {
	service *recs.Service
	logger  *zap.Logger
}

// NewRecommendHandler creates a new recommendation handler
func NewRecommendHandler(service *recs.Service, logger *zap.Logger) *RecommendHandler {
	return &RecommendHandler{service: service, logger: logger}
}

// RegisterRoutes registers recommendation routes on the given router.
// The router should already have the /recommendations prefix.
func (h *RecommendHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/analyze/{userID}", h.AnalyzeUser).Methods("POST")
	r.HandleFunc("/batch-analyze", h.BatchAnalyze).Methods("POST")
	r.HandleFunc("/profile/{userID}", h.GetProfile).Methods("GET")
	r.HandleFunc("/train", h.TrainModel).Methods("POST")
	r.HandleFunc("/reload", h.ReloadModel).Methods("POST")
	r.HandleFunc("/products/{userID}", h.RecommendProducts).Methods("GET")
	r.HandleFunc("/keywords/{userID}", h.RecommendKeywords).Methods("GET")
}

// BatchAnalyzeRequest represents a batch analysis request
type BatchAnalyzeRequest struct {
	UserIDs []string `json:"user_ids" validate:"required,min=1,max=1000,dive,uuid"`
	Days    int      `json:"days" validate:"omitempty,min=1,max=365"`
}

// AnalyzeUser analyzes a single user's behavior and stores the profile
func (h *RecommendHandler) AnalyzeUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]
	days, ok := parseDaysParam(w, r)
	if !ok {
		return
	}

	if err := h.service.AnalyzeUser(r.Context(), userID, days); err != nil {
		h.respondServiceError(w, err, "failed to analyze user")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"analyzed": true, "user_id": userID})
}

// BatchAnalyze analyzes many users with per-user failure isolation
func (h *RecommendHandler) BatchAnalyze(w http.ResponseWriter, r *http.Request) {
	var req BatchAnalyzeRequest
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

	summary := h.service.BatchAnalyze(r.Context(), req.UserIDs, req.Days)
	respondJSON(w, http.StatusOK, map[string]any{"summary": summary})
}

// GetProfile returns the stored recommendation profile for a user
func (h *RecommendHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, err, "failed to get profile")
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// TrainModel retrains the collaborative-filtering model synchronously
func (h *RecommendHandler) TrainModel(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.TrainModel(r.Context())
	if err != nil {
		h.respondServiceError(w, err, "failed to train model")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"summary": summary})
}

// ReloadModel swaps the cached model for the latest trained artifact
func (h *RecommendHandler) ReloadModel(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ReloadModel(); err != nil {
		h.respondServiceError(w, err, "failed to reload model")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"reloaded": true})
}

// RecommendProducts returns the ranked unseen product ids for a user
func (h *RecommendHandler) RecommendProducts(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]
	topN, ok := parseTopNParam(w, r)
	if !ok {
		return
	}

	productIDs, err := h.service.RecommendProducts(r.Context(), userID, topN)
	if err != nil {
		h.respondServiceError(w, err, "failed to recommend products")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"product_ids": productIDs})
}

// RecommendKeywords returns the ranked recommended keywords for a user
func (h *RecommendHandler) RecommendKeywords(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]
	topN, ok := parseTopNParam(w, r)
	if !ok {
		return
	}

	keywords, err := h.service.RecommendKeywords(r.Context(), userID, topN)
	if err != nil {
		h.respondServiceError(w, err, "failed to recommend keywords")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"keywords": keywords})
}

// respondServiceError maps service errors to HTTP responses: input
// errors to 400, absence conditions to 404, everything else to 500.
func (h *RecommendHandler) respondServiceError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case recs.IsInvalidInput(err):
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
	case recs.IsModelNotFound(err):
		respondJSONError(w, http.StatusNotFound, "Not Found", "No trained model available")
	case errors.Is(err, database.ErrProfileNotFound):
		respondJSONError(w, http.StatusNotFound, "Not Found", "No profile found for user")
	default:
		h.logger.Error("request_failed", zap.String("context", logMsg), zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", logMsg)
	}
}

func parseTopNParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	topN := DefaultTopN
	if raw := r.URL.Query().Get("top_n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "top_n must be a positive integer")
			return 0, false
		}
		topN = parsed
	}
	if topN > MaxTopN {
		topN = MaxTopN
	}
	return topN, true
}

func parseDaysParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	days := 0 // 0 = service default window
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "days must be a positive integer")
			return 0, false
		}
		days = parsed
	}
	return days, true
}
