package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/match-predictor-service/internal/models"
	"github.com/cypherlabdev/match-predictor-service/internal/report"
	"github.com/cypherlabdev/match-predictor-service/internal/service"
	"github.com/cypherlabdev/match-predictor-service/pkg/poisson"
)

// maxBodyBytes bounds the POST /api/v1/predictions body
const maxBodyBytes = 1 << 20

// PredictionHandler handles HTTP requests for match predictions
type PredictionHandler struct {
	service *service.PredictionService
	logger  zerolog.Logger
}

// NewPredictionHandler creates a new prediction HTTP handler
func NewPredictionHandler(service *service.PredictionService, logger zerolog.Logger) *PredictionHandler {
	return &PredictionHandler{
		service: service,
		logger:  logger.With().Str("component", "prediction_handler").Logger(),
	}
}

// NewRouter builds the full HTTP surface: health, readiness, metrics and the API,
// wrapped with CORS
func NewRouter(h *PredictionHandler, metricsHandler http.Handler) http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/ready", h.handleReady).Methods(http.MethodGet)
	if metricsHandler != nil {
		router.Handle("/metrics", metricsHandler).Methods(http.MethodGet)
	}

	h.RegisterRoutes(router)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})

	return c.Handler(router)
}

// apiPrefix is the base path of the versioned API
const apiPrefix = "/api/v1"

// RegisterRoutes registers the API routes on router. Routes sit on router itself
// so a method mismatch answers 405.
func (h *PredictionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc(apiPrefix+"/teams", h.handleGetTeams).Methods(http.MethodGet)
	router.HandleFunc(apiPrefix+"/fixtures/remaining", h.handleGetRemainingFixtures).Methods(http.MethodGet)
	router.HandleFunc(apiPrefix+"/predictions", h.handleGetCachedPredictions).Methods(http.MethodGet)
	router.HandleFunc(apiPrefix+"/predictions", h.handlePredictBatch).Methods(http.MethodPost)
	router.HandleFunc(apiPrefix+"/predictions/remaining", h.handlePredictRemaining).Methods(http.MethodPost)
	router.HandleFunc(apiPrefix+"/predictions/{home}/{away}", h.handleGetPrediction).Methods(http.MethodGet)
}

// handleHealth returns 200 if the service is running
func (h *PredictionHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// handleReady returns 200 once a model is fitted and the cache answers
func (h *PredictionHandler) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Ready(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(err.Error()))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("READY"))
}

// handleGetTeams handles GET /api/v1/teams
func (h *PredictionHandler) handleGetTeams(w http.ResponseWriter, r *http.Request) {
	model, err := h.service.Model()
	if err != nil {
		h.serviceError(w, err, http.StatusNotFound)
		return
	}

	teams := make([]models.TeamStrength, 0, len(model.Teams))
	for _, name := range model.Teams {
		teams = append(teams, model.Strengths[name])
	}

	h.jsonResponse(w, http.StatusOK, TeamsResponse{
		ModelID:        model.ID,
		Matches:        model.MatchCount,
		LeagueAvgGoals: model.League.LeagueAvgGoals,
		HomeAdvantage:  model.League.HomeAdvantage,
		Teams:          teams,
	})
}

// handleGetRemainingFixtures handles GET /api/v1/fixtures/remaining
func (h *PredictionHandler) handleGetRemainingFixtures(w http.ResponseWriter, r *http.Request) {
	fixtures, err := h.service.RemainingFixtures()
	if err != nil {
		h.serviceError(w, err, http.StatusNotFound)
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"count":    len(fixtures),
		"fixtures": fixtures,
	})
}

// handleGetPrediction handles GET /api/v1/predictions/{home}/{away}
func (h *PredictionHandler) handleGetPrediction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	fixture := models.Fixture{HomeTeam: vars["home"], AwayTeam: vars["away"]}

	prediction, err := h.service.Predict(r.Context(), fixture)
	if err != nil {
		h.logger.Debug().
			Err(err).
			Str("fixture", fixture.Label()).
			Msg("prediction failed")
		h.serviceError(w, err, http.StatusNotFound)
		return
	}

	h.jsonResponse(w, http.StatusOK, ToPredictionResponse(prediction))
}

// handleGetCachedPredictions handles GET /api/v1/predictions
func (h *PredictionHandler) handleGetCachedPredictions(w http.ResponseWriter, r *http.Request) {
	predictions, err := h.service.CachedPredictions(r.Context())
	if err != nil {
		h.serviceError(w, err, http.StatusNotFound)
		return
	}

	h.jsonResponse(w, http.StatusOK, BatchResponse{
		Count:       len(predictions),
		Predictions: toPredictionResponses(predictions),
	})
}

// handlePredictBatch handles POST /api/v1/predictions
func (h *PredictionHandler) handlePredictBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Fixtures) == 0 {
		h.errorResponse(w, http.StatusBadRequest, "fixtures are required")
		return
	}
	for _, f := range req.Fixtures {
		if f.HomeTeam == "" || f.AwayTeam == "" {
			h.errorResponse(w, http.StatusBadRequest, "home_team and away_team are required")
			return
		}
	}

	batch, err := h.service.PredictBatch(r.Context(), req.Fixtures)
	if err != nil {
		h.serviceError(w, err, http.StatusUnprocessableEntity)
		return
	}

	h.jsonResponse(w, http.StatusOK, ToBatchResponse(batch))
}

// handlePredictRemaining handles POST /api/v1/predictions/remaining
func (h *PredictionHandler) handlePredictRemaining(w http.ResponseWriter, r *http.Request) {
	batch, err := h.service.PredictRemaining(r.Context())
	if err != nil {
		h.serviceError(w, err, http.StatusUnprocessableEntity)
		return
	}

	h.jsonResponse(w, http.StatusOK, ToBatchResponse(batch))
}

// serviceError maps service errors to status codes. unknownStatus is used for
// fixtures naming teams absent from the history.
func (h *PredictionHandler) serviceError(w http.ResponseWriter, err error, unknownStatus int) {
	var unknown *poisson.UnknownTeamError
	switch {
	case errors.As(err, &unknown):
		h.jsonResponse(w, unknownStatus, map[string]interface{}{
			"error":         err.Error(),
			"unknown_teams": unknown.Teams,
		})
	case errors.Is(err, service.ErrModelNotReady):
		h.errorResponse(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, poisson.ErrInvalidParams):
		h.errorResponse(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("request failed")
		h.errorResponse(w, http.StatusInternalServerError, "internal error")
	}
}

// jsonResponse writes a JSON response
func (h *PredictionHandler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// errorResponse writes a JSON error response
func (h *PredictionHandler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{
		"error": message,
	})
}

// BatchRequest is the body of POST /api/v1/predictions
type BatchRequest struct {
	Fixtures []models.Fixture `json:"fixtures"`
}

// TeamsResponse describes the fitted model
type TeamsResponse struct {
	ModelID        string                `json:"model_id"`
	Matches        int                   `json:"matches"`
	LeagueAvgGoals float64               `json:"league_avg_goals"`
	HomeAdvantage  float64               `json:"home_advantage"`
	Teams          []models.TeamStrength `json:"teams"`
}

// PredictionResponse represents the API response for one fixture
type PredictionResponse struct {
	ID                 string  `json:"id"`
	RunID              string  `json:"run_id"`
	ModelID            string  `json:"model_id"`
	Match              string  `json:"match"`
	HomeTeam           string  `json:"home_team"`
	AwayTeam           string  `json:"away_team"`
	LambdaHome         float64 `json:"lambda_home"`
	LambdaAway         float64 `json:"lambda_away"`
	ExpectedGoals      string  `json:"expected_goals"`
	MostLikelyScore    string  `json:"most_likely_score"`
	ScoreProbability   string  `json:"score_probability"`
	HomeWinProb        float64 `json:"home_win_prob"`
	DrawProb           float64 `json:"draw_prob"`
	AwayWinProb        float64 `json:"away_win_prob"`
	PredictedOutcome   string  `json:"predicted_outcome"`
	OutcomeProbability string  `json:"outcome_probability"`
	WinDrawLoss        string  `json:"win_draw_loss"`
	PredictedAt        string  `json:"predicted_at"`
}

// BatchResponse represents the API response for several fixtures
type BatchResponse struct {
	RunID       string                `json:"run_id,omitempty"`
	ModelID     string                `json:"model_id,omitempty"`
	Count       int                   `json:"count"`
	Predictions []*PredictionResponse `json:"predictions"`
}

// ToPredictionResponse converts a Prediction to API response format
func ToPredictionResponse(p *models.Prediction) *PredictionResponse {
	row := report.NewRow(p)
	return &PredictionResponse{
		ID:                 p.ID.String(),
		RunID:              p.RunID.String(),
		ModelID:            p.ModelID,
		Match:              row.Match,
		HomeTeam:           p.Fixture.HomeTeam,
		AwayTeam:           p.Fixture.AwayTeam,
		LambdaHome:         p.ExpectedGoals.LambdaHome,
		LambdaAway:         p.ExpectedGoals.LambdaAway,
		ExpectedGoals:      row.ExpectedGoals,
		MostLikelyScore:    row.MostLikelyScore,
		ScoreProbability:   row.ScoreProbability,
		HomeWinProb:        p.Summary.HomeWinProb,
		DrawProb:           p.Summary.DrawProb,
		AwayWinProb:        p.Summary.AwayWinProb,
		PredictedOutcome:   row.PredictedOutcome,
		OutcomeProbability: row.OutcomeProbability,
		WinDrawLoss:        row.WinDrawLoss,
		PredictedAt:        p.PredictedAt.Format(time.RFC3339),
	}
}

// ToBatchResponse converts a PredictionBatch to API response format
func ToBatchResponse(batch *models.PredictionBatch) *BatchResponse {
	resp := &BatchResponse{
		ModelID:     batch.ModelID,
		Count:       len(batch.Predictions),
		Predictions: toPredictionResponses(batch.Predictions),
	}
	if len(batch.Predictions) > 0 {
		resp.RunID = batch.RunID.String()
	}
	return resp
}

func toPredictionResponses(predictions []*models.Prediction) []*PredictionResponse {
	out := make([]*PredictionResponse, 0, len(predictions))
	for _, p := range predictions {
		out = append(out, ToPredictionResponse(p))
	}
	return out
}
