package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/nmartinez/oddsedge/internal/health"
	"github.com/nmartinez/oddsedge/pkg/types"
	"go.uber.org/zap"
)

const (
	defaultValueBetLimit = 50
	maxValueBetLimit     = 500
)

// Store is the read-only storage surface the reporting API needs.
type Store interface {
	RecentValueBets(ctx context.Context, limit int) ([]types.ValueBet, error)
	OpenGames(ctx context.Context, now time.Time) ([]types.Game, error)
}

// DataChecker reports on the freshness and coverage of stored odds data.
type DataChecker interface {
	Run(ctx context.Context) *health.Report
}

// APIHandler handles HTTP requests for the reporting API.
type APIHandler struct {
	store   Store
	checker DataChecker
	logger  *zap.Logger
}

// NewAPIHandler creates a new reporting API handler.
func NewAPIHandler(store Store, checker DataChecker, logger *zap.Logger) *APIHandler {
	return &APIHandler{
		store:   store,
		checker: checker,
		logger:  logger,
	}
}

// ValueBetResponse represents a single value bet in API responses.
type ValueBetResponse struct {
	ID            string    `json:"id"`
	HomeTeam      string    `json:"home_team"`
	AwayTeam      string    `json:"away_team"`
	Selection     string    `json:"selection"`
	Bookmaker     string    `json:"bookmaker"`
	OfferedOdds   float64   `json:"offered_odds"`
	FairOdds      float64   `json:"fair_odds"`
	EdgePercent   float64   `json:"edge_percent"`
	MyProbability float64   `json:"probability"`
	Stake         float64   `json:"stake"`
	IdentifiedAt  time.Time `json:"identified_at"`
}

// GameResponse represents an upcoming game in API responses.
type GameResponse struct {
	ID           int64     `json:"id"`
	ExternalID   string    `json:"external_id"`
	League       string    `json:"league"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
	CommenceTime time.Time `json:"commence_time"`
}

// ErrorResponse represents an HTTP error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HandleValueBets handles GET /api/valuebets?limit=<n> requests.
func (h *APIHandler) HandleValueBets(w http.ResponseWriter, r *http.Request) {
	limit := defaultValueBetLimit

	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.writeError(w, "invalid limit parameter", http.StatusBadRequest)
			return
		}
		if parsed > maxValueBetLimit {
			parsed = maxValueBetLimit
		}
		limit = parsed
	}

	bets, err := h.store.RecentValueBets(r.Context(), limit)
	if err != nil {
		h.logger.Error("value-bets-query-failed", zap.Error(err))
		h.writeError(w, "storage unavailable", http.StatusInternalServerError)
		return
	}

	response := make([]ValueBetResponse, 0, len(bets))
	for _, vb := range bets {
		response = append(response, ValueBetResponse{
			ID:            vb.ID,
			HomeTeam:      vb.HomeTeam,
			AwayTeam:      vb.AwayTeam,
			Selection:     vb.Selection,
			Bookmaker:     vb.Bookmaker,
			OfferedOdds:   vb.OfferedOdds,
			FairOdds:      vb.FairOdds,
			EdgePercent:   vb.EdgePercent,
			MyProbability: vb.MyProbability,
			Stake:         vb.Stake,
			IdentifiedAt:  vb.IdentifiedAt,
		})
	}

	h.writeJSON(w, response)
}

// HandleGames handles GET /api/games requests, returning upcoming unsettled games.
func (h *APIHandler) HandleGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.store.OpenGames(r.Context(), time.Now().UTC())
	if err != nil {
		h.logger.Error("games-query-failed", zap.Error(err))
		h.writeError(w, "storage unavailable", http.StatusInternalServerError)
		return
	}

	response := make([]GameResponse, 0, len(games))
	for _, g := range games {
		response = append(response, GameResponse{
			ID:           g.ID,
			ExternalID:   g.ExternalID,
			League:       g.League,
			HomeTeam:     g.HomeTeam,
			AwayTeam:     g.AwayTeam,
			CommenceTime: g.CommenceTime,
		})
	}

	h.writeJSON(w, response)
}

// HandleDataHealth handles GET /api/health/data requests. Unlike /health,
// which only reports process liveness, this runs the data-quality checks
// against storage. A degraded report returns 503 so an external monitor
// can alert on stale or thin odds data.
func (h *APIHandler) HandleDataHealth(w http.ResponseWriter, r *http.Request) {
	report := h.checker.Run(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if report.Healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	err := json.NewEncoder(w).Encode(report)
	if err != nil {
		h.logger.Error("failed-to-encode-response", zap.Error(err))
	}
}

// writeJSON writes a 200 JSON response.
func (h *APIHandler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		h.logger.Error("failed-to-encode-response", zap.Error(err))
	}
}

// writeError writes a JSON error response.
func (h *APIHandler) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{Error: message}
	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		h.logger.Error("failed-to-encode-error-response", zap.Error(err))
	}
}
