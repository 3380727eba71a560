package analytics

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"ativotrack/internal/domain"
	"ativotrack/internal/modules/wallet"
)

// Handler handles analytics HTTP requests
type Handler struct {
	service       *Service
	walletService *wallet.Service
	log           zerolog.Logger
}

// NewHandler creates a new analytics handler
func NewHandler(service *Service, walletService *wallet.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service:       service,
		walletService: walletService,
		log:           log.With().Str("handler", "analytics").Logger(),
	}
}

// Routes mounts the analytics endpoints on a router
func (h *Handler) Routes(r chi.Router) {
	r.Get("/asset/{ticker}", h.HandleAnalyzeAsset)
	r.Post("/compare", h.HandleCompare)
	r.Get("/wallet/{id}", h.HandleAnalyzeWallet)
}

// HandleAnalyzeAsset returns the performance report of one asset
func (h *Handler) HandleAnalyzeAsset(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.AnalyzeAsset(chi.URLParam(r, "ticker"), h.windowDays(r))
	if err != nil {
		h.writeAnalysisError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, report)
}

type compareRequest struct {
	Tickers    []string `json:"tickers"`
	WindowDays int      `json:"window_days"`
}

// HandleCompare ranks a set of assets by Sharpe ratio
func (h *Handler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tickers := make([]string, 0, len(req.Tickers))
	for _, t := range req.Tickers {
		if strings.TrimSpace(t) != "" {
			tickers = append(tickers, t)
		}
	}
	if len(tickers) == 0 {
		h.writeError(w, http.StatusBadRequest, "tickers is required")
		return
	}

	result, err := h.service.CompareAssets(tickers, req.WindowDays)
	if err != nil {
		if errors.Is(err, domain.ErrNoComparableAssets) {
			h.writeError(w, http.StatusBadRequest, err.Error())
		} else {
			h.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// HandleAnalyzeWallet refreshes valuations, then returns the wallet's
// aggregate report
func (h *Handler) HandleAnalyzeWallet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if _, err := h.walletService.RefreshValuations(id); err != nil {
		h.writeAnalysisError(w, err)
		return
	}

	report, err := h.service.AnalyzeWallet(id)
	if err != nil {
		h.writeAnalysisError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, report)
}

func (h *Handler) windowDays(r *http.Request) int {
	if param := r.URL.Query().Get("window_days"); param != "" {
		if parsed, err := strconv.Atoi(param); err == nil && parsed > 0 {
			return parsed
		}
	}
	return 0
}

// writeAnalysisError maps domain errors to HTTP status codes
func (h *Handler) writeAnalysisError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrInsufficientData),
		errors.Is(err, domain.ErrEmptyWallet):
		h.writeError(w, http.StatusNotFound, err.Error())
	default:
		h.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// Helper methods

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
