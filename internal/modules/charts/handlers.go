package charts

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"ativotrack/internal/domain"
	"ativotrack/internal/modules/analytics"
	"ativotrack/internal/modules/assets"
	"ativotrack/internal/modules/wallet"
)

// Handler serves the PNG chart endpoints. It runs the same analyses as
// the analytics handler and renders the results instead of returning
// JSON.
type Handler struct {
	analyticsService *analytics.Service
	walletService    *wallet.Service
	service          *Service
	assetRepo        *assets.AssetRepository
	quoteRepo        *assets.QuoteRepository
	log              zerolog.Logger
}

// NewHandler creates a new charts handler
func NewHandler(
	analyticsService *analytics.Service,
	walletService *wallet.Service,
	service *Service,
	assetRepo *assets.AssetRepository,
	quoteRepo *assets.QuoteRepository,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		analyticsService: analyticsService,
		walletService:    walletService,
		service:          service,
		assetRepo:        assetRepo,
		quoteRepo:        quoteRepo,
		log:              log.With().Str("handler", "charts").Logger(),
	}
}

// Routes mounts the chart endpoints on a router
func (h *Handler) Routes(r chi.Router) {
	r.Get("/asset/{ticker}/chart", h.HandleAssetChart)
	r.Get("/wallet/{id}/chart", h.HandleWalletChart)
}

// HandleAssetChart renders an asset's price history as a PNG
func (h *Handler) HandleAssetChart(w http.ResponseWriter, r *http.Request) {
	windowDays := h.windowDays(r)

	report, err := h.analyticsService.AnalyzeAsset(chi.URLParam(r, "ticker"), windowDays)
	if err != nil {
		h.writeAnalysisError(w, err)
		return
	}

	asset, err := h.assetRepo.GetByTicker(report.Ticker)
	if err != nil || asset == nil {
		h.writeError(w, http.StatusInternalServerError, "failed to load asset")
		return
	}

	if windowDays <= 0 {
		windowDays = analytics.DefaultWindowDays
	}
	now := time.Now().UTC()
	quotes, err := h.quoteRepo.GetRange(asset.ID, now.AddDate(0, 0, -windowDays), now)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	img, err := h.service.RenderPriceSeries(report, quotes)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writePNG(w, img)
}

// HandleWalletChart refreshes valuations, then renders the wallet's
// value distribution as a PNG
func (h *Handler) HandleWalletChart(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if _, err := h.walletService.RefreshValuations(id); err != nil {
		h.writeAnalysisError(w, err)
		return
	}

	report, err := h.analyticsService.AnalyzeWallet(id)
	if err != nil {
		h.writeAnalysisError(w, err)
		return
	}

	img, err := h.service.RenderWalletDistribution(report)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writePNG(w, img)
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

func (h *Handler) writePNG(w http.ResponseWriter, img []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(img); err != nil {
		h.log.Error().Err(err).Msg("Failed to write PNG response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
