package assets

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"ativotrack/internal/domain"
)

// Handler handles asset HTTP requests
type Handler struct {
	assetRepo    *AssetRepository
	quoteRepo    *QuoteRepository
	dividendRepo *DividendRepository
	service      *Service
	log          zerolog.Logger
}

// NewHandler creates a new assets handler
func NewHandler(
	assetRepo *AssetRepository,
	quoteRepo *QuoteRepository,
	dividendRepo *DividendRepository,
	service *Service,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		assetRepo:    assetRepo,
		quoteRepo:    quoteRepo,
		dividendRepo: dividendRepo,
		service:      service,
		log:          log.With().Str("handler", "assets").Logger(),
	}
}

// Routes mounts the asset endpoints on a router
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)
	r.Get("/{ticker}", h.HandleGet)
	r.Get("/{ticker}/quotes", h.HandleGetQuotes)
	r.Get("/{ticker}/dividends", h.HandleGetDividends)
	r.Post("/{ticker}/sync", h.HandleSync)
}

// HandleList returns all active assets, optionally filtered by kind
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.assetRepo.List(r.URL.Query().Get("kind"))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []Asset{}
	}

	h.writeJSON(w, http.StatusOK, list)
}

// createAssetRequest is the POST /assets payload
type createAssetRequest struct {
	Ticker    string  `json:"ticker"`
	ShortName string  `json:"short_name"`
	LongName  *string `json:"long_name"`
	Kind      string  `json:"kind"`
	Sector    *string `json:"sector"`
	Subsector *string `json:"subsector"`
	Currency  string  `json:"currency"`
}

// HandleCreate registers a new asset
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Ticker == "" || req.ShortName == "" || req.Kind == "" {
		h.writeError(w, http.StatusBadRequest, "ticker, short_name and kind are required")
		return
	}

	existing, err := h.assetRepo.GetByTicker(req.Ticker)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if existing != nil {
		h.writeError(w, http.StatusConflict, "ticker already registered")
		return
	}

	asset, err := h.assetRepo.Create(Asset{
		Ticker:    req.Ticker,
		ShortName: req.ShortName,
		LongName:  req.LongName,
		Kind:      req.Kind,
		Sector:    req.Sector,
		Subsector: req.Subsector,
		Currency:  req.Currency,
	})
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusCreated, asset)
}

// HandleGet returns a single asset by ticker
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	asset, err := h.assetRepo.GetByTicker(chi.URLParam(r, "ticker"))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if asset == nil {
		h.writeError(w, http.StatusNotFound, "asset not found")
		return
	}

	h.writeJSON(w, http.StatusOK, asset)
}

// HandleGetQuotes returns recent quotes for an asset
func (h *Handler) HandleGetQuotes(w http.ResponseWriter, r *http.Request) {
	asset, err := h.assetRepo.GetByTicker(chi.URLParam(r, "ticker"))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if asset == nil {
		h.writeError(w, http.StatusNotFound, "asset not found")
		return
	}

	limit := 100
	if param := r.URL.Query().Get("limit"); param != "" {
		if parsed, err := strconv.Atoi(param); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	quotes, err := h.quoteRepo.GetRecent(asset.ID, limit)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if quotes == nil {
		quotes = []Quote{}
	}

	h.writeJSON(w, http.StatusOK, quotes)
}

// HandleGetDividends returns recent dividends for an asset
func (h *Handler) HandleGetDividends(w http.ResponseWriter, r *http.Request) {
	asset, err := h.assetRepo.GetByTicker(chi.URLParam(r, "ticker"))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if asset == nil {
		h.writeError(w, http.StatusNotFound, "asset not found")
		return
	}

	limit := 100
	if param := r.URL.Query().Get("limit"); param != "" {
		if parsed, err := strconv.Atoi(param); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	dividends, err := h.dividendRepo.GetRecent(asset.ID, limit)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if dividends == nil {
		dividends = []Dividend{}
	}

	h.writeJSON(w, http.StatusOK, dividends)
}

// HandleSync fetches fresh provider data for an asset
func (h *Handler) HandleSync(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Sync(chi.URLParam(r, "ticker"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			h.writeError(w, http.StatusNotFound, "asset not found")
		case errors.Is(err, domain.ErrUpstream):
			h.writeError(w, http.StatusBadGateway, err.Error())
		default:
			h.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	h.writeJSON(w, http.StatusOK, result)
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
