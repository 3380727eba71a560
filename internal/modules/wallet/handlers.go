package wallet

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"ativotrack/internal/domain"
)

// Handler handles wallet HTTP requests
type Handler struct {
	walletRepo      *WalletRepository
	holdingRepo     *HoldingRepository
	transactionRepo *TransactionRepository
	service         *Service
	log             zerolog.Logger
}

// NewHandler creates a new wallet handler
func NewHandler(
	walletRepo *WalletRepository,
	holdingRepo *HoldingRepository,
	transactionRepo *TransactionRepository,
	service *Service,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		walletRepo:      walletRepo,
		holdingRepo:     holdingRepo,
		transactionRepo: transactionRepo,
		service:         service,
		log:             log.With().Str("handler", "wallet").Logger(),
	}
}

// Routes mounts the wallet endpoints on a router
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)
	r.Get("/{id}", h.HandleGet)
	r.Delete("/{id}", h.HandleDelete)
	r.Get("/{id}/assets", h.HandleListAssets)
	r.Post("/{id}/assets", h.HandleAddAsset)
	r.Delete("/assets/{holdingID}", h.HandleRemoveAsset)
	r.Get("/{id}/transactions", h.HandleListTransactions)
	r.Post("/{id}/transactions", h.HandleCreateTransaction)
}

// HandleList returns all active wallets
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.walletRepo.List()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []Wallet{}
	}

	h.writeJSON(w, http.StatusOK, list)
}

type createWalletRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// HandleCreate registers a new wallet
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		h.writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	wallet, err := h.walletRepo.Create(req.Name, req.Description)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusCreated, wallet)
}

// walletDetail is a wallet with its holdings attached
type walletDetail struct {
	Wallet
	Holdings []HoldingWithAsset `json:"holdings"`
}

// HandleGet refreshes valuations and returns a wallet with holdings
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}

	wallet, err := h.service.RefreshValuations(id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "wallet not found")
			return
		}
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	holdings, err := h.holdingRepo.GetByWallet(id)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if holdings == nil {
		holdings = []HoldingWithAsset{}
	}

	h.writeJSON(w, http.StatusOK, walletDetail{Wallet: *wallet, Holdings: holdings})
}

// HandleDelete soft-deletes a wallet
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}

	wallet, err := h.walletRepo.GetByID(id)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if wallet == nil {
		h.writeError(w, http.StatusNotFound, "wallet not found")
		return
	}

	if err := h.walletRepo.Deactivate(id); err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// HandleListAssets returns a wallet's holdings
func (h *Handler) HandleListAssets(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}

	wallet, err := h.walletRepo.GetByID(id)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if wallet == nil {
		h.writeError(w, http.StatusNotFound, "wallet not found")
		return
	}

	holdings, err := h.holdingRepo.GetByWallet(id)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if holdings == nil {
		holdings = []HoldingWithAsset{}
	}

	h.writeJSON(w, http.StatusOK, holdings)
}

type addAssetRequest struct {
	Ticker   string  `json:"ticker"`
	Quantity float64 `json:"quantity"`
	AvgPrice float64 `json:"avg_price"`
}

// HandleAddAsset opens a position in a wallet
func (h *Handler) HandleAddAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}

	var req addAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Ticker == "" || req.Quantity <= 0 || req.AvgPrice < 0 {
		h.writeError(w, http.StatusBadRequest, "ticker, positive quantity and non-negative avg_price are required")
		return
	}

	holding, err := h.service.AddAsset(id, req.Ticker, req.Quantity, req.AvgPrice)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			h.writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrConflict):
			h.writeError(w, http.StatusConflict, "wallet already holds this asset")
		default:
			h.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	h.writeJSON(w, http.StatusCreated, holding)
}

// HandleRemoveAsset closes a position
func (h *Handler) HandleRemoveAsset(w http.ResponseWriter, r *http.Request) {
	holdingID, ok := h.parseID(w, r, "holdingID")
	if !ok {
		return
	}

	removed, err := h.holdingRepo.Delete(holdingID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !removed {
		h.writeError(w, http.StatusNotFound, "holding not found")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// HandleListTransactions returns a wallet's trade history
func (h *Handler) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}

	wallet, err := h.walletRepo.GetByID(id)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if wallet == nil {
		h.writeError(w, http.StatusNotFound, "wallet not found")
		return
	}

	limit := 100
	if param := r.URL.Query().Get("limit"); param != "" {
		if parsed, err := strconv.Atoi(param); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	list, err := h.transactionRepo.List(id, limit)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []Transaction{}
	}

	h.writeJSON(w, http.StatusOK, list)
}

type createTransactionRequest struct {
	AssetID    int64      `json:"asset_id"`
	Kind       string     `json:"kind"`
	Quantity   float64    `json:"quantity"`
	Price      float64    `json:"price"`
	Fee        float64    `json:"fee"`
	ExecutedAt *time.Time `json:"executed_at"`
	Notes      *string    `json:"notes"`
}

// HandleCreateTransaction records a trade and applies it to the holding
func (h *Handler) HandleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}

	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.AssetID <= 0 || req.Quantity <= 0 || req.Price < 0 {
		h.writeError(w, http.StatusBadRequest, "asset_id, positive quantity and non-negative price are required")
		return
	}
	if req.Kind != TransactionBuy && req.Kind != TransactionSell {
		h.writeError(w, http.StatusBadRequest, "kind must be BUY or SELL")
		return
	}

	executedAt := time.Now().UTC()
	if req.ExecutedAt != nil {
		executedAt = req.ExecutedAt.UTC()
	}

	recorded, err := h.service.ApplyTransaction(id, Transaction{
		AssetID:    req.AssetID,
		Kind:       req.Kind,
		Quantity:   req.Quantity,
		Price:      req.Price,
		Fee:        req.Fee,
		ExecutedAt: executedAt,
		Notes:      req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			h.writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrInvalidInput):
			h.writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	h.writeJSON(w, http.StatusCreated, recorded)
}

// Helper methods

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

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
