package server

import (
	"encoding/json"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"ativotrack/internal/database"
	"ativotrack/internal/scheduler"
)

// SystemHandlers handles monitoring and operations endpoints
type SystemHandlers struct {
	log          zerolog.Logger
	db           *database.DB
	dbPath       string
	startupTime  time.Time
	scheduler    *scheduler.Scheduler
	quoteSyncJob scheduler.Job
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(log zerolog.Logger, db *database.DB, dbPath string, sched *scheduler.Scheduler) *SystemHandlers {
	return &SystemHandlers{
		log:         log.With().Str("handler", "system").Logger(),
		db:          db,
		dbPath:      dbPath,
		startupTime: time.Now(),
		scheduler:   sched,
	}
}

// SetQuoteSyncJob registers the job reference for manual triggering.
// Called after job registration in main.go.
func (h *SystemHandlers) SetQuoteSyncJob(job scheduler.Job) {
	h.quoteSyncJob = job
}

// SystemStatusResponse represents the system status response
type SystemStatusResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	CPUPercent    float64 `json:"cpu_percent"`
	RAMPercent    float64 `json:"ram_percent"`
	Goroutines    int     `json:"goroutines"`
	AssetCount    int     `json:"asset_count"`
	QuoteCount    int     `json:"quote_count"`
	WalletCount   int     `json:"wallet_count"`
	DatabaseMB    float64 `json:"database_mb"`
	LastQuoteSync string  `json:"last_quote_sync,omitempty"`
}

// HandleSystemStatus returns process and storage statistics
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")

	cpuPercent, ramPercent := h.resourceUsage()

	response := SystemStatusResponse{
		Status:        "running",
		UptimeSeconds: time.Since(h.startupTime).Seconds(),
		CPUPercent:    cpuPercent,
		RAMPercent:    ramPercent,
		Goroutines:    runtime.NumGoroutine(),
		DatabaseMB:    h.databaseSizeMB(),
	}

	h.countRow("SELECT COUNT(*) FROM assets WHERE active = 1", &response.AssetCount)
	h.countRow("SELECT COUNT(*) FROM quotes", &response.QuoteCount)
	h.countRow("SELECT COUNT(*) FROM wallets WHERE active = 1", &response.WalletCount)

	var lastSync int64
	if err := h.db.Conn().QueryRow("SELECT COALESCE(MAX(ts), 0) FROM quotes").Scan(&lastSync); err == nil && lastSync > 0 {
		response.LastQuoteSync = time.Unix(lastSync, 0).UTC().Format(time.RFC3339)
	}

	h.writeJSON(w, response)
}

// HandleTriggerQuoteSync runs the quote sync job immediately
// POST /api/system/sync
func (h *SystemHandlers) HandleTriggerQuoteSync(w http.ResponseWriter, r *http.Request) {
	if h.quoteSyncJob == nil {
		h.log.Warn().Msg("Quote sync job not registered yet")
		h.writeJSON(w, map[string]string{
			"status":  "error",
			"message": "Quote sync job not registered",
		})
		return
	}

	h.log.Info().Msg("Manual quote sync triggered")

	if err := h.scheduler.RunNow(r.Context(), h.quoteSyncJob); err != nil {
		h.log.Error().Err(err).Msg("Failed to trigger quote sync")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]string{
		"status":  "success",
		"message": "Quote sync completed",
	})
}

// resourceUsage samples CPU and RAM usage
func (h *SystemHandlers) resourceUsage() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

// databaseSizeMB returns the SQLite file size, 0 for in-memory databases
func (h *SystemHandlers) databaseSizeMB() float64 {
	info, err := os.Stat(h.dbPath)
	if err != nil {
		return 0
	}
	return float64(info.Size()) / 1024 / 1024
}

func (h *SystemHandlers) countRow(query string, dest *int) {
	if err := h.db.Conn().QueryRow(query).Scan(dest); err != nil {
		h.log.Warn().Err(err).Str("query", query).Msg("Failed to query count")
	}
}

// writeJSON writes a JSON response
func (h *SystemHandlers) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
