package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ativotrack/internal/modules/assets"
)

// QuoteSyncJob refreshes quotes and dividends for every active asset.
// One asset failing never aborts the run; failures are logged per
// ticker and counted.
type QuoteSyncJob struct {
	assetRepo    *assets.AssetRepository
	assetService *assets.Service
	log          zerolog.Logger
}

// NewQuoteSyncJob creates a new quote sync job
func NewQuoteSyncJob(assetRepo *assets.AssetRepository, assetService *assets.Service, log zerolog.Logger) *QuoteSyncJob {
	return &QuoteSyncJob{
		assetRepo:    assetRepo,
		assetService: assetService,
		log:          log.With().Str("job", "quote_sync").Logger(),
	}
}

// Name returns the job name
func (j *QuoteSyncJob) Name() string {
	return "quote_sync"
}

// Run syncs every active asset sequentially, stopping early when the
// context is cancelled
func (j *QuoteSyncJob) Run(ctx context.Context) error {
	runID := uuid.NewString()
	log := j.log.With().Str("run_id", runID).Logger()

	list, err := j.assetRepo.List("")
	if err != nil {
		return err
	}
	if len(list) == 0 {
		log.Debug().Msg("No active assets to sync")
		return nil
	}

	log.Info().Int("assets", len(list)).Msg("Starting quote sync")
	startTime := time.Now()

	var synced, failed int
	for _, asset := range list {
		if err := ctx.Err(); err != nil {
			log.Warn().Int("synced", synced).Int("remaining", len(list)-synced-failed).Msg("Quote sync cancelled")
			return err
		}

		if _, err := j.assetService.Sync(asset.Ticker); err != nil {
			log.Error().Err(err).Str("ticker", asset.Ticker).Msg("Asset sync failed")
			failed++
			continue
		}
		synced++
	}

	log.Info().
		Int("synced", synced).
		Int("failed", failed).
		Dur("duration", time.Since(startTime)).
		Msg("Quote sync completed")

	return nil
}
