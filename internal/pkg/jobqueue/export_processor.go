package jobqueue

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/mweidenbach/TubeRank/app/repository"
	"github.com/mweidenbach/TubeRank/internal/pkg/apperr"
	"github.com/mweidenbach/TubeRank/internal/pkg/reportexport"
)

// processReportExportJob renders and uploads the CSV report for a completed
// round. Requires report export to be enabled in the environment.
func (q *Queue) processReportExportJob(ctx context.Context, job *Job) error {
	payload, err := ReportExportJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid report export payload: %w", err)
	}

	cfg, err := reportexport.LoadConfig()
	if err != nil {
		return fmt.Errorf("report export config: %w", err)
	}
	if !cfg.IsEnabled() {
		log.Warnf("[JobQueue] Report export disabled, dropping job for round %s", payload.RoundUUID)
		return nil
	}

	client, err := reportexport.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("report export client: %w", err)
	}

	exporter := reportexport.NewExporter(client, cfg, repository.GetGlobalRepositories())
	objectKey, err := exporter.ExportRound(ctx, payload.RoundID)
	if err != nil {
		// A round without results never becomes exportable; retrying is useless.
		if apperr.IsKind(err, apperr.KindConflict) || apperr.IsKind(err, apperr.KindNotFound) {
			log.Warnf("[JobQueue] Skipping export for round %s: %v", payload.RoundUUID, err)
			return nil
		}
		return err
	}

	log.Infof("[JobQueue] Exported round %s to %s", payload.RoundUUID, objectKey)
	return nil
}
