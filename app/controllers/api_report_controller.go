package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/mweidenbach/TubeRank/app/repository"
	"github.com/mweidenbach/TubeRank/internal/pkg/reportexport"
	"github.com/mweidenbach/TubeRank/internal/pkg/usercontext"
)

// HandleGetRoundReportAPI returns a time-limited download URL for a round's
// exported CSV report.
func HandleGetRoundReportAPI(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	roundNo, err := strconv.ParseUint(c.Params("no"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": "Invalid round number"})
	}

	round, err := repository.GetGlobalRepositories().Round.GetByUserAndNo(userCtx.UserID, uint(roundNo))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Round not found"})
	}

	cfg, err := reportexport.LoadConfig()
	if err != nil || !cfg.IsEnabled() {
		return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{"error": "not_implemented", "message": "Report export is not configured"})
	}

	client, err := reportexport.NewClient(cfg)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "external_service_error", "message": "Report storage unavailable"})
	}

	exporter := reportexport.NewExporter(client, cfg, repository.GetGlobalRepositories())
	url, err := exporter.DownloadURL(c.Context(), round.UUID, round.CreatedAt)
	if err != nil {
		return jsonError(c, err)
	}

	return c.JSON(fiber.Map{"round_no": round.RoundNo, "download_url": url, "expires_in_seconds": int(reportexport.DownloadURLExpiry.Seconds())})
}
