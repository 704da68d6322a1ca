package controllers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/mweidenbach/TubeRank/app/models"
	"github.com/mweidenbach/TubeRank/app/repository"
	"github.com/mweidenbach/TubeRank/internal/pkg/analysis"
	"github.com/mweidenbach/TubeRank/internal/pkg/jobqueue"
	"github.com/mweidenbach/TubeRank/internal/pkg/usercontext"
)

type createRoundRequest struct {
	Keyword string `json:"keyword"`
}

type roundSummary struct {
	RoundNo   uint   `json:"round_no"`
	UUID      string `json:"uuid"`
	Keyword   string `json:"keyword"`
	Status    string `json:"status"`
	Level     int    `json:"level"`
	CreatedAt string `json:"created_at"`
}

func summarizeRound(r *models.Round) roundSummary {
	return roundSummary{
		RoundNo:   r.RoundNo,
		UUID:      r.UUID,
		Keyword:   r.Keyword,
		Status:    string(r.Status),
		Level:     r.Level,
		CreatedAt: r.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// HandleCreateRoundAPI allocates a new round and queues the analysis job.
func HandleCreateRoundAPI(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req createRoundRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": "Invalid request body"})
	}

	svc := analysis.NewService(repository.GetGlobalRepositories())
	round, excluded, err := svc.CreateRound(userCtx.UserID, req.Keyword)
	if err != nil {
		return jsonError(c, err)
	}

	payload := jobqueue.KeywordAnalysisJobPayload{
		RoundID:          round.ID,
		RoundUUID:        round.UUID,
		UserID:           round.UserID,
		Keyword:          round.Keyword,
		ExcludedKeywords: excluded,
	}
	if _, err := jobqueue.GetManager().GetQueue().EnqueueJob(jobqueue.JobTypeKeywordAnalysis, payload.ToMap()); err != nil {
		log.Errorf("[API] failed to enqueue analysis for round %s: %v", round.UUID, err)
	}

	return c.Status(fiber.StatusCreated).JSON(summarizeRound(round))
}

// HandleListRoundsAPI returns the user's round history, newest first.
func HandleListRoundsAPI(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	svc := analysis.NewService(repository.GetGlobalRepositories())
	rounds, err := svc.ListRounds(userCtx.UserID)
	if err != nil {
		return jsonError(c, err)
	}

	out := make([]roundSummary, 0, len(rounds))
	for i := range rounds {
		out = append(out, summarizeRound(&rounds[i]))
	}
	return c.JSON(fiber.Map{"rounds": out})
}

func renderRoundView(c *fiber.Ctx, view *analysis.RoundView) error {
	body := fiber.Map{
		"round":       summarizeRound(view.Round),
		"in_progress": view.InProgress,
		"failed":      view.Failed,
	}
	if view.Round.Status == models.RoundStatusComplete {
		body["videos"] = view.Videos
		body["related_keywords"] = view.RelatedKeywords
	}
	return c.JSON(body)
}

// HandleGetRoundAPI resolves a round by its per-user number.
func HandleGetRoundAPI(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	roundNo, err := strconv.ParseUint(c.Params("no"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": "Invalid round number"})
	}

	svc := analysis.NewService(repository.GetGlobalRepositories())
	view, err := svc.GetRound(userCtx.UserID, uint(roundNo))
	if err != nil {
		return jsonError(c, err)
	}
	return renderRoundView(c, view)
}

// HandleGetLatestRoundAPI resolves the most recent round for a keyword.
func HandleGetLatestRoundAPI(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	keyword := strings.TrimSpace(c.Query("keyword"))

	svc := analysis.NewService(repository.GetGlobalRepositories())
	view, err := svc.GetLatestRound(userCtx.UserID, keyword)
	if err != nil {
		return jsonError(c, err)
	}
	return renderRoundView(c, view)
}

// HandleGetRoundStatusAPI is the cheap polling endpoint. The database row is
// authoritative once terminal; the cache only answers for rounds in flight.
func HandleGetRoundStatusAPI(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	roundNo, err := strconv.ParseUint(c.Params("no"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": "Invalid round number"})
	}

	repos := repository.GetGlobalRepositories()
	round, err := repos.Round.GetByUserAndNo(userCtx.UserID, uint(roundNo))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Round not found"})
	}

	status := analysis.PollStatus(round)

	return c.JSON(fiber.Map{
		"round_no": round.RoundNo,
		"status":   string(status),
		"complete": status.IsTerminal(),
	})
}

type excludeKeywordsRequest struct {
	Keywords []string `json:"keywords"`
}

// HandleAddExcludedKeywordsAPI attaches excluded keywords to a round so the
// next analysis of that keyword can filter them out.
func HandleAddExcludedKeywordsAPI(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	roundNo, err := strconv.ParseUint(c.Params("no"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": "Invalid round number"})
	}

	var req excludeKeywordsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": "Invalid request body"})
	}
	words := make([]string, 0, len(req.Keywords))
	for _, w := range req.Keywords {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": "No keywords given"})
	}

	repos := repository.GetGlobalRepositories()
	round, err := repos.Round.GetByUserAndNo(userCtx.UserID, uint(roundNo))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Round not found"})
	}

	if err := repos.Round.AddExcludedKeywords(round.ID, words); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to store keywords"})
	}

	return c.JSON(fiber.Map{"round_no": round.RoundNo, "excluded_keywords": words})
}

// HandleExportRoundAPI queues the CSV report export for a completed round.
func HandleExportRoundAPI(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	roundNo, err := strconv.ParseUint(c.Params("no"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": "Invalid round number"})
	}

	repos := repository.GetGlobalRepositories()
	round, err := repos.Round.GetByUserAndNo(userCtx.UserID, uint(roundNo))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Round not found"})
	}
	if round.Status != models.RoundStatusComplete {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "conflict", "message": "Round has no results to export"})
	}

	payload := jobqueue.ReportExportJobPayload{
		RoundID:   round.ID,
		RoundUUID: round.UUID,
		UserID:    round.UserID,
	}
	if _, err := jobqueue.GetManager().GetQueue().EnqueueJob(jobqueue.JobTypeReportExport, payload.ToMap()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to queue export"})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"round_no": round.RoundNo, "export": "queued"})
}
