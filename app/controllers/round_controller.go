package controllers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sujit-baniya/flash"

	"github.com/mweidenbach/TubeRank/app/repository"
	"github.com/mweidenbach/TubeRank/internal/pkg/analysis"
	"github.com/mweidenbach/TubeRank/internal/pkg/apperr"
	"github.com/mweidenbach/TubeRank/internal/pkg/jobqueue"
	"github.com/mweidenbach/TubeRank/internal/pkg/usercontext"
)

// HandleDashboard lists the user's analysis history with a new-keyword form.
func HandleDashboard(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	svc := analysis.NewService(repository.GetGlobalRepositories())
	rounds, err := svc.ListRounds(userCtx.UserID)
	if err != nil {
		log.Errorf("[Dashboard] failed to list rounds for user %d: %v", userCtx.UserID, err)
		rounds = nil
	}

	return c.Render("rounds/dashboard", fiber.Map{
		"Title":         "Dashboard",
		"FromProtected": true,
		"Flash":         flash.Get(c),
		"Csrf":          c.Locals("csrf"),
		"Username":      userCtx.Username,
		"Tier":          userCtx.Tier,
		"Rounds":        rounds,
	}, "layouts/main")
}

// HandleRoundCreate takes the submitted keyword, allocates a round and hands
// it to the background worker.
func HandleRoundCreate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	keyword := strings.TrimSpace(c.FormValue("keyword"))

	svc := analysis.NewService(repository.GetGlobalRepositories())
	round, excluded, err := svc.CreateRound(userCtx.UserID, keyword)
	if err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": apperr.Message(err),
		}
		return flash.WithError(c, fm).Redirect("/dashboard")
	}

	payload := jobqueue.KeywordAnalysisJobPayload{
		RoundID:          round.ID,
		RoundUUID:        round.UUID,
		UserID:           round.UserID,
		Keyword:          round.Keyword,
		ExcludedKeywords: excluded,
	}
	if _, err := jobqueue.GetManager().GetQueue().EnqueueJob(jobqueue.JobTypeKeywordAnalysis, payload.ToMap()); err != nil {
		log.Errorf("[Rounds] failed to enqueue analysis for round %s: %v", round.UUID, err)
	}

	fm := fiber.Map{
		"type":    "success",
		"message": "Analysis started, results will appear shortly.",
	}
	return flash.WithSuccess(c, fm).Redirect("/rounds/" + strconv.FormatUint(uint64(round.RoundNo), 10))
}

// HandleRoundView renders one round: a progress page while queued, an error
// page after failure, and the ranked videos once complete.
func HandleRoundView(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	roundNo, err := strconv.ParseUint(c.Params("no"), 10, 32)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Invalid round number"}
		return flash.WithError(c, fm).Redirect("/dashboard")
	}

	svc := analysis.NewService(repository.GetGlobalRepositories())
	view, err := svc.GetRound(userCtx.UserID, uint(roundNo))
	if err != nil {
		fm := fiber.Map{"type": "error", "message": apperr.Message(err)}
		return flash.WithError(c, fm).Redirect("/dashboard")
	}

	return c.Render("rounds/round", fiber.Map{
		"Title":           "Round #" + strconv.FormatUint(roundNo, 10),
		"FromProtected":   true,
		"Flash":           flash.Get(c),
		"Round":           view.Round,
		"InProgress":      view.InProgress,
		"Failed":          view.Failed,
		"Videos":          view.Videos,
		"RelatedKeywords": view.RelatedKeywords,
	}, "layouts/main")
}
