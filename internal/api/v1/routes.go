package apiv1

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mweidenbach/TubeRank/internal/pkg/middleware"
)

// Pong is the ping response body
type Pong struct {
	Ping string `json:"ping"`
}

// RegisterHandlers attaches the v1 routes to the given router group. All
// round and membership routes require a logged-in session.
func RegisterHandlers(router fiber.Router, s *APIServer) {
	router.Get("/ping", s.GetPing)

	rounds := router.Group("/rounds", middleware.RequireAPISessionAuth)
	rounds.Post("/", s.PostRound)
	rounds.Get("/", s.GetRounds)
	rounds.Get("/latest", s.GetLatestRound)
	rounds.Get("/:no", s.GetRound)
	rounds.Get("/:no/status", s.GetRoundStatus)
	rounds.Post("/:no/excluded-keywords", s.PostRoundExcludedKeywords)
	rounds.Post("/:no/export", s.PostRoundExport)
	rounds.Get("/:no/report", s.GetRoundReport)

	membership := router.Group("/membership", middleware.RequireAPISessionAuth)
	membership.Get("/", s.GetMembership)
	membership.Post("/upgrade", s.PostMembershipUpgrade)
	membership.Post("/upgrade-request", s.PostMembershipUpgradeRequest)

	coupons := router.Group("/coupons", middleware.RequireAPISessionAuth)
	coupons.Post("/redeem", s.PostCouponRedeem)
	coupons.Post("/use", s.PostCouponUse)
}
