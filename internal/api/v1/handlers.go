package apiv1

import (
	"github.com/gofiber/fiber/v2"

	// Delegate to existing controllers to keep behavior consistent
	"github.com/mweidenbach/TubeRank/app/controllers"
)

// APIServer implements the public v1 API surface
type APIServer struct{}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	response := Pong{
		Ping: "pong",
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// PostRound creates a new analysis round for the session user.
func (s *APIServer) PostRound(c *fiber.Ctx) error {
	return controllers.HandleCreateRoundAPI(c)
}

// GetRounds lists the session user's rounds.
func (s *APIServer) GetRounds(c *fiber.Ctx) error {
	return controllers.HandleListRoundsAPI(c)
}

// GetLatestRound resolves the newest round for a keyword.
func (s *APIServer) GetLatestRound(c *fiber.Ctx) error {
	return controllers.HandleGetLatestRoundAPI(c)
}

// GetRound resolves a round by its per-user number.
func (s *APIServer) GetRound(c *fiber.Ctx) error {
	return controllers.HandleGetRoundAPI(c)
}

// GetRoundStatus is the polling endpoint; in-flight rounds may answer from
// the status cache, terminal rounds always from the row.
func (s *APIServer) GetRoundStatus(c *fiber.Ctx) error {
	return controllers.HandleGetRoundStatusAPI(c)
}

// PostRoundExcludedKeywords attaches excluded keywords to a round.
func (s *APIServer) PostRoundExcludedKeywords(c *fiber.Ctx) error {
	return controllers.HandleAddExcludedKeywordsAPI(c)
}

// PostRoundExport queues a CSV export for a completed round.
func (s *APIServer) PostRoundExport(c *fiber.Ctx) error {
	return controllers.HandleExportRoundAPI(c)
}

// GetRoundReport returns a presigned download URL for an exported report.
func (s *APIServer) GetRoundReport(c *fiber.Ctx) error {
	return controllers.HandleGetRoundReportAPI(c)
}

// GetMembership returns tier, usage and limits for the session user.
func (s *APIServer) GetMembership(c *fiber.Ctx) error {
	return controllers.HandleGetMembershipAPI(c)
}

// PostCouponRedeem claims a coupon code.
func (s *APIServer) PostCouponRedeem(c *fiber.Ctx) error {
	return controllers.HandleRedeemCouponAPI(c)
}

// PostCouponUse consumes an owned coupon.
func (s *APIServer) PostCouponUse(c *fiber.Ctx) error {
	return controllers.HandleUseCouponAPI(c)
}

// PostMembershipUpgrade changes the membership tier.
func (s *APIServer) PostMembershipUpgrade(c *fiber.Ctx) error {
	return controllers.HandleUpgradeTierAPI(c)
}

// PostMembershipUpgradeRequest flags the account for a manual upgrade.
func (s *APIServer) PostMembershipUpgradeRequest(c *fiber.Ctx) error {
	return controllers.HandleRequestUpgradeAPI(c)
}
