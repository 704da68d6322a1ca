package controllers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/mweidenbach/TubeRank/app/models"
	"github.com/mweidenbach/TubeRank/app/repository"
	"github.com/mweidenbach/TubeRank/internal/pkg/apperr"
	"github.com/mweidenbach/TubeRank/internal/pkg/database"
	"github.com/mweidenbach/TubeRank/internal/pkg/entitlements"
	"github.com/mweidenbach/TubeRank/internal/pkg/session"
	"github.com/mweidenbach/TubeRank/internal/pkg/usercontext"
)

const membershipRoute = "/user/membership"

// HandleMembership renders the membership settings page: current tier, usage
// counters against the tier limits, and the coupon/upgrade forms.
func HandleMembership(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	repos := repository.GetGlobalRepositories()
	user, err := repos.User.GetByID(userCtx.UserID)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Could not load your account"}
		return flash.WithError(c, fm).Redirect("/dashboard")
	}

	var keywordLimit uint
	if limit, err := repos.MembershipLimit.Get(user.Tier, models.PipelineKeyword); err == nil && !limit.Unlimited() {
		keywordLimit = limit.MaxRounds
	}

	return c.Render("user/membership", fiber.Map{
		"Title":            "Membership",
		"FromProtected":    true,
		"Flash":            flash.Get(c),
		"Csrf":             c.Locals("csrf"),
		"User":             user,
		"Tier":             string(user.Tier),
		"UsedRounds":       user.UsedKeywordRounds,
		"KeywordLimit":     keywordLimit,
		"UpgradeRequested": user.UpgradeRequested,
	}, "layouts/main")
}

// HandleCouponRedeem claims a coupon code for the logged-in user.
func HandleCouponRedeem(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	code := strings.TrimSpace(c.FormValue("code"))

	svc := entitlements.NewServiceFromDB(database.GetDB())
	if _, err := svc.RedeemCoupon(userCtx.UserID, code); err != nil {
		fm := fiber.Map{"type": "error", "message": apperr.Message(err)}
		return flash.WithError(c, fm).Redirect(membershipRoute)
	}

	fm := fiber.Map{"type": "success", "message": "Coupon redeemed, you can apply it to an upgrade now."}
	return flash.WithSuccess(c, fm).Redirect(membershipRoute)
}

// HandleTierUpgrade changes the membership tier, optionally consuming a
// redeemed coupon in the same transaction.
func HandleTierUpgrade(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	newTier := models.MembershipTier(strings.TrimSpace(c.FormValue("tier")))

	var couponID *uint
	if raw := strings.TrimSpace(c.FormValue("coupon_id")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			fm := fiber.Map{"type": "error", "message": "Invalid coupon"}
			return flash.WithError(c, fm).Redirect(membershipRoute)
		}
		v := uint(id)
		couponID = &v
	}

	svc := entitlements.NewServiceFromDB(database.GetDB())
	user, err := svc.UpgradeTier(userCtx.UserID, newTier, couponID)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": apperr.Message(err)}
		return flash.WithError(c, fm).Redirect(membershipRoute)
	}

	// Keep the session tier in sync so the next request sees the new level.
	_ = session.SetSessionValue(c, USER_TIER, string(user.Tier))

	fm := fiber.Map{"type": "success", "message": "Membership upgraded to " + string(user.Tier) + "!"}
	return flash.WithSuccess(c, fm).Redirect(membershipRoute)
}

// HandleUpgradeRequest flags the account for a manual upgrade follow-up.
func HandleUpgradeRequest(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	svc := entitlements.NewServiceFromDB(database.GetDB())
	if _, err := svc.RequestUpgrade(userCtx.UserID); err != nil {
		fm := fiber.Map{"type": "error", "message": apperr.Message(err)}
		return flash.WithError(c, fm).Redirect(membershipRoute)
	}

	fm := fiber.Map{"type": "success", "message": "Upgrade request received, we will get in touch."}
	return flash.WithSuccess(c, fm).Redirect(membershipRoute)
}
