package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/mweidenbach/TubeRank/app/models"
	"github.com/mweidenbach/TubeRank/app/repository"
	"github.com/mweidenbach/TubeRank/internal/pkg/database"
	"github.com/mweidenbach/TubeRank/internal/pkg/entitlements"
	"github.com/mweidenbach/TubeRank/internal/pkg/session"
	"github.com/mweidenbach/TubeRank/internal/pkg/usercontext"
)

func couponBody(coupon *models.Coupon) fiber.Map {
	return fiber.Map{
		"id":          coupon.ID,
		"code":        coupon.Code,
		"is_used":     coupon.IsUsed,
		"valid_until": coupon.ValidUntil,
	}
}

func membershipBody(user *models.User) fiber.Map {
	return fiber.Map{
		"id":                user.ID,
		"tier":              string(user.Tier),
		"upgrade_requested": user.UpgradeRequested,
		"usage": fiber.Map{
			"keyword_rounds": user.UsedKeywordRounds,
			"channel_rounds": user.UsedChannelRounds,
		},
	}
}

// HandleGetMembershipAPI returns the user's tier, usage counters and limits.
func HandleGetMembershipAPI(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	repos := repository.GetGlobalRepositories()
	user, err := repos.User.GetByID(userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "User not found"})
	}

	body := membershipBody(user)
	if limit, err := repos.MembershipLimit.Get(user.Tier, models.PipelineKeyword); err == nil {
		body["keyword_round_limit"] = limit.MaxRounds
		body["unlimited"] = limit.Unlimited()
	}
	return c.JSON(body)
}

type redeemCouponRequest struct {
	Code string `json:"code"`
}

// HandleRedeemCouponAPI claims a coupon code for the authenticated user.
func HandleRedeemCouponAPI(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req redeemCouponRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": "Invalid request body"})
	}

	svc := entitlements.NewServiceFromDB(database.GetDB())
	coupon, err := svc.RedeemCoupon(userCtx.UserID, strings.TrimSpace(req.Code))
	if err != nil {
		return jsonError(c, err)
	}

	return c.JSON(fiber.Map{"coupon": couponBody(coupon)})
}

type useCouponRequest struct {
	CouponID uint `json:"coupon_id"`
}

// HandleUseCouponAPI flips the single-use latch on a coupon the user owns.
func HandleUseCouponAPI(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req useCouponRequest
	if err := c.BodyParser(&req); err != nil || req.CouponID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": "coupon_id is required"})
	}

	svc := entitlements.NewServiceFromDB(database.GetDB())
	coupon, err := svc.UseCoupon(req.CouponID, userCtx.UserID)
	if err != nil {
		return jsonError(c, err)
	}

	return c.JSON(fiber.Map{"coupon": couponBody(coupon)})
}

type upgradeTierRequest struct {
	Tier     string `json:"tier"`
	CouponID *uint  `json:"coupon_id,omitempty"`
}

// HandleUpgradeTierAPI changes the membership tier; coupon consumption and
// the tier change commit together or not at all.
func HandleUpgradeTierAPI(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req upgradeTierRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": "Invalid request body"})
	}

	svc := entitlements.NewServiceFromDB(database.GetDB())
	user, err := svc.UpgradeTier(userCtx.UserID, models.MembershipTier(strings.TrimSpace(req.Tier)), req.CouponID)
	if err != nil {
		return jsonError(c, err)
	}

	_ = session.SetSessionValue(c, USER_TIER, string(user.Tier))

	return c.JSON(fiber.Map{"user": membershipBody(user)})
}

// HandleRequestUpgradeAPI idempotently flags the account for an upgrade.
func HandleRequestUpgradeAPI(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	svc := entitlements.NewServiceFromDB(database.GetDB())
	user, err := svc.RequestUpgrade(userCtx.UserID)
	if err != nil {
		return jsonError(c, err)
	}

	return c.JSON(fiber.Map{"user": membershipBody(user)})
}
