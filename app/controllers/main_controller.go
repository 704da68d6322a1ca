package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/mweidenbach/TubeRank/app/repository"
	"github.com/mweidenbach/TubeRank/internal/pkg/statistics"
)

// HandleStart renders the landing page with aggregate numbers and the
// currently trending search keywords.
func HandleStart(c *fiber.Ctx) error {
	stats := statistics.GetStatistics()

	trends, err := repository.GetGlobalFactory().GetKeywordTrendRepository().Top(10)
	if err != nil {
		trends = nil
	}

	return c.Render("home", fiber.Map{
		"Title":         "",
		"FromProtected": isLoggedIn(c),
		"Flash":         flash.Get(c),
		"Stats":         stats,
		"Trends":        trends,
	}, "layouts/main")
}

// HandlePricing renders the membership tier overview.
func HandlePricing(c *fiber.Ctx) error {
	return c.Render("pricing", fiber.Map{
		"Title":         "Pricing",
		"FromProtected": isLoggedIn(c),
		"Flash":         flash.Get(c),
	}, "layouts/main")
}
