package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mweidenbach/TubeRank/internal/pkg/constants"
)

// HandleDocsAPI sends readers to the interactive OpenAPI viewer.
func HandleDocsAPI(c *fiber.Ctx) error {
	return c.Redirect(constants.DocsRoute+"v1", fiber.StatusSeeOther)
}
