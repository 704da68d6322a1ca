package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mweidenbach/TubeRank/app/models"
	"github.com/mweidenbach/TubeRank/internal/pkg/apperr"
)

func TestJSONError(t *testing.T) {
	app := fiber.New()
	app.Get("/boom", func(c *fiber.Ctx) error {
		return jsonError(c, apperr.New(apperr.KindConflict, "coupon already used"))
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "conflict", body["error"])
	assert.Equal(t, "coupon already used", body["message"])
}

func TestJSONError_InternalHidesDetails(t *testing.T) {
	app := fiber.New()
	app.Get("/boom", func(c *fiber.Ctx) error {
		return jsonError(c, apperr.Wrap(apperr.KindInternal, "db exploded", assert.AnError))
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "something went wrong", body["message"])
}

func TestSummarizeRound(t *testing.T) {
	round := models.NewRound(1, 4, "sourdough")
	round.Status = models.RoundStatusComplete

	got := summarizeRound(round)
	assert.Equal(t, uint(4), got.RoundNo)
	assert.Equal(t, "sourdough", got.Keyword)
	assert.Equal(t, "complete", got.Status)
	assert.Equal(t, round.UUID, got.UUID)
}

func TestIsLoggedIn(t *testing.T) {
	app := fiber.New()
	app.Get("/check", func(c *fiber.Ctx) error {
		c.Locals(FROM_PROTECTED, true)
		assert.True(t, isLoggedIn(c))
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/anon", func(c *fiber.Ctx) error {
		assert.False(t, isLoggedIn(c))
		return c.SendStatus(fiber.StatusNoContent)
	})

	for _, path := range []string{"/check", "/anon"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	}
}
