package router

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"

	"github.com/mweidenbach/TubeRank/app/controllers"
	"github.com/mweidenbach/TubeRank/internal/pkg/env"
	"github.com/mweidenbach/TubeRank/internal/pkg/middleware"
)

func (h HttpRouter) registerCSRFProtectedRoutes(app *fiber.App) {
	csrfConf := csrf.Config{
		KeyLookup:      "form:_csrf",
		ContextKey:     "csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		Expiration:     1 * time.Hour,
		CookieSecure:   !env.IsDev(),
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/")
		},
	}

	group := app.Group("", cors.New(), csrf.New(csrfConf))
	group.Get("/", loggedInMiddleware, controllers.HandleStart)
	group.Get("/login", loggedInMiddleware, controllers.HandleAuthLogin)
	group.Post("/login", loggedInMiddleware, controllers.HandleAuthLogin)
	group.Get("/register", loggedInMiddleware, controllers.HandleAuthRegister)
	group.Post("/register", loggedInMiddleware, controllers.HandleAuthRegister)
	group.Get("/activate", loggedInMiddleware, controllers.HandleUserActivate)

	// Analysis rounds
	group.Get("/dashboard", middleware.RequireAuth, controllers.HandleDashboard)
	group.Post("/rounds", middleware.RequireAuth, controllers.HandleRoundCreate)
	group.Get("/rounds/:no", middleware.RequireAuth, controllers.HandleRoundView)

	// Membership
	group.Get("/user/membership", middleware.RequireAuth, controllers.HandleMembership)
	group.Post("/user/membership/coupon", middleware.RequireAuth, controllers.HandleCouponRedeem)
	group.Post("/user/membership/upgrade", middleware.RequireAuth, controllers.HandleTierUpgrade)
	group.Post("/user/membership/request-upgrade", middleware.RequireAuth, controllers.HandleUpgradeRequest)
}
