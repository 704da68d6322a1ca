package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mweidenbach/TubeRank/internal/pkg/middleware"
	"github.com/mweidenbach/TubeRank/internal/pkg/oauth"
	"github.com/mweidenbach/TubeRank/internal/pkg/session"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// init oauth providers
	oauth.Setup()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	h.registerPublicRoutes(app)
	h.registerCSRFProtectedRoutes(app)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}

func loggedInMiddleware(c *fiber.Ctx) error {
	// UserContextMiddleware already set all user context; nothing extra here.
	return c.Next()
}
