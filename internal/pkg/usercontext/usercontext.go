package usercontext

import "github.com/gofiber/fiber/v2"

// ContextKey is the Locals slot the user-context middleware fills per request.
const ContextKey = "USER_CONTEXT"

// UserContext carries the resolved identity for a request: who is logged in
// and which membership tier their quota checks run against.
type UserContext struct {
	UserID     uint   `json:"user_id"`
	Username   string `json:"username"`
	IsLoggedIn bool   `json:"is_logged_in"`
	IsAdmin    bool   `json:"is_admin"`
	Tier       string `json:"tier"`
}

// GetUserContext reads the request's user context, falling back to an
// anonymous context when the middleware did not run.
func GetUserContext(c *fiber.Ctx) UserContext {
	if ctx := c.Locals(ContextKey); ctx != nil {
		return ctx.(UserContext)
	}
	return UserContext{}
}

// IsLoggedIn reports whether the request carries an authenticated session.
func IsLoggedIn(c *fiber.Ctx) bool {
	return GetUserContext(c).IsLoggedIn
}

// IsAdmin reports whether the current user has the admin role.
func IsAdmin(c *fiber.Ctx) bool {
	return GetUserContext(c).IsAdmin
}

// GetUserID returns the current user's ID, zero for anonymous requests.
func GetUserID(c *fiber.Ctx) uint {
	return GetUserContext(c).UserID
}

// GetUsername returns the current user's name, empty for anonymous requests.
func GetUsername(c *fiber.Ctx) string {
	return GetUserContext(c).Username
}

// GetTier returns the current user's membership tier, empty for anonymous
// requests.
func GetTier(c *fiber.Ctx) string {
	return GetUserContext(c).Tier
}
