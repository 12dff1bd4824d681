package fiber

import (
	"github.com/gofiber/fiber/v3"

	"github.com/lborres/wanderlust/core"
)

// Locals keys set by the auth guard
const (
	localUser    = "user"
	localSession = "session"
	localRole    = "role"
	localToken   = "token"
)

// RequireAuth creates a Fiber middleware that validates auth tokens and
// stores user/session data in the context for downstream handlers. It is
// usable once RegisterRoutes has run, so embedding applications can guard
// their own routes.
func (a *Adapter) RequireAuth() fiber.Handler {
	return a.guard(core.AccessAuthenticated, func(c fiber.Ctx) error { return c.Next() })
}

// guard wraps next with the checks access demands. Public endpoints pass
// straight through.
func (a *Adapter) guard(access core.Access, next fiber.Handler) fiber.Handler {
	if access == core.AccessPublic {
		return next
	}
	return func(c fiber.Ctx) error {
		// Extract and validate token from Authorization header
		token := extractToken(c)
		if token == "" {
			return a.handleError(c, core.ErrMissingAuthHeader)
		}

		sessionData, err := a.svc.Auth.GetSession(c.Context(), token)
		if err != nil {
			return a.handleError(c, err)
		}
		if access == core.AccessAdmin && sessionData.Role != core.RoleAdmin {
			return a.handleError(c, core.ErrForbidden)
		}

		c.Locals(localUser, sessionData.User)
		c.Locals(localSession, sessionData.Session)
		c.Locals(localRole, sessionData.Role)
		c.Locals(localToken, token)

		return next(c)
	}
}

func currentUser(c fiber.Ctx) *core.User {
	u, _ := c.Locals(localUser).(*core.User)
	return u
}

func currentToken(c fiber.Ctx) string {
	t, _ := c.Locals(localToken).(string)
	return t
}
