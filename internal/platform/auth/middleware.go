package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const identityKey = "auth_identity"

// Middleware enforces a valid bearer credential in the Authorization header
// and stores the verified identity on the echo context.
func Middleware(verifier *Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			identity, err := verifier.Verify(authHeader)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(identityKey, identity)
			return next(c)
		}
	}
}

// IdentityFromEcho returns the identity stored by Middleware, if any.
func IdentityFromEcho(c echo.Context) (Identity, bool) {
	identity, ok := c.Get(identityKey).(Identity)
	return identity, ok
}
