package auth

import (
	"errors"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/news_website/internal/logging"
	"github.com/Skotchmaster/news_website/internal/metrics"
	"github.com/Skotchmaster/news_website/internal/models"
	"github.com/Skotchmaster/news_website/internal/policy"
	"github.com/Skotchmaster/news_website/internal/tokens"
)

const principalKey = "principal"

type Authenticator interface {
	Authenticate(token string) (tokens.Principal, error)
}

// RequireAuth accepts an access token from the Authorization bearer header or,
// failing that, the access_token cookie.
func RequireAuth(a Authenticator, m *metrics.Metrics) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  principalKey,
		TokenLookup: "header:Authorization:Bearer ,cookie:access_token",
		ParseTokenFunc: func(_ echo.Context, token string) (any, error) {
			p, err := a.Authenticate(token)
			if err != nil {
				return nil, err
			}
			return p, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			reason := "missing"
			var perr *echojwt.TokenParsingError
			if errors.As(err, &perr) {
				reason = tokens.Reason(perr.Err)
			}
			m.AuthFailure(reason)
			logging.FromContext(c.Request().Context()).With("handler", "auth").
				Warn("authentication_failed", "status", http.StatusUnauthorized, "reason", reason)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing access token")
		},
	})
}

func PrincipalFrom(c echo.Context) (tokens.Principal, bool) {
	p, ok := c.Get(principalKey).(tokens.Principal)
	return p, ok && p.Subject != ""
}

func RequireRoles(allowed ...models.Role) echo.MiddlewareFunc {
	return guard(func(role models.Role) bool { return policy.Permit(role, allowed) })
}

func RequireOperation(op policy.Operation) echo.MiddlewareFunc {
	return guard(func(role models.Role) bool { return policy.PermitOperation(role, op) })
}

func guard(permit func(models.Role) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing role")
			}
			if !permit(p.Role) {
				return echo.NewHTTPError(http.StatusForbidden, "you don't have enough rights")
			}
			return next(c)
		}
	}
}
