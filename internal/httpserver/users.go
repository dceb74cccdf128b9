package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/news_website/internal/logging"
	"github.com/Skotchmaster/news_website/internal/middleware/auth"
	"github.com/Skotchmaster/news_website/internal/service"
)

type UsersHTTP struct {
	Accounts *service.AccountDirectory
}

func (h *UsersHTTP) Me(c echo.Context) error {
	p, ok := auth.PrincipalFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	acc, err := h.Accounts.Get(c.Request().Context(), p.Subject)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toAccountResponse(acc))
}

func (h *UsersHTTP) RequestEditor(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users_request_editor")

	p, ok := auth.PrincipalFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	acc, err := h.Accounts.RequestEditorRole(ctx, p.Subject)
	if err != nil {
		l.Warn("request_editor_failed", "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toAccountResponse(acc))
}
