package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/news_website/internal/logging"
	"github.com/Skotchmaster/news_website/internal/middleware/auth"
	"github.com/Skotchmaster/news_website/internal/models"
	"github.com/Skotchmaster/news_website/internal/service"
	"github.com/Skotchmaster/news_website/internal/util"
)

type AdminHTTP struct {
	Accounts *service.AccountDirectory
}

func (h *AdminHTTP) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_list_users")

	q := listUsersQuery{Size: util.DefaultPageSize}
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid pagination")
	}
	if err := c.Validate(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid pagination")
	}

	total, accounts, err := h.Accounts.List(ctx, q.Page, q.Size)
	if err != nil {
		l.Error("list_users_failed", "status", 500, "error", err)
		return httpError(err)
	}

	items := make([]accountResponse, 0, len(accounts))
	for i := range accounts {
		items = append(items, toAccountResponse(&accounts[i]))
	}
	return c.JSON(http.StatusOK, listUsersResponse{Items: items, Total: total, Page: q.Page, Size: q.Size})
}

func (h *AdminHTTP) ApproveEditor(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_approve_editor")

	p, ok := auth.PrincipalFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	acc, err := h.Accounts.ApproveEditorRole(ctx, c.Param("googleId"), p.Subject)
	if err != nil {
		l.Warn("approve_editor_failed", "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toAccountResponse(acc))
}

func (h *AdminHTTP) SetRole(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_set_role")

	p, ok := auth.PrincipalFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req setRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "roleName is required")
	}

	acc, err := h.Accounts.SetRole(ctx, c.Param("googleId"), req.RoleName, p.Subject)
	if err != nil {
		l.Warn("set_role_failed", "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toAccountResponse(acc))
}

func (h *AdminHTTP) Roles(c echo.Context) error {
	roles := models.Roles()
	out := make([]roleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, roleResponse{Name: string(r), Description: r.Description()})
	}
	return c.JSON(http.StatusOK, out)
}
