package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/news_website/internal/metrics"
	"github.com/Skotchmaster/news_website/internal/middleware/auth"
	"github.com/Skotchmaster/news_website/internal/models"
	"github.com/Skotchmaster/news_website/internal/policy"
)

type Deps struct {
	Auth          *AuthHTTP
	Users         *UsersHTTP
	Admin         *AdminHTTP
	Health        *HealthHTTP
	Authenticator auth.Authenticator
	Metrics       *metrics.Metrics
}

func Register(e *echo.Echo, d *Deps) {
	if e.Validator == nil {
		e.Validator = NewValidator()
	}

	e.GET("/health/live", d.Health.Live)
	e.GET("/health/ready", d.Health.Ready)
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}

	authMw := auth.RequireAuth(d.Authenticator, d.Metrics)

	e.GET("/callback", d.Auth.Callback)

	a := e.Group("/api/auth")
	a.GET("/google/login", d.Auth.GoogleLogin)
	a.GET("/google-callback", d.Auth.GoogleCallback)
	a.GET("/direct-callback", d.Auth.Callback)
	a.POST("/refresh", d.Auth.Refresh)
	a.POST("/logout", d.Auth.LogOut)

	users := e.Group("/api/users", authMw)
	users.GET("/me", d.Users.Me)
	users.POST("/request-editor", d.Users.RequestEditor, auth.RequireOperation(policy.RequestEditor))

	admin := e.Group("/api/admin", authMw, auth.RequireRoles(models.RoleAdmin))
	admin.GET("/users", d.Admin.ListUsers, auth.RequireOperation(policy.ManageUsers))
	admin.PUT("/users/:googleId/approve-editor", d.Admin.ApproveEditor, auth.RequireOperation(policy.ApproveEditor))
	admin.PUT("/users/:googleId/role", d.Admin.SetRole, auth.RequireOperation(policy.ManageUsers))
	admin.GET("/roles", d.Admin.Roles)
}
