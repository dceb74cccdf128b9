package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/news_website/internal/service"
)

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "you don't have enough rights"
	case errors.Is(err, service.ErrAccountNotFound):
		return http.StatusNotFound, "account not found"
	case errors.Is(err, service.ErrUnknownRole):
		return http.StatusBadRequest, "unknown role"
	case errors.Is(err, service.ErrInvalidRoleTransition):
		return http.StatusConflict, "only a user can request the editor role"
	case errors.Is(err, service.ErrRequestAlreadyPending):
		return http.StatusConflict, "editor request already pending"
	case errors.Is(err, service.ErrNoPendingRequest):
		return http.StatusConflict, "no pending editor request"
	case errors.Is(err, service.ErrRefreshInvalidOrExpired):
		return http.StatusUnauthorized, "refresh token invalid or expired"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func httpError(err error) *echo.HTTPError {
	code, msg := statusFor(err)
	return echo.NewHTTPError(code, msg).SetInternal(err)
}
