package httpserver

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/news_website/internal/cookie"
	"github.com/Skotchmaster/news_website/internal/logging"
	"github.com/Skotchmaster/news_website/internal/service"
	"github.com/Skotchmaster/news_website/internal/tokens"
)

const stateTTL = 10 * time.Minute

type LoginStarter interface {
	AuthCodeURL(state string) string
}

type AuthHTTP struct {
	Svc         *service.SessionService
	Provider    LoginStarter
	Cookies     cookie.Factory
	FrontendURL string
}

func (h *AuthHTTP) GoogleLogin(c echo.Context) error {
	state := uuid.NewString()
	c.SetCookie(h.Cookies.Create(cookie.OAuthState, state, stateTTL))
	return c.Redirect(http.StatusFound, h.Provider.AuthCodeURL(state))
}

func (h *AuthHTTP) GoogleCallback(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_google_callback")

	var q callbackQuery
	if err := c.Bind(&q); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return h.loginFailed(c)
	}
	if q.Error != "" {
		l.Warn("login_error", "reason", "provider returned error", "error", q.Error)
		return h.loginFailed(c)
	}
	if sc, err := c.Cookie(cookie.OAuthState); err == nil && sc.Value != "" {
		c.SetCookie(h.Cookies.Delete(cookie.OAuthState))
		if sc.Value != q.State {
			l.Warn("login_error", "reason", "state mismatch")
			return h.loginFailed(c)
		}
	}

	res, err := h.Svc.Login(ctx, q.Code)
	if err != nil {
		return h.loginFailed(c)
	}

	c.SetCookie(h.Cookies.Create(cookie.RefreshToken, res.RefreshToken, tokens.RefreshTTL))

	if q.ResponseType == "token" {
		return c.JSON(http.StatusOK, echo.Map{
			"access_token":  res.AccessToken,
			"refresh_token": res.RefreshToken,
		})
	}

	v := url.Values{}
	v.Set("access_token", res.AccessToken)
	v.Set("role", string(res.Account.Role))
	v.Set("name", res.Account.Name)
	v.Set("email", res.Account.Email)
	v.Set("picture", res.Account.AvatarURL)
	v.Set("googleId", res.Account.ExternalSubject)
	return c.Redirect(http.StatusFound, h.FrontendURL+"/callback?"+v.Encode())
}

func (h *AuthHTTP) loginFailed(c echo.Context) error {
	return c.Redirect(http.StatusFound, h.FrontendURL+"/?error=login_failed")
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	var secret string
	if rc, err := c.Cookie(cookie.RefreshToken); err == nil {
		secret = rc.Value
	}

	res, err := h.Svc.Refresh(ctx, secret)
	if err != nil {
		code, msg := statusFor(err)
		if code != http.StatusUnauthorized {
			l.Error("refresh_error", "status", code, "error", err)
		}
		return c.JSON(code, echo.Map{"error": msg})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"access_token": res.AccessToken,
		"googleId":     res.Account.ExternalSubject,
		"role":         string(res.Account.Role),
		"name":         res.Account.Name,
		"email":        res.Account.Email,
		"picture":      res.Account.AvatarURL,
	})
}

// LogOut revokes the caller's session found through the refresh cookie or a
// bearer access token. Without either it only clears cookies.
func (h *AuthHTTP) LogOut(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	var err error
	if rc, cerr := c.Cookie(cookie.RefreshToken); cerr == nil && rc.Value != "" {
		err = h.Svc.LogoutByRefresh(ctx, rc.Value)
	} else if bearer := bearerToken(c); bearer != "" {
		if p, verr := h.Svc.Authenticate(bearer); verr == nil {
			err = h.Svc.LogoutBySubject(ctx, p.Subject)
		}
	}

	c.SetCookie(h.Cookies.Delete(cookie.RefreshToken))
	c.SetCookie(h.Cookies.Delete(cookie.AccessToken))

	if err != nil {
		l.Error("logout_failed", "status", 500, "reason", "cannot revoke refresh token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "logout failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

var callbackParams = []string{"access_token", "role", "name", "email", "picture"}

// Callback echoes the login completion parameters back as JSON.
func (h *AuthHTTP) Callback(c echo.Context) error {
	q := c.QueryParams()
	out := make(map[string]string, len(callbackParams)+1)
	for _, name := range callbackParams {
		if !q.Has(name) {
			return echo.NewHTTPError(http.StatusBadRequest, "missing query parameter "+name)
		}
		out[name] = q.Get(name)
	}
	out["googleId"] = q.Get("googleId")
	return c.JSON(http.StatusOK, out)
}

func bearerToken(c echo.Context) string {
	const prefix = "Bearer "
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return h[len(prefix):]
	}
	return ""
}
