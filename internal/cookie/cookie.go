package cookie

import (
	"net/http"
	"time"
)

const (
	RefreshToken = "refresh_token"
	AccessToken  = "access_token"
	OAuthState   = "oauth_state"
)

// Factory builds auth cookies with one Secure setting for the whole process.
type Factory struct {
	Secure bool
}

func (f Factory) Create(name, value string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		Expires:  time.Now().Add(maxAge),
		HttpOnly: true,
		Secure:   f.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Delete produces a cookie the browser drops at once (Max-Age=0 on the wire).
func (f Factory) Delete(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   f.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
