package identity

import (
	"errors"
	"time"
)

var (
	ErrExchangeFailed       = errors.New("authorization code exchange failed")
	ErrIdentityTokenInvalid = errors.New("identity token invalid")
)

// ExternalIdentity is what the provider asserts about the user after a code exchange.
type ExternalIdentity struct {
	Subject    string
	Name       string
	Email      string
	PictureURL string
}

type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AuthURL      string
	TokenURL     string
	JWKSURL      string
	Issuers      []string
	// Timeout bounds the whole exchange, including the key fetch.
	Timeout time.Duration
	// KeyCacheTTL of zero fetches the key set on every verification.
	KeyCacheTTL time.Duration
}

const defaultTimeout = 10 * time.Second
