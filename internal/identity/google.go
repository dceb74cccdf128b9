package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

type idTokenClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

// Google exchanges authorization codes at the provider token endpoint and
// verifies the returned OpenID Connect identity token.
type Google struct {
	oauth      *oauth2.Config
	keys       *KeySet
	issuers    []string
	timeout    time.Duration
	httpClient *http.Client

	Now func() time.Time
}

func NewGoogle(cfg Config) *Google {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Google{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		keys:       NewKeySet(cfg.JWKSURL, timeout, cfg.KeyCacheTTL),
		issuers:    cfg.Issuers,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (g *Google) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

// AuthCodeURL is the consent page the browser is sent to when a login starts.
func (g *Google) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (g *Google) ExchangeCode(ctx context.Context, code string) (ExternalIdentity, error) {
	if strings.TrimSpace(code) == "" {
		return ExternalIdentity{}, fmt.Errorf("%w: empty authorization code", ErrExchangeFailed)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)

	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return ExternalIdentity{}, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	raw, _ := tok.Extra("id_token").(string)
	if raw == "" {
		return ExternalIdentity{}, fmt.Errorf("%w: token response has no id_token", ErrExchangeFailed)
	}

	return g.VerifyIDToken(ctx, raw)
}

// VerifyIDToken checks signature, expiry, audience and issuer of a provider identity token.
// Keys are looked up by the token's kid.
func (g *Google) VerifyIDToken(ctx context.Context, raw string) (ExternalIdentity, error) {
	var claims idTokenClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("missing kid header")
		}
		return g.keys.Key(ctx, kid)
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(g.oauth.ClientID),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil {
		if errors.Is(err, errKeyFetch) {
			return ExternalIdentity{}, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
		}
		return ExternalIdentity{}, fmt.Errorf("%w: %v", ErrIdentityTokenInvalid, err)
	}

	if !slices.Contains(g.issuers, claims.Issuer) {
		return ExternalIdentity{}, fmt.Errorf("%w: unexpected issuer %q", ErrIdentityTokenInvalid, claims.Issuer)
	}
	if claims.Subject == "" {
		return ExternalIdentity{}, fmt.Errorf("%w: missing subject", ErrIdentityTokenInvalid)
	}

	return ExternalIdentity{
		Subject:    claims.Subject,
		Name:       claims.Name,
		Email:      claims.Email,
		PictureURL: claims.Picture,
	}, nil
}
