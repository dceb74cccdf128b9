package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/news_website/internal/events"
	"github.com/Skotchmaster/news_website/internal/identity"
	"github.com/Skotchmaster/news_website/internal/logging"
	"github.com/Skotchmaster/news_website/internal/metrics"
	"github.com/Skotchmaster/news_website/internal/models"
	"github.com/Skotchmaster/news_website/internal/tokens"
)

type IdentityProvider interface {
	ExchangeCode(ctx context.Context, code string) (identity.ExternalIdentity, error)
}

// SessionService runs login, refresh and logout. No step of a login is
// persisted unless every earlier step succeeded.
type SessionService struct {
	Identity    IdentityProvider
	Accounts    *AccountDirectory
	Codec       *tokens.Codec
	Credentials *CredentialStore
	Metrics     *metrics.Metrics
}

type LoginResult struct {
	AccessToken  string
	AccessExp    time.Time
	RefreshToken string
	RefreshExp   time.Time
	Account      *models.Account
}

type RefreshResult struct {
	AccessToken string
	AccessExp   time.Time
	Account     *models.Account
}

func (s *SessionService) Login(ctx context.Context, code string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "session.login")

	res, err := s.login(ctx, code)
	if err != nil {
		l.Warn("login_failed", "status", 401, "reason", loginFailureReason(err), "error", err)
		s.Metrics.Login("failure")
		return nil, fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	l.Info("login_successful", "subject", res.Account.ExternalSubject, "role", res.Account.Role)
	s.Metrics.Login("success")
	s.Accounts.publish(ctx, events.UserLoggedIn, res.Account, "")
	return res, nil
}

func (s *SessionService) login(ctx context.Context, code string) (*LoginResult, error) {
	ext, err := s.Identity.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	acc, err := s.Accounts.Resolve(ctx, ext)
	if err != nil {
		return nil, fmt.Errorf("resolve account: %w", err)
	}

	access, accessExp, err := s.Codec.IssueAccessToken(acc.ExternalSubject, acc.Role)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := s.Codec.IssueRefreshSecret(acc.ExternalSubject)
	if err != nil {
		return nil, err
	}

	if err := s.Credentials.Put(ctx, acc.ID, refresh, refreshExp); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &LoginResult{
		AccessToken:  access,
		AccessExp:    accessExp,
		RefreshToken: refresh,
		RefreshExp:   refreshExp,
		Account:      acc,
	}, nil
}

func loginFailureReason(err error) string {
	switch {
	case errors.Is(err, identity.ErrExchangeFailed):
		return "exchange_failed"
	case errors.Is(err, identity.ErrIdentityTokenInvalid):
		return "identity_token_invalid"
	default:
		return "internal"
	}
}

// Refresh issues a new access token for the account owning the secret. The
// role comes from the stored account. The secret itself is not rotated.
func (s *SessionService) Refresh(ctx context.Context, secret string) (*RefreshResult, error) {
	l := logging.FromContext(ctx).With("svc", "session.refresh")

	res, err := s.refresh(ctx, secret)
	if err != nil {
		if errors.Is(err, ErrRefreshInvalidOrExpired) {
			l.Warn("refresh_rejected", "status", 401, "error", err)
			s.Metrics.Refresh("rejected")
		} else {
			l.Error("refresh_failed", "status", 500, "error", err)
			s.Metrics.Refresh("error")
		}
		return nil, err
	}

	l.Info("refresh_successful", "subject", res.Account.ExternalSubject)
	s.Metrics.Refresh("success")
	return res, nil
}

func (s *SessionService) refresh(ctx context.Context, secret string) (*RefreshResult, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: missing", ErrRefreshInvalidOrExpired)
	}

	rec, err := s.Credentials.ValidRecord(ctx, secret)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrRefreshInvalidOrExpired
	}

	acc, err := s.Accounts.GetByID(ctx, rec.AccountID)
	if errors.Is(err, ErrAccountNotFound) {
		return nil, fmt.Errorf("%w: %w", ErrRefreshInvalidOrExpired, err)
	}
	if err != nil {
		return nil, err
	}

	access, exp, err := s.Codec.IssueAccessToken(acc.ExternalSubject, acc.Role)
	if err != nil {
		return nil, err
	}
	return &RefreshResult{AccessToken: access, AccessExp: exp, Account: acc}, nil
}

// Logout revokes the account's refresh secret. Logging out twice is not an error.
func (s *SessionService) Logout(ctx context.Context, accountID uint) error {
	l := logging.FromContext(ctx).With("svc", "session.logout", "account_id", accountID)

	if err := s.Credentials.Revoke(ctx, accountID); err != nil {
		l.Error("logout_failed", "status", 500, "reason", "cannot revoke refresh token", "error", err)
		return err
	}

	s.Metrics.Logout()
	if acc, err := s.Accounts.GetByID(ctx, accountID); err == nil {
		l.Info("successful_logout", "subject", acc.ExternalSubject)
		s.Accounts.publish(ctx, events.UserLoggedOut, acc, "")
	}
	return nil
}

// LogoutByRefresh revokes the session a refresh secret belongs to. An unknown
// secret is treated as already logged out.
func (s *SessionService) LogoutByRefresh(ctx context.Context, secret string) error {
	if secret == "" {
		return nil
	}
	rec, err := s.Credentials.FindByToken(ctx, secret)
	if err != nil {
		return err
	}
	if rec == nil {
		return nil
	}
	return s.Logout(ctx, rec.AccountID)
}

func (s *SessionService) LogoutBySubject(ctx context.Context, subject string) error {
	acc, err := s.Accounts.Get(ctx, subject)
	if errors.Is(err, ErrAccountNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.Logout(ctx, acc.ID)
}

// Authenticate verifies a bearer access token.
func (s *SessionService) Authenticate(token string) (tokens.Principal, error) {
	if token == "" {
		return tokens.Principal{}, fmt.Errorf("%w: empty token", tokens.ErrMalformed)
	}
	return s.Codec.Verify(token)
}
