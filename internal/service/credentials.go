package service

import (
	"context"
	"errors"
	"time"

	"github.com/Skotchmaster/news_website/internal/models"
	"github.com/Skotchmaster/news_website/internal/repo"
)

type RefreshRepository interface {
	UpsertRefresh(ctx context.Context, t *models.RefreshToken) error
	FindRefreshByToken(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	FindRefreshByAccountID(ctx context.Context, accountID uint) (*models.RefreshToken, error)
	DeleteRefreshByAccountID(ctx context.Context, accountID uint) error
}

// CredentialStore keeps refresh secrets in the datastore, hashed. Every check
// reads the store so a revocation is visible to all instances at once.
type CredentialStore struct {
	Repo RefreshRepository
	Now  func() time.Time
}

func (s *CredentialStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Put replaces whatever refresh secret the account had before.
func (s *CredentialStore) Put(ctx context.Context, accountID uint, token string, expiry time.Time) error {
	return s.Repo.UpsertRefresh(ctx, &models.RefreshToken{
		AccountID: accountID,
		Token:     repo.Sha256Hex(token),
		IssuedAt:  s.now().UnixNano(),
		ExpiresAt: expiry.Unix(),
	})
}

// FindByToken returns nil without error when the secret is unknown.
func (s *CredentialStore) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	rec, err := s.Repo.FindRefreshByToken(ctx, repo.Sha256Hex(token))
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *CredentialStore) IsValid(ctx context.Context, token string) (bool, error) {
	rec, err := s.ValidRecord(ctx, token)
	return rec != nil, err
}

// ValidRecord returns the stored record for a known, unexpired secret and nil otherwise.
func (s *CredentialStore) ValidRecord(ctx context.Context, token string) (*models.RefreshToken, error) {
	rec, err := s.FindByToken(ctx, token)
	if err != nil || rec == nil {
		return nil, err
	}
	if rec.Expired(s.now()) {
		return nil, nil
	}
	return rec, nil
}

// Revoke is a no-op for an account without a refresh secret.
func (s *CredentialStore) Revoke(ctx context.Context, accountID uint) error {
	return s.Repo.DeleteRefreshByAccountID(ctx, accountID)
}
