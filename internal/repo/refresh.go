package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/news_website/internal/models"
)

// UpsertRefresh keeps a single row per account. An existing row is overwritten
// only by a write that was issued no earlier than the stored one, so a late
// commit of an older login cannot clobber a newer token.
func (r *GormRepo) UpsertRefresh(ctx context.Context, t *models.RefreshToken) error {
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "account_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"token", "issued_at", "expires_at"}),
			Where: clause.Where{Exprs: []clause.Expression{
				gorm.Expr("refresh_tokens.issued_at <= excluded.issued_at"),
			}},
		}).
		Create(t).Error
}

func (r *GormRepo) FindRefreshByToken(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	var t models.RefreshToken
	if err := r.DB.WithContext(ctx).Where("token = ?", tokenHash).First(&t).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r *GormRepo) FindRefreshByAccountID(ctx context.Context, accountID uint) (*models.RefreshToken, error) {
	var t models.RefreshToken
	if err := r.DB.WithContext(ctx).Where("account_id = ?", accountID).First(&t).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r *GormRepo) DeleteRefreshByAccountID(ctx context.Context, accountID uint) error {
	return r.DB.WithContext(ctx).Where("account_id = ?", accountID).Delete(&models.RefreshToken{}).Error
}
