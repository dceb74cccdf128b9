package repo

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/news_website/internal/models"
)

func (r *GormRepo) FindAccountBySubject(ctx context.Context, subject string) (*models.Account, error) {
	var a models.Account
	if err := r.DB.WithContext(ctx).Where("external_subject = ?", subject).First(&a).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (r *GormRepo) FindAccountByID(ctx context.Context, id uint) (*models.Account, error) {
	var a models.Account
	if err := r.DB.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// CreateAccountIfNotExists inserts a unless an account with the same external
// subject already exists. It returns the stored row and whether it was created
// by this call. Concurrent first logins resolve to a single row.
func (r *GormRepo) CreateAccountIfNotExists(ctx context.Context, a *models.Account) (*models.Account, bool, error) {
	tx := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "external_subject"}}, DoNothing: true}).
		Create(a)
	if tx.Error != nil {
		return nil, false, tx.Error
	}

	stored, err := r.FindAccountBySubject(ctx, a.ExternalSubject)
	if err != nil {
		return nil, false, err
	}
	return stored, tx.RowsAffected == 1, nil
}

// TransitionEditorRequest moves the account from one editor request state to
// another only if it is still in from. ok is false when the row did not match.
func (r *GormRepo) TransitionEditorRequest(ctx context.Context, id uint, from models.EditorRequestState, role models.Role, to models.EditorRequestState) (bool, error) {
	tx := r.DB.WithContext(ctx).Model(&models.Account{}).
		Where("id = ? AND editor_request_status = ?", id, from).
		Updates(map[string]any{
			"role":                  role,
			"editor_request_status": to,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

func (r *GormRepo) SetRole(ctx context.Context, id uint, role models.Role, state models.EditorRequestState) error {
	tx := r.DB.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"role":                  role,
			"editor_request_status": state,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) ListAccounts(ctx context.Context, offset, limit int) (int64, []models.Account, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Account{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var accounts []models.Account
	if err := r.DB.WithContext(ctx).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&accounts).Error; err != nil {
		return 0, nil, err
	}
	return total, accounts, nil
}
