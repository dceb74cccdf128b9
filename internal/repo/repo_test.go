package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/news_website/internal/db/dbtest"
	"github.com/Skotchmaster/news_website/internal/models"
)

func newTestRepo(t *testing.T) *GormRepo {
	t.Helper()
	return &GormRepo{DB: dbtest.New(t)}
}

func newAccount(subject string) *models.Account {
	return &models.Account{
		ExternalSubject:     subject,
		Name:                "Name " + subject,
		Email:               subject + "@example.com",
		Role:                models.RoleUser,
		EditorRequestStatus: models.EditorRequestNone,
	}
}

func TestCreateAccountIfNotExists_FirstWriteWins(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()

	first, created, err := r.CreateAccountIfNotExists(ctx, newAccount("g-100"))
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, first.ID)

	again := newAccount("g-100")
	again.Name = "Renamed"
	second, created, err := r.CreateAccountIfNotExists(ctx, again)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Name g-100", second.Name)
}

func TestFindAccount_NotFound(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()

	_, err := r.FindAccountBySubject(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.FindAccountByID(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransitionEditorRequest_Conditional(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()
	a, _, err := r.CreateAccountIfNotExists(ctx, newAccount("g-100"))
	require.NoError(t, err)

	ok, err := r.TransitionEditorRequest(ctx, a.ID, models.EditorRequestNone, models.RoleUser, models.EditorRequestPending)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.TransitionEditorRequest(ctx, a.ID, models.EditorRequestNone, models.RoleUser, models.EditorRequestPending)
	require.NoError(t, err)
	assert.False(t, ok, "state already moved on")

	ok, err = r.TransitionEditorRequest(ctx, a.ID, models.EditorRequestPending, models.RoleEditor, models.EditorRequestApproved)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := r.FindAccountByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleEditor, got.Role)
	assert.Equal(t, models.EditorRequestApproved, got.EditorRequestStatus)
}

func TestSetRole(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()
	a, _, err := r.CreateAccountIfNotExists(ctx, newAccount("g-1"))
	require.NoError(t, err)

	require.NoError(t, r.SetRole(ctx, a.ID, models.RoleAdmin, models.EditorRequestNone))
	got, err := r.FindAccountByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)

	assert.ErrorIs(t, r.SetRole(ctx, 999, models.RoleAdmin, models.EditorRequestNone), ErrNotFound)
}

func TestListAccounts_Paginates(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, _, err := r.CreateAccountIfNotExists(ctx, newAccount(fmt.Sprintf("g-%d", i)))
		require.NoError(t, err)
	}

	total, page, err := r.ListAccounts(ctx, 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, "g-2", page[0].ExternalSubject)
	assert.Equal(t, "g-3", page[1].ExternalSubject)

	_, page, err = r.ListAccounts(ctx, 4, 10)
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestUpsertRefresh_OneRowPerAccount(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, r.UpsertRefresh(ctx, &models.RefreshToken{
		AccountID: 1, Token: Sha256Hex("r1"), IssuedAt: now.UnixNano(), ExpiresAt: now.Add(time.Hour).Unix(),
	}))
	require.NoError(t, r.UpsertRefresh(ctx, &models.RefreshToken{
		AccountID: 1, Token: Sha256Hex("r2"), IssuedAt: now.Add(time.Second).UnixNano(), ExpiresAt: now.Add(2 * time.Hour).Unix(),
	}))

	var count int64
	require.NoError(t, r.DB.Model(&models.RefreshToken{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	_, err := r.FindRefreshByToken(ctx, Sha256Hex("r1"))
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := r.FindRefreshByAccountID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, Sha256Hex("r2"), got.Token)
}

func TestUpsertRefresh_OlderWriteDoesNotClobber(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, r.UpsertRefresh(ctx, &models.RefreshToken{
		AccountID: 7, Token: Sha256Hex("newer"), IssuedAt: now.UnixNano(), ExpiresAt: now.Add(time.Hour).Unix(),
	}))
	require.NoError(t, r.UpsertRefresh(ctx, &models.RefreshToken{
		AccountID: 7, Token: Sha256Hex("older"), IssuedAt: now.Add(-time.Second).UnixNano(), ExpiresAt: now.Add(time.Hour).Unix(),
	}))

	got, err := r.FindRefreshByAccountID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, Sha256Hex("newer"), got.Token)
}

func TestDeleteRefreshByAccountID_Idempotent(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, r.UpsertRefresh(ctx, &models.RefreshToken{
		AccountID: 3, Token: Sha256Hex("r"), IssuedAt: 1, ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}))

	require.NoError(t, r.DeleteRefreshByAccountID(ctx, 3))
	require.NoError(t, r.DeleteRefreshByAccountID(ctx, 3))

	_, err := r.FindRefreshByAccountID(ctx, 3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSha256Hex(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", Sha256Hex("hello"))
	assert.Len(t, Sha256Hex(""), 64)
}
