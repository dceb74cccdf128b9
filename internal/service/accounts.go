package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/news_website/internal/events"
	"github.com/Skotchmaster/news_website/internal/identity"
	"github.com/Skotchmaster/news_website/internal/logging"
	"github.com/Skotchmaster/news_website/internal/models"
	"github.com/Skotchmaster/news_website/internal/repo"
	"github.com/Skotchmaster/news_website/internal/util"
)

type AccountRepository interface {
	FindAccountBySubject(ctx context.Context, subject string) (*models.Account, error)
	FindAccountByID(ctx context.Context, id uint) (*models.Account, error)
	CreateAccountIfNotExists(ctx context.Context, a *models.Account) (*models.Account, bool, error)
	TransitionEditorRequest(ctx context.Context, id uint, from models.EditorRequestState, role models.Role, to models.EditorRequestState) (bool, error)
	SetRole(ctx context.Context, id uint, role models.Role, state models.EditorRequestState) error
	ListAccounts(ctx context.Context, offset, limit int) (int64, []models.Account, error)
}

// AccountDirectory maps external identities to accounts and owns the role
// and editor request lifecycle. Accounts are addressed by external subject.
type AccountDirectory struct {
	Repo   AccountRepository
	Events events.Publisher
	Now    func() time.Time
}

func (d *AccountDirectory) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Resolve returns the account for the identity, creating it on first login.
// Profile fields of an existing account are left as they were first written.
func (d *AccountDirectory) Resolve(ctx context.Context, id identity.ExternalIdentity) (*models.Account, error) {
	l := logging.FromContext(ctx).With("svc", "accounts.resolve", "subject", id.Subject)

	existing, err := d.Repo.FindAccountBySubject(ctx, id.Subject)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	acc, created, err := d.Repo.CreateAccountIfNotExists(ctx, &models.Account{
		ExternalSubject:     id.Subject,
		Name:                id.Name,
		Email:               id.Email,
		AvatarURL:           id.PictureURL,
		Role:                models.RoleUser,
		EditorRequestStatus: models.EditorRequestNone,
	})
	if err != nil {
		return nil, err
	}
	if created {
		l.Info("account_created", "account_id", acc.ID)
		d.publish(ctx, events.AccountCreated, acc, "")
	}
	return acc, nil
}

func (d *AccountDirectory) Get(ctx context.Context, subject string) (*models.Account, error) {
	acc, err := d.Repo.FindAccountBySubject(ctx, subject)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, subject)
	}
	return acc, err
}

func (d *AccountDirectory) GetByID(ctx context.Context, id uint) (*models.Account, error) {
	acc, err := d.Repo.FindAccountByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("%w: id %d", ErrAccountNotFound, id)
	}
	return acc, err
}

func (d *AccountDirectory) RequestEditorRole(ctx context.Context, subject string) (*models.Account, error) {
	l := logging.FromContext(ctx).With("svc", "accounts.request_editor", "subject", subject)

	acc, err := d.Get(ctx, subject)
	if err != nil {
		return nil, err
	}
	if acc.Role != models.RoleUser {
		l.Warn("request_editor_rejected", "reason", "role is not user", "role", acc.Role)
		return nil, fmt.Errorf("%w: role %s cannot request editor", ErrInvalidRoleTransition, acc.Role)
	}
	if acc.EditorRequestStatus != models.EditorRequestNone {
		l.Warn("request_editor_rejected", "reason", "request exists", "state", acc.EditorRequestStatus)
		return nil, ErrRequestAlreadyPending
	}

	ok, err := d.Repo.TransitionEditorRequest(ctx, acc.ID, models.EditorRequestNone, models.RoleUser, models.EditorRequestPending)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRequestAlreadyPending
	}

	acc.EditorRequestStatus = models.EditorRequestPending
	l.Info("editor_requested")
	d.publish(ctx, events.EditorRequested, acc, "")
	return acc, nil
}

func (d *AccountDirectory) ApproveEditorRole(ctx context.Context, targetSubject, actingSubject string) (*models.Account, error) {
	l := logging.FromContext(ctx).With("svc", "accounts.approve_editor", "subject", targetSubject, "actor", actingSubject)

	if err := d.requireAdmin(ctx, actingSubject); err != nil {
		l.Warn("approve_editor_rejected", "reason", "actor is not admin")
		return nil, err
	}

	acc, err := d.Get(ctx, targetSubject)
	if err != nil {
		return nil, err
	}
	if acc.EditorRequestStatus != models.EditorRequestPending {
		return nil, ErrNoPendingRequest
	}

	ok, err := d.Repo.TransitionEditorRequest(ctx, acc.ID, models.EditorRequestPending, models.RoleEditor, models.EditorRequestApproved)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoPendingRequest
	}

	acc.Role = models.RoleEditor
	acc.EditorRequestStatus = models.EditorRequestApproved
	l.Info("editor_approved")
	d.publish(ctx, events.EditorApproved, acc, actingSubject)
	return acc, nil
}

func (d *AccountDirectory) SetRole(ctx context.Context, targetSubject, newRole, actingSubject string) (*models.Account, error) {
	l := logging.FromContext(ctx).With("svc", "accounts.set_role", "subject", targetSubject, "actor", actingSubject)

	if err := d.requireAdmin(ctx, actingSubject); err != nil {
		l.Warn("set_role_rejected", "reason", "actor is not admin")
		return nil, err
	}

	acc, err := d.Get(ctx, targetSubject)
	if err != nil {
		return nil, err
	}
	role, err := models.ParseRole(newRole)
	if err != nil {
		return nil, err
	}

	state := acc.EditorRequestStatus
	switch role {
	case models.RoleEditor:
		state = models.EditorRequestApproved
	case models.RoleUser:
		state = models.EditorRequestNone
	}

	if err := d.Repo.SetRole(ctx, acc.ID, role, state); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, targetSubject)
		}
		return nil, err
	}

	acc.Role = role
	acc.EditorRequestStatus = state
	l.Info("role_changed", "role", role)
	d.publish(ctx, events.RoleChanged, acc, actingSubject)
	return acc, nil
}

// List pages through accounts; page is zero based.
func (d *AccountDirectory) List(ctx context.Context, page, size int) (int64, []models.Account, error) {
	offset, limit := util.Offset(page, size)
	return d.Repo.ListAccounts(ctx, offset, limit)
}

// PromoteAdmins grants admin to the listed subjects that already have an account.
// Unknown subjects are skipped; they are picked up on a later start after their first login.
func (d *AccountDirectory) PromoteAdmins(ctx context.Context, subjects []string) error {
	l := logging.FromContext(ctx).With("svc", "accounts.promote_admins")

	for _, subject := range subjects {
		acc, err := d.Repo.FindAccountBySubject(ctx, subject)
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("admin_bootstrap_skipped", "subject", subject, "reason", "no account")
			continue
		}
		if err != nil {
			return err
		}
		if acc.Role == models.RoleAdmin {
			continue
		}
		if err := d.Repo.SetRole(ctx, acc.ID, models.RoleAdmin, acc.EditorRequestStatus); err != nil {
			return err
		}
		acc.Role = models.RoleAdmin
		l.Info("admin_bootstrapped", "subject", subject)
		d.publish(ctx, events.RoleChanged, acc, "")
	}
	return nil
}

// requireAdmin reads the actor's role from the store, not from the token.
func (d *AccountDirectory) requireAdmin(ctx context.Context, actingSubject string) error {
	actor, err := d.Repo.FindAccountBySubject(ctx, actingSubject)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrForbidden
	}
	if err != nil {
		return err
	}
	if actor.Role != models.RoleAdmin {
		return ErrForbidden
	}
	return nil
}

func (d *AccountDirectory) publish(ctx context.Context, typ events.Type, acc *models.Account, actor string) {
	if d.Events == nil {
		return
	}
	e := events.Event{
		Type:      typ,
		Subject:   acc.ExternalSubject,
		AccountID: acc.ID,
		Role:      string(acc.Role),
		Actor:     actor,
		At:        d.now().UTC(),
	}
	if err := d.Events.Publish(ctx, e); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "type", typ, "subject", acc.ExternalSubject, "error", err)
	}
}
