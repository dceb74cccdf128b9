package policy

import (
	"slices"

	"github.com/Skotchmaster/news_website/internal/models"
)

type Operation string

const (
	CreateArticle       Operation = "article.create"
	UpdateArticle       Operation = "article.update"
	DeleteArticle       Operation = "article.delete"
	ListAuthorArticles  Operation = "article.list_author"
	ChangeArticleStatus Operation = "article.change_status"
	PublishArticle      Operation = "article.publish"
	CreateComment       Operation = "comment.create"
	UpdateComment       Operation = "comment.update"
	DeleteComment       Operation = "comment.delete"
	ReadingHistory      Operation = "history.read"
	ManageCategories    Operation = "category.manage"
	ManageUsers         Operation = "user.manage"
	ApproveEditor       Operation = "user.approve_editor"
	ViewStats           Operation = "stats.view"
	RequestEditor       Operation = "user.request_editor"
)

var (
	anyRole       = []models.Role{models.RoleUser, models.RoleEditor, models.RoleAdmin}
	editorOrAdmin = []models.Role{models.RoleEditor, models.RoleAdmin}
	adminOnly     = []models.Role{models.RoleAdmin}
	userOnly      = []models.Role{models.RoleUser}
)

// allowLists are explicit per operation; they are not derived from an ordering of roles.
var allowLists = map[Operation][]models.Role{
	CreateArticle:       anyRole,
	UpdateArticle:       anyRole,
	DeleteArticle:       anyRole,
	CreateComment:       anyRole,
	UpdateComment:       anyRole,
	DeleteComment:       anyRole,
	ReadingHistory:      anyRole,
	ListAuthorArticles:  editorOrAdmin,
	ChangeArticleStatus: editorOrAdmin,
	PublishArticle:      adminOnly,
	ManageCategories:    adminOnly,
	ManageUsers:         adminOnly,
	ApproveEditor:       adminOnly,
	ViewStats:           adminOnly,
	RequestEditor:       userOnly,
}

// Permit reports whether role is in the allow-list.
func Permit(role models.Role, allowed []models.Role) bool {
	return role.Valid() && slices.Contains(allowed, role)
}

// Allowed returns a copy of the allow-list for op, nil for an unknown operation.
func Allowed(op Operation) []models.Role {
	return slices.Clone(allowLists[op])
}

func PermitOperation(role models.Role, op Operation) bool {
	allowed, ok := allowLists[op]
	return ok && Permit(role, allowed)
}

// PermitOwnerOrAdmin is layered on top of the role check for operations on
// resources that have an author.
func PermitOwnerOrAdmin(actingSubject, ownerSubject string, actingRole models.Role) bool {
	if actingRole == models.RoleAdmin {
		return true
	}
	return actingSubject != "" && actingSubject == ownerSubject
}
