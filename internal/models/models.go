package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUnknownRole = errors.New("unknown role")

// Role is a closed set of permission levels. Anything outside it is rejected at parse time.
type Role string

const (
	RoleUser   Role = "user"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

var roleDescriptions = map[Role]string{
	RoleUser:   "Default user role",
	RoleEditor: "Role have to request to admin",
	RoleAdmin:  "Site administrator",
}

func Roles() []Role {
	return []Role{RoleUser, RoleEditor, RoleAdmin}
}

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	_, ok := roleDescriptions[r]
	return ok
}

func (r Role) Description() string {
	return roleDescriptions[r]
}

type EditorRequestState string

const (
	EditorRequestNone     EditorRequestState = "none"
	EditorRequestPending  EditorRequestState = "pending"
	EditorRequestApproved EditorRequestState = "approved"
)

type Account struct {
	ID                  uint               `gorm:"primaryKey;autoIncrement"                json:"id"`
	ExternalSubject     string             `gorm:"<-:create;uniqueIndex;not null"          json:"google_id"`
	Name                string             `json:"name"`
	Email               string             `json:"email"`
	AvatarURL           string             `json:"avatar_url"`
	Role                Role               `gorm:"type:varchar(16);not null;default:user"  json:"role"`
	EditorRequestStatus EditorRequestState `gorm:"type:varchar(16);not null;default:none" json:"editor_request_status"`
	CreatedAt           time.Time          `json:"created_at"`
}

// RefreshToken holds at most one row per account. Token is the sha256 of the
// refresh secret handed to the client.
type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"           json:"id"`
	AccountID uint   `gorm:"uniqueIndex;not null" json:"account_id"`
	Token     string `gorm:"uniqueIndex;not null" json:"-"`
	IssuedAt  int64  `gorm:"not null"             json:"issued_at"`
	ExpiresAt int64  `gorm:"not null"             json:"expires_at"`
}

func (t *RefreshToken) Expired(now time.Time) bool {
	return !time.Unix(t.ExpiresAt, 0).After(now)
}
