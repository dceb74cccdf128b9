package events

import (
	"context"
	"time"
)

type Type string

const (
	AccountCreated  Type = "account_created"
	UserLoggedIn    Type = "user_logged_in"
	UserLoggedOut   Type = "user_logged_out"
	EditorRequested Type = "editor_requested"
	EditorApproved  Type = "editor_approved"
	RoleChanged     Type = "role_changed"
)

// Event is published keyed by Subject so all events of one account land on one partition.
type Event struct {
	Type      Type      `json:"type"`
	Subject   string    `json:"subject"`
	AccountID uint      `json:"account_id"`
	Role      string    `json:"role,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	At        time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop drops every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
