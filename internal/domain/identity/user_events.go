package identity

import "github.com/webstudio/backend/internal/domain/shared"

const AggregateTypeUser = "User"

const (
	EventTypeUserCreated         = "UserCreated"
	EventTypeUserDeactivated     = "UserDeactivated"
	EventTypeUserPasswordChanged = "UserPasswordChanged"
)

// UserCreatedEvent is recorded by NewUser
type UserCreatedEvent struct {
	shared.EventMeta
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// UserDeactivatedEvent is recorded by Deactivate; the service also revokes
// the account's sessions
type UserDeactivatedEvent struct {
	shared.EventMeta
	Email string `json:"email"`
}

type UserPasswordChangedEvent struct {
	shared.EventMeta
	Email string `json:"email"`
}

func userEvent(eventType string, u *User) shared.EventMeta {
	return shared.NewEventMeta(eventType, AggregateTypeUser, u.ID)
}

func NewUserCreatedEvent(u *User) *UserCreatedEvent {
	return &UserCreatedEvent{EventMeta: userEvent(EventTypeUserCreated, u), Email: u.Email, Role: u.Role}
}

func NewUserDeactivatedEvent(u *User) *UserDeactivatedEvent {
	return &UserDeactivatedEvent{EventMeta: userEvent(EventTypeUserDeactivated, u), Email: u.Email}
}

func NewUserPasswordChangedEvent(u *User) *UserPasswordChangedEvent {
	return &UserPasswordChangedEvent{EventMeta: userEvent(EventTypeUserPasswordChanged, u), Email: u.Email}
}
