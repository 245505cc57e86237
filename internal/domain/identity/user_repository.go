package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository stores admin accounts. Emails are compared case-insensitively;
// Create fails with a conflict when the address is already registered.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindAll(ctx context.Context, filter UserFilter) ([]*User, int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Count is used at startup to decide whether to seed the first admin
	Count(ctx context.Context) (int64, error)
}

// UserFilter narrows the admin user list. Keyword matches name or email.
type UserFilter struct {
	Keyword   string
	Role      *Role
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// NewUserFilter lists the newest accounts first, 20 per page
func NewUserFilter() UserFilter {
	return UserFilter{Page: 1, PageSize: 20, SortBy: "created_at", SortOrder: "desc"}
}
