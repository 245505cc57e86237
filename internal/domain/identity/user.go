package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/webstudio/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Password cost for bcrypt
const bcryptCost = 12

var (
	hasLetter = regexp.MustCompile(`[\p{L}]`)
	hasNumber = regexp.MustCompile(`[0-9]`)
)

// User is an admin panel account.
// It is the aggregate root for user-related operations.
type User struct {
	shared.Aggregate
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	IsActive     bool
	LastLoginAt  *time.Time
}

// NewUser creates an active user with a hashed password
func NewUser(email, name, password string, role Role) (*User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Role must be admin or editor")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.WrapDomainError("PASSWORD_HASH_ERROR", "Failed to hash password", err)
	}

	user := &User{
		Aggregate:    shared.NewAggregate(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: passwordHash,
		Role:         role,
		IsActive:     true,
	}

	user.Record(NewUserCreatedEvent(user))

	return user, nil
}

// Update changes the user's display name and role
func (u *User) Update(name string, role Role) error {
	if err := validateName(name); err != nil {
		return err
	}
	if !role.IsValid() {
		return shared.NewDomainError("INVALID_ROLE", "Role must be admin or editor")
	}

	u.Name = strings.TrimSpace(name)
	u.Role = role
	u.Touch()
	return nil
}

// ChangePassword verifies the current password before setting a new one
func (u *User) ChangePassword(oldPassword, newPassword string) error {
	if !u.VerifyPassword(oldPassword) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}
	return u.SetPassword(newPassword)
}

// SetPassword sets a new password (admin reset, no old password check)
func (u *User) SetPassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		return shared.WrapDomainError("PASSWORD_HASH_ERROR", "Failed to hash password", err)
	}

	u.PasswordHash = passwordHash
	u.Touch()
	u.Record(NewUserPasswordChangedEvent(u))
	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// Activate re-enables a deactivated account
func (u *User) Activate() error {
	if u.IsActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "User is already active")
	}
	u.IsActive = true
	u.Touch()
	return nil
}

// Deactivate blocks the account from logging in
func (u *User) Deactivate() error {
	if !u.IsActive {
		return shared.NewDomainError("ALREADY_DEACTIVATED", "User is already deactivated")
	}
	u.IsActive = false
	u.Touch()
	u.Record(NewUserDeactivatedEvent(u))
	return nil
}

// RecordLogin stamps a successful login
func (u *User) RecordLogin(at time.Time) {
	at = at.UTC()
	u.LastLoginAt = &at
	u.UpdatedAt = at
}

// Permissions returns the permission codes granted by the user's role
func (u *User) Permissions() []string {
	return u.Role.Permissions()
}

// GuardSelfAction rejects destructive actions an account performs on itself
func (u *User) GuardSelfAction(actorID uuid.UUID) error {
	if u.ID == actorID {
		return shared.NewDomainError("SELF_ACTION_FORBIDDEN", "You cannot delete or deactivate your own account")
	}
	return nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := shared.ValidateEmail(email); err != nil {
		return "", err
	}
	return email, nil
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Name cannot exceed 200 characters")
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	}
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		// bcrypt ignores everything past 72 bytes
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	if !hasLetter.MatchString(password) || !hasNumber.MatchString(password) {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
