package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/webstudio/backend/internal/domain/identity"
	"github.com/webstudio/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SessionRevoker invalidates the tokens of a user
type SessionRevoker interface {
	RevokeSessions(ctx context.Context, userID uuid.UUID) error
}

// UserService handles admin user management
type UserService struct {
	userRepo  identity.UserRepository
	sessions  SessionRevoker
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewUserService creates a new user service. sessions may be nil.
func NewUserService(userRepo identity.UserRepository, sessions SessionRevoker, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		sessions: sessions,
		logger:   logger,
	}
}

// WithPublisher sends UserCreated, UserDeactivated and UserPasswordChanged
// to the event bus after each successful write
func (s *UserService) WithPublisher(p shared.EventPublisher) *UserService {
	s.publisher = p
	return s
}

// Create creates a new active user
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*UserDTO, error) {
	s.logger.Info("Creating new user", zap.String("email", input.Email))

	user, err := identity.NewUser(input.Email, input.Name, input.Password, identity.ParseRole(input.Role))
	if err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, user.Email)
	if err != nil {
		s.logger.Error("Failed to check email existence", zap.Error(err))
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to check email availability", err)
	}
	if exists {
		return nil, shared.NewDomainError("EMAIL_EXISTS", "Email already exists")
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, err
	}

	s.logger.Info("User created successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))
	s.publish(ctx, user)

	dto := ToUserDTO(user)
	return &dto, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := ToUserDTO(user)
	return &dto, nil
}

// List retrieves a paginated list of users
func (s *UserService) List(ctx context.Context, input ListUsersInput) (*UserListResult, error) {
	filter := identity.NewUserFilter()
	filter.Keyword = input.Search
	filter.Active = input.Active
	if input.Role != "" {
		role := identity.ParseRole(input.Role)
		filter.Role = &role
	}
	if input.Page > 0 {
		filter.Page = input.Page
	}
	if input.PageSize > 0 && input.PageSize <= 100 {
		filter.PageSize = input.PageSize
	}
	if input.SortBy != "" {
		filter.SortBy = input.SortBy
	}
	if input.SortOrder != "" {
		filter.SortOrder = input.SortOrder
	}

	users, total, err := s.userRepo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list users", zap.Error(err))
		return nil, err
	}

	totalPages := int(total) / filter.PageSize
	if int(total)%filter.PageSize > 0 {
		totalPages++
	}

	dtos := make([]UserDTO, len(users))
	for i, user := range users {
		dtos[i] = ToUserDTO(user)
	}

	return &UserListResult{
		Users:      dtos,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages,
	}, nil
}

// Update changes a user's name and role
func (s *UserService) Update(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*UserDTO, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	roleChanged := user.Role != identity.ParseRole(input.Role)
	if err := user.Update(input.Name, identity.ParseRole(input.Role)); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update user", zap.Error(err))
		return nil, err
	}

	// outstanding tokens still carry the old role
	if roleChanged {
		s.revokeSessions(ctx, user.ID)
	}

	s.logger.Info("User updated", zap.String("user_id", id.String()))
	dto := ToUserDTO(user)
	return &dto, nil
}

// ChangePassword changes the password after verifying the old one
func (s *UserService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	user, err := s.find(ctx, input.UserID)
	if err != nil {
		return err
	}

	if err := user.ChangePassword(input.OldPassword, input.NewPassword); err != nil {
		return err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to change password", zap.Error(err))
		return err
	}

	s.publish(ctx, user)
	s.logger.Info("Password changed", zap.String("user_id", input.UserID.String()))
	return nil
}

// Delete deletes a user. Users cannot delete their own account.
func (s *UserService) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	user, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := user.GuardSelfAction(actorID); err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		s.logger.Error("Failed to delete user", zap.Error(err))
		return err
	}
	s.revokeSessions(ctx, user.ID)

	s.logger.Info("User deleted", zap.String("user_id", id.String()))
	return nil
}

// Activate re-enables a user
func (s *UserService) Activate(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := user.Activate(); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to activate user", zap.Error(err))
		return nil, err
	}

	s.logger.Info("User activated", zap.String("user_id", id.String()))
	dto := ToUserDTO(user)
	return &dto, nil
}

// Deactivate blocks a user and revokes their sessions. Users cannot deactivate themselves.
func (s *UserService) Deactivate(ctx context.Context, actorID, id uuid.UUID) (*UserDTO, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := user.GuardSelfAction(actorID); err != nil {
		return nil, err
	}

	if err := user.Deactivate(); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to deactivate user", zap.Error(err))
		return nil, err
	}
	s.revokeSessions(ctx, user.ID)
	s.publish(ctx, user)

	s.logger.Info("User deactivated", zap.String("user_id", id.String()))
	dto := ToUserDTO(user)
	return &dto, nil
}

// EnsureBootstrapAdmin creates the first admin when no users exist.
// It reports whether a user was created.
func (s *UserService) EnsureBootstrapAdmin(ctx context.Context, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}

	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	user, err := identity.NewUser(email, "Administrator", password, identity.RoleAdmin)
	if err != nil {
		return false, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return false, err
	}

	s.logger.Info("Bootstrap admin created", zap.String("email", user.Email))
	return true, nil
}

func (s *UserService) find(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.WrapDomainError("NOT_FOUND", "User not found", err)
		}
		s.logger.Error("Failed to find user", zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (s *UserService) revokeSessions(ctx context.Context, id uuid.UUID) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.RevokeSessions(ctx, id); err != nil {
		s.logger.Error("Failed to revoke sessions", zap.String("user_id", id.String()), zap.Error(err))
	}
}

func (s *UserService) publish(ctx context.Context, user *identity.User) {
	if err := shared.PublishAndClear(ctx, s.publisher, user); err != nil {
		s.logger.Warn("Failed to publish user events", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
}
