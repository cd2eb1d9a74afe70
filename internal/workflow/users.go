package workflow

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"newsdesk/internal/domain"
	"newsdesk/internal/events"
	"newsdesk/internal/repo"
)

// ErrInvalidCredentials is returned on a failed login. It never says whether
// the email or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// RegisterUser self-registers an account. The role is always reader; only an
// admin promotes accounts afterwards.
func (s Service) RegisterUser(ctx context.Context, email, username, password string) (domain.User, error) {
	return s.createUser(ctx, email, username, password, domain.RoleReader, "self-register")
}

// CreateUser provisions an account with an explicit role, for admin and CLI
// use.
func (s Service) CreateUser(ctx context.Context, email, username, password string, role domain.Role) (domain.User, error) {
	if !role.Valid() {
		return domain.User{}, validationf("invalid role %q", role)
	}
	return s.createUser(ctx, email, username, password, role, "provision")
}

func (s Service) createUser(ctx context.Context, email, username, password string, role domain.Role, source string) (domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return domain.User{}, validationf("email is required")
	}
	if len(password) < 8 {
		return domain.User{}, validationf("password must be at least 8 characters")
	}
	if _, err := s.Repo.GetUserByEmail(ctx, email); err == nil {
		return domain.User{}, validationf("email already registered")
	} else if !errors.Is(err, repo.ErrNotFound) {
		return domain.User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}
	now := s.now().UTC().Format(time.RFC3339)
	u := domain.User{
		ID:           uuid.New().String(),
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.User{}, err
	}
	defer tx.Rollback()
	if err := s.Repo.InsertUser(ctx, tx, u); err != nil {
		return domain.User{}, err
	}
	if err := s.Events.Append(ctx, tx, "user.created", "user", u.ID, u.ID, events.EventPayload{
		"role":   u.Role,
		"source": source,
	}); err != nil {
		return domain.User{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// Authenticate verifies email/password and returns the account.
func (s Service) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	u, err := s.Repo.GetUserByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// UpdateUserRole promotes or demotes an account. Admin only.
func (s Service) UpdateUserRole(ctx context.Context, actor domain.Actor, userID string, role domain.Role) (domain.User, error) {
	if actor.Role != domain.RoleAdmin {
		return domain.User{}, PermissionDeniedError{Action: "manage user roles"}
	}
	if !role.Valid() {
		return domain.User{}, validationf("invalid role %q", role)
	}
	u, err := s.Repo.GetUser(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	now := s.now().UTC().Format(time.RFC3339)
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.User{}, err
	}
	defer tx.Rollback()
	if err := s.Repo.UpdateUserRole(ctx, tx, userID, role, now); err != nil {
		return domain.User{}, err
	}
	if err := s.Events.Append(ctx, tx, "user.role.updated", "user", userID, actor.ID, events.EventPayload{
		"from": u.Role,
		"to":   role,
	}); err != nil {
		return domain.User{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.User{}, err
	}
	u.Role = role
	u.UpdatedAt = now
	return u, nil
}

// ListUsers is admin only.
func (s Service) ListUsers(ctx context.Context, actor domain.Actor) ([]domain.User, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, PermissionDeniedError{Action: "list users"}
	}
	return s.Repo.ListUsers(ctx)
}

// ProvisionUser is the admin-gated variant of CreateUser for the HTTP API.
func (s Service) ProvisionUser(ctx context.Context, actor domain.Actor, email, username, password string, role domain.Role) (domain.User, error) {
	if actor.Role != domain.RoleAdmin {
		return domain.User{}, PermissionDeniedError{Action: "manage users"}
	}
	return s.CreateUser(ctx, email, username, password, role)
}

// GetUser looks up one account. Admin only.
func (s Service) GetUser(ctx context.Context, actor domain.Actor, userID string) (domain.User, error) {
	if actor.Role != domain.RoleAdmin {
		return domain.User{}, PermissionDeniedError{Action: "manage users"}
	}
	return s.Repo.GetUser(ctx, userID)
}

// UserUpdateOptions are admin edits to an account. Nil fields keep the
// stored value.
type UserUpdateOptions struct {
	Email    *string
	Username *string
	Password *string
	Role     *domain.Role
	IsActive *bool
}

// UpdateUser applies admin edits to an account. A new password is re-hashed;
// a new email is normalized and must not collide with another account.
func (s Service) UpdateUser(ctx context.Context, actor domain.Actor, userID string, opts UserUpdateOptions) (domain.User, error) {
	if actor.Role != domain.RoleAdmin {
		return domain.User{}, PermissionDeniedError{Action: "manage users"}
	}
	u, err := s.Repo.GetUser(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	if opts.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*opts.Email))
		if email == "" {
			return domain.User{}, validationf("email is required")
		}
		if email != u.Email {
			if _, err := s.Repo.GetUserByEmail(ctx, email); err == nil {
				return domain.User{}, validationf("email already registered")
			} else if !errors.Is(err, repo.ErrNotFound) {
				return domain.User{}, err
			}
			u.Email = email
		}
	}
	if opts.Username != nil {
		u.Username = *opts.Username
	}
	if opts.Password != nil {
		if len(*opts.Password) < 8 {
			return domain.User{}, validationf("password must be at least 8 characters")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*opts.Password), bcrypt.DefaultCost)
		if err != nil {
			return domain.User{}, err
		}
		u.PasswordHash = string(hash)
	}
	if opts.Role != nil {
		if !opts.Role.Valid() {
			return domain.User{}, validationf("invalid role %q", *opts.Role)
		}
		u.Role = *opts.Role
	}
	if opts.IsActive != nil {
		u.IsActive = *opts.IsActive
	}
	u.UpdatedAt = s.now().UTC().Format(time.RFC3339)

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.User{}, err
	}
	defer tx.Rollback()
	if err := s.Repo.UpdateUser(ctx, tx, u); err != nil {
		return domain.User{}, err
	}
	if err := s.Events.Append(ctx, tx, "user.updated", "user", u.ID, actor.ID, events.EventPayload{
		"role":   u.Role,
		"active": u.IsActive,
	}); err != nil {
		return domain.User{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// ToggleUserActivation flips an account's is_active flag. Admin only.
func (s Service) ToggleUserActivation(ctx context.Context, actor domain.Actor, userID string) (domain.User, error) {
	if actor.Role != domain.RoleAdmin {
		return domain.User{}, PermissionDeniedError{Action: "manage users"}
	}
	u, err := s.Repo.GetUser(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	u.IsActive = !u.IsActive
	u.UpdatedAt = s.now().UTC().Format(time.RFC3339)

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.User{}, err
	}
	defer tx.Rollback()
	if err := s.Repo.UpdateUser(ctx, tx, u); err != nil {
		return domain.User{}, err
	}
	if err := s.Events.Append(ctx, tx, "user.activation.toggled", "user", u.ID, actor.ID, events.EventPayload{
		"active": u.IsActive,
	}); err != nil {
		return domain.User{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// DeleteUser permanently removes an account; the user's articles, comments,
// likes and bookmarks cascade at the schema level. Admin only.
func (s Service) DeleteUser(ctx context.Context, actor domain.Actor, userID string) error {
	if actor.Role != domain.RoleAdmin {
		return PermissionDeniedError{Action: "manage users"}
	}
	if _, err := s.Repo.GetUser(ctx, userID); err != nil {
		return err
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := s.Repo.DeleteUser(ctx, tx, userID); err != nil {
		return err
	}
	if err := s.Events.Append(ctx, tx, "user.deleted", "user", userID, actor.ID, nil); err != nil {
		return err
	}
	return tx.Commit()
}
