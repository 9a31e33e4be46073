package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/delivery_platform/pkg/events"
	"github.com/Skotchmaster/delivery_platform/pkg/logging"
	"github.com/Skotchmaster/delivery_platform/pkg/tokens"
	"github.com/Skotchmaster/delivery_platform/services/auth/internal/models"
	"github.com/Skotchmaster/delivery_platform/services/auth/internal/repo"
	"github.com/Skotchmaster/delivery_platform/services/auth/internal/util"
)

type UserPage struct {
	Items []*models.PublicUser
	Total int64
	Page  int
	Size  int
}

func (s *AuthService) ListUsers(ctx context.Context, page, size int) (*UserPage, error) {
	offset, limit := util.Calculate(page, size)
	if page < 1 {
		page = 1
	}

	items, total, err := s.Users.ListUsers(ctx, offset, limit)
	if err != nil {
		logging.FromContext(ctx).Error("list_users_failed", "status", 500, "error", err)
		return nil, err
	}

	out := make([]*models.PublicUser, 0, len(items))
	for i := range items {
		out = append(out, items[i].Public())
	}
	return &UserPage{Items: out, Total: total, Page: page, Size: limit}, nil
}

type UserUpdate struct {
	FullName *string
	Role     *tokens.Role
	IsActive *bool
}

// UpdateUser applies an administrative change. Only ADMIN may change roles
// or touch ADMIN accounts; SUPERVISOR may edit the display name and the
// active flag of everyone else.
func (s *AuthService) UpdateUser(ctx context.Context, actor *tokens.Claims, id string, upd UserUpdate) (*models.PublicUser, error) {
	l := logging.FromContext(ctx).With("svc", "auth.update_user", "actor_id", actor.Subject, "user_id", id)

	if !actor.Role.Privileged() {
		return nil, ErrForbidden
	}
	if upd.Role != nil {
		if actor.Role != tokens.RoleAdmin {
			l.Warn("update_user_failed", "status", 403, "reason", "role change requires ADMIN")
			return nil, fmt.Errorf("%w: role change requires ADMIN", ErrForbidden)
		}
		if _, err := tokens.ParseRole(string(*upd.Role)); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}
	if upd.IsActive != nil && !*upd.IsActive && actor.Subject == id {
		return nil, fmt.Errorf("%w: cannot deactivate yourself", ErrValidation)
	}

	target, err := s.Users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		l.Error("update_user_failed", "status", 500, "error", err)
		return nil, err
	}
	if target.Role == tokens.RoleAdmin && actor.Role != tokens.RoleAdmin {
		l.Warn("update_user_failed", "status", 403, "reason", "ADMIN accounts are managed by ADMIN only")
		return nil, fmt.Errorf("%w: ADMIN accounts are managed by ADMIN only", ErrForbidden)
	}

	user, err := s.Users.UpdateUser(ctx, id, repo.UserPatch{
		FullName: upd.FullName,
		Role:     upd.Role,
		IsActive: upd.IsActive,
	})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		l.Error("update_user_failed", "status", 500, "error", err)
		return nil, err
	}

	evType := events.TypeUserUpdated
	if upd.IsActive != nil && !*upd.IsActive {
		evType = events.TypeUserDeactivated
	}
	l.Info(evType)
	s.publish(ctx, events.Event{Type: evType, UserID: user.ID, Username: user.Username, Role: string(user.Role), ActorID: actor.Subject})
	return user.Public(), nil
}

func (s *AuthService) DeactivateUser(ctx context.Context, actor *tokens.Claims, id string) (*models.PublicUser, error) {
	inactive := false
	return s.UpdateUser(ctx, actor, id, UserUpdate{IsActive: &inactive})
}

// EnsureAdmin creates the bootstrap administrator unless the email or
// username is already taken.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, username, password string) error {
	_, err := s.Register(ctx, RegisterInput{
		Email:    email,
		Username: username,
		Password: password,
		Role:     tokens.RoleAdmin,
	})
	if err != nil && !errors.Is(err, ErrConflict) {
		return err
	}
	return nil
}
