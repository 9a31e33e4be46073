package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/delivery_platform/pkg/db"
	"github.com/Skotchmaster/delivery_platform/pkg/tokens"
	"github.com/Skotchmaster/delivery_platform/services/auth/internal/models"
)

// CreateUser inserts u unless its email or username is taken. The lookup is
// only an early exit; concurrent inserts are settled by the unique indexes.
func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).
			Where("email = ? OR username = ?", u.Email, u.Username).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrUserAlreadyExist
		}
		if err := tx.Create(u).Error; err != nil {
			if db.IsUniqueViolation(err) {
				return ErrUserAlreadyExist
			}
			return err
		}
		return nil
	})
}

func (r *GormRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *GormRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *GormRepo) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("last_login", at).Error
}

func (r *GormRepo) ListUsers(ctx context.Context, offset, limit int) ([]models.User, int64, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.User
	if err := r.DB.WithContext(ctx).
		Order("created_at ASC, id ASC").
		Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

type UserPatch struct {
	FullName *string
	Role     *tokens.Role
	IsActive *bool
}

func (p UserPatch) updates() map[string]any {
	m := map[string]any{}
	if p.FullName != nil {
		m["full_name"] = *p.FullName
	}
	if p.Role != nil {
		m["role"] = *p.Role
	}
	if p.IsActive != nil {
		m["is_active"] = *p.IsActive
	}
	return m
}

func (r *GormRepo) UpdateUser(ctx context.Context, id string, patch UserPatch) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&user).Error; err != nil {
			return notFound(err)
		}
		if upd := patch.updates(); len(upd) > 0 {
			if err := tx.Model(&user).Updates(upd).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", id).First(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
