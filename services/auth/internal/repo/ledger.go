package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/delivery_platform/pkg/db"
	"github.com/Skotchmaster/delivery_platform/services/auth/internal/models"
)

// Record adds token to the revocation ledger. The unique index on token
// turns a concurrent or repeated revoke into ErrAlreadyRevoked.
func (r *GormRepo) Record(ctx context.Context, token string, expiresAt time.Time) error {
	row := models.RevokedToken{
		ID:        uuid.NewString(),
		Token:     token,
		RevokedAt: r.now(),
		ExpiresAt: expiresAt.UTC(),
	}
	if err := r.DB.WithContext(ctx).Create(&row).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return ErrAlreadyRevoked
		}
		return err
	}
	return nil
}

func (r *GormRepo) IsRevoked(ctx context.Context, token string) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.RevokedToken{}).
		Where("token = ?", token).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// PurgeExpired drops ledger rows for tokens that would fail verification anyway.
func (r *GormRepo) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("expires_at < ?", now.UTC()).
		Delete(&models.RevokedToken{})
	return res.RowsAffected, res.Error
}
