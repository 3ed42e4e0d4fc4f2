package store

import (
	"context"
	"time"

	"account-auth/internal/domain"

	"github.com/google/uuid"
)

// Credential-state transitions. Each one is a single guarded UPDATE so a code
// or token can only be spent once even under concurrent requests; the bool
// result reports whether the guard matched.

// ConsumeVerificationCode marks the record verified and clears its code.
func (u *UserStore) ConsumeVerificationCode(ctx context.Context, id uuid.UUID, code string) (bool, error) {
	tx := u.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ? AND verification_code = ?", id, code).
		Updates(map[string]any{
			"verified":          true,
			"verification_code": nil,
			"updated_at":        time.Now().UTC(),
		})
	return tx.RowsAffected == 1, translateErr(tx.Error)
}

// SetResetToken stores a new reset token, replacing any previous one.
func (u *UserStore) SetResetToken(ctx context.Context, id uuid.UUID, token string, expiry time.Time) error {
	tx := u.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"reset_token":        token,
			"reset_token_expiry": expiry.UTC(),
			"updated_at":         time.Now().UTC(),
		})
	if tx.Error != nil {
		return translateErr(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// ResetPassword writes the new hash and clears the reset token, provided the
// record still holds token.
func (u *UserStore) ResetPassword(ctx context.Context, id uuid.UUID, token, passwordHash string) (bool, error) {
	tx := u.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ? AND reset_token = ?", id, token).
		Updates(map[string]any{
			passwordHashColumn:   passwordHash,
			"reset_token":        nil,
			"reset_token_expiry": nil,
			"updated_at":         time.Now().UTC(),
		})
	return tx.RowsAffected == 1, translateErr(tx.Error)
}
