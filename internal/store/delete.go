package store

import (
	"context"

	"account-auth/internal/domain"

	"github.com/google/uuid"
)

// Delete removes a credential record. It is only used to roll back a
// registration whose verification email could not be delivered.
func (u *UserStore) Delete(ctx context.Context, id uuid.UUID) error {
	tx := u.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.User{})
	if tx.Error != nil {
		return translateErr(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// CountByEmail reports how many records carry email.
func (u *UserStore) CountByEmail(ctx context.Context, email string) (int64, error) {
	var total int64
	err := u.db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", email).Count(&total).Error
	return total, translateErr(err)
}
