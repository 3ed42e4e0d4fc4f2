package store

import (
	"context"
	"time"

	"account-auth/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const passwordHashColumn = "password_hash"

type UserStore struct{ db *gorm.DB }

func (s *Store) Users() *UserStore { return &UserStore{db: s.DB} }

// Create inserts a new credential record. A second record with the same email
// fails with ErrDuplicateKey.
func (u *UserStore) Create(ctx context.Context, usr *domain.User) error {
	if usr.ID == uuid.Nil {
		usr.ID = uuid.New()
	}
	now := time.Now().UTC()
	if usr.CreatedAt.IsZero() {
		usr.CreatedAt = now
	}
	usr.UpdatedAt = now
	return translateErr(u.db.WithContext(ctx).Create(usr).Error)
}

func (u *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return u.first(ctx, false, "id = ?", id)
}

func (u *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return u.first(ctx, false, "email = ?", email)
}

// GetByEmailWithPassword is the only read that loads the password hash.
func (u *UserStore) GetByEmailWithPassword(ctx context.Context, email string) (*domain.User, error) {
	return u.first(ctx, true, "email = ?", email)
}

func (u *UserStore) GetByVerificationCode(ctx context.Context, code string) (*domain.User, error) {
	return u.first(ctx, false, "verification_code = ?", code)
}

// GetByActiveResetToken finds the record holding token whose expiry is still
// after now.
func (u *UserStore) GetByActiveResetToken(ctx context.Context, token string, now time.Time) (*domain.User, error) {
	return u.first(ctx, false, "reset_token = ? AND reset_token_expiry > ?", token, now.UTC())
}

func (u *UserStore) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := u.db.WithContext(ctx).Omit(passwordHashColumn).Order("created_at").Find(&users).Error; err != nil {
		return nil, translateErr(err)
	}
	return users, nil
}

func (u *UserStore) first(ctx context.Context, withPassword bool, query string, args ...any) (*domain.User, error) {
	var user domain.User
	q := u.db.WithContext(ctx)
	if !withPassword {
		q = q.Omit(passwordHashColumn)
	}
	if err := q.Where(query, args...).First(&user).Error; err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}
