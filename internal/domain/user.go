package domain

import "time"

// User is the credential record of one account. PasswordHash is never
// serialized; the store only selects it on explicit request.
type User struct {
	ID               UserID     `gorm:"type:uuid;primaryKey" db:"id" json:"id"`
	Username         string     `gorm:"type:text;not null" db:"username" json:"username"`
	FirstName        *string    `gorm:"type:text" db:"first_name" json:"firstName,omitempty"`
	LastName         *string    `gorm:"type:text" db:"last_name" json:"lastName,omitempty"`
	Email            string     `gorm:"type:text;not null;uniqueIndex:ux_users_email" db:"email" json:"email"`
	PasswordHash     string     `gorm:"type:text;not null" db:"password_hash" json:"-"`
	Verified         bool       `gorm:"not null;default:false" db:"verified" json:"verified"`
	VerificationCode *string    `gorm:"type:text;index:ix_users_verification_code" db:"verification_code" json:"-"`
	ResetToken       *string    `gorm:"type:text;index:ix_users_reset_token" db:"reset_token" json:"-"`
	ResetTokenExpiry *time.Time `db:"reset_token_expiry" json:"-"`
	CreatedAt        time.Time  `gorm:"not null" db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time  `gorm:"not null" db:"updated_at" json:"updatedAt"`
}

func (User) TableName() string { return "users" }
