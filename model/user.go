package model

import (
	"context"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	"gorm.io/gorm"

	"github.com/agentsim/simcheck/common"
	"github.com/agentsim/simcheck/common/random"
	"github.com/agentsim/simcheck/dto"
)

// User is an account of the reference backend. Guests are created by test-login.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-" gorm:"not null"`
	IsGuest      bool      `json:"is_guest"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToDTO strips the credentials.
func (u *User) ToDTO() dto.User {
	return dto.User{
		ID:      u.ID,
		Email:   u.Email,
		Name:    u.Name,
		IsGuest: u.IsGuest,
	}
}

// ValidatePassword compares password against the stored hash.
func (u *User) ValidatePassword(password string) bool {
	return common.ValidatePasswordAndHash(password, u.PasswordHash)
}

// CreateUser stores a new account; ErrDuplicate when the email is taken.
func CreateUser(ctx context.Context, email, password, name string, guest bool) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hashed, err := common.Password2Hash(password)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	user := &User{
		ID:           random.NewID(),
		Email:        email,
		Name:         name,
		PasswordHash: hashed,
		IsGuest:      guest,
		CreatedAt:    time.Now().UTC(),
	}
	err = withStoreRetry(ctx, func() error {
		return DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var count int64
			if err := tx.Model(&User{}).Where("email = ?", email).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrDuplicate
			}
			return tx.Create(user).Error
		})
	})
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, ErrDuplicate
		}
		return nil, errors.Wrap(err, "create user")
	}
	return user, nil
}

// GetUserByEmail looks an account up case-insensitively.
func GetUserByEmail(ctx context.Context, email string) (*User, error) {
	user := &User{}
	err := DB.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(user).Error
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

func GetUserByID(ctx context.Context, id string) (*User, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	user := &User{}
	if err := DB.WithContext(ctx).First(user, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

// UpdateUserName changes the display name of id.
func UpdateUserName(ctx context.Context, id, name string) (*User, error) {
	err := withStoreRetry(ctx, func() error {
		res := DB.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update("name", name)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "update user name")
	}
	return GetUserByID(ctx, id)
}
