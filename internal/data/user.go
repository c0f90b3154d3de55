package data

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"

	"moviereview/internal/biz"
)

type userRepo struct {
	data *Data
	log  *log.Helper
}

// NewUserRepo creates a new user repository
func NewUserRepo(data *Data, logger log.Logger) biz.UserRepo {
	return &userRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *userRepo) CreateUser(ctx context.Context, user *biz.User) error {
	dbUser := userToModel(user)
	if err := r.data.DB(ctx).Create(dbUser).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return biz.ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.CreatedAt = dbUser.CreatedAt
	user.UpdatedAt = dbUser.UpdatedAt
	return nil
}

func (r *userRepo) GetUser(ctx context.Context, id string) (*biz.User, error) {
	return r.getUser(ctx, "id = ?", id)
}

func (r *userRepo) GetUserByEmail(ctx context.Context, email string) (*biz.User, error) {
	return r.getUser(ctx, "email = ?", email)
}

func (r *userRepo) getUser(ctx context.Context, cond string, arg string) (*biz.User, error) {
	var dbUser User
	if err := r.data.DB(ctx).Where(cond, arg).Take(&dbUser).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, biz.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return userToBiz(&dbUser), nil
}

// UpdateUser writes the mutable profile fields.
func (r *userRepo) UpdateUser(ctx context.Context, user *biz.User) error {
	result := r.data.DB(ctx).Model(&User{ID: user.ID}).Updates(map[string]interface{}{
		"name":            user.Name,
		"profile_picture": user.ProfilePicture,
	})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return biz.ErrUserExists
		}
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return biz.ErrUserNotFound
	}
	return nil
}

func userToModel(u *biz.User) *User {
	return &User{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		PasswordHash:   u.PasswordHash,
		ProfilePicture: u.ProfilePicture,
		JoinDate:       u.JoinDate,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func userToBiz(u *User) *biz.User {
	return &biz.User{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		PasswordHash:   u.PasswordHash,
		ProfilePicture: u.ProfilePicture,
		JoinDate:       u.JoinDate,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}
