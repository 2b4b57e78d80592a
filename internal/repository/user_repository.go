package repository

import (
	"context"

	"github.com/ucbazaar/shop-backend/internal/model"
	"gorm.io/gorm"
)

type UserRepository interface {
	Ensure(ctx context.Context, id int64, username string) (*model.User, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Ensure creates the user row on first contact; an existing row is left as
// is except for a changed username.
func (r *userRepository) Ensure(ctx context.Context, id int64, username string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		FirstOrCreate(&u, &model.User{ID: id, Username: username}).Error; err != nil {
		return nil, err
	}
	if username != "" && u.Username != username {
		if err := r.db.WithContext(ctx).Model(&u).Update("username", username).Error; err != nil {
			return nil, err
		}
		u.Username = username
	}
	return &u, nil
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}
