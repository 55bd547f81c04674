package repo

import (
	"LostFound/internal/model"
	"context"

	"gorm.io/gorm"
)

// UserRepository определяет контракт доступа к User для слоя сервиса.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя и возвращает запись с ID.
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)

	// GetUserByEmail ищет пользователя по email. Если не найден —
	// возвращает gorm.ErrRecordNotFound.
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	// GetUserByID ищет пользователя по идентификатору.
	GetUserByID(ctx context.Context, id int64) (*model.User, error)

	// UpdatePassword заменяет хеш пароля пользователя.
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

type userRepo struct {
	db *gorm.DB
}

// NewUserRepository создаёт реализацию репозитория для User.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("password", passwordHash).Error
}
