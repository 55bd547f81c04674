package service

import (
	"LostFound/internal/model"
	"LostFound/internal/repo"
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// bcryptCost — стоимость хеширования паролей.
const bcryptCost = 12

// UserService инкапсулирует регистрацию и аутентификацию.
type UserService struct {
	users repo.UserRepository
}

// NewUserService создаёт сервис пользователей.
func NewUserService(users repo.UserRepository) *UserService {
	return &UserService{users: users}
}

// Register создаёт пользователя с захешированным паролем.
// Занятый email — ErrEmailTaken.
func (s *UserService) Register(ctx context.Context, name, email, phone, password string) (*model.User, error) {
	existing, err := s.users.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:     name,
		Email:    email,
		Phone:    phone,
		Password: string(hash),
	}
	created, err := s.users.CreateUser(ctx, user)
	if err != nil {
		// гонка двух регистраций на один email упирается в уникальный индекс
		if repo.IsDuplicatedKey(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return created, nil
}

// Login проверяет пару email/пароль и возвращает пользователя.
// Любое несовпадение — ErrInvalidCredentials, без уточнения причины.
func (s *UserService) Login(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// ChangePassword меняет пароль после проверки текущего.
func (s *UserService) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcryptCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, string(hash))
}
