package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"gorm.io/gorm"

	"github.com/cppla/blog/models"
	"github.com/cppla/blog/utils"
)

// UserService is the credential store: registration, login and identity lookup.
type UserService struct {
	db       *gorm.DB
	hashCost int

	dummyOnce sync.Once
	dummy     string
}

// NewUserService creates a UserService. hashCost 0 selects the bcrypt default.
func NewUserService(db *gorm.DB, hashCost int) *UserService {
	return &UserService{db: db, hashCost: hashCost}
}

// Register creates an account. It fails with ErrDuplicateEmail, without writing,
// when the email is taken, including when a concurrent registration wins the race.
func (s *UserService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if email == "" || password == "" || name == "" {
		return nil, fmt.Errorf("%w: email, password and name are required", ErrValidation)
	}

	exists, err := s.emailExists(s.db.WithContext(ctx), email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	hash, err := utils.HashPassword(password, s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := models.User{Email: email, PasswordHash: hash, Name: name}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := s.emailExists(tx, email)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateEmail
		}
		if err := tx.Create(&user).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrDuplicateEmail
			}
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.Sugar.Infow("user registered", "user_id", user.ID)
	return &user, nil
}

// Login checks credentials. A missing email and a wrong password cost the same bcrypt work.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.TrimSpace(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.BurnPasswordCheck(s.dummyHash(), password)
		return nil, ErrEmailNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, ErrWrongPassword
	}
	return &user, nil
}

// Get loads a user by id.
func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load user %d: %w", id, err)
	}
	return &user, nil
}

// Count returns the number of registered users.
func (s *UserService) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error
	return n, err
}

// dummyHash is compared against when no account matches, at the same cost as stored hashes.
func (s *UserService) dummyHash() string {
	s.dummyOnce.Do(func() {
		hash, err := utils.HashPassword("dummy-password-for-timing", s.hashCost)
		if err != nil {
			utils.Sugar.Warnw("dummy hash failed", "error", err)
		}
		s.dummy = hash
	})
	return s.dummy
}

func (s *UserService) emailExists(db *gorm.DB, email string) (bool, error) {
	var n int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return n > 0, nil
}
