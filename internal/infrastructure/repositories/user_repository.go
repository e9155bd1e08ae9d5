package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/festoofficial/festo/domain"
	"github.com/festoofficial/festo/internal/infrastructure/database"
)

// UserRepositoryImpl implements domain.UserRepository using GORM
type UserRepositoryImpl struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &UserRepositoryImpl{db: db}
}

// Create implements domain.UserRepository
func (r *UserRepositoryImpl) Create(ctx context.Context, user *domain.User) error {
	dbUser := userToDB(user)
	if err := database.Conn(ctx, r.db).Create(dbUser).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrEmailAlreadyRegistered
		}
		return err
	}
	user.ID = dbUser.ID
	user.CreatedAt = dbUser.CreatedAt
	return nil
}

// FindByEmail implements domain.UserRepository
func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

// FindByID implements domain.UserRepository
func (r *UserRepositoryImpl) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *UserRepositoryImpl) findOne(ctx context.Context, query string, arg interface{}) (*domain.User, error) {
	var dbUser DBUser
	err := database.Conn(ctx, r.db).Where(query, arg).First(&dbUser).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return userToDomain(&dbUser), nil
}

// UpdateProfile writes name, college and password hash
func (r *UserRepositoryImpl) UpdateProfile(ctx context.Context, user *domain.User) error {
	return database.Conn(ctx, r.db).Model(&DBUser{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"name":     user.Name,
		"college":  user.College,
		"password": user.PasswordHash,
	}).Error
}

// UpdateEmail implements domain.UserRepository
func (r *UserRepositoryImpl) UpdateEmail(ctx context.Context, userID uint, email string) error {
	res := database.Conn(ctx, r.db).Model(&DBUser{}).Where("id = ?", userID).Update("email", email)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return domain.ErrEmailInUse
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// EmailTaken reports whether a user other than exceptUserID owns email
func (r *UserRepositoryImpl) EmailTaken(ctx context.Context, email string, exceptUserID uint) (bool, error) {
	var count int64
	err := database.Conn(ctx, r.db).Model(&DBUser{}).
		Where("email = ? AND id <> ?", email, exceptUserID).
		Count(&count).Error
	return count > 0, err
}

func userToDB(user *domain.User) *DBUser {
	return &DBUser{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		College:      user.College,
		Role:         string(user.Role),
	}
}

func userToDomain(dbUser *DBUser) *domain.User {
	return &domain.User{
		ID:           dbUser.ID,
		Name:         dbUser.Name,
		Email:        dbUser.Email,
		PasswordHash: dbUser.PasswordHash,
		College:      dbUser.College,
		Role:         domain.Role(dbUser.Role),
		CreatedAt:    dbUser.CreatedAt,
	}
}
