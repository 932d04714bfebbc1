// Package gorm provides GORM-based repository implementations
package gorm

import (
	"context"
	"errors"
	"strings"

	"github.com/ayurwell/portal/internal/domain/user"
	"github.com/ayurwell/portal/internal/ports/outbound"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepository implements the user repository interface using GORM
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) outbound.UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	model := UserToModel(u)

	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return user.ErrEmailTaken
		}
		return result.Error
	}

	return nil
}

// Update updates an existing user
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	model := UserToModel(u)

	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return user.ErrUserNotFound
	}

	return nil
}

// FindByID finds a user by ID
func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	var model UserModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, result.Error
	}

	return ModelToUser(&model), nil
}

// FindByEmail finds a user by email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var model UserModel

	result := r.db.WithContext(ctx).First(&model, "email = ?", user.NormalizeEmail(email))
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, result.Error
	}

	return ModelToUser(&model), nil
}

// List returns users, optionally only those holding role
func (r *UserRepository) List(ctx context.Context, role *user.Role) ([]*user.User, error) {
	var models []UserModel

	query := r.db.WithContext(ctx).Order("created_at DESC")
	if role != nil {
		query = query.Where("role = ?", string(*role))
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	users := make([]*user.User, len(models))
	for i := range models {
		users[i] = ModelToUser(&models[i])
	}
	return users, nil
}

// CountByRole counts users per role. Users without a role are counted under RoleNone.
func (r *UserRepository) CountByRole(ctx context.Context) (map[user.Role]int64, error) {
	var rows []struct {
		Role  string
		Count int64
	}

	err := r.db.WithContext(ctx).
		Model(&UserModel{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[user.Role]int64, len(rows))
	for _, row := range rows {
		counts[user.Role(row.Role)] += row.Count
	}
	return counts, nil
}

// isUniqueViolation recognises unique-constraint failures from both sqlite and postgres
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key")
}
