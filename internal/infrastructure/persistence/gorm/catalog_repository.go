package gorm

import (
	"context"
	"errors"

	"github.com/ayurwell/portal/internal/domain/audit"
	"github.com/ayurwell/portal/internal/domain/food"
	"github.com/ayurwell/portal/internal/domain/notification"
	"github.com/ayurwell/portal/internal/ports/outbound"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FoodRepository implements the food catalog using GORM
type FoodRepository struct {
	db *gorm.DB
}

// NewFoodRepository creates a new food repository
func NewFoodRepository(db *gorm.DB) outbound.FoodRepository {
	return &FoodRepository{db: db}
}

// Create adds a catalog entry
func (r *FoodRepository) Create(ctx context.Context, f *food.Food) error {
	if err := r.db.WithContext(ctx).Create(FoodToModel(f)).Error; err != nil {
		if isUniqueViolation(err) {
			return food.ErrDuplicateFood
		}
		return err
	}
	return nil
}

// Update saves a catalog entry
func (r *FoodRepository) Update(ctx context.Context, f *food.Food) error {
	result := r.db.WithContext(ctx).Save(FoodToModel(f))
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return food.ErrDuplicateFood
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return food.ErrFoodNotFound
	}
	return nil
}

// Delete removes a catalog entry
func (r *FoodRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&FoodModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return food.ErrFoodNotFound
	}
	return nil
}

// FindByID finds a catalog entry
func (r *FoodRepository) FindByID(ctx context.Context, id uuid.UUID) (*food.Food, error) {
	var model FoodModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, food.ErrFoodNotFound
		}
		return nil, result.Error
	}

	return ModelToFood(&model), nil
}

// List returns the catalog ordered by name
func (r *FoodRepository) List(ctx context.Context) ([]*food.Food, error) {
	var models []FoodModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	foods := make([]*food.Food, len(models))
	for i := range models {
		foods[i] = ModelToFood(&models[i])
	}
	return foods, nil
}

// Count returns the catalog size
func (r *FoodRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&FoodModel{}).Count(&count).Error
	return count, err
}

// NotificationRepository implements notification persistence using GORM
type NotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) outbound.NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create stores a notification
func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	return r.db.WithContext(ctx).Create(NotificationToModel(n)).Error
}

// MarkRead persists the read flag
func (r *NotificationRepository) MarkRead(ctx context.Context, n *notification.Notification) error {
	result := r.db.WithContext(ctx).
		Model(&NotificationModel{}).
		Where("id = ?", n.ID).
		Updates(map[string]interface{}{"read": n.Read, "read_at": n.ReadAt})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notification.ErrNotificationNotFound
	}
	return nil
}

// FindByID finds a notification
func (r *NotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	var model NotificationModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, notification.ErrNotificationNotFound
		}
		return nil, result.Error
	}

	return ModelToNotification(&model), nil
}

// FindByUser lists a user's notifications, newest first
func (r *NotificationRepository) FindByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*notification.Notification, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []NotificationModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	list := make([]*notification.Notification, len(models))
	for i := range models {
		list[i] = ModelToNotification(&models[i])
	}
	return list, nil
}

// AuditRepository implements the audit log using GORM
type AuditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *gorm.DB) outbound.AuditRepository {
	return &AuditRepository{db: db}
}

// Append stores an entry
func (r *AuditRepository) Append(ctx context.Context, e *audit.Entry) error {
	return r.db.WithContext(ctx).Create(AuditToModel(e)).Error
}

// Latest returns the newest entries
func (r *AuditRepository) Latest(ctx context.Context, limit int) ([]*audit.Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	var models []AuditEntryModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&models).Error; err != nil {
		return nil, err
	}

	entries := make([]*audit.Entry, len(models))
	for i := range models {
		entries[i] = ModelToAudit(&models[i])
	}
	return entries, nil
}
