package gorm

import (
	"context"
	"errors"

	"github.com/ayurwell/portal/internal/domain/dailylog"
	"github.com/ayurwell/portal/internal/ports/outbound"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DailyLogRepository implements the daily log repository interface using GORM
type DailyLogRepository struct {
	db *gorm.DB
}

// NewDailyLogRepository creates a new daily log repository
func NewDailyLogRepository(db *gorm.DB) outbound.DailyLogRepository {
	return &DailyLogRepository{db: db}
}

// Upsert inserts the log or overwrites the values of the same user's log for that date
func (r *DailyLogRepository) Upsert(ctx context.Context, l *dailylog.DailyLog) error {
	model := DailyLogToModel(l)

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"energy_level", "digestion", "sleep_quality", "water_intake", "notes", "updated_at",
		}),
	}).Create(model).Error
}

// FindByUserAndDate returns the user's log for one date
func (r *DailyLogRepository) FindByUserAndDate(ctx context.Context, userID uuid.UUID, date string) (*dailylog.DailyLog, error) {
	var model DailyLogModel

	result := r.db.WithContext(ctx).First(&model, "user_id = ? AND date = ?", userID, date)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, dailylog.ErrLogNotFound
		}
		return nil, result.Error
	}

	return ModelToDailyLog(&model), nil
}

// FindByUser lists logs newest first. Empty bounds are open.
func (r *DailyLogRepository) FindByUser(ctx context.Context, userID uuid.UUID, from, to string) ([]*dailylog.DailyLog, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("date DESC")
	if from != "" {
		query = query.Where("date >= ?", from)
	}
	if to != "" {
		query = query.Where("date <= ?", to)
	}

	var models []DailyLogModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	logs := make([]*dailylog.DailyLog, len(models))
	for i := range models {
		logs[i] = ModelToDailyLog(&models[i])
	}
	return logs, nil
}
