package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hr-lms/backend/internal/model"
)

// SystemStateRepository 系统状态数据访问接口
type SystemStateRepository interface {
	Get(ctx context.Context) (*model.SystemState, error)
	MarkNeedsBackfilled(ctx context.Context, at time.Time) error
}

type systemStateRepo struct {
	db *gorm.DB
}

// NewSystemStateRepo 创建 SystemStateRepository 实例
func NewSystemStateRepo(db *gorm.DB) SystemStateRepository {
	return &systemStateRepo{db: db}
}

// Get 读取单行系统状态，行不存在时先补齐
func (r *systemStateRepo) Get(ctx context.Context) (*model.SystemState, error) {
	db := r.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.SystemState{Singleton: true}).Error; err != nil {
		return nil, err
	}
	var state model.SystemState
	if err := db.Where("singleton = ?", true).First(&state).Error; err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *systemStateRepo) MarkNeedsBackfilled(ctx context.Context, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.SystemState{}).
		Where("singleton = ?", true).
		Updates(map[string]interface{}{
			"needs_backfilled_at": at,
			"updated_at":          at,
		}).Error
}
