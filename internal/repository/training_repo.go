package repository

import (
	"context"

	"gorm.io/gorm"

	"hr-lms/backend/internal/model"
)

// TrainingRepository 培训课程数据访问接口
type TrainingRepository interface {
	Create(ctx context.Context, training *model.Training) error
	GetByID(ctx context.Context, id string) (*model.Training, error)
	List(ctx context.Context, keyword string, includeInactive bool, offset, limit int) ([]model.Training, int64, error)
	Update(ctx context.Context, training *model.Training) error
}

type trainingRepo struct {
	db *gorm.DB
}

// NewTrainingRepo 创建 TrainingRepository 实例
func NewTrainingRepo(db *gorm.DB) TrainingRepository {
	return &trainingRepo{db: db}
}

func (r *trainingRepo) Create(ctx context.Context, training *model.Training) error {
	return r.db.WithContext(ctx).Create(training).Error
}

func (r *trainingRepo) GetByID(ctx context.Context, id string) (*model.Training, error) {
	var training model.Training
	err := r.db.WithContext(ctx).
		Where("training_id = ?", id).
		First(&training).Error
	if err != nil {
		return nil, err
	}
	return &training, nil
}

func (r *trainingRepo) List(ctx context.Context, keyword string, includeInactive bool, offset, limit int) ([]model.Training, int64, error) {
	var trainings []model.Training
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Training{})
	if !includeInactive {
		db = db.Where("is_active = ?", true)
	}
	if keyword != "" {
		like := "%" + keyword + "%"
		db = db.Where("title ILIKE ? OR code ILIKE ?", like, like)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Order("title ASC").
		Offset(offset).Limit(limit).
		Find(&trainings).Error; err != nil {
		return nil, 0, err
	}
	return trainings, total, nil
}

func (r *trainingRepo) Update(ctx context.Context, training *model.Training) error {
	return r.db.WithContext(ctx).Save(training).Error
}
