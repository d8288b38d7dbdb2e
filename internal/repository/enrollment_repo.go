package repository

import (
	"context"

	"gorm.io/gorm"

	"hr-lms/backend/internal/model"
)

// completedPredicate 单条参训记录构成完成信号的条件
const completedPredicate = "(status = 'completed' OR is_passed = TRUE OR completed_at IS NOT NULL)"

// CompletionRepository 参训记录（完成信号）数据访问接口
type CompletionRepository interface {
	Create(ctx context.Context, e *model.Enrollment) error
	List(ctx context.Context, userID, trainingID string, offset, limit int) ([]model.Enrollment, int64, error)
	ExistsCompleted(ctx context.Context, userID, trainingID string) (bool, error)
	// CompletedTrainingIDs 返回 trainingIDs 中该用户已完成的子集
	CompletedTrainingIDs(ctx context.Context, userID string, trainingIDs []string) (map[string]bool, error)
}

type completionRepo struct {
	db *gorm.DB
}

// NewCompletionRepo 创建 CompletionRepository 实例
func NewCompletionRepo(db *gorm.DB) CompletionRepository {
	return &completionRepo{db: db}
}

func (r *completionRepo) Create(ctx context.Context, e *model.Enrollment) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *completionRepo) List(ctx context.Context, userID, trainingID string, offset, limit int) ([]model.Enrollment, int64, error) {
	var list []model.Enrollment
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Enrollment{})
	if userID != "" {
		db = db.Where("user_id = ?", userID)
	}
	if trainingID != "" {
		db = db.Where("training_id = ?", trainingID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *completionRepo) ExistsCompleted(ctx context.Context, userID, trainingID string) (bool, error) {
	var exists bool
	err := r.db.WithContext(ctx).
		Raw("SELECT EXISTS (SELECT 1 FROM enrollments WHERE user_id = ? AND training_id = ? AND "+completedPredicate+")",
			userID, trainingID).
		Scan(&exists).Error
	return exists, err
}

func (r *completionRepo) CompletedTrainingIDs(ctx context.Context, userID string, trainingIDs []string) (map[string]bool, error) {
	done := make(map[string]bool)
	if len(trainingIDs) == 0 {
		return done, nil
	}
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Distinct("training_id").
		Where("user_id = ? AND training_id IN ?", userID, trainingIDs).
		Where(completedPredicate).
		Pluck("training_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		done[id] = true
	}
	return done, nil
}
