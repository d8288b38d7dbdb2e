package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"hr-lms/backend/internal/model"
)

// NeedFilter 培训需求列表筛选条件
type NeedFilter struct {
	UserID     string
	TrainingID string
	Source     string
	IsOpen     *bool
	Keyword    string // 匹配备注、培训标题、培训编码
	// HideCompleted 隐藏用户已完成对应培训的需求（读时过滤，不修改记录）
	HideCompleted bool
}

// NeedRepository 培训需求数据访问接口
// 需求只追加、只做开关状态变更，不提供删除
type NeedRepository interface {
	// Create 违反“同一用户同一培训至多一条未关闭需求”时返回 pkgerrors.ErrUniqueViolation
	Create(ctx context.Context, need *model.TrainingNeed) error
	GetByID(ctx context.Context, id string) (*model.TrainingNeed, error)
	ExistsOpen(ctx context.Context, userID, trainingID string) (bool, error)
	// OpenTrainingIDsBySource 用户指定来源的未关闭需求所对应的培训
	OpenTrainingIDsBySource(ctx context.Context, userID, source string) (map[string]bool, error)
	List(ctx context.Context, filter NeedFilter, offset, limit int) ([]model.TrainingNeed, int64, error)
	// SetOpen 切换开关状态；重新打开冲突时返回 pkgerrors.ErrUniqueViolation
	SetOpen(ctx context.Context, need *model.TrainingNeed) error
}

type needRepo struct {
	db *gorm.DB
}

// NewNeedRepo 创建 NeedRepository 实例
func NewNeedRepo(db *gorm.DB) NeedRepository {
	return &needRepo{db: db}
}

func (r *needRepo) Create(ctx context.Context, need *model.TrainingNeed) error {
	return translateUnique(r.db.WithContext(ctx).Create(need).Error)
}

func (r *needRepo) GetByID(ctx context.Context, id string) (*model.TrainingNeed, error) {
	var need model.TrainingNeed
	err := r.db.WithContext(ctx).
		Preload("Training").
		Preload("JobRole").
		Where("need_id = ?", id).
		First(&need).Error
	if err != nil {
		return nil, err
	}
	return &need, nil
}

func (r *needRepo) ExistsOpen(ctx context.Context, userID, trainingID string) (bool, error) {
	var exists bool
	err := r.db.WithContext(ctx).
		Raw("SELECT EXISTS (SELECT 1 FROM training_needs WHERE user_id = ? AND training_id = ? AND is_open)",
			userID, trainingID).
		Scan(&exists).Error
	return exists, err
}

func (r *needRepo) OpenTrainingIDsBySource(ctx context.Context, userID, source string) (map[string]bool, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.TrainingNeed{}).
		Where("user_id = ? AND source = ? AND is_open = ?", userID, source, true).
		Pluck("training_id", &ids).Error
	if err != nil {
		return nil, err
	}
	open := make(map[string]bool, len(ids))
	for _, id := range ids {
		open[id] = true
	}
	return open, nil
}

func (r *needRepo) List(ctx context.Context, filter NeedFilter, offset, limit int) ([]model.TrainingNeed, int64, error) {
	var list []model.TrainingNeed
	var total int64

	db := r.db.WithContext(ctx).Model(&model.TrainingNeed{})
	if filter.UserID != "" {
		db = db.Where("training_needs.user_id = ?", filter.UserID)
	}
	if filter.TrainingID != "" {
		db = db.Where("training_needs.training_id = ?", filter.TrainingID)
	}
	if filter.Source != "" {
		db = db.Where("training_needs.source = ?", filter.Source)
	}
	if filter.IsOpen != nil {
		db = db.Where("training_needs.is_open = ?", *filter.IsOpen)
	}
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		db = db.Joins("LEFT JOIN trainings t ON t.training_id = training_needs.training_id").
			Where("training_needs.note ILIKE ? OR t.title ILIKE ? OR t.code ILIKE ?", like, like, like)
	}
	if filter.HideCompleted {
		db = db.Where("NOT EXISTS (SELECT 1 FROM enrollments e WHERE e.user_id = training_needs.user_id" +
			" AND e.training_id = training_needs.training_id" +
			" AND (e.status = 'completed' OR e.is_passed = TRUE OR e.completed_at IS NOT NULL))")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Preload("Training").Preload("JobRole").
		Order("training_needs.created_at DESC, training_needs.need_id ASC").
		Offset(offset).Limit(limit).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *needRepo) SetOpen(ctx context.Context, need *model.TrainingNeed) error {
	err := r.db.WithContext(ctx).
		Model(&model.TrainingNeed{}).
		Where("need_id = ?", need.NeedID).
		Updates(map[string]interface{}{
			"is_open":     need.IsOpen,
			"status":      need.Status,
			"resolved_at": need.ResolvedAt,
			"updated_by":  need.UpdatedBy,
			"updated_at":  time.Now(),
		}).Error
	return translateUnique(err)
}
