package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"hr-lms/backend/internal/model"
)

// AssignmentFilter 岗位分配列表筛选条件
type AssignmentFilter struct {
	UserID     string
	JobRoleID  string
	ActiveOnly bool
}

// AssignmentRepository 岗位分配数据访问接口
type AssignmentRepository interface {
	Create(ctx context.Context, a *model.JobRoleAssignment) error
	GetByID(ctx context.Context, id string) (*model.JobRoleAssignment, error)
	Update(ctx context.Context, a *model.JobRoleAssignment) error
	List(ctx context.Context, filter AssignmentFilter, offset, limit int) ([]model.JobRoleAssignment, int64, error)
	// ListActiveByUser 用户当前有效的分配；asOf 非空时同时按生效期过滤
	ListActiveByUser(ctx context.Context, userID string, asOf *time.Time) ([]model.JobRoleAssignment, error)
	ListActiveByRole(ctx context.Context, roleID string) ([]model.JobRoleAssignment, error)
	ListActive(ctx context.Context) ([]model.JobRoleAssignment, error)
}

type assignmentRepo struct {
	db *gorm.DB
}

// NewAssignmentRepo 创建 AssignmentRepository 实例
func NewAssignmentRepo(db *gorm.DB) AssignmentRepository {
	return &assignmentRepo{db: db}
}

func (r *assignmentRepo) Create(ctx context.Context, a *model.JobRoleAssignment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *assignmentRepo) GetByID(ctx context.Context, id string) (*model.JobRoleAssignment, error) {
	var a model.JobRoleAssignment
	err := r.db.WithContext(ctx).
		Preload("JobRole").
		Where("assignment_id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assignmentRepo) Update(ctx context.Context, a *model.JobRoleAssignment) error {
	return r.db.WithContext(ctx).
		Model(&model.JobRoleAssignment{}).
		Where("assignment_id = ?", a.AssignmentID).
		Updates(map[string]interface{}{
			"job_role_id":    a.JobRoleID,
			"effective_from": a.EffectiveFrom,
			"effective_to":   a.EffectiveTo,
			"is_active":      a.IsActive,
			"updated_by":     a.UpdatedBy,
			"updated_at":     gorm.Expr("NOW()"),
		}).Error
}

func (r *assignmentRepo) List(ctx context.Context, filter AssignmentFilter, offset, limit int) ([]model.JobRoleAssignment, int64, error) {
	var list []model.JobRoleAssignment
	var total int64

	db := r.db.WithContext(ctx).Model(&model.JobRoleAssignment{})
	if filter.UserID != "" {
		db = db.Where("user_id = ?", filter.UserID)
	}
	if filter.JobRoleID != "" {
		db = db.Where("job_role_id = ?", filter.JobRoleID)
	}
	if filter.ActiveOnly {
		db = db.Where("is_active = ?", true)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Preload("JobRole").
		Order("effective_from DESC, created_at DESC").
		Offset(offset).Limit(limit).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *assignmentRepo) ListActiveByUser(ctx context.Context, userID string, asOf *time.Time) ([]model.JobRoleAssignment, error) {
	var list []model.JobRoleAssignment
	db := r.db.WithContext(ctx).
		Preload("JobRole").
		Where("user_id = ? AND is_active = ?", userID, true)
	if asOf != nil {
		day := asOf.Format("2006-01-02")
		db = db.Where("effective_from <= ? AND (effective_to IS NULL OR effective_to >= ?)", day, day)
	}
	err := db.Order("effective_from ASC, assignment_id ASC").Find(&list).Error
	return list, err
}

func (r *assignmentRepo) ListActiveByRole(ctx context.Context, roleID string) ([]model.JobRoleAssignment, error) {
	var list []model.JobRoleAssignment
	err := r.db.WithContext(ctx).
		Where("job_role_id = ? AND is_active = ?", roleID, true).
		Order("user_id ASC").
		Find(&list).Error
	return list, err
}

func (r *assignmentRepo) ListActive(ctx context.Context) ([]model.JobRoleAssignment, error) {
	var list []model.JobRoleAssignment
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC, assignment_id ASC").
		Find(&list).Error
	return list, err
}
