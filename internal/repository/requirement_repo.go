package repository

import (
	"context"

	"gorm.io/gorm"

	"hr-lms/backend/internal/model"
)

// RequirementFilter 培训要求列表筛选条件
type RequirementFilter struct {
	JobRoleID  string
	TrainingID string
	ActiveOnly bool
}

// RequirementRepository 岗位培训要求数据访问接口
type RequirementRepository interface {
	Create(ctx context.Context, req *model.TrainingRequirement) error
	GetByID(ctx context.Context, id string) (*model.TrainingRequirement, error)
	Update(ctx context.Context, req *model.TrainingRequirement) error
	List(ctx context.Context, filter RequirementFilter, offset, limit int) ([]model.TrainingRequirement, int64, error)
	// ListActiveByRoles 指定岗位集合下的有效要求，按岗位名称、培训标题排序
	ListActiveByRoles(ctx context.Context, roleIDs []string) ([]model.TrainingRequirement, error)
}

type requirementRepo struct {
	db *gorm.DB
}

// NewRequirementRepo 创建 RequirementRepository 实例
func NewRequirementRepo(db *gorm.DB) RequirementRepository {
	return &requirementRepo{db: db}
}

func (r *requirementRepo) Create(ctx context.Context, req *model.TrainingRequirement) error {
	return translateUnique(r.db.WithContext(ctx).Create(req).Error)
}

func (r *requirementRepo) GetByID(ctx context.Context, id string) (*model.TrainingRequirement, error) {
	var req model.TrainingRequirement
	err := r.db.WithContext(ctx).
		Preload("JobRole").
		Preload("Training").
		Where("requirement_id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requirementRepo) Update(ctx context.Context, req *model.TrainingRequirement) error {
	err := r.db.WithContext(ctx).
		Model(&model.TrainingRequirement{}).
		Where("requirement_id = ?", req.RequirementID).
		Updates(map[string]interface{}{
			"job_role_id":      req.JobRoleID,
			"training_id":      req.TrainingID,
			"requirement_type": req.RequirementType,
			"validity_months":  req.ValidityMonths,
			"notes":            req.Notes,
			"is_active":        req.IsActive,
			"updated_by":       req.UpdatedBy,
			"updated_at":       gorm.Expr("NOW()"),
		}).Error
	return translateUnique(err)
}

func (r *requirementRepo) List(ctx context.Context, filter RequirementFilter, offset, limit int) ([]model.TrainingRequirement, int64, error) {
	var list []model.TrainingRequirement
	var total int64

	db := r.db.WithContext(ctx).Model(&model.TrainingRequirement{})
	if filter.JobRoleID != "" {
		db = db.Where("job_role_id = ?", filter.JobRoleID)
	}
	if filter.TrainingID != "" {
		db = db.Where("training_id = ?", filter.TrainingID)
	}
	if filter.ActiveOnly {
		db = db.Where("is_active = ?", true)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Preload("JobRole").Preload("Training").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *requirementRepo) ListActiveByRoles(ctx context.Context, roleIDs []string) ([]model.TrainingRequirement, error) {
	if len(roleIDs) == 0 {
		return nil, nil
	}
	var list []model.TrainingRequirement
	// LEFT JOIN 仅用于排序；岗位或培训缺失时预加载为空，由推导引擎判定为悬空引用
	err := r.db.WithContext(ctx).
		Joins("LEFT JOIN job_roles jr ON jr.role_id = training_requirements.job_role_id").
		Joins("LEFT JOIN trainings t ON t.training_id = training_requirements.training_id").
		Preload("JobRole").
		Preload("Training").
		Where("training_requirements.job_role_id IN ? AND training_requirements.is_active = ?", roleIDs, true).
		Order("jr.name ASC NULLS LAST, t.title ASC NULLS LAST, training_requirements.requirement_id ASC").
		Find(&list).Error
	return list, err
}
