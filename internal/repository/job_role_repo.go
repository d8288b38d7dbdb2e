package repository

import (
	"context"

	"gorm.io/gorm"

	"hr-lms/backend/internal/model"
	pkgerrors "hr-lms/backend/pkg/errors"
)

// JobRoleRepository 岗位数据访问接口
type JobRoleRepository interface {
	Create(ctx context.Context, role *model.JobRole) error
	GetByID(ctx context.Context, id string) (*model.JobRole, error)
	List(ctx context.Context, includeInactive bool, offset, limit int) ([]model.JobRole, int64, error)
	Update(ctx context.Context, role *model.JobRole) error
}

type jobRoleRepo struct {
	db *gorm.DB
}

// NewJobRoleRepo 创建 JobRoleRepository 实例
func NewJobRoleRepo(db *gorm.DB) JobRoleRepository {
	return &jobRoleRepo{db: db}
}

func (r *jobRoleRepo) Create(ctx context.Context, role *model.JobRole) error {
	return translateUnique(r.db.WithContext(ctx).Create(role).Error)
}

func (r *jobRoleRepo) GetByID(ctx context.Context, id string) (*model.JobRole, error) {
	var role model.JobRole
	err := r.db.WithContext(ctx).
		Where("role_id = ?", id).
		First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *jobRoleRepo) List(ctx context.Context, includeInactive bool, offset, limit int) ([]model.JobRole, int64, error) {
	var roles []model.JobRole
	var total int64

	db := r.db.WithContext(ctx).Model(&model.JobRole{})
	if !includeInactive {
		db = db.Where("is_active = ?", true)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Order("name ASC").
		Offset(offset).Limit(limit).
		Find(&roles).Error; err != nil {
		return nil, 0, err
	}
	return roles, total, nil
}

// Update 基于 version 的乐观锁更新
func (r *jobRoleRepo) Update(ctx context.Context, role *model.JobRole) error {
	oldVersion := role.Version
	result := r.db.WithContext(ctx).
		Model(role).
		Where("role_id = ? AND version = ?", role.RoleID, oldVersion).
		Updates(map[string]interface{}{
			"name":        role.Name,
			"code":        role.Code,
			"description": role.Description,
			"is_active":   role.IsActive,
			"updated_by":  role.UpdatedBy,
			"version":     oldVersion + 1,
		})
	if result.Error != nil {
		return translateUnique(result.Error)
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	role.Version = oldVersion + 1
	return nil
}
