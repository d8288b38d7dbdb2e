package repository

import (
	"fmt"

	"gorm.io/gorm"

	pkgerrors "hr-lms/backend/pkg/errors"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	JobRole     JobRoleRepository
	Training    TrainingRepository
	Assignment  AssignmentRepository
	Requirement RequirementRepository
	Completion  CompletionRepository
	Need        NeedRepository
	SystemState SystemStateRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		JobRole:     NewJobRoleRepo(db),
		Training:    NewTrainingRepo(db),
		Assignment:  NewAssignmentRepo(db),
		Requirement: NewRequirementRepo(db),
		Completion:  NewCompletionRepo(db),
		Need:        NewNeedRepo(db),
		SystemState: NewSystemStateRepo(db),
	}
}

// translateUnique 将 PostgreSQL 唯一约束冲突统一翻译为 pkgerrors.ErrUniqueViolation，保留约束名
func translateUnique(err error) error {
	if err == nil || !pkgerrors.IsUniqueViolation(err) {
		return err
	}
	if name := pkgerrors.ConstraintName(err); name != "" {
		return fmt.Errorf("%w: %s", pkgerrors.ErrUniqueViolation, name)
	}
	return pkgerrors.ErrUniqueViolation
}
