package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"hr-lms/backend/internal/dto"
	"hr-lms/backend/internal/model"
	"hr-lms/backend/internal/repository"
	pkgerrors "hr-lms/backend/pkg/errors"
)

// ── 岗位模块业务错误 ──

var (
	ErrRoleNotFound      = errors.New("岗位不存在")
	ErrRoleNameDuplicate = errors.New("岗位名称或编码已存在")
	ErrRoleVersionStale  = errors.New("岗位已被其他操作修改，请刷新后重试")
)

// JobRoleService 岗位业务接口
type JobRoleService interface {
	Create(ctx context.Context, req *dto.CreateJobRoleRequest, callerID string) (*dto.JobRoleResponse, error)
	GetByID(ctx context.Context, id string) (*dto.JobRoleResponse, error)
	List(ctx context.Context, req *dto.JobRoleListRequest) ([]dto.JobRoleResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateJobRoleRequest, callerID string) (*dto.JobRoleResponse, error)
}

type jobRoleService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewJobRoleService 创建 JobRoleService 实例
func NewJobRoleService(repo *repository.Repository, logger *zap.Logger) JobRoleService {
	return &jobRoleService{repo: repo, logger: logger}
}

func (s *jobRoleService) Create(ctx context.Context, req *dto.CreateJobRoleRequest, callerID string) (*dto.JobRoleResponse, error) {
	role := &model.JobRole{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
		IsActive:    true,
	}
	role.CreatedBy = callerRef(callerID)
	role.UpdatedBy = callerRef(callerID)

	if err := s.repo.JobRole.Create(ctx, role); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, ErrRoleNameDuplicate
		}
		s.logger.Error("创建岗位失败", zap.Error(err))
		return nil, err
	}
	return toJobRoleResponse(role), nil
}

func (s *jobRoleService) GetByID(ctx context.Context, id string) (*dto.JobRoleResponse, error) {
	role, err := s.repo.JobRole.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrRoleNotFound
		}
		s.logger.Error("查询岗位失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toJobRoleResponse(role), nil
}

func (s *jobRoleService) List(ctx context.Context, req *dto.JobRoleListRequest) ([]dto.JobRoleResponse, int64, error) {
	roles, total, err := s.repo.JobRole.List(ctx, req.IncludeInactive, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出岗位失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.JobRoleResponse, 0, len(roles))
	for i := range roles {
		result = append(result, *toJobRoleResponse(&roles[i]))
	}
	return result, total, nil
}

// Update 停用岗位即 is_active=false；停用后的岗位不再参与推导，已有需求保持不变
func (s *jobRoleService) Update(ctx context.Context, id string, req *dto.UpdateJobRoleRequest, callerID string) (*dto.JobRoleResponse, error) {
	role, err := s.repo.JobRole.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrRoleNotFound
		}
		s.logger.Error("查询岗位失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		role.Name = *req.Name
	}
	if req.Code != nil {
		role.Code = req.Code
	}
	if req.Description != nil {
		role.Description = *req.Description
	}
	if req.IsActive != nil {
		role.IsActive = *req.IsActive
	}
	role.Version = req.Version
	role.UpdatedBy = callerRef(callerID)

	if err := s.repo.JobRole.Update(ctx, role); err != nil {
		switch {
		case errors.Is(err, pkgerrors.ErrOptimisticLock):
			return nil, ErrRoleVersionStale
		case pkgerrors.IsUniqueViolation(err):
			return nil, ErrRoleNameDuplicate
		}
		s.logger.Error("更新岗位失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toJobRoleResponse(role), nil
}

func toJobRoleResponse(r *model.JobRole) *dto.JobRoleResponse {
	return &dto.JobRoleResponse{
		ID:          r.RoleID,
		Name:        r.Name,
		Code:        r.Code,
		Description: r.Description,
		IsActive:    r.IsActive,
		Version:     r.Version,
		CreatedAt:   r.CreatedAt.Format(datetimeLayout),
		UpdatedAt:   r.UpdatedAt.Format(datetimeLayout),
	}
}

func toJobRoleBrief(r *model.JobRole) *dto.JobRoleBrief {
	if r == nil {
		return nil
	}
	return &dto.JobRoleBrief{ID: r.RoleID, Name: r.Name}
}
