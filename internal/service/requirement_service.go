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

// ── 培训要求模块业务错误 ──

var (
	ErrRequirementNotFound  = errors.New("培训要求不存在")
	ErrRequirementDuplicate = errors.New("该岗位已存在此培训要求")
)

// RequirementService 岗位培训要求业务接口
// 写入成功后对该岗位全部有效持有人扇出推导
type RequirementService interface {
	Create(ctx context.Context, req *dto.CreateRequirementRequest, callerID string) (*dto.RequirementResponse, error)
	GetByID(ctx context.Context, id string) (*dto.RequirementResponse, error)
	List(ctx context.Context, req *dto.RequirementListRequest) ([]dto.RequirementResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateRequirementRequest, callerID string) (*dto.RequirementResponse, error)
}

type requirementService struct {
	repo       *repository.Repository
	dispatcher NeedDispatcher
	logger     *zap.Logger
}

// NewRequirementService 创建 RequirementService 实例
func NewRequirementService(repo *repository.Repository, dispatcher NeedDispatcher, logger *zap.Logger) RequirementService {
	return &requirementService{repo: repo, dispatcher: dispatcher, logger: logger}
}

func (s *requirementService) Create(ctx context.Context, req *dto.CreateRequirementRequest, callerID string) (*dto.RequirementResponse, error) {
	role, err := s.repo.JobRole.GetByID(ctx, req.JobRoleID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	training, err := s.repo.Training.GetByID(ctx, req.TrainingID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTrainingNotFound
		}
		return nil, err
	}

	r := &model.TrainingRequirement{
		JobRoleID:       req.JobRoleID,
		TrainingID:      req.TrainingID,
		RequirementType: req.RequirementType,
		ValidityMonths:  req.ValidityMonths,
		Notes:           req.Notes,
		IsActive:        req.IsActive == nil || *req.IsActive,
	}
	if r.RequirementType == "" {
		r.RequirementType = model.RequirementTypeRequired
	}
	r.CreatedBy = callerRef(callerID)
	r.UpdatedBy = callerRef(callerID)

	if err := s.repo.Requirement.Create(ctx, r); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, ErrRequirementDuplicate
		}
		s.logger.Error("创建培训要求失败", zap.Error(err))
		return nil, err
	}
	r.JobRole = role
	r.Training = training

	created := s.dispatcher.HandleRequirementCommitted(ctx, r)

	resp := toRequirementResponse(r)
	resp.NeedsCreated = created
	return resp, nil
}

func (s *requirementService) GetByID(ctx context.Context, id string) (*dto.RequirementResponse, error) {
	r, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toRequirementResponse(r), nil
}

func (s *requirementService) List(ctx context.Context, req *dto.RequirementListRequest) ([]dto.RequirementResponse, int64, error) {
	filter := repository.RequirementFilter{
		JobRoleID:  req.JobRoleID,
		TrainingID: req.TrainingID,
		ActiveOnly: req.ActiveOnly,
	}
	list, total, err := s.repo.Requirement.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出培训要求失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.RequirementResponse, 0, len(list))
	for i := range list {
		result = append(result, *toRequirementResponse(&list[i]))
	}
	return result, total, nil
}

func (s *requirementService) Update(ctx context.Context, id string, req *dto.UpdateRequirementRequest, callerID string) (*dto.RequirementResponse, error) {
	r, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.RequirementType != nil {
		r.RequirementType = *req.RequirementType
	}
	if req.ValidityMonths != nil {
		r.ValidityMonths = req.ValidityMonths
	}
	if req.Notes != nil {
		r.Notes = *req.Notes
	}
	if req.IsActive != nil {
		r.IsActive = *req.IsActive
	}
	r.UpdatedBy = callerRef(callerID)

	if err := s.repo.Requirement.Update(ctx, r); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, ErrRequirementDuplicate
		}
		s.logger.Error("更新培训要求失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	created := s.dispatcher.HandleRequirementCommitted(ctx, r)

	resp := toRequirementResponse(r)
	resp.NeedsCreated = created
	return resp, nil
}

func (s *requirementService) load(ctx context.Context, id string) (*model.TrainingRequirement, error) {
	r, err := s.repo.Requirement.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrRequirementNotFound
		}
		s.logger.Error("查询培训要求失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return r, nil
}

func toRequirementResponse(r *model.TrainingRequirement) *dto.RequirementResponse {
	return &dto.RequirementResponse{
		ID:              r.RequirementID,
		JobRole:         toJobRoleBrief(r.JobRole),
		Training:        toTrainingBrief(r.Training),
		JobRoleID:       r.JobRoleID,
		TrainingID:      r.TrainingID,
		RequirementType: r.RequirementType,
		ValidityMonths:  r.ValidityMonths,
		Notes:           r.Notes,
		IsActive:        r.IsActive,
		CreatedAt:       r.CreatedAt.Format(datetimeLayout),
		UpdatedAt:       r.UpdatedAt.Format(datetimeLayout),
	}
}
