package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"hr-lms/backend/internal/dto"
	"hr-lms/backend/internal/model"
	"hr-lms/backend/internal/repository"
)

// ── 培训课程模块业务错误 ──

var (
	ErrTrainingNotFound = errors.New("培训不存在")
)

// TrainingService 培训课程业务接口
type TrainingService interface {
	Create(ctx context.Context, req *dto.CreateTrainingRequest, callerID string) (*dto.TrainingResponse, error)
	GetByID(ctx context.Context, id string) (*dto.TrainingResponse, error)
	List(ctx context.Context, req *dto.TrainingListRequest) ([]dto.TrainingResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateTrainingRequest, callerID string) (*dto.TrainingResponse, error)
}

type trainingService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTrainingService 创建 TrainingService 实例
func NewTrainingService(repo *repository.Repository, logger *zap.Logger) TrainingService {
	return &trainingService{repo: repo, logger: logger}
}

func (s *trainingService) Create(ctx context.Context, req *dto.CreateTrainingRequest, callerID string) (*dto.TrainingResponse, error) {
	t := &model.Training{
		Title:         req.Title,
		Code:          req.Code,
		Description:   req.Description,
		DurationHours: req.DurationHours,
		IsActive:      true,
	}
	t.CreatedBy = callerRef(callerID)
	t.UpdatedBy = callerRef(callerID)

	if err := s.repo.Training.Create(ctx, t); err != nil {
		s.logger.Error("创建培训失败", zap.Error(err))
		return nil, err
	}
	return toTrainingResponse(t), nil
}

func (s *trainingService) GetByID(ctx context.Context, id string) (*dto.TrainingResponse, error) {
	t, err := s.repo.Training.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTrainingNotFound
		}
		s.logger.Error("查询培训失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toTrainingResponse(t), nil
}

func (s *trainingService) List(ctx context.Context, req *dto.TrainingListRequest) ([]dto.TrainingResponse, int64, error) {
	list, total, err := s.repo.Training.List(ctx, req.Keyword, req.IncludeInactive, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出培训失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.TrainingResponse, 0, len(list))
	for i := range list {
		result = append(result, *toTrainingResponse(&list[i]))
	}
	return result, total, nil
}

func (s *trainingService) Update(ctx context.Context, id string, req *dto.UpdateTrainingRequest, callerID string) (*dto.TrainingResponse, error) {
	t, err := s.repo.Training.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTrainingNotFound
		}
		s.logger.Error("查询培训失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Code != nil {
		t.Code = req.Code
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.DurationHours != nil {
		t.DurationHours = req.DurationHours
	}
	if req.IsActive != nil {
		t.IsActive = *req.IsActive
	}
	t.UpdatedBy = callerRef(callerID)

	if err := s.repo.Training.Update(ctx, t); err != nil {
		s.logger.Error("更新培训失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toTrainingResponse(t), nil
}

func toTrainingResponse(t *model.Training) *dto.TrainingResponse {
	return &dto.TrainingResponse{
		ID:            t.TrainingID,
		Title:         t.Title,
		Code:          t.Code,
		Description:   t.Description,
		DurationHours: t.DurationHours,
		IsActive:      t.IsActive,
		CreatedAt:     t.CreatedAt.Format(datetimeLayout),
		UpdatedAt:     t.UpdatedAt.Format(datetimeLayout),
	}
}

func toTrainingBrief(t *model.Training) *dto.TrainingBrief {
	if t == nil {
		return nil
	}
	return &dto.TrainingBrief{ID: t.TrainingID, Title: t.Title, Code: t.Code}
}
