package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"hr-lms/backend/internal/dto"
	"hr-lms/backend/internal/model"
	"hr-lms/backend/internal/repository"
)

// ── 参训记录模块业务错误 ──

var (
	ErrInvalidCompletedAt = errors.New("完成时间格式错误，应为 RFC3339")
)

// CompletionService 参训记录（完成信号）业务接口
//
// 只追加记录，不触发推导：完成信号只抑制后续的需求创建，
// 已存在的未关闭需求由列表读时过滤隐藏。
type CompletionService interface {
	Record(ctx context.Context, req *dto.RecordCompletionRequest, callerID string) (*dto.CompletionResponse, error)
	List(ctx context.Context, req *dto.CompletionListRequest) ([]dto.CompletionResponse, int64, error)
}

type completionService struct {
	repo   *repository.Repository
	now    func() time.Time
	logger *zap.Logger
}

// NewCompletionService 创建 CompletionService 实例
func NewCompletionService(repo *repository.Repository, logger *zap.Logger) CompletionService {
	return &completionService{repo: repo, now: time.Now, logger: logger}
}

// Record 登记参训记录；未指定状态时按“已完成”登记
func (s *completionService) Record(ctx context.Context, req *dto.RecordCompletionRequest, callerID string) (*dto.CompletionResponse, error) {
	if _, err := s.repo.Training.GetByID(ctx, req.TrainingID); err != nil {
		if isNotFound(err) {
			return nil, ErrTrainingNotFound
		}
		s.logger.Error("查询培训失败", zap.String("training_id", req.TrainingID), zap.Error(err))
		return nil, err
	}

	e := &model.Enrollment{
		UserID:     req.UserID,
		TrainingID: req.TrainingID,
		Status:     req.Status,
		IsPassed:   req.IsPassed,
	}
	if e.Status == "" {
		e.Status = model.EnrollmentStatusCompleted
	}
	if req.CompletedAt != nil {
		at, err := time.Parse(time.RFC3339, *req.CompletedAt)
		if err != nil {
			return nil, ErrInvalidCompletedAt
		}
		e.CompletedAt = &at
	} else if e.Status == model.EnrollmentStatusCompleted {
		now := s.now()
		e.CompletedAt = &now
	}
	e.CreatedBy = callerRef(callerID)
	e.UpdatedBy = callerRef(callerID)

	if err := s.repo.Completion.Create(ctx, e); err != nil {
		s.logger.Error("登记参训记录失败", zap.String("user_id", req.UserID), zap.Error(err))
		return nil, err
	}
	return toCompletionResponse(e), nil
}

func (s *completionService) List(ctx context.Context, req *dto.CompletionListRequest) ([]dto.CompletionResponse, int64, error) {
	list, total, err := s.repo.Completion.List(ctx, req.UserID, req.TrainingID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出参训记录失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.CompletionResponse, 0, len(list))
	for i := range list {
		result = append(result, *toCompletionResponse(&list[i]))
	}
	return result, total, nil
}

func toCompletionResponse(e *model.Enrollment) *dto.CompletionResponse {
	return &dto.CompletionResponse{
		ID:          e.EnrollmentID,
		UserID:      e.UserID,
		TrainingID:  e.TrainingID,
		Status:      e.Status,
		IsPassed:    e.IsPassed,
		CompletedAt: formatTimePtr(e.CompletedAt),
		Completed:   e.MarksCompletion(),
		CreatedAt:   e.CreatedAt.Format(datetimeLayout),
	}
}
