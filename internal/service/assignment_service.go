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

// ── 岗位分配模块业务错误 ──

var (
	ErrAssignmentNotFound  = errors.New("岗位分配不存在")
	ErrAssignmentDateRange = errors.New("截止日期不能早于生效日期")
)

// AssignmentService 岗位分配业务接口
//
// 写入成功后显式通知 NeedDispatcher；推导失败不影响写入结果。
// 岗位结束时停用分配，不做物理删除。
type AssignmentService interface {
	Create(ctx context.Context, req *dto.CreateAssignmentRequest, callerID string) (*dto.AssignmentResponse, error)
	GetByID(ctx context.Context, id string) (*dto.AssignmentResponse, error)
	List(ctx context.Context, req *dto.AssignmentListRequest) ([]dto.AssignmentResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateAssignmentRequest, callerID string) (*dto.AssignmentResponse, error)
	Deactivate(ctx context.Context, id string, callerID string) (*dto.AssignmentResponse, error)
}

type assignmentService struct {
	repo       *repository.Repository
	dispatcher NeedDispatcher
	now        func() time.Time
	logger     *zap.Logger
}

// NewAssignmentService 创建 AssignmentService 实例
func NewAssignmentService(repo *repository.Repository, dispatcher NeedDispatcher, logger *zap.Logger) AssignmentService {
	return &assignmentService{repo: repo, dispatcher: dispatcher, now: time.Now, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *assignmentService) Create(ctx context.Context, req *dto.CreateAssignmentRequest, callerID string) (*dto.AssignmentResponse, error) {
	role, err := s.repo.JobRole.GetByID(ctx, req.JobRoleID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrRoleNotFound
		}
		s.logger.Error("查询岗位失败", zap.String("job_role_id", req.JobRoleID), zap.Error(err))
		return nil, err
	}

	from := s.today()
	if req.EffectiveFrom != "" {
		if from, err = parseDate(req.EffectiveFrom); err != nil {
			return nil, err
		}
	}

	a := &model.JobRoleAssignment{
		UserID:        req.UserID,
		JobRoleID:     req.JobRoleID,
		EffectiveFrom: from,
		IsActive:      req.IsActive == nil || *req.IsActive,
	}
	if req.EffectiveTo != nil {
		to, err := parseDate(*req.EffectiveTo)
		if err != nil {
			return nil, err
		}
		a.EffectiveTo = &to
	}
	if !a.ValidDateRange() {
		return nil, ErrAssignmentDateRange
	}
	a.CreatedBy = callerRef(callerID)
	a.UpdatedBy = callerRef(callerID)

	if err := s.repo.Assignment.Create(ctx, a); err != nil {
		s.logger.Error("创建岗位分配失败", zap.String("user_id", req.UserID), zap.Error(err))
		return nil, err
	}
	a.JobRole = role

	created := s.dispatcher.HandleAssignmentCommitted(ctx, a, true)

	resp := toAssignmentResponse(a)
	resp.NeedsCreated = created
	return resp, nil
}

// ────────────────────── GetByID / List ──────────────────────

func (s *assignmentService) GetByID(ctx context.Context, id string) (*dto.AssignmentResponse, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toAssignmentResponse(a), nil
}

func (s *assignmentService) List(ctx context.Context, req *dto.AssignmentListRequest) ([]dto.AssignmentResponse, int64, error) {
	filter := repository.AssignmentFilter{
		UserID:     req.UserID,
		JobRoleID:  req.JobRoleID,
		ActiveOnly: req.ActiveOnly,
	}
	list, total, err := s.repo.Assignment.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出岗位分配失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.AssignmentResponse, 0, len(list))
	for i := range list {
		result = append(result, *toAssignmentResponse(&list[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *assignmentService) Update(ctx context.Context, id string, req *dto.UpdateAssignmentRequest, callerID string) (*dto.AssignmentResponse, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.JobRoleID != nil && *req.JobRoleID != a.JobRoleID {
		role, err := s.repo.JobRole.GetByID(ctx, *req.JobRoleID)
		if err != nil {
			if isNotFound(err) {
				return nil, ErrRoleNotFound
			}
			return nil, err
		}
		a.JobRoleID = role.RoleID
		a.JobRole = role
	}
	if req.EffectiveFrom != nil {
		from, err := parseDate(*req.EffectiveFrom)
		if err != nil {
			return nil, err
		}
		a.EffectiveFrom = from
	}
	if req.ClearTo {
		a.EffectiveTo = nil
	} else if req.EffectiveTo != nil {
		to, err := parseDate(*req.EffectiveTo)
		if err != nil {
			return nil, err
		}
		a.EffectiveTo = &to
	}
	if req.IsActive != nil {
		a.IsActive = *req.IsActive
	}
	if !a.ValidDateRange() {
		return nil, ErrAssignmentDateRange
	}
	a.UpdatedBy = callerRef(callerID)

	if err := s.repo.Assignment.Update(ctx, a); err != nil {
		s.logger.Error("更新岗位分配失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	created := s.dispatcher.HandleAssignmentCommitted(ctx, a, false)

	resp := toAssignmentResponse(a)
	resp.NeedsCreated = created
	return resp, nil
}

// ────────────────────── Deactivate ──────────────────────

// Deactivate 结束岗位：is_active=false，未设置截止日期时补为当天
func (s *assignmentService) Deactivate(ctx context.Context, id string, callerID string) (*dto.AssignmentResponse, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.IsActive {
		return toAssignmentResponse(a), nil
	}

	a.IsActive = false
	if a.EffectiveTo == nil {
		to := s.today()
		if to.Before(a.EffectiveFrom) {
			to = a.EffectiveFrom
		}
		a.EffectiveTo = &to
	}
	a.UpdatedBy = callerRef(callerID)

	if err := s.repo.Assignment.Update(ctx, a); err != nil {
		s.logger.Error("停用岗位分配失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.dispatcher.HandleAssignmentCommitted(ctx, a, false)
	return toAssignmentResponse(a), nil
}

func (s *assignmentService) load(ctx context.Context, id string) (*model.JobRoleAssignment, error) {
	a, err := s.repo.Assignment.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrAssignmentNotFound
		}
		s.logger.Error("查询岗位分配失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return a, nil
}

func (s *assignmentService) today() time.Time {
	y, m, d := s.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func toAssignmentResponse(a *model.JobRoleAssignment) *dto.AssignmentResponse {
	return &dto.AssignmentResponse{
		ID:            a.AssignmentID,
		UserID:        a.UserID,
		JobRole:       toJobRoleBrief(a.JobRole),
		JobRoleID:     a.JobRoleID,
		EffectiveFrom: a.EffectiveFrom.Format(dateLayout),
		EffectiveTo:   formatDatePtr(a.EffectiveTo),
		IsActive:      a.IsActive,
		CreatedAt:     a.CreatedAt.Format(datetimeLayout),
		UpdatedAt:     a.UpdatedAt.Format(datetimeLayout),
	}
}
