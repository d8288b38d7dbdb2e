package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"hr-lms/backend/internal/dto"
	"hr-lms/backend/internal/model"
	"hr-lms/backend/internal/repository"
	pkgerrors "hr-lms/backend/pkg/errors"
)

// ── 培训需求模块业务错误 ──

var (
	ErrNeedNotFound    = errors.New("培训需求不存在")
	ErrNeedAlreadyOpen = errors.New("该用户此培训已存在未关闭的需求")
)

// NeedService 培训需求业务接口
//
// 手工登记的需求（source=manual）与推导生成的需求共用同一唯一性约束；
// 推导引擎从不关闭或修改手工需求，关闭/重新打开只经由本服务。
// 需求没有删除操作。
type NeedService interface {
	CreateManual(ctx context.Context, req *dto.CreateNeedRequest, callerID string) (*dto.NeedResponse, error)
	GetByID(ctx context.Context, id string) (*dto.NeedResponse, error)
	List(ctx context.Context, req *dto.NeedListRequest) ([]dto.NeedResponse, int64, error)
	Resolve(ctx context.Context, id string, callerID string) (*dto.NeedResponse, error)
	Reopen(ctx context.Context, id string, callerID string) (*dto.NeedResponse, error)
	// DeriveForUser 运维按用户手动推导
	DeriveForUser(ctx context.Context, userID string) (*dto.DerivationResponse, error)
}

type needService struct {
	repo   *repository.Repository
	engine DerivationEngine
	oracle CompletionOracle
	now    func() time.Time
	logger *zap.Logger
}

// NewNeedService 创建 NeedService 实例
func NewNeedService(repo *repository.Repository, engine DerivationEngine, oracle CompletionOracle, logger *zap.Logger) NeedService {
	return &needService{repo: repo, engine: engine, oracle: oracle, now: time.Now, logger: logger}
}

// ────────────────────── CreateManual ──────────────────────

func (s *needService) CreateManual(ctx context.Context, req *dto.CreateNeedRequest, callerID string) (*dto.NeedResponse, error) {
	training, err := s.repo.Training.GetByID(ctx, req.TrainingID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTrainingNotFound
		}
		s.logger.Error("查询培训失败", zap.String("training_id", req.TrainingID), zap.Error(err))
		return nil, err
	}

	exists, err := s.repo.Need.ExistsOpen(ctx, req.UserID, req.TrainingID)
	if err != nil {
		s.logger.Error("查询未关闭需求失败", zap.Error(err))
		return nil, err
	}
	if exists {
		return nil, ErrNeedAlreadyOpen
	}

	need := &model.TrainingNeed{
		UserID:     req.UserID,
		TrainingID: req.TrainingID,
		Source:     model.NeedSourceManual,
		Status:     model.NeedStatusPending,
		Priority:   req.Priority,
		Note:       req.Note,
		IsOpen:     true,
	}
	if need.Priority == 0 {
		need.Priority = DefaultNeedPriority
	}
	if req.DueDate != nil {
		due, err := parseDate(*req.DueDate)
		if err != nil {
			return nil, err
		}
		need.DueDate = &due
	}
	need.CreatedBy = callerRef(callerID)
	need.UpdatedBy = callerRef(callerID)

	if err := s.repo.Need.Create(ctx, need); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, ErrNeedAlreadyOpen
		}
		s.logger.Error("手工登记培训需求失败", zap.Error(err))
		return nil, err
	}
	need.Training = training

	s.logger.Info("手工登记培训需求",
		zap.String("need_id", need.NeedID),
		zap.String("user_id", need.UserID),
		zap.String("training_id", need.TrainingID),
		zap.String("created_by", callerID),
	)
	return toNeedResponse(need), nil
}

// ────────────────────── GetByID / List ──────────────────────

func (s *needService) GetByID(ctx context.Context, id string) (*dto.NeedResponse, error) {
	need, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toNeedResponse(need)
	done, err := s.oracle.IsCompleted(ctx, need.UserID, need.TrainingID)
	if err != nil {
		s.logger.Warn("查询完成状态失败", zap.String("need_id", id), zap.Error(err))
	}
	resp.Completed = done
	return resp, nil
}

// List 默认隐藏用户已完成对应培训的需求（读时过滤）
func (s *needService) List(ctx context.Context, req *dto.NeedListRequest) ([]dto.NeedResponse, int64, error) {
	filter := repository.NeedFilter{
		UserID:        req.UserID,
		TrainingID:    req.TrainingID,
		Source:        req.Source,
		IsOpen:        req.IsOpen,
		Keyword:       req.Keyword,
		HideCompleted: req.ShouldHideCompleted(),
	}
	list, total, err := s.repo.Need.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出培训需求失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.NeedResponse, 0, len(list))
	for i := range list {
		result = append(result, *toNeedResponse(&list[i]))
	}
	if !filter.HideCompleted {
		s.markCompleted(ctx, list, result)
	}
	return result, total, nil
}

// markCompleted 按用户批量回填 Completed 标记
func (s *needService) markCompleted(ctx context.Context, needs []model.TrainingNeed, result []dto.NeedResponse) {
	byUser := make(map[string][]string)
	for _, n := range needs {
		byUser[n.UserID] = append(byUser[n.UserID], n.TrainingID)
	}
	done := make(map[string]map[string]bool, len(byUser))
	for userID, trainingIDs := range byUser {
		set, err := s.oracle.CompletedAmong(ctx, userID, trainingIDs)
		if err != nil {
			s.logger.Warn("批量查询完成状态失败", zap.String("user_id", userID), zap.Error(err))
			continue
		}
		done[userID] = set
	}
	for i := range result {
		result[i].Completed = done[result[i].UserID][result[i].TrainingID]
	}
}

// ────────────────────── Resolve / Reopen ──────────────────────

// Resolve 标记为已解决：关闭记录，保留审计轨迹
func (s *needService) Resolve(ctx context.Context, id string, callerID string) (*dto.NeedResponse, error) {
	need, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !need.IsOpen {
		return toNeedResponse(need), nil
	}

	now := s.now()
	need.IsOpen = false
	need.Status = model.NeedStatusDone
	need.ResolvedAt = &now
	need.UpdatedBy = callerRef(callerID)

	if err := s.repo.Need.SetOpen(ctx, need); err != nil {
		s.logger.Error("关闭培训需求失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toNeedResponse(need), nil
}

// Reopen 重新打开；同一 (用户, 培训) 已有其他未关闭需求时拒绝
func (s *needService) Reopen(ctx context.Context, id string, callerID string) (*dto.NeedResponse, error) {
	need, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if need.IsOpen {
		return toNeedResponse(need), nil
	}

	need.IsOpen = true
	need.Status = model.NeedStatusPending
	need.ResolvedAt = nil
	need.UpdatedBy = callerRef(callerID)

	if err := s.repo.Need.SetOpen(ctx, need); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, ErrNeedAlreadyOpen
		}
		s.logger.Error("重新打开培训需求失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toNeedResponse(need), nil
}

// ────────────────────── DeriveForUser ──────────────────────

func (s *needService) DeriveForUser(ctx context.Context, userID string) (*dto.DerivationResponse, error) {
	res, err := s.engine.DeriveForUser(ctx, userID, TriggerOperator)
	if err != nil {
		return nil, err
	}
	return toDerivationResponse(res), nil
}

func (s *needService) load(ctx context.Context, id string) (*model.TrainingNeed, error) {
	need, err := s.repo.Need.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNeedNotFound
		}
		s.logger.Error("查询培训需求失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return need, nil
}

func toNeedResponse(n *model.TrainingNeed) *dto.NeedResponse {
	return &dto.NeedResponse{
		ID:           n.NeedID,
		UserID:       n.UserID,
		Training:     toTrainingBrief(n.Training),
		TrainingID:   n.TrainingID,
		Source:       n.Source,
		Status:       n.Status,
		Priority:     n.Priority,
		JobRole:      toJobRoleBrief(n.JobRole),
		AssignmentID: n.AssignmentID,
		Note:         n.Note,
		DueDate:      formatDatePtr(n.DueDate),
		IsOpen:       n.IsOpen,
		ResolvedAt:   formatTimePtr(n.ResolvedAt),
		CreatedBy:    n.CreatedBy,
		CreatedAt:    n.CreatedAt.Format(datetimeLayout),
		UpdatedAt:    n.UpdatedAt.Format(datetimeLayout),
	}
}

func toDerivationResponse(r *DerivationResult) *dto.DerivationResponse {
	resp := &dto.DerivationResponse{
		UserID:  r.UserID,
		Created: r.Created,
		Items:   make([]dto.DerivationItemResponse, 0, len(r.Items)),
	}
	for _, it := range r.Items {
		item := dto.DerivationItemResponse{
			TrainingID: it.TrainingID,
			RoleID:     it.RoleID,
			Outcome:    string(it.Outcome),
		}
		if it.Err != nil {
			item.Error = it.Err.Error()
		}
		resp.Items = append(resp.Items, item)
	}
	return resp
}
