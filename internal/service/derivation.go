package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"hr-lms/backend/config"
	"hr-lms/backend/internal/model"
	"hr-lms/backend/internal/repository"
	pkgerrors "hr-lms/backend/pkg/errors"
	"hr-lms/backend/pkg/metrics"
)

// Trigger 推导触发来源
type Trigger string

const (
	TriggerAssignment  Trigger = "assignment"
	TriggerRequirement Trigger = "requirement"
	TriggerBackfill    Trigger = "backfill"
	TriggerRebuild     Trigger = "rebuild"
	TriggerOperator    Trigger = "operator" // 运维按用户手动推导
)

// Outcome 单个培训的推导结果
type Outcome string

const (
	OutcomeCreated          Outcome = "created"
	OutcomeSkippedCompleted Outcome = "skipped_completed"
	OutcomeSkippedOpenNeed  Outcome = "skipped_open_need"
	OutcomeSkippedDangling  Outcome = "skipped_dangling"
	OutcomeRacedDuplicate   Outcome = "raced_duplicate" // 并发推导或其他来源已占用唯一索引，视为成功
	OutcomeFailed           Outcome = "failed"
)

// DefaultNeedPriority 推导生成需求的默认优先级
const DefaultNeedPriority = 3

// ItemResult 单个 (用户, 培训) 的处理结果
type ItemResult struct {
	TrainingID string
	RoleID     string
	Outcome    Outcome
	Err        error
}

// DerivationResult 一次推导的汇总结果
type DerivationResult struct {
	UserID  string
	Created int
	Items   []ItemResult
}

// Failed 返回失败条目
func (r *DerivationResult) Failed() []ItemResult {
	var failed []ItemResult
	for _, it := range r.Items {
		if it.Outcome == OutcomeFailed {
			failed = append(failed, it)
		}
	}
	return failed
}

// Skipped 返回跳过（含并发占用）的条目数
func (r *DerivationResult) Skipped() int {
	n := 0
	for _, it := range r.Items {
		switch it.Outcome {
		case OutcomeSkippedCompleted, OutcomeSkippedOpenNeed, OutcomeSkippedDangling, OutcomeRacedDuplicate:
			n++
		}
	}
	return n
}

// Count 返回指定结果的条目数
func (r *DerivationResult) Count(outcome Outcome) int {
	n := 0
	for _, it := range r.Items {
		if it.Outcome == outcome {
			n++
		}
	}
	return n
}

// DerivationEngine 培训需求推导引擎
//
// 推导是“当前全量状态”的函数而非针对触发变更的增量：
//  1. 取用户全部有效岗位（不只是触发的那一个）
//  2. 汇总这些岗位的有效培训要求，按培训去重
//  3. 逐个培训：已完成则跳过；已有未关闭的岗位推导需求则跳过；否则新建
//
// 引擎不加锁。并发安全依赖 training_needs 上的部分唯一索引：
// 并发创建同一 (用户, 培训) 时只有一方成功，另一方按成功处理。
// 单个培训的失败不影响其余培训。引擎从不关闭、修改手工需求。
type DerivationEngine interface {
	DeriveForUser(ctx context.Context, userID string, trigger Trigger) (*DerivationResult, error)
	// DeriveForAssignment 按岗位分配解析目标用户；分配不存在视为无法解析，返回空结果
	DeriveForAssignment(ctx context.Context, assignmentID string, trigger Trigger) (*DerivationResult, error)
}

type derivationEngine struct {
	repo                *repository.Repository
	oracle              CompletionOracle
	honorEffectiveDates bool
	now                 func() time.Time
	logger              *zap.Logger
}

// NewDerivationEngine 创建 DerivationEngine 实例
func NewDerivationEngine(repo *repository.Repository, oracle CompletionOracle, feature *config.FeatureConfig, logger *zap.Logger) DerivationEngine {
	return &derivationEngine{
		repo:                repo,
		oracle:              oracle,
		honorEffectiveDates: feature != nil && feature.HonorEffectiveDates,
		now:                 time.Now,
		logger:              logger,
	}
}

func (e *derivationEngine) DeriveForAssignment(ctx context.Context, assignmentID string, trigger Trigger) (*DerivationResult, error) {
	if assignmentID == "" {
		return &DerivationResult{}, nil
	}
	a, err := e.repo.Assignment.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &DerivationResult{}, nil
		}
		return &DerivationResult{}, fmt.Errorf("加载岗位分配失败: %w", err)
	}
	return e.DeriveForUser(ctx, a.UserID, trigger)
}

func (e *derivationEngine) DeriveForUser(ctx context.Context, userID string, trigger Trigger) (*DerivationResult, error) {
	result := &DerivationResult{UserID: userID}
	if userID == "" {
		return result, nil
	}

	start := time.Now()
	err := e.derive(ctx, result)
	e.record(result, trigger, time.Since(start), err)
	return result, err
}

// ── 推导主流程 ──

func (e *derivationEngine) derive(ctx context.Context, result *DerivationResult) error {
	userID := result.UserID

	// 1. 用户全部有效岗位
	var asOf *time.Time
	if e.honorEffectiveDates {
		now := e.now()
		asOf = &now
	}
	assignments, err := e.repo.Assignment.ListActiveByUser(ctx, userID, asOf)
	if err != nil {
		return fmt.Errorf("加载岗位分配失败: %w", err)
	}

	roleIDs := make([]string, 0, len(assignments))
	grantedBy := make(map[string]string, len(assignments)) // role_id → assignment_id
	for _, a := range assignments {
		if a.JobRole == nil || !a.JobRole.IsActive {
			continue
		}
		if _, ok := grantedBy[a.JobRoleID]; ok {
			continue
		}
		grantedBy[a.JobRoleID] = a.AssignmentID
		roleIDs = append(roleIDs, a.JobRoleID)
	}
	if len(roleIDs) == 0 {
		return nil
	}

	// 2. 岗位要求并集（按岗位名、培训标题有序）
	reqs, err := e.repo.Requirement.ListActiveByRoles(ctx, roleIDs)
	if err != nil {
		return fmt.Errorf("加载培训要求失败: %w", err)
	}

	// 3. 已有未关闭的岗位推导需求
	open, err := e.repo.Need.OpenTrainingIDsBySource(ctx, userID, model.NeedSourceRole)
	if err != nil {
		return fmt.Errorf("加载未关闭需求失败: %w", err)
	}

	// 4. 逐个培训处理，首次出现的岗位即来源岗位
	seen := make(map[string]bool, len(reqs))
	for i := range reqs {
		req := &reqs[i]
		item := ItemResult{TrainingID: req.TrainingID, RoleID: req.JobRoleID}

		if isDangling(req) {
			item.Outcome = OutcomeSkippedDangling
			result.Items = append(result.Items, item)
			continue
		}
		if seen[req.TrainingID] {
			continue
		}
		seen[req.TrainingID] = true

		item.Outcome, item.Err = e.deriveOne(ctx, userID, req, grantedBy[req.JobRoleID], open)
		if item.Outcome == OutcomeCreated {
			result.Created++
		}
		result.Items = append(result.Items, item)
	}
	return nil
}

func (e *derivationEngine) deriveOne(ctx context.Context, userID string, req *model.TrainingRequirement, assignmentID string, open map[string]bool) (Outcome, error) {
	done, err := e.oracle.IsCompleted(ctx, userID, req.TrainingID)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("查询完成状态失败: %w", err)
	}
	if done {
		return OutcomeSkippedCompleted, nil
	}
	if open[req.TrainingID] {
		return OutcomeSkippedOpenNeed, nil
	}

	roleID := req.JobRoleID
	need := &model.TrainingNeed{
		UserID:     userID,
		TrainingID: req.TrainingID,
		Source:     model.NeedSourceRole,
		Status:     model.NeedStatusPending,
		Priority:   DefaultNeedPriority,
		JobRoleID:  &roleID,
		Note:       RoleNeedNote(req.JobRole.Name),
		IsOpen:     true,
	}
	if assignmentID != "" {
		need.AssignmentID = &assignmentID
	}

	if err := e.repo.Need.Create(ctx, need); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return OutcomeRacedDuplicate, nil
		}
		if pkgerrors.IsForeignKeyViolation(err) {
			return OutcomeSkippedDangling, nil
		}
		return OutcomeFailed, fmt.Errorf("创建培训需求失败: %w", err)
	}
	return OutcomeCreated, nil
}

// RoleNeedNote 岗位推导需求的备注，标明来源岗位
func RoleNeedNote(roleName string) string {
	return "岗位要求：" + roleName
}

// isDangling 要求引用的岗位或培训已不存在或已停用
func isDangling(req *model.TrainingRequirement) bool {
	return req.JobRole == nil || req.Training == nil || !req.JobRole.IsActive || !req.Training.IsActive
}

// ── 日志与指标 ──

func (e *derivationEngine) record(result *DerivationResult, trigger Trigger, elapsed time.Duration, err error) {
	metrics.DerivationDurationSeconds.Observe(elapsed.Seconds())
	for _, it := range result.Items {
		metrics.DerivationItemsTotal.WithLabelValues(string(it.Outcome)).Inc()
	}
	if result.Created > 0 {
		metrics.NeedsCreatedTotal.WithLabelValues(string(trigger)).Add(float64(result.Created))
	}

	failed := result.Failed()
	fields := []zap.Field{
		zap.String("user_id", result.UserID),
		zap.String("trigger", string(trigger)),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped()),
		zap.Int("failed", len(failed)),
		zap.Duration("elapsed", elapsed),
	}

	switch {
	case err != nil:
		metrics.DerivationRunsTotal.WithLabelValues(string(trigger), "error").Inc()
		e.logger.Error("培训需求推导失败", append(fields, zap.Error(err))...)
	case len(failed) > 0:
		metrics.DerivationRunsTotal.WithLabelValues(string(trigger), "partial").Inc()
		for _, it := range failed {
			fields = append(fields, zap.NamedError("item_"+it.TrainingID, it.Err))
		}
		e.logger.Warn("培训需求推导部分失败", fields...)
	default:
		metrics.DerivationRunsTotal.WithLabelValues(string(trigger), "ok").Inc()
		e.logger.Info("培训需求推导完成", fields...)
	}
}
