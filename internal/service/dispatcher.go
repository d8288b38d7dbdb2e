package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"hr-lms/backend/internal/model"
	"hr-lms/backend/internal/repository"
	"hr-lms/backend/pkg/metrics"
)

// ── 分发器业务错误 ──

var (
	ErrNoRebuildReport          = errors.New("暂无全量重建记录")
	ErrRebuildReportUnavailable = errors.New("重建报告缓存不可用")
)

// RebuildReportStore 最近一次重建报告的缓存（由 Redis 实现）
type RebuildReportStore interface {
	SaveRebuildReport(ctx context.Context, payload []byte, ttl time.Duration) error
	// LastRebuildReport 无记录时返回 nil, nil
	LastRebuildReport(ctx context.Context) ([]byte, error)
}

// RebuildFailure 全量重建中的单项失败
type RebuildFailure struct {
	AssignmentID string `json:"assignment_id"`
	UserID       string `json:"user_id"`
	TrainingID   string `json:"training_id,omitempty"`
	Error        string `json:"error"`
}

// RebuildReport 全量重建（及一次性回填）的汇总
type RebuildReport struct {
	Processed  int              `json:"processed"`
	Created    int              `json:"created"`
	Failures   []RebuildFailure `json:"failures"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
}

// String 渲染运维可读的文本摘要
func (r *RebuildReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "已处理岗位分配 %d 条，新建培训需求 %d 条\n", r.Processed, r.Created)
	if len(r.Failures) == 0 {
		b.WriteString("失败 0 项\n")
		return b.String()
	}
	fmt.Fprintf(&b, "失败 %d 项：\n", len(r.Failures))
	for _, f := range r.Failures {
		b.WriteString("  - ")
		if f.AssignmentID != "" {
			fmt.Fprintf(&b, "assignment=%s ", f.AssignmentID)
		}
		if f.UserID != "" {
			fmt.Fprintf(&b, "user=%s ", f.UserID)
		}
		if f.TrainingID != "" {
			fmt.Fprintf(&b, "training=%s ", f.TrainingID)
		}
		fmt.Fprintf(&b, "error=%s\n", f.Error)
	}
	return b.String()
}

// NeedDispatcher 推导触发分发器
//
// 写入路径（岗位分配、培训要求保存后）显式调用对应 Handle 方法，
// 推导失败只记录日志与指标，绝不向写入方返回错误。
// 一次性回填与运维重建对全部有效岗位分配执行推导，单项失败进入报告，不中断其余条目。
type NeedDispatcher interface {
	// HandleAssignmentCommitted 新建，或保存时处于有效状态，则为该用户推导；返回新建数
	HandleAssignmentCommitted(ctx context.Context, a *model.JobRoleAssignment, created bool) int
	// HandleRequirementCommitted 对该岗位全部有效持有人逐一推导；返回新建总数
	HandleRequirementCommitted(ctx context.Context, req *model.TrainingRequirement) int
	// Initialize 一次性回填：仅在从未回填过时执行
	Initialize(ctx context.Context) (*RebuildReport, error)
	// RebuildAll 运维全量重建，无筛选参数、无试运行模式
	RebuildAll(ctx context.Context) *RebuildReport
	LastReport(ctx context.Context) (*RebuildReport, error)
}

type needDispatcher struct {
	repo      *repository.Repository
	engine    DerivationEngine
	reports   RebuildReportStore
	reportTTL time.Duration
	logger    *zap.Logger
}

// NewNeedDispatcher 创建 NeedDispatcher 实例；reports 可为空（Redis 不可用时降级）
func NewNeedDispatcher(repo *repository.Repository, engine DerivationEngine, reports RebuildReportStore, reportTTL time.Duration, logger *zap.Logger) NeedDispatcher {
	return &needDispatcher{
		repo:      repo,
		engine:    engine,
		reports:   reports,
		reportTTL: reportTTL,
		logger:    logger,
	}
}

// ────────────────────── 写入路径触发 ──────────────────────

func (d *needDispatcher) HandleAssignmentCommitted(ctx context.Context, a *model.JobRoleAssignment, created bool) int {
	if a == nil || (!created && !a.IsActive) {
		return 0
	}
	res, err := d.engine.DeriveForUser(ctx, a.UserID, TriggerAssignment)
	d.isolate(TriggerAssignment, res, err,
		zap.String("assignment_id", a.AssignmentID),
		zap.String("user_id", a.UserID),
	)
	return res.Created
}

func (d *needDispatcher) HandleRequirementCommitted(ctx context.Context, req *model.TrainingRequirement) int {
	if req == nil || req.JobRoleID == "" {
		return 0
	}
	holders, err := d.repo.Assignment.ListActiveByRole(ctx, req.JobRoleID)
	if err != nil {
		metrics.DispatchFailuresTotal.WithLabelValues(string(TriggerRequirement)).Inc()
		d.logger.Error("加载岗位持有人失败，跳过推导",
			zap.String("requirement_id", req.RequirementID),
			zap.String("job_role_id", req.JobRoleID),
			zap.Error(err),
		)
		return 0
	}

	created := 0
	seen := make(map[string]bool, len(holders))
	for _, h := range holders {
		if h.UserID == "" || seen[h.UserID] {
			continue
		}
		seen[h.UserID] = true

		res, err := d.engine.DeriveForUser(ctx, h.UserID, TriggerRequirement)
		d.isolate(TriggerRequirement, res, err,
			zap.String("requirement_id", req.RequirementID),
			zap.String("user_id", h.UserID),
		)
		created += res.Created
	}
	return created
}

// isolate 吞掉写入路径上的推导失败，只留日志与指标
func (d *needDispatcher) isolate(trigger Trigger, res *DerivationResult, err error, fields ...zap.Field) {
	if err == nil && len(res.Failed()) == 0 {
		return
	}
	metrics.DispatchFailuresTotal.WithLabelValues(string(trigger)).Inc()
	if err != nil {
		d.logger.Error("触发推导失败（已隔离）", append(fields, zap.Error(err))...)
		return
	}
	d.logger.Warn("触发推导存在失败项（已隔离）", append(fields, zap.Int("failed", len(res.Failed())))...)
}

// ────────────────────── 回填与重建 ──────────────────────

func (d *needDispatcher) Initialize(ctx context.Context) (*RebuildReport, error) {
	state, err := d.repo.SystemState.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取系统状态失败: %w", err)
	}
	if state.NeedsBackfilledAt != nil {
		d.logger.Debug("培训需求已回填，跳过", zap.Time("backfilled_at", *state.NeedsBackfilledAt))
		return nil, nil
	}

	report, err := d.sweep(ctx, TriggerBackfill)
	if err != nil {
		// 未能开始则不落标记，下次启动重试
		return report, err
	}
	if err := d.repo.SystemState.MarkNeedsBackfilled(ctx, report.FinishedAt); err != nil {
		return report, fmt.Errorf("记录回填状态失败: %w", err)
	}

	d.logger.Info("培训需求一次性回填完成",
		zap.Int("processed", report.Processed),
		zap.Int("created", report.Created),
		zap.Int("failures", len(report.Failures)),
	)
	return report, nil
}

func (d *needDispatcher) RebuildAll(ctx context.Context) *RebuildReport {
	report, err := d.sweep(ctx, TriggerRebuild)
	if err != nil {
		report.Failures = append(report.Failures, RebuildFailure{Error: err.Error()})
	}
	metrics.RebuildLastCreated.Set(float64(report.Created))

	d.logger.Info("培训需求全量重建完成",
		zap.Int("processed", report.Processed),
		zap.Int("created", report.Created),
		zap.Int("failures", len(report.Failures)),
	)
	d.saveReport(ctx, report)
	return report
}

// sweep 对全部有效岗位分配逐条推导；仅在无法加载分配列表时返回错误
func (d *needDispatcher) sweep(ctx context.Context, trigger Trigger) (*RebuildReport, error) {
	report := &RebuildReport{StartedAt: time.Now(), Failures: []RebuildFailure{}}
	defer func() { report.FinishedAt = time.Now() }()

	assignments, err := d.repo.Assignment.ListActive(ctx)
	if err != nil {
		return report, fmt.Errorf("加载有效岗位分配失败: %w", err)
	}

	for _, a := range assignments {
		report.Processed++
		res, err := d.engine.DeriveForUser(ctx, a.UserID, trigger)
		report.Created += res.Created
		if err != nil {
			report.Failures = append(report.Failures, RebuildFailure{
				AssignmentID: a.AssignmentID,
				UserID:       a.UserID,
				Error:        err.Error(),
			})
			continue
		}
		for _, it := range res.Failed() {
			report.Failures = append(report.Failures, RebuildFailure{
				AssignmentID: a.AssignmentID,
				UserID:       a.UserID,
				TrainingID:   it.TrainingID,
				Error:        it.Err.Error(),
			})
		}
	}
	return report, nil
}

// ────────────────────── 报告缓存 ──────────────────────

func (d *needDispatcher) saveReport(ctx context.Context, report *RebuildReport) {
	if d.reports == nil {
		return
	}
	payload, err := json.Marshal(report)
	if err != nil {
		d.logger.Warn("序列化重建报告失败", zap.Error(err))
		return
	}
	if err := d.reports.SaveRebuildReport(ctx, payload, d.reportTTL); err != nil {
		d.logger.Warn("缓存重建报告失败", zap.Error(err))
	}
}

func (d *needDispatcher) LastReport(ctx context.Context) (*RebuildReport, error) {
	if d.reports == nil {
		return nil, ErrRebuildReportUnavailable
	}
	payload, err := d.reports.LastRebuildReport(ctx)
	if err != nil {
		d.logger.Error("读取重建报告失败", zap.Error(err))
		return nil, err
	}
	if payload == nil {
		return nil, ErrNoRebuildReport
	}
	var report RebuildReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, fmt.Errorf("解析重建报告失败: %w", err)
	}
	return &report, nil
}
