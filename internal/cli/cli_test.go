package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hr-lms/backend/internal/model"
	"hr-lms/backend/internal/service"
)

// ── 测试替身 ──

type fakeDispatcher struct {
	report   *service.RebuildReport
	initErr  error
	rebuilds int
}

func (f *fakeDispatcher) HandleAssignmentCommitted(context.Context, *model.JobRoleAssignment, bool) int {
	return 0
}
func (f *fakeDispatcher) HandleRequirementCommitted(context.Context, *model.TrainingRequirement) int {
	return 0
}
func (f *fakeDispatcher) Initialize(context.Context) (*service.RebuildReport, error) {
	return f.report, f.initErr
}
func (f *fakeDispatcher) RebuildAll(context.Context) *service.RebuildReport {
	f.rebuilds++
	return f.report
}
func (f *fakeDispatcher) LastReport(context.Context) (*service.RebuildReport, error) {
	return f.report, nil
}

type fakeEngine struct {
	result     *service.DerivationResult
	err        error
	gotUser    string
	gotAssign  string
	gotTrigger service.Trigger
}

func (f *fakeEngine) DeriveForUser(_ context.Context, userID string, trigger service.Trigger) (*service.DerivationResult, error) {
	f.gotUser, f.gotTrigger = userID, trigger
	return f.result, f.err
}
func (f *fakeEngine) DeriveForAssignment(_ context.Context, assignmentID string, trigger service.Trigger) (*service.DerivationResult, error) {
	f.gotAssign, f.gotTrigger = assignmentID, trigger
	return f.result, f.err
}

type harness struct {
	dispatcher *fakeDispatcher
	engine     *fakeEngine
	opened     int
	closed     int
	openErr    error
}

func (h *harness) open(_ context.Context, _ *RootOptions) (*Runtime, error) {
	if h.openErr != nil {
		return nil, h.openErr
	}
	h.opened++
	return &Runtime{
		Engine:     h.engine,
		Dispatcher: h.dispatcher,
		Close:      func() { h.closed++ },
	}, nil
}

func sampleReport() *service.RebuildReport {
	started := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	return &service.RebuildReport{
		Processed:  2,
		Created:    3,
		Failures:   []service.RebuildFailure{{AssignmentID: "a2", UserID: "u2", TrainingID: "t9", Error: "boom"}},
		StartedAt:  started,
		FinishedAt: started.Add(time.Second),
	}
}

func run(t *testing.T, h *harness, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand(h.open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// ── 根命令 ──

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand((&harness{}).open)
	for _, name := range []string{"rebuild-needs", "backfill", "derive"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand((&harness{}).open)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)
}

func TestInvalidFormat(t *testing.T) {
	h := &harness{dispatcher: &fakeDispatcher{report: sampleReport()}}

	_, err := run(t, h, "rebuild-needs", "--format", "yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Zero(t, h.opened)
}

// ── rebuild-needs ──

func TestRebuild_TextReport(t *testing.T) {
	h := &harness{dispatcher: &fakeDispatcher{report: sampleReport()}}

	out, err := run(t, h, "rebuild-needs")
	require.NoError(t, err, "单项失败不应导致命令失败")
	assert.Contains(t, out, "新建培训需求 3 条")
	assert.Contains(t, out, "assignment=a2")
	assert.Equal(t, 1, h.dispatcher.rebuilds)
	assert.Equal(t, 1, h.closed)
}

func TestRebuild_JSONReport(t *testing.T) {
	h := &harness{dispatcher: &fakeDispatcher{report: sampleReport()}}

	out, err := run(t, h, "rebuild-needs", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string                `json:"status"`
		Data   service.RebuildReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 3, resp.Data.Created)
	require.Len(t, resp.Data.Failures, 1)
	assert.Equal(t, "t9", resp.Data.Failures[0].TrainingID)
}

func TestRebuild_CannotStart(t *testing.T) {
	h := &harness{openErr: errors.New("数据库连接失败")}

	_, err := run(t, h, "rebuild-needs")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRebuild_RejectsArgs(t *testing.T) {
	h := &harness{dispatcher: &fakeDispatcher{report: sampleReport()}}

	_, err := run(t, h, "rebuild-needs", "--dry-run")
	require.Error(t, err)
	assert.Zero(t, h.dispatcher.rebuilds)
}

// ── backfill ──

func TestBackfill(t *testing.T) {
	t.Run("首次执行", func(t *testing.T) {
		h := &harness{dispatcher: &fakeDispatcher{report: sampleReport()}}
		out, err := run(t, h, "backfill")
		require.NoError(t, err)
		assert.Contains(t, out, "已处理岗位分配 2 条")
	})

	t.Run("已回填", func(t *testing.T) {
		h := &harness{dispatcher: &fakeDispatcher{}}
		out, err := run(t, h, "backfill")
		require.NoError(t, err)
		assert.Contains(t, out, "跳过")
	})

	t.Run("无法读取状态", func(t *testing.T) {
		h := &harness{dispatcher: &fakeDispatcher{initErr: errors.New("state unavailable")}}
		_, err := run(t, h, "backfill")
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
	})
}

// ── derive ──

func TestDerive_ByUser(t *testing.T) {
	engine := &fakeEngine{result: &service.DerivationResult{
		UserID:  "u1",
		Created: 1,
		Items: []service.ItemResult{
			{TrainingID: "tr-a", Outcome: service.OutcomeSkippedCompleted},
			{TrainingID: "tr-b", Outcome: service.OutcomeCreated},
		},
	}}
	h := &harness{engine: engine}

	out, err := run(t, h, "derive", "--user", "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", engine.gotUser)
	assert.Equal(t, service.TriggerOperator, engine.gotTrigger)
	assert.Contains(t, out, "新建培训需求 1 条")
	assert.Contains(t, out, "training=tr-b outcome=created")
}

func TestDerive_ByAssignment_JSON(t *testing.T) {
	engine := &fakeEngine{result: &service.DerivationResult{
		UserID: "u1",
		Items:  []service.ItemResult{{TrainingID: "tr-a", Outcome: service.OutcomeFailed, Err: errors.New("boom")}},
	}}
	h := &harness{engine: engine}

	out, err := run(t, h, "derive", "--assignment", "a1", "--format", "json")
	require.NoError(t, err)
	assert.Equal(t, "a1", engine.gotAssign)

	var resp struct {
		Data derivationView `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Items, 1)
	assert.Equal(t, "boom", resp.Data.Items[0].Error)
}

func TestDerive_TargetValidation(t *testing.T) {
	tests := [][]string{
		{"derive"},
		{"derive", "--user", "u1", "--assignment", "a1"},
	}
	for _, args := range tests {
		h := &harness{engine: &fakeEngine{}}
		_, err := run(t, h, args...)
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Zero(t, h.opened)
	}
}
