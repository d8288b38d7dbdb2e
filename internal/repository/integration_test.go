//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hr-lms/backend/config"
	"hr-lms/backend/internal/model"
	"hr-lms/backend/internal/repository"
	"hr-lms/backend/internal/service"
	"hr-lms/backend/pkg/database"
	pkgerrors "hr-lms/backend/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=hr_lms password=hr_lms_password dbname=hr_lms_test sslmode=disable TimeZone=Europe/Istanbul"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	// 使用正式迁移建表，部分唯一索引等约束与生产一致
	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取 sql.DB 失败: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "数据库迁移失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Exit(code)
}

type fixture struct {
	role     *model.JobRole
	training *model.Training
	userID   string
}

// setupFixture 创建岗位、培训，并返回一个新用户ID与清理函数
func setupFixture(t *testing.T) (*fixture, func()) {
	t.Helper()
	ctx := context.Background()
	repo := repository.NewRepository(testDB)
	suffix := time.Now().UnixNano()

	role := &model.JobRole{Name: fmt.Sprintf("测试岗位-%d", suffix), IsActive: true}
	if err := repo.JobRole.Create(ctx, role); err != nil {
		t.Fatalf("创建岗位失败: %v", err)
	}
	training := &model.Training{Title: fmt.Sprintf("测试培训-%d", suffix), IsActive: true}
	if err := repo.Training.Create(ctx, training); err != nil {
		t.Fatalf("创建培训失败: %v", err)
	}

	f := &fixture{role: role, training: training, userID: uuid.NewString()}
	cleanup := func() {
		testDB.Exec("DELETE FROM training_needs WHERE training_id = ?", training.TrainingID)
		testDB.Exec("DELETE FROM enrollments WHERE training_id = ?", training.TrainingID)
		testDB.Exec("DELETE FROM training_requirements WHERE job_role_id = ?", role.RoleID)
		testDB.Exec("DELETE FROM job_role_assignments WHERE job_role_id = ?", role.RoleID)
		testDB.Exec("DELETE FROM trainings WHERE training_id = ?", training.TrainingID)
		testDB.Exec("DELETE FROM job_roles WHERE role_id = ?", role.RoleID)
	}
	return f, cleanup
}

func openNeed(f *fixture, source string) *model.TrainingNeed {
	return &model.TrainingNeed{
		UserID:     f.userID,
		TrainingID: f.training.TrainingID,
		Source:     source,
		Status:     model.NeedStatusPending,
		Priority:   3,
		IsOpen:     true,
	}
}

// ═══════════════════════════════════════════════════════════
// Test: 未关闭需求唯一性
// ═══════════════════════════════════════════════════════════

func TestNeed_OpenUniqueness(t *testing.T) {
	f, cleanup := setupFixture(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	first := openNeed(f, model.NeedSourceRole)
	if err := repo.Need.Create(ctx, first); err != nil {
		t.Fatalf("首条需求创建失败: %v", err)
	}

	// 来源不同也不能并存
	err := repo.Need.Create(ctx, openNeed(f, model.NeedSourceManual))
	if !errors.Is(err, pkgerrors.ErrUniqueViolation) {
		t.Fatalf("期望 ErrUniqueViolation，实际: %v", err)
	}

	// 关闭后可以再开一条
	now := time.Now()
	first.IsOpen = false
	first.Status = model.NeedStatusDone
	first.ResolvedAt = &now
	if err := repo.Need.SetOpen(ctx, first); err != nil {
		t.Fatalf("关闭需求失败: %v", err)
	}
	second := openNeed(f, model.NeedSourceManual)
	if err := repo.Need.Create(ctx, second); err != nil {
		t.Fatalf("关闭后再创建应成功: %v", err)
	}

	// 重新打开旧需求与新需求冲突
	first.IsOpen = true
	first.Status = model.NeedStatusPending
	first.ResolvedAt = nil
	err = repo.Need.SetOpen(ctx, first)
	if !pkgerrors.IsUniqueViolation(err) {
		t.Fatalf("重新打开应冲突，实际: %v", err)
	}

	exists, err := repo.Need.ExistsOpen(ctx, f.userID, f.training.TrainingID)
	if err != nil || !exists {
		t.Errorf("ExistsOpen 期望 true，实际 %v (err=%v)", exists, err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: 已完成培训的读时过滤
// ═══════════════════════════════════════════════════════════

func TestNeed_ListHideCompleted(t *testing.T) {
	f, cleanup := setupFixture(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	if err := repo.Need.Create(ctx, openNeed(f, model.NeedSourceRole)); err != nil {
		t.Fatalf("创建需求失败: %v", err)
	}

	filter := repository.NeedFilter{UserID: f.userID, HideCompleted: true}
	_, total, err := repo.Need.List(ctx, filter, 0, 20)
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if total != 1 {
		t.Fatalf("完成前期望 1 条，实际 %d", total)
	}

	passed := true
	if err := repo.Completion.Create(ctx, &model.Enrollment{
		UserID:     f.userID,
		TrainingID: f.training.TrainingID,
		Status:     model.EnrollmentStatusEnrolled,
		IsPassed:   &passed,
	}); err != nil {
		t.Fatalf("创建参训记录失败: %v", err)
	}

	_, total, err = repo.Need.List(ctx, filter, 0, 20)
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if total != 0 {
		t.Errorf("完成后应隐藏，实际 %d 条", total)
	}

	// 记录本身未被修改
	filter.HideCompleted = false
	list, total, err := repo.Need.List(ctx, filter, 0, 20)
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if total != 1 || !list[0].IsOpen {
		t.Errorf("不过滤时应返回 1 条未关闭需求，实际 total=%d", total)
	}

	done, err := repo.Completion.CompletedTrainingIDs(ctx, f.userID, []string{f.training.TrainingID})
	if err != nil || !done[f.training.TrainingID] {
		t.Errorf("CompletedTrainingIDs 应包含该培训 (err=%v)", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: 岗位乐观锁
// ═══════════════════════════════════════════════════════════

func TestJobRole_OptimisticLock(t *testing.T) {
	f, cleanup := setupFixture(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	stale := *f.role
	f.role.Description = "第一次修改"
	if err := repo.JobRole.Update(ctx, f.role); err != nil {
		t.Fatalf("首次更新失败: %v", err)
	}

	stale.Description = "基于旧版本的修改"
	if err := repo.JobRole.Update(ctx, &stale); !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Errorf("期望 ErrOptimisticLock，实际: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: 一次性回填标记
// ═══════════════════════════════════════════════════════════

func TestSystemState_MarkBackfilled(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	state, err := repo.SystemState.Get(ctx)
	if err != nil {
		t.Fatalf("读取系统状态失败: %v", err)
	}
	previous := state.NeedsBackfilledAt
	defer testDB.Exec("UPDATE system_state SET needs_backfilled_at = ? WHERE singleton", previous)

	at := time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)
	if err := repo.SystemState.MarkNeedsBackfilled(ctx, at); err != nil {
		t.Fatalf("MarkNeedsBackfilled 失败: %v", err)
	}
	state, err = repo.SystemState.Get(ctx)
	if err != nil {
		t.Fatalf("读取系统状态失败: %v", err)
	}
	if state.NeedsBackfilledAt == nil || !state.NeedsBackfilledAt.Equal(at) {
		t.Errorf("期望回填时间 %s，实际 %v", at, state.NeedsBackfilledAt)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: 并发推导
// ═══════════════════════════════════════════════════════════

func TestDerivation_ConcurrentCreatesOnce(t *testing.T) {
	f, cleanup := setupFixture(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	if err := repo.Requirement.Create(ctx, &model.TrainingRequirement{
		JobRoleID:       f.role.RoleID,
		TrainingID:      f.training.TrainingID,
		RequirementType: model.RequirementTypeRequired,
		IsActive:        true,
	}); err != nil {
		t.Fatalf("创建培训要求失败: %v", err)
	}
	if err := repo.Assignment.Create(ctx, &model.JobRoleAssignment{
		UserID:        f.userID,
		JobRoleID:     f.role.RoleID,
		EffectiveFrom: time.Now().AddDate(0, -1, 0),
		IsActive:      true,
	}); err != nil {
		t.Fatalf("创建岗位分配失败: %v", err)
	}

	svc := service.NewService(&config.Config{}, repo, nil, nil, zap.NewNop())

	const workers = 4
	var wg sync.WaitGroup
	created := make([]int, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := svc.Engine.DeriveForUser(ctx, f.userID, service.TriggerOperator)
			if err != nil {
				t.Errorf("DeriveForUser 失败: %v", err)
				return
			}
			created[i] = res.Created
		}(i)
	}
	wg.Wait()

	total := 0
	for _, n := range created {
		total += n
	}
	if total != 1 {
		t.Errorf("并发推导期望共新建 1 条，实际 %d", total)
	}

	var count int64
	testDB.Model(&model.TrainingNeed{}).
		Where("user_id = ? AND training_id = ? AND is_open", f.userID, f.training.TrainingID).
		Count(&count)
	if count != 1 {
		t.Errorf("期望 1 条未关闭需求，实际 %d", count)
	}
}
