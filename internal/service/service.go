package service

import (
	"go.uber.org/zap"

	"hr-lms/backend/config"
	"hr-lms/backend/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth        AuthService
	JobRole     JobRoleService
	Training    TrainingService
	Assignment  AssignmentService
	Requirement RequirementService
	Completion  CompletionService
	Need        NeedService
	Export      ExportService

	Engine     DerivationEngine
	Dispatcher NeedDispatcher
}

// NewService 创建 Service 聚合
// reports / blacklist 为空时（Redis 不可用）重建报告不做缓存，登出不可用
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	reports RebuildReportStore,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) *Service {
	oracle := NewCompletionOracle(repo)
	engine := NewDerivationEngine(repo, oracle, &cfg.Feature, logger)
	dispatcher := NewNeedDispatcher(repo, engine, reports, cfg.Derivation.ReportTTL, logger)

	return &Service{
		Auth:        NewAuthService(blacklist, logger),
		JobRole:     NewJobRoleService(repo, logger),
		Training:    NewTrainingService(repo, logger),
		Assignment:  NewAssignmentService(repo, dispatcher, logger),
		Requirement: NewRequirementService(repo, dispatcher, logger),
		Completion:  NewCompletionService(repo, logger),
		Need:        NewNeedService(repo, engine, oracle, logger),
		Export:      NewExportService(repo, logger),
		Engine:      engine,
		Dispatcher:  dispatcher,
	}
}
