package handler

import "hr-lms/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth        *AuthHandler
	JobRole     *JobRoleHandler
	Training    *TrainingHandler
	Assignment  *AssignmentHandler
	Requirement *RequirementHandler
	Completion  *CompletionHandler
	Need        *NeedHandler
	Maintenance *MaintenanceHandler
	Export      *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:        NewAuthHandler(svc.Auth),
		JobRole:     NewJobRoleHandler(svc.JobRole),
		Training:    NewTrainingHandler(svc.Training),
		Assignment:  NewAssignmentHandler(svc.Assignment),
		Requirement: NewRequirementHandler(svc.Requirement),
		Completion:  NewCompletionHandler(svc.Completion),
		Need:        NewNeedHandler(svc.Need),
		Maintenance: NewMaintenanceHandler(svc.Dispatcher),
		Export:      NewExportHandler(svc.Export),
	}
}
