package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hr-lms/backend/internal/dto"
	"hr-lms/backend/internal/service"
	"hr-lms/backend/pkg/response"
)

// MaintenanceHandler 运维模块 HTTP 处理器
type MaintenanceHandler struct {
	dispatcher service.NeedDispatcher
}

// NewMaintenanceHandler 创建 MaintenanceHandler
func NewMaintenanceHandler(dispatcher service.NeedDispatcher) *MaintenanceHandler {
	return &MaintenanceHandler{dispatcher: dispatcher}
}

// RebuildNeeds 对全部有效岗位分配重新推导培训需求
// POST /api/v1/maintenance/rebuild-needs
//
// 单项失败列入报告，接口本身仍返回 200
func (h *MaintenanceHandler) RebuildNeeds(c *gin.Context) {
	report := h.dispatcher.RebuildAll(c.Request.Context())
	response.OK(c, toRebuildReportResponse(report))
}

// LastRebuild 获取最近一次全量重建报告
// GET /api/v1/maintenance/rebuild-needs/last
func (h *MaintenanceHandler) LastRebuild(c *gin.Context) {
	report, err := h.dispatcher.LastReport(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoRebuildReport):
			response.NotFound(c, 26001, "暂无全量重建记录")
		case errors.Is(err, service.ErrRebuildReportUnavailable):
			response.Error(c, http.StatusServiceUnavailable, 26002, "重建报告缓存不可用")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, toRebuildReportResponse(report))
}

func toRebuildReportResponse(r *service.RebuildReport) *dto.RebuildReportResponse {
	resp := &dto.RebuildReportResponse{
		Processed:  r.Processed,
		Created:    r.Created,
		Failures:   make([]dto.RebuildFailureResponse, 0, len(r.Failures)),
		StartedAt:  r.StartedAt.Format(time.RFC3339),
		FinishedAt: r.FinishedAt.Format(time.RFC3339),
		Summary:    r.String(),
	}
	for _, f := range r.Failures {
		resp.Failures = append(resp.Failures, dto.RebuildFailureResponse{
			AssignmentID: f.AssignmentID,
			UserID:       f.UserID,
			TrainingID:   f.TrainingID,
			Error:        f.Error,
		})
	}
	return resp
}
