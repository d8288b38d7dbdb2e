package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"hr-lms/backend/internal/dto"
	"hr-lms/backend/internal/service"
	"hr-lms/backend/pkg/response"
)

// CompletionHandler 参训记录模块 HTTP 处理器
type CompletionHandler struct {
	completionSvc service.CompletionService
}

// NewCompletionHandler 创建 CompletionHandler
func NewCompletionHandler(completionSvc service.CompletionService) *CompletionHandler {
	return &CompletionHandler{completionSvc: completionSvc}
}

// ListCompletions 获取参训记录列表
// GET /api/v1/completions
func (h *CompletionHandler) ListCompletions(c *gin.Context) {
	var req dto.CompletionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.completionSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// RecordCompletion 登记参训/完成记录
// POST /api/v1/completions
func (h *CompletionHandler) RecordCompletion(c *gin.Context) {
	var req dto.RecordCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	e, err := h.completionSvc.Record(c.Request.Context(), &req, callerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTrainingNotFound):
			response.NotFound(c, 21001, "培训不存在")
		case errors.Is(err, service.ErrInvalidCompletedAt):
			response.BadRequest(c, 24001, "完成时间格式错误，应为 RFC3339")
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, e)
}
