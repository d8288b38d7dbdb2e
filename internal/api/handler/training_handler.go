package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"hr-lms/backend/internal/dto"
	"hr-lms/backend/internal/service"
	"hr-lms/backend/pkg/response"
)

// TrainingHandler 培训课程模块 HTTP 处理器
type TrainingHandler struct {
	trainingSvc service.TrainingService
}

// NewTrainingHandler 创建 TrainingHandler
func NewTrainingHandler(trainingSvc service.TrainingService) *TrainingHandler {
	return &TrainingHandler{trainingSvc: trainingSvc}
}

// ListTrainings 获取培训列表
// GET /api/v1/trainings
func (h *TrainingHandler) ListTrainings(c *gin.Context) {
	var req dto.TrainingListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.trainingSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetTraining 获取培训详情
// GET /api/v1/trainings/:id
func (h *TrainingHandler) GetTraining(c *gin.Context) {
	training, err := h.trainingSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleTrainingError(c, err)
		return
	}

	response.OK(c, training)
}

// CreateTraining 创建培训
// POST /api/v1/trainings
func (h *TrainingHandler) CreateTraining(c *gin.Context) {
	var req dto.CreateTrainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	training, err := h.trainingSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleTrainingError(c, err)
		return
	}

	response.Created(c, training)
}

// UpdateTraining 更新培训（含停用）
// PUT /api/v1/trainings/:id
func (h *TrainingHandler) UpdateTraining(c *gin.Context) {
	var req dto.UpdateTrainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	training, err := h.trainingSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleTrainingError(c, err)
		return
	}

	response.OK(c, training)
}

func (h *TrainingHandler) handleTrainingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTrainingNotFound):
		response.NotFound(c, 21001, "培训不存在")
	default:
		response.InternalError(c)
	}
}
