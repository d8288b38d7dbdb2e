package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"hr-lms/backend/internal/dto"
	"hr-lms/backend/internal/service"
	"hr-lms/backend/pkg/response"
)

// RequirementHandler 岗位培训要求模块 HTTP 处理器
type RequirementHandler struct {
	requirementSvc service.RequirementService
}

// NewRequirementHandler 创建 RequirementHandler
func NewRequirementHandler(requirementSvc service.RequirementService) *RequirementHandler {
	return &RequirementHandler{requirementSvc: requirementSvc}
}

// ListRequirements 获取培训要求列表
// GET /api/v1/requirements
func (h *RequirementHandler) ListRequirements(c *gin.Context) {
	var req dto.RequirementListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.requirementSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetRequirement 获取培训要求详情
// GET /api/v1/requirements/:id
func (h *RequirementHandler) GetRequirement(c *gin.Context) {
	r, err := h.requirementSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleRequirementError(c, err)
		return
	}

	response.OK(c, r)
}

// CreateRequirement 为岗位添加培训要求，成功后对岗位持有人扇出推导
// POST /api/v1/requirements
func (h *RequirementHandler) CreateRequirement(c *gin.Context) {
	var req dto.CreateRequirementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	r, err := h.requirementSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleRequirementError(c, err)
		return
	}

	response.Created(c, r)
}

// UpdateRequirement 更新培训要求
// PUT /api/v1/requirements/:id
func (h *RequirementHandler) UpdateRequirement(c *gin.Context) {
	var req dto.UpdateRequirementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	r, err := h.requirementSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleRequirementError(c, err)
		return
	}

	response.OK(c, r)
}

func (h *RequirementHandler) handleRequirementError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRequirementNotFound):
		response.NotFound(c, 23001, "培训要求不存在")
	case errors.Is(err, service.ErrRequirementDuplicate):
		response.Conflict(c, 23002, "该岗位已存在此培训要求")
	case errors.Is(err, service.ErrRoleNotFound):
		response.NotFound(c, 20001, "岗位不存在")
	case errors.Is(err, service.ErrTrainingNotFound):
		response.NotFound(c, 21001, "培训不存在")
	default:
		response.InternalError(c)
	}
}
