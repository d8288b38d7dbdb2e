package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"hr-lms/backend/internal/dto"
	"hr-lms/backend/internal/service"
	"hr-lms/backend/pkg/response"
)

// AssignmentHandler 岗位分配模块 HTTP 处理器
type AssignmentHandler struct {
	assignmentSvc service.AssignmentService
}

// NewAssignmentHandler 创建 AssignmentHandler
func NewAssignmentHandler(assignmentSvc service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentSvc: assignmentSvc}
}

// ListAssignments 获取岗位分配列表
// GET /api/v1/assignments
func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
	var req dto.AssignmentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.assignmentSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetAssignment 获取岗位分配详情
// GET /api/v1/assignments/:id
func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
	a, err := h.assignmentSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, a)
}

// CreateAssignment 为用户分配岗位，成功后触发培训需求推导
// POST /api/v1/assignments
func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
	var req dto.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	a, err := h.assignmentSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.Created(c, a)
}

// UpdateAssignment 更新岗位分配
// PUT /api/v1/assignments/:id
func (h *AssignmentHandler) UpdateAssignment(c *gin.Context) {
	var req dto.UpdateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	a, err := h.assignmentSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, a)
}

// DeactivateAssignment 结束岗位分配
// POST /api/v1/assignments/:id/deactivate
func (h *AssignmentHandler) DeactivateAssignment(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	a, err := h.assignmentSvc.Deactivate(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, a)
}

func (h *AssignmentHandler) handleAssignmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, 22001, "岗位分配不存在")
	case errors.Is(err, service.ErrRoleNotFound):
		response.NotFound(c, 20001, "岗位不存在")
	case errors.Is(err, service.ErrAssignmentDateRange):
		response.BadRequest(c, 22002, "截止日期不能早于生效日期")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 10001, "日期格式错误，应为 YYYY-MM-DD")
	default:
		response.InternalError(c)
	}
}
