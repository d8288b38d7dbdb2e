package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"hr-lms/backend/internal/dto"
	"hr-lms/backend/internal/service"
	"hr-lms/backend/pkg/response"
)

// JobRoleHandler 岗位模块 HTTP 处理器
type JobRoleHandler struct {
	roleSvc service.JobRoleService
}

// NewJobRoleHandler 创建 JobRoleHandler
func NewJobRoleHandler(roleSvc service.JobRoleService) *JobRoleHandler {
	return &JobRoleHandler{roleSvc: roleSvc}
}

// ListRoles 获取岗位列表
// GET /api/v1/roles
func (h *JobRoleHandler) ListRoles(c *gin.Context) {
	var req dto.JobRoleListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	roles, total, err := h.roleSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, roles, total, req.GetPage(), req.GetPageSize())
}

// GetRole 获取岗位详情
// GET /api/v1/roles/:id
func (h *JobRoleHandler) GetRole(c *gin.Context) {
	role, err := h.roleSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleRoleError(c, err)
		return
	}

	response.OK(c, role)
}

// CreateRole 创建岗位
// POST /api/v1/roles
func (h *JobRoleHandler) CreateRole(c *gin.Context) {
	var req dto.CreateJobRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	role, err := h.roleSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleRoleError(c, err)
		return
	}

	response.Created(c, role)
}

// UpdateRole 更新岗位（含停用）
// PUT /api/v1/roles/:id
func (h *JobRoleHandler) UpdateRole(c *gin.Context) {
	var req dto.UpdateJobRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	role, err := h.roleSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleRoleError(c, err)
		return
	}

	response.OK(c, role)
}

func (h *JobRoleHandler) handleRoleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRoleNotFound):
		response.NotFound(c, 20001, "岗位不存在")
	case errors.Is(err, service.ErrRoleNameDuplicate):
		response.Conflict(c, 20002, "岗位名称或编码已存在")
	case errors.Is(err, service.ErrRoleVersionStale):
		response.Conflict(c, 20003, "岗位已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
