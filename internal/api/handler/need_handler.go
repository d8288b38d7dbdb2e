package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"hr-lms/backend/internal/dto"
	"hr-lms/backend/internal/service"
	"hr-lms/backend/pkg/response"
)

// NeedHandler 培训需求模块 HTTP 处理器
type NeedHandler struct {
	needSvc service.NeedService
}

// NewNeedHandler 创建 NeedHandler
func NewNeedHandler(needSvc service.NeedService) *NeedHandler {
	return &NeedHandler{needSvc: needSvc}
}

// ListNeeds 获取培训需求列表（默认隐藏已完成培训）
// GET /api/v1/needs
func (h *NeedHandler) ListNeeds(c *gin.Context) {
	var req dto.NeedListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.needSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetNeed 获取培训需求详情
// GET /api/v1/needs/:id
func (h *NeedHandler) GetNeed(c *gin.Context) {
	need, err := h.needSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleNeedError(c, err)
		return
	}

	response.OK(c, need)
}

// CreateNeed 手工登记培训需求
// POST /api/v1/needs
func (h *NeedHandler) CreateNeed(c *gin.Context) {
	var req dto.CreateNeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	need, err := h.needSvc.CreateManual(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleNeedError(c, err)
		return
	}

	response.Created(c, need)
}

// ResolveNeed 关闭培训需求
// POST /api/v1/needs/:id/resolve
func (h *NeedHandler) ResolveNeed(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	need, err := h.needSvc.Resolve(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		h.handleNeedError(c, err)
		return
	}

	response.OK(c, need)
}

// ReopenNeed 重新打开培训需求
// POST /api/v1/needs/:id/reopen
func (h *NeedHandler) ReopenNeed(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	need, err := h.needSvc.Reopen(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		h.handleNeedError(c, err)
		return
	}

	response.OK(c, need)
}

// DeriveForUser 为单个用户立即推导培训需求
// POST /api/v1/needs/derive/:user_id
func (h *NeedHandler) DeriveForUser(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		response.BadRequest(c, 10001, "用户ID不能为空")
		return
	}

	result, err := h.needSvc.DeriveForUser(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

func (h *NeedHandler) handleNeedError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNeedNotFound):
		response.NotFound(c, 25001, "培训需求不存在")
	case errors.Is(err, service.ErrNeedAlreadyOpen):
		response.Conflict(c, 25002, "该用户此培训已存在未关闭的需求")
	case errors.Is(err, service.ErrTrainingNotFound):
		response.NotFound(c, 21001, "培训不存在")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 10001, "日期格式错误，应为 YYYY-MM-DD")
	default:
		response.InternalError(c)
	}
}
