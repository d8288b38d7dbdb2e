package dto

// ── 岗位分配模块 DTO ──

// CreateAssignmentRequest 创建岗位分配请求
type CreateAssignmentRequest struct {
	UserID        string  `json:"user_id"        binding:"required,uuid"`
	JobRoleID     string  `json:"job_role_id"    binding:"required,uuid"`
	EffectiveFrom string  `json:"effective_from"` // "2026-01-01"，为空取当天
	EffectiveTo   *string `json:"effective_to"`
	IsActive      *bool   `json:"is_active"` // 为空默认 true
}

// UpdateAssignmentRequest 更新岗位分配请求
type UpdateAssignmentRequest struct {
	JobRoleID     *string `json:"job_role_id"    binding:"omitempty,uuid"`
	EffectiveFrom *string `json:"effective_from"`
	EffectiveTo   *string `json:"effective_to"`
	ClearTo       bool    `json:"clear_effective_to"`
	IsActive      *bool   `json:"is_active"`
}

// AssignmentListRequest 岗位分配列表查询参数
type AssignmentListRequest struct {
	PaginationRequest
	UserID     string `form:"user_id"     binding:"omitempty,uuid"`
	JobRoleID  string `form:"job_role_id" binding:"omitempty,uuid"`
	ActiveOnly bool   `form:"active_only"`
}

// AssignmentResponse 岗位分配响应
type AssignmentResponse struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	JobRole       *JobRoleBrief `json:"job_role,omitempty"`
	JobRoleID     string        `json:"job_role_id"`
	EffectiveFrom string        `json:"effective_from"`
	EffectiveTo   *string       `json:"effective_to,omitempty"`
	IsActive      bool          `json:"is_active"`
	NeedsCreated  int           `json:"needs_created"` // 本次写入触发推导新建的需求数
	CreatedAt     string        `json:"created_at"`
	UpdatedAt     string        `json:"updated_at"`
}
