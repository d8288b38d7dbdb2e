package dto

// ── 岗位模块 DTO ──

// CreateJobRoleRequest 创建岗位请求
type CreateJobRoleRequest struct {
	Name        string  `json:"name"        binding:"required,min=2,max=150"`
	Code        *string `json:"code"        binding:"omitempty,max=50"`
	Description string  `json:"description" binding:"omitempty,max=2000"`
}

// UpdateJobRoleRequest 更新岗位请求（is_active=false 即停用）
type UpdateJobRoleRequest struct {
	Name        *string `json:"name"        binding:"omitempty,min=2,max=150"`
	Code        *string `json:"code"        binding:"omitempty,max=50"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	IsActive    *bool   `json:"is_active"`
	Version     int     `json:"version"     binding:"required,min=1"`
}

// JobRoleListRequest 岗位列表查询参数
type JobRoleListRequest struct {
	PaginationRequest
	IncludeInactive bool `form:"include_inactive"`
}

// JobRoleResponse 岗位信息响应
type JobRoleResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Code        *string `json:"code,omitempty"`
	Description string  `json:"description"`
	IsActive    bool    `json:"is_active"`
	Version     int     `json:"version"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}
