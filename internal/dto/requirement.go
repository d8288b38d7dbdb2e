package dto

// ── 岗位培训要求模块 DTO ──

// CreateRequirementRequest 创建培训要求请求
type CreateRequirementRequest struct {
	JobRoleID       string `json:"job_role_id"      binding:"required,uuid"`
	TrainingID      string `json:"training_id"      binding:"required,uuid"`
	RequirementType string `json:"requirement_type" binding:"omitempty,oneof=required optional"`
	ValidityMonths  *int   `json:"validity_months"  binding:"omitempty,min=0"`
	Notes           string `json:"notes"            binding:"omitempty,max=2000"`
	IsActive        *bool  `json:"is_active"`
}

// UpdateRequirementRequest 更新培训要求请求
type UpdateRequirementRequest struct {
	RequirementType *string `json:"requirement_type" binding:"omitempty,oneof=required optional"`
	ValidityMonths  *int    `json:"validity_months"  binding:"omitempty,min=0"`
	Notes           *string `json:"notes"            binding:"omitempty,max=2000"`
	IsActive        *bool   `json:"is_active"`
}

// RequirementListRequest 培训要求列表查询参数
type RequirementListRequest struct {
	PaginationRequest
	JobRoleID  string `form:"job_role_id" binding:"omitempty,uuid"`
	TrainingID string `form:"training_id" binding:"omitempty,uuid"`
	ActiveOnly bool   `form:"active_only"`
}

// RequirementResponse 培训要求响应
type RequirementResponse struct {
	ID              string         `json:"id"`
	JobRole         *JobRoleBrief  `json:"job_role,omitempty"`
	Training        *TrainingBrief `json:"training,omitempty"`
	JobRoleID       string         `json:"job_role_id"`
	TrainingID      string         `json:"training_id"`
	RequirementType string         `json:"requirement_type"`
	ValidityMonths  *int           `json:"validity_months,omitempty"`
	Notes           string         `json:"notes"`
	IsActive        bool           `json:"is_active"`
	NeedsCreated    int            `json:"needs_created"` // 本次写入触发推导新建的需求数
	CreatedAt       string         `json:"created_at"`
	UpdatedAt       string         `json:"updated_at"`
}
