package dto

// ── 培训需求模块 DTO ──

// CreateNeedRequest 手工登记培训需求请求
type CreateNeedRequest struct {
	UserID     string  `json:"user_id"     binding:"required,uuid"`
	TrainingID string  `json:"training_id" binding:"required,uuid"`
	Priority   int     `json:"priority"    binding:"omitempty,min=1,max=5"`
	Note       string  `json:"note"        binding:"omitempty,max=2000"`
	DueDate    *string `json:"due_date"` // "2026-12-31"
}

// NeedListRequest 培训需求列表查询参数
type NeedListRequest struct {
	PaginationRequest
	UserID     string `form:"user_id"     binding:"omitempty,uuid"`
	TrainingID string `form:"training_id" binding:"omitempty,uuid"`
	Source     string `form:"source"      binding:"omitempty,oneof=role_auto manual other"`
	IsOpen     *bool  `form:"is_open"`
	Keyword    string `form:"q"`
	// HideCompleted 为空时默认 true
	HideCompleted *bool `form:"hide_completed"`
}

// ShouldHideCompleted 是否隐藏已完成培训的需求
func (r *NeedListRequest) ShouldHideCompleted() bool {
	return r.HideCompleted == nil || *r.HideCompleted
}

// NeedResponse 培训需求响应
type NeedResponse struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	Training     *TrainingBrief `json:"training,omitempty"`
	TrainingID   string         `json:"training_id"`
	Source       string         `json:"source"`
	Status       string         `json:"status"`
	Priority     int            `json:"priority"`
	JobRole      *JobRoleBrief  `json:"job_role,omitempty"`
	AssignmentID *string        `json:"assignment_id,omitempty"`
	Note         string         `json:"note"`
	DueDate      *string        `json:"due_date,omitempty"`
	IsOpen       bool           `json:"is_open"`
	Completed    bool           `json:"completed"` // 用户已完成该培训（需求记录本身不会被自动关闭）
	ResolvedAt   *string        `json:"resolved_at,omitempty"`
	CreatedBy    *string        `json:"created_by,omitempty"`
	CreatedAt    string         `json:"created_at"`
	UpdatedAt    string         `json:"updated_at"`
}

// DerivationItemResponse 单个培训的推导结果
type DerivationItemResponse struct {
	TrainingID string `json:"training_id"`
	RoleID     string `json:"role_id,omitempty"`
	Outcome    string `json:"outcome"`
	Error      string `json:"error,omitempty"`
}

// DerivationResponse 单用户推导结果
type DerivationResponse struct {
	UserID  string                   `json:"user_id"`
	Created int                      `json:"created"`
	Items   []DerivationItemResponse `json:"items"`
}
