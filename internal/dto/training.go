package dto

// ── 培训课程模块 DTO ──

// CreateTrainingRequest 创建培训请求
type CreateTrainingRequest struct {
	Title         string  `json:"title"          binding:"required,min=2,max=200"`
	Code          *string `json:"code"           binding:"omitempty,max=50"`
	Description   string  `json:"description"    binding:"omitempty,max=5000"`
	DurationHours *int    `json:"duration_hours" binding:"omitempty,min=0"`
}

// UpdateTrainingRequest 更新培训请求
type UpdateTrainingRequest struct {
	Title         *string `json:"title"          binding:"omitempty,min=2,max=200"`
	Code          *string `json:"code"           binding:"omitempty,max=50"`
	Description   *string `json:"description"    binding:"omitempty,max=5000"`
	DurationHours *int    `json:"duration_hours" binding:"omitempty,min=0"`
	IsActive      *bool   `json:"is_active"`
}

// TrainingListRequest 培训列表查询参数
type TrainingListRequest struct {
	PaginationRequest
	Keyword         string `form:"q"`
	IncludeInactive bool   `form:"include_inactive"`
}

// TrainingResponse 培训信息响应
type TrainingResponse struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Code          *string `json:"code,omitempty"`
	Description   string  `json:"description"`
	DurationHours *int    `json:"duration_hours,omitempty"`
	IsActive      bool    `json:"is_active"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}
