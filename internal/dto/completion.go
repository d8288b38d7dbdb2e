package dto

// ── 参训记录模块 DTO ──

// RecordCompletionRequest 登记参训/完成记录请求
type RecordCompletionRequest struct {
	UserID      string  `json:"user_id"      binding:"required,uuid"`
	TrainingID  string  `json:"training_id"  binding:"required,uuid"`
	Status      string  `json:"status"       binding:"omitempty,oneof=enrolled completed cancelled"`
	IsPassed    *bool   `json:"is_passed"`
	CompletedAt *string `json:"completed_at"` // RFC3339；status=completed 且为空时取当前时间
}

// CompletionListRequest 参训记录列表查询参数
type CompletionListRequest struct {
	PaginationRequest
	UserID     string `form:"user_id"     binding:"omitempty,uuid"`
	TrainingID string `form:"training_id" binding:"omitempty,uuid"`
}

// CompletionResponse 参训记录响应
type CompletionResponse struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	TrainingID  string  `json:"training_id"`
	Status      string  `json:"status"`
	IsPassed    *bool   `json:"is_passed,omitempty"`
	CompletedAt *string `json:"completed_at,omitempty"`
	Completed   bool    `json:"completed"`
	CreatedAt   string  `json:"created_at"`
}
