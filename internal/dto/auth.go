package dto

// ── 认证模块 DTO ──

// CurrentUserResponse 当前调用方身份（来自 Token 声明）
type CurrentUserResponse struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}
