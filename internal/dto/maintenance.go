package dto

// ── 运维模块 DTO ──

// RebuildFailureResponse 重建失败条目
type RebuildFailureResponse struct {
	AssignmentID string `json:"assignment_id"`
	UserID       string `json:"user_id"`
	TrainingID   string `json:"training_id,omitempty"`
	Error        string `json:"error"`
}

// RebuildReportResponse 全量重建报告
type RebuildReportResponse struct {
	Processed  int                      `json:"processed"`
	Created    int                      `json:"created"`
	Failures   []RebuildFailureResponse `json:"failures"`
	StartedAt  string                   `json:"started_at"`
	FinishedAt string                   `json:"finished_at"`
	Summary    string                   `json:"summary"`
}
