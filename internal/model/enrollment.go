package model

import "time"

// 参训状态
const (
	EnrollmentStatusEnrolled  = "enrolled"
	EnrollmentStatusCompleted = "completed"
	EnrollmentStatusCancelled = "cancelled"
)

// Enrollment 参训记录表，对应 enrollments
// 同一 (用户, 培训) 可存在多条（重复报名），完成判定取任意一条满足即可
type Enrollment struct {
	EnrollmentID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"enrollment_id"`
	UserID       string     `gorm:"type:uuid;not null"                             json:"user_id"`
	TrainingID   string     `gorm:"type:uuid;not null"                             json:"training_id"`
	Status       string     `gorm:"type:varchar(12);not null;default:'enrolled'"   json:"status"`
	IsPassed     *bool      `json:"is_passed,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Enrollment) TableName() string { return "enrollments" }

// MarksCompletion 单条记录是否构成完成信号：
// status=completed 或 is_passed=true 或 completed_at 非空
func (e *Enrollment) MarksCompletion() bool {
	if e.Status == EnrollmentStatusCompleted {
		return true
	}
	if e.IsPassed != nil && *e.IsPassed {
		return true
	}
	return e.CompletedAt != nil
}
