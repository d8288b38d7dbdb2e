package model

import "time"

// 需求来源
const (
	NeedSourceRole   = "role_auto" // 岗位推导
	NeedSourceManual = "manual"
	NeedSourceOther  = "other"
)

// 需求状态
const (
	NeedStatusPending   = "pending"
	NeedStatusApproved  = "approved"
	NeedStatusRejected  = "rejected"
	NeedStatusPlanned   = "planned"
	NeedStatusDone      = "done"
	NeedStatusCancelled = "cancelled"
)

// TrainingNeed 培训需求表，对应 training_needs
// 同一 (user_id, training_id) 至多一条 is_open=true 的记录（部分唯一索引）。
// 记录只追加不删除，关闭即 is_open=false。
type TrainingNeed struct {
	NeedID       string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"need_id"`
	UserID       string     `gorm:"type:uuid;not null"                             json:"user_id"`
	TrainingID   string     `gorm:"type:uuid;not null"                             json:"training_id"`
	Source       string     `gorm:"type:varchar(20);not null;default:'role_auto'"  json:"source"`
	Status       string     `gorm:"type:varchar(12);not null;default:'pending'"    json:"status"`
	Priority     int        `gorm:"not null;default:3"                             json:"priority"`
	JobRoleID    *string    `gorm:"type:uuid"                                      json:"job_role_id,omitempty"`
	AssignmentID *string    `gorm:"type:uuid"                                      json:"assignment_id,omitempty"`
	Note         string     `gorm:"type:text;not null;default:''"                  json:"note"`
	DueDate      *time.Time `gorm:"type:date"                                      json:"due_date,omitempty"`
	IsOpen       bool       `gorm:"not null"                                       json:"is_open"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
	BaseModel

	// 关联
	Training *Training `gorm:"foreignKey:TrainingID;references:TrainingID" json:"training,omitempty"`
	JobRole  *JobRole  `gorm:"foreignKey:JobRoleID;references:RoleID"      json:"job_role,omitempty"`
}

// TableName 指定表名
func (TrainingNeed) TableName() string { return "training_needs" }
