package model

import "time"

// JobRoleAssignment 用户岗位分配表，对应 job_role_assignments
// 岗位结束时置 is_active=false，不做物理删除
type JobRoleAssignment struct {
	AssignmentID  string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"assignment_id"`
	UserID        string     `gorm:"type:uuid;not null"                             json:"user_id"`
	JobRoleID     string     `gorm:"type:uuid;not null"                             json:"job_role_id"`
	EffectiveFrom time.Time  `gorm:"type:date;not null"                             json:"effective_from"`
	EffectiveTo   *time.Time `gorm:"type:date"                                      json:"effective_to,omitempty"`
	IsActive      bool       `gorm:"not null"                                       json:"is_active"`
	BaseModel

	// 关联
	JobRole *JobRole `gorm:"foreignKey:JobRoleID;references:RoleID" json:"job_role,omitempty"`
}

// TableName 指定表名
func (JobRoleAssignment) TableName() string { return "job_role_assignments" }

// CoversDate 判断分配在指定日期是否处于生效期内（按日比较）
func (a *JobRoleAssignment) CoversDate(t time.Time) bool {
	day := truncateDay(t)
	if truncateDay(a.EffectiveFrom).After(day) {
		return false
	}
	if a.EffectiveTo != nil && truncateDay(*a.EffectiveTo).Before(day) {
		return false
	}
	return true
}

// ValidDateRange 校验 effective_to >= effective_from
func (a *JobRoleAssignment) ValidDateRange() bool {
	return a.EffectiveTo == nil || !truncateDay(*a.EffectiveTo).Before(truncateDay(a.EffectiveFrom))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
