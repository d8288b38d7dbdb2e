package model

// JobRole 岗位表，对应 job_roles
type JobRole struct {
	RoleID      string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"role_id"`
	Name        string  `gorm:"type:varchar(150);not null"                     json:"name"`
	Code        *string `gorm:"type:varchar(50)"                               json:"code,omitempty"`
	Description string  `gorm:"type:text;not null;default:''"                  json:"description"`
	IsActive    bool    `gorm:"not null"                                       json:"is_active"`
	VersionedModel
}

// TableName 指定表名
func (JobRole) TableName() string { return "job_roles" }
