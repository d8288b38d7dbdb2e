package model

// 培训要求类型
const (
	RequirementTypeRequired = "required"
	RequirementTypeOptional = "optional"
)

// TrainingRequirement 岗位培训要求表，对应 training_requirements
// (job_role_id, training_id) 唯一
type TrainingRequirement struct {
	RequirementID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"requirement_id"`
	JobRoleID       string `gorm:"type:uuid;not null"                             json:"job_role_id"`
	TrainingID      string `gorm:"type:uuid;not null"                             json:"training_id"`
	RequirementType string `gorm:"type:varchar(10);not null;default:'required'"   json:"requirement_type"` // required | optional
	ValidityMonths  *int   `json:"validity_months,omitempty"`                                               // 为空或 0 表示长期有效
	Notes           string `gorm:"type:text;not null;default:''"                  json:"notes"`
	IsActive        bool   `gorm:"not null"                                       json:"is_active"`
	BaseModel

	// 关联
	JobRole  *JobRole  `gorm:"foreignKey:JobRoleID;references:RoleID"      json:"job_role,omitempty"`
	Training *Training `gorm:"foreignKey:TrainingID;references:TrainingID" json:"training,omitempty"`
}

// TableName 指定表名
func (TrainingRequirement) TableName() string { return "training_requirements" }

// IsMandatory 是否为必修
func (r *TrainingRequirement) IsMandatory() bool {
	return r.RequirementType != RequirementTypeOptional
}

// Expires 是否设置了有效期
func (r *TrainingRequirement) Expires() bool {
	return r.ValidityMonths != nil && *r.ValidityMonths > 0
}
