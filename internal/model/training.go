package model

// Training 培训课程表，对应 trainings
type Training struct {
	TrainingID    string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"training_id"`
	Title         string  `gorm:"type:varchar(200);not null"                     json:"title"`
	Code          *string `gorm:"type:varchar(50)"                               json:"code,omitempty"`
	Description   string  `gorm:"type:text;not null;default:''"                  json:"description"`
	DurationHours *int    `json:"duration_hours,omitempty"`
	IsActive      bool    `gorm:"not null"                                       json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (Training) TableName() string { return "trainings" }
