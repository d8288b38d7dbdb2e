package model

import "time"

// SystemState 系统状态表，对应 system_state（单行强类型）
type SystemState struct {
	Singleton         bool       `gorm:"primaryKey;default:true" json:"-"`
	NeedsBackfilledAt *time.Time `json:"needs_backfilled_at,omitempty"`
	BaseModel
}

// TableName 指定表名
func (SystemState) TableName() string { return "system_state" }
