package model

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestJobRoleAssignment_CoversDate(t *testing.T) {
	to := date(2026, 6, 30)
	a := &JobRoleAssignment{EffectiveFrom: date(2026, 1, 1), EffectiveTo: &to}

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"生效前", date(2025, 12, 31), false},
		{"生效首日", date(2026, 1, 1), true},
		{"生效期内（含时刻）", time.Date(2026, 3, 15, 18, 30, 0, 0, time.UTC), true},
		{"截止日当天", date(2026, 6, 30), true},
		{"截止后", date(2026, 7, 1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.CoversDate(tt.at); got != tt.want {
				t.Errorf("CoversDate(%s)=%v, want %v", tt.at, got, tt.want)
			}
		})
	}

	open := &JobRoleAssignment{EffectiveFrom: date(2020, 1, 1)}
	if !open.CoversDate(date(2030, 1, 1)) {
		t.Error("无截止日期的分配应持续生效")
	}
}

func TestJobRoleAssignment_ValidDateRange(t *testing.T) {
	before := date(2025, 12, 31)
	same := date(2026, 1, 1)
	a := &JobRoleAssignment{EffectiveFrom: date(2026, 1, 1)}
	if !a.ValidDateRange() {
		t.Error("无截止日期应合法")
	}
	a.EffectiveTo = &same
	if !a.ValidDateRange() {
		t.Error("截止日等于起始日应合法")
	}
	a.EffectiveTo = &before
	if a.ValidDateRange() {
		t.Error("截止日早于起始日应非法")
	}
}

func TestEnrollment_MarksCompletion(t *testing.T) {
	yes, no := true, false
	now := time.Now()

	tests := []struct {
		name string
		e    Enrollment
		want bool
	}{
		{"仅报名", Enrollment{Status: EnrollmentStatusEnrolled}, false},
		{"状态完成", Enrollment{Status: EnrollmentStatusCompleted}, true},
		{"考核通过", Enrollment{Status: EnrollmentStatusEnrolled, IsPassed: &yes}, true},
		{"考核未通过", Enrollment{Status: EnrollmentStatusEnrolled, IsPassed: &no}, false},
		{"有完成时间", Enrollment{Status: EnrollmentStatusCancelled, CompletedAt: &now}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.e.MarksCompletion(); got != tt.want {
				t.Errorf("MarksCompletion()=%v, want %v", got, tt.want)
			}
		})
	}
}

func TestTrainingRequirement_Flags(t *testing.T) {
	zero, twelve := 0, 12
	r := &TrainingRequirement{RequirementType: RequirementTypeRequired}
	if !r.IsMandatory() || r.Expires() {
		t.Error("必修且无有效期")
	}
	r.RequirementType = RequirementTypeOptional
	r.ValidityMonths = &zero
	if r.IsMandatory() || r.Expires() {
		t.Error("选修且 0 个月视为长期有效")
	}
	r.ValidityMonths = &twelve
	if !r.Expires() {
		t.Error("12 个月应视为有有效期")
	}
}
