package service

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

const (
	dateLayout     = "2006-01-02"
	datetimeLayout = "2006-01-02T15:04:05Z07:00"
)

// ErrInvalidDate 日期格式错误
var ErrInvalidDate = errors.New("日期格式错误，应为 YYYY-MM-DD")

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(datetimeLayout)
	return &s
}

// callerRef 审计字段：调用方为空时不记录
func callerRef(callerID string) *string {
	if callerID == "" {
		return nil
	}
	return &callerID
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
