package service

import (
	"fmt"
	"strings"
	"time"
)

// Period 汇总月份
type Period struct {
	Year  int
	Month time.Month
}

// ParsePeriod 解析 "YYYY-MM"
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return Period{}, ErrInvalidPeriod
	}
	return Period{Year: t.Year(), Month: t.Month()}, nil
}

// Label 存储用的月份标签，如 "2025-09"
func (p Period) Label() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Display 展示用的月份，如 "September 2025"
func (p Period) Display() string {
	return fmt.Sprintf("%s %d", p.Month, p.Year)
}

// Range 月份的日期区间 [当月一日, 次月一日)
func (p Period) Range() (from, to time.Time) {
	from = time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}
