// Package model 定义冲突检测引擎的核心数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// TimeRange 时间范围
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration 返回时间范围的持续时间
func (tr TimeRange) Duration() time.Duration {
	return tr.End.Sub(tr.Start)
}

// Overlaps 检查两个时间范围是否重叠
func (tr TimeRange) Overlaps(other TimeRange) bool {
	return tr.Start.Before(other.End) && other.Start.Before(tr.End)
}

// Overlap 返回两个时间范围的重叠时长，不重叠时返回 0
func (tr TimeRange) Overlap(other TimeRange) time.Duration {
	if !tr.Overlaps(other) {
		return 0
	}
	start := tr.Start
	if other.Start.After(start) {
		start = other.Start
	}
	end := tr.End
	if other.End.Before(end) {
		end = other.End
	}
	return end.Sub(start)
}

// Assignment 排班分配（引擎的外部输入，只读）
// 引擎从不直接修改分配，只通过 Modification 提出修改建议
type Assignment struct {
	ID         uuid.UUID `json:"id"`
	EmployeeID uuid.UUID `json:"employee_id"`
	ShiftID    uuid.UUID `json:"shift_id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
}

// Valid 检查分配是否满足基本不变量 start < end
func (a *Assignment) Valid() bool {
	return a.StartTime.Before(a.EndTime)
}

// Range 返回分配对应的时间范围
func (a *Assignment) Range() TimeRange {
	return TimeRange{Start: a.StartTime, End: a.EndTime}
}

// WorkingHours 计算工作时长（小时）
func (a *Assignment) WorkingHours() float64 {
	return a.EndTime.Sub(a.StartTime).Hours()
}

// Date 返回分配开始日期（YYYY-MM-DD）
func (a *Assignment) Date() string {
	return a.StartTime.Format("2006-01-02")
}

// Overlaps 检查两个分配的时间是否重叠
func (a *Assignment) Overlaps(other *Assignment) bool {
	return a.StartTime.Before(other.EndTime) && other.StartTime.Before(a.EndTime)
}

// OverlapMinutes 计算两个分配的重叠时长（分钟）
func (a *Assignment) OverlapMinutes(other *Assignment) int {
	return int(a.Range().Overlap(other.Range()).Minutes())
}
