// Package model 定义冲突检测引擎的核心数据模型
package model

import (
	"github.com/google/uuid"
)

// ShiftInfo 班次元数据（容量限制、技能要求）
type ShiftInfo struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Capacity       int       `json:"capacity"` // 0 表示不限
	RequiredSkills []string  `json:"required_skills,omitempty"`
}

// EmployeeInfo 员工元数据（技能、优先级）
type EmployeeInfo struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Skills   []string  `json:"skills,omitempty"`
	Priority int       `json:"priority"` // 1-10，数值越大优先级越高
}

// HasSkill 检查员工是否具备某技能
func (e *EmployeeInfo) HasSkill(skill string) bool {
	for _, s := range e.Skills {
		if s == skill {
			return true
		}
	}
	return false
}

// ScheduleContext 排班上下文（调用方每次提供的只读快照）
type ScheduleContext struct {
	Shifts    map[uuid.UUID]*ShiftInfo    `json:"shifts,omitempty"`
	Employees map[uuid.UUID]*EmployeeInfo `json:"employees,omitempty"`

	// 额外策略参数
	Config map[string]interface{} `json:"config,omitempty"`
}

// NewScheduleContext 创建空的排班上下文
func NewScheduleContext() *ScheduleContext {
	return &ScheduleContext{
		Shifts:    make(map[uuid.UUID]*ShiftInfo),
		Employees: make(map[uuid.UUID]*EmployeeInfo),
	}
}

// ShiftOf 返回班次元数据，不存在时返回 nil
func (c *ScheduleContext) ShiftOf(id uuid.UUID) *ShiftInfo {
	if c == nil || c.Shifts == nil {
		return nil
	}
	return c.Shifts[id]
}

// EmployeeOf 返回员工元数据，不存在时返回 nil
func (c *ScheduleContext) EmployeeOf(id uuid.UUID) *EmployeeInfo {
	if c == nil || c.Employees == nil {
		return nil
	}
	return c.Employees[id]
}
