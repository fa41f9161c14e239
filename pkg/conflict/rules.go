package conflict

import (
	"github.com/xiuban/xiuban/pkg/model"
)

// SkillRule 技能检查规则
//
// 预留的扩展点：实现方应对比员工技能集与班次所需技能，
// 对不匹配的分配返回 SKILL_MISMATCH 冲突。
type SkillRule interface {
	// CheckSkills 检查一批分配的技能匹配情况
	CheckSkills(assignments []*model.Assignment, ctx *model.ScheduleContext) []Conflict
}

// CapacityRule 容量检查规则
//
// 预留的扩展点：实现方应按班次分组分配，将组大小与班次
// 配置的容量上限对比，超限时返回 CAPACITY_EXCEEDED 冲突。
type CapacityRule interface {
	// CheckCapacity 检查一批分配的班次容量情况
	CheckCapacity(assignments []*model.Assignment, ctx *model.ScheduleContext) []Conflict
}

// NoopSkillRule 默认技能规则，不产生任何冲突
type NoopSkillRule struct{}

// CheckSkills 返回空冲突列表
func (NoopSkillRule) CheckSkills(_ []*model.Assignment, _ *model.ScheduleContext) []Conflict {
	return nil
}

// NoopCapacityRule 默认容量规则，不产生任何冲突
type NoopCapacityRule struct{}

// CheckCapacity 返回空冲突列表
func (NoopCapacityRule) CheckCapacity(_ []*model.Assignment, _ *model.ScheduleContext) []Conflict {
	return nil
}
