package conflict

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xiuban/xiuban/pkg/logger"
	"github.com/xiuban/xiuban/pkg/model"
)

// 修复失败时的统一说明
const descManualHandling = "需要人工处理"

// Resolver 冲突修复器
//
// 按冲突类型依次尝试策略链，全部失败时返回标记为不成功的结果，
// 从不向调用方抛出业务错误。
type Resolver struct {
	stats *Stats
	log   *logger.ResolverLogger
}

// NewResolver 创建冲突修复器
// stats 为 nil 时创建独立实例
func NewResolver(stats *Stats) *Resolver {
	if stats == nil {
		stats = NewStats()
	}
	return &Resolver{
		stats: stats,
		log:   logger.NewResolverLogger(),
	}
}

// Stats 返回修复器的统计计数器
func (r *Resolver) Stats() *Stats {
	return r.stats
}

// strategyFunc 单个修复策略
// 返回修改建议和是否生效；未生效时转入链中的下一策略
type strategyFunc func(c *Conflict, ctx *model.ScheduleContext) ([]Modification, bool)

// strategyStep 策略链中的一环
type strategyStep struct {
	name  ResolutionStrategy
	apply strategyFunc
}

// chainFor 返回冲突类型对应的策略链（按尝试顺序）
func (r *Resolver) chainFor(typ Type) []strategyStep {
	switch typ {
	case TypeTimeOverlap:
		return []strategyStep{
			{StrategyTimeAdjustment, r.resolveByTimeShift},
			{StrategyPriorityBased, r.resolveByPriorityRetention},
			{StrategyRecordDeletion, r.resolveByDeletion},
		}
	case TypeSkillMismatch:
		return []strategyStep{
			{StrategyEmployeeReplacement, r.resolveByEmployeeReplacement},
			{StrategyManualConfirmation, r.resolveByRequirementRelaxation},
		}
	case TypeWorkHourExceeded:
		return []strategyStep{
			{StrategySegmentation, r.resolveBySegmentation},
			{StrategyRecordDeletion, r.resolveByPartialDeletion},
		}
	case TypeCapacityExceeded:
		return []strategyStep{
			{StrategyPriorityBased, r.resolveByPriorityEviction},
			{StrategyManualConfirmation, r.resolveByCapacityRaise},
		}
	default:
		return nil
	}
}

// ResolveConflict 修复单个冲突
func (r *Resolver) ResolveConflict(c *Conflict, ctx *model.ScheduleContext) *ResolutionResult {
	result := newResolutionResult()
	if c == nil {
		result.Success = false
		result.Description = descManualHandling
		result.Strategy = StrategyManualConfirmation
		attachAlternatives(result)
		r.stats.recordResolution(result)
		return result
	}

	result.ConflictID = c.ID
	result.ConflictType = c.Type

	resolved := false
	for _, step := range r.chainFor(c.Type) {
		mods, ok := step.apply(c, ctx)
		if !ok {
			r.log.StrategyFailed(c.ID, string(step.name))
			continue
		}
		result.Strategy = step.name
		result.Modifications = mods
		result.QualityScore = qualityScore(len(mods), []ResolutionStrategy{step.name})
		result.Success = result.QualityScore >= MinResolutionQualityScore
		result.Description = fmt.Sprintf("采用 %s 策略，产生 %d 条修改建议", step.name, len(mods))
		resolved = true
		break
	}

	if !resolved {
		result.Strategy = StrategyManualConfirmation
		result.QualityScore = 0
		result.Success = false
		result.Description = descManualHandling
	}

	attachAlternatives(result)
	r.stats.recordResolution(result)
	r.log.ResolutionComplete(result.ID, result.Success, result.QualityScore, len(result.Modifications))
	return result
}

// Resolve 修复一次检测结果中的全部冲突
// 逐个冲突走各自的策略链，所有生效的修改建议汇入同一个结果
func (r *Resolver) Resolve(detection *DetectionResult, ctx *model.ScheduleContext) *ResolutionResult {
	result := newResolutionResult()

	if detection == nil || !detection.HasConflicts {
		result.Success = true
		result.QualityScore = 100
		result.Description = "无冲突需要修复"
		attachAlternatives(result)
		r.stats.recordResolution(result)
		return result
	}

	var applied []ResolutionStrategy
	var unresolved int
	for _, c := range detection.AllConflicts() {
		conflict := c
		resolved := false
		for _, step := range r.chainFor(conflict.Type) {
			mods, ok := step.apply(&conflict, ctx)
			if !ok {
				r.log.StrategyFailed(conflict.ID, string(step.name))
				continue
			}
			result.Modifications = append(result.Modifications, mods...)
			applied = append(applied, step.name)
			resolved = true
			break
		}
		if !resolved {
			unresolved++
		}
	}

	// 有任何冲突走完策略链仍未修复时，整体按人工处理计分
	if unresolved > 0 {
		result.QualityScore = 0
	} else {
		result.QualityScore = qualityScore(len(result.Modifications), applied)
	}
	result.Success = result.QualityScore >= MinResolutionQualityScore
	if unresolved > 0 {
		result.Description = fmt.Sprintf(
			"处理 %d 个冲突，策略生效 %d 个，%d 个%s",
			detection.TotalConflicts, len(applied), unresolved, descManualHandling)
	} else {
		result.Description = fmt.Sprintf(
			"处理 %d 个冲突，产生 %d 条修改建议",
			detection.TotalConflicts, len(result.Modifications))
	}

	attachAlternatives(result)
	r.stats.recordResolution(result)
	r.log.ResolutionComplete(result.ID, result.Success, result.QualityScore, len(result.Modifications))
	return result
}

// ResolveWithStrategy 用指定策略修复冲突，供已预览过策略的调用方使用
func (r *Resolver) ResolveWithStrategy(c *Conflict, ctx *model.ScheduleContext, strategy ResolutionStrategy) *ResolutionResult {
	result := newResolutionResult()
	if c != nil {
		result.ConflictID = c.ID
		result.ConflictType = c.Type
	}
	result.Strategy = strategy

	var step *strategyStep
	if c != nil {
		for _, s := range r.chainFor(c.Type) {
			if s.name == strategy {
				step = &s
				break
			}
		}
	}

	if step == nil {
		result.Success = false
		result.QualityScore = 0
		result.Description = descManualHandling
	} else if mods, ok := step.apply(c, ctx); ok {
		result.Modifications = mods
		result.QualityScore = qualityScore(len(mods), []ResolutionStrategy{strategy})
		result.Success = result.QualityScore >= MinResolutionQualityScore
		result.Description = fmt.Sprintf("采用 %s 策略，产生 %d 条修改建议", strategy, len(mods))
	} else {
		result.Success = false
		result.QualityScore = 0
		result.Description = descManualHandling
	}

	attachAlternatives(result)
	r.stats.recordResolution(result)
	return result
}

// ResolveBatch 独立修复一组检测结果并聚合成功率
// 空输入返回成功率 0，不会除零
func (r *Resolver) ResolveBatch(detections []*DetectionResult, ctx *model.ScheduleContext) *BatchResolutionResult {
	batch := &BatchResolutionResult{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		Total:     len(detections),
	}

	for _, d := range detections {
		item := r.Resolve(d, ctx)
		batch.Items = append(batch.Items, item)
		if item.Success {
			batch.Succeeded++
		}
	}

	if batch.Total > 0 {
		batch.SuccessRate = float64(batch.Succeeded) / float64(batch.Total) * 100
	}

	return batch
}

// ValidateResolution 检查修复结果是否良构
// 只返回布尔值，从不抛错
func ValidateResolution(result *ResolutionResult) bool {
	if result == nil {
		return false
	}
	if result.ID == "" || result.CreatedAt.IsZero() {
		return false
	}
	// 有质量评分时，评分必须达到最低阈值
	if result.QualityScore > 0 && result.QualityScore < MinResolutionQualityScore {
		return false
	}
	return true
}

// attachAlternatives 附加固定的备选方案
// 无论自动修复成功与否，调用方总有可以呈给人工操作员的后备选项
func attachAlternatives(result *ResolutionResult) {
	result.Alternatives = append(result.Alternatives,
		AlternativeSolution{
			ID:           uuid.NewString(),
			Description:  "人工确认后手工调整排班",
			QualityScore: 60,
		},
		AlternativeSolution{
			ID:           uuid.NewString(),
			Description:  "对相关员工自动重新排班",
			QualityScore: 75,
		},
	)
}

// ========================================
// 修复策略
// ========================================

// resolveByTimeShift 时间平移
// 当前仅记录一条 UPDATE 修改建议，具体的新时间留待上游计算
func (r *Resolver) resolveByTimeShift(c *Conflict, _ *model.ScheduleContext) ([]Modification, bool) {
	if len(c.AssignmentIDs) == 0 {
		return nil, false
	}
	mod := newModification(c.AssignmentIDs[0], OpUpdate, "平移班次时间以消除重叠")
	return []Modification{mod}, true
}

// resolveByPriorityRetention 按优先级保留其一（待实现）
func (r *Resolver) resolveByPriorityRetention(_ *Conflict, _ *model.ScheduleContext) ([]Modification, bool) {
	return nil, false
}

// resolveByDeletion 删除低优先级分配
// 检测时分配对按开始时间排序，后开始的视为低优先级
func (r *Resolver) resolveByDeletion(c *Conflict, _ *model.ScheduleContext) ([]Modification, bool) {
	if len(c.AssignmentIDs) == 0 {
		return nil, false
	}
	target := c.AssignmentIDs[len(c.AssignmentIDs)-1]
	mod := newModification(target, OpDelete, "删除低优先级的重叠分配")
	return []Modification{mod}, true
}

// resolveByEmployeeReplacement 更换为技能匹配的员工（待实现）
func (r *Resolver) resolveByEmployeeReplacement(_ *Conflict, _ *model.ScheduleContext) ([]Modification, bool) {
	return nil, false
}

// resolveByRequirementRelaxation 放宽班次技能要求（待实现）
func (r *Resolver) resolveByRequirementRelaxation(_ *Conflict, _ *model.ScheduleContext) ([]Modification, bool) {
	return nil, false
}

// resolveBySegmentation 拆分超长班次（待实现）
func (r *Resolver) resolveBySegmentation(_ *Conflict, _ *model.ScheduleContext) ([]Modification, bool) {
	return nil, false
}

// resolveByPartialDeletion 删除部分分配（待实现）
func (r *Resolver) resolveByPartialDeletion(_ *Conflict, _ *model.ScheduleContext) ([]Modification, bool) {
	return nil, false
}

// resolveByPriorityEviction 按优先级移出多余人员（待实现）
func (r *Resolver) resolveByPriorityEviction(_ *Conflict, _ *model.ScheduleContext) ([]Modification, bool) {
	return nil, false
}

// resolveByCapacityRaise 提高班次容量（待实现）
func (r *Resolver) resolveByCapacityRaise(_ *Conflict, _ *model.ScheduleContext) ([]Modification, bool) {
	return nil, false
}
