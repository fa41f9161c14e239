package conflict

// ResolutionStrategy 修复策略
type ResolutionStrategy string

const (
	StrategyTimeAdjustment      ResolutionStrategy = "TIME_ADJUSTMENT"      // 时间平移
	StrategyEmployeeReplacement ResolutionStrategy = "EMPLOYEE_REPLACEMENT" // 更换员工
	StrategyRecordDeletion      ResolutionStrategy = "RECORD_DELETION"      // 删除分配
	StrategySegmentation        ResolutionStrategy = "SEGMENTATION"         // 拆分班次
	StrategyPriorityBased       ResolutionStrategy = "PRIORITY_BASED"       // 按优先级取舍
	StrategyManualConfirmation  ResolutionStrategy = "MANUAL_CONFIRMATION"  // 人工确认
)

// 质量评分的策略常量：从 100 起步，每条修改建议扣 modificationPenalty，
// 再按策略扣除对应惩罚，最终限制在 [0,100]。
// 低于 MinResolutionQualityScore 的自动修复视为失败，转人工复核。
const (
	MinResolutionQualityScore = 70.0
	modificationPenalty       = 5.0
	unknownStrategyPenalty    = 25.0
)

// strategyPenalties 各策略的质量惩罚
var strategyPenalties = map[ResolutionStrategy]float64{
	StrategyTimeAdjustment:      10,
	StrategyEmployeeReplacement: 15,
	StrategyRecordDeletion:      20,
	StrategySegmentation:        12,
	StrategyPriorityBased:       8,
}

// strategyPenalty 返回策略的质量惩罚，未知策略按最重惩罚处理
func strategyPenalty(s ResolutionStrategy) float64 {
	if p, ok := strategyPenalties[s]; ok {
		return p
	}
	return unknownStrategyPenalty
}

// DefaultStrategyFor 返回冲突类型的默认修复策略
// 供调用方在发起修复前预览将采用的策略
func DefaultStrategyFor(typ Type) ResolutionStrategy {
	switch typ {
	case TypeTimeOverlap:
		return StrategyTimeAdjustment
	case TypeSkillMismatch:
		return StrategyEmployeeReplacement
	case TypeWorkHourExceeded:
		return StrategySegmentation
	case TypeCapacityExceeded:
		return StrategyPriorityBased
	default:
		return StrategyManualConfirmation
	}
}

// qualityScore 计算修复质量评分并限制在 [0,100]
func qualityScore(modifications int, strategies []ResolutionStrategy) float64 {
	score := 100.0
	score -= float64(modifications) * modificationPenalty
	for _, s := range strategies {
		score -= strategyPenalty(s)
	}
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
