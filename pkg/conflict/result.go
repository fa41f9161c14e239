package conflict

import (
	"time"

	"github.com/google/uuid"
)

// DetectionResult 一次冲突检测的完整结果
// 每次调用新建，返回前填充完毕，此后归调用方所有
type DetectionResult struct {
	ID         string        `json:"id"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Duration   time.Duration `json:"duration"`

	// 按类型分桶的冲突列表
	TimeConflicts     []Conflict `json:"time_conflicts,omitempty"`
	SkillConflicts    []Conflict `json:"skill_conflicts,omitempty"`
	WorkHourConflicts []Conflict `json:"work_hour_conflicts,omitempty"`
	CapacityConflicts []Conflict `json:"capacity_conflicts,omitempty"`
	OtherConflicts    []Conflict `json:"other_conflicts,omitempty"`

	HasConflicts    bool         `json:"has_conflicts"`
	TotalConflicts  int          `json:"total_conflicts"`
	SevereConflicts int          `json:"severe_conflicts"`
	MinorConflicts  int          `json:"minor_conflicts"`
	SeverityScore   float64      `json:"severity_score"` // 0-100
	CountsByType    map[Type]int `json:"counts_by_type"`

	Suggestions []string `json:"suggestions"`
}

// newDetectionResult 创建带生成 ID 和开始时间的检测结果
func newDetectionResult() *DetectionResult {
	return &DetectionResult{
		ID:           uuid.NewString(),
		StartedAt:    time.Now(),
		CountsByType: make(map[Type]int),
	}
}

// add 将冲突追加到对应类型的桶中
func (r *DetectionResult) add(c Conflict) {
	switch c.Type {
	case TypeTimeOverlap:
		r.TimeConflicts = append(r.TimeConflicts, c)
	case TypeSkillMismatch:
		r.SkillConflicts = append(r.SkillConflicts, c)
	case TypeWorkHourExceeded:
		r.WorkHourConflicts = append(r.WorkHourConflicts, c)
	case TypeCapacityExceeded:
		r.CapacityConflicts = append(r.CapacityConflicts, c)
	default:
		r.OtherConflicts = append(r.OtherConflicts, c)
	}
}

// AllConflicts 返回所有冲突（各桶拼接，顺序不构成契约）
func (r *DetectionResult) AllConflicts() []Conflict {
	all := make([]Conflict, 0, r.bucketSum())
	all = append(all, r.TimeConflicts...)
	all = append(all, r.SkillConflicts...)
	all = append(all, r.WorkHourConflicts...)
	all = append(all, r.CapacityConflicts...)
	all = append(all, r.OtherConflicts...)
	return all
}

// ConflictsOfType 返回指定类型的冲突桶
func (r *DetectionResult) ConflictsOfType(typ Type) []Conflict {
	switch typ {
	case TypeTimeOverlap:
		return r.TimeConflicts
	case TypeSkillMismatch:
		return r.SkillConflicts
	case TypeWorkHourExceeded:
		return r.WorkHourConflicts
	case TypeCapacityExceeded:
		return r.CapacityConflicts
	default:
		return r.OtherConflicts
	}
}

// bucketSum 各桶长度之和
func (r *DetectionResult) bucketSum() int {
	return len(r.TimeConflicts) + len(r.SkillConflicts) + len(r.WorkHourConflicts) +
		len(r.CapacityConflicts) + len(r.OtherConflicts)
}

// Consistent 自检：总数与各桶长度之和一致
func (r *DetectionResult) Consistent() bool {
	return r.TotalConflicts == r.bucketSum()
}

// finalize 统计各项计数、严重度评分和建议，并记录耗时
func (r *DetectionResult) finalize() {
	r.FinishedAt = time.Now()
	r.Duration = r.FinishedAt.Sub(r.StartedAt)

	r.TotalConflicts = 0
	r.SevereConflicts = 0
	r.MinorConflicts = 0
	r.CountsByType = make(map[Type]int)

	for _, typ := range AllTypes() {
		bucket := r.ConflictsOfType(typ)
		if len(bucket) == 0 {
			continue
		}
		r.CountsByType[typ] = len(bucket)
		r.TotalConflicts += len(bucket)
		for i := range bucket {
			if bucket[i].IsSevere() {
				r.SevereConflicts++
			} else {
				r.MinorConflicts++
			}
		}
	}

	r.HasConflicts = r.TotalConflicts > 0
	r.SeverityScore = severityScore(r.SevereConflicts, r.MinorConflicts, r.TotalConflicts)
	r.Suggestions = buildSuggestions(r)
}

// severityScore 计算聚合严重度评分
// score = min(100, (severe*10 + minor*3) / total)，无冲突时为 0
func severityScore(severe, minor, total int) float64 {
	if total == 0 {
		return 0
	}
	score := float64(severe*10+minor*3) / float64(total)
	if score > 100 {
		return 100
	}
	return score
}

// 各类冲突的固定修复建议
const (
	suggestionTimeOverlap  = "调整重叠班次的时间，或删除其中一个分配"
	suggestionSkill        = "为班次更换具备所需技能的员工，或安排技能培训"
	suggestionWorkHour     = "拆分超长班次，或将部分分配转给其他员工"
	suggestionCapacity     = "提高班次容量，或将多余人员调整到其他班次"
	suggestionOther        = "存在未分类冲突，请人工复核检测日志"
	suggestionNoConflicts  = "未发现冲突"
)

// buildSuggestions 为每个非空冲突桶生成一条固定建议
func buildSuggestions(r *DetectionResult) []string {
	var suggestions []string
	if len(r.TimeConflicts) > 0 {
		suggestions = append(suggestions, suggestionTimeOverlap)
	}
	if len(r.SkillConflicts) > 0 {
		suggestions = append(suggestions, suggestionSkill)
	}
	if len(r.WorkHourConflicts) > 0 {
		suggestions = append(suggestions, suggestionWorkHour)
	}
	if len(r.CapacityConflicts) > 0 {
		suggestions = append(suggestions, suggestionCapacity)
	}
	if len(r.OtherConflicts) > 0 {
		suggestions = append(suggestions, suggestionOther)
	}
	if len(suggestions) == 0 {
		suggestions = append(suggestions, suggestionNoConflicts)
	}
	return suggestions
}

// ResolutionResult 一次冲突修复的完整结果
type ResolutionResult struct {
	ID           string             `json:"id"`
	ConflictID   string             `json:"conflict_id,omitempty"`
	ConflictType Type               `json:"conflict_type,omitempty"`
	Strategy     ResolutionStrategy `json:"strategy,omitempty"`

	Modifications []Modification        `json:"modifications,omitempty"`
	Success       bool                  `json:"success"`
	QualityScore  float64               `json:"quality_score"` // 0-100
	Description   string                `json:"description"`
	Alternatives  []AlternativeSolution `json:"alternatives"`
	CreatedAt     time.Time             `json:"created_at"`
}

// newResolutionResult 创建带生成 ID 和时间戳的修复结果
func newResolutionResult() *ResolutionResult {
	return &ResolutionResult{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
	}
}

// BatchResolutionResult 批量修复结果
type BatchResolutionResult struct {
	ID          string              `json:"id"`
	Items       []*ResolutionResult `json:"items"`
	Total       int                 `json:"total"`
	Succeeded   int                 `json:"succeeded"`
	SuccessRate float64             `json:"success_rate"` // 0-100
	CreatedAt   time.Time           `json:"created_at"`
}
