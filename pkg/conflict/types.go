// Package conflict 提供排班冲突检测与自动修复引擎
//
// 引擎只消费和产出内存数据：输入是一批分配和排班上下文，输出是检测结果
// 和修复结果。持久化、通知、审批流程都由外部协作方处理。
package conflict

import (
	"time"

	"github.com/google/uuid"
)

// Type 冲突类型
type Type string

const (
	TypeTimeOverlap      Type = "TIME_OVERLAP"       // 时间重叠
	TypeSkillMismatch    Type = "SKILL_MISMATCH"     // 技能不匹配
	TypeWorkHourExceeded Type = "WORK_HOUR_EXCEEDED" // 工时超限
	TypeCapacityExceeded Type = "CAPACITY_EXCEEDED"  // 容量超限
	TypeOther            Type = "OTHER"              // 其他
)

// AllTypes 按固定顺序列出所有冲突类型
func AllTypes() []Type {
	return []Type{
		TypeTimeOverlap,
		TypeSkillMismatch,
		TypeWorkHourExceeded,
		TypeCapacityExceeded,
		TypeOther,
	}
}

// Status 冲突状态
type Status string

const (
	StatusPending   Status = "PENDING"   // 待处理
	StatusResolved  Status = "RESOLVED"  // 已修复
	StatusEscalated Status = "ESCALATED" // 已升级（需人工介入）
)

// 严重度为 1-5 的整数，5 为最严重；达到 SevereSeverityThreshold 记为严重冲突
const (
	MaxSeverity             = 5
	MinSeverity             = 1
	SevereSeverityThreshold = 3
)

// Conflict 检测到的冲突
type Conflict struct {
	ID          string      `json:"id"`
	Type        Type        `json:"type"`
	Description string      `json:"description"`
	Severity    int         `json:"severity"` // 1-5
	Status      Status      `json:"status"`
	EmployeeID  uuid.UUID   `json:"employee_id,omitempty"`
	// 涉及的分配（1 或 2 个）
	AssignmentIDs []uuid.UUID `json:"assignment_ids,omitempty"`

	// 类型特有字段
	OverlapMinutes  int       `json:"overlap_minutes,omitempty"`   // 时间冲突：重叠分钟数
	Date            string    `json:"date,omitempty"`              // 工时冲突：超限日期
	ActualWorkHours float64   `json:"actual_work_hours,omitempty"` // 工时冲突：实际工时
	MaxAllowedHours float64   `json:"max_allowed_hours,omitempty"` // 工时冲突：允许上限
	DetectedAt      time.Time `json:"detected_at"`
}

// IsSevere 检查冲突是否为严重冲突
func (c *Conflict) IsSevere() bool {
	return c.Severity >= SevereSeverityThreshold
}

// newConflict 创建待处理状态的冲突
func newConflict(typ Type, severity int, description string) Conflict {
	if severity > MaxSeverity {
		severity = MaxSeverity
	}
	if severity < MinSeverity {
		severity = MinSeverity
	}
	return Conflict{
		ID:          uuid.NewString(),
		Type:        typ,
		Description: description,
		Severity:    severity,
		Status:      StatusPending,
		DetectedAt:  time.Now(),
	}
}

// ModificationOp 修改操作类型
type ModificationOp string

const (
	OpUpdate ModificationOp = "UPDATE"
	OpDelete ModificationOp = "DELETE"
)

// Modification 对某个分配的修改建议
// 由外部持久化服务按分配 ID 应用到规范存储上，引擎自身不写存储
type Modification struct {
	ID           string         `json:"id"`
	AssignmentID uuid.UUID      `json:"assignment_id"`
	Op           ModificationOp `json:"op"`
	Reason       string         `json:"reason"`
	Timestamp    time.Time      `json:"timestamp"`
}

// newModification 创建修改建议
func newModification(assignmentID uuid.UUID, op ModificationOp, reason string) Modification {
	return Modification{
		ID:           uuid.NewString(),
		AssignmentID: assignmentID,
		Op:           op,
		Reason:       reason,
		Timestamp:    time.Now(),
	}
}

// AlternativeSolution 备选解决方案
// 无论自动修复结果如何，都会附带至少两个备选方案供人工选择
type AlternativeSolution struct {
	ID           string  `json:"id"`
	Description  string  `json:"description"`
	QualityScore float64 `json:"quality_score"`
}
