package conflict

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	xerrors "github.com/xiuban/xiuban/pkg/errors"
	"github.com/xiuban/xiuban/pkg/logger"
	"github.com/xiuban/xiuban/pkg/model"
)

// DetectorConfig 检测器配置
type DetectorConfig struct {
	MaxHoursPerDay  float64 `json:"max_hours_per_day"`  // 每日最大工时
	MaxHoursPerWeek float64 `json:"max_hours_per_week"` // 每周最大工时
	ParallelWorkers int     `json:"parallel_workers"`   // 批量检测并行度
}

// DefaultDetectorConfig 返回默认配置
func DefaultDetectorConfig() *DetectorConfig {
	return &DetectorConfig{
		MaxHoursPerDay:  12,
		MaxHoursPerWeek: 60,
		ParallelWorkers: 4,
	}
}

// Detector 冲突检测器
//
// 检测是输入的纯函数：从不修改输入，业务问题从不以 error 返回。
// 检测过程的内部失败会降级为一条 severity 5、状态 ESCALATED 的
// OTHER 冲突，并仍然返回（可能不完整的）结果。
type Detector struct {
	config       *DetectorConfig
	skillRule    SkillRule
	capacityRule CapacityRule
	stats        *Stats
	log          *logger.DetectorLogger
}

// NewDetector 创建冲突检测器
// config 为 nil 时使用默认配置，stats 为 nil 时创建独立实例
func NewDetector(config *DetectorConfig, stats *Stats) *Detector {
	if config == nil {
		config = DefaultDetectorConfig()
	}
	if stats == nil {
		stats = NewStats()
	}
	return &Detector{
		config:       config,
		skillRule:    NoopSkillRule{},
		capacityRule: NoopCapacityRule{},
		stats:        stats,
		log:          logger.NewDetectorLogger(),
	}
}

// UseSkillRule 替换技能检查规则
func (d *Detector) UseSkillRule(rule SkillRule) {
	if rule != nil {
		d.skillRule = rule
	}
}

// UseCapacityRule 替换容量检查规则
func (d *Detector) UseCapacityRule(rule CapacityRule) {
	if rule != nil {
		d.capacityRule = rule
	}
}

// Stats 返回检测器的统计计数器
func (d *Detector) Stats() *Stats {
	return d.stats
}

// ValidateInput API 边界上的前置条件检查
// 业务冲突不在此处报告，只拦截真正无法处理的输入
func ValidateInput(assignments []*model.Assignment, ctx *model.ScheduleContext) error {
	if ctx == nil {
		return xerrors.ErrNilContext
	}
	for _, a := range assignments {
		if a == nil {
			return xerrors.InvalidInput("assignments", "包含空分配")
		}
		if !a.Valid() {
			return xerrors.InvalidAssignment(a.ID.String(), "开始时间必须早于结束时间")
		}
	}
	return nil
}

// Detect 检测一批分配中的所有冲突
func (d *Detector) Detect(assignments []*model.Assignment, ctx *model.ScheduleContext) (result *DetectionResult) {
	result = newDetectionResult()
	d.log.StartDetection(result.ID, len(assignments))

	defer func() {
		if r := recover(); r != nil {
			result.add(d.internalConflict(r))
			d.log.InternalFailure(result.ID, fmt.Sprint(r))
		}
		result.finalize()
		d.stats.recordDetection(result)
		d.log.DetectionComplete(result.ID, result.Duration, result.TotalConflicts)
	}()

	byEmployee := groupByEmployee(assignments)
	for _, empID := range sortedEmployeeIDs(byEmployee) {
		group := byEmployee[empID]
		d.scanTimeOverlaps(result, empID, group)
		d.scanWorkHours(result, empID, group)
	}
	d.scanSkills(result, assignments, ctx)
	d.scanCapacity(result, assignments, ctx)

	return result
}

// DetectForEmployee 检测单个员工的分配冲突
// 与 Detect 语义一致，只是范围收窄到一个员工
func (d *Detector) DetectForEmployee(employeeID uuid.UUID, assignments []*model.Assignment, ctx *model.ScheduleContext) (result *DetectionResult) {
	result = newDetectionResult()

	defer func() {
		if r := recover(); r != nil {
			result.add(d.internalConflict(r))
			d.log.InternalFailure(result.ID, fmt.Sprint(r))
		}
		result.finalize()
		d.stats.recordDetection(result)
	}()

	var group []*model.Assignment
	for _, a := range assignments {
		if a.EmployeeID == employeeID {
			group = append(group, a)
		}
	}

	d.scanTimeOverlaps(result, employeeID, group)
	d.scanWorkHours(result, employeeID, group)
	d.scanSkills(result, group, ctx)
	d.scanCapacity(result, group, ctx)

	return result
}

// DetectForAssignment 检测新分配与已有分配的冲突（插入前校验）
// 发现第一个时间重叠即停止
func (d *Detector) DetectForAssignment(candidate *model.Assignment, existing []*model.Assignment, ctx *model.ScheduleContext) (result *DetectionResult) {
	result = newDetectionResult()

	defer func() {
		if r := recover(); r != nil {
			result.add(d.internalConflict(r))
			d.log.InternalFailure(result.ID, fmt.Sprint(r))
		}
		result.finalize()
		d.stats.recordDetection(result)
	}()

	if candidate == nil {
		return result
	}

	for _, a := range existing {
		if a.EmployeeID != candidate.EmployeeID || a.ID == candidate.ID {
			continue
		}
		if candidate.Overlaps(a) {
			result.add(d.overlapConflict(candidate.EmployeeID, candidate, a))
			break
		}
	}

	// 加上新分配后的当日工时
	dailyHours := candidate.WorkingHours()
	for _, a := range existing {
		if a.EmployeeID == candidate.EmployeeID && a.ID != candidate.ID && a.Date() == candidate.Date() {
			dailyHours += a.WorkingHours()
		}
	}
	if dailyHours > d.config.MaxHoursPerDay {
		c := newConflict(TypeWorkHourExceeded, 4, fmt.Sprintf(
			"员工 %s 在 %s 工时将达 %.1f 小时，超过每日上限 %.1f 小时",
			candidate.EmployeeID, candidate.Date(), dailyHours, d.config.MaxHoursPerDay))
		c.EmployeeID = candidate.EmployeeID
		c.AssignmentIDs = []uuid.UUID{candidate.ID}
		c.Date = candidate.Date()
		c.ActualWorkHours = dailyHours
		c.MaxAllowedHours = d.config.MaxHoursPerDay
		result.add(c)
	}

	return result
}

// scanTimeOverlaps 同一员工的分配两两比较，检测时间重叠
// 组内按开始时间排序后只比较 i<j 的无序对，对称对不会重复产出
func (d *Detector) scanTimeOverlaps(result *DetectionResult, employeeID uuid.UUID, group []*model.Assignment) {
	if len(group) < 2 {
		return
	}

	sorted := make([]*model.Assignment, len(group))
	copy(sorted, group)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})

	for i := 0; i < len(sorted)-1; i++ {
		for j := i + 1; j < len(sorted); j++ {
			if sorted[i].Overlaps(sorted[j]) {
				result.add(d.overlapConflict(employeeID, sorted[i], sorted[j]))
			}
		}
	}
}

// overlapConflict 构造时间重叠冲突
func (d *Detector) overlapConflict(employeeID uuid.UUID, a, b *model.Assignment) Conflict {
	minutes := a.OverlapMinutes(b)
	c := newConflict(TypeTimeOverlap, overlapSeverity(minutes), fmt.Sprintf(
		"员工 %s 的分配 %s 与 %s 时间重叠 %d 分钟",
		employeeID, a.ID, b.ID, minutes))
	c.EmployeeID = employeeID
	c.AssignmentIDs = []uuid.UUID{a.ID, b.ID}
	c.OverlapMinutes = minutes
	return c
}

// overlapSeverity 按重叠分钟数分档映射严重度
// 分档而不用连续函数，保证严重度可解释
func overlapSeverity(minutes int) int {
	switch {
	case minutes >= 480:
		return 5
	case minutes >= 240:
		return 4
	case minutes >= 120:
		return 3
	case minutes >= 60:
		return 2
	default:
		return 1
	}
}

// scanWorkHours 检测单个员工的工时超限
//
// 每日工时按日期聚合后只报告（升序的）第一个超限日期，
// 避免一天一条冲突刷屏；整批工时超过周上限时另报一条
func (d *Detector) scanWorkHours(result *DetectionResult, employeeID uuid.UUID, group []*model.Assignment) {
	if len(group) == 0 {
		return
	}

	dailyHours := make(map[string]float64)
	firstOfDate := make(map[string]uuid.UUID)
	var weeklyTotal float64

	for _, a := range group {
		date := a.Date()
		hours := a.WorkingHours()
		dailyHours[date] += hours
		weeklyTotal += hours
		if _, ok := firstOfDate[date]; !ok {
			firstOfDate[date] = a.ID
		}
	}

	dates := make([]string, 0, len(dailyHours))
	for date := range dailyHours {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	for _, date := range dates {
		hours := dailyHours[date]
		if hours > d.config.MaxHoursPerDay {
			c := newConflict(TypeWorkHourExceeded, 4, fmt.Sprintf(
				"员工 %s 在 %s 工作 %.1f 小时，超过每日上限 %.1f 小时",
				employeeID, date, hours, d.config.MaxHoursPerDay))
			c.EmployeeID = employeeID
			c.AssignmentIDs = []uuid.UUID{firstOfDate[date]}
			c.Date = date
			c.ActualWorkHours = hours
			c.MaxAllowedHours = d.config.MaxHoursPerDay
			result.add(c)
			break
		}
	}

	if weeklyTotal > d.config.MaxHoursPerWeek {
		c := newConflict(TypeWorkHourExceeded, 3, fmt.Sprintf(
			"员工 %s 本批次总工时 %.1f 小时，超过每周上限 %.1f 小时",
			employeeID, weeklyTotal, d.config.MaxHoursPerWeek))
		c.EmployeeID = employeeID
		c.ActualWorkHours = weeklyTotal
		c.MaxAllowedHours = d.config.MaxHoursPerWeek
		result.add(c)
	}
}

// scanSkills 技能检查（委托给注入的规则，默认不产生冲突）
func (d *Detector) scanSkills(result *DetectionResult, assignments []*model.Assignment, ctx *model.ScheduleContext) {
	for _, c := range d.skillRule.CheckSkills(assignments, ctx) {
		result.add(c)
	}
}

// scanCapacity 容量检查（委托给注入的规则，默认不产生冲突）
func (d *Detector) scanCapacity(result *DetectionResult, assignments []*model.Assignment, ctx *model.ScheduleContext) {
	for _, c := range d.capacityRule.CheckCapacity(assignments, ctx) {
		result.add(c)
	}
}

// internalConflict 将检测内部失败降级为一条升级状态的 OTHER 冲突
func (d *Detector) internalConflict(cause interface{}) Conflict {
	c := newConflict(TypeOther, MaxSeverity, fmt.Sprintf("检测过程内部失败: %v", cause))
	c.Status = StatusEscalated
	return c
}

// groupByEmployee 按员工分组
func groupByEmployee(assignments []*model.Assignment) map[uuid.UUID][]*model.Assignment {
	result := make(map[uuid.UUID][]*model.Assignment)
	for _, a := range assignments {
		if a == nil {
			continue
		}
		result[a.EmployeeID] = append(result[a.EmployeeID], a)
	}
	return result
}

// groupByShift 按班次分组
func groupByShift(assignments []*model.Assignment) map[uuid.UUID][]*model.Assignment {
	result := make(map[uuid.UUID][]*model.Assignment)
	for _, a := range assignments {
		if a == nil {
			continue
		}
		result[a.ShiftID] = append(result[a.ShiftID], a)
	}
	return result
}

// sortedEmployeeIDs 返回排序后的员工 ID，保证遍历顺序稳定
func sortedEmployeeIDs(groups map[uuid.UUID][]*model.Assignment) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}
