package conflict

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/xiuban/xiuban/pkg/model"
)

// day 测试基准日
var day = time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

// at 返回基准日偏移 days 天、hour:minute 的时间
func at(days, hour, minute int) time.Time {
	return day.AddDate(0, 0, days).Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

// createAssignment 创建测试分配
func createAssignment(empID uuid.UUID, start, end time.Time) *model.Assignment {
	return &model.Assignment{
		ID:         uuid.New(),
		EmployeeID: empID,
		ShiftID:    uuid.New(),
		StartTime:  start,
		EndTime:    end,
	}
}

func TestDetector_Detect_TimeOverlap(t *testing.T) {
	empA := uuid.New()
	empB := uuid.New()

	tests := []struct {
		name          string
		assignments   []*model.Assignment
		wantTime      int
		wantSeverity  int
		wantOverlap   int
	}{
		{
			name: "同一员工时间重叠，恰好产出一个冲突",
			assignments: []*model.Assignment{
				createAssignment(empA, at(0, 9, 0), at(0, 17, 0)),
				createAssignment(empA, at(0, 13, 0), at(0, 15, 0)),
			},
			wantTime:     1,
			wantSeverity: 3,
			wantOverlap:  120,
		},
		{
			name: "不同员工相同时间，不产出冲突",
			assignments: []*model.Assignment{
				createAssignment(empA, at(0, 9, 0), at(0, 17, 0)),
				createAssignment(empB, at(0, 9, 0), at(0, 17, 0)),
			},
			wantTime: 0,
		},
		{
			name: "同一员工相邻不重叠，不产出冲突",
			assignments: []*model.Assignment{
				createAssignment(empA, at(0, 8, 0), at(0, 12, 0)),
				createAssignment(empA, at(0, 12, 0), at(0, 16, 0)),
			},
			wantTime: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector(nil, nil)
			result := d.Detect(tt.assignments, model.NewScheduleContext())

			if len(result.TimeConflicts) != tt.wantTime {
				t.Fatalf("TimeConflicts = %d, want %d", len(result.TimeConflicts), tt.wantTime)
			}
			if tt.wantTime == 0 {
				return
			}

			c := result.TimeConflicts[0]
			if c.Severity != tt.wantSeverity {
				t.Errorf("Severity = %d, want %d", c.Severity, tt.wantSeverity)
			}
			if c.OverlapMinutes != tt.wantOverlap {
				t.Errorf("OverlapMinutes = %d, want %d", c.OverlapMinutes, tt.wantOverlap)
			}
			if len(c.AssignmentIDs) != 2 {
				t.Errorf("AssignmentIDs 应引用两个分配, got %d", len(c.AssignmentIDs))
			}
			if c.Status != StatusPending {
				t.Errorf("Status = %s, want %s", c.Status, StatusPending)
			}
		})
	}
}

func TestOverlapSeverity_Buckets(t *testing.T) {
	tests := []struct {
		minutes int
		want    int
	}{
		{0, 1},
		{59, 1},
		{60, 2},
		{119, 2},
		{120, 3},
		{239, 3},
		{240, 4},
		{479, 4},
		{480, 5},
		{600, 5},
	}

	prev := 0
	prevMinutes := -1
	for _, tt := range tests {
		got := overlapSeverity(tt.minutes)
		if got != tt.want {
			t.Errorf("overlapSeverity(%d) = %d, want %d", tt.minutes, got, tt.want)
		}
		// 单调性：更长的重叠不会得到更低的严重度
		if tt.minutes > prevMinutes && got < prev {
			t.Errorf("严重度在 %d 分钟处下降: %d -> %d", tt.minutes, prev, got)
		}
		prev, prevMinutes = got, tt.minutes
	}
}

func TestDetector_Detect_WorkHours(t *testing.T) {
	emp := uuid.New()

	t.Run("单日13小时超过12小时上限", func(t *testing.T) {
		assignments := []*model.Assignment{
			createAssignment(emp, at(0, 8, 0), at(0, 16, 0)),  // 8小时
			createAssignment(emp, at(0, 17, 0), at(0, 22, 0)), // 5小时
		}

		d := NewDetector(nil, nil)
		result := d.Detect(assignments, model.NewScheduleContext())

		if len(result.WorkHourConflicts) != 1 {
			t.Fatalf("WorkHourConflicts = %d, want 1", len(result.WorkHourConflicts))
		}
		c := result.WorkHourConflicts[0]
		if c.Severity != 4 {
			t.Errorf("Severity = %d, want 4", c.Severity)
		}
		if c.ActualWorkHours != 13 {
			t.Errorf("ActualWorkHours = %.1f, want 13", c.ActualWorkHours)
		}
		if c.MaxAllowedHours != 12 {
			t.Errorf("MaxAllowedHours = %.1f, want 12", c.MaxAllowedHours)
		}
		if len(result.TimeConflicts) != 0 {
			t.Errorf("不应产出时间冲突, got %d", len(result.TimeConflicts))
		}
	})

	t.Run("多个超限日期只报告第一个", func(t *testing.T) {
		var assignments []*model.Assignment
		for i := 0; i < 2; i++ {
			assignments = append(assignments,
				createAssignment(emp, at(i, 8, 0), at(i, 16, 0)),
				createAssignment(emp, at(i, 17, 0), at(i, 22, 0)),
			)
		}

		d := NewDetector(nil, nil)
		result := d.Detect(assignments, model.NewScheduleContext())

		if len(result.WorkHourConflicts) != 1 {
			t.Fatalf("WorkHourConflicts = %d, want 1", len(result.WorkHourConflicts))
		}
		if got := result.WorkHourConflicts[0].Date; got != day.Format("2006-01-02") {
			t.Errorf("应报告最早的超限日期, got %s", got)
		}
	})

	t.Run("整批工时超过周上限", func(t *testing.T) {
		var assignments []*model.Assignment
		for i := 0; i < 6; i++ {
			// 每天11小时，共66小时，超过默认60小时
			assignments = append(assignments, createAssignment(emp, at(i, 8, 0), at(i, 19, 0)))
		}

		d := NewDetector(nil, nil)
		result := d.Detect(assignments, model.NewScheduleContext())

		if len(result.WorkHourConflicts) != 1 {
			t.Fatalf("WorkHourConflicts = %d, want 1", len(result.WorkHourConflicts))
		}
		c := result.WorkHourConflicts[0]
		if c.Severity != 3 {
			t.Errorf("周超限严重度 = %d, want 3", c.Severity)
		}
		if c.ActualWorkHours != 66 {
			t.Errorf("ActualWorkHours = %.1f, want 66", c.ActualWorkHours)
		}
	})

	t.Run("自定义工时上限", func(t *testing.T) {
		cfg := &DetectorConfig{MaxHoursPerDay: 8, MaxHoursPerWeek: 40, ParallelWorkers: 2}
		d := NewDetector(cfg, nil)

		result := d.Detect([]*model.Assignment{
			createAssignment(emp, at(0, 8, 0), at(0, 17, 0)), // 9小时 > 8
		}, model.NewScheduleContext())

		if len(result.WorkHourConflicts) != 1 {
			t.Fatalf("WorkHourConflicts = %d, want 1", len(result.WorkHourConflicts))
		}
		if result.WorkHourConflicts[0].MaxAllowedHours != 8 {
			t.Errorf("MaxAllowedHours = %.1f, want 8", result.WorkHourConflicts[0].MaxAllowedHours)
		}
	})
}

func TestDetector_Detect_EmptyInput(t *testing.T) {
	d := NewDetector(nil, nil)
	result := d.Detect(nil, model.NewScheduleContext())

	if result.HasConflicts {
		t.Error("空输入不应有冲突")
	}
	if result.TotalConflicts != 0 {
		t.Errorf("TotalConflicts = %d, want 0", result.TotalConflicts)
	}
	if len(result.Suggestions) != 1 || result.Suggestions[0] != suggestionNoConflicts {
		t.Errorf("Suggestions = %v, want [%s]", result.Suggestions, suggestionNoConflicts)
	}
	if !result.Consistent() {
		t.Error("结果自检失败")
	}
}

func TestDetector_Detect_CountInvariant(t *testing.T) {
	empA := uuid.New()
	empB := uuid.New()

	assignments := []*model.Assignment{
		createAssignment(empA, at(0, 9, 0), at(0, 17, 0)),
		createAssignment(empA, at(0, 13, 0), at(0, 20, 0)),
		createAssignment(empB, at(0, 8, 0), at(0, 16, 0)),
		createAssignment(empB, at(0, 17, 0), at(0, 23, 0)),
	}

	d := NewDetector(nil, nil)
	result := d.Detect(assignments, model.NewScheduleContext())

	if !result.Consistent() {
		t.Errorf("TotalConflicts = %d, 各桶之和 = %d", result.TotalConflicts, result.bucketSum())
	}
	if !result.HasConflicts {
		t.Error("应检测到冲突")
	}
	if result.SevereConflicts+result.MinorConflicts != result.TotalConflicts {
		t.Error("严重+轻微计数应等于总数")
	}
	if result.SeverityScore < 0 || result.SeverityScore > 100 {
		t.Errorf("SeverityScore = %.1f, 应在 [0,100]", result.SeverityScore)
	}
}

func TestDetector_Detect_Idempotent(t *testing.T) {
	emp := uuid.New()
	assignments := []*model.Assignment{
		createAssignment(emp, at(0, 9, 0), at(0, 17, 0)),
		createAssignment(emp, at(0, 13, 0), at(0, 15, 0)),
		createAssignment(emp, at(1, 8, 0), at(1, 22, 0)),
	}

	d := NewDetector(nil, nil)
	ctx := model.NewScheduleContext()

	first := d.Detect(assignments, ctx)
	second := d.Detect(assignments, ctx)

	if first.TotalConflicts != second.TotalConflicts {
		t.Errorf("两次检测冲突总数不同: %d vs %d", first.TotalConflicts, second.TotalConflicts)
	}
	for typ, count := range first.CountsByType {
		if second.CountsByType[typ] != count {
			t.Errorf("类型 %s 计数不同: %d vs %d", typ, count, second.CountsByType[typ])
		}
	}
}

func TestDetector_DetectForAssignment(t *testing.T) {
	emp := uuid.New()
	existing := []*model.Assignment{
		createAssignment(emp, at(0, 9, 0), at(0, 17, 0)),
		createAssignment(emp, at(1, 9, 0), at(1, 17, 0)),
	}

	t.Run("与已有分配重叠", func(t *testing.T) {
		candidate := createAssignment(emp, at(0, 16, 0), at(0, 20, 0))

		d := NewDetector(nil, nil)
		result := d.DetectForAssignment(candidate, existing, model.NewScheduleContext())

		if len(result.TimeConflicts) != 1 {
			t.Fatalf("TimeConflicts = %d, want 1", len(result.TimeConflicts))
		}
	})

	t.Run("无重叠不超时", func(t *testing.T) {
		candidate := createAssignment(emp, at(2, 9, 0), at(2, 17, 0))

		d := NewDetector(nil, nil)
		result := d.DetectForAssignment(candidate, existing, model.NewScheduleContext())

		if result.HasConflicts {
			t.Errorf("不应有冲突, got %d", result.TotalConflicts)
		}
	})

	t.Run("加上新分配后当日超时", func(t *testing.T) {
		candidate := createAssignment(emp, at(0, 18, 0), at(0, 23, 30)) // 当日累计 13.5 小时

		d := NewDetector(nil, nil)
		result := d.DetectForAssignment(candidate, existing, model.NewScheduleContext())

		if len(result.WorkHourConflicts) != 1 {
			t.Fatalf("WorkHourConflicts = %d, want 1", len(result.WorkHourConflicts))
		}
	})
}

func TestDetector_DetectForEmployee(t *testing.T) {
	empA := uuid.New()
	empB := uuid.New()

	assignments := []*model.Assignment{
		createAssignment(empA, at(0, 9, 0), at(0, 17, 0)),
		createAssignment(empA, at(0, 13, 0), at(0, 15, 0)),
		// 其他员工的重叠不应计入
		createAssignment(empB, at(0, 9, 0), at(0, 17, 0)),
		createAssignment(empB, at(0, 13, 0), at(0, 15, 0)),
	}

	d := NewDetector(nil, nil)
	result := d.DetectForEmployee(empA, assignments, model.NewScheduleContext())

	if len(result.TimeConflicts) != 1 {
		t.Fatalf("TimeConflicts = %d, want 1", len(result.TimeConflicts))
	}
	if result.TimeConflicts[0].EmployeeID != empA {
		t.Error("冲突应归属指定员工")
	}
}

func TestDetector_DetectBatch(t *testing.T) {
	empA := uuid.New()
	empB := uuid.New()

	assignments := []*model.Assignment{
		createAssignment(empA, at(0, 9, 0), at(0, 17, 0)),
		createAssignment(empA, at(0, 13, 0), at(0, 15, 0)),
		createAssignment(empB, at(0, 8, 0), at(0, 12, 0)),
	}

	d := NewDetector(nil, nil)
	batch := d.DetectBatch(assignments, model.NewScheduleContext())

	if batch.Global == nil {
		t.Fatal("应包含全局检测结果")
	}
	if len(batch.ByEmployee) != 2 {
		t.Errorf("ByEmployee = %d, want 2", len(batch.ByEmployee))
	}
	if len(batch.EmployeesWithConflicts) != 1 || batch.EmployeesWithConflicts[0] != empA {
		t.Errorf("EmployeesWithConflicts = %v, want [%s]", batch.EmployeesWithConflicts, empA)
	}
	if !batch.ByEmployee[empA].HasConflicts {
		t.Error("员工A应有冲突")
	}
	if batch.ByEmployee[empB].HasConflicts {
		t.Error("员工B不应有冲突")
	}
}

// panicSkillRule 触发内部失败的技能规则
type panicSkillRule struct{}

func (panicSkillRule) CheckSkills(_ []*model.Assignment, _ *model.ScheduleContext) []Conflict {
	panic("技能规则内部错误")
}

func TestDetector_Detect_InternalFailure(t *testing.T) {
	emp := uuid.New()
	d := NewDetector(nil, nil)
	d.UseSkillRule(panicSkillRule{})

	result := d.Detect([]*model.Assignment{
		createAssignment(emp, at(0, 9, 0), at(0, 17, 0)),
	}, model.NewScheduleContext())

	if len(result.OtherConflicts) != 1 {
		t.Fatalf("OtherConflicts = %d, want 1", len(result.OtherConflicts))
	}
	c := result.OtherConflicts[0]
	if c.Severity != MaxSeverity {
		t.Errorf("Severity = %d, want %d", c.Severity, MaxSeverity)
	}
	if c.Status != StatusEscalated {
		t.Errorf("Status = %s, want %s", c.Status, StatusEscalated)
	}
	if !result.Consistent() {
		t.Error("降级后的结果仍应通过自检")
	}
}

// recordingSkillRule 产出固定技能冲突的规则
type recordingSkillRule struct{}

func (recordingSkillRule) CheckSkills(assignments []*model.Assignment, _ *model.ScheduleContext) []Conflict {
	var conflicts []Conflict
	for _, a := range assignments {
		c := newConflict(TypeSkillMismatch, 3, "员工缺少班次所需技能")
		c.EmployeeID = a.EmployeeID
		c.AssignmentIDs = []uuid.UUID{a.ID}
		conflicts = append(conflicts, c)
	}
	return conflicts
}

func TestDetector_CustomSkillRule(t *testing.T) {
	emp := uuid.New()
	d := NewDetector(nil, nil)
	d.UseSkillRule(recordingSkillRule{})

	result := d.Detect([]*model.Assignment{
		createAssignment(emp, at(0, 9, 0), at(0, 12, 0)),
	}, model.NewScheduleContext())

	if len(result.SkillConflicts) != 1 {
		t.Fatalf("SkillConflicts = %d, want 1", len(result.SkillConflicts))
	}
	if result.CountsByType[TypeSkillMismatch] != 1 {
		t.Error("CountsByType 应包含技能冲突")
	}
}

func TestDetector_StatsRecording(t *testing.T) {
	emp := uuid.New()
	stats := NewStats()
	d := NewDetector(nil, stats)

	d.Detect([]*model.Assignment{
		createAssignment(emp, at(0, 9, 0), at(0, 17, 0)),
		createAssignment(emp, at(0, 13, 0), at(0, 15, 0)),
	}, model.NewScheduleContext())
	d.Detect(nil, model.NewScheduleContext())

	if got := stats.Get(StatDetections); got != 2 {
		t.Errorf("detections = %d, want 2", got)
	}
	if got := stats.Get(StatDetectionsWithConflict); got != 1 {
		t.Errorf("detections_with_conflicts = %d, want 1", got)
	}
	if got := stats.Get(StatConflictsFound); got != 1 {
		t.Errorf("conflicts_found = %d, want 1", got)
	}
}

func TestValidateInput(t *testing.T) {
	emp := uuid.New()

	tests := []struct {
		name        string
		assignments []*model.Assignment
		ctx         *model.ScheduleContext
		wantErr     bool
	}{
		{
			name:        "正常输入",
			assignments: []*model.Assignment{createAssignment(emp, at(0, 9, 0), at(0, 17, 0))},
			ctx:         model.NewScheduleContext(),
			wantErr:     false,
		},
		{
			name:    "上下文为空",
			ctx:     nil,
			wantErr: true,
		},
		{
			name:        "开始时间不早于结束时间",
			assignments: []*model.Assignment{createAssignment(emp, at(0, 17, 0), at(0, 9, 0))},
			ctx:         model.NewScheduleContext(),
			wantErr:     true,
		},
		{
			name:        "包含空分配",
			assignments: []*model.Assignment{nil},
			ctx:         model.NewScheduleContext(),
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInput(tt.assignments, tt.ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateInput() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
