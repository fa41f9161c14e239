package stats

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/xiuban/xiuban/pkg/conflict"
	"github.com/xiuban/xiuban/pkg/model"
)

// detectWith 用真实检测器生成检测结果
func detectWith(t *testing.T, assignments []*model.Assignment) *conflict.DetectionResult {
	t.Helper()
	d := conflict.NewDetector(nil, nil)
	return d.Detect(assignments, model.NewScheduleContext())
}

func TestAggregator_AggregateDetections(t *testing.T) {
	emp := uuid.New()
	start := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)

	withConflict := detectWith(t, []*model.Assignment{
		{ID: uuid.New(), EmployeeID: emp, ShiftID: uuid.New(), StartTime: start, EndTime: start.Add(8 * time.Hour)},
		{ID: uuid.New(), EmployeeID: emp, ShiftID: uuid.New(), StartTime: start.Add(4 * time.Hour), EndTime: start.Add(6 * time.Hour)},
	})
	clean := detectWith(t, nil)

	agg := NewAggregator()
	summary := agg.AggregateDetections([]*conflict.DetectionResult{withConflict, clean, nil})

	if summary.TotalDetections != 2 {
		t.Errorf("TotalDetections = %d, want 2", summary.TotalDetections)
	}
	if summary.DetectionsFlagged != 1 {
		t.Errorf("DetectionsFlagged = %d, want 1", summary.DetectionsFlagged)
	}
	if summary.TotalConflicts != withConflict.TotalConflicts {
		t.Errorf("TotalConflicts = %d, want %d", summary.TotalConflicts, withConflict.TotalConflicts)
	}
	if summary.CountsByType[conflict.TypeTimeOverlap] != 1 {
		t.Errorf("时间冲突计数 = %d, want 1", summary.CountsByType[conflict.TypeTimeOverlap])
	}
	if summary.SevereConflicts+summary.MinorConflicts != summary.TotalConflicts {
		t.Error("严重+轻微应等于总数")
	}
}

func TestAggregator_AggregateDetections_Empty(t *testing.T) {
	agg := NewAggregator()
	summary := agg.AggregateDetections(nil)

	if summary.TotalDetections != 0 || summary.TotalConflicts != 0 {
		t.Errorf("空输入应全为零, got %+v", summary)
	}
}

func TestAggregator_AggregateResolutions(t *testing.T) {
	now := time.Now()
	results := []*conflict.ResolutionResult{
		{ID: "r1", ConflictType: conflict.TypeTimeOverlap, Success: true, QualityScore: 85, CreatedAt: now},
		{ID: "r2", ConflictType: conflict.TypeTimeOverlap, Success: true, QualityScore: 75, CreatedAt: now},
		{ID: "r3", ConflictType: conflict.TypeSkillMismatch, Success: false, QualityScore: 0, CreatedAt: now},
		nil,
	}

	agg := NewAggregator()
	summary := agg.AggregateResolutions(results)

	if summary.TotalResolutions != 3 {
		t.Errorf("TotalResolutions = %d, want 3", summary.TotalResolutions)
	}
	if summary.Succeeded != 2 || summary.Failed != 1 {
		t.Errorf("成功/失败 = %d/%d, want 2/1", summary.Succeeded, summary.Failed)
	}
	if summary.SuccessRate < 66.6 || summary.SuccessRate > 66.7 {
		t.Errorf("SuccessRate = %.2f, want ≈66.67", summary.SuccessRate)
	}
	if summary.CountsByType[conflict.TypeTimeOverlap] != 2 {
		t.Errorf("时间冲突修复计数 = %d, want 2", summary.CountsByType[conflict.TypeTimeOverlap])
	}
	// 只对有评分的结果取均值：(85+75)/2
	if summary.MeanQualityScore != 80 {
		t.Errorf("MeanQualityScore = %.1f, want 80", summary.MeanQualityScore)
	}
}

func TestAggregator_AggregateResolutions_Empty(t *testing.T) {
	agg := NewAggregator()
	summary := agg.AggregateResolutions(nil)

	if summary.SuccessRate != 0 {
		t.Errorf("空输入成功率 = %.1f, want 0", summary.SuccessRate)
	}
	if summary.MeanQualityScore != 0 {
		t.Errorf("空输入均分 = %.1f, want 0", summary.MeanQualityScore)
	}
}
