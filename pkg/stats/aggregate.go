// Package stats 提供冲突检测与修复结果的统计聚合
package stats

import (
	"github.com/xiuban/xiuban/pkg/conflict"
)

// DetectionSummary 多次检测的汇总指标
type DetectionSummary struct {
	TotalDetections   int                   `json:"total_detections"`
	DetectionsFlagged int                   `json:"detections_flagged"` // 有冲突的检测次数
	TotalConflicts    int                   `json:"total_conflicts"`
	SevereConflicts   int                   `json:"severe_conflicts"`
	MinorConflicts    int                   `json:"minor_conflicts"`
	CountsByType      map[conflict.Type]int `json:"counts_by_type"`
}

// ResolutionSummary 多次修复的汇总指标
type ResolutionSummary struct {
	TotalResolutions int                   `json:"total_resolutions"`
	Succeeded        int                   `json:"succeeded"`
	Failed           int                   `json:"failed"`
	SuccessRate      float64               `json:"success_rate"` // 0-100
	CountsByType     map[conflict.Type]int `json:"counts_by_type"`
	MeanQualityScore float64               `json:"mean_quality_score"` // 仅统计有评分的结果
	TotalModified    int                   `json:"total_modifications"`
}

// Aggregator 检测/修复结果聚合器
type Aggregator struct{}

// NewAggregator 创建聚合器
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// AggregateDetections 汇总多次检测结果
func (a *Aggregator) AggregateDetections(results []*conflict.DetectionResult) *DetectionSummary {
	summary := &DetectionSummary{
		CountsByType: make(map[conflict.Type]int),
	}

	for _, r := range results {
		if r == nil {
			continue
		}
		summary.TotalDetections++
		if r.HasConflicts {
			summary.DetectionsFlagged++
		}
		summary.TotalConflicts += r.TotalConflicts
		summary.SevereConflicts += r.SevereConflicts
		summary.MinorConflicts += r.MinorConflicts
		for typ, count := range r.CountsByType {
			summary.CountsByType[typ] += count
		}
	}

	return summary
}

// AggregateResolutions 汇总多次修复结果
func (a *Aggregator) AggregateResolutions(results []*conflict.ResolutionResult) *ResolutionSummary {
	summary := &ResolutionSummary{
		CountsByType: make(map[conflict.Type]int),
	}

	var scoreSum float64
	var scored int

	for _, r := range results {
		if r == nil {
			continue
		}
		summary.TotalResolutions++
		if r.Success {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
		if r.ConflictType != "" {
			summary.CountsByType[r.ConflictType]++
		}
		if r.QualityScore > 0 {
			scoreSum += r.QualityScore
			scored++
		}
		summary.TotalModified += len(r.Modifications)
	}

	if summary.TotalResolutions > 0 {
		summary.SuccessRate = float64(summary.Succeeded) / float64(summary.TotalResolutions) * 100
	}
	if scored > 0 {
		summary.MeanQualityScore = scoreSum / float64(scored)
	}

	return summary
}
