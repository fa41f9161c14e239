package conflict

import (
	"sync"
)

// 跨调用统计的计数器名称
const (
	StatDetections             = "detections_total"
	StatDetectionsWithConflict = "detections_with_conflicts"
	StatConflictsFound         = "conflicts_found_total"
	StatResolutions            = "resolutions_total"
	StatResolutionsSucceeded   = "resolutions_succeeded"
	StatResolutionsFailed      = "resolutions_failed"
	StatModificationsProposed  = "modifications_proposed"
)

// Stats 跨调用统计计数器
//
// 引擎内唯一的共享可变状态。按实例注入而非进程级单例，
// 测试可以使用相互隔离的实例。
type Stats struct {
	mu       sync.RWMutex
	counters map[string]int64
}

// NewStats 创建空的统计计数器
func NewStats() *Stats {
	return &Stats{counters: make(map[string]int64)}
}

// Inc 计数加一
func (s *Stats) Inc(name string) {
	s.Add(name, 1)
}

// Add 计数增加指定值
func (s *Stats) Add(name string, delta int64) {
	s.mu.Lock()
	s.counters[name] += delta
	s.mu.Unlock()
}

// Get 读取计数值
func (s *Stats) Get(name string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counters[name]
}

// Snapshot 返回所有计数的副本
func (s *Stats) Snapshot() map[string]int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make(map[string]int64, len(s.counters))
	for k, v := range s.counters {
		snapshot[k] = v
	}
	return snapshot
}

// conflictStatName 按冲突类型的计数器名称
func conflictStatName(typ Type) string {
	return "conflicts_" + string(typ)
}

// recordDetection 记录一次检测的结果
func (s *Stats) recordDetection(r *DetectionResult) {
	s.Inc(StatDetections)
	if r.HasConflicts {
		s.Inc(StatDetectionsWithConflict)
	}
	s.Add(StatConflictsFound, int64(r.TotalConflicts))
	for typ, count := range r.CountsByType {
		s.Add(conflictStatName(typ), int64(count))
	}
}

// recordResolution 记录一次修复的结果
func (s *Stats) recordResolution(r *ResolutionResult) {
	s.Inc(StatResolutions)
	if r.Success {
		s.Inc(StatResolutionsSucceeded)
	} else {
		s.Inc(StatResolutionsFailed)
	}
	s.Add(StatModificationsProposed, int64(len(r.Modifications)))
}
