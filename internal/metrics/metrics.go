// Package metrics 提供进程内监控指标
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry 指标注册表
type Registry struct {
	counters   map[string]*Counter
	gauges     map[string]*Gauge
	histograms map[string]*Histogram
	mu         sync.RWMutex
}

// Counter 计数器
type Counter struct {
	Name   string
	Help   string
	Labels []string
	values map[string]float64
	mu     sync.RWMutex
}

// Gauge 仪表盘
type Gauge struct {
	Name   string
	Help   string
	Labels []string
	values map[string]float64
	mu     sync.RWMutex
}

// Histogram 直方图
type Histogram struct {
	Name    string
	Help    string
	Labels  []string
	Buckets []float64
	counts  map[string][]int
	sums    map[string]float64
	mu      sync.RWMutex
}

var (
	registry *Registry
	once     sync.Once
)

// GetRegistry 获取全局注册表
func GetRegistry() *Registry {
	once.Do(func() {
		registry = &Registry{
			counters:   make(map[string]*Counter),
			gauges:     make(map[string]*Gauge),
			histograms: make(map[string]*Histogram),
		}
		initDefaultMetrics()
	})
	return registry
}

// initDefaultMetrics 初始化默认指标
func initDefaultMetrics() {
	// 检测计数器
	registry.NewCounter("xiuban_detections_total", "冲突检测次数", []string{"scope", "status"})

	// 检测到的冲突数
	registry.NewCounter("xiuban_conflicts_total", "检测到的冲突数", []string{"type"})

	// 检测耗时
	registry.NewHistogram("xiuban_detection_duration_seconds", "冲突检测耗时",
		[]string{"scope"},
		[]float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0})

	// 修复计数器
	registry.NewCounter("xiuban_resolutions_total", "冲突修复次数", []string{"strategy", "status"})

	// 修复质量分数
	registry.NewGauge("xiuban_resolution_quality_score", "最近一次修复质量分数", []string{})

	// 修改建议数
	registry.NewCounter("xiuban_modifications_total", "产生的修改建议数", []string{"op"})
}

// NewCounter 创建计数器
func (r *Registry) NewCounter(name, help string, labels []string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()

	counter := &Counter{
		Name:   name,
		Help:   help,
		Labels: labels,
		values: make(map[string]float64),
	}
	r.counters[name] = counter
	return counter
}

// NewGauge 创建仪表盘
func (r *Registry) NewGauge(name, help string, labels []string) *Gauge {
	r.mu.Lock()
	defer r.mu.Unlock()

	gauge := &Gauge{
		Name:   name,
		Help:   help,
		Labels: labels,
		values: make(map[string]float64),
	}
	r.gauges[name] = gauge
	return gauge
}

// NewHistogram 创建直方图
func (r *Registry) NewHistogram(name, help string, labels []string, buckets []float64) *Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()

	histogram := &Histogram{
		Name:    name,
		Help:    help,
		Labels:  labels,
		Buckets: buckets,
		counts:  make(map[string][]int),
		sums:    make(map[string]float64),
	}
	r.histograms[name] = histogram
	return histogram
}

// GetCounter 获取计数器
func (r *Registry) GetCounter(name string) *Counter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.counters[name]
}

// GetGauge 获取仪表盘
func (r *Registry) GetGauge(name string) *Gauge {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.gauges[name]
}

// GetHistogram 获取直方图
func (r *Registry) GetHistogram(name string) *Histogram {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.histograms[name]
}

// Counter methods

// Inc 增加计数
func (c *Counter) Inc(labelValues ...string) {
	c.Add(1, labelValues...)
}

// Add 增加指定值
func (c *Counter) Add(value float64, labelValues ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := labelKey(labelValues)
	c.values[key] += value
}

// Gauge methods

// Set 设置值
func (g *Gauge) Set(value float64, labelValues ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := labelKey(labelValues)
	g.values[key] = value
}

// Histogram methods

// Observe 记录观测值
func (h *Histogram) Observe(value float64, labelValues ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := labelKey(labelValues)

	if _, exists := h.counts[key]; !exists {
		h.counts[key] = make([]int, len(h.Buckets)+1)
	}

	for i, bucket := range h.Buckets {
		if value <= bucket {
			h.counts[key][i]++
		}
	}
	h.counts[key][len(h.Buckets)]++ // +Inf bucket

	h.sums[key] += value
}

// labelKey 生成标签键
func labelKey(labels []string) string {
	if len(labels) == 0 {
		return ""
	}
	return strings.Join(labels, ",")
}

// Export 以 Prometheus 文本格式导出所有指标
// 没有自带 HTTP 端点，由调用方决定输出去向
func (r *Registry) Export() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sb strings.Builder

	names := make([]string, 0, len(r.counters))
	for name := range r.counters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := r.counters[name]
		c.mu.RLock()
		fmt.Fprintf(&sb, "# HELP %s %s\n# TYPE %s counter\n", c.Name, c.Help, c.Name)
		for key, value := range c.values {
			writeSample(&sb, c.Name, c.Labels, key, value)
		}
		c.mu.RUnlock()
	}

	names = names[:0]
	for name := range r.gauges {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		g := r.gauges[name]
		g.mu.RLock()
		fmt.Fprintf(&sb, "# HELP %s %s\n# TYPE %s gauge\n", g.Name, g.Help, g.Name)
		for key, value := range g.values {
			writeSample(&sb, g.Name, g.Labels, key, value)
		}
		g.mu.RUnlock()
	}

	return sb.String()
}

// writeSample 写出单个样本行
func writeSample(sb *strings.Builder, name string, labels []string, key string, value float64) {
	if key == "" {
		fmt.Fprintf(sb, "%s %g\n", name, value)
		return
	}
	values := strings.Split(key, ",")
	pairs := make([]string, 0, len(values))
	for i, v := range values {
		if i < len(labels) {
			pairs = append(pairs, fmt.Sprintf("%s=%q", labels[i], v))
		}
	}
	fmt.Fprintf(sb, "%s{%s} %g\n", name, strings.Join(pairs, ","), value)
}
