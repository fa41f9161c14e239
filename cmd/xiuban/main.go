// XiuBan 排班冲突检测与修复引擎
// 命令行入口：读取分配 JSON，输出检测/修复报告
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/xiuban/xiuban/internal/config"
	"github.com/xiuban/xiuban/internal/metrics"
	"github.com/xiuban/xiuban/internal/store"
	"github.com/xiuban/xiuban/pkg/conflict"
	"github.com/xiuban/xiuban/pkg/logger"
	"github.com/xiuban/xiuban/pkg/model"
	"github.com/xiuban/xiuban/pkg/stats"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// inputFile 输入文件格式
type inputFile struct {
	Assignments []*model.Assignment    `json:"assignments"`
	Context     *model.ScheduleContext `json:"context,omitempty"`
}

// report 输出报告格式
type report struct {
	Version           string                         `json:"version"`
	GeneratedAt       time.Time                      `json:"generated_at"`
	Batch             *conflict.BatchDetectionResult `json:"batch"`
	Resolution        *conflict.ResolutionResult     `json:"resolution"`
	BatchResolution   *conflict.BatchResolutionResult `json:"batch_resolution"`
	DetectionSummary  *stats.DetectionSummary        `json:"detection_summary"`
	ResolutionSummary *stats.ResolutionSummary       `json:"resolution_summary"`
	EngineCounters    map[string]int64               `json:"engine_counters"`
}

func main() {
	var (
		inputPath   = flag.String("input", "", "输入文件（JSON，包含 assignments 和 context）")
		outputPath  = flag.String("output", "", "输出文件（默认输出到标准输出）")
		apply       = flag.Bool("apply", false, "将修改建议应用到数据库")
		showMetrics = flag.Bool("metrics", false, "向标准错误输出 Prometheus 格式指标")
		showVersion = flag.Bool("version", false, "显示版本信息")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("XiuBan 排班冲突引擎 v%s\nBuild: %s (%s)\n", Version, BuildTime, GitCommit)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:      cfg.App.LogLevel,
		Format:     cfg.App.LogFormat,
		TimeFormat: time.RFC3339,
	})

	if *inputPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	in, err := readInput(*inputPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", *inputPath).Msg("读取输入失败")
	}
	if in.Context == nil {
		in.Context = model.NewScheduleContext()
	}

	// 前置条件检查：业务冲突不算错误，这里只拦截无法处理的输入
	if err := conflict.ValidateInput(in.Assignments, in.Context); err != nil {
		logger.Fatal().Err(err).Msg("输入校验失败")
	}

	engineStats := conflict.NewStats()
	detector := conflict.NewDetector(cfg.Engine.DetectorConfig(), engineStats)
	resolver := conflict.NewResolver(engineStats)

	reg := metrics.GetRegistry()

	start := time.Now()
	batch := detector.DetectBatch(in.Assignments, in.Context)
	reg.GetHistogram("xiuban_detection_duration_seconds").Observe(time.Since(start).Seconds(), "batch")
	reg.GetCounter("xiuban_detections_total").Inc("batch", detectStatus(batch.Global))
	for typ, count := range batch.Global.CountsByType {
		reg.GetCounter("xiuban_conflicts_total").Add(float64(count), string(typ))
	}

	resolution := resolver.Resolve(batch.Global, in.Context)
	reg.GetCounter("xiuban_resolutions_total").Inc(string(resolution.Strategy), resolveStatus(resolution))
	reg.GetGauge("xiuban_resolution_quality_score").Set(resolution.QualityScore)
	for _, mod := range resolution.Modifications {
		reg.GetCounter("xiuban_modifications_total").Inc(string(mod.Op))
	}

	// 按员工的独立修复与汇总
	perEmployee := make([]*conflict.DetectionResult, 0, len(batch.ByEmployee))
	for _, r := range batch.ByEmployee {
		perEmployee = append(perEmployee, r)
	}
	sort.Slice(perEmployee, func(i, j int) bool { return perEmployee[i].ID < perEmployee[j].ID })
	batchResolution := resolver.ResolveBatch(perEmployee, in.Context)

	aggregator := stats.NewAggregator()
	rep := &report{
		Version:           Version,
		GeneratedAt:       time.Now(),
		Batch:             batch,
		Resolution:        resolution,
		BatchResolution:   batchResolution,
		DetectionSummary:  aggregator.AggregateDetections(perEmployee),
		ResolutionSummary: aggregator.AggregateResolutions(batchResolution.Items),
		EngineCounters:    engineStats.Snapshot(),
	}

	if err := writeReport(rep, *outputPath); err != nil {
		logger.Fatal().Err(err).Msg("写出报告失败")
	}

	if *apply && len(resolution.Modifications) > 0 {
		if err := applyModifications(cfg, resolution.Modifications); err != nil {
			logger.Fatal().Err(err).Msg("应用修改建议失败")
		}
	}

	if *showMetrics {
		fmt.Fprint(os.Stderr, reg.Export())
	}
}

// readInput 读取并解析输入文件
func readInput(path string) (*inputFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var in inputFile
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("解析输入 JSON 失败: %w", err)
	}
	return &in, nil
}

// writeReport 序列化报告并写出
func writeReport(rep *report, path string) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// applyModifications 通过持久化协作方应用修改建议
func applyModifications(cfg *config.Config, mods []conflict.Modification) error {
	st, err := store.Open(&cfg.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	applied, err := st.ApplyModifications(ctx, mods)
	if err != nil {
		return err
	}
	logger.Info().Int("applied", applied).Msg("修改建议应用完成")
	return nil
}

// detectStatus 检测结果的指标状态标签
func detectStatus(r *conflict.DetectionResult) string {
	if r.HasConflicts {
		return "conflicts"
	}
	return "clean"
}

// resolveStatus 修复结果的指标状态标签
func resolveStatus(r *conflict.ResolutionResult) string {
	if r.Success {
		return "success"
	}
	return "failed"
}
