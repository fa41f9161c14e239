// Package logger 提供统一的日志框架
package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

// Level 日志级别
type Level = zerolog.Level

const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
	FatalLevel = zerolog.FatalLevel
)

// Config 日志配置
type Config struct {
	Level      string `json:"level"`
	Format     string `json:"format"` // json/console
	Output     string `json:"output"` // stdout/stderr
	TimeFormat string `json:"time_format,omitempty"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	}
}

// Init 初始化日志器
func Init(cfg Config) {
	once.Do(func() {
		zerolog.SetGlobalLevel(parseLevel(cfg.Level))

		var output io.Writer
		switch cfg.Output {
		case "stderr":
			output = os.Stderr
		default:
			output = os.Stdout
		}

		if cfg.Format == "console" {
			output = zerolog.ConsoleWriter{
				Out:        output,
				TimeFormat: cfg.TimeFormat,
			}
		}

		logger = zerolog.New(output).With().Timestamp().Logger()
	})
}

// parseLevel 解析日志级别
func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Get 获取日志器
func Get() *zerolog.Logger {
	if logger.GetLevel() == zerolog.Disabled {
		Init(DefaultConfig())
	}
	return &logger
}

// Debug 记录调试日志
func Debug() *zerolog.Event {
	return Get().Debug()
}

// Info 记录信息日志
func Info() *zerolog.Event {
	return Get().Info()
}

// Warn 记录警告日志
func Warn() *zerolog.Event {
	return Get().Warn()
}

// Error 记录错误日志
func Error() *zerolog.Event {
	return Get().Error()
}

// Fatal 记录致命错误日志
func Fatal() *zerolog.Event {
	return Get().Fatal()
}

// WithError 添加错误信息
func WithError(err error) *zerolog.Event {
	return Get().Error().Err(err)
}

// DetectorLogger 冲突检测器专用日志器
type DetectorLogger struct {
	base *zerolog.Logger
}

// NewDetectorLogger 创建冲突检测器日志器
func NewDetectorLogger() *DetectorLogger {
	l := Get().With().Str("component", "detector").Logger()
	return &DetectorLogger{base: &l}
}

// StartDetection 记录检测开始
func (l *DetectorLogger) StartDetection(detectionID string, assignments int) {
	l.base.Debug().
		Str("detection_id", detectionID).
		Int("assignments", assignments).
		Msg("开始冲突检测")
}

// DetectionComplete 记录检测完成
func (l *DetectorLogger) DetectionComplete(detectionID string, duration time.Duration, conflicts int) {
	l.base.Info().
		Str("detection_id", detectionID).
		Dur("duration", duration).
		Int("conflicts", conflicts).
		Msg("冲突检测完成")
}

// InternalFailure 记录检测内部失败（已降级为 OTHER 冲突）
func (l *DetectorLogger) InternalFailure(detectionID string, cause string) {
	l.base.Error().
		Str("detection_id", detectionID).
		Str("cause", cause).
		Msg("检测过程内部失败，已记录为 OTHER 冲突")
}

// ResolverLogger 冲突修复器专用日志器
type ResolverLogger struct {
	base *zerolog.Logger
}

// NewResolverLogger 创建冲突修复器日志器
func NewResolverLogger() *ResolverLogger {
	l := Get().With().Str("component", "resolver").Logger()
	return &ResolverLogger{base: &l}
}

// StrategyFailed 记录策略失败（转入下一策略）
func (l *ResolverLogger) StrategyFailed(conflictID, strategy string) {
	l.base.Debug().
		Str("conflict_id", conflictID).
		Str("strategy", strategy).
		Msg("修复策略未生效")
}

// ResolutionComplete 记录修复完成
func (l *ResolverLogger) ResolutionComplete(resolutionID string, success bool, score float64, modifications int) {
	l.base.Info().
		Str("resolution_id", resolutionID).
		Bool("success", success).
		Float64("quality_score", score).
		Int("modifications", modifications).
		Msg("冲突修复完成")
}
