// Package config 提供配置管理
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/xiuban/xiuban/pkg/conflict"
)

// Config 应用配置
type Config struct {
	App      AppConfig      `envPrefix:"APP_"`
	Engine   EngineConfig   `envPrefix:"ENGINE_"`
	Database DatabaseConfig `envPrefix:"DB_"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name      string `env:"NAME" envDefault:"xiuban"`
	Env       string `env:"ENV" envDefault:"development"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"` // json/console
}

// EngineConfig 冲突引擎配置
type EngineConfig struct {
	MaxHoursPerDay  float64 `env:"MAX_HOURS_PER_DAY" envDefault:"12"`
	MaxHoursPerWeek float64 `env:"MAX_HOURS_PER_WEEK" envDefault:"60"`
	ParallelWorkers int     `env:"PARALLEL_WORKERS" envDefault:"4"`
}

// DetectorConfig 转换为检测器配置
func (c *EngineConfig) DetectorConfig() *conflict.DetectorConfig {
	return &conflict.DetectorConfig{
		MaxHoursPerDay:  c.MaxHoursPerDay,
		MaxHoursPerWeek: c.MaxHoursPerWeek,
		ParallelWorkers: c.ParallelWorkers,
	}
}

// DatabaseConfig 数据库配置（持久化协作方）
type DatabaseConfig struct {
	Host            string        `env:"HOST" envDefault:"localhost"`
	Port            int           `env:"PORT" envDefault:"5432"`
	Name            string        `env:"NAME" envDefault:"xiuban"`
	User            string        `env:"USER" envDefault:"xiuban"`
	Password        string        `env:"PASSWORD" envDefault:""`
	SSLMode         string        `env:"SSL_MODE" envDefault:"disable"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"5m"`
}

// DSN 返回数据库连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	return cfg, nil
}

// IsDevelopment 检查是否为开发环境
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction 检查是否为生产环境
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
