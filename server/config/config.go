package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"frps-dashboard/server/chart"
)

// 可以覆盖配置文件的环境变量
const (
	EnvUpstreamURL      = "DASHBOARD_UPSTREAM_URL"
	EnvUpstreamUser     = "DASHBOARD_UPSTREAM_USER"
	EnvUpstreamPassword = "DASHBOARD_UPSTREAM_PASSWORD"
)

// Config 应用配置结构
type Config struct {
	API       APIConfig       `yaml:"api"`
	Upstream  UpstreamConfig  `yaml:"upstream"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Database  DatabaseConfig  `yaml:"database"`
	Recorder  RecorderConfig  `yaml:"recorder"`
}

// APIConfig HTTP API 配置
type APIConfig struct {
	ListenPort       int     `yaml:"listen_port"`
	RateLimit        float64 `yaml:"rate_limit"` // 每秒请求数，0 表示不限制
	Burst            int     `yaml:"burst"`
	EnablePrometheus bool    `yaml:"enable_prometheus"`
}

// UpstreamConfig frps 仪表盘 API 配置
type UpstreamConfig struct {
	URL          string `yaml:"url"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	PollInterval int    `yaml:"poll_interval"` // 秒
	Timeout      int    `yaml:"timeout"`       // 秒

	// 每秒最多请求 frps 的次数，0 表示不限制
	RateLimit float64 `yaml:"rate_limit"`
}

// DashboardConfig 图表默认外观
type DashboardConfig struct {
	TextColor string `yaml:"text_color"`
	Style     string `yaml:"style"`
	Locale    string `yaml:"locale"`
	ByteUnits string `yaml:"byte_units"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// RecorderConfig 快照记录配置
type RecorderConfig struct {
	Enabled       bool `yaml:"enabled"`
	Interval      int  `yaml:"interval"` // 秒
	RetentionDays int  `yaml:"retention_days"`
}

// Load 从文件加载配置。配置文件同目录下的 .env 会先被载入环境变量。
func Load(path string) (*Config, error) {
	envFile := filepath.Join(filepath.Dir(path), ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("读取环境变量文件失败: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	config.applyEnv()
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("配置验证失败: %w", err)
	}

	return &config, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvUpstreamURL); v != "" {
		c.Upstream.URL = v
	}
	if v := os.Getenv(EnvUpstreamUser); v != "" {
		c.Upstream.User = v
	}
	if v := os.Getenv(EnvUpstreamPassword); v != "" {
		c.Upstream.Password = v
	}
}

func (c *Config) applyDefaults() {
	if c.API.Burst <= 0 {
		c.API.Burst = 1
		if c.API.RateLimit > 1 {
			c.API.Burst = int(c.API.RateLimit)
		}
	}
	if c.Upstream.PollInterval <= 0 {
		c.Upstream.PollInterval = 5
	}
	if c.Upstream.Timeout <= 0 {
		c.Upstream.Timeout = 3
	}
	if c.Dashboard.TextColor == "" {
		c.Dashboard.TextColor = chart.DefaultTextColor
	}
	if c.Recorder.Interval <= 0 {
		c.Recorder.Interval = 60
	}
	if c.Recorder.RetentionDays <= 0 {
		c.Recorder.RetentionDays = 7
	}
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if c.API.ListenPort <= 0 || c.API.ListenPort > 65535 {
		return fmt.Errorf("API 端口必须在 1-65535 之间")
	}
	if c.API.RateLimit < 0 {
		return fmt.Errorf("限流速率不能为负数")
	}
	if c.Upstream.RateLimit < 0 {
		return fmt.Errorf("frps 请求速率不能为负数")
	}
	if c.Upstream.URL == "" {
		return fmt.Errorf("frps 地址不能为空")
	}
	if _, err := c.Dashboard.Builder(); err != nil {
		return err
	}
	if c.Recorder.Enabled && c.Database.Path == "" {
		return fmt.Errorf("启用快照记录时数据库路径不能为空")
	}
	return nil
}

// PollDuration 拉取间隔
func (u UpstreamConfig) PollDuration() time.Duration {
	return time.Duration(u.PollInterval) * time.Second
}

// TimeoutDuration 请求超时
func (u UpstreamConfig) TimeoutDuration() time.Duration {
	return time.Duration(u.Timeout) * time.Second
}

// IntervalDuration 记录间隔
func (r RecorderConfig) IntervalDuration() time.Duration {
	return time.Duration(r.Interval) * time.Second
}

// Builder 按配置创建图表构建器
func (d DashboardConfig) Builder() (chart.Builder, error) {
	style, err := chart.StyleByName(d.Style)
	if err != nil {
		return chart.Builder{}, err
	}
	locale, err := chart.LocaleByCode(d.Locale)
	if err != nil {
		return chart.Builder{}, err
	}
	bytes, err := chart.ByteFormatterByName(d.ByteUnits)
	if err != nil {
		return chart.Builder{}, err
	}
	return chart.Builder{Style: style, Locale: locale, Bytes: bytes}, nil
}
