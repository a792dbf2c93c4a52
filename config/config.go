package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	App        AppConfig        `mapstructure:"app"`
	Database   DatabaseConfig   `mapstructure:"db"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Log        LogConfig        `mapstructure:"log"`
	Summarizer SummarizerConfig `mapstructure:"summarizer"`
	Worker     WorkerConfig     `mapstructure:"worker"`
	Inventory  InventoryConfig  `mapstructure:"inventory"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port          int        `mapstructure:"port"`
	BaseURL       string     `mapstructure:"base_url"`
	MaxUploadSize int64      `mapstructure:"max_upload_size"` // 上传文件大小上限（字节）
	CORS          CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// AppConfig 业务相关配置
type AppConfig struct {
	// Timezone 本地时区：仅有日期的工作记录按该时区的零点解释
	Timezone string `mapstructure:"timezone"`
}

// Location 解析业务时区，失败时回退 UTC
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 连接最大生命周期（分钟）
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 空闲连接最大存活时间（分钟）
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置，Addr 为空时不启用（限流与分布式锁降级为单机）
type RedisConfig struct {
	Addr      string        `mapstructure:"addr"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	LockTTL   time.Duration `mapstructure:"lock_ttl"`
	RateLimit int           `mapstructure:"rate_limit"` // 每 IP 每分钟请求上限
}

// AuthConfig JWT 校验配置（令牌由外部身份服务签发）
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SummarizerConfig 文本生成服务配置
type SummarizerConfig struct {
	Endpoint       string        `mapstructure:"endpoint"`
	APIKey         string        `mapstructure:"api_key"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxPromptLen   int           `mapstructure:"max_prompt_length"`
	MaxConcurrency int           `mapstructure:"max_concurrency"` // 汇总时并发调用上限
}

// WorkerConfig 后台任务池配置
type WorkerConfig struct {
	PoolSize   int           `mapstructure:"pool_size"`
	QueueSize  int           `mapstructure:"queue_size"`
	JobTimeout time.Duration `mapstructure:"job_timeout"`
}

// InventoryConfig 库存统计配置
type InventoryConfig struct {
	LowStockThreshold int `mapstructure:"low_stock_threshold"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.max_upload_size", 10<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("app.timezone", "Asia/Manila")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "gso_office")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Asia/Manila")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.lock_ttl", "5m")
	v.SetDefault("redis.rate_limit", 300)

	v.SetDefault("auth.issuer", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("summarizer.endpoint", "http://127.0.0.1:8001/v1/generate")
	v.SetDefault("summarizer.api_key", "")
	v.SetDefault("summarizer.timeout", "120s")
	v.SetDefault("summarizer.max_prompt_length", 1000)
	v.SetDefault("summarizer.max_concurrency", 4)

	v.SetDefault("worker.pool_size", 4)
	v.SetDefault("worker.queue_size", 256)
	v.SetDefault("worker.job_timeout", "3m")

	v.SetDefault("inventory.low_stock_threshold", 10)

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("GSO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// ── 关键配置校验 ──
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 不能为空")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("配置校验失败: app.timezone 无效: %w", err)
	}
	if c.Summarizer.Endpoint == "" {
		return fmt.Errorf("配置校验失败: summarizer.endpoint 不能为空")
	}
	if c.Summarizer.MaxPromptLen <= 0 {
		return fmt.Errorf("配置校验失败: summarizer.max_prompt_length 必须大于 0")
	}
	if c.Worker.PoolSize <= 0 || c.Worker.QueueSize <= 0 {
		return fmt.Errorf("配置校验失败: worker.pool_size 与 worker.queue_size 必须大于 0")
	}
	return nil
}
