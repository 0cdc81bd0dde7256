package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	DB        DBConfig        `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Queue     QueueConfig     `mapstructure:"queue"`
	Link      LinkConfig      `mapstructure:"link"`
	Redirect  RedirectConfig  `mapstructure:"redirect"`
	Click     ClickConfig     `mapstructure:"click"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Import    ImportConfig    `mapstructure:"import"`
	Auth      AuthConfig      `mapstructure:"auth"`
	I18n      I18nConfig      `mapstructure:"i18n"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	Mode           string   `mapstructure:"mode"` // debug / release / test
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Path       string `mapstructure:"path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// DBConfig 数据库配置
type DBConfig struct {
	Driver                 string `mapstructure:"driver"` // mysql / postgres / sqlite
	DSN                    string `mapstructure:"dsn"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int    `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int    `mapstructure:"conn_max_idle_time_seconds"`
	SlowThresholdMs        int    `mapstructure:"slow_threshold_ms"`
}

// RedisConfig 短链缓存配置
type RedisConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Addr           string `mapstructure:"addr"`
	Password       string `mapstructure:"password"`
	MaxIdle        int    `mapstructure:"max_idle"`
	LinkTTLSeconds int    `mapstructure:"link_ttl_seconds"`
}

// LinkTTL 缓存过期时间
func (c RedisConfig) LinkTTL() time.Duration {
	return time.Duration(c.LinkTTLSeconds) * time.Second
}

// QueueConfig 点击异步队列配置
type QueueConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Addr        string `mapstructure:"addr"`
	Password    string `mapstructure:"password"`
	DB          int    `mapstructure:"db"`
	Concurrency int    `mapstructure:"concurrency"`
	MaxRetry    int    `mapstructure:"max_retry"`
}

// LinkConfig 短链生成配置
type LinkConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	CodeLength     int    `mapstructure:"code_length"`
	MaxAttempts    int    `mapstructure:"max_attempts"`
	RetryBackoffMs int    `mapstructure:"retry_backoff_ms"`
}

// RetryBackoff 冲突重试间隔
func (c LinkConfig) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffMs) * time.Millisecond
}

// RedirectConfig 跳转配置
type RedirectConfig struct {
	FallbackURL string `mapstructure:"fallback_url"`
}

// ClickConfig 点击记录配置
type ClickConfig struct {
	Workers               int    `mapstructure:"workers"`
	Buffer                int    `mapstructure:"buffer"`
	WriteTimeoutMs        int    `mapstructure:"write_timeout_ms"`
	BreakerFailures       uint32 `mapstructure:"breaker_failures"`
	BreakerOpenSeconds    int    `mapstructure:"breaker_open_seconds"`
	BreakerHalfOpenProbes uint32 `mapstructure:"breaker_half_open_probes"`
}

// WriteTimeout 单次写入超时
func (c ClickConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutMs) * time.Millisecond
}

// AnalyticsConfig 统计配置
type AnalyticsConfig struct {
	Timezone string `mapstructure:"timezone"`
}

// ImportConfig 转化数据定时导入配置
type ImportConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Schedule     string `mapstructure:"schedule"`
	InboxDir     string `mapstructure:"inbox_dir"`
	ProcessedDir string `mapstructure:"processed_dir"`
}

// AuthConfig 共享密码配置
type AuthConfig struct {
	PasswordHash string `mapstructure:"password_hash"`
}

// I18nConfig 多语言配置
type I18nConfig struct {
	Files       []string `mapstructure:"files"`
	DefaultLang string   `mapstructure:"default_lang"`
}

// SetDefaults 设置默认配置
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", "logs/affiliatelink.log")
	v.SetDefault("log.max_size", 10)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age", 7)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "data/affiliatelink.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime_seconds", 1800)
	v.SetDefault("db.conn_max_idle_time_seconds", 300)
	v.SetDefault("db.slow_threshold_ms", 200)

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.max_idle", 10)
	v.SetDefault("redis.link_ttl_seconds", 3600)

	v.SetDefault("queue.addr", "127.0.0.1:6379")
	v.SetDefault("queue.concurrency", 10)
	v.SetDefault("queue.max_retry", 3)

	v.SetDefault("link.base_url", "http://localhost:8080/go?code=")
	v.SetDefault("link.code_length", 8)
	v.SetDefault("link.max_attempts", 10)

	v.SetDefault("redirect.fallback_url", "http://localhost:4321/error")

	v.SetDefault("click.workers", 4)
	v.SetDefault("click.buffer", 1024)
	v.SetDefault("click.write_timeout_ms", 3000)
	v.SetDefault("click.breaker_failures", 5)
	v.SetDefault("click.breaker_open_seconds", 30)
	v.SetDefault("click.breaker_half_open_probes", 1)

	v.SetDefault("analytics.timezone", "UTC")

	v.SetDefault("import.schedule", "*/10 * * * *")
	v.SetDefault("import.inbox_dir", "data/import/inbox")
	v.SetDefault("import.processed_dir", "data/import/processed")

	v.SetDefault("i18n.files", []string{"./i18n/en.toml", "./i18n/zh.toml"})
	v.SetDefault("i18n.default_lang", "en")
}

// Load 读取配置文件，环境变量可覆盖（如 DB_DSN）
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
