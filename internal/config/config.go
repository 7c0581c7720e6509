package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	JWT          JWTConfig
	Redis        RedisConfig
	Tracing      TracingConfig      `mapstructure:"tracing"`
	CORS         CORSConfig         `mapstructure:"cors"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
	Achievement  AchievementConfig  `mapstructure:"achievement"`
	Grading      GradingConfig      `mapstructure:"grading"`
	Notification NotificationConfig `mapstructure:"notification"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceMigrate bool `mapstructure:"-"`
	MigrateOnly  bool `mapstructure:"-"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Driver    string
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
	SSLMode   string `mapstructure:"sslmode"`
	// sqlite 文件路径
	Path string
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests     int `mapstructure:"max_requests"`
	WindowMinutes   int `mapstructure:"window_minutes"`
	// 成就事件接口按用户限流，0 表示不限制
	UserMaxRequests int `mapstructure:"user_max_requests"`
}

// AchievementConfig 成就引擎配置
type AchievementConfig struct {
	// 计算“今天”所用的时区
	Timezone string `mapstructure:"timezone"`
	// previous_date | legacy
	ConsistencyMode string `mapstructure:"consistency_mode"`
	// local | redis
	LockBackend string        `mapstructure:"lock_backend"`
	LockTTL     time.Duration `mapstructure:"lock_ttl"`
}

type GradingConfig struct {
	// 达到满分的百分比阈值，视为优秀成绩
	PerfectThreshold float64 `mapstructure:"perfect_threshold"`
}

type NotificationConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	EmailServiceURL string        `mapstructure:"email_service_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// Location 解析成就时区，非法时区回退到 UTC
func (c AchievementConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parsetime", true)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "learnhub.db")
	v.SetDefault("rate_limit.max_requests", 1000)
	v.SetDefault("rate_limit.window_minutes", 1)
	v.SetDefault("rate_limit.user_max_requests", 120)
	v.SetDefault("achievement.timezone", "UTC")
	v.SetDefault("achievement.consistency_mode", "previous_date")
	v.SetDefault("achievement.lock_backend", "local")
	v.SetDefault("achievement.lock_ttl", 10*time.Second)
	v.SetDefault("grading.perfect_threshold", 90)
	v.SetDefault("notification.enabled", false)
	v.SetDefault("notification.email_service_url", "http://localhost:3001")
	v.SetDefault("notification.timeout", 10*time.Second)
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("LEARNHUB")
	v.AutomaticEnv()

	setDefaults(v)

	// Database
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")
	v.BindEnv("database.path", "DATABASE_PATH")

	// JWT
	v.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	v.BindEnv("server.mode", "SERVER_MODE")
	v.BindEnv("server.port", "SERVER_PORT")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	// Achievement / notification
	v.BindEnv("achievement.timezone", "ACHIEVEMENT_TIMEZONE")
	v.BindEnv("achievement.lock_backend", "ACHIEVEMENT_LOCK_BACKEND")
	v.BindEnv("notification.email_service_url", "EMAIL_SERVICE_URL")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验配置的合法性
func (c *Config) Validate() error {
	// 生产环境校验 JWT Secret 强度
	if c.Server.Mode == "release" && len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(c.JWT.Secret))
	}

	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	switch c.Achievement.ConsistencyMode {
	case "", "previous_date", "legacy":
	default:
		return fmt.Errorf("unsupported achievement.consistency_mode %q", c.Achievement.ConsistencyMode)
	}

	switch c.Achievement.LockBackend {
	case "", "local", "redis":
	default:
		return fmt.Errorf("unsupported achievement.lock_backend %q", c.Achievement.LockBackend)
	}

	if c.Achievement.Timezone != "" {
		if _, err := time.LoadLocation(c.Achievement.Timezone); err != nil {
			return fmt.Errorf("invalid achievement.timezone: %w", err)
		}
	}

	if c.Grading.PerfectThreshold <= 0 || c.Grading.PerfectThreshold > 100 {
		return fmt.Errorf("grading.perfect_threshold must be in (0, 100], got %v", c.Grading.PerfectThreshold)
	}

	return nil
}
