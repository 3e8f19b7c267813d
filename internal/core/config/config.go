package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}

type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name  string
	Env   string
	HTTP  HTTP
	Admin AdminHTTP
}

type Log struct {
	Level string
	JSON  bool
	// 文件切割（可选）
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Redis struct {
	Addr     string `mapstructure:"addr"` // 为空则不启用缓存
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTLSec   int    `mapstructure:"ttlsec"`
}

type DB struct {
	Driver             string // postgres / mysql / sqlite / memory
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
	SlowThresholdMs    int
}

// Timeouts 存储调用的两档超时
type Timeouts struct {
	ShortMs int
	LongMs  int
}

func (t Timeouts) Short() time.Duration { return time.Duration(t.ShortMs) * time.Millisecond }
func (t Timeouts) Long() time.Duration  { return time.Duration(t.LongMs) * time.Millisecond }

// Limits HTTP 入口保护
type Limits struct {
	RatePerSec       float64
	Burst            int
	MaxConcurrent    int64
	MaxBodyBytes     int64
	RequestTimeoutMs int
}

type Config struct {
	App      App
	Log      Log
	DB       DB
	Redis    Redis `mapstructure:"redis"`
	Timeouts Timeouts
	Limits   Limits
}

const defaultPath = "./configs/config.local.yaml"

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "physician-service")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readtimeoutsec", 5)
	v.SetDefault("app.http.writetimeoutsec", 10)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("app.admin.host", "127.0.0.1")
	v.SetDefault("app.admin.port", 8081)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file", "")
	v.SetDefault("log.maxsizemb", 100)
	v.SetDefault("log.maxbackups", 7)
	v.SetDefault("log.maxagedays", 30)
	v.SetDefault("log.compress", true)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "file:physician.db?_foreign_keys=on")
	v.SetDefault("db.username", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.maxopenconns", 20)
	v.SetDefault("db.maxidleconns", 10)
	v.SetDefault("db.connmaxlifetimemin", 30)
	v.SetDefault("db.automigrate", true)
	v.SetDefault("db.loglevel", "warn")
	v.SetDefault("db.slowthresholdms", 200)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttlsec", 300)

	v.SetDefault("timeouts.shortms", 1500)
	v.SetDefault("timeouts.longms", 2000)

	v.SetDefault("limits.ratepersec", 200)
	v.SetDefault("limits.burst", 400)
	v.SetDefault("limits.maxconcurrent", 300)
	v.SetDefault("limits.maxbodybytes", 1<<20)
	v.SetDefault("limits.requesttimeoutms", 5000)
}

// Load 读取 YAML 配置 + APP_ 前缀环境变量覆盖（APP_DB_DRIVER=postgres）。
// path 为空时依次取 CONFIG_PATH、默认路径；默认路径不存在时只用默认值。
func Load(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		explicit = path != ""
	}
	if path == "" {
		path = defaultPath
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case "postgres", "mysql", "sqlite", "memory":
	default:
		return fmt.Errorf("config: unknown db.driver %q", c.DB.Driver)
	}
	if c.Timeouts.ShortMs <= 0 || c.Timeouts.LongMs <= 0 {
		return errors.New("config: timeouts must be positive")
	}
	return nil
}
