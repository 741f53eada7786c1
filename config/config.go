package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "DEFECTBOARD"

type Config struct {
	HTTP     HTTPConfig     `mapstructure:"http"`
	API      APIConfig      `mapstructure:"api"`
	Database DatabaseConfig `mapstructure:"database"`
	Workflow WorkflowConfig `mapstructure:"workflow"`
	Redis    RedisConfig    `mapstructure:"redis"`
	OSS      OSSConfig      `mapstructure:"oss"`
	Search   SearchConfig   `mapstructure:"search"`
	Log      LogConfig      `mapstructure:"log"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
	Auth     AuthConfig     `mapstructure:"auth"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// APIConfig points at the defect-tracking backend consumed by the API client.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type DatabaseConfig struct {
	Driver  string `mapstructure:"driver"`
	Args    string `mapstructure:"args"`
	LogMode bool   `mapstructure:"log_mode"`
	// Journal records every store event into the events table.
	Journal bool `mapstructure:"journal"`
}

// NeedsDatabase reports whether any component reads or writes the database.
func (c *Config) NeedsDatabase() bool {
	return c.Workflow.Storage == "database" || c.Database.Journal
}

type WorkflowConfig struct {
	Storage            string `mapstructure:"storage"` // memory, file, database, redis, oss
	FileDir            string `mapstructure:"file_dir"`
	AllowParallelEdges bool   `mapstructure:"allow_parallel_edges"`
	IDStrategy         string `mapstructure:"id_strategy"` // timestamp, nanoid
}

type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	Namespace string `mapstructure:"namespace"`
}

type OSSConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
}

type SearchConfig struct {
	ElasticsearchURL string `mapstructure:"elasticsearch_url"`
	// SyncCron schedules full index rebuilds, seconds field first. Empty disables them.
	SyncCron string `mapstructure:"sync_cron"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// AuthConfig maps account names to hex encoded sha256 secrets.
type AuthConfig struct {
	Accounts map[string]string `mapstructure:"accounts"`
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("api.base_url", "http://localhost:5000/api")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.args", "defectboard.db")
	v.SetDefault("workflow.storage", "file")
	v.SetDefault("workflow.file_dir", ".defectboard")
	v.SetDefault("workflow.allow_parallel_edges", true)
	v.SetDefault("workflow.id_strategy", "timestamp")
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.namespace", "defectboard")
	v.SetDefault("oss.bucket", "defectboard")
	v.SetDefault("oss.prefix", "workflow")
	v.SetDefault("redis.password", "")
	v.SetDefault("oss.endpoint", "")
	v.SetDefault("oss.access_key", "")
	v.SetDefault("oss.secret_key", "")
	v.SetDefault("search.elasticsearch_url", "")
	v.SetDefault("search.sync_cron", "0 0 23 * * ?")
	v.SetDefault("database.log_mode", false)
	v.SetDefault("database.journal", false)
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads the optional config file and the DEFECTBOARD_* environment.
// An empty path searches defectboard.yaml in the working directory and /etc/defectboard.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("defectboard")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/defectboard")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); path != "" || !notFound {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	switch c.Workflow.Storage {
	case "memory", "file", "database", "redis", "oss":
	default:
		return fmt.Errorf("unknown workflow.storage '%s'", c.Workflow.Storage)
	}
	switch c.Workflow.IDStrategy {
	case "timestamp", "nanoid":
	default:
		return fmt.Errorf("unknown workflow.id_strategy '%s'", c.Workflow.IDStrategy)
	}
	return nil
}
