package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	pstrings "github.com/CBIIT/ccdi-cpi-etl/pkg/platform/strings"
)

// Config is the full runtime configuration. Values come from defaults, then
// an optional YAML file, then environment variables.
type Config struct {
	Server   Server      `yaml:"server"`
	Database Database    `yaml:"database"`
	Redis    RedisConfig `yaml:"redis"`
	Kafka    Kafka       `yaml:"kafka"`
	Neo4j    Neo4j       `yaml:"neo4j"`
	Snapshot Snapshot    `yaml:"snapshot"`
	Run      Run         `yaml:"run"`
	Log      Log         `yaml:"log"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr       string `yaml:"addr"`
	AdminToken string `yaml:"admin_token"`
}

// Database points at the participant store.
type Database struct {
	URL             string        `yaml:"url"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// RedisConfig configures the plan digest store. An empty URL disables it.
type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Kafka configures run lifecycle events. No brokers disables publishing.
type Kafka struct {
	Brokers  []string `yaml:"brokers"`
	Topic    string   `yaml:"topic"`
	ClientID string   `yaml:"client_id"`
}

// Neo4j configures the graph export. An empty URI disables it.
type Neo4j struct {
	URI         string        `yaml:"uri"`
	User        string        `yaml:"user"`
	Password    string        `yaml:"password"`
	Database    string        `yaml:"database"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxPoolSize int           `yaml:"max_pool_size"`
	BatchSize   int           `yaml:"batch_size"`
}

// Snapshot configures the linked set upload. Bucket wins over Dir; both
// empty disables it.
type Snapshot struct {
	Bucket string `yaml:"bucket"`
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
}

// Run tunes a single pipeline run.
type Run struct {
	Timeout       time.Duration `yaml:"timeout"`
	SkipUnchanged bool          `yaml:"skip_unchanged"`
}

// Log selects handler format and level.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Defaults returns the baseline configuration.
func Defaults() Config {
	return Config{
		Server: Server{Addr: ":8080"},
		Database: Database{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 1,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: Kafka{Topic: "cpi.linkage.runs", ClientID: "cpi-etl"},
		Neo4j: Neo4j{
			User:        "neo4j",
			Timeout:     10 * time.Second,
			MaxPoolSize: 50,
			BatchSize:   1000,
		},
		Snapshot: Snapshot{Prefix: "json-file/"},
		Run:      Run{Timeout: 30 * time.Minute},
		Log:      Log{Level: "info", Format: "json"},
	}
}

// FromEnv builds a config from defaults and environment variables so main stays lean.
func FromEnv() Config {
	cfg := Defaults()
	applyEnv(&cfg)
	return cfg
}

// Load reads an optional YAML file over the defaults and then applies the
// environment. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	if c.Run.Timeout <= 0 {
		return fmt.Errorf("run timeout must be positive")
	}
	if c.Neo4j.BatchSize <= 0 {
		return fmt.Errorf("neo4j batch size must be positive")
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return fmt.Errorf("kafka topic is required when brokers are set")
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Addr, "CPI_ADDR")
	setString(&cfg.Server.AdminToken, "CPI_ADMIN_TOKEN")

	setString(&cfg.Database.URL, "CPI_DATABASE_URL")
	setInt(&cfg.Database.MaxOpenConns, "CPI_DATABASE_MAX_OPEN_CONNS")
	setInt(&cfg.Database.MaxIdleConns, "CPI_DATABASE_MAX_IDLE_CONNS")

	setString(&cfg.Redis.URL, "CPI_REDIS_URL")
	setInt(&cfg.Redis.PoolSize, "CPI_REDIS_POOL_SIZE")

	if v := strings.TrimSpace(os.Getenv("CPI_KAFKA_BROKERS")); v != "" {
		cfg.Kafka.Brokers = pstrings.DedupeAndTrim(strings.Split(v, ","))
	}
	setString(&cfg.Kafka.Topic, "CPI_KAFKA_TOPIC")
	setString(&cfg.Kafka.ClientID, "CPI_KAFKA_CLIENT_ID")

	setString(&cfg.Neo4j.URI, "NEO4J_URI")
	setString(&cfg.Neo4j.User, "NEO4J_USER")
	setString(&cfg.Neo4j.Password, "NEO4J_PASSWORD")
	setString(&cfg.Neo4j.Database, "NEO4J_DATABASE")
	setSeconds(&cfg.Neo4j.Timeout, "NEO4J_TIMEOUT_SECONDS")
	setInt(&cfg.Neo4j.MaxPoolSize, "NEO4J_MAX_POOL_SIZE")
	setInt(&cfg.Neo4j.BatchSize, "NEO4J_BATCH_SIZE")

	setString(&cfg.Snapshot.Bucket, "CPI_SNAPSHOT_BUCKET")
	setString(&cfg.Snapshot.Dir, "CPI_SNAPSHOT_DIR")
	setString(&cfg.Snapshot.Prefix, "CPI_SNAPSHOT_PREFIX")

	setDuration(&cfg.Run.Timeout, "CPI_RUN_TIMEOUT")
	if v := strings.TrimSpace(os.Getenv("CPI_SKIP_UNCHANGED")); v != "" {
		cfg.Run.SkipUnchanged = v == "true"
	}

	setString(&cfg.Log.Level, "CPI_LOG_LEVEL")
	setString(&cfg.Log.Format, "CPI_LOG_FORMAT")
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			*dst = parsed
		}
	}
}

func setSeconds(dst *time.Duration, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			*dst = time.Duration(parsed) * time.Second
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			*dst = parsed
		}
	}
}
