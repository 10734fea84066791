package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa de polyhedx.
type Config struct {
	API      APIConfig      `yaml:"api"`
	Feed     FeedConfig     `yaml:"feed"`
	Activity ActivityConfig `yaml:"activity"`
	Wallet   WalletConfig   `yaml:"wallet"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
}

// APIConfig contiene los endpoints del backend de market data.
type APIConfig struct {
	Enabled bool   `yaml:"enabled"` // false = solo feed sintético
	BaseURL string `yaml:"base_url"`
	WSURL   string `yaml:"ws_url"`
}

// FeedConfig controla el feed sintético y el modo watch.
type FeedConfig struct {
	Seed                   uint64 `yaml:"seed"` // 0 = aleatorio
	CadenceSeconds         int    `yaml:"cadence_seconds"`
	WindowSize             int    `yaml:"window_size"`
	RefreshIntervalSeconds int    `yaml:"refresh_interval_seconds"` // refresco de market data
}

// ActivityConfig controla la actividad sintética del modo watch.
type ActivityConfig struct {
	Enabled         bool `yaml:"enabled"`
	IntervalSeconds int  `yaml:"interval_seconds"`
}

// WalletConfig configura la wallet local.
type WalletConfig struct {
	PrivateKey     string  `yaml:"private_key"` // hex; mejor por POLYHEDX_PRIVATE_KEY
	KeyFile        string  `yaml:"key_file"`
	InitialBalance float64 `yaml:"initial_balance"`
}

// StorageConfig controla dónde se persiste el estado.
type StorageConfig struct {
	Driver string      `yaml:"driver"` // sqlite | redis | memory
	DSN    string      `yaml:"dsn"`    // ruta al archivo SQLite, o ":memory:"
	Redis  RedisConfig `yaml:"redis"`
}

// RedisConfig se usa con driver redis.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	Namespace string `yaml:"namespace"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Las variables de entorno sobreescriben al YAML.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	setDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// Default devuelve la configuración por defecto, sin archivo.
func Default() *Config {
	var cfg Config
	setDefaults(&cfg)
	return &cfg
}

// FeedCadence devuelve la cadencia del stream sintético.
func (c *Config) FeedCadence() time.Duration {
	return time.Duration(c.Feed.CadenceSeconds) * time.Second
}

// RefreshInterval devuelve el intervalo de refresco de market data.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Feed.RefreshIntervalSeconds) * time.Second
}

// ActivityInterval devuelve la cadencia de la actividad sintética.
func (c *Config) ActivityInterval() time.Duration {
	return time.Duration(c.Activity.IntervalSeconds) * time.Second
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("POLYHEDX_API_URL"); v != "" {
		cfg.API.BaseURL = v
		cfg.API.Enabled = true
	}
	if v := os.Getenv("POLYHEDX_WS_URL"); v != "" {
		cfg.API.WSURL = v
	}
	if v := os.Getenv("POLYHEDX_PRIVATE_KEY"); v != "" {
		cfg.Wallet.PrivateKey = v
	}
	if v := os.Getenv("POLYHEDX_STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("POLYHEDX_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("POLYHEDX_REDIS_ADDR"); v != "" {
		cfg.Storage.Redis.Addr = v
	}
	if v := os.Getenv("POLYHEDX_REDIS_PASSWORD"); v != "" {
		cfg.Storage.Redis.Password = v
	}
	if v := os.Getenv("POLYHEDX_FEED_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("POLYHEDX_FEED_SEED: %w", err)
		}
		cfg.Feed.Seed = seed
	}
	return nil
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "https://api.polyhedx.com"
	}
	if cfg.API.WSURL == "" {
		cfg.API.WSURL = "wss://api.polyhedx.com"
	}
	if cfg.Feed.CadenceSeconds <= 0 {
		cfg.Feed.CadenceSeconds = 5
	}
	if cfg.Feed.WindowSize <= 0 {
		cfg.Feed.WindowSize = 100
	}
	if cfg.Feed.RefreshIntervalSeconds <= 0 {
		cfg.Feed.RefreshIntervalSeconds = 30
	}
	if cfg.Activity.IntervalSeconds <= 0 {
		cfg.Activity.IntervalSeconds = 7
	}
	if cfg.Wallet.KeyFile == "" {
		cfg.Wallet.KeyFile = "polyhedx.key"
	}
	if cfg.Wallet.InitialBalance <= 0 {
		cfg.Wallet.InitialBalance = 2500
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "sqlite"
	}
	cfg.Storage.Driver = strings.ToLower(cfg.Storage.Driver)
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "polyhedx.db"
	}
	if cfg.Storage.Redis.Addr == "" {
		cfg.Storage.Redis.Addr = "localhost:6379"
	}
	if cfg.Storage.Redis.Namespace == "" {
		cfg.Storage.Redis.Namespace = "polyhedx:"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "sqlite", "redis", "memory":
	default:
		return fmt.Errorf("unknown storage driver %q (sqlite|redis|memory)", c.Storage.Driver)
	}
	return nil
}
