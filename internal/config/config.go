package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	ERP       ERPConfig
	Cache     CacheConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Log       LogConfig
	Reconcile ReconcileConfig
	ItemSync  ItemSyncConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// ERPConfig points at the ERP instance that exposes the EFRIS remote methods.
type ERPConfig struct {
	BaseURL        string
	APIKey         string
	APISecret      string
	Timeout        time.Duration
	BlockedMethods []string
}

type CacheConfig struct {
	Backend       string // memory, redis, none
	TTL           time.Duration
	SweepInterval time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers       []string
	ItemSyncTopic string
}

type LogConfig struct {
	Level  string
	Format string
	Output string
}

// ReconcileConfig decides which rate outcomes become user-visible notices.
type ReconcileConfig struct {
	NotifyNeutralRate bool
	SurfaceFailures   bool
}

type ItemSyncConfig struct {
	PageSize  int
	ChunkSize int
}

// Load reads config.toml (optional) and EFRIS_-prefixed environment variables,
// e.g. EFRIS_ERP_BASE_URL overrides erp.base_url.
func Load() (*Config, error) {
	return load(".", "/etc/efris-bridge")
}

func load(configPaths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	for _, path := range configPaths {
		v.AddConfigPath(path)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("EFRIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetInt("server.port"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
			IdleTimeout:  v.GetDuration("server.idle_timeout"),
		},
		ERP: ERPConfig{
			BaseURL:        v.GetString("erp.base_url"),
			APIKey:         v.GetString("erp.api_key"),
			APISecret:      v.GetString("erp.api_secret"),
			Timeout:        v.GetDuration("erp.timeout"),
			BlockedMethods: listValue(v, "erp.blocked_methods"),
		},
		Cache: CacheConfig{
			Backend:       strings.ToLower(v.GetString("cache.backend")),
			TTL:           v.GetDuration("cache.ttl"),
			SweepInterval: v.GetDuration("cache.sweep_interval"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Kafka: KafkaConfig{
			Brokers:       listValue(v, "kafka.brokers"),
			ItemSyncTopic: v.GetString("kafka.item_sync_topic"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Reconcile: ReconcileConfig{
			NotifyNeutralRate: v.GetBool("reconcile.notify_neutral_rate"),
			SurfaceFailures:   v.GetBool("reconcile.surface_failures"),
		},
		ItemSync: ItemSyncConfig{
			PageSize:  v.GetInt("item_sync.page_size"),
			ChunkSize: v.GetInt("item_sync.chunk_size"),
		},
	}

	// The update popup is noise on every desk load; keep it blocked unless configured otherwise.
	if !v.IsSet("erp.blocked_methods") {
		cfg.ERP.BlockedMethods = []string{"frappe.utils.change_log.show_update_popup"}
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 5 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 120 * time.Second
	}
	if cfg.ERP.BaseURL == "" {
		cfg.ERP.BaseURL = "http://localhost:8000"
	}
	cfg.ERP.BaseURL = strings.TrimRight(cfg.ERP.BaseURL, "/")
	if cfg.ERP.Timeout == 0 {
		cfg.ERP.Timeout = 30 * time.Second
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 6 * time.Hour
	}
	if cfg.Cache.SweepInterval == 0 {
		cfg.Cache.SweepInterval = 30 * time.Minute
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Kafka.ItemSyncTopic == "" {
		cfg.Kafka.ItemSyncTopic = "efris.item-sync"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.ItemSync.PageSize == 0 {
		cfg.ItemSync.PageSize = 25
	}
	if cfg.ItemSync.ChunkSize == 0 {
		cfg.ItemSync.ChunkSize = 1
	}
}

func (c *Config) validate() error {
	switch c.Cache.Backend {
	case "memory", "redis", "none":
	default:
		return fmt.Errorf("cache.backend must be one of memory, redis, none; got %q", c.Cache.Backend)
	}
	if !strings.HasPrefix(c.ERP.BaseURL, "http://") && !strings.HasPrefix(c.ERP.BaseURL, "https://") {
		return fmt.Errorf("erp.base_url must be an http(s) URL, got %q", c.ERP.BaseURL)
	}
	if (c.ERP.APIKey == "") != (c.ERP.APISecret == "") {
		return fmt.Errorf("erp.api_key and erp.api_secret must be set together")
	}
	if c.ItemSync.PageSize < 1 || c.ItemSync.PageSize > 99 {
		return fmt.Errorf("item_sync.page_size must be between 1 and 99, got %d", c.ItemSync.PageSize)
	}
	if c.ItemSync.ChunkSize < 1 {
		return fmt.Errorf("item_sync.chunk_size must be positive, got %d", c.ItemSync.ChunkSize)
	}
	return nil
}

// Addr returns host:port for the redis client.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// listValue accepts a TOML array or a comma separated string (the env form).
func listValue(v *viper.Viper, key string) []string {
	switch raw := v.Get(key).(type) {
	case string:
		return splitList(raw)
	case []string:
		return trimList(raw)
	case []any:
		items := make([]string, 0, len(raw))
		for _, item := range raw {
			items = append(items, fmt.Sprint(item))
		}
		return trimList(items)
	default:
		return nil
	}
}

func splitList(raw string) []string {
	return trimList(strings.Split(raw, ","))
}

func trimList(items []string) []string {
	var out []string
	for _, part := range items {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
