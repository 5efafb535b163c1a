package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"commission-service/internal/cache"
	"commission-service/internal/commission/model"
	"commission-service/internal/commission/service"
)

const envPrefix = "COMMISSION"

type Config struct {
	Server       ServerConfig     `mapstructure:"server"`
	Log          LogConfig        `mapstructure:"log"`
	Data         DataConfig       `mapstructure:"data"`
	Search       SearchConfig     `mapstructure:"search"`
	Normalizer   NormalizerConfig `mapstructure:"normalizer"`
	Cache        CacheConfig      `mapstructure:"cache"`
	Marketplaces []model.Profile  `mapstructure:"marketplaces"`
}

type ServerConfig struct {
	Host         string          `mapstructure:"host"`
	Port         int             `mapstructure:"port"`
	AllowOrigins []string        `mapstructure:"allow_origins"`
	MaxUploadMB  int             `mapstructure:"max_upload_mb"`
	RateLimit    RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig: лимит на IP; rps <= 0 выключает.
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type LogConfig struct {
	Level   string `mapstructure:"level"`
	File    string `mapstructure:"file"` // пусто = только консоль
	NoColor bool   `mapstructure:"no_color"`
}

type DataConfig struct {
	Dir            string        `mapstructure:"dir"`
	BackupDir      string        `mapstructure:"backup_dir"`
	ReloadInterval time.Duration `mapstructure:"reload_interval"`
	Watch          bool          `mapstructure:"watch"` // fsnotify поверх опроса
}

type SearchConfig struct {
	FuzzyThreshold   float64 `mapstructure:"fuzzy_threshold"`
	MaxFuzzyResults  int     `mapstructure:"max_fuzzy_results"`
	FuzzyAlgorithm   string  `mapstructure:"fuzzy_algorithm"`
	MaxAlternatives  int     `mapstructure:"max_alternatives"`
	EmptyQuery       string  `mapstructure:"empty_query"`
	ExcludeAnomalous bool    `mapstructure:"exclude_anomalous"`
}

type NormalizerConfig struct {
	CacheSize int `mapstructure:"cache_size"`
}

type CacheConfig struct {
	Driver     string        `mapstructure:"driver"` // memory | redis | none
	TTL        time.Duration `mapstructure:"ttl"`
	MaxEntries int           `mapstructure:"max_entries"`
	Redis      RedisConfig   `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// Load читает по слоям: .env → defaults → config.yaml (необязателен) → COMMISSION_* из окружения.
// path это явный файл конфига (флаг --config), пусто = поиск в . и ./config.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &nf) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if len(cfg.Marketplaces) == 0 {
		cfg.Marketplaces = DefaultProfiles()
	}
	for i := range cfg.Marketplaces {
		fillProfile(&cfg.Marketplaces[i])
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8082)
	v.SetDefault("server.allow_origins", []string{"*"})
	v.SetDefault("server.max_upload_mb", 32)
	v.SetDefault("server.rate_limit.rps", 20)
	v.SetDefault("server.rate_limit.burst", 40)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "logs/commission-service.log")
	v.SetDefault("log.no_color", false)

	v.SetDefault("data.dir", "data")
	v.SetDefault("data.backup_dir", "data/backup")
	v.SetDefault("data.reload_interval", "30s")
	v.SetDefault("data.watch", true)

	def := service.DefaultSearchConfig()
	v.SetDefault("search.fuzzy_threshold", def.FuzzyThreshold)
	v.SetDefault("search.max_fuzzy_results", def.MaxFuzzyResults)
	v.SetDefault("search.fuzzy_algorithm", string(def.Algorithm))
	v.SetDefault("search.max_alternatives", service.DefaultMaxAlternatives)
	v.SetDefault("search.empty_query", string(service.EmptyQueryNone))
	v.SetDefault("search.exclude_anomalous", false)

	v.SetDefault("normalizer.cache_size", service.DefaultNormalizerCacheSize)

	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("cache.max_entries", 2048)
	v.SetDefault("cache.redis.addr", "127.0.0.1:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.prefix", "commission:")
}

func fillProfile(p *model.Profile) {
	p.ID = strings.ToLower(strings.TrimSpace(p.ID))
	if p.Name == "" {
		p.Name = p.ID
	}
	if p.HeaderRow <= 0 {
		p.HeaderRow = 1
	}
	if p.Presentation == "" {
		p.Presentation = model.PresentRows
	}
}

func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if t := c.Search.FuzzyThreshold; t <= 0 || t > 1 {
		return fmt.Errorf("search.fuzzy_threshold must be in (0,1], got %v", t)
	}
	if !service.FuzzyAlgorithm(c.Search.FuzzyAlgorithm).Valid() {
		return fmt.Errorf("search.fuzzy_algorithm must be sequence or damerau, got %q", c.Search.FuzzyAlgorithm)
	}
	if !service.EmptyQueryMode(c.Search.EmptyQuery).Valid() {
		return fmt.Errorf("search.empty_query must be none or all, got %q", c.Search.EmptyQuery)
	}
	switch c.Cache.Driver {
	case "memory", "redis", "none":
	default:
		return fmt.Errorf("cache.driver must be memory, redis or none, got %q", c.Cache.Driver)
	}
	if c.Cache.Driver == "redis" && c.Cache.Redis.Addr == "" {
		return errors.New("cache.redis.addr is required for redis driver")
	}

	seen := map[string]bool{}
	for _, p := range c.Marketplaces {
		if p.ID == "" {
			return errors.New("marketplace without id")
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate marketplace %q", p.ID)
		}
		seen[p.ID] = true
		if p.File == "" {
			return fmt.Errorf("marketplace %q: file is required", p.ID)
		}
		if len(p.Columns.ProductGroup) == 0 {
			return fmt.Errorf("marketplace %q: no product_group aliases", p.ID)
		}
		if !p.Presentation.Valid() {
			return fmt.Errorf("marketplace %q: unknown presentation %q", p.ID, p.Presentation)
		}
	}
	return nil
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port) }

// Profile ищет профиль по id без учёта регистра.
func (c Config) Profile(id string) (model.Profile, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, p := range c.Marketplaces {
		if p.ID == id {
			return p, true
		}
	}
	return model.Profile{}, false
}

// DataPath возвращает путь к файлу профиля, абсолютный или относительно data.dir.
func (c Config) DataPath(p model.Profile) string {
	if filepath.IsAbs(p.File) {
		return p.File
	}
	return filepath.Join(c.Data.Dir, p.File)
}

// ServiceOptions переводит секции search/normalizer в опции service.New.
func (c Config) ServiceOptions() service.Options {
	return service.Options{
		CacheSize: c.Normalizer.CacheSize,
		Search: service.SearchConfig{
			FuzzyThreshold:  c.Search.FuzzyThreshold,
			MaxFuzzyResults: c.Search.MaxFuzzyResults,
			Algorithm:       service.FuzzyAlgorithm(c.Search.FuzzyAlgorithm),
		},
		Resolver: service.ResolverConfig{
			MaxAlternatives:  c.Search.MaxAlternatives,
			ExcludeAnomalous: c.Search.ExcludeAnomalous,
		},
	}
}

func (c Config) CacheOptions() cache.Config {
	return cache.Config{
		Driver:     c.Cache.Driver,
		TTL:        c.Cache.TTL,
		MaxEntries: c.Cache.MaxEntries,
		Redis: cache.RedisConfig{
			Addr:     c.Cache.Redis.Addr,
			Password: c.Cache.Redis.Password,
			DB:       c.Cache.Redis.DB,
			Prefix:   c.Cache.Redis.Prefix,
		},
	}
}
