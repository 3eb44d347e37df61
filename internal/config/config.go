package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Inventory InventoryConfig `yaml:"inventory" mapstructure:"inventory"`
	Pricing   PricingConfig   `yaml:"pricing" mapstructure:"pricing"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the search-history database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// AnthropicConfig holds Anthropic API settings for criteria extraction and
// narration.
type AnthropicConfig struct {
	Key          string `yaml:"key" mapstructure:"key"`
	ExtractModel string `yaml:"extract_model" mapstructure:"extract_model"`
	NarrateModel string `yaml:"narrate_model" mapstructure:"narrate_model"`
	MaxTokens    int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// InventoryConfig configures the planning-authority listing source.
type InventoryConfig struct {
	Mode           string  `yaml:"mode" mapstructure:"mode"` // "mock" or "http"
	BaseURL        string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
}

// PricingConfig configures the developer brochure source.
type PricingConfig struct {
	Mode string `yaml:"mode" mapstructure:"mode"` // "mock"
}

// ScoreWeights holds the per-factor maximum points for property scoring.
type ScoreWeights struct {
	Price          float64 `yaml:"price" mapstructure:"price"`
	Area           float64 `yaml:"area" mapstructure:"area"`
	RERARegistered float64 `yaml:"rera_registered" mapstructure:"rera_registered"`
	RERAUnlisted   float64 `yaml:"rera_unlisted" mapstructure:"rera_unlisted"`
	AmenityPerItem float64 `yaml:"amenity_per_item" mapstructure:"amenity_per_item"`
	AmenityCap     float64 `yaml:"amenity_cap" mapstructure:"amenity_cap"`
	DeveloperScore float64 `yaml:"developer_score" mapstructure:"developer_score"`
}

// PipelineConfig configures the search pipeline's thresholds and limits.
type PipelineConfig struct {
	MinAreaAcres       float64      `yaml:"min_area_acres" mapstructure:"min_area_acres"`
	TopListings        int          `yaml:"top_listings" mapstructure:"top_listings"`
	TopRecommendations int          `yaml:"top_recommendations" mapstructure:"top_recommendations"`
	OptimalAreaSqft    float64      `yaml:"optimal_area_sqft" mapstructure:"optimal_area_sqft"`
	Weights            ScoreWeights `yaml:"weights" mapstructure:"weights"`
}

// BatchConfig configures batch query processing.
type BatchConfig struct {
	MaxConcurrentQueries int `yaml:"max_concurrent_queries" mapstructure:"max_concurrent_queries"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PLOTSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "plotscout.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("batch.max_concurrent_queries", 4)
	v.SetDefault("anthropic.extract_model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.narrate_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("inventory.mode", "mock")
	v.SetDefault("inventory.timeout_secs", 15)
	v.SetDefault("inventory.requests_per_sec", 2.0)
	v.SetDefault("pricing.mode", "mock")
	v.SetDefault("pipeline.min_area_acres", 5.0)
	v.SetDefault("pipeline.top_listings", 10)
	v.SetDefault("pipeline.top_recommendations", 5)
	v.SetDefault("pipeline.optimal_area_sqft", 1200)
	v.SetDefault("pipeline.weights.price", 30)
	v.SetDefault("pipeline.weights.area", 25)
	v.SetDefault("pipeline.weights.rera_registered", 20)
	v.SetDefault("pipeline.weights.rera_unlisted", 10)
	v.SetDefault("pipeline.weights.amenity_per_item", 3)
	v.SetDefault("pipeline.weights.amenity_cap", 15)
	v.SetDefault("pipeline.weights.developer_score", 8)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
