package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// DatabaseConfig contains the connection settings for one MySQL database.
type DatabaseConfig struct {
	Driver   string `env:"DRIVER" envDefault:"mysql"`
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"3306"`
	User     string `env:"USER" envDefault:"root"`
	Password string `env:"PASSWORD"`
	DBName   string `env:"NAME" envDefault:"marketing_analytics"`
}

// Config is the full pipeline configuration. Defaults live in the struct
// tags; every value can be overridden through the environment. The config
// is passed explicitly into constructors, never read from globals.
type Config struct {
	// Source database holding the raw performance table.
	SourceDB DatabaseConfig `envPrefix:"SOURCE_DB_"`

	// Analytics database receiving the scored table and the run journal.
	AnalyticsDB DatabaseConfig `envPrefix:"ANALYTICS_DB_"`

	// Interval between scheduled pipeline runs.
	RunInterval time.Duration `env:"RFM_RUN_INTERVAL" envDefault:"24h"`

	// Source column used as the entity grouping key.
	EntityField string `env:"RFM_ENTITY_FIELD" envDefault:"campaign_id"`

	// Source table holding the raw performance records.
	SourceTable string `env:"RFM_SOURCE_TABLE" envDefault:"performance"`

	// Directory receiving CSV exports.
	ExportDir string `env:"RFM_EXPORT_DIR" envDefault:"reports"`

	// Whether to keep a snappy-compressed archive copy of each export.
	ArchiveExports bool `env:"RFM_ARCHIVE_EXPORTS" envDefault:"true"`

	// Listen address of the results API in serve mode.
	HTTPAddr string `env:"RFM_HTTP_ADDR" envDefault:":8080"`

	// Enables debug logging.
	Verbose bool `env:"RFM_VERBOSE" envDefault:"true"`
}

// Load returns the pipeline configuration: defaults overlaid with any
// environment overrides.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment config: %w", err)
	}
	return cfg, nil
}
