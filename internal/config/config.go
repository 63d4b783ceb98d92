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
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Census   CensusConfig   `yaml:"census" mapstructure:"census"`
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	Report   ReportConfig   `yaml:"report" mapstructure:"report"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// CensusConfig locates the raw survey extracts and boundary files.
type CensusConfig struct {
	DataDir       string `yaml:"data_dir" mapstructure:"data_dir"`
	BoundaryDir   string `yaml:"boundary_dir" mapstructure:"boundary_dir"`
	Year          int    `yaml:"year" mapstructure:"year"`
	Level         string `yaml:"level" mapstructure:"level"`
	MinPopulation int    `yaml:"min_population" mapstructure:"min_population"`
}

// AnalysisConfig tunes the scoring run itself.
type AnalysisConfig struct {
	// VariablesFile optionally overrides the built-in variable catalog.
	VariablesFile string `yaml:"variables_file" mapstructure:"variables_file"`
	// Include restricts the run to the named variables; Exclude removes
	// variables from the catalog. Setting both is a configuration error.
	Include []string `yaml:"include" mapstructure:"include"`
	Exclude []string `yaml:"exclude" mapstructure:"exclude"`
	// Inverse names additional variables whose direction is flipped.
	Inverse      []string `yaml:"inverse" mapstructure:"inverse"`
	Interpolate  bool     `yaml:"interpolate" mapstructure:"interpolate"`
	MinNeighbors int      `yaml:"min_neighbors" mapstructure:"min_neighbors"`
}

// ReportConfig configures result output.
type ReportConfig struct {
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
	// Workbook enables the xlsx documentation workbook alongside the CSV.
	Workbook bool `yaml:"workbook" mapstructure:"workbook"`
}

// ServerConfig configures the results API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("SVI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "svi.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("census.data_dir", "data")
	v.SetDefault("census.boundary_dir", "boundaries")
	v.SetDefault("census.year", 2021)
	v.SetDefault("census.level", "bg")
	v.SetDefault("census.min_population", 75)
	v.SetDefault("analysis.interpolate", true)
	v.SetDefault("analysis.min_neighbors", 40)
	v.SetDefault("report.output_dir", "results")
	v.SetDefault("report.workbook", true)

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

	if len(cfg.Analysis.Include) > 0 && len(cfg.Analysis.Exclude) > 0 {
		return nil, eris.New("config: analysis.include and analysis.exclude are mutually exclusive")
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
