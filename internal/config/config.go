package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable, e.g. FINA_SERVER_PORT
const EnvPrefix = "FINA"

// ConfigFileEnv names the variable that points at an explicit YAML config file
const ConfigFileEnv = "FINA_CONFIG_FILE"

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server" envconfig:"SERVER"`
	Security   SecurityConfig   `yaml:"security" envconfig:"SECURITY"`
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Paths      PathsConfig      `yaml:"paths" envconfig:"PATHS"`
	Engine     EngineConfig     `yaml:"engine" envconfig:"ENGINE"`
	Valuation  ValuationConfig  `yaml:"valuation" envconfig:"VALUATION"`
	Benchmarks BenchmarksConfig `yaml:"benchmarks" envconfig:"BENCHMARKS"`
	Telemetry  TelemetryConfig  `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" envconfig:"MAX_BODY_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	ExecutableDir string `yaml:"executable_dir" envconfig:"EXECUTABLE_DIR"`
	DataDir       string `yaml:"data_dir" envconfig:"DATA_DIR"`
	ExportsDir    string `yaml:"exports_dir" envconfig:"EXPORTS_DIR"`
	LogsDir       string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// EngineConfig tunes the analysis engine
type EngineConfig struct {
	Workers         int           `yaml:"workers" envconfig:"WORKERS"`
	RunTimeout      time.Duration `yaml:"run_timeout" envconfig:"RUN_TIMEOUT"`
	DefaultLanguage string        `yaml:"default_language" envconfig:"DEFAULT_LANGUAGE"`
	HistoryCharts   bool          `yaml:"history_charts" envconfig:"HISTORY_CHARTS"`
	MaxStatements   int           `yaml:"max_statements" envconfig:"MAX_STATEMENTS"`
	StoredRuns      int           `yaml:"stored_runs" envconfig:"STORED_RUNS"`
}

// ValuationConfig holds the default assumptions of valuation and modeling analyses
type ValuationConfig struct {
	DiscountRate       float64 `yaml:"discount_rate" envconfig:"DISCOUNT_RATE"`
	TerminalGrowth     float64 `yaml:"terminal_growth" envconfig:"TERMINAL_GROWTH"`
	RiskFreeRate       float64 `yaml:"risk_free_rate" envconfig:"RISK_FREE_RATE"`
	EquityRiskPremium  float64 `yaml:"equity_risk_premium" envconfig:"EQUITY_RISK_PREMIUM"`
	Beta               float64 `yaml:"beta" envconfig:"BETA"`
	FallbackTaxRate    float64 `yaml:"fallback_tax_rate" envconfig:"FALLBACK_TAX_RATE"`
	TargetDebtToEBITDA float64 `yaml:"target_debt_to_ebitda" envconfig:"TARGET_DEBT_TO_EBITDA"`
	ForecastHorizon    int     `yaml:"forecast_horizon" envconfig:"FORECAST_HORIZON"`
}

// Benchmark sources
const (
	BenchmarkSourceStatic   = "static"
	BenchmarkSourcePostgres = "postgres"
	BenchmarkSourceChain    = "chain"
)

// BenchmarksConfig selects where industry benchmarks come from
type BenchmarksConfig struct {
	Source        string        `yaml:"source" envconfig:"SOURCE"`
	OverridesFile string        `yaml:"overrides_file" envconfig:"OVERRIDES_FILE"`
	DatabaseURL   string        `yaml:"database_url" envconfig:"DATABASE_URL"`
	QueryTimeout  time.Duration `yaml:"query_timeout" envconfig:"QUERY_TIMEOUT"`
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	EnableTracing  bool    `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`
	EnableMetrics  bool    `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO"`
}

// Load builds the configuration from defaults, an optional YAML file and
// environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	cfg := Default()

	// Load from config file if exists
	if configFile := getConfigFilePath(); configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file %s: %w", configFile, err)
		}
	}

	// Environment variables only override what they set
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays a YAML file onto cfg. Keys absent from the file keep their values.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.UnmarshalStrict(data, cfg)
}

// resolvePaths fills the executable directory when it was not configured
func (c *Config) resolvePaths() error {
	if c.Paths.ExecutableDir != "" {
		return nil
	}
	dir, err := executableDir()
	if err != nil {
		return err
	}
	c.Paths.ExecutableDir = dir
	return nil
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}

	switch strings.ToLower(c.Logging.Output) {
	case "console", "stderr", "file", "both":
	default:
		return fmt.Errorf("invalid logging output: %q", c.Logging.Output)
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/finanalytics.log"
	}

	if c.Engine.Workers < 0 {
		return fmt.Errorf("engine workers must not be negative")
	}

	switch c.Engine.DefaultLanguage {
	case "en", "ar":
	default:
		return fmt.Errorf("unsupported default language: %q", c.Engine.DefaultLanguage)
	}

	if c.Engine.StoredRuns <= 0 {
		return fmt.Errorf("engine stored runs must be positive")
	}

	if c.Valuation.DiscountRate <= c.Valuation.TerminalGrowth {
		return fmt.Errorf("discount rate %.4f must exceed terminal growth %.4f",
			c.Valuation.DiscountRate, c.Valuation.TerminalGrowth)
	}

	switch c.Benchmarks.Source {
	case BenchmarkSourceStatic:
	case BenchmarkSourcePostgres, BenchmarkSourceChain:
		if c.Benchmarks.DatabaseURL == "" {
			return fmt.Errorf("benchmark source %q requires a database url", c.Benchmarks.Source)
		}
	default:
		return fmt.Errorf("unknown benchmark source: %q", c.Benchmarks.Source)
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("telemetry sample ratio must be within [0, 1]")
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if explicit := os.Getenv(ConfigFileEnv); explicit != "" {
		return explicit
	}

	// Check for config file in common locations
	locations := []string{
		"finanalytics.yaml",
		"configs/finanalytics.yaml",
		"../configs/finanalytics.yaml",
	}

	for _, location := range locations {
		if FileExists(location) {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			MaxBodyBytes:    8 << 20,
			ShutdownTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     20,
				Burst:   40,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/finanalytics.log",
		},
		Paths: PathsConfig{
			DataDir:    "data",
			ExportsDir: "data/exports",
			LogsDir:    "logs",
		},
		Engine: EngineConfig{
			Workers:         0, // runtime.NumCPU
			RunTimeout:      2 * time.Minute,
			DefaultLanguage: "en",
			HistoryCharts:   true,
			MaxStatements:   20,
			StoredRuns:      100,
		},
		Valuation: ValuationConfig{
			DiscountRate:       0.12,
			TerminalGrowth:     0.03,
			RiskFreeRate:       0.05,
			EquityRiskPremium:  0.06,
			Beta:               1.0,
			FallbackTaxRate:    0.15,
			TargetDebtToEBITDA: 3.0,
			ForecastHorizon:    5,
		},
		Benchmarks: BenchmarksConfig{
			Source:       BenchmarkSourceStatic,
			QueryTimeout: 5 * time.Second,
		},
		Telemetry: TelemetryConfig{
			Environment:    "development",
			EnableTracing:  true,
			EnableMetrics:  true,
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
	}
}
