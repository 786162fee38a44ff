package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Input     InputConfig     `yaml:"input" mapstructure:"input"`
	Oracle    OracleConfig    `yaml:"oracle" mapstructure:"oracle"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	PdfToText PdfToTextConfig `yaml:"pdftotext" mapstructure:"pdftotext"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Notion    NotionConfig    `yaml:"notion" mapstructure:"notion"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// InputConfig configures where invoices come from.
type InputConfig struct {
	Dir            string   `yaml:"dir" mapstructure:"dir"`
	Extensions     []string `yaml:"extensions" mapstructure:"extensions"`
	Encoding       string   `yaml:"encoding" mapstructure:"encoding"`
	FTPURL         string   `yaml:"ftp_url" mapstructure:"ftp_url"`
	FTPTimeoutSecs int      `yaml:"ftp_timeout_secs" mapstructure:"ftp_timeout_secs"`
}

// OracleConfig configures the extraction backend.
type OracleConfig struct {
	Provider    string `yaml:"provider" mapstructure:"provider"`
	Attempts    int    `yaml:"attempts" mapstructure:"attempts"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	BinPath     string `yaml:"bin_path" mapstructure:"bin_path"`
	Model       string `yaml:"model" mapstructure:"model"`
	Key         string `yaml:"key" mapstructure:"key"`
	MaxTokens   int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	ScriptPath  string `yaml:"script_path" mapstructure:"script_path"`
}

// OutputConfig configures result files.
type OutputConfig struct {
	CSVPath      string `yaml:"csv_path" mapstructure:"csv_path"`
	DebugCSVPath string `yaml:"debug_csv_path" mapstructure:"debug_csv_path"`
}

// PdfToTextConfig configures PDF text extraction.
type PdfToTextConfig struct {
	BinPath string `yaml:"bin_path" mapstructure:"bin_path"`
}

// StoreConfig configures the run-history database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// NotionConfig holds Notion API credentials and the review database ID.
type NotionConfig struct {
	Token    string `yaml:"token" mapstructure:"token"`
	ReviewDB string `yaml:"review_db" mapstructure:"review_db"`
}

// ServerConfig configures the HTTP intake server.
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
	v.SetEnvPrefix("INVOICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("input.dir", "invoices")
	v.SetDefault("input.extensions", []string{".pdf", ".txt"})
	v.SetDefault("input.ftp_timeout_secs", 15)
	v.SetDefault("oracle.provider", "exec")
	v.SetDefault("oracle.attempts", 1)
	v.SetDefault("oracle.timeout_secs", 30)
	v.SetDefault("oracle.bin_path", "claude")
	v.SetDefault("oracle.model", "claude-haiku-4-5-20251001")
	v.SetDefault("oracle.max_tokens", 1024)
	v.SetDefault("output.csv_path", "invoice_analysis.csv")
	v.SetDefault("output.debug_csv_path", "singleFile.csv")
	v.SetDefault("pdftotext.bin_path", "pdftotext")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "invoice-cli.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

// Validate checks that the fields the given command mode depends on are set.
// Modes map to subcommands: run, debug, fetch, review, serve.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "run", "debug":
		problems = c.oracleProblems()
	case "serve":
		problems = c.oracleProblems()
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	case "fetch":
		if c.Input.FTPURL == "" {
			problems = append(problems, "input.ftp_url is required")
		}
	case "review":
		if c.Notion.Token == "" {
			problems = append(problems, "notion.token is required")
		}
		if c.Notion.ReviewDB == "" {
			problems = append(problems, "notion.review_db is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) oracleProblems() []string {
	var problems []string
	switch c.Oracle.Provider {
	case "exec":
		if c.Oracle.BinPath == "" {
			problems = append(problems, "oracle.bin_path is required")
		}
	case "api":
		if c.Oracle.Key == "" {
			problems = append(problems, "oracle.key is required")
		}
		if c.Oracle.Model == "" {
			problems = append(problems, "oracle.model is required")
		}
	case "script":
		if c.Oracle.ScriptPath == "" {
			problems = append(problems, "oracle.script_path is required")
		}
	default:
		problems = append(problems, fmt.Sprintf("oracle.provider must be one of exec, api, script (got %q)", c.Oracle.Provider))
	}
	if c.Oracle.Attempts < 1 || c.Oracle.Attempts > 10 {
		problems = append(problems, "oracle.attempts must be between 1 and 10")
	}
	if c.Oracle.TimeoutSecs <= 0 {
		problems = append(problems, "oracle.timeout_secs must be > 0")
	}
	return problems
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
