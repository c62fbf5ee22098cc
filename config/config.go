package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config is read from DEVGUIDE_* environment variables; command line flags
// take precedence.
type Config struct {
	Stdio           bool          `env:"STDIO" envDefault:"true"`
	HTTPAddr        string        `env:"HTTP_ADDR"`
	MCPEndpoint     string        `env:"MCP_ENDPOINT" envDefault:"/mcp"`
	TableFile       string        `env:"TABLE_FILE"`
	ContentURL      string        `env:"CONTENT_URL"`
	ContentSelector string        `env:"CONTENT_SELECTOR" envDefault:"main"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	MaxSessions     int           `env:"MAX_SESSIONS" envDefault:"10000"`
}

const envPrefix = "DEVGUIDE_"

// Load parses the environment and then args.
func Load(args []string, environ map[string]string) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{
		Prefix:      envPrefix,
		Environment: environ,
	})
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}

	fs := flag.NewFlagSet("devguide", flag.ContinueOnError)
	fs.BoolVar(&cfg.Stdio, "stdio", cfg.Stdio, "Run in stdio mode")
	fs.StringVar(&cfg.HTTPAddr, "http", cfg.HTTPAddr, "HTTP server address (e.g., ':8080')")
	fs.StringVar(&cfg.MCPEndpoint, "mcp-endpoint", cfg.MCPEndpoint, "Path of the MCP endpoint in HTTP mode")
	fs.StringVar(&cfg.TableFile, "table", cfg.TableFile, "YAML file extending the page table")
	fs.StringVar(&cfg.ContentURL, "content-url", cfg.ContentURL, "Scrape documents from this site instead of the embedded ones")
	fs.StringVar(&cfg.ContentSelector, "selector", cfg.ContentSelector, "CSS selector of the document body when scraping")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "Idle time after which a session is dropped")
	fs.IntVar(&cfg.MaxSessions, "max-sessions", cfg.MaxSessions, "Maximum number of sessions kept in memory")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.HTTPAddr != "" && (c.MCPEndpoint == "" || c.MCPEndpoint[0] != '/') {
		return fmt.Errorf("mcp endpoint must start with '/': %q", c.MCPEndpoint)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}

// Logger builds a production logger at the configured level. In stdio mode
// stdout carries the protocol, so logs always go to stderr.
func (c Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}
