package config

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nerviz/viewrouter/internal/errors"
	"github.com/nerviz/viewrouter/pkg/history"
	"github.com/nerviz/viewrouter/pkg/router"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "viewrouter.json"

	// DefaultPort is the default server port.
	DefaultPort = 8080

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultAssetPrefix is the URL prefix assets are served under.
	DefaultAssetPrefix = "/assets/"

	// DefaultMetricsPath is where Prometheus metrics are exposed.
	DefaultMetricsPath = "/metrics"
)

// Environment variables that override the file.
const (
	EnvHistory  = "VIEWROUTER_HISTORY"
	EnvPort     = "VIEWROUTER_PORT"
	EnvLogLevel = "VIEWROUTER_LOG_LEVEL"
)

// Config represents viewrouter.json.
type Config struct {
	// Name is the application name, used as the document title prefix.
	Name string `json:"name,omitempty"`

	// History is the history mode: "web" (default) or "hash".
	History string `json:"history,omitempty"`

	// Routes is the ordered route table.
	Routes router.RouteTable `json:"routes"`

	Server  ServerConfig  `json:"server"`
	Assets  AssetsConfig  `json:"assets"`
	Logging LoggingConfig `json:"logging"`
	Metrics MetricsConfig `json:"metrics"`
	Tracing TracingConfig `json:"tracing"`

	configPath string
}

// ServerConfig contains HTTP listener settings.
type ServerConfig struct {
	Host string `json:"host,omitempty"`
	Port int    `json:"port,omitempty"`
}

// AssetsConfig selects where static assets come from. When S3 is set the
// directory is ignored.
type AssetsConfig struct {
	// Dir is a local directory, relative to the config file.
	Dir string `json:"dir,omitempty"`

	// Prefix is the URL prefix (default: "/assets/").
	Prefix string `json:"prefix,omitempty"`

	S3 *S3Config `json:"s3,omitempty"`
}

// S3Config describes an asset bucket.
type S3Config struct {
	Bucket    string `json:"bucket"`
	Prefix    string `json:"prefix,omitempty"`
	Region    string `json:"region,omitempty"`
	Endpoint  string `json:"endpoint,omitempty"`
	PathStyle bool   `json:"pathStyle,omitempty"`
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	// Level is debug, info, warn or error (default: info).
	Level string `json:"level,omitempty"`

	// Format is text or json (default: text).
	Format string `json:"format,omitempty"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled"`
	Path      string `json:"path,omitempty"`
	Namespace string `json:"namespace,omitempty"`
}

// TracingConfig controls the OpenTelemetry navigation middleware.
type TracingConfig struct {
	Enabled    bool   `json:"enabled"`
	TracerName string `json:"tracerName,omitempty"`
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		Name:    "viewrouter",
		History: "web",
		Routes: router.RouteTable{
			{Path: "/", View: "main"},
			{Path: "/config", View: "config"},
		},
		Server: ServerConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		Assets: AssetsConfig{
			Prefix: DefaultAssetPrefix,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Path:      DefaultMetricsPath,
			Namespace: "viewrouter",
		},
		Tracing: TracingConfig{
			TracerName: "viewrouter",
		},
	}
}

// Load reads viewrouter.json from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from path. Fields missing from the file keep
// their defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("R101").
				WithDetail("No " + filepath.Base(path) + " found in " + filepath.Dir(path)).
				WithSuggestion("Run 'viewrouter init' to create one")
		}
		return nil, errors.New("R102").Wrap(err)
	}

	cfg := New()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, decodeError(path, data, err)
	}

	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

// decodeError points a JSON error at its line and column when possible.
func decodeError(path string, data []byte, err error) error {
	d := errors.New("R102").Wrap(err)

	var offset int64 = -1
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case stderrors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
		d.WithSuggestion("Check for trailing commas and unquoted keys")
	case stderrors.As(err, &typeErr):
		offset = typeErr.Offset
		d.WithSuggestion(fmt.Sprintf("%q must be a %s", typeErr.Field, typeErr.Type))
	case strings.HasPrefix(err.Error(), "json: unknown field"):
		d.WithSuggestion("Remove the unknown field or check its spelling")
	}

	if offset >= 0 {
		line, col := position(data, offset)
		d.WithLocation(path, line, col)
	}
	return d
}

// position converts a byte offset into a 1-based line and column.
func position(data []byte, offset int64) (line, col int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	prefix := data[:offset]
	line = bytes.Count(prefix, []byte("\n")) + 1
	col = len(prefix) - bytes.LastIndexByte(prefix, '\n')
	return line, col
}

// ApplyEnv applies environment overrides using lookup (usually os.LookupEnv).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvHistory); ok && v != "" {
		c.History = v
	}
	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("R104").
				WithDetail(fmt.Sprintf("%s=%q is not a number", EnvPort, v)).
				Wrap(err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Logging.Level = v
	}
	return nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("R102").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.FromError(err, "R300")
	}
	c.configPath = path
	return nil
}

// Path returns the path the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

func (c *Config) applyDefaults() {
	if c.History == "" {
		c.History = "web"
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Assets.Prefix == "" {
		c.Assets.Prefix = DefaultAssetPrefix
	}
	if !strings.HasSuffix(c.Assets.Prefix, "/") {
		c.Assets.Prefix += "/"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "viewrouter"
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = "viewrouter"
	}
}

// Validate checks the configuration, including the route table.
func (c *Config) Validate() error {
	if _, err := history.ParseMode(c.History); err != nil {
		return errors.New("R103").
			WithDetail(fmt.Sprintf("history is %q; it must be \"web\" or \"hash\"", c.History)).
			Wrap(err)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("R104").
			WithDetail(fmt.Sprintf("Port %d is outside 0-65535", c.Server.Port))
	}
	if _, err := router.Compile(c.Routes); err != nil {
		return errors.FromRouter(err)
	}
	if c.Assets.S3 != nil && c.Assets.S3.Bucket == "" {
		return errors.New("R110").
			WithDetail("assets.s3 is set but has no bucket").
			WithExample(`"assets": {"s3": {"bucket": "my-site", "prefix": "assets"}}`)
	}
	if !strings.HasPrefix(c.Assets.Prefix, "/") {
		return errors.New("R110").
			WithDetail(fmt.Sprintf("assets.prefix %q must start with \"/\"", c.Assets.Prefix))
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return errors.New("R111").Wrap(err)
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return errors.New("R111").
			WithDetail(fmt.Sprintf("logging.format is %q; it must be text or json", c.Logging.Format))
	}
	return nil
}

// HistoryMode returns the parsed history mode.
func (c *Config) HistoryMode() (history.Mode, error) {
	return history.ParseMode(c.History)
}

// RouteTable returns a copy of the configured routes.
func (c *Config) RouteTable() router.RouteTable {
	out := make(router.RouteTable, len(c.Routes))
	copy(out, c.Routes)
	return out
}

// Address returns host:port for the listener.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// AssetsPath returns the asset directory resolved against the config file,
// or "" when assets come from S3 or are not configured.
func (c *Config) AssetsPath() string {
	if c.Assets.S3 != nil || c.Assets.Dir == "" {
		return ""
	}
	if filepath.IsAbs(c.Assets.Dir) {
		return c.Assets.Dir
	}
	return filepath.Join(c.Dir(), c.Assets.Dir)
}

// ParseLevel parses a slog level name.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

// NewLogger builds a logger writing to w with the configured level and
// format.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := ParseLevel(c.Logging.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if c.Logging.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With("app", c.Name)
}

// Exists reports whether dir contains a config file.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up from startDir to the directory holding
// viewrouter.json.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("R101").
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory").
				WithSuggestion("Run 'viewrouter init' to create one")
		}
		dir = parent
	}
}
