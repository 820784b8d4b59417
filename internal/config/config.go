package config

import (
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultEndpoint is where the classification service listens when run locally.
	DefaultEndpoint = "http://localhost:8000"

	// DefaultTimeout bounds a single lookup request. The service fetches and
	// analyses the page before it answers, so this is generous.
	DefaultTimeout = 30 * time.Second

	// DefaultBatchSize is the number of URLs checked at once.
	DefaultBatchSize = 10

	// AppName is the application name used for XDG directory paths.
	AppName = "catchphish"

	// DefaultUserAgent identifies catchphish in HTTP requests.
	DefaultUserAgent = "catchphish/1.0 (+https://github.com/nao1215/catchphish)"

	// DefaultMaxBodySize limits how much of a response is read.
	DefaultMaxBodySize = 1 * 1024 * 1024 // 1MB

	// DefaultTorStartupTimeout is the maximum time to wait for the embedded
	// Tor daemon to bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute
)

// Environment variables read by ApplyEnv.
const (
	EnvEndpoint = "CATCHPHISH_ENDPOINT"
	EnvProxy    = "CATCHPHISH_PROXY"
	EnvProfile  = "CATCHPHISH_PROFILE"
)

// Config holds all configuration options for catchphish.
// It is populated from the config file, the environment and CLI flags, in
// that order of increasing precedence, and passed down explicitly.
type Config struct {
	// Endpoint is the base URL of the classification service.
	Endpoint string

	// Timeout is the timeout of a single lookup request.
	// Zero means no timeout: a stalled request keeps the view loading.
	Timeout time.Duration

	// ProxyAddress routes lookups through a SOCKS5 proxy ("host:port").
	// Empty means a direct connection.
	ProxyAddress string

	// UseTor starts an embedded Tor daemon and routes lookups through it.
	UseTor bool

	// TorStartupTimeout is the maximum time to wait for the embedded Tor
	// daemon to bootstrap. Only used when UseTor is true.
	TorStartupTimeout time.Duration

	// Headers are added to every lookup request.
	Headers map[string]string

	// Cookie is sent with every lookup request.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string

	// Verbose enables detailed log output using slog.LevelDebug.
	Verbose bool

	// BatchSize is the number of URLs checked concurrently.
	BatchSize int

	// ConfigFilePath is the path to the configuration file.
	// If empty, .catchphish is searched in the current directory and then
	// in the user's home directory.
	ConfigFilePath string

	// Profile selects a named profile from the configuration file.
	Profile string

	// JSONReport enables JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// Targets is the list of URLs to check.
	Targets []string

	// DBDir is the directory of the SQLite history database.
	// Defaults to the XDG data directory (~/.local/share/catchphish on Linux).
	DBDir string

	// SaveToDB saves every successful lookup to the history database.
	SaveToDB bool

	// UserAgent is the User-Agent header sent with lookup requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes.
	// Set to 0 to use the default.
	MaxBodySize int64

	// LatestOnly makes the interactive view cancel superseded searches and
	// ignore their responses.
	LatestOnly bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Endpoint:          DefaultEndpoint,
		Timeout:           DefaultTimeout,
		TorStartupTimeout: DefaultTorStartupTimeout,
		BatchSize:         DefaultBatchSize,
		DBDir:             XDGDataDir(),
		SaveToDB:          true,
		UserAgent:         DefaultUserAgent,
		MaxBodySize:       DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for catchphish.
// On Linux: ~/.local/share/catchphish
// On macOS: ~/Library/Application Support/catchphish
// On Windows: %LOCALAPPDATA%\catchphish
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for catchphish.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGStateDir returns the XDG state directory for catchphish, where the
// interactive view writes its log.
func XDGStateDir() string {
	return filepath.Join(xdg.StateHome, AppName)
}

// ApplyProfile copies the non-empty settings of p into c.
func (c *Config) ApplyProfile(p Profile) {
	if p.Endpoint != "" {
		c.Endpoint = p.Endpoint
	}
	if p.Timeout > 0 {
		c.Timeout = p.Timeout
	}
	if p.ProxyAddress != "" {
		c.ProxyAddress = p.ProxyAddress
	}
	if p.Cookie != "" {
		c.Cookie = p.Cookie
	}
	if p.UserAgent != "" {
		c.UserAgent = p.UserAgent
	}
	if len(p.Headers) > 0 {
		if c.Headers == nil {
			c.Headers = make(map[string]string, len(p.Headers))
		}
		for k, v := range p.Headers {
			c.Headers[k] = v
		}
	}
}

// ApplyEnv overrides c with the CATCHPHISH_* environment variables.
// lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvEndpoint); ok && strings.TrimSpace(v) != "" {
		c.Endpoint = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvProxy); ok && strings.TrimSpace(v) != "" {
		c.ProxyAddress = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvProfile); ok && c.Profile == "" {
		c.Profile = strings.TrimSpace(v)
	}
}

// Validate checks if the configuration is valid for sending lookups.
// It returns the first problem found.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return ErrEmptyEndpoint
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidEndpoint
	}

	if c.Timeout < 0 {
		return ErrInvalidTimeout
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.UseTor && c.ProxyAddress != "" {
		return ErrConflictingProxy
	}

	if c.UseTor && c.TorStartupTimeout <= 0 {
		return ErrInvalidTorStartupTimeout
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}

// ValidateTargets checks the configuration for a check run: Validate plus
// at least one target.
func (c *Config) ValidateTargets() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	return c.Validate()
}
