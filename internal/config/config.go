// Package config loads sentidash settings from defaults, a .env file, an
// HCL or YAML config file and SENTIDASH_* environment variables, in that
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configDir  = ".sentidash"
	configFile = "config.hcl"
	envPrefix  = "SENTIDASH_"
)

// Defaults.
const (
	DefaultServer      = "http://127.0.0.1:5000"
	DefaultTimeout     = 30 * time.Second
	DefaultBurst       = 1
	DefaultDownloadDir = "."
	DefaultLogLevel    = "warn"
)

// Config holds the resolved client configuration.
type Config struct {
	Server      string
	Token       string
	Timeout     time.Duration
	RateLimit   float64 // requests per second, 0 for unlimited
	Burst       int
	DownloadDir string
	LogLevel    string
	LogFile     string

	// Source is the config file that was read, empty if none.
	Source string
}

// File is the on-disk shape of the configuration.
type File struct {
	Server      string  `hcl:"server,optional" yaml:"server,omitempty"`
	Token       string  `hcl:"token,optional" yaml:"token,omitempty"`
	Timeout     string  `hcl:"timeout,optional" yaml:"timeout,omitempty"`
	RateLimit   float64 `hcl:"rate_limit,optional" yaml:"rate_limit,omitempty"`
	Burst       int     `hcl:"burst,optional" yaml:"burst,omitempty"`
	DownloadDir string  `hcl:"download_dir,optional" yaml:"download_dir,omitempty"`
	LogLevel    string  `hcl:"log_level,optional" yaml:"log_level,omitempty"`
	LogFile     string  `hcl:"log_file,optional" yaml:"log_file,omitempty"`
}

// Options selects the sources Load reads.
type Options struct {
	// Path is an explicit config file. When empty, ~/.sentidash/config.hcl
	// is read if it exists.
	Path string
	// EnvFile is the dotenv file to read, ".env" when empty. A missing file
	// is not an error.
	EnvFile string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server:      DefaultServer,
		Timeout:     DefaultTimeout,
		Burst:       DefaultBurst,
		DownloadDir: DefaultDownloadDir,
		LogLevel:    DefaultLogLevel,
	}
}

// Load resolves the configuration from every source and validates it.
func Load(opts Options) (*Config, error) {
	cfg := Default()

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	dotenv, err := godotenv.Read(envFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading %s: %w", envFile, err)
	}
	if err := cfg.applyEnv(func(key string) (string, bool) {
		v, ok := dotenv[key]
		return v, ok
	}); err != nil {
		return nil, fmt.Errorf("%s: %w", envFile, err)
	}

	path := opts.Path
	if path == "" {
		if p, err := DefaultPath(); err == nil {
			if _, err := os.Stat(p); err == nil {
				path = p
			}
		}
	}
	if path != "" {
		f, err := ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := cfg.applyFile(f); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		cfg.Source = path
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Server, "http://") && !strings.HasPrefix(c.Server, "https://") {
		return fmt.Errorf("invalid server %q: must start with http:// or https://", c.Server)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid timeout %s: must be positive", c.Timeout)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("invalid rate_limit %g: must not be negative", c.RateLimit)
	}
	if c.Burst < 0 {
		return fmt.Errorf("invalid burst %d: must not be negative", c.Burst)
	}
	return nil
}

// File returns the on-disk form of c.
func (c *Config) File() File {
	return File{
		Server:      c.Server,
		Token:       c.Token,
		Timeout:     c.Timeout.String(),
		RateLimit:   c.RateLimit,
		Burst:       c.Burst,
		DownloadDir: c.DownloadDir,
		LogLevel:    c.LogLevel,
		LogFile:     c.LogFile,
	}
}

// Redacted returns a copy of c with the token masked.
func (c *Config) Redacted() *Config {
	out := *c
	if out.Token != "" {
		out.Token = "********"
	}
	return &out
}

func (c *Config) applyFile(f *File) error {
	if f.Server != "" {
		c.Server = f.Server
	}
	if f.Token != "" {
		c.Token = f.Token
	}
	if f.Timeout != "" {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout: %w", err)
		}
		c.Timeout = d
	}
	if f.RateLimit != 0 {
		c.RateLimit = f.RateLimit
	}
	if f.Burst != 0 {
		c.Burst = f.Burst
	}
	if f.DownloadDir != "" {
		c.DownloadDir = f.DownloadDir
	}
	if f.LogLevel != "" {
		c.LogLevel = f.LogLevel
	}
	if f.LogFile != "" {
		c.LogFile = f.LogFile
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(envPrefix + name)
		if !ok || v == "" {
			return "", false
		}
		return v, true
	}

	if v, ok := get("SERVER"); ok {
		c.Server = v
	}
	if v, ok := get("TOKEN"); ok {
		c.Token = v
	}
	if v, ok := get("TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sTIMEOUT: %w", envPrefix, err)
		}
		c.Timeout = d
	}
	if v, ok := get("RATE_LIMIT"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %sRATE_LIMIT: %w", envPrefix, err)
		}
		c.RateLimit = f
	}
	if v, ok := get("BURST"); ok {
		i, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sBURST: %w", envPrefix, err)
		}
		c.Burst = i
	}
	if v, ok := get("DOWNLOAD_DIR"); ok {
		c.DownloadDir = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := get("LOG_FILE"); ok {
		c.LogFile = v
	}
	return nil
}

// ReadFile decodes a config file. The format follows the extension:
// .hcl or .yaml/.yml.
func ReadFile(path string) (*File, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file: %w", err)
	}

	var f File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		if err := hclsimple.Decode(filepath.Base(path), src, nil, &f); err != nil {
			var diags hcl.Diagnostics
			if errors.As(err, &diags) {
				for _, diag := range diags {
					if diag.Severity == hcl.DiagError {
						return nil, fmt.Errorf("HCL parse error at %s: %s", diag.Subject, diag.Detail)
					}
				}
			}
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(src, &f); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	return &f, nil
}

// EncodeHCL renders cfg in config file syntax.
func EncodeHCL(cfg *Config) []byte {
	f := hclwrite.NewEmptyFile()
	gohcl.EncodeIntoBody(cfg.File(), f.Body())
	return f.Bytes()
}

// WriteFile writes cfg as HCL to path with 0600 permissions.
func WriteFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("cannot create config directory %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, EncodeHCL(cfg), 0600); err != nil {
		return fmt.Errorf("cannot write config file %s: %w", path, err)
	}
	return nil
}

// DefaultPath returns ~/.sentidash/config.hcl.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, configDir, configFile), nil
}
