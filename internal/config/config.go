// Package config loads contentaudit settings from TOML files and the
// environment.
//
// Sources are applied in increasing precedence:
//
//  1. built-in defaults
//  2. the global file, $XDG_CONFIG_HOME/contentaudit/config.toml
//  3. the project file, ./.contentaudit.toml
//  4. an explicit --config file (must exist)
//  5. CONTENTFUL_* environment variables
//
// Command-line flags are applied on top by the CLI. A key only overrides
// lower layers when it is present in a file, so an explicit zero value
// ("single_page = false") still wins.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/contentaudit/pkg/audit"
	"github.com/matzehuels/contentaudit/pkg/contentful"
	apperrors "github.com/matzehuels/contentaudit/pkg/errors"
	"github.com/matzehuels/contentaudit/pkg/report"
)

const (
	appName = "contentaudit"

	// ProjectFile is looked up in the working directory.
	ProjectFile = ".contentaudit.toml"

	// DefaultListen is the address the API server binds to.
	DefaultListen = "127.0.0.1:8080"
)

// Environment variables read by Load.
const (
	EnvToken       = "CONTENTFUL_MANAGEMENT_TOKEN"
	EnvSpace       = "CONTENTFUL_SPACE_ID"
	EnvEnvironment = "CONTENTFUL_ENVIRONMENT"
	EnvBaseURL     = "CONTENTFUL_BASE_URL"
)

// Config holds every setting.
type Config struct {
	Token       string `toml:"token"`
	Space       string `toml:"space"`
	Environment string `toml:"environment"`
	BaseURL     string `toml:"base_url"`
	Locale      string `toml:"locale"`

	Concurrency           int      `toml:"concurrency"`
	PageSize              int      `toml:"page_size"`
	Mode                  string   `toml:"mode"`
	ExcludeTypeSubstrings []string `toml:"exclude_type_substrings"`
	SinglePage            bool     `toml:"single_page"`

	Listen string `toml:"listen"`

	// Sources lists the files that contributed, lowest precedence first.
	Sources []string `toml:"-"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Environment:           contentful.DefaultEnvironment,
		BaseURL:               contentful.DefaultBaseURL,
		Locale:                "en-US",
		Concurrency:           audit.DefaultConcurrency,
		PageSize:              report.DefaultPageSize,
		Mode:                  string(audit.ModeDirect),
		ExcludeTypeSubstrings: audit.DefaultExcludeSubstrings,
		Listen:                DefaultListen,
	}
}

// GlobalPath returns the global config file path using the XDG standard
// (~/.config/contentaudit/config.toml).
func GlobalPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Loader describes where settings come from.
type Loader struct {
	Global    string // optional; missing file is fine
	Project   string // optional; missing file is fine
	Explicit  string // required when set
	LookupEnv func(string) (string, bool)
}

// NewLoader returns a Loader for the standard locations.
func NewLoader(explicit string) Loader {
	global, _ := GlobalPath()
	return Loader{
		Global:    global,
		Project:   ProjectFile,
		Explicit:  explicit,
		LookupEnv: os.LookupEnv,
	}
}

// Load merges every source and validates the result.
func (l Loader) Load() (*Config, error) {
	cfg := Default()
	for _, f := range []struct {
		path     string
		required bool
	}{
		{l.Global, false},
		{l.Project, false},
		{l.Explicit, true},
	} {
		if f.path == "" {
			continue
		}
		if err := cfg.mergeFile(f.path, f.required); err != nil {
			return nil, err
		}
	}
	if l.LookupEnv != nil {
		cfg.applyEnv(l.LookupEnv)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads the standard locations plus an optional explicit file.
func Load(explicit string) (*Config, error) {
	return NewLoader(explicit).Load()
}

func (c *Config) mergeFile(path string, required bool) error {
	var fc Config
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil
		}
		return apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	set := func(key string, apply func()) {
		if md.IsDefined(key) {
			apply()
		}
	}
	set("token", func() { c.Token = fc.Token })
	set("space", func() { c.Space = fc.Space })
	set("environment", func() { c.Environment = fc.Environment })
	set("base_url", func() { c.BaseURL = fc.BaseURL })
	set("locale", func() { c.Locale = fc.Locale })
	set("concurrency", func() { c.Concurrency = fc.Concurrency })
	set("page_size", func() { c.PageSize = fc.PageSize })
	set("mode", func() { c.Mode = fc.Mode })
	set("exclude_type_substrings", func() { c.ExcludeTypeSubstrings = fc.ExcludeTypeSubstrings })
	set("single_page", func() { c.SinglePage = fc.SinglePage })
	set("listen", func() { c.Listen = fc.Listen })

	c.Sources = append(c.Sources, path)
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvToken); ok && v != "" {
		c.Token = v
	}
	if v, ok := lookup(EnvSpace); ok && v != "" {
		c.Space = v
	}
	if v, ok := lookup(EnvEnvironment); ok && v != "" {
		c.Environment = v
	}
	if v, ok := lookup(EnvBaseURL); ok && v != "" {
		c.BaseURL = v
	}
}

// Validate checks values that have a fixed range. Credentials are checked
// separately by RequireCredentials since not every command needs them.
func (c *Config) Validate() error {
	if c.Concurrency < 1 || c.Concurrency > audit.MaxConcurrency {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "concurrency must be between 1 and %d, got %d", audit.MaxConcurrency, c.Concurrency)
	}
	if !report.ValidPageSize(c.PageSize) {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "page_size must be one of %v, got %d", report.PageSizes, c.PageSize)
	}
	if _, err := audit.ParseMode(c.Mode); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "mode")
	}
	if err := apperrors.ValidateBaseURL(c.BaseURL); err != nil {
		return err
	}
	if c.Environment != "" {
		if err := apperrors.ValidateID("environment", c.Environment); err != nil {
			return err
		}
	}
	return nil
}

// RequireCredentials reports a missing token or space.
func (c *Config) RequireCredentials() error {
	switch {
	case c.Token == "":
		return apperrors.New(apperrors.ErrCodeUnauthorized, "no management token (set %s, --token or token in config)", EnvToken)
	case c.Space == "":
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "no space id (set %s, --space or space in config)", EnvSpace)
	}
	return nil
}

// AuditOptions converts the settings to auditor options.
func (c *Config) AuditOptions() audit.Options {
	mode, _ := audit.ParseMode(c.Mode)
	return audit.Options{
		Mode:              mode,
		ExcludeSubstrings: c.ExcludeTypeSubstrings,
		Concurrency:       c.Concurrency,
		SinglePage:        c.SinglePage,
		Locale:            c.Locale,
	}
}

// ClientConfig converts the settings to a content platform client configuration.
func (c *Config) ClientConfig() contentful.Config {
	return contentful.Config{
		Token:         c.Token,
		SpaceID:       c.Space,
		EnvironmentID: c.Environment,
		BaseURL:       c.BaseURL,
	}
}

// Redacted returns a copy with the token masked.
func (c *Config) Redacted() *Config {
	out := *c
	if n := len(out.Token); n > 0 {
		if n > 8 {
			out.Token = out.Token[:4] + strings.Repeat("*", 8)
		} else {
			out.Token = strings.Repeat("*", 8)
		}
	}
	return &out
}

// Encode writes the settings as TOML.
func (c *Config) Encode(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// Target is the space and environment, as in "abc123/master".
func (c *Config) Target() string { return c.Space + "/" + c.Environment }

// String summarizes the effective target for logs.
func (c *Config) String() string {
	return c.Target() + " (concurrency " + strconv.Itoa(c.Concurrency) + ", mode " + c.Mode + ")"
}
