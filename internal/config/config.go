package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for tempoit, stored in ~/.tempoit/config.yaml.
// Every key can be overridden with a TEMPOIT_ environment variable, e.g.
// TEMPOIT_PASSWORD or TEMPOIT_TIMEW_BINARY.
type Config struct {
	// BaseURL is the Jira server root, without trailing slash.
	BaseURL  string `mapstructure:"base_url" yaml:"base_url"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
	// Token is a Jira personal access token. When set, Password is unused.
	Token string `mapstructure:"token" yaml:"token"`
	// TicketRegex selects the tag holding the issue key. Matched case-insensitively.
	TicketRegex string `mapstructure:"ticket_regex" yaml:"ticket_regex"`
	// Timezone is the IANA zone used to pick the worklog date. Empty = system local.
	Timezone string        `mapstructure:"timezone" yaml:"timezone"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Timew    TimewConfig   `mapstructure:"timew" yaml:"timew"`
	Journal  JournalConfig `mapstructure:"journal" yaml:"journal"`
}

// TimewConfig holds the timewarrior integration settings.
type TimewConfig struct {
	Binary string `mapstructure:"binary" yaml:"binary"`
	// Filter is passed to `timew export`.
	Filter     []string `mapstructure:"filter" yaml:"filter"`
	LoggedTag  string   `mapstructure:"logged_tag" yaml:"logged_tag"`
	PendingTag string   `mapstructure:"pending_tag" yaml:"pending_tag"`
	FailedTag  string   `mapstructure:"failed_tag" yaml:"failed_tag"`
}

// JournalConfig locates the local upload journal. An empty path disables it.
type JournalConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

const (
	DefaultBaseURL     = "https://tasks.opencraft.com"
	DefaultTicketRegex = `^(?i:FAL|SE|BB|OC|MNG|BIZ|ADMIN)-\d+$`
	DefaultTimeout     = 30 * time.Second
	DefaultBinary      = "timew"
	DefaultJournalPath = "~/.tempoit/journal.db"
)

// Default returns a Config pre-filled with the built-in defaults.
func Default() Config {
	return Config{
		BaseURL:     DefaultBaseURL,
		TicketRegex: DefaultTicketRegex,
		Timeout:     DefaultTimeout,
		Timew: TimewConfig{
			Binary:     DefaultBinary,
			Filter:     []string{"log"},
			LoggedTag:  "logged",
			PendingTag: "log",
			FailedTag:  "logfail",
		},
		Journal: JournalConfig{Path: expandHome(DefaultJournalPath)},
	}
}

// DefaultPath returns ~/.tempoit/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".tempoit", "config.yaml"), nil
}

func newViper() *viper.Viper {
	v := viper.New()
	d := Default()
	v.SetDefault("base_url", d.BaseURL)
	v.SetDefault("username", "")
	v.SetDefault("password", "")
	v.SetDefault("token", "")
	v.SetDefault("ticket_regex", d.TicketRegex)
	v.SetDefault("timezone", "")
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("timew.binary", d.Timew.Binary)
	v.SetDefault("timew.filter", d.Timew.Filter)
	v.SetDefault("timew.logged_tag", d.Timew.LoggedTag)
	v.SetDefault("timew.pending_tag", d.Timew.PendingTag)
	v.SetDefault("timew.failed_tag", d.Timew.FailedTag)
	v.SetDefault("journal.path", DefaultJournalPath)

	v.SetEnvPrefix("tempoit")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config at path (DefaultPath when empty). On first run the
// annotated template is written and the defaults are returned.
func Load(path string) (Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return Default(), err
		}
		path = p
	}

	v := newViper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if writeErr := WriteDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
	} else {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Default(), fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Default(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}
	cfg.fillDefaults()
	return cfg, nil
}

// fillDefaults replaces zero values with built-in defaults so a partially
// filled file still yields a usable Config. The journal path is left alone:
// empty means disabled.
func (c *Config) fillDefaults() {
	d := Default()
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.TicketRegex == "" {
		c.TicketRegex = d.TicketRegex
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.Timew.Binary == "" {
		c.Timew.Binary = d.Timew.Binary
	}
	if c.Timew.LoggedTag == "" {
		c.Timew.LoggedTag = d.Timew.LoggedTag
	}
	if c.Timew.PendingTag == "" {
		c.Timew.PendingTag = d.Timew.PendingTag
	}
	if c.Timew.FailedTag == "" {
		c.Timew.FailedTag = d.Timew.FailedTag
	}
	c.Journal.Path = expandHome(c.Journal.Path)
}

// IssuePattern compiles TicketRegex.
func (c Config) IssuePattern() (*regexp.Regexp, error) {
	re, err := regexp.Compile(c.TicketRegex)
	if err != nil {
		return nil, fmt.Errorf("invalid ticket_regex %q: %w", c.TicketRegex, err)
	}
	return re, nil
}

// Location resolves Timezone; empty means the system's local zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// CheckCredentials reports whether enough is configured to log in.
func (c Config) CheckCredentials() error {
	if c.Username == "" {
		return errors.New("username is not configured")
	}
	if c.Password == "" && c.Token == "" {
		return errors.New("neither password nor token is configured (set TEMPOIT_PASSWORD or TEMPOIT_TOKEN)")
	}
	return nil
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.Password != "" {
		c.Password = "********"
	}
	if c.Token != "" {
		c.Token = "********"
	}
	return c
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
