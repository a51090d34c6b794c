// Package config loads tabby settings from .tabby.yaml and TABBY_* variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"tableflip.dev/tabby/pkg/autosave"
	"tableflip.dev/tabby/pkg/calendar"
	"tableflip.dev/tabby/pkg/reminder"
	"tableflip.dev/tabby/pkg/store"
	"tableflip.dev/tabby/pkg/widget"
)

const (
	// EnvConfigPath names an extra directory searched for .tabby.yaml.
	EnvConfigPath = "TABBY_CONFIG_PATH"
	fileName      = ".tabby"
)

// Config is the resolved configuration. Paths are home-expanded.
type Config struct {
	Path        string
	Kind        string
	Documents   string
	WidgetRoot  string
	WidgetGroup string
	Reminders   string

	AutosaveDelay  time.Duration
	Rollover       autosave.Rollover
	CalendarWindow int
	CalendarBuffer int
	ReminderPrefs  reminder.Settings
	Location       *time.Location
	MCP            MCP

	v *viper.Viper
}

// MCP configures the Model Context Protocol server.
type MCP struct {
	// Transport is "http" or "stdio".
	Transport string
	Host      string
	Port      int
	Path      string
	TLSCert   string
	TLSKey    string
}

var _ store.Config = (*Config)(nil)

func (c *Config) BasePath() string { return c.Path }

func (c *Config) Backend() string { return c.Kind }

// File is the config file that was read, or "" when running on defaults.
func (c *Config) File() string { return c.v.ConfigFileUsed() }

func defaults(v *viper.Viper) {
	v.SetDefault("path", "~/.tabby/journal")
	v.SetDefault("backend", store.BackendDiskv)
	v.SetDefault("documents", "~/Documents")
	v.SetDefault("widget.root", "~/.tabby/shared")
	v.SetDefault("widget.group", widget.DefaultGroup)
	v.SetDefault("reminders.path", "~/.tabby/reminders")
	v.SetDefault("autosave.delay", autosave.DefaultDelay)
	v.SetDefault("autosave.rollover", autosave.SaveAtFire.String())
	v.SetDefault("calendar.window", calendar.DefaultWindow)
	v.SetDefault("calendar.buffer", calendar.DefaultBuffer)

	prefs := reminder.DefaultSettings()
	v.SetDefault("reminders.intention.on", prefs.IntentionOn)
	v.SetDefault("reminders.intention.at", prefs.IntentionAt.String())
	v.SetDefault("reminders.reflection.on", prefs.ReflectionOn)
	v.SetDefault("reminders.reflection.at", prefs.ReflectionAt.String())
	v.SetDefault("timezone", "")

	v.SetDefault("mcp.transport", "http")
	v.SetDefault("mcp.host", "127.0.0.1")
	v.SetDefault("mcp.port", 8080)
	v.SetDefault("mcp.path", "/mcp")
	v.SetDefault("mcp.tls.cert", "")
	v.SetDefault("mcp.tls.key", "")
}

// Load reads .tabby.yaml from $TABBY_CONFIG_PATH, the working directory or
// $HOME, in that order, and overlays TABBY_* environment variables.
func Load() (*Config, error) {
	v := viper.New()
	defaults(v)
	v.SetConfigName(fileName) // .yaml is implicit
	v.SetEnvPrefix("TABBY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if override := os.Getenv(EnvConfigPath); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	v.AddConfigPath("$HOME")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	c := &Config{
		Kind:           strings.ToLower(v.GetString("backend")),
		WidgetGroup:    v.GetString("widget.group"),
		AutosaveDelay:  v.GetDuration("autosave.delay"),
		CalendarWindow: v.GetInt("calendar.window"),
		CalendarBuffer: v.GetInt("calendar.buffer"),
		v:              v,
	}

	var err error
	for key, dst := range map[string]*string{
		"path":           &c.Path,
		"documents":      &c.Documents,
		"widget.root":    &c.WidgetRoot,
		"reminders.path": &c.Reminders,
	} {
		if *dst, err = expand(v.GetString(key)); err != nil {
			return nil, fmt.Errorf("config: %s: %w", key, err)
		}
	}

	if c.Rollover, err = autosave.ParseRollover(v.GetString("autosave.rollover")); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	c.ReminderPrefs.IntentionOn = v.GetBool("reminders.intention.on")
	c.ReminderPrefs.ReflectionOn = v.GetBool("reminders.reflection.on")
	if c.ReminderPrefs.IntentionAt, err = reminder.ParseClock(v.GetString("reminders.intention.at")); err != nil {
		return nil, fmt.Errorf("config: reminders.intention.at: %w", err)
	}
	if c.ReminderPrefs.ReflectionAt, err = reminder.ParseClock(v.GetString("reminders.reflection.at")); err != nil {
		return nil, fmt.Errorf("config: reminders.reflection.at: %w", err)
	}

	c.MCP = MCP{
		Transport: strings.ToLower(strings.TrimSpace(v.GetString("mcp.transport"))),
		Host:      strings.TrimSpace(v.GetString("mcp.host")),
		Port:      v.GetInt("mcp.port"),
		Path:      strings.TrimSpace(v.GetString("mcp.path")),
	}
	for key, dst := range map[string]*string{
		"mcp.tls.cert": &c.MCP.TLSCert,
		"mcp.tls.key":  &c.MCP.TLSKey,
	} {
		if raw := strings.TrimSpace(v.GetString(key)); raw != "" {
			if *dst, err = expand(raw); err != nil {
				return nil, fmt.Errorf("config: %s: %w", key, err)
			}
		}
	}

	c.Location = time.Local
	if tz := strings.TrimSpace(v.GetString("timezone")); tz != "" {
		if c.Location, err = time.LoadLocation(tz); err != nil {
			return nil, fmt.Errorf("config: timezone: %w", err)
		}
	}
	return c, nil
}

func expand(p string) (string, error) {
	p, err := homedir.Expand(strings.TrimSpace(p))
	if err != nil {
		return "", err
	}
	return filepath.Clean(p), nil
}

// SaveReminders stores prefs and writes the config file. Without a config
// file one is created in $TABBY_CONFIG_PATH or $HOME.
func (c *Config) SaveReminders(prefs reminder.Settings) error {
	c.v.Set("reminders.intention.on", prefs.IntentionOn)
	c.v.Set("reminders.intention.at", prefs.IntentionAt.String())
	c.v.Set("reminders.reflection.on", prefs.ReflectionOn)
	c.v.Set("reminders.reflection.at", prefs.ReflectionAt.String())
	c.ReminderPrefs = prefs

	target := c.v.ConfigFileUsed()
	if target == "" {
		dir := os.Getenv(EnvConfigPath)
		if dir == "" {
			home, err := homedir.Dir()
			if err != nil {
				return fmt.Errorf("config: locate home: %w", err)
			}
			dir = home
		}
		target = filepath.Join(dir, fileName+".yaml")
	}
	if err := c.v.WriteConfigAs(target); err != nil {
		return fmt.Errorf("config: write %s: %w", target, err)
	}
	return nil
}
