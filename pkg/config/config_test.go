package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/tabby/pkg/autosave"
	"tableflip.dev/tabby/pkg/reminder"
)

// isolate points HOME and the config path at empty temp dirs and runs from
// one, so no real .tabby.yaml is picked up.
func isolate(t *testing.T) (home, cfgDir string) {
	t.Helper()
	homedir.DisableCache = true
	home, cfgDir = t.TempDir(), t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvConfigPath, cfgDir)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return home, cfgDir
}

func TestDefaults(t *testing.T) {
	home, _ := isolate(t)

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".tabby", "journal"), c.BasePath())
	assert.Equal(t, "diskv", c.Backend())
	assert.Equal(t, filepath.Join(home, "Documents"), c.Documents)
	assert.Equal(t, "group.tabby.journal", c.WidgetGroup)
	assert.Equal(t, 500*time.Millisecond, c.AutosaveDelay)
	assert.Equal(t, autosave.SaveAtFire, c.Rollover)
	assert.Equal(t, 365, c.CalendarWindow)
	assert.Equal(t, 90, c.CalendarBuffer)
	assert.Equal(t, reminder.DefaultSettings(), c.ReminderPrefs)
	assert.Equal(t, time.Local, c.Location)
	assert.Equal(t, MCP{Transport: "http", Host: "127.0.0.1", Port: 8080, Path: "/mcp"}, c.MCP)
	assert.Empty(t, c.File())
}

func TestFileAndEnv(t *testing.T) {
	home, cfgDir := isolate(t)
	yaml := `
path: ~/notes
backend: sqlite
autosave:
  delay: 2s
  rollover: keystroke
reminders:
  intention:
    on: true
    at: "07:15"
timezone: America/Los_Angeles
mcp:
  transport: STDIO
  port: 9090
  tls:
    cert: ~/certs/tabby.pem
`
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, ".tabby.yaml"), []byte(yaml), 0o644))
	t.Setenv("TABBY_WIDGET_GROUP", "group.from.env")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", c.Backend())
	assert.Equal(t, 2*time.Second, c.AutosaveDelay)
	assert.Equal(t, autosave.SaveAtKeystroke, c.Rollover)
	assert.True(t, c.ReminderPrefs.IntentionOn)
	assert.Equal(t, reminder.TimeOfDay{Hour: 7, Minute: 15}, c.ReminderPrefs.IntentionAt)
	assert.Equal(t, "America/Los_Angeles", c.Location.String())
	assert.Equal(t, "group.from.env", c.WidgetGroup)
	assert.Equal(t, "stdio", c.MCP.Transport)
	assert.Equal(t, 9090, c.MCP.Port)
	assert.Equal(t, "/mcp", c.MCP.Path)
	assert.Equal(t, filepath.Join(home, "certs", "tabby.pem"), c.MCP.TLSCert)
	assert.Empty(t, c.MCP.TLSKey)
	assert.NotEmpty(t, c.File())
}

func TestBadValues(t *testing.T) {
	_, cfgDir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, ".tabby.yaml"), []byte("autosave:\n  rollover: midnight\n"), 0o644))
	_, err := Load()
	assert.Error(t, err)
}

func TestSaveReminders(t *testing.T) {
	_, cfgDir := isolate(t)

	c, err := Load()
	require.NoError(t, err)
	prefs := reminder.DefaultSettings()
	prefs.ReflectionOn = true
	prefs.ReflectionAt = reminder.TimeOfDay{Hour: 22, Minute: 30}
	require.NoError(t, c.SaveReminders(prefs))
	assert.FileExists(t, filepath.Join(cfgDir, ".tabby.yaml"))

	again, err := Load()
	require.NoError(t, err)
	assert.True(t, again.ReminderPrefs.ReflectionOn)
	assert.Equal(t, "22:30", again.ReminderPrefs.ReflectionAt.String())
}
