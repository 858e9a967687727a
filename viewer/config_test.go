package viewer

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExampleConfig(t *testing.T) {
	config, err := ParseConfigFile("../config.example.yaml")
	require.NoError(t, err, "parsing example config failed")
	require.Equal(t, &Config{
		Dir:              "./docs",
		Host:             "0.0.0.0",
		Port:             8080,
		UnsafeHTML:       true,
		HighlightStyle:   "monokai",
		Watch:            WatchPoll,
		WatchInterval:    5 * time.Second,
		MetricsAddr:      "localhost:9100",
		LogLevel:         "debug",
		MaxSearchResults: 50,
		IgnoreFile:       ".mdvignore",
		BaseURL:          "https://docs.example.com",
	}, config)
}

func TestDefaultConfig(t *testing.T) {
	config, err := ParseConfigFile("")
	require.NoError(t, err)
	require.Equal(t, ".", config.Dir)
	require.Equal(t, "localhost:5000", config.Addr())
	require.Equal(t, WatchOff, config.Watch)
	require.Equal(t, 100, config.MaxSearchResults)
	require.NoError(t, config.Validate())
}

func TestConfigEnvironment(t *testing.T) {
	t.Setenv("MDV_PORT", "6000")
	t.Setenv("MDV_WATCH", WatchNotify)

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"port": 7000, "log_pretty": true}`), 0o600))

	config, err := ParseConfigFile(path)
	require.NoError(t, err)
	require.Equal(t, 6000, config.Port)
	require.Equal(t, WatchNotify, config.Watch)
	require.True(t, config.LogPretty)
}

func TestConfigMissingFile(t *testing.T) {
	_, err := ParseConfigFile(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.md")
	require.NoError(t, os.WriteFile(file, []byte("# File"), 0o600))

	valid := func() *Config {
		return &Config{Dir: ".", Port: 5000, Watch: WatchOff, MaxSearchResults: 1}
	}
	with := func(modify func(c *Config)) *Config {
		c := valid()
		modify(c)
		return c
	}

	tCases := []struct {
		name   string
		config *Config
		err    error
	}{
		{"minimal config", valid(), nil},
		{"polling", with(func(c *Config) { c.Watch, c.WatchInterval = WatchPoll, time.Second }), nil},
		{"no dir", with(func(c *Config) { c.Dir = " " }), ErrDirUnset},
		{"bad dir", with(func(c *Config) { c.Dir = "./should/not/exist" }), fs.ErrNotExist},
		{"dir is a file", with(func(c *Config) { c.Dir = file }), ErrNotADirectory},
		{"port zero", with(func(c *Config) { c.Port = 0 }), ErrBadPort},
		{"port too large", with(func(c *Config) { c.Port = 70000 }), ErrBadPort},
		{"unknown watch mode", with(func(c *Config) { c.Watch = "inotify" }), ErrBadWatchMode},
		{"no interval", with(func(c *Config) { c.Watch = WatchNotify }), ErrBadInterval},
		{"no search results", with(func(c *Config) { c.MaxSearchResults = 0 }), ErrBadSearchLimit},
	}
	for _, tCase := range tCases {
		t.Run(tCase.name, func(t *testing.T) {
			err := tCase.config.Validate()
			if tCase.err != nil {
				require.ErrorIs(t, err, tCase.err)
				return
			}
			require.NoError(t, err)
		})
	}
}
