package viewer

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Watch modes.
const (
	WatchOff    = "off"
	WatchPoll   = "poll"
	WatchNotify = "notify"
)

// Config of the viewer.
// Values are read by viper from a JSON, YAML or TOML file and
// can be overridden by MDV_ prefixed environment variables, e.g. MDV_PORT.
type Config struct {
	// Dir is the served directory.
	Dir  string `mapstructure:"dir"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// TemplatesDir and StaticDir replace the embedded assets if set.
	TemplatesDir   string        `mapstructure:"templates_dir"`
	StaticDir      string        `mapstructure:"static_dir"`
	UnsafeHTML     bool          `mapstructure:"unsafe_html"`
	HighlightStyle string        `mapstructure:"highlight_style"`
	Watch          string        `mapstructure:"watch"`
	WatchInterval  time.Duration `mapstructure:"watch_interval"`
	// MetricsAddr is the listen address of the Prometheus endpoint, disabled if empty.
	MetricsAddr      string `mapstructure:"metrics_addr"`
	LogLevel         string `mapstructure:"log_level"`
	LogPretty        bool   `mapstructure:"log_pretty"`
	MaxSearchResults int    `mapstructure:"max_search_results"`
	IgnoreFile       string `mapstructure:"ignore_file"`
	// BaseURL is used for absolute links in feeds.
	BaseURL string `mapstructure:"base_url"`
}

var defaults = map[string]interface{}{
	"dir":                ".",
	"host":               "localhost",
	"port":               5000,
	"templates_dir":      "",
	"static_dir":         "",
	"unsafe_html":        false,
	"highlight_style":    "github",
	"watch":              WatchOff,
	"watch_interval":     2 * time.Second,
	"metrics_addr":       "",
	"log_level":          "info",
	"log_pretty":         false,
	"max_search_results": 100,
	"ignore_file":        ".mdvignore",
	"base_url":           "",
}

// ParseConfigFile reads the configuration from path.
// An empty path results in the default configuration, environment overrides apply in both cases.
func ParseConfigFile(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix("MDV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		err := v.ReadInConfig()
		if err != nil {
			return nil, fmt.Errorf("reading config file failed: %w", err)
		}
	}

	config := new(Config)
	err := v.Unmarshal(config)
	if err != nil {
		return nil, fmt.Errorf("decoding config failed: %w", err)
	}

	return config, nil
}

var (
	ErrDirUnset       = fmt.Errorf("dir must be set")
	ErrNotADirectory  = fmt.Errorf("not a directory")
	ErrBadPort        = fmt.Errorf("port must be between 1 and 65535")
	ErrBadWatchMode   = fmt.Errorf("watch must be one of %q, %q or %q", WatchOff, WatchPoll, WatchNotify)
	ErrBadInterval    = fmt.Errorf("watch_interval must be positive")
	ErrBadSearchLimit = fmt.Errorf("max_search_results must be positive")
)

// Validate returns the first problem found in the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Dir) == "" {
		return ErrDirUnset
	}
	info, err := os.Stat(c.Dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %w", c.Dir, ErrNotADirectory)
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%d: %w", c.Port, ErrBadPort)
	}

	switch c.Watch {
	case WatchOff, WatchPoll, WatchNotify:
	default:
		return fmt.Errorf("%q: %w", c.Watch, ErrBadWatchMode)
	}
	if c.Watch != WatchOff && c.WatchInterval <= 0 {
		return ErrBadInterval
	}

	if c.MaxSearchResults < 1 {
		return ErrBadSearchLimit
	}

	return nil
}

// Addr returns the listen address of the viewer.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
