// Package config layers command-line flags, ZAVAFLOW_* environment variables
// and an optional YAML file into one Config.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"zavaflow/internal/logging"
	"zavaflow/internal/session"
)

const (
	EnvPrefix = "ZAVAFLOW"

	defaultBackendURL = "http://127.0.0.1:8000"
	defaultTimeout    = 60 * time.Second
	minTimeout        = time.Second
	maxTimeout        = 10 * time.Minute
)

type Config struct {
	Backend BackendConfig `mapstructure:"backend"`
	UI      UIConfig      `mapstructure:"ui"`
	Log     LogConfig     `mapstructure:"log"`
}

type BackendConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type UIConfig struct {
	CompleteDelay time.Duration `mapstructure:"complete_delay"`
	IdleDelay     time.Duration `mapstructure:"idle_delay"`
	AltScreen     bool          `mapstructure:"alt_screen"`
}

type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

func Default() Config {
	return Config{
		Backend: BackendConfig{URL: defaultBackendURL, Timeout: defaultTimeout},
		UI: UIConfig{
			CompleteDelay: session.DefaultCompleteDelay,
			IdleDelay:     session.DefaultIdleDelay,
			AltScreen:     true,
		},
		Log: LogConfig{File: logging.DefaultFile(), Level: "info"},
	}
}

type binding struct {
	key  string
	flag string
}

var bindings = []binding{
	{"backend.url", "backend-url"},
	{"backend.timeout", "timeout"},
	{"ui.complete_delay", "complete-delay"},
	{"ui.idle_delay", "idle-delay"},
	{"ui.alt_screen", "alt-screen"},
	{"log.file", "log-file"},
	{"log.level", "log-level"},
}

// BindFlags registers the persistent flags on cmd and binds them into v.
func BindFlags(cmd *cobra.Command, v *viper.Viper) error {
	def := Default()
	flags := cmd.PersistentFlags()
	flags.String("config", "", "Optional YAML config file")
	flags.String("backend-url", def.Backend.URL, "Base URL of the orchestrator service")
	flags.Duration("timeout", def.Backend.Timeout, "Per-query backend timeout")
	flags.Duration("complete-delay", def.UI.CompleteDelay, "Delay before the workflow shows complete")
	flags.Duration("idle-delay", def.UI.IdleDelay, "Delay before the workflow returns to idle")
	flags.Bool("alt-screen", def.UI.AltScreen, "Use alternate screen buffer")
	flags.String("log-file", def.Log.File, "Log file path (empty disables logging)")
	flags.String("log-level", def.Log.Level, "Log level (debug|info|warn|error)")

	for _, b := range bindings {
		if err := v.BindPFlag(b.key, flags.Lookup(b.flag)); err != nil {
			return fmt.Errorf("bind flag %s: %w", b.flag, err)
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return nil
}

// Load reads the optional config file and returns the validated result.
func Load(v *viper.Viper, configFile string) (Config, error) {
	if strings.TrimSpace(configFile) != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	c.Backend.URL = strings.TrimRight(strings.TrimSpace(c.Backend.URL), "/")
	parsed, err := url.Parse(c.Backend.URL)
	if err != nil {
		return fmt.Errorf("invalid backend url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("backend url must be http or https, got %q", c.Backend.URL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("backend url has no host: %q", c.Backend.URL)
	}
	c.Backend.Timeout = clampDuration(c.Backend.Timeout, minTimeout, maxTimeout)
	if c.UI.CompleteDelay <= 0 || c.UI.IdleDelay <= 0 {
		return errors.New("workflow delays must be positive")
	}
	if c.UI.IdleDelay <= c.UI.CompleteDelay {
		return fmt.Errorf("idle delay (%s) must exceed complete delay (%s)", c.UI.IdleDelay, c.UI.CompleteDelay)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

func clampDuration(value, min, max time.Duration) time.Duration {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
