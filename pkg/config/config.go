package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	DefaultConfigDir  = ".config/livy"
	DefaultConfigFile = "config.yaml"
)

// Config holds the CLI configuration
type Config struct {
	Root     RootConfig
	Logs     LogsConfig
	ReadLog  ReadLogConfig
	Submit   SubmitConfig
	UploadS3 UploadS3Config
}

// RootConfig holds settings shared by every command
type RootConfig struct {
	APIURL           string
	Timeout          time.Duration
	VerifySSL        bool
	Retries          uint
	Timezone         string
	SkipVersionCheck bool
	TelemetryEnabled *bool // Pointer to distinguish between unset (nil) and explicitly set (true/false)
}

// LogsConfig controls the local log output
type LogsConfig struct {
	FormatTime       string
	OutputFile       bool
	LogfileLevel     string
	WithProgressbar  bool
	HighlightLoggers []string
	HideLoggers      []string
}

type ReadLogConfig struct {
	KeepWatch bool
	Interval  time.Duration
}

// SubmitConfig holds defaults applied to every submitted batch
type SubmitConfig struct {
	WatchLog       bool
	PreSubmit      []string
	ProxyUser      string
	Jars           []string
	PyFiles        []string
	Files          []string
	Archives       []string
	DriverMemory   string
	DriverCores    int
	ExecutorMemory string
	ExecutorCores  int
	NumExecutors   int
	Queue          string
	Conf           map[string]string
}

// UploadS3Config configures the upload_s3 pre-submit hook
type UploadS3Config struct {
	Bucket       string
	FolderFormat string
	ExpireDays   int
	Region       string
	Endpoint     string

	AccessKeyID     string
	SecretAccessKey string
}

// Load reads the configuration from ~/.config/livy/config.yaml
func Load() (*Config, error) {
	configPath := getConfigPath()
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	setDefaults()

	// Create config file if it doesn't exist
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := ensureConfigDir(); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		if err := viper.WriteConfig(); err != nil {
			return nil, fmt.Errorf("failed to create config file: %w", err)
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	config := &Config{
		Root: RootConfig{
			APIURL:           getEnvOrDefault(EnvAPIURL, viper.GetString("root.api_url")),
			Timeout:          viper.GetDuration("root.timeout"),
			VerifySSL:        viper.GetBool("root.verify_ssl"),
			Retries:          viper.GetUint("root.retries"),
			Timezone:         viper.GetString("root.timezone"),
			SkipVersionCheck: viper.GetBool("root.skip_version_check"),
		},
		Logs: LogsConfig{
			FormatTime:       viper.GetString("logs.format_time"),
			OutputFile:       viper.GetBool("logs.output_file"),
			LogfileLevel:     viper.GetString("logs.logfile_level"),
			WithProgressbar:  viper.GetBool("logs.with_progressbar"),
			HighlightLoggers: viper.GetStringSlice("logs.highlight_loggers"),
			HideLoggers:      viper.GetStringSlice("logs.hide_loggers"),
		},
		ReadLog: ReadLogConfig{
			KeepWatch: viper.GetBool("read_log.keep_watch"),
			Interval:  viper.GetDuration("read_log.interval"),
		},
		Submit: SubmitConfig{
			WatchLog:       viper.GetBool("submit.watch_log"),
			PreSubmit:      viper.GetStringSlice("submit.pre_submit"),
			ProxyUser:      viper.GetString("submit.proxy_user"),
			Jars:           viper.GetStringSlice("submit.jars"),
			PyFiles:        viper.GetStringSlice("submit.py_files"),
			Files:          viper.GetStringSlice("submit.files"),
			Archives:       viper.GetStringSlice("submit.archives"),
			DriverMemory:   viper.GetString("submit.driver_memory"),
			DriverCores:    viper.GetInt("submit.driver_cores"),
			ExecutorMemory: viper.GetString("submit.executor_memory"),
			ExecutorCores:  viper.GetInt("submit.executor_cores"),
			NumExecutors:   viper.GetInt("submit.num_executors"),
			Queue:          viper.GetString("submit.queue"),
			Conf:           viper.GetStringMapString("submit.conf"),
		},
		UploadS3: UploadS3Config{
			Bucket:       viper.GetString("plugin.upload_s3.bucket"),
			FolderFormat: viper.GetString("plugin.upload_s3.folder_format"),
			ExpireDays:   viper.GetInt("plugin.upload_s3.expire_days"),
			Region:       viper.GetString("plugin.upload_s3.region"),
			Endpoint:     viper.GetString("plugin.upload_s3.endpoint"),

			AccessKeyID:     viper.GetString("plugin.upload_s3.access_key_id"),
			SecretAccessKey: viper.GetString("plugin.upload_s3.secret_access_key"),
		},
	}

	// Handle telemetry setting - use pointer to distinguish unset from false
	if viper.InConfig("root.telemetry") {
		telemetryEnabled := viper.GetBool("root.telemetry")
		config.Root.TelemetryEnabled = &telemetryEnabled
	}

	return config, nil
}

func setDefaults() {
	for _, spec := range keySpecs {
		if spec.Default != nil {
			viper.SetDefault(spec.Name, spec.Default)
		}
	}
}

// IsTelemetryEnabled returns whether telemetry is enabled.
// Returns true by default if not explicitly set (opt-out model).
func (c *Config) IsTelemetryEnabled() bool {
	if envVal := os.Getenv(EnvTelemetryDisabled); envVal != "" {
		return envVal != "true" && envVal != "1"
	}

	if c.Root.TelemetryEnabled != nil {
		return *c.Root.TelemetryEnabled
	}

	return true
}

// Location returns the time zone Livy server timestamps are written in.
func (c *Config) Location() (*time.Location, error) {
	if c.Root.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Root.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid root.timezone %q: %w", c.Root.Timezone, err)
	}
	return loc, nil
}

// LogfileLevel returns logs.logfile_level as slog.Level
// Defaults to Debug if not set or invalid
func (c *Config) LogfileLevel() slog.Level {
	level, err := ParseLevel(c.Logs.LogfileLevel)
	if err != nil {
		return slog.LevelDebug
	}
	return level
}

// ParseLevel converts a level name into slog.Level
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	case "critical", "fatal":
		return slog.Level(12), nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Set validates and stores a single `section.key` value, then writes the
// config file.
func Set(name, raw string) (any, error) {
	spec, ok := LookupKey(name)
	if !ok {
		return nil, &KeyError{Name: name}
	}

	value, err := spec.Parse(raw)
	if err != nil {
		return nil, err
	}

	viper.Set(spec.Name, value)
	if err := viper.WriteConfig(); err != nil {
		return nil, fmt.Errorf("failed to write config: %w", err)
	}
	return value, nil
}

// Get returns the effective value of a `section.key` name
func Get(name string) (any, error) {
	spec, ok := LookupKey(name)
	if !ok {
		return nil, &KeyError{Name: name}
	}
	return viper.Get(spec.Name), nil
}

// getConfigPath returns the full path to the config file
func getConfigPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback
		return filepath.Join(".", DefaultConfigDir, DefaultConfigFile)
	}

	return filepath.Join(homeDir, DefaultConfigDir, DefaultConfigFile)
}

// ensureConfigDir ensures the config directory exists
func ensureConfigDir() error {
	configDir := filepath.Dir(getConfigPath())
	return os.MkdirAll(configDir, 0755) //nolint:gosec // Config directory needs standard permissions
}

// Context key for storing config
type contextKey string

const configContextKey contextKey = "config"

// GetConfigFromContext retrieves the config from the command context
func GetConfigFromContext(cmd *cobra.Command) (*Config, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, fmt.Errorf("no context available")
	}

	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok || cfg == nil {
		return nil, fmt.Errorf("config not found in context")
	}

	return cfg, nil
}

// GetContextKey returns the context key used for storing config
// This is needed by root.go to store the config in context
func GetContextKey() any {
	return configContextKey
}
