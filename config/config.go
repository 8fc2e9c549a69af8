package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/leocov-dev/mrbulk/core"
	"github.com/leocov-dev/mrbulk/fileio"
	"github.com/leocov-dev/mrbulk/sources"
)

var Version string

func SetVersion(version string) {
	Version = version
}

const (
	KeyBaseURL         = "base-url"
	KeyUserAgent       = "user-agent"
	KeyGameVersion     = "game-version"
	KeyLoader          = "loader"
	KeyProjectType     = "project-type"
	KeyLimit           = "limit"
	KeyDebounce        = "debounce"
	KeyTimeout         = "timeout"
	KeyOutputDir       = "output-dir"
	KeyBundleFormat    = "bundle-format"
	KeyCheckpointStep  = "checkpoint-step"
	KeyCheckpointDelay = "checkpoint-delay"
	KeyNonInteractive  = "non-interactive"
)

const EnvPrefix = "MRBULK"

type Config struct {
	BaseURL         string        `mapstructure:"base-url"`
	UserAgent       string        `mapstructure:"user-agent"`
	GameVersion     string        `mapstructure:"game-version"`
	Loaders         []string      `mapstructure:"loader"`
	ProjectType     string        `mapstructure:"project-type"`
	Limit           int           `mapstructure:"limit"`
	Debounce        time.Duration `mapstructure:"debounce"`
	Timeout         time.Duration `mapstructure:"timeout"`
	OutputDir       string        `mapstructure:"output-dir"`
	BundleFormat    string        `mapstructure:"bundle-format"`
	CheckpointStep  int           `mapstructure:"checkpoint-step"`
	CheckpointDelay time.Duration `mapstructure:"checkpoint-delay"`
	NonInteractive  bool          `mapstructure:"non-interactive"`
}

func Default() Config {
	return Config{
		BaseURL:        sources.DefaultBaseURL,
		UserAgent:      core.DefaultUserAgent,
		GameVersion:    "1.20.1",
		Loaders:        []string{},
		ProjectType:    string(core.ProjectTypeMod),
		Limit:          core.DefaultSearchLimit,
		Debounce:       core.DefaultDebounce,
		Timeout:        30 * time.Second,
		OutputDir:      ".",
		BundleFormat:   string(fileio.FormatZip),
		CheckpointStep: core.DefaultCheckpointStep,
	}
}

// SetDefaults registers every key so env vars and config files can override it
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault(KeyBaseURL, d.BaseURL)
	v.SetDefault(KeyUserAgent, d.UserAgent)
	v.SetDefault(KeyGameVersion, d.GameVersion)
	v.SetDefault(KeyLoader, d.Loaders)
	v.SetDefault(KeyProjectType, d.ProjectType)
	v.SetDefault(KeyLimit, d.Limit)
	v.SetDefault(KeyDebounce, d.Debounce)
	v.SetDefault(KeyTimeout, d.Timeout)
	v.SetDefault(KeyOutputDir, d.OutputDir)
	v.SetDefault(KeyBundleFormat, d.BundleFormat)
	v.SetDefault(KeyCheckpointStep, d.CheckpointStep)
	v.SetDefault(KeyCheckpointDelay, d.CheckpointDelay)
	v.SetDefault(KeyNonInteractive, d.NonInteractive)
}

var keys = []string{
	KeyBaseURL, KeyUserAgent, KeyGameVersion, KeyLoader, KeyProjectType, KeyLimit, KeyDebounce, KeyTimeout,
	KeyOutputDir, KeyBundleFormat, KeyCheckpointStep, KeyCheckpointDelay, KeyNonInteractive,
}

// BindFlags binds every flag named after a configuration key
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		for _, key := range keys {
			if f.Name == key && err == nil {
				err = v.BindPFlag(key, f)
			}
		}
	})
	return err
}

// ReadConfigFile loads path, or mrbulk.toml from the working directory or the user config dir.
// A missing default config file is not an error.
func ReadConfigFile(v *viper.Viper, path string) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		return v.ReadInConfig()
	}

	v.SetConfigName("mrbulk")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/mrbulk")
	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return nil
	}
	return err
}

// Load decodes the settings held by v into a validated Config
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return Config{}, err
	}

	settings := make(map[string]interface{})
	for _, key := range v.AllKeys() {
		settings[key] = v.Get(key)
	}
	if err := decoder.Decode(settings); err != nil {
		return Config{}, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	loaders, err := core.ParseLoaders(c.Loaders)
	if err != nil {
		return err
	}
	c.Loaders = loaders

	if _, err := fileio.ParseBundleFormat(c.BundleFormat); err != nil {
		return err
	}
	if c.Limit < 1 || c.Limit > 100 {
		return fmt.Errorf("%s must be between 1 and 100, got %d", KeyLimit, c.Limit)
	}
	if c.CheckpointStep < 1 || c.CheckpointStep > 100 {
		return fmt.Errorf("%s must be between 1 and 100, got %d", KeyCheckpointStep, c.CheckpointStep)
	}
	if c.Debounce < 0 || c.Timeout < 0 || c.CheckpointDelay < 0 {
		return errors.New("durations must not be negative")
	}
	switch core.ProjectType(c.ProjectType) {
	case core.ProjectTypeMod, core.ProjectTypeModpack, core.ProjectTypeResourcePack, core.ProjectTypeShader:
	default:
		return fmt.Errorf("unknown project type %q", c.ProjectType)
	}
	return nil
}

func (c Config) Format() fileio.BundleFormat {
	f, _ := fileio.ParseBundleFormat(c.BundleFormat)
	return f
}

func (c Config) ResolveOptions() core.ResolveOptions {
	return core.ResolveOptions{
		GameVersion: c.GameVersion,
		Loaders:     core.CompatibleLoaders(c.Loaders),
	}
}

func (c Config) RegistryOptions() sources.RegistryOptions {
	return sources.RegistryOptions{
		BaseURL:   c.BaseURL,
		UserAgent: c.UserAgent,
		Timeout:   c.Timeout,
	}
}
