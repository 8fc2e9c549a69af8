package shared

import (
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/leocov-dev/mrbulk/config"
	"github.com/leocov-dev/mrbulk/core"
	"github.com/leocov-dev/mrbulk/fileio"
	"github.com/leocov-dev/mrbulk/sources"
)

// LoadConfig decodes the global viper state, exiting on invalid settings
func LoadConfig() config.Config {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		Exitf("Invalid configuration: %v\n", err)
	}
	return cfg
}

func NewRegistry(cfg config.Config) *sources.ModrinthRegistry {
	registry, err := sources.NewModrinthRegistry(cfg.RegistryOptions())
	if err != nil {
		Exitf("Failed to create Modrinth client: %v\n", err)
	}
	return registry
}

func NewOrchestrator(cfg config.Config) *core.Orchestrator {
	return core.NewOrchestrator(
		sources.NewHTTPFetcher(cfg.Timeout),
		fileio.NewDirSink(cfg.OutputDir),
		core.WithBundler(fileio.NewBundler(cfg.OutputDir, cfg.Format())),
		core.WithCheckpointStep(cfg.CheckpointStep),
		core.WithCheckpointDelay(cfg.CheckpointDelay),
	)
}

// BundleLabel names a bundle after the directory it is written to
func BundleLabel(outputDir string) string {
	if abs, err := filepath.Abs(outputDir); err == nil {
		outputDir = abs
	}
	return filepath.Base(outputDir)
}
