package cmd

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/leocov-dev/mrbulk/config"
	"github.com/leocov-dev/mrbulk/core"
	"github.com/leocov-dev/mrbulk/internal/shared"
)

// downloadCmd represents the download command
var downloadCmd = &cobra.Command{
	Use:     "download [id|slug]...",
	Short:   "Download the newest compatible version of each project",
	Aliases: []string{"get"},
	Args:    cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := shared.LoadConfig()
		registry := shared.NewRegistry(cfg)
		store := core.NewSelectionStore()

		err := shared.QueuePackages(cmd.Context(), registry, store, args, cfg.ResolveOptions(), viper.GetBool("download.pick"))
		if errors.Is(err, shared.ErrCancelled) {
			shared.Exitln("Cancelled!")
		}
		if store.Len() == 0 {
			shared.Exitln("Nothing to download")
		}

		report := shared.Retrieve(cmd.Context(), shared.NewOrchestrator(cfg), store.Snapshot(), viper.GetBool("download.bundle"), shared.BundleLabel(cfg.OutputDir))
		if len(report.Failed()) > 0 || report.Err != nil {
			shared.Exitln("Some downloads failed")
		}
	},
}

func init() {
	rootCmd.AddCommand(downloadCmd)

	downloadCmd.Flags().BoolP("pick", "p", false, "Choose the version of each project interactively")
	_ = viper.BindPFlag("download.pick", downloadCmd.Flags().Lookup("pick"))
	downloadCmd.Flags().BoolP("bundle", "b", false, "Collect the downloads into a single archive")
	_ = viper.BindPFlag("download.bundle", downloadCmd.Flags().Lookup("bundle"))
	downloadCmd.Flags().StringP("output", "o", "", "Directory to write downloads to")
	_ = viper.BindPFlag(config.KeyOutputDir, downloadCmd.Flags().Lookup("output"))
	downloadCmd.Flags().String("format", "", "Bundle format: zip, tar.zst or tar.xz")
	_ = viper.BindPFlag(config.KeyBundleFormat, downloadCmd.Flags().Lookup("format"))
}
