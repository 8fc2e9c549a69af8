package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/leocov-dev/mrbulk/core"
	"github.com/leocov-dev/mrbulk/internal/shared"
)

// versionsCmd represents the versions command
var versionsCmd = &cobra.Command{
	Use:   "versions [id|slug]",
	Short: "List the versions of a project compatible with the selected game version",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := shared.LoadConfig()
		registry := shared.NewRegistry(cfg)

		pkg, err := registry.GetPackage(cmd.Context(), args[0])
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				shared.Exitf("Project %s not found\n", args[0])
			}
			shared.Exitln(err)
		}

		opts := cfg.ResolveOptions()
		opts.Rank = true
		opts.Constraint = viper.GetString("versions.constraint")
		for _, c := range viper.GetStringSlice("versions.channel") {
			channel, err := core.ParseReleaseChannel(c)
			if err != nil {
				shared.Exitln(err)
			}
			opts.Channels = append(opts.Channels, channel)
		}
		if viper.GetBool("versions.all") {
			opts.GameVersion = ""
		}

		versions, err := core.NewResolver(registry).Resolve(cmd.Context(), pkg.ID, opts)
		if err != nil {
			shared.Exitln(err)
		}

		fmt.Printf("%s (%s)\n", pkg.DisplayName(), pkg.ID)
		shared.PrintVersions(versions)
	},
}

func init() {
	rootCmd.AddCommand(versionsCmd)

	versionsCmd.Flags().StringSlice("channel", nil, "Only list release, beta or alpha versions")
	_ = viper.BindPFlag("versions.channel", versionsCmd.Flags().Lookup("channel"))
	versionsCmd.Flags().String("constraint", "", "Semver constraint on the version number (e.g. \">=0.5\")")
	_ = viper.BindPFlag("versions.constraint", versionsCmd.Flags().Lookup("constraint"))
	versionsCmd.Flags().BoolP("all", "a", false, "List versions for every game version")
	_ = viper.BindPFlag("versions.all", versionsCmd.Flags().Lookup("all"))
}
