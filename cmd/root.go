package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/leocov-dev/mrbulk/config"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mrbulk",
	Short: "Search Modrinth and download many mods at once",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if viper.GetBool("verbose") {
			logrus.SetLevel(logrus.DebugLevel)
		}
		if err := config.ReadConfigFile(viper.GetViper(), cfgFile); err != nil {
			fmt.Printf("Failed to read config file: %v\n", err)
			os.Exit(1)
		}
		if viper.ConfigFileUsed() != "" {
			logrus.Debugf("using config file %s", viper.ConfigFileUsed())
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd.Version = config.Version
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// Add registers a command group defined outside this package
func Add(newCommand *cobra.Command) {
	rootCmd.AddCommand(newCommand)
}

func init() {
	config.SetDefaults(viper.GetViper())

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./mrbulk.toml or $HOME/.config/mrbulk/mrbulk.toml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	rootCmd.PersistentFlags().BoolP(config.KeyNonInteractive, "y", false, "Accept all prompts with the default option")
	rootCmd.PersistentFlags().String(config.KeyGameVersion, "", "Minecraft version to search and resolve for")
	rootCmd.PersistentFlags().StringSlice(config.KeyLoader, nil, "Mod loaders to filter by (e.g. fabric,quilt)")
	rootCmd.PersistentFlags().String(config.KeyBaseURL, "", "Modrinth API base URL")
	rootCmd.PersistentFlags().Duration(config.KeyTimeout, 0, "HTTP request timeout")
	_ = config.BindFlags(viper.GetViper(), rootCmd.PersistentFlags())
}
