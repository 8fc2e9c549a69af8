package cmdtags

import (
	"fmt"
	"strings"

	"github.com/igorsobreira/titlecase"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/leocov-dev/mrbulk/cmd"
	"github.com/leocov-dev/mrbulk/core"
	"github.com/leocov-dev/mrbulk/internal/shared"
)

var gameVersionsCmd = &cobra.Command{
	Use:     "game-versions",
	Short:   "List the Minecraft release versions known to Modrinth, newest first",
	Aliases: []string{"gv"},
	Args:    cobra.NoArgs,
	Run: func(c *cobra.Command, args []string) {
		cfg := shared.LoadConfig()

		versions, err := core.LoadGameVersions(c.Context(), shared.NewRegistry(cfg))
		if err != nil {
			fmt.Printf("Failed to load game versions (%v), showing the built-in list\n", err)
		}
		for _, v := range versions {
			if v == cfg.GameVersion {
				fmt.Printf("%s (selected)\n", v)
			} else {
				fmt.Println(v)
			}
		}
	},
}

// CategoryDisplayName turns a category slug like "game-mechanics" into "Game Mechanics"
func CategoryDisplayName(name string) string {
	return titlecase.Title(strings.ReplaceAll(name, "-", " "))
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the categories that can be used to filter searches",
	Args:  cobra.NoArgs,
	Run: func(c *cobra.Command, args []string) {
		cfg := shared.LoadConfig()

		categories, err := core.LoadCategories(c.Context(), shared.NewRegistry(cfg), core.ProjectType(cfg.ProjectType))
		if err != nil {
			shared.Exitf("Failed to load categories: %v\n", err)
		}

		header := ""
		for _, cat := range categories {
			if cat.Header != header && !viper.GetBool("categories.flat") {
				header = cat.Header
				fmt.Printf("%s:\n", CategoryDisplayName(header))
			}
			fmt.Printf("  %-20s %s\n", cat.Name, CategoryDisplayName(cat.Name))
		}
	},
}

func init() {
	cmd.Add(gameVersionsCmd)
	cmd.Add(categoriesCmd)

	categoriesCmd.Flags().Bool("flat", false, "Do not group categories under their headers")
	_ = viper.BindPFlag("categories.flat", categoriesCmd.Flags().Lookup("flat"))
}
