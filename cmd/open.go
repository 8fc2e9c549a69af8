package cmd

import (
	"fmt"

	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"

	"github.com/leocov-dev/mrbulk/internal/shared"
)

const projectPageURL = "https://modrinth.com/project/"

// openCmd represents the open command
var openCmd = &cobra.Command{
	Use:     "open [id|slug]",
	Short:   "Open the project page for a Modrinth project in your browser",
	Aliases: []string{"doc"},
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := shared.LoadConfig()

		id := args[0]
		pkg, err := shared.NewRegistry(cfg).GetPackage(cmd.Context(), id)
		if err == nil && pkg.Slug != "" {
			id = pkg.Slug
		}

		fmt.Println("Opening browser...")
		url := projectPageURL + id
		err = open.Start(url)
		if err != nil {
			fmt.Println("Opening page failed, direct link:")
			fmt.Println(url)
		}
	},
}

func init() {
	rootCmd.AddCommand(openCmd)
}
