package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/leocov-dev/mrbulk/config"
	"github.com/leocov-dev/mrbulk/core"
	"github.com/leocov-dev/mrbulk/internal/shared"
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search Modrinth; without a query the most downloaded projects are listed",
	Args:  cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := shared.LoadConfig()
		registry := shared.NewRegistry(cfg)

		var sort core.SortIndex
		if s := viper.GetString("search.sort"); s != "" {
			var err error
			sort, err = core.ParseSortIndex(s)
			if err != nil {
				shared.Exitln(err)
			}
		}

		session := core.NewSearchSession(registry, core.SessionOptions{
			Debounce:    cfg.Debounce,
			Limit:       cfg.Limit,
			ProjectType: core.ProjectType(cfg.ProjectType),
			GameVersion: cfg.GameVersion,
			Loaders:     cfg.Loaders,
			OnError: func(err error) {
				fmt.Printf("Search failed: %v\n", err)
			},
		})
		defer session.Close()

		if category := viper.GetString("search.category"); category != "" {
			session.SetCategory(category)
		}
		if sort != "" {
			session.SetSort(sort)
		}
		if query := strings.Join(args, " "); query != "" {
			session.SetQuery(query)
		} else {
			session.Start()
		}

		if err := session.Wait(cmd.Context()); err != nil {
			shared.Exitln(err)
		}
		current := session.Current()
		shared.PrintResults(current.Results, nil)

		if !viper.GetBool("search.download") {
			return
		}
		picked, err := shared.PickPackages(session.Results())
		if err != nil {
			shared.Exitln(err)
		}
		if len(picked) == 0 {
			fmt.Println("Nothing picked")
			return
		}

		store := core.NewSelectionStore()
		resolver := core.NewResolver(registry)
		for _, pkg := range picked {
			if err := shared.QueuePackage(cmd.Context(), resolver, store, pkg, cfg.ResolveOptions(), false); err != nil {
				fmt.Printf("Failed to resolve %s: %v\n", pkg.DisplayName(), err)
			}
		}
		shared.Retrieve(cmd.Context(), shared.NewOrchestrator(cfg), store.Snapshot(), viper.GetBool("search.bundle"), shared.BundleLabel(cfg.OutputDir))
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringP("category", "c", "", "Only show projects in this category")
	_ = viper.BindPFlag("search.category", searchCmd.Flags().Lookup("category"))
	searchCmd.Flags().StringP("sort", "s", "", "Sort order: relevance, downloads, follows, newest or updated")
	_ = viper.BindPFlag("search.sort", searchCmd.Flags().Lookup("sort"))
	searchCmd.Flags().IntP("limit", "l", core.DefaultSearchLimit, "Number of results to show")
	_ = viper.BindPFlag(config.KeyLimit, searchCmd.Flags().Lookup("limit"))
	searchCmd.Flags().String("project-type", "", "Project type: mod, modpack, resourcepack or shader")
	_ = viper.BindPFlag(config.KeyProjectType, searchCmd.Flags().Lookup("project-type"))
	searchCmd.Flags().BoolP("download", "d", false, "Pick results to download")
	_ = viper.BindPFlag("search.download", searchCmd.Flags().Lookup("download"))
	searchCmd.Flags().BoolP("bundle", "b", false, "Download picked results into a single bundle archive")
	_ = viper.BindPFlag("search.bundle", searchCmd.Flags().Lookup("bundle"))
}
