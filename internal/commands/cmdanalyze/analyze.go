package cmdanalyze

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/leocov-dev/mrbulk/cmd"
	"github.com/leocov-dev/mrbulk/core"
	"github.com/leocov-dev/mrbulk/fileio"
	"github.com/leocov-dev/mrbulk/internal/shared"
	"github.com/leocov-dev/mrbulk/sources"
)

// CollectArchives expands directories into the archives they contain; files are taken as given
func CollectArchives(paths []string, pattern string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		found, err := fileio.ScanArchives(p, pattern)
		if err != nil {
			return nil, err
		}
		out = append(out, found...)
	}
	return out, nil
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]...",
	Short: "Identify mod archives by their hash and check them for updates",
	Args:  cobra.MinimumNArgs(1),
	Run: func(c *cobra.Command, args []string) {
		cfg := shared.LoadConfig()
		registry := shared.NewRegistry(cfg)

		archives, err := CollectArchives(args, viper.GetString("analyze.pattern"))
		if err != nil {
			shared.Exitln(err)
		}
		if len(archives) == 0 {
			shared.Exitln("No archives found")
		}

		fmt.Printf("Analyzing %d archives...\n", len(archives))
		reports := core.AnalyzeAll(c.Context(), sources.NewModrinthAnalyzer(registry, cfg.ResolveOptions()), archives)
		for _, r := range reports {
			switch {
			case r.Err != nil:
				fmt.Printf("%s: failed: %v\n", r.Filename, r.Err)
			case !r.Identified():
				fmt.Printf("%s: not found on Modrinth\n", r.Filename)
			default:
				fmt.Printf("%s: %s\n", r.Filename, r.UpdateString())
			}
		}

		if !viper.GetBool("analyze.queue") && !viper.GetBool("analyze.download") {
			return
		}

		store := core.NewSelectionStore()
		for _, outcome := range core.QueueUpdates(c.Context(), registry, store, reports, cfg.ResolveOptions()) {
			if outcome.Err != nil {
				fmt.Printf("Could not queue %s: %v\n", outcome.Report.Filename, outcome.Err)
				continue
			}
			fmt.Printf("Queued %s -> %s\n", outcome.Report.Filename, outcome.Version.Number)
		}
		if store.Len() == 0 {
			fmt.Println("Everything is up to date")
			return
		}

		if !viper.GetBool("analyze.download") {
			shared.PrintSelection(store.Snapshot())
			return
		}
		if !shared.PromptYesNo(fmt.Sprintf("Download %d updates to %s? [Y/n]: ", store.Len(), cfg.OutputDir)) {
			return
		}
		shared.Retrieve(c.Context(), shared.NewOrchestrator(cfg), store.Snapshot(), false, "")
	},
}

func init() {
	cmd.Add(analyzeCmd)

	analyzeCmd.Flags().String("pattern", fileio.DefaultArchivePattern, "Regular expression file names in directories must match")
	_ = viper.BindPFlag("analyze.pattern", analyzeCmd.Flags().Lookup("pattern"))
	analyzeCmd.Flags().BoolP("queue", "q", false, "Queue available updates into a selection and list it")
	_ = viper.BindPFlag("analyze.queue", analyzeCmd.Flags().Lookup("queue"))
	analyzeCmd.Flags().BoolP("download", "d", false, "Download available updates")
	_ = viper.BindPFlag("analyze.download", analyzeCmd.Flags().Lookup("download"))
}
