package shared

import (
	"fmt"
	"strings"

	"github.com/leocov-dev/mrbulk/core"
)

func PrintResults(results core.SearchResults, store *core.SelectionStore) {
	if len(results.Hits) == 0 {
		fmt.Println("No results")
		return
	}
	for i, hit := range results.Hits {
		marker := " "
		if store != nil {
			if entry, ok := store.Get(hit.ID); ok {
				marker = "+"
				if !entry.IsResolved() {
					marker = "?"
				}
			}
		}
		fmt.Printf("%s %2d. %s (%s) %d downloads\n", marker, i+1, hit.DisplayName(), hit.Slug, hit.Downloads)
		if hit.Description != "" {
			fmt.Printf("       %s\n", hit.Description)
		}
	}
	fmt.Printf("Showing %d of %d\n", len(results.Hits), results.TotalHits)
}

func PrintVersions(versions []core.PackageVersion) {
	if len(versions) == 0 {
		fmt.Println("No compatible versions")
		return
	}
	for _, v := range versions {
		fmt.Printf("%s  %-8s %s  [%s]", v.Number, v.Channel, strings.Join(v.GameVersions, ", "), strings.Join(v.Loaders, ", "))
		if a, ok := v.PrimaryArtifact(); ok {
			fmt.Printf("  %s", a.Filename)
			if a.Size > 0 {
				fmt.Printf(" (%s)", core.FormatFileSize(a.Size))
			}
		}
		fmt.Println()
	}
}

func PrintSelection(entries []core.SelectionEntry) {
	if len(entries) == 0 {
		fmt.Println("Nothing selected")
		return
	}
	for i, e := range entries {
		if v, ok := e.Version(); ok {
			fmt.Printf("%2d. %s %s\n", i+1, e.Package.DisplayName(), v.Number)
		} else {
			fmt.Printf("%2d. %s (%s)\n", i+1, e.Package.DisplayName(), e.State())
		}
	}
}
