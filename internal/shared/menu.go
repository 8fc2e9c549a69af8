package shared

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/viper"
	"gopkg.in/dixonwille/wmenu.v4"

	"github.com/leocov-dev/mrbulk/config"
	"github.com/leocov-dev/mrbulk/core"
)

var ErrCancelled = errors.New("selection cancelled")

// Used to implement interface for fuzzy matching
type PackageList []core.PackageSummary

func (l PackageList) String(i int) string {
	return l[i].Title + " " + l[i].Slug
}

func (l PackageList) Len() int {
	return len(l)
}

// FindPackage matches term against an id, slug, or fuzzily against titles
func FindPackage(term string, packages []core.PackageSummary) (core.PackageSummary, bool) {
	for _, p := range packages {
		if p.ID == term || strings.EqualFold(p.Slug, term) {
			return p, true
		}
	}
	matches := fuzzy.FindFrom(term, PackageList(packages))
	if len(matches) == 0 {
		return core.PackageSummary{}, false
	}
	return packages[matches[0].Index], true
}

func versionLabel(v core.PackageVersion) string {
	label := fmt.Sprintf("%s [%s] for %s", v.Number, v.Channel, strings.Join(v.GameVersions, ", "))
	if a, ok := v.PrimaryArtifact(); ok && a.Size > 0 {
		label += " (" + core.FormatFileSize(a.Size) + ")"
	}
	if v.Featured {
		label += " *"
	}
	return label
}

// PickVersion lets the user choose among ranked versions; the first is the default.
// Non-interactive mode takes the newest version without asking.
func PickVersion(pkg core.PackageSummary, versions []core.PackageVersion) (core.PackageVersion, error) {
	if len(versions) == 0 {
		return core.PackageVersion{}, core.ErrNoCompatibleVersion
	}
	if viper.GetBool(config.KeyNonInteractive) {
		return core.NewestVersion(versions), nil
	}

	menu := wmenu.NewMenu(fmt.Sprintf("Choose a version of %s:", pkg.DisplayName()))
	menu.Option("Cancel", nil, false, nil)
	for i, v := range versions {
		menu.Option(versionLabel(v), v, i == 0, nil)
	}

	var picked core.PackageVersion
	menu.Action(func(menuRes []wmenu.Opt) error {
		if len(menuRes) != 1 || menuRes[0].Value == nil {
			return ErrCancelled
		}
		var ok bool
		picked, ok = menuRes[0].Value.(core.PackageVersion)
		if !ok {
			return errors.New("error converting interface from wmenu")
		}
		return nil
	})
	if err := menu.Run(); err != nil {
		return core.PackageVersion{}, err
	}
	return picked, nil
}

// PickPackages lets the user choose several search results at once
func PickPackages(results []core.PackageSummary) ([]core.PackageSummary, error) {
	if len(results) == 0 {
		return nil, nil
	}
	if viper.GetBool(config.KeyNonInteractive) {
		return results[:1], nil
	}

	menu := wmenu.NewMenu("Choose one or more numbers separated by spaces:")
	menu.AllowMultiple()
	for _, r := range results {
		menu.Option(fmt.Sprintf("%s (%s)", r.DisplayName(), r.Slug), r, false, nil)
	}

	var picked []core.PackageSummary
	menu.Action(func(menuRes []wmenu.Opt) error {
		for _, opt := range menuRes {
			pkg, ok := opt.Value.(core.PackageSummary)
			if !ok {
				return errors.New("error converting interface from wmenu")
			}
			picked = append(picked, pkg)
		}
		return nil
	})
	if err := menu.Run(); err != nil {
		return nil, err
	}
	return picked, nil
}
