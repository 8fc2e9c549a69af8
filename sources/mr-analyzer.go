package sources

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"

	"github.com/leocov-dev/mrbulk/core"
)

type versionLookup interface {
	core.Registry
	VersionFromHash(ctx context.Context, hash, algorithm string) (core.PackageVersion, error)
}

// ModrinthAnalyzer identifies local archives by their sha1 and checks the registry for a newer compatible version
type ModrinthAnalyzer struct {
	registry versionLookup
	resolver *core.Resolver
	opts     core.ResolveOptions
}

func NewModrinthAnalyzer(registry versionLookup, opts core.ResolveOptions) *ModrinthAnalyzer {
	return &ModrinthAnalyzer{
		registry: registry,
		resolver: core.NewResolver(registry),
		opts:     opts,
	}
}

func (a *ModrinthAnalyzer) Analyze(ctx context.Context, path string) (core.AnalyzedFileReport, error) {
	report := core.AnalyzedFileReport{
		Path:     path,
		Filename: filepath.Base(path),
	}

	f, err := os.Open(path)
	if err != nil {
		return report, err
	}
	report.Hashes, err = core.HashReader(f, core.IdentificationHashes...)
	_ = f.Close()
	if err != nil {
		return report, fmt.Errorf("failed to hash %s: %w", report.Filename, err)
	}

	log := logrus.WithField("file", report.Filename)

	current, err := a.registry.VersionFromHash(ctx, report.Hashes["sha1"], "sha1")
	if errors.Is(err, core.ErrNotFound) {
		log.Debug("file not found on modrinth")
		return report, nil
	}
	if err != nil {
		return report, err
	}

	report.PackageID = current.PackageID
	report.CurrentVersion = current.Number
	report.CurrentVersionID = current.ID

	versions, err := a.resolver.Resolve(ctx, current.PackageID, a.opts)
	if err != nil {
		return report, err
	}
	if len(versions) == 0 {
		log.Debug("no compatible versions")
		return report, nil
	}

	latest := core.NewestVersion(versions)
	report.LatestVersion = latest.Number
	report.LatestVersionID = latest.ID
	report.CompatibleGameVersions = core.SortGameVersionsDescending(slices.Clone(latest.GameVersions))
	report.UpdateAvailable = latest.ID != current.ID && !latest.Published.Before(current.Published)

	log.WithFields(logrus.Fields{
		"package": report.PackageID,
		"current": report.CurrentVersion,
		"latest":  report.LatestVersion,
	}).Debug("analyzed")

	return report, nil
}
