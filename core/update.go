package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// AnalyzedFileReport describes a local archive after it was matched against the registry.
// PackageID is empty when the file could not be identified.
type AnalyzedFileReport struct {
	Path             string
	Filename         string
	Hashes           map[string]string
	PackageID        string
	CurrentVersion   string
	CurrentVersionID string
	LatestVersion    string
	LatestVersionID  string
	UpdateAvailable  bool
	// CompatibleGameVersions of the latest version, newest first
	CompatibleGameVersions []string
	Err                    error
}

func (r AnalyzedFileReport) Identified() bool {
	return r.PackageID != ""
}

// UpdateString is a short human readable description of the available update
func (r AnalyzedFileReport) UpdateString() string {
	switch {
	case r.Err != nil:
		return "error: " + r.Err.Error()
	case !r.Identified():
		return "not found on the registry"
	case !r.UpdateAvailable:
		return "up to date (" + r.CurrentVersion + ")"
	}
	return r.CurrentVersion + " -> " + r.LatestVersion
}

// AnalyzeAll analyzes every path. A failure is recorded on its report and does not stop the others.
func AnalyzeAll(ctx context.Context, analyzer Analyzer, paths []string) []AnalyzedFileReport {
	reports := make([]AnalyzedFileReport, len(paths))
	for i, path := range paths {
		report, err := analyzer.Analyze(ctx, path)
		if err != nil {
			report.Err = err
			logrus.WithError(err).WithField("path", path).Warn("could not analyze file")
		}
		if report.Path == "" {
			report.Path = path
		}
		reports[i] = report
	}
	return reports
}

func UpdatableReports(reports []AnalyzedFileReport) []AnalyzedFileReport {
	var out []AnalyzedFileReport
	for _, r := range reports {
		if r.Err == nil && r.Identified() && r.UpdateAvailable {
			out = append(out, r)
		}
	}
	return out
}

// UpdateOutcome is the result of queueing one report's update into the selection
type UpdateOutcome struct {
	Report  AnalyzedFileReport
	Version PackageVersion
	Queued  bool
	Err     error
}

// QueueUpdates resolves the latest compatible version of every updatable report and assigns it
// in the selection store, so the updates can be retrieved like any other selection.
func QueueUpdates(ctx context.Context, registry Registry, store *SelectionStore, reports []AnalyzedFileReport, opts ResolveOptions) []UpdateOutcome {
	resolver := NewResolver(registry)
	var outcomes []UpdateOutcome

	for _, report := range UpdatableReports(reports) {
		outcome := UpdateOutcome{Report: report}

		pkg, err := registry.GetPackage(ctx, report.PackageID)
		if err != nil {
			outcome.Err = fmt.Errorf("failed to get package %s: %w", report.PackageID, err)
			outcomes = append(outcomes, outcome)
			continue
		}

		version, err := resolver.Latest(ctx, report.PackageID, opts)
		if err != nil {
			outcome.Err = err
			outcomes = append(outcomes, outcome)
			continue
		}

		if version.ID == report.CurrentVersionID {
			outcome.Err = errors.New("latest compatible version is already installed")
			outcomes = append(outcomes, outcome)
			continue
		}

		store.AssignVersion(pkg, version)
		outcome.Version = version
		outcome.Queued = true
		outcomes = append(outcomes, outcome)
	}

	return outcomes
}
