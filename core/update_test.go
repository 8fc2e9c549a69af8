package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnalyzer struct {
	reports map[string]AnalyzedFileReport
}

func (f fakeAnalyzer) Analyze(_ context.Context, path string) (AnalyzedFileReport, error) {
	r, ok := f.reports[path]
	if !ok {
		return AnalyzedFileReport{Path: path, Filename: path}, errors.New("unreadable archive")
	}
	return r, nil
}

func TestAnalyzeAllDoesNotAbort(t *testing.T) {
	analyzer := fakeAnalyzer{reports: map[string]AnalyzedFileReport{
		"sodium.jar": {Path: "sodium.jar", PackageID: "AANobbMI", UpdateAvailable: true},
		"iris.jar":   {Path: "iris.jar", PackageID: "YL57xq9U"},
	}}

	reports := AnalyzeAll(context.Background(), analyzer, []string{"sodium.jar", "broken.jar", "iris.jar"})

	require.Len(t, reports, 3)
	assert.NoError(t, reports[0].Err)
	assert.Error(t, reports[1].Err)
	assert.Equal(t, "broken.jar", reports[1].Path)
	assert.Equal(t, "YL57xq9U", reports[2].PackageID)

	updatable := UpdatableReports(reports)
	require.Len(t, updatable, 1)
	assert.Equal(t, "sodium.jar", updatable[0].Path)
}

func TestAnalyzedFileReportUpdateString(t *testing.T) {
	tests := []struct {
		name   string
		report AnalyzedFileReport
		want   string
	}{
		{"Unidentified", AnalyzedFileReport{Filename: "x.jar"}, "not found on the registry"},
		{"Up to date", AnalyzedFileReport{PackageID: "a", CurrentVersion: "0.5.0"}, "up to date (0.5.0)"},
		{"Update", AnalyzedFileReport{PackageID: "a", CurrentVersion: "0.4.10", LatestVersion: "0.5.0", UpdateAvailable: true}, "0.4.10 -> 0.5.0"},
		{"Error", AnalyzedFileReport{Err: errBoom}, "error: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.report.UpdateString())
		})
	}
}

func TestQueueUpdates(t *testing.T) {
	reg := newFakeRegistry()
	reg.packages[pkgSodium.ID] = pkgSodium
	reg.packages[pkgIris.ID] = pkgIris
	reg.versions[pkgSodium.ID] = sodiumVersions()
	reg.versions[pkgIris.ID] = []PackageVersion{
		{ID: "iris-old", Number: "1.5.0", GameVersions: []string{"1.19.4"}},
	}

	reports := []AnalyzedFileReport{
		{Filename: "sodium-0.4.10.jar", PackageID: pkgSodium.ID, CurrentVersionID: "v1", UpdateAvailable: true},
		{Filename: "iris.jar", PackageID: pkgIris.ID, CurrentVersionID: "iris-old", UpdateAvailable: true},
		{Filename: "lithium.jar", PackageID: pkgLithium.ID},
		{Filename: "unknown.jar"},
	}

	store := NewSelectionStore()
	outcomes := QueueUpdates(context.Background(), reg, store, reports, ResolveOptions{
		GameVersion: "1.20.1",
		Loaders:     []string{"fabric"},
	})

	require.Len(t, outcomes, 2)
	assert.True(t, outcomes[0].Queued)
	// 0.5.1-beta.1 is the highest fabric version for 1.20.1
	assert.Equal(t, "v3", outcomes[0].Version.ID)
	assert.False(t, outcomes[1].Queued)
	assert.ErrorIs(t, outcomes[1].Err, ErrNoCompatibleVersion)

	snap := store.Snapshot()
	require.Len(t, snap, 1)
	v, ok := snap[0].Version()
	require.True(t, ok)
	assert.Equal(t, "v3", v.ID)
}

func TestQueueUpdatesRegistryFailure(t *testing.T) {
	reg := newFakeRegistry()
	reg.err = &TransportError{Op: "get project", StatusCode: 500}

	store := NewSelectionStore()
	outcomes := QueueUpdates(context.Background(), reg, store, []AnalyzedFileReport{
		{PackageID: pkgSodium.ID, UpdateAvailable: true},
	}, ResolveOptions{})

	require.Len(t, outcomes, 1)
	var transportErr *TransportError
	assert.True(t, errors.As(outcomes[0].Err, &transportErr))
	assert.Equal(t, 0, store.Len())
}
