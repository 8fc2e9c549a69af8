package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2023, time.June, d, 12, 0, 0, 0, time.UTC)
}

func sodiumVersions() []PackageVersion {
	return []PackageVersion{
		{ID: "v1", Number: "0.4.10", Channel: ChannelRelease, GameVersions: []string{"1.19.4"}, Loaders: []string{"fabric"}, Published: day(1)},
		{ID: "v2", Number: "0.5.0", Channel: ChannelRelease, GameVersions: []string{"1.20.1"}, Loaders: []string{"fabric"}, Published: day(10)},
		{ID: "v3", Number: "0.5.1-beta.1", Channel: ChannelBeta, GameVersions: []string{"1.20.1"}, Loaders: []string{"fabric", "quilt"}, Published: day(20)},
		{ID: "v4", Number: "mc1.20.1-0.4.11", Channel: ChannelRelease, GameVersions: []string{"1.20.1"}, Loaders: []string{"forge"}, Featured: true, Published: day(5)},
	}
}

func versionIDs(versions []PackageVersion) []string {
	out := make([]string, len(versions))
	for i, v := range versions {
		out[i] = v.ID
	}
	return out
}

func TestResolverFiltersByGameVersion(t *testing.T) {
	reg := newFakeRegistry()
	reg.versions["AANobbMI"] = sodiumVersions()
	r := NewResolver(reg)

	got, err := r.Resolve(context.Background(), "AANobbMI", ResolveOptions{GameVersion: "1.20.1"})
	require.NoError(t, err)
	// registry order is kept
	assert.Equal(t, []string{"v2", "v3", "v4"}, versionIDs(got))
	require.Len(t, reg.filters, 1)
	assert.Equal(t, []string{"1.20.1"}, reg.filters[0].GameVersions)
}

func TestResolverOptions(t *testing.T) {
	tests := []struct {
		name string
		opts ResolveOptions
		want []string
	}{
		{"Loader", ResolveOptions{GameVersion: "1.20.1", Loaders: []string{"quilt"}}, []string{"v3"}},
		{"Channel", ResolveOptions{GameVersion: "1.20.1", Channels: []ReleaseChannel{ChannelRelease}}, []string{"v2", "v4"}},
		{"Constraint excludes non semver numbers", ResolveOptions{Constraint: ">=0.5.0"}, []string{"v2"}},
		{"Ranked", ResolveOptions{GameVersion: "1.20.1", Rank: true}, []string{"v4", "v3", "v2"}},
		{"No game version filter", ResolveOptions{}, []string{"v1", "v2", "v3", "v4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newFakeRegistry()
			reg.versions["AANobbMI"] = sodiumVersions()

			got, err := NewResolver(reg).Resolve(context.Background(), "AANobbMI", tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, versionIDs(got))
		})
	}
}

func TestResolverEmptyIsNotAnError(t *testing.T) {
	reg := newFakeRegistry()
	reg.versions["AANobbMI"] = sodiumVersions()

	got, err := NewResolver(reg).Resolve(context.Background(), "AANobbMI", ResolveOptions{GameVersion: "1.16.5"})
	assert.NoError(t, err)
	assert.Empty(t, got)

	_, err = NewResolver(reg).Latest(context.Background(), "AANobbMI", ResolveOptions{GameVersion: "1.16.5"})
	assert.ErrorIs(t, err, ErrNoCompatibleVersion)
}

func TestResolverFetchFailure(t *testing.T) {
	reg := newFakeRegistry()
	reg.err = &TransportError{Op: "list versions", StatusCode: 500, Status: "500 Internal Server Error"}

	_, err := NewResolver(reg).Resolve(context.Background(), "AANobbMI", ResolveOptions{GameVersion: "1.20.1"})
	var fetchErr *VersionFetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, "AANobbMI", fetchErr.PackageID)

	var transportErr *TransportError
	assert.True(t, errors.As(err, &transportErr))
}

func TestResolverInvalidConstraint(t *testing.T) {
	_, err := NewResolver(newFakeRegistry()).Resolve(context.Background(), "x", ResolveOptions{Constraint: "not a constraint!"})
	assert.Error(t, err)

	var fetchErr *VersionFetchError
	assert.False(t, errors.As(err, &fetchErr))
}

func TestResolverLatest(t *testing.T) {
	reg := newFakeRegistry()
	reg.versions["AANobbMI"] = sodiumVersions()

	got, err := NewResolver(reg).Latest(context.Background(), "AANobbMI", ResolveOptions{
		GameVersion: "1.20.1",
		Loaders:     []string{"fabric"},
		Channels:    []ReleaseChannel{ChannelRelease},
	})
	require.NoError(t, err)
	assert.Equal(t, "v2", got.ID)
}

func TestRankVersions(t *testing.T) {
	versions := []PackageVersion{
		{ID: "old", Published: day(1)},
		{ID: "featured-old", Featured: true, Published: day(2)},
		{ID: "new", Published: day(9)},
		{ID: "featured-new", Featured: true, Published: day(8)},
	}
	ranked := RankVersions(versions)
	assert.Equal(t, []string{"featured-new", "featured-old", "new", "old"}, versionIDs(ranked))
	// input untouched
	assert.Equal(t, "old", versions[0].ID)
}

func TestNewestVersion(t *testing.T) {
	versions := []PackageVersion{
		{ID: "a", Number: "1.9.0", Published: day(3)},
		{ID: "b", Number: "1.10.0", Published: day(1)},
		{ID: "c", Number: "1.10.0", Published: day(2)},
	}
	assert.Equal(t, "c", NewestVersion(versions).ID)
}
