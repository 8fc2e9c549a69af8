package core

import (
	"context"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/sirupsen/logrus"
	"github.com/unascribed/FlexVer/go/flexver"
	"golang.org/x/exp/slices"
)

type ResolveOptions struct {
	// GameVersion must appear in a version's game version list; empty disables the filter
	GameVersion string
	Loaders     []string
	// Channels restricts release channels; empty allows all
	Channels []ReleaseChannel
	// Constraint is a semver constraint applied to the version number, e.g. ">=0.5, <0.6"
	Constraint string
	// Rank orders the result featured first, then newest first
	Rank bool
}

type Resolver struct {
	registry Registry
}

func NewResolver(registry Registry) *Resolver {
	return &Resolver{registry: registry}
}

// Resolve lists the versions of a package compatible with the options.
// An empty result is not an error. Registry failures are returned as *VersionFetchError.
func (r *Resolver) Resolve(ctx context.Context, packageID string, opts ResolveOptions) ([]PackageVersion, error) {
	var constraint *semver.Constraints
	if opts.Constraint != "" {
		c, err := semver.NewConstraint(opts.Constraint)
		if err != nil {
			return nil, fmt.Errorf("invalid version constraint %q: %w", opts.Constraint, err)
		}
		constraint = c
	}

	filter := VersionFilter{Loaders: opts.Loaders}
	if opts.GameVersion != "" {
		filter.GameVersions = []string{opts.GameVersion}
	}

	all, err := r.registry.ListVersions(ctx, packageID, filter)
	if err != nil {
		return nil, &VersionFetchError{PackageID: packageID, Err: err}
	}

	var compatible []PackageVersion
	for _, v := range all {
		if opts.GameVersion != "" && !v.SupportsGameVersion(opts.GameVersion) {
			continue
		}
		if !v.SupportsAnyLoader(opts.Loaders) {
			continue
		}
		if len(opts.Channels) > 0 && !slices.Contains(opts.Channels, v.Channel) {
			continue
		}
		if constraint != nil && !matchesConstraint(constraint, v.Number) {
			continue
		}
		compatible = append(compatible, v)
	}

	logrus.WithFields(logrus.Fields{
		"package":    packageID,
		"fetched":    len(all),
		"compatible": len(compatible),
	}).Debug("resolved versions")

	if opts.Rank {
		compatible = RankVersions(compatible)
	}
	return compatible, nil
}

// Latest returns the newest compatible version by version number, or ErrNoCompatibleVersion
func (r *Resolver) Latest(ctx context.Context, packageID string, opts ResolveOptions) (PackageVersion, error) {
	versions, err := r.Resolve(ctx, packageID, opts)
	if err != nil {
		return PackageVersion{}, err
	}
	if len(versions) == 0 {
		return PackageVersion{}, fmt.Errorf("%s: %w", packageID, ErrNoCompatibleVersion)
	}
	return NewestVersion(versions), nil
}

func matchesConstraint(c *semver.Constraints, number string) bool {
	v, err := semver.NewVersion(number)
	if err != nil {
		return false
	}
	return c.Check(v)
}

// RankVersions returns a copy ordered featured first, then by publish date, newest first
func RankVersions(versions []PackageVersion) []PackageVersion {
	ranked := slices.Clone(versions)
	slices.SortStableFunc(ranked, func(a, b PackageVersion) int {
		if a.Featured != b.Featured {
			if a.Featured {
				return -1
			}
			return 1
		}
		return b.Published.Compare(a.Published)
	})
	return ranked
}

// NewestVersion picks the highest version number, breaking ties with the publish date.
// versions must not be empty.
func NewestVersion(versions []PackageVersion) PackageVersion {
	newest := versions[0]
	for _, v := range versions[1:] {
		c := flexver.Compare(v.Number, newest.Number)
		if c > 0 || (c == 0 && v.Published.After(newest.Published)) {
			newest = v
		}
	}
	return newest
}
