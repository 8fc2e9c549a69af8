package core

import (
	"context"
	"errors"
	"sort"

	"github.com/sirupsen/logrus"
)

// LoadGameVersions returns the registry's release game versions, newest first.
// When the registry cannot be reached the fallback list is returned together with the error.
func LoadGameVersions(ctx context.Context, registry Registry) ([]string, error) {
	tags, err := registry.GameVersions(ctx)
	if err != nil {
		var transportErr *TransportError
		if errors.As(err, &transportErr) {
			logrus.WithError(err).Warn("using fallback game version list")
		}
		fallback := make([]string, len(FallbackGameVersions))
		copy(fallback, FallbackGameVersions)
		return fallback, err
	}
	return ReleaseGameVersions(tags), nil
}

// LoadCategories returns the categories for the given project type sorted by header, then name.
// An empty project type returns all of them.
func LoadCategories(ctx context.Context, registry Registry, projectType ProjectType) ([]CategoryTag, error) {
	tags, err := registry.Categories(ctx)
	if err != nil {
		return nil, err
	}

	var out []CategoryTag
	for _, t := range tags {
		if projectType != "" && t.ProjectType != string(projectType) {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Header != out[j].Header {
			return out[i].Header < out[j].Header
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
