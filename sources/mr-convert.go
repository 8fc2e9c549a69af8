package sources

import (
	"time"

	modrinthApi "codeberg.org/jmansfield/go-modrinth/modrinth"

	"github.com/leocov-dev/mrbulk/core"
)

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefUint32(i *uint32) int {
	if i == nil {
		return 0
	}
	return int(*i)
}

func derefBool(b *bool) bool {
	return b != nil && *b
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func summaryFromProject(project *modrinthApi.Project) core.PackageSummary {
	return core.PackageSummary{
		ID:           derefString(project.ID),
		Slug:         GetModrinthProjectSlug(project),
		Title:        derefString(project.Title),
		Description:  derefString(project.Description),
		ProjectType:  derefString(project.ProjectType),
		Categories:   project.Categories,
		Downloads:    derefUint32(project.Downloads),
		Follows:      derefUint32(project.Followers),
		Updated:      derefTime(project.Updated),
		IconURL:      derefString(project.IconURL),
		GameVersions: project.GameVersions,
		Loaders:      project.Loaders,
	}
}

func summaryFromSearchResult(hit *modrinthApi.SearchResult) core.PackageSummary {
	return core.PackageSummary{
		ID:           derefString(hit.ProjectID),
		Slug:         derefString(hit.Slug),
		Title:        derefString(hit.Title),
		Description:  derefString(hit.Description),
		ProjectType:  derefString(hit.ProjectType),
		Categories:   hit.Categories,
		Downloads:    derefUint32(hit.Downloads),
		Follows:      derefUint32(hit.Follows),
		Updated:      derefTime(hit.DateModified),
		IconURL:      derefString(hit.IconURL),
		GameVersions: hit.Versions,
	}
}

func GetModrinthProjectSlug(project *modrinthApi.Project) string {
	if project.Slug != nil {
		return *project.Slug
	}
	return core.SlugifyName(derefString(project.Title))
}

func versionFromModrinth(v *modrinthApi.Version) core.PackageVersion {
	version := core.PackageVersion{
		ID:           derefString(v.ID),
		PackageID:    derefString(v.ProjectID),
		Name:         derefString(v.Name),
		Number:       derefString(v.VersionNumber),
		Channel:      core.ReleaseChannel(derefString(v.VersionType)),
		GameVersions: v.GameVersions,
		Loaders:      v.Loaders,
		Featured:     derefBool(v.Featured),
		Published:    derefTime(v.DatePublished),
		Downloads:    derefUint32(v.Downloads),
	}
	for _, f := range v.Files {
		if f == nil || f.URL == nil {
			continue
		}
		version.Files = append(version.Files, artifactFromModrinth(f))
	}
	return version
}

// go-modrinth does not decode file_type, so artifacts from the registry always carry core.RoleNone
func artifactFromModrinth(f *modrinthApi.File) core.FileArtifact {
	artifact := core.FileArtifact{
		URL:      derefString(f.URL),
		Filename: derefString(f.Filename),
		Size:     int64(derefUint32(f.Size)),
		Primary:  derefBool(f.Primary),
	}
	if len(f.Hashes) > 0 {
		artifact.Hashes = make(map[string]string, len(f.Hashes))
		for k, v := range f.Hashes {
			artifact.Hashes[k] = v
		}
	}
	return artifact
}

func gameVersionFromModrinth(t *modrinthApi.GameVersionTag) core.GameVersionTag {
	return core.GameVersionTag{
		Version: derefString(t.Version),
		Type:    derefString(t.VersionType),
		Date:    derefTime(t.Date),
		Major:   derefBool(t.Major),
	}
}

func categoryFromModrinth(t *modrinthApi.CategoryTag) core.CategoryTag {
	return core.CategoryTag{
		Name:        derefString(t.Name),
		ProjectType: derefString(t.ProjectType),
		Header:      derefString(t.Header),
		Icon:        derefString(t.Icon),
	}
}
