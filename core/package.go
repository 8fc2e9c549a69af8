package core

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"golang.org/x/exp/slices"
)

type ReleaseChannel string

const (
	ChannelRelease ReleaseChannel = "release"
	ChannelBeta    ReleaseChannel = "beta"
	ChannelAlpha   ReleaseChannel = "alpha"
)

func ParseReleaseChannel(s string) (ReleaseChannel, error) {
	switch ReleaseChannel(s) {
	case ChannelRelease, ChannelBeta, ChannelAlpha:
		return ReleaseChannel(s), nil
	}
	return "", fmt.Errorf("unknown release channel %q, must be one of release, beta or alpha", s)
}

// FileRole distinguishes resource pack files attached to a version from regular files
type FileRole string

const (
	RoleNone                 FileRole = ""
	RoleRequiredResourcePack FileRole = "required-resource-pack"
	RoleOptionalResourcePack FileRole = "optional-resource-pack"
)

// PackageSummary is a registry listing entry. It is sourced fresh on every search and never mutated.
type PackageSummary struct {
	ID           string
	Slug         string
	Title        string
	Description  string
	ProjectType  string
	Categories   []string
	Downloads    int
	Follows      int
	Updated      time.Time
	IconURL      string
	GameVersions []string
	Loaders      []string
}

// DisplayName returns the title, falling back to the slug and then the ID
func (p PackageSummary) DisplayName() string {
	if p.Title != "" {
		return p.Title
	}
	if p.Slug != "" {
		return p.Slug
	}
	return p.ID
}

func (p PackageSummary) clone() PackageSummary {
	p.Categories = slices.Clone(p.Categories)
	p.GameVersions = slices.Clone(p.GameVersions)
	p.Loaders = slices.Clone(p.Loaders)
	return p
}

type FileArtifact struct {
	URL      string
	Filename string
	Size     int64
	Hashes   map[string]string
	Role     FileRole
	Primary  bool
}

func (f FileArtifact) clone() FileArtifact {
	if f.Hashes != nil {
		hashes := make(map[string]string, len(f.Hashes))
		for k, v := range f.Hashes {
			hashes[k] = v
		}
		f.Hashes = hashes
	}
	return f
}

type PackageVersion struct {
	ID           string
	PackageID    string
	Name         string
	Number       string
	Channel      ReleaseChannel
	GameVersions []string
	Loaders      []string
	Featured     bool
	Published    time.Time
	Downloads    int
	Files        []FileArtifact
}

// PrimaryArtifact returns the file marked primary, or the first file when none is marked.
// The boolean is false when the version has no files at all.
func (v PackageVersion) PrimaryArtifact() (FileArtifact, bool) {
	if len(v.Files) == 0 {
		return FileArtifact{}, false
	}
	for _, f := range v.Files {
		if f.Primary {
			return f, true
		}
	}
	return v.Files[0], true
}

func (v PackageVersion) SupportsGameVersion(gameVersion string) bool {
	return slices.Contains(v.GameVersions, gameVersion)
}

// SupportsAnyLoader reports whether the version lists at least one of the loaders; an empty filter matches everything
func (v PackageVersion) SupportsAnyLoader(loaders []string) bool {
	if len(loaders) == 0 {
		return true
	}
	for _, l := range loaders {
		if slices.Contains(v.Loaders, l) {
			return true
		}
	}
	return false
}

func (v PackageVersion) clone() PackageVersion {
	v.GameVersions = slices.Clone(v.GameVersions)
	v.Loaders = slices.Clone(v.Loaders)
	if v.Files != nil {
		files := make([]FileArtifact, len(v.Files))
		for i, f := range v.Files {
			files[i] = f.clone()
		}
		v.Files = files
	}
	return v
}

var fileSizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatFileSize renders a byte count with binary units, e.g. 1536 -> "1.5 KB"
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(fileSizeUnits) {
		i = len(fileSizeUnits) - 1
	}
	value := float64(bytes) / math.Pow(1024, float64(i))
	return strconv.FormatFloat(math.Round(value*100)/100, 'f', -1, 64) + " " + fileSizeUnits[i]
}
