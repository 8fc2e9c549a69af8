package core

import (
	"context"
	"io"
)

// Registry is the remote package index. Implementations translate transport failures into *TransportError.
type Registry interface {
	Search(ctx context.Context, query CompiledQuery) (SearchResults, error)
	GetPackage(ctx context.Context, id string) (PackageSummary, error)
	// ListVersions returns every version of a package. The filter is a hint; callers must not rely on it being applied.
	ListVersions(ctx context.Context, id string, filter VersionFilter) ([]PackageVersion, error)
	GameVersions(ctx context.Context) ([]GameVersionTag, error)
	Categories(ctx context.Context) ([]CategoryTag, error)
}

type SearchResults struct {
	Hits      []PackageSummary
	Offset    int
	Limit     int
	TotalHits int
}

type VersionFilter struct {
	GameVersions []string
	Loaders      []string
}

// ArtifactFetcher opens the byte stream of an artifact. The returned size is -1 when unknown.
type ArtifactFetcher interface {
	Fetch(ctx context.Context, artifact FileArtifact) (io.ReadCloser, int64, error)
}

// ArtifactSink stores one retrieved artifact under its declared filename
type ArtifactSink interface {
	Store(filename string, r io.Reader) (int64, error)
}

// BundleItem describes one artifact added to a bundle, recorded in the bundle manifest
type BundleItem struct {
	PackageID     string
	Title         string
	VersionID     string
	VersionNumber string
	Filename      string
}

// Bundle collects several artifacts into a single archive
type Bundle interface {
	Add(item BundleItem, r io.Reader) (int64, error)
	// Close finalises the archive and returns its path
	Close() (string, error)
	// Abort discards a partially written archive
	Abort() error
}

type Bundler interface {
	NewBundle(label string) (Bundle, error)
}

// Analyzer identifies a local archive against the registry
type Analyzer interface {
	Analyze(ctx context.Context, path string) (AnalyzedFileReport, error)
}
