package sources

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	modrinthApi "codeberg.org/jmansfield/go-modrinth/modrinth"
	"github.com/sirupsen/logrus"

	"github.com/leocov-dev/mrbulk/core"
)

const DefaultBaseURL = "https://api.modrinth.com/v2"

type RegistryOptions struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// ModrinthRegistry implements core.Registry on top of go-modrinth
type ModrinthRegistry struct {
	client *modrinthApi.Client
}

func NewModrinthRegistry(opts RegistryOptions) (*ModrinthRegistry, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.UserAgent != "" {
		core.UserAgent = opts.UserAgent
	}

	// go-modrinth resolves relative paths, so the base needs a trailing slash
	base, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/") + "/")
	if err != nil {
		return nil, err
	}

	client := modrinthApi.NewClient(&http.Client{Timeout: opts.Timeout})
	client.BaseURL = base
	client.UserAgent = core.UserAgent

	return &ModrinthRegistry{client: client}, nil
}

// withContext runs a blocking call and returns early when ctx is done.
// go-modrinth calls do not take a context, so an abandoned call finishes in the background.
func withContext[T any](ctx context.Context, call func() (T, error)) (T, error) {
	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)
	go func() {
		v, err := call()
		done <- result{v, err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case res := <-done:
		return res.value, res.err
	}
}

// registryError wraps a go-modrinth failure, mapping a 404 to core.ErrNotFound
func registryError(op string, err error) error {
	transportErr := &core.TransportError{Op: op, Err: err}

	var notFound *modrinthApi.NotFoundErrorResponse
	var errResp *modrinthApi.ErrorResponse
	switch {
	case errors.As(err, &notFound):
		transportErr.Err = core.ErrNotFound
		if notFound.Response != nil {
			transportErr.StatusCode = notFound.Response.StatusCode
			transportErr.Status = notFound.Response.Status
		}
	case errors.As(err, &errResp):
		if errResp.Response != nil {
			transportErr.StatusCode = errResp.Response.StatusCode
			transportErr.Status = errResp.Response.Status
		}
	}
	return transportErr
}

func (r *ModrinthRegistry) Search(ctx context.Context, query core.CompiledQuery) (core.SearchResults, error) {
	logrus.WithField("query", query.Encode()).Debug("searching modrinth")

	res, err := withContext(ctx, func() (*modrinthApi.SearchResponse, error) {
		return r.client.Projects.Search(&modrinthApi.SearchOptions{
			Query:  query.Query,
			Facets: query.Facets,
			Index:  string(query.Index),
			Offset: query.Offset,
			Limit:  query.Limit,
		})
	})
	if err != nil {
		return core.SearchResults{}, registryError("search", err)
	}

	results := core.SearchResults{
		Offset:    query.Offset,
		Limit:     query.Limit,
		TotalHits: derefUint32(res.TotalHits),
	}
	for _, hit := range res.Hits {
		if hit == nil || hit.ProjectID == nil {
			continue
		}
		results.Hits = append(results.Hits, summaryFromSearchResult(hit))
	}
	return results, nil
}

func (r *ModrinthRegistry) GetPackage(ctx context.Context, id string) (core.PackageSummary, error) {
	project, err := withContext(ctx, func() (*modrinthApi.Project, error) {
		return r.client.Projects.Get(id)
	})
	if err != nil {
		return core.PackageSummary{}, registryError("get project "+id, err)
	}
	if project == nil || project.ID == nil {
		return core.PackageSummary{}, &core.TransportError{Op: "get project " + id, Err: core.ErrNotFound}
	}
	return summaryFromProject(project), nil
}

func (r *ModrinthRegistry) ListVersions(ctx context.Context, id string, filter core.VersionFilter) ([]core.PackageVersion, error) {
	versions, err := withContext(ctx, func() ([]*modrinthApi.Version, error) {
		return r.client.Versions.ListVersions(id, modrinthApi.ListVersionsOptions{
			GameVersions: filter.GameVersions,
			Loaders:      filter.Loaders,
		})
	})
	if err != nil {
		return nil, registryError("list versions of "+id, err)
	}

	out := make([]core.PackageVersion, 0, len(versions))
	for _, v := range versions {
		if v == nil || v.ID == nil {
			continue
		}
		out = append(out, versionFromModrinth(v))
	}
	return out, nil
}

func (r *ModrinthRegistry) GameVersions(ctx context.Context) ([]core.GameVersionTag, error) {
	tags, err := withContext(ctx, r.client.Tags.GetGameVersions)
	if err != nil {
		return nil, registryError("get game versions", err)
	}
	out := make([]core.GameVersionTag, 0, len(tags))
	for _, t := range tags {
		if t == nil || t.Version == nil {
			continue
		}
		out = append(out, gameVersionFromModrinth(t))
	}
	return out, nil
}

func (r *ModrinthRegistry) Categories(ctx context.Context) ([]core.CategoryTag, error) {
	tags, err := withContext(ctx, r.client.Tags.GetCategories)
	if err != nil {
		return nil, registryError("get categories", err)
	}
	out := make([]core.CategoryTag, 0, len(tags))
	for _, t := range tags {
		if t == nil || t.Name == nil {
			continue
		}
		out = append(out, categoryFromModrinth(t))
	}
	return out, nil
}

// VersionFromHash looks up the version that published a file with the given hash.
// The error wraps core.ErrNotFound when no published file has the hash.
func (r *ModrinthRegistry) VersionFromHash(ctx context.Context, hash, algorithm string) (core.PackageVersion, error) {
	v, err := withContext(ctx, func() (*modrinthApi.Version, error) {
		return r.client.VersionFiles.GetFromHash(url.PathEscape(hash), algorithm)
	})
	if err != nil {
		return core.PackageVersion{}, registryError("get version from hash", err)
	}
	if v == nil || v.ID == nil {
		return core.PackageVersion{}, errors.New("invalid version file response")
	}
	return versionFromModrinth(v), nil
}
