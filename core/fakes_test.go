package core

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
)

type fakeRegistry struct {
	mu       sync.Mutex
	searches []CompiledQuery
	// gates blocks a search for the given query until the channel is closed
	gates    map[string]chan struct{}
	started  chan string
	hits     map[string][]PackageSummary
	packages map[string]PackageSummary
	versions map[string][]PackageVersion
	filters  []VersionFilter
	tags     []GameVersionTag
	cats     []CategoryTag
	err      error
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		gates:    make(map[string]chan struct{}),
		hits:     make(map[string][]PackageSummary),
		packages: make(map[string]PackageSummary),
		versions: make(map[string][]PackageVersion),
	}
}

func (f *fakeRegistry) Search(_ context.Context, query CompiledQuery) (SearchResults, error) {
	f.mu.Lock()
	f.searches = append(f.searches, query)
	gate := f.gates[query.Query]
	started := f.started
	hits := f.hits[query.Query]
	err := f.err
	f.mu.Unlock()

	if started != nil {
		started <- query.Query
	}
	if gate != nil {
		<-gate
	}
	if err != nil {
		return SearchResults{}, err
	}
	return SearchResults{Hits: hits, Limit: query.Limit, TotalHits: len(hits)}, nil
}

func (f *fakeRegistry) Searches() []CompiledQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]CompiledQuery, len(f.searches))
	copy(out, f.searches)
	return out
}

func (f *fakeRegistry) GetPackage(_ context.Context, id string) (PackageSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return PackageSummary{}, f.err
	}
	p, ok := f.packages[id]
	if !ok {
		return PackageSummary{}, ErrNotFound
	}
	return p, nil
}

func (f *fakeRegistry) ListVersions(_ context.Context, id string, filter VersionFilter) ([]PackageVersion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, filter)
	if f.err != nil {
		return nil, f.err
	}
	return f.versions[id], nil
}

func (f *fakeRegistry) GameVersions(context.Context) ([]GameVersionTag, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tags, nil
}

func (f *fakeRegistry) Categories(context.Context) ([]CategoryTag, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.cats, nil
}

type fakeFetcher struct {
	data map[string][]byte
	// unknownSize reports -1 as the size for every artifact
	unknownSize bool
	errs        map[string]error
	fetched     []string
	// onFetch runs before the body is returned
	onFetch func(artifact FileArtifact)
}

func (f *fakeFetcher) Fetch(_ context.Context, artifact FileArtifact) (io.ReadCloser, int64, error) {
	f.fetched = append(f.fetched, artifact.Filename)
	if f.onFetch != nil {
		f.onFetch(artifact)
	}
	if err := f.errs[artifact.URL]; err != nil {
		return nil, 0, err
	}
	data, ok := f.data[artifact.URL]
	if !ok {
		return nil, 0, &TransportError{Op: "download", URL: artifact.URL, StatusCode: 404, Status: "404 Not Found"}
	}
	size := int64(len(data))
	if f.unknownSize {
		size = -1
	}
	return io.NopCloser(bytes.NewReader(data)), size, nil
}

type memorySink struct {
	mu    sync.Mutex
	files map[string][]byte
	order []string
	err   error
}

func newMemorySink() *memorySink {
	return &memorySink{files: make(map[string][]byte)}
}

func (s *memorySink) Store(filename string, r io.Reader) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return int64(len(data)), err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[filename] = data
	s.order = append(s.order, filename)
	return int64(len(data)), nil
}

type memoryBundle struct {
	items    []BundleItem
	data     map[string][]byte
	closed   bool
	aborted  bool
	closeErr error
}

func (b *memoryBundle) Add(item BundleItem, r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	b.items = append(b.items, item)
	b.data[item.Filename] = data
	return int64(len(data)), nil
}

func (b *memoryBundle) Close() (string, error) {
	b.closed = true
	if b.closeErr != nil {
		return "", b.closeErr
	}
	return "bundle.zip", nil
}

func (b *memoryBundle) Abort() error {
	b.aborted = true
	return nil
}

type memoryBundler struct {
	bundle   *memoryBundle
	err      error
	closeErr error
}

func (m *memoryBundler) NewBundle(string) (Bundle, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.bundle = &memoryBundle{data: make(map[string][]byte), closeErr: m.closeErr}
	return m.bundle, nil
}

var errBoom = errors.New("boom")
