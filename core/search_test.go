package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

type updateLog struct {
	mu      sync.Mutex
	updates []SearchUpdate
	errs    []error
}

func (l *updateLog) onResults(u SearchUpdate) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.updates = append(l.updates, u)
}

func (l *updateLog) onError(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = append(l.errs, err)
}

func TestSearchSessionDebouncesQueryEdits(t *testing.T) {
	reg := newFakeRegistry()
	reg.hits["sod"] = []PackageSummary{pkgSodium}
	log := &updateLog{}

	s := NewSearchSession(reg, SessionOptions{
		Debounce:    50 * time.Millisecond,
		GameVersion: "1.20.1",
		ProjectType: ProjectTypeMod,
		OnResults:   log.onResults,
	})
	defer s.Close()

	s.SetQuery("s")
	s.SetQuery("so")
	s.SetQuery("sod")
	require.NoError(t, s.Wait(waitCtx(t)))

	searches := reg.Searches()
	require.Len(t, searches, 1)
	assert.Equal(t, "sod", searches[0].Query)
	assert.Equal(t, SortRelevance, searches[0].Index)
	assert.Equal(t, [][]string{{"versions:1.20.1"}, {"project_type:mod"}}, searches[0].Facets)

	assert.Equal(t, []PackageSummary{pkgSodium}, s.Results())
	require.Len(t, log.updates, 1)
	assert.Equal(t, "sod", log.updates[0].Criteria.Query)
}

func TestSearchSessionDiscardsStaleResponses(t *testing.T) {
	reg := newFakeRegistry()
	reg.hits["s"] = []PackageSummary{pkgIris}
	reg.hits["sod"] = []PackageSummary{pkgSodium}
	gate := make(chan struct{})
	reg.gates["s"] = gate
	reg.started = make(chan string, 4)
	log := &updateLog{}

	s := NewSearchSession(reg, SessionOptions{Debounce: time.Millisecond, OnResults: log.onResults})

	s.SetQuery("s")
	select {
	case q := <-reg.started:
		require.Equal(t, "s", q)
	case <-time.After(5 * time.Second):
		t.Fatal("search for s was never issued")
	}

	s.SetQuery("sod")
	require.NoError(t, s.Wait(waitCtx(t)))
	assert.Equal(t, []PackageSummary{pkgSodium}, s.Results())

	// the earlier request completes last and must not overwrite anything
	close(gate)
	s.Close()

	assert.Equal(t, []PackageSummary{pkgSodium}, s.Results())
	require.Len(t, log.updates, 1)
	assert.Equal(t, "sod", log.updates[0].Criteria.Query)
}

func TestSearchSessionImmediateCriteria(t *testing.T) {
	reg := newFakeRegistry()
	s := NewSearchSession(reg, SessionOptions{Debounce: time.Hour, ProjectType: ProjectTypeMod})
	defer s.Close()

	s.SetGameVersion("1.19.2")
	require.NoError(t, s.Wait(waitCtx(t)))
	s.SetCategory("adventure")
	require.NoError(t, s.Wait(waitCtx(t)))
	s.SetSort(SortFollows)
	require.NoError(t, s.Wait(waitCtx(t)))

	searches := reg.Searches()
	require.Len(t, searches, 3)
	assert.Equal(t, [][]string{{"versions:1.19.2"}, {"project_type:mod"}}, searches[0].Facets)
	assert.Equal(t, [][]string{{"categories:adventure"}, {"versions:1.19.2"}, {"project_type:mod"}}, searches[1].Facets)
	assert.Equal(t, SearchCriteria{GameVersion: "1.19.2", Category: "adventure", Sort: SortFollows}, s.Criteria())
}

func TestSearchSessionEmptyQueryUsesDefaultListing(t *testing.T) {
	reg := newFakeRegistry()
	s := NewSearchSession(reg, SessionOptions{GameVersion: "1.20.1"})
	defer s.Close()

	s.Start()
	require.NoError(t, s.Wait(waitCtx(t)))

	searches := reg.Searches()
	require.Len(t, searches, 1)
	assert.Equal(t, "", searches[0].Query)
	assert.Equal(t, SortDownloads, searches[0].Index)
	assert.Equal(t, DefaultSearchLimit, searches[0].Limit)
}

func TestSearchSessionErrorYieldsEmptyResults(t *testing.T) {
	reg := newFakeRegistry()
	reg.hits["sodium"] = []PackageSummary{pkgSodium}
	log := &updateLog{}

	s := NewSearchSession(reg, SessionOptions{Debounce: time.Millisecond, OnResults: log.onResults, OnError: log.onError})
	defer s.Close()

	s.SetQuery("sodium")
	require.NoError(t, s.Wait(waitCtx(t)))
	require.Len(t, s.Results(), 1)

	reg.mu.Lock()
	reg.err = &TransportError{Op: "search", StatusCode: 503, Status: "503 Service Unavailable"}
	reg.mu.Unlock()

	s.Refresh()
	require.NoError(t, s.Wait(waitCtx(t)))

	assert.Empty(t, s.Results())
	assert.Error(t, s.Current().Err)
	require.Len(t, log.errs, 1)
}

func TestSearchSessionClose(t *testing.T) {
	reg := newFakeRegistry()
	s := NewSearchSession(reg, SessionOptions{Debounce: 20 * time.Millisecond})

	s.SetQuery("sodium")
	s.Close()
	time.Sleep(60 * time.Millisecond)

	assert.Empty(t, reg.Searches())
	// edits after close are ignored
	s.SetCategory("adventure")
	assert.Empty(t, reg.Searches())
	assert.NoError(t, s.Wait(waitCtx(t)))
}

func TestSearchSessionLoaderFacets(t *testing.T) {
	reg := newFakeRegistry()
	s := NewSearchSession(reg, SessionOptions{
		GameVersion: "1.20.1",
		Loaders:     []string{"fabric", "quilt"},
	})
	defer s.Close()

	s.Start()
	require.NoError(t, s.Wait(waitCtx(t)))

	searches := reg.Searches()
	require.Len(t, searches, 1)
	assert.Equal(t, SortDownloads, searches[0].Index)
	assert.Equal(t, [][]string{{"categories:fabric", "categories:quilt"}, {"versions:1.20.1"}}, searches[0].Facets)
}

func TestSearchSessionCallbacksFollowRequestOrder(t *testing.T) {
	reg := newFakeRegistry()
	entered := make(chan struct{})
	release := make(chan struct{})

	var mu sync.Mutex
	var delivered []string
	s := NewSearchSession(reg, SessionOptions{
		Debounce: time.Millisecond,
		OnResults: func(u SearchUpdate) {
			if u.Criteria.Query == "old" {
				close(entered)
				<-release
			}
			mu.Lock()
			delivered = append(delivered, u.Criteria.Query)
			mu.Unlock()
		},
	})
	defer s.Close()

	s.SetQuery("old")
	select {
	case <-entered:
	case <-waitCtx(t).Done():
		t.Fatal("old results were never delivered")
	}

	s.SetQuery("new")
	// the newer response must not overtake the callback still running for the older one
	assert.Never(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(delivered) > 0
	}, 100*time.Millisecond, 5*time.Millisecond)

	close(release)
	require.NoError(t, s.Wait(waitCtx(t)))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"old", "new"}, delivered)
	assert.Equal(t, "new", s.Current().Criteria.Query)
}
