package core

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultDebounce    = 300 * time.Millisecond
	DefaultSearchLimit = 20
)

type SessionOptions struct {
	// Debounce is the quiet period after the last query edit before a search is issued
	Debounce    time.Duration
	Limit       int
	ProjectType ProjectType
	GameVersion string
	Loaders     []string
	// DefaultSort orders the listing shown when the query is empty
	DefaultSort SortIndex
	OnResults   func(SearchUpdate)
	OnError     func(error)
}

type SearchCriteria struct {
	Query       string
	GameVersion string
	Category    string
	Sort        SortIndex
}

// SearchUpdate is the applied outcome of one search request
type SearchUpdate struct {
	Generation uint64
	Criteria   SearchCriteria
	Request    CompiledQuery
	Results    SearchResults
	Err        error
}

// SearchSession turns criteria edits into registry searches. Query edits are debounced, the other
// criteria apply immediately, and only the response to the most recent request is ever applied.
type SearchSession struct {
	registry Registry
	opts     SessionOptions

	mu sync.Mutex
	// deliverMu serialises the generation check with the callbacks of the update it admits
	deliverMu  sync.Mutex
	criteria   SearchCriteria
	generation uint64
	applied    uint64
	timer      *time.Timer
	cancel     context.CancelFunc
	current    SearchUpdate
	changed    chan struct{}
	closed     bool
	inflight   sync.WaitGroup
}

func NewSearchSession(registry Registry, opts SessionOptions) *SearchSession {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultSearchLimit
	}
	if opts.DefaultSort == "" {
		opts.DefaultSort = SortDownloads
	}
	return &SearchSession{
		registry: registry,
		opts:     opts,
		criteria: SearchCriteria{GameVersion: opts.GameVersion, Sort: SortRelevance},
		changed:  make(chan struct{}),
	}
}

// Start issues the initial listing for the current criteria
func (s *SearchSession) Start() {
	s.Refresh()
}

func (s *SearchSession) SetQuery(query string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.criteria.Query = query
	gen := s.supersedeLocked()
	s.timer = time.AfterFunc(s.opts.Debounce, func() {
		s.issue(gen)
	})
	s.mu.Unlock()
}

func (s *SearchSession) SetGameVersion(version string) {
	s.update(func(c *SearchCriteria) { c.GameVersion = version })
}

func (s *SearchSession) SetCategory(category string) {
	s.update(func(c *SearchCriteria) { c.Category = category })
}

func (s *SearchSession) SetSort(sort SortIndex) {
	s.update(func(c *SearchCriteria) { c.Sort = sort })
}

// Refresh re-issues the search for the current criteria without waiting
func (s *SearchSession) Refresh() {
	s.update(func(*SearchCriteria) {})
}

func (s *SearchSession) update(apply func(*SearchCriteria)) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	apply(&s.criteria)
	gen := s.supersedeLocked()
	s.mu.Unlock()
	s.issue(gen)
}

// supersedeLocked invalidates the pending timer and the in-flight request and returns the new generation
func (s *SearchSession) supersedeLocked() uint64 {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.generation++
	return s.generation
}

func (s *SearchSession) issue(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.generation {
		s.mu.Unlock()
		return
	}
	criteria := s.criteria
	req := s.compile(criteria)
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.inflight.Add(1)
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"generation": gen,
		"query":      req.Encode(),
	}).Debug("issuing search")

	go func() {
		defer s.inflight.Done()
		defer cancel()
		results, err := s.registry.Search(ctx, req)
		s.apply(SearchUpdate{
			Generation: gen,
			Criteria:   criteria,
			Request:    req,
			Results:    results,
			Err:        err,
		})
	}()
}

func (s *SearchSession) compile(c SearchCriteria) CompiledQuery {
	req := SearchRequest{
		Query:       c.Query,
		ProjectType: s.opts.ProjectType,
		Sort:        c.Sort,
		Limit:       s.opts.Limit,
		Loaders:     s.opts.Loaders,
	}
	if strings.TrimSpace(c.Query) == "" {
		req.Sort = s.opts.DefaultSort
	}
	if c.GameVersion != "" {
		req.GameVersions = []string{c.GameVersion}
	}
	if c.Category != "" {
		req.Categories = []string{c.Category}
	}
	return CompileQuery(req)
}

func (s *SearchSession) apply(update SearchUpdate) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	if s.closed || update.Generation != s.generation {
		s.mu.Unlock()
		logrus.WithField("generation", update.Generation).Debug("discarding superseded search response")
		return
	}
	if update.Err != nil {
		update.Results = SearchResults{}
	}
	s.current = update
	s.cancel = nil
	s.mu.Unlock()

	if update.Err != nil {
		logrus.WithError(update.Err).Warn("search failed")
		if s.opts.OnError != nil {
			s.opts.OnError(update.Err)
		}
	}
	if s.opts.OnResults != nil {
		s.opts.OnResults(update)
	}

	// settled only once the callbacks have seen the update
	s.mu.Lock()
	if update.Generation > s.applied {
		s.applied = update.Generation
	}
	close(s.changed)
	s.changed = make(chan struct{})
	s.mu.Unlock()
}

func (s *SearchSession) Criteria() SearchCriteria {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.criteria
}

func (s *SearchSession) Current() SearchUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *SearchSession) Results() []PackageSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PackageSummary, len(s.current.Results.Hits))
	for i, h := range s.current.Results.Hits {
		out[i] = h.clone()
	}
	return out
}

// Wait blocks until the response for the latest criteria has been applied
func (s *SearchSession) Wait(ctx context.Context) error {
	for {
		s.mu.Lock()
		if s.closed || (s.generation > 0 && s.applied == s.generation) {
			s.mu.Unlock()
			return nil
		}
		changed := s.changed
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
		}
	}
}

// Close stops the debounce timer, cancels the in-flight request and waits for it to return
func (s *SearchSession) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	close(s.changed)
	s.changed = make(chan struct{})
	s.mu.Unlock()

	s.inflight.Wait()
}
