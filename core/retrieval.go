package core

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

type TaskStatus int

const (
	StatusPending TaskStatus = iota
	StatusInProgress
	StatusSucceeded
	StatusFailed
	StatusSkipped
)

func (s TaskStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusInProgress:
		return "in progress"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	}
	return "unknown"
}

func (s TaskStatus) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusSkipped
}

// RetrievalTask tracks the transfer of one selected package's primary artifact
type RetrievalTask struct {
	Index     int
	PackageID string
	Title     string
	Version   PackageVersion
	Artifact  FileArtifact
	Status    TaskStatus
	// Progress is a checkpoint percentage in [0, 100]; it never decreases
	Progress int
	Bytes    int64
	Err      error

	hasArtifact bool
}

type RetrievalMode int

const (
	ModeIndividual RetrievalMode = iota
	ModeBundled
	// ModeBundledFallback is a bundled request that was carried out as individual retrieval
	ModeBundledFallback
)

func (m RetrievalMode) String() string {
	switch m {
	case ModeIndividual:
		return "individual"
	case ModeBundled:
		return "bundled"
	case ModeBundledFallback:
		return "individual (bundling unavailable)"
	}
	return "unknown"
}

type ProgressEvent struct {
	TaskIndex int
	PackageID string
	Filename  string
	Status    TaskStatus
	Progress  int
	Err       error
}

type ProgressFunc func(ProgressEvent)

// Report is the outcome of a batch. Tasks that were never started after abandonment stay pending.
type Report struct {
	Mode       RetrievalMode
	Notice     string
	BundlePath string
	Tasks      []RetrievalTask
	Abandoned  bool
	// Err is a batch level failure, such as a bundle that could not be finalised
	Err error
}

func (r Report) filter(status TaskStatus) []RetrievalTask {
	var out []RetrievalTask
	for _, t := range r.Tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

func (r Report) Succeeded() []RetrievalTask { return r.filter(StatusSucceeded) }
func (r Report) Failed() []RetrievalTask    { return r.filter(StatusFailed) }
func (r Report) Skipped() []RetrievalTask   { return r.filter(StatusSkipped) }

// Batch is a running retrieval
type Batch struct {
	progress  ProgressFunc
	emitMu    sync.Mutex
	abandoned atomic.Bool
	done      chan struct{}
	report    Report
}

func newBatch(progress ProgressFunc) *Batch {
	return &Batch{progress: progress, done: make(chan struct{})}
}

// Abandon stops surfacing events and prevents further tasks from starting.
// The task in flight runs to completion and nothing already stored is rolled back.
func (b *Batch) Abandon() {
	b.abandoned.Store(true)
}

func (b *Batch) Done() <-chan struct{} {
	return b.done
}

func (b *Batch) Wait() Report {
	<-b.done
	return b.report
}

func (b *Batch) emit(task *RetrievalTask) {
	if b.progress == nil {
		return
	}
	b.emitMu.Lock()
	defer b.emitMu.Unlock()
	if b.abandoned.Load() {
		return
	}
	b.progress(ProgressEvent{
		TaskIndex: task.Index,
		PackageID: task.PackageID,
		Filename:  task.Artifact.Filename,
		Status:    task.Status,
		Progress:  task.Progress,
		Err:       task.Err,
	})
}

const DefaultCheckpointStep = 20

type Orchestrator struct {
	fetcher ArtifactFetcher
	sink    ArtifactSink
	bundler Bundler
	step    int
	delay   time.Duration
}

type OrchestratorOption func(*Orchestrator)

func WithBundler(bundler Bundler) OrchestratorOption {
	return func(o *Orchestrator) {
		o.bundler = bundler
	}
}

// WithCheckpointStep sets the progress checkpoint spacing in percent
func WithCheckpointStep(step int) OrchestratorOption {
	return func(o *Orchestrator) {
		if step > 0 && step <= 100 {
			o.step = step
		}
	}
}

// WithCheckpointDelay pauses after every emitted checkpoint
func WithCheckpointDelay(delay time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		o.delay = delay
	}
}

func NewOrchestrator(fetcher ArtifactFetcher, sink ArtifactSink, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		fetcher: fetcher,
		sink:    sink,
		step:    DefaultCheckpointStep,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) CanBundle() bool {
	return o.bundler != nil
}

// Plan creates one task per entry, in order. Pending entries are skipped up front.
func (o *Orchestrator) Plan(entries []SelectionEntry) []RetrievalTask {
	tasks := make([]RetrievalTask, len(entries))
	for i, e := range entries {
		task := RetrievalTask{
			Index:     i,
			PackageID: e.Package.ID,
			Title:     e.Package.DisplayName(),
		}
		version, ok := e.Version()
		if !ok {
			task.Status = StatusSkipped
			task.Err = &RetrievalError{
				Kind:      FailureArtifactMissingVersion,
				PackageID: task.PackageID,
				Err:       ErrNoVersionAssigned,
			}
		} else {
			task.Version = version
			task.Artifact, task.hasArtifact = version.PrimaryArtifact()
		}
		tasks[i] = task
	}
	return tasks
}

type storeFunc func(task *RetrievalTask, r io.Reader) (int64, error)

func (o *Orchestrator) storeIndividually(task *RetrievalTask, r io.Reader) (int64, error) {
	return o.sink.Store(task.Artifact.Filename, r)
}

// RetrieveIndividually stores every resolved entry's primary artifact through the sink, one at a time
func (o *Orchestrator) RetrieveIndividually(ctx context.Context, entries []SelectionEntry, progress ProgressFunc) *Batch {
	return o.startIndividual(ctx, entries, progress, ModeIndividual, "")
}

func (o *Orchestrator) startIndividual(ctx context.Context, entries []SelectionEntry, progress ProgressFunc, mode RetrievalMode, notice string) *Batch {
	b := newBatch(progress)
	tasks := o.Plan(entries)
	go func() {
		defer close(b.done)
		report := o.run(ctx, b, tasks, o.storeIndividually)
		report.Mode = mode
		report.Notice = notice
		b.report = report
	}()
	return b
}

// RetrieveBundled collects every resolved entry's primary artifact into one archive.
// Without a usable bundler it falls back to individual retrieval and says so in the report.
func (o *Orchestrator) RetrieveBundled(ctx context.Context, entries []SelectionEntry, label string, progress ProgressFunc) *Batch {
	if o.bundler == nil {
		notice := ErrBundlingUnavailable.Error() + ", files were retrieved individually"
		logrus.Warn(notice)
		return o.startIndividual(ctx, entries, progress, ModeBundledFallback, notice)
	}

	bundle, err := o.bundler.NewBundle(label)
	if err != nil {
		notice := ErrBundlingUnavailable.Error() + ": " + err.Error() + ", files were retrieved individually"
		logrus.WithError(err).Warn("could not create bundle")
		return o.startIndividual(ctx, entries, progress, ModeBundledFallback, notice)
	}

	b := newBatch(progress)
	tasks := o.Plan(entries)
	go func() {
		defer close(b.done)
		report := o.run(ctx, b, tasks, func(task *RetrievalTask, r io.Reader) (int64, error) {
			return bundle.Add(BundleItem{
				PackageID:     task.PackageID,
				Title:         task.Title,
				VersionID:     task.Version.ID,
				VersionNumber: task.Version.Number,
				Filename:      task.Artifact.Filename,
			}, r)
		})
		report.Mode = ModeBundled

		if len(report.Succeeded()) == 0 {
			if err := bundle.Abort(); err != nil {
				logrus.WithError(err).Warn("could not discard empty bundle")
			}
		} else if report.BundlePath, report.Err = bundle.Close(); report.Err != nil {
			logrus.WithError(report.Err).Error("could not finalise bundle")
			failBundledTasks(b, &report, report.Err)
		}
		b.report = report
	}()
	return b
}

// failBundledTasks marks every artifact written into a bundle that was never delivered as failed
func failBundledTasks(b *Batch, report *Report, err error) {
	for i := range report.Tasks {
		task := &report.Tasks[i]
		if task.Status != StatusSucceeded {
			continue
		}
		task.Status = StatusFailed
		task.Err = &RetrievalError{
			Kind:      FailureTransferFailed,
			PackageID: task.PackageID,
			Filename:  task.Artifact.Filename,
			Err:       fmt.Errorf("bundle could not be finalised: %w", err),
		}
		b.emit(task)
	}
}

func (o *Orchestrator) run(ctx context.Context, b *Batch, tasks []RetrievalTask, store storeFunc) Report {
	report := Report{Tasks: tasks}
	for i := range tasks {
		task := &tasks[i]
		if task.Status == StatusSkipped {
			logrus.WithField("package", task.PackageID).Debug("skipping entry without a version")
			b.emit(task)
			continue
		}
		if b.abandoned.Load() {
			report.Abandoned = true
			break
		}
		o.runTask(ctx, b, task, store)
	}
	if b.abandoned.Load() {
		report.Abandoned = true
	}
	return report
}

func (o *Orchestrator) runTask(ctx context.Context, b *Batch, task *RetrievalTask, store storeFunc) {
	log := logrus.WithFields(logrus.Fields{"package": task.PackageID, "file": task.Artifact.Filename})

	task.Status = StatusInProgress
	task.Progress = 0
	b.emit(task)

	fail := func(kind FailureKind, err error) {
		task.Status = StatusFailed
		task.Err = &RetrievalError{
			Kind:      kind,
			PackageID: task.PackageID,
			Filename:  task.Artifact.Filename,
			Err:       err,
		}
		log.WithError(err).Warn("retrieval failed")
		b.emit(task)
	}

	if !task.hasArtifact {
		fail(FailureArtifactMissing, ErrArtifactMissing)
		return
	}

	body, size, err := o.fetcher.Fetch(ctx, task.Artifact)
	if err != nil {
		fail(FailureTransferFailed, err)
		return
	}
	defer body.Close()
	if size <= 0 {
		size = task.Artifact.Size
	}

	cp := &checkpointer{
		step:  o.step,
		total: size,
		emit: func(pct int) {
			task.Progress = pct
			b.emit(task)
			o.pause(ctx)
		},
	}

	n, err := store(task, &countingReader{r: body, onRead: cp.add})
	task.Bytes = n
	if err != nil {
		fail(FailureTransferFailed, err)
		return
	}

	cp.complete()
	task.Status = StatusSucceeded
	log.WithField("bytes", n).Debug("retrieved")
	b.emit(task)
}

func (o *Orchestrator) pause(ctx context.Context) {
	if o.delay <= 0 {
		return
	}
	t := time.NewTimer(o.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// checkpointer turns transferred byte counts into evenly spaced percentage checkpoints.
// 100 is only emitted by complete, so it always means the artifact was stored.
type checkpointer struct {
	step  int
	total int64
	read  int64
	last  int
	emit  func(int)
}

func (c *checkpointer) add(n int) {
	c.read += int64(n)
	if c.total <= 0 {
		return
	}
	pct := int(c.read * 100 / c.total)
	if pct > 99 {
		pct = 99
	}
	for next := c.last + c.step; next <= pct; next += c.step {
		c.last = next
		c.emit(next)
	}
}

func (c *checkpointer) complete() {
	if c.last < 100 {
		c.last = 100
		c.emit(100)
	}
}

type countingReader struct {
	r      io.Reader
	onRead func(int)
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.onRead(n)
	}
	return n, err
}
