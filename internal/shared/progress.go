package shared

import (
	"context"
	"fmt"
	"sync"

	"github.com/vbauerster/mpb/v4"
	"github.com/vbauerster/mpb/v4/decor"

	"github.com/leocov-dev/mrbulk/core"
)

type progressBars struct {
	mu       sync.Mutex
	progress *mpb.Progress
	bars     map[int]*mpb.Bar
}

func newProgressBars() *progressBars {
	return &progressBars{
		progress: mpb.New(mpb.WithWidth(40)),
		bars:     make(map[int]*mpb.Bar),
	}
}

func (p *progressBars) bar(event core.ProgressEvent) *mpb.Bar {
	bar, ok := p.bars[event.TaskIndex]
	if !ok {
		name := event.Filename
		bar = p.progress.AddBar(100,
			mpb.PrependDecorators(decor.Name(name, decor.WC{W: len(name) + 1, C: decor.DidentRight})),
			mpb.AppendDecorators(decor.OnComplete(decor.Percentage(decor.WC{W: 5}), "done")),
		)
		p.bars[event.TaskIndex] = bar
	}
	return bar
}

func (p *progressBars) Update(event core.ProgressEvent) {
	if event.Status == core.StatusSkipped {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	bar := p.bar(event)
	switch event.Status {
	case core.StatusFailed:
		bar.Abort(false)
	default:
		bar.SetCurrent(int64(event.Progress))
	}
}

// Finish aborts bars left incomplete by an abandoned batch and waits for rendering to end
func (p *progressBars) Finish() {
	p.mu.Lock()
	for _, bar := range p.bars {
		if !bar.Completed() {
			bar.Abort(false)
		}
	}
	p.mu.Unlock()
	p.progress.Wait()
}

// Retrieve runs the selection through the orchestrator with progress bars.
// Cancelling ctx abandons the batch; the running transfer still finishes.
func Retrieve(ctx context.Context, orchestrator *core.Orchestrator, entries []core.SelectionEntry, bundle bool, label string) core.Report {
	bars := newProgressBars()

	var batch *core.Batch
	if bundle {
		batch = orchestrator.RetrieveBundled(context.WithoutCancel(ctx), entries, label, bars.Update)
	} else {
		batch = orchestrator.RetrieveIndividually(context.WithoutCancel(ctx), entries, bars.Update)
	}

	select {
	case <-batch.Done():
	case <-ctx.Done():
		fmt.Println("Interrupted, finishing the current download...")
		batch.Abandon()
	}

	report := batch.Wait()
	bars.Finish()
	PrintReport(report)
	return report
}

func PrintReport(report core.Report) {
	if report.Notice != "" {
		fmt.Println(report.Notice)
	}
	for _, task := range report.Tasks {
		switch task.Status {
		case core.StatusSucceeded:
			fmt.Printf("  ok      %s (%s)\n", task.Artifact.Filename, core.FormatFileSize(task.Bytes))
		case core.StatusFailed:
			fmt.Printf("  failed  %s: %v\n", task.Title, task.Err)
		case core.StatusSkipped:
			fmt.Printf("  skipped %s: %v\n", task.Title, task.Err)
		default:
			fmt.Printf("  %-7s %s\n", task.Status, task.Title)
		}
	}
	if report.BundlePath != "" {
		fmt.Printf("Bundle written to %s\n", report.BundlePath)
	}
	if report.Err != nil {
		fmt.Printf("Bundle failed: %v\n", report.Err)
	}
	fmt.Printf("%d downloaded, %d failed, %d skipped\n", len(report.Succeeded()), len(report.Failed()), len(report.Skipped()))
	if report.Abandoned {
		fmt.Println("Batch abandoned before completion")
	}
}
