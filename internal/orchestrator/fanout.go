package orchestrator

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/tutorgen/internal/agent"
	"github.com/dusk-indust/tutorgen/internal/tutorial"
)

// FanOut runs the section generators concurrently against one topic and
// joins on all of them or on the first failure.
type FanOut struct {
	generators []agent.SectionGenerator
	onProgress func(ProgressEvent)
}

// NewFanOut creates a FanOut over generators.
// onProgress may be called from several goroutines; it may be nil.
func NewFanOut(generators []agent.SectionGenerator, onProgress func(ProgressEvent)) *FanOut {
	return &FanOut{generators: generators, onProgress: onProgress}
}

// Run starts every generator and returns their results indexed like the
// generators. It returns as soon as all succeed, the first one fails, or ctx
// is done, without waiting for stragglers: the first failure cancels the
// shared context and anything still running is discarded.
func (f *FanOut) Run(ctx context.Context, topic tutorial.Topic) ([]tutorial.SectionResult, error) {
	results := make([]tutorial.SectionResult, len(f.generators))
	g, gctx := errgroup.WithContext(ctx)

	var (
		once     sync.Once
		firstErr error
		failed   = make(chan struct{})
	)

	for _, gen := range f.generators {
		f.emit(ProgressEvent{Section: gen.Variant().String(), Status: ProgressPending})
	}

	for i, gen := range f.generators {
		v := gen.Variant()
		g.Go(func() error {
			f.emit(ProgressEvent{Section: v.String(), Status: ProgressWorking})

			section, err := gen.Generate(gctx, topic)
			if err != nil {
				err = stageErr(StateGenerating, &v, err)
				// Report before signalling: Run may return as soon as failed closes.
				f.emit(ProgressEvent{Section: v.String(), Status: ProgressFailed, Message: err.Error()})
				once.Do(func() {
					firstErr = err
					close(failed)
				})
				return err // cancels gctx for the siblings
			}

			results[i] = section
			f.emit(ProgressEvent{Section: v.String(), Status: ProgressComplete})
			return nil
		})
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			return nil, firstErr
		}
		return results, nil
	case <-failed:
		return nil, firstErr
	case <-ctx.Done():
		return nil, stageErr(StateGenerating, nil, ctx.Err())
	}
}

// emit sends a progress event if a callback is registered.
func (f *FanOut) emit(ev ProgressEvent) {
	if f.onProgress != nil {
		ev.Marker = MarkerGenerating
		f.onProgress(ev)
	}
}
