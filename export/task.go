package export

import (
	"sync/atomic"
	"time"

	"github.com/tracewire/tracewire/metrics"
	"github.com/tracewire/tracewire/span"
)

// Task is a schedulable unit of work consumed by the host scheduler. The
// scheduler registers a continuation, runs Execute on its own thread of
// control, and advances the task's work series when the continuation fires.
type Task interface {
	// Execute runs the unit to completion. It must not block or suspend,
	// and it invokes the registered continuation exactly once.
	Execute()

	// SetOnComplete registers the continuation invoked when the unit
	// finishes. Must be called before Execute.
	SetOnComplete(fn func())
}

// noopTask advances the series without doing any work. Produced for spans
// that were discarded before scheduling.
type noopTask struct {
	onComplete func()
	done       atomic.Bool
}

func (t *noopTask) Execute() {
	if !t.done.CompareAndSwap(false, true) {
		return
	}
	if t.onComplete != nil {
		t.onComplete()
	}
}

func (t *noopTask) SetOnComplete(fn func()) { t.onComplete = fn }

// LogTask renders one accepted span and emits it to the sink. The task owns
// its span from creation until release.
type LogTask struct {
	span     *span.Span
	sink     Sink
	enc      Encoder
	callback func(*LogTask)
	metrics  *metrics.Metrics

	onComplete func()

	// Guards the single release of the span: Execute and Cancel may race
	// when a host tears a series down, and exactly one of them wins.
	finished atomic.Bool
}

// Span exposes the owned span to the observer callback. It is only valid
// during the callback; the span is released when the task completes.
func (t *LogTask) Span() *span.Span { return t.span }

// SetOnComplete registers the continuation invoked after the span is
// emitted and released.
func (t *LogTask) SetOnComplete(fn func()) { t.onComplete = fn }

// Execute renders the span, writes the line, notifies the observer,
// releases the span, and signals completion. Never blocks; sink failures
// are swallowed.
func (t *LogTask) Execute() {
	if !t.finished.CompareAndSwap(false, true) {
		return
	}

	start := time.Now()
	t.sink.Write(t.enc.Encode(t.span))

	if t.callback != nil {
		t.callback(t)
	}

	span.Release(t.span)
	t.span = nil

	if t.metrics != nil {
		t.metrics.SpansExported.Inc()
		t.metrics.ExportSeconds.Observe(time.Since(start).Seconds())
	}

	if t.onComplete != nil {
		t.onComplete()
	}
}

// Cancel releases the span without emitting it, for hosts that abandon a
// work series before the task runs. Safe to call concurrently with Execute;
// whichever wins releases the span, the other is a no-op. The continuation
// is not invoked: the series is gone.
func (t *LogTask) Cancel() {
	if !t.finished.CompareAndSwap(false, true) {
		return
	}
	span.Release(t.span)
	t.span = nil
}
