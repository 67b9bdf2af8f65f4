package export

import (
	"github.com/tracewire/tracewire/metrics"
	"github.com/tracewire/tracewire/sampling"
	"github.com/tracewire/tracewire/span"
)

// Settings configures the sampling factory variant.
type Settings struct {
	// Filter decides admission. Nil selects a filter with the default
	// span limit.
	Filter *sampling.Filter

	// Sink receives rendered lines. Nil selects the stderr sink.
	Sink Sink

	// Encoder renders spans. Nil selects the text line encoder.
	Encoder Encoder

	// Metrics instruments sampling decisions and export volume when set.
	Metrics *metrics.Metrics

	// Callback is invoked by each log task after emission, with the task
	// itself, so an observer can inspect the span before teardown.
	Callback func(*LogTask)
}

// Factory converts owned spans into schedulable work. The two variants form
// a closed set: disabled (every span discarded) and sampled (admission via
// the filter). Safe for concurrent use.
type Factory struct {
	disabled bool
	filter   *sampling.Filter
	sink     Sink
	enc      Encoder
	metrics  *metrics.Metrics
	callback func(*LogTask)
}

// NewDisabled creates the variant used when tracing is off: every span is
// released immediately and replaced by a no-op task.
func NewDisabled() *Factory {
	return &Factory{disabled: true}
}

// New creates the sampling variant.
func New(settings Settings) *Factory {
	if settings.Filter == nil {
		settings.Filter = sampling.New(0)
	}
	if settings.Sink == nil {
		settings.Sink = NewStderrSink()
	}
	if settings.Encoder == nil {
		settings.Encoder = TextEncoder{}
	}
	return &Factory{
		filter:   settings.Filter,
		sink:     settings.Sink,
		enc:      settings.Encoder,
		metrics:  settings.Metrics,
		callback: settings.Callback,
	}
}

// NewTask takes exclusive ownership of the span and returns the unit of
// work to schedule. Rejected and disabled-path spans are released here;
// accepted spans are released by the task they become.
func (f *Factory) NewTask(s *span.Span) Task {
	if f.disabled {
		span.Release(s)
		return &noopTask{}
	}

	if !f.filter.Accept(s) {
		if f.metrics != nil {
			f.metrics.SpansRejected.Inc()
		}
		span.Release(s)
		return &noopTask{}
	}

	if f.metrics != nil {
		f.metrics.SpansAccepted.Inc()
	}
	return &LogTask{
		span:     s,
		sink:     f.sink,
		enc:      f.enc,
		callback: f.callback,
		metrics:  f.metrics,
	}
}
