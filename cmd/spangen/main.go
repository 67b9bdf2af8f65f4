// spangen drives synthetic spans through the tracing pipeline: it allocates
// ids, populates spans, hands them to a sampling export factory, and runs
// the produced tasks on an inline work series. Useful for sizing span
// limits and watching pipeline metrics under load.
package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/tracewire/tracewire/config"
	"github.com/tracewire/tracewire/export"
	"github.com/tracewire/tracewire/internal/logging"
	"github.com/tracewire/tracewire/metrics"
	"github.com/tracewire/tracewire/sampling"
	"github.com/tracewire/tracewire/snowflake"
	"github.com/tracewire/tracewire/span"
)

type Options struct {
	Load struct {
		SPS     int           `long:"sps" description:"spans to generate per second" default:"2000"`
		Runtime time.Duration `long:"runtime" description:"how long to generate load" default:"5s"`
		Forced  int           `long:"forced" description:"force-sample every Nth span (0 disables)" default:"0"`
	} `group:"Load Options"`

	Output struct {
		Sink     string `long:"sink" description:"span destination" choice:"zap" choice:"stderr" choice:"file" default:"zap"`
		Path     string `long:"path" description:"output file for the file sink" default:"spans.log"`
		Compress bool   `long:"compress" description:"gzip the file sink"`
		JSON     bool   `long:"json" description:"emit spans as JSON objects"`
	} `group:"Output Options"`

	MetricsAddr string `long:"metrics" description:"address to serve /metrics on (empty disables)" default:""`
}

var services = []struct {
	name    string
	methods []string
}{
	{"billing", []string{"Charge", "Refund"}},
	{"catalog", []string{"Get", "List", "Search"}},
	{"checkout", []string{"Place", "Confirm"}},
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	cfg := config.LoadOrDefault()
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		logger = logging.NewDefault()
	}
	defer logger.Sync() //nolint:errcheck // stdout sync failure is unactionable

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	if opts.MetricsAddr != "" {
		go serveMetrics(opts.MetricsAddr, reg, logger)
	}

	alloc, err := snowflake.New(cfg.Allocator.Snowflake())
	if err != nil {
		logger.Fatal("invalid allocator layout", zap.Error(err))
	}

	sink, cleanup, err := buildSink(&opts, logger)
	if err != nil {
		logger.Fatal("sink setup failed", zap.Error(err))
	}
	defer cleanup()

	factory := buildFactory(cfg, &opts, sink, m)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, opts.Load.Runtime)
	defer cancel()

	// Inline work series: tasks run to completion one after another, and
	// the series advances when each task signals its continuation.
	tasks := make(chan export.Task, 1024)
	seriesDone := make(chan int)
	go runSeries(tasks, seriesDone)

	generated := produce(ctx, &opts, cfg, alloc, factory, m, tasks, logger)

	close(tasks)
	completed := <-seriesDone

	logger.Info("load complete",
		zap.Int("spans_generated", generated),
		zap.Int("tasks_completed", completed),
	)
}

// runSeries executes tasks sequentially, honoring the run-to-completion
// contract: the next unit starts only after the previous one signals.
func runSeries(tasks <-chan export.Task, done chan<- int) {
	completed := 0
	for task := range tasks {
		task.SetOnComplete(func() { completed++ })
		task.Execute()
	}
	done <- completed
}

func produce(
	ctx context.Context,
	opts *Options,
	cfg *config.Config,
	alloc *snowflake.Allocator,
	factory *export.Factory,
	m *metrics.Metrics,
	tasks chan<- export.Task,
	logger *logging.Logger,
) int {
	limiter := rate.NewLimiter(rate.Limit(opts.Load.SPS), opts.Load.SPS/10+1)

	generated := 0
	for {
		if err := limiter.Wait(ctx); err != nil {
			return generated
		}

		id, err := alloc.Next(cfg.Allocator.GroupID, cfg.Allocator.MachineID)
		if err != nil {
			m.IDFailures.WithLabelValues(failureReason(err)).Inc()
			if errors.Is(err, snowflake.ErrInvalidIdentity) {
				logger.Fatal("identity outside configured layout", zap.Error(err))
			}
			// Sequence or clock pressure: skip this tick and retry.
			continue
		}
		m.IDsAllocated.Inc()

		s := buildSpan(id, generated, opts)
		tasks <- factory.NewTask(s)
		generated++
	}
}

// buildSpan populates one synthetic span; every Nth span gets a trace id
// pre-set, which forces sampling downstream.
func buildSpan(id uint64, n int, opts *Options) *span.Span {
	svc := services[rand.Intn(len(services))]

	s := span.New()
	s.SpanID = uint32(id)
	s.ServiceName = svc.name
	s.MethodName = svc.methods[rand.Intn(len(svc.methods))]
	s.StartTime = uint64(time.Now().UnixMilli())
	s.Cost = uint64(rand.Intn(20) + 1)
	s.EndTime = s.StartTime + s.Cost
	s.RemoteIP = "10.0.0.1"
	s.Status = 0

	if opts.Load.Forced > 0 && n%opts.Load.Forced == 0 {
		s.TraceID = id
	}
	return s
}

func buildSink(opts *Options, logger *logging.Logger) (export.Sink, func(), error) {
	switch opts.Output.Sink {
	case "file":
		fs, err := export.NewFileSink(opts.Output.Path, opts.Output.Compress)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if err := fs.Close(); err != nil {
				logger.Warn("file sink close failed", zap.Error(err))
			}
			if n := fs.Errors(); n > 0 {
				logger.Warn("file sink dropped writes", zap.Uint64("count", n))
			}
		}
		return fs, cleanup, nil
	case "stderr":
		return export.NewStderrSink(), func() {}, nil
	default:
		return export.NewZapSink(logger.Logger), func() {}, nil
	}
}

func buildFactory(cfg *config.Config, opts *Options, sink export.Sink, m *metrics.Metrics) *export.Factory {
	if !cfg.Sampling.Enabled {
		return export.NewDisabled()
	}

	var enc export.Encoder = export.TextEncoder{}
	if opts.Output.JSON {
		enc = export.JSONEncoder{}
	}
	return export.New(export.Settings{
		Filter:  sampling.New(cfg.Sampling.SpanLimit),
		Sink:    sink,
		Encoder: enc,
		Metrics: m,
	})
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	logger.Info("serving metrics", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Warn("metrics server stopped", zap.Error(err))
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, snowflake.ErrInvalidIdentity):
		return metrics.ReasonInvalidIdentity
	case errors.Is(err, snowflake.ErrClockRegression):
		return metrics.ReasonClockRegression
	default:
		return metrics.ReasonSequenceExhausted
	}
}
