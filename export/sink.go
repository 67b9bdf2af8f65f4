package export

import (
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
)

// spanLogMarker prefixes plain-text sink output, matching the diagnostic
// marker the RPC layer greps for.
const spanLogMarker = "[SPAN_LOG] "

// Sink receives one rendered line per exported span. Writes are
// fire-and-forget: no error or backpressure signal returns to the pipeline.
type Sink interface {
	Write(line []byte)
}

// ZapSink emits span lines through a structured logger.
type ZapSink struct {
	logger *zap.Logger
}

func NewZapSink(logger *zap.Logger) *ZapSink {
	return &ZapSink{logger: logger}
}

func (z *ZapSink) Write(line []byte) {
	z.logger.Info("span completed", zap.ByteString("span", line))
}

// WriterSink writes marker-prefixed lines to any io.Writer. Write errors
// never reach the pipeline; they are only counted.
type WriterSink struct {
	mu     sync.Mutex
	w      io.Writer
	errors atomic.Uint64
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// NewStderrSink mirrors the classic diagnostic destination.
func NewStderrSink() *WriterSink {
	return NewWriterSink(os.Stderr)
}

func (s *WriterSink) Write(line []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, 0, len(spanLogMarker)+len(line)+1)
	buf = append(buf, spanLogMarker...)
	buf = append(buf, line...)
	buf = append(buf, '\n')
	if _, err := s.w.Write(buf); err != nil {
		s.errors.Add(1)
	}
}

// Errors returns how many writes failed since construction.
func (s *WriterSink) Errors() uint64 {
	return s.errors.Load()
}

// FileSink appends span lines to a file, optionally gzip-compressed.
// Best-effort like every sink: write errors are invisible to the pipeline.
type FileSink struct {
	mu     sync.Mutex
	file   *os.File
	gz     *gzip.Writer
	out    io.Writer
	errors atomic.Uint64
}

// NewFileSink opens (or creates) the file for appending. With compress set,
// lines pass through a gzip stream that Close flushes.
func NewFileSink(path string, compress bool) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}

	s := &FileSink{file: f, out: f}
	if compress {
		s.gz = gzip.NewWriter(f)
		s.out = s.gz
	}
	return s, nil
}

func (s *FileSink) Write(line []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.out == nil {
		return
	}
	buf := make([]byte, 0, len(spanLogMarker)+len(line)+1)
	buf = append(buf, spanLogMarker...)
	buf = append(buf, line...)
	buf = append(buf, '\n')
	if _, err := s.out.Write(buf); err != nil {
		s.errors.Add(1)
	}
}

// Errors returns how many writes failed since construction.
func (s *FileSink) Errors() uint64 {
	return s.errors.Load()
}

// Close flushes the compression stream and closes the file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.gz != nil {
		err = s.gz.Close()
	}
	if cerr := s.file.Close(); err == nil {
		err = cerr
	}
	s.out = nil
	return err
}
