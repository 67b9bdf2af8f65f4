package export

import (
	"strconv"

	"github.com/bytedance/sonic"

	"github.com/tracewire/tracewire/span"
)

// lineBufferSize comfortably fits every field at maximum width.
const lineBufferSize = 512

// Encoder renders a span into one emitted line. Rendering never fails.
type Encoder interface {
	Encode(s *span.Span) []byte
}

// TextEncoder emits the canonical key:value line format. Optional segments
// appear only when set, in fixed order; cost and remote_ip travel as a
// pair.
type TextEncoder struct{}

func (TextEncoder) Encode(s *span.Span) []byte {
	buf := make([]byte, 0, lineBufferSize)

	buf = append(buf, "trace_id:"...)
	buf = strconv.AppendUint(buf, s.TraceID, 10)
	buf = append(buf, " span_id:"...)
	buf = strconv.AppendUint(buf, uint64(s.SpanID), 10)
	buf = append(buf, " service:"...)
	buf = append(buf, s.ServiceName...)
	buf = append(buf, " method:"...)
	buf = append(buf, s.MethodName...)
	buf = append(buf, " start:"...)
	buf = strconv.AppendUint(buf, s.StartTime, 10)

	if s.HasParent() {
		buf = append(buf, " parent_span_id:"...)
		buf = strconv.AppendUint(buf, uint64(s.ParentSpanID), 10)
	}
	if s.HasEndTime() {
		buf = append(buf, " end_time:"...)
		buf = strconv.AppendUint(buf, s.EndTime, 10)
	}
	if s.HasCost() {
		buf = append(buf, " cost:"...)
		buf = strconv.AppendUint(buf, s.Cost, 10)
		buf = append(buf, " remote_ip:"...)
		buf = append(buf, s.RemoteIP...)
	}

	return buf
}

// jsonSpan mirrors the line format's conditional fields for structured
// sinks. Pointer fields drop out of the payload when unset.
type jsonSpan struct {
	TraceID      uint64  `json:"trace_id"`
	SpanID       uint32  `json:"span_id"`
	Service      string  `json:"service"`
	Method       string  `json:"method"`
	Start        uint64  `json:"start"`
	ParentSpanID *uint32 `json:"parent_span_id,omitempty"`
	EndTime      *uint64 `json:"end_time,omitempty"`
	Cost         *uint64 `json:"cost,omitempty"`
	RemoteIP     string  `json:"remote_ip,omitempty"`
}

// JSONEncoder emits one JSON object per span, applying the same
// conditional-field rules as the text line.
type JSONEncoder struct{}

func (JSONEncoder) Encode(s *span.Span) []byte {
	js := jsonSpan{
		TraceID: s.TraceID,
		SpanID:  s.SpanID,
		Service: s.ServiceName,
		Method:  s.MethodName,
		Start:   s.StartTime,
	}
	if s.HasParent() {
		v := s.ParentSpanID
		js.ParentSpanID = &v
	}
	if s.HasEndTime() {
		v := s.EndTime
		js.EndTime = &v
	}
	if s.HasCost() {
		v := s.Cost
		js.Cost = &v
		js.RemoteIP = s.RemoteIP
	}

	out, err := sonic.Marshal(js)
	if err != nil {
		// Rendering must not fail; fall back to the text line.
		return TextEncoder{}.Encode(s)
	}
	return out
}
