/*
Package export turns accepted spans into schedulable units of work.

# Overview

The factory is the hand-off point between the call-tracing layer and the
host's cooperative scheduler. A producer transfers exclusive ownership of a
completed span to Factory.NewTask and receives back a Task. Whatever the
sampling decision was, the returned task honors the scheduler contract:
Execute runs to completion without blocking and fires the registered
completion continuation exactly once.

Accepted spans become a log task whose execution renders one line

	trace_id:<u64> span_id:<u32> service:<text> method:<text> start:<u64>

followed, only when set, by parent_span_id, end_time, and the cost/remote_ip
pair, writes it to the configured Sink, invokes the optional observer
callback, and releases the span. Rejected spans are released immediately and
replaced by a no-op task, so the work series still advances.

# Ownership

Exactly one component releases a given span: the factory on the reject path,
or the produced task on its completion path. If the host abandons a series
before a task runs, Cancel is the explicit release path; Execute and Cancel
race safely and the span is freed once either way.

# Variants

The factory is a closed set of two variants selected by configuration:
NewDisabled discards every span (tracing off), New samples through a
sampling.Filter. Sink writes are best-effort; sinks count their own
failures and nothing ever surfaces to the traced call.
*/
package export
