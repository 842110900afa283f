package eval

import (
	"fmt"

	"github.com/crystal-mush/softcode/pkg/gamedb"
)

type traceEntry struct {
	orig   string
	result string
}

// TraceCache collects (input, output) pairs from traced evaluations and
// reports them to the owner of the traced object.
//
// In bottom-up mode every traced evaluation flushes the cache as it
// finishes, so inner results are reported first. In top-down mode only the
// outermost traced evaluation flushes, reporting the whole expression first.
type TraceCache struct {
	TopDown bool
	Limit   int // entries kept per command; <= 0 keeps everything

	entries []traceEntry
	count   int
	active  bool
}

// NewTraceCache returns an empty cache.
func NewTraceCache(topDown bool, limit int) *TraceCache {
	return &TraceCache{TopDown: topDown, Limit: limit}
}

// begin marks the start of a traced evaluation. It returns true for the
// outermost traced evaluation of a command, which owns the cache until end.
func (t *TraceCache) begin() bool {
	if t.active {
		return false
	}
	t.active = true
	t.count = 0
	return true
}

// Active reports whether a traced evaluation is in progress.
func (t *TraceCache) Active() bool { return t.active }

// Record adds a pair unless the evaluation changed nothing. Pairs beyond
// the limit are counted but dropped.
func (t *TraceCache) Record(orig, result string) {
	if orig == result {
		return
	}
	t.count++
	if t.Limit > 0 && t.count > t.Limit {
		return
	}
	t.entries = append(t.entries, traceEntry{orig: orig, result: result})
}

// Len returns the number of pairs waiting to be flushed.
func (t *TraceCache) Len() int { return len(t.entries) }

// Discarded returns how many pairs were dropped by the limit so far.
func (t *TraceCache) Discarded() int {
	if t.Limit <= 0 || t.count <= t.Limit {
		return 0
	}
	return t.count - t.Limit
}

// Flush reports every pending pair to the owner of ctx.Player, most recent
// first, and empties the cache.
func (t *TraceCache) Flush(ctx *EvalContext) {
	if len(t.entries) == 0 {
		return
	}
	owner, name := ctx.Player, ""
	if ctx.DB != nil {
		owner = ctx.DB.Owner(ctx.Player)
		name = ctx.DB.Name(ctx.Player)
	}
	for i := len(t.entries) - 1; i >= 0; i-- {
		e := t.entries[i]
		ctx.Notify(owner, fmt.Sprintf("%s(#%d)} '%s' -> '%s'", name, ctx.Player, e.orig, e.result), NotifyTrace)
	}
	t.entries = t.entries[:0]
}

// end finishes a traced evaluation started with begin.
func (t *TraceCache) end(ctx *EvalContext, top bool) {
	if top || !t.TopDown {
		t.Flush(ctx)
	}
	if !top {
		return
	}
	if n := t.Discarded(); n > 0 {
		owner := gamedb.DBRef(ctx.Player)
		if ctx.DB != nil {
			owner = ctx.DB.Owner(ctx.Player)
		}
		ctx.Notify(owner, fmt.Sprintf("%d lines of trace output discarded.", n), NotifyTrace)
		if ctx.Observer != nil {
			ctx.Observer.TraceDiscarded(n)
		}
	}
	t.count = 0
	t.active = false
}
