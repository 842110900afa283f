package eval

import (
	"github.com/crystal-mush/softcode/pkg/gamedb"
)

// EvalFlags control expression evaluation behavior
const (
	EvEval        = 0x0001 // Perform %-substitutions and evaluate nested text
	EvFCheck      = 0x0002 // Check for function invocations
	EvFMand       = 0x0004 // Function evaluation is mandatory (inside [])
	EvStripCurly  = 0x0008 // Strip {} from literal blocks
	EvNoCompress  = 0x0010 // Don't compress spaces
	EvStripLS     = 0x0020 // Strip leading spaces
	EvStripTS     = 0x0040 // Strip trailing spaces
	EvStripESC    = 0x0080 // Strip backslash escapes
	EvStripAround = 0x0100 // Strip {} only when they surround the whole token
	EvNoFCheck    = 0x0200 // Never treat [ as a function bracket
	EvNoTrace     = 0x0400 // Don't trace
	EvNoLocation  = 0x0800 // Don't resolve %l
	EvTop         = 0x1000 // Outermost evaluation of a command
)

const MaxGlobalRegs = 36
const MaxNFArgs = 30

// Default server-wide limits.
const (
	DefaultFuncNestLim = 50
	DefaultFuncInvkLim = 2500
)

// Store is the object database as the evaluator sees it.
type Store interface {
	// GetAttr returns the text of an attribute, with any storage prefix removed.
	GetAttr(obj gamedb.DBRef, attr int) (string, bool)
	// AttrNum resolves an attribute name to its number, or -1.
	AttrNum(name string) int
	Name(obj gamedb.DBRef) string
	Owner(obj gamedb.DBRef) gamedb.DBRef
	Location(obj gamedb.DBRef) gamedb.DBRef
	// CheckAccess tests player against a function permission mask.
	CheckAccess(player gamedb.DBRef, mask int) bool
	// Traced reports whether evaluations run by obj should be traced.
	Traced(obj gamedb.DBRef) bool
}

// NotifyType distinguishes different notification semantics.
type NotifyType int

const (
	NotifyPemit NotifyType = iota // Plain message to the target
	NotifyTrace                   // Trace output for the target (an owner)
)

// Notification represents a message produced during evaluation.
type Notification struct {
	Target  gamedb.DBRef
	Message string
	Type    NotifyType
}

// Notifier delivers notifications as they are produced.
type Notifier interface {
	Notify(n Notification)
}

// Observer receives evaluator events for instrumentation.
type Observer interface {
	Evaluated()
	FunctionCalled(name string, user bool)
	FunctionFailed(name string, reason string)
	TraceDiscarded(lines int)
}

// Failure reasons reported to an Observer.
const (
	FailNotFound   = "not_found"
	FailArity      = "arity"
	FailPermission = "permission"
	FailRecursion  = "recursion"
	FailInvocation = "invocation"
)

// SQLBackend runs queries on behalf of the sql() function.
type SQLBackend interface {
	Query(query, rowDelim, fieldDelim string) (string, error)
}

// EvalContext is the execution context for MUSH expression evaluation.
// One context serves one goroutine; nested evaluations share it by pointer.
type EvalContext struct {
	DB Store

	// Object context
	Player gamedb.DBRef // Executor (the object running code, %!)
	Caller gamedb.DBRef // Caller (%@)
	Cause  gamedb.DBRef // Enactor/trigger cause (%#)

	// CArgs holds the current command arguments (%0-%9). Function handlers
	// that evaluate their own arguments inherit them by passing nil cargs.
	CArgs []string

	Regs *Registers

	// Function call tracking, reset by each EvTop evaluation
	FuncNestLev int
	FuncInvkCtr int
	FuncNestLim int
	FuncInvkLim int

	// OutputLimit caps every buffer the evaluator allocates.
	OutputLimit int

	SpaceCompress bool
	AnsiColors    bool

	Functions  map[string]*Function
	UFunctions map[string]*UFunction

	// Trace is nil when tracing is disabled server-wide.
	Trace *TraceCache

	Notifications []Notification
	Notifier      Notifier
	Observer      Observer
	SQL           SQLBackend

	// Current command text (%m)
	CurrCmd string

	// colorOpen is set by a %c color code and cleared by %cn.
	colorOpen bool
}

// NewEvalContext creates an EvalContext with TinyMUSH defaults.
func NewEvalContext(db Store) *EvalContext {
	return &EvalContext{
		DB:            db,
		Player:        gamedb.Nothing,
		Caller:        gamedb.Nothing,
		Cause:         gamedb.Nothing,
		Regs:          NewRegisters(),
		FuncNestLim:   DefaultFuncNestLim,
		FuncInvkLim:   DefaultFuncInvkLim,
		OutputLimit:   LBufSize,
		SpaceCompress: true,
		AnsiColors:    true,
		Functions:     make(map[string]*Function),
		UFunctions:    make(map[string]*UFunction),
	}
}

// ResetLimits clears the per-command function counters.
func (ctx *EvalContext) ResetLimits() {
	ctx.FuncNestLev = 0
	ctx.FuncInvkCtr = 0
}

// Notify records a message and forwards it to the Notifier, if any.
func (ctx *EvalContext) Notify(target gamedb.DBRef, msg string, typ NotifyType) {
	n := Notification{Target: target, Message: msg, Type: typ}
	ctx.Notifications = append(ctx.Notifications, n)
	if ctx.Notifier != nil {
		ctx.Notifier.Notify(n)
	}
}

// GetAttrText fetches an attribute's text, or "" if it is not set.
func (ctx *EvalContext) GetAttrText(obj gamedb.DBRef, attrNum int) string {
	if ctx.DB == nil {
		return ""
	}
	text, _ := ctx.DB.GetAttr(obj, attrNum)
	return text
}

func (ctx *EvalContext) observeCall(name string, user bool) {
	if ctx.Observer != nil {
		ctx.Observer.FunctionCalled(name, user)
	}
}

func (ctx *EvalContext) observeFailure(name, reason string) {
	if ctx.Observer != nil {
		ctx.Observer.FunctionFailed(name, reason)
	}
}
