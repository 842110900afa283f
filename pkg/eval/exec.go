package eval

import (
	"fmt"
	"strings"

	"github.com/crystal-mush/softcode/pkg/gamedb"
)

const ansiNormal = "\033[0m"

// Exec evaluates a MUSH expression string and returns the result.
// This is the main entry point corresponding to TinyMUSH's exec() function.
func (ctx *EvalContext) Exec(input string, evalFlags int, cargs []string) string {
	buf := NewBuffer(ctx.OutputLimit)
	ctx.Eval(buf, input, evalFlags, cargs)
	return buf.String()
}

// Eval evaluates input and appends the result to buf.
//
// A nil cargs inherits the arguments of the enclosing evaluation; any other
// value becomes %0-%9 for the duration of the call. With EvTop set the
// function counters are reset first, and an ANSI color left open anywhere in
// the evaluation is closed at the end of the output.
func (ctx *EvalContext) Eval(buf *Buffer, input string, evalFlags int, cargs []string) {
	// Input is bounded like output; text past the limit is never scanned
	if len(input) > buf.Limit() {
		input = input[:buf.Limit()]
	}
	if cargs == nil {
		cargs = ctx.CArgs
	} else {
		oldCArgs := ctx.CArgs
		ctx.CArgs = cargs
		defer func() { ctx.CArgs = oldCArgs }()
	}

	top := evalFlags&EvTop != 0
	if top {
		evalFlags &^= EvTop
		ctx.ResetLimits()
		ctx.colorOpen = false
		if ctx.Observer != nil {
			ctx.Observer.Evaluated()
		}
	}

	tracing := ctx.tracing(evalFlags)
	traceTop := false
	if tracing {
		traceTop = ctx.Trace.begin()
	}
	start := buf.Len()

	ctx.exec(buf, input, evalFlags, cargs)

	if top && ctx.colorOpen {
		if !buf.HasSuffix(ansiNormal) {
			if buf.Remaining() < len(ansiNormal) {
				buf.Truncate(buf.Limit() - len(ansiNormal))
				dropPartialEscape(buf)
			}
			buf.WriteString(ansiNormal)
		}
		ctx.colorOpen = false
	}

	if tracing {
		ctx.Trace.Record(input, buf.Since(start))
		ctx.Trace.end(ctx, traceTop)
	}
}

// dropPartialEscape removes an escape sequence cut off before its final 'm'.
func dropPartialEscape(buf *Buffer) {
	out := buf.String()
	if i := strings.LastIndexByte(out, escChar); i >= 0 && strings.IndexByte(out[i:], 'm') < 0 {
		buf.Truncate(i)
	}
}

func (ctx *EvalContext) tracing(evalFlags int) bool {
	return ctx.Trace != nil && evalFlags&EvNoTrace == 0 && ctx.DB != nil && ctx.DB.Traced(ctx.Player)
}

// exec is the internal recursive evaluator. It processes the input one
// lexical unit at a time, handling:
// - %-substitutions
// - [...] function evaluation
// - {...} literal grouping
// - \ and ESC escapes
// - name(args) function calls
// - space compression
func (ctx *EvalContext) exec(buf *Buffer, input string, evalFlags int, cargs []string) {
	start := buf.Len() // Function names and FMAND errors never reach before this
	compress := ctx.SpaceCompress && evalFlags&EvNoCompress == 0
	atSpace := true
	gender := -1
	pos := 0

	for pos < len(input) {
		ch := input[pos]

		if !evalSpecial[ch] {
			// Mundane characters - copy runs of them at once
			atSpace = false
			run := pos
			for pos < len(input) && !evalSpecial[input[pos]] {
				pos++
			}
			buf.WriteString(input[run:pos])
			continue
		}

		switch ch {
		case 0:
			pos = len(input)

		case ' ':
			if !(compress && atSpace) {
				buf.WriteByte(' ')
			}
			atSpace = true
			pos++

		case '\\':
			// General escape - add following char literally
			atSpace = false
			pos++
			if pos < len(input) {
				buf.WriteByte(input[pos])
				pos++
			}

		case escChar:
			// Terminal control sequences pass through untouched
			atSpace = false
			buf.WriteByte(ch)
			pos++
			if pos < len(input) {
				buf.WriteByte(input[pos])
				pos++
			}

		case '[':
			atSpace = false
			if evalFlags&EvNoFCheck != 0 {
				buf.WriteByte('[')
				pos++
				break
			}
			inner, rest, found := ParseToLite(input[pos+1:], ']')
			if !found {
				buf.WriteByte('[')
				pos++
				break
			}
			buf.WriteString(ctx.Exec(inner, evalFlags|EvFCheck|EvFMand, cargs))
			pos = len(input) - len(rest)

		case '{':
			atSpace = false
			end := matchBrace(input, pos)
			if end < 0 {
				buf.WriteByte('{')
				pos++
				break
			}
			strip := evalFlags&EvStripCurly != 0
			if !strip {
				buf.WriteByte('{')
			}
			inner := input[pos+1 : end]
			if evalFlags&EvEval != 0 {
				// Preserve a leading space
				if len(inner) > 0 && inner[0] == ' ' {
					buf.WriteByte(' ')
					inner = inner[1:]
				}
				ctx.exec(buf, inner, evalFlags&^(EvStripCurly|EvFCheck), cargs)
			} else {
				buf.WriteString(inner)
			}
			if !strip {
				buf.WriteByte('}')
			}
			pos = end + 1

		case '%':
			atSpace = false
			pos++
			if evalFlags&EvEval == 0 {
				buf.WriteByte('%')
				if pos < len(input) {
					buf.WriteByte(input[pos])
					pos++
				}
				break
			}
			pos = ctx.handlePercent(buf, input, pos, evalFlags, cargs, &gender)

		case '(':
			atSpace = false
			if evalFlags&EvFCheck == 0 {
				buf.WriteByte('(')
				pos++
				break
			}
			// Only the first parenthesis of a call can start a function
			next, done := ctx.callFunction(buf, input, pos, start, evalFlags, cargs)
			evalFlags &^= EvFCheck
			if done {
				return
			}
			pos = next
		}
	}

	if compress && atSpace && buf.Len() > start && buf.LastByte() == ' ' {
		buf.Truncate(buf.Len() - 1)
	}
}

// funcName returns the candidate function name written since start: the
// run of non-space bytes just before the parenthesis. Inside brackets with
// space compression on, spaces between the name and the parenthesis are
// skipped.
func (ctx *EvalContext) funcName(buf *Buffer, start int, evalFlags int) (name string, nameStart int) {
	out := buf.Since(start)
	end := len(out)
	if ctx.SpaceCompress && evalFlags&EvFMand != 0 {
		for end > 0 && out[end-1] == ' ' {
			end--
		}
	}
	i := end
	for i > 0 && out[i-1] != ' ' {
		i--
	}
	return out[i:end], start + i
}

// callFunction handles the '(' at input[pos]. It returns where scanning
// resumes, and done when the whole call has been replaced by an error.
func (ctx *EvalContext) callFunction(buf *Buffer, input string, pos, start, evalFlags int, cargs []string) (int, bool) {
	name, nameStart := ctx.funcName(buf, start, evalFlags)
	name = strings.ToUpper(name)

	fn, builtin := ctx.Functions[name]
	var uf *UFunction
	if !builtin {
		uf = ctx.UFunctions[name]
	}
	if !builtin && uf == nil {
		if evalFlags&EvFMand != 0 {
			ctx.observeFailure(name, FailNotFound)
			buf.Truncate(start)
			buf.WriteString(fmt.Sprintf("#-1 FUNCTION (%s) NOT FOUND", name))
			return len(input), true
		}
		buf.WriteByte('(')
		return pos + 1, false
	}

	argText, rest, found := findArgsClose(input[pos+1:])
	if !found {
		// No closing delim, just insert the '(' and continue normally
		buf.WriteByte('(')
		return pos + 1, false
	}
	next := len(input) - len(rest)

	// Back up over the function name in the output buffer
	buf.Truncate(nameStart)
	if builtin {
		ctx.callBuiltin(buf, fn, argText, evalFlags, cargs)
	} else {
		ctx.callUser(buf, uf, argText, evalFlags, cargs)
	}
	return next, false
}

func (ctx *EvalContext) callBuiltin(buf *Buffer, fn *Function, argText string, evalFlags int, cargs []string) {
	argFlags := evalFlags
	if fn.Flags&FnNoEval != 0 {
		argFlags &^= EvEval
	}
	args := ctx.ParseArgList(argText, fn.maxArgs(), argFlags, cargs)

	// The parser returns one empty arg for (), which is zero args here
	if fn.NArgs == 0 && len(args) == 1 && args[0] == "" {
		args = nil
	}
	if !fn.arityOK(len(args)) {
		ctx.observeFailure(fn.Name, FailArity)
		buf.WriteString(arityError(fn))
		return
	}

	ok := ctx.enterFunction(buf, fn.Name)
	defer ctx.leaveFunction()
	if !ok {
		return
	}
	if !ctx.permitted(fn.Perms) {
		ctx.observeFailure(fn.Name, FailPermission)
		buf.WriteString("#-1 PERMISSION DENIED")
		return
	}
	ctx.observeCall(fn.Name, false)
	fn.Handler(ctx, args, buf, ctx.Caller, ctx.Cause)
}

func (ctx *EvalContext) callUser(buf *Buffer, uf *UFunction, argText string, evalFlags int, cargs []string) {
	args := ctx.ParseArgList(argText, MaxNFArgs, evalFlags, cargs)

	ok := ctx.enterFunction(buf, uf.Name)
	defer ctx.leaveFunction()
	if !ok {
		return
	}
	if !ctx.permitted(uf.Perms) {
		ctx.observeFailure(uf.Name, FailPermission)
		buf.WriteString("#-1 PERMISSION DENIED")
		return
	}
	ctx.observeCall(uf.Name, true)

	if uf.Flags&UfPres != 0 {
		defer ctx.Regs.Preserve()()
	}
	runAs := ctx.Player
	if uf.Flags&UfPriv != 0 {
		runAs = uf.Obj
	}
	ctx.CallAttr(buf, uf.Obj, uf.Attr, runAs, args)
}

// CallAttr evaluates the text of obj's attribute attr as runAs, with args
// bound to %0-%9 and the current executor as the caller. A missing or empty
// attribute produces nothing.
func (ctx *EvalContext) CallAttr(buf *Buffer, obj gamedb.DBRef, attr int, runAs gamedb.DBRef, args []string) {
	text := ctx.GetAttrText(obj, attr)
	if text == "" {
		return
	}
	if args == nil {
		args = []string{}
	}
	oldPlayer, oldCaller := ctx.Player, ctx.Caller
	ctx.Caller = ctx.Player
	ctx.Player = runAs
	defer func() {
		ctx.Player = oldPlayer
		ctx.Caller = oldCaller
	}()
	ctx.Eval(buf, text, EvFCheck|EvEval, args)
}

// enterFunction counts one invocation against the nesting and invocation
// limits. When it returns false the limit error has been written and the
// function must not run. leaveFunction must be called either way.
func (ctx *EvalContext) enterFunction(buf *Buffer, name string) bool {
	ctx.FuncNestLev++
	ctx.FuncInvkCtr++
	if ctx.FuncNestLev > ctx.FuncNestLim {
		ctx.observeFailure(name, FailRecursion)
		buf.WriteString("#-1 FUNCTION RECURSION LIMIT EXCEEDED")
		return false
	}
	if ctx.FuncInvkCtr > ctx.FuncInvkLim {
		ctx.observeFailure(name, FailInvocation)
		buf.WriteString("#-1 FUNCTION INVOCATION LIMIT EXCEEDED")
		return false
	}
	return true
}

func (ctx *EvalContext) leaveFunction() {
	ctx.FuncNestLev--
}

func (ctx *EvalContext) permitted(perms int) bool {
	if perms == 0 || ctx.DB == nil {
		return true
	}
	return ctx.DB.CheckAccess(ctx.Player, perms)
}

func arityError(fn *Function) string {
	n := fn.NArgs
	if n < 0 {
		n = -n
	}
	if fn.Flags&FnVarArgs != 0 {
		return fmt.Sprintf("#-1 FUNCTION (%s) EXPECTS AT LEAST %d ARGUMENTS", fn.Name, n)
	}
	return fmt.Sprintf("#-1 FUNCTION (%s) EXPECTS %d ARGUMENTS", fn.Name, n)
}
