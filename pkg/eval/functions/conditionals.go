package functions

import (
	"github.com/crystal-mush/softcode/pkg/eval"
	"github.com/crystal-mush/softcode/pkg/gamedb"
)

// fnIf implements if()/ifelse(): if(cond,true[,false])
func fnIf(ctx *eval.EvalContext, args []string, buf *eval.Buffer, _, _ gamedb.DBRef) {
	if len(args) > 3 {
		buf.WriteString("#-1 FUNCTION (IF) EXPECTS 2 OR 3 ARGUMENTS")
		return
	}
	// Only the chosen branch is evaluated
	if isTrue(evalArg(ctx, args[0])) {
		buf.WriteString(evalArg(ctx, args[1]))
	} else if len(args) > 2 {
		buf.WriteString(evalArg(ctx, args[2]))
	}
}

// fnSwitch implements switch(expr, pat1, result1, ..., default)
func fnSwitch(ctx *eval.EvalContext, args []string, buf *eval.Buffer, _, _ gamedb.DBRef) {
	expr := evalArg(ctx, args[0])

	// Walk pattern/result pairs; first match wins
	i := 1
	for i+1 < len(args) {
		if wildMatch(evalArg(ctx, args[i]), expr) {
			buf.WriteString(evalArg(ctx, args[i+1]))
			return
		}
		i += 2
	}
	// Default case (odd trailing arg)
	if i < len(args) {
		buf.WriteString(evalArg(ctx, args[i]))
	}
}

// fnLit returns its argument exactly as written.
func fnLit(_ *eval.EvalContext, args []string, buf *eval.Buffer, _, _ gamedb.DBRef) {
	buf.WriteString(args[0])
}

// fnSubeval (s()) runs %-substitutions over its argument a second time
// without calling functions.
func fnSubeval(ctx *eval.EvalContext, args []string, buf *eval.Buffer, _, _ gamedb.DBRef) {
	ctx.Eval(buf, args[0], eval.EvEval|eval.EvNoFCheck, nil)
}
