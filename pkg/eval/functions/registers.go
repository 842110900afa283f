package functions

import (
	"strings"

	"github.com/crystal-mush/softcode/pkg/eval"
	"github.com/crystal-mush/softcode/pkg/gamedb"
)

// Register functions: setq, setr, r, localize

func regIndex(name string) int {
	name = strings.TrimSpace(name)
	if len(name) != 1 {
		return -1
	}
	return eval.RegIndex(name[0])
}

// fnSetq implements setq(register, value[, register, value, ...])
func fnSetq(ctx *eval.EvalContext, args []string, buf *eval.Buffer, _, _ gamedb.DBRef) {
	if len(args)%2 != 0 {
		buf.WriteString("#-1 FUNCTION (SETQ) EXPECTS AN EVEN NUMBER OF ARGUMENTS")
		return
	}
	for i := 0; i < len(args); i += 2 {
		idx := regIndex(args[i])
		if idx < 0 {
			buf.WriteString("#-1 INVALID GLOBAL REGISTER")
			continue
		}
		ctx.Regs.Set(idx, args[i+1])
	}
}

func fnSetr(ctx *eval.EvalContext, args []string, buf *eval.Buffer, _, _ gamedb.DBRef) {
	idx := regIndex(args[0])
	if idx < 0 {
		buf.WriteString("#-1 INVALID GLOBAL REGISTER")
		return
	}
	ctx.Regs.Set(idx, args[1])
	buf.WriteString(args[1])
}

func fnR(ctx *eval.EvalContext, args []string, buf *eval.Buffer, _, _ gamedb.DBRef) {
	idx := regIndex(args[0])
	if idx < 0 {
		buf.WriteString("#-1 INVALID GLOBAL REGISTER")
		return
	}
	buf.WriteString(ctx.Regs.Get(idx))
}

// fnLocalize evaluates its argument, then restores the registers.
func fnLocalize(ctx *eval.EvalContext, args []string, buf *eval.Buffer, _, _ gamedb.DBRef) {
	defer ctx.Regs.Preserve()()
	buf.WriteString(evalArg(ctx, args[0]))
}
