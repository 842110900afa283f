package functions

import (
	"github.com/crystal-mush/softcode/pkg/eval"
	"github.com/crystal-mush/softcode/pkg/gamedb"
)

// fnU implements u(obj/attr, args...): the attribute runs as obj with the
// remaining arguments as %0-%9.
func fnU(ctx *eval.EvalContext, args []string, buf *eval.Buffer, _, _ gamedb.DBRef) {
	ctx.CallUFun(buf, args[0], args[1:])
}

// fnUlocal is u() with the caller's registers restored afterwards.
func fnUlocal(ctx *eval.EvalContext, args []string, buf *eval.Buffer, _, _ gamedb.DBRef) {
	defer ctx.Regs.Preserve()()
	ctx.CallUFun(buf, args[0], args[1:])
}
