package eval

import (
	"strings"

	"github.com/crystal-mush/softcode/pkg/gamedb"
)

// FnHandler is the signature for built-in function handlers.
type FnHandler func(ctx *EvalContext, args []string, buf *Buffer, caller, cause gamedb.DBRef)

// Function is a registered built-in function.
type Function struct {
	Name    string
	Handler FnHandler
	NArgs   int // Expected args (-N means exactly N, extras join the last)
	Flags   int
	Perms   int // gamedb.Perm* mask
}

// Function flags
const (
	FnVarArgs = 0x0001 // NArgs or more
	FnNoEval  = 0x0002 // Don't evaluate args before calling
)

// UFunction is a user-defined (@function) function
type UFunction struct {
	Name  string
	Obj   gamedb.DBRef
	Attr  int
	Flags int
	Perms int
}

// UFunction flags
const (
	UfPriv = 0x0001 // /privileged: runs as the defining object
	UfPres = 0x0002 // /preserve: preserves caller registers
)

// maxArgs returns how many arguments the parser may split for this function.
func (fn *Function) maxArgs() int {
	if fn.NArgs < 0 {
		return -fn.NArgs
	}
	return MaxNFArgs
}

// arityOK checks nfargs against the descriptor's arity rule.
func (fn *Function) arityOK(nfargs int) bool {
	switch {
	case fn.Flags&FnVarArgs != 0:
		return nfargs >= fn.NArgs
	case fn.NArgs < 0:
		return nfargs == -fn.NArgs
	default:
		return nfargs == fn.NArgs
	}
}

// RegisterFunction adds a built-in function to the registry.
func (ctx *EvalContext) RegisterFunction(name string, handler FnHandler, nargs int, flags int) *Function {
	name = strings.ToUpper(name)
	fn := &Function{
		Name:    name,
		Handler: handler,
		NArgs:   nargs,
		Flags:   flags,
	}
	ctx.Functions[name] = fn
	return fn
}

// AliasFunction creates an alias for an existing function.
func (ctx *EvalContext) AliasFunction(alias, target string) {
	if fn, ok := ctx.Functions[strings.ToUpper(target)]; ok {
		ctx.Functions[strings.ToUpper(alias)] = fn
	}
}

// DefineUFunction adds or replaces a user-defined function.
func (ctx *EvalContext) DefineUFunction(uf *UFunction) {
	uf.Name = strings.ToUpper(uf.Name)
	ctx.UFunctions[uf.Name] = uf
}

// RemoveUFunction deletes a user-defined function. Reports whether it existed.
func (ctx *EvalContext) RemoveUFunction(name string) bool {
	name = strings.ToUpper(name)
	if _, ok := ctx.UFunctions[name]; !ok {
		return false
	}
	delete(ctx.UFunctions, name)
	return true
}

// LookupFunction finds a built-in function by name, case-insensitively.
func (ctx *EvalContext) LookupFunction(name string) (*Function, bool) {
	fn, ok := ctx.Functions[strings.ToUpper(name)]
	return fn, ok
}

// LookupUFunction finds a user-defined function by name, case-insensitively.
func (ctx *EvalContext) LookupUFunction(name string) (*UFunction, bool) {
	uf, ok := ctx.UFunctions[strings.ToUpper(name)]
	return uf, ok
}
