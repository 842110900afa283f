package eval

import (
	"strconv"
	"strings"

	"github.com/crystal-mush/softcode/pkg/gamedb"
)

// ParseDBRef converts "#N", "me" or "here" to a DBRef relative to the
// executor. Anything else is Nothing.
func (ctx *EvalContext) ParseDBRef(s string) gamedb.DBRef {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return gamedb.Nothing
	case strings.EqualFold(s, "me"):
		return ctx.Player
	case strings.EqualFold(s, "here"):
		if ctx.DB == nil {
			return gamedb.Nothing
		}
		return ctx.DB.Location(ctx.Player)
	case s[0] == '#':
		n, err := strconv.Atoi(s[1:])
		if err != nil {
			return gamedb.Nothing
		}
		return gamedb.DBRef(n)
	}
	return gamedb.Nothing
}

// ResolveObjAttr splits an "obj/attr" reference. A bare attribute name
// refers to the executor. ok is false when the object or the attribute
// cannot be resolved.
func (ctx *EvalContext) ResolveObjAttr(objAttr string) (obj gamedb.DBRef, attr int, ok bool) {
	if ctx.DB == nil {
		return gamedb.Nothing, -1, false
	}
	obj = ctx.Player
	name := objAttr
	if i := strings.IndexByte(objAttr, '/'); i >= 0 {
		obj = ctx.ParseDBRef(objAttr[:i])
		name = objAttr[i+1:]
		if obj == gamedb.Nothing {
			return gamedb.Nothing, -1, false
		}
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return obj, -1, false
	}
	attr = ctx.DB.AttrNum(name)
	return obj, attr, attr >= 0
}

// CallUFun calls the attribute named by "obj/attr" as u() does: the code
// runs as obj with callArgs as %0-%9.
func (ctx *EvalContext) CallUFun(buf *Buffer, objAttr string, callArgs []string) {
	obj, attr, ok := ctx.ResolveObjAttr(objAttr)
	if !ok {
		if obj == gamedb.Nothing {
			buf.WriteString("#-1 NOT FOUND")
		} else {
			buf.WriteString("#-1 NO SUCH ATTRIBUTE")
		}
		return
	}
	ctx.CallAttr(buf, obj, attr, obj, callArgs)
}
