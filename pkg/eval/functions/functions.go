// Package functions holds the built-in softcode functions.
package functions

import (
	"math"
	"strconv"
	"strings"

	"github.com/crystal-mush/softcode/pkg/eval"
	"github.com/crystal-mush/softcode/pkg/gamedb"
)

// RegisterAll installs every built-in function into ctx.
func RegisterAll(ctx *eval.EvalContext) {
	// Math
	ctx.RegisterFunction("ADD", fnAdd, 2, eval.FnVarArgs)
	ctx.RegisterFunction("SUB", fnSub, 2, 0)
	ctx.RegisterFunction("MUL", fnMul, 2, eval.FnVarArgs)
	ctx.RegisterFunction("DIV", fnDiv, 2, 0)
	ctx.RegisterFunction("MOD", fnMod, 2, 0)
	ctx.RegisterFunction("EQ", fnEq, 2, 0)
	ctx.RegisterFunction("NEQ", fnNeq, 2, 0)
	ctx.RegisterFunction("GT", fnGt, 2, 0)
	ctx.RegisterFunction("GTE", fnGte, 2, 0)
	ctx.RegisterFunction("LT", fnLt, 2, 0)
	ctx.RegisterFunction("LTE", fnLte, 2, 0)

	// Strings and lists
	ctx.RegisterFunction("CAT", fnCat, 0, eval.FnVarArgs)
	ctx.RegisterFunction("STRLEN", fnStrlen, -1, 0)
	ctx.RegisterFunction("UCSTR", fnUcstr, -1, 0)
	ctx.RegisterFunction("LCSTR", fnLcstr, -1, 0)
	ctx.RegisterFunction("CAPSTR", fnCapstr, -1, 0)
	ctx.RegisterFunction("MID", fnMid, 3, 0)
	ctx.RegisterFunction("REPEAT", fnRepeat, 2, 0)
	ctx.RegisterFunction("WORDS", fnWords, 1, eval.FnVarArgs)
	ctx.RegisterFunction("FIRST", fnFirst, 1, eval.FnVarArgs)
	ctx.RegisterFunction("REST", fnRest, 1, eval.FnVarArgs)

	// Registers
	ctx.RegisterFunction("SETQ", fnSetq, 2, eval.FnVarArgs)
	ctx.RegisterFunction("SETR", fnSetr, 2, 0)
	ctx.RegisterFunction("R", fnR, 1, 0)
	ctx.RegisterFunction("LOCALIZE", fnLocalize, -1, eval.FnNoEval)

	// Control flow
	ctx.RegisterFunction("IF", fnIf, 2, eval.FnVarArgs|eval.FnNoEval)
	ctx.AliasFunction("IFELSE", "IF")
	ctx.RegisterFunction("SWITCH", fnSwitch, 2, eval.FnVarArgs|eval.FnNoEval)
	ctx.RegisterFunction("LIT", fnLit, -1, eval.FnNoEval)
	ctx.RegisterFunction("S", fnSubeval, -1, 0)

	// User code
	ctx.RegisterFunction("U", fnU, 1, eval.FnVarArgs)
	ctx.RegisterFunction("ULOCAL", fnUlocal, 1, eval.FnVarArgs)

	// Hashing and SQL
	ctx.RegisterFunction("CRYPT", fnCrypt, 2, 0)
	ctx.RegisterFunction("SQL", fnSQL, 1, eval.FnVarArgs).Perms = gamedb.PermWizard
	ctx.RegisterFunction("SQLESCAPE", fnSQLEscape, -1, 0)

	// JSON
	ctx.RegisterFunction("JQ", fnJq, 2, eval.FnVarArgs)
}

// evalArg evaluates an argument that was passed through unevaluated.
func evalArg(ctx *eval.EvalContext, s string) string {
	return ctx.Exec(s, eval.EvFCheck|eval.EvEval|eval.EvStripCurly, nil)
}

func isTrue(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && s != "0" && !strings.HasPrefix(s, "#-")
}

func toFloat(s string) float64 {
	s = strings.TrimSpace(s)
	// Match C atof() behavior: parse leading numeric characters (including
	// decimal point), ignore trailing non-numeric text.
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	sawDot := false
	for end < len(s) {
		if s[end] == '.' && !sawDot {
			sawDot = true
			end++
		} else if s[end] >= '0' && s[end] <= '9' {
			end++
		} else {
			break
		}
	}
	f, _ := strconv.ParseFloat(s[:end], 64)
	return f
}

func toInt(s string) int {
	s = strings.TrimSpace(s)
	// Match C atoi() behavior: parse leading digits, ignore trailing non-digits.
	// The magnitude saturates at MaxInt32.
	neg := false
	i := 0
	if len(s) > 0 && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			break
		}
		i = i*10 + int(c-'0')
		if i > math.MaxInt32 {
			i = math.MaxInt32
			break
		}
	}
	if neg {
		return -i
	}
	return i
}

func boolToStr(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func writeInt(buf *eval.Buffer, i int) {
	buf.WriteString(strconv.Itoa(i))
}
