package functions

import (
	"strings"

	"github.com/crystal-mush/softcode/pkg/eval"
	"github.com/crystal-mush/softcode/pkg/gamedb"
)

// fnSQL implements sql(<query>[, <row_delim>[, <field_delim>]])
func fnSQL(ctx *eval.EvalContext, args []string, buf *eval.Buffer, _, _ gamedb.DBRef) {
	if len(args) > 3 {
		buf.WriteString("#-1 FUNCTION (SQL) EXPECTS 1-3 ARGUMENTS")
		return
	}
	if ctx.SQL == nil {
		buf.WriteString("#-1 SQL NOT CONFIGURED")
		return
	}

	rowDelim := " "
	fieldDelim := " "
	if len(args) >= 2 {
		rowDelim = args[1]
		fieldDelim = args[1] // default field delim = row delim
	}
	if len(args) >= 3 {
		fieldDelim = args[2]
	}

	result, err := ctx.SQL.Query(args[0], rowDelim, fieldDelim)
	if err != nil {
		buf.WriteString("#-1 SQL ERROR: " + err.Error())
		return
	}
	buf.WriteString(result)
}

// fnSQLEscape implements sqlescape(<string>)
func fnSQLEscape(_ *eval.EvalContext, args []string, buf *eval.Buffer, _, _ gamedb.DBRef) {
	buf.WriteString(strings.ReplaceAll(args[0], "'", "''"))
}
