package functions

import (
	descrypt "github.com/digitive/crypt"

	"github.com/crystal-mush/softcode/pkg/eval"
	"github.com/crystal-mush/softcode/pkg/gamedb"
)

// fnCrypt implements crypt(text, salt) with traditional DES crypt(3), the
// format TinyMUSH stores passwords in.
func fnCrypt(_ *eval.EvalContext, args []string, buf *eval.Buffer, _, _ gamedb.DBRef) {
	if len(args[1]) < 2 {
		buf.WriteString("#-1 SALT MUST BE 2 CHARACTERS")
		return
	}
	result, err := descrypt.Crypt(args[0], args[1][:2])
	if err != nil {
		buf.WriteString("#-1 " + err.Error())
		return
	}
	buf.WriteString(result)
}
