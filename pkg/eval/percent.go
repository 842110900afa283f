package eval

import (
	"strconv"

	"github.com/crystal-mush/softcode/pkg/gamedb"
)

// Genders as returned by getGender. genderName means no SEX is set and the
// object's name stands in for every pronoun.
const (
	genderName = iota
	genderNeuter
	genderFemale
	genderMale
	genderPlural
)

var (
	pronounSubj  = [...]string{"", "it", "she", "he", "they"}
	pronounObj   = [...]string{"", "it", "her", "him", "them"}
	pronounPoss  = [...]string{"", "its", "her", "his", "their"}
	pronounAposs = [...]string{"", "its", "hers", "his", "theirs"}
)

// handlePercent processes a %-substitution starting at input[pos] (the char
// after %). gender caches the cause's gender for the rest of the call.
// Returns the new position.
func (ctx *EvalContext) handlePercent(buf *Buffer, input string, pos int, evalFlags int, cargs []string, gender *int) int {
	if pos >= len(input) {
		buf.WriteByte('%')
		return pos
	}

	code := input[pos]
	pos++
	mark := buf.Len()
	titleCase := code >= 'A' && code <= 'Z'

	switch code {
	case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		// Command arguments
		if i := int(code - '0'); i < len(cargs) {
			buf.WriteString(cargs[i])
		}

	case '#':
		buf.WriteString(ctx.Cause.String())
	case '!':
		buf.WriteString(ctx.Player.String())
	case '@':
		buf.WriteString(ctx.Caller.String())
	case '%':
		buf.WriteByte('%')
	case '+':
		buf.WriteString(strconv.Itoa(len(cargs)))

	case 's', 'S', 'o', 'O', 'p', 'P', 'a', 'A':
		if *gender < 0 {
			*gender = ctx.getGender(ctx.Cause)
		}
		buf.WriteString(ctx.pronoun(code|0x20, *gender))

	case 'n', 'N':
		if ctx.DB != nil {
			buf.WriteString(ctx.DB.Name(ctx.Cause))
		}

	case 'l', 'L':
		if evalFlags&EvNoLocation == 0 && ctx.DB != nil {
			buf.WriteString(ctx.DB.Location(ctx.Cause).String())
		}

	case 'q', 'Q':
		// Register: %q0-%q9, %qa-%qz
		if pos < len(input) {
			buf.WriteString(ctx.Regs.Get(RegIndex(input[pos])))
			pos++
		}

	case 'r', 'R':
		buf.WriteString("\r\n")
	case 't', 'T':
		buf.WriteByte('\t')
	case 'b', 'B':
		buf.WriteByte(' ')

	case 'c', 'C', 'x', 'X':
		titleCase = false
		if pos < len(input) {
			ctx.writeAnsi(buf, input[pos])
			pos++
		}

	case 'v', 'V':
		// Variable attributes VA-VZ on the executor
		if pos < len(input) {
			if l := input[pos] &^ 0x20; l >= 'A' && l <= 'Z' {
				buf.WriteString(ctx.GetAttrText(ctx.Player, gamedb.AVA+int(l-'A')))
			}
			pos++
		}

	case 'm', 'M':
		buf.WriteString(ctx.CurrCmd)

	default:
		buf.WriteByte('%')
		buf.WriteByte(code)
		titleCase = false
	}

	if titleCase {
		buf.UpperAt(mark)
	}
	return pos
}

// getGender reads the SEX attribute of obj.
func (ctx *EvalContext) getGender(obj gamedb.DBRef) int {
	sex := ctx.GetAttrText(obj, gamedb.ASex)
	if sex == "" {
		return genderName
	}
	switch sex[0] {
	case 'M', 'm':
		return genderMale
	case 'F', 'f', 'W', 'w':
		return genderFemale
	case 'P', 'p':
		return genderPlural
	}
	return genderNeuter
}

// pronoun returns the pronoun of class (s, o, p or a) for the cause.
func (ctx *EvalContext) pronoun(class byte, gender int) string {
	if gender == genderName {
		name := ""
		if ctx.DB != nil {
			name = ctx.DB.Name(ctx.Cause)
		}
		if class == 'p' || class == 'a' {
			return name + "s"
		}
		return name
	}
	switch class {
	case 's':
		return pronounSubj[gender]
	case 'o':
		return pronounObj[gender]
	case 'p':
		return pronounPoss[gender]
	}
	return pronounAposs[gender]
}

// ansiCodes maps %c/%x color characters to escape sequences. Lowercase
// colors are foregrounds, uppercase are backgrounds.
var ansiCodes = map[byte]string{
	'n': "\033[0m",
	'f': "\033[5m",
	'h': "\033[1m",
	'i': "\033[7m",
	'u': "\033[4m",
	'x': "\033[30m", 'X': "\033[40m",
	'r': "\033[31m", 'R': "\033[41m",
	'g': "\033[32m", 'G': "\033[42m",
	'y': "\033[33m", 'Y': "\033[43m",
	'b': "\033[34m", 'B': "\033[44m",
	'm': "\033[35m", 'M': "\033[45m",
	'c': "\033[36m", 'C': "\033[46m",
	'w': "\033[37m", 'W': "\033[47m",
}

// writeAnsi emits the color for code. An unknown code is copied through.
// Nothing is written when colors are disabled.
func (ctx *EvalContext) writeAnsi(buf *Buffer, code byte) {
	seq, ok := ansiCodes[code]
	if !ok {
		buf.WriteByte(code)
		return
	}
	if !ctx.AnsiColors {
		return
	}
	buf.WriteString(seq)
	ctx.colorOpen = code != 'n'
}
