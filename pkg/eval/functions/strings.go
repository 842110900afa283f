package functions

import (
	"regexp"
	"strings"

	"github.com/crystal-mush/softcode/pkg/eval"
	"github.com/crystal-mush/softcode/pkg/gamedb"
)

var ansiRegexp = regexp.MustCompile("\033\\[[0-9;]*m")

func stripAnsiStr(s string) string {
	return ansiRegexp.ReplaceAllString(s, "")
}

func fnCat(_ *eval.EvalContext, args []string, buf *eval.Buffer, _, _ gamedb.DBRef) {
	buf.WriteString(strings.Join(args, " "))
}

func fnStrlen(_ *eval.EvalContext, args []string, buf *eval.Buffer, _, _ gamedb.DBRef) {
	// Strip ANSI for length counting
	writeInt(buf, len(stripAnsiStr(args[0])))
}

func fnMid(_ *eval.EvalContext, args []string, buf *eval.Buffer, _, _ gamedb.DBRef) {
	s := args[0]
	start := toInt(args[1])
	length := toInt(args[2])
	if start < 0 || length < 0 {
		buf.WriteString("#-1 OUT OF RANGE")
		return
	}
	if start >= len(s) {
		return
	}
	end := len(s)
	if length < end-start {
		end = start + length
	}
	buf.WriteString(s[start:end])
}

func fnLcstr(_ *eval.EvalContext, args []string, buf *eval.Buffer, _, _ gamedb.DBRef) {
	buf.WriteString(strings.ToLower(args[0]))
}

func fnUcstr(_ *eval.EvalContext, args []string, buf *eval.Buffer, _, _ gamedb.DBRef) {
	buf.WriteString(strings.ToUpper(args[0]))
}

func fnCapstr(_ *eval.EvalContext, args []string, buf *eval.Buffer, _, _ gamedb.DBRef) {
	mark := buf.Len()
	buf.WriteString(args[0])
	buf.UpperAt(mark)
}

func fnRepeat(_ *eval.EvalContext, args []string, buf *eval.Buffer, _, _ gamedb.DBRef) {
	n := toInt(args[1])
	if n <= 0 || args[0] == "" {
		return
	}
	// Stop once the buffer is full rather than building the whole string
	for i := 0; i < n && !buf.Full(); i++ {
		buf.WriteString(args[0])
	}
}

// --- Lists ---

func splitList(s, delim string) []string {
	if s == "" {
		return nil
	}
	if delim == "" || delim == " " {
		return strings.Fields(s)
	}
	return strings.Split(s, delim)
}

func listDelim(args []string, i int) string {
	if len(args) > i && args[i] != "" {
		return args[i]
	}
	return " "
}

func fnWords(_ *eval.EvalContext, args []string, buf *eval.Buffer, _, _ gamedb.DBRef) {
	writeInt(buf, len(splitList(args[0], listDelim(args, 1))))
}

func fnFirst(_ *eval.EvalContext, args []string, buf *eval.Buffer, _, _ gamedb.DBRef) {
	words := splitList(args[0], listDelim(args, 1))
	if len(words) > 0 {
		buf.WriteString(words[0])
	}
}

func fnRest(_ *eval.EvalContext, args []string, buf *eval.Buffer, _, _ gamedb.DBRef) {
	delim := listDelim(args, 1)
	words := splitList(args[0], delim)
	if len(words) > 1 {
		buf.WriteString(strings.Join(words[1:], delim))
	}
}

// wildMatch is TinyMUSH's case-insensitive glob match (* and ?).
func wildMatch(pattern, str string) bool {
	pattern = strings.ToLower(pattern)
	str = strings.ToLower(str)
	return matchHelper(pattern, str)
}

func matchHelper(pattern, str string) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case '*':
			// Try matching rest of pattern with every suffix of str
			for i := len(str); i >= 0; i-- {
				if matchHelper(pattern[1:], str[i:]) {
					return true
				}
			}
			return false
		case '?':
			if len(str) == 0 {
				return false
			}
		case '\\':
			if len(pattern) > 1 {
				pattern = pattern[1:]
			}
			fallthrough
		default:
			if len(str) == 0 || pattern[0] != str[0] {
				return false
			}
		}
		pattern = pattern[1:]
		str = str[1:]
	}
	return len(str) == 0
}
