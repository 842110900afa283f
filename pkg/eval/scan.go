package eval

// stackLim bounds the scanner's bracket stack. Nesting deeper than this is
// no longer tracked, but scanning carries on.
const stackLim = 32

// Cursor is a read position over source text for the delimiter scanner.
// Once a scan runs off the end without finding its delimiter the cursor is
// exhausted and every further scan returns "".
type Cursor struct {
	src  string
	pos  int
	done bool
}

// NewCursor starts a cursor at the beginning of s.
func NewCursor(s string) *Cursor {
	return &Cursor{src: s}
}

// Exhausted reports whether the previous scan consumed all remaining input.
func (c *Cursor) Exhausted() bool {
	return c == nil || c.done
}

// Rest returns the unscanned remainder of the input.
func (c *Cursor) Rest() string {
	if c.Exhausted() {
		return ""
	}
	return c.src[c.pos:]
}

// bracketStack is the fixed-depth stack of expected closers.
type bracketStack struct {
	items [stackLim]byte
	sp    int
}

func (st *bracketStack) push(closer byte) {
	if st.sp < stackLim {
		st.items[st.sp] = closer
		st.sp++
	}
}

// unwind pops back to the nearest entry expecting ch. It reports false when
// ch does not close anything on the stack.
func (st *bracketStack) unwind(ch byte) bool {
	tp := st.sp - 1
	for tp >= 0 && st.items[tp] != ch {
		tp--
	}
	if tp < 0 {
		return false
	}
	st.sp = tp
	return true
}

func (st *bracketStack) empty() bool { return st.sp == 0 }

// matchBrace returns the index of the '}' balancing the '{' at s[open], or
// -1 if the block is unterminated. '\' and '%' escape the following byte.
func matchBrace(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '\\', '%':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// ParseTo returns the next token of cur up to delim and advances cur past
// the delimiter. Text inside (...) and [...] is never split and {...} blocks
// are copied whole. If delim is not found the rest of the input is returned
// and cur becomes exhausted. A zero delim only matches the end of the text.
//
// Flags applied: EvStripESC drops the backslash of \x escapes, EvStripCurly
// removes the braces of every brace block, EvStripAround removes them only
// when one block spans the whole token, EvStripLS/EvStripTS trim one side,
// and EvNoCompress disables all space handling. compress (or a space
// delimiter) trims both ends and collapses runs of spaces.
func ParseTo(cur *Cursor, delim byte, flags int, compress bool) string {
	if cur.Exhausted() {
		return ""
	}
	s := cur.src
	pos := cur.pos
	mode := scanMode{delim: delim}

	noCompress := flags&EvNoCompress != 0
	squeeze := compress && !noCompress
	stripLead := (squeeze || delim == ' ' || flags&EvStripLS != 0) && !noCompress
	stripTrail := (squeeze || delim == ' ' || flags&EvStripTS != 0) && !noCompress

	if stripLead {
		for pos < len(s) && s[pos] == ' ' {
			pos++
		}
	}

	out := make([]byte, 0, len(s)-pos)
	var stack bracketStack
	aroundStart, aroundEnd := -1, -1

	finish := func() string {
		if stripTrail {
			for len(out) > 0 && out[len(out)-1] == ' ' {
				out = out[:len(out)-1]
			}
		}
		if aroundStart == 0 && aroundEnd == len(out) && len(out) >= 2 {
			return string(out[1 : len(out)-1])
		}
		return string(out)
	}

	for pos < len(s) {
		ch := s[pos]
		cls := mode.class(ch)
		if cls == clsDelim {
			if stack.empty() {
				cur.pos = pos + 1
				return finish()
			}
			cls = parseTab[ch]
		}

		switch cls {
		case clsNull:
			cur.done = true
			return finish()

		case clsEscape:
			if ch == '\\' && flags&EvStripESC != 0 {
				pos++
			} else {
				out = append(out, ch)
				pos++
			}
			if ch != escChar && pos < len(s) {
				out = append(out, s[pos])
				pos++
			}

		case clsClose:
			if !stack.unwind(ch) && ch == delim {
				cur.pos = pos + 1
				return finish()
			}
			out = append(out, ch)
			pos++

		case clsBrace:
			end := matchBrace(s, pos)
			strip := flags&EvStripCurly != 0
			if end < 0 {
				if strip {
					pos++
				}
				out = append(out, s[pos:]...)
				pos = len(s)
				break
			}
			wasEmpty := len(out) == 0
			if strip {
				out = append(out, s[pos+1:end]...)
			} else {
				out = append(out, s[pos:end+1]...)
				if flags&EvStripAround != 0 && wasEmpty {
					aroundStart, aroundEnd = 0, len(out)
				}
			}
			pos = end + 1

		case clsSpace:
			if squeeze && (len(out) == 0 || out[len(out)-1] == ' ') {
				pos++
				break
			}
			out = append(out, ch)
			pos++

		case clsBracket:
			stack.push(']')
			out = append(out, ch)
			pos++

		case clsParen:
			stack.push(')')
			out = append(out, ch)
			pos++

		default:
			out = append(out, ch)
			pos++
		}
	}
	cur.done = true
	return finish()
}

// ParseToLite splits s at the first delim outside any nesting without
// copying or interpreting escapes; the evaluator does that later. found is
// false when s ran out first, in which case token is all of s.
func ParseToLite(s string, delim byte) (token, rest string, found bool) {
	mode := scanMode{delim: delim}
	var stack bracketStack
	for pos := 0; pos < len(s); pos++ {
		ch := s[pos]
		cls := mode.class(ch)
		if cls == clsDelim {
			if stack.empty() {
				return s[:pos], s[pos+1:], true
			}
			cls = parseTab[ch]
		}
		switch cls {
		case clsNull:
			return s[:pos], "", false
		case clsEscape:
			if ch != escChar {
				pos++
			}
		case clsClose:
			if !stack.unwind(ch) && ch == delim {
				return s[:pos], s[pos+1:], true
			}
		case clsBrace:
			end := matchBrace(s, pos)
			if end < 0 {
				return s, "", false
			}
			pos = end
		case clsBracket:
			stack.push(']')
		case clsParen:
			stack.push(')')
		}
	}
	return s, "", false
}

// ParseTo scans cur with this context's space-compression setting.
func (ctx *EvalContext) ParseTo(cur *Cursor, delim byte, flags int) string {
	return ParseTo(cur, delim, flags, ctx.SpaceCompress)
}
