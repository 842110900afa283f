package eval

// Scanner character classes, in the order the scanner tests them.
const (
	clsPlain   uint8 = iota
	clsSpace         // ' '
	clsBracket       // '['
	clsParen         // '('
	clsEscape        // '%', '\\', ESC: two-byte sequences
	clsClose         // ')' or ']'
	clsBrace         // '{'
	clsNull          // NUL, end of text
	clsDelim         // the caller's delimiter (never stored in the table)
)

const escChar = '\033'

// parseTab is the canonical classification table for the delimiter scanner.
// It is never written after init: a caller's delimiter is overlaid per scan
// through scanMode instead of being patched into the table.
var parseTab [256]uint8

// evalSpecial marks bytes that end the evaluator's plain-copy fast path.
var evalSpecial [256]bool

func init() {
	parseTab[' '] = clsSpace
	parseTab['['] = clsBracket
	parseTab['('] = clsParen
	parseTab['%'] = clsEscape
	parseTab['\\'] = clsEscape
	parseTab[escChar] = clsEscape
	parseTab[')'] = clsClose
	parseTab[']'] = clsClose
	parseTab['{'] = clsBrace
	parseTab[0] = clsNull

	for _, c := range []byte{0, ' ', '%', '(', '[', '\\', '{', escChar} {
		evalSpecial[c] = true
	}
}

// scanMode makes one delimiter byte significant for the duration of a scan.
type scanMode struct {
	delim byte
}

// class returns the class of ch under this mode. The delimiter only wins
// over the low-priority classes; ')', ']', '{', NUL and escapes keep their
// meaning and compare against the delimiter in their own handling.
func (m scanMode) class(ch byte) uint8 {
	c := parseTab[ch]
	if m.delim != 0 && ch == m.delim && c <= clsParen {
		return clsDelim
	}
	return c
}

// CanonicalClasses returns a copy of the scanner's classification table.
func CanonicalClasses() [256]uint8 {
	return parseTab
}
