package eval

import (
	"math/rand"
	"strings"
	"testing"
)

// scanAll splits s with ParseTo until the cursor is exhausted.
func scanAll(s string, delim byte, flags int, compress bool) []string {
	cur := NewCursor(s)
	var out []string
	for {
		out = append(out, ParseTo(cur, delim, flags, compress))
		if cur.Exhausted() {
			return out
		}
	}
}

func TestParseToSplits(t *testing.T) {
	tests := []struct {
		in       string
		delim    byte
		flags    int
		compress bool
		want     []string
	}{
		{"a,b,c", ',', 0, false, []string{"a", "b", "c"}},
		{"a,b,", ',', 0, false, []string{"a", "b", ""}},
		{"f(a,b),[x,y],{p,q},z", ',', 0, false, []string{"f(a,b)", "[x,y]", "{p,q}", "z"}},
		{`a\,b,c`, ',', 0, false, []string{`a\,b`, "c"}},
		{`a\,b,c`, ',', EvStripESC, false, []string{"a,b", "c"}},
		{"a%,b,c", ',', 0, false, []string{"a%,b", "c"}},
		{"{a,b},c", ',', EvStripCurly, false, []string{"a,b", "c"}},
		{"{a,b},c", ',', EvStripAround, false, []string{"a,b", "c"}},
		{"{a}b,c", ',', EvStripAround, false, []string{"{a}b", "c"}},
		{"  a   b  ,c", ',', 0, true, []string{"a b", "c"}},
		{"  a ,b", ',', EvNoCompress, true, []string{"  a ", "b"}},
		{"  a ,b", ',', 0, false, []string{"  a ", "b"}},
		{"  a ,b", ',', EvStripLS, false, []string{"a ", "b"}},
		{"  a ,b", ',', EvStripTS, false, []string{"  a", "b"}},
		{" a  b", ' ', 0, false, []string{"a", "b"}},
		{"(abc,def", ',', 0, false, []string{"(abc,def"}},
		{"[abc,def", ',', 0, false, []string{"[abc,def"}},
		{"a,b", 0, 0, false, []string{"a,b"}},
		{"a]b,c", ',', 0, false, []string{"a]b", "c"}},
		{"{a,b", ',', 0, false, []string{"{a,b"}},
		{"", ',', 0, false, []string{""}},
	}
	for _, tt := range tests {
		got := scanAll(tt.in, tt.delim, tt.flags, tt.compress)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
			t.Errorf("ParseTo(%q, %q, %#x) = %q, want %q", tt.in, tt.delim, tt.flags, got, tt.want)
		}
	}
}

func TestParseToCloseDelim(t *testing.T) {
	cur := NewCursor("a(b)c)d")
	if got := ParseTo(cur, ')', 0, false); got != "a(b)c" {
		t.Errorf("token = %q, want %q", got, "a(b)c")
	}
	if cur.Exhausted() {
		t.Fatal("cursor exhausted after finding delimiter")
	}
	if got := cur.Rest(); got != "d" {
		t.Errorf("rest = %q, want %q", got, "d")
	}
}

func TestParseToExhausted(t *testing.T) {
	cur := NewCursor("abc")
	ParseTo(cur, ',', 0, false)
	if !cur.Exhausted() {
		t.Fatal("cursor not exhausted after running off the end")
	}
	if got := ParseTo(cur, ',', 0, false); got != "" {
		t.Errorf("scan after exhaustion = %q", got)
	}
	if cur.Rest() != "" {
		t.Errorf("Rest() = %q", cur.Rest())
	}
}

func TestParseToDeepNesting(t *testing.T) {
	// Nesting past the stack limit stops being tracked but scanning goes on
	deep := strings.Repeat("(", 40) + "," + strings.Repeat(")", 40)
	got := scanAll(deep+",x", ',', 0, false)
	if len(got) != 2 || got[0] != deep || got[1] != "x" {
		t.Errorf("deep nesting split = %q", got)
	}
}

func TestParseToLite(t *testing.T) {
	tests := []struct {
		in    string
		delim byte
		tok   string
		rest  string
		found bool
	}{
		{"a,b(c,d),e", ',', "a", "b(c,d),e", true},
		{"b(c,d),e", ',', "b(c,d)", "e", true},
		{"e", ',', "e", "", false},
		{`a\,b,c`, ',', `a\,b`, "c", true},
		{"%,x,y", ',', "%,x", "y", true},
		{"{a,b},c", ',', "{a,b}", "c", true},
		{"{a,b", ',', "{a,b", "", false},
		{"x(y)z)rest", ')', "x(y)z", "rest", true},
		{"add(1,2)]tail", ']', "add(1,2)", "tail", true},
		{"[a]b]c", ']', "[a]b", "c", true},
	}
	for _, tt := range tests {
		tok, rest, found := ParseToLite(tt.in, tt.delim)
		if tok != tt.tok || rest != tt.rest || found != tt.found {
			t.Errorf("ParseToLite(%q, %q) = %q, %q, %v; want %q, %q, %v",
				tt.in, tt.delim, tok, rest, found, tt.tok, tt.rest, tt.found)
		}
	}
}

func TestMatchBrace(t *testing.T) {
	tests := map[string]int{
		"{a{b}c}": 6,
		`{a\}b}`:  5,
		"{a%}b}":  5,
		"{abc":    -1,
		"{}":      1,
	}
	for in, want := range tests {
		if got := matchBrace(in, 0); got != want {
			t.Errorf("matchBrace(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestBracketStackOverflow(t *testing.T) {
	var st bracketStack
	for i := 0; i < stackLim+8; i++ {
		st.push(')')
	}
	if st.sp != stackLim {
		t.Errorf("sp = %d, want %d", st.sp, stackLim)
	}
	if !st.unwind(')') || st.sp != stackLim-1 {
		t.Errorf("unwind left sp = %d", st.sp)
	}
	if st.unwind(']') {
		t.Error("unwind(']') matched a ')' stack")
	}
}

func TestScanModeDelimiterPriority(t *testing.T) {
	// Low-priority classes yield to the delimiter, the rest keep their meaning
	tests := map[byte]uint8{
		'x':  clsDelim,
		' ':  clsDelim,
		'(':  clsDelim,
		'[':  clsDelim,
		')':  clsClose,
		']':  clsClose,
		'{':  clsBrace,
		'%':  clsEscape,
		'\\': clsEscape,
	}
	for ch, want := range tests {
		if got := (scanMode{delim: ch}).class(ch); got != want {
			t.Errorf("class(%q) with delim %q = %d, want %d", ch, ch, got, want)
		}
	}
	if got := (scanMode{}).class(0); got != clsNull {
		t.Errorf("class(NUL) = %d, want clsNull", got)
	}
}

// The classification table must be identical before and after every scan or
// evaluation, whatever delimiter the caller chose and however the call ends.
func TestClassTableUnchanged(t *testing.T) {
	e := newTestEnv(t)
	before := CanonicalClasses()
	const pieces = "ab ,()[]{}%\\\033x;|0"
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 2000; i++ {
		delim := byte(rng.Intn(256))
		b := make([]byte, rng.Intn(40))
		for j := range b {
			if rng.Intn(8) == 0 {
				b[j] = delim
			} else {
				b[j] = pieces[rng.Intn(len(pieces))]
			}
		}
		s := string(b)

		cur := NewCursor(s)
		for !cur.Exhausted() {
			ParseTo(cur, delim, rng.Intn(0x200), rng.Intn(2) == 0)
		}
		ParseToLite(s, delim)
		e.ctx.ParseArgList(s, rng.Intn(5), EvEval|EvFCheck, nil)
		e.eval(s)

		if CanonicalClasses() != before {
			t.Fatalf("class table changed after delimiter %q on %q", delim, s)
		}
	}
}
