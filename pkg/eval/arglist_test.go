package eval

import (
	"strings"
	"testing"
)

func TestParseArgList(t *testing.T) {
	e := newTestEnv(t)
	cargs := []string{"x", "y"}
	tests := []struct {
		in      string
		maxArgs int
		flags   int
		want    []string
	}{
		{"a,b,c", 30, 0, []string{"a", "b", "c"}},
		{"a,b,c", 30, EvEval, []string{"a", "b", "c"}},
		{"", 30, 0, []string{""}},
		{"", 30, EvEval, []string{""}},
		{"a,b,c", 2, 0, []string{"a", "b,c"}},
		{"a,b,c", 2, EvEval, []string{"a", "b,c"}},
		{"a,b,c", 1, EvEval, []string{"a,b,c"}},
		{"a,", 30, 0, []string{"a", ""}},
		{"[add(1,2)],x", 30, EvEval, []string{"3", "x"}},
		{"[add(1,2)],x", 30, 0, []string{"[add(1,2)]", "x"}},
		{"%0,%1", 30, EvEval, []string{"x", "y"}},
		{"%0,%1", 30, 0, []string{"%0", "%1"}},
		{" a , {b,c} ", 30, 0, []string{" a ", " {b,c} "}},
		{" a , b ", 30, EvEval, []string{"a", "b"}},
		{"a,(b,c)", 30, EvEval, []string{"a", "(b,c)"}},
		{`a\,b,c`, 30, EvEval, []string{"a,b", "c"}},
		{`a\,b,c`, 30, 0, []string{`a\,b`, "c"}},
	}
	for _, tt := range tests {
		got := e.ctx.ParseArgList(tt.in, tt.maxArgs, tt.flags, cargs)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
			t.Errorf("ParseArgList(%q, %d, %#x) = %q, want %q", tt.in, tt.maxArgs, tt.flags, got, tt.want)
		}
	}
}

func TestParseArgListMaxArgs(t *testing.T) {
	e := newTestEnv(t)
	in := strings.Repeat("a,", MaxNFArgs+5) + "a"
	got := e.ctx.ParseArgList(in, 0, 0, nil)
	if len(got) != MaxNFArgs {
		t.Fatalf("got %d args, want %d", len(got), MaxNFArgs)
	}
	if last := got[MaxNFArgs-1]; last != strings.Repeat("a,", 6)+"a" {
		t.Errorf("last arg = %q", last)
	}
}
