package eval

// ParseArgList splits a function's argument text on commas that are not
// nested inside (), [] or {}. At most maxArgs arguments are produced; the
// last one receives the rest of the text, commas included. Empty input
// yields a single empty argument.
//
// With EvEval set each argument is evaluated with function checking on.
// Otherwise arguments are copied verbatim for the function to evaluate
// itself.
func (ctx *EvalContext) ParseArgList(input string, maxArgs int, flags int, cargs []string) []string {
	if maxArgs <= 0 || maxArgs > MaxNFArgs {
		maxArgs = MaxNFArgs
	}
	eval := flags&EvEval != 0
	rawFlags := (flags &^ (EvEval | EvStripCurly | EvStripAround | EvFCheck)) | EvNoCompress

	args := make([]string, 0, 4)
	if eval {
		rest := input
		for {
			var tok string
			found := false
			if len(args) < maxArgs-1 {
				tok, rest, found = ParseToLite(rest, ',')
			} else {
				tok, rest = rest, ""
			}
			args = append(args, ctx.Exec(tok, flags|EvFCheck, cargs))
			if !found {
				return args
			}
		}
	}

	cur := NewCursor(input)
	for {
		var delim byte = ','
		if len(args) == maxArgs-1 {
			delim = 0
		}
		args = append(args, ctx.ParseTo(cur, delim, rawFlags))
		if cur.Exhausted() {
			return args
		}
	}
}

// findArgsClose locates the ')' that ends the argument text at the start of
// s. found is false when the parenthesis is never closed.
func findArgsClose(s string) (argText, rest string, found bool) {
	return ParseToLite(s, ')')
}
