package functions

import (
	"encoding/json"
	"strings"

	"github.com/itchyny/gojq"

	"github.com/crystal-mush/softcode/pkg/eval"
	"github.com/crystal-mush/softcode/pkg/gamedb"
)

// fnJq implements jq(<json>, <filter>[, <delim>]). Each value the filter
// produces is written out, strings bare and everything else as JSON,
// separated by delim.
func fnJq(_ *eval.EvalContext, args []string, buf *eval.Buffer, _, _ gamedb.DBRef) {
	if len(args) > 3 {
		buf.WriteString("#-1 FUNCTION (JQ) EXPECTS 2 OR 3 ARGUMENTS")
		return
	}
	query, err := gojq.Parse(args[1])
	if err != nil {
		buf.WriteString("#-1 INVALID FILTER")
		return
	}
	var input any
	if err := json.Unmarshal([]byte(args[0]), &input); err != nil {
		buf.WriteString("#-1 INVALID JSON")
		return
	}
	delim := listDelim(args, 2)

	var out []string
	iter := query.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			buf.WriteString("#-1 JQ ERROR: " + err.Error())
			return
		}
		out = append(out, jqValue(v))
	}
	buf.WriteString(strings.Join(out, delim))
}

func jqValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "#-1"
	}
	return string(b)
}
