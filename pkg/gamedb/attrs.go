package gamedb

// Well-known (built-in) attribute numbers from constants.h.
// Numbers match the C TinyMUSH source since stored databases use them.
var WellKnownAttrs = map[int]string{
	1:  "OSUCC",
	2:  "OFAIL",
	3:  "FAIL",
	4:  "SUCC",
	5:  "PASS",
	6:  "DESC",
	7:  "SEX",
	26: "LISTEN",
	30: "LAST",
	39: "ACONNECT",
	40: "ADISCONNECT",
	43: "NAME",
	44: "COMMENT",
	58: "ALIAS",
	73: "AWAY",
	74: "IDLE",
}

func init() {
	for i := 0; i < 26; i++ {
		WellKnownAttrs[AVA+i] = "V" + string(rune('A'+i))
	}
	wellKnownByName = make(map[string]int, len(WellKnownAttrs))
	for num, name := range WellKnownAttrs {
		wellKnownByName[name] = num
	}
}

var wellKnownByName map[string]int

// Well-known attribute number constants.
const (
	ASex  = 7
	ADesc = 6
	AVA   = 100 // VA..VZ occupy 100..125
)

// AUserStart is the first attribute number available for user-defined attrs.
const AUserStart = 256
