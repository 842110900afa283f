package gamedb

import (
	"fmt"
	"strings"
	"time"
)

// DBRef is the fundamental object reference type in MUSH.
type DBRef int

const (
	Nothing   DBRef = -1
	Ambiguous DBRef = -2
	Home      DBRef = -3
	NoPerm    DBRef = -4
)

// String renders a dbref the way softcode sees it: "#N".
func (r DBRef) String() string {
	return fmt.Sprintf("#%d", int(r))
}

// ObjectType represents the type of a MUSH object.
type ObjectType int

const (
	TypeRoom    ObjectType = 0
	TypeThing   ObjectType = 1
	TypeExit    ObjectType = 2
	TypePlayer  ObjectType = 3
	TypeZone    ObjectType = 4
	TypeGarbage ObjectType = 5
)

func (t ObjectType) String() string {
	switch t {
	case TypeRoom:
		return "ROOM"
	case TypeThing:
		return "THING"
	case TypeExit:
		return "EXIT"
	case TypePlayer:
		return "PLAYER"
	case TypeZone:
		return "ZONE"
	case TypeGarbage:
		return "GARBAGE"
	default:
		return "UNKNOWN"
	}
}

const TypeMask = 0x7

// Flag constants - first word. Only the bits the evaluator consults are named.
const (
	FlagWizard  = 0x00000010
	FlagDark    = 0x00000040
	FlagHalt    = 0x00001000
	FlagTrace   = 0x00002000
	FlagGoing   = 0x00004000
	FlagRoyalty = 0x20000000
)

// Flag constants - second word
const (
	Flag2Ansi  = 0x00002000
	Flag2Staff = 0x10000000
)

// PowGuest marks guest characters (Powers[0]).
const PowGuest = 0x02000000

// Permission masks carried by function descriptors. A zero mask means
// anyone may call the function.
const (
	PermWizard  = 0x0001 // Wizards (and God) only
	PermGod     = 0x0002 // God only
	PermStaff   = 0x0004 // Wizards, royalty, or STAFF
	PermNoGuest = 0x0008 // Not callable by guests
)

// Attribute flag constants (from TinyMUSH attrs.h)
const (
	AFODark    = 0x00000001 // Only owner can see
	AFDark     = 0x00000002 // Only God (#1) can see
	AFWizard   = 0x00000004 // Only wizards can change
	AFMDark    = 0x00000008 // Only wizards can see
	AFInternal = 0x00000010 // Don't show even to God
	AFNoProg   = 0x00000100 // Don't process $-commands
	AFGod      = 0x00000200 // Only God can change
	AFVisual   = 0x00000800 // Anyone can see
	AFNoParse  = 0x00004000 // Don't evaluate in $-cmd check
	AFTrace    = 0x02000000 // Trace ufunction
)

// Attribute represents a single attribute on an object.
type Attribute struct {
	Number int
	Value  string
}

// AttrDef represents a user-defined attribute name definition.
type AttrDef struct {
	Number int
	Name   string
	Flags  int
}

// Object represents a MUSH database object.
type Object struct {
	DBRef      DBRef
	Name       string
	Location   DBRef
	Owner      DBRef
	Parent     DBRef
	Flags      [3]int
	Powers     [2]int
	LastAccess time.Time
	LastMod    time.Time
	Attrs      []Attribute
}

// ObjType returns the object type from the flags.
func (o *Object) ObjType() ObjectType {
	return ObjectType(o.Flags[0] & TypeMask)
}

// HasFlag checks if a flag bit is set in the first flag word.
func (o *Object) HasFlag(flag int) bool {
	return o.Flags[0]&flag != 0
}

// HasFlag2 checks if a flag bit is set in the second flag word.
func (o *Object) HasFlag2(flag int) bool {
	return o.Flags[1]&flag != 0
}

// IsGoing returns true if the object is marked for destruction.
func (o *Object) IsGoing() bool {
	return o.HasFlag(FlagGoing)
}

// SetAttr replaces or appends an attribute value.
func (o *Object) SetAttr(num int, value string) {
	for i := range o.Attrs {
		if o.Attrs[i].Number == num {
			o.Attrs[i].Value = value
			return
		}
	}
	o.Attrs = append(o.Attrs, Attribute{Number: num, Value: value})
}

// RemoveAttr deletes an attribute. Reports whether it was present.
func (o *Object) RemoveAttr(num int) bool {
	for i := range o.Attrs {
		if o.Attrs[i].Number == num {
			o.Attrs = append(o.Attrs[:i], o.Attrs[i+1:]...)
			return true
		}
	}
	return false
}

// Database holds the in-memory object store consulted by the evaluator.
type Database struct {
	Version    int
	NextAttr   int
	God        DBRef
	Objects    map[DBRef]*Object
	AttrNames  map[int]*AttrDef    // attr number -> definition
	AttrByName map[string]*AttrDef // attr name -> definition
}

// NewDatabase creates an empty Database.
func NewDatabase() *Database {
	return &Database{
		NextAttr:   AUserStart,
		God:        1,
		Objects:    make(map[DBRef]*Object),
		AttrNames:  make(map[int]*AttrDef),
		AttrByName: make(map[string]*AttrDef),
	}
}

// AddAttrDef registers a user-defined attribute.
func (db *Database) AddAttrDef(num int, name string, flags int) {
	name = strings.ToUpper(name)
	def := &AttrDef{Number: num, Name: name, Flags: flags}
	db.AttrNames[num] = def
	db.AttrByName[name] = def
	if num >= db.NextAttr {
		db.NextAttr = num + 1
	}
}

// DefineAttr returns the number of the named attribute, allocating a new
// user attribute number if the name is unknown.
func (db *Database) DefineAttr(name string) int {
	if num := db.AttrNum(name); num >= 0 {
		return num
	}
	num := db.NextAttr
	db.AddAttrDef(num, name, 0)
	return num
}

// GetAttrName returns the name for an attribute number, or "" if unknown.
func (db *Database) GetAttrName(num int) string {
	if def, ok := db.AttrNames[num]; ok {
		return def.Name
	}
	if name, ok := WellKnownAttrs[num]; ok {
		return name
	}
	return ""
}

// AttrNum resolves an attribute name (case-insensitive) to its number,
// or -1 if there is no such attribute.
func (db *Database) AttrNum(name string) int {
	name = strings.ToUpper(name)
	if def, ok := db.AttrByName[name]; ok {
		return def.Number
	}
	if num, ok := wellKnownByName[name]; ok {
		return num
	}
	return -1
}

// StripAttrPrefix removes the "\x01owner:flags:" prefix from a raw attribute value.
// TinyMUSH stores attributes either as raw text (no prefix) or with a \x01 marker
// followed by "owner:flags:text". If no \x01 marker is present, returns the raw value.
func StripAttrPrefix(raw string) string {
	if len(raw) == 0 || raw[0] != '\x01' {
		return raw
	}
	colonCount := 0
	for i := 1; i < len(raw); i++ {
		if raw[i] == ':' {
			colonCount++
			if colonCount == 2 {
				return raw[i+1:]
			}
		}
	}
	// Malformed prefix
	return raw[1:]
}
