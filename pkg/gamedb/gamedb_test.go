package gamedb

import "testing"

func newTestDB() *Database {
	db := NewDatabase()
	db.Objects[1] = &Object{DBRef: 1, Name: "Wizard", Owner: 1, Parent: Nothing, Flags: [3]int{int(TypePlayer) | FlagWizard, 0, 0}}
	db.Objects[2] = &Object{DBRef: 2, Name: "Bob", Owner: 2, Parent: Nothing, Flags: [3]int{int(TypePlayer), 0, 0}}
	db.Objects[3] = &Object{DBRef: 3, Name: "Parent", Owner: 2, Parent: Nothing, Flags: [3]int{int(TypeThing), 0, 0}}
	db.Objects[4] = &Object{DBRef: 4, Name: "Child", Location: 2, Owner: 2, Parent: 3, Flags: [3]int{int(TypeThing) | FlagTrace, 0, 0}}
	db.Objects[5] = &Object{DBRef: 5, Name: "Royal", Owner: 5, Parent: Nothing, Flags: [3]int{int(TypePlayer) | FlagRoyalty, 0, 0}}
	db.Objects[6] = &Object{DBRef: 6, Name: "Guest", Owner: 6, Parent: Nothing, Flags: [3]int{int(TypePlayer), 0, 0}, Powers: [2]int{PowGuest, 0}}
	db.Objects[7] = &Object{DBRef: 7, Name: "Puppet", Owner: 1, Parent: Nothing, Flags: [3]int{int(TypeThing), 0, 0}}
	db.Objects[8] = &Object{DBRef: 8, Name: "Loop", Owner: 2, Parent: 8, Flags: [3]int{int(TypeThing), 0, 0}}
	return db
}

func TestGetAttrWalksParents(t *testing.T) {
	db := newTestDB()
	db.Objects[3].SetAttr(ADesc, "\x012:0:inherited")
	db.Objects[3].SetAttr(ASex, "plural")
	db.Objects[4].SetAttr(ASex, "male")

	tests := []struct {
		obj  DBRef
		num  int
		want string
		ok   bool
	}{
		{4, ASex, "male", true},
		{4, ADesc, "inherited", true},
		{3, ADesc, "inherited", true},
		{4, AVA, "", false},
		{8, ADesc, "", false},
		{99, ADesc, "", false},
	}
	for _, tt := range tests {
		got, ok := db.GetAttr(tt.obj, tt.num)
		if got != tt.want || ok != tt.ok {
			t.Errorf("GetAttr(%s, %d) = %q, %v; want %q, %v", tt.obj, tt.num, got, ok, tt.want, tt.ok)
		}
	}
}

func TestAttrNames(t *testing.T) {
	db := NewDatabase()
	db.AddAttrDef(300, "greet", 0)
	if db.NextAttr != 301 {
		t.Errorf("NextAttr = %d, want 301", db.NextAttr)
	}

	tests := map[string]int{
		"GREET": 300,
		"greet": 300,
		"desc":  ADesc,
		"VA":    AVA,
		"vz":    AVA + 25,
		"nope":  -1,
	}
	for name, want := range tests {
		if got := db.AttrNum(name); got != want {
			t.Errorf("AttrNum(%q) = %d, want %d", name, got, want)
		}
	}
	if got := db.GetAttrName(300); got != "GREET" {
		t.Errorf("GetAttrName(300) = %q", got)
	}
	if got := db.GetAttrName(ASex); got != "SEX" {
		t.Errorf("GetAttrName(SEX) = %q", got)
	}
	if got := db.GetAttrName(999); got != "" {
		t.Errorf("GetAttrName(999) = %q", got)
	}
}

func TestDefineAttr(t *testing.T) {
	db := NewDatabase()
	first := db.DefineAttr("Counter")
	if first != AUserStart {
		t.Errorf("first user attr = %d, want %d", first, AUserStart)
	}
	if again := db.DefineAttr("COUNTER"); again != first {
		t.Errorf("redefining returned %d, want %d", again, first)
	}
	if second := db.DefineAttr("other"); second != first+1 {
		t.Errorf("second user attr = %d, want %d", second, first+1)
	}
	if got := db.DefineAttr("desc"); got != ADesc {
		t.Errorf("DefineAttr(desc) = %d, want built-in %d", got, ADesc)
	}
}

func TestCheckAccess(t *testing.T) {
	db := newTestDB()
	tests := []struct {
		player DBRef
		mask   int
		want   bool
	}{
		{2, 0, true},
		{1, PermWizard, true},
		{2, PermWizard, false},
		{7, PermWizard, true}, // owned by a wizard
		{1, PermGod, true},
		{7, PermGod, false},
		{5, PermStaff, true},
		{2, PermStaff, false},
		{1, PermStaff, true},
		{6, PermNoGuest, false},
		{2, PermNoGuest, true},
		{99, PermNoGuest, false},
	}
	for _, tt := range tests {
		if got := db.CheckAccess(tt.player, tt.mask); got != tt.want {
			t.Errorf("CheckAccess(%s, %#x) = %v, want %v", tt.player, tt.mask, got, tt.want)
		}
	}
}

func TestObjectAccessors(t *testing.T) {
	db := newTestDB()
	if !db.Traced(4) || db.Traced(3) || db.Traced(99) {
		t.Error("Traced misreports the TRACE flag")
	}
	if db.Name(4) != "Child" || db.Name(99) != "" {
		t.Errorf("Name = %q / %q", db.Name(4), db.Name(99))
	}
	if db.Owner(4) != 2 || db.Owner(99) != 99 {
		t.Errorf("Owner = %s / %s", db.Owner(4), db.Owner(99))
	}
	if db.Location(4) != 2 || db.Location(99) != Nothing {
		t.Errorf("Location = %s / %s", db.Location(4), db.Location(99))
	}
	if got := db.Objects[4].ObjType(); got != TypeThing {
		t.Errorf("ObjType = %s", got)
	}
}

func TestSetAndRemoveAttr(t *testing.T) {
	o := &Object{}
	o.SetAttr(AVA, "one")
	o.SetAttr(AVA, "two")
	if len(o.Attrs) != 1 || o.Attrs[0].Value != "two" {
		t.Errorf("SetAttr did not replace: %+v", o.Attrs)
	}
	if !o.RemoveAttr(AVA) || o.RemoveAttr(AVA) {
		t.Error("RemoveAttr reported the wrong presence")
	}
}

func TestStripAttrPrefix(t *testing.T) {
	tests := map[string]string{
		"plain":             "plain",
		"":                  "",
		"\x011:0:text":      "text",
		"\x011:0:a:b":       "a:b",
		"\x01malformed":     "malformed",
		"\x0112:33554432:x": "x",
	}
	for in, want := range tests {
		if got := StripAttrPrefix(in); got != want {
			t.Errorf("StripAttrPrefix(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDBRefString(t *testing.T) {
	tests := map[DBRef]string{
		0:       "#0",
		42:      "#42",
		Nothing: "#-1",
		Home:    "#-3",
	}
	for ref, want := range tests {
		if got := ref.String(); got != want {
			t.Errorf("DBRef(%d).String() = %q, want %q", int(ref), got, want)
		}
	}
}
