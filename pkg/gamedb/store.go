package gamedb

// The methods below satisfy the evaluator's object store contract.

// GetAttr returns the text of attribute num on obj, walking the parent chain
// the way TinyMUSH's atr_pget does (up to 10 levels).
func (db *Database) GetAttr(obj DBRef, num int) (string, bool) {
	current := obj
	for depth := 0; depth <= 10; depth++ {
		o, ok := db.Objects[current]
		if !ok {
			return "", false
		}
		for _, attr := range o.Attrs {
			if attr.Number == num {
				return StripAttrPrefix(attr.Value), true
			}
		}
		if o.Parent == Nothing || o.Parent == current {
			return "", false
		}
		current = o.Parent
	}
	return "", false
}

// Name returns the object's name, or "" if it does not exist.
func (db *Database) Name(obj DBRef) string {
	if o, ok := db.Objects[obj]; ok {
		return o.Name
	}
	return ""
}

// Owner returns the object's owner. Missing objects own themselves.
func (db *Database) Owner(obj DBRef) DBRef {
	if o, ok := db.Objects[obj]; ok {
		return o.Owner
	}
	return obj
}

// Location returns where the object is, or Nothing.
func (db *Database) Location(obj DBRef) DBRef {
	if o, ok := db.Objects[obj]; ok {
		return o.Location
	}
	return Nothing
}

// IsWizard reports whether obj is God or carries the WIZARD flag
// (directly or through its owner).
func (db *Database) IsWizard(obj DBRef) bool {
	if obj == db.God {
		return true
	}
	o, ok := db.Objects[obj]
	if !ok {
		return false
	}
	if o.HasFlag(FlagWizard) {
		return true
	}
	if o.Owner != obj {
		if owner, ok := db.Objects[o.Owner]; ok && owner.HasFlag(FlagWizard) {
			return true
		}
	}
	return false
}

// CheckAccess tests player against a function permission mask.
func (db *Database) CheckAccess(player DBRef, mask int) bool {
	if mask == 0 {
		return true
	}
	if mask&PermGod != 0 && player != db.God {
		return false
	}
	if mask&PermWizard != 0 && !db.IsWizard(player) {
		return false
	}
	if mask&PermStaff != 0 && !db.IsWizard(player) {
		o, ok := db.Objects[player]
		if !ok || !(o.HasFlag(FlagRoyalty) || o.HasFlag2(Flag2Staff)) {
			return false
		}
	}
	if mask&PermNoGuest != 0 {
		if o, ok := db.Objects[player]; !ok || o.Powers[0]&PowGuest != 0 {
			return false
		}
	}
	return true
}

// Traced reports whether obj has the TRACE flag set.
func (db *Database) Traced(obj DBRef) bool {
	o, ok := db.Objects[obj]
	return ok && o.HasFlag(FlagTrace)
}
