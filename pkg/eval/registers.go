package eval

// Registers is the bank of q-registers (%q0-%q9, %qa-%qz).
type Registers struct {
	vals [MaxGlobalRegs]string
	set  [MaxGlobalRegs]bool
}

// RegSnapshot is a saved copy of every register slot.
type RegSnapshot struct {
	vals [MaxGlobalRegs]string
	set  [MaxGlobalRegs]bool
}

// NewRegisters returns a bank with every slot empty.
func NewRegisters() *Registers {
	return &Registers{}
}

// RegIndex converts a register character (0-9, a-z, A-Z) to a slot index,
// or -1 if ch does not name a register.
func RegIndex(ch byte) int {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch - '0')
	case ch >= 'a' && ch <= 'z':
		return int(ch-'a') + 10
	case ch >= 'A' && ch <= 'Z':
		return int(ch-'A') + 10
	}
	return -1
}

// Get returns the value of slot i ("" when empty or out of range).
func (r *Registers) Get(i int) string {
	if i < 0 || i >= MaxGlobalRegs {
		return ""
	}
	return r.vals[i]
}

// IsSet reports whether slot i holds a value.
func (r *Registers) IsSet(i int) bool {
	return i >= 0 && i < MaxGlobalRegs && r.set[i]
}

// Set stores v in slot i. Out-of-range indexes are ignored.
func (r *Registers) Set(i int, v string) {
	if i < 0 || i >= MaxGlobalRegs {
		return
	}
	r.vals[i] = v
	r.set[i] = true
}

// Clear empties slot i.
func (r *Registers) Clear(i int) {
	if i < 0 || i >= MaxGlobalRegs {
		return
	}
	r.vals[i] = ""
	r.set[i] = false
}

// Save copies every slot.
func (r *Registers) Save() RegSnapshot {
	return RegSnapshot{vals: r.vals, set: r.set}
}

// Restore writes a snapshot back; slots empty in the snapshot are cleared.
func (r *Registers) Restore(s RegSnapshot) {
	r.vals = s.vals
	r.set = s.set
}

// Preserve saves the bank and returns the function that restores it.
// Callers defer it so the restore runs on every exit path:
//
//	defer ctx.Regs.Preserve()()
func (r *Registers) Preserve() func() {
	saved := r.Save()
	return func() { r.Restore(saved) }
}
