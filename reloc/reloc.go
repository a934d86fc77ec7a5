// reloc.go - relocation sink and symbol table
//
// Grounded on the teacher's registers.go convention of a single
// centralized address map; here the map is of symbol name to index rather
// than of peripheral to address range, and it grows on demand instead of
// being fixed at compile time.

package reloc

// Kind distinguishes the fixup shape the linker must apply (§6).
type Kind int

const (
	// RELATIVE requests an IP-relative rel32 fixup with an implicit -4
	// addend (the displacement is measured from the end of the
	// instruction, per §4.E "Branches").
	RELATIVE Kind = iota
	// ABSOLUTE requests a direct 32-bit immediate or displacement fixup.
	ABSOLUTE
)

func (k Kind) String() string {
	if k == RELATIVE {
		return "RELATIVE"
	}
	return "ABSOLUTE"
}

// Section identifies which output section a symbol or relocation belongs
// to. The concrete section layout is the (external) object writer's
// concern; the sink only threads the value through.
type Section int

const (
	SectText Section = iota
	SectData
	SectBSS
)

func (s Section) String() string {
	switch s {
	case SectText:
		return "text"
	case SectData:
		return "data"
	case SectBSS:
		return "bss"
	}
	return "unknown"
}

// Class is the symbol's linkage/storage class (§4.B "class" parameter;
// spec.md does not enumerate values — see DESIGN.md "Open Questions").
type Class int

const (
	// SymLocal is a symbol with internal (static) linkage, invisible
	// outside the translation unit.
	SymLocal Class = iota
	// SymGlobal is a symbol with external linkage.
	SymGlobal
	// SymWeak is a symbol the linker may resolve to another definition
	// without a duplicate-symbol error.
	SymWeak
)

// Symbol is an entry in the relocation sink's symbol table.
type Symbol struct {
	Name    string
	Value   uint32
	Section Section
	Flags   uint32
	Class   Class
	defined bool
}

// Reloc is a single (offset, symbol, kind, section) fixup request.
type Reloc struct {
	Offset  int
	Symbol  int // index into Sink.Symbols
	Kind    Kind
	Section Section
}

// Sink accepts relocation requests and resolves/creates symbol indices on
// demand (§4.B; §7: "Relocation failure is impossible: unknown symbols are
// created on demand"). Symbol indices are monotonic per session (§5).
type Sink struct {
	Symbols []Symbol
	Relocs  []Reloc
	byName  map[string]int
}

// New returns an empty Sink.
func New() *Sink {
	return &Sink{byName: make(map[string]int)}
}

// FindSymbol returns the index of name, or -1 if it has not been seen.
func (s *Sink) FindSymbol(name string) int {
	if idx, ok := s.byName[name]; ok {
		return idx
	}
	return -1
}

// AddSymbol records or updates a symbol and returns its index. A second
// call with the same name updates the existing entry rather than creating
// a duplicate.
func (s *Sink) AddSymbol(name string, value uint32, section Section, flags uint32, class Class) int {
	if idx, ok := s.byName[name]; ok {
		s.Symbols[idx].Value = value
		s.Symbols[idx].Section = section
		s.Symbols[idx].Flags = flags
		s.Symbols[idx].Class = class
		s.Symbols[idx].defined = true
		return idx
	}
	idx := len(s.Symbols)
	s.Symbols = append(s.Symbols, Symbol{
		Name: name, Value: value, Section: section, Flags: flags, Class: class, defined: true,
	})
	s.byName[name] = idx
	return idx
}

// internSymbol locates name or creates an undefined placeholder entry for
// it, used internally by AddReloc so forward references to not-yet-defined
// labels/functions never fail (§7).
func (s *Sink) internSymbol(name string) int {
	if idx, ok := s.byName[name]; ok {
		return idx
	}
	idx := len(s.Symbols)
	s.Symbols = append(s.Symbols, Symbol{Name: name, Section: SectText})
	s.byName[name] = idx
	return idx
}

// AddReloc locates or creates a symbol index for name and records a
// relocation at offset (§4.B).
func (s *Sink) AddReloc(offset int, name string, kind Kind, section Section) {
	idx := s.internSymbol(name)
	s.Relocs = append(s.Relocs, Reloc{Offset: offset, Symbol: idx, Kind: kind, Section: section})
}

// IsDefined reports whether the symbol at idx has an assigned value
// (false for forward-referenced-but-not-yet-defined labels).
func (s *Sink) IsDefined(idx int) bool {
	return idx >= 0 && idx < len(s.Symbols) && s.Symbols[idx].defined
}
