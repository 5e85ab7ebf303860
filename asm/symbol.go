package asm

import "fmt"

// SymbolKind distinguishes what a symbol table entry refers to.
type SymbolKind int

const (
	SymbolLabel SymbolKind = iota
	SymbolIntegerConst
	SymbolStringConst
)

// Symbol is one entry in the symbol table: a name, what kind of thing it
// names, and the byte offset it resolves to. Code labels hold a
// container-absolute position; data constants hold a position relative to
// the start of the read-only blob, which is the coordinate space PRTS
// addresses at runtime.
type Symbol struct {
	Name   string
	Kind   SymbolKind
	Offset uint32
}

// SymbolTable is append-only and single-assignment: once a name has been
// declared it can never be redeclared.
type SymbolTable struct {
	entries map[string]Symbol
}

// NewSymbolTable returns an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{entries: make(map[string]Symbol)}
}

// ErrSymbolAlreadyDeclared is returned by Declare when a name has already
// been recorded in the table.
type ErrSymbolAlreadyDeclared struct {
	Name string
}

func (e *ErrSymbolAlreadyDeclared) Error() string {
	return fmt.Sprintf("symbol already declared: %s", e.Name)
}

// Declare adds a new symbol to the table. It fails if the name is already
// present, since reassigning a label or constant partway through a program
// would silently change the meaning of every reference emitted so far.
func (t *SymbolTable) Declare(name string, kind SymbolKind, offset uint32) error {
	if _, exists := t.entries[name]; exists {
		return &ErrSymbolAlreadyDeclared{Name: name}
	}
	t.entries[name] = Symbol{Name: name, Kind: kind, Offset: offset}
	return nil
}

// Lookup returns the symbol registered under name, if any.
func (t *SymbolTable) Lookup(name string) (Symbol, bool) {
	s, ok := t.entries[name]
	return s, ok
}
