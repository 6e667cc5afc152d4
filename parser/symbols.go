package parser

import (
	"fmt"
	"sort"
)

// Symbol represents a label bound to an image address
type Symbol struct {
	Name    string
	Address uint16
	Pos     Position
}

// SymbolTable maps label names (without the trailing colon) to addresses.
// There is no scoping; labels are unique across the whole program.
type SymbolTable struct {
	symbols map[string]*Symbol
}

// NewSymbolTable creates a new symbol table
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		symbols: make(map[string]*Symbol),
	}
}

// Define binds a label to an address. Redefinition is an error.
func (st *SymbolTable) Define(name string, address uint16, pos Position) *Error {
	if sym, exists := st.symbols[name]; exists {
		return NewError(pos, ErrorDuplicateLabel,
			fmt.Sprintf("label %q already defined at %s", name, sym.Pos))
	}
	st.symbols[name] = &Symbol{
		Name:    name,
		Address: address,
		Pos:     pos,
	}
	return nil
}

// Lookup looks up a label by name
func (st *SymbolTable) Lookup(name string) (*Symbol, bool) {
	sym, exists := st.symbols[name]
	return sym, exists
}

// Len returns the number of defined labels
func (st *SymbolTable) Len() int {
	return len(st.symbols)
}

// All returns the defined symbols sorted by address, then by name
func (st *SymbolTable) All() []*Symbol {
	all := make([]*Symbol, 0, len(st.symbols))
	for _, sym := range st.symbols {
		all = append(all, sym)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Address != all[j].Address {
			return all[i].Address < all[j].Address
		}
		return all[i].Name < all[j].Name
	})
	return all
}
