package parser

import (
	"testing"
)

func TestSymbolTableDefineLookup(t *testing.T) {
	st := NewSymbolTable()

	if err := st.Define("start", 0x0100, Position{Line: 1}); err != nil {
		t.Fatalf("Define failed: %v", err)
	}

	sym, ok := st.Lookup("start")
	if !ok {
		t.Fatal("Lookup failed for defined label")
	}
	if sym.Address != 0x0100 {
		t.Errorf("address = 0x%04X, want 0x0100", sym.Address)
	}

	if _, ok := st.Lookup("missing"); ok {
		t.Error("Lookup should fail for undefined label")
	}
}

func TestSymbolTableDuplicate(t *testing.T) {
	st := NewSymbolTable()

	if err := st.Define("loop", 0x0000, Position{Line: 1}); err != nil {
		t.Fatalf("first Define failed: %v", err)
	}

	err := st.Define("loop", 0x0004, Position{Line: 9})
	if err == nil {
		t.Fatal("redefinition should fail")
	}
	if err.Kind != ErrorDuplicateLabel {
		t.Errorf("error kind = %s, want DuplicateLabel", err.Kind)
	}
	if err.Pos.Line != 9 {
		t.Errorf("error line = %d, want 9", err.Pos.Line)
	}
}

func TestSymbolTableAllSorted(t *testing.T) {
	st := NewSymbolTable()
	_ = st.Define("later", 0x0200, Position{})
	_ = st.Define("first", 0x0010, Position{})
	_ = st.Define("mid", 0x0100, Position{})

	all := st.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 symbols, got %d", len(all))
	}
	if all[0].Name != "first" || all[1].Name != "mid" || all[2].Name != "later" {
		t.Errorf("symbols not sorted by address: %v, %v, %v", all[0].Name, all[1].Name, all[2].Name)
	}
}
