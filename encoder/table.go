package encoder

// OperandClass is an addressing-mode category matched against token kinds
type OperandClass int

const (
	OpReg   OperandClass = iota // named register
	OpFlag                      // named processor flag
	OpImm8                      // 8-bit immediate, one operand byte
	OpImm16                     // 16-bit immediate or *label, two operand bytes
	OpAbs                       // absolute reference: &0xHHHH, label or bare name
	OpInd                       // the literal &HLI, no operand bytes
)

// Operand is one pattern slot in an instruction row. Name is set only for
// registers and flags; the other classes match on token kind alone.
type Operand struct {
	Class OperandClass
	Name  string
}

// Row binds one operand shape of a mnemonic to its opcode byte and the
// number of operand bytes that follow it in the image.
type Row struct {
	Mnemonic  string
	Operands  []Operand
	Opcode    byte
	Footprint int
}

func reg(name string) Operand { return Operand{Class: OpReg, Name: name} }
func flg(name string) Operand { return Operand{Class: OpFlag, Name: name} }

var (
	imm8  = Operand{Class: OpImm8}
	imm16 = Operand{Class: OpImm16}
	abs   = Operand{Class: OpAbs}
	ind   = Operand{Class: OpInd}
)

// Table enumerates every permitted instruction shape. Opcode numbering is
// grouped by mnemonic; the VM consumes the same table. Anything not listed
// here does not assemble.
var Table = []Row{
	{"NOOP", nil, 0x00, 0},
	{"HALT", nil, 0x01, 0},

	// Arithmetic / logic
	{"ADD", []Operand{reg("A"), reg("B")}, 0x10, 0},
	{"ADD", []Operand{reg("B"), reg("A")}, 0x11, 0},
	{"ADD", []Operand{reg("A"), imm8}, 0x12, 1},
	{"ADD", []Operand{reg("B"), imm8}, 0x13, 1},
	{"ADD", []Operand{reg("AB"), imm16}, 0x14, 2},
	{"ADD", []Operand{reg("A"), abs}, 0x15, 2},
	{"ADD", []Operand{reg("B"), abs}, 0x16, 2},
	{"ADD", []Operand{reg("AB"), abs}, 0x17, 2},

	{"SUB", []Operand{reg("A"), reg("B")}, 0x18, 0},
	{"SUB", []Operand{reg("B"), reg("A")}, 0x19, 0},
	{"SUB", []Operand{reg("A"), imm8}, 0x1A, 1},
	{"SUB", []Operand{reg("B"), imm8}, 0x1B, 1},
	{"SUB", []Operand{reg("AB"), imm16}, 0x1C, 2},
	{"SUB", []Operand{reg("A"), abs}, 0x1D, 2},
	{"SUB", []Operand{reg("B"), abs}, 0x1E, 2},
	{"SUB", []Operand{reg("AB"), abs}, 0x1F, 2},

	{"AND", []Operand{reg("A"), reg("B")}, 0x20, 0},
	{"AND", []Operand{reg("B"), reg("A")}, 0x21, 0},
	{"AND", []Operand{reg("A"), imm8}, 0x22, 1},
	{"AND", []Operand{reg("B"), imm8}, 0x23, 1},
	{"AND", []Operand{reg("AB"), imm16}, 0x24, 2},
	{"AND", []Operand{reg("A"), abs}, 0x25, 2},
	{"AND", []Operand{reg("B"), abs}, 0x26, 2},
	{"AND", []Operand{reg("AB"), abs}, 0x27, 2},

	// OR and XOR only operate on A/B as a pair or on the full AB register
	{"OR", []Operand{reg("A"), reg("B")}, 0x28, 0},
	{"OR", []Operand{reg("B"), reg("A")}, 0x29, 0},
	{"OR", []Operand{reg("AB"), imm16}, 0x2A, 2},
	{"OR", []Operand{reg("AB"), abs}, 0x2B, 2},

	{"XOR", []Operand{reg("A"), reg("B")}, 0x2C, 0},
	{"XOR", []Operand{reg("B"), reg("A")}, 0x2D, 0},
	{"XOR", []Operand{reg("AB"), imm16}, 0x2E, 2},
	{"XOR", []Operand{reg("AB"), abs}, 0x2F, 2},

	{"NOT", []Operand{reg("A")}, 0x30, 0},
	{"NOT", []Operand{reg("B")}, 0x31, 0},
	{"NOT", []Operand{reg("AB")}, 0x32, 0},

	{"SHL", []Operand{reg("A")}, 0x33, 0},
	{"SHL", []Operand{reg("B")}, 0x34, 0},
	{"SHL", []Operand{reg("AB")}, 0x35, 0},
	{"SHR", []Operand{reg("A")}, 0x36, 0},
	{"SHR", []Operand{reg("B")}, 0x37, 0},
	{"SHR", []Operand{reg("AB")}, 0x38, 0},

	{"INC", []Operand{reg("HI")}, 0x39, 0},
	{"INC", []Operand{reg("LI")}, 0x3A, 0},
	{"INC", []Operand{reg("HLI")}, 0x3B, 0},
	{"DEC", []Operand{reg("HI")}, 0x3C, 0},
	{"DEC", []Operand{reg("LI")}, 0x3D, 0},
	{"DEC", []Operand{reg("HLI")}, 0x3E, 0},
	{"ZERO", []Operand{reg("HI")}, 0x3F, 0},
	{"ZERO", []Operand{reg("LI")}, 0x40, 0},
	{"ZERO", []Operand{reg("HLI")}, 0x41, 0},

	{"SWP", []Operand{reg("HI"), reg("LI")}, 0x42, 0},

	{"CMP", []Operand{reg("A"), reg("B")}, 0x48, 0},
	{"CMP", []Operand{reg("A"), imm8}, 0x49, 1},
	{"CMP", []Operand{reg("B"), imm8}, 0x4A, 1},
	{"CMP", []Operand{reg("HI"), imm8}, 0x4B, 1},
	{"CMP", []Operand{reg("LI"), imm8}, 0x4C, 1},
	{"CMP", []Operand{reg("AB"), imm16}, 0x4D, 2},
	{"CMP", []Operand{reg("HLI"), imm16}, 0x4E, 2},
	{"CMP", []Operand{reg("A"), abs}, 0x4F, 2},
	{"CMP", []Operand{reg("B"), abs}, 0x50, 2},
	{"CMP", []Operand{reg("HI"), abs}, 0x51, 2},
	{"CMP", []Operand{reg("LI"), abs}, 0x52, 2},
	{"CMP", []Operand{reg("AB"), abs}, 0x53, 2},
	{"CMP", []Operand{reg("HLI"), abs}, 0x54, 2},

	{"STO", []Operand{reg("HI"), abs}, 0x58, 2},
	{"STO", []Operand{reg("LI"), abs}, 0x59, 2},
	{"STO", []Operand{reg("HLI"), abs}, 0x5A, 2},

	// PUSH register moves; either operand order is accepted at match time
	{"PUSH", []Operand{reg("A"), reg("B")}, 0x60, 0},
	{"PUSH", []Operand{reg("B"), reg("A")}, 0x61, 0},
	{"PUSH", []Operand{reg("A"), reg("S")}, 0x62, 0},
	{"PUSH", []Operand{reg("B"), reg("S")}, 0x63, 0},
	{"PUSH", []Operand{reg("HI"), reg("S")}, 0x64, 0},
	{"PUSH", []Operand{reg("LI"), reg("S")}, 0x65, 0},
	{"PUSH", []Operand{reg("HI"), reg("A")}, 0x66, 0},
	{"PUSH", []Operand{reg("HI"), reg("B")}, 0x67, 0},
	{"PUSH", []Operand{reg("LI"), reg("A")}, 0x68, 0},
	{"PUSH", []Operand{reg("LI"), reg("B")}, 0x69, 0},
	{"PUSH", []Operand{reg("EX"), reg("A")}, 0x6A, 0},
	{"PUSH", []Operand{reg("EX"), reg("B")}, 0x6B, 0},
	{"PUSH", []Operand{reg("AB"), reg("SA")}, 0x6C, 0},
	{"PUSH", []Operand{reg("AB"), reg("SS")}, 0x6D, 0},
	{"PUSH", []Operand{reg("HLI"), reg("AB")}, 0x6E, 0},
	{"PUSH", []Operand{reg("A"), imm8}, 0x6F, 1},
	{"PUSH", []Operand{reg("B"), imm8}, 0x70, 1},
	{"PUSH", []Operand{reg("HI"), imm8}, 0x71, 1},
	{"PUSH", []Operand{reg("LI"), imm8}, 0x72, 1},
	{"PUSH", []Operand{reg("AB"), imm16}, 0x73, 2},
	{"PUSH", []Operand{reg("HLI"), imm16}, 0x74, 2},
	{"PUSH", []Operand{reg("A"), abs}, 0x75, 2},
	{"PUSH", []Operand{reg("B"), abs}, 0x76, 2},
	{"PUSH", []Operand{reg("HI"), abs}, 0x77, 2},
	{"PUSH", []Operand{reg("LI"), abs}, 0x78, 2},
	{"PUSH", []Operand{reg("AB"), abs}, 0x79, 2},
	{"PUSH", []Operand{reg("HLI"), abs}, 0x7A, 2},
	{"PUSH", []Operand{ind, reg("A")}, 0x7B, 0},
	{"PUSH", []Operand{ind, reg("B")}, 0x7C, 0},
	{"PUSH", []Operand{ind, reg("AB")}, 0x7D, 0},

	// POP register moves are directional: `POP A S` and `POP S A` transfer
	// in opposite directions and carry distinct opcodes
	{"POP", []Operand{reg("A"), reg("HI")}, 0x80, 0},
	{"POP", []Operand{reg("A"), reg("LI")}, 0x81, 0},
	{"POP", []Operand{reg("B"), reg("HI")}, 0x82, 0},
	{"POP", []Operand{reg("B"), reg("LI")}, 0x83, 0},
	{"POP", []Operand{reg("A"), reg("B")}, 0x84, 0},
	{"POP", []Operand{reg("B"), reg("A")}, 0x85, 0},
	{"POP", []Operand{reg("A"), reg("S")}, 0x86, 0},
	{"POP", []Operand{reg("B"), reg("S")}, 0x87, 0},
	{"POP", []Operand{reg("S"), reg("A")}, 0x88, 0},
	{"POP", []Operand{reg("S"), reg("B")}, 0x89, 0},
	{"POP", []Operand{reg("S"), reg("HI")}, 0x8A, 0},
	{"POP", []Operand{reg("S"), reg("LI")}, 0x8B, 0},
	{"POP", []Operand{reg("AB"), reg("SA")}, 0x8C, 0},
	{"POP", []Operand{reg("AB"), reg("SS")}, 0x8D, 0},
	{"POP", []Operand{reg("AB"), reg("IRA")}, 0x8E, 0},
	{"POP", []Operand{reg("AB"), reg("HLI")}, 0x8F, 0},
	{"POP", []Operand{reg("A")}, 0x90, 0},
	{"POP", []Operand{reg("B")}, 0x91, 0},
	{"POP", []Operand{reg("A"), abs}, 0x92, 2},
	{"POP", []Operand{reg("B"), abs}, 0x93, 2},
	{"POP", []Operand{reg("AB"), abs}, 0x94, 2},
	{"POP", []Operand{reg("A"), ind}, 0x95, 0},
	{"POP", []Operand{reg("B"), ind}, 0x96, 0},
	{"POP", []Operand{reg("AB"), ind}, 0x97, 0},

	{"PEEK", []Operand{reg("A"), abs}, 0x98, 2},
	{"PEEK", []Operand{reg("B"), abs}, 0x99, 2},
	{"PEEK", []Operand{reg("AB"), abs}, 0x9A, 2},
	{"PEEK", []Operand{reg("A"), ind}, 0x9B, 0},
	{"PEEK", []Operand{reg("B"), ind}, 0x9C, 0},
	{"PEEK", []Operand{reg("AB"), ind}, 0x9D, 0},

	// Branches
	{"JMP", []Operand{abs}, 0xA0, 2},
	{"JZE", []Operand{abs}, 0xA1, 2},
	{"JOF", []Operand{abs}, 0xA2, 2},
	{"JER", []Operand{abs}, 0xA3, 2},
	{"JOK", []Operand{abs}, 0xA4, 2},
	{"CALL", []Operand{abs}, 0xA5, 2},

	{"RET", []Operand{flg("OK")}, 0xA8, 0},
	{"RET", []Operand{flg("ERR")}, 0xA9, 0},
	{"RET", []Operand{flg("OK"), imm8}, 0xAA, 1},
	{"RET", []Operand{flg("ERR"), imm8}, 0xAB, 1},

	{"SET", []Operand{flg("ERR")}, 0xB0, 0},
	{"SET", []Operand{flg("IRQ")}, 0xB1, 0},

	// CLR EX clears the exit code; EX lexes as a register, not a flag
	{"CLR", []Operand{flg("ERR")}, 0xB2, 0},
	{"CLR", []Operand{flg("IRQ")}, 0xB3, 0},
	{"CLR", []Operand{flg("OVF")}, 0xB4, 0},
	{"CLR", []Operand{flg("ZER")}, 0xB5, 0},
	{"CLR", []Operand{reg("EX")}, 0xB6, 0},
}

var rowsByMnemonic = make(map[string][]Row)

func init() {
	for _, row := range Table {
		rowsByMnemonic[row.Mnemonic] = append(rowsByMnemonic[row.Mnemonic], row)
	}
}
