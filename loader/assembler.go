// Package loader walks a classified program, assigns an image address to
// every emitted token, resolves label references and stamps the result into
// a fixed 64 KiB image.
package loader

import (
	"fmt"
	"io"
	"strings"

	"github.com/lokuciejewski/nox-asm/encoder"
	"github.com/lokuciejewski/nox-asm/parser"
)

// Assembler owns the token stream, symbol table and output image for one
// assembly run. It is single-use: create a new one per program.
type Assembler struct {
	program *parser.Program
	symbols *parser.SymbolTable
	tokens  []parser.Token
	spans   []LineSpan
	image   *Image

	// AllowUnresolved emits zero bytes for references to labels that were
	// never defined instead of failing the run
	AllowUnresolved bool

	// TraceWriter receives a per-line assembly trace when non-nil
	TraceWriter io.Writer
}

// LineSpan records where a source line landed in the image, for listings
// and traces
type LineSpan struct {
	Line    int
	Raw     string
	Address int
	Size    int
}

// New creates an assembler for a parsed program
func New(program *parser.Program) *Assembler {
	return &Assembler{
		program: program,
		symbols: program.SymbolTable,
	}
}

// Symbols returns the symbol table populated during assembly
func (a *Assembler) Symbols() *parser.SymbolTable {
	return a.symbols
}

// Spans returns the per-line address spans recorded during assembly
func (a *Assembler) Spans() []LineSpan {
	return a.spans
}

// Image returns the assembled image, valid after Assemble succeeds
func (a *Assembler) Image() *Image {
	return a.image
}

// Assemble runs the address-assignment, resolve and emit passes and
// returns the 65 536-byte image. The first error aborts the run.
func (a *Assembler) Assemble() ([]byte, *parser.Error) {
	a.image = NewImage()
	a.tokens = nil
	a.spans = nil

	if err := a.assignAddresses(); err != nil {
		return nil, err
	}
	if err := a.resolve(); err != nil {
		return nil, err
	}
	if err := a.emit(); err != nil {
		return nil, err
	}

	return a.image.Bytes(), nil
}

// assignAddresses walks the classified lines in source order with a
// monotonically advancing program counter, populating the symbol table and
// stamping an address on every token that will emit bytes.
func (a *Assembler) assignAddresses() *parser.Error {
	pc := 0

	for _, line := range a.program.Lines {
		switch line.Kind {
		case parser.LineOrigin:
			pc = int(line.Tokens[1].Value)
			a.spans = append(a.spans, LineSpan{Line: line.Num, Raw: line.Raw, Address: pc})
			a.trace("        %s", strings.TrimSpace(line.Raw))

		case parser.LineLabel:
			tok := line.Tokens[0]
			if pc >= ImageSize {
				return parser.NewErrorWithContext(tok.Pos, parser.ErrorAddressOverflow,
					fmt.Sprintf("label %q lands past the end of the image", tok.Raw), line.Raw)
			}
			name := strings.TrimSuffix(tok.Raw, ":")
			if err := a.symbols.Define(name, uint16(pc), tok.Pos); err != nil {
				err.Context = line.Raw
				return err
			}
			a.spans = append(a.spans, LineSpan{Line: line.Num, Raw: line.Raw, Address: pc})
			a.trace("0x%04X  %s", pc, strings.TrimSpace(line.Raw))

		case parser.LineInstruction:
			next, err := a.assignInstruction(line, pc)
			if err != nil {
				return err
			}
			pc = next

		case parser.LineData:
			next, err := a.assignData(line, pc)
			if err != nil {
				return err
			}
			pc = next
		}
	}

	return nil
}

// assignInstruction encodes one instruction line starting at pc and
// returns the advanced program counter
func (a *Assembler) assignInstruction(line parser.ClassifiedLine, pc int) (int, *parser.Error) {
	inst := line.Tokens[0]
	operands := make([]parser.Token, len(line.Tokens)-1)
	copy(operands, line.Tokens[1:])

	row, err := encoder.Select(inst, operands)
	if err != nil {
		if err.Context == "" {
			err.Context = line.Raw
		}
		return 0, err
	}

	end := pc + 1 + row.Footprint
	if end > ImageSize {
		return 0, parser.NewErrorWithContext(inst.Pos, parser.ErrorAddressOverflow,
			fmt.Sprintf("instruction at 0x%04X extends past the end of the image", pc), line.Raw)
	}

	inst.Address = uint16(pc)
	inst.HasAddress = true
	inst.Opcode = row.Opcode
	inst.HasOpcode = true
	a.tokens = append(a.tokens, inst)

	opAddr := pc + 1
	for _, op := range operands {
		if size := encoder.OperandBytes(op.Kind); size > 0 {
			op.Address = uint16(opAddr)
			op.HasAddress = true
			opAddr += size
		}
		a.tokens = append(a.tokens, op)
	}

	a.spans = append(a.spans, LineSpan{Line: line.Num, Raw: line.Raw, Address: pc, Size: 1 + row.Footprint})
	a.trace("0x%04X  %-32s ; opcode 0x%02X n=%d", pc, strings.TrimSpace(line.Raw), row.Opcode, row.Footprint)

	return end, nil
}

// assignData places a data stream at pc and returns the advanced program
// counter. Items are 8/16-bit literals or ASCII text; a quoted string may
// span several words, with a single space byte at each interior boundary.
func (a *Assembler) assignData(line parser.ClassifiedLine, pc int) (int, *parser.Error) {
	start := pc
	inString := false

	place := func(item parser.Token, value uint16, size int) *parser.Error {
		if pc+size > ImageSize {
			return parser.NewErrorWithContext(item.Pos, parser.ErrorAddressOverflow,
				fmt.Sprintf("data at 0x%04X extends past the end of the image", pc), line.Raw)
		}
		tok := item
		if size == 1 {
			tok.Kind = parser.KindImm8
		}
		tok.Value = value
		tok.HasValue = true
		tok.Address = uint16(pc)
		tok.HasAddress = true
		a.tokens = append(a.tokens, tok)
		pc += size
		return nil
	}

	placeText := func(item parser.Token, text string) *parser.Error {
		for _, b := range []byte(text) {
			if err := place(item, uint16(b), 1); err != nil {
				return err
			}
		}
		return nil
	}

	for _, item := range line.Tokens[1:] {
		if inString {
			// Inside a multi-word string every word is text, whatever the
			// lexer made of it; word boundaries become space bytes.
			if err := placeText(item, " "+strings.ReplaceAll(item.Raw, `"`, "")); err != nil {
				return 0, err
			}
			if strings.Contains(item.Raw, `"`) {
				inString = false
			}
			continue
		}

		switch item.Kind {
		case parser.KindImm8:
			if err := place(item, item.Value, 1); err != nil {
				return 0, err
			}

		case parser.KindImm16:
			// Covers both literals and *label references; unresolved
			// references get their value in the resolve pass
			if pc+2 > ImageSize {
				return 0, parser.NewErrorWithContext(item.Pos, parser.ErrorAddressOverflow,
					fmt.Sprintf("data at 0x%04X extends past the end of the image", pc), line.Raw)
			}
			tok := item
			tok.Address = uint16(pc)
			tok.HasAddress = true
			a.tokens = append(a.tokens, tok)
			pc += 2

		case parser.KindText:
			if err := placeText(item, strings.ReplaceAll(item.Raw, `"`, "")); err != nil {
				return 0, err
			}
			if strings.HasPrefix(item.Raw, `"`) && strings.Count(item.Raw, `"`) == 1 {
				inString = true
			}

		default:
			return 0, parser.NewErrorWithContext(item.Pos, parser.ErrorSyntax,
				fmt.Sprintf("%s (%q) cannot appear in a data stream", item.Kind, item.Raw), line.Raw)
		}
	}

	a.spans = append(a.spans, LineSpan{Line: line.Num, Raw: line.Raw, Address: start, Size: pc - start})
	a.trace("0x%04X  %-32s ; %d data bytes", start, strings.TrimSpace(line.Raw), pc-start)

	return pc, nil
}

// resolve rewrites label and forward references to their resolved
// addresses. Bare Text operands and *name immediates both consult the
// symbol table built during address assignment.
func (a *Assembler) resolve() *parser.Error {
	for i := range a.tokens {
		tok := &a.tokens[i]
		if !tok.HasAddress || tok.HasValue || tok.HasOpcode {
			continue
		}

		var name string
		switch {
		case tok.Kind == parser.KindText:
			name = tok.Raw
		case tok.Kind == parser.KindLabel:
			name = strings.TrimSuffix(tok.Raw, ":")
		case tok.Kind == parser.KindImm16 && strings.HasPrefix(tok.Raw, "*"):
			name = tok.Raw[1:]
		default:
			continue
		}

		sym, found := a.symbols.Lookup(name)
		if !found {
			if a.AllowUnresolved {
				// Matches the historic behaviour: the reference emits the
				// zero bytes already present in the image
				continue
			}
			return parser.NewError(tok.Pos, parser.ErrorUnresolvedReference,
				fmt.Sprintf("reference to undefined label %q", name))
		}

		tok.Kind = parser.KindLabel
		tok.Value = sym.Address
		tok.HasValue = true
	}

	return nil
}

// emit stamps every address-tagged token into the image: one opcode byte
// per instruction, one byte per 8-bit operand, a big-endian word per
// 16-bit operand.
func (a *Assembler) emit() *parser.Error {
	for _, tok := range a.tokens {
		if !tok.HasAddress {
			continue
		}

		var err error
		switch {
		case tok.HasOpcode:
			err = a.image.WriteByte(int(tok.Address), tok.Opcode)
		case tok.HasValue && tok.Kind == parser.KindImm8:
			err = a.image.WriteByte(int(tok.Address), byte(tok.Value))
		case tok.HasValue:
			// Imm16, Address and resolved Label references
			err = a.image.WriteWord(int(tok.Address), tok.Value)
		}
		if err != nil {
			return parser.NewError(tok.Pos, parser.ErrorAddressOverflow, err.Error())
		}
	}

	return nil
}

func (a *Assembler) trace(format string, args ...any) {
	if a.TraceWriter == nil {
		return
	}
	fmt.Fprintf(a.TraceWriter, format+"\n", args...)
}
