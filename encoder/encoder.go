// Package encoder selects opcode bytes for Nox instructions. Each mnemonic
// admits a small set of operand shapes; the shapes live in a flat table and
// selection is a linear match over the operand tuple.
package encoder

import (
	"fmt"
	"strings"

	"github.com/lokuciejewski/nox-asm/parser"
)

// Select picks the opcode row for an instruction token and its operands.
// Operand order is tolerant: when no row matches the source order of a
// two-operand instruction, the reversed order is tried, so `PUSH S A` and
// `PUSH 0x2A A` assemble the same as their canonical forms.
func Select(inst parser.Token, operands []parser.Token) (Row, *parser.Error) {
	mnemonic := strings.ToUpper(inst.Raw)
	rows, ok := rowsByMnemonic[mnemonic]
	if !ok {
		return Row{}, parser.NewError(inst.Pos, parser.ErrorUnknownMnemonic,
			fmt.Sprintf("unknown mnemonic %q", inst.Raw))
	}

	shapeSeen := false
	for _, row := range rows {
		switch match(row, operands) {
		case matchExact:
			return row, nil
		case matchShape:
			shapeSeen = true
		}
	}

	if len(operands) == 2 {
		reversed := []parser.Token{operands[1], operands[0]}
		for _, row := range rows {
			switch match(row, reversed) {
			case matchExact:
				return row, nil
			case matchShape:
				shapeSeen = true
			}
		}
	}

	if shapeSeen {
		return Row{}, parser.NewError(inst.Pos, parser.ErrorBadOperand,
			fmt.Sprintf("invalid operands for %s: %s", mnemonic, describeOperands(operands)))
	}
	return Row{}, parser.NewError(inst.Pos, parser.ErrorSyntax,
		fmt.Sprintf("%s does not take the form: %s %s", mnemonic, mnemonic, describeOperands(operands)))
}

type matchResult int

const (
	matchNone matchResult = iota
	matchShape // operand kinds line up but a register/flag name differs
	matchExact
)

func match(row Row, operands []parser.Token) matchResult {
	if len(row.Operands) != len(operands) {
		return matchNone
	}

	result := matchExact
	for i, pattern := range row.Operands {
		if !classMatches(pattern.Class, operands[i].Kind) {
			return matchNone
		}
		if pattern.Name != "" && !strings.EqualFold(pattern.Name, operands[i].Raw) {
			result = matchShape
		}
	}
	return result
}

func classMatches(class OperandClass, kind parser.TokenKind) bool {
	switch class {
	case OpReg:
		return kind == parser.KindRegister
	case OpFlag:
		return kind == parser.KindFlag
	case OpImm8:
		return kind == parser.KindImm8
	case OpImm16:
		return kind == parser.KindImm16
	case OpAbs:
		return kind == parser.KindAddress || kind == parser.KindText || kind == parser.KindLabel
	case OpInd:
		return kind == parser.KindIndirection
	}
	return false
}

func describeOperands(operands []parser.Token) string {
	if len(operands) == 0 {
		return "(no operands)"
	}
	parts := make([]string, len(operands))
	for i, op := range operands {
		parts[i] = op.Raw
	}
	return strings.Join(parts, " ")
}

// OperandBytes returns the number of image bytes a token occupies when
// emitted as an instruction operand
func OperandBytes(kind parser.TokenKind) int {
	switch kind {
	case parser.KindImm8:
		return 1
	case parser.KindImm16, parser.KindAddress, parser.KindText, parser.KindLabel:
		return 2
	default:
		return 0
	}
}
