package loader

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lokuciejewski/nox-asm/parser"
)

// Opcode bytes from the encoder table, fixed by the VM contract
const (
	opNoop       = 0x00
	opHalt       = 0x01
	opAddAImm    = 0x12
	opJmp        = 0xA0
	opPushABImm  = 0x73
	opPushABAbs  = 0x79
	opCmpAImm    = 0x49
	opRetOK      = 0xA8
	opRetErrImm  = 0xAB
	opStoHLIAbs  = 0x5A
	opPopAInd    = 0x95
	opClrExit    = 0xB6
	opIncHLI     = 0x3B
	opSwapHILI   = 0x42
	opCallAbs    = 0xA5
	opJumpIfZero = 0xA1
)

func assembleSource(t *testing.T, src string) ([]byte, *Assembler) {
	t.Helper()
	program, perr := parser.NewParser(src, "test.nox").Parse()
	require.Nil(t, perr, "parse should succeed")

	asm := New(program)
	image, perr := asm.Assemble()
	require.Nil(t, perr, "assembly should succeed")
	return image, asm
}

func assembleError(t *testing.T, src string) *parser.Error {
	t.Helper()
	program, perr := parser.NewParser(src, "test.nox").Parse()
	require.Nil(t, perr, "parse should succeed")

	_, perr = New(program).Assemble()
	require.NotNil(t, perr, "assembly should fail")
	return perr
}

// assertRest checks that every byte outside the listed prefix is zero
func assertRest(t *testing.T, image []byte, used int) {
	t.Helper()
	for i := used; i < len(image); i++ {
		if image[i] != 0 {
			t.Fatalf("byte at 0x%04X = 0x%02X, want 0x00", i, image[i])
		}
	}
}

func TestAssembleMinimal(t *testing.T) {
	image, _ := assembleSource(t, "HALT")

	require.Len(t, image, ImageSize)
	assert.EqualValues(t, opHalt, image[0])
	assertRest(t, image, 1)
}

func TestAssembleImmediate8(t *testing.T) {
	image, _ := assembleSource(t, "ADD A 0x2A")

	assert.EqualValues(t, opAddAImm, image[0])
	assert.EqualValues(t, 0x2A, image[1])
	assert.EqualValues(t, 0x00, image[2])
}

func TestAssembleLabelRoundTrip(t *testing.T) {
	image, asm := assembleSource(t, "JMP target\ntarget:\nHALT")

	assert.EqualValues(t, opJmp, image[0])
	assert.EqualValues(t, 0x00, image[1])
	assert.EqualValues(t, 0x03, image[2])
	assert.EqualValues(t, opHalt, image[3])

	sym, ok := asm.Symbols().Lookup("target")
	require.True(t, ok)
	assert.EqualValues(t, 0x0003, sym.Address)
}

func TestAssembleOriginAndDataStream(t *testing.T) {
	image, _ := assembleSource(t, "> &0x0100\n$ \"Hi\"\nHALT")

	for i := 0; i < 0x0100; i++ {
		require.EqualValues(t, 0, image[i], "byte 0x%04X should be zero", i)
	}
	assert.EqualValues(t, 'H', image[0x0100])
	assert.EqualValues(t, 'i', image[0x0101])
	assert.EqualValues(t, opHalt, image[0x0102])
	assertRest(t, image, 0x0103)
}

func TestAssembleForwardStarReference(t *testing.T) {
	image, _ := assembleSource(t, "PUSH AB *msg\nmsg:\n$ 0x41")

	assert.EqualValues(t, opPushABImm, image[0])
	assert.EqualValues(t, 0x00, image[1])
	assert.EqualValues(t, 0x03, image[2])
	assert.EqualValues(t, 0x41, image[3])
}

func TestAssembleCommentInert(t *testing.T) {
	plain, _ := assembleSource(t, "JMP end\nend:\nHALT")
	commented, _ := assembleSource(t, "// header\nJMP end // jump\nend: // over\nHALT // stop")

	assert.True(t, bytes.Equal(plain, commented), "comments must not affect emitted bytes")
}

func TestAssembleDeterministic(t *testing.T) {
	src := "> &0x0200\nloop:\nCMP A 0x10\nJZE done\nJMP loop\ndone:\nRET OK 0x00\n$ \"data\" 0x00"

	first, _ := assembleSource(t, src)
	second, _ := assembleSource(t, src)

	assert.True(t, bytes.Equal(first, second), "assembly must be deterministic")
}

func TestAssembleOriginShiftsProgram(t *testing.T) {
	src := "CMP A 0x10\nHALT"
	base, _ := assembleSource(t, src)
	shifted, _ := assembleSource(t, "> &0x4000\n"+src)

	span := 3
	assert.True(t, bytes.Equal(base[:span], shifted[0x4000:0x4000+span]),
		"origin must shift the emitted bytes unchanged")
	assertRest(t, shifted, 0x4000+span)
	for i := 0; i < 0x4000; i++ {
		require.EqualValues(t, 0, shifted[i])
	}
}

func TestAssembleBackwardReference(t *testing.T) {
	image, _ := assembleSource(t, "start:\nJMP start")

	assert.EqualValues(t, opJmp, image[0])
	assert.EqualValues(t, 0x00, image[1])
	assert.EqualValues(t, 0x00, image[2])
}

func TestAssembleColonReferenceOperand(t *testing.T) {
	image, _ := assembleSource(t, "JMP target:\ntarget:\nHALT")

	assert.EqualValues(t, opJmp, image[0])
	assert.EqualValues(t, 0x00, image[1])
	assert.EqualValues(t, 0x03, image[2])
}

func TestAssembleAbsoluteAddressOperand(t *testing.T) {
	image, _ := assembleSource(t, "PUSH AB &0xBEEF")

	assert.EqualValues(t, opPushABAbs, image[0])
	assert.EqualValues(t, 0xBE, image[1], "16-bit operands are big-endian")
	assert.EqualValues(t, 0xEF, image[2])
}

func TestAssembleDataStreamItems(t *testing.T) {
	image, _ := assembleSource(t, "$ 0x41 0x1234 bare \"Hello world\" 0xFF")

	want := []byte{0x41, 0x12, 0x34, 'b', 'a', 'r', 'e',
		'H', 'e', 'l', 'l', 'o', ' ', 'w', 'o', 'r', 'l', 'd', 0xFF}
	assert.True(t, bytes.Equal(image[:len(want)], want),
		"data stream bytes = % X, want % X", image[:len(want)], want)
	assertRest(t, image, len(want))
}

func TestAssembleDataStreamMultiWordString(t *testing.T) {
	image, _ := assembleSource(t, "$ \"a b c\"")

	want := []byte{'a', ' ', 'b', ' ', 'c'}
	assert.True(t, bytes.Equal(image[:len(want)], want))
	assertRest(t, image, len(want))
}

func TestAssembleDataStreamStarReference(t *testing.T) {
	image, _ := assembleSource(t, "HALT\ntable:\n$ *table 0x01")

	assert.EqualValues(t, opHalt, image[0])
	assert.EqualValues(t, 0x00, image[1])
	assert.EqualValues(t, 0x01, image[2])
	assert.EqualValues(t, 0x01, image[3])
}

func TestAssembleDataStreamBadItem(t *testing.T) {
	err := assembleError(t, "$ 0x41 A")
	assert.Equal(t, parser.ErrorSyntax, err.Kind)
}

func TestAssembleDuplicateLabel(t *testing.T) {
	err := assembleError(t, "loop:\nNOOP\nloop:\nHALT")
	assert.Equal(t, parser.ErrorDuplicateLabel, err.Kind)
	assert.Equal(t, 3, err.Pos.Line)
}

func TestAssembleUnresolvedReference(t *testing.T) {
	err := assembleError(t, "JMP nowhere")
	assert.Equal(t, parser.ErrorUnresolvedReference, err.Kind)
	assert.Contains(t, err.Message, "nowhere")

	err = assembleError(t, "PUSH AB *missing")
	assert.Equal(t, parser.ErrorUnresolvedReference, err.Kind)
}

func TestAssembleAllowUnresolvedEmitsZeros(t *testing.T) {
	program, perr := parser.NewParser("JMP nowhere\nHALT", "test.nox").Parse()
	require.Nil(t, perr)

	asm := New(program)
	asm.AllowUnresolved = true
	image, perr := asm.Assemble()
	require.Nil(t, perr)

	assert.EqualValues(t, opJmp, image[0])
	assert.EqualValues(t, 0x00, image[1])
	assert.EqualValues(t, 0x00, image[2])
	assert.EqualValues(t, opHalt, image[3])
}

func TestAssembleLastByteAtImageEnd(t *testing.T) {
	image, _ := assembleSource(t, "> &0xFFFD\nJMP &0x0000")

	assert.EqualValues(t, opJmp, image[0xFFFD])
	assert.EqualValues(t, 0x00, image[0xFFFE])
	assert.EqualValues(t, 0x00, image[0xFFFF])
}

func TestAssembleAddressOverflow(t *testing.T) {
	err := assembleError(t, "> &0xFFFE\nJMP &0x0000")
	assert.Equal(t, parser.ErrorAddressOverflow, err.Kind)

	err = assembleError(t, "> &0xFFFF\n$ 0x01 0x02")
	assert.Equal(t, parser.ErrorAddressOverflow, err.Kind)
}

func TestAssembleBadOperandSurfaces(t *testing.T) {
	err := assembleError(t, "NOOP\nADD HI HI")
	assert.Equal(t, parser.ErrorBadOperand, err.Kind)
	assert.Equal(t, 2, err.Pos.Line)
	assert.NotEmpty(t, err.Context)
}

func TestAssembleMixedProgram(t *testing.T) {
	src := strings.Join([]string{
		"> &0x0010",
		"start:",
		"INC HLI",
		"SWP HI LI",
		"STO HLI &0x8000",
		"POP A &HLI",
		"CLR EX",
		"CALL start",
		"RET ERR 0x07",
	}, "\n")

	image, asm := assembleSource(t, src)

	want := []byte{
		opIncHLI,
		opSwapHILI,
		opStoHLIAbs, 0x80, 0x00,
		opPopAInd,
		opClrExit,
		opCallAbs, 0x00, 0x10,
		opRetErrImm, 0x07,
	}
	assert.True(t, bytes.Equal(image[0x0010:0x0010+len(want)], want),
		"image bytes = % X, want % X", image[0x0010:0x0010+len(want)], want)

	sym, ok := asm.Symbols().Lookup("start")
	require.True(t, ok)
	assert.EqualValues(t, 0x0010, sym.Address)
}

func TestAssembleTrace(t *testing.T) {
	program, perr := parser.NewParser("NOOP\nHALT", "test.nox").Parse()
	require.Nil(t, perr)

	var trace bytes.Buffer
	asm := New(program)
	asm.TraceWriter = &trace

	_, perr = asm.Assemble()
	require.Nil(t, perr)

	assert.Contains(t, trace.String(), "NOOP")
	assert.Contains(t, trace.String(), "0x0000")
}
