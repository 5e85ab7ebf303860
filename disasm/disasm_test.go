package disasm_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumi/asm"
	"lumi/disasm"
)

func TestDisassembleRendersOpcodesAndOperands(t *testing.T) {
	source := `
.data
.code
load $0 #100
add $0 $0 $1
hlt
`
	bin, errs := asm.Assemble(source)
	require.Empty(t, errs)

	text, err := disasm.Disassemble(bin)
	require.NoError(t, err)

	assert.Contains(t, text, "LOAD $0 #100")
	assert.Contains(t, text, "ADD $0 $0 $1")
	assert.Contains(t, text, "HLT")
}

func TestDisassembleRendersLabelReferenceAsAddress(t *testing.T) {
	source := `
.data
.code
test: inc $0
jeq @test
hlt
`
	bin, errs := asm.Assemble(source)
	require.Empty(t, errs)

	text, err := disasm.Disassemble(bin)
	require.NoError(t, err)
	assert.Contains(t, text, "DJMPE @0x")
}

func TestDisassembleRoundTripsOpcodeSequence(t *testing.T) {
	source := `
.data
.code
load $0 #100
load $1 #1
load $2 #0
test: inc $0
neq $0 $2
jeq @test
hlt
`
	bin, errs := asm.Assemble(source)
	require.Empty(t, errs)

	text, err := disasm.Disassemble(bin)
	require.NoError(t, err)

	var got []string
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		if strings.HasPrefix(line, ";") {
			continue
		}
		fields := strings.Fields(line)
		require.True(t, len(fields) >= 2, "unexpected line %q", line)
		got = append(got, fields[1])
	}
	assert.Equal(t, []string{"LOAD", "LOAD", "LOAD", "INC", "NEQ", "DJMPE", "HLT"}, got)
}

func TestDisassembleRejectsBadHeader(t *testing.T) {
	_, err := disasm.Disassemble([]byte("not a container"))
	require.Error(t, err)
}

func TestDisassembleReportsUnknownOpcode(t *testing.T) {
	source := ".data\n.code\nhlt\n"
	bin, errs := asm.Assemble(source)
	require.Empty(t, errs)

	// Corrupt HLT's opcode byte, the first of its four-byte stride, into a
	// byte no opcode claims.
	bin[len(bin)-4] = 0xFE

	_, err := disasm.Disassemble(bin)
	require.Error(t, err)
	var unknownOp *disasm.ErrUnknownOpcode
	assert.ErrorAs(t, err, &unknownOp)
}
