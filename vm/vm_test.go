package vm_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumi/asm"
	"lumi/vm"
)

func assemble(t *testing.T, source string) []byte {
	t.Helper()
	bin, errs := asm.Assemble(source)
	require.Empty(t, errs, "assembly errors: %v", errs)
	require.NotNil(t, bin)
	return bin
}

func TestLoadAddHalt(t *testing.T) {
	source := `
.data
.code
LOAD $0 #100
LOAD $1 #28
ADD $0 $1 $2
HLT
`
	machine, err := vm.Load(assemble(t, source))
	require.NoError(t, err)

	events := machine.Run()

	regs := machine.Registers()
	assert.Equal(t, int32(128), regs[2])
	require.Len(t, events, 2)
	assert.Equal(t, vm.EventStart, events[0].Kind)
	assert.Equal(t, vm.EventGracefulShutdown, events[1].Kind)
	assert.Equal(t, uint32(0), events[1].Code)
}

func TestDivisionByZeroCrashes(t *testing.T) {
	source := `
.data
.code
LOAD $0 #10
LOAD $1 #0
DIV $0 $1 $2
HLT
`
	machine, err := vm.Load(assemble(t, source))
	require.NoError(t, err)

	events := machine.Run()

	require.Len(t, events, 2)
	assert.Equal(t, vm.EventCrash, events[1].Kind)
	assert.Equal(t, uint32(20), events[1].Code)
}

func TestDivisionStoresTruncatedQuotient(t *testing.T) {
	source := `
.data
.code
LOAD $0 #7
LOAD $1 #2
DIV $0 $1 $2
HLT
`
	machine, err := vm.Load(assemble(t, source))
	require.NoError(t, err)
	machine.Run()

	regs := machine.Registers()
	assert.Equal(t, int32(3), regs[2])
}

func TestLoopCountsDown(t *testing.T) {
	source := `
.data
.code
CLOOP #3
LOAD $0 #0
top:
INC $0
LOOP @top
HLT
`
	machine, err := vm.Load(assemble(t, source))
	require.NoError(t, err)
	machine.Run()

	// LOOP decrements-then-branches on a nonzero counter, so a loop seeded
	// with N runs its body N+1 times: the body always executes once before
	// the first back-edge is even considered.
	regs := machine.Registers()
	assert.Equal(t, int32(4), regs[0])
}

func TestCallAndReturn(t *testing.T) {
	source := `
.data
.code
CALL @addfive
HLT
addfive:
LOAD $1 #5
ADD $0 $1 $0
RET
`
	machine, err := vm.Load(assemble(t, source))
	require.NoError(t, err)

	machine.Run()

	assert.Equal(t, int32(5), machine.Registers()[0])
}

func TestCallFrameDiscardsUnbalancedPushesOnReturn(t *testing.T) {
	// addfive uses PUSH as scratch space without a matching POP for every
	// value it pushes; RET's "sp <- bp" must still discard that scratch
	// data and land back at the correct return address/bp, not at
	// whatever addfive last pushed.
	source := `
.data
.code
CALL @addfive
LOAD $3 #9
HLT
addfive:
LOAD $1 #11
PUSH $1
PUSH $1
LOAD $1 #5
ADD $0 $1 $0
RET
`
	machine, err := vm.Load(assemble(t, source))
	require.NoError(t, err)

	machine.Run()

	assert.Equal(t, int32(5), machine.Registers()[0])
	assert.Equal(t, int32(9), machine.Registers()[3])
}

func TestPrintStringEmitsRoData(t *testing.T) {
	source := `
.data
greeting: .asciiz 'hi'
.code
PRTS @greeting
HLT
`
	machine, err := vm.Load(assemble(t, source))
	require.NoError(t, err)

	var out bytes.Buffer
	machine.SetOutput(&out)
	machine.Run()

	assert.Equal(t, "hi", out.String())
}

func TestBreakpointPausesThenResumes(t *testing.T) {
	source := `
.data
.code
LOAD $0 #1
BKPT
LOAD $0 #2
HLT
`
	machine, err := vm.Load(assemble(t, source))
	require.NoError(t, err)

	events := machine.Run()
	require.Len(t, events, 2)
	assert.Equal(t, vm.EventBreakpointHit, events[1].Kind)
	assert.Equal(t, int32(1), machine.Registers()[0])

	events = machine.Run()
	require.Len(t, events, 3)
	assert.Equal(t, vm.EventGracefulShutdown, events[2].Kind)
	assert.Equal(t, int32(2), machine.Registers()[0])
}

func TestWatchRegisterReportsChange(t *testing.T) {
	source := `
.data
.code
LOAD $0 #1
LOAD $0 #2
HLT
`
	machine, err := vm.Load(assemble(t, source))
	require.NoError(t, err)
	machine.AddWatch(vm.WatchKey{Kind: vm.WatchRegister, Index: 0})

	events := machine.Run()

	var changes int
	for _, e := range events {
		if e.Kind == vm.EventWatchChanged {
			changes++
		}
	}
	assert.Equal(t, 2, changes)
}

func TestSmallestProgramHaltsAtCodeStart(t *testing.T) {
	machine, err := vm.Load(assemble(t, ".data\n.code\nhlt\n"))
	require.NoError(t, err)

	events := machine.Run()

	require.Len(t, events, 2)
	assert.Equal(t, vm.EventStart, events[0].Kind)
	assert.Equal(t, vm.EventGracefulShutdown, events[1].Kind)
	assert.Equal(t, uint32(0), events[1].Code)
	// pc stops one byte past the HLT opcode, before its stride padding.
	assert.Equal(t, 70, machine.PC())
}

func TestHeapStoreLoadRoundTrip(t *testing.T) {
	source := `
.data
.code
LOAD $0 #16
ALOC $0
LOAD $1 #4
LOAD $2 #1234
SETM $1 $2
LOADM $1 $3
HLT
`
	machine, err := vm.Load(assemble(t, source))
	require.NoError(t, err)
	events := machine.Run()

	assert.Equal(t, vm.EventGracefulShutdown, events[len(events)-1].Kind)
	assert.Equal(t, int32(1234), machine.Registers()[3])
	assert.Len(t, machine.Heap(), 16)
}

func TestHeapOutOfBoundsCrashes(t *testing.T) {
	source := `
.data
.code
LOAD $0 #64
SETM $0 $1
HLT
`
	machine, err := vm.Load(assemble(t, source))
	require.NoError(t, err)

	events := machine.Run()

	last := events[len(events)-1]
	assert.Equal(t, vm.EventCrash, last.Kind)
	assert.Equal(t, uint32(10), last.Code)
	assert.Empty(t, machine.Heap())
}

func TestJumpIfEqualTaken(t *testing.T) {
	// $1 and $2 are both zero, so EQ sets the flag and JMPE skips the
	// LOAD $3 at byte 81 by jumping straight to the HLT at byte 85.
	source := `
.data
.code
LOAD $0 #85
EQ $1 $2
JMPE $0
LOAD $3 #1
HLT
`
	machine, err := vm.Load(assemble(t, source))
	require.NoError(t, err)
	machine.Run()

	assert.Equal(t, int32(0), machine.Registers()[3])
}

func TestJumpIfEqualFallsThrough(t *testing.T) {
	// With the flag clear, JMPE must step over its two reserved bytes and
	// land exactly on the following instruction.
	source := `
.data
.code
LOAD $0 #89
LOAD $1 #1
EQ $1 $2
JMPE $0
LOAD $3 #1
HLT
`
	machine, err := vm.Load(assemble(t, source))
	require.NoError(t, err)
	machine.Run()

	assert.Equal(t, int32(1), machine.Registers()[3])
}

func TestShiftLeftTreatsZeroAsSixteen(t *testing.T) {
	source := `
.data
.code
LOAD $0 #1
SHL $0 #4
LOAD $1 #1
SHL $1 #0
HLT
`
	machine, err := vm.Load(assemble(t, source))
	require.NoError(t, err)
	machine.Run()

	assert.Equal(t, int32(16), machine.Registers()[0])
	assert.Equal(t, int32(1<<16), machine.Registers()[1])
}

func TestFloatAddAndSubtract(t *testing.T) {
	source := `
.data
.code
LOADF64 $0 #5
LOADF64 $1 #2
ADDF64 $0 $1 $2
SUBF64 $0 $1 $3
HLT
`
	machine, err := vm.Load(assemble(t, source))
	require.NoError(t, err)
	machine.Run()

	fregs := machine.FloatRegisters()
	assert.Equal(t, 7.0, fregs[2])
	assert.Equal(t, 3.0, fregs[3])
}

func TestBadHeaderCrashes(t *testing.T) {
	machine, err := vm.Load([]byte("not a real container"))
	require.NoError(t, err)

	events := machine.Run()
	require.Len(t, events, 2)
	assert.Equal(t, vm.EventCrash, events[1].Kind)
	assert.Equal(t, uint32(1), events[1].Code)
}
