package vm

import "lumi/isa"

// initHandlers builds the opcode-to-handler dispatch table once, at
// construction time, rather than branching on the opcode inside the hot
// loop. Handlers are grouped below by concern: memory, arithmetic, control,
// comparison, bitwise, logical and system.
func (vm *VM) initHandlers() {
	vm.handlers[isa.LOAD] = (*VM).execLoad
	vm.handlers[isa.LOADF64] = (*VM).execLoadF64
	vm.handlers[isa.ALOC] = (*VM).execAlloc
	vm.handlers[isa.LUI] = (*VM).execLoadUpperImmediate
	vm.handlers[isa.LOADM] = (*VM).execLoadMemory
	vm.handlers[isa.SETM] = (*VM).execSetMemory
	vm.handlers[isa.PUSH] = (*VM).execPush
	vm.handlers[isa.POP] = (*VM).execPop

	vm.handlers[isa.ADD] = (*VM).execAdd
	vm.handlers[isa.SUB] = (*VM).execSub
	vm.handlers[isa.MUL] = (*VM).execMul
	vm.handlers[isa.DIV] = (*VM).execDiv
	vm.handlers[isa.INC] = (*VM).execInc
	vm.handlers[isa.DEC] = (*VM).execDec
	vm.handlers[isa.ADDF64] = (*VM).execAddF64
	vm.handlers[isa.SUBF64] = (*VM).execSubF64
	vm.handlers[isa.MULF64] = (*VM).execMulF64
	vm.handlers[isa.DIVF64] = (*VM).execDivF64

	vm.handlers[isa.EQ] = (*VM).execEqual
	vm.handlers[isa.NEQ] = (*VM).execNotEqual
	vm.handlers[isa.GT] = (*VM).execGreaterThan
	vm.handlers[isa.LT] = (*VM).execLessThan
	vm.handlers[isa.GTE] = (*VM).execGreaterThanOrEqual
	vm.handlers[isa.LTE] = (*VM).execLessThanOrEqual
	vm.handlers[isa.EQF64] = (*VM).execEqualF64
	vm.handlers[isa.NEQF64] = (*VM).execNotEqualF64
	vm.handlers[isa.GTF64] = (*VM).execGreaterThanF64
	vm.handlers[isa.LTF64] = (*VM).execLessThanF64
	vm.handlers[isa.GTEF64] = (*VM).execGreaterThanOrEqualF64
	vm.handlers[isa.LTEF64] = (*VM).execLessThanOrEqualF64

	vm.handlers[isa.JMP] = (*VM).execJump
	vm.handlers[isa.JMPF] = (*VM).execJumpForward
	vm.handlers[isa.JMPB] = (*VM).execJumpBackward
	vm.handlers[isa.JMPE] = (*VM).execJumpIfEqual
	vm.handlers[isa.DJMP] = (*VM).execDirectJump
	vm.handlers[isa.DJMPE] = (*VM).execDirectJumpIfEqual
	vm.handlers[isa.CLOOP] = (*VM).execCreateLoop
	vm.handlers[isa.LOOP] = (*VM).execLoop
	vm.handlers[isa.CALL] = (*VM).execCall
	vm.handlers[isa.RET] = (*VM).execReturn

	vm.handlers[isa.SHL] = (*VM).execShiftLeft
	vm.handlers[isa.SHR] = (*VM).execShiftRight
	vm.handlers[isa.AND] = (*VM).execAnd
	vm.handlers[isa.OR] = (*VM).execOr
	vm.handlers[isa.XOR] = (*VM).execXor
	vm.handlers[isa.NOT] = (*VM).execNot

	vm.handlers[isa.HLT] = (*VM).execHalt
	vm.handlers[isa.NOP] = (*VM).execNop
	vm.handlers[isa.PRTS] = (*VM).execPrintString
	vm.handlers[isa.BKPT] = (*VM).execBreakpoint
	vm.handlers[isa.IGL] = (*VM).execIllegal
}
