package vm

// execJump implements JMP $reg: set pc to the absolute address held in reg.
func (vm *VM) execJump() Status {
	r := vm.reg()
	vm.pc = int(vm.registers[r])
	return continueStatus()
}

// JMPF and JMPB offset pc from its position after the register operand has
// been read, two bytes before the next instruction. Displacements are
// therefore relative to that point, not to the following instruction.
func (vm *VM) execJumpForward() Status {
	r := vm.reg()
	vm.pc += int(vm.registers[r])
	return continueStatus()
}

func (vm *VM) execJumpBackward() Status {
	r := vm.reg()
	vm.pc -= int(vm.registers[r])
	return continueStatus()
}

// execJumpIfEqual implements JMPE $reg: jump to the address held in the
// register if equal_flag is set. On the not-taken path the two reserved
// bytes are consumed to land on the next instruction; on the taken path pc
// is overwritten and they never are.
func (vm *VM) execJumpIfEqual() Status {
	r := vm.reg()
	if vm.equalFlag {
		vm.pc = int(vm.registers[r])
	} else {
		vm.pad(2)
	}
	return continueStatus()
}

// execDirectJumpIfEqual implements DJMPE @addr: jump to the literal address
// if equal_flag is set, otherwise consume the stride pad and fall through.
func (vm *VM) execDirectJumpIfEqual() Status {
	target := vm.addr()
	if vm.equalFlag {
		vm.pc = target
	} else {
		vm.pad(1)
	}
	return continueStatus()
}

func (vm *VM) execDirectJump() Status {
	vm.pc = vm.addr()
	return continueStatus()
}

// execCreateLoop implements CLOOP #imm: seeds the loop counter from a
// 16-bit immediate, then consumes the stride pad.
func (vm *VM) execCreateLoop() Status {
	vm.loopCounter = int(vm.u16())
	vm.pad(1)
	return continueStatus()
}

// execLoop implements LOOP @addr: decrement and branch back to addr while
// the loop counter is nonzero; once it reaches zero, step over the address
// and pad bytes to the next instruction.
func (vm *VM) execLoop() Status {
	if vm.loopCounter != 0 {
		vm.loopCounter--
		vm.pc = vm.addr()
	} else {
		vm.pc += 3
	}
	return continueStatus()
}

// execCall implements CALL @addr: pushes the return address (the
// instruction immediately after this one) and the current base pointer,
// then transfers control to addr with a fresh bp.
func (vm *VM) execCall() Status {
	returnAddr := vm.pc + 3
	target := vm.addr()

	vm.pushStack(int32(returnAddr))
	vm.pushStack(int32(vm.bp))
	vm.bp = vm.sp
	vm.pc = target
	return continueStatus()
}

// execReturn implements RET: unwinds the frame CALL built, restoring bp and
// resuming at the saved return address.
func (vm *VM) execReturn() Status {
	vm.truncateStack(vm.bp)
	vm.bp = int(vm.popStack())
	vm.pc = int(vm.popStack())
	return continueStatus()
}
