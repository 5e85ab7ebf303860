package vm

import "fmt"

func (vm *VM) execHalt() Status {
	return doneStatus(0)
}

func (vm *VM) execNop() Status {
	vm.pad(3)
	return continueStatus()
}

// execPrintString implements PRTS @addr: scans ro_data starting at addr for
// a NUL terminator and writes the decoded string to the VM's configured
// output. The 24-bit address is an offset into the read-only blob, the
// coordinate space data symbols are declared in. An out-of-range address
// still advances pc normally; PRTS failures are diagnostic, not fatal.
func (vm *VM) execPrintString() Status {
	offset := vm.addr24()
	if offset < 0 || offset >= len(vm.roData) {
		return continueStatus()
	}

	end := offset
	for end < len(vm.roData) && vm.roData[end] != 0 {
		end++
	}
	fmt.Fprint(vm.stdout, string(vm.roData[offset:end]))
	return continueStatus()
}

// execBreakpoint implements BKPT: consumes its three reserved bytes and
// reports BreakpointHit so Run stops here, leaving pc positioned at the
// following instruction for when the host resumes with another Run call.
func (vm *VM) execBreakpoint() Status {
	vm.pad(3)
	return breakpointStatus()
}

// execIllegal handles a byte that doesn't map to any known opcode. It is
// terminal like HLT rather than a crash: the catalog deliberately maps
// unknown bytes to IGL, so an unrecognized byte is an illegal-instruction
// stop reported through its Done(1) exit code.
func (vm *VM) execIllegal() Status {
	return doneStatus(1)
}
