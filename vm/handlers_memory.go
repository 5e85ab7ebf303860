package vm

import "encoding/binary"

// execLoad implements LOAD $reg #imm: a 16-bit immediate zero-extended into
// the register. The catalog nominally grants LOAD a full integer-immediate
// slot, but only 16 bits of it exist on the wire and only 16 bits are read
// here; the stride padding keeps the next opcode aligned.
func (vm *VM) execLoad() Status {
	r := vm.reg()
	imm := vm.u16()
	vm.registers[r] = int32(imm)
	return continueStatus()
}

// execLoadF64 implements LOADF64 $reg #imm: a 16-bit unsigned value widened
// to a float64.
func (vm *VM) execLoadF64() Status {
	r := vm.reg()
	imm := vm.u16()
	vm.floatRegisters[r] = float64(imm)
	return continueStatus()
}

// execAlloc implements ALOC $reg: grow the heap by the (non-negative) amount
// held in the register, zero-filling the new bytes.
func (vm *VM) execAlloc() Status {
	r := vm.reg()
	vm.pad(2)

	n := vm.registers[r]
	if n < 0 {
		return crashStatus(10)
	}
	vm.heap = append(vm.heap, make([]byte, n)...)
	return continueStatus()
}

// execLoadUpperImmediate implements LUI $reg #hi #lo: shifts the register's
// current value left by a byte twice, folding in hi then lo, building a
// larger value on top of whatever the register already held.
func (vm *VM) execLoadUpperImmediate() Status {
	r := vm.reg()
	hi := int32(vm.u8())
	lo := int32(vm.u8())

	value := vm.registers[r]
	value = (value<<8 | hi) << 8
	value |= lo
	vm.registers[r] = value
	return continueStatus()
}

// execLoadMemory implements LOADM $offsetReg $dst: read 4 bytes from the
// heap at the address held in the offset register into the destination
// register. An out-of-bounds access crashes the VM with code 10 rather than
// panicking.
func (vm *VM) execLoadMemory() Status {
	offsetReg := vm.reg()
	dst := vm.reg()

	window := vm.heapRange(int(vm.registers[offsetReg]))
	if window == nil {
		return crashStatus(10)
	}
	vm.registers[dst] = int32(binary.LittleEndian.Uint32(window))
	vm.pad(1)
	return continueStatus()
}

// execSetMemory implements SETM $offsetReg $dataReg: write the 4 bytes of
// the data register to the heap at the address held in the offset register.
func (vm *VM) execSetMemory() Status {
	offsetReg := vm.reg()
	dataReg := vm.reg()

	window := vm.heapRange(int(vm.registers[offsetReg]))
	if window == nil {
		return crashStatus(10)
	}
	binary.LittleEndian.PutUint32(window, uint32(vm.registers[dataReg]))
	vm.pad(1)
	return continueStatus()
}

func (vm *VM) execPush() Status {
	r := vm.reg()
	vm.pad(2)
	vm.pushStack(vm.registers[r])
	return continueStatus()
}

func (vm *VM) execPop() Status {
	r := vm.reg()
	vm.pad(2)
	vm.registers[r] = vm.popStack()
	return continueStatus()
}
