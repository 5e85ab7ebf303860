package vm

import "math"

func (vm *VM) execAdd() Status {
	a, b, c := vm.reg(), vm.reg(), vm.reg()
	vm.registers[c] = vm.registers[a] + vm.registers[b]
	return continueStatus()
}

func (vm *VM) execSub() Status {
	a, b, c := vm.reg(), vm.reg(), vm.reg()
	vm.registers[c] = vm.registers[a] - vm.registers[b]
	return continueStatus()
}

func (vm *VM) execMul() Status {
	a, b, c := vm.reg(), vm.reg(), vm.reg()
	vm.registers[c] = vm.registers[a] * vm.registers[b]
	return continueStatus()
}

// execDiv implements DIV $a $b $c: registers[c] = registers[a] / registers[b]
// and sets remainder to the absolute value of registers[a] mod registers[b].
// A zero divisor crashes with code 20 instead of panicking, kept distinct
// from the heap-bounds crash code so the two faults stay distinguishable.
func (vm *VM) execDiv() Status {
	a, b, c := vm.reg(), vm.reg(), vm.reg()
	divisor := vm.registers[b]
	if divisor == 0 {
		return crashStatus(20)
	}
	dividend := vm.registers[a]
	vm.registers[c] = dividend / divisor

	rem := dividend % divisor
	if rem < 0 {
		rem = -rem
	}
	vm.remainder = uint32(rem)
	return continueStatus()
}

func (vm *VM) execInc() Status {
	r := vm.reg()
	vm.pad(2)
	vm.registers[r]++
	return continueStatus()
}

func (vm *VM) execDec() Status {
	r := vm.reg()
	vm.pad(2)
	vm.registers[r]--
	return continueStatus()
}

func (vm *VM) execAddF64() Status {
	a, b, c := vm.reg(), vm.reg(), vm.reg()
	vm.floatRegisters[c] = vm.floatRegisters[a] + vm.floatRegisters[b]
	return continueStatus()
}

func (vm *VM) execSubF64() Status {
	a, b, c := vm.reg(), vm.reg(), vm.reg()
	vm.floatRegisters[c] = vm.floatRegisters[a] - vm.floatRegisters[b]
	return continueStatus()
}

func (vm *VM) execMulF64() Status {
	a, b, c := vm.reg(), vm.reg(), vm.reg()
	vm.floatRegisters[c] = vm.floatRegisters[a] * vm.floatRegisters[b]
	return continueStatus()
}

// execDivF64 implements DIVF64 $a $b $c: registers[c] = registers[a] /
// registers[b], and remainder is set from the truncated absolute value of
// the float modulus, matching DIV's integer convention so both division ops
// agree on what "remainder" means.
func (vm *VM) execDivF64() Status {
	a, b, c := vm.reg(), vm.reg(), vm.reg()
	divisor := vm.floatRegisters[b]
	if divisor == 0 {
		return crashStatus(20)
	}
	dividend := vm.floatRegisters[a]
	vm.floatRegisters[c] = dividend / divisor

	rem := math.Mod(dividend, divisor)
	if rem < 0 {
		rem = -rem
	}
	vm.remainder = uint32(rem)
	return continueStatus()
}
