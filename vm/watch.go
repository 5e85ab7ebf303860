package vm

// WatchKeyKind selects which part of VM state a WatchKey names.
type WatchKeyKind int

const (
	WatchMemory WatchKeyKind = iota
	WatchRegister
	WatchFloatRegister
)

// WatchKey names one piece of VM state to monitor for changes: a heap
// address, a general register index, or a float register index.
type WatchKey struct {
	Kind  WatchKeyKind
	Index int
}

// AddWatch begins monitoring the given key, recording its current value as
// the baseline so the first post-registration instruction doesn't spuriously
// report a change. Watching the same key twice is a no-op.
func (vm *VM) AddWatch(key WatchKey) {
	if _, ok := vm.watches[key]; ok {
		return
	}
	vm.watches[key] = vm.watchValue(key)
	vm.watchOrder = append(vm.watchOrder, key)
}

// Watches returns the currently registered watch keys in registration order.
func (vm *VM) Watches() []WatchKey {
	return append([]WatchKey(nil), vm.watchOrder...)
}

func (vm *VM) watchValue(key WatchKey) float64 {
	switch key.Kind {
	case WatchRegister:
		if key.Index < 0 || key.Index >= numRegisters {
			return 0
		}
		return float64(vm.registers[key.Index])
	case WatchFloatRegister:
		if key.Index < 0 || key.Index >= numFloatRegisters {
			return 0
		}
		return vm.floatRegisters[key.Index]
	case WatchMemory:
		if key.Index < 0 || key.Index+4 > len(vm.heap) {
			return 0
		}
		return float64(int32(
			uint32(vm.heap[key.Index]) |
				uint32(vm.heap[key.Index+1])<<8 |
				uint32(vm.heap[key.Index+2])<<16 |
				uint32(vm.heap[key.Index+3])<<24,
		))
	default:
		return 0
	}
}

// detectWatchChanges compares every registered watch against its last known
// value and appends a WatchChanged event for each that moved. It runs before
// every instruction decode, never after.
func (vm *VM) detectWatchChanges() {
	for _, key := range vm.watchOrder {
		prev := vm.watches[key]
		cur := vm.watchValue(key)
		if cur != prev {
			vm.watches[key] = cur
			vm.events = append(vm.events, Event{
				Kind: EventWatchChanged,
				Watch: WatchChange{
					Key:      key,
					Previous: prev,
					Current:  cur,
				},
			})
		}
	}
}
