package chip8

// KeyEventKind tags a buffered key transition waiting to be applied to the
// interpreter's input snapshot.
type KeyEventKind int

const (
	KeyDown KeyEventKind = iota
	KeyUp
)

// KeyEvent is a single buffered key transition, queued by the input poller
// and drained into the interpreter's Input at the start of each history
// step so every step sees a consistent snapshot.
type KeyEvent struct {
	Kind KeyEventKind
	Key  byte
}

// VM bundles an Interpreter with its History and a small buffer of pending
// key events from the input poller. It is the "vm" the history engine
// wraps: History.Step/Undo operate on a VM so they can drain buffered events
// and restore transient input state, not just mutate interpreter registers.
type VM struct {
	Interp  *Interpreter
	History *History

	pending []KeyEvent
}

// NewVM constructs a fresh interpreter plus an empty history ring for the
// given program and behavioral kind.
func NewVM(program []byte, kind Kind, rngSeed uint64) (*VM, error) {
	interp, err := NewInterpreter(program, kind, rngSeed)
	if err != nil {
		return nil, err
	}
	return &VM{
		Interp:  interp,
		History: NewHistory(),
	}, nil
}

// QueueKeyEvent buffers a key transition for the next Step call to apply.
func (vm *VM) QueueKeyEvent(kind KeyEventKind, key byte) {
	vm.pending = append(vm.pending, KeyEvent{Kind: kind, Key: key & 0xF})
}

func (vm *VM) drainEvents() {
	for _, e := range vm.pending {
		switch e.Kind {
		case KeyDown:
			vm.Interp.Input.DownKeys |= 1 << e.Key
			vm.Interp.Input.JustPressedKey = someKey(e.Key)
		case KeyUp:
			vm.Interp.Input.DownKeys &^= 1 << e.Key
			vm.Interp.Input.JustReleasedKey = someKey(e.Key)
		}
	}
	vm.pending = vm.pending[:0]
}

// Step advances the VM by one instruction through its history engine.
func (vm *VM) Step() (*Output, error) {
	return vm.History.Step(vm)
}

// Undo rewinds the VM by up to amt instructions through its history engine.
func (vm *VM) Undo(amt int) int {
	return vm.History.Undo(vm, amt)
}
