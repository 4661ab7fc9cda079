package chip8

import "fmt"

// HistoryCapacity bounds the reversible-execution ring. Every fragment slot
// holds its Payload inline, including a full DisplayBuffer, so a slot is
// about 2 KiB and the ring, allocated at full capacity up front, reserves
// about 500 MiB.
const HistoryCapacity = 250_000

// PayloadKind tags the rare per-instruction extra state a fragment must
// carry to be reversible: ClearScreen and GenerateRandom are the only two
// instructions whose inverse cannot be derived from (PC, I, registers, 16
// bytes at I, top-of-stack).
type PayloadKind int

const (
	PayloadNone PayloadKind = iota
	PayloadRNG
	PayloadDisplay
)

// Payload is the optional extra state a HistoryFragment carries.
type Payload struct {
	Kind    PayloadKind
	RNG     randSource
	Display DisplayBuffer
}

// HistoryFragment is the minimal record required to undo one executed
// instruction. It is captured before the instruction runs. All fields are
// comparable so fragments can be compared with == for the divergence check.
type HistoryFragment struct {
	HasInstruction bool
	Instruction    Instruction

	PC            uint16
	ReturnAddress uint16
	Index         uint16
	IndexMemory   [16]byte
	Registers     [16]byte

	Payload Payload
}

// captureFragment snapshots the interpreter's pre-step state. If the
// pre-step fetch+decode fails, HasInstruction is false and the fragment
// records nothing else meaningful (undo on such a fragment is undefined,
// matching the source).
func captureFragment(in *Interpreter) HistoryFragment {
	f := HistoryFragment{
		PC:        in.PC,
		Index:     in.Index,
		Registers: in.Registers,
	}

	if len(in.Stack) > 0 {
		f.ReturnAddress = in.Stack[len(in.Stack)-1]
	}

	index := int(in.Index)
	if index < len(in.Memory) {
		n := index + 16
		if n > len(in.Memory) {
			n = len(in.Memory)
		}
		copy(f.IndexMemory[:], in.Memory[index:n])
	}

	word, err := in.Fetch()
	if err != nil {
		return f
	}
	inst, err := Decode(word)
	if err != nil {
		return f
	}

	f.HasInstruction = true
	f.Instruction = inst

	switch inst.Op {
	case OpGenerateRandom:
		f.Payload = Payload{Kind: PayloadRNG, RNG: in.rng}
	case OpClearScreen:
		f.Payload = Payload{Kind: PayloadDisplay, Display: in.Output.Display}
	}

	return f
}

// Undo reverses the single instruction described by fragment, restoring PC,
// I, registers and the 16-byte memory window from the fragment, then
// applying whatever instruction-specific correction is needed (popping or
// pushing the stack, re-XORing a sprite, restoring a payload).
//
// It is a precondition that fragment.HasInstruction is true; undoing past a
// pre-fetch-failure fragment is undefined, matching the source.
func (in *Interpreter) Undo(fragment *HistoryFragment) {
	if !fragment.HasInstruction {
		panic("cannot undo a fragment without a decoded instruction")
	}

	in.PC = fragment.PC
	in.Index = fragment.Index
	in.Registers = fragment.Registers

	index := int(in.Index)
	if index < len(in.Memory) {
		n := index + 16
		if n > len(in.Memory) {
			n = len(in.Memory)
		}
		copy(in.Memory[index:n], fragment.IndexMemory[:n-index])
	}

	inst := fragment.Instruction
	switch inst.Op {
	case OpCallSubroutine:
		if len(in.Stack) > 0 {
			in.Stack = in.Stack[:len(in.Stack)-1]
		}

	case OpSubroutineReturn:
		in.Stack = append(in.Stack, fragment.ReturnAddress)

	case OpDisplay:
		in.execDisplay(inst.X, inst.Y, inst.N)
		in.Registers[VFlag] = fragment.Registers[VFlag]

	case OpClearScreen:
		in.Output.Display = fragment.Payload.Display

	case OpGenerateRandom:
		in.rng = fragment.Payload.RNG
	}
}

// fragmentRing is a fixed-capacity circular buffer of HistoryFragment with
// O(1) push-back-with-eviction and O(1) indexed access, since a plain slice
// would need an O(n) shift on every eviction at capacity.
type fragmentRing struct {
	buf   []HistoryFragment
	start int
	count int
}

func newFragmentRing(capacity int) *fragmentRing {
	return &fragmentRing{buf: make([]HistoryFragment, capacity)}
}

func (r *fragmentRing) Len() int { return r.count }

func (r *fragmentRing) At(i int) *HistoryFragment {
	idx := (r.start + i) % len(r.buf)
	return &r.buf[idx]
}

// PushBack appends f, evicting the oldest fragment first if at capacity.
func (r *fragmentRing) PushBack(f HistoryFragment) {
	if r.count == len(r.buf) {
		r.start = (r.start + 1) % len(r.buf)
		r.count--
	}
	idx := (r.start + r.count) % len(r.buf)
	r.buf[idx] = f
	r.count++
}

// Truncate keeps only the first n logical entries.
func (r *fragmentRing) Truncate(n int) {
	if n < r.count {
		r.count = n
	}
}

// presentSnapshot captures the live, transient VM state (here: the
// interpreter's input snapshot) at the moment the user first steps back, so
// that returning to the present can restore it even though no fragment
// records input directly.
type presentSnapshot struct {
	input Input
}

// History is a bounded, reversible ring of per-step fragments plus a cursor
// distinguishing past, present and redo-able future.
type History struct {
	fragments *fragmentRing
	cursor    int
	present   *presentSnapshot
}

// NewHistory creates an empty history ring at HistoryCapacity.
func NewHistory() *History {
	return &History{fragments: newFragmentRing(HistoryCapacity)}
}

// Len reports the number of recorded fragments.
func (h *History) Len() int { return h.fragments.Len() }

// Cursor reports the index of the next fragment that would be executed going
// forward; Cursor() == Len() means "at the present".
func (h *History) Cursor() int { return h.cursor }

// RedoAmount is the number of fragments ahead of the cursor.
func (h *History) RedoAmount() int { return h.fragments.Len() - h.cursor }

// ClearRedo discards the redo branch ahead of the cursor.
func (h *History) ClearRedo() { h.fragments.Truncate(h.cursor) }

// Step drains buffered input events into the interpreter's input snapshot,
// takes a pre-step fragment, resolves divergence from any recorded future,
// runs one interpreter step, and records history accordingly. It returns the
// interpreter's step error, if any, unchanged.
func (h *History) Step(vm *VM) (*Output, error) {
	vm.drainEvents()
	in := vm.Interp

	fragment := captureFragment(in)

	redoAmount := h.RedoAmount()
	if redoAmount > 0 && *h.fragments.At(h.cursor) != fragment {
		h.fragments.Truncate(h.cursor)
		redoAmount = 0
	}

	output, err := in.Step()

	recordable := err == nil && !output.AwaitingInput
	if redoAmount == 0 && recordable {
		h.fragments.PushBack(fragment)
	}

	h.cursor = h.cursor + 1
	if h.cursor > h.fragments.Len() {
		h.cursor = h.fragments.Len()
	}

	if h.cursor == h.fragments.Len() {
		// Reaching the present only restores the snapshot taken at the
		// moment of the first undo if this tick actually replayed a
		// recorded future (redoAmount, which the divergence check above
		// resets to 0 when it truncates, is > 0). A tick that diverged and happened to
		// land back at the present in the same call is a fresh forward
		// step, not a replay, so the live input it just produced must win
		// over the stale snapshot. The snapshot itself is consumed either
		// way, matching the source's unconditional take().
		if redoAmount > 0 && h.present != nil {
			in.Input = h.present.input
		}
		h.present = nil
	}

	// Every tick observes at most one just-pressed/just-released
	// transition; clear both so a later, unrelated tick never replays a
	// stale one.
	in.Input.JustPressedKey = OptionalKey{}
	in.Input.JustReleasedKey = OptionalKey{}

	return output, err
}

// Undo rewinds up to amt fragments, returning the number actually reversed.
// On the first undo since returning to (or never leaving) the present, it
// snapshots the interpreter's transient input state so it can be restored
// when the cursor comes back to the present.
func (h *History) Undo(vm *VM, amt int) int {
	in := vm.Interp
	if h.RedoAmount() == 0 {
		h.present = &presentSnapshot{input: in.Input}
	}

	rewound := 0
	for i := 0; i < amt; i++ {
		if h.cursor == 0 {
			break
		}
		h.cursor--
		in.Undo(h.fragments.At(h.cursor))
		rewound++
	}
	return rewound
}

// String renders a short human-readable position, used by driver logging.
func (h *History) String() string {
	return fmt.Sprintf("history(cursor=%d, len=%d)", h.cursor, h.fragments.Len())
}
