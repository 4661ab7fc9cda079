package chip8

import "fmt"

// RequestKind tags the side effect, if any, the driver must apply after a
// step.
type RequestKind int

const (
	RequestNone RequestKind = iota
	RequestDisplay
	RequestSetDelayTimer
	RequestSetSoundTimer
)

// Request is the interpreter's way of asking the driver to do something it
// cannot do itself (repaint, reset a timer) without reaching outside its own
// owned state.
type Request struct {
	Kind  RequestKind
	Value byte
}

// Output is what the driver observes after each step.
type Output struct {
	Display       DisplayBuffer
	AwaitingInput bool
	Request       Request
}

// Interpreter owns the register file, program counter, index register,
// return stack, RNG, input snapshot and output buffer for one running
// program. It exposes a single Step operation; all scheduling, timers and
// rendering live outside it.
type Interpreter struct {
	Kind Kind

	Memory    [MemorySize]byte
	Registers [16]byte
	PC        uint16
	Index     uint16
	Stack     []uint16

	Input  Input
	Output Output

	rng randSource
}

// NewInterpreter builds an interpreter from a program image and a behavioral
// kind. The font table and program are seeded into memory; PC starts at
// ProgramStartAddress per invariant I1.
func NewInterpreter(program []byte, kind Kind, rngSeed uint64) (*Interpreter, error) {
	mem, err := allocMemory(program)
	if err != nil {
		return nil, err
	}

	return &Interpreter{
		Kind:   kind,
		Memory: mem,
		PC:     ProgramStartAddress,
		Stack:  make([]uint16, 0, StackDepth),
		rng:    newRandSource(rngSeed),
	}, nil
}

// Fetch reads the 16-bit big-endian word at PC without mutating state. It
// fails if PC is not low enough to read two in-bounds bytes (boundary B1: PC
// == 4094 succeeds, PC == 4095 fails).
func (in *Interpreter) Fetch() (uint16, error) {
	if int(in.PC) >= MemorySize-1 {
		return 0, fmt.Errorf("fetch failed: program counter %#05x is out of bounds", in.PC)
	}
	return uint16(in.Memory[in.PC])<<8 | uint16(in.Memory[in.PC+1]), nil
}

// Step runs the fetch/decode/execute protocol for one instruction (spec
// §4.2): clear the pending request, fetch, decode, advance PC, execute. If
// decode or execute fails, PC is left exactly where it was before the step
// (decode: untouched; execute: rolled back), and the error is returned with
// a nil Output.
func (in *Interpreter) Step() (*Output, error) {
	in.Output.Request = Request{Kind: RequestNone}
	in.Output.AwaitingInput = false

	word, err := in.Fetch()
	if err != nil {
		return nil, err
	}

	inst, err := Decode(word)
	if err != nil {
		return nil, fmt.Errorf("decode at %#05x failed: %w", in.PC, err)
	}

	in.PC += 2

	if err := in.exec(inst); err != nil {
		in.PC -= 2
		return nil, err
	}

	return &in.Output, nil
}

func (in *Interpreter) checkedAddrAdd(addr, amt uint16) (uint16, bool) {
	result := addr + amt
	if int(addr) < MemorySize && int(result) < MemorySize && result >= addr {
		return result, true
	}
	return 0, false
}

func (in *Interpreter) exec(inst Instruction) error {
	switch inst.Op {
	case OpClearScreen:
		in.Output.Display.clear()
		in.Output.Request = Request{Kind: RequestDisplay}

	case OpJump:
		in.PC = inst.NNN

	case OpJumpWithOffset:
		var offset uint16
		if in.Kind == CosmacVIP {
			offset = uint16(in.Registers[0])
		} else {
			offset = uint16(in.Registers[inst.X])
		}
		target := uint32(inst.NNN) + uint32(offset)
		if target >= MemorySize {
			return fmt.Errorf("jump with offset failed: address %#05x with offset %#04x is out of bounds", inst.NNN, offset)
		}
		in.PC = uint16(target)

	case OpCallSubroutine:
		if len(in.Stack) >= StackDepth {
			return fmt.Errorf("call subroutine failed: stack depth exceeded at %#05x", inst.NNN)
		}
		in.Stack = append(in.Stack, in.PC)
		in.PC = inst.NNN

	case OpSubroutineReturn:
		if len(in.Stack) == 0 {
			panic("subroutine return: stack is empty")
		}
		in.PC = in.Stack[len(in.Stack)-1]
		in.Stack = in.Stack[:len(in.Stack)-1]

	case OpSkipIfEqualsConstant:
		if in.Registers[inst.X] == inst.NN {
			in.PC += 2
		}

	case OpSkipIfNotEqualsConstant:
		if in.Registers[inst.X] != inst.NN {
			in.PC += 2
		}

	case OpSkipIfEquals:
		if in.Registers[inst.X] == in.Registers[inst.Y] {
			in.PC += 2
		}

	case OpSkipIfNotEquals:
		if in.Registers[inst.X] != in.Registers[inst.Y] {
			in.PC += 2
		}

	case OpSkipIfKeyDown:
		if in.Input.IsKeyDown(in.Registers[inst.X]) {
			in.PC += 2
		}

	case OpSkipIfKeyNotDown:
		if !in.Input.IsKeyDown(in.Registers[inst.X]) {
			in.PC += 2
		}

	case OpGetKey:
		key := in.pickKey()
		if key.Present {
			in.Registers[inst.X] = key.Key
		} else {
			in.PC -= 2
			in.Output.AwaitingInput = true
		}

	case OpSetConstant:
		in.Registers[inst.X] = inst.NN

	case OpAddConstant:
		in.Registers[inst.X] += inst.NN

	case OpSet:
		in.Registers[inst.X] = in.Registers[inst.Y]

	case OpOr:
		in.Registers[inst.X] |= in.Registers[inst.Y]

	case OpAnd:
		in.Registers[inst.X] &= in.Registers[inst.Y]

	case OpXor:
		in.Registers[inst.X] ^= in.Registers[inst.Y]

	case OpAdd:
		sum := uint16(in.Registers[inst.X]) + uint16(in.Registers[inst.Y])
		in.Registers[inst.X] = byte(sum)
		if sum > 0xFF {
			in.Registers[VFlag] = 1
		} else {
			in.Registers[VFlag] = 0
		}

	case OpSub:
		var minuend, subtrahend byte
		if inst.VxMinusVy {
			minuend, subtrahend = in.Registers[inst.X], in.Registers[inst.Y]
		} else {
			minuend, subtrahend = in.Registers[inst.Y], in.Registers[inst.X]
		}
		result := minuend - subtrahend
		in.Registers[inst.X] = result
		if minuend >= subtrahend {
			in.Registers[VFlag] = 1
		} else {
			in.Registers[VFlag] = 0
		}

	case OpShift:
		var bits byte
		if in.Kind == CosmacVIP {
			bits = in.Registers[inst.Y]
		} else {
			bits = in.Registers[inst.X]
		}
		if inst.ShiftRight {
			in.Registers[VFlag] = bits & 1
			in.Registers[inst.X] = bits >> 1
		} else {
			in.Registers[VFlag] = (bits >> 7) & 1
			in.Registers[inst.X] = bits << 1
		}

	case OpGetDelayTimer:
		in.Registers[inst.X] = in.Input.DelayTimer

	case OpSetDelayTimer:
		in.Output.Request = Request{Kind: RequestSetDelayTimer, Value: in.Registers[inst.X]}

	case OpSetSoundTimer:
		in.Output.Request = Request{Kind: RequestSetSoundTimer, Value: in.Registers[inst.X]}

	case OpSetIndex:
		in.Index = inst.NNN

	case OpSetIndexToHexChar:
		in.Index = FontStartAddress + FontCharSize*uint16(in.Registers[inst.X]&0x0F)

	case OpAddToIndex:
		// uint16 addition already wraps mod 0x10000; VF is untouched here,
		// unlike some community variants that set it on overflow.
		in.Index += uint16(in.Registers[inst.X])

	case OpLoad:
		addr, ok := in.checkedAddrAdd(in.Index, uint16(inst.X))
		if !ok {
			return fmt.Errorf("load failed: out of bounds read (%d bytes from i = %#05x)", int(inst.X)+1, in.Index)
		}
		copy(in.Registers[:inst.X+1], in.Memory[in.Index:addr+1])
		if in.Kind == CosmacVIP {
			in.Index = addr + 1
		}

	case OpStore:
		addr, ok := in.checkedAddrAdd(in.Index, uint16(inst.X))
		if !ok {
			return fmt.Errorf("store failed: out of bounds write (%d bytes from i = %#05x)", int(inst.X)+1, in.Index)
		}
		copy(in.Memory[in.Index:addr+1], in.Registers[:inst.X+1])
		if in.Kind == CosmacVIP {
			in.Index = addr + 1
		}

	case OpStoreDecimal:
		addr, ok := in.checkedAddrAdd(in.Index, 2)
		if !ok {
			return fmt.Errorf("store decimal failed: out of bounds write (3 bytes from i = %#05x)", in.Index)
		}
		value := in.Registers[inst.X]
		in.Memory[addr] = value % 10
		in.Memory[addr-1] = (value / 10) % 10
		in.Memory[addr-2] = value / 100

	case OpGenerateRandom:
		in.Registers[inst.X] = byte(in.rng.nextUint32()) & inst.NN

	case OpDisplay:
		var span uint16
		if inst.N > 0 {
			span = uint16(inst.N - 1)
		}
		if _, ok := in.checkedAddrAdd(in.Index, span); !ok {
			return fmt.Errorf("display failed: sprite out of bounds read (%d bytes from i = %#05x)", inst.N, in.Index)
		}
		in.execDisplay(inst.X, inst.Y, inst.N)
		in.Output.Request = Request{Kind: RequestDisplay}

	default:
		return fmt.Errorf("unreachable: unknown opcode %v", inst.Op)
	}

	return nil
}

func (in *Interpreter) execDisplay(x, y, n byte) {
	collision := writeSprite(&in.Output.Display, in.Memory[in.Index:], in.Registers[x], in.Registers[y], n)
	in.Registers[VFlag] = collision
}

// pickKey resolves GetKey's source key: under COSMAC-VIP the instruction
// consumes a key release, otherwise a key press.
func (in *Interpreter) pickKey() OptionalKey {
	if in.Kind == CosmacVIP {
		return in.Input.JustReleasedKey
	}
	return in.Input.JustPressedKey
}
