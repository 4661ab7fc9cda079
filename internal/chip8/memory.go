package chip8

import (
	"fmt"
	"strings"
)

//		System memory map
// 		+---------------+= 0xFFF (4095) End of memory
// 		| 0x200 to 0xFFF|
// 		|   Program /   |
// 		|  Data Space   |
// 		+---------------+= 0x200 (512) Start of program
// 		| 0x0A0 to 0x1FF|
// 		|   unused      |
// 		+---------------+= 0x0A0 (160)
// 		| 0x050 to 0x09F|
// 		|  font glyphs  |
// 		+---------------+= 0x050 (80)
// 		| 0x000 to 0x04F|
// 		|   unused      |
// 		+---------------+= 0x000 (0)

const (
	// MemorySize is the fixed size of the addressable memory image.
	MemorySize = 4096

	// FontStartAddress is where the 16-glyph font table is seeded.
	FontStartAddress = 0x050
	// FontCharSize is the number of bytes per glyph.
	FontCharSize = 5

	// ProgramStartAddress is where the ROM bytes are loaded and where PC
	// starts on reset.
	ProgramStartAddress = 0x200

	// MaxProgramSize is the largest ROM that fits between ProgramStartAddress
	// and the end of memory.
	MaxProgramSize = MemorySize - ProgramStartAddress

	// StackDepth is the minimum guaranteed depth of the return-address stack.
	StackDepth = 16

	// DisplayWidth and DisplayHeight describe the monochrome display grid.
	DisplayWidth  = 64
	DisplayHeight = 32

	// VFlag is the general register repurposed as the flag register.
	VFlag = 15
)

// font holds the built-in 16-glyph font set, one glyph (5 bytes) per hex
// digit 0x0-0xF.
var font = [FontCharSize * 16]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Kind selects the behavioral variant of the interpreter. The two sources
// disagree on Shift, Load/Store, JumpWithOffset and GetKey semantics; the
// rest of the ISA is identical between them.
type Kind int

const (
	// Chip48 is the default variant, matching the later CHIP-48/SCHIP
	// convention for the four disputed opcodes.
	Chip48 Kind = iota
	// CosmacVIP matches the original COSMAC VIP interpreter's behavior.
	CosmacVIP
)

func (k Kind) String() string {
	switch k {
	case CosmacVIP:
		return "COSMACVIP"
	case Chip48:
		return "CHIP48"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind parses the --kind flag value. It is case-insensitive and accepts
// exactly the two spellings named in the CLI surface.
func ParseKind(s string) (Kind, error) {
	switch strings.ToUpper(s) {
	case "COSMACVIP":
		return CosmacVIP, nil
	case "CHIP48":
		return Chip48, nil
	default:
		return Chip48, fmt.Errorf("--kind must be followed by COSMACVIP or CHIP48, got %q", s)
	}
}

// allocMemory builds the initial memory image: font table seeded at
// FontStartAddress, program bytes seeded at ProgramStartAddress, all other
// bytes zero.
func allocMemory(program []byte) ([MemorySize]byte, error) {
	var mem [MemorySize]byte

	if len(program) > MaxProgramSize {
		return mem, fmt.Errorf("program too large: %d bytes, max %d", len(program), MaxProgramSize)
	}

	copy(mem[FontStartAddress:], font[:])
	copy(mem[ProgramStartAddress:], program)

	return mem, nil
}
