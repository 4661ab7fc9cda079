package chip8

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// canonicalEncodings lists one well-formed 16-bit word per instruction case
// in the decoding table (§4.1), used for the round-trip property R1.
func canonicalEncodings() map[uint16]Instruction {
	return map[uint16]Instruction{
		0x00E0: {Op: OpClearScreen},
		0x00EE: {Op: OpSubroutineReturn},
		0x1234: {Op: OpJump, NNN: 0x234},
		0x2345: {Op: OpCallSubroutine, NNN: 0x345},
		0x31AB: {Op: OpSkipIfEqualsConstant, X: 1, NN: 0xAB},
		0x41AB: {Op: OpSkipIfNotEqualsConstant, X: 1, NN: 0xAB},
		0x5120: {Op: OpSkipIfEquals, X: 1, Y: 2},
		0x61AB: {Op: OpSetConstant, X: 1, NN: 0xAB},
		0x71AB: {Op: OpAddConstant, X: 1, NN: 0xAB},
		0x8120: {Op: OpSet, X: 1, Y: 2},
		0x8121: {Op: OpOr, X: 1, Y: 2},
		0x8122: {Op: OpAnd, X: 1, Y: 2},
		0x8123: {Op: OpXor, X: 1, Y: 2},
		0x8124: {Op: OpAdd, X: 1, Y: 2},
		0x8125: {Op: OpSub, X: 1, Y: 2, VxMinusVy: true},
		0x8126: {Op: OpShift, X: 1, Y: 2, ShiftRight: true},
		0x8127: {Op: OpSub, X: 1, Y: 2, VxMinusVy: false},
		0x812E: {Op: OpShift, X: 1, Y: 2, ShiftRight: false},
		0x9120: {Op: OpSkipIfNotEquals, X: 1, Y: 2},
		0xA345: {Op: OpSetIndex, NNN: 0x345},
		0xB345: {Op: OpJumpWithOffset, NNN: 0x345, X: 3},
		0xC1AB: {Op: OpGenerateRandom, X: 1, NN: 0xAB},
		0xD123: {Op: OpDisplay, X: 1, Y: 2, N: 3},
		0xE19E: {Op: OpSkipIfKeyDown, X: 1},
		0xE1A1: {Op: OpSkipIfKeyNotDown, X: 1},
		0xF107: {Op: OpGetDelayTimer, X: 1},
		0xF10A: {Op: OpGetKey, X: 1},
		0xF115: {Op: OpSetDelayTimer, X: 1},
		0xF118: {Op: OpSetSoundTimer, X: 1},
		0xF11E: {Op: OpAddToIndex, X: 1},
		0xF129: {Op: OpSetIndexToHexChar, X: 1},
		0xF133: {Op: OpStoreDecimal, X: 1},
		0xF155: {Op: OpStore, X: 1},
		0xF165: {Op: OpLoad, X: 1},
	}
}

func TestDecodeCanonicalEncodings(t *testing.T) {
	for word, want := range canonicalEncodings() {
		got, err := Decode(word)
		require.NoErrorf(t, err, "decoding %#04x", word)
		require.Equalf(t, want, got, "decoding %#04x", word)
	}
}

// R1: decode then re-encode by the inverse table is identity.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	for word := range canonicalEncodings() {
		inst, err := Decode(word)
		require.NoError(t, err)

		reencoded, err := Encode(inst)
		require.NoError(t, err)
		require.Equal(t, word, reencoded)
	}
}

func TestDecode34InstructionsCount(t *testing.T) {
	require.Len(t, canonicalEncodings(), 34)
}

// P1: decode never silently succeeds on an unrecognized encoding.
func TestDecodeUnrecognizedEncodingsError(t *testing.T) {
	badWords := []uint16{0x0000, 0x00E1, 0x5001, 0x8128, 0x9001, 0xE000, 0xF000, 0xFFFF}
	for _, w := range badWords {
		_, err := Decode(w)
		require.Errorf(t, err, "expected decode error for %#04x", w)
	}
}

func TestDecodeEveryWordEitherSucceedsOrErrors(t *testing.T) {
	// Exhaustively decoding all 2^16 words is cheap and directly checks P1:
	// every word must either decode or produce a non-nil error, never panic.
	for w := 0; w <= 0xFFFF; w++ {
		_, err := Decode(uint16(w))
		_ = err
	}
}
