package chip8

// Input is the interpreter's input snapshot, refreshed once per tick by the
// driver before Step is called. It is deliberately not part of
// HistoryFragment: the instructions whose behavior depends on it (GetKey,
// SkipIfKeyDown/SkipIfKeyNotDown, GetDelayTimer) bake their outcome into
// PC/Registers, so no separate input record is needed to undo a step.
type Input struct {
	// DelayTimer is the ceil of the real-valued delay timer.
	DelayTimer byte

	// DownKeys is a bitmask, one bit per hex key 0x0-0xF.
	DownKeys uint16

	// JustPressedKey/JustReleasedKey are cleared by the driver after each
	// tick; each transition is observed by exactly one tick (single-consumer).
	JustPressedKey  OptionalKey
	JustReleasedKey OptionalKey
}

// OptionalKey is a comparable substitute for Option<u8>, since the source's
// InterpreterInput uses Option<u8> for key fields and Go has no analogous
// nil-able byte.
type OptionalKey struct {
	Key     byte
	Present bool
}

func someKey(k byte) OptionalKey { return OptionalKey{Key: k, Present: true} }

// IsKeyDown reports whether hex key (0-15) is currently held.
func (in *Input) IsKeyDown(key byte) bool {
	return in.DownKeys>>(key&0xF)&1 == 1
}
