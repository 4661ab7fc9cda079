package sched

// NullKeyboard is a Keyboard that never reports a key transition. It backs
// any Machine whose caller hasn't wired a real input collaborator yet —
// reading actual keystrokes from a terminal is outside this module's scope.
type NullKeyboard struct{}

func (NullKeyboard) Update() (key byte, isPress bool, changed bool) { return 0, false, false }
