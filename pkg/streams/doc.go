// Package streams reopens the process's standard output and standard error
// as UTF-8, immediately flushed text streams.
//
// Go writes raw bytes, so the host locale never re-encodes output. What can
// go wrong is the bytes themselves: subprocess output in a legacy code page,
// a Windows console left on an OEM code page, or a multi-byte rune torn
// across two writes. A Stream guarantees that every byte reaching the
// descriptor is valid UTF-8 and that each write is on the descriptor before
// Write returns.
//
// Normalize runs once per process and rebinds the writers of the terminal
// libraries instl uses (zerolog, pterm, lipgloss) to the normalized streams.
// Cobra commands get theirs through SetOut/SetErr.
package streams
