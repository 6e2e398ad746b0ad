// Package viz renders a coil in the terminal.
//
// [Canvas] is a Braille pixel grid (2x4 dots per cell) with whole-cell glyph
// marks layered on top; [DrawCoil] fits a segment chain onto it and places
// the carriers. [Model] is the Bubble Tea program behind `coilsim live`.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset coil defaults and restart the drive
//	↑/↓   - Add or remove a loop
//	←/→   - Shrink or grow the loop radius
//	+/-   - Carrier speed scale
//	F     - Toggle electron/conventional flow
//	V     - Show/hide carriers
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
//
// # Recording
//
// G starts capturing frames; pressing it again (or quitting) writes them to
// coil.gif in the current directory.
package viz
