// Package viz replays a decoded trajectory in the terminal.
//
// The player is a Bubble Tea program that draws each frame on a braille
// [Canvas] using the same layout as the PNG renderer, next to a panel with
// the frame's energies and an ASCII chart of total energy so far.
//
// # Key Bindings
//
//	Space - Pause/Resume playback
//	[ ]   - Step one frame back/forward
//	M     - Toggle 2D/3D projection
//	x y z - Rotate the 3D camera (shifted keys rotate back)
//	+ -   - Zoom
//	T     - Cycle color themes
//	S     - Save the current frame as SVG
//	?     - Show help overlay
package viz
