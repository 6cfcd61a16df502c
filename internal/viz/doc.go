// Package viz renders decay simulations for the terminal and for image
// export.
//
//   - [RenderLattice]: colored lattice, one glyph per nucleus
//   - [Recorder]: population history collected as a decay.Observer
//   - [PlotPopulation] / [WritePNG]: decay curves via asciigraph and go-chart
//   - [Model]: Bubble Tea program for the live view
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset with a new seed
//	T     - Cycle color themes
//	+/-   - Change steps per frame
//	Q     - Quit
package viz
