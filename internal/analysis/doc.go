// Package analysis runs the post-processing pipeline over one trajectory:
// decode frames, accumulate energies, optionally plot each frame, then
// report energy drift, stitch the plots into a video and record the run.
package analysis
