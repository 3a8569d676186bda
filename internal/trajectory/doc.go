// Package trajectory decodes the row-major table written by the N-body
// integrator into run metadata and per-frame particle snapshots.
//
// The table is comma separated:
//
//	row 0   column names (ignored)
//	row 1   particleCount,timestep,stepCount,decimation,halfExtent[,softening]
//	row 2   per-record column names (ignored)
//	row 3.. x,y,z,t,Ek,Ep, one row per particle per recorded step
//
// Data rows are grouped in contiguous blocks of particleCount rows, one
// block per [Frame]. A complete table holds stepCount/decimation frames.
//
// # Errors
//
// Malformed metadata or data rows wrap [ErrMalformedInput]; a frame that
// runs out of rows wraps [ErrTruncatedTrajectory]. Use errors.Is or
// errors.As with [*MalformedError] and [*TruncatedError].
package trajectory
