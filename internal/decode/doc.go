// Package decode turns an uploaded artifact into a tag identifier.
//
// Decoding runs in a separate worker process so that a crash inside an
// image library or an external tool cannot take down the daemon. The
// daemon side speaks to the worker through SubprocessWorker; the worker
// side is implemented by Runner, which the daemon binary dispatches to
// when invoked in worker mode.
package decode
