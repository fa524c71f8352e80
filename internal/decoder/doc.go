// Package decoder runs the bus protocol state machine.
//
// Ownership boundary:
// - phase sequencing from attention to the closing stop bit
// - timing classification of every measured interval
// - emission of annotations and completed transactions
//
// Lifecycle order:
// - ATTENTION -> SYNC -> COMMAND -> STOP_CMD -> TLT -> START_DATA -> DATA -> STOP_DATA -> ATTENTION
//
// - a TLT mismatch ends a command-only transaction; its falling edge starts
// the next attention search.
//
// - any other mismatch returns to ATTENTION and drops the transaction in flight.
//
// Timing faults are never errors. They surface as Recovery values through
// the Recorder and Stats; the only hard failures are a missing samplerate
// and capture read errors.
package decoder
