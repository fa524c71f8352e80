// Package protocol owns the decoded bus vocabulary.
//
// Ownership boundary:
// - annotation categories and display rows
// - transaction model and command kinds
// - sink contracts consumed by the decoder
//
// Timing windows live in protocol/timing and fixed-width field accumulation
// in protocol/bitfield.
package protocol
