// Package protocol owns the device wire contract and parsing primitives.
//
// Ownership boundary:
// - command header and envelope layout
// - frame/checksum primitives (subpackages)
// - response validation entry points
package protocol
