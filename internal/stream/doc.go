// Package stream runs the per-byte codec over whole blocks, readers and
// writers.
//
// Ownership boundary:
//   - header emission and in-band commands on the packing side
//   - end-of-input checks for unterminated lines
//   - run statistics and codec metrics
//
// The codec itself stays byte-at-a-time in internal/codec.
package stream
