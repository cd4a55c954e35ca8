// Package codec implements the MeatPack packer and unpacker state machines.
//
// Both machines consume one byte per call, never allocate after
// construction, and expose completed lines as views into a fixed internal
// buffer. A returned line is valid until the next call on the same machine.
// Machines are not safe for concurrent use; use one per stream.
package codec
