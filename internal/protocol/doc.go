// Package protocol owns the MeatPack wire contract.
//
// Ownership boundary:
// - nibble table (4-bit code <-> character, no-spaces aware)
// - in-band command bytes and the header sequences
// - error taxonomy shared by the packer and unpacker
//
// Byte order: the first character processed occupies the low nibble of a
// packed byte and the second occupies the high nibble.
package protocol
