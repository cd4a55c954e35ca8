package linebuf

import "github.com/danmuck/meatpack/internal/protocol"

// Buffer is a fixed-capacity line buffer with a write cursor.
//
// A completed line stays readable through Bytes until the owner calls Begin
// on its next step; the clear is deferred rather than immediate.
type Buffer struct {
	data         []byte
	pos          int
	clearPending bool
}

// New allocates the backing array once. The buffer never grows.
func New(capacity int) *Buffer {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer{data: make([]byte, capacity)}
}

// Begin applies a clear armed by Complete.
func (b *Buffer) Begin() {
	if b.clearPending {
		b.Reset()
	}
}

// Complete arms a deferred clear for the next Begin.
func (b *Buffer) Complete() {
	b.clearPending = true
}

// ClearPending reports whether a completed line is waiting to be cleared.
func (b *Buffer) ClearPending() bool {
	return b.clearPending
}

// Reserve fails with ErrBufferFull unless n more bytes fit.
func (b *Buffer) Reserve(n int) error {
	if b.pos+n > len(b.data) {
		return protocol.ErrBufferFull
	}
	return nil
}

func (b *Buffer) Push(c byte) error {
	if b.pos >= len(b.data) {
		return protocol.ErrBufferFull
	}
	b.data[b.pos] = c
	b.pos++
	return nil
}

// Set overwrites an already written slot.
func (b *Buffer) Set(i int, c byte) {
	b.data[i] = c
}

func (b *Buffer) At(i int) byte {
	return b.data[i]
}

// Last returns the most recently written byte.
func (b *Buffer) Last() (byte, bool) {
	if b.pos == 0 {
		return 0, false
	}
	return b.data[b.pos-1], true
}

func (b *Buffer) Len() int { return b.pos }

func (b *Buffer) Cap() int { return len(b.data) }

// Bytes returns a view of the written bytes. The view is only valid until
// the buffer is next written or cleared.
func (b *Buffer) Bytes() []byte {
	return b.data[:b.pos:b.pos]
}

func (b *Buffer) Reset() {
	clear(b.data[:b.pos])
	b.pos = 0
	b.clearPending = false
}
