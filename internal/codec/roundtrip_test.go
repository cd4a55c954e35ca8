package codec

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/danmuck/meatpack/internal/protocol"
)

const sampleGcode = "M73 P0 R3\n" +
	"M73 Q0 S3 ; Hello\n" +
	"M201 X4000 Y4000 Z200 E2500\n" +
	"M203 X300 Y300 Z40 E100\n" +
	"M204 P4000 R1200 T4000\n"

func roundTrip(t *testing.T, input []byte, opts ...PackerOption) []byte {
	t.Helper()
	p := NewPacker(128, opts...)
	packed := append([]byte(nil), protocol.Header[:]...)
	if p.NoSpaces() {
		packed = append(packed, protocol.NoSpacesHeader[:]...)
	}
	packed = append(packed, packAll(t, p, input)...)
	if p.DataRemains() {
		t.Fatalf("packer holds data after %q", input)
	}

	u := NewUnpacker(128)
	out := unpackAll(t, u, packed)
	if u.DataRemains() {
		t.Fatalf("unpacker holds data after %q", input)
	}
	return out
}

func TestRoundTripInputs(t *testing.T) {
	inputs := []string{
		sampleGcode,
		"M73 P0 R3\n",
		"!\n",
		"!?\n",
		"abc\n",
		"1!\n",
		"X\n",
		"G\n",
		"\tG1 X10.5\r\n",
		"M117 25\xc2\xb0C\n",
		"G1 E-2.5 F2400\n",
	}
	for _, in := range inputs {
		if got := roundTrip(t, []byte(in)); string(got) != in {
			t.Fatalf("round-trip mismatch:\n got=%q\nwant=%q", got, in)
		}
		if got := roundTrip(t, []byte(in), WithNoSpaces(true)); string(got) != in {
			t.Fatalf("no-spaces round-trip mismatch:\n got=%q\nwant=%q", got, in)
		}
	}
}

func TestRoundTripRandomLines(t *testing.T) {
	rng := rand.New(rand.NewSource(345))
	const alphabet = "0123456789. EGX"

	var input []byte
	for line := 0; line < 200; line++ {
		n := 1 + rng.Intn(40)
		for i := 0; i < n; i++ {
			if rng.Intn(3) == 0 {
				// any byte except the newline and the signal byte
				b := byte(rng.Intn(254))
				if b == '\n' {
					b = 'T'
				}
				input = append(input, b)
				continue
			}
			input = append(input, alphabet[rng.Intn(len(alphabet))])
		}
		input = append(input, '\n')
	}

	if got := roundTrip(t, input); !bytes.Equal(got, input) {
		t.Fatalf("random round-trip mismatch")
	}
	if got := roundTrip(t, input, WithNoSpaces(true)); !bytes.Equal(got, input) {
		t.Fatalf("random no-spaces round-trip mismatch")
	}
}

func TestRoundTripModeToggleMidStream(t *testing.T) {
	p := NewPacker(32)
	packed := append([]byte(nil), protocol.Header[:]...)
	packed = append(packed, packAll(t, p, []byte("G1 E1\n"))...)

	if err := p.Apply(protocol.NoSpacesEnabled); err != nil {
		t.Fatalf("apply: %v", err)
	}
	seq := protocol.Sequence(protocol.NoSpacesEnabled)
	packed = append(packed, seq[:]...)
	packed = append(packed, packAll(t, p, []byte("E12 3\n"))...)

	if err := p.Apply(protocol.NoSpacesDisabled); err != nil {
		t.Fatalf("apply: %v", err)
	}
	seq = protocol.Sequence(protocol.NoSpacesDisabled)
	packed = append(packed, seq[:]...)
	packed = append(packed, packAll(t, p, []byte("E12 3\n"))...)

	got := unpackAll(t, NewUnpacker(32), packed)
	if string(got) != "G1 E1\nE12 3\nE12 3\n" {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestRoundTripStripOptionsAreLossy(t *testing.T) {
	got := roundTrip(t, []byte(sampleGcode), WithStripComments(true))
	want := "M73 P0 R3\n" +
		"M73 Q0 S3 \n" +
		"M201 X4000 Y4000 Z200 E2500\n" +
		"M203 X300 Y300 Z40 E100\n" +
		"M204 P4000 R1200 T4000\n"
	if string(got) != want {
		t.Fatalf("strip comments:\n got=%q\nwant=%q", got, want)
	}

	got = roundTrip(t, []byte(sampleGcode), WithStripComments(true), WithStripWhitespace(true))
	want = "M73P0R3\n" +
		"M73Q0S3\n" +
		"M201X4000Y4000Z200E2500\n" +
		"M203X300Y300Z40E100\n" +
		"M204P4000R1200T4000\n"
	if string(got) != want {
		t.Fatalf("strip comments and whitespace:\n got=%q\nwant=%q", got, want)
	}
}

func TestPackedIsSmallerForDenseGcode(t *testing.T) {
	in := []byte("G1 X10.5 Y20.25 E0.125\nG1 X11.5 Y21.25 E0.250\n")
	packed := packAll(t, NewPacker(64, WithNoSpaces(false)), in)
	if len(packed) >= len(in) {
		t.Fatalf("expected compression: in=%d packed=%d", len(in), len(packed))
	}
}
