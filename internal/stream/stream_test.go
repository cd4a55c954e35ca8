package stream

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/danmuck/meatpack/internal/protocol"
	"github.com/danmuck/meatpack/internal/testutil/testlog"
	"github.com/stretchr/testify/require"
)

const sampleGcode = "M73 P0 R3\n" +
	"M73 Q0 S3 ; Hello\n" +
	"M201 X4000 Y4000 Z200 E2500\n" +
	"M203 X300 Y300 Z40 E100\n" +
	"M204 P4000 R1200 T4000\n"

func header() []byte {
	return append([]byte(nil), protocol.Header[:]...)
}

func TestPackBytesConcreteLine(t *testing.T) {
	testlog.Start(t)

	out, stats, err := PackBytes([]byte("M73 P0 R3\n"), PackConfig{})
	require.NoError(t, err)
	want := append(header(), 0x7F, 'M', 0xB3, 0x0F, 'P', 0xFB, 'R', 0xC3)
	require.Equal(t, want, out)
	require.Equal(t, Stats{Lines: 1, BytesIn: 10, BytesOut: 11}, stats)

	back, _, err := UnpackBytes(out, UnpackConfig{})
	require.NoError(t, err)
	require.Equal(t, "M73 P0 R3\n", string(back))
}

func TestPackBytesEmptyInputIsHeaderOnly(t *testing.T) {
	out, stats, err := PackBytes(nil, PackConfig{})
	require.NoError(t, err)
	require.Equal(t, header(), out)
	require.Zero(t, stats.Lines)
}

func TestPackBytesStripWhitespaceAddsNoSpacesHeader(t *testing.T) {
	out, _, err := PackBytes([]byte(sampleGcode), PackConfig{StripComments: true, StripWhitespace: true})
	require.NoError(t, err)
	require.Equal(t, protocol.NoSpacesHeader[:], out[3:6])

	back, stats, err := UnpackBytes(out, UnpackConfig{})
	require.NoError(t, err)
	require.Equal(t, int64(5), stats.Lines)
	require.Equal(t, "M73P0R3\nM73Q0S3\nM201X4000Y4000Z200E2500\nM203X300Y300Z40E100\nM204P4000R1200T4000\n", string(back))
}

func TestPackBytesUnterminated(t *testing.T) {
	_, _, err := PackBytes([]byte("G28"), PackConfig{})
	require.ErrorIs(t, err, protocol.ErrUnterminatedLine)
	require.Equal(t, "unterminated_line", ErrorKind(err))
	require.True(t, IsProtocolError(err))
}

func TestPackBytesBufferFull(t *testing.T) {
	_, _, err := PackBytes([]byte("G1 X10 Y10 Z10\n"), PackConfig{BufferSize: 4})
	require.ErrorIs(t, err, protocol.ErrBufferFull)
}

func TestUnpackBytesErrors(t *testing.T) {
	_, _, err := UnpackBytes(append(header(), 255, 255, 10), UnpackConfig{})
	require.ErrorIs(t, err, protocol.ErrInvalidCommandByte)
	require.Equal(t, "invalid_command", ErrorKind(err))

	_, _, err = UnpackBytes(append(header(), protocol.Pack(0b1101, 2)), UnpackConfig{})
	require.ErrorIs(t, err, protocol.ErrUnterminatedLine)
}

func TestUnpackBytesPassThrough(t *testing.T) {
	out, stats, err := UnpackBytes([]byte(sampleGcode), UnpackConfig{})
	require.NoError(t, err)
	require.Equal(t, sampleGcode, string(out))
	require.Equal(t, 1.0, stats.Ratio())
}

func TestEncoderMatchesPackBytes(t *testing.T) {
	want, _, err := PackBytes([]byte(sampleGcode), PackConfig{})
	require.NoError(t, err)

	var buf bytes.Buffer
	enc := NewEncoder(&buf, PackConfig{})
	for _, chunk := range strings.SplitAfter(sampleGcode, " ") {
		n, err := enc.Write([]byte(chunk))
		require.NoError(t, err)
		require.Equal(t, len(chunk), n)
	}
	require.NoError(t, enc.Close())
	require.Equal(t, want, buf.Bytes())
	require.Equal(t, int64(5), enc.Stats().Lines)
	require.Equal(t, int64(len(sampleGcode)), enc.Stats().BytesIn)
	require.Equal(t, int64(len(want)), enc.Stats().BytesOut)

	_, err = enc.Write([]byte("G1\n"))
	require.ErrorIs(t, err, ErrClosed)
	require.NoError(t, enc.Close())
}

func TestEncoderCloseWritesHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewEncoder(&buf, PackConfig{}).Close())
	require.Equal(t, header(), buf.Bytes())
}

func TestEncoderCloseReportsUnterminated(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf, PackConfig{})
	_, err := enc.Write([]byte("G1\nG2"))
	require.NoError(t, err)
	require.ErrorIs(t, enc.Close(), protocol.ErrUnterminatedLine)
}

func TestEncoderCommands(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf, PackConfig{})
	_, err := enc.Write([]byte("G1\n"))
	require.NoError(t, err)
	require.NoError(t, enc.WriteCommand(protocol.NoSpacesEnabled))
	_, err = enc.Write([]byte("E1\n"))
	require.NoError(t, err)
	require.NoError(t, enc.WriteCommand(protocol.ResetAll))
	_, err = enc.Write([]byte("G2 E3\n"))
	require.NoError(t, err)
	require.NoError(t, enc.Close())

	out, stats, err := UnpackBytes(buf.Bytes(), UnpackConfig{})
	require.NoError(t, err)
	require.Equal(t, "G1\nE1\nG2 E3\n", string(out))
	require.Equal(t, int64(3), stats.Lines)
}

func TestEncoderCommandMidPairFails(t *testing.T) {
	enc := NewEncoder(io.Discard, PackConfig{})
	_, err := enc.Write([]byte("G"))
	require.NoError(t, err)
	require.ErrorIs(t, enc.WriteCommand(protocol.NoSpacesEnabled), protocol.ErrInvalidState)
}

type failWriter struct{ err error }

func (w failWriter) Write([]byte) (int, error) { return 0, w.err }

func TestEncoderWriteError(t *testing.T) {
	boom := errors.New("boom")
	enc := NewEncoder(failWriter{err: boom}, PackConfig{})
	_, err := enc.Write([]byte("G1\n"))
	require.ErrorIs(t, err, boom)
	require.Equal(t, "io", ErrorKind(err))
	require.False(t, IsProtocolError(err))
}

func TestScannerLines(t *testing.T) {
	packed, _, err := PackBytes([]byte(sampleGcode), PackConfig{})
	require.NoError(t, err)

	sc := NewScanner(iotest.HalfReader(bytes.NewReader(packed)), UnpackConfig{})
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	require.NoError(t, sc.Err())
	require.Equal(t, strings.SplitAfter(sampleGcode, "\n")[:5], lines)
	require.Equal(t, int64(len(packed)), sc.Stats().BytesIn)
	require.False(t, sc.NoSpaces())
}

func TestScannerErrors(t *testing.T) {
	sc := NewScanner(bytes.NewReader(append(header(), protocol.Pack(0b1101, 2))), UnpackConfig{})
	require.False(t, sc.Scan())
	require.ErrorIs(t, sc.Err(), protocol.ErrUnterminatedLine)
	require.Nil(t, sc.Bytes())

	sc = NewScanner(iotest.ErrReader(io.ErrUnexpectedEOF), UnpackConfig{})
	require.False(t, sc.Scan())
	require.ErrorIs(t, sc.Err(), io.ErrUnexpectedEOF)
	require.False(t, sc.Scan())
}

func TestStreamRoundTrip(t *testing.T) {
	testlog.Start(t)
	ctx := context.Background()

	var packed bytes.Buffer
	pstats, err := PackStream(ctx, &packed, strings.NewReader(sampleGcode), PackConfig{})
	require.NoError(t, err)
	require.Equal(t, int64(5), pstats.Lines)
	require.Less(t, pstats.Ratio(), 1.0)

	var out bytes.Buffer
	ustats, err := UnpackStream(ctx, &out, &packed, UnpackConfig{})
	require.NoError(t, err)
	require.Equal(t, sampleGcode, out.String())
	require.Equal(t, pstats.BytesOut, ustats.BytesIn)
	require.Equal(t, pstats.BytesIn, ustats.BytesOut)
}

func TestStreamCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := PackStream(ctx, io.Discard, strings.NewReader(sampleGcode), PackConfig{})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, "canceled", ErrorKind(err))

	packed, _, err := PackBytes([]byte(sampleGcode), PackConfig{})
	require.NoError(t, err)
	_, err = UnpackStream(ctx, io.Discard, bytes.NewReader(packed), UnpackConfig{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestCommentFilter(t *testing.T) {
	in := "G1 ; move\n; whole line comment\nG2\n"
	out, err := io.ReadAll(NewCommentFilter(iotest.OneByteReader(strings.NewReader(in))))
	require.NoError(t, err)
	require.Equal(t, "G1 \n\nG2\n", string(out))
}

type closer struct{ err error }

func (c closer) Close() error { return c.err }

func TestCloseAll(t *testing.T) {
	require.NoError(t, CloseAll(closer{}, nil))

	err := CloseAll(closer{err: errors.New("first")}, closer{}, closer{err: errors.New("second")})
	require.Error(t, err)
	require.Contains(t, err.Error(), "first")
	require.Contains(t, err.Error(), "second")
}

func TestErrorKind(t *testing.T) {
	require.Empty(t, ErrorKind(nil))
	require.Equal(t, "buffer_full", ErrorKind(protocol.ErrBufferFull))
	require.Equal(t, "invalid_byte", ErrorKind(protocol.ErrInvalidByte))
	require.Equal(t, "invalid_state", ErrorKind(protocol.ErrInvalidState))
	require.Equal(t, "closed", ErrorKind(ErrClosed))
}
