package gpsd

import (
	"errors"
	"io"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectLines(f *LineFramer) []string {
	var out []string
	for {
		line, ok := f.Next()
		if !ok {
			return out
		}
		out = append(out, string(line))
	}
}

func TestFramerSplitLines(t *testing.T) {
	f := &LineFramer{}
	f.Feed([]byte("alpha\nbeta\r\ngam"))
	assert.Equal(t, []string{"alpha", "beta"}, collectLines(f))
	assert.Equal(t, 3, f.Pending())

	f.Feed([]byte("ma\n"))
	assert.Equal(t, []string{"gamma"}, collectLines(f))
	assert.Equal(t, 0, f.Pending())
	assert.NoError(t, f.Close())
}

func TestFramerChunkBoundaryInvariance(t *testing.T) {
	input := "{\"class\":\"TPV\"}\r\n\n$GPGGA,foo*42\n{\"class\":\"SKY\"}\n"
	want := func() []string {
		f := &LineFramer{}
		f.Feed([]byte(input))
		return collectLines(f)
	}()

	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 50; trial++ {
		f := &LineFramer{}
		var got []string
		rest := []byte(input)
		for len(rest) > 0 {
			n := 1 + rng.Intn(len(rest))
			f.Feed(rest[:n])
			rest = rest[n:]
			got = append(got, collectLines(f)...)
		}
		require.Equal(t, want, got, "trial %d", trial)
		require.NoError(t, f.Close())
	}
}

func TestFramerOneByteAtATime(t *testing.T) {
	input := "first\nsecond\n"
	f := &LineFramer{}
	var got []string
	for i := 0; i < len(input); i++ {
		f.Feed([]byte{input[i]})
		got = append(got, collectLines(f)...)
	}
	assert.Equal(t, []string{"first", "second"}, got)
}

func TestFramerCloseMidLine(t *testing.T) {
	f := &LineFramer{}
	f.Feed([]byte("complete\npart"))
	assert.Equal(t, []string{"complete"}, collectLines(f))

	err := f.Close()
	var fe *FramingError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, []byte("part"), fe.Partial)

	// reported once
	assert.NoError(t, f.Close())
}

func TestFramerEmptyLines(t *testing.T) {
	f := &LineFramer{}
	f.Feed([]byte("\n\r\nx\n"))
	assert.Equal(t, []string{"", "", "x"}, collectLines(f))
}

func TestLineReaderCleanEOF(t *testing.T) {
	lr := newLineReader(strings.NewReader("one\ntwo\n"))

	line, err := lr.next()
	require.NoError(t, err)
	assert.Equal(t, "one", string(line))

	line, err = lr.next()
	require.NoError(t, err)
	assert.Equal(t, "two", string(line))

	_, err = lr.next()
	assert.Equal(t, io.EOF, err)
	_, err = lr.next()
	assert.Equal(t, io.EOF, err)
}

func TestLineReaderEOFMidLine(t *testing.T) {
	lr := newLineReader(strings.NewReader("one\ntrunc"))

	line, err := lr.next()
	require.NoError(t, err)
	assert.Equal(t, "one", string(line))

	_, err = lr.next()
	var fe *FramingError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, []byte("trunc"), fe.Partial)

	_, err = lr.next()
	assert.Equal(t, io.EOF, err)
}

type failingReader struct {
	data []byte
	err  error
}

func (r *failingReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, r.err
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestLineReaderTransportError(t *testing.T) {
	boom := errors.New("boom")
	lr := newLineReader(&failingReader{data: []byte("one\n"), err: boom})

	line, err := lr.next()
	require.NoError(t, err)
	assert.Equal(t, "one", string(line))

	_, err = lr.next()
	assert.Equal(t, boom, err)
}
