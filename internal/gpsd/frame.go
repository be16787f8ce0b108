package gpsd

import (
	"bytes"
	"io"
)

// LineFramer splits an inbound byte stream into newline-terminated lines.
// Chunks may be split at arbitrary boundaries; a partial line is held in
// the accumulator until its terminator arrives. The framer carries no
// message-level state.
type LineFramer struct {
	buf []byte
}

// Feed appends one chunk to the accumulator.
func (f *LineFramer) Feed(p []byte) {
	f.buf = append(f.buf, p...)
}

// Next pops the earliest complete line with its terminator stripped
// (a trailing CR is stripped too). It reports false when no complete line
// is buffered.
func (f *LineFramer) Next() ([]byte, bool) {
	i := bytes.IndexByte(f.buf, '\n')
	if i < 0 {
		return nil, false
	}
	line := f.buf[:i]
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	out := make([]byte, len(line))
	copy(out, line)
	f.buf = f.buf[i+1:]
	return out, true
}

// Close reports the framing state at EOF. Unterminated trailing bytes are
// an error, never silently dropped. The accumulator is cleared so the
// error is reported once.
func (f *LineFramer) Close() error {
	if len(f.buf) > 0 {
		partial := f.buf
		f.buf = nil
		return &FramingError{Partial: partial}
	}
	return nil
}

// Pending reports the number of buffered bytes not yet forming a line.
func (f *LineFramer) Pending() int { return len(f.buf) }

// lineReader pulls chunks from a transport until the framer produces a
// line. The Read call is the stream's sole blocking point.
type lineReader struct {
	r      io.Reader
	framer LineFramer
	chunk  []byte
	eof    bool
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: r, chunk: make([]byte, 4096)}
}

// next returns the next complete line. io.EOF means the peer closed the
// stream cleanly; a *FramingError means it closed mid-line. Reads after
// either return io.EOF.
func (lr *lineReader) next() ([]byte, error) {
	for {
		if line, ok := lr.framer.Next(); ok {
			return line, nil
		}
		if lr.eof {
			if err := lr.framer.Close(); err != nil {
				return nil, err
			}
			return nil, io.EOF
		}
		n, err := lr.r.Read(lr.chunk)
		if n > 0 {
			lr.framer.Feed(lr.chunk[:n])
		}
		if err == io.EOF {
			lr.eof = true
		} else if err != nil {
			return nil, err
		}
	}
}
