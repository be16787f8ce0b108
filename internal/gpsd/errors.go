package gpsd

import (
	"errors"
	"fmt"
)

var (
	// ErrStreamActive is returned when a second stream is requested on a
	// connection that already has one. The protocol cannot be multiplexed
	// over a single connection.
	ErrStreamActive = errors.New("stream already active on this connection")

	// ErrStreamDone is returned by reads after a stream has ended.
	ErrStreamDone = errors.New("stream ended")
)

// FramingError reports bytes left unterminated when the peer closed the
// connection mid-line.
type FramingError struct {
	Partial []byte
}

func (e *FramingError) Error() string {
	return fmt.Sprintf("connection closed mid-line with %d unterminated bytes", len(e.Partial))
}

// DecodeError reports a line that could not be decoded. The stream stays
// readable after a DecodeError; only transport faults are terminal.
type DecodeError struct {
	Class string
	Raw   []byte
	Cause error
}

func (e *DecodeError) Error() string {
	if e.Class == "" {
		return fmt.Sprintf("decoding message: %v", e.Cause)
	}
	return fmt.Sprintf("decoding %s message: %v", e.Class, e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

// VersionMismatchError is returned by the handshake when the daemon speaks
// a protocol version this package does not support.
type VersionMismatchError struct {
	ProtoMajor int
	ProtoMinor int
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("unsupported gpsd protocol version %d.%d", e.ProtoMajor, e.ProtoMinor)
}
