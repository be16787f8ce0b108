package gpsd

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/phuslu/log"
)

// Stream is the blocking form of an active watch. Read delivers one
// report per call in wire order. A Stream is not safe for concurrent
// Read calls; wrap it in an AsyncStream for channel-based consumption.
type Stream struct {
	c       *Client
	lr      *lineReader
	mode    Mode
	hexDump bool
	log     log.Logger

	// done is set by the reading goroutine on EOF and faults, and by
	// Abort, possibly from another goroutine. Atomic for that reason.
	done     uint32
	finished sync.Once
}

// Read returns the next report. Decode failures come back as a
// *DecodeError and leave the stream usable; the broken line is carried
// in the error and the next call resumes at the following line. A
// framing fault at EOF or a transport fault is reported once, then the
// stream is done. After the stream ends every call returns
// ErrStreamDone.
func (s *Stream) Read() (Report, error) {
	if atomic.LoadUint32(&s.done) == 1 {
		return nil, ErrStreamDone
	}
	for {
		line, err := s.lr.next()
		if err != nil {
			return nil, s.terminate(err)
		}
		if len(bytes.TrimSpace(line)) == 0 {
			// keep-alive
			continue
		}
		rep, err := decodeLine(s.mode, s.hexDump, line)
		if err != nil {
			var de *DecodeError
			if errors.As(err, &de) {
				s.log.Debug().Str("class", de.Class).Err(de.Cause).Msg("undecodable line")
			}
			return nil, err
		}
		return rep, nil
	}
}

// terminate records the end of the stream. Framing and transport
// faults are handed to the caller once; clean EOF becomes ErrStreamDone
// directly.
func (s *Stream) terminate(err error) error {
	atomic.StoreUint32(&s.done, 1)
	s.finish()
	var fe *FramingError
	if errors.As(err, &fe) {
		s.log.Warn().Int("partial", len(fe.Partial)).Msg("stream closed mid-line")
		return err
	}
	if err == io.EOF {
		return ErrStreamDone
	}
	s.log.Error().Err(err).Msg("transport failed")
	return err
}

func (s *Stream) finish() {
	s.finished.Do(func() { s.c.releaseStream() })
}

// Close disables the watch and drains the stream until the daemon
// acknowledges, discarding reports in flight. The connection stays open
// and the client can start a new stream afterwards. In NMEA and raw
// modes the daemon's acknowledgment is not observable between
// passthrough lines, so Close tears the transport down instead.
func (s *Stream) Close() error {
	if atomic.LoadUint32(&s.done) == 1 {
		return nil
	}
	if s.mode != ModeJSON {
		return s.Abort()
	}
	if _, err := s.c.rw.Write(encodeWatchOff()); err != nil {
		atomic.StoreUint32(&s.done, 1)
		s.finish()
		return err
	}
	for {
		rep, err := s.Read()
		if err != nil {
			if errors.Is(err, ErrStreamDone) {
				return nil
			}
			var de *DecodeError
			if errors.As(err, &de) {
				continue
			}
			return err
		}
		if w, ok := rep.(Watch); ok && w.Enable != nil && !*w.Enable {
			atomic.StoreUint32(&s.done, 1)
			s.finish()
			return nil
		}
	}
}

// Abort ends the stream by closing the transport. Reports in flight are
// lost and the client is unusable afterwards.
func (s *Stream) Abort() error {
	atomic.StoreUint32(&s.done, 1)
	s.finish()
	return s.c.rw.Close()
}
