package gpsd

import (
	"context"
	"errors"
)

type streamItem struct {
	rep Report
	err error
}

// AsyncStream is the cooperative form of an active watch. A background
// goroutine pumps the underlying Stream into a channel; Recv honors
// context cancellation between items. Both forms deliver the identical
// sequence of reports and errors for identical input.
type AsyncStream struct {
	s     *Stream
	items chan streamItem
	stop  chan struct{}
}

func newAsyncStream(s *Stream) *AsyncStream {
	as := &AsyncStream{
		s:     s,
		items: make(chan streamItem),
		stop:  make(chan struct{}),
	}
	go as.run()
	return as
}

func (as *AsyncStream) run() {
	defer close(as.items)
	for {
		rep, err := as.s.Read()
		select {
		case as.items <- streamItem{rep: rep, err: err}:
		case <-as.stop:
			return
		}
		if err != nil && !isContinuable(err) {
			return
		}
	}
}

func isContinuable(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// Recv returns the next report or blocks until one arrives, the stream
// ends, or ctx is done. Error semantics match Stream.Read: a
// *DecodeError leaves the stream usable, ErrStreamDone marks clean
// exhaustion, anything else is terminal.
func (as *AsyncStream) Recv(ctx context.Context) (Report, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case item, ok := <-as.items:
		if !ok {
			return nil, ErrStreamDone
		}
		return item.rep, item.err
	}
}

// Close stops the pump and aborts the underlying stream. Safe to call
// while a Recv is blocked; the blocked call returns promptly.
func (as *AsyncStream) Close() error {
	select {
	case <-as.stop:
		return nil
	default:
	}
	close(as.stop)
	return as.s.Abort()
}
