// Package conn wraps a network connection with byte accounting and a
// connection id for log correlation.
package conn

import (
	"net"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

var nextCid uint64

type Conn struct {
	conn     net.Conn
	closed   uint32
	raddr    string
	cid      uint64
	created  time.Time
	byte_in  uint64
	byte_out uint64
	logger   zerolog.Logger
}

// Wrap takes ownership of conn and assigns it a process-unique cid.
func Wrap(conn net.Conn) *Conn {
	return WrapWithLogger(conn, zlog.Logger)
}

func WrapWithLogger(conn net.Conn, logger zerolog.Logger) *Conn {
	o := &Conn{conn: conn, raddr: conn.RemoteAddr().String()}
	o.cid = atomic.AddUint64(&nextCid, 1)
	o.created = time.Now()
	o.logger = logger.With().Str("module", "conn").Logger()
	o.logger.Debug().Str("remote_address", o.raddr).Uint64("cid", o.cid).Msg("connection created")
	return o
}

func (c *Conn) Read(p []byte) (int, error) {
	n, err := c.conn.Read(p)
	atomic.AddUint64(&c.byte_in, uint64(n))
	return n, err
}

func (c *Conn) Write(d []byte) (int, error) {
	n, err := c.conn.Write(d)
	atomic.AddUint64(&c.byte_out, uint64(n))
	return n, err
}

// Close is idempotent; only the first call reaches the underlying
// connection.
func (c *Conn) Close() error {
	if !atomic.CompareAndSwapUint32(&c.closed, 0, 1) {
		return nil
	}
	err := c.conn.Close()
	c.logger.Debug().Uint64("byte_in", atomic.LoadUint64(&c.byte_in)).
		Uint64("byte_out", atomic.LoadUint64(&c.byte_out)).
		Uint64("cid", c.cid).Msg("connection closed")
	return err
}

func (c *Conn) Closed() bool {
	return atomic.LoadUint32(&c.closed) == 1
}

func (c *Conn) Stat() (byte_in uint64, byte_out uint64) {
	return atomic.LoadUint64(&c.byte_in), atomic.LoadUint64(&c.byte_out)
}

func (c *Conn) Cid() uint64 {
	return c.cid
}

func (c *Conn) RemoteAddr() string {
	return c.raddr
}

func (c *Conn) Created() time.Time {
	return c.created
}

func (c *Conn) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}
