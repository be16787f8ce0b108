package gpsd

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync/atomic"

	"github.com/phuslu/log"

	"nuha.dev/gpsdjson/internal/conn"
)

// The protocol revision this package speaks. A daemon with a different
// major or a newer minor may emit reports this package cannot represent.
const (
	protoMajor = 3
	protoMinor = 14
)

// Config carries optional client settings. The zero value is usable.
type Config struct {
	// Logger overrides the package default logger.
	Logger *log.Logger
	// SkipVersionCheck suppresses the greeting-banner protocol check.
	// The banner is still consumed.
	SkipVersionCheck bool
}

// Client drives one connection to a gpsd daemon. It owns the transport:
// request/response helpers and watch streams all share the single
// inbound line sequence, so at most one stream may be active at a time
// and helpers must not be called while one is.
type Client struct {
	rw        io.ReadWriteCloser
	lr        *lineReader
	log       log.Logger
	version   Version
	streaming int32
}

// Dial connects to a daemon over TCP and performs the greeting
// handshake. addr is host:port; gpsd listens on 2947 by default.
func Dial(addr string, cfg *Config) (*Client, error) {
	nc, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	c, err := Open(conn.Wrap(nc), cfg)
	if err != nil {
		nc.Close()
		return nil, err
	}
	return c, nil
}

// Open wraps an established transport. The daemon sends a VERSION
// banner on connect; Open consumes it and verifies the protocol
// revision unless the check is disabled.
func Open(rw io.ReadWriteCloser, cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	logger := log.DefaultLogger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	logger.Context = log.NewContext(logger.Context).Str("module", "gpsd").Value()

	c := &Client{
		rw:  rw,
		lr:  newLineReader(rw),
		log: logger,
	}
	if err := c.ensureVersion(cfg.SkipVersionCheck); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) ensureVersion(skip bool) error {
	rep, err := c.awaitClass("VERSION")
	if err != nil {
		return fmt.Errorf("reading greeting: %w", err)
	}
	v := rep.(Version)
	c.version = v
	c.log.Debug().Str("release", v.Release).
		Int("proto_major", v.ProtoMajor).Int("proto_minor", v.ProtoMinor).
		Msg("connected")
	if skip {
		return nil
	}
	if v.ProtoMajor != protoMajor || v.ProtoMinor > protoMinor {
		return &VersionMismatchError{ProtoMajor: v.ProtoMajor, ProtoMinor: v.ProtoMinor}
	}
	return nil
}

// ServerVersion reports the VERSION banner received at connect time.
func (c *Client) ServerVersion() Version { return c.version }

// Version queries the daemon's version on demand.
func (c *Client) Version() (Version, error) {
	rep, err := c.request(cmdVersion, "VERSION")
	if err != nil {
		return Version{}, err
	}
	return rep.(Version), nil
}

// Devices queries the daemon's device inventory.
func (c *Client) Devices() (Devices, error) {
	rep, err := c.request(cmdDevices, "DEVICES")
	if err != nil {
		return Devices{}, err
	}
	return rep.(Devices), nil
}

// Poll requests a snapshot of the current fix data. The daemon only
// answers usefully when a watch has been active on the connection.
func (c *Client) Poll() (Poll, error) {
	rep, err := c.request(cmdPoll, "POLL")
	if err != nil {
		return Poll{}, err
	}
	return rep.(Poll), nil
}

func (c *Client) request(cmd string, class string) (Report, error) {
	if atomic.LoadInt32(&c.streaming) != 0 {
		return nil, ErrStreamActive
	}
	if _, err := io.WriteString(c.rw, cmd); err != nil {
		return nil, err
	}
	return c.awaitClass(class)
}

// awaitClass reads until a report of the wanted class arrives.
// Undecodable lines are logged and skipped; other reports arriving in
// between are discarded.
func (c *Client) awaitClass(class string) (Report, error) {
	for {
		line, err := c.lr.next()
		if err != nil {
			if err == io.EOF {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
		rep, err := decodeJSON(line)
		if err != nil {
			var de *DecodeError
			if errors.As(err, &de) {
				c.log.Warn().Str("class", de.Class).Err(de.Cause).Msg("skipping undecodable line")
				continue
			}
			return nil, err
		}
		if rep.Class() == class {
			return rep, nil
		}
	}
}

// Stream enables a watch and returns its blocking form. The daemon's
// DEVICES and WATCH acknowledgments are delivered as the stream's first
// items rather than consumed here. At most one stream may be active;
// a second call before the first ends returns ErrStreamActive.
func (c *Client) Stream(opts StreamOptions) (*Stream, error) {
	if !atomic.CompareAndSwapInt32(&c.streaming, 0, 1) {
		return nil, ErrStreamActive
	}
	cmd, err := encodeWatch(opts.watch())
	if err != nil {
		atomic.StoreInt32(&c.streaming, 0)
		return nil, err
	}
	if _, err := c.rw.Write(cmd); err != nil {
		atomic.StoreInt32(&c.streaming, 0)
		return nil, err
	}
	c.log.Info().Str("mode", opts.mode.String()).Msg("watch enabled")
	return &Stream{
		c:       c,
		lr:      c.lr,
		mode:    opts.mode,
		hexDump: opts.hexDump,
		log:     c.log,
	}, nil
}

// AsyncStream enables a watch and returns its cooperative form.
func (c *Client) AsyncStream(opts StreamOptions) (*AsyncStream, error) {
	s, err := c.Stream(opts)
	if err != nil {
		return nil, err
	}
	return newAsyncStream(s), nil
}

func (c *Client) releaseStream() {
	atomic.StoreInt32(&c.streaming, 0)
}

// Close tears down the transport. Any active stream observes the close
// as a terminal error.
func (c *Client) Close() error {
	return c.rw.Close()
}
