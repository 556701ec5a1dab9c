package session

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/danmuck/i4/internal/observability"
	"github.com/danmuck/i4/internal/protocol/frame"
	"github.com/danmuck/i4/internal/protocol/packet"
)

// Conn is one framed I3 connection. Reads must come from a single
// goroutine; writes may come from several.
type Conn struct {
	cfg    Config
	conn   net.Conn
	reader *bufio.Reader

	wmu       sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

// Dial connects to an upstream router.
func Dial(ctx context.Context, addr string, cfg Config) (*Conn, error) {
	cfg = cfg.WithDefaults()
	dialer := net.Dialer{Timeout: cfg.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("session: dial %s: %w", addr, err)
	}
	return NewConn(conn, cfg), nil
}

// NewConn wraps an established stream.
func NewConn(conn net.Conn, cfg Config) *Conn {
	return &Conn{
		cfg:    cfg.WithDefaults(),
		conn:   conn,
		reader: bufio.NewReader(conn),
	}
}

// ReadFrame blocks until one whole frame has been buffered and returns it
// with its length prefix.
func (c *Conn) ReadFrame() ([]byte, error) {
	if c.cfg.ReadTimeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout)); err != nil {
			return nil, err
		}
	}
	b, err := frame.ReadFrame(c.reader, c.cfg.Limits)
	if err != nil {
		return nil, err
	}
	observability.RecordFrame(observability.DirectionIn, len(b))
	return b, nil
}

// ReadPacket reads and decodes one packet. A packet that is framed
// correctly but fails to parse is reported without breaking the stream;
// use frame.IsFatal to tell the two apart.
func (c *Conn) ReadPacket() (*packet.Packet, error) {
	b, err := c.ReadFrame()
	if err != nil {
		return nil, err
	}
	return packet.Decode(b)
}

// WritePacket sends one packet.
func (c *Conn) WritePacket(p *packet.Packet) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if c.cfg.WriteTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout)); err != nil {
			return err
		}
	}
	if err := frame.WriteFrame(c.conn, p.Bytes()); err != nil {
		return fmt.Errorf("session: write %s: %w", p.Type(), err)
	}
	observability.RecordFrame(observability.DirectionOut, p.Size())
	return nil
}

func (c *Conn) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

// Close closes the stream. It is safe to call more than once.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}
