package router

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/danmuck/i4/internal/config"
	"github.com/danmuck/i4/internal/protocol"
	"github.com/danmuck/i4/internal/protocol/frame"
	"github.com/danmuck/i4/internal/protocol/packet"
	"github.com/danmuck/i4/internal/protocol/session"
	"github.com/danmuck/i4/internal/testutil/testlog"
)

// fakeRouter accepts one connection and hands it to serve.
func fakeRouter(t *testing.T, serve func(net.Conn)) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		serve(conn)
	}()
	return ln.Addr().String()
}

func readPacket(conn net.Conn) (*packet.Packet, error) {
	raw, err := frame.ReadFrame(conn, frame.DefaultLimits())
	if err != nil {
		return nil, err
	}
	return packet.Decode(raw)
}

func testClient(t *testing.T, addr string) *Client {
	t.Helper()
	cfg := config.Default()
	cfg.UpstreamAddr = addr
	c, err := NewClient(cfg, session.DefaultConfig(), testlog.Start(t))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestClientHandshakeAndUnknownType(t *testing.T) {
	startup := make(chan *packet.Packet, 1)
	reply := make(chan *packet.Packet, 1)
	addr := fakeRouter(t, func(conn net.Conn) {
		p, err := readPacket(conn)
		if err != nil {
			return
		}
		startup <- p
		text := `({"startup-reply",5,"*dalet",0,"*i4",0,({({"*dalet","127.0.0.1 8787"})}),777})`
		for _, text := range []string{text, `({"tell",5,"Remote","bob","*i4","alice","hi"})`} {
			b, _ := frame.ToFrame(text)
			if _, err := conn.Write(b); err != nil {
				return
			}
		}
		if p, err := readPacket(conn); err == nil {
			reply <- p
		}
		_, _ = conn.Read(make([]byte, 1))
	})

	c := testClient(t, addr)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	select {
	case p := <-startup:
		if p.Type() != TypeStartupRequest {
			t.Fatalf("expected startup request, got %s", p)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("startup request not received")
	}

	select {
	case p := <-reply:
		code, _ := p.Field(6)
		if p.Type() != TypeError || code != protocol.String(ErrCodeUnknownType) {
			t.Fatalf("expected unk-type error, got %s", p)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("unk-type reply not received")
	}

	st := c.State().Snapshot()
	if !st.Connected || st.Password != 777 || len(st.Routers) != 1 {
		t.Fatalf("unexpected state: %+v", st)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean exit on cancel, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("run did not return after cancel")
	}
	if c.State().Snapshot().Connected {
		t.Fatalf("expected disconnected state")
	}
	if err := c.Send(nil); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestClientUpstreamClosed(t *testing.T) {
	addr := fakeRouter(t, func(conn net.Conn) {
		_, _ = readPacket(conn)
	})
	c := testClient(t, addr)
	err := c.Run(context.Background())
	if !errors.Is(err, ErrUpstreamClosed) {
		t.Fatalf("expected ErrUpstreamClosed, got %v", err)
	}
	if st := c.State().Snapshot(); st.Connected || st.LastError == "" {
		t.Fatalf("expected recorded failure, got %+v", st)
	}
}

func TestClientFatalFrame(t *testing.T) {
	addr := fakeRouter(t, func(conn net.Conn) {
		if _, err := readPacket(conn); err != nil {
			return
		}
		// Declares far more than the session limit allows.
		_, _ = conn.Write([]byte{0xff, 0xff, 0xff, 0xff})
		_, _ = conn.Read(make([]byte, 1))
	})
	c := testClient(t, addr)
	err := c.Run(context.Background())
	if !frame.IsFatal(err) {
		t.Fatalf("expected fatal framing error, got %v", err)
	}
}

func TestNewClientRequiresUpstream(t *testing.T) {
	cfg := config.Default()
	cfg.UpstreamAddr = " "
	if _, err := NewClient(cfg, session.DefaultConfig(), testlog.Start(t)); !errors.Is(err, ErrUpstreamAddrRequired) {
		t.Fatalf("expected ErrUpstreamAddrRequired, got %v", err)
	}
}
