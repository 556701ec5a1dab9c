package router

import (
	"context"
	"errors"
	"testing"

	"github.com/danmuck/i4/internal/protocol"
	"github.com/danmuck/i4/internal/protocol/frame"
	"github.com/danmuck/i4/internal/protocol/packet"
	"github.com/danmuck/i4/internal/testutil/testlog"
)

func rawFrame(t *testing.T, text string) []byte {
	t.Helper()
	b, err := frame.ToFrame(text)
	if err != nil {
		t.Fatalf("to frame: %v", err)
	}
	return b
}

func TestDispatchRegisteredHandler(t *testing.T) {
	d := NewDispatcher("*i4", testlog.Start(t))
	var got string
	err := d.Register("tell", HandlerFunc(func(_ context.Context, p *packet.Packet) ([]*packet.Packet, error) {
		msg, _ := p.Field(6)
		got = protocol.NameOf(msg)
		return nil, nil
	}))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	replies, err := d.Handle(context.Background(), rawFrame(t, `({"tell",5,"Remote","bob","*i4","alice","hi there"})`))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(replies) != 0 || got != "hi there" {
		t.Fatalf("unexpected dispatch: replies=%d got=%q", len(replies), got)
	}
}

func TestRegisterRejectsDuplicate(t *testing.T) {
	d := NewDispatcher("*i4", testlog.Start(t))
	h := HandlerFunc(func(context.Context, *packet.Packet) ([]*packet.Packet, error) { return nil, nil })
	if err := d.Register("tell", h); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := d.Register("tell", h); !errors.Is(err, ErrHandlerExists) {
		t.Fatalf("expected ErrHandlerExists, got %v", err)
	}
	if err := d.Register(" ", h); !errors.Is(err, ErrTypeRequired) {
		t.Fatalf("expected ErrTypeRequired, got %v", err)
	}
	if err := d.Register("who", nil); !errors.Is(err, ErrHandlerNil) {
		t.Fatalf("expected ErrHandlerNil, got %v", err)
	}
}

func TestUnknownTypeAnswered(t *testing.T) {
	d := NewDispatcher("*i4", testlog.Start(t))
	replies, err := d.Handle(context.Background(), rawFrame(t, `({"tell",5,"Remote","bob","*i4","alice","hi"})`))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(replies) != 1 {
		t.Fatalf("expected one reply, got %d", len(replies))
	}
	env, err := replies[0].Envelope()
	if err != nil {
		t.Fatalf("reply envelope: %v", err)
	}
	if env.Type != TypeError || env.OriginMud != "*i4" || env.TargetMud != "Remote" || env.TargetUser != "bob" {
		t.Fatalf("unexpected reply envelope: %+v", env)
	}
	code, _ := replies[0].Field(6)
	if code != protocol.String(ErrCodeUnknownType) {
		t.Fatalf("expected unk-type, got %#v", code)
	}
	bad, _ := replies[0].Field(8)
	if _, ok := bad.(protocol.List); !ok {
		t.Fatalf("expected offending packet, got %#v", bad)
	}
}

func TestUnknownErrorNotAnswered(t *testing.T) {
	d := NewDispatcher("*i4", testlog.Start(t))
	replies, err := d.Handle(context.Background(), rawFrame(t, `({"error",5,"Remote",0,"*i4",0,"unk-type","x",0})`))
	if err != nil || len(replies) != 0 {
		t.Fatalf("expected silent drop, got replies=%d err=%v", len(replies), err)
	}
}

func TestMalformedPacketDropped(t *testing.T) {
	d := NewDispatcher("*i4", testlog.Start(t))
	for _, text := range []string{
		`({"tell",5,`,
		`"not a list"`,
		`({"short"})`,
		`({1,5,"Remote",0,"*i4",0})`,
	} {
		replies, err := d.Handle(context.Background(), rawFrame(t, text))
		if err != nil || len(replies) != 0 {
			t.Fatalf("%q: expected drop, got replies=%d err=%v", text, len(replies), err)
		}
	}
}

func TestFramingErrorReturned(t *testing.T) {
	d := NewDispatcher("*i4", testlog.Start(t))
	raw := rawFrame(t, `({"tell",5,"Remote",0,"*i4",0})`)
	_, err := d.Handle(context.Background(), raw[:len(raw)-3])
	if !frame.IsFatal(err) {
		t.Fatalf("expected fatal framing error, got %v", err)
	}
}

func TestHandlerErrorDiscarded(t *testing.T) {
	d := NewDispatcher("*i4", testlog.Start(t))
	_ = d.Register("tell", HandlerFunc(func(context.Context, *packet.Packet) ([]*packet.Packet, error) {
		return nil, errors.New("boom")
	}))
	replies, err := d.Handle(context.Background(), rawFrame(t, `({"tell",5,"Remote",0,"*i4",0})`))
	if err != nil || len(replies) != 0 {
		t.Fatalf("expected discarded handler error, got replies=%d err=%v", len(replies), err)
	}
}
