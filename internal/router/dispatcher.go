package router

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/danmuck/i4/internal/observability"
	"github.com/danmuck/i4/internal/protocol/frame"
	"github.com/danmuck/i4/internal/protocol/packet"
	"github.com/rs/zerolog"
)

var (
	ErrHandlerExists = errors.New("router: handler already registered")
	ErrHandlerNil    = errors.New("router: handler is nil")
	ErrTypeRequired  = errors.New("router: packet type required")
)

// Handler serves one inbound packet and returns any packets to send back.
type Handler interface {
	ServePacket(ctx context.Context, p *packet.Packet) ([]*packet.Packet, error)
}

type HandlerFunc func(ctx context.Context, p *packet.Packet) ([]*packet.Packet, error)

func (f HandlerFunc) ServePacket(ctx context.Context, p *packet.Packet) ([]*packet.Packet, error) {
	return f(ctx, p)
}

// Dispatcher routes inbound packets to handlers by type string.
type Dispatcher struct {
	mud    string
	logger zerolog.Logger

	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewDispatcher creates an empty dispatcher answering as mud.
func NewDispatcher(mud string, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		mud:      mud,
		logger:   logger.With().Str("component", "router.dispatcher").Logger(),
		handlers: make(map[string]Handler),
	}
}

// Register binds h to packets of type typ.
func (d *Dispatcher) Register(typ string, h Handler) error {
	typ = strings.TrimSpace(typ)
	if typ == "" {
		return ErrTypeRequired
	}
	if h == nil {
		return ErrHandlerNil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.handlers[typ]; ok {
		return fmt.Errorf("%w: %s", ErrHandlerExists, typ)
	}
	d.handlers[typ] = h
	return nil
}

// Handle decodes one raw frame and dispatches it. Only errors that leave
// the stream unusable are returned; a malformed packet is logged and
// dropped.
func (d *Dispatcher) Handle(ctx context.Context, raw []byte) ([]*packet.Packet, error) {
	p, err := packet.Decode(raw)
	if err != nil {
		kind := packet.ErrorKind(err)
		observability.RecordCodecError(kind)
		if frame.IsFatal(err) {
			return nil, err
		}
		d.logger.Warn().Err(err).Str("kind", kind).Int("size", len(raw)).Msg("drop undecodable packet")
		return nil, nil
	}
	return d.Dispatch(ctx, p)
}

// Dispatch runs the handler registered for p's type. Unknown types are
// answered with an unk-type error to the originator.
func (d *Dispatcher) Dispatch(ctx context.Context, p *packet.Packet) ([]*packet.Packet, error) {
	env, err := p.Envelope()
	if err != nil {
		observability.RecordCodecError(packet.ErrorKind(err))
		d.logger.Warn().Err(err).Msg("drop packet without envelope")
		return nil, nil
	}
	d.mu.RLock()
	h, ok := d.handlers[env.Type]
	d.mu.RUnlock()
	if !ok {
		observability.RecordPacket(observability.DirectionIn, "unknown")
		return d.unknownType(p, env.Type, env.OriginMud, env.OriginUser)
	}
	observability.RecordPacket(observability.DirectionIn, env.Type)

	replies, err := h.ServePacket(ctx, p)
	if err != nil {
		d.logger.Warn().Err(err).
			Str("type", env.Type).
			Str("origin_mud", env.OriginMud).
			Msg("handler failed")
		return nil, nil
	}
	return replies, nil
}

func (d *Dispatcher) unknownType(p *packet.Packet, typ, originMud, originUser string) ([]*packet.Packet, error) {
	d.logger.Debug().Str("type", typ).Str("origin_mud", originMud).Msg("unknown packet type")
	// Never answer an error with an error.
	if typ == TypeError || originMud == "" {
		return nil, nil
	}
	reply, err := ErrorPacket(d.mud, originMud, originUser, ErrCodeUnknownType,
		fmt.Sprintf("unknown packet type %q", typ), p.Data())
	if err != nil {
		d.logger.Warn().Err(err).Str("type", typ).Msg("build unk-type reply")
		return nil, nil
	}
	observability.RecordPacket(observability.DirectionOut, reply.Type())
	return []*packet.Packet{reply}, nil
}
