package router

import (
	"github.com/danmuck/i4/internal/config"
	"github.com/danmuck/i4/internal/protocol"
	"github.com/danmuck/i4/internal/protocol/packet"
)

const (
	TypeStartupRequest = "startup-req-3"
	TypeStartupReply   = "startup-reply"
	TypeMudlist        = "mudlist"
	TypeError          = "error"
)

// Standard I3 error codes.
const (
	ErrCodeUnknownType = "unk-type"
	ErrCodeBadPacket   = "bad-pkt"
)

// StartupRequest builds the startup-req-3 packet announcing cfg to its
// upstream router.
func StartupRequest(cfg config.RouterConfig) (*packet.Packet, error) {
	services := make(protocol.Map, 0, len(cfg.Services))
	for _, name := range cfg.Services {
		services = services.Set(name, protocol.Int(1))
	}
	return packet.BuildOutbound(protocol.List{
		protocol.String(TypeStartupRequest),
		protocol.TTL,
		protocol.NameValue(cfg.RouterName),
		protocol.Int(0),
		protocol.NameValue(cfg.UpstreamName),
		protocol.Int(0),
		protocol.Int(cfg.Password),
		protocol.Int(cfg.MudlistID),
		protocol.Int(cfg.ChanlistID),
		protocol.Int(cfg.LoginPort),
		protocol.Int(cfg.I3TCPPort),
		protocol.Int(cfg.I3UDPPort),
		protocol.String(cfg.LibVersion),
		protocol.String(cfg.LibName),
		protocol.String(cfg.DriverVersion),
		protocol.String(cfg.MudType),
		protocol.String(cfg.OpenStatus),
		protocol.String(cfg.AdminEmail),
		services,
		protocol.Int(0),
	})
}

// ErrorPacket builds an I3 error packet from mud to targetMud/targetUser.
// bad is the offending packet data, or nil.
func ErrorPacket(mud, targetMud, targetUser, code, message string, bad protocol.Value) (*packet.Packet, error) {
	if bad == nil {
		bad = protocol.Int(0)
	}
	return packet.BuildOutbound(protocol.List{
		protocol.String(TypeError),
		protocol.TTL,
		protocol.NameValue(mud),
		protocol.Int(0),
		protocol.NameValue(targetMud),
		protocol.NameValue(targetUser),
		protocol.String(code),
		protocol.String(message),
		bad,
	})
}
