package router

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/danmuck/i4/internal/protocol"
	"github.com/danmuck/i4/internal/protocol/packet"
	"github.com/rs/zerolog"
)

// Field offsets past the envelope.
const (
	fieldRouterList = 6
	fieldPassword   = 7
	fieldMudlistID  = 6
	fieldMudlist    = 7
	fieldErrCode    = 6
	fieldErrMessage = 7
)

// RouterEntry is one router offered in startup-reply.
type RouterEntry struct {
	Name string `json:"name"`
	Addr string `json:"addr"`
}

// Status is a point-in-time copy of State.
type Status struct {
	Upstream    string        `json:"upstream"`
	Connected   bool          `json:"connected"`
	ConnectedAt *time.Time    `json:"connected_at,omitempty"`
	Password    int64         `json:"password"`
	MudlistID   int64         `json:"mudlist_id"`
	Muds        []string      `json:"muds"`
	Routers     []RouterEntry `json:"routers"`
	LastError   string        `json:"last_error,omitempty"`
}

// State is what the upstream router has told us so far.
type State struct {
	mu          sync.RWMutex
	upstream    string
	connected   bool
	connectedAt time.Time
	password    int64
	mudlistID   int64
	muds        map[string]struct{}
	routers     []RouterEntry
	lastError   string

	logger zerolog.Logger
}

func NewState(upstream string, password, mudlistID int64, logger zerolog.Logger) *State {
	return &State{
		upstream:  upstream,
		password:  password,
		mudlistID: mudlistID,
		muds:      make(map[string]struct{}),
		logger:    logger.With().Str("component", "router.state").Logger(),
	}
}

// Snapshot copies the current state.
func (s *State) Snapshot() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Status{
		Upstream:  s.upstream,
		Connected: s.connected,
		Password:  s.password,
		MudlistID: s.mudlistID,
		Muds:      make([]string, 0, len(s.muds)),
		Routers:   append([]RouterEntry(nil), s.routers...),
		LastError: s.lastError,
	}
	if s.connected {
		at := s.connectedAt
		st.ConnectedAt = &at
	}
	for name := range s.muds {
		st.Muds = append(st.Muds, name)
	}
	sort.Strings(st.Muds)
	return st
}

func (s *State) setConnected(at time.Time) {
	s.mu.Lock()
	s.connected = true
	s.connectedAt = at
	s.lastError = ""
	s.mu.Unlock()
}

func (s *State) setDisconnected(err error) {
	s.mu.Lock()
	s.connected = false
	if err != nil {
		s.lastError = err.Error()
	}
	s.mu.Unlock()
}

// Register binds the handlers that keep State current.
func (s *State) Register(d *Dispatcher) error {
	handlers := map[string]Handler{
		TypeStartupReply: HandlerFunc(s.handleStartupReply),
		TypeMudlist:      HandlerFunc(s.handleMudlist),
		TypeError:        HandlerFunc(s.handleError),
	}
	for _, typ := range []string{TypeStartupReply, TypeMudlist, TypeError} {
		if err := d.Register(typ, handlers[typ]); err != nil {
			return err
		}
	}
	return nil
}

// handleStartupReply reads ({"startup-reply",5,router,0,mud,0,router_list,password}).
func (s *State) handleStartupReply(_ context.Context, p *packet.Packet) ([]*packet.Packet, error) {
	rawList, _ := p.Field(fieldRouterList)
	list, ok := rawList.(protocol.List)
	if !ok {
		return nil, fmt.Errorf("startup-reply: router list is %s", protocol.KindOf(rawList))
	}
	routers := make([]RouterEntry, 0, len(list))
	for i, item := range list {
		entry, ok := item.(protocol.List)
		if !ok || len(entry) < 2 {
			return nil, fmt.Errorf("startup-reply: router entry %d malformed", i)
		}
		routers = append(routers, RouterEntry{
			Name: protocol.NameOf(entry[0]),
			Addr: protocol.NameOf(entry[1]),
		})
	}
	rawPassword, _ := p.Field(fieldPassword)
	password, ok := rawPassword.(protocol.Int)
	if !ok {
		return nil, fmt.Errorf("startup-reply: password is %s", protocol.KindOf(rawPassword))
	}

	s.mu.Lock()
	s.routers = routers
	s.password = int64(password)
	s.mu.Unlock()
	s.logger.Info().Int("routers", len(routers)).Msg("startup-reply accepted")
	return nil, nil
}

// handleMudlist reads ({"mudlist",5,router,0,mud,0,mudlist_id,([name:info])}).
// An info of 0 removes the mud.
func (s *State) handleMudlist(_ context.Context, p *packet.Packet) ([]*packet.Packet, error) {
	rawID, _ := p.Field(fieldMudlistID)
	id, ok := rawID.(protocol.Int)
	if !ok {
		return nil, fmt.Errorf("mudlist: id is %s", protocol.KindOf(rawID))
	}
	rawMuds, _ := p.Field(fieldMudlist)
	muds, ok := rawMuds.(protocol.Map)
	if !ok {
		return nil, fmt.Errorf("mudlist: muds is %s", protocol.KindOf(rawMuds))
	}

	s.mu.Lock()
	s.mudlistID = int64(id)
	for _, pair := range muds {
		if n, ok := pair.Value.(protocol.Int); ok && n == 0 {
			delete(s.muds, string(pair.Key))
			continue
		}
		s.muds[string(pair.Key)] = struct{}{}
	}
	s.mu.Unlock()
	return nil, nil
}

// handleError reads ({"error",5,mud,0,target_mud,target_user,code,message,bad_packet}).
func (s *State) handleError(_ context.Context, p *packet.Packet) ([]*packet.Packet, error) {
	code, _ := p.Field(fieldErrCode)
	message, _ := p.Field(fieldErrMessage)
	env, _ := p.Envelope()

	s.mu.Lock()
	s.lastError = fmt.Sprintf("%s: %s", protocol.NameOf(code), protocol.NameOf(message))
	s.mu.Unlock()
	s.logger.Warn().
		Str("origin_mud", env.OriginMud).
		Str("code", protocol.NameOf(code)).
		Str("message", protocol.NameOf(message)).
		Msg("error packet received")
	return nil, nil
}
