package router

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/danmuck/i4/internal/config"
	"github.com/danmuck/i4/internal/protocol/packet"
	"github.com/danmuck/i4/internal/protocol/session"
	"github.com/rs/zerolog"
)

var (
	ErrUpstreamAddrRequired = errors.New("router: upstream address required")
	ErrUpstreamClosed       = errors.New("router: upstream closed the connection")
	ErrNotConnected         = errors.New("router: not connected")
)

// Client is one connection to an upstream I3 router.
type Client struct {
	cfg        config.RouterConfig
	session    session.Config
	dispatcher *Dispatcher
	state      *State
	logger     zerolog.Logger

	mu   sync.Mutex
	conn *session.Conn
}

// NewClient builds a client for cfg with the state handlers registered.
func NewClient(cfg config.RouterConfig, sessionCfg session.Config, logger zerolog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.UpstreamAddr) == "" {
		return nil, ErrUpstreamAddrRequired
	}
	logger = logger.With().Str("mud", cfg.RouterName).Str("upstream", cfg.UpstreamAddr).Logger()
	dispatcher := NewDispatcher(cfg.RouterName, logger)
	state := NewState(cfg.UpstreamAddr, cfg.Password, cfg.MudlistID, logger)
	if err := state.Register(dispatcher); err != nil {
		return nil, err
	}
	return &Client{
		cfg:        cfg,
		session:    sessionCfg.WithDefaults(),
		dispatcher: dispatcher,
		state:      state,
		logger:     logger.With().Str("component", "router.client").Logger(),
	}, nil
}

func (c *Client) Dispatcher() *Dispatcher { return c.dispatcher }

func (c *Client) State() *State { return c.state }

// Run dials the upstream router once, sends the startup request and serves
// inbound packets until ctx is done or the stream fails. Cancellation is
// a clean exit.
func (c *Client) Run(ctx context.Context) error {
	startup, err := StartupRequest(c.cfg)
	if err != nil {
		return fmt.Errorf("router: build startup request: %w", err)
	}

	conn, err := session.Dial(ctx, c.cfg.UpstreamAddr, c.session)
	if err != nil {
		c.state.setDisconnected(err)
		return err
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	c.setConn(conn)
	c.state.setConnected(time.Now())
	c.logger.Info().Stringer("remote", conn.RemoteAddr()).Msg("connected")

	err = c.serve(ctx, conn, startup)
	c.setConn(nil)
	_ = conn.Close()
	if ctx.Err() != nil {
		c.state.setDisconnected(nil)
		c.logger.Info().Msg("disconnected")
		return nil
	}
	c.state.setDisconnected(err)
	c.logger.Warn().Err(err).Msg("connection lost")
	return err
}

func (c *Client) serve(ctx context.Context, conn *session.Conn, startup *packet.Packet) error {
	if err := conn.WritePacket(startup); err != nil {
		return err
	}
	for {
		raw, err := conn.ReadFrame()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				return ErrUpstreamClosed
			}
			return err
		}
		replies, err := c.dispatcher.Handle(ctx, raw)
		if err != nil {
			return err
		}
		for _, reply := range replies {
			if err := conn.WritePacket(reply); err != nil {
				return err
			}
		}
	}
}

// Send writes p on the live connection.
func (c *Client) Send(p *packet.Packet) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	return conn.WritePacket(p)
}

func (c *Client) setConn(conn *session.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
}
