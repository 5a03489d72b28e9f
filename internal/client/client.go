package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"

	"netpong/internal/game"
	"netpong/internal/protocol"
)

var (
	ErrJoinRejected = errors.New("join rejected by server")
	ErrSessionEnded = errors.New("session ended")
)

type Options struct {
	// RetryInterval is the pause between repeated join requests.
	RetryInterval  time.Duration
	RedundantSends int
}

func DefaultOptions() Options {
	return Options{
		RetryInterval:  500 * time.Millisecond,
		RedundantSends: 2,
	}
}

// View is what a front-end draws.
type View struct {
	PlayerID game.PlayerID
	Side     game.Side
	Tick     game.Tick
	Snapshot game.Snapshot
	Score    game.Score
}

// Client is one player's connection to the server. Its methods are meant to be called
// from a single frame loop.
type Client struct {
	conn   *protocol.Conn
	server net.Addr
	opts   Options
	log    zerolog.Logger

	id        game.PlayerID
	side      game.Side
	inputTick game.Tick
	stateTick game.Tick
	snapshot  game.Snapshot
	score     game.Score
}

func New(conn *protocol.Conn, server net.Addr, cfg game.Config, opts Options, log zerolog.Logger) *Client {
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = DefaultOptions().RetryInterval
	}
	return &Client{
		conn:     conn,
		server:   server,
		opts:     opts,
		log:      log.With().Str("component", "client").Logger(),
		snapshot: game.InitialSnapshot(cfg),
	}
}

// Join asks the server for a seat until it answers. An unreachable server means retrying
// until ctx is done.
func (c *Client) Join(ctx context.Context) (protocol.JoinAccepted, error) {
	ticker := time.NewTicker(c.opts.RetryInterval)
	defer ticker.Stop()

	c.sendJoin()
	for {
		if err := ctx.Err(); err != nil {
			return protocol.JoinAccepted{}, err
		}

		msg, err := c.receive()
		if err != nil {
			return protocol.JoinAccepted{}, err
		}
		switch m := msg.(type) {
		case protocol.JoinAccepted:
			c.id, c.side = m.PlayerID, m.Side
			c.log = c.log.With().Uint32("player_id", uint32(m.PlayerID)).Logger()
			c.log.Info().Stringer("side", m.Side).Msg("joined")
			return m, nil
		case protocol.JoinRejected:
			return protocol.JoinAccepted{}, ErrJoinRejected
		}

		select {
		case <-ticker.C:
			c.sendJoin()
		default:
		}
	}
}

// WaitReady blocks until the match starts. A state update also counts as the start in case
// every ReadyToStart was lost.
func (c *Client) WaitReady(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg, err := c.receive()
		if err != nil {
			return err
		}
		switch msg.(type) {
		case nil:
		case protocol.ReadyToStart:
			c.log.Info().Msg("match started")
			return nil
		case protocol.AuthoritativeState:
			return c.apply(msg)
		default:
			if err := c.apply(msg); err != nil {
				return err
			}
		}
	}
}

// Update applies everything the server sent since the last call. It returns
// ErrSessionEnded once the match is over.
func (c *Client) Update() error {
	for {
		pkt, res, err := c.conn.Receive()
		if err != nil {
			return err
		}
		switch res {
		case protocol.NothingPending:
			return nil
		case protocol.Malformed:
			continue
		}
		if !c.fromServer(pkt.Addr) {
			continue
		}
		if err := c.apply(pkt.Msg); err != nil {
			return err
		}
	}
}

func (c *Client) apply(msg protocol.Message) error {
	switch m := msg.(type) {
	case protocol.AuthoritativeState:
		if m.Tick <= c.stateTick {
			return nil
		}
		c.stateTick = m.Tick
		c.snapshot = game.Snapshot{
			Ball:        m.Ball,
			LeftPaddle:  m.LeftPaddle,
			RightPaddle: m.RightPaddle,
		}
	case protocol.ScoreUpdate:
		c.score = game.Score{Left: m.Left, Right: m.Right}
		c.log.Info().Uint32("left", m.Left).Uint32("right", m.Right).Msg("score")
	case protocol.EndSession:
		c.log.Info().Uint32("by", uint32(m.PlayerID)).Msg("session ended")
		return ErrSessionEnded
	case protocol.ReadyToStart, protocol.JoinAccepted:
	default:
		c.log.Debug().Str("type", string(msg.Kind())).Msg("unexpected message")
	}
	return nil
}

// KeyDown reports a pressed key once.
func (c *Client) KeyDown(key protocol.Key) error {
	return c.sendInput(key, true)
}

// KeyUp reports a released key twice, each copy with its own tick, since a release is not
// repeated by later frames.
func (c *Client) KeyUp(key protocol.Key) error {
	return errors.Join(c.sendInput(key, false), c.sendInput(key, false))
}

// Leave tells the server this player is done.
func (c *Client) Leave() error {
	return c.conn.SendRedundant(protocol.EndSession{PlayerID: c.id}, c.server, c.opts.RedundantSends)
}

func (c *Client) View() View {
	return View{
		PlayerID: c.id,
		Side:     c.side,
		Tick:     c.stateTick,
		Snapshot: c.snapshot,
		Score:    c.score,
	}
}

func (c *Client) sendInput(key protocol.Key, pressed bool) error {
	if !key.Valid() {
		return fmt.Errorf("unknown key %q", key)
	}
	c.inputTick++
	return c.conn.Send(protocol.PlayerInput{
		PlayerID:  c.id,
		Tick:      c.inputTick,
		Direction: protocol.Direction{Key: key, Pressed: pressed},
	}, c.server)
}

func (c *Client) sendJoin() {
	c.log.Debug().Stringer("server", c.server).Msg("join request")
	_ = c.conn.Send(protocol.JoinRequest{}, c.server)
}

// receive waits one poll interval for a message from the server. It returns nil when
// nothing arrived.
func (c *Client) receive() (protocol.Message, error) {
	pkt, res, err := c.conn.Receive()
	if err != nil {
		return nil, err
	}
	if res != protocol.Received || !c.fromServer(pkt.Addr) {
		return nil, nil
	}
	return pkt.Msg, nil
}

func (c *Client) fromServer(addr net.Addr) bool {
	return addr != nil && addr.String() == c.server.String()
}
