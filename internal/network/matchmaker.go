package network

import (
	"context"
	"net"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"netpong/internal/game"
	"netpong/internal/match"
	"netpong/internal/protocol"
)

// Sender is the part of the server socket the matchmaker replies through.
type Sender interface {
	Send(msg protocol.Message, addr net.Addr) error
}

// Starter spawns matches and reports whether they are still running.
type Starter interface {
	Start(ctx context.Context, rec match.StartupRecord) error
	Active(id game.MatchID) bool
}

// Matchmaker admits players and pairs them into matches. It is owned by the receive loop
// and is not safe for concurrent use.
type Matchmaker struct {
	out       Sender
	matches   Starter
	inboxSize int
	log       zerolog.Logger

	nextID  game.PlayerID
	pending map[game.PlayerID]net.Addr
	waiting map[string]game.PlayerID
	paired  map[string]game.PlayerID
}

func NewMatchmaker(out Sender, matches Starter, inboxSize int, log zerolog.Logger) *Matchmaker {
	return &Matchmaker{
		out:       out,
		matches:   matches,
		inboxSize: max(inboxSize, 1),
		log:       log.With().Str("component", "matchmaker").Logger(),
		pending:   make(map[game.PlayerID]net.Addr),
		waiting:   make(map[string]game.PlayerID),
		paired:    make(map[string]game.PlayerID),
	}
}

// Join handles a JoinRequest from addr.
func (m *Matchmaker) Join(ctx context.Context, addr net.Addr) {
	key := addr.String()

	if m.inMatch(key) {
		m.log.Info().Str("addr", key).Msg("join from a player already in a match")
		m.reject(addr)
		return
	}

	if id, ok := m.waiting[key]; ok {
		m.log.Debug().Str("addr", key).Uint32("player_id", uint32(id)).Msg("repeated join")
		m.accept(id, addr)
		return
	}

	id := m.nextID
	m.nextID++
	m.pending[id] = addr
	m.waiting[key] = id
	m.accept(id, addr)

	side := game.SideFor(id)
	m.log.Info().
		Str("addr", key).
		Uint32("player_id", uint32(id)).
		Stringer("side", side).
		Msg("player admitted")

	if side == game.Left {
		if id > 0 && m.matches.Active(game.MatchIDFor(id-1)) {
			m.log.Info().Uint32("player_id", uint32(id)).Msg("a match is running, player queued for the next one")
		}
		return
	}
	m.pair(ctx, game.Partner(id), id)
}

// Reject answers a datagram that only the server is supposed to send.
func (m *Matchmaker) Reject(addr net.Addr, kind protocol.Kind) {
	key := addr.String()
	if m.inMatch(key) {
		m.log.Warn().Str("addr", key).Str("type", string(kind)).Msg("unexpected message from a player")
		return
	}
	m.log.Info().Str("addr", key).Str("type", string(kind)).Msg("rejecting message from unknown sender")
	m.reject(addr)
}

func (m *Matchmaker) pair(ctx context.Context, left, right game.PlayerID) {
	leftAddr, rightAddr := m.pending[left], m.pending[right]
	rec := match.StartupRecord{
		MatchID: game.MatchIDFor(left),
		Session: uuid.New(),
		Left:    match.Participant{ID: left, Addr: leftAddr},
		Right:   match.Participant{ID: right, Addr: rightAddr},
		Inbound: make(chan protocol.Message, m.inboxSize),
	}

	m.forget(left, leftAddr)
	m.forget(right, rightAddr)

	if err := m.matches.Start(ctx, rec); err != nil {
		m.log.Error().Err(err).Uint32("match_id", uint32(rec.MatchID)).Msg("start match")
		m.reject(leftAddr)
		m.reject(rightAddr)
		return
	}
	m.paired[leftAddr.String()] = left
	m.paired[rightAddr.String()] = right
}

// inMatch reports whether the address belongs to a running match, releasing it if its
// match has ended since.
func (m *Matchmaker) inMatch(key string) bool {
	id, ok := m.paired[key]
	if !ok {
		return false
	}
	if m.matches.Active(game.MatchIDFor(id)) {
		return true
	}
	delete(m.paired, key)
	return false
}

func (m *Matchmaker) forget(id game.PlayerID, addr net.Addr) {
	delete(m.pending, id)
	delete(m.waiting, addr.String())
}

func (m *Matchmaker) accept(id game.PlayerID, addr net.Addr) {
	_ = m.out.Send(protocol.JoinAccepted{Side: game.SideFor(id), PlayerID: id}, addr)
}

func (m *Matchmaker) reject(addr net.Addr) {
	_ = m.out.Send(protocol.JoinRejected{}, addr)
}
