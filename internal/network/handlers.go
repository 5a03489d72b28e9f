package network

import (
	"context"
	"errors"

	"netpong/internal/game"
	"netpong/internal/match"
	"netpong/internal/protocol"
)

// handlePacket dispatches one decoded datagram: joins go to the matchmaker, game traffic
// to the match it belongs to.
func (s *Server) handlePacket(ctx context.Context, pkt protocol.Packet) {
	switch m := pkt.Msg.(type) {
	case protocol.JoinRequest:
		s.matchmaker.Join(ctx, pkt.Addr)

	case protocol.PlayerInput:
		id := game.MatchIDFor(m.PlayerID)
		err := s.registry.Route(id, m)
		switch {
		case err == nil:
		case errors.Is(err, match.ErrInboxFull):
			s.log.Warn().Err(err).Uint32("player_id", uint32(m.PlayerID)).Msg("input dropped")
		default:
			s.log.Error().Err(err).
				Stringer("addr", pkt.Addr).
				Uint32("player_id", uint32(m.PlayerID)).
				Msg("route input")
		}

	case protocol.EndSession:
		id := game.MatchIDFor(m.PlayerID)
		if err := s.registry.End(ctx, id, m); err != nil {
			s.log.Error().Err(err).
				Stringer("addr", pkt.Addr).
				Uint32("player_id", uint32(m.PlayerID)).
				Msg("end match")
			return
		}
		s.log.Info().Uint32("match_id", uint32(id)).Uint32("player_id", uint32(m.PlayerID)).Msg("end requested")

	default:
		s.matchmaker.Reject(pkt.Addr, pkt.Msg.Kind())
	}
}
