package network

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"

	"netpong/internal/game"
	"netpong/internal/match"
	"netpong/internal/protocol"
)

// Registry is the match table the server routes game traffic to.
type Registry interface {
	Starter
	Route(id game.MatchID, msg protocol.Message) error
	End(ctx context.Context, id game.MatchID, msg protocol.EndSession) error
}

var _ Registry = (*match.Registry)(nil)

// Server is the single receive loop of the game socket.
type Server struct {
	conn       *protocol.Conn
	registry   Registry
	matchmaker *Matchmaker
	log        zerolog.Logger
}

func NewServer(conn *protocol.Conn, registry Registry, inboxSize int, log zerolog.Logger) *Server {
	return &Server{
		conn:       conn,
		registry:   registry,
		matchmaker: NewMatchmaker(conn, registry, inboxSize, log),
		log:        log.With().Str("component", "router").Logger(),
	}
}

// Listen opens the UDP socket of a server or player.
func Listen(addr string, poll time.Duration, log zerolog.Logger) (*protocol.Conn, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", addr, err)
	}

	pc, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return protocol.NewConn(pc, poll, log), nil
}

// Serve reads datagrams until ctx is cancelled or the socket is closed.
func (s *Server) Serve(ctx context.Context) error {
	s.log.Info().Stringer("addr", s.conn.LocalAddr()).Msg("UDP server listening")

	for {
		if ctx.Err() != nil {
			return nil
		}

		pkt, res, err := s.conn.Receive()
		if err != nil {
			if errors.Is(err, net.ErrClosed) && ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("receive: %w", err)
		}
		if res != protocol.Received {
			continue
		}
		s.handlePacket(ctx, pkt)
	}
}
