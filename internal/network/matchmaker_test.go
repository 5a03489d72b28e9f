package network

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netpong/internal/game"
	"netpong/internal/match"
	"netpong/internal/protocol"
)

type reply struct {
	msg  protocol.Message
	addr string
}

type fakeSender struct {
	replies []reply
}

func (f *fakeSender) Send(msg protocol.Message, addr net.Addr) error {
	f.replies = append(f.replies, reply{msg: msg, addr: addr.String()})
	return nil
}

func (f *fakeSender) last() reply {
	return f.replies[len(f.replies)-1]
}

type fakeStarter struct {
	started []match.StartupRecord
	active  map[game.MatchID]bool
	err     error
}

func (f *fakeStarter) Start(_ context.Context, rec match.StartupRecord) error {
	if f.err != nil {
		return f.err
	}
	f.started = append(f.started, rec)
	f.active[rec.MatchID] = true
	return nil
}

func (f *fakeStarter) Active(id game.MatchID) bool {
	return f.active[id]
}

func addr(port int) net.Addr {
	return &net.UDPAddr{IP: net.IPv4(10, 0, 0, 1), Port: port}
}

func newTestMatchmaker() (*Matchmaker, *fakeSender, *fakeStarter) {
	out := &fakeSender{}
	st := &fakeStarter{active: make(map[game.MatchID]bool)}
	return NewMatchmaker(out, st, 8, zerolog.Nop()), out, st
}

func TestMatchmaker_PairsByArrivalOrder(t *testing.T) {
	mm, out, st := newTestMatchmaker()
	ctx := context.Background()

	mm.Join(ctx, addr(1))
	assert.Equal(t, reply{protocol.JoinAccepted{Side: game.Left, PlayerID: 0}, addr(1).String()}, out.last())
	assert.Empty(t, st.started)

	mm.Join(ctx, addr(2))
	assert.Equal(t, reply{protocol.JoinAccepted{Side: game.Right, PlayerID: 1}, addr(2).String()}, out.last())

	require.Len(t, st.started, 1)
	rec := st.started[0]
	assert.Equal(t, game.MatchID(0), rec.MatchID)
	assert.Equal(t, match.Participant{ID: 0, Addr: addr(1)}, rec.Left)
	assert.Equal(t, match.Participant{ID: 1, Addr: addr(2)}, rec.Right)
	assert.Equal(t, 8, cap(rec.Inbound))
	assert.NotEqual(t, uuid.Nil, rec.Session)
}

func TestMatchmaker_RepeatedJoinWhileWaiting(t *testing.T) {
	mm, out, st := newTestMatchmaker()
	ctx := context.Background()

	mm.Join(ctx, addr(1))
	mm.Join(ctx, addr(1))

	require.Len(t, out.replies, 2)
	assert.Equal(t, out.replies[0], out.replies[1])
	assert.Empty(t, st.started)

	mm.Join(ctx, addr(2))
	assert.Equal(t, protocol.JoinAccepted{Side: game.Right, PlayerID: 1}, out.last().msg)
}

func TestMatchmaker_RejectsPlayerInRunningMatch(t *testing.T) {
	mm, out, st := newTestMatchmaker()
	ctx := context.Background()

	mm.Join(ctx, addr(1))
	mm.Join(ctx, addr(2))
	mm.Join(ctx, addr(2))
	assert.Equal(t, reply{protocol.JoinRejected{}, addr(2).String()}, out.last())

	st.active[0] = false
	mm.Join(ctx, addr(2))
	assert.Equal(t, reply{protocol.JoinAccepted{Side: game.Left, PlayerID: 2}, addr(2).String()}, out.last())
}

func TestMatchmaker_ThirdJoinQueued(t *testing.T) {
	mm, out, st := newTestMatchmaker()
	ctx := context.Background()

	for port := 1; port <= 4; port++ {
		mm.Join(ctx, addr(port))
	}

	require.Len(t, st.started, 2)
	assert.Equal(t, game.MatchID(1), st.started[1].MatchID)
	assert.Equal(t, match.Participant{ID: 2, Addr: addr(3)}, st.started[1].Left)
	assert.Equal(t, match.Participant{ID: 3, Addr: addr(4)}, st.started[1].Right)
	assert.Equal(t, protocol.JoinAccepted{Side: game.Right, PlayerID: 3}, out.last().msg)
}

func TestMatchmaker_RejectServerMessages(t *testing.T) {
	mm, out, _ := newTestMatchmaker()
	ctx := context.Background()

	mm.Reject(addr(7), protocol.KindState)
	assert.Equal(t, reply{protocol.JoinRejected{}, addr(7).String()}, out.last())

	mm.Join(ctx, addr(1))
	mm.Join(ctx, addr(2))
	n := len(out.replies)
	mm.Reject(addr(1), protocol.KindScore)
	assert.Len(t, out.replies, n, "players in a match are not rejected")
}

func TestMatchmaker_StartFailureRejectsBoth(t *testing.T) {
	mm, out, st := newTestMatchmaker()
	st.err = errors.New("no room")
	ctx := context.Background()

	mm.Join(ctx, addr(1))
	mm.Join(ctx, addr(2))

	require.Len(t, out.replies, 4)
	assert.Equal(t, reply{protocol.JoinRejected{}, addr(1).String()}, out.replies[2])
	assert.Equal(t, reply{protocol.JoinRejected{}, addr(2).String()}, out.replies[3])

	mm.Join(ctx, addr(1))
	assert.Equal(t, protocol.JoinAccepted{Side: game.Left, PlayerID: 2}, out.last().msg)
}
