package network_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"netpong/internal/game"
	"netpong/internal/match"
	"netpong/internal/network"
	"netpong/internal/protocol"
)

const poll = 2 * time.Millisecond

type harness struct {
	conn     *protocol.Conn
	registry *match.Registry
}

func startServer(t *testing.T) harness {
	t.Helper()
	log := zerolog.Nop()

	conn, err := network.Listen("127.0.0.1:0", poll, log)
	require.NoError(t, err)

	settings := match.DefaultSettings()
	settings.TickRate = 60
	registry := match.NewRegistry(match.NewWorkerFunc(conn, settings, log), log)
	server := network.NewServer(conn, registry, 16, log)

	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return registry.Run(ctx) })
	g.Go(func() error { return server.Serve(ctx) })

	t.Cleanup(func() {
		cancel()
		assert.NoError(t, g.Wait())
		_ = conn.Close()
	})
	return harness{conn: conn, registry: registry}
}

func dial(t *testing.T) *protocol.Conn {
	t.Helper()
	c, err := network.Listen("127.0.0.1:0", poll, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// await reads from c until a message of kind k arrives and returns every message read.
func await(t *testing.T, c *protocol.Conn, k protocol.Kind) []protocol.Message {
	t.Helper()
	var got []protocol.Message
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		pkt, res, err := c.Receive()
		require.NoError(t, err)
		if res != protocol.Received {
			continue
		}
		got = append(got, pkt.Msg)
		if pkt.Msg.Kind() == k {
			return got
		}
	}
	t.Fatalf("no %s received", k)
	return nil
}

func count(msgs []protocol.Message, k protocol.Kind) int {
	n := 0
	for _, m := range msgs {
		if m.Kind() == k {
			n++
		}
	}
	return n
}

func join(t *testing.T, h harness, c *protocol.Conn) protocol.JoinAccepted {
	t.Helper()
	require.NoError(t, c.Send(protocol.JoinRequest{}, h.conn.LocalAddr()))
	msgs := await(t, c, protocol.KindJoinAccepted)
	return msgs[len(msgs)-1].(protocol.JoinAccepted)
}

func TestServer_JoinAndStart(t *testing.T) {
	h := startServer(t)
	left, right := dial(t), dial(t)

	assert.Equal(t, protocol.JoinAccepted{Side: game.Left, PlayerID: 0}, join(t, h, left))
	assert.Equal(t, protocol.JoinAccepted{Side: game.Right, PlayerID: 1}, join(t, h, right))

	for _, c := range []*protocol.Conn{left, right} {
		msgs := await(t, c, protocol.KindState)
		assert.Equal(t, 2, count(msgs, protocol.KindReadyToStart))
	}
	assert.True(t, h.registry.Active(0))
}

func TestServer_ThirdPlayerWaitsForNextMatch(t *testing.T) {
	h := startServer(t)
	a, b, c := dial(t), dial(t), dial(t)

	join(t, h, a)
	join(t, h, b)
	assert.Equal(t, protocol.JoinAccepted{Side: game.Left, PlayerID: 2}, join(t, h, c))
	assert.False(t, h.registry.Active(1))

	require.NoError(t, b.Send(protocol.JoinRequest{}, h.conn.LocalAddr()))
	await(t, b, protocol.KindJoinRejected)
}

func TestServer_EndSession(t *testing.T) {
	h := startServer(t)
	left, right := dial(t), dial(t)

	join(t, h, left)
	join(t, h, right)
	await(t, left, protocol.KindState)
	await(t, right, protocol.KindState)

	require.NoError(t, left.Send(protocol.EndSession{PlayerID: 0}, h.conn.LocalAddr()))

	for _, c := range []*protocol.Conn{left, right} {
		msgs := await(t, c, protocol.KindEndSession)
		assert.Equal(t, protocol.EndSession{PlayerID: 0}, msgs[len(msgs)-1])
	}
	require.Eventually(t, func() bool { return !h.registry.Active(0) }, 2*time.Second, 5*time.Millisecond)
	assert.Empty(t, h.registry.Matches())

	assert.Equal(t, protocol.JoinAccepted{Side: game.Left, PlayerID: 2}, join(t, h, left))
}

func TestServer_InputMovesPaddle(t *testing.T) {
	h := startServer(t)
	left, right := dial(t), dial(t)
	cfg := game.DefaultConfig()

	join(t, h, left)
	join(t, h, right)
	await(t, left, protocol.KindState)

	in := protocol.PlayerInput{PlayerID: 0, Tick: 1, Direction: protocol.Direction{Key: protocol.KeyUp, Pressed: true}}
	require.NoError(t, left.Send(in, h.conn.LocalAddr()))

	require.Eventually(t, func() bool {
		pkt, res, err := left.Receive()
		if err != nil || res != protocol.Received {
			return false
		}
		st, ok := pkt.Msg.(protocol.AuthoritativeState)
		return ok && st.LeftPaddle.Y < cfg.PaddleHome(game.Left).Y
	}, 3*time.Second, time.Millisecond)
}

func TestServer_UnknownSenderRejected(t *testing.T) {
	h := startServer(t)
	c := dial(t)

	require.NoError(t, c.Send(protocol.ScoreUpdate{Left: 1}, h.conn.LocalAddr()))
	await(t, c, protocol.KindJoinRejected)
}
