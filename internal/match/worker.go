package match

import (
	"context"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"netpong/internal/game"
	"netpong/internal/protocol"
)

// Sender is the outbound half of the server socket. *protocol.Conn implements it.
type Sender interface {
	Send(msg protocol.Message, addr net.Addr) error
	SendRedundant(msg protocol.Message, addr net.Addr, n int) error
}

type Participant struct {
	ID   game.PlayerID
	Addr net.Addr
}

// StartupRecord is everything a worker is given when its match starts.
type StartupRecord struct {
	MatchID game.MatchID
	Session uuid.UUID
	Left    Participant
	Right   Participant
	Inbound chan protocol.Message
}

type Settings struct {
	TickRate       int
	RedundantSends int
	Game           game.Config
}

func DefaultSettings() Settings {
	return Settings{
		TickRate:       30,
		RedundantSends: 2,
		Game:           game.DefaultConfig(),
	}
}

type State uint8

const (
	AwaitingStart State = iota
	Running
	Terminating
	Terminated
)

func (s State) String() string {
	switch s {
	case AwaitingStart:
		return "awaiting_start"
	case Running:
		return "running"
	case Terminating:
		return "terminating"
	}
	return "terminated"
}

// inputLatch holds the pressed keys of one player together with the tick of the last
// input that changed them.
type inputLatch struct {
	tick  game.Tick
	input game.Input
}

// apply accepts in only if it is newer than anything applied before.
func (l *inputLatch) apply(in protocol.PlayerInput) bool {
	if in.Tick <= l.tick {
		return false
	}
	l.tick = in.Tick
	switch in.Direction.Key {
	case protocol.KeyUp:
		l.input.Up = in.Direction.Pressed
	case protocol.KeyDown:
		l.input.Down = in.Direction.Pressed
	}
	return true
}

// Worker runs the authoritative simulation of a single match.
type Worker struct {
	rec     StartupRecord
	inbound <-chan protocol.Message
	out     Sender
	log     zerolog.Logger

	redundancy int
	budget     time.Duration
	dt         float64

	pong  *game.Pong
	score game.Score
	tick  game.Tick
	left  inputLatch
	right inputLatch
	state State
	endBy *game.PlayerID
}

func NewWorker(rec StartupRecord, out Sender, s Settings, log zerolog.Logger) *Worker {
	if s.TickRate <= 0 {
		s.TickRate = DefaultSettings().TickRate
	}
	log = log.With().
		Uint32("match_id", uint32(rec.MatchID)).
		Stringer("session", rec.Session).
		Logger()
	return &Worker{
		rec:        rec,
		inbound:    rec.Inbound,
		out:        out,
		log:        log,
		redundancy: max(s.RedundantSends, 1),
		budget:     time.Second / time.Duration(s.TickRate),
		dt:         1 / float64(s.TickRate),
		pong:       game.NewPong(s.Game),
		tick:       1,
		state:      AwaitingStart,
	}
}

// NewWorkerFunc adapts NewWorker to the registry's spawn hook.
func NewWorkerFunc(out Sender, s Settings, log zerolog.Logger) WorkerFunc {
	return func(ctx context.Context, rec StartupRecord) {
		NewWorker(rec, out, s, log).Run(ctx)
	}
}

func (w *Worker) State() State { return w.state }

// Run announces the match and ticks until a player ends it or ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	w.start()

	timer := time.NewTimer(w.budget)
	defer timer.Stop()

	for {
		began := time.Now()
		if ctx.Err() != nil {
			w.terminate()
			return
		}
		if !w.step() {
			return
		}

		remaining := w.budget - time.Since(began)
		if remaining <= 0 {
			continue
		}
		timer.Reset(remaining)
		select {
		case <-ctx.Done():
			w.terminate()
			return
		case <-timer.C:
		}
	}
}

func (w *Worker) start() {
	w.log.Info().
		Uint32("left", uint32(w.rec.Left.ID)).
		Uint32("right", uint32(w.rec.Right.ID)).
		Msg("match starting")
	w.broadcast(protocol.ReadyToStart{}, w.redundancy)
	w.state = Running
}

// step runs one tick and reports whether the match is still running.
func (w *Worker) step() bool {
	w.drain()
	if w.state == Terminating {
		w.terminate()
		return false
	}

	result := w.pong.Step(w.dt, w.left.input, w.right.input)

	snap := w.pong.Snapshot()
	w.broadcast(protocol.AuthoritativeState{
		Tick:        w.tick,
		Ball:        snap.Ball,
		LeftPaddle:  snap.LeftPaddle,
		RightPaddle: snap.RightPaddle,
	}, 1)

	if w.score.Record(result) {
		w.log.Info().
			Stringer("result", result).
			Uint32("left_score", w.score.Left).
			Uint32("right_score", w.score.Right).
			Msg("goal")
		w.broadcast(protocol.ScoreUpdate{Left: w.score.Left, Right: w.score.Right}, 1)
	}

	w.tick++
	return true
}

// drain handles every message already buffered for this match without blocking.
func (w *Worker) drain() {
	for w.state == Running {
		select {
		case msg, ok := <-w.inbound:
			if !ok {
				w.log.Warn().Msg("inbound channel closed, no more input")
				w.inbound = nil
				return
			}
			w.handle(msg)
		default:
			return
		}
	}
}

func (w *Worker) handle(msg protocol.Message) {
	switch m := msg.(type) {
	case protocol.PlayerInput:
		latch := w.latchFor(m.PlayerID)
		if latch == nil {
			w.log.Warn().Uint32("player_id", uint32(m.PlayerID)).Msg("input from a player of another match")
			return
		}
		if !latch.apply(m) {
			w.log.Debug().
				Uint32("player_id", uint32(m.PlayerID)).
				Uint32("tick", uint32(m.Tick)).
				Msg("stale input")
		}
	case protocol.EndSession:
		w.log.Info().Uint32("player_id", uint32(m.PlayerID)).Msg("end of session requested")
		by := m.PlayerID
		w.endBy = &by
		w.state = Terminating
	default:
		w.log.Warn().Str("type", string(msg.Kind())).Msg("unexpected message")
	}
}

func (w *Worker) latchFor(id game.PlayerID) *inputLatch {
	switch id {
	case w.rec.Left.ID:
		return &w.left
	case w.rec.Right.ID:
		return &w.right
	}
	return nil
}

// terminate tells both players the match is over. A match ended by the server reports
// each player's own id.
func (w *Worker) terminate() {
	w.state = Terminating
	for _, p := range []Participant{w.rec.Left, w.rec.Right} {
		by := p.ID
		if w.endBy != nil {
			by = *w.endBy
		}
		_ = w.out.SendRedundant(protocol.EndSession{PlayerID: by}, p.Addr, w.redundancy)
	}
	w.state = Terminated
	w.log.Info().Uint32("ticks", uint32(w.tick-1)).Msg("match ended")
}

func (w *Worker) broadcast(msg protocol.Message, n int) {
	for _, p := range []Participant{w.rec.Left, w.rec.Right} {
		if err := w.out.SendRedundant(msg, p.Addr, n); err != nil {
			w.log.Debug().Err(err).Uint32("player_id", uint32(p.ID)).Msg("broadcast")
		}
	}
}
