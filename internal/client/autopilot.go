package client

import (
	"github.com/rs/zerolog"

	"netpong/internal/game"
	"netpong/internal/protocol"
)

// Autopilot steers the paddle towards the ball. Like a held key, a wanted direction is
// pressed again on every frame and released once when no longer wanted.
type Autopilot struct {
	// DeadZone is how far the ball may be from the paddle center before it moves.
	DeadZone float64

	up, down bool
}

func NewAutopilot(cfg game.Config) *Autopilot {
	return &Autopilot{DeadZone: cfg.PaddleHeight / 6}
}

func (a *Autopilot) Keys(v View) []KeyEvent {
	paddle := v.Snapshot.LeftPaddle
	if v.Side == game.Right {
		paddle = v.Snapshot.RightPaddle
	}
	wantUp := v.Snapshot.Ball.Y < paddle.Y-a.DeadZone
	wantDown := v.Snapshot.Ball.Y > paddle.Y+a.DeadZone

	var events []KeyEvent
	events = a.track(events, protocol.KeyUp, wantUp, &a.up)
	events = a.track(events, protocol.KeyDown, wantDown, &a.down)
	return events
}

func (a *Autopilot) track(events []KeyEvent, key protocol.Key, want bool, held *bool) []KeyEvent {
	switch {
	case want:
		events = append(events, KeyEvent{Key: key, Pressed: true})
	case *held:
		events = append(events, KeyEvent{Key: key, Pressed: false})
	}
	*held = want
	return events
}

// LogRenderer stands in for a window: it logs the score whenever it changes.
type LogRenderer struct {
	Log   zerolog.Logger
	score game.Score
	drawn bool
}

func (r *LogRenderer) Draw(v View) {
	if r.drawn && v.Score == r.score {
		return
	}
	r.drawn = true
	r.score = v.Score
	r.Log.Info().
		Stringer("side", v.Side).
		Uint32("left", v.Score.Left).
		Uint32("right", v.Score.Right).
		Uint32("tick", uint32(v.Tick)).
		Msg("score board")
}
