package game

// Input is the latched key state of one player.
type Input struct {
	Up   bool
	Down bool
}

// RoundResult is the outcome of a single simulation step.
type RoundResult uint8

const (
	NoGoal RoundResult = iota
	LeftScored
	RightScored
)

func (r RoundResult) String() string {
	switch r {
	case LeftScored:
		return "left_scored"
	case RightScored:
		return "right_scored"
	}
	return "none"
}

type Score struct {
	Left  uint32 `json:"left"`
	Right uint32 `json:"right"`
}

// Record adds the point of a goal, if any, and reports whether the score changed.
func (s *Score) Record(r RoundResult) bool {
	switch r {
	case LeftScored:
		s.Left++
	case RightScored:
		s.Right++
	default:
		return false
	}
	return true
}

// Snapshot is the part of the simulation that clients draw.
type Snapshot struct {
	Ball        Vec2
	LeftPaddle  Vec2
	RightPaddle Vec2
}

// InitialSnapshot is what a client shows before the first authoritative state arrives.
func InitialSnapshot(cfg Config) Snapshot {
	return Snapshot{
		Ball:        cfg.Center(),
		LeftPaddle:  cfg.PaddleHome(Left),
		RightPaddle: cfg.PaddleHome(Right),
	}
}
