package game

// Pong is the authoritative simulation of one match. It is not safe for concurrent use;
// each match worker owns exactly one.
type Pong struct {
	Ball  *Ball
	Left  Paddle
	Right Paddle
}

func NewPong(cfg Config) *Pong {
	return &Pong{
		Ball:  NewBall(cfg),
		Left:  NewRectPaddle(cfg, Left),
		Right: NewRectPaddle(cfg, Right),
	}
}

// Step advances the game by dt seconds. On a goal the ball and both paddles are put back
// to their starting positions before Step returns.
func (p *Pong) Step(dt float64, left, right Input) RoundResult {
	p.Left.Move(dt, left)
	p.Right.Move(dt, right)

	p.Ball.Advance(dt)
	if p.Left.Bounce(p.Ball) || p.Right.Bounce(p.Ball) {
		p.Ball.ClampSpeed()
	}

	result := p.Ball.Goal()
	if result != NoGoal {
		p.Reset()
	}
	return result
}

func (p *Pong) Reset() {
	p.Ball.Reset()
	p.Left.Reset()
	p.Right.Reset()
}

func (p *Pong) Snapshot() Snapshot {
	return Snapshot{
		Ball:        p.Ball.Pos,
		LeftPaddle:  p.Left.Position(),
		RightPaddle: p.Right.Position(),
	}
}
