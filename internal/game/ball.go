package game

type Ball struct {
	Pos    Vec2
	Vel    Vec2
	Radius float64

	home   Vec2
	serve  Vec2
	field  Rect
	minSpd float64
	maxSpd float64
}

func NewBall(cfg Config) *Ball {
	return &Ball{
		Pos:    cfg.Center(),
		Vel:    cfg.BallVelocity,
		Radius: cfg.BallRadius,
		home:   cfg.Center(),
		serve:  cfg.BallVelocity,
		field:  Rect{Max: Vec2{X: cfg.ScreenWidth, Y: cfg.ScreenHeight}},
		minSpd: cfg.MinBallSpeed,
		maxSpd: cfg.MaxBallSpeed,
	}
}

func (b *Ball) Reset() {
	b.Pos = b.home
	b.Vel = b.serve
}

// Advance moves the ball by one step and reflects it off the top and bottom walls.
// The part of the step that overshoots a wall is mirrored back into the field.
func (b *Ball) Advance(dt float64) {
	b.Pos = b.Pos.Add(b.Vel.Scale(dt))

	top := b.field.Min.Y + b.Radius
	bottom := b.field.Max.Y - b.Radius
	switch {
	case b.Pos.Y < top:
		b.Pos.Y = top + (top - b.Pos.Y)
		b.Vel.Y = -b.Vel.Y
	case b.Pos.Y > bottom:
		b.Pos.Y = bottom - (b.Pos.Y - bottom)
		b.Vel.Y = -b.Vel.Y
	}
}

// Goal reports which side scored if the ball center crossed a vertical goal line.
func (b *Ball) Goal() RoundResult {
	switch {
	case b.Pos.X < b.field.Min.X:
		return RightScored
	case b.Pos.X > b.field.Max.X:
		return LeftScored
	}
	return NoGoal
}

// ClampSpeed keeps the speed inside [min, max] without changing direction.
// A ball at rest is relaunched along the serve direction.
func (b *Ball) ClampSpeed() {
	speed := b.Vel.Len()
	switch {
	case speed == 0:
		b.Vel = b.serve.Normalize().Scale(b.minSpd)
	case speed > b.maxSpd:
		b.Vel = b.Vel.Scale(b.maxSpd / speed)
	case speed < b.minSpd:
		b.Vel = b.Vel.Scale(b.minSpd / speed)
	}
}
