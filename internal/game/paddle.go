package game

import "math"

// Paddle is anything a player steers that the ball can bounce off.
type Paddle interface {
	Position() Vec2
	// Velocity is the vertical speed of the last Move, negative when going up.
	Velocity() float64
	Move(dt float64, in Input)
	// Bounce deflects the ball if it touches the paddle while travelling towards it.
	Bounce(b *Ball) bool
	Reset()
}

// RectPaddle is a rectangle pinned to one goal line that slides vertically.
type RectPaddle struct {
	pos    Vec2
	home   Vec2
	vel    float64
	width  float64
	height float64
	speed  float64
	// facing is +1 when the paddle sends the ball to the right, -1 otherwise.
	facing float64

	minY, maxY float64

	speedup   float64
	maxAngle  float64
	influence float64
}

var _ Paddle = (*RectPaddle)(nil)

func NewRectPaddle(cfg Config, side Side) *RectPaddle {
	facing := 1.0
	if side == Right {
		facing = -1
	}
	home := cfg.PaddleHome(side)
	return &RectPaddle{
		pos:       home,
		home:      home,
		width:     cfg.PaddleWidth,
		height:    cfg.PaddleHeight,
		speed:     cfg.PaddleSpeed,
		facing:    facing,
		minY:      cfg.PaddleHeight / 2,
		maxY:      cfg.ScreenHeight - cfg.PaddleHeight/2,
		speedup:   cfg.Speedup,
		maxAngle:  cfg.bounceAngle(),
		influence: cfg.PaddleInfluence,
	}
}

func (p *RectPaddle) Position() Vec2    { return p.pos }
func (p *RectPaddle) Velocity() float64 { return p.vel }

func (p *RectPaddle) Reset() {
	p.pos = p.home
	p.vel = 0
}

func (p *RectPaddle) Move(dt float64, in Input) {
	p.vel = 0
	if in.Up {
		p.vel -= p.speed
	}
	if in.Down {
		p.vel += p.speed
	}
	p.pos.Y = clamp(p.pos.Y+p.vel*dt, p.minY, p.maxY)
}

func (p *RectPaddle) Bounce(b *Ball) bool {
	if b.Vel.X*p.facing >= 0 {
		return false
	}

	hw, hh := p.width/2, p.height/2
	nearest := Vec2{
		X: clamp(b.Pos.X, p.pos.X-hw, p.pos.X+hw),
		Y: clamp(b.Pos.Y, p.pos.Y-hh, p.pos.Y+hh),
	}
	dx, dy := b.Pos.X-nearest.X, b.Pos.Y-nearest.Y
	if dx*dx+dy*dy > b.Radius*b.Radius {
		return false
	}

	offset := clamp((b.Pos.Y-p.pos.Y)/hh, -1, 1)
	angle := offset * p.maxAngle
	speed := b.Vel.Len() * p.speedup

	b.Vel = Vec2{
		X: p.facing * speed * math.Cos(angle),
		Y: speed*math.Sin(angle) + p.vel*p.influence,
	}
	b.Pos.X = p.pos.X + p.facing*(hw+b.Radius)
	return true
}
