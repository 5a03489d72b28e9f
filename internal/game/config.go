package game

import (
	"errors"
	"fmt"
	"math"
)

// Config holds the playfield geometry and ball tuning shared by server and clients.
type Config struct {
	ScreenWidth  float64 `yaml:"screen_width"`
	ScreenHeight float64 `yaml:"screen_height"`

	PaddleWidth  float64 `yaml:"paddle_width"`
	PaddleHeight float64 `yaml:"paddle_height"`
	PaddleSpeed  float64 `yaml:"paddle_speed"`

	BallRadius   float64 `yaml:"ball_radius"`
	BallVelocity Vec2    `yaml:"ball_velocity"`

	// Speedup multiplies the ball speed on every paddle hit.
	Speedup      float64 `yaml:"speedup"`
	MinBallSpeed float64 `yaml:"min_ball_speed"`
	MaxBallSpeed float64 `yaml:"max_ball_speed"`

	// MaxBounceAngle is the deflection, in degrees, of a hit on the very edge of a paddle.
	MaxBounceAngle float64 `yaml:"max_bounce_angle"`
	// PaddleInfluence is the share of the paddle's vertical velocity handed to the ball.
	PaddleInfluence float64 `yaml:"paddle_influence"`
}

func DefaultConfig() Config {
	return Config{
		ScreenWidth:     800,
		ScreenHeight:    600,
		PaddleWidth:     10,
		PaddleHeight:    180,
		PaddleSpeed:     200,
		BallRadius:      15,
		BallVelocity:    Vec2{X: 200, Y: 200},
		Speedup:         1.05,
		MinBallSpeed:    200,
		MaxBallSpeed:    800,
		MaxBounceAngle:  60,
		PaddleInfluence: 0.25,
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.ScreenWidth <= 0 || c.ScreenHeight <= 0 {
		errs = append(errs, fmt.Errorf("screen must be positive, got %vx%v", c.ScreenWidth, c.ScreenHeight))
	}
	if c.PaddleHeight <= 0 || c.PaddleHeight > c.ScreenHeight {
		errs = append(errs, fmt.Errorf("paddle height %v out of (0, %v]", c.PaddleHeight, c.ScreenHeight))
	}
	if c.PaddleWidth <= 0 {
		errs = append(errs, fmt.Errorf("paddle width %v must be positive", c.PaddleWidth))
	}
	if c.BallRadius <= 0 {
		errs = append(errs, fmt.Errorf("ball radius %v must be positive", c.BallRadius))
	}
	if c.MinBallSpeed <= 0 || c.MaxBallSpeed < c.MinBallSpeed {
		errs = append(errs, fmt.Errorf("ball speed band [%v, %v] is invalid", c.MinBallSpeed, c.MaxBallSpeed))
	}
	if c.BallVelocity.Len() == 0 {
		errs = append(errs, errors.New("initial ball velocity must not be zero"))
	}
	if c.MaxBounceAngle <= 0 || c.MaxBounceAngle >= 90 {
		errs = append(errs, fmt.Errorf("max bounce angle %v out of (0, 90)", c.MaxBounceAngle))
	}
	return errors.Join(errs...)
}

// Center is where the ball starts every round.
func (c Config) Center() Vec2 {
	return Vec2{X: c.ScreenWidth / 2, Y: c.ScreenHeight / 2}
}

// PaddleHome returns the starting center of a side's paddle.
func (c Config) PaddleHome(s Side) Vec2 {
	if s == Left {
		return Vec2{X: c.PaddleWidth / 2, Y: c.ScreenHeight / 2}
	}
	return Vec2{X: c.ScreenWidth - c.PaddleWidth/2, Y: c.ScreenHeight / 2}
}

func (c Config) bounceAngle() float64 {
	return c.MaxBounceAngle * math.Pi / 180
}
