package game

import (
	"fmt"
	"math"
)

// PairSize is the number of players in one match.
const PairSize = 2

type (
	PlayerID uint32
	MatchID  uint32
	Tick     uint32
)

// MatchIDFor maps a player to its match: ids 2n and 2n+1 share match n.
func MatchIDFor(p PlayerID) MatchID {
	return MatchID(p / PairSize)
}

// SideFor gives even ids the left paddle and odd ids the right one.
func SideFor(p PlayerID) Side {
	if p%PairSize == 0 {
		return Left
	}
	return Right
}

// Partner returns the other player of p's match.
func Partner(p PlayerID) PlayerID {
	if p%PairSize == 0 {
		return p + 1
	}
	return p - 1
}

type Side uint8

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("side(%d)", uint8(s))
}

func (s Side) MarshalText() ([]byte, error) {
	if s != Left && s != Right {
		return nil, fmt.Errorf("invalid side %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Side) UnmarshalText(b []byte) error {
	switch string(b) {
	case "left":
		*s = Left
	case "right":
		*s = Right
	default:
		return fmt.Errorf("invalid side %q", b)
	}
	return nil
}

type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

func (v Vec2) Scale(k float64) Vec2 {
	return Vec2{v.X * k, v.Y * k}
}

func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalize returns the unit vector of v, or the zero vector when v has no length.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Rect is an axis aligned box, Min is the top-left corner (y grows downwards).
type Rect struct {
	Min Vec2
	Max Vec2
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
