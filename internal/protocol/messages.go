package protocol

import "netpong/internal/game"

// Kind is the envelope tag of a message.
type Kind string

const (
	KindJoinRequest  Kind = "join_request"
	KindJoinAccepted Kind = "join_accepted"
	KindJoinRejected Kind = "join_rejected"
	KindReadyToStart Kind = "ready_to_start"
	KindState        Kind = "state"
	KindScore        Kind = "score"
	KindPlayerInput  Kind = "player_input"
	KindEndSession   Kind = "end_session"
)

// Message is one of the datagram payloads exchanged between clients and the server.
// The set is closed: only types in this package implement it.
type Message interface {
	Kind() Kind
	message()
}

type JoinRequest struct{}

type JoinAccepted struct {
	Side     game.Side     `json:"side"`
	PlayerID game.PlayerID `json:"player_id"`
}

type JoinRejected struct{}

type ReadyToStart struct{}

// AuthoritativeState is the server's view of one tick.
type AuthoritativeState struct {
	Tick        game.Tick `json:"tick"`
	Ball        game.Vec2 `json:"ball"`
	LeftPaddle  game.Vec2 `json:"left_paddle"`
	RightPaddle game.Vec2 `json:"right_paddle"`
}

type ScoreUpdate struct {
	Left  uint32 `json:"left"`
	Right uint32 `json:"right"`
}

type Key string

const (
	KeyUp   Key = "up"
	KeyDown Key = "down"
)

func (k Key) Valid() bool {
	return k == KeyUp || k == KeyDown
}

type Direction struct {
	Key     Key  `json:"key"`
	Pressed bool `json:"pressed"`
}

type PlayerInput struct {
	PlayerID  game.PlayerID `json:"player_id"`
	Tick      game.Tick     `json:"tick"`
	Direction Direction     `json:"direction"`
}

type EndSession struct {
	PlayerID game.PlayerID `json:"player_id"`
}

func (JoinRequest) Kind() Kind        { return KindJoinRequest }
func (JoinAccepted) Kind() Kind       { return KindJoinAccepted }
func (JoinRejected) Kind() Kind       { return KindJoinRejected }
func (ReadyToStart) Kind() Kind       { return KindReadyToStart }
func (AuthoritativeState) Kind() Kind { return KindState }
func (ScoreUpdate) Kind() Kind        { return KindScore }
func (PlayerInput) Kind() Kind        { return KindPlayerInput }
func (EndSession) Kind() Kind         { return KindEndSession }

func (JoinRequest) message()        {}
func (JoinAccepted) message()       {}
func (JoinRejected) message()       {}
func (ReadyToStart) message()       {}
func (AuthoritativeState) message() {}
func (ScoreUpdate) message()        {}
func (PlayerInput) message()        {}
func (EndSession) message()         {}

// FromClient reports whether clients are allowed to send messages of kind k.
func FromClient(k Kind) bool {
	switch k {
	case KindJoinRequest, KindPlayerInput, KindEndSession:
		return true
	}
	return false
}
