package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// MaxDatagram is the receive buffer size; longer datagrams are truncated and fail to decode.
const MaxDatagram = 1024

var ErrMalformed = errors.New("malformed message")

type envelope struct {
	Type Kind    `json:"type"`
	Data Message `json:"data"`
}

func Encode(msg Message) ([]byte, error) {
	if msg == nil {
		return nil, errors.New("encode: nil message")
	}
	return json.Marshal(envelope{Type: msg.Kind(), Data: msg})
}

// Decode parses one datagram. Every failure wraps ErrMalformed.
func Decode(b []byte) (Message, error) {
	if !gjson.ValidBytes(b) {
		return nil, fmt.Errorf("%w: invalid json", ErrMalformed)
	}
	tag := gjson.GetBytes(b, "type")
	if tag.Type != gjson.String {
		return nil, fmt.Errorf("%w: missing type tag", ErrMalformed)
	}
	data := gjson.GetBytes(b, "data")

	var (
		msg Message
		err error
	)
	switch Kind(tag.Str) {
	case KindJoinRequest:
		msg, err = decodeAs[JoinRequest](data)
	case KindJoinAccepted:
		msg, err = decodeAs[JoinAccepted](data)
	case KindJoinRejected:
		msg, err = decodeAs[JoinRejected](data)
	case KindReadyToStart:
		msg, err = decodeAs[ReadyToStart](data)
	case KindState:
		msg, err = decodeAs[AuthoritativeState](data)
	case KindScore:
		msg, err = decodeAs[ScoreUpdate](data)
	case KindPlayerInput:
		msg, err = decodeAs[PlayerInput](data)
	case KindEndSession:
		msg, err = decodeAs[EndSession](data)
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrMalformed, tag.Str)
	}
	if err != nil {
		return nil, err
	}

	if in, ok := msg.(PlayerInput); ok && !in.Direction.Key.Valid() {
		return nil, fmt.Errorf("%w: unknown key %q", ErrMalformed, in.Direction.Key)
	}
	return msg, nil
}

func decodeAs[T Message](data gjson.Result) (Message, error) {
	var m T
	if !data.Exists() || data.Type == gjson.Null {
		return m, nil
	}
	if !data.IsObject() {
		return nil, fmt.Errorf("%w: %s payload is not an object", ErrMalformed, m.Kind())
	}
	if err := json.Unmarshal([]byte(data.Raw), &m); err != nil {
		return nil, fmt.Errorf("%w: %s payload: %v", ErrMalformed, m.Kind(), err)
	}
	return m, nil
}
