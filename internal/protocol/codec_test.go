package protocol_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netpong/internal/game"
	"netpong/internal/protocol"
)

func TestEncode_WireFormat(t *testing.T) {
	b, err := protocol.Encode(protocol.PlayerInput{
		PlayerID:  3,
		Tick:      9,
		Direction: protocol.Direction{Key: protocol.KeyUp, Pressed: true},
	})
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"type":"player_input","data":{"player_id":3,"tick":9,"direction":{"key":"up","pressed":true}}}`,
		string(b))

	b, err = protocol.Encode(protocol.JoinAccepted{Side: game.Right, PlayerID: 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"join_accepted","data":{"side":"right","player_id":1}}`, string(b))

	b, err = protocol.Encode(protocol.ReadyToStart{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"ready_to_start","data":{}}`, string(b))
}

func TestDecode_EveryKind(t *testing.T) {
	msgs := []protocol.Message{
		protocol.JoinRequest{},
		protocol.JoinAccepted{Side: game.Left, PlayerID: 4},
		protocol.JoinRejected{},
		protocol.ReadyToStart{},
		protocol.AuthoritativeState{
			Tick:        42,
			Ball:        game.Vec2{X: 1.5, Y: 2.5},
			LeftPaddle:  game.Vec2{X: 5, Y: 300},
			RightPaddle: game.Vec2{X: 795, Y: 120},
		},
		protocol.ScoreUpdate{Left: 2, Right: 7},
		protocol.PlayerInput{PlayerID: 1, Tick: 3, Direction: protocol.Direction{Key: protocol.KeyDown}},
		protocol.EndSession{PlayerID: 8},
	}

	for _, msg := range msgs {
		t.Run(string(msg.Kind()), func(t *testing.T) {
			b, err := protocol.Encode(msg)
			require.NoError(t, err)

			got, err := protocol.Decode(b)
			require.NoError(t, err)
			assert.Equal(t, msg, got)
		})
	}
}

func TestDecode_MissingPayload(t *testing.T) {
	got, err := protocol.Decode([]byte(`{"type":"join_request"}`))
	require.NoError(t, err)
	assert.Equal(t, protocol.JoinRequest{}, got)
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ``},
		{"not json", `hello`},
		{"truncated", `{"type":"state","data":{"tick":1`},
		{"no tag", `{"data":{}}`},
		{"numeric tag", `{"type":7,"data":{}}`},
		{"unknown tag", `{"type":"chat","data":{}}`},
		{"payload not object", `{"type":"score","data":[1,2]}`},
		{"wrong field type", `{"type":"state","data":{"tick":"one"}}`},
		{"negative tick", `{"type":"player_input","data":{"player_id":1,"tick":-1,"direction":{"key":"up","pressed":true}}}`},
		{"unknown side", `{"type":"join_accepted","data":{"side":"top","player_id":0}}`},
		{"unknown key", `{"type":"player_input","data":{"player_id":1,"tick":1,"direction":{"key":"left","pressed":true}}}`},
		{"array", `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := protocol.Decode([]byte(tt.input))
			assert.ErrorIs(t, err, protocol.ErrMalformed)
		})
	}
}

func TestFromClient(t *testing.T) {
	assert.True(t, protocol.FromClient(protocol.KindJoinRequest))
	assert.True(t, protocol.FromClient(protocol.KindPlayerInput))
	assert.True(t, protocol.FromClient(protocol.KindEndSession))
	assert.False(t, protocol.FromClient(protocol.KindState))
	assert.False(t, protocol.FromClient(protocol.KindJoinAccepted))
}
