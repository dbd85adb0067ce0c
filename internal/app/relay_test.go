package app

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRelay_Forwards_Payload_Verbatim(t *testing.T) {
	req := require.New(t)
	e := newTestEngine(t, defaultLimits())
	connect(t, e, "x")
	trY := connect(t, e, "y")

	payload := json.RawMessage(`{"sdp":"v=0 o=- 46117 2","nested":{"k":[1,2,3]}}`)

	// When x signals y
	e.Relay.Relay("x", "y", SignalOffer, payload)

	// Then y received the kind, the sender and the untouched payload
	ev, ok := trY.lastOfType(t, "webrtc-signal")
	req.True(ok)
	req.Equal(SignalOffer, ev["signalType"])
	req.Equal("x", ev["fromUserId"])

	got, err := json.Marshal(ev["payload"])
	req.NoError(err)
	req.JSONEq(string(payload), string(got))
}

func TestRelay_Offline_Target_Is_A_Silent_Drop(t *testing.T) {
	req := require.New(t)
	e := newTestEngine(t, defaultLimits())
	trX := connect(t, e, "x")

	// When signaling a peer that is not connected
	e.Relay.Relay("x", "nobody", SignalAnswer, json.RawMessage(`{}`))

	// Then the sender sees neither an error event nor an echo
	req.Empty(trX.events(t))
}

func TestRelay_Unknown_Kind_Is_Dropped(t *testing.T) {
	req := require.New(t)
	e := newTestEngine(t, defaultLimits())
	connect(t, e, "x")
	trY := connect(t, e, "y")

	e.Relay.Relay("x", "y", "renegotiate-everything", json.RawMessage(`{}`))

	req.Empty(trY.events(t))
}

func TestRelay_All_Known_Kinds_Pass(t *testing.T) {
	req := require.New(t)
	e := newTestEngine(t, defaultLimits())
	connect(t, e, "x")
	trY := connect(t, e, "y")

	for _, kind := range []string{SignalOffer, SignalAnswer, SignalICECandidate} {
		e.Relay.Relay("x", "y", kind, json.RawMessage(`{"k":1}`))
	}

	req.Equal(3, trY.countOfType(t, "webrtc-signal"))
}
