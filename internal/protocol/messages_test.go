// ABOUTME: Tests for wire message helpers
// ABOUTME: Envelope decoding, payload errors and frame/control payloads
package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/dancefloor/pkg/dance"
)

func TestEncodeDecodeHello(t *testing.T) {
	data, err := Encode(TypeClientHello, ClientHello{ClientID: "abc", Name: "watcher", Version: ProtocolVersion})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"client/hello","payload":{"client_id":"abc","name":"watcher","version":1}}`, string(data))

	env, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, TypeClientHello, env.Type)

	var hello ClientHello
	require.NoError(t, env.Into(&hello))
	assert.Equal(t, "abc", hello.ClientID)
}

func TestControlPayload(t *testing.T) {
	w := dance.Distribution{1, 2, 3, 4, 5}
	data, err := Encode(TypeControl, Control{Name: dance.CmdDistribution, Distribution: &w})
	require.NoError(t, err)

	env, err := Decode(data)
	require.NoError(t, err)
	var c Control
	require.NoError(t, env.Into(&c))
	assert.Equal(t, dance.CmdDistribution, c.Name)
	assert.Equal(t, w, *c.Distribution)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode([]byte("not json"))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"payload":{}}`))
	assert.ErrorContains(t, err, "without type")

	env, err := Decode([]byte(`{"type":"floor/control"}`))
	require.NoError(t, err)
	var c Control
	assert.ErrorContains(t, env.Into(&c), "empty payload")

	env, err = Decode([]byte(`{"type":"floor/control","payload":{"count":"many"}}`))
	require.NoError(t, err)
	assert.ErrorContains(t, env.Into(&c), "bad payload")
}

func TestPausePayload(t *testing.T) {
	data, err := Encode(TypePause, Pause{Paused: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"floor/pause","payload":{"paused":true}}`, string(data))
}
