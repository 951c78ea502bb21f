// ABOUTME: Tests for the floor server websocket hub
// ABOUTME: Handshake, frame stride, controls, pause, duplicate IDs and the status TUI
package server

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/dancefloor/internal/protocol"
	"github.com/harperreed/dancefloor/internal/source"
	"github.com/harperreed/dancefloor/internal/stage"
	"github.com/harperreed/dancefloor/pkg/dance"
	"github.com/harperreed/dancefloor/pkg/formation"
)

type harness struct {
	srv   *Server
	stage *stage.Stage
	url   string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	opts := dance.DefaultOptions()
	opts.Seed = 5
	ens, err := dance.NewEnsemble(opts)
	require.NoError(t, err)

	st := stage.New(ens, source.NewBeat(120, 1), stage.Config{FrameRate: 60})
	srv := New(Config{Name: "Test Floor", FrameStride: 2}, st)

	ctx, cancel := context.WithCancel(context.Background())
	srv.startBroadcast(ctx)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		cancel()
		ts.Close()
	})

	return &harness{
		srv:   srv,
		stage: st,
		url:   "ws" + strings.TrimPrefix(ts.URL, "http") + protocol.Path,
	}
}

func (h *harness) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(h.url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msgType string, payload interface{}) {
	t.Helper()
	data, err := protocol.Encode(msgType, payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
}

func read(t *testing.T, conn *websocket.Conn) protocol.Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	env, err := protocol.Decode(data)
	require.NoError(t, err)
	return env
}

// readUntil skips messages of other types
func readUntil(t *testing.T, conn *websocket.Conn, msgType string) protocol.Envelope {
	t.Helper()
	for i := 0; i < 50; i++ {
		env := read(t, conn)
		if env.Type == msgType {
			return env
		}
	}
	t.Fatalf("no %s message", msgType)
	return protocol.Envelope{}
}

func hello(t *testing.T, conn *websocket.Conn, id string) protocol.ServerHello {
	t.Helper()
	send(t, conn, protocol.TypeClientHello, protocol.ClientHello{
		ClientID: id,
		Name:     "watcher " + id,
		Version:  protocol.ProtocolVersion,
	})
	env := read(t, conn)
	require.Equal(t, protocol.TypeServerHello, env.Type)
	var sh protocol.ServerHello
	require.NoError(t, env.Into(&sh))
	return sh
}

func TestHandshake(t *testing.T) {
	h := newHarness(t)
	conn := h.dial(t)

	sh := hello(t, conn, "a")
	assert.Equal(t, h.srv.ID(), sh.ServerID)
	assert.Equal(t, "Test Floor", sh.Name)
	assert.Equal(t, protocol.ProtocolVersion, sh.Version)
	assert.Equal(t, formation.Landscape.Canvas(), sh.Canvas)
	assert.Equal(t, 60, sh.FrameRate)
	assert.Equal(t, 2, sh.FrameStride)
	require.NotNil(t, sh.DeviceInfo)

	env := read(t, conn)
	require.Equal(t, protocol.TypeMetadata, env.Type)
	var meta protocol.Metadata
	require.NoError(t, env.Into(&meta))
	assert.Equal(t, "Test Beat", meta.Title)
	assert.False(t, meta.Paused)

	assert.Equal(t, 1, h.srv.ClientCount())
}

func TestFramesFollowStride(t *testing.T) {
	h := newHarness(t)
	conn := h.dial(t)
	hello(t, conn, "a")
	readUntil(t, conn, protocol.TypeMetadata)

	h.stage.Advance(2)

	env := readUntil(t, conn, protocol.TypeFrame)
	var frame protocol.Frame
	require.NoError(t, env.Into(&frame))
	assert.Equal(t, uint64(2), frame.Tick)
	assert.Len(t, frame.Dancers, dance.DefaultOptions().Count)
}

func TestControlReachesStage(t *testing.T) {
	h := newHarness(t)
	conn := h.dial(t)
	hello(t, conn, "a")

	send(t, conn, protocol.TypeControl, protocol.Control{Name: dance.CmdCount, Count: 9})

	require.Eventually(t, func() bool {
		h.stage.Advance(1)
		return len(h.stage.Latest().Dancers) == 9
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPauseBroadcastsMetadata(t *testing.T) {
	h := newHarness(t)
	conn := h.dial(t)
	hello(t, conn, "a")
	readUntil(t, conn, protocol.TypeMetadata)

	send(t, conn, protocol.TypePause, protocol.Pause{Paused: true})

	env := readUntil(t, conn, protocol.TypeMetadata)
	var meta protocol.Metadata
	require.NoError(t, env.Into(&meta))
	assert.True(t, meta.Paused)
	assert.True(t, h.stage.Paused())
}

func TestDuplicateClientRejected(t *testing.T) {
	h := newHarness(t)
	first := h.dial(t)
	hello(t, first, "same")

	second := h.dial(t)
	send(t, second, protocol.TypeClientHello, protocol.ClientHello{ClientID: "same", Name: "again", Version: protocol.ProtocolVersion})
	env := read(t, second)
	require.Equal(t, protocol.TypeServerError, env.Type)
	var se protocol.ServerError
	require.NoError(t, env.Into(&se))
	assert.Equal(t, protocol.ErrDuplicateClientID, se.Error)
	assert.Equal(t, 1, h.srv.ClientCount())
}

func TestBadHandshakes(t *testing.T) {
	tests := []struct {
		name    string
		msgType string
		payload interface{}
		code    string
	}{
		{"not a hello", protocol.TypeControl, protocol.Control{Name: dance.CmdSync, On: true}, protocol.ErrBadHello},
		{"missing id", protocol.TypeClientHello, protocol.ClientHello{Name: "x", Version: protocol.ProtocolVersion}, protocol.ErrBadHello},
		{"wrong version", protocol.TypeClientHello, protocol.ClientHello{ClientID: "x", Name: "x", Version: 99}, protocol.ErrVersionMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			conn := h.dial(t)
			send(t, conn, tt.msgType, tt.payload)

			env := read(t, conn)
			require.Equal(t, protocol.TypeServerError, env.Type)
			var se protocol.ServerError
			require.NoError(t, env.Into(&se))
			assert.Equal(t, tt.code, se.Error)
			assert.Zero(t, h.srv.ClientCount())
		})
	}
}

func TestStatusListsWatchers(t *testing.T) {
	h := newHarness(t)
	hello(t, h.dial(t), "b")
	hello(t, h.dial(t), "a")
	h.stage.Advance(3)

	st := h.srv.status()
	require.Len(t, st.Clients, 2)
	assert.Equal(t, "watcher a", st.Clients[0].Name)
	assert.Equal(t, "dancefloor - Test Beat", st.Track)
	assert.Equal(t, uint64(3), st.Ticks)
	assert.Equal(t, dance.DefaultOptions().Count, st.Dancers)
}

func TestTUIModel(t *testing.T) {
	quit := make(chan struct{}, 1)
	m := tuiModel{startTime: time.Now(), quitChan: quit}

	next, _ := m.Update(statusMsg(ServerStatus{
		Name:    "Floor",
		Track:   "Test Beat",
		Paused:  true,
		Dancers: 8,
		Clients: []ClientInfo{{Name: "kitchen", ID: "0123456789"}},
	}))
	view := next.View()
	assert.Contains(t, view, "Dancefloor Server")
	assert.Contains(t, view, "Test Beat (paused)")
	assert.Contains(t, view, "kitchen")
	assert.Contains(t, view, "01234567,")

	next, cmd := next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	assert.NotNil(t, cmd)
	assert.Contains(t, next.View(), "Shutting down")
	select {
	case <-quit:
	default:
		t.Fatal("quit not signalled")
	}
}

func TestTUIUpdateAfterStop(t *testing.T) {
	tui := NewServerTUI()
	tui.Stop()
	assert.NotPanics(t, func() {
		tui.Update(ServerStatus{})
		tui.Stop()
	})
}
