package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/harkirat155/tictac-realtime/internal/hub"
	"github.com/harkirat155/tictac-realtime/internal/lobby"
	"github.com/harkirat155/tictac-realtime/internal/registry"
	"github.com/harkirat155/tictac-realtime/internal/session"
	"github.com/harkirat155/tictac-realtime/pkg/types"
)

func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := zap.NewNop()
	h := hub.New(logger)
	svc := session.NewService(
		registry.New(500, 2*time.Minute, logger),
		lobby.New(),
		h,
		hub.NewBinder(),
		logger,
	)
	srv := httptest.NewServer(Handler(svc, h, logger))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, ctx context.Context, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.Dial(ctx, "ws"+url[len("http"):], nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func send(t *testing.T, ctx context.Context, conn *websocket.Conn, event string, seq uint64, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	payload, err := json.Marshal(types.Envelope{Event: event, Seq: seq, Data: raw})
	require.NoError(t, err)
	require.NoError(t, conn.Write(ctx, websocket.MessageText, payload))
}

func recv(t *testing.T, ctx context.Context, conn *websocket.Conn) types.Envelope {
	t.Helper()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var env types.Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	return env
}

// recvEvent reads envelopes until one matches, skipping interleaved
// broadcasts.
func recvEvent(t *testing.T, ctx context.Context, conn *websocket.Conn, event string) types.Envelope {
	t.Helper()
	for {
		env := recv(t, ctx, conn)
		if env.Event == event {
			return env
		}
	}
}

func TestHandler_HelloThenCreateRoomRoundTrip(t *testing.T) {
	srv := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dial(t, ctx, srv.URL)

	hello := recv(t, ctx, conn)
	require.Equal(t, types.EventConnected, hello.Event)
	var me types.ConnectedPayload
	require.NoError(t, json.Unmarshal(hello.Data, &me))
	assert.NotEmpty(t, me.ID)

	send(t, ctx, conn, types.EventCreateRoom, 1, types.CreateRoomRequest{ClientID: "client-1"})

	ackEnv := recvEvent(t, ctx, conn, types.EventAck)
	assert.Equal(t, uint64(1), ackEnv.Seq)
	var ack types.CreateRoomAck
	require.NoError(t, json.Unmarshal(ackEnv.Data, &ack))
	assert.Len(t, ack.RoomID, 5)
	assert.Equal(t, "X", ack.Player)

	snapEnv := recvEvent(t, ctx, conn, types.EventGameUpdate)
	var snap types.GameUpdate
	require.NoError(t, json.Unmarshal(snapEnv.Data, &snap))
	assert.Equal(t, ack.RoomID, snap.RoomID)
	assert.Equal(t, me.ID, snap.Roster.X)
}

func TestHandler_TwoClientsPlayAcrossTheWire(t *testing.T) {
	srv := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	p1 := dial(t, ctx, srv.URL)
	p2 := dial(t, ctx, srv.URL)
	recvEvent(t, ctx, p1, types.EventConnected)
	recvEvent(t, ctx, p2, types.EventConnected)

	send(t, ctx, p1, types.EventCreateRoom, 1, types.CreateRoomRequest{})
	var created types.CreateRoomAck
	require.NoError(t, json.Unmarshal(recvEvent(t, ctx, p1, types.EventAck).Data, &created))

	send(t, ctx, p2, types.EventJoinRoom, 1, types.JoinRoomRequest{RoomID: created.RoomID})
	var joined types.JoinRoomAck
	require.NoError(t, json.Unmarshal(recvEvent(t, ctx, p2, types.EventAck).Data, &joined))
	require.Equal(t, "O", joined.Player)

	recvEvent(t, ctx, p1, types.EventStartGame)
	recvEvent(t, ctx, p2, types.EventStartGame)
	// The join also broadcast a snapshot; drain it so the move loop below
	// pairs one update per move.
	recvEvent(t, ctx, p1, types.EventGameUpdate)
	recvEvent(t, ctx, p2, types.EventGameUpdate)

	for _, mv := range []struct {
		conn  *websocket.Conn
		index int
	}{{p1, 0}, {p2, 4}, {p1, 1}, {p2, 5}, {p1, 2}} {
		send(t, ctx, mv.conn, types.EventMakeMove, 0, types.MakeMoveRequest{RoomID: created.RoomID, Index: mv.index})
		// Each legal move yields one broadcast on both ends.
		recvEvent(t, ctx, p1, types.EventGameUpdate)
		recvEvent(t, ctx, p2, types.EventGameUpdate)
	}

	send(t, ctx, p2, types.EventMakeMove, 0, types.MakeMoveRequest{RoomID: created.RoomID, Index: 8})
	send(t, ctx, p1, types.EventResetGame, 0, types.RoomRequest{RoomID: created.RoomID})

	// The illegal post-win move produced no broadcast, so the next events
	// are the reset snapshot and the distinct gameReset notification.
	var snap types.GameUpdate
	require.NoError(t, json.Unmarshal(recvEvent(t, ctx, p2, types.EventGameUpdate).Data, &snap))
	assert.Empty(t, snap.Winner)
	assert.Equal(t, "O", snap.Turn, "loser leads the rematch")
	assert.Equal(t, 1, snap.XScore)
	recvEvent(t, ctx, p2, types.EventGameReset)
}

func TestHandler_MalformedJSONIsIgnored(t *testing.T) {
	srv := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dial(t, ctx, srv.URL)
	recvEvent(t, ctx, conn, types.EventConnected)

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte("{not json")))

	// The connection survives and keeps serving requests.
	send(t, ctx, conn, types.EventCreateRoom, 7, types.CreateRoomRequest{})
	ack := recvEvent(t, ctx, conn, types.EventAck)
	assert.Equal(t, uint64(7), ack.Seq)
}
