package ws

import (
	"encoding/json"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/harkirat155/tictac-realtime/internal/hub"
	"github.com/harkirat155/tictac-realtime/internal/session"
	"github.com/harkirat155/tictac-realtime/pkg/types"
)

// Handler accepts a websocket, assigns the connection id, and pumps the
// event protocol until the client goes away.
func Handler(svc *session.Service, h *hub.Hub, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// In dev ONLY, you can loosen origin checks:
			// OriginPatterns: []string{"http://localhost:*", "http://127.0.0.1:*"},
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		c := newClient(r.Context(), conn, uuid.NewString())
		defer c.cancel()

		h.Register(c)
		defer func() {
			h.Unregister(c.ConnID())
			svc.Disconnect(c.ConnID())
		}()

		go c.writeLoop(logger)

		// Tell the client its connection id first; rosters and signaling
		// targets are expressed in these ids.
		h.SendTo(c.ConnID(), types.EventConnected, types.ConnectedPayload{ID: c.ConnID()})

		for {
			_, data, err := conn.Read(c.ctx)
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}

			var env types.Envelope
			if err := json.Unmarshal(data, &env); err != nil {
				logger.Debug("bad json from client", zap.String("conn", c.ConnID()), zap.Error(err))
				continue
			}
			dispatch(svc, c, env, logger)
		}
	}
}

// dispatch routes one decoded envelope. Payload decode failures fall through
// as zero-valued requests; the handlers' own validation rejects them.
func dispatch(svc *session.Service, c *Client, env types.Envelope, logger *zap.Logger) {
	var ack session.Ack
	if env.Seq != 0 {
		seq := env.Seq
		ack = func(data any) {
			raw, err := json.Marshal(data)
			if err != nil {
				logger.Error("encode ack", zap.Uint64("seq", seq), zap.Error(err))
				return
			}
			c.Send(types.Envelope{Event: types.EventAck, Seq: seq, Data: raw})
		}
	}

	switch env.Event {
	case types.EventCreateRoom:
		var req types.CreateRoomRequest
		_ = json.Unmarshal(env.Data, &req)
		svc.CreateRoom(c.ConnID(), req, ack)
	case types.EventJoinRoom:
		var req types.JoinRoomRequest
		_ = json.Unmarshal(env.Data, &req)
		svc.JoinRoom(c.ConnID(), req, ack)
	case types.EventMakeMove:
		var req types.MakeMoveRequest
		_ = json.Unmarshal(env.Data, &req)
		svc.MakeMove(c.ConnID(), req)
	case types.EventResetGame:
		var req types.RoomRequest
		_ = json.Unmarshal(env.Data, &req)
		svc.ResetGame(req)
	case types.EventResetScores:
		var req types.RoomRequest
		_ = json.Unmarshal(env.Data, &req)
		svc.ResetScores(req)
	case types.EventRequestNewGame:
		var req types.RoomRequest
		_ = json.Unmarshal(env.Data, &req)
		svc.RequestNewGame(c.ConnID(), req)
	case types.EventCancelNewGame:
		var req types.RoomRequest
		_ = json.Unmarshal(env.Data, &req)
		svc.CancelNewGameRequest(req)
	case types.EventLeaveRoom:
		var req types.LeaveRoomRequest
		_ = json.Unmarshal(env.Data, &req)
		svc.LeaveRoom(c.ConnID(), req, ack)
	case types.EventVoiceJoin:
		var req types.VoiceJoinRequest
		_ = json.Unmarshal(env.Data, &req)
		svc.VoiceJoin(c.ConnID(), req)
	case types.EventVoiceLeave:
		var req types.RoomRequest
		_ = json.Unmarshal(env.Data, &req)
		svc.VoiceLeave(c.ConnID(), req)
	case types.EventVoiceMute:
		var req types.VoiceMuteRequest
		_ = json.Unmarshal(env.Data, &req)
		svc.VoiceMute(c.ConnID(), req)
	case types.EventVoiceSignal:
		var req types.VoiceSignalRequest
		_ = json.Unmarshal(env.Data, &req)
		svc.VoiceSignal(c.ConnID(), req)
	case types.EventJoinLobby:
		var req types.JoinLobbyRequest
		_ = json.Unmarshal(env.Data, &req)
		svc.JoinLobby(c.ConnID(), req, ack)
	case types.EventLeaveLobby:
		svc.LeaveLobby(c.ConnID(), ack)
	default:
		logger.Debug("unknown event", zap.String("conn", c.ConnID()), zap.String("event", env.Event))
	}
}
