// Package session wires the protocol events to the room registry, the
// matchmaking lobby and the publisher. Every handler here corresponds to one
// named client event.
package session

import (
	"time"

	"go.uber.org/zap"

	"github.com/harkirat155/tictac-realtime/internal/hub"
	"github.com/harkirat155/tictac-realtime/internal/lobby"
	"github.com/harkirat155/tictac-realtime/internal/registry"
	"github.com/harkirat155/tictac-realtime/internal/room"
	"github.com/harkirat155/tictac-realtime/pkg/types"
)

// Ack replies to the request on the same connection. It is nil when the
// client did not ask for a reply.
type Ack func(data any)

type Service struct {
	registry *registry.Registry
	lobby    *lobby.Lobby
	hub      *hub.Hub
	binder   *hub.Binder
	logger   *zap.Logger
}

func NewService(reg *registry.Registry, lob *lobby.Lobby, h *hub.Hub, binder *hub.Binder, logger *zap.Logger) *Service {
	return &Service{
		registry: reg,
		lobby:    lob,
		hub:      h,
		binder:   binder,
		logger:   logger,
	}
}

func (s *Service) CreateRoom(connID string, req types.CreateRoomRequest, ack Ack) {
	rm, err := s.registry.Create(connID, req.ClientID)
	if err != nil {
		s.logger.Error("create room", zap.Error(err))
		return
	}
	s.binder.Bind(connID, rm.Code())
	s.logger.Debug("room created",
		zap.String("room", rm.Code()),
		zap.String("conn", connID),
		zap.String("client", req.ClientID))
	if ack != nil {
		ack(types.CreateRoomAck{RoomID: rm.Code(), Player: room.RoleX})
	}
	s.publish(rm)
}

func (s *Service) JoinRoom(connID string, req types.JoinRoomRequest, ack Ack) {
	code := registry.NormalizeCode(req.RoomID)
	if code == "" {
		if ack != nil {
			ack(types.JoinRoomAck{Error: "Invalid room ID"})
		}
		return
	}
	rm := s.registry.Lookup(code)
	if rm == nil {
		if ack != nil {
			ack(types.JoinRoomAck{Error: "Room not found"})
		}
		return
	}
	s.registry.Touch(code)

	res := rm.Join(connID, req.ClientID)
	s.binder.Bind(connID, rm.Code())
	s.logger.Debug("joined room",
		zap.String("room", rm.Code()),
		zap.String("conn", connID),
		zap.String("client", req.ClientID),
		zap.String("role", res.Role))
	if ack != nil {
		ack(types.JoinRoomAck{Player: res.Role})
	}
	if res.Started {
		s.hub.SendToMany(rm.Members(), types.EventStartGame, struct{}{})
	}
	s.publish(rm)
}

// MakeMove applies a move. Illegal moves are silent no-ops: benign races from
// laggy clients, not protocol errors.
func (s *Service) MakeMove(connID string, req types.MakeMoveRequest) {
	rm := s.registry.Lookup(req.RoomID)
	if rm == nil {
		return
	}
	s.registry.Touch(req.RoomID)
	if rm.Move(connID, req.Index) {
		s.publish(rm)
	}
}

func (s *Service) ResetGame(req types.RoomRequest) {
	rm := s.registry.Lookup(req.RoomID)
	if rm == nil {
		return
	}
	s.registry.Touch(req.RoomID)
	rm.Reset()
	s.publish(rm)
	// A distinct reset event as well, so clients can drop transient UI
	// without diffing snapshots.
	s.hub.SendToMany(rm.Members(), types.EventGameReset, types.GameResetPayload{RoomID: rm.Code()})
}

func (s *Service) ResetScores(req types.RoomRequest) {
	rm := s.registry.Lookup(req.RoomID)
	if rm == nil {
		return
	}
	s.registry.Touch(req.RoomID)
	rm.ResetScores()
	s.publish(rm)
}

func (s *Service) RequestNewGame(connID string, req types.RoomRequest) {
	rm := s.registry.Lookup(req.RoomID)
	if rm == nil {
		return
	}
	s.registry.Touch(req.RoomID)
	rm.RequestNewGame(connID)
	s.publish(rm)
}

// CancelNewGameRequest clears a pending rematch request. Any member may
// cancel, not only the requester.
func (s *Service) CancelNewGameRequest(req types.RoomRequest) {
	rm := s.registry.Lookup(req.RoomID)
	if rm == nil {
		return
	}
	s.registry.Touch(req.RoomID)
	rm.CancelNewGameRequest()
	s.publish(rm)
}

func (s *Service) LeaveRoom(connID string, req types.LeaveRoomRequest, ack Ack) {
	rm := s.registry.Lookup(req.RoomID)
	if rm == nil {
		if ack != nil {
			ack(types.LeaveRoomAck{Error: "Room not found"})
		}
		return
	}
	res := rm.Leave(connID, req.ClientID, true)
	if !res.Changed {
		if ack != nil {
			ack(types.LeaveRoomAck{Error: "Not in room"})
		}
		return
	}
	s.registry.Touch(req.RoomID)
	s.binder.Unbind(connID, rm.Code())
	if res.HadVoice {
		s.hub.SendToMany(rm.Members(), types.EventVoiceUserLeft, types.VoiceUserLeft{ID: connID})
	}
	// The room is not deleted even if now empty; the GC sweep reclaims it
	// after the TTL, which is what makes reconnection grace periods work.
	s.publish(rm)
	if ack != nil {
		ack(types.LeaveRoomAck{OK: true})
	}
}

// Disconnect performs leave-style cleanup in every room the connection had
// joined, but keeps clientId seat reservations so the player can reclaim
// their seat on reconnect.
func (s *Service) Disconnect(connID string) {
	for _, code := range s.binder.Drop(connID) {
		rm := s.registry.Lookup(code)
		if rm == nil {
			continue
		}
		res := rm.Leave(connID, "", false)
		if !res.Changed {
			continue
		}
		s.registry.Touch(code)
		if res.HadVoice {
			s.hub.SendToMany(rm.Members(), types.EventVoiceUserLeft, types.VoiceUserLeft{ID: connID})
		}
		s.publish(rm)
	}
	if s.lobby.Remove(connID) {
		s.broadcastLobby()
	}
	s.logger.Debug("disconnected", zap.String("conn", connID))
}

func (s *Service) VoiceJoin(connID string, req types.VoiceJoinRequest) {
	rm := s.registry.Lookup(req.RoomID)
	if rm == nil {
		return
	}
	s.registry.Touch(req.RoomID)
	rm.VoiceJoin(connID, req.Muted)
	s.notifyOthers(rm, connID, types.EventVoiceUserJoined, types.VoiceUserJoined{ID: connID, Muted: req.Muted})
	s.publish(rm)
}

func (s *Service) VoiceLeave(connID string, req types.RoomRequest) {
	rm := s.registry.Lookup(req.RoomID)
	if rm == nil {
		return
	}
	s.registry.Touch(req.RoomID)
	rm.VoiceLeave(connID)
	s.notifyOthers(rm, connID, types.EventVoiceUserLeft, types.VoiceUserLeft{ID: connID})
	s.publish(rm)
}

func (s *Service) VoiceMute(connID string, req types.VoiceMuteRequest) {
	rm := s.registry.Lookup(req.RoomID)
	if rm == nil {
		return
	}
	s.registry.Touch(req.RoomID)
	rm.VoiceSetMuted(connID, req.Muted)
	s.notifyOthers(rm, connID, types.EventVoiceMute, types.VoiceMuteState{ID: connID, Muted: req.Muted})
	s.publish(rm)
}

// VoiceSignal relays an opaque WebRTC payload to one named target. The relay
// does not inspect the payload, and membership of either party is not
// strictly verified; hardening that check is a known gap.
func (s *Service) VoiceSignal(connID string, req types.VoiceSignalRequest) {
	if s.registry.Lookup(req.RoomID) == nil {
		return
	}
	s.hub.SendTo(req.TargetID, types.EventVoiceSignal, types.VoiceSignalPayload{
		From:   connID,
		Data:   req.Data,
		RoomID: req.RoomID,
	})
}

func (s *Service) JoinLobby(connID string, req types.JoinLobbyRequest, ack Ack) {
	pos, err := s.lobby.Add(connID, req.DisplayName)
	if err != nil {
		if ack != nil {
			ack(types.JoinLobbyAck{Success: false, Error: err.Error()})
		}
		return
	}
	if ack != nil {
		ack(types.JoinLobbyAck{Success: true, Position: &pos})
	}
	s.broadcastLobby()
	s.tryMatch()
}

func (s *Service) LeaveLobby(connID string, ack Ack) {
	removed := s.lobby.Remove(connID)
	if ack != nil {
		ack(types.LeaveLobbyAck{Success: removed})
	}
	if removed {
		s.broadcastLobby()
	}
}

// tryMatch pairs the two earliest waiting players and materializes the match
// into a new room: earlier entry seats X, the later O.
func (s *Service) tryMatch() {
	for {
		first, second, ok := s.lobby.Match()
		if !ok {
			return
		}
		rm, err := s.registry.Create(first.ConnID, "")
		if err != nil {
			s.logger.Error("create matched room", zap.Error(err))
			return
		}
		rm.Join(second.ConnID, "")
		s.binder.Bind(first.ConnID, rm.Code())
		s.binder.Bind(second.ConnID, rm.Code())

		s.hub.SendTo(first.ConnID, types.EventMatchFound, types.MatchFound{
			RoomID:   rm.Code(),
			Player:   room.RoleX,
			Opponent: second.DisplayName,
		})
		s.hub.SendTo(second.ConnID, types.EventMatchFound, types.MatchFound{
			RoomID:   rm.Code(),
			Player:   room.RoleO,
			Opponent: first.DisplayName,
		})
		s.hub.SendToMany(rm.Members(), types.EventStartGame, struct{}{})
		s.publish(rm)
		s.broadcastLobby()
		s.logger.Info("matched players",
			zap.String("room", rm.Code()),
			zap.String("x", first.ConnID),
			zap.String("o", second.ConnID))
	}
}

// publish broadcasts the room's full snapshot to every member.
func (s *Service) publish(rm *room.Room) {
	snap := rm.Snapshot()
	recipients := make([]string, 0, 2+len(snap.Roster.Spectators))
	if snap.Roster.X != "" {
		recipients = append(recipients, snap.Roster.X)
	}
	if snap.Roster.O != "" {
		recipients = append(recipients, snap.Roster.O)
	}
	recipients = append(recipients, snap.Roster.Spectators...)
	s.hub.SendToMany(recipients, types.EventGameUpdate, snap)
}

// notifyOthers sends to every room member except the acting connection.
func (s *Service) notifyOthers(rm *room.Room, senderID, event string, data any) {
	members := rm.Members()
	others := members[:0]
	for _, id := range members {
		if id != senderID {
			others = append(others, id)
		}
	}
	s.hub.SendToMany(others, event, data)
}

func (s *Service) broadcastLobby() {
	entries := s.lobby.Queue()
	queue := make([]types.LobbyEntry, len(entries))
	for i, e := range entries {
		queue[i] = types.LobbyEntry{
			ID:          e.ConnID,
			DisplayName: e.DisplayName,
			JoinedAt:    e.JoinedAt.UnixMilli(),
		}
	}
	s.hub.SendToAll(types.EventLobbyUpdate, types.LobbyUpdate{
		Queue:     queue,
		Timestamp: time.Now().UnixMilli(),
	})
}
