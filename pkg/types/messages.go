package types

import "encoding/json"

// Envelope frames every message on the socket, both directions. A client
// request that wants a reply sets Seq (starting at 1); the server answers
// with an "ack" envelope carrying the same Seq.
type Envelope struct {
	Event string          `json:"event"`
	Seq   uint64          `json:"seq,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Client -> server events.
const (
	EventCreateRoom     = "createRoom"
	EventJoinRoom       = "joinRoom"
	EventMakeMove       = "makeMove"
	EventResetGame      = "resetGame"
	EventResetScores    = "resetScores"
	EventRequestNewGame = "requestNewGame"
	EventCancelNewGame  = "cancelNewGameRequest"
	EventLeaveRoom      = "leaveRoom"
	EventVoiceJoin      = "voice:join"
	EventVoiceLeave     = "voice:leave"
	EventVoiceMute      = "voice:mute-state"
	EventVoiceSignal    = "voice:signal"
	EventJoinLobby      = "joinLobby"
	EventLeaveLobby     = "leaveLobby"
)

// Server -> client events.
const (
	EventAck             = "ack"
	EventConnected       = "connected"
	EventGameUpdate      = "gameUpdate"
	EventStartGame       = "startGame"
	EventGameReset       = "gameReset"
	EventVoiceUserJoined = "voice:user-joined"
	EventVoiceUserLeft   = "voice:user-left"
	EventLobbyUpdate     = "lobbyUpdate"
	EventMatchFound      = "matchFound"
)

type CreateRoomRequest struct {
	ClientID string `json:"clientId,omitempty"`
}

type CreateRoomAck struct {
	RoomID string `json:"roomId"`
	Player string `json:"player"`
}

type JoinRoomRequest struct {
	RoomID   string `json:"roomId"`
	ClientID string `json:"clientId,omitempty"`
}

type JoinRoomAck struct {
	Player string `json:"player,omitempty"`
	Error  string `json:"error,omitempty"`
}

type MakeMoveRequest struct {
	RoomID string `json:"roomId"`
	Index  int    `json:"index"`
}

// RoomRequest covers the events whose payload is just a room id:
// resetGame, resetScores, requestNewGame, cancelNewGameRequest, voice:leave.
type RoomRequest struct {
	RoomID string `json:"roomId"`
}

type LeaveRoomRequest struct {
	RoomID   string `json:"roomId"`
	ClientID string `json:"clientId,omitempty"`
}

type LeaveRoomAck struct {
	OK    bool   `json:"ok,omitempty"`
	Error string `json:"error,omitempty"`
}

type VoiceJoinRequest struct {
	RoomID string `json:"roomId"`
	Muted  bool   `json:"muted"`
}

type VoiceMuteRequest struct {
	RoomID string `json:"roomId"`
	Muted  bool   `json:"muted"`
}

type VoiceSignalRequest struct {
	RoomID   string          `json:"roomId"`
	TargetID string          `json:"targetId"`
	Data     json.RawMessage `json:"data"`
}

type JoinLobbyRequest struct {
	DisplayName string `json:"displayName"`
}

type JoinLobbyAck struct {
	Success  bool   `json:"success"`
	Position *int   `json:"position,omitempty"`
	Error    string `json:"error,omitempty"`
}

type LeaveLobbyAck struct {
	Success bool `json:"success"`
}

// ConnectedPayload tells a freshly accepted client its connection id, so it
// can recognize itself in rosters and address voice:signal targets.
type ConnectedPayload struct {
	ID string `json:"id"`
}

type GameResetPayload struct {
	RoomID string `json:"roomId"`
}

type VoiceUserJoined struct {
	ID    string `json:"id"`
	Muted bool   `json:"muted"`
}

type VoiceUserLeft struct {
	ID string `json:"id"`
}

type VoiceMuteState struct {
	ID    string `json:"id"`
	Muted bool   `json:"muted"`
}

type VoiceSignalPayload struct {
	From   string          `json:"from"`
	Data   json.RawMessage `json:"data"`
	RoomID string          `json:"roomId"`
}

type LobbyEntry struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	JoinedAt    int64  `json:"joinedAt"`
}

type LobbyUpdate struct {
	Queue     []LobbyEntry `json:"queue"`
	Timestamp int64        `json:"timestamp"`
}

type MatchFound struct {
	RoomID   string `json:"roomId"`
	Player   string `json:"player"`
	Opponent string `json:"opponent"`
}
