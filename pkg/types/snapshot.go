package types

// Roster lists the connection ids currently attached to a room. Empty seat
// strings mean the seat is open.
type Roster struct {
	X          string   `json:"X"`
	O          string   `json:"O"`
	Spectators []string `json:"spectators"`
}

// VoicePeer is one entry in a room's voice roster.
type VoicePeer struct {
	Muted bool `json:"muted"`
}

// GameUpdate is the full room snapshot broadcast to every member after each
// mutation. The game fields are flattened alongside the room metadata, so
// clients can treat the whole thing as the authoritative state.
type GameUpdate struct {
	Board              []string             `json:"board"`
	Turn               string               `json:"turn"`
	Winner             string               `json:"winner,omitempty"` // "X", "O" or "draw"; absent while in progress
	WinningLine        []int                `json:"winningLine"`
	XScore             int                  `json:"xScore"`
	OScore             int                  `json:"oScore"`
	NewGameRequester   string               `json:"newGameRequester,omitempty"`
	NewGameRequestedAt int64                `json:"newGameRequestedAt,omitempty"`
	RoomID             string               `json:"roomId"`
	Roster             Roster               `json:"roster"`
	VoiceRoster        map[string]VoicePeer `json:"voiceRoster"`
}
