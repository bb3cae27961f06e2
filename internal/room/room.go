package room

import (
	"sync"
	"time"

	"github.com/harkirat155/tictac-realtime/internal/game"
	"github.com/harkirat155/tictac-realtime/pkg/types"
)

// Role is what a connection ends up as after joining a room.
const (
	RoleX         = "X"
	RoleO         = "O"
	RoleSpectator = "spectator"
)

type seats struct {
	X string // connection id, "" when open
	O string
}

// Room is one isolated session keyed by a short code. All mutating methods
// take the room lock, so concurrent events targeting the same room are
// serialized while different rooms proceed in parallel.
type Room struct {
	mu           sync.Mutex
	code         string
	seats        seats
	spectators   map[string]struct{}
	seatByClient map[string]game.Mark // stable client id -> reserved seat
	voice        map[string]types.VoicePeer
	state        game.State

	now func() time.Time
}

// New creates a room with the creator seated as X. clientID may be empty when
// the client did not supply a stable identifier.
func New(code, creatorConn, creatorClient string) *Room {
	r := &Room{
		code:         code,
		seats:        seats{X: creatorConn},
		spectators:   make(map[string]struct{}),
		seatByClient: make(map[string]game.Mark),
		voice:        make(map[string]types.VoicePeer),
		state:        game.NewState(),
		now:          time.Now,
	}
	if creatorClient != "" {
		r.seatByClient[creatorClient] = game.MarkX
	}
	return r
}

func (r *Room) Code() string { return r.code }

// JoinResult reports how a joining connection was placed.
type JoinResult struct {
	Role    string
	Started bool // both seats filled after this join
}

// Join resolves a seat for the connection. Rules, in priority order:
//
//  1. a live reservation for clientID rebinds its seat when the seat is free
//     or already bound to this same connection (refresh/reconnect)
//  2. a connection that already holds a seat keeps it
//  3. the first open seat is assigned, X before O; a client whose
//     reservation points at an occupied seat is not given the other one
//  4. with both seats taken the connection becomes a spectator
func (r *Room) Join(connID, clientID string) JoinResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	role := ""

	// Rule 1: rebind a reserved seat.
	if clientID != "" {
		if seat, ok := r.seatByClient[clientID]; ok {
			occupant := r.seatOccupant(seat)
			if occupant == "" || occupant == connID {
				r.setSeat(seat, connID)
				// The same connection must not linger in the other seat.
				if r.seatOccupant(game.Other(seat)) == connID {
					r.setSeat(game.Other(seat), "")
				}
				role = string(seat)
			}
		}
	}

	// Rule 2: an already seated connection keeps its seat.
	if role == "" {
		switch connID {
		case r.seats.X:
			role = RoleX
		case r.seats.O:
			role = RoleO
		}
	}

	// Rules 3 and 4: first open seat, X before O, else spectate.
	if role == "" {
		switch {
		case r.seats.X == "":
			r.seats.X = connID
			role = RoleX
			if clientID != "" {
				r.seatByClient[clientID] = game.MarkX
			}
		case r.seats.O == "":
			if seat, ok := r.seatByClient[clientID]; clientID != "" && ok && (seat == game.MarkX || seat == game.MarkO) {
				// Client already owns a seat through another connection;
				// never hand the same client both seats.
				r.spectators[connID] = struct{}{}
				role = RoleSpectator
			} else {
				r.seats.O = connID
				role = RoleO
				if clientID != "" {
					r.seatByClient[clientID] = game.MarkO
				}
			}
		default:
			r.spectators[connID] = struct{}{}
			role = RoleSpectator
		}
	}

	// One connection must never hold both seats. Resolve with the client's
	// reservation as tie-break, defaulting to X.
	if r.seats.X == connID && r.seats.O == connID {
		prefer := game.Mark(role)
		if clientID != "" {
			if seat, ok := r.seatByClient[clientID]; ok {
				prefer = seat
			}
		}
		if prefer == game.MarkX {
			r.seats.O = ""
		} else {
			r.seats.X = ""
		}
		role = string(prefer)
	}

	return JoinResult{Role: role, Started: r.seats.X != "" && r.seats.O != ""}
}

func (r *Room) seatOccupant(seat game.Mark) string {
	if seat == game.MarkO {
		return r.seats.O
	}
	return r.seats.X
}

func (r *Room) setSeat(seat game.Mark, connID string) {
	if seat == game.MarkO {
		r.seats.O = connID
	} else {
		r.seats.X = connID
	}
}

// Move places connID's mark at index. Illegal moves (not seated, finished
// game, not their turn, occupied or out-of-range cell) change nothing and
// report false; the caller broadcasts only on true.
func (r *Room) Move(connID string, index int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	var mark game.Mark
	switch connID {
	case r.seats.X:
		mark = game.MarkX
	case r.seats.O:
		mark = game.MarkO
	default:
		return false
	}
	if index < 0 || index >= game.BoardSize {
		return false
	}
	if r.state.Winner != "" || r.state.Turn != mark || r.state.Board[index] != game.MarkNone {
		return false
	}

	r.state.Board[index] = mark
	if res, done := game.Evaluate(r.state.Board); done {
		r.state.Winner = res.Winner
		r.state.WinningLine = res.Line
		switch res.Winner {
		case string(game.MarkX):
			r.state.XScore++
		case string(game.MarkO):
			r.state.OScore++
		}
	} else {
		r.state.Turn = game.Other(r.state.Turn)
	}
	return true
}

// Reset starts a fresh game, keeping scores. The lead for the next game comes
// from the finished one: the loser after a decisive win, the second-to-last
// mover after a draw. Pending rematch requests are cleared.
func (r *Room) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := game.NextStartingTurn(r.state.Board, r.state.Winner)
	fresh := game.NewState()
	fresh.Turn = next
	fresh.XScore = r.state.XScore
	fresh.OScore = r.state.OScore
	r.state = fresh
}

// ResetScores zeroes both scores and nothing else.
func (r *Room) ResetScores() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.XScore = 0
	r.state.OScore = 0
}

// RequestNewGame records an advisory rematch request. Advisory only: it never
// resets the game by itself.
func (r *Room) RequestNewGame(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.NewGameRequester = connID
	r.state.NewGameRequestedAt = r.now().UnixMilli()
}

// CancelNewGameRequest clears a pending rematch request. Any room member may
// cancel, not just the requester.
func (r *Room) CancelNewGameRequest() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.NewGameRequester = ""
	r.state.NewGameRequestedAt = 0
}

// LeaveResult reports what Leave actually removed.
type LeaveResult struct {
	Changed  bool
	HadVoice bool
}

// Leave clears every binding the connection holds in the room: seat,
// spectator slot and voice entry. The clientID seat reservation is released
// only when releaseSeat is set (explicit leave); a bare disconnect keeps the
// reservation so the client can reclaim its seat on reconnect.
func (r *Room) Leave(connID, clientID string, releaseSeat bool) LeaveResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res LeaveResult
	if r.seats.X == connID {
		r.seats.X = ""
		res.Changed = true
	}
	if r.seats.O == connID {
		r.seats.O = ""
		res.Changed = true
	}
	if _, ok := r.spectators[connID]; ok {
		delete(r.spectators, connID)
		res.Changed = true
	}
	if _, ok := r.voice[connID]; ok {
		delete(r.voice, connID)
		res.Changed = true
		res.HadVoice = true
	}
	if releaseSeat && clientID != "" {
		if seat, ok := r.seatByClient[clientID]; ok && (seat == game.MarkX || seat == game.MarkO) {
			delete(r.seatByClient, clientID)
		}
	}
	return res
}

// VoiceJoin records the connection's initial mute flag.
func (r *Room) VoiceJoin(connID string, muted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.voice[connID] = types.VoicePeer{Muted: muted}
}

// VoiceSetMuted updates the flag, creating the entry if needed.
func (r *Room) VoiceSetMuted(connID string, muted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.voice[connID] = types.VoicePeer{Muted: muted}
}

// VoiceLeave removes the connection from the voice roster and reports whether
// it was present.
func (r *Room) VoiceLeave(connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.voice[connID]; !ok {
		return false
	}
	delete(r.voice, connID)
	return true
}

// Occupied reports whether anyone is seated or spectating. Voice entries
// alone do not count; the GC only spares rooms with real occupants.
func (r *Room) Occupied() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seats.X != "" || r.seats.O != "" || len(r.spectators) > 0
}

// Members returns the connection ids that should receive room broadcasts.
func (r *Room) Members() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.membersLocked()
}

func (r *Room) membersLocked() []string {
	out := make([]string, 0, 2+len(r.spectators))
	if r.seats.X != "" {
		out = append(out, r.seats.X)
	}
	if r.seats.O != "" {
		out = append(out, r.seats.O)
	}
	for id := range r.spectators {
		out = append(out, id)
	}
	return out
}

// Snapshot builds the full gameUpdate payload broadcast after every mutation.
func (r *Room) Snapshot() types.GameUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()

	board := make([]string, game.BoardSize)
	for i, cell := range r.state.Board {
		board[i] = string(cell)
	}
	spectators := make([]string, 0, len(r.spectators))
	for id := range r.spectators {
		spectators = append(spectators, id)
	}
	voice := make(map[string]types.VoicePeer, len(r.voice))
	for id, peer := range r.voice {
		voice[id] = peer
	}
	line := make([]int, len(r.state.WinningLine))
	copy(line, r.state.WinningLine)

	return types.GameUpdate{
		Board:              board,
		Turn:               string(r.state.Turn),
		Winner:             r.state.Winner,
		WinningLine:        line,
		XScore:             r.state.XScore,
		OScore:             r.state.OScore,
		NewGameRequester:   r.state.NewGameRequester,
		NewGameRequestedAt: r.state.NewGameRequestedAt,
		RoomID:             r.code,
		Roster: types.Roster{
			X:          r.seats.X,
			O:          r.seats.O,
			Spectators: spectators,
		},
		VoiceRoster: voice,
	}
}
