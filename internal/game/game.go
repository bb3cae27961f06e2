package game

// Mark is one of the two playing roles.
type Mark string

const (
	MarkX    Mark = "X"
	MarkO    Mark = "O"
	MarkNone Mark = ""
)

// WinnerDraw is the terminal value for a full board with no winning line.
// The Winner field otherwise holds string(MarkX) or string(MarkO), and empty
// while the game is in progress.
const WinnerDraw = "draw"

const BoardSize = 9

// Lines are the eight canonical three-in-a-row index triples.
var Lines = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// State is the authoritative game portion of a room.
type State struct {
	Board              []Mark
	Turn               Mark
	Winner             string
	WinningLine        []int
	XScore             int
	OScore             int
	NewGameRequester   string // connection id of the rematch requester
	NewGameRequestedAt int64  // unix millis; zero when no request pending
}

func EmptyBoard() []Mark {
	return make([]Mark, BoardSize)
}

// NewState returns a fresh game with X to move and zeroed scores.
func NewState() State {
	return State{
		Board:       EmptyBoard(),
		Turn:        MarkX,
		WinningLine: []int{},
	}
}

// Result of evaluating a board.
type Result struct {
	Winner string
	Line   []int
}

// Evaluate checks the eight canonical lines, then full-board draw. It returns
// false while the game is still in progress; partial boards are never
// reported terminal.
func Evaluate(board []Mark) (Result, bool) {
	for _, line := range Lines {
		a, b, c := line[0], line[1], line[2]
		if board[a] != MarkNone && board[a] == board[b] && board[a] == board[c] {
			return Result{Winner: string(board[a]), Line: []int{a, b, c}}, true
		}
	}
	for _, cell := range board {
		if cell == MarkNone {
			return Result{}, false
		}
	}
	return Result{Winner: WinnerDraw, Line: []int{}}, true
}

// Other returns the opposing mark.
func Other(m Mark) Mark {
	if m == MarkX {
		return MarkO
	}
	return MarkX
}

// NextStartingTurn picks who leads the next game from the one just finished:
// after a decisive win the mark that did not make the winning move leads;
// after a draw the mark that made the second-to-last move leads. A reset of
// an unfinished game hands the lead back to X.
func NextStartingTurn(board []Mark, winner string) Mark {
	switch winner {
	case string(MarkX):
		return MarkO
	case string(MarkO):
		return MarkX
	case WinnerDraw:
		// With strict alternation the mark holding fewer cells moved
		// second-to-last on a full board.
		var x, o int
		for _, cell := range board {
			switch cell {
			case MarkX:
				x++
			case MarkO:
				o++
			}
		}
		if x < o {
			return MarkX
		}
		if o < x {
			return MarkO
		}
		return MarkX
	default:
		return MarkX
	}
}
