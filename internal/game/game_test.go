package game

import "testing"

func boardFrom(cells [9]string) []Mark {
	b := EmptyBoard()
	for i, c := range cells {
		b[i] = Mark(c)
	}
	return b
}

func TestEvaluate_WinningLines(t *testing.T) {
	cases := []struct {
		name  string
		cells [9]string
		win   string
		line  [3]int
	}{
		{"top row", [9]string{"X", "X", "X", "O", "O", "", "", "", ""}, "X", [3]int{0, 1, 2}},
		{"middle row", [9]string{"X", "X", "", "O", "O", "O", "X", "", ""}, "O", [3]int{3, 4, 5}},
		{"bottom row", [9]string{"O", "O", "", "", "", "", "X", "X", "X"}, "X", [3]int{6, 7, 8}},
		{"left column", [9]string{"X", "O", "O", "X", "", "", "X", "", ""}, "X", [3]int{0, 3, 6}},
		{"middle column", [9]string{"X", "O", "", "X", "O", "", "", "O", ""}, "O", [3]int{1, 4, 7}},
		{"right column", [9]string{"", "O", "X", "", "O", "X", "", "", "X"}, "X", [3]int{2, 5, 8}},
		{"main diagonal", [9]string{"X", "O", "", "O", "X", "", "", "", "X"}, "X", [3]int{0, 4, 8}},
		{"anti diagonal", [9]string{"X", "X", "O", "", "O", "", "O", "", ""}, "O", [3]int{2, 4, 6}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, done := Evaluate(boardFrom(tc.cells))
			if !done {
				t.Fatalf("expected terminal board")
			}
			if res.Winner != tc.win {
				t.Fatalf("winner: got %q, want %q", res.Winner, tc.win)
			}
			if len(res.Line) != 3 || res.Line[0] != tc.line[0] || res.Line[1] != tc.line[1] || res.Line[2] != tc.line[2] {
				t.Fatalf("line: got %v, want %v", res.Line, tc.line)
			}
		})
	}
}

func TestEvaluate_Draw(t *testing.T) {
	// X O X / X O O / O X X: full board, no line
	res, done := Evaluate(boardFrom([9]string{"X", "O", "X", "X", "O", "O", "O", "X", "X"}))
	if !done {
		t.Fatalf("expected terminal board")
	}
	if res.Winner != WinnerDraw {
		t.Fatalf("got %q, want draw", res.Winner)
	}
	if len(res.Line) != 0 {
		t.Fatalf("draw should carry no line, got %v", res.Line)
	}
}

func TestEvaluate_PartialBoardNotTerminal(t *testing.T) {
	cases := []struct {
		name  string
		cells [9]string
	}{
		{"empty", [9]string{}},
		{"one move", [9]string{"X"}},
		{"mid game", [9]string{"X", "O", "X", "", "O", "", "", "", ""}},
		{"eight cells no line", [9]string{"X", "O", "X", "X", "O", "O", "O", "X", ""}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, done := Evaluate(boardFrom(tc.cells)); done {
				t.Fatalf("partial board reported terminal")
			}
		})
	}
}

func TestNextStartingTurn(t *testing.T) {
	cases := []struct {
		name   string
		cells  [9]string
		winner string
		want   Mark
	}{
		// Decisive win: the mark that did not make the winning move leads.
		{"X wins, O leads", [9]string{"X", "X", "X", "O", "O", "", "", "", ""}, "X", MarkO},
		{"O wins, X leads", [9]string{"X", "X", "", "O", "O", "O", "X", "", ""}, "O", MarkX},
		// Draw: second-to-last mover leads; with X having started (5 cells),
		// O moved second-to-last.
		{"draw after X started", [9]string{"X", "O", "X", "X", "O", "O", "O", "X", "X"}, "draw", MarkO},
		// O started this game, so O holds 5 cells and X moved second-to-last.
		{"draw after O started", [9]string{"O", "X", "O", "O", "X", "X", "X", "O", "O"}, "draw", MarkX},
		// Resetting an unfinished game hands the lead back to X.
		{"mid-game reset", [9]string{"X", "O", "", "", "", "", "", "", ""}, "", MarkX},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NextStartingTurn(boardFrom(tc.cells), tc.winner)
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestOther(t *testing.T) {
	if Other(MarkX) != MarkO || Other(MarkO) != MarkX {
		t.Fatalf("Other should flip marks")
	}
}
