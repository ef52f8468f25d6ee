package common

import "testing"

func TestParseAndStringRoundTrip(t *testing.T) {
	var pos, err = NewPositionFromFEN(InitialPositionFen)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := pos.String(); got != InitialPositionFen {
		t.Fatalf("String() = %q, want %q", got, InitialPositionFen)
	}
}

func TestApplyRevertRestoresKey(t *testing.T) {
	var pos, err = NewPositionFromFEN(InitialPositionFen)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var key0 = pos.Key
	var moves = GenerateLegalMoves(pos, nil)
	if len(moves) != 20 {
		t.Fatalf("got %d legal moves from start, want 20", len(moves))
	}
	for _, m := range moves {
		var undo Undo
		if !Apply(pos, m, &undo) {
			t.Fatalf("legal move %v rejected by Apply", m)
		}
		Revert(pos, m, &undo)
		if pos.Key != key0 {
			t.Fatalf("move %v: key not restored: got %x want %x", m, pos.Key, key0)
		}
		if pos.computeKey() != key0 {
			t.Fatalf("move %v: recomputed key mismatch after revert", m)
		}
	}
}

func TestCastlingRoundTrip(t *testing.T) {
	var pos, err = NewPositionFromFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var moves = GenerateLegalMoves(pos, nil)
	var found = false
	for _, m := range moves {
		if m.Kind() == KindCastle && m.To() == SquareG1 {
			found = true
			var undo Undo
			var key0 = pos.Key
			if !Apply(pos, m, &undo) {
				t.Fatalf("castle move rejected")
			}
			if (pos.Kings&pos.White)&SquareMask[SquareG1] == 0 {
				t.Fatalf("king did not land on g1")
			}
			if (pos.Rooks&pos.White)&SquareMask[SquareF1] == 0 {
				t.Fatalf("rook did not land on f1")
			}
			Revert(pos, m, &undo)
			if pos.Key != key0 {
				t.Fatalf("castle revert did not restore key")
			}
		}
	}
	if !found {
		t.Fatalf("kingside castle not generated")
	}
}

func TestChess960FenRoundTrip(t *testing.T) {
	var fen = "rk2r3/pppppppp/8/8/8/8/PPPPPPPP/RK2R3 w AEae - 0 1"
	var pos, err = NewPositionFromFEN(fen)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !pos.Chess960 {
		t.Fatalf("expected Chess960 flag set")
	}
	if got := pos.String(); got != fen {
		t.Fatalf("String() = %q, want %q", got, fen)
	}
}

func TestRevertRestoresLastMove(t *testing.T) {
	var pos, err = NewPositionFromFEN(InitialPositionFen)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var e4 = MakeMove(SquareE2, SquareE4, KindNormal, 0)
	var undo1 Undo
	if !Apply(pos, e4, &undo1) {
		t.Fatalf("e2e4 rejected")
	}
	if pos.LastMove != e4 {
		t.Fatalf("LastMove after apply = %v, want e2e4", pos.LastMove)
	}

	var e5 = MakeMove(SquareE7, SquareE5, KindNormal, 0)
	var undo2 Undo
	if !Apply(pos, e5, &undo2) {
		t.Fatalf("e7e5 rejected")
	}
	Revert(pos, e5, &undo2)
	if pos.LastMove != e4 {
		t.Fatalf("LastMove after reverting a sibling move = %v, want e2e4 restored", pos.LastMove)
	}

	Revert(pos, e4, &undo1)
	if pos.LastMove != NoMove {
		t.Fatalf("LastMove after reverting to the initial position = %v, want NoMove", pos.LastMove)
	}
}

func TestNullMoveRoundTrip(t *testing.T) {
	var pos, err = NewPositionFromFEN(InitialPositionFen)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var e4 = MakeMove(SquareE2, SquareE4, KindNormal, 0)
	var undo0 Undo
	if !Apply(pos, e4, &undo0) {
		t.Fatalf("e2e4 rejected")
	}

	var before = *pos
	var undo1, undo2 Undo
	ApplyNull(pos, &undo1)
	ApplyNull(pos, &undo2)
	RevertNull(pos, &undo2)
	RevertNull(pos, &undo1)

	if pos.Key != before.Key || pos.WhiteMove != before.WhiteMove ||
		pos.EpSquare != before.EpSquare || pos.Checkers != before.Checkers ||
		pos.Rule50 != before.Rule50 || pos.LastMove != before.LastMove {
		t.Fatalf("two null apply/revert cycles did not restore identity: got %+v, want %+v", pos, before)
	}
}

func TestEnPassantCapture(t *testing.T) {
	var pos, err = NewPositionFromFEN("4k3/8/8/8/Pp6/8/8/4K3 b - a3 0 1")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var move = MakeMove(SquareB4, SquareA3, KindEnPassant, 0)
	var undo Undo
	if !Apply(pos, move, &undo) {
		t.Fatalf("en-passant capture rejected")
	}
	if pos.Pawns&SquareMask[SquareA4] != 0 {
		t.Fatalf("captured pawn still present")
	}
	Revert(pos, move, &undo)
	if pos.Pawns&SquareMask[SquareA4] == 0 {
		t.Fatalf("captured pawn not restored")
	}
}
