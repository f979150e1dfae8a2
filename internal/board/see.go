package board

// seePieceValue gives the material value used by static exchange
// evaluation; independent of any caller's own evaluation scale, matching
// how a move generator's own legality/SEE layer is self-contained.
var seePieceValue = [7]int{100, 320, 330, 500, 900, 20000, 0}

// PiecesBB returns the union of every piece of color c (the "pieces(color)"
// query of the spec's Position contract).
func (p *Position) PiecesBB(c Color) Bitboard {
	return p.Occupied[c]
}

// HasNonPawns returns true if color c has any piece other than pawns and
// king, generalizing HasNonPawnMaterial (which only answers for the side
// to move) to an explicit color, per the spec's Position contract.
func (p *Position) HasNonPawns(c Color) bool {
	return p.Pieces[c][Knight]|p.Pieces[c][Bishop]|p.Pieces[c][Rook]|p.Pieces[c][Queen] != 0
}

// DoMove plays m on the live position and returns the undo information
// needed to restore it, matching the spec's Position::doMove contract.
// Accumulator maintenance is the caller's responsibility (via nnue.Evaluator
// Push/feature updates), since Position is opaque to the NNUE layer.
func (p *Position) DoMove(m Move) UndoInfo {
	return p.MakeMove(m)
}

// DoNullMove plays a null move (side to move flips, en passant square
// clears), matching the spec's Position::doNullMove contract.
func (p *Position) DoNullMove() NullMoveUndo {
	return p.MakeNullMove()
}

// SEEGE reports whether the static exchange evaluation of capturing move m
// is at least threshold, i.e. see(m) >= threshold (spec: see_ge).
func (p *Position) SEEGE(m Move, threshold int) bool {
	return see(p, m) >= threshold
}

// see runs the swap algorithm for static exchange evaluation on move m,
// returning the estimated material gain/loss from the mover's perspective.
func see(pos *Position, m Move) int {
	from := m.From()
	to := m.To()

	attacker := pos.PieceAt(from)
	if attacker == NoPiece {
		return 0
	}

	var capturedValue int
	if m.IsEnPassant() {
		capturedValue = seePieceValue[Pawn]
	} else {
		victim := pos.PieceAt(to)
		if victim == NoPiece {
			return 0
		}
		capturedValue = seePieceValue[victim.Type()]
	}
	if m.IsPromotion() {
		capturedValue += seePieceValue[m.Promotion()] - seePieceValue[Pawn]
	}

	return seeSwap(pos, to, from, attacker, capturedValue)
}

// seeSwap simulates the alternating capture sequence on target, starting
// with excludeFrom removed from the board (the first attacker already
// "used").
func seeSwap(pos *Position, target, excludeFrom Square, firstAttacker Piece, initialGain int) int {
	var gain [32]int
	d := 0
	gain[d] = initialGain

	occupied := pos.AllOccupied &^ SquareBB(excludeFrom)
	attackerValue := seePieceValue[firstAttacker.Type()]
	side := firstAttacker.Color().Other()

	for {
		d++
		gain[d] = attackerValue - gain[d-1]
		if max(-gain[d-1], gain[d]) < 0 {
			break
		}

		attackerSq, attackerPiece := leastValuableAttacker(pos, target, side, occupied)
		if attackerSq == NoSquare {
			break
		}
		occupied &^= SquareBB(attackerSq)
		attackerValue = seePieceValue[attackerPiece.Type()]
		side = side.Other()
	}

	for d--; d > 0; d-- {
		gain[d-1] = -max(-gain[d-1], gain[d])
	}
	return gain[0]
}

// leastValuableAttacker finds the cheapest piece of side attacking target,
// given occupied (which may exclude pieces already "used" in the swap).
func leastValuableAttacker(pos *Position, target Square, side Color, occupied Bitboard) (Square, Piece) {
	if pawns := pos.Pieces[side][Pawn] & occupied & PawnAttacks(target, side.Other()); pawns != 0 {
		sq := pawns.LSB()
		return sq, NewPiece(Pawn, side)
	}
	if knights := pos.Pieces[side][Knight] & occupied & KnightAttacks(target); knights != 0 {
		sq := knights.LSB()
		return sq, NewPiece(Knight, side)
	}
	if bishops := pos.Pieces[side][Bishop] & occupied & BishopAttacks(target, occupied); bishops != 0 {
		sq := bishops.LSB()
		return sq, NewPiece(Bishop, side)
	}
	if rooks := pos.Pieces[side][Rook] & occupied & RookAttacks(target, occupied); rooks != 0 {
		sq := rooks.LSB()
		return sq, NewPiece(Rook, side)
	}
	if queens := pos.Pieces[side][Queen] & occupied & QueenAttacks(target, occupied); queens != 0 {
		sq := queens.LSB()
		return sq, NewPiece(Queen, side)
	}
	if kings := pos.Pieces[side][King] & occupied & KingAttacks(target); kings != 0 {
		sq := kings.LSB()
		return sq, NewPiece(King, side)
	}
	return NoSquare, NoPiece
}
