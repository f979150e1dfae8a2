// Package board implements chess board representation using bitboards.
package board

import "fmt"

// Square names one of the 64 board squares under Little-Endian Rank-File
// Mapping: A1=0, H1=7, A8=56, H8=63 — file varies fastest, then rank.
type Square uint8

const (
	A1 Square = iota
	B1
	C1
	D1
	E1
	F1
	G1
	H1
	A2
	B2
	C2
	D2
	E2
	F2
	G2
	H2
	A3
	B3
	C3
	D3
	E3
	F3
	G3
	H3
	A4
	B4
	C4
	D4
	E4
	F4
	G4
	H4
	A5
	B5
	C5
	D5
	E5
	F5
	G5
	H5
	A6
	B6
	C6
	D6
	E6
	F6
	G6
	H6
	A7
	B7
	C7
	D7
	E7
	F7
	G7
	H7
	A8
	B8
	C8
	D8
	E8
	F8
	G8
	H8
	NoSquare Square = 64
)

// File returns the column, 0 ('a') through 7 ('h').
func (sq Square) File() int {
	return int(sq) & 7
}

// Rank returns the row, 0 (rank 1) through 7 (rank 8).
func (sq Square) Rank() int {
	return int(sq) >> 3
}

// String renders sq in algebraic notation (e.g. "e4"), or "-" for
// NoSquare/anything past it.
func (sq Square) String() string {
	if !sq.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%c%c", 'a'+sq.File(), '1'+sq.Rank())
}

// NewSquare builds a Square from a zero-indexed file and rank.
func NewSquare(file, rank int) Square {
	return Square(rank*8 + file)
}

// ParseSquare is the inverse of String: algebraic notation in, Square out.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("invalid square: %s", s)
	}

	file := int(s[0] - 'a')
	rank := int(s[1] - '1')
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare, fmt.Errorf("invalid square: %s", s)
	}
	return NewSquare(file, rank), nil
}

// IsValid reports whether sq names a real board square.
func (sq Square) IsValid() bool {
	return sq < NoSquare
}

// Mirror flips sq across the board's horizontal midline (rank r <-> rank
// 7-r), the transform NNUE feature indexing uses for black's perspective.
func (sq Square) Mirror() Square {
	return sq ^ 56
}

// RelativeRank reports sq's rank as seen by color c: unchanged for White,
// flipped (7-rank) for Black, so "relative rank 0" always means "home
// rank" regardless of side.
func (sq Square) RelativeRank(c Color) int {
	if c == White {
		return sq.Rank()
	}
	return 7 - sq.Rank()
}
