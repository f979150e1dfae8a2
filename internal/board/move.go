package board

import "fmt"

// Move packs a chess move into 16 bits: the origin square (0-5), the
// destination square (6-11), the promotion piece (12-13, relative to
// Knight), and a 2-bit flag (14-15) distinguishing normal/promotion/
// en-passant/castling moves.
type Move uint16

const (
	FlagNormal    uint16 = 0 << 14
	FlagPromotion uint16 = 1 << 14
	FlagEnPassant uint16 = 2 << 14
	FlagCastling  uint16 = 3 << 14
)

// NoMove is the null move: zero from, zero to, FlagNormal — indistinguishable
// from a1a1, which movegen never produces, so it doubles as "no move" safely.
const NoMove Move = 0

// NewMove builds an ordinary, non-special move.
func NewMove(from, to Square) Move {
	return Move(from) | Move(to)<<6
}

// NewPromotion builds a promotion move; promo must be Knight, Bishop, Rook
// or Queen. The stored field is relative to Knight so it fits 2 bits.
func NewPromotion(from, to Square, promo PieceType) Move {
	rel := promo - Knight
	return Move(from) | Move(to)<<6 | Move(rel)<<12 | Move(FlagPromotion)
}

// NewEnPassant builds an en-passant capture move.
func NewEnPassant(from, to Square) Move {
	return Move(from) | Move(to)<<6 | Move(FlagEnPassant)
}

// NewCastling builds a castling move, encoded as the king's own from/to.
func NewCastling(from, to Square) Move {
	return Move(from) | Move(to)<<6 | Move(FlagCastling)
}

// From is the move's origin square.
func (m Move) From() Square {
	return Square(m & 0x3F)
}

// To is the move's destination square.
func (m Move) To() Square {
	return Square((m >> 6) & 0x3F)
}

// Flag isolates the 2-bit special-move tag.
func (m Move) Flag() uint16 {
	return uint16(m) & 0xC000
}

// Promotion decodes the promotion piece type; only meaningful when
// IsPromotion reports true.
func (m Move) Promotion() PieceType {
	return PieceType((m>>12)&3) + Knight
}

func (m Move) IsPromotion() bool {
	return m.Flag() == FlagPromotion
}

func (m Move) IsCastling() bool {
	return m.Flag() == FlagCastling
}

func (m Move) IsEnPassant() bool {
	return m.Flag() == FlagEnPassant
}

// IsCapture reports whether playing m on pos removes an enemy piece —
// either an en-passant capture or a normal move landing on an occupied
// destination.
func (m Move) IsCapture(pos *Position) bool {
	if m.IsEnPassant() {
		return true
	}
	return !pos.IsEmpty(m.To())
}

// IsQuiet reports whether m is neither a capture nor a promotion — the
// category move ordering and late-move-pruning treat as "non-tactical".
func (m Move) IsQuiet(pos *Position) bool {
	return !m.IsCapture(pos) && !m.IsPromotion()
}

var promotionLetters = [4]byte{'n', 'b', 'r', 'q'}

// String renders m in UCI long algebraic form: "e2e4", or "e7e8q" for a
// promotion. NoMove renders as the UCI null-move literal "0000".
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += string(promotionLetters[m.Promotion()-Knight])
	}
	return s
}

var promotionFromLetter = map[byte]PieceType{
	'n': Knight, 'b': Bishop, 'r': Rook, 'q': Queen,
}

// ParseMove decodes a UCI long-algebraic move string against pos, which
// supplies the board state needed to disambiguate castling and en-passant
// from an ordinary two-square move.
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) < 4 {
		return NoMove, fmt.Errorf("invalid move string: %s", s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}

	if len(s) == 5 {
		promo, ok := promotionFromLetter[s[4]]
		if !ok {
			return NoMove, fmt.Errorf("invalid promotion piece: %c", s[4])
		}
		return NewPromotion(from, to, promo), nil
	}

	piece := pos.PieceAt(from)
	if piece == NoPiece {
		return NoMove, fmt.Errorf("no piece at %s", from)
	}

	switch pt := piece.Type(); {
	case pt == King && abs(int(to)-int(from)) == 2:
		return NewCastling(from, to), nil
	case pt == Pawn && to == pos.EnPassant:
		return NewEnPassant(from, to), nil
	default:
		return NewMove(from, to), nil
	}
}

// MoveList is a fixed-capacity move buffer, sized to the branching factor
// of any legal chess position, used to avoid per-node heap allocation in
// move generation.
type MoveList struct {
	moves [256]Move
	count int
}

func NewMoveList() *MoveList {
	return &MoveList{}
}

func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

func (ml *MoveList) Len() int {
	return ml.count
}

func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

func (ml *MoveList) Set(i int, m Move) {
	ml.moves[i] = m
}

func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

func (ml *MoveList) Clear() {
	ml.count = 0
}

// Contains does a linear scan for m; move lists are small enough (well
// under 256 entries) that this beats maintaining a side index.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}

// UndoInfo is the snapshot MakeMove returns and UnmakeMove consumes to
// restore a Position bit-for-bit: every field MakeMove might have touched,
// captured wholesale rather than diffed field-by-field.
type UndoInfo struct {
	CapturedPiece  Piece
	CastlingRights CastlingRights
	EnPassant      Square
	HalfMoveClock  int
	Hash           uint64
	PawnKey        uint64
	Checkers       Bitboard
	KingSquare     [2]Square
	Pieces         [2][6]Bitboard
	Occupied       [2]Bitboard
	AllOccupied    Bitboard
	Valid          bool
}
