package board

// Color distinguishes the two sides of a chess game.
type Color uint8

const (
	White Color = iota
	Black
	NoColor Color = 2
)

// Other flips White<->Black; the two are adjacent values so XOR with 1
// toggles between them without a branch.
func (c Color) Other() Color {
	return c ^ 1
}

var colorNames = [...]string{White: "White", Black: "Black"}

// String names the color, or "NoColor" for any value outside White/Black.
func (c Color) String() string {
	if int(c) < len(colorNames) {
		return colorNames[c]
	}
	return "NoColor"
}

// PieceType is a chess piece kind, independent of color.
type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoPieceType PieceType = 6
)

var pieceTypeNames = [...]string{
	Pawn: "Pawn", Knight: "Knight", Bishop: "Bishop",
	Rook: "Rook", Queen: "Queen", King: "King",
}

// String names the piece type, or "None" outside Pawn..King.
func (pt PieceType) String() string {
	if int(pt) < len(pieceTypeNames) {
		return pieceTypeNames[pt]
	}
	return "None"
}

// fenTypeChars maps each PieceType, in declaration order, to its lowercase
// FEN letter; the trailing space is the NoPieceType sentinel's glyph.
const fenTypeChars = "pnbrqk "

// Char returns the lowercase FEN letter for the piece type, or a space for
// anything at or past NoPieceType.
func (pt PieceType) Char() byte {
	if pt > NoPieceType {
		return ' '
	}
	return fenTypeChars[pt]
}

// PieceValue is the centipawn material weight per PieceType, indexed
// Pawn..King plus the NoPieceType slot (always zero).
var PieceValue = [7]int{100, 320, 330, 500, 900, 20000, 0}

// Piece packs a PieceType and a Color into one byte: type + color*6. The
// twelve real pieces occupy 0..11; NoPiece is the one-past-the-end sentinel.
type Piece uint8

const (
	WhitePawn   Piece = Piece(Pawn) + Piece(White)*6
	WhiteKnight Piece = Piece(Knight) + Piece(White)*6
	WhiteBishop Piece = Piece(Bishop) + Piece(White)*6
	WhiteRook   Piece = Piece(Rook) + Piece(White)*6
	WhiteQueen  Piece = Piece(Queen) + Piece(White)*6
	WhiteKing   Piece = Piece(King) + Piece(White)*6
	BlackPawn   Piece = Piece(Pawn) + Piece(Black)*6
	BlackKnight Piece = Piece(Knight) + Piece(Black)*6
	BlackBishop Piece = Piece(Bishop) + Piece(Black)*6
	BlackRook   Piece = Piece(Rook) + Piece(Black)*6
	BlackQueen  Piece = Piece(Queen) + Piece(Black)*6
	BlackKing   Piece = Piece(King) + Piece(Black)*6
	NoPiece     Piece = 12
)

// NewPiece combines a PieceType and Color into a Piece, or NoPiece if
// either input is itself a sentinel.
func NewPiece(pt PieceType, c Color) Piece {
	if pt >= NoPieceType || c >= NoColor {
		return NoPiece
	}
	return Piece(pt) + Piece(c)*6
}

// Type recovers the PieceType encoded in p (NoPieceType if p is NoPiece).
func (p Piece) Type() PieceType {
	if p >= NoPiece {
		return NoPieceType
	}
	return PieceType(p % 6)
}

// Color recovers the Color encoded in p (NoColor if p is NoPiece).
func (p Piece) Color() Color {
	if p >= NoPiece {
		return NoColor
	}
	return Color(p / 6)
}

// pieceFENChars lists every Piece's FEN letter in declared (White P..K,
// then Black p..k) order; indexing by Piece value reads it off directly.
const pieceFENChars = "PNBRQKpnbrqk"

// String returns the piece's FEN letter (uppercase White, lowercase
// Black), or a single space for NoPiece.
func (p Piece) String() string {
	if p >= NoPiece {
		return " "
	}
	return string(pieceFENChars[p])
}

var fenCharToPiece = map[byte]Piece{
	'P': WhitePawn, 'N': WhiteKnight, 'B': WhiteBishop,
	'R': WhiteRook, 'Q': WhiteQueen, 'K': WhiteKing,
	'p': BlackPawn, 'n': BlackKnight, 'b': BlackBishop,
	'r': BlackRook, 'q': BlackQueen, 'k': BlackKing,
}

// PieceFromChar reverses Piece.String: a FEN letter back to a Piece, or
// NoPiece for anything else.
func PieceFromChar(c byte) Piece {
	if p, ok := fenCharToPiece[c]; ok {
		return p
	}
	return NoPiece
}

// Value is the centipawn material weight of p's piece type.
func (p Piece) Value() int {
	return PieceValue[p.Type()]
}
