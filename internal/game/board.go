package game

import "fmt"

const (
	BoardSize    = 15
	TotalCells   = BoardSize * BoardSize
	WinningCount = 5 // five or more in a row wins, overlines included
)

// Color is a cell value and a player's side.
type Color uint8

const (
	Empty Color = iota
	Black
	White
)

// String returns the wire name of the color.
func (c Color) String() string {
	switch c {
	case Black:
		return "black"
	case White:
		return "white"
	default:
		return "empty"
	}
}

// Opponent returns the other side. Empty has no opponent.
func (c Color) Opponent() Color {
	switch c {
	case Black:
		return White
	case White:
		return Black
	default:
		return Empty
	}
}

// MarshalText encodes player colors as "black" or "white".
func (c Color) MarshalText() ([]byte, error) {
	if c != Black && c != White {
		return nil, fmt.Errorf("color %d is not a player color", c)
	}
	return []byte(c.String()), nil
}

// UnmarshalText decodes a player color, see ParseColor.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseColor accepts only player colors.
func ParseColor(s string) (Color, error) {
	switch s {
	case "black":
		return Black, nil
	case "white":
		return White, nil
	}
	return Empty, fmt.Errorf("%w: unknown color %q", ErrBadPayload, s)
}

// Board is a 15x15 grid stored row-major, index = y*BoardSize + x.
type Board struct {
	cells [TotalCells]Color
}

// InBounds reports whether (x, y) lies on the board.
func InBounds(x, y int) bool {
	return x >= 0 && x < BoardSize && y >= 0 && y < BoardSize
}

// At returns Empty for out-of-bounds coordinates.
func (b *Board) At(x, y int) Color {
	if !InBounds(x, y) {
		return Empty
	}
	return b.cells[y*BoardSize+x]
}

// Place sets an empty in-bounds cell. Occupied cells are never overwritten.
func (b *Board) Place(x, y int, c Color) error {
	if !InBounds(x, y) {
		return fmt.Errorf("%w: (%d,%d) out of bounds", ErrInvalidCell, x, y)
	}
	if b.cells[y*BoardSize+x] != Empty {
		return fmt.Errorf("%w: (%d,%d) occupied", ErrInvalidCell, x, y)
	}
	b.cells[y*BoardSize+x] = c
	return nil
}

// Reset clears every cell.
func (b *Board) Reset() {
	b.cells = [TotalCells]Color{}
}

// IsEmpty reports whether no stone has been placed.
func (b *Board) IsEmpty() bool {
	return b.cells == [TotalCells]Color{}
}

// Stones counts occupied cells.
func (b *Board) Stones() int {
	n := 0
	for _, c := range b.cells {
		if c != Empty {
			n++
		}
	}
	return n
}

// axes: vertical, horizontal, main diagonal, anti-diagonal
var axes = [4][2]int{
	{0, 1},
	{1, 0},
	{1, 1},
	{1, -1},
}

// CountDirection counts consecutive stones of color c starting one step past
// (x, y) in direction (dx, dy).
func (b *Board) CountDirection(x, y, dx, dy int, c Color) int {
	count := 0
	for cx, cy := x+dx, y+dy; InBounds(cx, cy) && b.cells[cy*BoardSize+cx] == c; cx, cy = cx+dx, cy+dy {
		count++
	}
	return count
}

// CheckWin reports whether a stone of color c at (x, y) completes a line of
// WinningCount or more on any axis. The cell itself is counted as c whether or
// not it has been placed yet.
func (b *Board) CheckWin(x, y int, c Color) bool {
	if !InBounds(x, y) || c == Empty {
		return false
	}
	for _, dir := range axes {
		dx, dy := dir[0], dir[1]
		count := 1 + b.CountDirection(x, y, dx, dy, c) + b.CountDirection(x, y, -dx, -dy, c)
		if count >= WinningCount {
			return true
		}
	}
	return false
}

// HasLine scans the whole board for a winning line of color c.
func (b *Board) HasLine(c Color) bool {
	for i, cell := range b.cells {
		if cell == c && b.CheckWin(i%BoardSize, i/BoardSize, c) {
			return true
		}
	}
	return false
}
