package game

import (
	"fmt"
)

type Position struct {
	Row, Col int
}

func (pos Position) String() string {
	return fmt.Sprintf("(%d, %d)", pos.Row, pos.Col)
}

type Cell struct {
	row, col int

	isMine, isOpen bool
}

func (cell *Cell) String() string {
	return fmt.Sprintf("Cell(%v, %v)", cell.row, cell.col)
}

func (cell *Cell) Row() int {
	return cell.row
}

func (cell *Cell) Col() int {
	return cell.col
}

func (cell *Cell) Position() Position {
	return Position{Row: cell.row, Col: cell.col}
}

func (cell *Cell) IsMine() bool {
	return cell.isMine
}

func (cell *Cell) IsOpen() bool {
	return cell.isOpen
}

func (cell *Cell) serialize() byte {
	switch {
	case cell.isMine && cell.isOpen:
		return '*'
	case cell.isMine:
		return 'O'
	case cell.isOpen:
		return '.'
	default:
		return '#'
	}
}

// deserialize reads the mine layout from a snapshot character. Open state is
// never restored; loaded cells always start closed.
func (cell *Cell) deserialize(c rune) bool {
	switch c {
	case '*', 'O':
		cell.isMine = true
	case '.', '#':
		cell.isMine = false
	default:
		return false
	}
	cell.isOpen = false
	return true
}
