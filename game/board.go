package game

import (
	"fmt"
	"math/rand/v2"

	"github.com/they4kman/minefield/util/collections"
)

// Board is the grid/mine state machine. It does no I/O and keeps no time; the
// Engine drives it from a single goroutine.
type Board struct {
	size     int // in number of cells, per side
	numMines int
	cells    [][]Cell

	phase       Phase
	outcome     Outcome
	score       int
	openedCells int
	isWinner    bool
}

func validateBoard(size, numMines int) error {
	if size < 1 {
		return fmt.Errorf("%w: size %d must be positive", ErrInvalidConfig, size)
	}
	if numMines < 0 || numMines >= size*size {
		return fmt.Errorf("%w: %d mines do not fit a %dx%d board", ErrInvalidConfig, numMines, size, size)
	}
	return nil
}

// createBoard allocates a closed, mine-free board. Every row gets its own
// backing array.
func createBoard(size, numMines int) *Board {
	board := Board{
		size:     size,
		numMines: numMines,
		cells:    make([][]Cell, size),
		phase:    Playing,
		outcome:  Continue,
	}

	for row := 0; row < size; row++ {
		board.cells[row] = make([]Cell, size)

		for col := 0; col < size; col++ {
			cell := &board.cells[row][col]
			cell.row, cell.col = row, col
		}
	}

	return &board
}

// NewBoard builds a size x size board and places numMines mines uniformly at
// random, retrying whenever the picked cell already holds one.
func NewBoard(size, numMines int, rng *rand.Rand) (*Board, error) {
	if err := validateBoard(size, numMines); err != nil {
		return nil, err
	}

	board := createBoard(size, numMines)

	minesPlaced := 0
	for minesPlaced < numMines {
		cell := &board.cells[rng.IntN(size)][rng.IntN(size)]
		if !cell.isMine {
			cell.isMine = true
			minesPlaced++
		}
	}

	return board, nil
}

func (board *Board) Size() int {
	return board.size
}

func (board *Board) NumMines() int {
	return board.numMines
}

func (board *Board) NumCells() int {
	return board.size * board.size
}

// NumSafeCells is the number of cells that must be opened to win
func (board *Board) NumSafeCells() int {
	return board.NumCells() - board.numMines
}

func (board *Board) Phase() Phase {
	return board.phase
}

// Outcome is the result of the last reveal that changed the board
func (board *Board) Outcome() Outcome {
	return board.outcome
}

func (board *Board) Score() int {
	return board.score
}

func (board *Board) OpenedCells() int {
	return board.openedCells
}

// IsWinner reports whether every safe cell had been opened at the moment the
// game ended. It is false while the game is still being played.
func (board *Board) IsWinner() bool {
	return board.isWinner
}

func (board *Board) CellAt(row, col int) *Cell {
	if row >= 0 && col >= 0 && row < board.size && col < board.size {
		return &board.cells[row][col]
	}
	return nil
}

// Cells returns every cell in row-major order
func (board *Board) Cells() []*Cell {
	cells := make([]*Cell, 0, board.NumCells())
	for row := range board.cells {
		for col := range board.cells[row] {
			cells = append(cells, &board.cells[row][col])
		}
	}
	return cells
}

func (board *Board) ClosedCells() []*Cell {
	var cells []*Cell
	for _, cell := range board.Cells() {
		if !cell.isOpen {
			cells = append(cells, cell)
		}
	}
	return cells
}

func (board *Board) Mines() collections.Set[Position] {
	mines := make(collections.Set[Position], board.numMines)
	for _, cell := range board.Cells() {
		if cell.isMine {
			mines.Add(cell.Position())
		}
	}
	return mines
}

func (board *Board) canPlay() bool {
	return board.phase == Playing
}

// Reveal opens the cell at (row, col). Opening a mine loses the game, opening
// the last safe cell wins it; either way the whole board is revealed.
// Revealing an open cell, or anything after the game has ended, returns
// Ignored and leaves the board untouched.
func (board *Board) Reveal(row, col int) (Outcome, error) {
	cell := board.CellAt(row, col)
	if cell == nil {
		return Ignored, fmt.Errorf("%w: (%d, %d) on a %dx%d board", ErrOutOfBounds, row, col, board.size, board.size)
	}
	if !board.canPlay() || cell.isOpen {
		return Ignored, nil
	}

	cell.isOpen = true
	// A mine scores and counts as opened the same as a safe cell.
	board.score++
	board.openedCells++

	if cell.isMine {
		board.end(Loss)
		return Loss, nil
	}

	if board.openedCells == board.NumSafeCells() {
		board.end(Win)
		return Win, nil
	}

	board.outcome = Continue
	return Continue, nil
}

// end records isWinner from the opened count at the moment of the transition,
// so a mine found on the very last reveal still counts as a winning board.
func (board *Board) end(outcome Outcome) {
	board.isWinner = board.openedCells == board.NumSafeCells()
	board.phase = Ended
	board.outcome = outcome
	board.revealAll()
}

func (board *Board) revealAll() {
	for row := range board.cells {
		for col := range board.cells[row] {
			board.cells[row][col].isOpen = true
		}
	}
}

// Clone returns a deep copy sharing no rows with the original
func (board *Board) Clone() *Board {
	clone := *board
	clone.cells = make([][]Cell, len(board.cells))
	for row := range board.cells {
		clone.cells[row] = make([]Cell, len(board.cells[row]))
		copy(clone.cells[row], board.cells[row])
	}
	return &clone
}
