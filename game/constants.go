package game

import (
	"errors"
	"time"
)

type Phase int

const (
	Playing Phase = iota
	Ended
)

func (phase Phase) String() string {
	switch phase {
	case Playing:
		return "playing"
	case Ended:
		return "ended"
	default:
		return "unknown"
	}
}

// Outcome is the result of a single reveal
type Outcome int

const (
	// Ignored means the reveal changed nothing: the cell was already open,
	// or the game had already ended
	Ignored Outcome = iota
	Continue
	Win
	Loss
)

func (outcome Outcome) String() string {
	switch outcome {
	case Ignored:
		return "ignored"
	case Continue:
		return "continue"
	case Win:
		return "win"
	case Loss:
		return "loss"
	default:
		return "unknown"
	}
}

func (outcome Outcome) IsTerminal() bool {
	return outcome == Win || outcome == Loss
}

const (
	DefaultSize     = 5
	DefaultNumMines = 3

	DefaultTickInterval  = time.Second
	DefaultGameOverDelay = 3 * time.Second
	DefaultHistorySize   = 64
)

// MineChoices are the mine counts offered on the home screen
var MineChoices = []int{1, 3, 5}

// Navigation destinations
const (
	DestinationHome     = "Home"
	DestinationGameOver = "GameOver"
)

var (
	ErrInvalidConfig = errors.New("invalid game configuration")
	ErrOutOfBounds   = errors.New("cell out of bounds")
	ErrClosed        = errors.New("engine closed")
)
