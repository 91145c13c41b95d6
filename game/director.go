package game

import (
	"time"
)

// Player is the part of the Engine a Director drives
type Player interface {
	Snapshot() (State, *Board, error)
	Reveal(row, col int) (Outcome, error)
}

// Director plays games on behalf of the user
type Director interface {
	// Init prepares the director to drive player
	Init(Player)

	// Act performs a single step of actions
	Act() (Outcome, error)

	// ActContinuously keeps acting every interval until the game ends or
	// End is called
	ActContinuously(interval time.Duration)

	// End stops acting
	End()
}
