package random

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/they4kman/minefield/game"
)

// MinInterval is the shortest time ActContinuously waits between acts
const MinInterval = time.Millisecond

// Director reveals a random closed cell on every act
type Director struct {
	Rand *rand.Rand
	Log  logrus.FieldLogger

	player game.Player
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

func (director *Director) Init(player game.Player) {
	director.player = player
	director.done = make(chan struct{})
	director.once = sync.Once{}

	if director.Rand == nil {
		seed := uint64(time.Now().UnixNano())
		director.Rand = rand.New(rand.NewPCG(seed, seed))
	}
	if director.Log == nil {
		director.Log = logrus.StandardLogger()
	}
}

// Act reveals one closed cell. Once the game has ended it does nothing and
// returns game.Ignored.
func (director *Director) Act() (game.Outcome, error) {
	state, board, err := director.player.Snapshot()
	if err != nil {
		return game.Ignored, err
	}
	if state.GameOver() {
		return game.Ignored, nil
	}

	closedCells := board.ClosedCells()
	if len(closedCells) == 0 {
		return game.Ignored, nil
	}

	cell := closedCells[director.Rand.IntN(len(closedCells))]
	outcome, err := director.player.Reveal(cell.Row(), cell.Col())
	if err != nil {
		return outcome, err
	}

	director.Log.WithFields(logrus.Fields{
		"row":     cell.Row(),
		"col":     cell.Col(),
		"outcome": outcome,
	}).Debug("director revealed cell")
	return outcome, nil
}

// ActContinuously acts every interval until the game ends or End is called.
// Intervals shorter than MinInterval are raised to it.
func (director *Director) ActContinuously(interval time.Duration) {
	interval = max(interval, MinInterval)

	director.wg.Add(1)
	go func() {
		defer director.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-director.done:
				return
			case <-ticker.C:
				outcome, err := director.Act()
				if err != nil {
					director.Log.WithError(err).Warn("director could not act")
					return
				}
				if outcome.IsTerminal() {
					return
				}
			}
		}
	}()
}

func (director *Director) End() {
	director.once.Do(func() {
		close(director.done)
	})
	director.wg.Wait()
}
