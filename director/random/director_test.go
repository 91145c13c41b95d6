package random

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/they4kman/minefield/game"
	"github.com/they4kman/minefield/highscore"
)

var _ game.Director = (*Director)(nil)

func newEngine(t *testing.T, numMines int) *game.Engine {
	t.Helper()

	config := game.NewGameConfig()
	config.Seed = 5
	config.NumMines = numMines
	config.GameOverDelay = 0

	logger, _ := logtest.NewNullLogger()
	engine, err := game.NewEngine(config, highscore.NewMemoryStore(), game.WithLogger(logger))
	require.NoError(t, err)
	return engine
}

func newDirector() *Director {
	logger, _ := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return &Director{Rand: rand.New(rand.NewPCG(1, 1)), Log: logger}
}

func TestActRevealsOneClosedCell(t *testing.T) {
	defer goleak.VerifyNone(t)

	engine := newEngine(t, 3)
	defer engine.Close()

	director := newDirector()
	director.Init(engine)
	defer director.End()

	outcome, err := director.Act()
	require.NoError(t, err)
	assert.NotEqual(t, game.Ignored, outcome)

	state, board, err := engine.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 1, state.Score)
	if outcome == game.Continue {
		assert.Len(t, board.ClosedCells(), board.NumCells()-1)
	}
}

func TestActPlaysUntilGameEnds(t *testing.T) {
	defer goleak.VerifyNone(t)

	engine := newEngine(t, 0)
	defer engine.Close()

	director := newDirector()
	director.Init(engine)
	defer director.End()

	var outcome game.Outcome
	for i := 0; i < game.DefaultSize*game.DefaultSize; i++ {
		var err error
		outcome, err = director.Act()
		require.NoError(t, err)
	}
	assert.Equal(t, game.Win, outcome)

	outcome, err := director.Act()
	require.NoError(t, err)
	assert.Equal(t, game.Ignored, outcome)
}

func TestActContinuouslyStopsAtGameEnd(t *testing.T) {
	defer goleak.VerifyNone(t)

	engine := newEngine(t, 3)
	defer engine.Close()

	director := newDirector()
	director.Init(engine)
	director.ActContinuously(time.Millisecond)

	require.Eventually(t, func() bool {
		state, _, err := engine.Snapshot()
		return err == nil && state.GameOver()
	}, 5*time.Second, time.Millisecond)

	director.End()
	director.End()
}

func TestEndStopsActing(t *testing.T) {
	defer goleak.VerifyNone(t)

	engine := newEngine(t, 3)
	defer engine.Close()

	director := newDirector()
	director.Init(engine)
	director.ActContinuously(time.Hour)
	director.End()

	state, _, err := engine.Snapshot()
	require.NoError(t, err)
	assert.Zero(t, state.Score)
}

func TestActContinuouslyRaisesShortIntervals(t *testing.T) {
	defer goleak.VerifyNone(t)

	engine := newEngine(t, 3)
	defer engine.Close()

	for _, interval := range []time.Duration{0, -time.Second} {
		require.NoError(t, engine.Restart())

		director := newDirector()
		director.Init(engine)
		director.ActContinuously(interval)

		require.Eventually(t, func() bool {
			state, _, err := engine.Snapshot()
			return err == nil && state.GameOver()
		}, 5*time.Second, time.Millisecond)
		director.End()
	}
}
