package cmd

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/they4kman/minefield/director/random"
	"github.com/they4kman/minefield/game"
	"github.com/they4kman/minefield/highscore"
)

var (
	autoplayGames    int
	autoplayInterval time.Duration
)

var autoplayCmd = &cobra.Command{
	Use:   "autoplay",
	Short: "Let the computer play a number of games",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if autoplayGames < 1 {
			return fmt.Errorf("--games must be at least 1, got %d", autoplayGames)
		}
		if autoplayInterval <= 0 {
			return fmt.Errorf("--interval must be positive, got %s", autoplayInterval)
		}

		store, err := highscore.Open(storeURI)
		if err != nil {
			return err
		}
		defer highscore.Close(store)

		engine, err := game.NewEngine(gameConfig, store, game.WithLogger(log))
		if err != nil {
			return err
		}
		defer engine.Close()

		seed := gameConfig.Seed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		director := &random.Director{
			Rand: rand.New(rand.NewPCG(seed, seed)),
			Log:  log,
		}

		summary, err := autoplay(cmd.Context(), engine, director, autoplayGames, autoplayInterval, log)
		if err != nil {
			return err
		}
		printSummary(cmd.OutOrStdout(), summary)
		return nil
	},
}

type autoplaySummary struct {
	Wins, Losses int
	BestScore    int
	HighScore    int
}

// autoplay plays games one after another, each until its game over
// navigation arrives
func autoplay(ctx context.Context, engine *game.Engine, director game.Director, games int, interval time.Duration, log logrus.FieldLogger) (autoplaySummary, error) {
	var summary autoplaySummary

	events, unsubscribe := engine.Subscribe()
	defer unsubscribe()

	for i := 0; i < games; i++ {
		if i > 0 {
			if err := engine.Restart(); err != nil {
				return summary, err
			}
		}

		director.Init(engine)
		director.ActContinuously(interval)
		payload, err := waitForGameOver(ctx, events)
		director.End()
		if err != nil {
			return summary, err
		}

		if payload.IsWinner {
			summary.Wins++
		} else {
			summary.Losses++
		}
		summary.BestScore = max(summary.BestScore, payload.Score)
		summary.HighScore = payload.HighScore

		log.WithFields(logrus.Fields{
			"game":       i + 1,
			"score":      payload.Score,
			"high_score": payload.HighScore,
			"winner":     payload.IsWinner,
		}).Info("autoplay game finished")
	}

	return summary, nil
}

func waitForGameOver(ctx context.Context, events <-chan game.Event) (*game.GameOverPayload, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case event, ok := <-events:
			if !ok {
				return nil, game.ErrClosed
			}
			if event.Kind == game.EventNavigate && event.Navigation.Destination == game.DestinationGameOver {
				return event.Navigation.GameOver, nil
			}
		}
	}
}

func printSummary(out io.Writer, summary autoplaySummary) {
	fmt.Fprintf(out, "wins: %d\n", summary.Wins)
	fmt.Fprintf(out, "losses: %d\n", summary.Losses)
	fmt.Fprintf(out, "best score: %d\n", summary.BestScore)
	fmt.Fprintf(out, "high score: %d\n", summary.HighScore)
}

func init() {
	autoplayCmd.Flags().IntVarP(&autoplayGames, "games", "n", 10, "Number of games to play")
	autoplayCmd.Flags().DurationVar(&autoplayInterval, "interval", 100*time.Millisecond, "Time between the computer's moves")
}
