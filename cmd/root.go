package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/they4kman/minefield/game"
	"github.com/they4kman/minefield/highscore"
	"github.com/they4kman/minefield/ui"
)

var gameConfig = game.NewGameConfig()

var (
	configPath   string
	snapshotPath string
	storeURI     string
	logLevel     string
	logFile      string
)

var log = logrus.New()

var rootCmd = &cobra.Command{
	Use:   "minefield",
	Short: "Tap your way through a small minefield",
	Long: `minefield is a small Minesweeper-style game played on a 5x5 grid.

Run with no arguments to play in the terminal
	minefield

Pick a number of mines on the home screen, then reveal cells until every
safe cell is open, or a mine goes off. The best score is kept between games.
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupLogging(); err != nil {
			return err
		}
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := highscore.Open(storeURI)
		if err != nil {
			return err
		}
		defer highscore.Close(store)

		newSession := func(numMines int) (ui.Session, error) {
			config := gameConfig
			config.NumMines = numMines
			engine, err := game.NewEngine(config, store, game.WithLogger(log))
			if err != nil {
				return nil, err
			}
			return engine, nil
		}

		program := tea.NewProgram(ui.NewModel(newSession, ui.DefaultStyles()))
		_, err = program.Run()
		return err
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "minefield")
}

func setupLogging() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)

	if logFile == "" {
		log.SetOutput(io.Discard)
		return nil
	}
	if logFile == "-" {
		log.SetOutput(os.Stderr)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return err
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	log.SetOutput(file)
	log.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	return nil
}

// loadConfig reads the config file, if any, then reapplies the flags the
// user set explicitly so they take precedence
func loadConfig(cmd *cobra.Command) error {
	if configPath != "" {
		fileConfig, err := game.LoadGameConfig(configPath)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("size") {
			fileConfig.Size = gameConfig.Size
		}
		if flags.Changed("mines") {
			fileConfig.NumMines = gameConfig.NumMines
		}
		if flags.Changed("seed") {
			fileConfig.Seed = gameConfig.Seed
		}
		if flags.Changed("game-over-delay") {
			fileConfig.GameOverDelay = gameConfig.GameOverDelay
		}
		if flags.Changed("save-dir") {
			fileConfig.SavedSnapshotsDir = gameConfig.SavedSnapshotsDir
		}
		gameConfig = fileConfig
	}

	if snapshotPath != "" {
		snapshot, err := game.LoadSnapshotFile(snapshotPath)
		if err != nil {
			return fmt.Errorf("loading snapshot: %w", err)
		}
		gameConfig.Snapshot = snapshot
	}

	return gameConfig.Validate()
}

func init() {
	dataDir := defaultDataDir()

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "YAML file with game settings")
	flags.IntVarP(&gameConfig.Size, "size", "s", game.DefaultSize, "Side length of the board, in cells")
	flags.IntVarP(&gameConfig.NumMines, "mines", "m", game.DefaultNumMines, "Number of mines to place on the board")
	flags.Uint64Var(&gameConfig.Seed, "seed", 0, "Seed for mine placement (0 picks one from the clock)")
	flags.DurationVar(&gameConfig.GameOverDelay, "game-over-delay", game.DefaultGameOverDelay, "Time between the end of a game and the game over screen")
	flags.StringVar(&gameConfig.SavedSnapshotsDir, "save-dir", "", "Directory to save the final board of each game into")
	flags.StringVar(&snapshotPath, "snapshot", "", "Play on the mine layout of a saved board snapshot")
	flags.StringVar(&storeURI, "store", "sqlite:"+filepath.Join(dataDir, "highscore.db"), `Where to keep the high score: "memory", "file:<path>" or "sqlite:<path>"`)
	flags.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flags.StringVar(&logFile, "log-file", filepath.Join(dataDir, "minefield.log"), `Log file ("-" for stderr, empty to disable)`)

	rootCmd.AddCommand(highscoreCmd)
	rootCmd.AddCommand(autoplayCmd)
}
