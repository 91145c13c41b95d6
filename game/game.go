package game

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

type GameConfig struct {
	Size     int `yaml:"size"`
	NumMines int `yaml:"mines"`

	// Seed for the sequence of boards; zero picks one from the current time
	Seed uint64 `yaml:"seed"`

	TickInterval  time.Duration `yaml:"tick_interval"`
	GameOverDelay time.Duration `yaml:"game_over_delay"`
	// Number of recent events kept for History
	HistorySize int `yaml:"history_size"`

	// Snapshot to take the mine layout from, instead of placing mines randomly
	Snapshot *BoardSnapshot `yaml:"-"`

	// Path to directory where final snapshots of boards should be saved
	SavedSnapshotsDir string `yaml:"saved_snapshots_dir"`
}

func NewGameConfig() GameConfig {
	return GameConfig{
		Size:          DefaultSize,
		NumMines:      DefaultNumMines,
		TickInterval:  DefaultTickInterval,
		GameOverDelay: DefaultGameOverDelay,
		HistorySize:   DefaultHistorySize,
	}
}

// LoadGameConfig reads a YAML config file over the defaults
func LoadGameConfig(path string) (GameConfig, error) {
	config := NewGameConfig()

	in, err := os.ReadFile(path)
	if err != nil {
		return config, err
	}
	if err := yaml.UnmarshalStrict(in, &config); err != nil {
		return config, fmt.Errorf("parsing %s: %w", path, err)
	}
	return config, nil
}

func (config GameConfig) Validate() error {
	if config.Snapshot == nil {
		if err := validateBoard(config.Size, config.NumMines); err != nil {
			return err
		}
	}
	if config.TickInterval <= 0 {
		return fmt.Errorf("%w: tick interval must be positive", ErrInvalidConfig)
	}
	if config.GameOverDelay < 0 {
		return fmt.Errorf("%w: game over delay must not be negative", ErrInvalidConfig)
	}
	if config.HistorySize < 0 {
		return fmt.Errorf("%w: history size must not be negative", ErrInvalidConfig)
	}
	return nil
}

func (config GameConfig) createBoard(seed uint64) (*Board, error) {
	if config.Snapshot != nil {
		return config.Snapshot.CreateBoard()
	}
	return NewBoard(config.Size, config.NumMines, rand.New(rand.NewPCG(seed, seed)))
}

// saveSnapshot writes the final state of a board into SavedSnapshotsDir
func (config GameConfig) saveSnapshot(snapshot *BoardSnapshot, t time.Time) (string, error) {
	if config.SavedSnapshotsDir == "" {
		return "", nil
	}

	stat, err := os.Stat(config.SavedSnapshotsDir)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", err
		}
		if err := os.MkdirAll(config.SavedSnapshotsDir, 0o777); err != nil {
			return "", err
		}
	} else if !stat.Mode().IsDir() {
		return "", fmt.Errorf("%s is not a directory; cannot save snapshots to it", config.SavedSnapshotsDir)
	}

	out, err := snapshot.Serialize()
	if err != nil {
		return "", err
	}

	path := filepath.Join(config.SavedSnapshotsDir, config.generateReplayFilename(snapshot, t))
	if err := os.WriteFile(path, []byte(out), 0o666); err != nil {
		return "", err
	}
	return path, nil
}

func (config GameConfig) generateReplayFilename(snapshot *BoardSnapshot, t time.Time) string {
	filenameBuilder := strings.Builder{}

	filenameBuilder.WriteString(t.Format("20060102_150405_"))

	switch snapshot.Outcome {
	case Win.String(), Loss.String():
		filenameBuilder.WriteString(snapshot.Outcome)
	default:
		filenameBuilder.WriteString("other")
	}

	if snapshot.ID != "" {
		id := snapshot.ID
		if len(id) > 8 {
			id = id[:8]
		}
		filenameBuilder.WriteString("_")
		filenameBuilder.WriteString(id)
	}

	filenameBuilder.WriteString(".yaml")

	return filenameBuilder.String()
}
