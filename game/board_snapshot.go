package game

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

type BoardSnapshot struct {
	ID              string `yaml:"id,omitempty"`
	Seed            uint64 `yaml:"seed"`
	Outcome         string `yaml:"outcome,omitempty"`
	Score           int    `yaml:"score"`
	SerializedBoard string `yaml:"board,flow"`
}

func (board *Board) serialize() string {
	rows := make([]string, len(board.cells))
	for y, row := range board.cells {
		line := make([]byte, len(row))
		for x := range row {
			line[x] = row[x].serialize()
		}
		rows[y] = string(line)
	}
	return strings.Join(rows, "\n")
}

func (board *Board) snapshot(id string, seed uint64) *BoardSnapshot {
	snapshot := &BoardSnapshot{
		ID:              id,
		Seed:            seed,
		Score:           board.score,
		SerializedBoard: board.serialize(),
	}
	if board.phase == Ended {
		snapshot.Outcome = board.outcome.String()
	}
	return snapshot
}

func (snapshot *BoardSnapshot) Serialize() (string, error) {
	out, err := yaml.Marshal(snapshot)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// CreateBoard lays out a fresh board from the snapshot's mines. Every cell
// starts closed, whatever state was recorded.
func (snapshot *BoardSnapshot) CreateBoard() (*Board, error) {
	rows := strings.Split(strings.TrimSpace(snapshot.SerializedBoard), "\n")

	size := len(rows)
	for y, row := range rows {
		if len(row) != size {
			return nil, fmt.Errorf("%w: snapshot row %d has %d cells, want %d", ErrInvalidConfig, y, len(row), size)
		}
	}

	numMines := strings.Count(snapshot.SerializedBoard, "*") + strings.Count(snapshot.SerializedBoard, "O")
	if err := validateBoard(size, numMines); err != nil {
		return nil, err
	}

	board := createBoard(size, numMines)
	for y, row := range rows {
		for x, c := range row {
			if !board.CellAt(y, x).deserialize(c) {
				return nil, fmt.Errorf("%w: unknown snapshot cell %q at (%d, %d)", ErrInvalidConfig, c, y, x)
			}
		}
	}

	return board, nil
}

func LoadSnapshot(in string) (*BoardSnapshot, error) {
	var snapshot BoardSnapshot
	if err := yaml.Unmarshal([]byte(in), &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func LoadSnapshotFile(path string) (*BoardSnapshot, error) {
	in, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadSnapshot(string(in))
}
