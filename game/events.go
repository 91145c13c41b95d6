package game

import (
	"sync"

	"github.com/gammazero/deque"
)

type EventKind int

const (
	EventStarted EventKind = iota
	EventRevealed
	EventEnded
	EventTick
	EventHighScoreLoaded
	EventHighScoreSaved
	EventHighScoreFailed
	EventNavigate
)

var eventKindNames = map[EventKind]string{
	EventStarted:         "started",
	EventRevealed:        "revealed",
	EventEnded:           "ended",
	EventTick:            "tick",
	EventHighScoreLoaded: "high_score_loaded",
	EventHighScoreSaved:  "high_score_saved",
	EventHighScoreFailed: "high_score_failed",
	EventNavigate:        "navigate",
}

func (kind EventKind) String() string {
	if name, ok := eventKindNames[kind]; ok {
		return name
	}
	return "unknown"
}

// State is a copy of the engine's game state at the time of an event
type State struct {
	GameID       string
	Size         int
	NumMines     int
	Phase        Phase
	Outcome      Outcome
	Score        int
	OpenedCells  int
	TimerSeconds int
	HighScore    int
	IsWinner     bool
}

func (state State) GameOver() bool {
	return state.Phase == Ended
}

type GameOverPayload struct {
	Score     int
	HighScore int
	IsWinner  bool
}

// Navigation asks the surrounding UI to move to another screen
type Navigation struct {
	Destination string
	GameOver    *GameOverPayload
}

type Event struct {
	Kind  EventKind
	State State

	// Set on EventRevealed and EventEnded
	Position Position
	Outcome  Outcome

	// Set on EventNavigate
	Navigation *Navigation

	// Set on EventHighScoreFailed
	Err error
}

// subscriber buffers events for one observer, so that a slow reader never
// holds up the event loop
type subscriber struct {
	lock  sync.Mutex
	queue deque.Deque[Event]

	wake     chan struct{}
	out      chan Event
	stop     chan struct{}
	stopOnce sync.Once
}

func newSubscriber() *subscriber {
	return &subscriber{
		wake: make(chan struct{}, 1),
		out:  make(chan Event),
		stop: make(chan struct{}),
	}
}

func (sub *subscriber) push(event Event) {
	sub.lock.Lock()
	sub.queue.PushBack(event)
	sub.lock.Unlock()

	select {
	case sub.wake <- struct{}{}:
	default:
	}
}

func (sub *subscriber) pump(wg *sync.WaitGroup) {
	defer wg.Done()
	defer close(sub.out)

	for {
		sub.lock.Lock()
		if sub.queue.Len() == 0 {
			sub.lock.Unlock()

			select {
			case <-sub.wake:
				continue
			case <-sub.stop:
				return
			}
		}
		event := sub.queue.PopFront()
		sub.lock.Unlock()

		select {
		case sub.out <- event:
		case <-sub.stop:
			return
		}
	}
}

func (sub *subscriber) close() {
	sub.stopOnce.Do(func() {
		close(sub.stop)
	})
}
