package game

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/gammazero/deque"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/they4kman/minefield/highscore"
)

type Option func(*Engine)

func WithClock(clock Clock) Option {
	return func(engine *Engine) {
		engine.clock = clock
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(engine *Engine) {
		engine.log = log
	}
}

// Engine runs games on a Board. Every change to the board and game state is
// made on a single event loop goroutine: reveals, timer ticks, high score
// storage completions and the delayed game over navigation.
type Engine struct {
	config GameConfig
	store  highscore.Store
	clock  Clock
	log    logrus.FieldLogger
	seeds  *rand.Rand

	events    chan func()
	done      chan struct{}
	loopDone  chan struct{}
	closeOnce sync.Once

	// Context for storage calls, cancelled on Close
	ctx     context.Context
	cancel  context.CancelFunc
	storage errgroup.Group

	// Owned by the event loop
	board           *Board
	gameID          string
	seed            uint64
	timerSeconds    int
	quit            bool
	highScore       int
	highScoreLoaded bool
	pendingScore    int
	ticker          *task
	navigation      *task
	history         deque.Deque[Event]

	subscribersLock sync.Mutex
	subscribers     map[*subscriber]struct{}
	pumps           sync.WaitGroup

	persistLock sync.Mutex
	persisted   int
}

// NewEngine validates the config, starts the first game and begins reading
// the high score from store in the background.
func NewEngine(config GameConfig, store highscore.Store, opts ...Option) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	seed := config.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	engine := &Engine{
		config:      config,
		store:       store,
		clock:       RealClock,
		log:         logrus.StandardLogger(),
		seeds:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		events:      make(chan func()),
		done:        make(chan struct{}),
		loopDone:    make(chan struct{}),
		subscribers: make(map[*subscriber]struct{}),
	}
	for _, opt := range opts {
		opt(engine)
	}
	engine.ctx, engine.cancel = context.WithCancel(context.Background())

	if err := engine.startGame(); err != nil {
		engine.cancel()
		return nil, err
	}

	go engine.run()

	if err := engine.do(engine.loadHighScore); err != nil {
		return nil, err
	}

	return engine, nil
}

func (engine *Engine) run() {
	defer close(engine.loopDone)

	for {
		select {
		case fn := <-engine.events:
			fn()
		case <-engine.done:
			return
		}
	}
}

// do runs fn on the event loop and waits for it to finish
func (engine *Engine) do(fn func()) error {
	finished := make(chan struct{})
	select {
	case engine.events <- func() {
		defer close(finished)
		fn()
	}:
	case <-engine.done:
		return ErrClosed
	}
	<-finished
	return nil
}

// schedule runs fn on the event loop after d, unless the returned task is
// cancelled first
func (engine *Engine) schedule(d time.Duration, fn func()) *task {
	t := &task{}
	t.timer = engine.clock.AfterFunc(d, func() {
		_ = engine.do(func() {
			if t.cancelled {
				return
			}
			t.cancelled = true
			fn()
		})
	})
	return t
}

func (engine *Engine) gameLog() logrus.FieldLogger {
	return engine.log.WithField("game", engine.gameID)
}

func (engine *Engine) cancelTasks() {
	engine.ticker.cancel()
	engine.navigation.cancel()
	engine.ticker, engine.navigation = nil, nil
}

func (engine *Engine) startGame() error {
	seed := engine.seeds.Uint64()
	board, err := engine.config.createBoard(seed)
	if err != nil {
		return err
	}

	engine.cancelTasks()
	engine.board = board
	engine.seed = seed
	engine.gameID = uuid.NewString()
	engine.timerSeconds = 0
	engine.quit = false
	engine.scheduleTick()

	engine.gameLog().WithFields(logrus.Fields{
		"size":  board.Size(),
		"mines": board.NumMines(),
		"seed":  seed,
	}).Debug("game started")
	engine.emit(Event{Kind: EventStarted})
	return nil
}

func (engine *Engine) scheduleTick() {
	engine.ticker = engine.schedule(engine.config.TickInterval, func() {
		engine.timerSeconds++
		engine.emit(Event{Kind: EventTick})
		engine.scheduleTick()
	})
}

func (engine *Engine) state() State {
	board := engine.board
	return State{
		GameID:       engine.gameID,
		Size:         board.Size(),
		NumMines:     board.NumMines(),
		Phase:        board.Phase(),
		Outcome:      board.Outcome(),
		Score:        board.Score(),
		OpenedCells:  board.OpenedCells(),
		TimerSeconds: engine.timerSeconds,
		HighScore:    engine.highScore,
		IsWinner:     board.IsWinner(),
	}
}

func (engine *Engine) emit(event Event) {
	event.State = engine.state()

	if event.Kind != EventTick && engine.config.HistorySize > 0 {
		if engine.history.Len() >= engine.config.HistorySize {
			engine.history.PopFront()
		}
		engine.history.PushBack(event)
	}

	engine.subscribersLock.Lock()
	defer engine.subscribersLock.Unlock()
	for sub := range engine.subscribers {
		sub.push(event)
	}
}

// Reveal opens the cell at (row, col) in the current game
func (engine *Engine) Reveal(row, col int) (Outcome, error) {
	var (
		outcome Outcome
		err     error
	)
	if doErr := engine.do(func() {
		outcome, err = engine.reveal(row, col)
	}); doErr != nil {
		return Ignored, doErr
	}
	return outcome, err
}

func (engine *Engine) reveal(row, col int) (Outcome, error) {
	if engine.quit {
		return Ignored, nil
	}

	outcome, err := engine.board.Reveal(row, col)
	if err != nil || outcome == Ignored {
		return outcome, err
	}

	pos := Position{Row: row, Col: col}
	engine.gameLog().WithFields(logrus.Fields{
		"row":     row,
		"col":     col,
		"outcome": outcome,
		"score":   engine.board.Score(),
	}).Debug("cell revealed")
	engine.emit(Event{Kind: EventRevealed, Position: pos, Outcome: outcome})

	if outcome.IsTerminal() {
		engine.endGame(pos, outcome)
	}
	return outcome, nil
}

func (engine *Engine) endGame(pos Position, outcome Outcome) {
	engine.ticker.cancel()
	engine.ticker = nil

	score := engine.board.Score()
	isWinner := engine.board.IsWinner()

	if engine.highScoreLoaded {
		engine.commitHighScore(score)
	} else {
		// Committing before the stored value is known could overwrite a
		// better score; wait for the load to finish.
		engine.pendingScore = max(engine.pendingScore, score)
	}

	engine.gameLog().WithFields(logrus.Fields{
		"outcome":    outcome,
		"score":      score,
		"high_score": engine.highScore,
		"seconds":    engine.timerSeconds,
	}).Info("game over")
	engine.emit(Event{Kind: EventEnded, Position: pos, Outcome: outcome})

	engine.saveSnapshot()

	engine.navigation = engine.schedule(engine.config.GameOverDelay, func() {
		engine.emit(Event{
			Kind: EventNavigate,
			Navigation: &Navigation{
				Destination: DestinationGameOver,
				GameOver: &GameOverPayload{
					Score:     score,
					HighScore: max(engine.highScore, engine.pendingScore),
					IsWinner:  isWinner,
				},
			},
		})
	})
}

func (engine *Engine) commitHighScore(score int) {
	if score <= engine.highScore {
		return
	}
	engine.highScore = score
	engine.persistHighScore(score)
}

func (engine *Engine) loadHighScore() {
	log := engine.log
	ctx := engine.ctx

	engine.storage.Go(func() error {
		score, err := highscore.Load(ctx, engine.store)
		if err != nil {
			log.WithError(err).Error("Error fetching high score")
		} else {
			engine.persistLock.Lock()
			engine.persisted = max(engine.persisted, score)
			engine.persistLock.Unlock()
		}

		_ = engine.do(func() {
			engine.highScore = max(engine.highScore, score)
			engine.highScoreLoaded = true
			engine.emit(Event{Kind: EventHighScoreLoaded, Err: err})

			if engine.pendingScore > 0 {
				pending := engine.pendingScore
				engine.pendingScore = 0
				engine.commitHighScore(pending)
			}
		})
		return nil
	})
}

// persistHighScore writes score in the background. Failures are logged and
// otherwise dropped; the in-memory high score stands either way.
func (engine *Engine) persistHighScore(score int) {
	log := engine.gameLog()
	ctx := engine.ctx

	engine.storage.Go(func() error {
		saved, err := engine.storeHighScore(ctx, score)
		if err != nil {
			log.WithError(err).WithField("score", score).Error("Error saving high score")
			_ = engine.do(func() {
				engine.emit(Event{Kind: EventHighScoreFailed, Err: err})
			})
			return nil
		}
		if !saved {
			return nil
		}

		log.WithField("score", score).Info("high score saved")
		_ = engine.do(func() {
			engine.emit(Event{Kind: EventHighScoreSaved})
		})
		return nil
	})
}

// storeHighScore writes score unless something at least as high has already
// been stored. persistLock is released before returning, so callers never
// hold it while waiting on the event loop.
func (engine *Engine) storeHighScore(ctx context.Context, score int) (bool, error) {
	engine.persistLock.Lock()
	defer engine.persistLock.Unlock()

	if score <= engine.persisted {
		return false, nil
	}
	if err := highscore.Save(ctx, engine.store, score); err != nil {
		return false, err
	}
	engine.persisted = score
	return true, nil
}

func (engine *Engine) saveSnapshot() {
	if engine.config.SavedSnapshotsDir == "" {
		return
	}

	config := engine.config
	snapshot := engine.board.snapshot(engine.gameID, engine.seed)
	log := engine.gameLog()

	engine.storage.Go(func() error {
		path, err := config.saveSnapshot(snapshot, time.Now())
		if err != nil {
			log.WithError(err).Warn("could not save board snapshot")
			return nil
		}
		log.WithField("path", path).Debug("board snapshot saved")
		return nil
	})
}

// Restart discards the current game and starts a fresh one
func (engine *Engine) Restart() error {
	var err error
	if doErr := engine.do(func() {
		err = engine.startGame()
	}); doErr != nil {
		return doErr
	}
	return err
}

// Quit abandons the current game and signals navigation back home. Any
// pending game over navigation is cancelled.
func (engine *Engine) Quit() error {
	return engine.do(func() {
		engine.cancelTasks()
		engine.quit = true
		engine.gameLog().Debug("game quit")
		engine.emit(Event{
			Kind:       EventNavigate,
			Navigation: &Navigation{Destination: DestinationHome},
		})
	})
}

// Snapshot returns the current game state and a copy of the board
func (engine *Engine) Snapshot() (State, *Board, error) {
	var (
		state State
		board *Board
	)
	err := engine.do(func() {
		state = engine.state()
		board = engine.board.Clone()
	})
	return state, board, err
}

// History returns the most recent events, oldest first. Ticks are not kept.
func (engine *Engine) History() ([]Event, error) {
	var events []Event
	err := engine.do(func() {
		events = make([]Event, engine.history.Len())
		for i := range events {
			events[i] = engine.history.At(i)
		}
	})
	return events, err
}

// Subscribe returns a channel receiving every event from now on, and a
// function to stop receiving. The channel is closed on unsubscribe or Close.
func (engine *Engine) Subscribe() (<-chan Event, func()) {
	sub := newSubscriber()

	engine.subscribersLock.Lock()
	select {
	case <-engine.done:
		engine.subscribersLock.Unlock()
		close(sub.out)
		return sub.out, func() {}
	default:
	}
	engine.subscribers[sub] = struct{}{}
	engine.pumps.Add(1)
	engine.subscribersLock.Unlock()

	go sub.pump(&engine.pumps)

	return sub.out, func() {
		engine.subscribersLock.Lock()
		delete(engine.subscribers, sub)
		engine.subscribersLock.Unlock()
		sub.close()
	}
}

// Close stops the engine: pending timers are cancelled, in-flight storage
// calls are cancelled and waited for, and subscriber channels are closed.
func (engine *Engine) Close() error {
	engine.closeOnce.Do(func() {
		_ = engine.do(engine.cancelTasks)

		engine.subscribersLock.Lock()
		close(engine.done)
		engine.subscribersLock.Unlock()
		<-engine.loopDone

		engine.cancel()
		_ = engine.storage.Wait()

		engine.subscribersLock.Lock()
		for sub := range engine.subscribers {
			sub.close()
		}
		engine.subscribers = map[*subscriber]struct{}{}
		engine.subscribersLock.Unlock()
		engine.pumps.Wait()
	})
	return nil
}
