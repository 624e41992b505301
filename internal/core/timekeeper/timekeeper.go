package timekeeper

import (
	"context"
	"strings"
	"sync"
	"time"

	"zenflow/internal/audio"
	"zenflow/internal/core/clock"
	"zenflow/internal/core/focus"
	"zenflow/internal/core/model"

	"go.uber.org/zap"
)

// StateStore persists the focus state between runs.
type StateStore interface {
	Save(state focus.State) error
	Load() (focus.State, bool)
}

// Config contains runtime collaborators for TimeKeeper.
type Config struct {
	Clock  clock.Clock
	Player audio.Player
	Logger *zap.Logger
}

// TimeKeeper owns the focus state, persists every mutation and drives the
// scheduler loop that keeps the remaining time current while a session runs.
type TimeKeeper struct {
	mu       sync.Mutex
	config   model.FocusConfig
	clock    clock.Clock
	store    StateStore
	player   audio.Player
	logger   *zap.Logger
	state    focus.State
	events   []chan Event
	ctx      context.Context
	cancel   context.CancelFunc
	running  bool
	stopped  bool
	soundGen uint64
	audioMu  sync.Mutex
}

// New creates a TimeKeeper with the provided configuration.
func New(config model.FocusConfig, store StateStore, options Config) *TimeKeeper {
	if config.SessionDuration <= 0 {
		config.SessionDuration = focus.DefaultDuration
	}
	if config.ExtendStep <= 0 {
		config.ExtendStep = 5 * time.Minute
	}
	if config.RefreshInterval <= 0 {
		config.RefreshInterval = 200 * time.Millisecond
	}
	if options.Clock == nil {
		options.Clock = clock.System
	}
	if options.Player == nil {
		options.Player = audio.NopPlayer{}
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &TimeKeeper{
		config: config,
		clock:  options.Clock,
		store:  store,
		player: options.Player,
		logger: options.Logger,
		state:  focus.New(config.SessionDuration),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Subscribe registers a new observer channel.
func (keeper *TimeKeeper) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	keeper.mu.Lock()
	keeper.events = append(keeper.events, ch)
	keeper.mu.Unlock()
	return ch
}

// Load restores the persisted state, reconciles it against the clock and
// starts the scheduler loop when a countdown is still running.
func (keeper *TimeKeeper) Load() focus.Snapshot {
	state, found := keeper.store.Load()

	keeper.mu.Lock()
	defer keeper.mu.Unlock()

	if state.ActiveSound != "" && !keeper.config.Sounds.Has(state.ActiveSound) {
		keeper.logger.Info("dropping unknown sound", zap.String("sound", state.ActiveSound))
		state.ActiveSound = ""
	}

	now := keeper.clock.Now()
	reconciled := state.Reconcile(now)
	keeper.state = reconciled
	if state.Active() && !reconciled.Active() {
		keeper.logger.Info("session expired while away", zap.String("task", reconciled.Task))
		_ = keeper.store.Save(reconciled)
	}
	keeper.logger.Debug("state loaded",
		zap.Bool("found", found),
		zap.String("phase", string(reconciled.Phase())),
		zap.Int("seconds_remaining", reconciled.SecondsRemaining),
	)

	if reconciled.ActiveSound != "" {
		keeper.requestSoundLocked(reconciled.ActiveSound)
	}
	keeper.emitLocked(Event{Type: EventStateChange, Snapshot: reconciled.Snapshot(), At: now})
	keeper.ensureLoopLocked()
	return reconciled.Snapshot()
}

// Dispatch applies a user intent. Blank task names, unknown sounds and
// extensions without a running countdown are ignored.
func (keeper *TimeKeeper) Dispatch(intent focus.Intent) focus.Snapshot {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()

	switch request := intent.(type) {
	case focus.StartSession:
		if strings.TrimSpace(request.Task) == "" {
			return keeper.state.Snapshot()
		}
	case focus.ExtendSession:
		if request.Delta == 0 {
			intent = focus.ExtendSession{Delta: keeper.config.ExtendStep}
		}
	case focus.ToggleSound:
		if !keeper.config.Sounds.Has(request.SoundID) {
			keeper.logger.Debug("ignoring unknown sound", zap.String("sound", request.SoundID))
			return keeper.state.Snapshot()
		}
	}

	now := keeper.clock.Now()
	previous := keeper.state
	next := focus.Apply(previous, intent, now, keeper.config.SessionDuration)
	if sameState(previous, next) {
		return next.Snapshot()
	}

	keeper.state = next
	_ = keeper.store.Save(next)
	keeper.logger.Debug("intent applied",
		zap.String("intent", intentName(intent)),
		zap.String("phase", string(next.Phase())),
		zap.Int("seconds_remaining", next.SecondsRemaining),
	)

	if next.ActiveSound != previous.ActiveSound {
		keeper.requestSoundLocked(next.ActiveSound)
	}
	keeper.emitLocked(Event{Type: EventStateChange, Snapshot: next.Snapshot(), At: now})
	keeper.ensureLoopLocked()
	return next.Snapshot()
}

// UpdateConfig replaces the durations used by later intents. The running
// countdown keeps its deadline; a new refresh interval applies to the next loop.
func (keeper *TimeKeeper) UpdateConfig(config model.FocusConfig) {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if config.SessionDuration > 0 {
		keeper.config.SessionDuration = config.SessionDuration
	}
	if config.ExtendStep > 0 {
		keeper.config.ExtendStep = config.ExtendStep
	}
	if config.RefreshInterval > 0 {
		keeper.config.RefreshInterval = config.RefreshInterval
	}
}

// Snapshot returns the current state for rendering.
func (keeper *TimeKeeper) Snapshot() focus.Snapshot {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return keeper.state.Snapshot()
}

// State returns a copy of the owned focus state.
func (keeper *TimeKeeper) State() focus.State {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return keeper.state
}

// Config returns the active configuration.
func (keeper *TimeKeeper) Config() model.FocusConfig {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return keeper.config
}

// LoopRunning reports whether the scheduler loop is alive.
func (keeper *TimeKeeper) LoopRunning() bool {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return keeper.running
}

// Stop terminates the scheduler loop, silences audio and closes observers.
func (keeper *TimeKeeper) Stop() {
	keeper.mu.Lock()
	if keeper.stopped {
		keeper.mu.Unlock()
		return
	}
	keeper.stopped = true
	keeper.soundGen++
	keeper.cancel()
	events := keeper.events
	keeper.events = nil
	keeper.mu.Unlock()

	keeper.audioMu.Lock()
	keeper.player.Stop()
	keeper.audioMu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

// ensureLoopLocked starts the scheduler loop unless one is already running.
func (keeper *TimeKeeper) ensureLoopLocked() {
	if keeper.running || keeper.stopped || !keeper.state.Active() {
		return
	}
	keeper.running = true
	go keeper.run(keeper.config.RefreshInterval)
}

func (keeper *TimeKeeper) run(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-keeper.ctx.Done():
			keeper.mu.Lock()
			keeper.running = false
			keeper.mu.Unlock()
			return
		case <-ticker.C:
			if !keeper.tick() {
				return
			}
		}
	}
}

// tick runs one loop iteration and reports whether the loop continues.
func (keeper *TimeKeeper) tick() bool {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()

	if keeper.stopped || keeper.state.Task == "" || !keeper.state.Active() {
		keeper.running = false
		return false
	}

	now := keeper.clock.Now()
	previous := keeper.state.Snapshot()
	keeper.state = keeper.state.Reconcile(now)
	snapshot := keeper.state.Snapshot()

	if !keeper.state.Active() {
		_ = keeper.store.Save(keeper.state)
		keeper.logger.Info("session expired", zap.String("task", keeper.state.Task))
		keeper.emitLocked(Event{Type: EventExpired, Snapshot: snapshot, At: now})
		keeper.emitLocked(Event{Type: EventStateChange, Snapshot: snapshot, At: now})
		keeper.running = false
		return false
	}

	// Most iterations land inside the same second; observers only hear about changes.
	if snapshot != previous {
		keeper.emitLocked(Event{Type: EventProgress, Snapshot: snapshot, At: now})
	}
	return true
}

// requestSoundLocked hands a playback change to the audio collaborator without
// blocking the caller. Only the latest request is applied.
func (keeper *TimeKeeper) requestSoundLocked(soundID string) {
	keeper.soundGen++
	generation := keeper.soundGen

	go func() {
		keeper.audioMu.Lock()
		defer keeper.audioMu.Unlock()

		keeper.mu.Lock()
		stale := generation != keeper.soundGen
		keeper.mu.Unlock()
		if stale {
			return
		}

		if soundID == "" {
			keeper.player.Stop()
			return
		}
		if err := keeper.player.Play(keeper.ctx, soundID); err != nil {
			// The requested sound stays active so the UI reflects intent.
			keeper.logger.Warn("audio playback failed", zap.String("sound", soundID), zap.Error(err))
			keeper.emit(Event{
				Type:     EventAudioError,
				Snapshot: keeper.Snapshot(),
				Message:  err.Error(),
				At:       keeper.clock.Now(),
			})
		}
	}()
}

func (keeper *TimeKeeper) emit(event Event) {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	keeper.emitLocked(event)
}

func (keeper *TimeKeeper) emitLocked(event Event) {
	for _, ch := range keeper.events {
		select {
		case ch <- event:
		default:
		}
	}
}

func sameState(left, right focus.State) bool {
	return left.Task == right.Task &&
		left.SecondsRemaining == right.SecondsRemaining &&
		left.Deadline.Equal(right.Deadline) &&
		left.ActiveSound == right.ActiveSound
}

func intentName(intent focus.Intent) string {
	switch intent.(type) {
	case focus.StartSession:
		return "start"
	case focus.ExtendSession:
		return "extend"
	case focus.ResetSession:
		return "reset"
	case focus.ToggleSound:
		return "toggle_sound"
	default:
		return "unknown"
	}
}
