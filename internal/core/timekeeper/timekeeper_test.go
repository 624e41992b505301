package timekeeper_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"zenflow/internal/core/clock"
	"zenflow/internal/core/focus"
	"zenflow/internal/core/model"
	"zenflow/internal/core/timekeeper"
	"zenflow/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	waitFor   = 2 * time.Second
	pollEvery = 5 * time.Millisecond
)

type fakePlayer struct {
	mu      sync.Mutex
	calls   []string
	playErr error
}

func (player *fakePlayer) Play(_ context.Context, soundID string) error {
	player.mu.Lock()
	defer player.mu.Unlock()
	player.calls = append(player.calls, "play:"+soundID)
	return player.playErr
}

func (player *fakePlayer) Stop() {
	player.mu.Lock()
	defer player.mu.Unlock()
	player.calls = append(player.calls, "stop")
}

func (player *fakePlayer) Calls() []string {
	player.mu.Lock()
	defer player.mu.Unlock()
	return append([]string(nil), player.calls...)
}

type failingStore struct{}

func (failingStore) Get(string) ([]byte, error) { return nil, storage.ErrNotFound }
func (failingStore) Set(string, []byte) error   { return errors.New("quota exceeded") }

func testConfig() model.FocusConfig {
	return model.FocusConfig{
		SessionDuration: focus.DefaultDuration,
		ExtendStep:      5 * time.Minute,
		RefreshInterval: 2 * time.Millisecond,
		Sounds: model.SoundCatalog{
			{ID: "rain", Label: "Rain", Source: "rain.mp3"},
			{ID: "waves", Label: "Waves", Source: "waves.mp3"},
		},
	}
}

type fixture struct {
	keeper *timekeeper.TimeKeeper
	blobs  *storage.MemoryStore
	clock  *clock.Manual
	player *fakePlayer
}

func newFixture(t *testing.T, nowMillis int64) fixture {
	t.Helper()
	blobs := storage.NewMemoryStore()
	manual := clock.NewManual(time.UnixMilli(nowMillis))
	player := &fakePlayer{}
	keeper := timekeeper.New(testConfig(), storage.NewStateAdapter(blobs, focus.DefaultDuration, nil), timekeeper.Config{
		Clock:  manual,
		Player: player,
	})
	t.Cleanup(keeper.Stop)
	return fixture{keeper: keeper, blobs: blobs, clock: manual, player: player}
}

func (f fixture) persisted(t *testing.T) focus.State {
	t.Helper()
	data, err := f.blobs.Get(storage.StateKey)
	require.NoError(t, err)
	state, err := storage.DecodeState(data, focus.New(focus.DefaultDuration))
	require.NoError(t, err)
	return state
}

func TestLoad_DefaultsWhenEmpty(t *testing.T) {
	f := newFixture(t, 1_000_000)

	snapshot := f.keeper.Load()
	assert.Equal(t, focus.PhaseIdle, snapshot.Phase)
	assert.Equal(t, 1500, snapshot.SecondsRemaining)
	assert.False(t, f.keeper.LoopRunning())
}

func TestLoad_ReloadAfterExpiry(t *testing.T) {
	f := newFixture(t, 1_050_000)
	require.NoError(t, f.blobs.Set(storage.StateKey, []byte(`{"task":"Write report","timeLeft":40,"endTime":1000000,"activeSound":null}`)))

	snapshot := f.keeper.Load()
	assert.Equal(t, "Write report", snapshot.Task)
	assert.Equal(t, 0, snapshot.SecondsRemaining)
	assert.Equal(t, focus.PhaseExpired, snapshot.Phase)
	assert.True(t, f.keeper.State().Deadline.IsZero())
	assert.False(t, f.keeper.LoopRunning())

	persisted := f.persisted(t)
	assert.Equal(t, "Write report", persisted.Task)
	assert.True(t, persisted.Deadline.IsZero())
}

func TestLoad_ResumesRunningSession(t *testing.T) {
	f := newFixture(t, 1_000_000)
	require.NoError(t, f.blobs.Set(storage.StateKey, []byte(`{"task":"Read","timeLeft":1500,"endTime":1600000,"activeSound":"rain"}`)))
	events := f.keeper.Subscribe(64)

	snapshot := f.keeper.Load()
	assert.Equal(t, 600, snapshot.SecondsRemaining)
	assert.Equal(t, "rain", snapshot.ActiveSound)
	assert.True(t, f.keeper.LoopRunning())
	require.Eventually(t, func() bool {
		return len(f.player.Calls()) == 1
	}, waitFor, pollEvery)
	assert.Equal(t, []string{"play:rain"}, f.player.Calls())

	f.clock.Set(time.UnixMilli(1_600_000))
	require.Eventually(t, func() bool { return !f.keeper.LoopRunning() }, waitFor, pollEvery)

	expired := false
	for !expired {
		select {
		case event := <-events:
			expired = event.Type == timekeeper.EventExpired
		case <-time.After(waitFor):
			t.Fatal("no expiry event")
		}
	}
	assert.Equal(t, focus.PhaseExpired, f.keeper.Snapshot().Phase)
	assert.True(t, f.persisted(t).Deadline.IsZero())
}

func TestLoad_DropsUnknownSound(t *testing.T) {
	f := newFixture(t, 0)
	require.NoError(t, f.blobs.Set(storage.StateKey, []byte(`{"task":null,"timeLeft":1500,"endTime":null,"activeSound":"thunder"}`)))

	assert.Equal(t, "", f.keeper.Load().ActiveSound)
}

func TestLoad_CorruptBlobDegradesToDefaults(t *testing.T) {
	f := newFixture(t, 0)
	require.NoError(t, f.blobs.Set(storage.StateKey, []byte(`{not json`)))

	snapshot := f.keeper.Load()
	assert.Equal(t, focus.PhaseIdle, snapshot.Phase)
	assert.Equal(t, 1500, snapshot.SecondsRemaining)
}

func TestDispatch_StartPersistsDeadline(t *testing.T) {
	f := newFixture(t, 1_000_000)
	f.keeper.Load()

	snapshot := f.keeper.Dispatch(focus.StartSession{Task: "Write report", Duration: 1500 * time.Second})
	assert.Equal(t, "Write report", snapshot.Task)
	assert.Equal(t, 1500, snapshot.SecondsRemaining)
	assert.True(t, f.keeper.LoopRunning())

	persisted := f.persisted(t)
	assert.Equal(t, int64(2_500_000), persisted.Deadline.UnixMilli())
	assert.Equal(t, "Write report", persisted.Task)
}

func TestDispatch_StartUsesDefaultDuration(t *testing.T) {
	f := newFixture(t, 0)
	f.keeper.Load()

	f.keeper.Dispatch(focus.StartSession{Task: "Plan"})
	assert.Equal(t, int64(1_500_000), f.keeper.State().Deadline.UnixMilli())
}

func TestDispatch_BlankTaskIgnored(t *testing.T) {
	f := newFixture(t, 0)
	f.keeper.Load()

	snapshot := f.keeper.Dispatch(focus.StartSession{Task: "  \t "})
	assert.Equal(t, focus.PhaseIdle, snapshot.Phase)
	_, err := f.blobs.Get(storage.StateKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.False(t, f.keeper.LoopRunning())
}

func TestDispatch_ExtendUsesStep(t *testing.T) {
	f := newFixture(t, 1_000_000)
	f.keeper.Load()
	f.keeper.Dispatch(focus.StartSession{Task: "Write report", Duration: 1500 * time.Second})

	snapshot := f.keeper.Dispatch(focus.ExtendSession{})
	assert.Equal(t, 1800, snapshot.SecondsRemaining)
	assert.Equal(t, int64(2_800_000), f.persisted(t).Deadline.UnixMilli())
}

func TestDispatch_ExtendWithoutSessionIsNoop(t *testing.T) {
	f := newFixture(t, 0)
	f.keeper.Load()

	f.keeper.Dispatch(focus.ExtendSession{Delta: time.Minute})
	assert.Equal(t, 1500, f.keeper.Snapshot().SecondsRemaining)
	_, err := f.blobs.Get(storage.StateKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDispatch_ResetHaltsLoop(t *testing.T) {
	f := newFixture(t, 0)
	f.keeper.Load()
	f.keeper.Dispatch(focus.StartSession{Task: "Read", Duration: time.Hour})
	require.True(t, f.keeper.LoopRunning())

	snapshot := f.keeper.Dispatch(focus.ResetSession{})
	assert.Equal(t, focus.PhaseIdle, snapshot.Phase)
	assert.Equal(t, 1500, snapshot.SecondsRemaining)
	require.Eventually(t, func() bool { return !f.keeper.LoopRunning() }, waitFor, pollEvery)

	persisted := f.persisted(t)
	assert.Equal(t, "", persisted.Task)
	assert.True(t, persisted.Deadline.IsZero())
}

func TestDispatch_RestartKeepsSingleLoop(t *testing.T) {
	f := newFixture(t, 0)
	f.keeper.Load()
	events := f.keeper.Subscribe(256)

	f.keeper.Dispatch(focus.StartSession{Task: "One", Duration: time.Minute})
	f.keeper.Dispatch(focus.StartSession{Task: "Two", Duration: time.Minute})
	f.keeper.Dispatch(focus.ResetSession{})
	f.keeper.Dispatch(focus.StartSession{Task: "Three", Duration: time.Minute})
	assert.True(t, f.keeper.LoopRunning())

	f.clock.Advance(time.Minute)
	require.Eventually(t, func() bool { return !f.keeper.LoopRunning() }, waitFor, pollEvery)

	// Exactly one expiry is reported, for the last session.
	time.Sleep(20 * time.Millisecond)
	expiries := 0
	for drained := false; !drained; {
		select {
		case event := <-events:
			if event.Type == timekeeper.EventExpired {
				expiries++
				assert.Equal(t, "Three", event.Snapshot.Task)
			}
		default:
			drained = true
		}
	}
	assert.Equal(t, 1, expiries)
}

func TestDispatch_ToggleSound(t *testing.T) {
	f := newFixture(t, 0)
	f.keeper.Load()

	assert.Equal(t, "rain", f.keeper.Dispatch(focus.ToggleSound{SoundID: "rain"}).ActiveSound)
	require.Eventually(t, func() bool { return len(f.player.Calls()) == 1 }, waitFor, pollEvery)

	assert.Equal(t, "waves", f.keeper.Dispatch(focus.ToggleSound{SoundID: "waves"}).ActiveSound)
	require.Eventually(t, func() bool { return len(f.player.Calls()) == 2 }, waitFor, pollEvery)

	assert.Equal(t, "", f.keeper.Dispatch(focus.ToggleSound{SoundID: "waves"}).ActiveSound)
	require.Eventually(t, func() bool { return len(f.player.Calls()) == 3 }, waitFor, pollEvery)

	assert.Equal(t, []string{"play:rain", "play:waves", "stop"}, f.player.Calls())
	assert.Equal(t, "", f.persisted(t).ActiveSound)
}

func TestDispatch_UnknownSoundIgnored(t *testing.T) {
	f := newFixture(t, 0)
	f.keeper.Load()

	assert.Equal(t, "", f.keeper.Dispatch(focus.ToggleSound{SoundID: "thunder"}).ActiveSound)
	_, err := f.blobs.Get(storage.StateKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDispatch_AudioFailureKeepsIntent(t *testing.T) {
	f := newFixture(t, 0)
	f.player.playErr = errors.New("autoplay blocked")
	events := f.keeper.Subscribe(16)
	f.keeper.Load()

	f.keeper.Dispatch(focus.ToggleSound{SoundID: "rain"})

	for {
		select {
		case event := <-events:
			if event.Type != timekeeper.EventAudioError {
				continue
			}
			assert.Equal(t, "autoplay blocked", event.Message)
			assert.Equal(t, "rain", f.keeper.Snapshot().ActiveSound)
			return
		case <-time.After(waitFor):
			t.Fatal("no audio error event")
		}
	}
}

func TestDispatch_SaveFailureKeepsMemoryState(t *testing.T) {
	keeper := timekeeper.New(testConfig(), storage.NewStateAdapter(failingStore{}, focus.DefaultDuration, nil), timekeeper.Config{
		Clock: clock.NewManual(time.UnixMilli(0)),
	})
	t.Cleanup(keeper.Stop)
	keeper.Load()

	snapshot := keeper.Dispatch(focus.StartSession{Task: "Offline", Duration: time.Minute})
	assert.Equal(t, "Offline", snapshot.Task)
	assert.Equal(t, 60, keeper.Snapshot().SecondsRemaining)
}

func TestUpdateConfig_AppliesToNextIntents(t *testing.T) {
	f := newFixture(t, 0)
	f.keeper.Load()
	f.keeper.Dispatch(focus.StartSession{Task: "Read"})

	f.keeper.UpdateConfig(model.FocusConfig{SessionDuration: 50 * time.Minute, ExtendStep: time.Minute})
	assert.Equal(t, 1500, f.keeper.Snapshot().SecondsRemaining)
	assert.Equal(t, 1560, f.keeper.Dispatch(focus.ExtendSession{}).SecondsRemaining)

	assert.Equal(t, 3000, f.keeper.Dispatch(focus.ResetSession{}).SecondsRemaining)
	assert.Equal(t, 2*time.Millisecond, f.keeper.Config().RefreshInterval)
}

func TestStop_ClosesSubscribers(t *testing.T) {
	f := newFixture(t, 0)
	events := f.keeper.Subscribe(1)
	f.keeper.Dispatch(focus.StartSession{Task: "Read", Duration: time.Minute})

	f.keeper.Stop()
	require.Eventually(t, func() bool { return !f.keeper.LoopRunning() }, waitFor, pollEvery)

	for range events {
	}
	assert.Equal(t, "Read", f.keeper.Dispatch(focus.ExtendSession{}).Task)
	assert.False(t, f.keeper.LoopRunning())
}
