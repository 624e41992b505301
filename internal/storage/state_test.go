package storage_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"zenflow/internal/core/focus"
	"zenflow/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeState_RecordFormat(t *testing.T) {
	data, err := storage.EncodeState(focus.State{
		Task:             "Write report",
		SecondsRemaining: 1500,
		Deadline:         time.UnixMilli(2_500_000),
		ActiveSound:      "rain",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"task":"Write report","timeLeft":1500,"endTime":2500000,"activeSound":"rain"}`, string(data))

	data, err = storage.EncodeState(focus.New(focus.DefaultDuration))
	require.NoError(t, err)
	assert.JSONEq(t, `{"task":null,"timeLeft":1500,"endTime":null,"activeSound":null}`, string(data))
}

func TestDecodeState_RoundTrip(t *testing.T) {
	defaults := focus.New(focus.DefaultDuration)
	states := []focus.State{
		defaults,
		{Task: "Write report", SecondsRemaining: 1500, Deadline: time.UnixMilli(2_500_000)},
		{Task: "Expired", SecondsRemaining: 0, ActiveSound: "waves"},
		{SecondsRemaining: 1500, ActiveSound: "forest"},
	}
	for _, state := range states {
		data, err := storage.EncodeState(state)
		require.NoError(t, err)
		decoded, err := storage.DecodeState(data, defaults)
		require.NoError(t, err)
		assert.Equal(t, state, decoded)
	}
}

func TestDecodeState_MissingFieldsUseDefaults(t *testing.T) {
	defaults := focus.New(focus.DefaultDuration)

	decoded, err := storage.DecodeState([]byte(`{"task":"Read","endTime":90000}`), defaults)
	require.NoError(t, err)
	assert.Equal(t, "Read", decoded.Task)
	assert.Equal(t, 1500, decoded.SecondsRemaining)
	assert.Equal(t, int64(90_000), decoded.Deadline.UnixMilli())
	assert.Equal(t, "", decoded.ActiveSound)
}

func TestDecodeState_Normalizes(t *testing.T) {
	defaults := focus.New(focus.DefaultDuration)

	decoded, err := storage.DecodeState([]byte(`{"task":null,"timeLeft":-4,"endTime":90000,"extra":true}`), defaults)
	require.NoError(t, err)
	assert.Equal(t, focus.PhaseIdle, decoded.Phase())
	assert.True(t, decoded.Deadline.IsZero())
	assert.Equal(t, 0, decoded.SecondsRemaining)
}

func TestDecodeState_Corrupt(t *testing.T) {
	defaults := focus.New(focus.DefaultDuration)

	decoded, err := storage.DecodeState([]byte(`{"task":`), defaults)
	assert.Error(t, err)
	assert.Equal(t, defaults, decoded)
}

func TestDecodeState_EndTimeOutOfRange(t *testing.T) {
	defaults := focus.New(focus.DefaultDuration)

	for _, raw := range []string{
		`{"task":"x","timeLeft":60,"endTime":-9223372036854775808}`,
		`{"task":"x","timeLeft":60,"endTime":-1}`,
		`{"task":"x","timeLeft":60,"endTime":9223372036854775807}`,
	} {
		decoded, err := storage.DecodeState([]byte(raw), defaults)
		assert.ErrorContains(t, err, "out of range", raw)
		assert.Equal(t, defaults, decoded)
	}

	memory := storage.NewMemoryStore()
	require.NoError(t, memory.Set(storage.StateKey, []byte(`{"task":"x","endTime":-9223372036854775808}`)))
	state, found := storage.NewStateAdapter(memory, focus.DefaultDuration, nil).Load()
	assert.False(t, found)
	assert.Equal(t, focus.PhaseIdle, state.Phase())
}

type brokenStore struct{}

func (brokenStore) Get(string) ([]byte, error) { return nil, errors.New("storage unavailable") }
func (brokenStore) Set(string, []byte) error   { return errors.New("quota exceeded") }

func TestStateAdapter_LoadDegrades(t *testing.T) {
	adapter := storage.NewStateAdapter(brokenStore{}, focus.DefaultDuration, nil)

	state, found := adapter.Load()
	assert.False(t, found)
	assert.Equal(t, focus.New(focus.DefaultDuration), state)
	assert.Error(t, adapter.Save(state))

	memory := storage.NewMemoryStore()
	require.NoError(t, memory.Set(storage.StateKey, []byte("garbage")))
	state, found = storage.NewStateAdapter(memory, focus.DefaultDuration, nil).Load()
	assert.False(t, found)
	assert.Equal(t, focus.New(focus.DefaultDuration), state)
}

func TestStateAdapter_FileRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	adapter := storage.NewStateAdapter(storage.NewFileStore(dir), focus.DefaultDuration, nil)

	_, found := adapter.Load()
	assert.False(t, found)

	state := focus.New(focus.DefaultDuration).Start("Write report", 1500*time.Second, time.UnixMilli(1_000_000))
	require.NoError(t, adapter.Save(state))

	loaded, found := adapter.Load()
	assert.True(t, found)
	assert.Equal(t, state, loaded)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, storage.StateKey+".json", entries[0].Name())
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	store := storage.NewMemoryStore()
	value := []byte("abc")
	require.NoError(t, store.Set("key", value))
	value[0] = 'x'

	got, err := store.Get("key")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	_, err = store.Get("missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
