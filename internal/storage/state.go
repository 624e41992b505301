package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"zenflow/internal/core/focus"

	"go.uber.org/zap"
)

// StateKey is the blob key holding the focus state.
const StateKey = "zenflow_state"

// maxEndTimeMillis is the last millisecond of year 9999.
const maxEndTimeMillis = 253_402_300_799_999

type stateRecord struct {
	Task        *string `json:"task"`
	TimeLeft    *int    `json:"timeLeft"`
	EndTime     *int64  `json:"endTime"`
	ActiveSound *string `json:"activeSound"`
}

// EncodeState serializes state into the persisted record format.
func EncodeState(state focus.State) ([]byte, error) {
	timeLeft := state.SecondsRemaining
	record := stateRecord{TimeLeft: &timeLeft}
	if state.Task != "" {
		task := state.Task
		record.Task = &task
	}
	if !state.Deadline.IsZero() {
		endTime := state.Deadline.UnixMilli()
		record.EndTime = &endTime
	}
	if state.ActiveSound != "" {
		sound := state.ActiveSound
		record.ActiveSound = &sound
	}

	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("marshal state: %w", err)
	}
	return data, nil
}

// DecodeState parses a persisted record. Missing fields keep the value from
// defaults. A deadline without a task is dropped; one outside the years
// 1970 to 9999 makes the record corrupt.
func DecodeState(data []byte, defaults focus.State) (focus.State, error) {
	var record stateRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return defaults, fmt.Errorf("parse state: %w", err)
	}

	state := defaults
	if record.Task != nil {
		state.Task = strings.TrimSpace(*record.Task)
	}
	if record.TimeLeft != nil {
		state.SecondsRemaining = *record.TimeLeft
		if state.SecondsRemaining < 0 {
			state.SecondsRemaining = 0
		}
	}
	if record.EndTime != nil {
		if *record.EndTime < 0 || *record.EndTime > maxEndTimeMillis {
			return defaults, fmt.Errorf("parse state: endTime %d out of range", *record.EndTime)
		}
		state.Deadline = time.UnixMilli(*record.EndTime)
	}
	if record.ActiveSound != nil {
		state.ActiveSound = *record.ActiveSound
	}
	if state.Task == "" {
		state.Deadline = time.Time{}
	}
	return state, nil
}

// StateAdapter saves and loads the focus state through a BlobStore.
type StateAdapter struct {
	store           BlobStore
	defaultDuration time.Duration
	logger          *zap.Logger
}

// NewStateAdapter returns an adapter over store.
func NewStateAdapter(store BlobStore, defaultDuration time.Duration, logger *zap.Logger) *StateAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StateAdapter{
		store:           store,
		defaultDuration: defaultDuration,
		logger:          logger,
	}
}

// Save persists state. Failures are logged and returned; they are never retried.
func (adapter *StateAdapter) Save(state focus.State) error {
	data, err := EncodeState(state)
	if err == nil {
		err = adapter.store.Set(StateKey, data)
	}
	if err != nil {
		adapter.logger.Warn("save state failed", zap.Error(err))
		return err
	}
	return nil
}

// Load returns the persisted state. It reports false when nothing usable is
// stored, in which case the caller starts from defaults.
func (adapter *StateAdapter) Load() (focus.State, bool) {
	defaults := focus.New(adapter.defaultDuration)
	data, err := adapter.store.Get(StateKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			adapter.logger.Warn("read state failed", zap.Error(err))
		}
		return defaults, false
	}

	state, err := DecodeState(data, defaults)
	if err != nil {
		adapter.logger.Warn("discarding corrupt state", zap.Error(err))
		return defaults, false
	}
	return state, true
}
