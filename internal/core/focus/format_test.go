package focus_test

import (
	"testing"

	"zenflow/internal/core/focus"

	"github.com/stretchr/testify/assert"
)

func TestFormatClock(t *testing.T) {
	cases := map[int]string{
		-5:   "00:00",
		0:    "00:00",
		9:    "00:09",
		60:   "01:00",
		1500: "25:00",
		3725: "62:05",
	}
	for seconds, want := range cases {
		assert.Equal(t, want, focus.FormatClock(seconds), "seconds=%d", seconds)
	}
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "ZenFlow", focus.Title("ZenFlow", focus.Snapshot{Phase: focus.PhaseIdle, SecondsRemaining: 1500}))
	assert.Equal(t, "24:59 - Write", focus.Title("ZenFlow", focus.Snapshot{Phase: focus.PhaseRunning, Task: "Write", SecondsRemaining: 1499}))
	assert.Equal(t, "00:00 - Write", focus.Title("ZenFlow", focus.Snapshot{Phase: focus.PhaseExpired, Task: "Write"}))
}
