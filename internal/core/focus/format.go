package focus

import "fmt"

// FormatClock renders seconds as mm:ss. Minutes are not wrapped at an hour.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Title is the window title for a snapshot.
func Title(appName string, snapshot Snapshot) string {
	if snapshot.Phase == PhaseIdle {
		return appName
	}
	return fmt.Sprintf("%s - %s", FormatClock(snapshot.SecondsRemaining), snapshot.Task)
}
