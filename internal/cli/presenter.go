package cli

import (
	"fmt"

	"zenflow/internal/core/timekeeper"
	uifocus "zenflow/internal/ui/focus"
	"zenflow/internal/ui/tray"

	"fyne.io/fyne/v2"
)

// presenter renders keeper events and raises the expiry notification.
// handle must run on the fyne goroutine.
type presenter struct {
	window        *uifocus.Window
	tray          *tray.Manager
	notifyEnabled func() bool
	notify        func(*fyne.Notification)
}

func (p *presenter) handle(event timekeeper.Event) {
	switch event.Type {
	case timekeeper.EventStateChange:
		p.window.Render(event.Snapshot)
	case timekeeper.EventProgress:
		p.window.RenderProgress(event.Snapshot)
	case timekeeper.EventExpired:
		if p.notify != nil && p.notifyEnabled != nil && p.notifyEnabled() {
			p.notify(fyne.NewNotification(appName, fmt.Sprintf("%q is complete", event.Snapshot.Task)))
		}
	case timekeeper.EventAudioError:
		return
	}
	if p.tray != nil {
		p.tray.Render(event.Snapshot)
	}
}
