package tray

import (
	"fmt"

	"zenflow/internal/core/focus"
	"zenflow/internal/core/model"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnShow        func()
	OnPreferences func()
	OnExtend      func()
	OnReset       func()
	OnToggleSound func(soundID string)
	OnQuit        func()
}

// Manager handles system tray state.
type Manager struct {
	app        desktop.App
	appName    string
	callbacks  Callbacks
	statusItem *fyne.MenuItem
	extendItem *fyne.MenuItem
	resetItem  *fyne.MenuItem
	soundsItem *fyne.MenuItem
	soundItems map[string]*fyne.MenuItem
	menu       *fyne.Menu
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, appName string, sounds model.SoundCatalog, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:        app,
		appName:    appName,
		callbacks:  callbacks,
		soundItems: make(map[string]*fyne.MenuItem, len(sounds)),
	}

	manager.statusItem = fyne.NewMenuItem("Status: idle", nil)
	manager.statusItem.Disabled = true

	manager.extendItem = fyne.NewMenuItem("Add time", func() {
		if manager.callbacks.OnExtend != nil {
			manager.callbacks.OnExtend()
		}
	})
	manager.resetItem = fyne.NewMenuItem("Reset task", func() {
		if manager.callbacks.OnReset != nil {
			manager.callbacks.OnReset()
		}
	})

	soundMenu := fyne.NewMenu("")
	for _, sound := range sounds {
		soundID := sound.ID
		item := fyne.NewMenuItem(sound.Label, func() {
			if manager.callbacks.OnToggleSound != nil {
				manager.callbacks.OnToggleSound(soundID)
			}
		})
		manager.soundItems[soundID] = item
		soundMenu.Items = append(soundMenu.Items, item)
	}
	manager.soundsItem = fyne.NewMenuItem("Sounds", nil)
	manager.soundsItem.ChildMenu = soundMenu

	show := fyne.NewMenuItem("Show "+appName, func() {
		if manager.callbacks.OnShow != nil {
			manager.callbacks.OnShow()
		}
	})
	preferences := fyne.NewMenuItem("Preferences", func() {
		if manager.callbacks.OnPreferences != nil {
			manager.callbacks.OnPreferences()
		}
	})
	quit := fyne.NewMenuItem("Quit", func() {
		if manager.callbacks.OnQuit != nil {
			manager.callbacks.OnQuit()
		}
	})
	quit.IsQuit = true

	manager.menu = fyne.NewMenu(appName,
		manager.statusItem,
		show,
		fyne.NewMenuItemSeparator(),
		manager.extendItem,
		manager.resetItem,
		manager.soundsItem,
		fyne.NewMenuItemSeparator(),
		preferences,
		quit,
	)
	manager.Render(focus.Snapshot{Phase: focus.PhaseIdle})
	return manager
}

// Render reflects snapshot in the menu.
func (manager *Manager) Render(snapshot focus.Snapshot) {
	manager.statusItem.Label = statusLabel(snapshot)
	manager.extendItem.Disabled = snapshot.Phase != focus.PhaseRunning
	manager.resetItem.Disabled = snapshot.Phase == focus.PhaseIdle
	for soundID, item := range manager.soundItems {
		item.Checked = soundID == snapshot.ActiveSound
	}
	manager.refreshMenu()
}

// SetExtendLabel names the add-time item after the configured step.
func (manager *Manager) SetExtendLabel(minutes int) {
	manager.extendItem.Label = fmt.Sprintf("Add %d minutes", minutes)
	manager.refreshMenu()
}

func (manager *Manager) refreshMenu() {
	if manager.app == nil {
		return
	}
	manager.app.SetSystemTrayMenu(manager.menu)
}

func statusLabel(snapshot focus.Snapshot) string {
	switch snapshot.Phase {
	case focus.PhaseRunning:
		return fmt.Sprintf("Status: %s left - %s", focus.FormatClock(snapshot.SecondsRemaining), snapshot.Task)
	case focus.PhaseExpired:
		return fmt.Sprintf("Status: done - %s", snapshot.Task)
	default:
		return "Status: idle"
	}
}
