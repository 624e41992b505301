package preferences

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"zenflow/internal/core/model"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Window handles the preferences UI.
type Window struct {
	window      fyne.Window
	settings    Settings
	onSave      func(Settings)
	sessionMins *widget.Entry
	extendMins  *widget.Entry
	refreshMs   *widget.Entry
	notify      *widget.Check
}

// New creates a preferences window.
func New(app fyne.App, appName string, settings Settings, onSave func(Settings)) *Window {
	window := app.NewWindow(appName + " Settings")

	sessionMins := widget.NewEntry()
	extendMins := widget.NewEntry()
	refreshMs := widget.NewEntry()
	notify := widget.NewCheck("Notify when a session ends", nil)

	form := container.NewVBox(
		widget.NewLabelWithStyle("Sessions", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Session length"), sessionMins, widget.NewLabel("min")),
		container.NewHBox(widget.NewLabel("Add time step"), extendMins, widget.NewLabel("min")),
		container.NewHBox(widget.NewLabel("Display refresh"), refreshMs, widget.NewLabel("ms")),
		notify,
		widget.NewLabel("Length changes apply to the next session."),
	)

	saveButton := widget.NewButton("Save", nil)
	cancelButton := widget.NewButton("Cancel", nil)
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	window.Resize(fyne.NewSize(360, 260))

	prefs := &Window{
		window:      window,
		onSave:      onSave,
		sessionMins: sessionMins,
		extendMins:  extendMins,
		refreshMs:   refreshMs,
		notify:      notify,
	}
	prefs.UpdateSettings(settings)

	saveButton.OnTapped = prefs.handleSave
	cancelButton.OnTapped = func() {
		prefs.UpdateSettings(prefs.settings)
		window.Hide()
	}
	window.SetCloseIntercept(window.Hide)

	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	prefs.settings = settings
	prefs.sessionMins.SetText(fmt.Sprintf("%d", int(settings.SessionDuration/time.Minute)))
	prefs.extendMins.SetText(fmt.Sprintf("%d", int(settings.ExtendStep/time.Minute)))
	prefs.refreshMs.SetText(fmt.Sprintf("%d", int(settings.RefreshInterval/time.Millisecond)))
	prefs.notify.SetChecked(settings.NotifyOnExpiry)
}

func (prefs *Window) handleSave() {
	settings := prefs.settings

	if minutes, ok := parseBoundedInt(prefs.sessionMins.Text, 1, model.MaxMinutes); ok {
		settings.SessionDuration = time.Duration(minutes) * time.Minute
	}
	if minutes, ok := parseBoundedInt(prefs.extendMins.Text, 1, model.MaxMinutes); ok {
		settings.ExtendStep = time.Duration(minutes) * time.Minute
	}
	if millis, ok := parseBoundedInt(prefs.refreshMs.Text, MinRefreshMillis, MaxRefreshMillis); ok {
		settings.RefreshInterval = time.Duration(millis) * time.Millisecond
	}
	settings.NotifyOnExpiry = prefs.notify.Checked

	prefs.UpdateSettings(settings)
	if prefs.onSave != nil {
		prefs.onSave(settings)
	}
	prefs.window.Hide()
}

func parseBoundedInt(value string, low, high int) (int, bool) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed < low || parsed > high {
		return 0, false
	}
	return parsed, true
}
