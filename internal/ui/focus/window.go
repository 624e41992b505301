// Package focus renders the ZenFlow main window: a task entry view while idle
// and a countdown view while a session is running or expired.
package focus

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	corefocus "zenflow/internal/core/focus"
	"zenflow/internal/core/model"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Callbacks carries the raw user intents out of the window.
type Callbacks struct {
	OnStart       func(task string)
	OnExtend      func()
	OnReset       func()
	OnToggleSound func(soundID string)
}

// Window manages the main focus UI.
type Window struct {
	window       fyne.Window
	appName      string
	callbacks    Callbacks
	inputView    *fyne.Container
	timerView    *fyne.Container
	taskEntry    *widget.Entry
	taskLabel    *canvas.Text
	timerLabel   *canvas.Text
	statusLabel  *widget.Label
	extendButton *widget.Button
	resetButton  *widget.Button
	soundButtons map[string]*widget.Button
}

// New creates the main window.
func New(app fyne.App, appName string, sounds model.SoundCatalog, extendStep time.Duration, callbacks Callbacks) *Window {
	window := app.NewWindow(appName)

	focusWindow := &Window{
		window:       window,
		appName:      appName,
		callbacks:    callbacks,
		soundButtons: make(map[string]*widget.Button, len(sounds)),
	}

	taskEntry := widget.NewEntry()
	taskEntry.SetPlaceHolder("What are you focusing on?")
	taskEntry.OnSubmitted = focusWindow.handleSubmit
	focusWindow.taskEntry = taskEntry

	prompt := canvas.NewText("Name a task and press Enter", color.NRGBA{R: 200, G: 200, B: 200, A: 255})
	prompt.Alignment = fyne.TextAlignCenter
	focusWindow.inputView = container.NewVBox(layout.NewSpacer(), prompt, taskEntry, layout.NewSpacer())

	taskLabel := canvas.NewText("", color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	taskLabel.Alignment = fyne.TextAlignCenter
	taskLabel.TextStyle = fyne.TextStyle{Bold: true}
	taskLabel.TextSize = 20
	focusWindow.taskLabel = taskLabel

	timerLabel := canvas.NewText("--:--", color.NRGBA{R: 232, G: 190, B: 66, A: 255})
	timerLabel.Alignment = fyne.TextAlignCenter
	timerLabel.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	timerLabel.TextSize = 56
	focusWindow.timerLabel = timerLabel

	focusWindow.statusLabel = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Italic: true})

	focusWindow.extendButton = widget.NewButton(fmt.Sprintf("+%d min", int(extendStep/time.Minute)), func() {
		if focusWindow.callbacks.OnExtend != nil {
			focusWindow.callbacks.OnExtend()
		}
	})
	focusWindow.resetButton = widget.NewButton("Reset", func() {
		if focusWindow.callbacks.OnReset != nil {
			focusWindow.callbacks.OnReset()
		}
	})
	controls := container.NewHBox(layout.NewSpacer(), focusWindow.extendButton, focusWindow.resetButton, layout.NewSpacer())
	focusWindow.timerView = container.NewVBox(layout.NewSpacer(), taskLabel, timerLabel, focusWindow.statusLabel, controls, layout.NewSpacer())

	soundRow := container.NewHBox(layout.NewSpacer())
	for _, sound := range sounds {
		soundID := sound.ID
		button := widget.NewButton(sound.Label, func() {
			if focusWindow.callbacks.OnToggleSound != nil {
				focusWindow.callbacks.OnToggleSound(soundID)
			}
		})
		focusWindow.soundButtons[soundID] = button
		soundRow.Add(button)
	}
	soundRow.Add(layout.NewSpacer())

	content := container.NewBorder(nil, soundRow, nil, nil, container.NewStack(focusWindow.inputView, focusWindow.timerView))
	window.SetContent(content)
	window.Resize(fyne.NewSize(420, 320))

	return focusWindow
}

// Window exposes the underlying fyne window.
func (focusWindow *Window) Window() fyne.Window {
	return focusWindow.window
}

// Show displays the window.
func (focusWindow *Window) Show() {
	focusWindow.window.Show()
	focusWindow.window.RequestFocus()
}

// SetExtendStep relabels the add-time button.
func (focusWindow *Window) SetExtendStep(step time.Duration) {
	focusWindow.extendButton.SetText(fmt.Sprintf("+%d min", int(step/time.Minute)))
}

// Render updates every widget from snapshot. Call it on the fyne goroutine.
func (focusWindow *Window) Render(snapshot corefocus.Snapshot) {
	focusWindow.window.SetTitle(corefocus.Title(focusWindow.appName, snapshot))

	if snapshot.Phase == corefocus.PhaseIdle {
		focusWindow.timerView.Hide()
		focusWindow.inputView.Show()
		focusWindow.window.Canvas().Focus(focusWindow.taskEntry)
	} else {
		focusWindow.inputView.Hide()
		focusWindow.timerView.Show()
		focusWindow.taskLabel.Text = snapshot.Task
		focusWindow.taskLabel.Refresh()
		focusWindow.renderTimer(snapshot)
	}

	for soundID, button := range focusWindow.soundButtons {
		if soundID == snapshot.ActiveSound {
			button.Importance = widget.HighImportance
		} else {
			button.Importance = widget.MediumImportance
		}
		button.Refresh()
	}
}

// RenderProgress updates only the countdown. Call it on the fyne goroutine.
func (focusWindow *Window) RenderProgress(snapshot corefocus.Snapshot) {
	focusWindow.window.SetTitle(corefocus.Title(focusWindow.appName, snapshot))
	focusWindow.renderTimer(snapshot)
}

func (focusWindow *Window) renderTimer(snapshot corefocus.Snapshot) {
	focusWindow.timerLabel.Text = corefocus.FormatClock(snapshot.SecondsRemaining)
	focusWindow.timerLabel.Refresh()

	if snapshot.Phase == corefocus.PhaseExpired {
		focusWindow.statusLabel.SetText("Session complete")
		focusWindow.extendButton.Disable()
		return
	}
	focusWindow.statusLabel.SetText("")
	focusWindow.extendButton.Enable()
}

func (focusWindow *Window) handleSubmit(text string) {
	task := strings.TrimSpace(text)
	if task == "" {
		return
	}
	focusWindow.taskEntry.SetText("")
	if focusWindow.callbacks.OnStart != nil {
		focusWindow.callbacks.OnStart(task)
	}
}
