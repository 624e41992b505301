package cli

import (
	"fmt"
	"time"

	"zenflow/internal/audio"
	"zenflow/internal/core/focus"
	"zenflow/internal/platform"
	"zenflow/internal/storage"
	uifocus "zenflow/internal/ui/focus"
	"zenflow/internal/ui/preferences"
	"zenflow/internal/ui/tray"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"go.uber.org/zap"
)

func runGUI(env *environment) error {
	guard, err := platform.AcquireSingleInstance(env.instanceName())
	if err != nil {
		if activateErr := platform.Activate(env.instanceName()); activateErr == nil {
			env.logger.Info("raised the running window")
			return nil
		}
		return fmt.Errorf("%s: %w", appName, err)
	}
	defer func() {
		_ = guard.Release()
	}()

	fyneApp := app.NewWithID("com.zenflow.app")
	settings := env.settings

	var blobs storage.BlobStore = storage.NewFileStore(env.stateDir)
	if settings.StateBackend == preferences.BackendPreferences {
		blobs = storage.NewPreferencesStore(fyneApp.Preferences())
	}
	keeper := env.newKeeper(blobs, audio.NewSpeakerPlayer(settings.Sounds, env.logger.Named("audio")))
	defer keeper.Stop()

	mainWindow := uifocus.New(fyneApp, appName, settings.Sounds, settings.ExtendStep, uifocus.Callbacks{
		OnStart: func(task string) {
			keeper.Dispatch(focus.StartSession{Task: task})
		},
		OnExtend: func() {
			keeper.Dispatch(focus.ExtendSession{})
		},
		OnReset: func() {
			keeper.Dispatch(focus.ResetSession{})
		},
		OnToggleSound: func(soundID string) {
			keeper.Dispatch(focus.ToggleSound{SoundID: soundID})
		},
	})

	var trayManager *tray.Manager
	prefsWindow := preferences.New(fyneApp, appName, settings, func(updated preferences.Settings) {
		if err := storage.SaveSettings(env.configDir, updated); err != nil {
			env.logger.Warn("save settings failed", zap.Error(err))
		}
		settings = updated
		keeper.UpdateConfig(updated.FocusConfig())
		mainWindow.SetExtendStep(updated.ExtendStep)
		if trayManager != nil {
			trayManager.SetExtendLabel(int(updated.ExtendStep / time.Minute))
		}
	})

	if desktopApp, ok := fyneApp.(desktop.App); ok {
		trayManager = tray.New(desktopApp, appName, settings.Sounds, tray.Callbacks{
			OnShow:        mainWindow.Show,
			OnPreferences: prefsWindow.Show,
			OnExtend: func() {
				keeper.Dispatch(focus.ExtendSession{})
			},
			OnReset: func() {
				keeper.Dispatch(focus.ResetSession{})
			},
			OnToggleSound: func(soundID string) {
				keeper.Dispatch(focus.ToggleSound{SoundID: soundID})
			},
			OnQuit: fyneApp.Quit,
		})
		trayManager.SetExtendLabel(int(settings.ExtendStep / time.Minute))
		mainWindow.Window().SetCloseIntercept(func() {
			mainWindow.Window().Hide()
		})
	} else {
		env.logger.Info("system tray unsupported on this platform")
		mainWindow.Window().SetMaster()
	}

	// settings is only touched on the fyne goroutine, where presenter runs.
	view := &presenter{
		window:        mainWindow,
		tray:          trayManager,
		notifyEnabled: func() bool { return settings.NotifyOnExpiry },
		notify:        fyneApp.SendNotification,
	}
	events := keeper.Subscribe(16)
	go func() {
		for event := range events {
			fyne.Do(func() { view.handle(event) })
		}
	}()
	guard.ServeActivation(func() {
		fyne.Do(mainWindow.Show)
	})

	snapshot := keeper.Load()
	mainWindow.Render(snapshot)
	if trayManager != nil {
		trayManager.Render(snapshot)
	}

	mainWindow.Show()
	fyneApp.Run()
	return nil
}
