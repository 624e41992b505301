package cli

import (
	"errors"
	"fmt"

	"zenflow/internal/audio"
	"zenflow/internal/core/timekeeper"
	"zenflow/internal/logging"
	"zenflow/internal/platform"
	"zenflow/internal/storage"
	"zenflow/internal/ui/preferences"

	"go.uber.org/zap"
)

var errPreferencesBackend = errors.New("state is kept in the window preferences (state_backend: preferences); set state_backend: file to use the command line")

// environment is the resolved configuration shared by every command.
type environment struct {
	configDir string
	stateDir  string
	settings  preferences.Settings
	logger    *zap.Logger
}

func loadEnvironment(options *rootOptions) (*environment, error) {
	configDir := options.configDir
	if configDir == "" {
		dir, err := platform.ConfigDir(appName)
		if err != nil {
			return nil, err
		}
		configDir = dir
	}
	stateDir := options.stateDir
	if stateDir == "" {
		dir, err := platform.StateDir(appName)
		if err != nil {
			return nil, err
		}
		stateDir = dir
	}

	settings, settingsErr := storage.LoadSettings(configDir)
	if options.logLevel != "" {
		settings.LogLevel = options.logLevel
	}
	logger, err := logging.New(settings.LogLevel)
	if err != nil {
		return nil, err
	}
	if settingsErr != nil {
		logger.Warn("using default settings", zap.String("dir", configDir), zap.Error(settingsErr))
	}

	return &environment{
		configDir: configDir,
		stateDir:  stateDir,
		settings:  settings,
		logger:    logger,
	}, nil
}

func (env *environment) close() {
	_ = env.logger.Sync()
}

// instanceName scopes the single-instance guard to one state directory.
func (env *environment) instanceName() string {
	return appName + ":" + env.stateDir
}

// newKeeper builds a TimeKeeper over blobs.
func (env *environment) newKeeper(blobs storage.BlobStore, player audio.Player) *timekeeper.TimeKeeper {
	adapter := storage.NewStateAdapter(blobs, env.settings.SessionDuration, env.logger.Named("storage"))
	return timekeeper.New(env.settings.FocusConfig(), adapter, timekeeper.Config{
		Player: player,
		Logger: env.logger.Named("timekeeper"),
	})
}

// withHeadlessKeeper runs fn against the file-backed session while holding the
// single-instance guard, so the window and the command line never both write.
func (env *environment) withHeadlessKeeper(player audio.Player, fn func(keeper *timekeeper.TimeKeeper) error) error {
	if env.settings.StateBackend != preferences.BackendFile {
		return errPreferencesBackend
	}
	guard, err := platform.AcquireSingleInstance(env.instanceName())
	if err != nil {
		if errors.Is(err, platform.ErrAlreadyRunning) {
			return fmt.Errorf("%s window is open; use it instead: %w", appName, err)
		}
		return err
	}
	defer func() {
		_ = guard.Release()
	}()

	keeper := env.newKeeper(storage.NewFileStore(env.stateDir), player)
	defer keeper.Stop()
	keeper.Load()
	return fn(keeper)
}
