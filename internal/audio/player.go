// Package audio loops ambient soundscapes for focus sessions.
package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"zenflow/internal/core/model"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
	"go.uber.org/zap"
)

// ErrUnknownSound indicates a sound id missing from the catalog.
var ErrUnknownSound = errors.New("unknown sound")

// Player plays at most one looping sound at a time.
type Player interface {
	Play(ctx context.Context, soundID string) error
	Stop()
}

// NopPlayer accepts every request and plays nothing.
type NopPlayer struct{}

func (NopPlayer) Play(context.Context, string) error { return nil }
func (NopPlayer) Stop()                              {}

const speakerSampleRate = beep.SampleRate(44100)

// SpeakerPlayer decodes MP3 sources and loops them through the system speaker.
// Decoded sounds are cached in memory for the life of the player.
type SpeakerPlayer struct {
	mu          sync.Mutex
	catalog     model.SoundCatalog
	client      *http.Client
	logger      *zap.Logger
	initialized bool
	buffers     map[string]*beep.Buffer
	current     string
}

// NewSpeakerPlayer returns a player for the sounds in catalog.
func NewSpeakerPlayer(catalog model.SoundCatalog, logger *zap.Logger) *SpeakerPlayer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SpeakerPlayer{
		catalog: catalog,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
		buffers: make(map[string]*beep.Buffer),
	}
}

// Play replaces whatever is playing with soundID on loop. The sound is decoded
// before the speaker is opened, so a bad source never touches the device.
func (player *SpeakerPlayer) Play(ctx context.Context, soundID string) error {
	sound, ok := player.catalog.Lookup(soundID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSound, soundID)
	}

	player.mu.Lock()
	defer player.mu.Unlock()

	buffer, err := player.bufferLocked(ctx, sound)
	if err != nil {
		return err
	}
	if err := player.initLocked(); err != nil {
		return err
	}

	looped, err := beep.Loop2(buffer.Streamer(0, buffer.Len()))
	if err != nil {
		return fmt.Errorf("loop %s: %w", soundID, err)
	}

	speaker.Clear()
	speaker.Play(looped)
	player.current = soundID
	player.logger.Debug("playing sound", zap.String("sound", soundID))
	return nil
}

// Preload fetches and decodes soundID into the cache without playing it.
func (player *SpeakerPlayer) Preload(ctx context.Context, soundID string) error {
	sound, ok := player.catalog.Lookup(soundID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSound, soundID)
	}

	player.mu.Lock()
	defer player.mu.Unlock()
	_, err := player.bufferLocked(ctx, sound)
	return err
}

// Stop silences the speaker.
func (player *SpeakerPlayer) Stop() {
	player.mu.Lock()
	defer player.mu.Unlock()
	if !player.initialized || player.current == "" {
		return
	}
	speaker.Clear()
	player.logger.Debug("stopped sound", zap.String("sound", player.current))
	player.current = ""
}

func (player *SpeakerPlayer) initLocked() error {
	if player.initialized {
		return nil
	}
	if err := speaker.Init(speakerSampleRate, speakerSampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	player.initialized = true
	return nil
}

func (player *SpeakerPlayer) bufferLocked(ctx context.Context, sound model.Sound) (*beep.Buffer, error) {
	if buffer, ok := player.buffers[sound.ID]; ok {
		return buffer, nil
	}

	source, err := player.open(ctx, sound.Source)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", sound.ID, err)
	}
	streamer, format, err := decode(sound.Source, source)
	if err != nil {
		_ = source.Close()
		return nil, fmt.Errorf("decode %s: %w", sound.ID, err)
	}
	defer streamer.Close()

	buffer := beep.NewBuffer(beep.Format{SampleRate: speakerSampleRate, NumChannels: 2, Precision: 2})
	buffer.Append(beep.Resample(4, format.SampleRate, speakerSampleRate, streamer))
	if err := streamer.Err(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", sound.ID, err)
	}
	if buffer.Len() == 0 {
		return nil, fmt.Errorf("decode %s: no samples", sound.ID)
	}

	player.buffers[sound.ID] = buffer
	player.logger.Debug("sound cached", zap.String("sound", sound.ID), zap.Int("samples", buffer.Len()))
	return buffer, nil
}

// decode picks the codec from the source extension; MP3 is the default.
func decode(location string, source io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
	if index := strings.IndexAny(location, "?#"); index >= 0 {
		location = location[:index]
	}
	if strings.EqualFold(path.Ext(location), ".wav") {
		return wav.Decode(source)
	}
	return mp3.Decode(source)
}

func (player *SpeakerPlayer) open(ctx context.Context, source string) (io.ReadCloser, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		return os.Open(source)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	response, err := player.client.Do(request)
	if err != nil {
		return nil, err
	}
	if response.StatusCode != http.StatusOK {
		_ = response.Body.Close()
		return nil, fmt.Errorf("fetch %s: %s", source, response.Status)
	}
	return response.Body, nil
}
