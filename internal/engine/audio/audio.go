// Package audio provides a named sound bank with per-voice volume control.
package audio

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
)

// DefaultSampleRate is the default sample rate for audio playback.
const DefaultSampleRate = beep.SampleRate(44100)

// LoopSuffix marks a sound file as looping: "GlideSound.loop.wav".
const LoopSuffix = ".loop"

type sound struct {
	buf  *beep.Buffer
	loop bool
}

// Manager holds decoded sounds and plays them through the speaker.
// Without Init it still hands out voices, which track state silently.
type Manager struct {
	mu sync.RWMutex

	initialized bool
	sampleRate  beep.SampleRate

	// Volume settings (0.0 to 1.0)
	masterVolume float64
	sfxVolLevel  float64
	muted        bool

	mixer *beep.Mixer
	bank  map[string]*sound
	// active holds the voices routed through the speaker.
	active map[*Voice]struct{}
}

// New creates a new audio manager.
func New() *Manager {
	return &Manager{
		sampleRate:   DefaultSampleRate,
		masterVolume: 1.0,
		sfxVolLevel:  1.0,
		mixer:        &beep.Mixer{},
		bank:         make(map[string]*sound),
		active:       make(map[*Voice]struct{}),
	}
}

// Init initializes the speaker.
func (m *Manager) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	if err := speaker.Init(m.sampleRate, m.sampleRate.N(time.Second/30)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(m.mixer)

	m.initialized = true
	return nil
}

// Close shuts down the speaker.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		speaker.Clear()
	}
	m.initialized = false
	for v := range m.active {
		v.playing = false
		delete(m.active, v)
	}
}

// IsInitialized returns whether the speaker is running.
func (m *Manager) IsInitialized() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.initialized
}

// SetMasterVolume sets the master volume (0.0 to 1.0).
func (m *Manager) SetMasterVolume(vol float64) {
	m.mu.Lock()
	m.masterVolume = clamp(vol, 0, 1)
	m.mu.Unlock()
	m.refresh()
}

// SetSFXVolume sets the effects volume (0.0 to 1.0).
func (m *Manager) SetSFXVolume(vol float64) {
	m.mu.Lock()
	m.sfxVolLevel = clamp(vol, 0, 1)
	m.mu.Unlock()
	m.refresh()
}

// SetMuted silences every voice.
func (m *Manager) SetMuted(muted bool) {
	m.mu.Lock()
	m.muted = muted
	m.mu.Unlock()
	m.refresh()
}

// Muted reports whether output is silenced.
func (m *Manager) Muted() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.muted
}

// Active returns the number of voices currently routed to the speaker.
func (m *Manager) Active() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.active)
}

// refresh re-applies the gain of every active voice after a volume change.
func (m *Manager) refresh() {
	m.mu.RLock()
	voices := make([]*Voice, 0, len(m.active))
	for v := range m.active {
		voices = append(voices, v)
	}
	m.mu.RUnlock()
	for _, v := range voices {
		v.applyGain()
	}
}

// GetMasterVolume returns the master volume.
func (m *Manager) GetMasterVolume() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.masterVolume
}

// GetSFXVolume returns the effects volume.
func (m *Manager) GetSFXVolume() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sfxVolLevel
}

// Load decodes WAV data into the bank under name.
func (m *Manager) Load(name string, data []byte, loop bool) error {
	streamer, format, err := wav.Decode(io.NopCloser(bytes.NewReader(data)))
	if err != nil {
		return fmt.Errorf("decode wav %s: %w", name, err)
	}
	defer streamer.Close()

	buf := beep.NewBuffer(format)
	buf.Append(streamer)

	m.mu.Lock()
	m.bank[name] = &sound{buf: buf, loop: loop}
	m.mu.Unlock()
	return nil
}

// LoadDir loads every .wav file in dir. The sound name is the file name
// without extension; a LoopSuffix before the extension marks it looping.
func (m *Manager) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("reading sound dir %s: %w", dir, err)
	}
	loaded := 0
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".wav") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return loaded, fmt.Errorf("reading %s: %w", e.Name(), err)
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		loop := strings.HasSuffix(name, LoopSuffix)
		name = strings.TrimSuffix(name, LoopSuffix)
		if err := m.Load(name, data, loop); err != nil {
			return loaded, err
		}
		loaded++
	}
	return loaded, nil
}

// Has reports whether a sound is in the bank.
func (m *Manager) Has(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.bank[name]
	return ok
}

// Play starts a sound at volume (0.0 to 1.0). It returns nil for unknown names.
func (m *Manager) Play(name string, volume float32) *Voice {
	m.mu.RLock()
	snd, ok := m.bank[name]
	initialized := m.initialized
	m.mu.RUnlock()
	if !ok {
		return nil
	}

	v := &Voice{m: m, name: name, loop: snd.loop, volume: float32(clamp(float64(volume), 0, 1)), playing: true}
	if !initialized {
		// Headless: one-shot sounds end immediately, loops run until stopped.
		v.playing = snd.loop
		return v
	}

	var s beep.Streamer = snd.buf.Streamer(0, snd.buf.Len())
	if snd.loop {
		s = &loopStreamer{src: snd.buf.Streamer(0, snd.buf.Len())}
	}
	if snd.buf.Format().SampleRate != m.sampleRate {
		s = beep.Resample(4, snd.buf.Format().SampleRate, m.sampleRate, s)
	}

	v.ctrl = &beep.Ctrl{Streamer: s}
	v.gain = &effects.Volume{Streamer: v.ctrl, Base: 2}
	v.applyGain()

	m.mu.Lock()
	m.active[v] = struct{}{}
	m.mu.Unlock()
	m.mixer.Add(beep.Seq(v.gain, beep.Callback(func() {
		m.mu.Lock()
		v.playing = false
		delete(m.active, v)
		m.mu.Unlock()
	})))
	return v
}

func (m *Manager) effectiveVolume(vol float32) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.muted {
		return 0
	}
	return m.masterVolume * m.sfxVolLevel * float64(vol)
}

// Voice is one playing instance of a sound.
type Voice struct {
	m       *Manager
	name    string
	loop    bool
	volume  float32
	playing bool

	ctrl *beep.Ctrl
	gain *effects.Volume
}

// Name returns the sound name.
func (v *Voice) Name() string {
	return v.name
}

// Looping reports whether the sound repeats until stopped.
func (v *Voice) Looping() bool {
	return v.loop
}

// Playing reports whether the voice is still audible.
func (v *Voice) Playing() bool {
	v.m.mu.RLock()
	defer v.m.mu.RUnlock()
	return v.playing
}

// Volume returns the voice volume (0.0 to 1.0).
func (v *Voice) Volume() float32 {
	v.m.mu.RLock()
	defer v.m.mu.RUnlock()
	return v.volume
}

// SetVolume changes the voice volume (0.0 to 1.0).
func (v *Voice) SetVolume(vol float32) {
	v.m.mu.Lock()
	v.volume = float32(clamp(float64(vol), 0, 1))
	v.m.mu.Unlock()
	v.applyGain()
}

// Stop silences the voice.
func (v *Voice) Stop() {
	v.m.mu.Lock()
	v.playing = false
	delete(v.m.active, v)
	v.m.mu.Unlock()
	if v.ctrl == nil {
		return
	}
	speaker.Lock()
	v.ctrl.Paused = true
	speaker.Unlock()
}

func (v *Voice) applyGain() {
	if v.gain == nil {
		return
	}
	vol := v.m.effectiveVolume(v.Volume())
	speaker.Lock()
	v.gain.Silent = vol <= 0
	v.gain.Volume = volumeToDb(vol)
	speaker.Unlock()
}

// volumeToDb converts a 0-1 volume to a base-2 gain exponent in decibel-like steps.
func volumeToDb(vol float64) float64 {
	if vol <= 0 {
		return -100 // Effectively silent
	}
	// vol=1 -> 0dB, vol=0.5 -> -6dB, vol=0.25 -> -12dB
	return 20 * math.Log10(vol)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// loopStreamer rewinds its source whenever it drains.
type loopStreamer struct {
	src beep.StreamSeeker
}

func (l *loopStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	filled := 0
	for filled < len(samples) {
		n, ok := l.src.Stream(samples[filled:])
		filled += n
		if !ok || n == 0 {
			if err := l.src.Seek(0); err != nil || l.src.Len() == 0 {
				return filled, filled > 0
			}
		}
	}
	return filled, true
}

func (l *loopStreamer) Err() error {
	return l.src.Err()
}
