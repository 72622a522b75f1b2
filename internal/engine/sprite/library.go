// Package sprite provides frame-timed sprite animation clips and a per-object player.
package sprite

import "time"

// DefaultInterval is the frame interval used by clips that do not set one.
const DefaultInterval = 150 * time.Millisecond

// MinInterval is the shortest frame interval a clip may use.
const MinInterval = 10 * time.Millisecond

// Clip describes one animation resource.
type Clip struct {
	Name     string        `yaml:"name"`
	Frames   int           `yaml:"frames"`
	Interval time.Duration `yaml:"interval"`
	Loop     bool          `yaml:"loop"`

	// StepFrames lists frames that trigger the clip's sound.
	StepFrames []int `yaml:"step_frames"`
}

func (c Clip) interval() time.Duration {
	switch {
	case c.Interval <= 0:
		return DefaultInterval
	case c.Interval < MinInterval:
		return MinInterval
	}
	return c.Interval
}

// Library is a named set of clips.
type Library struct {
	clips map[string]Clip
}

// NewLibrary creates a library from clips. Later clips replace earlier ones with the same name.
func NewLibrary(clips ...Clip) *Library {
	l := &Library{clips: make(map[string]Clip, len(clips))}
	for _, c := range clips {
		l.Add(c)
	}
	return l
}

// Add registers a clip.
func (l *Library) Add(c Clip) {
	if c.Frames <= 0 {
		c.Frames = 1
	}
	l.clips[c.Name] = c
}

// Clip looks up a clip by name.
func (l *Library) Clip(name string) (Clip, bool) {
	if l == nil {
		return Clip{}, false
	}
	c, ok := l.clips[name]
	return c, ok
}

// HasAnimation reports whether a clip exists.
func (l *Library) HasAnimation(name string) bool {
	_, ok := l.Clip(name)
	return ok
}

// FrameCount returns the number of frames in a clip, or 0 if unknown.
func (l *Library) FrameCount(name string) int {
	c, _ := l.Clip(name)
	return c.Frames
}

// StepFrames returns the sound step frames of a clip.
func (l *Library) StepFrames(name string) []int {
	c, _ := l.Clip(name)
	return c.StepFrames
}

// Len returns the number of clips.
func (l *Library) Len() int {
	return len(l.clips)
}
