package sprite

import "time"

// Player advances one object's current clip.
type Player struct {
	lib *Library

	clip      Clip
	playing   bool
	frame     int
	frameTime time.Duration
	finished  bool

	// OnFrameChange is called whenever the displayed frame changes, including
	// the first frame of a newly played clip.
	OnFrameChange func(frame int)
}

// NewPlayer creates a player over lib.
func NewPlayer(lib *Library) *Player {
	return &Player{lib: lib, finished: true}
}

// Play starts a clip at frame. Unknown clips stop playback and report finished.
func (p *Player) Play(name string, frame int) {
	c, ok := p.lib.Clip(name)
	if !ok {
		p.clip = Clip{Name: name}
		p.playing = false
		p.finished = true
		return
	}
	if frame < 0 || frame >= c.Frames {
		frame = 0
	}
	p.clip = c
	p.playing = true
	p.finished = false
	p.frame = frame
	p.frameTime = 0
	p.notify()
}

// Update accumulates elapsed time and advances frames. Non-looping clips
// finish once their last frame has been shown for a full interval.
func (p *Player) Update(dt time.Duration) {
	if !p.playing || p.finished {
		return
	}
	interval := p.clip.interval()
	p.frameTime += dt
	for p.frameTime >= interval && !p.finished {
		p.frameTime -= interval
		if p.frame+1 >= p.clip.Frames {
			if !p.clip.Loop {
				p.finished = true
				return
			}
			p.frame = 0
		} else {
			p.frame++
		}
		p.notify()
	}
}

// Animation returns the name of the current clip.
func (p *Player) Animation() string {
	return p.clip.Name
}

// Frame returns the current frame index.
func (p *Player) Frame() int {
	return p.frame
}

// AnimationFinished reports whether a non-looping clip has ended, or nothing is playing.
// A looping clip never finishes, so callers waiting on it must play it without Loop.
func (p *Player) AnimationFinished() bool {
	return p.finished
}

func (p *Player) notify() {
	if p.OnFrameChange != nil {
		p.OnFrameChange(p.frame)
	}
}
