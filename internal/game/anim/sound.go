package anim

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/platformer-core/pkg/math"
)

const soundSuffix = "Sound"

// findSound returns the sound that goes with an animation, or "" if there is
// none. Numbered variants Sound0..SoundN are picked at random.
func (c *Controller) findSound(animation string) string {
	if !c.cfg.PlaySounds || c.sounds == nil {
		return ""
	}
	stem := strings.TrimSuffix(strings.TrimPrefix(animation, c.prefix), animationSuffix)
	base := c.prefix + stem + soundSuffix

	if c.sounds.Has(base + "0") {
		n := 1
		for c.sounds.Has(base + strconv.Itoa(n)) {
			n++
		}
		return base + strconv.Itoa(c.rng.Intn(n))
	}
	if c.sounds.Has(base) {
		return base
	}
	return ""
}

func (c *Controller) playSound(name string) {
	v := c.sounds.Play(name, c.scaledVolume())
	if v == nil {
		return
	}
	if c.voice != nil && c.voice.Looping() && c.voice != v {
		c.voice.Stop()
	}
	c.voice = v
	c.log.Debug("sound", zap.String("name", name), zap.Float32("volume", v.Volume()))
}

// onFrameChange plays the animation's sound on each of its step frames.
func (c *Controller) onFrameChange(frame int) {
	if len(c.stepFrames) == 0 {
		return
	}
	for _, f := range c.stepFrames {
		if f != frame {
			continue
		}
		if snd := c.findSound(c.player.Animation()); snd != "" {
			c.playSound(snd)
		}
	}
}

// scaledVolume fades sounds out between the min and max listener distances.
func (c *Controller) scaledVolume() float32 {
	if !c.cfg.ScaleVolume || c.listener == nil {
		return 1
	}
	return ScaleVolume(c.listener.Position().Distance(c.actor.Body.Position), c.cfg.SoundMinDistance, c.cfg.SoundMaxDistance)
}

// ScaleVolume maps a distance to a volume: 1 up to min, 0 from max, linear in between.
func ScaleVolume(distance, min, max float32) float32 {
	if max <= min {
		if distance <= min {
			return 1
		}
		return 0
	}
	return math.Clamp((max-distance)/(max-min), 0, 1)
}
