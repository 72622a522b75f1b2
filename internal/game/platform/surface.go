package platform

import (
	"github.com/Faultbox/platformer-core/internal/engine/scene"
	"github.com/Faultbox/platformer-core/pkg/math"
)

// SurfaceImage is one oriented edge of a walkable surface in world space.
// A.X <= B.X always holds.
type SurfaceImage struct {
	A, B   math.Vec2
	Normal math.Vec2
}

// Offset returns the image translated by d.
func (s SurfaceImage) Offset(d math.Vec2) SurfaceImage {
	return SurfaceImage{A: s.A.Add(d), B: s.B.Add(d), Normal: s.Normal}
}

// BuildSurfaceImages converts the top chain of a body's collision polygon, from
// its min-X vertex to its max-X vertex, into world-space surface images.
func BuildSurfaceImages(b *scene.Body) []SurfaceImage {
	n := len(b.Poly)
	if n < 2 {
		return nil
	}

	mask := b.Mask()
	flip := math.Vec2{X: 1, Y: 1}
	if b.FlipX {
		flip.X = -1
	}
	if b.FlipY {
		flip.Y = -1
	}
	half := b.Size.Scale(0.5)
	rot := math.Rotation(b.Rotation)

	var images []SurfaceImage
	for i, steps := mask.MinIndex, 0; steps < n; i, steps = (i+1)%n, steps+1 {
		j := (i + 1) % n

		a := b.Poly[i].Mul(flip)
		c := b.Poly[j].Mul(flip)
		if a.X > c.X {
			a, c = c, a
		}
		a = rot.MulVec(a.Mul(half)).Add(b.Position)
		c = rot.MulVec(c.Mul(half)).Add(b.Position)

		images = append(images, SurfaceImage{
			A:      a,
			B:      c,
			Normal: c.Sub(a).Perp().Normalize(),
		})

		if j == mask.MaxIndex {
			break
		}
	}
	return images
}
