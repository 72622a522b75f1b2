package math

// Mask is the local-space bounding extent of a rotated collision polygon.
type Mask struct {
	Min, Max Vec2

	// MinIndex and MaxIndex are the polygon indices of the min-X and max-X vertices.
	MinIndex, MaxIndex int
}

// Width returns the horizontal extent of the mask.
func (m Mask) Width() float32 {
	return m.Max.X - m.Min.X
}

// CollisionMask rotates poly (vertices in [-1,1] local space) and returns its extents
// scaled by half of size. Exact ties on X prefer the vertex with the smaller Y.
func CollisionMask(poly []Vec2, rotation float32, size Vec2) Mask {
	if len(poly) == 0 {
		return Mask{}
	}

	rot := Rotation(rotation)
	pts := make([]Vec2, len(poly))
	for i, p := range poly {
		pts[i] = rot.MulVec(p)
	}

	minX, maxX, minY, maxY := 0, 0, 0, 0
	for i := 1; i < len(pts); i++ {
		p := pts[i]
		if p.X >= pts[maxX].X {
			if p.X != pts[maxX].X || p.Y < pts[maxX].Y {
				maxX = i
			}
		}
		if p.X <= pts[minX].X {
			if p.X != pts[minX].X || p.Y < pts[minX].Y {
				minX = i
			}
		}
		if p.Y > pts[maxY].Y {
			maxY = i
		}
		if p.Y < pts[minY].Y {
			minY = i
		}
	}

	half := size.Scale(0.5)
	return Mask{
		Min:      Vec2{pts[minX].X * half.X, pts[minY].Y * half.Y},
		Max:      Vec2{pts[maxX].X * half.X, pts[maxY].Y * half.Y},
		MinIndex: minX,
		MaxIndex: maxX,
	}
}

// BoxPoly returns the default rectangular collision polygon.
func BoxPoly() []Vec2 {
	return []Vec2{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
}
