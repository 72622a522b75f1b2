package math

import "github.com/chewxy/math32"

// Mat2 is a 2x2 row-major matrix.
type Mat2 struct {
	M11, M12 float32
	M21, M22 float32
}

// Rotation returns a rotation matrix for an angle in degrees.
// In Y-down space a positive angle turns clockwise on screen.
func Rotation(degrees float32) Mat2 {
	rad := degrees * math32.Pi / 180
	s, c := math32.Sincos(rad)
	return Mat2{
		M11: c, M12: -s,
		M21: s, M22: c,
	}
}

// MulVec returns m * v.
func (m Mat2) MulVec(v Vec2) Vec2 {
	return Vec2{
		X: m.M11*v.X + m.M12*v.Y,
		Y: m.M21*v.X + m.M22*v.Y,
	}
}
