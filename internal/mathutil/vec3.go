package mathutil

import "math"

// Vec3 is a position, direction or Euler triple in double precision.
type Vec3 [3]float64

// V32 widens a float32 triple read from a binary mesh.
func V32(v [3]float32) Vec3 {
	return Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
}

func (a Vec3) Sub(b Vec3) Vec3 {
	return Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func (a Vec3) Dot(b Vec3) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Normalize returns a unit vector, or the zero vector unchanged.
func (a Vec3) Normalize() Vec3 {
	n := math.Sqrt(a.Dot(a))
	if n == 0 {
		return a
	}
	return Vec3{a[0] / n, a[1] / n, a[2] / n}
}

// FaceNormal is the unit normal of the polygon's first corner, following
// counter-clockwise winding. Degenerate corners give the zero vector.
func FaceNormal(poly []Vec3) Vec3 {
	if len(poly) < 3 {
		return Vec3{}
	}
	return poly[1].Sub(poly[0]).Cross(poly[2].Sub(poly[0])).Normalize()
}
