package mathutil

// Mat3 is a linear basis change stored as three rows.
type Mat3 [3]Vec3

// Diag builds a per-axis scale or mirror.
func Diag(x, y, z float64) Mat3 {
	return Mat3{{x, 0, 0}, {0, y, 0}, {0, 0, z}}
}

func (m Mat3) Transpose() Mat3 {
	var t Mat3
	for r := range m {
		for c := range m[r] {
			t[c][r] = m[r][c]
		}
	}
	return t
}

// Then composes m after n: (m.Then(n)).MulVec3(v) == m.MulVec3(n.MulVec3(v)).
func (m Mat3) Then(n Mat3) Mat3 {
	cols := n.Transpose()
	var out Mat3
	for r := range m {
		out[r] = Vec3{m[r].Dot(cols[0]), m[r].Dot(cols[1]), m[r].Dot(cols[2])}
	}
	return out
}

func (m Mat3) MulVec3(v Vec3) Vec3 {
	return Vec3{m[0].Dot(v), m[1].Dot(v), m[2].Dot(v)}
}

// Det is negative when the basis change mirrors, which flips triangle winding.
func (m Mat3) Det() float64 {
	return m[0].Dot(m[1].Cross(m[2]))
}
