package mathutil

import "math"

// Basis changes between the UDK frame (Z-up, left-handed) and the Y-up
// right-handed frame OBJ and FBX consumers expect.
var (
	MirrorY  = Diag(1, -1, 1)
	ZUpToYUp = Mat3{{1, 0, 0}, {0, 0, 1}, {0, -1, 0}}
	UDKToYUp = ZUpToYUp.Then(MirrorY)
)

// RotatorUnitsPerTurn is the UDK rotator resolution.
const RotatorUnitsPerTurn = 65536

// RotatorToDegrees converts (Pitch, Yaw, Roll) rotator units to degrees in (-180, 180].
func RotatorToDegrees(r [3]int) Vec3 {
	var out Vec3
	for i, u := range r {
		turns := float64(u) / RotatorUnitsPerTurn
		d := 360 * (turns - math.Round(turns))
		if d == -180 {
			d = 180
		}
		out[i] = d
	}
	return out
}
