package corrections

import "math"

// ApplyCant rotates an elevation hold by the rifle's cant (roll) angle.
// When canted, the reticle's vertical axis is no longer aligned with
// gravity: the elevation hold shrinks by cos(roll) and the difference spills
// into windage as elev*sin(roll). The returned windage component is
// intended to be ADDED to any existing windage hold, not to replace it.
func ApplyCant(rollRad, elevationMOA float64) (correctedElevMOA, cantWindageMOA float64) {
	return elevationMOA * math.Cos(rollRad), elevationMOA * math.Sin(rollRad)
}
