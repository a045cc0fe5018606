// Package gpsorient cross-checks the AHRS-derived heading against a GPS
// ground track, as a sanity signal for a display — the engine's own
// AHRS_UNSTABLE fault already covers accelerometer/gyro disagreement, but
// it has no independent heading reference.
package gpsorient

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/koenig-jacob/DOPE/internal/engine/ahrsfilter"
	"github.com/koenig-jacob/DOPE/internal/gps"
)

// minGroundKtForTrack is the speed below which a GPS ground track is too
// noisy to be a useful heading reference.
const minGroundKtForTrack = 3

// headingFromDCM extracts the world-frame heading (radians clockwise from
// north) implied by the DCM's forward (body +X) axis.
func headingFromDCM(dcm *mat.Dense) float64 {
	fwdX := dcm.At(0, 0)
	fwdY := dcm.At(1, 0)
	return math.Atan2(fwdY, fwdX)
}

// CrossCheck compares the heading implied by quat's DCM against snap's
// ground track. ok is false when snap has no usable track (invalid fix or
// too slow to have a meaningful track), in which case deltaDeg is 0.
func CrossCheck(quat ahrsfilter.Quaternion, snap gps.Snapshot) (deltaDeg float64, ok bool) {
	if !snap.Valid || snap.TrackDeg == nil || snap.GroundKt == nil || *snap.GroundKt < minGroundKtForTrack {
		return 0, false
	}

	ahrsHeadingDeg := headingFromDCM(quat.Normalize().DCM()) * 180 / math.Pi
	if ahrsHeadingDeg < 0 {
		ahrsHeadingDeg += 360
	}

	delta := ahrsHeadingDeg - *snap.TrackDeg
	for delta > 180 {
		delta -= 360
	}
	for delta <= -180 {
		delta += 360
	}
	return delta, true
}
