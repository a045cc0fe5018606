package drag

import (
	"math"
	"testing"
)

func TestCd_ClampsBelowAndAboveTableDomain(t *testing.T) {
	cases := []struct {
		name  string
		model Model
		mach  float64
		want  float64
	}{
		{"below", G1, -1.0, g1Table[0].cd},
		{"above", G7, 50.0, g7Table[len(g7Table)-1].cd},
		{"unknown falls back to g1", Model(99), -1.0, g1Table[0].cd},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Cd(tc.model, tc.mach)
			if got != tc.want {
				t.Fatalf("Cd(%v, %v) = %v, want %v", tc.model, tc.mach, got, tc.want)
			}
		})
	}
}

func TestCd_InterpolatesMonotonicWithinInterval(t *testing.T) {
	lo, hi := g1Table[0], g1Table[1]
	mid := (lo.mach + hi.mach) / 2
	got := Cd(G1, mid)
	min, max := lo.cd, hi.cd
	if min > max {
		min, max = max, min
	}
	if got < min-1e-9 || got > max+1e-9 {
		t.Fatalf("Cd(G1, %v) = %v, want between %v and %v", mid, got, min, max)
	}
}

func TestCd_AlwaysPositiveFinite(t *testing.T) {
	for _, m := range []Model{G1, G2, G3, G4, G5, G6, G7, G8} {
		for mach := -1.0; mach <= 6.0; mach += 0.37 {
			got := Cd(m, mach)
			if got <= 0 || math.IsNaN(got) || math.IsInf(got, 0) {
				t.Fatalf("Cd(%v, %v) = %v, want positive finite", m, mach, got)
			}
		}
	}
}

func TestDeceleration_ZeroBelowMinVelocityOrBC(t *testing.T) {
	if d := Deceleration(0.5, 340, 0.5, G1, 1.225, 1.0); d != 0 {
		t.Fatalf("velocity below 1 m/s: got %v, want 0", d)
	}
	if d := Deceleration(300, 340, 0.0005, G1, 1.225, 1.0); d != 0 {
		t.Fatalf("bc below 1e-3: got %v, want 0", d)
	}
}

func TestDeceleration_ScalesWithReferenceScale(t *testing.T) {
	base := Deceleration(300, 340, 0.5, G1, 1.225, 1.0)
	reduced := Deceleration(300, 340, 0.5, G1, 1.225, 0.84)
	if reduced >= base {
		t.Fatalf("external-reference scale should reduce deceleration: base=%v reduced=%v", base, reduced)
	}
	clampedHigh := Deceleration(300, 340, 0.5, G1, 1.225, 9.0)
	clampedAt2 := Deceleration(300, 340, 0.5, G1, 1.225, 2.0)
	if clampedHigh != clampedAt2 {
		t.Fatalf("reference scale should clamp at 2.0: got %v want %v", clampedHigh, clampedAt2)
	}
}

func TestDeceleration_DensityRatioScalesLinearly(t *testing.T) {
	std := Deceleration(300, 340, 0.5, G1, 1.225, 1.0)
	doubled := Deceleration(300, 340, 0.5, G1, 2.45, 1.0)
	if math.Abs(doubled-2*std) > 1e-6 {
		t.Fatalf("deceleration should scale linearly with density: std=%v doubled=%v", std, doubled)
	}
}
