package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "cfg.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	return path
}

func requireErrEq(t *testing.T, err error, want string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %q, got nil", want)
	}
	if err.Error() != want {
		t.Fatalf("error=%q want %q", err.Error(), want)
	}
}

const minimalValid = "bullet:\n  bc: 0.5\n  muzzle_velocity_ms: 850\n" +
	"zero:\n  zero_range_m: 100\n"

func TestLoad_RequiresBC(t *testing.T) {
	path := writeTempConfig(t, "bullet:\n  muzzle_velocity_ms: 850\nzero:\n  zero_range_m: 100\n")
	_, err := Load(path)
	requireErrEq(t, err, "bullet.bc is required and must be > 0")
}

func TestLoad_RequiresMuzzleVelocity(t *testing.T) {
	path := writeTempConfig(t, "bullet:\n  bc: 0.5\nzero:\n  zero_range_m: 100\n")
	_, err := Load(path)
	requireErrEq(t, err, "bullet.muzzle_velocity_ms is required and must be > 0")
}

func TestLoad_RequiresZeroRange(t *testing.T) {
	path := writeTempConfig(t, "bullet:\n  bc: 0.5\n  muzzle_velocity_ms: 850\n")
	_, err := Load(path)
	requireErrEq(t, err, "zero.zero_range_m is required and must be > 0")
}

func TestLoad_DefaultsApplied(t *testing.T) {
	path := writeTempConfig(t, minimalValid)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Bullet.DragModel != "G1" {
		t.Fatalf("drag_model = %q, want default G1", cfg.Bullet.DragModel)
	}
	if cfg.AHRS.Algorithm != "madgwick" {
		t.Fatalf("ahrs.algorithm = %q, want default madgwick", cfg.AHRS.Algorithm)
	}
}

func TestLoad_RejectsUnknownDragModel(t *testing.T) {
	path := writeTempConfig(t, "bullet:\n  bc: 0.5\n  muzzle_velocity_ms: 850\n  drag_model: G99\nzero:\n  zero_range_m: 100\n")
	_, err := Load(path)
	requireErrEq(t, err, `bullet.drag_model "G99" is not a recognized drag model`)
}

func TestLoad_RejectsUnknownAHRSAlgorithm(t *testing.T) {
	path := writeTempConfig(t, minimalValid+"ahrs:\n  algorithm: kalman\n")
	_, err := Load(path)
	requireErrEq(t, err, `ahrs.algorithm "kalman" must be one of: madgwick, mahony`)
}

func TestLoad_RejectsUnknownField(t *testing.T) {
	path := writeTempConfig(t, "bullet:\n  bc: 0.5\n  muzzle_velocity_ms: 850\n  wat: true\nzero:\n  zero_range_m: 100\n")
	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected an error for an unknown field")
	}
}

func TestLoad_NetworkBroadcastIntervalDefaulted(t *testing.T) {
	path := writeTempConfig(t, minimalValid+"network:\n  broadcast_dest: '127.0.0.1:4000'\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Network.BroadcastInterval <= 0 {
		t.Fatalf("expected a default broadcast interval when a dest is set")
	}
}
