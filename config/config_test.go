package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 10.0, cfg.Grab.MaxDistance)
	assert.Equal(t, 1.0, cfg.Grab.LockDistance)
	assert.Equal(t, 10.0, cfg.Grab.MaxLinearSpeed)
	assert.Equal(t, 1.0, cfg.Grab.MaxAngularSpeed)
	assert.Equal(t, 0.0, cfg.Joint.Compliance)
	assert.Equal(t, 1.0, cfg.Joint.LinearDamping)
	assert.Equal(t, mgl64.Vec3{0, -9.81, 0}, cfg.World.GravityVec())
	assert.InDelta(t, 1.0/60.0, cfg.World.TickDelta(), 1e-12)
}

func TestParse_OverlaysDefaults(t *testing.T) {
	data := []byte(`
world:
  substeps: 8
  gravity: [0, -1.62, 0]
joint:
  compliance: 0.0001
grab:
  grabbing_speed: 300
  hand_offset: [0.5, -0.3, -0.9]
log:
  level: debug
  encoding: json
`)

	cfg, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.World.Substeps)
	assert.Equal(t, mgl64.Vec3{0, -1.62, 0}, cfg.World.GravityVec())
	assert.Equal(t, 0.0001, cfg.Joint.Compliance)
	assert.Equal(t, 300.0, cfg.Grab.GrabbingSpeed)
	assert.Equal(t, mgl64.Vec3{0.5, -0.3, -0.9}, cfg.Grab.HandOffsetVec())
	assert.Equal(t, "json", cfg.Log.Encoding)

	// untouched keys keep their defaults
	assert.Equal(t, 60.0, cfg.World.TickRate)
	assert.Equal(t, 1.0, cfg.Joint.AngularDamping)
	assert.Equal(t, 10.0, cfg.Grab.MaxDistance)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"zero substeps", "world:\n  substeps: 0\n"},
		{"zero tick rate", "world:\n  tick_rate: 0\n"},
		{"negative compliance", "joint:\n  compliance: -1\n"},
		{"negative damping", "joint:\n  linear_damping: -1\n"},
		{"zero lock distance", "grab:\n  lock_distance: 0\n"},
		{"zero max distance", "grab:\n  max_distance: 0\n"},
		{"zero clamp", "grab:\n  max_angular_speed: 0\n"},
		{"bad level", "log:\n  level: loud\n"},
		{"bad encoding", "log:\n  encoding: xml\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestParse_MalformedYAML(t *testing.T) {
	_, err := Parse([]byte("world: [unclosed"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalid)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grasp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("grab:\n  max_distance: 4\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4.0, cfg.Grab.MaxDistance)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLog_Build(t *testing.T) {
	logger, err := Log{Level: "warn", Encoding: "json"}.Build()
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.False(t, logger.Core().Enabled(-1))

	_, err = Log{Level: "nope", Encoding: "json"}.Build()
	assert.ErrorIs(t, err, ErrInvalid)
}
