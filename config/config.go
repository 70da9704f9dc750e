// Package config loads the simulation, joint, grab and logging settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	World World `yaml:"world"`
	Joint Joint `yaml:"joint"`
	Grab  Grab  `yaml:"grab"`
	Log   Log   `yaml:"log"`
}

// World configures the substep pipeline
type World struct {
	// TickRate is the number of coarse ticks per second
	TickRate float64    `yaml:"tick_rate"`
	Substeps int        `yaml:"substeps"`
	Workers  int        `yaml:"workers"`
	Gravity  [3]float64 `yaml:"gravity"`
	// Bodies slower than SleepVelocity for SleepTime seconds fall asleep
	SleepTime     float64 `yaml:"sleep_time"`
	SleepVelocity float64 `yaml:"sleep_velocity"`
}

// Joint configures the fixed joint created when a grab locks
type Joint struct {
	Compliance     float64 `yaml:"compliance"`
	LinearDamping  float64 `yaml:"linear_damping"`
	AngularDamping float64 `yaml:"angular_damping"`
}

// Grab configures the grab state machine
type Grab struct {
	MaxDistance     float64    `yaml:"max_distance"`
	GrabbingSpeed   float64    `yaml:"grabbing_speed"`
	LockDistance    float64    `yaml:"lock_distance"`
	MaxLinearSpeed  float64    `yaml:"max_linear_speed"`
	MaxAngularSpeed float64    `yaml:"max_angular_speed"`
	HandOffset      [3]float64 `yaml:"hand_offset"`
	// SolidRay makes a ray starting inside a body hit it at distance 0
	SolidRay bool `yaml:"solid_ray"`
}

type Log struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

func Default() Config {
	return Config{
		World: World{
			TickRate:      60,
			Substeps:      4,
			Workers:       1,
			Gravity:       [3]float64{0, -9.81, 0},
			SleepTime:     0.5,
			SleepVelocity: 0.05,
		},
		Joint: Joint{
			Compliance:     0,
			LinearDamping:  1,
			AngularDamping: 1,
		},
		Grab: Grab{
			MaxDistance:     10,
			GrabbingSpeed:   600,
			LockDistance:    1,
			MaxLinearSpeed:  10,
			MaxAngularSpeed: 1,
			HandOffset:      [3]float64{-0.5, -0.3, -0.9},
			SolidRay:        true,
		},
		Log: Log{
			Level:    "info",
			Encoding: "console",
		},
	}
}

// Parse overlays data on top of Default and validates the result
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

func (c Config) Validate() error {
	return errors.Join(c.World.Validate(), c.Joint.Validate(), c.Grab.Validate(), c.Log.Validate())
}

func (w World) Validate() error {
	switch {
	case w.TickRate <= 0:
		return fmt.Errorf("%w: world.tick_rate must be positive, got %v", ErrInvalid, w.TickRate)
	case w.Substeps < 1:
		return fmt.Errorf("%w: world.substeps must be at least 1, got %d", ErrInvalid, w.Substeps)
	case w.Workers < 1:
		return fmt.Errorf("%w: world.workers must be at least 1, got %d", ErrInvalid, w.Workers)
	case w.SleepTime < 0 || w.SleepVelocity < 0:
		return fmt.Errorf("%w: world sleep thresholds must not be negative", ErrInvalid)
	}
	return nil
}

func (w World) GravityVec() mgl64.Vec3 {
	return mgl64.Vec3(w.Gravity)
}

// TickDelta is the duration of one coarse tick in seconds
func (w World) TickDelta() float64 {
	return 1.0 / w.TickRate
}

func (j Joint) Validate() error {
	if j.Compliance < 0 {
		return fmt.Errorf("%w: joint.compliance must not be negative, got %v", ErrInvalid, j.Compliance)
	}
	if j.LinearDamping < 0 || j.AngularDamping < 0 {
		return fmt.Errorf("%w: joint damping must not be negative", ErrInvalid)
	}
	return nil
}

func (g Grab) Validate() error {
	switch {
	case g.MaxDistance <= 0:
		return fmt.Errorf("%w: grab.max_distance must be positive, got %v", ErrInvalid, g.MaxDistance)
	case g.GrabbingSpeed < 0:
		return fmt.Errorf("%w: grab.grabbing_speed must not be negative, got %v", ErrInvalid, g.GrabbingSpeed)
	case g.LockDistance <= 0:
		return fmt.Errorf("%w: grab.lock_distance must be positive, got %v", ErrInvalid, g.LockDistance)
	case g.MaxLinearSpeed <= 0 || g.MaxAngularSpeed <= 0:
		return fmt.Errorf("%w: grab speed clamps must be positive", ErrInvalid)
	}
	return nil
}

func (g Grab) HandOffsetVec() mgl64.Vec3 {
	return mgl64.Vec3(g.HandOffset)
}

func (l Log) Validate() error {
	if _, err := zapcore.ParseLevel(l.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalid, err)
	}
	if l.Encoding != "json" && l.Encoding != "console" {
		return fmt.Errorf("%w: log.encoding must be json or console, got %q", ErrInvalid, l.Encoding)
	}
	return nil
}

// Build creates the zap logger described by l
func (l Log) Build() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: log.level: %v", ErrInvalid, err)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      false,
		Encoding:         l.Encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    true,
	}

	return zapConfig.Build()
}
