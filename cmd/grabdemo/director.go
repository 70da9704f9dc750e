package main

import (
	"math"

	"github.com/akmonengine/grasp/actor"
	"github.com/akmonengine/grasp/grab"
	"github.com/akmonengine/grasp/pid"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// aim controller gains, the viewpoint turns at the PID output in rad/s
const (
	aimP = 6.0
	aimI = 0.0
	aimD = 0.1

	aimTolerance = 0.05
	phaseTimeout = 4.0
	holdDuration = 1.0

	// released bodies leave the hand at tossSpeed m/s, spinning at tossSpin rad/s
	tossSpeed = 1.5
	tossSpin  = 2.0
)

type phase int

const (
	phaseAim phase = iota
	phasePull
	phaseHold
	phaseRelease
	phaseDone
)

var phaseNames = [...]string{"aim", "pull", "hold", "release", "done"}

func (p phase) String() string {
	return phaseNames[p]
}

// director scripts the input of a player who looks at each target in turn,
// pulls it into the hand, holds it for a while and lets go.
type director struct {
	scene   *scene
	buttons grab.Buttons
	logger  *zap.Logger

	current int
	phase   phase
	timer   float64

	yaw, pitch float64
	aim        *pid.Stabilizer
}

func newDirector(s *scene, logger *zap.Logger) *director {
	return &director{
		scene:  s,
		logger: logger,
		aim:    pid.New(aimP, aimI, aimD),
	}
}

func (d *director) done() bool {
	return d.phase == phaseDone
}

// next returns the input for this tick and turns the viewpoint
func (d *director) next(dt float64) grab.Input {
	if d.phase == phaseDone {
		return d.buttons.Sample(false, false)
	}

	target, ok := d.scene.world.Body(d.scene.targets[d.current])
	if !ok {
		d.advance()
		return d.buttons.Sample(false, false)
	}

	d.timer += dt
	state := d.scene.grabber.State()

	switch d.phase {
	case phaseAim:
		yawError, pitchError := d.turnTowards(target, dt)
		if math.Abs(yawError) < aimTolerance && math.Abs(pitchError) < aimTolerance && state == grab.StateTargeting {
			d.enter(phasePull)
		} else if d.timer > phaseTimeout {
			d.logger.Warn("target never aligned", zap.String("target", target.Name))
			d.advance()
		}
		return d.buttons.Sample(false, false)

	case phasePull:
		if state == grab.StateLocked {
			d.enter(phaseHold)
		} else if d.timer > phaseTimeout {
			d.logger.Warn("target never reached the hand", zap.String("target", target.Name))
			d.advance()
			return d.buttons.Sample(false, false)
		}
		return d.buttons.Sample(true, false)

	case phaseHold:
		if d.timer > holdDuration {
			d.enter(phaseRelease)
		}
		return d.buttons.Sample(false, false)

	default:
		d.toss(target, dt)
		d.advance()
		return d.buttons.Sample(false, true)
	}
}

// turnTowards steers the viewpoint at target and returns the remaining yaw and pitch error
func (d *director) turnTowards(target *actor.RigidBody, dt float64) (float64, float64) {
	view := d.scene.view
	delta := target.Transform.Position.Sub(view.Position)

	wantYaw := math.Atan2(-delta.X(), -delta.Z())
	wantPitch := math.Atan2(delta.Y(), math.Hypot(delta.X(), delta.Z()))
	yawError := wrapAngle(wantYaw - d.yaw)
	pitchError := wantPitch - d.pitch

	rate := d.aim.Update(mgl64.Vec3{pitchError, yawError, 0}, dt)
	d.pitch += rate.X() * dt
	d.yaw += rate.Y() * dt

	view.Rotation = mgl64.QuatRotate(d.yaw, mgl64.Vec3{0, 1, 0}).Mul(mgl64.QuatRotate(d.pitch, mgl64.Vec3{1, 0, 0}))

	return yawError, pitchError
}

// toss pushes target along the view so it reaches tossSpeed and tossSpin after
// the first substep of the coming step. The joint is gone by then.
func (d *director) toss(target *actor.RigidBody, dt float64) {
	if target.InverseMass() <= 0 {
		return
	}
	h := dt / float64(max(1, d.scene.world.Substeps))

	forward := d.scene.view.Forward()
	target.AddForce(forward.Mul(tossSpeed / (target.InverseMass() * h)))

	spin := d.scene.view.Rotation.Rotate(mgl64.Vec3{1, 0, 0}).Mul(-tossSpin)
	target.AddTorque(target.GetInertiaWorld().Mul3x1(spin).Mul(1.0 / h))
}

func (d *director) enter(p phase) {
	d.logger.Debug("director phase", zap.Stringer("from", d.phase), zap.Stringer("to", p))
	d.phase = p
	d.timer = 0
}

// advance moves on to the next target with a fresh controller
func (d *director) advance() {
	d.current++
	d.aim = pid.New(aimP, aimI, aimD)
	if d.current >= len(d.scene.targets) {
		d.enter(phaseDone)
		return
	}
	d.enter(phaseAim)
}

func wrapAngle(angle float64) float64 {
	for angle > math.Pi {
		angle -= 2 * math.Pi
	}
	for angle < -math.Pi {
		angle += 2 * math.Pi
	}
	return angle
}
