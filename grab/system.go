package grab

import (
	"iter"
	"math"

	"github.com/akmonengine/grasp/actor"
	"github.com/akmonengine/grasp/config"
	"github.com/akmonengine/grasp/constraint"
	"github.com/akmonengine/grasp/event"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Physics is the part of the world the grab system reads and mutates
type Physics interface {
	Body(h actor.BodyHandle) (*actor.RigidBody, bool)
	CastRay(origin, direction mgl64.Vec3, maxDistance float64, solid bool) iter.Seq2[actor.BodyHandle, float64]
	AddJoint(joint constraint.Constraint) constraint.JointHandle
	RemoveJoint(h constraint.JointHandle) error
	Joint(h constraint.JointHandle) (constraint.Constraint, bool)
}

// System runs the grab state machine once per tick, before the world steps
type System struct {
	physics Physics
	grab    config.Grab
	joint   config.Joint
	events  *event.Bus
	logger  *zap.Logger
}

// NewSystem creates a grab system. bus and logger may be nil.
func NewSystem(physics Physics, grabCfg config.Grab, jointCfg config.Joint, bus *event.Bus, logger *zap.Logger) *System {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &System{
		physics: physics,
		grab:    grabCfg,
		joint:   jointCfg,
		events:  bus,
		logger:  logger,
	}
}

// Update advances g by one tick of length dt. A nil grabber or viewpoint is a no-op.
func (s *System) Update(g *Grabber, view *Viewpoint, in Input, dt float64) {
	if g == nil || view == nil {
		return
	}

	hand, ok := s.physics.Body(g.Hand)
	if !ok {
		if g.State() >= StateAttracting {
			s.abort(g, ReasonStaleHand)
		}
		s.setTarget(g, actor.BodyHandle{}, 0)
		return
	}
	hand.SetPose(view.HandPose(g.HandOffset))

	s.updateTarget(g, view)

	if g.State() == StateLocked {
		if in.SecondaryJustPressed {
			s.release(g)
		} else {
			s.hold(g)
		}
	}

	if in.PrimaryJustPressed && g.State() == StateTargeting {
		g.AttractedTarget = g.PotentialTarget
		g.Session = uuid.New()
		s.logger.Debug("grab attract",
			zap.Stringer("session", g.Session),
			zap.Uint32("target", g.AttractedTarget.Index))
		s.emit(AttractEvent{Session: g.Session, Target: g.AttractedTarget})
	}

	if !g.AttractedTarget.IsNil() {
		if !in.PrimaryHeld {
			s.abort(g, ReasonReleased)
			return
		}
		s.attract(g, hand, dt)
	}
}

// updateTarget keeps the nearest grabbable hit by the view ray, the held body excepted
func (s *System) updateTarget(g *Grabber, view *Viewpoint) {
	for h, distance := range s.physics.CastRay(view.Position, view.Forward(), s.grab.MaxDistance, s.grab.SolidRay) {
		if h == g.Hand || h == g.GrabbedEntity {
			continue
		}
		body, ok := s.physics.Body(h)
		if !ok || !body.HasTag(actor.TagGrabbable) {
			continue
		}
		s.setTarget(g, h, distance)
		return
	}

	s.setTarget(g, actor.BodyHandle{}, 0)
}

func (s *System) setTarget(g *Grabber, target actor.BodyHandle, distance float64) {
	if g.PotentialTarget == target {
		return
	}

	s.emit(TargetEvent{Previous: g.PotentialTarget, Target: target, Distance: distance})
	g.PotentialTarget = target
}

func (s *System) attract(g *Grabber, hand *actor.RigidBody, dt float64) {
	body, ok := s.physics.Body(g.AttractedTarget)
	if !ok {
		s.abort(g, ReasonStaleTarget)
		return
	}

	direction := hand.Transform.Position.Sub(body.Transform.Position)
	distance := direction.Len()
	if distance < s.grab.LockDistance {
		s.lock(g, body)
		return
	}

	body.Awake()
	body.Velocity = direction.Mul(dt * g.GrabbingSpeed / distance)
	body.AngularVelocity = mgl64.Vec3{}
	body.SetRotation(mgl64.QuatIdent())
}

func (s *System) lock(g *Grabber, body *actor.RigidBody) {
	body.Velocity = mgl64.Vec3{}
	body.AngularVelocity = mgl64.Vec3{}

	joint := constraint.NewFixedJoint(g.Hand, g.AttractedTarget).
		WithLocalRotationA(mgl64.QuatRotate(math.Pi, mgl64.Vec3{0, 1, 0})).
		WithCompliance(s.joint.Compliance).
		WithLinearDamping(s.joint.LinearDamping).
		WithAngularDamping(s.joint.AngularDamping)

	g.Joint = s.physics.AddJoint(&joint)
	g.GrabbedEntity = g.AttractedTarget
	g.AttractedTarget = actor.BodyHandle{}

	body.SleepDisabled = true
	body.Awake()

	s.logger.Debug("grab lock",
		zap.Stringer("session", g.Session),
		zap.Uint32("target", g.GrabbedEntity.Index),
		zap.Uint32("joint", g.Joint.Index))
	s.emit(LockEvent{Session: g.Session, Target: g.GrabbedEntity, Joint: g.Joint})
}

// hold clamps runaway velocities of the held body
func (s *System) hold(g *Grabber) {
	body, ok := s.physics.Body(g.GrabbedEntity)
	if !ok {
		s.abort(g, ReasonStaleTarget)
		return
	}
	if _, ok := s.physics.Joint(g.Joint); !ok {
		s.abort(g, ReasonJointBroken)
		return
	}

	if body.Velocity.Len() > s.grab.MaxLinearSpeed {
		body.Velocity = mgl64.Vec3{}
	}
	if body.AngularVelocity.Len() > s.grab.MaxAngularSpeed {
		body.AngularVelocity = mgl64.Vec3{}
	}
}

func (s *System) release(g *Grabber) {
	session, target := g.Session, g.GrabbedEntity
	s.unwind(g)

	s.logger.Debug("grab release", zap.Stringer("session", session), zap.Uint32("target", target.Index))
	s.emit(ReleaseEvent{Session: session, Target: target})
}

func (s *System) abort(g *Grabber, reason AbortReason) {
	session, target := g.Session, g.GrabbedEntity
	if target.IsNil() {
		target = g.AttractedTarget
	}
	s.unwind(g)

	s.logger.Info("grab aborted",
		zap.Stringer("session", session),
		zap.Uint32("target", target.Index),
		zap.String("reason", string(reason)))
	s.emit(AbortEvent{Session: session, Target: target, Reason: reason})
}

// unwind drops the joint, lets the held body sleep again and returns g to Idle or Targeting
func (s *System) unwind(g *Grabber) {
	if !g.Joint.IsNil() {
		if err := s.physics.RemoveJoint(g.Joint); err != nil {
			s.logger.Debug("grab joint already gone", zap.Error(err))
		}
	}
	if body, ok := s.physics.Body(g.GrabbedEntity); ok {
		body.SleepDisabled = false
		body.Awake()
	}

	g.AttractedTarget = actor.BodyHandle{}
	g.GrabbedEntity = actor.BodyHandle{}
	g.Joint = constraint.JointHandle{}
	g.Session = uuid.Nil
}

func (s *System) emit(e event.Event) {
	if s.events != nil {
		s.events.Emit(e)
	}
}
