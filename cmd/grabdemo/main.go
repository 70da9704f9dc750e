// Command grabdemo runs a headless grab scene: a scripted player looks at each
// grabbable body, pulls it into the hand, holds it and lets it go.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/akmonengine/grasp"
	"github.com/akmonengine/grasp/config"
	"github.com/akmonengine/grasp/event"
	"github.com/akmonengine/grasp/grab"
	"go.uber.org/zap"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML config (defaults when empty)")
		seconds    = flag.Float64("seconds", 20, "maximum simulated time")
		workers    = flag.Int("workers", 0, "override world.workers")
		level      = flag.String("log-level", "", "override log.level")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "load config:", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *workers > 0 {
		cfg.World.Workers = *workers
	}
	if *level != "" {
		cfg.Log.Level = *level
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	logger, err := cfg.Log.Build()
	if err != nil {
		fmt.Fprintln(os.Stderr, "build logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	world := grasp.NewWorld(cfg.World, logger.Named("world"))
	if err := world.AddSystem(grasp.PhaseIntegrate, respawn); err != nil {
		logger.Fatal("register respawn", zap.Error(err))
	}
	if err := world.AddSystem(grasp.PhaseSolveConstraints, floor); err != nil {
		logger.Fatal("register floor", zap.Error(err))
	}

	s := buildScene(world, cfg)
	system := grab.NewSystem(world, cfg.Grab, cfg.Joint, world.Events, logger.Named("grab"))
	subscribe(world.Events, logger)

	d := newDirector(s, logger.Named("director"))
	dt := cfg.World.TickDelta()
	ticks := int(*seconds / dt)

	tick := 0
	for ; tick < ticks && !d.done(); tick++ {
		in := d.next(dt)
		system.Update(s.grabber, s.view, in, dt)
		world.Step(dt)
	}

	logger.Info("demo finished",
		zap.Int("ticks", tick),
		zap.Float64("seconds", float64(tick)*dt),
		zap.Stringer("state", s.grabber.State()),
		zap.Int("joints", world.Joints.Len()))
}

func subscribe(bus *event.Bus, logger *zap.Logger) {
	bus.Subscribe(event.GRAB_TARGET, func(e event.Event) {
		target := e.(grab.TargetEvent)
		logger.Debug("target", zap.Uint32("body", target.Target.Index), zap.Float64("distance", target.Distance))
	})
	bus.Subscribe(event.GRAB_ATTRACT, func(e event.Event) {
		attract := e.(grab.AttractEvent)
		logger.Info("attracting", zap.Stringer("session", attract.Session), zap.Uint32("body", attract.Target.Index))
	})
	bus.Subscribe(event.GRAB_LOCK, func(e event.Event) {
		lock := e.(grab.LockEvent)
		logger.Info("locked", zap.Stringer("session", lock.Session), zap.Uint32("body", lock.Target.Index), zap.Uint32("joint", lock.Joint.Index))
	})
	bus.Subscribe(event.GRAB_RELEASE, func(e event.Event) {
		release := e.(grab.ReleaseEvent)
		logger.Info("released", zap.Stringer("session", release.Session), zap.Uint32("body", release.Target.Index))
	})
	bus.Subscribe(event.GRAB_ABORT, func(e event.Event) {
		abort := e.(grab.AbortEvent)
		logger.Info("aborted", zap.Stringer("session", abort.Session), zap.String("reason", string(abort.Reason)))
	})
	bus.Subscribe(event.JOINT_BROKEN, func(e event.Event) {
		broken := e.(grasp.JointBrokenEvent)
		logger.Warn("joint broken", zap.Uint32("joint", broken.Joint.Index), zap.Error(broken.Err))
	})
	bus.Subscribe(event.ON_SLEEP, func(e event.Event) {
		logger.Debug("sleep", zap.Uint32("body", e.(grasp.SleepEvent).Body.Index))
	})
	bus.Subscribe(event.ON_WAKE, func(e event.Event) {
		logger.Debug("wake", zap.Uint32("body", e.(grasp.WakeEvent).Body.Index))
	})
}
