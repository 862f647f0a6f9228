package physics

import (
	"math"
	"testing"

	"github.com/san-kum/propel/internal/traject"
)

func TestPendulumDerive(t *testing.T) {
	p := NewPendulum()

	// At rest hanging straight down, nothing moves.
	dx := p.Derive(traject.State{0, 0}, 0)
	if dx[0] != 0 || dx[1] != 0 {
		t.Errorf("equilibrium derivative = %v, want zero", dx)
	}

	// Displaced to the right, the restoring torque pulls back.
	dx = p.Derive(traject.State{0.5, 0}, 0)
	if dx[1] >= 0 {
		t.Errorf("restoring acceleration = %g, want negative", dx[1])
	}
}

func TestPendulumEnergyAtRest(t *testing.T) {
	p := NewPendulum()
	if e := p.Energy(traject.State{0, 0}); e != 0 {
		t.Errorf("rest energy = %g, want 0", e)
	}
	if e := p.Energy(traject.State{math.Pi, 0}); e <= 0 {
		t.Errorf("inverted pendulum energy = %g, want positive", e)
	}
}

func TestSpringMassChainDerive(t *testing.T) {
	s := NewSpringMassChain(3)
	if s.StateDim() != 6 {
		t.Fatalf("StateDim = %d, want 6", s.StateDim())
	}

	// Pull the middle mass; its neighbors feel opposite forces.
	x := make(traject.State, 6)
	x[1] = 0.5
	dx := s.Derive(x, 0)
	if dx[4] >= 0 {
		t.Errorf("displaced mass acceleration = %g, want restoring (negative)", dx[4])
	}
	if dx[3] <= 0 || dx[5] <= 0 {
		t.Errorf("neighbor accelerations = %g, %g, want both pulled toward the middle", dx[3], dx[5])
	}
}

func TestKeplerCircularOrbit(t *testing.T) {
	k := NewKepler()
	x := k.EllipticOrbit(1, 0)

	// Circular speed at r=1 with mu=1 is exactly 1.
	if math.Abs(x[3]-1) > 1e-12 {
		t.Errorf("circular velocity = %g, want 1", x[3])
	}
	if e := k.Energy(x); math.Abs(e-(-0.5)) > 1e-12 {
		t.Errorf("specific energy = %g, want -0.5", e)
	}
	if rv := k.RadialVelocity(x); rv != 0 {
		t.Errorf("radial velocity at periapsis = %g, want 0", rv)
	}
}

func TestKeplerDerivePointsInward(t *testing.T) {
	k := NewKepler()
	dx := k.Derive(traject.State{2, 0, 0, 0.5}, 0)
	if dx[2] >= 0 {
		t.Errorf("gravity x-component = %g, want negative (toward the origin)", dx[2])
	}
	if dx[0] != 0 || dx[1] != 0.5 {
		t.Errorf("position derivatives = %g, %g, want the velocity components", dx[0], dx[1])
	}
}

func TestConfigurableParams(t *testing.T) {
	var sys traject.Configurable = NewPendulum()
	if err := sys.SetParam("length", 2); err != nil {
		t.Fatal(err)
	}
	if got := sys.GetParams()["length"]; got != 2 {
		t.Errorf("length = %g, want 2", got)
	}
	if err := sys.SetParam("bogus", 1); err == nil {
		t.Error("expected an error for an unknown parameter")
	}
}
