package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/propel/internal/traject"
)

// Kepler is planar two-body motion around a fixed central mass. State
// layout: position x[0], x[1], velocity x[2], x[3]. Mu is the standard
// gravitational parameter of the central body; the default orbit is mildly
// eccentric with unit semi-major axis.
type Kepler struct {
	Mu float64
}

func NewKepler() *Kepler {
	return &Kepler{Mu: 1.0}
}

func (k *Kepler) StateDim() int { return 4 }

func (k *Kepler) Derive(x traject.State, t float64) traject.State {
	rx, ry := x[0], x[1]
	r := math.Hypot(rx, ry)
	r3 := r * r * r

	return traject.State{
		x[2],
		x[3],
		-k.Mu * rx / r3,
		-k.Mu * ry / r3,
	}
}

// Energy is the specific orbital energy, negative for bound orbits.
func (k *Kepler) Energy(x traject.State) float64 {
	r := math.Hypot(x[0], x[1])
	v2 := x[2]*x[2] + x[3]*x[3]
	return 0.5*v2 - k.Mu/r
}

// RadialVelocity is the r.v product, zero at periapsis and apoapsis.
func (k *Kepler) RadialVelocity(x traject.State) float64 {
	return x[0]*x[2] + x[1]*x[3]
}

// Radius is the distance to the central body.
func (k *Kepler) Radius(x traject.State) float64 {
	return math.Hypot(x[0], x[1])
}

// EllipticOrbit returns the state at periapsis of an orbit with the given
// semi-major axis and eccentricity.
func (k *Kepler) EllipticOrbit(a, e float64) traject.State {
	rp := a * (1 - e)
	vp := math.Sqrt(k.Mu * (2/rp - 1/a))
	return traject.State{rp, 0, 0, vp}
}

// Period is the orbital period for the given semi-major axis.
func (k *Kepler) Period(a float64) float64 {
	return 2 * math.Pi * math.Sqrt(a*a*a/k.Mu)
}

func (k *Kepler) GetParams() map[string]float64 {
	return map[string]float64{"mu": k.Mu}
}

func (k *Kepler) SetParam(name string, value float64) error {
	if name != "mu" {
		return fmt.Errorf("unknown param: %s", name)
	}
	k.Mu = value
	return nil
}
