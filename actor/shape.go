package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ShapeInterface is the interface that all collision shapes must implement
type ShapeInterface interface {
	// ComputeAABB calculates the axis-aligned bounding box for the shape
	// at the given transform
	ComputeAABB(transform Transform)
	GetAABB() AABB
	// ComputeMass calculates mass data for the shape given a density
	ComputeMass(density float64) float64
	ComputeInertia(mass float64) mgl64.Mat3
	// RayCast intersects a ray expressed in the shape's local frame.
	// direction must be normalized. With solid set, a ray starting inside
	// the shape hits at distance 0; otherwise it reports the exit distance.
	RayCast(origin, direction mgl64.Vec3, maxDistance float64, solid bool) (float64, bool)
}

// Box represents an oriented box collision shape
// The box is defined by its half-extents (half-width, half-height, half-depth)
type Box struct {
	HalfExtents mgl64.Vec3
	aabb        AABB
}

func (b *Box) ComputeAABB(transform Transform) {
	hx, hy, hz := b.HalfExtents.X(), b.HalfExtents.Y(), b.HalfExtents.Z()
	corners := [8]mgl64.Vec3{
		{-hx, -hy, -hz},
		{+hx, -hy, -hz},
		{-hx, +hy, -hz},
		{+hx, +hy, -hz},
		{-hx, -hy, +hz},
		{+hx, -hy, +hz},
		{-hx, +hy, +hz},
		{+hx, +hy, +hz},
	}

	worldCorner := transform.WorldPoint(corners[0])
	min := worldCorner
	max := worldCorner

	for i := 1; i < 8; i++ {
		worldCorner = transform.WorldPoint(corners[i])
		for axis := 0; axis < 3; axis++ {
			min[axis] = math.Min(min[axis], worldCorner[axis])
			max[axis] = math.Max(max[axis], worldCorner[axis])
		}
	}

	b.aabb = AABB{Min: min, Max: max}
}

func (b *Box) GetAABB() AABB {
	return b.aabb
}

// ComputeMass calculates mass data for the box
func (b *Box) ComputeMass(density float64) float64 {
	// Volume = 8 * hx * hy * hz (full dimensions are 2*halfExtents)
	volume := 8.0 * b.HalfExtents.X() * b.HalfExtents.Y() * b.HalfExtents.Z()

	return density * volume
}

func (b *Box) ComputeInertia(mass float64) mgl64.Mat3 {
	x := b.HalfExtents.X() * 2
	y := b.HalfExtents.Y() * 2
	z := b.HalfExtents.Z() * 2

	// I = (m/12) * (d1² + d2²)
	factor := mass / 12.0
	ix := factor * (y*y + z*z)
	iy := factor * (x*x + z*z)
	iz := factor * (x*x + y*y)

	return mgl64.Mat3{
		ix, 0, 0,
		0, iy, 0,
		0, 0, iz,
	}
}

func (b *Box) RayCast(origin, direction mgl64.Vec3, maxDistance float64, solid bool) (float64, bool) {
	local := AABB{Min: b.HalfExtents.Mul(-1), Max: b.HalfExtents}

	tmin, tmax, ok := local.IntersectRay(origin, direction, maxDistance)
	if !ok {
		return 0, false
	}
	if tmin < 0 {
		// origin inside the box
		if solid {
			return 0, true
		}
		if tmax > maxDistance {
			return 0, false
		}
		return tmax, true
	}

	return tmin, true
}

// Sphere represents a spherical collision shape
type Sphere struct {
	Radius float64
	aabb   AABB
}

// ComputeAABB calculates the axis-aligned bounding box for the sphere
func (s *Sphere) ComputeAABB(transform Transform) {
	// Sphere AABB is not affected by rotation, only by position
	radiusVec := mgl64.Vec3{s.Radius, s.Radius, s.Radius}

	s.aabb = AABB{
		Min: transform.Position.Sub(radiusVec),
		Max: transform.Position.Add(radiusVec),
	}
}

func (s *Sphere) GetAABB() AABB {
	return s.aabb
}

// ComputeMass calculates mass data for the sphere
func (s *Sphere) ComputeMass(density float64) float64 {
	// Volume of sphere = (4/3) * π * r³
	volume := (4.0 / 3.0) * math.Pi * math.Pow(s.Radius, 3)

	return density * volume
}

func (s *Sphere) ComputeInertia(mass float64) mgl64.Mat3 {
	// I = (2/5) * m * r², identical on every axis
	i := (2.0 / 5.0) * mass * s.Radius * s.Radius

	return mgl64.Mat3{
		i, 0, 0,
		0, i, 0,
		0, 0, i,
	}
}

func (s *Sphere) RayCast(origin, direction mgl64.Vec3, maxDistance float64, solid bool) (float64, bool) {
	b := origin.Dot(direction)
	c := origin.Dot(origin) - s.Radius*s.Radius

	if c <= 0 {
		if solid {
			return 0, true
		}
		t := -b + math.Sqrt(b*b-c)
		return t, t <= maxDistance
	}

	discriminant := b*b - c
	if discriminant < 0 {
		return 0, false
	}

	t := -b - math.Sqrt(discriminant)
	if t < 0 || t > maxDistance {
		return 0, false
	}

	return t, true
}

// Plane represents an infinite plane collision shape
// The plane is defined by the equation: Normal · p + Distance = 0
// where Normal is the plane's normal vector (must be normalized)
// and Distance is the signed distance from the origin along the normal.
// The half-space behind the normal counts as the plane's interior.
type Plane struct {
	Normal   mgl64.Vec3 // Plane normal (must be normalized)
	Distance float64    // Plane constant (signed distance from origin)
	aabb     AABB
}

func (p *Plane) ComputeAABB(transform Transform) {
	const thickness = 1.0
	const infinity = 1e10

	// Point on the plane closest to the origin
	planePoint := p.Normal.Mul(-p.Distance)

	min := planePoint.Sub(p.Normal.Mul(thickness)).Add(transform.Position)
	max := planePoint.Add(transform.Position)
	for axis := 0; axis < 3; axis++ {
		if min[axis] > max[axis] {
			min[axis], max[axis] = max[axis], min[axis]
		}
	}

	// Non-dominant axes extend to infinity
	for axis := 0; axis < 3; axis++ {
		if math.Abs(p.Normal[axis]) < 1.0 {
			min[axis] = -infinity
			max[axis] = infinity
		}
	}

	p.aabb = AABB{Min: min, Max: max}
}

func (p *Plane) GetAABB() AABB {
	return p.aabb
}

// ComputeMass calculates mass data for the plane
// Planes are always static with infinite mass
func (p *Plane) ComputeMass(density float64) float64 {
	return math.Inf(1)
}

func (p *Plane) ComputeInertia(mass float64) mgl64.Mat3 {
	return mgl64.Mat3{}
}

func (p *Plane) RayCast(origin, direction mgl64.Vec3, maxDistance float64, solid bool) (float64, bool) {
	side := p.Normal.Dot(origin) + p.Distance
	if side <= 0 && solid {
		return 0, true
	}

	denominator := p.Normal.Dot(direction)
	if math.Abs(denominator) < 1e-12 {
		return 0, false
	}

	t := -side / denominator
	if t < 0 || t > maxDistance {
		return 0, false
	}

	return t, true
}
