package component

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
)

type BodyKind int

const (
	BodyStatic BodyKind = iota + 1
	BodyDynamic
)

// RigidBody stores the kind of body and its Chipmunk2D runtime handles, which
// the physics system fills in on first sync.
type RigidBody struct {
	Kind  BodyKind
	Body  *cp.Body
	Shape *cp.Shape
	// LockRotation keeps the body upright, as character controllers need.
	LockRotation bool
}

var RigidBodyComponent = NewComponent[RigidBody]()

type ColliderShape int

const (
	// ColliderFromMesh derives the collider from the entity's Mesh.
	ColliderFromMesh ColliderShape = iota + 1
	ColliderCuboid
	ColliderSphere
	ColliderCapsule
)

// Collider sizes follow Mesh: full extents for cuboids, radius and cylinder
// length for capsules.
type Collider struct {
	Shape  ColliderShape
	Size   mgl64.Vec3
	Radius float64
	Length float64
}

// HalfHeight is the vertical half extent of the collider.
func (c Collider) HalfHeight() float64 {
	switch c.Shape {
	case ColliderCuboid:
		return c.Size[1] / 2
	case ColliderSphere:
		return c.Radius
	case ColliderCapsule:
		return c.Length/2 + c.Radius
	default:
		return 0
	}
}

var ColliderComponent = NewComponent[Collider]()

// LinearVelocity in m/s.
type LinearVelocity struct {
	Value mgl64.Vec3
}

var LinearVelocityComponent = NewComponent[LinearVelocity]()

// AngularVelocity in rad/s about the world axes.
type AngularVelocity struct {
	Value mgl64.Vec3
}

var AngularVelocityComponent = NewComponent[AngularVelocity]()

// CombineRule decides how the coefficients of two touching bodies mix.
type CombineRule int

const (
	CombineAverage CombineRule = iota
	CombineMin
	CombineMax
	CombineMultiply
)

// Combine mixes a and b. When both sides name a rule, the caller picks the
// higher-priority one with PriorityRule.
func (r CombineRule) Combine(a, b float64) float64 {
	switch r {
	case CombineMin:
		return math.Min(a, b)
	case CombineMax:
		return math.Max(a, b)
	case CombineMultiply:
		return a * b
	default:
		return (a + b) / 2
	}
}

// PriorityRule returns the rule that wins when two bodies disagree:
// Max over Multiply over Min over Average.
func PriorityRule(a, b CombineRule) CombineRule {
	rank := func(r CombineRule) int {
		switch r {
		case CombineMax:
			return 3
		case CombineMultiply:
			return 2
		case CombineMin:
			return 1
		default:
			return 0
		}
	}
	if rank(a) >= rank(b) {
		return a
	}
	return b
}

// Friction is the Coulomb coefficient of a body's surface.
type Friction struct {
	Coefficient float64
	Combine     CombineRule
}

var FrictionComponent = NewComponent[Friction]()

// Restitution is the bounciness of a body's surface.
type Restitution struct {
	Coefficient float64
	Combine     CombineRule
}

var RestitutionComponent = NewComponent[Restitution]()

// GroundContact is written by physics every step for dynamic bodies.
type GroundContact struct {
	Grounded bool
	Normal   mgl64.Vec3
	// Support is the ecs.Entity value of what the body rests on, zero when airborne.
	Support uint64
}

var GroundContactComponent = NewComponent[GroundContact]()
