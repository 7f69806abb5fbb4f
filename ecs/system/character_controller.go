package system

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/redroom/ecs"
	"github.com/milk9111/redroom/ecs/component"
)

// CharacterControllerSystem turns Input into velocity for dynamic bodies
// with a CharacterController. It runs once per frame, before physics.
type CharacterControllerSystem struct{}

func NewCharacterControllerSystem() *CharacterControllerSystem {
	return &CharacterControllerSystem{}
}

func (c *CharacterControllerSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	forward := cameraGroundForward(w)
	dt := w.Time().Delta

	ecs.ForEach3(w,
		component.CharacterControllerComponent.Kind(),
		component.InputComponent.Kind(),
		component.RigidBodyComponent.Kind(),
		func(e ecs.Entity, ctrl *component.CharacterController, input *component.Input, rb *component.RigidBody) {
			if rb.Kind != component.BodyDynamic {
				return
			}
			vel, ok := ecs.Get(w, e, component.LinearVelocityComponent.Kind())
			if !ok {
				vel = &component.LinearVelocity{}
				if err := ecs.Add(w, e, component.LinearVelocityComponent.Kind(), vel); err != nil {
					return
				}
			}

			var contact component.GroundContact
			if gc, ok := ecs.Get(w, e, component.GroundContactComponent.Kind()); ok {
				contact = *gc
			}
			vel.Value = CharacterVelocity(*ctrl, *input, contact, forward, vel.Value, dt)
		})
}

// CharacterVelocity applies one frame of controller input to v. forward is
// the camera's view direction on the floor plane.
func CharacterVelocity(ctrl component.CharacterController, input component.Input, contact component.GroundContact, forward, v mgl64.Vec3, dt float64) mgl64.Vec3 {
	right := mgl64.Vec3{-forward[2], 0, forward[0]}
	dir := right.Mul(input.MoveX).Add(forward.Mul(input.MoveY))
	if l := dir.Len(); l > 1 {
		dir = dir.Mul(1 / l)
	}

	v[0] += dir[0] * ctrl.Acceleration * dt
	v[2] += dir[2] * ctrl.Acceleration * dt
	v[0] *= ctrl.Damping
	v[2] *= ctrl.Damping

	if input.JumpPressed && contact.Grounded && slopeAngle(contact.Normal) <= ctrl.MaxSlopeAngle {
		v[1] = ctrl.JumpImpulse
	}
	return v
}

func slopeAngle(normal mgl64.Vec3) float64 {
	if normal.Len() < 1e-9 {
		return 0
	}
	return math.Acos(mgl64.Clamp(normal.Normalize()[1], -1, 1))
}

// cameraGroundForward returns the 3D camera's forward axis flattened onto
// XZ, or -Z when there is no usable camera.
func cameraGroundForward(w *ecs.World) mgl64.Vec3 {
	fallback := mgl64.Vec3{0, 0, -1}
	cam, ok := ecs.First(w, component.Camera3DComponent.Kind())
	if !ok {
		return fallback
	}
	t, ok := ecs.Get(w, cam, component.TransformComponent.Kind())
	if !ok {
		return fallback
	}
	f := t.Forward()
	f[1] = 0
	if f.Len() < 1e-6 {
		return fallback
	}
	return f.Normalize()
}
