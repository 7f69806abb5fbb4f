package system

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/redroom/ecs"
	"github.com/milk9111/redroom/ecs/component"
	"github.com/milk9111/redroom/ecs/entity"
)

const (
	defaultFollowSpeed    = 2.0
	defaultFollowDeadzone = 0.4
)

// CameraSystem eases the 3D camera's focus toward its follow target and keeps
// the camera looking at it from a fixed position.
type CameraSystem struct {
	camEntity    ecs.Entity
	targetEntity ecs.Entity
}

func NewCameraSystem() *CameraSystem {
	return &CameraSystem{}
}

func (cs *CameraSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	if !ecs.IsAlive(w, cs.camEntity) || !ecs.Has(w, cs.camEntity, component.Camera3DComponent.Kind()) {
		cs.camEntity, cs.targetEntity = 0, 0
		camEntity, ok := ecs.First(w, component.Camera3DComponent.Kind())
		if !ok {
			return
		}
		cs.camEntity = camEntity
	}

	cam, ok := ecs.Get(w, cs.camEntity, component.Camera3DComponent.Kind())
	if !ok {
		return
	}
	camTransform, ok := ecs.Get(w, cs.camEntity, component.TransformComponent.Kind())
	if !ok {
		return
	}
	follow, ok := ecs.Get(w, cs.camEntity, component.CameraFollowComponent.Kind())
	if !ok {
		return
	}

	if !ecs.IsAlive(w, cs.targetEntity) {
		cs.targetEntity = findEntityByNameOrTag(w, follow.TargetName)
	}
	targetTransform, ok := ecs.Get(w, cs.targetEntity, component.TransformComponent.Kind())
	if !ok {
		return
	}

	speed := follow.Speed
	if speed <= 0 {
		speed = defaultFollowSpeed
	}
	deadzone := follow.Deadzone
	if deadzone < 0 {
		deadzone = defaultFollowDeadzone
	}
	cam.Focus = FollowFocus(cam.Focus, targetTransform.Translation, speed, deadzone, w.Time().Delta)

	up := cam.Up
	if up.Len() < 1e-9 {
		up = mgl64.Vec3{0, 1, 0}
	}
	camTransform.LookAt(cam.Focus, up)
}

// FollowFocus moves focus toward target by min(speed*dt, 1) of the remaining
// distance when that distance exceeds the dead zone.
func FollowFocus(focus, target mgl64.Vec3, speed, deadzone, dt float64) mgl64.Vec3 {
	motion := target.Sub(focus)
	if motion.Len() <= deadzone {
		return focus
	}
	return focus.Add(motion.Mul(math.Min(speed*dt, 1)))
}

func findEntityByNameOrTag(w *ecs.World, name string) ecs.Entity {
	if name == "" || name == "player" {
		if e, ok := ecs.First(w, component.PlayerTagComponent.Kind()); ok {
			return e
		}
	}
	if e, ok := entity.FindByName(w, name); ok {
		return e
	}
	return 0
}
