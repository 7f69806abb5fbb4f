package entity

import (
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/redroom/ecs"
	"github.com/milk9111/redroom/ecs/component"
)

// BodySpec describes a dynamic body spawned at runtime.
type BodySpec struct {
	Name     string
	Shape    component.MeshShape
	Position mgl64.Vec3
	// Size is the cube edge or the sphere diameter.
	Size  float64
	Spin  mgl64.Vec3
	Color color.NRGBA
}

// SpawnDynamicBody builds a cube or sphere scene member that physics picks
// up on its next step.
func SpawnDynamicBody(w *ecs.World, spec BodySpec) (ecs.Entity, error) {
	if spec.Size <= 0 {
		return 0, fmt.Errorf("body %q: size %v must be positive", spec.Name, spec.Size)
	}
	var (
		mesh     component.Mesh
		collider component.Collider
	)
	switch spec.Shape {
	case component.MeshCuboid:
		size := mgl64.Vec3{spec.Size, spec.Size, spec.Size}
		mesh = component.Mesh{Shape: component.MeshCuboid, Size: size}
		collider = component.Collider{Shape: component.ColliderCuboid, Size: size}
	case component.MeshSphere:
		mesh = component.Mesh{Shape: component.MeshSphere, Radius: spec.Size / 2}
		collider = component.Collider{Shape: component.ColliderSphere, Radius: spec.Size / 2}
	default:
		return 0, fmt.Errorf("body %q: unsupported shape %s", spec.Name, spec.Shape)
	}

	e := ecs.CreateEntity(w)
	t := component.NewTransform(spec.Position[0], spec.Position[1], spec.Position[2])
	steps := []func() error{
		func() error { return ecs.Add(w, e, component.TransformComponent.Kind(), &t) },
		func() error { return ecs.Add(w, e, component.MeshComponent.Kind(), &mesh) },
		func() error {
			return ecs.Add(w, e, component.MaterialComponent.Kind(), &component.Material{Color: spec.Color})
		},
		func() error {
			return ecs.Add(w, e, component.RenderLayerComponent.Kind(), &component.RenderLayer{Index: 1})
		},
		func() error {
			return ecs.Add(w, e, component.RigidBodyComponent.Kind(), &component.RigidBody{Kind: component.BodyDynamic})
		},
		func() error { return ecs.Add(w, e, component.ColliderComponent.Kind(), &collider) },
		func() error {
			return ecs.Add(w, e, component.AngularVelocityComponent.Kind(), &component.AngularVelocity{Value: spec.Spin})
		},
		func() error {
			return ecs.Add(w, e, component.SceneMemberComponent.Kind(), &component.SceneMember{})
		},
	}
	if spec.Name != "" {
		steps = append(steps, func() error {
			return ecs.Add(w, e, component.NameComponent.Kind(), &component.Name{Value: spec.Name})
		})
	}
	for _, step := range steps {
		if err := step(); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, fmt.Errorf("body %q: %w", spec.Name, err)
		}
	}
	return e, nil
}
