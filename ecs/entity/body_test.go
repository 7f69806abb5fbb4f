package entity

import (
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/redroom/ecs"
	"github.com/milk9111/redroom/ecs/component"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpawnDynamicBody(t *testing.T) {
	tests := []struct {
		name         string
		spec         BodySpec
		wantErr      string
		wantCollider component.Collider
	}{
		{
			name:         "cube",
			spec:         BodySpec{Name: "crate", Shape: component.MeshCuboid, Size: 2, Position: mgl64.Vec3{1, 3, -2}},
			wantCollider: component.Collider{Shape: component.ColliderCuboid, Size: mgl64.Vec3{2, 2, 2}},
		},
		{
			name:         "sphere",
			spec:         BodySpec{Shape: component.MeshSphere, Size: 1.5},
			wantCollider: component.Collider{Shape: component.ColliderSphere, Radius: 0.75},
		},
		{name: "zero size", spec: BodySpec{Shape: component.MeshCuboid}, wantErr: "must be positive"},
		{name: "negative size", spec: BodySpec{Shape: component.MeshSphere, Size: -1}, wantErr: "must be positive"},
		{name: "capsule", spec: BodySpec{Shape: component.MeshCapsule, Size: 1}, wantErr: "unsupported shape capsule"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ecs.NewWorld()
			tt.spec.Color = color.NRGBA{R: 255, A: 255}
			e, err := SpawnDynamicBody(w, tt.spec)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Empty(t, ecs.Entities(w))
				return
			}
			require.NoError(t, err)

			c, ok := ecs.Get(w, e, component.ColliderComponent.Kind())
			require.True(t, ok)
			assert.Equal(t, tt.wantCollider, *c)
			rb, ok := ecs.Get(w, e, component.RigidBodyComponent.Kind())
			require.True(t, ok)
			assert.Equal(t, component.BodyDynamic, rb.Kind)
			tr, ok := ecs.Get(w, e, component.TransformComponent.Kind())
			require.True(t, ok)
			assert.Equal(t, tt.spec.Position, tr.Translation)
			assert.True(t, ecs.Has(w, e, component.SceneMemberComponent.Kind()))
			assert.Equal(t, tt.spec.Name != "", ecs.Has(w, e, component.NameComponent.Kind()))
		})
	}
}
