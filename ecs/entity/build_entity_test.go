package entity

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/redroom/ecs"
	"github.com/milk9111/redroom/ecs/component"
	"github.com/milk9111/redroom/prefabs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func parseEntitySpec(t *testing.T, src string) entityPrefabSpec {
	t.Helper()
	var spec entityPrefabSpec
	require.NoError(t, yaml.Unmarshal([]byte(src), &spec))
	return spec
}

func assertVecNear(t *testing.T, want, got mgl64.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-9, "component %d of %v", i, got)
	}
}

func TestBuildOrderCoversRegistry(t *testing.T) {
	assert.Len(t, componentBuildOrder, len(componentRegistry))
	index := make(map[string]int, len(componentBuildOrder))
	for i, name := range componentBuildOrder {
		_, ok := componentRegistry[name]
		assert.True(t, ok, "%q has no builder", name)
		index[name] = i
	}

	tests := []struct {
		before, after string
	}{
		{"transform", "mesh"},
		{"transform", "collider"},
		{"mesh", "collider"},
		{"transform", "camera3d"},
		{"camera3d", "camera_follow"},
	}
	for _, tt := range tests {
		t.Run(tt.before+"_before_"+tt.after, func(t *testing.T) {
			assert.Less(t, index[tt.before], index[tt.after])
		})
	}
}

func TestBuildEntitySpec(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
		check   func(t *testing.T, w *ecs.World, e ecs.Entity)
	}{
		{
			name: "collider from mesh regardless of key order",
			src: `
name: wall
components:
  collider: {shape: trimesh_from_mesh}
  rigid_body: {kind: static}
  mesh: {shape: plane, size: [20, 0, 10]}
  transform: {translation: [0, 5, -10], rotation_deg: [90, 0, 0]}
`,
			check: func(t *testing.T, w *ecs.World, e ecs.Entity) {
				c, ok := ecs.Get(w, e, component.ColliderComponent.Kind())
				require.True(t, ok)
				assert.Equal(t, component.ColliderFromMesh, c.Shape)
				n, ok := ecs.Get(w, e, component.NameComponent.Kind())
				require.True(t, ok)
				assert.Equal(t, "wall", n.Value)
			},
		},
		{
			name: "unknown component",
			src: `
name: crate
components:
  transfrom: {translation: [0, 1, 0]}
  mesh: {shape: cuboid, size: [1, 1, 1]}
`,
			wantErr: `no builder for component "transfrom"`,
		},
		{
			name: "failing builder",
			src: `
name: player
components:
  transform: {translation: [0, 1, 0]}
  character_controller: {damping: 0}
`,
			wantErr: `add "character_controller"`,
		},
		{
			name: "mesh collider without mesh",
			src: `
components:
  transform: {}
  collider: {shape: mesh}
`,
			wantErr: "needs a mesh",
		},
		{
			name: "sprite without texture",
			src: `
components:
  sprite: {center_origin: true}
`,
			wantErr: "texture is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ecs.NewWorld()
			e, err := BuildEntitySpec(w, parseEntitySpec(t, tt.src), "test.yaml")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Empty(t, ecs.Entities(w), "half-built entity is destroyed")
				return
			}
			require.NoError(t, err)
			assert.True(t, ecs.IsAlive(w, e))
			if tt.check != nil {
				tt.check(t, w, e)
			}
		})
	}
}

func TestBuildEntityRejectsNilWorld(t *testing.T) {
	_, err := BuildEntitySpec(nil, entityPrefabSpec{}, "x.yaml")
	assert.Error(t, err)
}

func TestTransformFromSpec(t *testing.T) {
	up := mgl64.Vec3{0, 1, 0}
	tests := []struct {
		name string
		spec prefabs.TransformComponentSpec
		// in is rotated by the result and compared with want.
		in, want mgl64.Vec3
	}{
		{
			name: "back wall faces +Z",
			spec: prefabs.TransformComponentSpec{RotationDeg: prefabs.Vec3Spec{90, 0, 0}},
			in:   up,
			want: mgl64.Vec3{0, 0, 1},
		},
		{
			name: "front wall faces -Z",
			spec: prefabs.TransformComponentSpec{RotationDeg: prefabs.Vec3Spec{-90, 0, 0}},
			in:   up,
			want: mgl64.Vec3{0, 0, -1},
		},
		{
			name: "X applied before Y",
			spec: prefabs.TransformComponentSpec{RotationDeg: prefabs.Vec3Spec{90, 90, 0}},
			in:   up,
			want: mgl64.Vec3{1, 0, 0},
		},
		{
			name: "Y applied before Z",
			spec: prefabs.TransformComponentSpec{RotationDeg: prefabs.Vec3Spec{0, 90, 90}},
			in:   mgl64.Vec3{1, 0, 0},
			want: mgl64.Vec3{0, 0, -1},
		},
		{
			name: "quaternion wins over rotation_deg",
			spec: prefabs.TransformComponentSpec{
				Rotation:    &prefabs.QuatSpec{W: 2},
				RotationDeg: prefabs.Vec3Spec{90, 0, 0},
			},
			in:   up,
			want: up,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := TransformFromSpec(tt.spec)
			require.NoError(t, err)
			assertVecNear(t, tt.want, tr.Rotation.Rotate(tt.in))
			assert.InDelta(t, 1, tr.Rotation.Len(), 1e-9)
		})
	}
}

func TestTransformFromSpecLookAt(t *testing.T) {
	tr, err := TransformFromSpec(prefabs.TransformComponentSpec{
		Translation: prefabs.Vec3Spec{0, 15, 25},
		RotationDeg: prefabs.Vec3Spec{0, 45, 0},
		LookAt:      prefabs.Vec3Spec{0, 0, 0},
	})
	require.NoError(t, err)
	assertVecNear(t, mgl64.Vec3{0, 15, 25}, tr.Translation)
	assertVecNear(t, mgl64.Vec3{0, -15, -25}.Normalize(), tr.Forward())
	assertVecNear(t, mgl64.Vec3{1, 1, 1}, tr.Scale)
}

func TestTransformFromSpecErrors(t *testing.T) {
	tests := []struct {
		name    string
		spec    prefabs.TransformComponentSpec
		wantErr string
	}{
		{"zero quaternion", prefabs.TransformComponentSpec{Rotation: &prefabs.QuatSpec{}}, "zero quaternion"},
		{"short translation", prefabs.TransformComponentSpec{Translation: prefabs.Vec3Spec{1, 2}}, "translation"},
		{"long scale", prefabs.TransformComponentSpec{Scale: prefabs.Vec3Spec{1, 2, 3, 4}}, "scale"},
		{"short rotation_deg", prefabs.TransformComponentSpec{RotationDeg: prefabs.Vec3Spec{90}}, "rotation_deg"},
		{"short look_at", prefabs.TransformComponentSpec{LookAt: prefabs.Vec3Spec{}}, "look_at"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TransformFromSpec(tt.spec)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCamera3DFocusFollowsTransform(t *testing.T) {
	w := ecs.NewWorld()
	e, err := BuildEntity(w, "camera.yaml")
	require.NoError(t, err)

	cam, ok := ecs.Get(w, e, component.Camera3DComponent.Kind())
	require.True(t, ok)
	assert.InDelta(t, 0, cam.Focus.Len(), 1e-9, "focus is the look_at target")
	assert.InDelta(t, mgl64.DegToRad(45), cam.FOV, 1e-9)
	assert.Equal(t, 0.1, cam.Near)
	assert.Equal(t, 200.0, cam.Far)
}

func TestCamera3DDefaults(t *testing.T) {
	w := ecs.NewWorld()
	e, err := BuildEntitySpec(w, parseEntitySpec(t, `
components:
  transform: {translation: [0, 0, 0.5]}
  camera3d: {fov_deg: 200, near: -1, far: 0}
`), "test.yaml")
	require.NoError(t, err)

	cam, ok := ecs.Get(w, e, component.Camera3DComponent.Kind())
	require.True(t, ok)
	assert.InDelta(t, mgl64.DegToRad(45), cam.FOV, 1e-9)
	assert.Equal(t, 0.1, cam.Near)
	assert.Equal(t, 1000.0, cam.Far)
	assertVecNear(t, mgl64.Vec3{0, 0, -9.5}, cam.Focus)
}

func TestCameraFollowDeadzone(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want float64
	}{
		{"missing", "camera_follow: {target: player}", defaultFollowDeadzone},
		{"explicit zero", "camera_follow: {target: player, deadzone: 0}", 0},
		{"explicit", "camera_follow: {target: player, deadzone: 1.5}", 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ecs.NewWorld()
			e, err := BuildEntitySpec(w, parseEntitySpec(t, "components:\n  "+tt.src+"\n"), "test.yaml")
			require.NoError(t, err)

			follow, ok := ecs.Get(w, e, component.CameraFollowComponent.Kind())
			require.True(t, ok)
			assert.Equal(t, tt.want, follow.Deadzone)
			assert.Equal(t, defaultFollowSpeed, follow.Speed)
			assert.Equal(t, "player", follow.TargetName)
		})
	}
}
