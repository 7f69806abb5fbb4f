package system

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/redroom/ecs"
	"github.com/milk9111/redroom/ecs/component"
	"github.com/milk9111/redroom/ecs/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSpawnScript(t *testing.T) {
	specs, err := RunSpawnScript(DefaultSpawnScript, mgl64.Vec3{1, 0.9, -2}, 0)
	require.NoError(t, err)
	require.Len(t, specs, 1)

	s := specs[0]
	assert.Equal(t, component.MeshCuboid, s.Shape)
	assert.InDelta(t, 4.9, s.Position[1], 1e-9)
	assert.InDelta(t, 2.5, mgl64.Vec2{s.Position[0] - 1, s.Position[2] + 2}.Len(), 1e-9)
	assert.Greater(t, s.Size, 0.0)

	specs, err = RunSpawnScript(DefaultSpawnScript, mgl64.Vec3{}, 1)
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, component.MeshSphere, specs[0].Shape)
}

func TestRunSpawnScriptMissingFile(t *testing.T) {
	_, err := RunSpawnScript("missing.tengo", mgl64.Vec3{}, 0)
	assert.Error(t, err)
}

func TestDecodeBody(t *testing.T) {
	cases := []struct {
		name    string
		item    any
		wantErr bool
	}{
		{"cube", map[string]any{"shape": "cube", "x": 1.0, "y": int64(2), "size": 0.5, "color": "#ff0000"}, false},
		{"sphere defaults", map[string]any{"shape": "sphere"}, false},
		{"unknown shape", map[string]any{"shape": "torus"}, true},
		{"bad number", map[string]any{"shape": "cube", "x": "left"}, true},
		{"bad colour", map[string]any{"shape": "cube", "color": "nope"}, true},
		{"not a map", []any{1, 2}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := decodeBody(tc.item)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}

	spec, err := decodeBody(map[string]any{"shape": "cube", "x": 1.0, "y": int64(2)})
	require.NoError(t, err)
	assert.Equal(t, mgl64.Vec3{1, 2, 0}, spec.Position)
	assert.Equal(t, 1.0, spec.Size)
}

func TestTrimScriptedRemovesOldestFirst(t *testing.T) {
	w := ecs.NewWorld()
	var spawned []ecs.Entity
	for i := 1; i <= 5; i++ {
		e, err := entity.SpawnDynamicBody(w, entity.BodySpec{Shape: component.MeshCuboid, Size: 1})
		require.NoError(t, err)
		require.NoError(t, ecs.Add(w, e, component.ScriptedComponent.Kind(), &component.Scripted{Order: i}))
		spawned = append(spawned, e)
	}

	assert.Equal(t, 0, TrimScripted(w, 5))
	assert.Equal(t, 2, TrimScripted(w, 3))

	assert.False(t, ecs.IsAlive(w, spawned[0]))
	assert.False(t, ecs.IsAlive(w, spawned[1]))
	for _, e := range spawned[2:] {
		assert.True(t, ecs.IsAlive(w, e))
	}
}

func TestSpawnerSystemSpawnsOnPress(t *testing.T) {
	w := ecs.NewWorld()
	player := ecs.CreateEntity(w)
	tr := component.NewTransform(0, 0.9, 0)
	input := component.Input{}
	require.NoError(t, ecs.Add(w, player, component.TransformComponent.Kind(), &tr))
	require.NoError(t, ecs.Add(w, player, component.InputComponent.Kind(), &input))
	require.NoError(t, ecs.Add(w, player, component.PlayerTagComponent.Kind(), &component.PlayerTag{}))

	sys := NewSpawnerSystem()
	sys.Update(w)
	assert.Empty(t, ecs.Query(w, component.ScriptedComponent.Kind()))

	in, _ := ecs.Get(w, player, component.InputComponent.Kind())
	in.SpawnPressed = true
	for i := 0; i < MaxScriptedBodies+3; i++ {
		sys.Update(w)
	}

	scripted := ecs.Query(w, component.ScriptedComponent.Kind())
	assert.Len(t, scripted, MaxScriptedBodies)
	for _, e := range scripted {
		assert.True(t, ecs.Has(w, e, component.SceneMemberComponent.Kind()))
		sc, _ := ecs.Get(w, e, component.ScriptedComponent.Kind())
		assert.Greater(t, sc.Order, 3)
	}
}
