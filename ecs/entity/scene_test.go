package entity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/redroom/ecs"
	"github.com/milk9111/redroom/ecs/component"
	"github.com/milk9111/redroom/prefabs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withScene(t *testing.T, name, data string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(data), 0o644))
	prev := prefabs.DiskDir()
	prefabs.SetDiskDir(dir)
	t.Cleanup(func() { prefabs.SetDiskDir(prev) })
}

func TestShippedScenesBuild(t *testing.T) {
	require.NoError(t, CheckScenes(prefabs.DefaultScenes...))
}

func TestSpawnSceneTagsMembers(t *testing.T) {
	w := ecs.NewWorld()
	spawned, err := SpawnScene(w, "room.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, spawned)

	for _, e := range spawned {
		assert.True(t, ecs.Has(w, e, component.SceneMemberComponent.Kind()))
	}
	assert.True(t, SceneLoaded(w))

	wall, ok := FindByName(w, "back_wall")
	require.True(t, ok)
	tr, ok := ecs.Get(w, wall, component.TransformComponent.Kind())
	require.True(t, ok)
	assert.InDelta(t, 1, tr.Rotation.Rotate(mgl64.Vec3{0, 1, 0})[2], 1e-9)

	assert.Equal(t, len(spawned), DespawnScene(w))
	assert.False(t, SceneLoaded(w))
}

func TestSpawnSceneRollsBackOnBuildError(t *testing.T) {
	withScene(t, "broken.yaml", `
name: broken
entities:
  - name: ok_box
    components:
      transform: {translation: [0, 1, 0]}
      mesh: {shape: cuboid, size: [1, 1, 1]}
  - name: bad_box
    components:
      transfrom: {translation: [0, 2, 0]}
      mesh: {shape: cuboid, size: [1, 1, 1]}
`)

	w := ecs.NewWorld()
	spawned, err := SpawnScene(w, "broken.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transfrom")
	assert.Nil(t, spawned)
	assert.Empty(t, ecs.Entities(w))

	err = CheckScenes("room.yaml", "broken.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.yaml: ")
	assert.NotContains(t, err.Error(), "room.yaml: ")
}

func TestFindByNameMissing(t *testing.T) {
	_, ok := FindByName(ecs.NewWorld(), "nobody")
	assert.False(t, ok)
}
