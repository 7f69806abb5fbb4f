package system

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/milk9111/redroom/ecs"
	"github.com/milk9111/redroom/ecs/component"
	"github.com/milk9111/redroom/ecs/entity"
	"github.com/milk9111/redroom/prefabs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSceneSpawnIsIdempotent(t *testing.T) {
	w := ecs.NewWorld()
	scene := NewSceneSystem(RoomScene, NewPhysicsSystem())

	scene.Spawn().Update(w)
	first := ecs.Query(w, component.SceneMemberComponent.Kind())
	require.NotEmpty(t, first)

	scene.Spawn().Update(w)
	assert.Equal(t, first, ecs.Query(w, component.SceneMemberComponent.Kind()))
}

func TestSceneReloadReplacesMembers(t *testing.T) {
	w := ecs.NewWorld()
	ps := NewPhysicsSystem()
	scene := NewSceneSystem(RoomScene, ps)
	scene.Spawn().Update(w)
	before := ecs.Query(w, component.SceneMemberComponent.Kind())
	oldPlayer, ok := ecs.First(w, component.PlayerTagComponent.Kind())
	require.True(t, ok)

	w.Time().Advance(0.1)
	ps.Update(w)

	w.Events().Push(ecs.Event{Type: ecs.EventReloadScene})
	scene.Update(w)

	after := ecs.Query(w, component.SceneMemberComponent.Kind())
	assert.Len(t, after, len(before))
	assert.False(t, ecs.IsAlive(w, oldPlayer))
	newPlayer, ok := ecs.First(w, component.PlayerTagComponent.Kind())
	require.True(t, ok)
	tr, _ := ecs.Get(w, newPlayer, component.TransformComponent.Kind())
	assert.InDelta(t, 1.5, tr.Translation[1], 1e-9)
}

func TestSceneReloadKeepsSceneWhenInvalid(t *testing.T) {
	w := ecs.NewWorld()
	scene := NewSceneSystem(RoomScene, nil)
	scene.Spawn().Update(w)
	before := ecs.Query(w, component.SceneMemberComponent.Kind())

	scene.Scene = "missing.yaml"
	assert.Error(t, scene.Reload(w))
	assert.Equal(t, before, ecs.Query(w, component.SceneMemberComponent.Kind()))
}

func TestSceneReloadKeepsSceneWhenBuildFails(t *testing.T) {
	dir := t.TempDir()
	prev := prefabs.DiskDir()
	prefabs.SetDiskDir(dir)
	t.Cleanup(func() { prefabs.SetDiskDir(prev) })

	w := ecs.NewWorld()
	ps := NewPhysicsSystem()
	scene := NewSceneSystem(RoomScene, ps)
	scene.Spawn().Update(w)
	stepFor(w, ps, 0.05)
	before := ecs.Query(w, component.SceneMemberComponent.Kind())
	require.NotEmpty(t, before)
	require.NotEmpty(t, ps.entities)

	room, err := prefabs.PrefabsFS.ReadFile(RoomScene)
	require.NoError(t, err)
	typo := "\n  - name: crate\n    components:\n      transfrom:\n        translation: [0, 1, 0]\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, RoomScene), append(room, typo...), 0o644))

	err = scene.Reload(w)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"transfrom"`)
	assert.Equal(t, before, ecs.Query(w, component.SceneMemberComponent.Kind()))
	assert.NotEmpty(t, ps.entities, "physics keeps its bodies")
}

func TestRoomSceneSettles(t *testing.T) {
	w := ecs.NewWorld()
	ps := NewPhysicsSystem()
	NewSceneSystem(RoomScene, ps).Spawn().Update(w)

	player, ok := ecs.First(w, component.PlayerTagComponent.Kind())
	require.True(t, ok)
	cube, ok := entity.FindByName(w, "cube")
	require.True(t, ok)
	sphere, ok := entity.FindByName(w, "sphere")
	require.True(t, ok)

	stepFor(w, ps, 6)

	gc, ok := ecs.Get(w, player, component.GroundContactComponent.Kind())
	require.True(t, ok)
	assert.True(t, gc.Grounded)
	assert.InDelta(t, 0.9, translation(t, w, player)[1], 0.01)
	assert.InDelta(t, 0.5, translation(t, w, sphere)[1], 0.01)
	assert.InDelta(t, 0.5, translation(t, w, cube)[1], 0.01, "the cube slides off the player's head")
	for _, e := range []ecs.Entity{player, cube, sphere} {
		p := translation(t, w, e)
		assert.Less(t, p[0], 10.0)
		assert.Greater(t, p[0], -10.0)
		assert.Less(t, p[2], 10.0)
		assert.Greater(t, p[2], -10.0)
	}
}

func TestFlatSceneSpawns(t *testing.T) {
	w := ecs.NewWorld()
	NewSceneSystem(FlatScene, nil).Spawn().Update(w)

	player, ok := ecs.First(w, component.PlayerTagComponent.Kind())
	require.True(t, ok)
	assert.True(t, ecs.Has(w, player, component.SpriteComponent.Kind()))
	_, ok = ecs.First(w, component.Camera2DComponent.Kind())
	assert.True(t, ok)
}

func TestLoadingSystemMovesOn(t *testing.T) {
	cases := []struct {
		name     string
		skipMenu bool
		want     ecs.GameState
	}{
		{"to menu", false, ecs.StateMenu},
		{"skip menu", true, ecs.StatePlaying},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := ecs.NewWorld()
			loading := NewLoadingSystem(RoomScene, tc.skipMenu)
			loading.Update(w)
			require.NoError(t, loading.Err)
			next, ok := w.State().Pending()
			require.True(t, ok)
			assert.Equal(t, tc.want, next)
		})
	}
}

func TestLoadingSystemReportsBadScene(t *testing.T) {
	w := ecs.NewWorld()
	loading := NewLoadingSystem("missing.yaml", false)
	loading.Update(w)
	assert.Error(t, loading.Err)
	_, ok := w.State().Pending()
	assert.False(t, ok)
}

func TestPauseSystemToggles(t *testing.T) {
	w := ecs.NewWorld()
	sched := ecs.NewScheduler()
	sched.Add(NewPauseSystem(), func(w *ecs.World) bool {
		s := w.State().Current()
		return s == ecs.StatePlaying || s == ecs.StatePaused
	})
	w.State().SetNext(ecs.StatePlaying)
	sched.Update(w)

	e := ecs.CreateEntity(w)
	require.NoError(t, ecs.Add(w, e, component.InputComponent.Kind(), &component.Input{PausePressed: true}))
	sched.Update(w)
	sched.Update(w)
	assert.Equal(t, ecs.StatePaused, w.State().Current())

	sched.Update(w)
	assert.Equal(t, ecs.StatePlaying, w.State().Current())
}
