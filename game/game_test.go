package game

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/redroom/common"
	"github.com/milk9111/redroom/config"
	"github.com/milk9111/redroom/ecs"
	"github.com/milk9111/redroom/ecs/component"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(mode string) config.Config {
	cfg := config.Defaults()
	cfg.Mode = mode
	cfg.PrefabsDir = ""
	cfg.SkipMenu = true
	return cfg
}

func newTestGame(t *testing.T, cfg config.Config) *Game {
	t.Helper()
	g, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })
	return g
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig("cave")
	_, err := New(cfg)
	assert.ErrorIs(t, err, config.ErrUnknownMode)
}

func TestRoomGameStartsPlaying(t *testing.T) {
	g := newTestGame(t, testConfig(config.ModeRoom))
	require.NotNil(t, g.physics)

	require.NoError(t, g.Update())
	assert.Equal(t, ecs.StatePlaying, g.world.State().Current())

	require.NoError(t, g.Update())
	player, ok := ecs.First(g.world, component.PlayerTagComponent.Kind())
	require.True(t, ok)
	assert.True(t, ecs.Has(g.world, player, component.CharacterControllerComponent.Kind()))
}

func TestFlatGameHasNoPhysics(t *testing.T) {
	g := newTestGame(t, testConfig(config.ModeFlat))
	assert.Nil(t, g.physics)

	for range 2 {
		require.NoError(t, g.Update())
	}
	_, ok := ecs.First(g.world, component.Camera2DComponent.Kind())
	assert.True(t, ok)
}

func TestMenuWaitsForPlay(t *testing.T) {
	cfg := testConfig(config.ModeRoom)
	cfg.SkipMenu = false
	g := newTestGame(t, cfg)

	// Loading finishes within the first update.
	g.scheduler.Update(g.world)
	assert.Equal(t, ecs.StateMenu, g.world.State().Current())
	g.scheduler.Update(g.world)
	assert.Equal(t, ecs.StateMenu, g.world.State().Current())

	g.Play()
	g.scheduler.Update(g.world)
	assert.Equal(t, ecs.StatePlaying, g.world.State().Current())
}

func TestRestartRespawnsScene(t *testing.T) {
	g := newTestGame(t, testConfig(config.ModeRoom))
	for range 3 {
		require.NoError(t, g.Update())
	}
	before, ok := ecs.First(g.world, component.PlayerTagComponent.Kind())
	require.True(t, ok)

	g.world.State().SetNext(ecs.StatePaused)
	g.scheduler.Update(g.world)
	require.Equal(t, ecs.StatePaused, g.world.State().Current())

	g.Restart()
	g.scheduler.Update(g.world)
	assert.Equal(t, ecs.StatePlaying, g.world.State().Current())
	assert.False(t, ecs.IsAlive(g.world, before))
	_, ok = ecs.First(g.world, component.PlayerTagComponent.Kind())
	assert.True(t, ok)
}

func TestQuitTerminates(t *testing.T) {
	g := newTestGame(t, testConfig(config.ModeRoom))
	g.Quit()
	assert.ErrorIs(t, g.Update(), ebiten.Termination)
}

func TestLayoutIsBaseResolution(t *testing.T) {
	g := newTestGame(t, testConfig(config.ModeRoom))
	w, h := g.LayoutF(1920, 1080)
	assert.Equal(t, float64(common.BaseWidth), w)
	assert.Equal(t, float64(common.BaseHeight), h)
}
