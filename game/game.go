// Package game wires the ECS world, its systems and the menus into an
// ebiten.Game shared by the desktop and mobile entry points.
package game

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/redroom/common"
	"github.com/milk9111/redroom/config"
	"github.com/milk9111/redroom/ecs"
	"github.com/milk9111/redroom/ecs/system"
	"github.com/milk9111/redroom/prefabs"
)

// Game runs the ECS world behind ebiten's loop and overlays the menu and
// pause UIs.
type Game struct {
	cfg       config.Config
	world     *ecs.World
	scheduler *ecs.Scheduler
	physics   *system.PhysicsSystem
	loading   *system.LoadingSystem
	watcher   *prefabs.Watcher

	menuUI  *ebitenui.UI
	pauseUI *ebitenui.UI
	quit    bool
}

func New(cfg config.Config) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	prefabs.SetDiskDir(cfg.PrefabsDir)

	g := &Game{
		cfg:       cfg,
		world:     ecs.NewWorld(),
		scheduler: ecs.NewScheduler(),
	}
	if cfg.HotReload && cfg.PrefabsDir != "" {
		w, err := newPrefabWatcher(cfg.PrefabsDir)
		if err != nil {
			return nil, fmt.Errorf("hot reload: %w", err)
		}
		g.watcher = w
	}

	scene := system.RoomScene
	if cfg.Mode == config.ModeFlat {
		scene = system.FlatScene
	}
	g.loading = system.NewLoadingSystem(scene, cfg.SkipMenu)
	g.buildSchedule(scene)

	g.menuUI = newMainMenuUI(g)
	g.pauseUI = newPauseUI(g)
	return g, nil
}

func newPrefabWatcher(dir string) (*prefabs.Watcher, error) {
	dirs := []string{dir}
	scripts := filepath.Join(dir, "scripts")
	if info, err := os.Stat(scripts); err == nil && info.IsDir() {
		dirs = append(dirs, scripts)
	}
	return prefabs.NewWatcher(dirs...)
}

func inAnyState(states ...ecs.GameState) ecs.Condition {
	return func(w *ecs.World) bool {
		cur := w.State().Current()
		for _, s := range states {
			if cur == s {
				return true
			}
		}
		return false
	}
}

// buildSchedule registers systems in run order. Render systems are added
// before the debug overlay so it draws on top.
func (g *Game) buildSchedule(scene string) {
	s := g.scheduler
	playing := ecs.InState(ecs.StatePlaying)
	inScene := inAnyState(ecs.StatePlaying, ecs.StatePaused)

	if g.cfg.Mode == config.ModeRoom {
		g.physics = system.NewPhysicsSystem()
	}
	sceneSys := system.NewSceneSystem(scene, g.physics)

	s.OnEnter(ecs.StateLoading, g.loading)
	s.OnEnter(ecs.StatePlaying, sceneSys.Spawn())

	s.Add(system.NewInputSystem(), inScene)
	s.Add(system.NewPauseSystem(), inScene)
	if g.watcher != nil {
		s.Add(system.NewHotReloadSystem(g.watcher), playing)
	}
	s.Add(sceneSys, inScene)

	switch g.cfg.Mode {
	case config.ModeFlat:
		s.Add(system.NewPlayerControllerSystem(), playing)
		s.Add(system.NewFlatRenderSystem(), inScene)
	default:
		s.Add(system.NewSpawnerSystem(), playing)
		s.Add(system.NewCharacterControllerSystem(), playing)
		s.Add(g.physics, playing)
		s.Add(system.NewCameraSystem(), playing)
		s.Add(system.NewRenderSystem(), inScene)
	}

	if g.cfg.Debug {
		s.Add(system.NewDebugSystem(g.physics), inScene)
	}
}

func (g *Game) Update() error {
	if g.quit {
		return ebiten.Termination
	}
	if g.loading.Err != nil {
		return fmt.Errorf("loading: %w", g.loading.Err)
	}

	dt := 1.0 / 60.0
	if tps := ebiten.TPS(); tps > 0 {
		dt = 1.0 / float64(tps)
	}
	g.world.Time().Advance(dt)
	g.scheduler.Update(g.world)

	switch g.world.State().Current() {
	case ecs.StateMenu:
		g.menuUI.Update()
	case ecs.StatePaused:
		g.pauseUI.Update()
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.scheduler.Draw(g.world, screen)

	switch g.world.State().Current() {
	case ecs.StateMenu:
		g.menuUI.Draw(screen)
	case ecs.StatePaused:
		g.pauseUI.Draw(screen)
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return common.BaseWidth, common.BaseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}

// Play leaves the menu.
func (g *Game) Play() {
	if g.world.State().Current() == ecs.StateMenu {
		g.world.State().SetNext(ecs.StatePlaying)
	}
}

func (g *Game) Resume() {
	if g.world.State().Current() == ecs.StatePaused {
		g.world.State().SetNext(ecs.StatePlaying)
	}
}

// Restart respawns the scene and resumes play.
func (g *Game) Restart() {
	g.world.Events().Push(ecs.Event{Type: ecs.EventReloadScene})
	g.world.State().SetNext(ecs.StatePlaying)
}

func (g *Game) Quit() {
	g.quit = true
}

// Close releases the prefab watcher.
func (g *Game) Close() error {
	if g.watcher == nil {
		return nil
	}
	err := g.watcher.Close()
	g.watcher = nil
	if err != nil && !errors.Is(err, os.ErrClosed) {
		log.Printf("prefabs: close watcher: %v", err)
		return err
	}
	return nil
}
