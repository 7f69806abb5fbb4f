package system

import (
	"errors"
	"fmt"
	"log"

	"github.com/milk9111/redroom/assets"
	"github.com/milk9111/redroom/ecs"
	"github.com/milk9111/redroom/ecs/component"
	"github.com/milk9111/redroom/ecs/entity"
	"github.com/milk9111/redroom/prefabs"
)

const (
	RoomScene = "room.yaml"
	FlatScene = "flat.yaml"
)

// SceneSystem spawns its scene when Playing is entered and respawns it on
// EventReloadScene.
type SceneSystem struct {
	Scene   string
	Physics *PhysicsSystem
}

func NewSceneSystem(scene string, physics *PhysicsSystem) *SceneSystem {
	return &SceneSystem{Scene: scene, Physics: physics}
}

// Spawn builds the scene unless it is already loaded, so resuming from
// Paused keeps the running scene.
func (s *SceneSystem) Spawn() ecs.System {
	return ecs.SystemFunc(func(w *ecs.World) {
		if entity.SceneLoaded(w) {
			return
		}
		if _, err := entity.SpawnScene(w, s.Scene); err != nil {
			log.Printf("scene: %v", err)
		}
	})
}

func (s *SceneSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	reload := false
	w.Events().Each(ecs.EventReloadScene, func(ecs.Event) { reload = true })
	if reload {
		if err := s.Reload(w); err != nil {
			log.Printf("scene: %v", err)
		}
	}
}

// Reload test-builds the scene, then despawns every scene member and spawns
// it again. A scene that fails to build leaves the running one untouched.
func (s *SceneSystem) Reload(w *ecs.World) error {
	if err := entity.CheckScene(s.Scene); err != nil {
		return fmt.Errorf("reload %s: %w", s.Scene, err)
	}
	n := entity.DespawnScene(w)
	if s.Physics != nil {
		s.Physics.Reset()
	}
	if _, err := entity.SpawnScene(w, s.Scene); err != nil {
		return fmt.Errorf("reload %s: %w", s.Scene, err)
	}
	log.Printf("scene: reloaded %s (%d entities replaced)", s.Scene, n)
	return nil
}

// HotReloadSystem turns prefab file changes into EventReloadScene.
type HotReloadSystem struct {
	Watcher *prefabs.Watcher
}

func NewHotReloadSystem(watcher *prefabs.Watcher) *HotReloadSystem {
	return &HotReloadSystem{Watcher: watcher}
}

func (h *HotReloadSystem) Update(w *ecs.World) {
	if h == nil || h.Watcher == nil || w == nil {
		return
	}
	select {
	case err, ok := <-h.Watcher.Errors:
		if ok && err != nil {
			log.Printf("prefabs: watch: %v", err)
		}
	default:
	}
	changed := h.Watcher.Poll()
	if len(changed) == 0 {
		return
	}
	log.Printf("prefabs: changed %v, reloading", changed)
	w.Events().Push(ecs.Event{Type: ecs.EventReloadScene, Data: changed})
}

var ErrNoTextures = errors.New("loading: no textures generated")

// LoadingSystem validates the scene and generates textures when the game
// starts, then moves on to Menu, or straight to Playing with SkipMenu.
type LoadingSystem struct {
	Scene    string
	SkipMenu bool
	// Err is set when loading failed; the game stops with it.
	Err error
}

func NewLoadingSystem(scene string, skipMenu bool) *LoadingSystem {
	return &LoadingSystem{Scene: scene, SkipMenu: skipMenu}
}

func (l *LoadingSystem) Update(w *ecs.World) {
	if l == nil || w == nil {
		return
	}
	if err := l.load(); err != nil {
		l.Err = err
		log.Printf("loading: %v", err)
		return
	}
	if l.SkipMenu {
		w.State().SetNext(ecs.StatePlaying)
		return
	}
	w.State().SetNext(ecs.StateMenu)
}

func (l *LoadingSystem) load() error {
	if err := entity.CheckScene(l.Scene); err != nil {
		return fmt.Errorf("scene %s: %w", l.Scene, err)
	}
	names := assets.TextureNames()
	if len(names) == 0 {
		return ErrNoTextures
	}
	for _, name := range names {
		if _, err := assets.Texture(name); err != nil {
			return fmt.Errorf("texture %s: %w", name, err)
		}
	}
	return nil
}

// PauseSystem toggles between Playing and Paused when pause is pressed.
type PauseSystem struct{}

func NewPauseSystem() *PauseSystem {
	return &PauseSystem{}
}

func (p *PauseSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	pressed := false
	ecs.ForEach(w, component.InputComponent.Kind(), func(e ecs.Entity, input *component.Input) {
		pressed = pressed || input.PausePressed
	})
	if !pressed {
		return
	}
	switch w.State().Current() {
	case ecs.StatePlaying:
		w.State().SetNext(ecs.StatePaused)
	case ecs.StatePaused:
		w.State().SetNext(ecs.StatePlaying)
	}
}
