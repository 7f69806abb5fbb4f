package entity

import (
	"errors"
	"fmt"
	"log"

	"github.com/milk9111/redroom/ecs"
	"github.com/milk9111/redroom/ecs/component"
	"github.com/milk9111/redroom/prefabs"
)

// SpawnScene builds every entity of a scene file and tags it SceneMember.
// The scene is validated first; nothing is spawned when it is invalid, and
// a build failure removes the entities spawned so far.
func SpawnScene(w *ecs.World, sceneFile string) ([]ecs.Entity, error) {
	name, spawned, err := spawnScene(w, sceneFile)
	if err != nil {
		return nil, err
	}
	log.Printf("scene: spawned %q (%d entities)", name, len(spawned))
	return spawned, nil
}

// CheckScene validates a scene file and builds it into a scratch world, so
// every error the builder would raise is reported without touching a live
// world.
func CheckScene(sceneFile string) error {
	_, _, err := spawnScene(ecs.NewWorld(), sceneFile)
	return err
}

// CheckScenes runs CheckScene on each file and joins the failures, each
// prefixed with its file name.
func CheckScenes(sceneFiles ...string) error {
	var errs []error
	for _, name := range sceneFiles {
		if err := CheckScene(name); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

func spawnScene(w *ecs.World, sceneFile string) (string, []ecs.Entity, error) {
	scene, err := prefabs.LoadSceneSpec(sceneFile)
	if err != nil {
		return "", nil, fmt.Errorf("scene: %w", err)
	}
	specs, err := scene.ResolveAll()
	if err != nil {
		return "", nil, fmt.Errorf("scene: %w", err)
	}
	if err := prefabs.Validate(specs); err != nil {
		return "", nil, fmt.Errorf("scene: validate %s: %w", sceneFile, err)
	}

	spawned := make([]ecs.Entity, 0, len(specs))
	rollback := func() {
		for _, s := range spawned {
			ecs.DestroyEntity(w, s)
		}
	}
	for _, spec := range specs {
		e, err := BuildEntitySpec(w, spec, sceneFile)
		if err != nil {
			rollback()
			return "", nil, fmt.Errorf("scene: %w", err)
		}
		spawned = append(spawned, e)
		if err := ecs.Add(w, e, component.SceneMemberComponent.Kind(), &component.SceneMember{}); err != nil {
			rollback()
			return "", nil, fmt.Errorf("scene: tag %q: %w", spec.Name, err)
		}
	}
	return scene.Name, spawned, nil
}

// DespawnScene destroys every SceneMember and returns how many were removed.
func DespawnScene(w *ecs.World) int {
	n := 0
	for _, e := range ecs.Query(w, component.SceneMemberComponent.Kind()) {
		if ecs.DestroyEntity(w, e) {
			n++
		}
	}
	return n
}

// SceneLoaded reports whether any scene member exists.
func SceneLoaded(w *ecs.World) bool {
	_, ok := ecs.First(w, component.SceneMemberComponent.Kind())
	return ok
}

// FindByName returns the first entity carrying the given Name.
func FindByName(w *ecs.World, name string) (ecs.Entity, bool) {
	for _, e := range ecs.Query(w, component.NameComponent.Kind()) {
		if n, ok := ecs.Get(w, e, component.NameComponent.Kind()); ok && n.Value == name {
			return e, true
		}
	}
	return 0, false
}
