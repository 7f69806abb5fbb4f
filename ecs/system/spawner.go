package system

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/redroom/common"
	"github.com/milk9111/redroom/ecs"
	"github.com/milk9111/redroom/ecs/component"
	"github.com/milk9111/redroom/ecs/entity"
	"github.com/milk9111/redroom/prefabs"
)

const (
	DefaultSpawnScript = "spawn.tengo"
	// MaxScriptedBodies caps live scripted bodies; the oldest go first.
	MaxScriptedBodies  = 64
	spawnScriptTimeout = 250 * time.Millisecond
)

// SpawnerSystem runs the spawn script whenever the player presses spawn and
// turns the bodies it describes into dynamic scene members.
type SpawnerSystem struct {
	Script string
	// count is the number of bodies spawned since the scene started.
	count int
}

func NewSpawnerSystem() *SpawnerSystem {
	return &SpawnerSystem{Script: DefaultSpawnScript}
}

func (s *SpawnerSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	player, ok := ecs.First(w, component.PlayerTagComponent.Kind())
	if !ok {
		s.count = 0
		return
	}
	input, ok := ecs.Get(w, player, component.InputComponent.Kind())
	if !ok || !input.SpawnPressed {
		return
	}
	t, ok := ecs.Get(w, player, component.TransformComponent.Kind())
	if !ok {
		return
	}

	specs, err := RunSpawnScript(s.Script, t.Translation, s.count)
	if err != nil {
		log.Printf("spawner: %v", err)
		return
	}
	for _, spec := range specs {
		e, err := entity.SpawnDynamicBody(w, spec)
		if err != nil {
			log.Printf("spawner: %v", err)
			continue
		}
		s.count++
		if err := ecs.Add(w, e, component.ScriptedComponent.Kind(), &component.Scripted{Order: s.count}); err != nil {
			log.Printf("spawner: tag body: %v", err)
		}
	}
	TrimScripted(w, MaxScriptedBodies)
}

// RunSpawnScript runs a tengo spawn script with the player position and
// spawn count as inputs and decodes its bodies array.
func RunSpawnScript(name string, player mgl64.Vec3, count int) ([]entity.BodySpec, error) {
	src, err := prefabs.LoadScript(name)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}

	script := tengo.NewScript(src)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	for k, v := range map[string]any{
		"player_x": player[0],
		"player_y": player[1],
		"player_z": player[2],
		"count":    count,
	} {
		if err := script.Add(k, v); err != nil {
			return nil, fmt.Errorf("%s: set %s: %w", name, k, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), spawnScriptTimeout)
	defer cancel()
	compiled, err := script.RunContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if !compiled.IsDefined("bodies") {
		return nil, fmt.Errorf("%s: script does not define bodies", name)
	}
	bodies := compiled.Get("bodies")
	if bodies.ValueType() != "array" {
		return nil, fmt.Errorf("%s: bodies is %s, want array", name, bodies.ValueType())
	}

	raw := bodies.Array()
	out := make([]entity.BodySpec, 0, len(raw))
	for i, item := range raw {
		spec, err := decodeBody(item)
		if err != nil {
			return nil, fmt.Errorf("%s: bodies[%d]: %w", name, i, err)
		}
		out = append(out, spec)
	}
	return out, nil
}

func decodeBody(item any) (entity.BodySpec, error) {
	m, ok := item.(map[string]any)
	if !ok {
		return entity.BodySpec{}, fmt.Errorf("want map, got %T", item)
	}
	num := func(key string, def float64) (float64, error) {
		v, ok := m[key]
		if !ok {
			return def, nil
		}
		switch n := v.(type) {
		case float64:
			return n, nil
		case int64:
			return float64(n), nil
		case int:
			return float64(n), nil
		default:
			return 0, fmt.Errorf("%s: want number, got %T", key, v)
		}
	}

	var spec entity.BodySpec
	shape, _ := m["shape"].(string)
	switch shape {
	case "cube", "cuboid":
		spec.Shape = component.MeshCuboid
	case "sphere":
		spec.Shape = component.MeshSphere
	default:
		return spec, fmt.Errorf("unknown shape %q", shape)
	}
	spec.Name = "scripted_" + shape

	var err error
	fields := []struct {
		key string
		dst *float64
		def float64
	}{
		{"x", &spec.Position[0], 0},
		{"y", &spec.Position[1], 0},
		{"z", &spec.Position[2], 0},
		{"size", &spec.Size, 1},
		{"spin_x", &spec.Spin[0], 0},
		{"spin_y", &spec.Spin[1], 0},
		{"spin_z", &spec.Spin[2], 0},
	}
	for _, f := range fields {
		if *f.dst, err = num(f.key, f.def); err != nil {
			return spec, err
		}
	}

	spec.Color = common.SRGB8(124, 144, 255)
	if raw, ok := m["color"].(string); ok {
		if spec.Color, err = prefabs.ParseColor(raw); err != nil {
			return spec, fmt.Errorf("color: %w", err)
		}
	}
	return spec, nil
}

// TrimScripted despawns the oldest scripted bodies until at most max remain.
// It returns how many were removed.
func TrimScripted(w *ecs.World, max int) int {
	entities := ecs.Query(w, component.ScriptedComponent.Kind())
	if len(entities) <= max {
		return 0
	}
	order := func(e ecs.Entity) int {
		sc, _ := ecs.Get(w, e, component.ScriptedComponent.Kind())
		return sc.Order
	}
	sort.SliceStable(entities, func(i, j int) bool { return order(entities[i]) < order(entities[j]) })
	excess := len(entities) - max
	for _, e := range entities[:excess] {
		ecs.DestroyEntity(w, e)
	}
	return excess
}
