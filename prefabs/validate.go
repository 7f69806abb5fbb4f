package prefabs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoPlayer       = errors.New("prefabs: scene has no player")
	ErrManyPlayers    = errors.New("prefabs: scene has more than one player")
	ErrNoCamera       = errors.New("prefabs: scene has no camera")
	ErrManyCameras    = errors.New("prefabs: scene has more than one camera")
	ErrUnknownShape   = errors.New("prefabs: unknown shape")
	ErrUnknownKind    = errors.New("prefabs: unknown body kind")
	ErrNonPositive    = errors.New("prefabs: size must be positive")
	ErrUnknownCombine = errors.New("prefabs: unknown combine rule")
)

var (
	meshShapes     = map[string]bool{"plane": true, "cuboid": true, "sphere": true, "capsule": true}
	colliderShapes = map[string]bool{"mesh": true, "trimesh_from_mesh": true, "cuboid": true, "sphere": true, "capsule": true}
	bodyKinds      = map[string]bool{"static": true, "dynamic": true}
	combineRules   = map[string]bool{"": true, "average": true, "min": true, "max": true, "multiply": true}
)

// ValidateScene loads a scene file, resolves its prefabs and checks it.
func ValidateScene(filename string) error {
	scene, err := LoadSceneSpec(filename)
	if err != nil {
		return err
	}
	specs, err := scene.ResolveAll()
	if err != nil {
		return err
	}
	return Validate(specs)
}

// DefaultScenes are the scene files the game ships with.
var DefaultScenes = []string{"room.yaml", "flat.yaml"}

// Validate checks a resolved scene: one player, one camera, and sane
// geometry on every entity. All problems are joined into one error.
func Validate(specs []EntityBuildSpec) error {
	var errs []error
	players, cameras := 0, 0
	for _, spec := range specs {
		if _, ok := spec.Components["player_tag"]; ok {
			players++
		}
		if _, ok := spec.Components["camera_tag"]; ok {
			cameras++
		}
		if err := validateEntity(spec); err != nil {
			errs = append(errs, fmt.Errorf("entity %q: %w", spec.Name, err))
		}
	}
	switch {
	case players == 0:
		errs = append(errs, ErrNoPlayer)
	case players > 1:
		errs = append(errs, ErrManyPlayers)
	}
	switch {
	case cameras == 0:
		errs = append(errs, ErrNoCamera)
	case cameras > 1:
		errs = append(errs, ErrManyCameras)
	}
	return errors.Join(errs...)
}

func validateEntity(spec EntityBuildSpec) error {
	var errs []error
	if raw, ok := spec.Components["transform"]; ok {
		t, err := DecodeComponentSpec[TransformComponentSpec](raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("transform: %w", err))
		} else {
			for name, v := range map[string]Vec3Spec{"translation": t.Translation, "rotation_deg": t.RotationDeg, "scale": t.Scale, "look_at": t.LookAt} {
				if v == nil {
					continue
				}
				if _, err := v.Vec3(); err != nil {
					errs = append(errs, fmt.Errorf("transform %s: %w", name, err))
				}
			}
		}
	}
	if raw, ok := spec.Components["mesh"]; ok {
		m, err := DecodeComponentSpec[MeshComponentSpec](raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("mesh: %w", err))
		} else if err := validateShape("mesh", m.Shape, m.Size, m.Radius, m.Length, meshShapes); err != nil {
			errs = append(errs, err)
		}
	}
	if raw, ok := spec.Components["collider"]; ok {
		c, err := DecodeComponentSpec[ColliderComponentSpec](raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("collider: %w", err))
		} else if err := validateShape("collider", c.Shape, c.Size, c.Radius, c.Length, colliderShapes); err != nil {
			errs = append(errs, err)
		} else if isMeshCollider(c.Shape) {
			if _, ok := spec.Components["mesh"]; !ok {
				errs = append(errs, fmt.Errorf("collider: shape %q needs a mesh component", c.Shape))
			}
		}
	}
	if raw, ok := spec.Components["rigid_body"]; ok {
		rb, err := DecodeComponentSpec[RigidBodyComponentSpec](raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("rigid_body: %w", err))
		} else if !bodyKinds[strings.ToLower(rb.Kind)] {
			errs = append(errs, fmt.Errorf("rigid_body %q: %w", rb.Kind, ErrUnknownKind))
		}
	}
	for _, name := range []string{"friction", "restitution"} {
		raw, ok := spec.Components[name]
		if !ok {
			continue
		}
		c, err := DecodeComponentSpec[CoefficientComponentSpec](raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		if !combineRules[strings.ToLower(c.Combine)] {
			errs = append(errs, fmt.Errorf("%s %q: %w", name, c.Combine, ErrUnknownCombine))
		}
		if c.Coefficient < 0 {
			errs = append(errs, fmt.Errorf("%s: coefficient %v is negative", name, c.Coefficient))
		}
	}
	return errors.Join(errs...)
}

func validateShape(what, shape string, size Vec3Spec, radius, length float64, known map[string]bool) error {
	shape = strings.ToLower(shape)
	if !known[shape] {
		return fmt.Errorf("%s %q: %w", what, shape, ErrUnknownShape)
	}
	switch shape {
	case "plane":
		v, err := size.Vec3()
		if err != nil {
			return fmt.Errorf("%s size: %w", what, err)
		}
		if v[0] <= 0 || v[2] <= 0 {
			return fmt.Errorf("%s plane %vx%v: %w", what, v[0], v[2], ErrNonPositive)
		}
	case "cuboid":
		v, err := size.Vec3()
		if err != nil {
			return fmt.Errorf("%s size: %w", what, err)
		}
		if v[0] <= 0 || v[1] <= 0 || v[2] <= 0 {
			return fmt.Errorf("%s cuboid %v: %w", what, v, ErrNonPositive)
		}
	case "sphere":
		if radius <= 0 {
			return fmt.Errorf("%s sphere radius %v: %w", what, radius, ErrNonPositive)
		}
	case "capsule":
		if radius <= 0 || length < 0 {
			return fmt.Errorf("%s capsule r=%v l=%v: %w", what, radius, length, ErrNonPositive)
		}
	}
	return nil
}

func isMeshCollider(shape string) bool {
	s := strings.ToLower(shape)
	return s == "mesh" || s == "trimesh_from_mesh"
}
