package prefabs

import (
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

var ErrBadVector = errors.New("prefabs: vector must have 3 components")

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// EntityBuildSpec is a named bag of component specs keyed by component name.
type EntityBuildSpec struct {
	Name       string         `yaml:"name"`
	Components map[string]any `yaml:"components"`
}

func LoadEntityBuildSpec(filename string) (EntityBuildSpec, error) {
	return LoadSpec[EntityBuildSpec](filename)
}

// SceneSpec lists the entities spawned when a scene starts.
type SceneSpec struct {
	Name     string            `yaml:"name"`
	Entities []SceneEntitySpec `yaml:"entities"`
}

// SceneEntitySpec either inlines components or references a prefab file whose
// components it can override one component at a time.
type SceneEntitySpec struct {
	Prefab     string         `yaml:"prefab"`
	Name       string         `yaml:"name"`
	Components map[string]any `yaml:"components"`
}

func LoadSceneSpec(filename string) (SceneSpec, error) {
	return LoadSpec[SceneSpec](filename)
}

// Resolve returns the entity spec with any referenced prefab merged in.
func (s SceneEntitySpec) Resolve() (EntityBuildSpec, error) {
	out := EntityBuildSpec{Name: s.Name, Components: map[string]any{}}
	if s.Prefab != "" {
		base, err := LoadEntityBuildSpec(s.Prefab)
		if err != nil {
			return EntityBuildSpec{}, err
		}
		if out.Name == "" {
			out.Name = base.Name
		}
		for k, v := range base.Components {
			out.Components[k] = v
		}
	}
	for k, v := range s.Components {
		out.Components[k] = v
	}
	if len(out.Components) == 0 {
		return EntityBuildSpec{}, fmt.Errorf("prefabs: entity %q defines no components", s.label())
	}
	return out, nil
}

func (s SceneEntitySpec) label() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Prefab
}

// ResolveAll resolves every entity of the scene in file order.
func (s SceneSpec) ResolveAll() ([]EntityBuildSpec, error) {
	out := make([]EntityBuildSpec, 0, len(s.Entities))
	for i, e := range s.Entities {
		spec, err := e.Resolve()
		if err != nil {
			return nil, fmt.Errorf("prefabs: scene %q entity %d: %w", s.Name, i, err)
		}
		out = append(out, spec)
	}
	return out, nil
}

// ComponentNames returns the component keys in sorted order.
func (s EntityBuildSpec) ComponentNames() []string {
	names := make([]string, 0, len(s.Components))
	for name := range s.Components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

// Vec3Spec is written as a three element YAML sequence.
type Vec3Spec []float64

func (v Vec3Spec) Vec3() ([3]float64, error) {
	if len(v) != 3 {
		return [3]float64{}, fmt.Errorf("%w, got %d", ErrBadVector, len(v))
	}
	return [3]float64{v[0], v[1], v[2]}, nil
}

type QuatSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
	W float64 `yaml:"w"`
}

type TransformComponentSpec struct {
	Translation Vec3Spec  `yaml:"translation"`
	Rotation    *QuatSpec `yaml:"rotation"`
	// RotationDeg is applied as X, then Y, then Z rotations in degrees.
	RotationDeg Vec3Spec `yaml:"rotation_deg"`
	Scale       Vec3Spec `yaml:"scale"`
	LookAt      Vec3Spec `yaml:"look_at"`
}

type MeshComponentSpec struct {
	Shape  string   `yaml:"shape"`
	Size   Vec3Spec `yaml:"size"`
	Radius float64  `yaml:"radius"`
	Length float64  `yaml:"length"`
}

type MaterialComponentSpec struct {
	Color YAMLColor `yaml:"color"`
	Unlit bool      `yaml:"unlit"`
}

type RenderLayerComponentSpec struct {
	Index int `yaml:"index"`
}

type RigidBodyComponentSpec struct {
	Kind         string `yaml:"kind"`
	LockRotation bool   `yaml:"lock_rotation"`
}

type ColliderComponentSpec struct {
	Shape  string   `yaml:"shape"`
	Size   Vec3Spec `yaml:"size"`
	Radius float64  `yaml:"radius"`
	Length float64  `yaml:"length"`
}

type VelocityComponentSpec struct {
	Value Vec3Spec `yaml:"value"`
}

type CoefficientComponentSpec struct {
	Coefficient float64 `yaml:"coefficient"`
	Combine     string  `yaml:"combine"`
}

type GravityScaleComponentSpec struct {
	Scale float64 `yaml:"scale"`
}

type CharacterControllerComponentSpec struct {
	Acceleration float64 `yaml:"acceleration"`
	Damping      float64 `yaml:"damping"`
	JumpImpulse  float64 `yaml:"jump_impulse"`
	MaxSlopeDeg  float64 `yaml:"max_slope_deg"`
}

type PointLightComponentSpec struct {
	Color          YAMLColor `yaml:"color"`
	Intensity      float64   `yaml:"intensity"`
	Range          float64   `yaml:"range"`
	ShadowsEnabled bool      `yaml:"shadows_enabled"`
}

type AmbientLightComponentSpec struct {
	Color      YAMLColor `yaml:"color"`
	Brightness float64   `yaml:"brightness"`
}

type Camera3DComponentSpec struct {
	FOVDeg float64 `yaml:"fov_deg"`
	Near   float64 `yaml:"near"`
	Far    float64 `yaml:"far"`
}

type CameraFollowComponentSpec struct {
	Target string  `yaml:"target"`
	Speed  float64 `yaml:"speed"`
	// Deadzone is optional so an explicit 0 disables it.
	Deadzone *float64 `yaml:"deadzone"`
}

type Camera2DComponentSpec struct {
	Zoom float64 `yaml:"zoom"`
}

type PlayerComponentSpec struct {
	MoveSpeed float64 `yaml:"move_speed"`
}

type SpriteComponentSpec struct {
	Texture string  `yaml:"texture"`
	OriginX float64 `yaml:"origin_x"`
	OriginY float64 `yaml:"origin_y"`
	// CenterOrigin places the origin at the texture centre.
	CenterOrigin bool `yaml:"center_origin"`
}
