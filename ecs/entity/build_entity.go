package entity

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/redroom/common"
	"github.com/milk9111/redroom/ecs"
	"github.com/milk9111/redroom/ecs/component"
	"github.com/milk9111/redroom/prefabs"
)

type entityPrefabSpec = prefabs.EntityBuildSpec

type buildContext struct {
	PrefabPath string
}

type componentBuildFn func(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error

var componentRegistry = map[string]componentBuildFn{
	"player_tag":           addPlayerTag,
	"camera_tag":           addCameraTag,
	"player":               addPlayer,
	"input":                addInput,
	"transform":            addTransform,
	"mesh":                 addMesh,
	"material":             addMaterial,
	"render_layer":         addRenderLayer,
	"sprite":               addSprite,
	"rigid_body":           addRigidBody,
	"collider":             addCollider,
	"linear_velocity":      addLinearVelocity,
	"angular_velocity":     addAngularVelocity,
	"friction":             addFriction,
	"restitution":          addRestitution,
	"gravity_scale":        addGravityScale,
	"character_controller": addCharacterController,
	"point_light":          addPointLight,
	"ambient_light":        addAmbientLight,
	"camera3d":             addCamera3D,
	"camera_follow":        addCameraFollow,
	"camera2d":             addCamera2D,
}

// Transform comes before camera3d (focus) and collider (mesh sizes).
var componentBuildOrder = []string{
	"player_tag",
	"camera_tag",
	"player",
	"input",
	"transform",
	"mesh",
	"material",
	"render_layer",
	"sprite",
	"rigid_body",
	"collider",
	"linear_velocity",
	"angular_velocity",
	"friction",
	"restitution",
	"gravity_scale",
	"character_controller",
	"point_light",
	"ambient_light",
	"camera3d",
	"camera_follow",
	"camera2d",
}

// BuildEntity loads a prefab file and builds one entity from it.
func BuildEntity(w *ecs.World, prefabPath string) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}

	spec, err := prefabs.LoadEntityBuildSpec(prefabPath)
	if err != nil {
		return 0, fmt.Errorf("build entity: load %q: %w", prefabPath, err)
	}
	if len(spec.Components) == 0 {
		return 0, fmt.Errorf("build entity: prefab %q does not define components", prefabPath)
	}
	return BuildEntitySpec(w, spec, prefabPath)
}

// BuildEntitySpec builds an entity from an already resolved spec. On any
// error the half-built entity is destroyed.
func BuildEntitySpec(w *ecs.World, spec entityPrefabSpec, source string) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}
	label := source
	if spec.Name != "" {
		label = spec.Name
	}

	e := ecs.CreateEntity(w)
	ctx := &buildContext{PrefabPath: source}

	remaining := make(map[string]any, len(spec.Components))
	for k, v := range spec.Components {
		remaining[k] = v
	}

	for _, name := range componentBuildOrder {
		raw, ok := remaining[name]
		if !ok {
			continue
		}
		if err := componentRegistry[name](w, e, raw, ctx); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, fmt.Errorf("build entity: %q: add %q: %w", label, name, err)
		}
		delete(remaining, name)
	}

	if len(remaining) > 0 {
		names := make([]string, 0, len(remaining))
		for name := range remaining {
			names = append(names, name)
		}
		sort.Strings(names)
		ecs.DestroyEntity(w, e)
		return 0, fmt.Errorf("build entity: %q: no builder for component %q", label, names[0])
	}

	if spec.Name != "" {
		if err := ecs.Add(w, e, component.NameComponent.Kind(), &component.Name{Value: spec.Name}); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, fmt.Errorf("build entity: %q: add name: %w", label, err)
		}
	}

	return e, nil
}

func addPlayerTag(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.PlayerTagComponent.Kind(), &component.PlayerTag{})
}

func addCameraTag(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.CameraTagComponent.Kind(), &component.CameraTag{})
}

func addInput(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.InputComponent.Kind(), &component.Input{})
}

type playerSpec = prefabs.PlayerComponentSpec

func addPlayer(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[playerSpec](raw)
	if err != nil {
		return fmt.Errorf("decode player spec: %w", err)
	}
	if spec.MoveSpeed == 0 {
		spec.MoveSpeed = 150
	}
	return ecs.Add(w, e, component.PlayerComponent.Kind(), &component.Player{MoveSpeed: spec.MoveSpeed})
}

type transformSpec = prefabs.TransformComponentSpec

func addTransform(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[transformSpec](raw)
	if err != nil {
		return fmt.Errorf("decode transform spec: %w", err)
	}
	t, err := TransformFromSpec(spec)
	if err != nil {
		return err
	}
	return ecs.Add(w, e, component.TransformComponent.Kind(), &t)
}

// TransformFromSpec converts a transform spec. An explicit quaternion wins
// over rotation_deg; look_at is applied last.
func TransformFromSpec(spec transformSpec) (component.Transform, error) {
	t := component.NewTransform(0, 0, 0)
	if spec.Translation != nil {
		v, err := spec.Translation.Vec3()
		if err != nil {
			return t, fmt.Errorf("translation: %w", err)
		}
		t.Translation = v
	}
	if spec.Scale != nil {
		v, err := spec.Scale.Vec3()
		if err != nil {
			return t, fmt.Errorf("scale: %w", err)
		}
		t.Scale = v
	}
	switch {
	case spec.Rotation != nil:
		q := mgl64.Quat{W: spec.Rotation.W, V: mgl64.Vec3{spec.Rotation.X, spec.Rotation.Y, spec.Rotation.Z}}
		if q.Len() < 1e-9 {
			return t, fmt.Errorf("rotation: zero quaternion")
		}
		t.Rotation = q.Normalize()
	case spec.RotationDeg != nil:
		v, err := spec.RotationDeg.Vec3()
		if err != nil {
			return t, fmt.Errorf("rotation_deg: %w", err)
		}
		qx := mgl64.QuatRotate(common.Deg2Rad(v[0]), mgl64.Vec3{1, 0, 0})
		qy := mgl64.QuatRotate(common.Deg2Rad(v[1]), mgl64.Vec3{0, 1, 0})
		qz := mgl64.QuatRotate(common.Deg2Rad(v[2]), mgl64.Vec3{0, 0, 1})
		t.Rotation = qz.Mul(qy).Mul(qx).Normalize()
	}
	if spec.LookAt != nil {
		v, err := spec.LookAt.Vec3()
		if err != nil {
			return t, fmt.Errorf("look_at: %w", err)
		}
		t.LookAt(v, mgl64.Vec3{0, 1, 0})
	}
	return t, nil
}

type meshSpec = prefabs.MeshComponentSpec

func addMesh(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[meshSpec](raw)
	if err != nil {
		return fmt.Errorf("decode mesh spec: %w", err)
	}
	m := component.Mesh{Radius: spec.Radius, Length: spec.Length}
	switch strings.ToLower(spec.Shape) {
	case "plane":
		m.Shape = component.MeshPlane
	case "cuboid":
		m.Shape = component.MeshCuboid
	case "sphere":
		m.Shape = component.MeshSphere
	case "capsule":
		m.Shape = component.MeshCapsule
	default:
		return fmt.Errorf("unknown mesh shape %q", spec.Shape)
	}
	if spec.Size != nil {
		v, err := spec.Size.Vec3()
		if err != nil {
			return fmt.Errorf("size: %w", err)
		}
		m.Size = v
	}
	return ecs.Add(w, e, component.MeshComponent.Kind(), &m)
}

type materialSpec = prefabs.MaterialComponentSpec

func addMaterial(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[materialSpec](raw)
	if err != nil {
		return fmt.Errorf("decode material spec: %w", err)
	}
	mat := component.Material{Color: common.SRGB(1, 1, 1), Unlit: spec.Unlit}
	if spec.Color.Set {
		mat.Color = spec.Color.NRGBA
	}
	return ecs.Add(w, e, component.MaterialComponent.Kind(), &mat)
}

type renderLayerSpec = prefabs.RenderLayerComponentSpec

func addRenderLayer(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[renderLayerSpec](raw)
	if err != nil {
		return fmt.Errorf("decode render layer spec: %w", err)
	}
	return ecs.Add(w, e, component.RenderLayerComponent.Kind(), &component.RenderLayer{Index: spec.Index})
}

type spriteSpec = prefabs.SpriteComponentSpec

// addSprite records the texture name only; the flat renderer creates the
// image on first draw so entities can be built without a graphics context.
func addSprite(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[spriteSpec](raw)
	if err != nil {
		return fmt.Errorf("decode sprite spec: %w", err)
	}
	if spec.Texture == "" {
		return fmt.Errorf("sprite texture is required")
	}
	sprite := component.Sprite{
		Texture:      spec.Texture,
		OriginX:      spec.OriginX,
		OriginY:      spec.OriginY,
		CenterOrigin: spec.CenterOrigin,
	}
	return ecs.Add(w, e, component.SpriteComponent.Kind(), &sprite)
}

type rigidBodySpec = prefabs.RigidBodyComponentSpec

func addRigidBody(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[rigidBodySpec](raw)
	if err != nil {
		return fmt.Errorf("decode rigid body spec: %w", err)
	}
	rb := component.RigidBody{LockRotation: spec.LockRotation}
	switch strings.ToLower(spec.Kind) {
	case "static":
		rb.Kind = component.BodyStatic
	case "dynamic":
		rb.Kind = component.BodyDynamic
	default:
		return fmt.Errorf("unknown body kind %q", spec.Kind)
	}
	return ecs.Add(w, e, component.RigidBodyComponent.Kind(), &rb)
}

type colliderSpec = prefabs.ColliderComponentSpec

func addCollider(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[colliderSpec](raw)
	if err != nil {
		return fmt.Errorf("decode collider spec: %w", err)
	}
	c := component.Collider{Radius: spec.Radius, Length: spec.Length}
	switch strings.ToLower(spec.Shape) {
	case "mesh", "trimesh_from_mesh":
		if !ecs.Has(w, e, component.MeshComponent.Kind()) {
			return fmt.Errorf("collider shape %q needs a mesh", spec.Shape)
		}
		c.Shape = component.ColliderFromMesh
	case "cuboid":
		c.Shape = component.ColliderCuboid
	case "sphere":
		c.Shape = component.ColliderSphere
	case "capsule":
		c.Shape = component.ColliderCapsule
	default:
		return fmt.Errorf("unknown collider shape %q", spec.Shape)
	}
	if spec.Size != nil {
		v, err := spec.Size.Vec3()
		if err != nil {
			return fmt.Errorf("size: %w", err)
		}
		c.Size = v
	}
	return ecs.Add(w, e, component.ColliderComponent.Kind(), &c)
}

type velocitySpec = prefabs.VelocityComponentSpec

func decodeVelocity(raw any) (mgl64.Vec3, error) {
	spec, err := prefabs.DecodeComponentSpec[velocitySpec](raw)
	if err != nil {
		return mgl64.Vec3{}, fmt.Errorf("decode velocity spec: %w", err)
	}
	if spec.Value == nil {
		return mgl64.Vec3{}, nil
	}
	return spec.Value.Vec3()
}

func addLinearVelocity(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	v, err := decodeVelocity(raw)
	if err != nil {
		return err
	}
	return ecs.Add(w, e, component.LinearVelocityComponent.Kind(), &component.LinearVelocity{Value: v})
}

func addAngularVelocity(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	v, err := decodeVelocity(raw)
	if err != nil {
		return err
	}
	return ecs.Add(w, e, component.AngularVelocityComponent.Kind(), &component.AngularVelocity{Value: v})
}

type coefficientSpec = prefabs.CoefficientComponentSpec

// ParseCombineRule maps a prefab combine name to its rule. Empty is Average.
func ParseCombineRule(name string) (component.CombineRule, error) {
	switch strings.ToLower(name) {
	case "", "average":
		return component.CombineAverage, nil
	case "min":
		return component.CombineMin, nil
	case "max":
		return component.CombineMax, nil
	case "multiply":
		return component.CombineMultiply, nil
	default:
		return 0, fmt.Errorf("unknown combine rule %q", name)
	}
}

func decodeCoefficient(raw any) (float64, component.CombineRule, error) {
	spec, err := prefabs.DecodeComponentSpec[coefficientSpec](raw)
	if err != nil {
		return 0, 0, fmt.Errorf("decode coefficient spec: %w", err)
	}
	if spec.Coefficient < 0 {
		return 0, 0, fmt.Errorf("coefficient %v is negative", spec.Coefficient)
	}
	rule, err := ParseCombineRule(spec.Combine)
	if err != nil {
		return 0, 0, err
	}
	return spec.Coefficient, rule, nil
}

func addFriction(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	c, rule, err := decodeCoefficient(raw)
	if err != nil {
		return err
	}
	return ecs.Add(w, e, component.FrictionComponent.Kind(), &component.Friction{Coefficient: c, Combine: rule})
}

func addRestitution(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	c, rule, err := decodeCoefficient(raw)
	if err != nil {
		return err
	}
	return ecs.Add(w, e, component.RestitutionComponent.Kind(), &component.Restitution{Coefficient: c, Combine: rule})
}

type gravityScaleSpec = prefabs.GravityScaleComponentSpec

func addGravityScale(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[gravityScaleSpec](raw)
	if err != nil {
		return fmt.Errorf("decode gravity scale spec: %w", err)
	}
	return ecs.Add(w, e, component.GravityScaleComponent.Kind(), &component.GravityScale{Scale: spec.Scale})
}

type characterControllerSpec = prefabs.CharacterControllerComponentSpec

func addCharacterController(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[characterControllerSpec](raw)
	if err != nil {
		return fmt.Errorf("decode character controller spec: %w", err)
	}
	if spec.Damping <= 0 || spec.Damping > 1 {
		return fmt.Errorf("damping %v must be in (0, 1]", spec.Damping)
	}
	return ecs.Add(w, e, component.CharacterControllerComponent.Kind(), &component.CharacterController{
		Acceleration:  spec.Acceleration,
		Damping:       spec.Damping,
		JumpImpulse:   spec.JumpImpulse,
		MaxSlopeAngle: common.Deg2Rad(spec.MaxSlopeDeg),
	})
}

type pointLightSpec = prefabs.PointLightComponentSpec

func addPointLight(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[pointLightSpec](raw)
	if err != nil {
		return fmt.Errorf("decode point light spec: %w", err)
	}
	light := component.PointLight{
		Color:          common.SRGB(1, 1, 1),
		Intensity:      spec.Intensity,
		Range:          spec.Range,
		ShadowsEnabled: spec.ShadowsEnabled,
	}
	if spec.Color.Set {
		light.Color = spec.Color.NRGBA
	}
	if light.Intensity == 0 {
		light.Intensity = 1
	}
	if light.Range <= 0 {
		light.Range = 20
	}
	return ecs.Add(w, e, component.PointLightComponent.Kind(), &light)
}

type ambientLightSpec = prefabs.AmbientLightComponentSpec

func addAmbientLight(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[ambientLightSpec](raw)
	if err != nil {
		return fmt.Errorf("decode ambient light spec: %w", err)
	}
	light := component.AmbientLight{Color: common.SRGB(1, 1, 1), Brightness: spec.Brightness}
	if spec.Color.Set {
		light.Color = spec.Color.NRGBA
	}
	return ecs.Add(w, e, component.AmbientLightComponent.Kind(), &light)
}

type camera3DSpec = prefabs.Camera3DComponentSpec

// addCamera3D sets the focus to the point the transform looks at, as far
// along its forward axis as the camera is from the origin.
func addCamera3D(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[camera3DSpec](raw)
	if err != nil {
		return fmt.Errorf("decode camera3d spec: %w", err)
	}
	cam := component.Camera3D{
		FOV:  common.Deg2Rad(spec.FOVDeg),
		Near: spec.Near,
		Far:  spec.Far,
		Up:   mgl64.Vec3{0, 1, 0},
	}
	if cam.FOV <= 0 || cam.FOV >= math.Pi {
		cam.FOV = common.Deg2Rad(45)
	}
	if cam.Near <= 0 {
		cam.Near = 0.1
	}
	if cam.Far <= cam.Near {
		cam.Far = 1000
	}
	if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
		dist := t.Translation.Len()
		if dist < 1 {
			dist = 10
		}
		cam.Focus = t.Translation.Add(t.Forward().Mul(dist))
	}
	return ecs.Add(w, e, component.Camera3DComponent.Kind(), &cam)
}

type cameraFollowSpec = prefabs.CameraFollowComponentSpec

const (
	defaultFollowSpeed    = 2.0
	defaultFollowDeadzone = 0.4
)

func addCameraFollow(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[cameraFollowSpec](raw)
	if err != nil {
		return fmt.Errorf("decode camera follow spec: %w", err)
	}
	follow := component.CameraFollow{TargetName: spec.Target, Speed: spec.Speed, Deadzone: defaultFollowDeadzone}
	if follow.Speed <= 0 {
		follow.Speed = defaultFollowSpeed
	}
	if spec.Deadzone != nil {
		follow.Deadzone = *spec.Deadzone
	}
	return ecs.Add(w, e, component.CameraFollowComponent.Kind(), &follow)
}

type camera2DSpec = prefabs.Camera2DComponentSpec

func addCamera2D(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[camera2DSpec](raw)
	if err != nil {
		return fmt.Errorf("decode camera2d spec: %w", err)
	}
	if spec.Zoom <= 0 {
		spec.Zoom = 1
	}
	return ecs.Add(w, e, component.Camera2DComponent.Kind(), &component.Camera2D{Zoom: spec.Zoom})
}
