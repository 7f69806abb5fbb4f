package system

import (
	"log"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/redroom/common"
	"github.com/milk9111/redroom/ecs"
	"github.com/milk9111/redroom/ecs/component"
)

// The cp space simulates the floor plane: world X is cp X and world Z is
// cp Y. Heights, gravity and support are integrated here.

const (
	collisionTypeBody cp.CollisionType = iota + 1
	collisionTypeWall
)

const (
	maxSubSteps = 8
	// Bodies falling below the kill plane are put back at their spawn point.
	killPlaneY = -20.0
	// A support surface may sit this far above a body's previous bottom.
	supportEpsilon = 0.05
	// Slower bounces come to rest instead.
	bounceThreshold  = 0.5
	landedEventSpeed = 1.0
	// Planes whose normal has a smaller Y component are walls.
	floorNormalY  = 0.7
	wallThickness = 0.05
	// spinDrag scales how fast ground friction removes tumbling.
	spinDrag = 3.0
	// Bodies resting on a sphere or capsule slide off it at this fraction of gravity.
	roundedSlide = 0.5
	// Allowed overlap before cp pushes bodies apart.
	collisionSlop = 0.01

	defaultFriction    = 0.5
	defaultRestitution = 0.0
)

type PhysicsSystem struct {
	space         *cp.Space
	handlersReady bool

	entities map[ecs.Entity]*bodyInfo
	shapes   map[*cp.Shape]ecs.Entity
	// order is the ascending entity order bodies are integrated in.
	order []ecs.Entity

	accumulator float64
}

type bodyInfo struct {
	body   *cp.Body
	shapes []*cp.Shape
	static bool

	// floor is set for static surfaces that can carry bodies.
	floor *supportPlane
	// minY and maxY bound static shapes vertically.
	minY, maxY float64

	friction    component.Friction
	restitution component.Restitution

	// dynamic bodies only
	y, vy        float64
	halfHeight   float64
	spin         mgl64.Vec3
	rotation     mgl64.Quat
	spawn        mgl64.Vec3
	last         mgl64.Vec3
	gravityScale float64
	lockRotation bool
	// rounded bodies (spheres, capsules) cannot hold anything on top.
	rounded  bool
	grounded bool
	normal   mgl64.Vec3
	support  ecs.Entity
}

func (b *bodyInfo) verticalExtent() (float64, float64) {
	if b.static {
		return b.minY, b.maxY
	}
	return b.y - b.halfHeight, b.y + b.halfHeight
}

// supportPlane is an upward-facing surface with an XZ footprint.
type supportPlane struct {
	point  mgl64.Vec3
	normal mgl64.Vec3
	bb     cp.BB
}

// heightAt returns the surface height above (x, z) when inside the footprint.
func (p supportPlane) heightAt(x, z float64) (float64, bool) {
	if x < p.bb.L || x > p.bb.R || z < p.bb.B || z > p.bb.T {
		return 0, false
	}
	if p.normal[1] <= 0 {
		return 0, false
	}
	dx, dz := x-p.point[0], z-p.point[2]
	return p.point[1] - (p.normal[0]*dx+p.normal[2]*dz)/p.normal[1], true
}

func NewPhysicsSystem() *PhysicsSystem {
	return &PhysicsSystem{
		space:    newSpace(),
		entities: make(map[ecs.Entity]*bodyInfo),
		shapes:   make(map[*cp.Shape]ecs.Entity),
	}
}

func newSpace() *cp.Space {
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{})
	space.SetCollisionSlop(collisionSlop)
	return space
}

func (ps *PhysicsSystem) Space() *cp.Space {
	if ps == nil {
		return nil
	}
	return ps.space
}

// Reset drops every body and starts an empty space.
func (ps *PhysicsSystem) Reset() {
	if ps == nil {
		return
	}
	ps.space = newSpace()
	ps.handlersReady = false
	ps.entities = make(map[ecs.Entity]*bodyInfo)
	ps.shapes = make(map[*cp.Shape]ecs.Entity)
	ps.order = nil
	ps.accumulator = 0
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}
	if ps.space == nil {
		ps.Reset()
	}

	ps.ensureHandlers()
	ps.syncEntities(w)
	ps.syncIn(w)

	t := w.Time()
	dt := t.FixedDelta
	if dt <= 0 {
		dt = ecs.DefaultFixedDelta
	}
	ps.accumulator += t.Delta
	steps := 0
	for ps.accumulator >= dt && steps < maxSubSteps {
		ps.step(w, dt)
		ps.accumulator -= dt
		steps++
	}
	if steps == maxSubSteps && ps.accumulator >= dt {
		// too far behind; drop the backlog rather than spiral
		ps.accumulator = 0
	}

	ps.syncOut(w)
}

// Step advances the simulation by exactly one fixed step.
func (ps *PhysicsSystem) Step(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}
	ps.ensureHandlers()
	ps.syncEntities(w)
	ps.syncIn(w)
	ps.step(w, w.Time().FixedDelta)
	ps.syncOut(w)
}

func (ps *PhysicsSystem) ensureHandlers() {
	if ps.handlersReady || ps.space == nil {
		return
	}
	for _, other := range []cp.CollisionType{collisionTypeBody, collisionTypeWall} {
		handler := ps.space.NewCollisionHandler(collisionTypeBody, other)
		handler.UserData = ps
		handler.PreSolveFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
			sys, ok := userData.(*PhysicsSystem)
			if !ok || sys == nil {
				return true
			}
			shapeA, shapeB := arb.Shapes()
			a, b := sys.infoFor(shapeA), sys.infoFor(shapeB)
			if a == nil || b == nil {
				return true
			}
			return verticalOverlap(a, b)
		}
	}
	ps.handlersReady = true
}

// verticalOverlap ignores contacts between bodies stacked on each other or
// passing above a wall.
func verticalOverlap(a, b *bodyInfo) bool {
	aMin, aMax := a.verticalExtent()
	bMin, bMax := b.verticalExtent()
	return aMin < bMax-supportEpsilon && bMin < aMax-supportEpsilon
}

func (ps *PhysicsSystem) infoFor(shape *cp.Shape) *bodyInfo {
	e, ok := ps.shapes[shape]
	if !ok {
		return nil
	}
	return ps.entities[e]
}

func (ps *PhysicsSystem) syncEntities(w *ecs.World) {
	ps.cleanupEntities(w)

	entities := ecs.Query(w, component.RigidBodyComponent.Kind(), component.TransformComponent.Kind())
	ps.order = ps.order[:0]
	for _, e := range entities {
		if _, ok := ps.entities[e]; ok {
			ps.order = append(ps.order, e)
			continue
		}
		rb, _ := ecs.Get(w, e, component.RigidBodyComponent.Kind())
		transform, _ := ecs.Get(w, e, component.TransformComponent.Kind())
		geom, ok := resolveGeometry(w, e)
		if !ok {
			log.Printf("physics: entity %v has a rigid body but no collider or mesh", e)
			ps.entities[e] = &bodyInfo{static: true}
			continue
		}

		var info *bodyInfo
		switch rb.Kind {
		case component.BodyStatic:
			info = ps.createStatic(*transform, geom)
		case component.BodyDynamic:
			info = ps.createDynamic(*transform, geom, rb.LockRotation)
		}
		if info == nil {
			log.Printf("physics: entity %v: unsupported %s body", e, geom.shape)
			info = &bodyInfo{static: true}
		}
		info.friction = component.Friction{Coefficient: defaultFriction}
		if f, ok := ecs.Get(w, e, component.FrictionComponent.Kind()); ok {
			info.friction = *f
		}
		info.restitution = component.Restitution{Coefficient: defaultRestitution}
		if r, ok := ecs.Get(w, e, component.RestitutionComponent.Kind()); ok {
			info.restitution = *r
		}
		if info.body != nil && !info.static {
			ps.space.AddBody(info.body)
		}
		for _, shape := range info.shapes {
			shape.SetFriction(info.friction.Coefficient)
			shape.SetElasticity(info.restitution.Coefficient)
			ps.shapes[shape] = e
			ps.space.AddShape(shape)
		}
		ps.entities[e] = info
		ps.order = append(ps.order, e)

		rb.Body = info.body
		if len(info.shapes) > 0 {
			rb.Shape = info.shapes[0]
		}
	}
}

// geometry is a collider resolved against the entity's mesh.
type geometry struct {
	shape  component.MeshShape
	size   mgl64.Vec3
	radius float64
	length float64
}

func (g geometry) halfHeight() float64 {
	return component.Mesh{Shape: g.shape, Size: g.size, Radius: g.radius, Length: g.length}.HalfHeight()
}

func resolveGeometry(w *ecs.World, e ecs.Entity) (geometry, bool) {
	mesh, hasMesh := ecs.Get(w, e, component.MeshComponent.Kind())
	col, hasCol := ecs.Get(w, e, component.ColliderComponent.Kind())
	fromMesh := func() (geometry, bool) {
		if !hasMesh {
			return geometry{}, false
		}
		return geometry{shape: mesh.Shape, size: mesh.Size, radius: mesh.Radius, length: mesh.Length}, true
	}
	if !hasCol {
		return fromMesh()
	}
	switch col.Shape {
	case component.ColliderCuboid:
		return geometry{shape: component.MeshCuboid, size: col.Size}, true
	case component.ColliderSphere:
		return geometry{shape: component.MeshSphere, radius: col.Radius}, true
	case component.ColliderCapsule:
		return geometry{shape: component.MeshCapsule, radius: col.Radius, length: col.Length}, true
	default:
		return fromMesh()
	}
}

func (ps *PhysicsSystem) createStatic(t component.Transform, g geometry) *bodyInfo {
	info := &bodyInfo{static: true, body: ps.space.StaticBody}
	c := t.Translation
	switch g.shape {
	case component.MeshPlane:
		corners := planeCorners(t, g.size[0], g.size[2])
		normal := t.Rotation.Rotate(mgl64.Vec3{0, 1, 0}).Normalize()
		info.minY, info.maxY = math.Inf(1), math.Inf(-1)
		for _, p := range corners {
			info.minY = math.Min(info.minY, p[1])
			info.maxY = math.Max(info.maxY, p[1])
		}
		switch {
		case normal[1] >= floorNormalY:
			info.floor = &supportPlane{point: c, normal: normal, bb: footprint(corners)}
		case normal[1] <= -floorNormalY:
			// ceilings carry nothing
		default:
			a, b := farthestPair(corners)
			shape := cp.NewSegment(ps.space.StaticBody, a, b, wallThickness)
			shape.SetCollisionType(collisionTypeWall)
			info.shapes = append(info.shapes, shape)
		}
	case component.MeshCuboid:
		hx, hz := g.size[0]/2, g.size[2]/2
		bb := cp.BB{L: c[0] - hx, B: c[2] - hz, R: c[0] + hx, T: c[2] + hz}
		shape := cp.NewBox2(ps.space.StaticBody, bb, 0)
		shape.SetCollisionType(collisionTypeWall)
		info.shapes = append(info.shapes, shape)
		info.minY, info.maxY = c[1]-g.size[1]/2, c[1]+g.size[1]/2
		info.floor = &supportPlane{point: mgl64.Vec3{c[0], info.maxY, c[2]}, normal: mgl64.Vec3{0, 1, 0}, bb: bb}
	case component.MeshSphere, component.MeshCapsule:
		shape := cp.NewCircle(ps.space.StaticBody, g.radius, cp.Vector{X: c[0], Y: c[2]})
		shape.SetCollisionType(collisionTypeWall)
		info.shapes = append(info.shapes, shape)
		hh := g.halfHeight()
		info.minY, info.maxY = c[1]-hh, c[1]+hh
	default:
		return nil
	}
	return info
}

func (ps *PhysicsSystem) createDynamic(t component.Transform, g geometry, lockRotation bool) *bodyInfo {
	var (
		mass, moment float64
		newShape     func(body *cp.Body) *cp.Shape
	)
	switch g.shape {
	case component.MeshCuboid:
		if g.size[0] <= 0 || g.size[1] <= 0 || g.size[2] <= 0 {
			return nil
		}
		mass = g.size[0] * g.size[1] * g.size[2]
		moment = cp.MomentForBox(mass, g.size[0], g.size[2])
		newShape = func(body *cp.Body) *cp.Shape { return cp.NewBox(body, g.size[0], g.size[2], 0) }
	case component.MeshSphere, component.MeshCapsule:
		if g.radius <= 0 {
			return nil
		}
		mass = 4.0/3.0*math.Pi*g.radius*g.radius*g.radius + math.Pi*g.radius*g.radius*g.length
		moment = cp.MomentForCircle(mass, 0, g.radius, cp.Vector{})
		newShape = func(body *cp.Body) *cp.Shape { return cp.NewCircle(body, g.radius, cp.Vector{}) }
	default:
		return nil
	}
	if lockRotation {
		moment = cp.INFINITY
	}

	body := cp.NewBody(mass, moment)
	body.SetPosition(cp.Vector{X: t.Translation[0], Y: t.Translation[2]})
	shape := newShape(body)
	shape.SetCollisionType(collisionTypeBody)

	rot := t.Rotation
	if rot.Len() < 1e-9 {
		rot = mgl64.QuatIdent()
	}
	return &bodyInfo{
		rounded:      g.shape != component.MeshCuboid,
		body:         body,
		shapes:       []*cp.Shape{shape},
		y:            t.Translation[1],
		halfHeight:   g.halfHeight(),
		rotation:     rot,
		spawn:        t.Translation,
		last:         t.Translation,
		gravityScale: 1,
		lockRotation: lockRotation,
		normal:       mgl64.Vec3{0, 1, 0},
	}
}

func planeCorners(t component.Transform, sx, sz float64) [4]mgl64.Vec3 {
	m := t.Matrix()
	local := [4]mgl64.Vec3{
		{-sx / 2, 0, -sz / 2},
		{sx / 2, 0, -sz / 2},
		{sx / 2, 0, sz / 2},
		{-sx / 2, 0, sz / 2},
	}
	var out [4]mgl64.Vec3
	for i, p := range local {
		out[i] = m.Mul4x1(p.Vec4(1)).Vec3()
	}
	return out
}

func footprint(points [4]mgl64.Vec3) cp.BB {
	bb := cp.BB{L: math.Inf(1), B: math.Inf(1), R: math.Inf(-1), T: math.Inf(-1)}
	for _, p := range points {
		bb.L = math.Min(bb.L, p[0])
		bb.R = math.Max(bb.R, p[0])
		bb.B = math.Min(bb.B, p[2])
		bb.T = math.Max(bb.T, p[2])
	}
	return bb
}

// farthestPair returns the two corners farthest apart in XZ, which span a
// vertical wall's footprint.
func farthestPair(points [4]mgl64.Vec3) (cp.Vector, cp.Vector) {
	var a, b cp.Vector
	best := -1.0
	for i := range points {
		for j := i + 1; j < len(points); j++ {
			pi := cp.Vector{X: points[i][0], Y: points[i][2]}
			pj := cp.Vector{X: points[j][0], Y: points[j][2]}
			if d := pi.Distance(pj); d > best {
				best, a, b = d, pi, pj
			}
		}
	}
	return a, b
}

// syncIn copies ECS state that other systems may have changed into the
// simulation: velocities, gravity scale and teleports.
func (ps *PhysicsSystem) syncIn(w *ecs.World) {
	for _, e := range ps.order {
		info := ps.entities[e]
		if info == nil || info.static {
			continue
		}
		if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok && t.Translation.Sub(info.last).Len() > 1e-6 {
			info.body.SetPosition(cp.Vector{X: t.Translation[0], Y: t.Translation[2]})
			info.y = t.Translation[1]
			info.last = t.Translation
		}
		if v, ok := ecs.Get(w, e, component.LinearVelocityComponent.Kind()); ok {
			info.body.SetVelocity(v.Value[0], v.Value[2])
			info.vy = v.Value[1]
		}
		if av, ok := ecs.Get(w, e, component.AngularVelocityComponent.Kind()); ok && !info.lockRotation {
			info.spin = mgl64.Vec3{av.Value[0], 0, av.Value[2]}
			info.body.SetAngularVelocity(-av.Value[1])
		}
		info.gravityScale = 1
		if gs, ok := ecs.Get(w, e, component.GravityScaleComponent.Kind()); ok {
			info.gravityScale = gs.Scale
		}
	}
}

func (ps *PhysicsSystem) step(w *ecs.World, dt float64) {
	if dt <= 0 {
		return
	}
	ps.space.Step(dt)
	for _, e := range ps.order {
		info := ps.entities[e]
		if info == nil || info.static || info.body == nil {
			continue
		}
		ps.integrateVertical(w, e, info, dt)
		ps.integrateRotation(info, dt)
		if info.y < killPlaneY {
			log.Printf("physics: entity %v fell out of the world, respawning", e)
			info.body.SetPosition(cp.Vector{X: info.spawn[0], Y: info.spawn[2]})
			info.body.SetVelocity(0, 0)
			info.y, info.vy = info.spawn[1], 0
		}
	}
}

func (ps *PhysicsSystem) integrateVertical(w *ecs.World, e ecs.Entity, info *bodyInfo, dt float64) {
	g := common.Gravity * info.gravityScale
	prevBottom := info.y - info.halfHeight
	info.vy -= g * dt
	info.y += info.vy * dt

	pos := info.body.Position()
	height, sup, ok := ps.findSupport(e, info, pos, prevBottom)
	info.grounded = false
	info.support = 0
	info.normal = mgl64.Vec3{0, 1, 0}
	if !ok || info.y-info.halfHeight > height {
		return
	}

	info.y = height + info.halfHeight
	if info.vy > 0 {
		return
	}
	impact := -info.vy
	rule := component.PriorityRule(info.restitution.Combine, sup.restitution.Combine)
	bounce := impact * rule.Combine(info.restitution.Coefficient, sup.restitution.Coefficient)
	if bounce > bounceThreshold {
		info.vy = bounce
	} else {
		info.vy = 0
		info.grounded = true
		info.support = sup.entity
		info.normal = sup.normal
	}
	if impact > landedEventSpeed {
		w.Events().Push(ecs.Event{Type: ecs.EventBodyLanded, Data: ecs.LandedEvent{Entity: e, Speed: impact}})
	}
	if !info.grounded {
		return
	}
	if sup.rounded {
		away := pos.Sub(sup.center)
		if away.Length() < 1e-6 {
			away = cp.Vector{X: 0, Y: -1}
		}
		info.body.SetVelocityVector(info.body.Velocity().Add(away.Normalize().Mult(roundedSlide * g * dt)))
		return
	}

	frule := component.PriorityRule(info.friction.Combine, sup.friction.Combine)
	mu := frule.Combine(info.friction.Coefficient, sup.friction.Coefficient)
	if mu <= 0 {
		return
	}
	decel := mu * g * dt
	v := info.body.Velocity()
	if speed := v.Length(); speed <= decel {
		info.body.SetVelocity(0, 0)
	} else {
		info.body.SetVelocityVector(v.Mult(1 - decel/speed))
	}
	damp := math.Max(0, 1-mu*spinDrag*dt)
	info.spin = info.spin.Mul(damp)
	info.body.SetAngularVelocity(info.body.AngularVelocity() * damp)
}

type supportInfo struct {
	entity      ecs.Entity
	rounded     bool
	center      cp.Vector
	normal      mgl64.Vec3
	friction    component.Friction
	restitution component.Restitution
}

// findSupport returns the highest surface under the body that is not above
// its previous bottom: floors, static tops and other bodies' tops.
func (ps *PhysicsSystem) findSupport(self ecs.Entity, info *bodyInfo, pos cp.Vector, prevBottom float64) (float64, supportInfo, bool) {
	best := math.Inf(-1)
	var sup supportInfo
	found := false
	consider := func(h float64, e ecs.Entity, other *bodyInfo, normal mgl64.Vec3) {
		if h > prevBottom+supportEpsilon || h <= best {
			return
		}
		best, found = h, true
		sup = supportInfo{entity: e, normal: normal, friction: other.friction, restitution: other.restitution}
		if !other.static && other.body != nil {
			sup.rounded = other.rounded
			sup.center = other.body.Position()
		}
	}

	for _, e := range ps.order {
		other := ps.entities[e]
		if other == nil || other.floor == nil {
			continue
		}
		if h, ok := other.floor.heightAt(pos.X, pos.Y); ok {
			consider(h, e, other, other.floor.normal)
		}
	}

	var bb cp.BB
	for i, shape := range info.shapes {
		if i == 0 {
			bb = shape.BB()
		} else {
			bb = bb.Merge(shape.BB())
		}
	}
	ps.space.BBQuery(bb, cp.SHAPE_FILTER_ALL, func(shape *cp.Shape, _ interface{}) {
		e, ok := ps.shapes[shape]
		if !ok || e == self {
			return
		}
		other := ps.entities[e]
		if other == nil || other.static {
			return
		}
		consider(other.y+other.halfHeight, e, other, mgl64.Vec3{0, 1, 0})
	}, nil)

	return best, sup, found
}

func (ps *PhysicsSystem) integrateRotation(info *bodyInfo, dt float64) {
	if info.lockRotation {
		return
	}
	omega := mgl64.Vec3{info.spin[0], -info.body.AngularVelocity(), info.spin[2]}
	if omega.Len() < 1e-12 {
		return
	}
	dq := mgl64.Quat{V: omega}.Mul(info.rotation).Scale(0.5 * dt)
	info.rotation = info.rotation.Add(dq).Normalize()
}

func (ps *PhysicsSystem) syncOut(w *ecs.World) {
	for _, e := range ps.order {
		info := ps.entities[e]
		if info == nil || info.static || info.body == nil {
			continue
		}
		pos := info.body.Position()
		vel := info.body.Velocity()

		if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
			t.Translation = mgl64.Vec3{pos.X, info.y, pos.Y}
			if !info.lockRotation {
				t.Rotation = info.rotation
			}
			info.last = t.Translation
		}

		lin := mgl64.Vec3{vel.X, info.vy, vel.Y}
		if v, ok := ecs.Get(w, e, component.LinearVelocityComponent.Kind()); ok {
			v.Value = lin
		} else {
			_ = ecs.Add(w, e, component.LinearVelocityComponent.Kind(), &component.LinearVelocity{Value: lin})
		}

		ang := mgl64.Vec3{}
		if !info.lockRotation {
			ang = mgl64.Vec3{info.spin[0], -info.body.AngularVelocity(), info.spin[2]}
		}
		if av, ok := ecs.Get(w, e, component.AngularVelocityComponent.Kind()); ok {
			av.Value = ang
		} else {
			_ = ecs.Add(w, e, component.AngularVelocityComponent.Kind(), &component.AngularVelocity{Value: ang})
		}

		contact := component.GroundContact{Grounded: info.grounded, Normal: info.normal, Support: uint64(info.support)}
		if gc, ok := ecs.Get(w, e, component.GroundContactComponent.Kind()); ok {
			*gc = contact
		} else {
			_ = ecs.Add(w, e, component.GroundContactComponent.Kind(), &contact)
		}

		if rb, ok := ecs.Get(w, e, component.RigidBodyComponent.Kind()); ok {
			rb.Body = info.body
			if len(info.shapes) > 0 {
				rb.Shape = info.shapes[0]
			}
		}
	}
}

func (ps *PhysicsSystem) cleanupEntities(w *ecs.World) {
	for e, info := range ps.entities {
		if ecs.IsAlive(w, e) && ecs.Has(w, e, component.RigidBodyComponent.Kind()) {
			continue
		}
		for _, shape := range info.shapes {
			if shape == nil {
				continue
			}
			if shape.Space() != nil {
				ps.space.RemoveShape(shape)
			}
			delete(ps.shapes, shape)
		}
		if info.body != nil && !info.static {
			ps.space.RemoveBody(info.body)
		}
		delete(ps.entities, e)
	}
}

// Floors returns the XZ footprints of every support surface.
func (ps *PhysicsSystem) Floors() []cp.BB {
	if ps == nil {
		return nil
	}
	var out []cp.BB
	for _, e := range ps.order {
		if info := ps.entities[e]; info != nil && info.floor != nil {
			out = append(out, info.floor.bb)
		}
	}
	return out
}
