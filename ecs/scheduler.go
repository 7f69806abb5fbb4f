package ecs

import "github.com/hajimehoshi/ebiten/v2"

// System updates a world each frame.
type System interface {
	Update(w *World)
}

// SystemFunc adapts a function to System.
type SystemFunc func(w *World)

func (f SystemFunc) Update(w *World) { f(w) }

// RenderSystem draws ECS entities each frame.
type RenderSystem interface {
	Draw(w *World, screen *ebiten.Image)
}

// Condition decides whether a scheduled system runs this frame.
type Condition func(w *World) bool

// InState runs a system only while the game is in state s.
func InState(s GameState) Condition {
	return func(w *World) bool {
		return w.State().Current() == s
	}
}

type scheduled struct {
	system     System
	conditions []Condition
}

func (s scheduled) shouldRun(w *World) bool {
	for _, cond := range s.conditions {
		if cond != nil && !cond(w) {
			return false
		}
	}
	return true
}

// Scheduler runs systems in registration order, fires state enter/exit
// systems and flushes the event queue at the end of each update.
type Scheduler struct {
	systems []scheduled
	onEnter map[GameState][]System
	onExit  map[GameState][]System
	started bool
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		onEnter: make(map[GameState][]System),
		onExit:  make(map[GameState][]System),
	}
}

// Add registers a per-frame system guarded by conditions.
func (s *Scheduler) Add(system System, conditions ...Condition) {
	if system == nil {
		return
	}
	s.systems = append(s.systems, scheduled{system: system, conditions: conditions})
}

// OnEnter registers systems that run once each time state is entered.
func (s *Scheduler) OnEnter(state GameState, systems ...System) {
	for _, sys := range systems {
		if sys != nil {
			s.onEnter[state] = append(s.onEnter[state], sys)
		}
	}
}

// OnExit registers systems that run once each time state is left.
func (s *Scheduler) OnExit(state GameState, systems ...System) {
	for _, sys := range systems {
		if sys != nil {
			s.onExit[state] = append(s.onExit[state], sys)
		}
	}
}

// Update applies a pending state transition, then runs the per-frame systems.
func (s *Scheduler) Update(w *World) {
	if s == nil || w == nil {
		return
	}
	if !s.started {
		s.started = true
		runAll(w, s.onEnter[w.state.Current()])
	}
	if prev, ok := w.state.apply(); ok {
		runAll(w, s.onExit[prev])
		runAll(w, s.onEnter[w.state.Current()])
		w.events.Push(Event{Type: EventStateChanged, Data: StateChange{From: prev, To: w.state.Current()}})
	}
	for _, sch := range s.systems {
		if sch.shouldRun(w) {
			sch.system.Update(w)
		}
	}
	w.events.flush()
}

// Draw calls every render-capable system whose conditions hold.
func (s *Scheduler) Draw(w *World, screen *ebiten.Image) {
	if s == nil || w == nil || screen == nil {
		return
	}
	for _, sch := range s.systems {
		rs, ok := sch.system.(RenderSystem)
		if !ok || !sch.shouldRun(w) {
			continue
		}
		rs.Draw(w, screen)
	}
}

func runAll(w *World, systems []System) {
	for _, sys := range systems {
		sys.Update(w)
	}
}
