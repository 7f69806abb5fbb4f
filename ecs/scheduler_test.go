package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	calls []string
}

func (r *recorder) sys(name string) System {
	return SystemFunc(func(*World) { r.calls = append(r.calls, name) })
}

func TestSchedulerStateTransitions(t *testing.T) {
	w := NewWorld()
	rec := &recorder{}
	s := NewScheduler()
	s.OnEnter(StateLoading, rec.sys("enter_loading"))
	s.OnExit(StateLoading, rec.sys("exit_loading"))
	s.OnEnter(StatePlaying, rec.sys("enter_playing"))
	s.Add(rec.sys("always"))
	s.Add(rec.sys("playing_only"), InState(StatePlaying))

	s.Update(w)
	assert.Equal(t, []string{"enter_loading", "always"}, rec.calls)

	rec.calls = nil
	w.State().SetNext(StatePlaying)
	s.Update(w)
	assert.Equal(t, []string{"exit_loading", "enter_playing", "always", "playing_only"}, rec.calls)
	assert.Equal(t, StatePlaying, w.State().Current())

	rec.calls = nil
	s.Update(w)
	assert.Equal(t, []string{"always", "playing_only"}, rec.calls, "enter systems run once per transition")
}

func TestSchedulerSameStateRequestIsIgnored(t *testing.T) {
	w := NewWorld()
	rec := &recorder{}
	s := NewScheduler()
	s.OnEnter(StatePlaying, rec.sys("enter_playing"))
	w.State().SetNext(StatePlaying)
	s.Update(w)
	require.Equal(t, []string{"enter_playing"}, rec.calls)

	w.State().SetNext(StatePlaying)
	s.Update(w)
	assert.Equal(t, []string{"enter_playing"}, rec.calls)
	_, pending := w.State().Pending()
	assert.False(t, pending)
}

func TestSchedulerEventsLiveForOneFrame(t *testing.T) {
	w := NewWorld()
	s := NewScheduler()
	var seen []EventType
	s.Add(SystemFunc(func(w *World) {
		w.Events().Push(Event{Type: EventBodyLanded, Data: LandedEvent{Speed: 3}})
	}))
	s.Add(SystemFunc(func(w *World) {
		w.Events().Each(EventBodyLanded, func(evt Event) { seen = append(seen, evt.Type) })
	}))

	s.Update(w)
	assert.Len(t, seen, 1)
	assert.Equal(t, 0, w.Events().Len(), "queue is flushed at the end of the frame")

}

func TestSchedulerPublishesStateChange(t *testing.T) {
	w := NewWorld()
	s := NewScheduler()
	var changes []StateChange
	s.Add(SystemFunc(func(w *World) {
		w.Events().Each(EventStateChanged, func(evt Event) { changes = append(changes, evt.Data.(StateChange)) })
	}))

	w.State().SetNext(StateMenu)
	s.Update(w)
	require.Len(t, changes, 1)
	assert.Equal(t, StateChange{From: StateLoading, To: StateMenu}, changes[0])

	s.Update(w)
	assert.Len(t, changes, 1)
}

func TestTimeAdvance(t *testing.T) {
	w := NewWorld()
	w.Time().Advance(0.5)
	w.Time().Advance(-1)
	assert.Equal(t, 0.0, w.Time().Delta)
	assert.Equal(t, 0.5, w.Time().Elapsed)
	assert.Equal(t, uint64(2), w.Time().Frame)
	assert.Equal(t, DefaultFixedDelta, w.Time().FixedDelta)
}
